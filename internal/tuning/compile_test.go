package tuning

import (
	"os"
	"path/filepath"
	"testing"

	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compileString(t *testing.T, src string) (*Profile, error) {
	t.Helper()
	v := cuecontext.New().CompileString(src)
	return CompileProfile(v)
}

func TestCompileProfile_EmptyOverrideKeepsDefaults(t *testing.T) {
	p, err := compileString(t, "{}")
	require.NoError(t, err)
	assert.Equal(t, Default(), *p)
}

func TestCompileProfile_PartialOverride(t *testing.T) {
	p, err := compileString(t, `
user: {
	two_factor_bonus: 30
	fresh_password_days: 14
}
customer: {
	inactivity_days: 365
	high_revenue_cents: 5_000_000
}
`)
	require.NoError(t, err)

	assert.Equal(t, 30, p.User.TwoFactorBonus)
	assert.Equal(t, 14, p.User.FreshPasswordDays)
	assert.Equal(t, 365, p.Customer.InactivityDays)
	assert.Equal(t, int64(5_000_000), p.Customer.HighRevenueCents)

	// Untouched fields keep defaults.
	assert.Equal(t, 50, p.User.Baseline)
	assert.Equal(t, 70, p.Customer.HotLeadScore)
}

func TestCompileProfile_RejectsFloats(t *testing.T) {
	_, err := compileString(t, `user: { two_factor_bonus: 20.5 }`)
	require.Error(t, err)

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "user.two_factor_bonus", ce.Field)
	assert.Contains(t, ce.Message, "float")
}

func TestCompileProfile_RejectsWrongKind(t *testing.T) {
	_, err := compileString(t, `customer: { inactivity_days: "six months" }`)
	require.Error(t, err)

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "customer.inactivity_days", ce.Field)
}

func TestCompileProfile_RejectsInconsistentResult(t *testing.T) {
	// Syntactically fine, semantically inconsistent after the merge.
	_, err := compileString(t, `user: { stale_password_days: 7 }`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stale_password_days")
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.cue")
	require.NoError(t, os.WriteFile(path, []byte(`
user: { locked_malus: 40 }
`), 0o644))

	p, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 40, p.User.LockedMalus)

	_, err = LoadFile(filepath.Join(dir, "missing.cue"))
	require.Error(t, err)
}

func TestLoadFile_SyntaxErrorCarriesPosition(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.cue")
	require.NoError(t, os.WriteFile(path, []byte("user: {\n"), 0o644))

	_, err := LoadFile(path)
	require.Error(t, err)
}
