package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadranlab/vitale/internal/crm"
)

var asOf = time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

func writeSnapshot(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadUserSnapshot_DateResolution(t *testing.T) {
	path := writeSnapshot(t, `
two_factor_enabled: true
password_changed_at: 2026-03-04
failed_logins: 2
active: true
login_count: 17
`)

	snap, err := LoadUserSnapshot(path, asOf)
	require.NoError(t, err)

	assert.Equal(t, 10, snap.PasswordAgeDays)
	assert.True(t, snap.TwoFactorEnabled)
	assert.Equal(t, 2, snap.FailedLogins)
	assert.Equal(t, 17, snap.LoginCount)
}

func TestLoadUserSnapshot_ExplicitAgeDays(t *testing.T) {
	path := writeSnapshot(t, `
password_age_days: 45
active: true
login_count: 1
`)

	snap, err := LoadUserSnapshot(path, asOf)
	require.NoError(t, err)
	assert.Equal(t, 45, snap.PasswordAgeDays)
}

func TestLoadUserSnapshot_AgeAndDateMutuallyExclusive(t *testing.T) {
	path := writeSnapshot(t, `
password_changed_at: 2026-03-04
password_age_days: 45
`)

	_, err := LoadUserSnapshot(path, asOf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestLoadUserSnapshot_RequiresPasswordAge(t *testing.T) {
	path := writeSnapshot(t, `active: true`)

	_, err := LoadUserSnapshot(path, asOf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password_changed_at or password_age_days")
}

func TestLoadUserSnapshot_RejectsUnknownFields(t *testing.T) {
	path := writeSnapshot(t, `
password_age_days: 10
two_factor: true
`)

	_, err := LoadUserSnapshot(path, asOf)
	require.Error(t, err, "typo'd field names must not be silently dropped")
}

func TestLoadUserSnapshot_RejectsFutureDate(t *testing.T) {
	path := writeSnapshot(t, `password_changed_at: 2026-04-01`)

	_, err := LoadUserSnapshot(path, asOf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after the as-of date")
}

func TestLoadUserSnapshot_MissingFile(t *testing.T) {
	_, err := LoadUserSnapshot(filepath.Join(t.TempDir(), "missing.yaml"), asOf)
	require.Error(t, err)
}

func TestLoadCustomerSnapshot_ContactPresence(t *testing.T) {
	path := writeSnapshot(t, `
relationship: active
email: contact@acme.example
revenue_cents: 420000
last_order_at: 2026-01-14
lead_score: 0
open_opportunities: 1
open_pipeline_cents: 80000
`)

	snap, err := LoadCustomerSnapshot(path, asOf)
	require.NoError(t, err)

	assert.Equal(t, crm.RelActive, snap.Relationship)
	assert.True(t, snap.HasEmail)
	assert.False(t, snap.HasPhone, "absent phone means not on file")
	assert.True(t, snap.HasOrdered)
	assert.Equal(t, 59, snap.LastOrderDaysAgo)
	assert.Equal(t, int64(420_000), snap.RevenueCents)
	assert.Equal(t, 1, snap.OpenOpportunities)
}

func TestLoadCustomerSnapshot_NeverOrdered(t *testing.T) {
	path := writeSnapshot(t, `
relationship: prospect
lead_score: 72
`)

	snap, err := LoadCustomerSnapshot(path, asOf)
	require.NoError(t, err)

	assert.False(t, snap.HasOrdered)
	assert.Equal(t, 0, snap.LastOrderDaysAgo)
	assert.Equal(t, 72, snap.LeadScore)
}

func TestLoadCustomerSnapshot_BadDate(t *testing.T) {
	path := writeSnapshot(t, `
relationship: active
last_order_at: 14/03/2026
`)

	_, err := LoadCustomerSnapshot(path, asOf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "last_order_at")
}
