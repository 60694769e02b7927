package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTuningFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.cue")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestValidate_ValidProfile(t *testing.T) {
	path := writeTuningFile(t, `
user: { two_factor_bonus: 25 }
customer: { inactivity_days: 365 }
`)

	stdout, err := execCommand(t, "validate", path)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "Profil valide")
}

func TestValidate_ValidProfileJSON(t *testing.T) {
	path := writeTuningFile(t, `user: { locked_malus: 30 }`)

	stdout, err := execCommand(t, "validate", path, "--format", "json")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	payload, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var result ValidationResult
	require.NoError(t, json.Unmarshal(payload, &result))
	assert.True(t, result.Valid)
	assert.Equal(t, path, result.Path)
}

func TestValidate_FloatRejected(t *testing.T) {
	path := writeTuningFile(t, `user: { two_factor_bonus: 20.5 }`)

	stdout, err := execCommand(t, "validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout.String(), "Error [E005]")
}

func TestValidate_InconsistentProfile(t *testing.T) {
	path := writeTuningFile(t, `user: { stale_password_days: 7 }`)

	_, err := execCommand(t, "validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestValidate_MissingFile(t *testing.T) {
	_, err := execCommand(t, "validate", filepath.Join(t.TempDir(), "missing.cue"))
	require.Error(t, err)
}
