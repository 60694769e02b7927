package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadranlab/vitale/internal/history"
)

const compliantUserYAML = `
two_factor_enabled: true
must_change_password: false
password_changed_at: 2026-03-04
failed_logins: 0
active: true
locked: false
login_count: 42
`

func fixedClock() time.Time {
	return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
}

// execAnalyze runs the analyze pipeline directly with test-friendly
// options, capturing stdout and stderr.
func execAnalyze(t *testing.T, opts *AnalyzeOptions, entity, path string) (stdout, stderr *bytes.Buffer, err error) {
	t.Helper()

	stdout = &bytes.Buffer{}
	stderr = &bytes.Buffer{}
	cmd := &cobra.Command{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetContext(context.Background())

	if opts.Now == nil {
		opts.Now = fixedClock
	}
	if opts.AsOf == "" {
		opts.AsOf = "2026-03-14"
	}

	err = runAnalyze(opts, entity, path, cmd)
	return stdout, stderr, err
}

func TestAnalyze_UserText(t *testing.T) {
	path := writeSnapshot(t, compliantUserYAML)
	opts := &AnalyzeOptions{
		RootOptions: &RootOptions{Format: "text"},
		Label:       "jdupont",
	}

	stdout, _, err := execAnalyze(t, opts, "user", path)
	require.NoError(t, err)

	out := stdout.String()
	assert.Contains(t, out, "Analyse user : jdupont")
	assert.Contains(t, out, "Score : 100/100")
	assert.Contains(t, out, "Compte actif")
	assert.Contains(t, out, "Aucune action requise")
}

func TestAnalyze_UserJSON(t *testing.T) {
	path := writeSnapshot(t, compliantUserYAML)
	opts := &AnalyzeOptions{
		RootOptions: &RootOptions{Format: "json"},
	}

	stdout, _, err := execAnalyze(t, opts, "user", path)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	payload, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var result AnalysisResult
	require.NoError(t, json.Unmarshal(payload, &result))

	assert.Equal(t, "user", result.Entity)
	assert.Len(t, result.Fingerprint, 64)
	assert.Equal(t, 100, result.Report.Score)
	assert.Len(t, result.Report.Insights, 4)
	assert.Len(t, result.Report.Actions, 1)
}

func TestAnalyze_CustomerText(t *testing.T) {
	path := writeSnapshot(t, `
relationship: churned
phone: "+33 1 23 45 67 89"
revenue_cents: 50000
last_order_at: 2025-01-01
lead_score: 0
`)
	opts := &AnalyzeOptions{
		RootOptions: &RootOptions{Format: "text"},
	}

	stdout, _, err := execAnalyze(t, opts, "customer", path)
	require.NoError(t, err)

	out := stdout.String()
	assert.Contains(t, out, "Client perdu")
	assert.Contains(t, out, "Relancer le client perdu")
}

func TestAnalyze_RecordsRun(t *testing.T) {
	path := writeSnapshot(t, compliantUserYAML)
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	opts := &AnalyzeOptions{
		RootOptions: &RootOptions{Format: "text"},
		Database:    dbPath,
		Label:       "jdupont",
		IDGenerator: history.NewSequenceGenerator("run-1", "run-2"),
	}

	_, _, err := execAnalyze(t, opts, "user", path)
	require.NoError(t, err)

	store, err := history.Open(dbPath)
	require.NoError(t, err)
	defer store.Close()

	runs, err := store.ListRuns(context.Background(), "user", "jdupont")
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "run-1", runs[0].ID)
	assert.Equal(t, 100, runs[0].Score)
	assert.Equal(t, 4, runs[0].InsightCount)
	assert.Equal(t, 1, runs[0].ActionCount)
	assert.NotEmpty(t, runs[0].ReportJSON)

	// Re-analyzing the same snapshot is idempotent.
	opts2 := &AnalyzeOptions{
		RootOptions: &RootOptions{Format: "text"},
		Database:    dbPath,
		Label:       "jdupont",
		IDGenerator: history.NewSequenceGenerator("run-3"),
	}
	_, _, err = execAnalyze(t, opts2, "user", path)
	require.NoError(t, err)

	runs, err = store.ListRuns(context.Background(), "user", "jdupont")
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestAnalyze_NoSaveSkipsRecording(t *testing.T) {
	path := writeSnapshot(t, compliantUserYAML)
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	opts := &AnalyzeOptions{
		RootOptions: &RootOptions{Format: "text"},
		Database:    dbPath,
		NoSave:      true,
	}

	_, _, err := execAnalyze(t, opts, "user", path)
	require.NoError(t, err)

	_, err = os.Stat(dbPath)
	assert.True(t, os.IsNotExist(err), "no database should be created with --no-save")
}

func TestAnalyze_MalformedSnapshotFailsWithExitFailure(t *testing.T) {
	path := writeSnapshot(t, `
password_age_days: 10
failed_logins: -3
`)
	opts := &AnalyzeOptions{
		RootOptions: &RootOptions{Format: "text"},
	}

	stdout, _, err := execAnalyze(t, opts, "user", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout.String(), "Error [E004]")
}

func TestAnalyze_UnknownEntity(t *testing.T) {
	path := writeSnapshot(t, compliantUserYAML)
	opts := &AnalyzeOptions{
		RootOptions: &RootOptions{Format: "text"},
	}

	_, _, err := execAnalyze(t, opts, "supplier", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestAnalyze_CustomTuning(t *testing.T) {
	path := writeSnapshot(t, compliantUserYAML)
	tuningPath := filepath.Join(t.TempDir(), "custom.cue")
	require.NoError(t, os.WriteFile(tuningPath, []byte(`
user: { fresh_password_days: 5, stale_password_days: 9 }
`), 0o644))

	opts := &AnalyzeOptions{
		RootOptions: &RootOptions{Format: "json"},
		Tuning:      tuningPath,
	}

	stdout, _, err := execAnalyze(t, opts, "user", path)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &resp))
	payload, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var result AnalysisResult
	require.NoError(t, json.Unmarshal(payload, &result))

	// Password is 10 days old: stale under the tightened thresholds.
	assert.Less(t, result.Report.Score, 100)
}

func TestAnalyze_BadTuningFile(t *testing.T) {
	path := writeSnapshot(t, compliantUserYAML)
	tuningPath := filepath.Join(t.TempDir(), "bad.cue")
	require.NoError(t, os.WriteFile(tuningPath, []byte(`user: { two_factor_bonus: 20.5 }`), 0o644))

	opts := &AnalyzeOptions{
		RootOptions: &RootOptions{Format: "text"},
		Tuning:      tuningPath,
	}

	stdout, _, err := execAnalyze(t, opts, "user", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout.String(), "Error [E005]")
}
