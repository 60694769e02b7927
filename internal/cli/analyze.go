package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cadranlab/vitale/internal/crm"
	"github.com/cadranlab/vitale/internal/history"
	"github.com/cadranlab/vitale/internal/insight"
	"github.com/cadranlab/vitale/internal/security"
	"github.com/cadranlab/vitale/internal/tuning"
)

// AnalyzeOptions holds flags for the analyze command.
type AnalyzeOptions struct {
	*RootOptions
	Tuning   string
	Database string
	Label    string
	AsOf     string
	NoSave   bool

	// IDGenerator allows overriding run ID generation (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDGenerator history.IDGenerator

	// Now allows overriding the wall clock used for run timestamps and
	// the default as-of date (for testing). If nil, defaults to time.Now.
	Now func() time.Time
}

// AnalysisResult is the analyze command's output payload.
type AnalysisResult struct {
	Entity      string         `json:"entity"`
	Label       string         `json:"label,omitempty"`
	Fingerprint string         `json:"fingerprint"`
	Report      insight.Report `json:"report"`
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AnalyzeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "analyze <user|customer> <snapshot-file>",
		Short: "Analyze an entity snapshot",
		Long: `Analyze a user account or customer record snapshot.

Reads a YAML snapshot file, runs the rule set for the entity kind, and
prints the insights, health score, and suggested actions. With --db the
run is also recorded in the history database.

Dates in the snapshot file are resolved against --as-of (default:
today), so re-running with the same --as-of reproduces the exact same
report.

Example:
  vitale analyze user jdupont.yaml --label jdupont --db ./vitale.db
  vitale analyze customer acme.yaml --tuning custom.cue --as-of 2026-03-14`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Tuning, "tuning", "", "path to a CUE tuning profile (default: built-in profile)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the history SQLite database (omit to skip recording)")
	cmd.Flags().StringVar(&opts.Label, "label", "", "entity identifier recorded with the run")
	cmd.Flags().StringVar(&opts.AsOf, "as-of", "", "analysis date, YYYY-MM-DD (default: today)")
	cmd.Flags().BoolVar(&opts.NoSave, "no-save", false, "analyze without recording, even when --db is set")

	return cmd
}

func runAnalyze(opts *AnalyzeOptions, entity, snapshotPath string, cmd *cobra.Command) error {
	// Configure logging based on verbose flag
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	})))

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	asOf, err := resolveAsOf(opts.AsOf, now)
	if err != nil {
		formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid --as-of", err)
	}

	profile, err := loadProfile(opts.Tuning)
	if err != nil {
		formatter.Error(ErrCodeBadTuning, err.Error(), nil)
		return WrapExitError(ExitFailure, "invalid tuning profile", err)
	}

	result, err := analyzeEntity(entity, snapshotPath, asOf, profile)
	if err != nil {
		return reportAnalysisError(formatter, err)
	}
	result.Label = opts.Label

	if opts.Database != "" && !opts.NoSave {
		if err := recordRun(cmd.Context(), opts, result, now); err != nil {
			formatter.Error(ErrCodeDatabaseError, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to record run", err)
		}
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}

	header := fmt.Sprintf("Analyse %s", result.Entity)
	if result.Label != "" {
		header += " : " + result.Label
	}
	fmt.Fprintln(formatter.Writer, header)
	fmt.Fprintln(formatter.Writer)
	fmt.Fprint(formatter.Writer, RenderReportText(result.Report))
	formatter.VerboseLog("fingerprint: %s", result.Fingerprint)
	return nil
}

// analyzeEntity loads the snapshot for an entity kind and runs the
// matching analyzer.
func analyzeEntity(entity, snapshotPath string, asOf time.Time, profile tuning.Profile) (AnalysisResult, error) {
	switch entity {
	case security.Kind:
		snap, err := LoadUserSnapshot(snapshotPath, asOf)
		if err != nil {
			return AnalysisResult{}, err
		}
		analyzer, err := security.NewAnalyzer(profile.User)
		if err != nil {
			return AnalysisResult{}, err
		}
		report, err := analyzer.Analyze(snap)
		if err != nil {
			return AnalysisResult{}, err
		}
		fingerprint, err := insight.Fingerprint(security.Kind, snap)
		if err != nil {
			return AnalysisResult{}, err
		}
		return AnalysisResult{Entity: security.Kind, Fingerprint: fingerprint, Report: report}, nil

	case crm.Kind:
		snap, err := LoadCustomerSnapshot(snapshotPath, asOf)
		if err != nil {
			return AnalysisResult{}, err
		}
		analyzer, err := crm.NewAnalyzer(profile.Customer)
		if err != nil {
			return AnalysisResult{}, err
		}
		report, err := analyzer.Analyze(snap)
		if err != nil {
			return AnalysisResult{}, err
		}
		fingerprint, err := insight.Fingerprint(crm.Kind, snap)
		if err != nil {
			return AnalysisResult{}, err
		}
		return AnalysisResult{Entity: crm.Kind, Fingerprint: fingerprint, Report: report}, nil

	default:
		return AnalysisResult{}, fmt.Errorf("unknown entity kind %q: must be %q or %q",
			entity, security.Kind, crm.Kind)
	}
}

// reportAnalysisError maps analysis errors to formatter output and exit
// codes.
func reportAnalysisError(formatter *OutputFormatter, err error) error {
	switch {
	case insight.IsMalformedSnapshot(err):
		formatter.Error(ErrCodeBadSnapshot, err.Error(), nil)
		return WrapExitError(ExitFailure, "invalid snapshot", err)
	case errors.Is(err, os.ErrNotExist):
		formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return WrapExitError(ExitCommandError, "snapshot file not found", err)
	default:
		formatter.Error(ErrCodeParseError, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load snapshot", err)
	}
}

// recordRun persists the analysis in the history database.
func recordRun(ctx context.Context, opts *AnalyzeOptions, result AnalysisResult, now func() time.Time) error {
	if ctx == nil {
		ctx = context.Background()
	}

	idGen := opts.IDGenerator
	if idGen == nil {
		idGen = history.UUIDv7Generator{}
	}

	store, err := history.Open(opts.Database)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	reportJSON, err := json.Marshal(result.Report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	run := history.Run{
		ID:           idGen.Generate(),
		Entity:       result.Entity,
		Label:        opts.Label,
		Fingerprint:  result.Fingerprint,
		Score:        result.Report.Score,
		InsightCount: len(result.Report.Insights),
		ActionCount:  len(result.Report.Actions),
		ReportJSON:   string(reportJSON),
		RecordedAt:   now().UTC(),
	}

	inserted, err := store.RecordRun(ctx, run)
	if err != nil {
		return err
	}

	if inserted {
		slog.Info("run recorded", "id", run.ID, "entity", run.Entity, "score", run.Score)
	} else {
		slog.Debug("run already recorded", "entity", run.Entity, "fingerprint", run.Fingerprint)
	}
	return nil
}

// loadProfile returns the tuning profile to analyze with.
func loadProfile(path string) (tuning.Profile, error) {
	if path == "" {
		return tuning.Default(), nil
	}
	p, err := tuning.LoadFile(path)
	if err != nil {
		return tuning.Profile{}, err
	}
	return *p, nil
}

// resolveAsOf parses the --as-of flag, defaulting to the current day.
func resolveAsOf(flag string, now func() time.Time) (time.Time, error) {
	if flag == "" {
		return now().UTC().Truncate(24 * time.Hour), nil
	}
	t, err := time.Parse(dateLayout, flag)
	if err != nil {
		return time.Time{}, fmt.Errorf("want %s date: %w", dateLayout, err)
	}
	return t, nil
}
