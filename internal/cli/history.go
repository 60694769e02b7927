package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cadranlab/vitale/internal/history"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
}

// RunSummary is one history listing entry in JSON output.
type RunSummary struct {
	ID           string `json:"id"`
	Entity       string `json:"entity"`
	Label        string `json:"label"`
	Fingerprint  string `json:"fingerprint"`
	Score        int    `json:"score"`
	InsightCount int    `json:"insight_count"`
	ActionCount  int    `json:"action_count"`
	RecordedAt   string `json:"recorded_at"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history <user|customer> <label>",
		Short: "List recorded analysis runs for an entity",
		Long: `List analysis runs recorded for an entity, oldest first.

Example:
  vitale history user jdupont --db ./vitale.db
  vitale history customer ACME --db ./vitale.db --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the history SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runHistory(opts *HistoryOptions, entity, label string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	store, err := history.Open(opts.Database)
	if err != nil {
		formatter.Error(ErrCodeDatabaseError, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	runs, err := store.ListRuns(ctx, entity, label)
	if err != nil {
		formatter.Error(ErrCodeDatabaseError, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	if opts.Format == "json" {
		summaries := make([]RunSummary, len(runs))
		for i, run := range runs {
			summaries[i] = RunSummary{
				ID:           run.ID,
				Entity:       run.Entity,
				Label:        run.Label,
				Fingerprint:  run.Fingerprint,
				Score:        run.Score,
				InsightCount: run.InsightCount,
				ActionCount:  run.ActionCount,
				RecordedAt:   run.RecordedAt.Format(time.RFC3339),
			}
		}
		return formatter.Success(summaries)
	}

	fmt.Fprint(formatter.Writer, renderRunsText(entity, label, runs))
	return nil
}

// renderRunsText formats a run listing for terminal display.
func renderRunsText(entity, label string, runs []history.Run) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Historique %s : %s\n", entity, label)
	if len(runs) == 0 {
		b.WriteString("  (aucune analyse enregistrée)\n")
		return b.String()
	}

	for _, run := range runs {
		fmt.Fprintf(&b, "  %s  score %3d  %d observation(s), %d action(s)  %s\n",
			run.RecordedAt.Format("2006-01-02 15:04"),
			run.Score,
			run.InsightCount,
			run.ActionCount,
			run.ID,
		)
	}
	return b.String()
}
