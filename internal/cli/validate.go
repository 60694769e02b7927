package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cadranlab/vitale/internal/tuning"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
}

// ValidationResult is the validate command's JSON payload.
type ValidationResult struct {
	Path  string `json:"path"`
	Valid bool   `json:"valid"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <tuning-file>",
		Short: "Validate a CUE tuning profile",
		Long: `Compile a CUE tuning profile and check its consistency.

The file is merged over the built-in defaults, then the resulting
profile is checked: magnitudes in range, thresholds ordered. Errors
carry the CUE source position where available.

Example:
  vitale validate custom.cue`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if _, err := tuning.LoadFile(path); err != nil {
		var ce *tuning.CompileError
		if errors.As(err, &ce) {
			formatter.Error(ErrCodeBadTuning, ce.Error(), map[string]string{"field": ce.Field})
		} else {
			formatter.Error(ErrCodeBadTuning, err.Error(), nil)
		}
		return WrapExitError(ExitFailure, "invalid tuning profile", err)
	}

	if opts.Format == "json" {
		return formatter.Success(ValidationResult{Path: path, Valid: true})
	}
	fmt.Fprintf(formatter.Writer, "Profil valide : %s\n", path)
	return nil
}
