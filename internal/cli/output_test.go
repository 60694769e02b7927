package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExitError(t *testing.T) {
	plain := NewExitError(ExitCommandError, "database not found")
	assert.Equal(t, "database not found", plain.Error())
	assert.Equal(t, ExitCommandError, GetExitCode(plain))

	underlying := errors.New("no such file")
	wrapped := WrapExitError(ExitFailure, "invalid snapshot", underlying)
	assert.Equal(t, "invalid snapshot: no such file", wrapped.Error())
	assert.Equal(t, ExitFailure, GetExitCode(wrapped))
	assert.ErrorIs(t, wrapped, underlying)

	// Wrapping through fmt.Errorf still yields the code.
	assert.Equal(t, ExitFailure, GetExitCode(fmt.Errorf("outer: %w", wrapped)))

	// Non-ExitError defaults to ExitFailure.
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("anything")))
}

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Success(map[string]int{"score": 85})
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
	assert.Nil(t, resp.Error)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	details := map[string]string{"field": "user.two_factor_bonus"}
	err := formatter.Error(ErrCodeBadTuning, "invalid tuning profile", details)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeBadTuning, resp.Error.Code)
	assert.Equal(t, "invalid tuning profile", resp.Error.Message)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	require.NoError(t, formatter.Success("Profil valide : custom.cue"))
	assert.Contains(t, buf.String(), "Profil valide")
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	require.NoError(t, formatter.Error(ErrCodeBadSnapshot, "failed_logins must not be negative", nil))
	assert.Contains(t, buf.String(), "Error [E004]")
	assert.Contains(t, buf.String(), "failed_logins")
}

func TestOutputFormatter_TextErrorVerbose(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: true,
	}

	details := map[string]string{"path": "jdupont.yaml"}
	require.NoError(t, formatter.Error(ErrCodeParseError, "failed to load snapshot", details))
	assert.Contains(t, buf.String(), "Details:")
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			errOut := &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:    "text",
				Writer:    out,
				ErrWriter: errOut,
				Verbose:   tt.verbose,
			}

			formatter.VerboseLog("fingerprint: %s", "abc123")

			// Diagnostics go to the error writer, never stdout.
			assert.Empty(t, out.String())
			if tt.wantLog {
				assert.Contains(t, errOut.String(), "fingerprint: abc123")
			} else {
				assert.Empty(t, errOut.String())
			}
		})
	}
}
