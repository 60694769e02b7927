package insight

import (
	"errors"
	"fmt"
)

// MalformedSnapshotError reports a snapshot that violates its declared
// shape: a required field absent, a counter negative, an enum value
// outside its domain.
//
// This is the engine's single named failure mode. It is a programming
// error on the caller's side, not a recoverable runtime condition: the
// caller is responsible for resolving defaults and precomputing derived
// fields before the snapshot reaches the engine. Silently substituting
// defaults here would corrupt the determinism guarantee, so the engine
// fails loudly instead.
type MalformedSnapshotError struct {
	// Field names the offending snapshot field.
	Field string

	// Message describes the violation.
	Message string
}

// Error implements the error interface.
func (e *MalformedSnapshotError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("malformed snapshot: field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("malformed snapshot: %s", e.Message)
}

// NewMalformedSnapshot creates a MalformedSnapshotError for a field.
func NewMalformedSnapshot(field, message string) *MalformedSnapshotError {
	return &MalformedSnapshotError{Field: field, Message: message}
}

// IsMalformedSnapshot reports whether err is (or wraps) a
// MalformedSnapshotError. Uses errors.As to handle wrapped errors.
func IsMalformedSnapshot(err error) bool {
	var me *MalformedSnapshotError
	return errors.As(err, &me)
}
