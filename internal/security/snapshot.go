// Package security instantiates the insight engine for platform user
// accounts: a rule set over a user's authentication posture that yields
// classified observations, a 0-100 health score, and prioritized
// remediation suggestions.
//
// User-facing text is French, matching the back office this library
// serves. Rule IDs and code are English.
package security

import (
	"github.com/cadranlab/vitale/internal/insight"
)

// Kind is the entity kind label for user snapshots, used for
// fingerprint domain separation and history records.
const Kind = "user"

// UserSnapshot is the immutable projection of a user account the
// security rules read.
//
// Every field is mandatory and resolved by the caller before analysis:
// in particular PasswordAgeDays is precomputed from the last-change
// timestamp so the engine itself never consults a clock. The engine
// never mutates a snapshot and never retains it beyond the call.
type UserSnapshot struct {
	// TwoFactorEnabled reports whether a second authentication factor
	// is configured.
	TwoFactorEnabled bool

	// MustChangePassword reports a pending forced password change.
	MustChangePassword bool

	// PasswordAgeDays is the age of the current password in whole days.
	PasswordAgeDays int

	// FailedLogins counts recent failed login attempts.
	FailedLogins int

	// Active reports whether the account is enabled.
	Active bool

	// Locked reports whether the account is locked out. Locked takes
	// precedence over Active wherever the two interact.
	Locked bool

	// LoginCount counts lifetime successful logins.
	LoginCount int
}

// Validate implements insight.Snapshot. Counters must be non-negative;
// anything else is a caller-side contract violation.
func (u UserSnapshot) Validate() error {
	if u.PasswordAgeDays < 0 {
		return insight.NewMalformedSnapshot("password_age_days", "must not be negative")
	}
	if u.FailedLogins < 0 {
		return insight.NewMalformedSnapshot("failed_logins", "must not be negative")
	}
	if u.LoginCount < 0 {
		return insight.NewMalformedSnapshot("login_count", "must not be negative")
	}
	return nil
}

// CanonicalMap implements insight.Snapshot. Keys are stable snake_case
// identifiers; the full field set participates so any change to the
// account state changes the fingerprint.
func (u UserSnapshot) CanonicalMap() map[string]any {
	return map[string]any{
		"two_factor_enabled":   u.TwoFactorEnabled,
		"must_change_password": u.MustChangePassword,
		"password_age_days":    u.PasswordAgeDays,
		"failed_logins":        u.FailedLogins,
		"active":               u.Active,
		"locked":               u.Locked,
		"login_count":          u.LoginCount,
	}
}
