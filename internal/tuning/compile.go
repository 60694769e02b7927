package tuning

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// CompileError represents a tuning profile compilation error with source
// position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// LoadFile reads and compiles a CUE tuning profile from disk.
//
// The file overrides the default profile field by field: any field it
// does not mention keeps its Default() value, so a profile tweaking one
// magnitude is a one-line file. The merged result is validated before it
// is returned.
func LoadFile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tuning profile: %w", err)
	}

	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	return CompileProfile(value)
}

// CompileProfile merges a CUE value over the default profile and
// validates the result.
//
// Expected shape (all fields optional, integers only):
//
//	user: {
//	    baseline:         50
//	    two_factor_bonus: 20
//	    ...
//	}
//	customer: {
//	    baseline:        50
//	    inactivity_days: 180
//	    ...
//	}
func CompileProfile(v cue.Value) (*Profile, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	profile := Default()

	intFields := []struct {
		path string
		dst  *int
	}{
		{"user.baseline", &profile.User.Baseline},
		{"user.two_factor_bonus", &profile.User.TwoFactorBonus},
		{"user.fresh_password_bonus", &profile.User.FreshPasswordBonus},
		{"user.stale_password_malus", &profile.User.StalePasswordMalus},
		{"user.active_bonus", &profile.User.ActiveBonus},
		{"user.locked_malus", &profile.User.LockedMalus},
		{"user.clean_login_bonus", &profile.User.CleanLoginBonus},
		{"user.failure_malus", &profile.User.FailureMalus},
		{"user.no_forced_change_bonus", &profile.User.NoForcedChangeBonus},
		{"user.forced_change_malus", &profile.User.ForcedChangeMalus},
		{"user.fresh_password_days", &profile.User.FreshPasswordDays},
		{"user.stale_password_days", &profile.User.StalePasswordDays},
		{"user.failure_alert_threshold", &profile.User.FailureAlertThreshold},

		{"customer.baseline", &profile.Customer.Baseline},
		{"customer.active_bonus", &profile.Customer.ActiveBonus},
		{"customer.churned_malus", &profile.Customer.ChurnedMalus},
		{"customer.email_bonus", &profile.Customer.EmailBonus},
		{"customer.phone_bonus", &profile.Customer.PhoneBonus},
		{"customer.recent_order_bonus", &profile.Customer.RecentOrderBonus},
		{"customer.inactivity_malus", &profile.Customer.InactivityMalus},
		{"customer.revenue_bonus", &profile.Customer.RevenueBonus},
		{"customer.pipeline_bonus", &profile.Customer.PipelineBonus},
		{"customer.hot_lead_bonus", &profile.Customer.HotLeadBonus},
		{"customer.recent_order_days", &profile.Customer.RecentOrderDays},
		{"customer.inactivity_days", &profile.Customer.InactivityDays},
		{"customer.hot_lead_score", &profile.Customer.HotLeadScore},
		{"customer.warm_lead_score", &profile.Customer.WarmLeadScore},
	}

	for _, f := range intFields {
		n, ok, err := lookupInt(v, f.path)
		if err != nil {
			return nil, err
		}
		if ok {
			*f.dst = int(n)
		}
	}

	// The single int64 field (revenue is kept in cents).
	n, ok, err := lookupInt(v, "customer.high_revenue_cents")
	if err != nil {
		return nil, err
	}
	if ok {
		profile.Customer.HighRevenueCents = n
	}

	if err := profile.Validate(); err != nil {
		return nil, &CompileError{
			Field:   "profile",
			Message: err.Error(),
			Pos:     v.Pos(),
		}
	}

	return &profile, nil
}

// lookupInt extracts an integer field at path. The boolean reports
// whether the field is present. Floats are forbidden - every tuning
// value is an integer.
func lookupInt(v cue.Value, path string) (int64, bool, error) {
	fieldVal := v.LookupPath(cue.ParsePath(path))
	if !fieldVal.Exists() {
		return 0, false, nil
	}

	switch fieldVal.IncompleteKind() {
	case cue.IntKind:
		n, err := fieldVal.Int64()
		if err != nil {
			return 0, false, formatCUEError(err)
		}
		return n, true, nil
	case cue.FloatKind, cue.NumberKind:
		return 0, false, &CompileError{
			Field:   path,
			Message: "float values are forbidden - use int",
			Pos:     fieldVal.Pos(),
		}
	default:
		return 0, false, &CompileError{
			Field:   path,
			Message: fmt.Sprintf("expected int, got %v", fieldVal.IncompleteKind()),
			Pos:     fieldVal.Pos(),
		}
	}
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
