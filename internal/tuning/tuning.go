// Package tuning holds the scoring constants of the analysis engine as
// configuration.
//
// The baselines, adjustment magnitudes, and thresholds used by the two
// rule-set instantiations are tuning values, not a derived formula. They
// are therefore kept out of the engine and out of the rule code: each
// rule set is built from a Profile, and a Profile can be overridden from
// a CUE file (see compile.go) for experimentation without recompiling.
//
// Magnitudes are stored as non-negative integers; rules that subtract
// apply the minus sign themselves. All values are integers - the scoring
// pipeline has no floats.
package tuning

import "fmt"

// Profile is the complete tuning configuration, one section per entity
// kind.
type Profile struct {
	User     User
	Customer Customer
}

// User tunes the user-security rule set.
type User struct {
	// Baseline is the score before any adjustment.
	Baseline int

	// Adjustment magnitudes.
	TwoFactorBonus      int // two-factor authentication enabled
	FreshPasswordBonus  int // password changed within FreshPasswordDays
	StalePasswordMalus  int // password older than StalePasswordDays
	ActiveBonus         int // account active
	LockedMalus         int // account locked
	CleanLoginBonus     int // zero failed logins
	FailureMalus        int // failed logins above FailureAlertThreshold
	NoForcedChangeBonus int // no pending forced password change
	ForcedChangeMalus   int // forced password change pending

	// Thresholds.
	FreshPasswordDays     int // password age considered fresh (inclusive)
	StalePasswordDays     int // password age considered stale (exclusive)
	FailureAlertThreshold int // failed logins above this are alarming (exclusive)
}

// Customer tunes the customer-relationship rule set.
type Customer struct {
	// Baseline is the score before any adjustment.
	Baseline int

	// Adjustment magnitudes.
	ActiveBonus      int // active commercial relationship
	ChurnedMalus     int // churned relationship
	EmailBonus       int // email on file
	PhoneBonus       int // phone on file
	RecentOrderBonus int // last order within RecentOrderDays
	InactivityMalus  int // no order within InactivityDays (or ever)
	RevenueBonus     int // total revenue at or above HighRevenueCents
	PipelineBonus    int // at least one open opportunity
	HotLeadBonus     int // prospect with lead score at or above HotLeadScore

	// Thresholds.
	RecentOrderDays  int   // last order this recent counts as fresh (inclusive)
	InactivityDays   int   // strictly more days than this means inactive
	HotLeadScore     int   // lead score banding: hot at or above (inclusive)
	WarmLeadScore    int   // lead score banding: warm at or above (inclusive)
	HighRevenueCents int64 // revenue considered high (inclusive)
}

// Default returns the reference profile. These are the constants the
// product shipped with; they carry no documented derivation and exist to
// be tuned.
func Default() Profile {
	return Profile{
		User: User{
			Baseline:            50,
			TwoFactorBonus:      20,
			FreshPasswordBonus:  15,
			StalePasswordMalus:  10,
			ActiveBonus:         10,
			LockedMalus:         20,
			CleanLoginBonus:     5,
			FailureMalus:        15,
			NoForcedChangeBonus: 10,
			ForcedChangeMalus:   10,

			FreshPasswordDays:     30,
			StalePasswordDays:     90,
			FailureAlertThreshold: 5,
		},
		Customer: Customer{
			Baseline:         50,
			ActiveBonus:      10,
			ChurnedMalus:     20,
			EmailBonus:       5,
			PhoneBonus:       5,
			RecentOrderBonus: 15,
			InactivityMalus:  10,
			RevenueBonus:     10,
			PipelineBonus:    10,
			HotLeadBonus:     10,

			RecentOrderDays:  90,
			InactivityDays:   180,
			HotLeadScore:     70,
			WarmLeadScore:    40,
			HighRevenueCents: 1_000_000, // 10 000 EUR
		},
	}
}

// Validate checks the profile's internal consistency. Returns the first
// violation found, prefixed with the offending field path.
func (p Profile) Validate() error {
	if err := p.User.Validate(); err != nil {
		return fmt.Errorf("user: %w", err)
	}
	if err := p.Customer.Validate(); err != nil {
		return fmt.Errorf("customer: %w", err)
	}
	return nil
}

// Validate checks the user section's internal consistency.
func (u User) Validate() error {
	if u.Baseline < 0 || u.Baseline > 100 {
		return fmt.Errorf("baseline %d outside [0,100]", u.Baseline)
	}
	for _, m := range []struct {
		name  string
		value int
	}{
		{"two_factor_bonus", u.TwoFactorBonus},
		{"fresh_password_bonus", u.FreshPasswordBonus},
		{"stale_password_malus", u.StalePasswordMalus},
		{"active_bonus", u.ActiveBonus},
		{"locked_malus", u.LockedMalus},
		{"clean_login_bonus", u.CleanLoginBonus},
		{"failure_malus", u.FailureMalus},
		{"no_forced_change_bonus", u.NoForcedChangeBonus},
		{"forced_change_malus", u.ForcedChangeMalus},
	} {
		if m.value < 0 || m.value > 100 {
			return fmt.Errorf("%s: magnitude %d outside [0,100]", m.name, m.value)
		}
	}
	if u.FreshPasswordDays <= 0 {
		return fmt.Errorf("fresh_password_days must be positive, got %d", u.FreshPasswordDays)
	}
	if u.StalePasswordDays <= u.FreshPasswordDays {
		return fmt.Errorf("stale_password_days (%d) must exceed fresh_password_days (%d)",
			u.StalePasswordDays, u.FreshPasswordDays)
	}
	if u.FailureAlertThreshold < 1 {
		return fmt.Errorf("failure_alert_threshold must be at least 1, got %d", u.FailureAlertThreshold)
	}
	return nil
}

// Validate checks the customer section's internal consistency.
func (c Customer) Validate() error {
	if c.Baseline < 0 || c.Baseline > 100 {
		return fmt.Errorf("baseline %d outside [0,100]", c.Baseline)
	}
	for _, m := range []struct {
		name  string
		value int
	}{
		{"active_bonus", c.ActiveBonus},
		{"churned_malus", c.ChurnedMalus},
		{"email_bonus", c.EmailBonus},
		{"phone_bonus", c.PhoneBonus},
		{"recent_order_bonus", c.RecentOrderBonus},
		{"inactivity_malus", c.InactivityMalus},
		{"revenue_bonus", c.RevenueBonus},
		{"pipeline_bonus", c.PipelineBonus},
		{"hot_lead_bonus", c.HotLeadBonus},
	} {
		if m.value < 0 || m.value > 100 {
			return fmt.Errorf("%s: magnitude %d outside [0,100]", m.name, m.value)
		}
	}
	if c.RecentOrderDays <= 0 {
		return fmt.Errorf("recent_order_days must be positive, got %d", c.RecentOrderDays)
	}
	if c.InactivityDays < c.RecentOrderDays {
		return fmt.Errorf("inactivity_days (%d) must not be below recent_order_days (%d)",
			c.InactivityDays, c.RecentOrderDays)
	}
	if c.WarmLeadScore < 0 || c.HotLeadScore > 100 || c.WarmLeadScore >= c.HotLeadScore {
		return fmt.Errorf("lead banding requires 0 <= warm_lead_score < hot_lead_score <= 100, got warm=%d hot=%d",
			c.WarmLeadScore, c.HotLeadScore)
	}
	if c.HighRevenueCents <= 0 {
		return fmt.Errorf("high_revenue_cents must be positive, got %d", c.HighRevenueCents)
	}
	return nil
}
