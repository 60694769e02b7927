package cli

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cadranlab/vitale/internal/crm"
	"github.com/cadranlab/vitale/internal/security"
)

// dateLayout is the calendar-day format used in snapshot files and the
// --as-of flag.
const dateLayout = "2006-01-02"

// userFile is the YAML shape of a user snapshot file. Dates are
// resolved to day counts against the as-of date before analysis so the
// engine never consults a clock.
//
// Exactly one of password_changed_at and password_age_days must be set.
type userFile struct {
	TwoFactorEnabled   bool   `yaml:"two_factor_enabled"`
	MustChangePassword bool   `yaml:"must_change_password"`
	PasswordChangedAt  string `yaml:"password_changed_at,omitempty"`
	PasswordAgeDays    *int   `yaml:"password_age_days,omitempty"`
	FailedLogins       int    `yaml:"failed_logins"`
	Active             bool   `yaml:"active"`
	Locked             bool   `yaml:"locked"`
	LoginCount         int    `yaml:"login_count"`
}

// customerFile is the YAML shape of a customer snapshot file. Contact
// fields hold raw values (an address, a number); analysis only cares
// about presence. An empty last_order_at means the customer never
// ordered.
type customerFile struct {
	Relationship      string `yaml:"relationship"`
	Email             string `yaml:"email,omitempty"`
	Phone             string `yaml:"phone,omitempty"`
	RevenueCents      int64  `yaml:"revenue_cents"`
	LastOrderAt       string `yaml:"last_order_at,omitempty"`
	LeadScore         int    `yaml:"lead_score"`
	OpenOpportunities int    `yaml:"open_opportunities"`
	OpenPipelineCents int64  `yaml:"open_pipeline_cents"`
}

// LoadUserSnapshot reads and resolves a user snapshot file.
// Unknown YAML fields are rejected to catch typos in field names.
func LoadUserSnapshot(path string, asOf time.Time) (security.UserSnapshot, error) {
	var file userFile
	if err := decodeStrict(path, &file); err != nil {
		return security.UserSnapshot{}, err
	}

	var ageDays int
	switch {
	case file.PasswordChangedAt != "" && file.PasswordAgeDays != nil:
		return security.UserSnapshot{}, fmt.Errorf(
			"%s: password_changed_at and password_age_days are mutually exclusive", path)
	case file.PasswordChangedAt != "":
		days, err := daysSince(file.PasswordChangedAt, asOf)
		if err != nil {
			return security.UserSnapshot{}, fmt.Errorf("%s: password_changed_at: %w", path, err)
		}
		ageDays = days
	case file.PasswordAgeDays != nil:
		ageDays = *file.PasswordAgeDays
	default:
		return security.UserSnapshot{}, fmt.Errorf(
			"%s: one of password_changed_at or password_age_days is required", path)
	}

	return security.UserSnapshot{
		TwoFactorEnabled:   file.TwoFactorEnabled,
		MustChangePassword: file.MustChangePassword,
		PasswordAgeDays:    ageDays,
		FailedLogins:       file.FailedLogins,
		Active:             file.Active,
		Locked:             file.Locked,
		LoginCount:         file.LoginCount,
	}, nil
}

// LoadCustomerSnapshot reads and resolves a customer snapshot file.
// Unknown YAML fields are rejected to catch typos in field names.
func LoadCustomerSnapshot(path string, asOf time.Time) (crm.CustomerSnapshot, error) {
	var file customerFile
	if err := decodeStrict(path, &file); err != nil {
		return crm.CustomerSnapshot{}, err
	}

	snap := crm.CustomerSnapshot{
		Relationship:      crm.Relationship(file.Relationship),
		HasEmail:          file.Email != "",
		HasPhone:          file.Phone != "",
		RevenueCents:      file.RevenueCents,
		LeadScore:         file.LeadScore,
		OpenOpportunities: file.OpenOpportunities,
		OpenPipelineCents: file.OpenPipelineCents,
	}

	if file.LastOrderAt != "" {
		days, err := daysSince(file.LastOrderAt, asOf)
		if err != nil {
			return crm.CustomerSnapshot{}, fmt.Errorf("%s: last_order_at: %w", path, err)
		}
		snap.HasOrdered = true
		snap.LastOrderDaysAgo = days
	}

	return snap, nil
}

// decodeStrict decodes a YAML file with unknown fields rejected.
func decodeStrict(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// daysSince computes whole days between a calendar date and the as-of
// date. The date must not lie in the future.
func daysSince(date string, asOf time.Time) (int, error) {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return 0, fmt.Errorf("want %s date: %w", dateLayout, err)
	}

	days := int(asOf.Truncate(24*time.Hour).Sub(t.Truncate(24*time.Hour)).Hours() / 24)
	if days < 0 {
		return 0, fmt.Errorf("date %s is after the as-of date %s", date, asOf.Format(dateLayout))
	}
	return days, nil
}
