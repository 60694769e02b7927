// Package crm instantiates the insight engine for CRM customer records:
// relationship classification, contact completeness, order recency,
// revenue, and pipeline state folded into classified observations, a
// 0-100 relationship score, and prioritized commercial suggestions.
//
// User-facing text is French, matching the back office this library
// serves. Rule IDs and code are English.
package crm

import (
	"fmt"

	"github.com/cadranlab/vitale/internal/insight"
)

// Kind is the entity kind label for customer snapshots, used for
// fingerprint domain separation and history records.
const Kind = "customer"

// Relationship classifies the commercial state of a customer record.
type Relationship string

const (
	// RelProspect is a lead not yet converted. Lead-score banding only
	// applies to prospects.
	RelProspect Relationship = "prospect"

	// RelActive is an established, ongoing commercial relationship.
	RelActive Relationship = "active"

	// RelChurned is a lost customer.
	RelChurned Relationship = "churned"
)

// Valid reports whether r is one of the three defined states.
func (r Relationship) Valid() bool {
	switch r {
	case RelProspect, RelActive, RelChurned:
		return true
	}
	return false
}

// CustomerSnapshot is the immutable projection of a customer record the
// relationship rules read.
//
// Every field is mandatory and resolved by the caller before analysis.
// Day counts are precomputed from timestamps so the engine never
// consults a clock; HasOrdered disambiguates "never ordered" from
// LastOrderDaysAgo being zero.
type CustomerSnapshot struct {
	// Relationship is the commercial state classification.
	Relationship Relationship

	// HasEmail reports whether an email address is on file.
	HasEmail bool

	// HasPhone reports whether a phone number is on file.
	HasPhone bool

	// RevenueCents is lifetime invoiced revenue in cents.
	RevenueCents int64

	// HasOrdered reports whether the customer has ever placed an order.
	// When false, LastOrderDaysAgo is ignored.
	HasOrdered bool

	// LastOrderDaysAgo is the age of the most recent order in whole
	// days. Meaningful only when HasOrdered is true.
	LastOrderDaysAgo int

	// LeadScore is the marketing lead score in [0,100]. Meaningful only
	// for prospects; ignored for other relationship states.
	LeadScore int

	// OpenOpportunities counts opportunities not yet won or lost.
	OpenOpportunities int

	// OpenPipelineCents is the summed amount of open opportunities.
	OpenPipelineCents int64
}

// Validate implements insight.Snapshot. The relationship state must be
// one of the defined values, counters must be non-negative, and the
// lead score must stay in its banding range.
func (c CustomerSnapshot) Validate() error {
	if !c.Relationship.Valid() {
		return insight.NewMalformedSnapshot("relationship",
			fmt.Sprintf("unknown state %q", string(c.Relationship)))
	}
	if c.RevenueCents < 0 {
		return insight.NewMalformedSnapshot("revenue_cents", "must not be negative")
	}
	if c.HasOrdered && c.LastOrderDaysAgo < 0 {
		return insight.NewMalformedSnapshot("last_order_days_ago", "must not be negative")
	}
	if c.LeadScore < 0 || c.LeadScore > 100 {
		return insight.NewMalformedSnapshot("lead_score",
			fmt.Sprintf("%d outside [0,100]", c.LeadScore))
	}
	if c.OpenOpportunities < 0 {
		return insight.NewMalformedSnapshot("open_opportunities", "must not be negative")
	}
	if c.OpenPipelineCents < 0 {
		return insight.NewMalformedSnapshot("open_pipeline_cents", "must not be negative")
	}
	return nil
}

// CanonicalMap implements insight.Snapshot. Keys are stable snake_case
// identifiers; the full field set participates so any change to the
// record changes the fingerprint.
func (c CustomerSnapshot) CanonicalMap() map[string]any {
	return map[string]any{
		"relationship":        string(c.Relationship),
		"has_email":           c.HasEmail,
		"has_phone":           c.HasPhone,
		"revenue_cents":       c.RevenueCents,
		"has_ordered":         c.HasOrdered,
		"last_order_days_ago": c.LastOrderDaysAgo,
		"lead_score":          c.LeadScore,
		"open_opportunities":  c.OpenOpportunities,
		"open_pipeline_cents": c.OpenPipelineCents,
	}
}
