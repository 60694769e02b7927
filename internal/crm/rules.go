package crm

import (
	"fmt"

	"github.com/cadranlab/vitale/internal/insight"
	"github.com/cadranlab/vitale/internal/tuning"
)

// defaultAnalyzer serves package-level Analyze calls with the reference
// tuning. Built once at load; safe for concurrent use.
var defaultAnalyzer = MustAnalyzer(tuning.Default().Customer)

// Analyze runs the customer-relationship analysis with the reference
// tuning.
func Analyze(c CustomerSnapshot) (insight.Report, error) {
	return defaultAnalyzer.Analyze(c)
}

// MustAnalyzer is like NewAnalyzer but panics on error.
func MustAnalyzer(tun tuning.Customer) *insight.Analyzer[CustomerSnapshot] {
	a, err := NewAnalyzer(tun)
	if err != nil {
		panic(err)
	}
	return a
}

// NewAnalyzer builds the customer-relationship analyzer for a tuning
// profile.
//
// Registration order is fixed and meaningful: insight order is display
// order, and action order encodes priority (most urgent first, the
// "nothing to do" terminal rule last).
func NewAnalyzer(tun tuning.Customer) (*insight.Analyzer[CustomerSnapshot], error) {
	if err := tun.Validate(); err != nil {
		return nil, fmt.Errorf("customer tuning: %w", err)
	}

	rules, err := insight.NewRuleSet(insightRules(tun)...)
	if err != nil {
		return nil, err
	}
	actions, err := insight.NewActionSet(actionRules(tun)...)
	if err != nil {
		return nil, err
	}
	scorecard, err := insight.NewScorecard(tun.Baseline, adjustments(tun)...)
	if err != nil {
		return nil, err
	}

	return insight.NewAnalyzer(rules, actions, scorecard)
}

// insightRules returns the insight rules in registration order.
// Relationship state first, then contact completeness, order recency,
// lead banding, and finally pipeline and revenue observations.
func insightRules(tun tuning.Customer) []insight.Rule[CustomerSnapshot] {
	return []insight.Rule[CustomerSnapshot]{
		{
			ID: "relationship-active",
			Eval: func(c CustomerSnapshot) *insight.Insight {
				if c.Relationship != RelActive {
					return nil
				}
				return &insight.Insight{
					ID:          "relationship-active",
					Kind:        insight.KindSuccess,
					Title:       "Client actif",
					Description: "La relation commerciale est active.",
				}
			},
		},
		{
			ID: "relationship-prospect",
			Eval: func(c CustomerSnapshot) *insight.Insight {
				if c.Relationship != RelProspect {
					return nil
				}
				return &insight.Insight{
					ID:          "relationship-prospect",
					Kind:        insight.KindSuggestion,
					Title:       "Prospect",
					Description: "Ce contact n'est pas encore client.",
				}
			},
		},
		{
			ID: "relationship-churned",
			Eval: func(c CustomerSnapshot) *insight.Insight {
				if c.Relationship != RelChurned {
					return nil
				}
				return &insight.Insight{
					ID:          "relationship-churned",
					Kind:        insight.KindWarning,
					Title:       "Client perdu",
					Description: "La relation commerciale est terminée.",
				}
			},
		},
		{
			ID: "contact-complete",
			Eval: func(c CustomerSnapshot) *insight.Insight {
				if !c.HasEmail || !c.HasPhone {
					return nil
				}
				return &insight.Insight{
					ID:          "contact-complete",
					Kind:        insight.KindSuccess,
					Title:       "Coordonnées complètes",
					Description: "Email et téléphone sont renseignés.",
				}
			},
		},
		{
			ID: "email-missing",
			Eval: func(c CustomerSnapshot) *insight.Insight {
				if c.HasEmail {
					return nil
				}
				return &insight.Insight{
					ID:          "email-missing",
					Kind:        insight.KindWarning,
					Title:       "Email manquant",
					Description: "Aucune adresse email n'est renseignée.",
				}
			},
		},
		{
			ID: "phone-missing",
			Eval: func(c CustomerSnapshot) *insight.Insight {
				if c.HasPhone {
					return nil
				}
				return &insight.Insight{
					ID:          "phone-missing",
					Kind:        insight.KindWarning,
					Title:       "Téléphone manquant",
					Description: "Aucun numéro de téléphone n'est renseigné.",
				}
			},
		},
		{
			ID: "recent-order",
			Eval: func(c CustomerSnapshot) *insight.Insight {
				if !c.HasOrdered || c.LastOrderDaysAgo > tun.RecentOrderDays {
					return nil
				}
				return &insight.Insight{
					ID:          "recent-order",
					Kind:        insight.KindSuccess,
					Title:       "Commande récente",
					Description: fmt.Sprintf("Dernière commande il y a %d jours.", c.LastOrderDaysAgo),
				}
			},
		},
		{
			ID: "inactive-customer",
			Eval: func(c CustomerSnapshot) *insight.Insight {
				// Strictly more than the threshold: a customer whose last
				// order is exactly InactivityDays old is not yet inactive.
				if !c.HasOrdered || c.LastOrderDaysAgo <= tun.InactivityDays {
					return nil
				}
				return &insight.Insight{
					ID:          "inactive-customer",
					Kind:        insight.KindWarning,
					Title:       "Client inactif",
					Description: fmt.Sprintf("Aucune commande depuis %d jours.", c.LastOrderDaysAgo),
				}
			},
		},
		{
			ID: "never-ordered",
			Eval: func(c CustomerSnapshot) *insight.Insight {
				if c.HasOrdered || c.Relationship == RelProspect {
					return nil
				}
				return &insight.Insight{
					ID:          "never-ordered",
					Kind:        insight.KindSuggestion,
					Title:       "Aucune commande",
					Description: "Ce client n'a jamais passé de commande.",
				}
			},
		},
		{
			ID: "hot-lead",
			Eval: func(c CustomerSnapshot) *insight.Insight {
				if c.Relationship != RelProspect || c.LeadScore < tun.HotLeadScore {
					return nil
				}
				return &insight.Insight{
					ID:          "hot-lead",
					Kind:        insight.KindSuccess,
					Title:       "Prospect chaud",
					Description: fmt.Sprintf("Score de qualification : %d.", c.LeadScore),
				}
			},
		},
		{
			ID: "warm-lead",
			Eval: func(c CustomerSnapshot) *insight.Insight {
				if c.Relationship != RelProspect ||
					c.LeadScore < tun.WarmLeadScore || c.LeadScore >= tun.HotLeadScore {
					return nil
				}
				return &insight.Insight{
					ID:          "warm-lead",
					Kind:        insight.KindSuggestion,
					Title:       "Prospect tiède",
					Description: fmt.Sprintf("Score de qualification : %d.", c.LeadScore),
				}
			},
		},
		{
			ID: "cold-lead",
			Eval: func(c CustomerSnapshot) *insight.Insight {
				if c.Relationship != RelProspect || c.LeadScore >= tun.WarmLeadScore {
					return nil
				}
				return &insight.Insight{
					ID:          "cold-lead",
					Kind:        insight.KindSuggestion,
					Title:       "Prospect froid",
					Description: fmt.Sprintf("Score de qualification : %d.", c.LeadScore),
				}
			},
		},
		{
			ID: "open-pipeline",
			Eval: func(c CustomerSnapshot) *insight.Insight {
				if c.OpenOpportunities == 0 {
					return nil
				}
				return &insight.Insight{
					ID:          "open-pipeline",
					Kind:        insight.KindSuccess,
					Title:       "Opportunités en cours",
					Description: fmt.Sprintf("%d opportunité(s) ouverte(s) pour %d centimes.", c.OpenOpportunities, c.OpenPipelineCents),
				}
			},
		},
		{
			ID: "high-revenue",
			Eval: func(c CustomerSnapshot) *insight.Insight {
				if c.RevenueCents < tun.HighRevenueCents {
					return nil
				}
				return &insight.Insight{
					ID:          "high-revenue",
					Kind:        insight.KindSuccess,
					Title:       "Chiffre d'affaires élevé",
					Description: "Le chiffre d'affaires cumulé dépasse le seuil de référence.",
				}
			},
		},
	}
}

// adjustments returns the score adjustments in declared order. Each is
// gated on a boolean or tiered condition; magnitudes come from tuning.
func adjustments(tun tuning.Customer) []insight.Adjustment[CustomerSnapshot] {
	return []insight.Adjustment[CustomerSnapshot]{
		{
			ID: "relationship",
			Delta: func(c CustomerSnapshot) int {
				switch c.Relationship {
				case RelActive:
					return tun.ActiveBonus
				case RelChurned:
					return -tun.ChurnedMalus
				default:
					return 0
				}
			},
		},
		{
			ID: "email",
			Delta: func(c CustomerSnapshot) int {
				if c.HasEmail {
					return tun.EmailBonus
				}
				return 0
			},
		},
		{
			ID: "phone",
			Delta: func(c CustomerSnapshot) int {
				if c.HasPhone {
					return tun.PhoneBonus
				}
				return 0
			},
		},
		{
			ID: "order-recency",
			Delta: func(c CustomerSnapshot) int {
				switch {
				case c.HasOrdered && c.LastOrderDaysAgo <= tun.RecentOrderDays:
					return tun.RecentOrderBonus
				case !c.HasOrdered || c.LastOrderDaysAgo > tun.InactivityDays:
					return -tun.InactivityMalus
				default:
					return 0
				}
			},
		},
		{
			ID: "revenue",
			Delta: func(c CustomerSnapshot) int {
				if c.RevenueCents >= tun.HighRevenueCents {
					return tun.RevenueBonus
				}
				return 0
			},
		},
		{
			ID: "pipeline",
			Delta: func(c CustomerSnapshot) int {
				if c.OpenOpportunities > 0 {
					return tun.PipelineBonus
				}
				return 0
			},
		},
		{
			ID: "hot-lead",
			Delta: func(c CustomerSnapshot) int {
				if c.Relationship == RelProspect && c.LeadScore >= tun.HotLeadScore {
					return tun.HotLeadBonus
				}
				return 0
			},
		},
	}
}

// actionRules returns the action rules in priority order: win-back
// first, the healthy-relationship terminal rule last.
func actionRules(tun tuning.Customer) []insight.ActionRule[CustomerSnapshot] {
	healthy := func(c CustomerSnapshot) bool {
		return c.Relationship == RelActive &&
			c.HasEmail &&
			c.HasPhone &&
			c.HasOrdered &&
			c.LastOrderDaysAgo <= tun.InactivityDays
	}

	return []insight.ActionRule[CustomerSnapshot]{
		{
			ID: "winback-churned",
			Eval: func(c CustomerSnapshot) *insight.SuggestedAction {
				if c.Relationship != RelChurned {
					return nil
				}
				return &insight.SuggestedAction{
					ID:          "winback-churned",
					Title:       "Relancer le client perdu",
					Description: "La relation est terminée, une campagne de reconquête peut être tentée.",
					Confidence:  90,
					ActionLabel: "Planifier une relance",
				}
			},
		},
		{
			ID: "complete-contact",
			Eval: func(c CustomerSnapshot) *insight.SuggestedAction {
				if c.HasEmail && c.HasPhone {
					return nil
				}
				return &insight.SuggestedAction{
					ID:          "complete-contact",
					Title:       "Compléter les coordonnées",
					Description: "Email ou téléphone manquant sur la fiche client.",
					Confidence:  85,
					ActionLabel: "Compléter la fiche",
				}
			},
		},
		{
			ID: "reengage-inactive",
			Eval: func(c CustomerSnapshot) *insight.SuggestedAction {
				if !c.HasOrdered || c.LastOrderDaysAgo <= tun.InactivityDays {
					return nil
				}
				return &insight.SuggestedAction{
					ID:          "reengage-inactive",
					Title:       "Relancer le client inactif",
					Description: fmt.Sprintf("Aucune commande depuis %d jours.", c.LastOrderDaysAgo),
					Confidence:  80,
					ActionLabel: "Relancer",
				}
			},
		},
		{
			ID: "contact-hot-lead",
			Eval: func(c CustomerSnapshot) *insight.SuggestedAction {
				if c.Relationship != RelProspect || c.LeadScore < tun.HotLeadScore {
					return nil
				}
				return &insight.SuggestedAction{
					ID:          "contact-hot-lead",
					Title:       "Contacter le prospect chaud",
					Description: fmt.Sprintf("Score de qualification : %d. Le prospect est prêt à être contacté.", c.LeadScore),
					Confidence:  85,
					ActionLabel: "Appeler",
				}
			},
		},
		{
			ID: "advance-pipeline",
			Eval: func(c CustomerSnapshot) *insight.SuggestedAction {
				if c.OpenOpportunities == 0 {
					return nil
				}
				return &insight.SuggestedAction{
					ID:          "advance-pipeline",
					Title:       "Faire avancer les opportunités",
					Description: fmt.Sprintf("%d opportunité(s) en attente de décision.", c.OpenOpportunities),
					Confidence:  75,
					ActionLabel: "Ouvrir le pipeline",
				}
			},
		},
		{
			ID: "cross-sell",
			Eval: func(c CustomerSnapshot) *insight.SuggestedAction {
				if c.Relationship != RelActive ||
					c.RevenueCents < tun.HighRevenueCents ||
					c.OpenOpportunities != 0 {
					return nil
				}
				return &insight.SuggestedAction{
					ID:          "cross-sell",
					Title:       "Proposer une vente additionnelle",
					Description: "Client à fort chiffre d'affaires sans opportunité ouverte.",
					Confidence:  60,
					ActionLabel: "Créer une opportunité",
				}
			},
		},
		{
			ID: "all-clear",
			Eval: func(c CustomerSnapshot) *insight.SuggestedAction {
				if !healthy(c) {
					return nil
				}
				return &insight.SuggestedAction{
					ID:          "all-clear",
					Title:       "Relation saine",
					Description: "La fiche est complète et la relation commerciale est active.",
					Confidence:  100,
				}
			},
		},
	}
}
