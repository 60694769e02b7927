package cli

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/cadranlab/vitale/internal/insight"
)

func assertGoldenReport(t *testing.T, name string, report insight.Report) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(RenderReportText(report)))
}

func TestRenderReportText_StaleUser(t *testing.T) {
	report := insight.Report{
		Insights: []insight.Insight{
			{
				ID:          "account-active",
				Kind:        insight.KindSuccess,
				Title:       "Compte actif",
				Description: "Le compte est actif et peut se connecter normalement.",
			},
			{
				ID:          "password-stale",
				Kind:        insight.KindWarning,
				Title:       "Mot de passe ancien",
				Description: "Le mot de passe n'a pas été changé depuis 120 jours.",
			},
			{
				ID:          "2fa-missing",
				Kind:        insight.KindSuggestion,
				Title:       "Double authentification absente",
				Description: "Aucun second facteur n'est configuré pour ce compte.",
			},
		},
		Score: 65,
		Actions: []insight.SuggestedAction{
			{
				ID:          "enable-2fa",
				Title:       "Activer 2FA",
				Description: "La double authentification n'est pas activée sur ce compte.",
				Confidence:  90,
				ActionLabel: "Activer",
			},
			{
				ID:          "renew-password",
				Title:       "Renouveler mot de passe",
				Description: "Le mot de passe a 120 jours et devrait être renouvelé.",
				Confidence:  85,
				ActionLabel: "Demander le renouvellement",
			},
		},
	}

	assertGoldenReport(t, "stale_user_report", report)
}

func TestRenderReportText_Empty(t *testing.T) {
	report := insight.Report{
		Insights: []insight.Insight{},
		Score:    50,
		Actions:  []insight.SuggestedAction{},
	}

	assertGoldenReport(t, "empty_report", report)
}
