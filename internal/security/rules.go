package security

import (
	"fmt"

	"github.com/cadranlab/vitale/internal/insight"
	"github.com/cadranlab/vitale/internal/tuning"
)

// defaultAnalyzer serves package-level Analyze calls with the reference
// tuning. Built once at load; safe for concurrent use.
var defaultAnalyzer = MustAnalyzer(tuning.Default().User)

// Analyze runs the user-security analysis with the reference tuning.
func Analyze(u UserSnapshot) (insight.Report, error) {
	return defaultAnalyzer.Analyze(u)
}

// MustAnalyzer is like NewAnalyzer but panics on error.
func MustAnalyzer(tun tuning.User) *insight.Analyzer[UserSnapshot] {
	a, err := NewAnalyzer(tun)
	if err != nil {
		panic(err)
	}
	return a
}

// NewAnalyzer builds the user-security analyzer for a tuning profile.
//
// Registration order is fixed and meaningful: insight order is display
// order, and action order encodes priority (most urgent first, the
// "nothing to do" terminal rule last).
func NewAnalyzer(tun tuning.User) (*insight.Analyzer[UserSnapshot], error) {
	if err := tun.Validate(); err != nil {
		return nil, fmt.Errorf("user tuning: %w", err)
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
// Account status first, then credential posture, then login activity.
func insightRules(tun tuning.User) []insight.Rule[UserSnapshot] {
	return []insight.Rule[UserSnapshot]{
		{
			ID: "account-active",
			Eval: func(u UserSnapshot) *insight.Insight {
				if !u.Active || u.Locked {
					return nil
				}
				return &insight.Insight{
					ID:          "account-active",
					Kind:        insight.KindSuccess,
					Title:       "Compte actif",
					Description: "Le compte est actif et peut se connecter normalement.",
				}
			},
		},
		{
			ID: "account-locked",
			Eval: func(u UserSnapshot) *insight.Insight {
				if !u.Locked {
					return nil
				}
				return &insight.Insight{
					ID:          "account-locked",
					Kind:        insight.KindWarning,
					Title:       "Compte verrouillé",
					Description: "Le compte est verrouillé et refuse toute connexion.",
				}
			},
		},
		{
			ID: "account-inactive",
			Eval: func(u UserSnapshot) *insight.Insight {
				if u.Active || u.Locked {
					return nil
				}
				return &insight.Insight{
					ID:          "account-inactive",
					Kind:        insight.KindWarning,
					Title:       "Compte inactif",
					Description: "Le compte est désactivé.",
				}
			},
		},
		{
			ID: "2fa-enabled",
			Eval: func(u UserSnapshot) *insight.Insight {
				if !u.TwoFactorEnabled {
					return nil
				}
				return &insight.Insight{
					ID:          "2fa-enabled",
					Kind:        insight.KindSuccess,
					Title:       "Double authentification activée",
					Description: "Un second facteur protège l'accès au compte.",
				}
			},
		},
		{
			ID: "2fa-missing",
			Eval: func(u UserSnapshot) *insight.Insight {
				if u.TwoFactorEnabled {
					return nil
				}
				return &insight.Insight{
					ID:          "2fa-missing",
					Kind:        insight.KindSuggestion,
					Title:       "Double authentification absente",
					Description: "Aucun second facteur n'est configuré pour ce compte.",
				}
			},
		},
		{
			ID: "password-recent",
			Eval: func(u UserSnapshot) *insight.Insight {
				if u.PasswordAgeDays > tun.FreshPasswordDays {
					return nil
				}
				return &insight.Insight{
					ID:          "password-recent",
					Kind:        insight.KindSuccess,
					Title:       "Mot de passe récent",
					Description: fmt.Sprintf("Le mot de passe a été changé il y a %d jours.", u.PasswordAgeDays),
				}
			},
		},
		{
			ID: "password-stale",
			Eval: func(u UserSnapshot) *insight.Insight {
				if u.PasswordAgeDays <= tun.StalePasswordDays {
					return nil
				}
				return &insight.Insight{
					ID:          "password-stale",
					Kind:        insight.KindWarning,
					Title:       "Mot de passe ancien",
					Description: fmt.Sprintf("Le mot de passe n'a pas été changé depuis %d jours.", u.PasswordAgeDays),
				}
			},
		},
		{
			ID: "password-change-required",
			Eval: func(u UserSnapshot) *insight.Insight {
				if !u.MustChangePassword {
					return nil
				}
				return &insight.Insight{
					ID:          "password-change-required",
					Kind:        insight.KindWarning,
					Title:       "Changement de mot de passe requis",
					Description: "Un changement de mot de passe est exigé à la prochaine connexion.",
				}
			},
		},
		{
			ID: "zero-failures",
			Eval: func(u UserSnapshot) *insight.Insight {
				if u.FailedLogins != 0 {
					return nil
				}
				return &insight.Insight{
					ID:          "zero-failures",
					Kind:        insight.KindSuccess,
					Title:       "Aucun échec de connexion",
					Description: "Aucune tentative de connexion échouée n'est enregistrée.",
				}
			},
		},
		{
			ID: "some-failures",
			Eval: func(u UserSnapshot) *insight.Insight {
				if u.FailedLogins < 1 || u.FailedLogins > tun.FailureAlertThreshold {
					return nil
				}
				return &insight.Insight{
					ID:          "some-failures",
					Kind:        insight.KindSuggestion,
					Title:       "Échecs de connexion",
					Description: fmt.Sprintf("Nombre de connexions échouées : %d.", u.FailedLogins),
				}
			},
		},
		{
			ID: "many-failures",
			Eval: func(u UserSnapshot) *insight.Insight {
				if u.FailedLogins <= tun.FailureAlertThreshold {
					return nil
				}
				return &insight.Insight{
					ID:          "many-failures",
					Kind:        insight.KindWarning,
					Title:       "Échecs de connexion répétés",
					Description: fmt.Sprintf("Nombre de connexions échouées : %d. Une attaque par force brute est possible.", u.FailedLogins),
				}
			},
		},
		{
			ID: "never-logged-in",
			Eval: func(u UserSnapshot) *insight.Insight {
				if u.LoginCount != 0 {
					return nil
				}
				return &insight.Insight{
					ID:          "never-logged-in",
					Kind:        insight.KindSuggestion,
					Title:       "Aucune connexion",
					Description: "Ce compte n'a jamais ouvert de session.",
				}
			},
		},
	}
}

// adjustments returns the score adjustments in declared order. Each is
// gated on a boolean or tiered condition; magnitudes come from tuning.
func adjustments(tun tuning.User) []insight.Adjustment[UserSnapshot] {
	return []insight.Adjustment[UserSnapshot]{
		{
			ID: "two-factor",
			Delta: func(u UserSnapshot) int {
				if u.TwoFactorEnabled {
					return tun.TwoFactorBonus
				}
				return 0
			},
		},
		{
			ID: "password-age",
			Delta: func(u UserSnapshot) int {
				switch {
				case u.PasswordAgeDays <= tun.FreshPasswordDays:
					return tun.FreshPasswordBonus
				case u.PasswordAgeDays > tun.StalePasswordDays:
					return -tun.StalePasswordMalus
				default:
					return 0
				}
			},
		},
		{
			ID: "account-status",
			Delta: func(u UserSnapshot) int {
				switch {
				case u.Locked:
					return -tun.LockedMalus
				case u.Active:
					return tun.ActiveBonus
				default:
					return 0
				}
			},
		},
		{
			ID: "failed-logins",
			Delta: func(u UserSnapshot) int {
				switch {
				case u.FailedLogins == 0:
					return tun.CleanLoginBonus
				case u.FailedLogins > tun.FailureAlertThreshold:
					return -tun.FailureMalus
				default:
					return 0
				}
			},
		},
		{
			ID: "forced-change",
			Delta: func(u UserSnapshot) int {
				if u.MustChangePassword {
					return -tun.ForcedChangeMalus
				}
				return tun.NoForcedChangeBonus
			},
		},
	}
}

// actionRules returns the action rules in priority order: forced change
// first, the compliant terminal rule last. The terminal rule's guard is
// the conjunction of all the other guards failing, so a fully compliant
// account gets exactly one suggestion.
func actionRules(tun tuning.User) []insight.ActionRule[UserSnapshot] {
	compliant := func(u UserSnapshot) bool {
		return u.Active &&
			!u.Locked &&
			u.TwoFactorEnabled &&
			!u.MustChangePassword &&
			u.PasswordAgeDays <= tun.StalePasswordDays &&
			u.FailedLogins <= tun.FailureAlertThreshold
	}

	return []insight.ActionRule[UserSnapshot]{
		{
			ID: "force-password-change",
			Eval: func(u UserSnapshot) *insight.SuggestedAction {
				if !u.MustChangePassword {
					return nil
				}
				return &insight.SuggestedAction{
					ID:          "force-password-change",
					Title:       "Forcer changement MDP",
					Description: "Un changement de mot de passe est exigé mais n'a pas encore été effectué.",
					Confidence:  95,
					ActionLabel: "Envoyer un rappel",
				}
			},
		},
		{
			ID: "enable-2fa",
			Eval: func(u UserSnapshot) *insight.SuggestedAction {
				if u.TwoFactorEnabled {
					return nil
				}
				return &insight.SuggestedAction{
					ID:          "enable-2fa",
					Title:       "Activer 2FA",
					Description: "La double authentification n'est pas activée sur ce compte.",
					Confidence:  90,
					ActionLabel: "Activer",
				}
			},
		},
		{
			ID: "renew-password",
			Eval: func(u UserSnapshot) *insight.SuggestedAction {
				if u.PasswordAgeDays <= tun.StalePasswordDays {
					return nil
				}
				return &insight.SuggestedAction{
					ID:          "renew-password",
					Title:       "Renouveler mot de passe",
					Description: fmt.Sprintf("Le mot de passe a %d jours et devrait être renouvelé.", u.PasswordAgeDays),
					Confidence:  85,
					ActionLabel: "Demander le renouvellement",
				}
			},
		},
		{
			ID: "unlock-account",
			Eval: func(u UserSnapshot) *insight.SuggestedAction {
				if !u.Locked {
					return nil
				}
				return &insight.SuggestedAction{
					ID:          "unlock-account",
					Title:       "Débloquer le compte",
					Description: "Le compte est verrouillé, vérifier la cause avant de le débloquer.",
					Confidence:  80,
					ActionLabel: "Débloquer",
				}
			},
		},
		{
			ID: "review-failures",
			Eval: func(u UserSnapshot) *insight.SuggestedAction {
				if u.FailedLogins <= tun.FailureAlertThreshold {
					return nil
				}
				return &insight.SuggestedAction{
					ID:          "review-failures",
					Title:       "Examiner les échecs de connexion",
					Description: fmt.Sprintf("Nombre de connexions échouées : %d. Vérifier l'origine des tentatives.", u.FailedLogins),
					Confidence:  75,
				}
			},
		},
		{
			ID: "reactivate-account",
			Eval: func(u UserSnapshot) *insight.SuggestedAction {
				if u.Active || u.Locked {
					return nil
				}
				return &insight.SuggestedAction{
					ID:          "reactivate-account",
					Title:       "Réactiver le compte",
					Description: "Le compte est désactivé, le réactiver s'il est encore utilisé.",
					Confidence:  70,
					ActionLabel: "Réactiver",
				}
			},
		},
		{
			ID: "all-clear",
			Eval: func(u UserSnapshot) *insight.SuggestedAction {
				if !compliant(u) {
					return nil
				}
				return &insight.SuggestedAction{
					ID:          "all-clear",
					Title:       "Aucune action requise",
					Description: "Le compte respecte toutes les règles de sécurité.",
					Confidence:  100,
				}
			},
		},
	}
}
