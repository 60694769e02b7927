package cli

import (
	"fmt"
	"strings"

	"github.com/cadranlab/vitale/internal/insight"
)

// kindMarker maps insight kinds to text-mode markers.
func kindMarker(k insight.Kind) string {
	switch k {
	case insight.KindSuccess:
		return "[+]"
	case insight.KindWarning:
		return "[!]"
	default:
		return "[?]"
	}
}

// RenderReportText formats a report for terminal display. Output is
// deterministic: sections and entries follow report order exactly.
func RenderReportText(report insight.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Score : %d/100\n", report.Score)

	b.WriteString("\nObservations :\n")
	if len(report.Insights) == 0 {
		b.WriteString("  (aucune)\n")
	}
	for _, in := range report.Insights {
		fmt.Fprintf(&b, "  %s %s\n", kindMarker(in.Kind), in.Title)
		fmt.Fprintf(&b, "      %s\n", in.Description)
	}

	b.WriteString("\nActions suggérées :\n")
	if len(report.Actions) == 0 {
		b.WriteString("  (aucune)\n")
	}
	for _, a := range report.Actions {
		fmt.Fprintf(&b, "  [%d%%] %s\n", a.Confidence, a.Title)
		fmt.Fprintf(&b, "      %s\n", a.Description)
		if a.ActionLabel != "" {
			fmt.Fprintf(&b, "      -> %s\n", a.ActionLabel)
		}
	}

	return b.String()
}
