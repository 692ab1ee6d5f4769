package reporter

import (
	"fmt"
	"strings"

	"github.com/aretw0/grove/internal/presentation/tui"
	"github.com/aretw0/grove/pkg/domain"
)

// Summary renders the failures of report as a markdown document.
// A passing report yields a single line.
func Summary(report *domain.Report) string {
	var sb strings.Builder
	c := report.Counts()

	if report.OK() {
		fmt.Fprintf(&sb, "**All %d examples passed** (%d pending)\n", len(report.Results), c[domain.StatusPending])
		return sb.String()
	}

	sb.WriteString("# Failures\n\n")
	sb.WriteString("| # | Example | Status | Rerun |\n|---|---|---|---|\n")
	for i, res := range report.Failures() {
		fmt.Fprintf(&sb, "| %d | %s | %s | `%s` |\n", i+1, escapeCell(res.FullDescription), res.Status, res.Address)
	}

	for i, res := range report.Failures() {
		fmt.Fprintf(&sb, "\n## %d) %s\n\n", i+1, res.FullDescription)
		fmt.Fprintf(&sb, "Declared at `%s`.\n\n", res.Location)
		fmt.Fprintf(&sb, "```\n%s\n```\n", res.Failure)
	}

	if len(report.ContextFailures) > 0 {
		sb.WriteString("\n# Context failures\n\n")
		for _, f := range report.ContextFailures {
			fmt.Fprintf(&sb, "- `%s` **%s** %s hook: %s\n", f.Address, f.Description, f.Hook, oneLine(f.Failure))
		}
	}

	fmt.Fprintf(&sb, "\n%d examples: %d passed, %d failed, %d errored, %d timed out, %d pending.\n",
		len(report.Results), c[domain.StatusPassed], c[domain.StatusFailed], c[domain.StatusErrored],
		c[domain.StatusTimedOut], c[domain.StatusPending])
	if report.Randomized() {
		fmt.Fprintf(&sb, "Randomized with seed `%d`.\n", report.Seed)
	}
	return sb.String()
}

// RenderSummary renders Summary(report) for a terminal of the given width.
func RenderSummary(report *domain.Report, width int) (string, error) {
	return tui.NewRenderer(width)(Summary(report))
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
