package analysis

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

const (
	rule             = "======================================================================"
	gapsPerSeverity  = 3
	maxOpportunities = 5
)

// FactSheet renders the report as a plain-text sheet meant for a
// terminal or an MCP text result.
func FactSheet(r *Report) string {
	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	line("%s", rule)
	line("  FACT SHEET: %s", r.ProjectName)
	line("%s", rule)
	line("")

	line("## PROGRESS")
	line("  Chapters: %d/%d (%.1f%%)", r.ChaptersWritten, r.ChaptersPlanned, r.CompletionPercent)
	line("  Scenes: %d", r.SceneCount)
	line("")

	line("## CHARACTERS (%d)", r.CharacterCount)
	type appearance struct {
		name  string
		count int
	}
	apps := make([]appearance, 0, len(r.CharacterAppearances))
	for name, n := range r.CharacterAppearances {
		apps = append(apps, appearance{name, n})
	}
	slices.SortFunc(apps, func(a, b appearance) int {
		return cmp.Or(b.count-a.count, strings.Compare(a.name, b.name))
	})
	for _, a := range apps {
		status := "needs work"
		if slices.Contains(r.CharactersWithArcs, a.name) {
			status = "developed"
		}
		line("  - %s: %d scenes [%s]", a.name, a.count, status)
	}
	line("")

	line("## CALLBACKS & FORESHADOWING")
	line("  Planted: %d", r.CallbacksPlanted)
	line("  Paid Off: %d", r.CallbacksPaidOff)
	if len(r.CallbacksPending) > 0 {
		line("  Pending:")
		for _, cb := range r.CallbacksPending {
			line("    [%s] %s (Ch%d)", strings.ToUpper(string(cb.Importance)), cb.Name, cb.SetupChapter)
			line("      %s", truncate(cb.SetupDescription, 60))
		}
	}
	line("")

	if len(r.Themes) > 0 {
		line("## THEMES")
		for _, t := range r.Themes {
			line("  - %s", t)
		}
		line("")
	}

	if len(r.Symbols) > 0 {
		line("## SYMBOLS")
		symbols := make([]string, 0, len(r.Symbols))
		for s := range r.Symbols {
			symbols = append(symbols, s)
		}
		slices.Sort(symbols)
		for _, s := range symbols {
			line("  %s: %s", s, truncate(r.Symbols[s], 50))
		}
		line("")
	}

	if len(r.Gaps) > 0 {
		line("## GAPS & ISSUES")
		for _, sev := range Severities {
			gaps := r.GapsWithSeverity(sev)
			if len(gaps) == 0 {
				continue
			}
			line("  [%s]", strings.ToUpper(sev.String()))
			for _, g := range gaps[:min(gapsPerSeverity, len(gaps))] {
				line("    - %s", g.Description)
				line("      Fix: %s", g.Suggestion)
			}
		}
		line("")
	}

	if len(r.Warnings) > 0 {
		line("## REFERENCE WARNINGS (%d)", len(r.Warnings))
		for _, w := range r.Warnings {
			line("  - %s", w)
		}
		line("")
	}

	if len(r.Opportunities) > 0 {
		line("## FUTURE OPPORTUNITIES (for later books)")
		for _, o := range r.Opportunities[:min(maxOpportunities, len(r.Opportunities))] {
			line("  [%s] %s", o.Category, o.Description)
			line("    Payoff idea: %s", o.PotentialPayoff)
		}
		line("")
	}

	line("## WHAT'S NEXT (prioritized)")
	for _, a := range r.NextActions {
		line("  %d. [%s] %s", a.Priority, strings.ToUpper(a.Category), a.Action)
		line("     Why: %s", a.Reason)
		if !strings.HasPrefix(a.Command, "#") {
			line("     Run: %s", a.Command)
		}
	}
	line("")
	line("%s", rule)

	return b.String()
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
