package analysis

import (
	"fmt"
	"slices"

	"github.com/HendryAvila/storycodex/internal/codex"
)

// nextActions assembles recommendations by fixed precedence:
//
//  1. critical gaps (at most 2)
//  2. write the next chapter, while the book is incomplete
//  3. the most important pending callback, whatever its importance
//  4. high gaps (at most 2)
//  5. the first character without relationships
//
// A finished book gets a consistency review at priority 1 ahead of
// everything else. The list is ordered by priority and capped at
// MaxNextActions.
func nextActions(in input, gaps []Gap, cbs callbackSummary, completion float64) []NextAction {
	var actions []NextAction
	priority := 1
	add := func(a NextAction) {
		a.Priority = priority
		actions = append(actions, a)
		priority++
	}

	critical := filterSeverity(gaps, SeverityCritical)
	for _, g := range critical[:min(2, len(critical))] {
		add(NextAction{
			Action:   "Fix: " + g.Description,
			Reason:   fmt.Sprintf("Critical issue in %s", g.Category),
			Command:  "# " + g.Suggestion,
			Category: "fix",
		})
	}

	if completion < 100 {
		next := in.nextChapter()
		remaining := max(in.planned-len(in.written), 0)
		add(NextAction{
			Action:   fmt.Sprintf("Write Chapter %d", next),
			Reason:   fmt.Sprintf("%d chapters remaining (%.0f%% complete)", remaining, completion),
			Command:  fmt.Sprintf("codex_scene_context chapter=%d scene=1", next),
			Category: "writing",
		})
	}

	if cb, ok := mostImportantPending(cbs.pending); ok {
		add(NextAction{
			Action:   "Address callback: " + cb.Name,
			Reason:   fmt.Sprintf("%s foreshadowing from Ch%d needs payoff", cb.Importance, cb.SetupChapter),
			Command:  fmt.Sprintf("codex_update_callback id=%s", cb.ID),
			Category: "planning",
		})
	}

	high := filterSeverity(gaps, SeverityHigh)
	for _, g := range high[:min(2, len(high))] {
		add(NextAction{
			Action:   g.Suggestion,
			Reason:   g.Description,
			Command:  "# Manual edit in codex",
			Category: "codex",
		})
	}

	if in.cx != nil {
		for _, name := range in.cx.CharacterNames() {
			if ch := in.cx.Characters[name]; ch != nil && len(ch.Relationships) == 0 {
				add(NextAction{
					Action:   "Define relationships for " + name,
					Reason:   "Characters need relationship mapping for continuity",
					Command:  "# Add relationships for " + name + " in codex.json",
					Category: "codex",
				})
				break
			}
		}
	}

	if completion >= 100 {
		review := NextAction{
			Priority: 1,
			Action:   "Run consistency review",
			Reason:   "Book draft complete - check for incongruencies",
			Command:  "codex_validate",
			Category: "editing",
		}
		actions = append([]NextAction{review}, actions...)
	}

	slices.SortStableFunc(actions, func(a, b NextAction) int { return a.Priority - b.Priority })
	if len(actions) > MaxNextActions {
		actions = actions[:MaxNextActions]
	}
	return actions
}

// mostImportantPending picks the pending callback with the highest
// importance. Ties keep the first in pending order.
func mostImportantPending(pending []codex.Callback) (codex.Callback, bool) {
	var (
		best  codex.Callback
		found bool
	)
	for _, cb := range pending {
		if !found || cb.Importance.Rank() > best.Importance.Rank() {
			best, found = cb, true
		}
	}
	return best, found
}

func filterSeverity(gaps []Gap, s Severity) []Gap {
	var out []Gap
	for _, g := range gaps {
		if g.Severity == s {
			out = append(out, g)
		}
	}
	return out
}
