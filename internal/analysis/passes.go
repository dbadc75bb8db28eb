package analysis

import (
	"fmt"
	"slices"

	"github.com/HendryAvila/storycodex/internal/codex"
)

// --- Character development ---

type characterSummary struct {
	all            []string
	withArcs       []string
	underdeveloped []string
}

// analyzeCharacters splits characters into developed and underdeveloped.
// Developed means an arc description plus either fears/desires or at
// least three scene appearances.
func analyzeCharacters(in input) characterSummary {
	var s characterSummary
	if in.cx == nil {
		return s
	}
	for _, name := range in.cx.CharacterNames() {
		ch := in.cx.Characters[name]
		if ch == nil {
			continue
		}
		s.all = append(s.all, name)

		hasArc := ch.CharacterArc != ""
		hasPsychology := len(ch.Psychology.Fears) > 0 || len(ch.Psychology.Desires) > 0
		appearsEnough := len(ch.ScenesAppeared) >= 3
		if hasArc && (hasPsychology || appearsEnough) {
			s.withArcs = append(s.withArcs, name)
		} else {
			s.underdeveloped = append(s.underdeveloped, name)
		}
	}
	return s
}

// --- Callback health ---

type callbackSummary struct {
	planted int // planted or referenced
	paidOff int
	pending []codex.Callback
}

func analyzeCallbacks(in input) callbackSummary {
	var s callbackSummary
	if in.cx == nil {
		return s
	}
	for _, cb := range in.cx.AllCallbacks() {
		switch {
		case cb.Status.IsPending():
			s.planted++
			s.pending = append(s.pending, cb)
		case cb.Status == codex.StatusPaidOff:
			s.paidOff++
		}
	}
	return s
}

// --- Gap detection ---

// detectGaps runs the structural and continuity checks. Without a codex
// the only gap is the instruction to create one.
func detectGaps(in input) []Gap {
	if in.cx == nil {
		return []Gap{{
			Category:    "setup",
			Severity:    SeverityHigh,
			Description: "No codex found - run migration first",
			Location:    "Project setup",
			Suggestion:  "Run: storycodex migrate <project-dir>",
		}}
	}

	var gaps []Gap
	gaps = append(gaps, characterGaps(in)...)
	gaps = append(gaps, staleCallbackGaps(in)...)
	gaps = append(gaps, sceneGaps(in)...)
	gaps = append(gaps, deathContinuityGaps(in)...)
	gaps = append(gaps, factOrderGaps(in)...)
	return gaps
}

func characterGaps(in input) []Gap {
	var gaps []Gap
	names := in.cx.CharacterNames()
	for _, name := range names {
		ch := in.cx.Characters[name]
		if ch == nil {
			continue
		}
		loc := "Character: " + name

		if ch.PhysicalDescription == "" {
			gaps = append(gaps, Gap{
				Category:    "character",
				Severity:    SeverityMedium,
				Description: fmt.Sprintf("%s has no physical description", name),
				Location:    loc,
				Suggestion:  "Add distinguishing physical features for reader visualization",
			})
		}

		if len(ch.Relationships) == 0 && len(ch.ScenesAppeared) > 5 {
			var others []string
			for _, other := range names {
				if other != name && len(others) < 3 {
					others = append(others, other)
				}
			}
			gaps = append(gaps, Gap{
				Category:     "character",
				Severity:     SeverityHigh,
				Description:  fmt.Sprintf("%s appears often but has no defined relationships", name),
				Location:     loc,
				Suggestion:   "Define relationships with other main characters",
				RelatedItems: others,
			})
		}

		if len(ch.ScenesAppeared) == 0 && ch.CharacterArc != "" {
			gaps = append(gaps, Gap{
				Category:    "character",
				Severity:    SeverityInfo,
				Description: fmt.Sprintf("%s has arc defined but hasn't appeared in scenes yet", name),
				Location:    loc,
				Suggestion:  "Ensure they're introduced appropriately per their arc",
			})
		}
	}
	return gaps
}

// staleCallbackGaps flags critical callbacks still pending more than
// StaleAfterChapters written chapters after their setup.
func staleCallbackGaps(in input) []Gap {
	var gaps []Gap
	written := len(in.written)
	for _, cb := range in.cx.PendingCallbacks() {
		if cb.Importance != codex.ImportanceCritical {
			continue
		}
		since := written - cb.SetupChapter
		if since <= StaleAfterChapters {
			continue
		}
		gaps = append(gaps, Gap{
			Category:     "plot",
			Severity:     SeverityHigh,
			Description:  fmt.Sprintf("Critical callback '%s' planted %d chapters ago with no payoff", cb.Name, since),
			Location:     fmt.Sprintf("Chapter %d", cb.SetupChapter),
			Suggestion:   "Reference or begin payoff of this element soon",
			RelatedItems: []string{cb.ID, cb.SetupDescription},
		})
	}
	return gaps
}

func sceneGaps(in input) []Gap {
	var gaps []Gap
	for _, sc := range in.cx.Scenes() {
		if sc.EmotionalBeat != "" {
			continue
		}
		gaps = append(gaps, Gap{
			Category:    "continuity",
			Severity:    SeverityLow,
			Description: fmt.Sprintf("Ch%d Scene %d missing emotional beat", sc.Chapter, sc.Number),
			Location:    fmt.Sprintf("Chapter %d, Scene %d", sc.Chapter, sc.Number),
			Suggestion:  "Define the emotional purpose of this scene",
		})
	}
	return gaps
}

// deathContinuityGaps flags characters who appear in a scene after the
// chapter they die in. Appearances come from both the character's own
// record and scene participant lists.
func deathContinuityGaps(in input) []Gap {
	var gaps []Gap
	scenes := in.cx.Scenes()
	for _, name := range in.cx.CharacterNames() {
		ch := in.cx.Characters[name]
		if ch == nil || ch.DeathChapter == nil {
			continue
		}
		death := *ch.DeathChapter

		seen := map[string]bool{}
		var after []string
		note := func(chapter, scene int) {
			id := codex.SceneID(chapter, scene)
			if chapter > death && !seen[id] {
				seen[id] = true
				after = append(after, id)
			}
		}
		for _, ref := range ch.ScenesAppeared {
			note(ref.Chapter, ref.Scene)
		}
		for _, sc := range scenes {
			if slices.Contains(sc.Characters, name) {
				note(sc.Chapter, sc.Number)
			}
		}
		if len(after) == 0 {
			continue
		}
		slices.Sort(after)
		gaps = append(gaps, Gap{
			Category:     "continuity",
			Severity:     SeverityCritical,
			Description:  fmt.Sprintf("%s appears in %d scene(s) after dying in chapter %d", name, len(after), death),
			Location:     "Character: " + name,
			Suggestion:   "Remove the appearance, move the death, or mark it as a flashback",
			RelatedItems: after,
		})
	}
	return gaps
}

// factOrderGaps flags facts relied on before the chapter that establishes
// them, either through the fact's reference list or a scene citing it.
func factOrderGaps(in input) []Gap {
	early := map[string][]int{}
	for _, f := range in.cx.Facts {
		if f == nil {
			continue
		}
		for _, c := range f.ReferencedChapters {
			if c < f.EstablishedChapter {
				early[f.ID] = append(early[f.ID], c)
			}
		}
	}
	for _, sc := range in.cx.Scenes() {
		for _, id := range sc.FactsReferenced {
			f, ok := in.cx.Fact(id)
			if ok && sc.Chapter < f.EstablishedChapter && !slices.Contains(early[id], sc.Chapter) {
				early[id] = append(early[id], sc.Chapter)
			}
		}
	}

	ids := make([]string, 0, len(early))
	for id := range early {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var gaps []Gap
	for _, id := range ids {
		f, _ := in.cx.Fact(id)
		chapters := early[id]
		slices.Sort(chapters)
		gaps = append(gaps, Gap{
			Category:     "continuity",
			Severity:     SeverityMedium,
			Description:  fmt.Sprintf("Fact %q is referenced in chapter %d before it is established in chapter %d", f.Fact, chapters[0], f.EstablishedChapter),
			Location:     fmt.Sprintf("Chapter %d", chapters[0]),
			Suggestion:   "Establish the fact earlier or move the reference after its setup",
			RelatedItems: []string{id},
		})
	}
	return gaps
}

// --- Opportunities ---

// maxLocationOpportunities caps the under-used location suggestions.
const maxLocationOpportunities = 3

func identifyOpportunities(in input) []Opportunity {
	if in.cx == nil {
		return nil
	}
	var opps []Opportunity

	for _, name := range in.cx.CharacterNames() {
		ch := in.cx.Characters[name]
		if ch == nil {
			continue
		}
		if len(ch.Psychology.Secrets) > 0 {
			opps = append(opps, Opportunity{
				Category:        "character",
				Description:     fmt.Sprintf("%s's secrets could be revealed later", name),
				PlantedIn:       "Character backstory",
				PotentialPayoff: "Dramatic revelation scene, trust-breaking moment",
				BooksAhead:      1,
			})
		}
		if ch.ArcType == codex.ArcRedemption {
			opps = append(opps, Opportunity{
				Category:        "character",
				Description:     fmt.Sprintf("%s's redemption arc could have long-term ripples", name),
				PlantedIn:       "Character setup for " + name,
				PotentialPayoff: "Moment of sacrifice, teaching the next generation",
				BooksAhead:      2,
			})
		}
	}

	symbols := make([]string, 0, len(in.cx.RecurringSymbols))
	for s := range in.cx.RecurringSymbols {
		symbols = append(symbols, s)
	}
	slices.Sort(symbols)
	for _, s := range symbols {
		opps = append(opps, Opportunity{
			Category:        "symbol",
			Description:     fmt.Sprintf("'%s' symbol can recur with deepened meaning", s),
			PlantedIn:       "Book 1 symbolism",
			PotentialPayoff: fmt.Sprintf("Transform meaning: %s -> evolved significance", in.cx.RecurringSymbols[s]),
			BooksAhead:      3,
		})
	}

	locs := underusedLocations(in.cx)
	if len(locs) > maxLocationOpportunities {
		locs = locs[:maxLocationOpportunities]
	}
	for _, loc := range locs {
		opps = append(opps, Opportunity{
			Category:        "world",
			Description:     fmt.Sprintf("Location '%s' could become significant later", loc),
			PlantedIn:       "Worldbuilding",
			PotentialPayoff: "Return to this place with new meaning/stakes",
			BooksAhead:      2,
		})
	}
	return opps
}

// underusedLocations returns registered locations used by at most one
// scene, in name order.
func underusedLocations(cx *codex.Codex) []string {
	uses := map[string]int{}
	for _, sc := range cx.Scenes() {
		if sc.Location != "" {
			uses[sc.Location]++
		}
		if sc.Setting != "" && sc.Setting != sc.Location {
			uses[sc.Setting]++
		}
	}
	var out []string
	for name := range cx.Locations {
		if uses[name] <= 1 {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}
