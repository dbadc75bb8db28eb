package codex

import (
	"maps"
	"slices"
	"strings"
)

// CharacterState is a character as seen from a given chapter.
type CharacterState struct {
	Name             string                  `json:"name"`
	Chapter          int                     `json:"chapter"`
	EmotionalState   []EmotionalMoment       `json:"emotional_state"`
	MemoriesKnown    []Memory                `json:"memories_known"`
	ArcProgress      []ArcMilestone          `json:"arc_progress"`
	Relationships    map[string]Relationship `json:"relationships"`
	Alive            bool                    `json:"is_alive"`
	Location         string                  `json:"location,omitempty"`
	Inventory        []string                `json:"inventory"`
	ArcType          ArcType                 `json:"arc_type,omitempty"`
	DominantEmotions []EmotionType           `json:"dominant_emotions,omitempty"`
}

// CharacterStateAt resolves the named character at a chapter. Emotional
// moments match the chapter exactly; memories and milestones accumulate
// up to and including it. Relationships are the current records, not a
// chapter-bounded view. An unknown name yields a zero state and false.
func (cx *Codex) CharacterStateAt(name string, chapter int) (CharacterState, bool) {
	ch, ok := cx.Character(name)
	if !ok {
		return CharacterState{}, false
	}

	st := CharacterState{
		Name:             ch.Name,
		Chapter:          chapter,
		Relationships:    maps.Clone(ch.Relationships),
		Alive:            ch.AliveAt(chapter),
		Location:         ch.CurrentLocation,
		Inventory:        slices.Clone(ch.Inventory),
		ArcType:          ch.ArcType,
		DominantEmotions: slices.Clone(ch.DominantEmotions),
	}
	for _, m := range ch.EmotionalJourney {
		if m.Chapter == chapter {
			st.EmotionalState = append(st.EmotionalState, m)
		}
	}
	for _, m := range ch.Memories {
		if m.IntroducedChapter <= chapter {
			st.MemoriesKnown = append(st.MemoriesKnown, m)
		}
	}
	for _, m := range ch.ArcMilestones {
		if m.Chapter <= chapter {
			st.ArcProgress = append(st.ArcProgress, m)
		}
	}
	if st.Relationships == nil {
		st.Relationships = map[string]Relationship{}
	}
	return st, true
}

// RelationshipAt returns the latest snapshot of the relationship from one
// character to another at or before the chapter.
func (cx *Codex) RelationshipAt(from, to string, chapter int) (RelationshipState, bool) {
	ch, ok := cx.Character(from)
	if !ok {
		return RelationshipState{}, false
	}
	r, ok := ch.Relationships[to]
	if !ok {
		return RelationshipState{}, false
	}
	var (
		latest RelationshipState
		found  bool
	)
	for _, s := range r.Evolution {
		if s.Chapter <= chapter && (!found || s.Chapter >= latest.Chapter) {
			latest, found = s, true
		}
	}
	return latest, found
}

// PendingCallbacks returns callbacks still awaiting a payoff, ordered by
// setup chapter then id.
func (cx *Codex) PendingCallbacks() []Callback {
	var out []Callback
	for _, cb := range cx.Callbacks {
		if cb != nil && cb.Status.IsPending() {
			out = append(out, *cb)
		}
	}
	slices.SortFunc(out, compareCallbacks)
	return out
}

// AllCallbacks returns every callback ordered by setup chapter then id.
func (cx *Codex) AllCallbacks() []Callback {
	out := make([]Callback, 0, len(cx.Callbacks))
	for _, cb := range cx.Callbacks {
		if cb != nil {
			out = append(out, *cb)
		}
	}
	slices.SortFunc(out, compareCallbacks)
	return out
}

func compareCallbacks(a, b Callback) int {
	if a.SetupChapter != b.SetupChapter {
		return a.SetupChapter - b.SetupChapter
	}
	return strings.Compare(a.ID, b.ID)
}

// FactsAtOrBefore returns the facts established at or before the chapter,
// ordered by chapter then id.
func (cx *Codex) FactsAtOrBefore(chapter int) []Fact {
	var out []Fact
	for _, f := range cx.Facts {
		if f != nil && f.EstablishedChapter <= chapter {
			out = append(out, *f)
		}
	}
	slices.SortFunc(out, func(a, b Fact) int {
		if a.EstablishedChapter != b.EstablishedChapter {
			return a.EstablishedChapter - b.EstablishedChapter
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

// ChapterInfo is the chapter metadata carried in a scene context.
type ChapterInfo struct {
	Number       int    `json:"number"`
	Title        string `json:"title"`
	Act          string `json:"act,omitempty"`
	PrimaryTheme string `json:"primary_theme,omitempty"`
}

// SceneContext is everything needed to write one scene.
type SceneContext struct {
	Scene             *Scene            `json:"scene"`
	Chapter           ChapterInfo       `json:"chapter_info"`
	Characters        []CharacterState  `json:"characters"`
	UnknownCharacters []string          `json:"unknown_characters,omitempty"`
	PendingCallbacks  []Callback        `json:"active_callbacks"`
	EstablishedFacts  []Fact            `json:"established_facts"`
	Themes            []string          `json:"themes"`
	Symbols           map[string]string `json:"symbols"`
}

// Empty reports whether the requested scene was not found.
func (sc SceneContext) Empty() bool {
	return sc.Scene == nil
}

// SceneContext assembles the writing context for a scene. Callbacks are
// included only when pending and planted in an earlier chapter. A missing
// chapter or scene yields an empty context.
func (cx *Codex) SceneContext(chapter, scene int) SceneContext {
	ch, ok := cx.Chapters[chapter]
	if !ok || ch == nil {
		return SceneContext{}
	}
	s, ok := ch.Scene(scene)
	if !ok {
		return SceneContext{}
	}
	target := *s

	sc := SceneContext{
		Scene: &target,
		Chapter: ChapterInfo{
			Number:       ch.Number,
			Title:        ch.Title,
			Act:          ch.Act,
			PrimaryTheme: ch.PrimaryTheme,
		},
		EstablishedFacts: cx.FactsAtOrBefore(chapter),
		Themes:           slices.Clone(cx.GlobalThemes),
		Symbols:          maps.Clone(cx.RecurringSymbols),
	}
	for _, name := range target.Characters {
		st, ok := cx.CharacterStateAt(name, chapter)
		if !ok {
			sc.UnknownCharacters = append(sc.UnknownCharacters, name)
			continue
		}
		sc.Characters = append(sc.Characters, st)
	}
	for _, cb := range cx.PendingCallbacks() {
		if cb.SetupChapter < chapter {
			sc.PendingCallbacks = append(sc.PendingCallbacks, cb)
		}
	}
	return sc
}
