package index

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/HendryAvila/storycodex/internal/codex"
)

// Entries flattens a codex into index entries, ordered by kind and key.
// A nil codex yields no entries.
func Entries(cx *codex.Codex) []Entry {
	if cx == nil {
		return nil
	}
	var out []Entry

	for _, name := range cx.CharacterNames() {
		out = append(out, characterEntry(cx.Characters[name]))
	}
	for _, sc := range cx.Scenes() {
		out = append(out, Entry{
			Kind:    KindScene,
			Key:     sc.ID,
			Chapter: sc.Chapter,
			Title:   cmp.Or(sc.Title, sc.ID),
			Content: join(sc.Summary, sc.Setting, sc.Location, sc.Goal, sc.EmotionalBeat,
				sc.Conflict, sc.Outcome, sc.Notes, strings.Join(sc.Characters, ", ")),
		})
	}
	for _, id := range slices.Sorted(maps.Keys(cx.Callbacks)) {
		cb := cx.Callbacks[id]
		out = append(out, Entry{
			Kind:    KindCallback,
			Key:     id,
			Chapter: cb.SetupChapter,
			Title:   cb.Name,
			Content: join(cb.SetupDescription, cb.PayoffDescription, cb.Notes),
		})
	}
	for _, id := range slices.Sorted(maps.Keys(cx.Facts)) {
		f := cx.Facts[id]
		out = append(out, Entry{
			Kind:    KindFact,
			Key:     id,
			Chapter: f.EstablishedChapter,
			Title:   cmp.Or(f.Category, "fact"),
			Content: join(f.Fact, f.Notes),
		})
	}
	for _, id := range slices.Sorted(maps.Keys(cx.Memories)) {
		m := cx.Memories[id]
		out = append(out, Entry{
			Kind:    KindMemory,
			Key:     id,
			Chapter: m.IntroducedChapter,
			Title:   m.Owner,
			Content: join(m.Content, strings.Join(m.AssociatedCharacters, ", ")),
		})
	}
	for _, symbol := range slices.Sorted(maps.Keys(cx.RecurringSymbols)) {
		out = append(out, Entry{
			Kind:    KindSymbol,
			Key:     symbol,
			Title:   symbol,
			Content: cx.RecurringSymbols[symbol],
		})
	}
	for _, name := range slices.Sorted(maps.Keys(cx.Locations)) {
		l := cx.Locations[name]
		out = append(out, Entry{
			Kind:    KindLocation,
			Key:     name,
			Chapter: l.FirstChapter,
			Title:   name,
			Content: join(l.Description, l.Notes),
		})
	}
	for _, name := range slices.Sorted(maps.Keys(cx.Items)) {
		it := cx.Items[name]
		out = append(out, Entry{
			Kind:    KindItem,
			Key:     name,
			Chapter: it.FirstChapter,
			Title:   name,
			Content: join(it.Description, it.Significance, ownedBy(it.Owner)),
		})
	}
	return out
}

// characterEntry stamps a character with the chapter of their first
// appearance, or 0 when they have not appeared yet.
func characterEntry(ch *codex.Character) Entry {
	first := 0
	for _, ref := range ch.ScenesAppeared {
		if first == 0 || ref.Chapter < first {
			first = ref.Chapter
		}
	}
	p := ch.Psychology
	return Entry{
		Kind:    KindCharacter,
		Key:     ch.Name,
		Chapter: first,
		Title:   ch.Name,
		Content: join(
			ch.FullName,
			strings.Join(ch.Aliases, ", "),
			ch.Role,
			ch.PhysicalDescription,
			ch.PersonalityTraits,
			ch.Background,
			ch.Motivations,
			ch.CharacterArc,
			strings.Join(p.Fears, "; "),
			strings.Join(p.Desires, "; "),
			strings.Join(p.Secrets, "; "),
			strings.Join(p.Flaws, "; "),
		),
	}
}

func ownedBy(owner string) string {
	if owner == "" {
		return ""
	}
	return fmt.Sprintf("owned by %s", owner)
}

// join concatenates the non-empty parts, one per line.
func join(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n")
}
