package codex

import (
	"cmp"
	"fmt"
	"slices"
)

// Warning kinds reported by Check.
const (
	WarnDanglingRelationship = "dangling_relationship"
	WarnUnknownParticipant   = "unknown_participant"
	WarnUnknownPOV           = "unknown_pov"
	WarnUnknownCallback      = "unknown_callback"
	WarnUnknownFact          = "unknown_fact"
	WarnUnorderedHistory     = "unordered_history"
	WarnMisfiledScene        = "misfiled_scene"
)

// Warning is a soft-reference problem. Warnings never block a mutation.
type Warning struct {
	Kind    string `json:"kind"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("[%s] %s: %s", w.Kind, w.Subject, w.Message)
}

// Check scans the codex for references to entities that do not exist and
// for history that is out of chapter order. The result is sorted by kind
// then subject.
func (cx *Codex) Check() []Warning {
	var out []Warning
	warn := func(kind, subject, format string, args ...any) {
		out = append(out, Warning{Kind: kind, Subject: subject, Message: fmt.Sprintf(format, args...)})
	}

	for _, name := range cx.CharacterNames() {
		ch := cx.Characters[name]
		if ch == nil {
			continue
		}
		for target, r := range ch.Relationships {
			if _, ok := cx.Character(target); !ok {
				warn(WarnDanglingRelationship, name, "relationship to unknown character %q", target)
			}
			if !isSortedByChapter(r.Evolution, func(s RelationshipState) int { return s.Chapter }) {
				warn(WarnUnorderedHistory, name, "relationship evolution with %q is out of chapter order", target)
			}
		}
		if !isSortedByChapter(ch.EmotionalJourney, func(m EmotionalMoment) int { return m.Chapter }) {
			warn(WarnUnorderedHistory, name, "emotional journey is out of chapter order")
		}
	}

	for _, n := range cx.ChapterNumbers() {
		chapter := cx.Chapters[n]
		if chapter == nil {
			continue
		}
		for _, s := range chapter.Scenes {
			subject := SceneID(n, s.Number)
			if s.Chapter != n {
				warn(WarnMisfiledScene, subject, "scene claims chapter %d", s.Chapter)
			}
			for _, name := range s.Characters {
				if _, ok := cx.Character(name); !ok {
					warn(WarnUnknownParticipant, subject, "unknown character %q", name)
				}
			}
			if s.POVCharacter != "" {
				if _, ok := cx.Character(s.POVCharacter); !ok {
					warn(WarnUnknownPOV, subject, "unknown POV character %q", s.POVCharacter)
				}
			}
			for _, ids := range [][]string{s.CallbacksPlanted, s.CallbacksReferenced, s.CallbacksResolved} {
				for _, id := range ids {
					if _, ok := cx.Callback(id); !ok {
						warn(WarnUnknownCallback, subject, "unknown callback %q", id)
					}
				}
			}
			for _, ids := range [][]string{s.FactsEstablished, s.FactsReferenced} {
				for _, id := range ids {
					if _, ok := cx.Fact(id); !ok {
						warn(WarnUnknownFact, subject, "unknown fact %q", id)
					}
				}
			}
		}
	}

	slices.SortStableFunc(out, func(a, b Warning) int {
		return cmp.Or(cmp.Compare(a.Kind, b.Kind), cmp.Compare(a.Subject, b.Subject))
	})
	return out
}

func isSortedByChapter[T any](list []T, chapter func(T) int) bool {
	return slices.IsSortedFunc(list, func(a, b T) int { return chapter(a) - chapter(b) })
}
