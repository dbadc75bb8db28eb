package codex

import (
	"fmt"
	"slices"
)

// --- Callback lifecycle ---
//
//	planted ──> referenced ──> paid_off
//	   │            │ ▲
//	   │            └─┘ (further references)
//	   ├──────────────────────> paid_off
//	   └──> abandoned
//
// paid_off and abandoned are terminal.

var transitions = map[CallbackStatus][]CallbackStatus{
	StatusPlanted:    {StatusReferenced, StatusPaidOff, StatusAbandoned},
	StatusReferenced: {StatusReferenced, StatusPaidOff},
}

// CanTransition reports whether a callback may move from one status to another.
func CanTransition(from, to CallbackStatus) bool {
	return slices.Contains(transitions[from], to)
}

func (cx *Codex) transition(id string, to CallbackStatus) (*Callback, error) {
	cb, ok := cx.Callback(id)
	if !ok {
		return nil, fmt.Errorf("callback %q: %w", id, ErrNotFound)
	}
	if !CanTransition(cb.Status, to) {
		return nil, fmt.Errorf("callback %q: %w: %s -> %s", id, ErrInvalidTransition, cb.Status, to)
	}
	return cb, nil
}

// ReferenceCallback records that a pending callback is mentioned again in
// a later chapter.
func (cx *Codex) ReferenceCallback(id string, chapter int) error {
	cb, err := cx.transition(id, StatusReferenced)
	if err != nil {
		return err
	}
	if chapter < cb.SetupChapter {
		return fmt.Errorf("%w: callback %q referenced in chapter %d before its setup in chapter %d", ErrInvalid, id, chapter, cb.SetupChapter)
	}
	if !slices.Contains(cb.ReferencedChapters, chapter) {
		cb.ReferencedChapters = append(cb.ReferencedChapters, chapter)
		slices.Sort(cb.ReferencedChapters)
	}
	cb.Status = StatusReferenced
	return nil
}

// PayOffCallback resolves a pending callback. A scene of 0 means unspecified.
func (cx *Codex) PayOffCallback(id string, chapter, scene int, description string) error {
	cb, err := cx.transition(id, StatusPaidOff)
	if err != nil {
		return err
	}
	if chapter < cb.SetupChapter {
		return fmt.Errorf("%w: callback %q paid off in chapter %d before its setup in chapter %d", ErrInvalid, id, chapter, cb.SetupChapter)
	}
	cb.PayoffChapter = &chapter
	if scene > 0 {
		cb.PayoffScene = &scene
	}
	cb.PayoffDescription = description
	cb.Status = StatusPaidOff
	return nil
}

// AbandonCallback drops a planted callback that will not be paid off.
func (cx *Codex) AbandonCallback(id, note string) error {
	cb, err := cx.transition(id, StatusAbandoned)
	if err != nil {
		return err
	}
	if note != "" {
		cb.Notes = note
	}
	cb.Status = StatusAbandoned
	return nil
}

// --- Fact bookkeeping ---

// ReferenceFact records a chapter that relies on an established fact.
func (cx *Codex) ReferenceFact(id string, chapter int) error {
	f, ok := cx.Fact(id)
	if !ok {
		return fmt.Errorf("fact %q: %w", id, ErrNotFound)
	}
	if chapter < 1 {
		return fmt.Errorf("%w: fact %q referenced in chapter %d", ErrInvalid, id, chapter)
	}
	if !slices.Contains(f.ReferencedChapters, chapter) {
		f.ReferencedChapters = append(f.ReferencedChapters, chapter)
		slices.Sort(f.ReferencedChapters)
	}
	return nil
}

// VerifyFact marks a fact as checked against the manuscript.
func (cx *Codex) VerifyFact(id string) error {
	f, ok := cx.Fact(id)
	if !ok {
		return fmt.Errorf("fact %q: %w", id, ErrNotFound)
	}
	f.Verified = true
	return nil
}
