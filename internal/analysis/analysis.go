// Package analysis inspects a project codex and its manuscript for
// structural gaps, future payoff opportunities and recommended next steps.
//
// Analysis is read-only: it never mutates the codex it is given.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/HendryAvila/storycodex/internal/codex"
)

// DefaultPlannedChapters is used when the project has no chapter plan.
const DefaultPlannedChapters = 24

// StaleAfterChapters is how many written chapters a critical callback may
// stay pending past its setup before it is reported.
const StaleAfterChapters = 8

// MaxNextActions caps the recommendation list.
const MaxNextActions = 7

// ErrNoData is returned when neither a codex nor a project plan exists.
var ErrNoData = errors.New("no project data: run migration or create a codex first")

// --- Severity ---

// Severity ranks gaps: critical > high > medium > low > info.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

var severityNames = map[Severity]string{
	SeverityInfo:     "info",
	SeverityLow:      "low",
	SeverityMedium:   "medium",
	SeverityHigh:     "high",
	SeverityCritical: "critical",
}

// Severities lists every severity from most to least urgent.
var Severities = []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

// MarshalText encodes the severity by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a severity name.
func (s *Severity) UnmarshalText(text []byte) error {
	for sev, name := range severityNames {
		if name == string(text) {
			*s = sev
			return nil
		}
	}
	return fmt.Errorf("unknown severity %q", text)
}

// --- Report types ---

// Gap is a deficiency in narrative coverage or continuity.
type Gap struct {
	Category     string   `json:"category"` // character, plot, continuity, setup
	Severity     Severity `json:"severity"`
	Description  string   `json:"description"`
	Location     string   `json:"location"`
	Suggestion   string   `json:"suggestion"`
	RelatedItems []string `json:"related_items,omitempty"`
}

// Opportunity is an advisory idea for a future payoff.
type Opportunity struct {
	Category        string `json:"category"`
	Description     string `json:"description"`
	PlantedIn       string `json:"planted_in"`
	PotentialPayoff string `json:"potential_payoff"`
	BooksAhead      int    `json:"books_ahead"`
}

// NextAction is a recommended step. Priority 1 is the most urgent.
type NextAction struct {
	Priority int    `json:"priority"`
	Action   string `json:"action"`
	Reason   string `json:"reason"`
	Command  string `json:"command"` // "#"-prefixed commands are manual steps
	Category string `json:"category"`
}

// Report is the complete analysis of one project.
type Report struct {
	ProjectName string `json:"project_name"`

	ChaptersWritten   int     `json:"chapters_written"`
	ChaptersPlanned   int     `json:"chapters_planned"`
	CompletionPercent float64 `json:"completion_percent"`

	CharacterCount           int      `json:"character_count"`
	CharactersWithArcs       []string `json:"characters_with_arcs"`
	CharactersUnderdeveloped []string `json:"characters_underdeveloped"`

	CallbacksPlanted int              `json:"callbacks_planted"`
	CallbacksPaidOff int              `json:"callbacks_paid_off"`
	CallbacksPending []codex.Callback `json:"callbacks_pending"`

	Gaps          []Gap         `json:"gaps"`
	Opportunities []Opportunity `json:"opportunities"`
	NextActions   []NextAction  `json:"next_actions"`

	Themes  []string          `json:"themes"`
	Symbols map[string]string `json:"symbols"`

	SceneCount           int             `json:"scene_count"`
	CharacterAppearances map[string]int  `json:"character_appearances"`
	Warnings             []codex.Warning `json:"warnings,omitempty"`
}

// TopGaps returns up to k gaps, most severe first. Gaps of equal
// severity keep their detection order.
func (r *Report) TopGaps(k int) []Gap {
	sorted := slices.Clone(r.Gaps)
	slices.SortStableFunc(sorted, func(a, b Gap) int { return int(b.Severity) - int(a.Severity) })
	if k >= 0 && len(sorted) > k {
		sorted = sorted[:k]
	}
	return sorted
}

// GapsWithSeverity returns the gaps of one severity in detection order.
func (r *Report) GapsWithSeverity(s Severity) []Gap {
	return filterSeverity(r.Gaps, s)
}

// --- Analyzer ---

// Analyzer runs the rule passes over a project. Codex, Chapters and Plan
// may all be nil; each pass degrades to empty results.
type Analyzer struct {
	ProjectName string
	Codex       *codex.Codex
	Chapters    ChapterProvider
	Plan        PlanProvider
}

// New creates an analyzer for the given project.
func New(projectName string, cx *codex.Codex, chapters ChapterProvider, plan PlanProvider) *Analyzer {
	return &Analyzer{
		ProjectName: projectName,
		Codex:       cx,
		Chapters:    chapters,
		Plan:        plan,
	}
}

// Analyze runs every pass and assembles the report. It fails with
// ErrNoData when there is no codex and no project plan.
func (a *Analyzer) Analyze(ctx context.Context) (*Report, error) {
	planned, hasPlan := DefaultPlannedChapters, false
	if a.Plan != nil {
		n, found, err := a.Plan.PlannedChapters(ctx)
		if err != nil {
			return nil, fmt.Errorf("reading chapter plan: %w", err)
		}
		if found && n > 0 {
			planned = n
		}
		hasPlan = found
	}
	if a.Codex == nil && !hasPlan {
		return nil, ErrNoData
	}

	written := map[int]int{}
	if a.Chapters != nil {
		w, err := a.Chapters.WrittenChapters(ctx)
		if err != nil {
			return nil, fmt.Errorf("reading chapters: %w", err)
		}
		written = w
	}

	in := input{
		cx:      a.Codex,
		written: written,
		planned: planned,
	}
	completion := in.completion()

	chars := analyzeCharacters(in)
	cbs := analyzeCallbacks(in)
	gaps := detectGaps(in)

	r := &Report{
		ProjectName:              a.ProjectName,
		ChaptersWritten:          len(written),
		ChaptersPlanned:          planned,
		CompletionPercent:        completion,
		CharacterCount:           len(chars.all),
		CharactersWithArcs:       chars.withArcs,
		CharactersUnderdeveloped: chars.underdeveloped,
		CallbacksPlanted:         cbs.planted,
		CallbacksPaidOff:         cbs.paidOff,
		CallbacksPending:         cbs.pending,
		Gaps:                     gaps,
		Opportunities:            identifyOpportunities(in),
		NextActions:              nextActions(in, gaps, cbs, completion),
		Themes:                   []string{},
		Symbols:                  map[string]string{},
		CharacterAppearances:     map[string]int{},
	}
	if cx := a.Codex; cx != nil {
		r.Themes = slices.Clone(cx.GlobalThemes)
		maps.Copy(r.Symbols, cx.RecurringSymbols)
		r.SceneCount = len(cx.Scenes())
		for name, ch := range cx.Characters {
			if ch != nil {
				r.CharacterAppearances[name] = len(ch.ScenesAppeared)
			}
		}
		r.Warnings = cx.Check()
	}
	return r, nil
}

// input is the snapshot every pass reads from.
type input struct {
	cx      *codex.Codex
	written map[int]int // chapter -> word count
	planned int
}

// completion is written/planned*100 rounded to one decimal place.
func (in input) completion() float64 {
	if in.planned <= 0 {
		return 0
	}
	pct := float64(len(in.written)) / float64(in.planned) * 100
	return math.Round(pct*10) / 10
}

// nextChapter is one past the highest written chapter.
func (in input) nextChapter() int {
	next := 1
	for n := range in.written {
		next = max(next, n+1)
	}
	return next
}
