package analysis

import (
	"context"
	"maps"
)

// ChapterProvider reports which chapters of a project have been written.
// Analysis only counts chapters and words; it never reads prose.
type ChapterProvider interface {
	// WrittenChapters returns chapter number -> word count.
	WrittenChapters(ctx context.Context) (map[int]int, error)
}

// PlanProvider reports the target chapter count of a project.
type PlanProvider interface {
	// PlannedChapters returns the planned count and whether a plan exists.
	PlannedChapters(ctx context.Context) (int, bool, error)
}

// StaticChapters is a ChapterProvider over a fixed map.
type StaticChapters map[int]int

// WrittenChapters implements ChapterProvider.
func (s StaticChapters) WrittenChapters(context.Context) (map[int]int, error) {
	return maps.Clone(map[int]int(s)), nil
}

// StaticPlan is a PlanProvider over a fixed count. Zero means no plan.
type StaticPlan int

// PlannedChapters implements PlanProvider.
func (p StaticPlan) PlannedChapters(context.Context) (int, bool, error) {
	return int(p), p > 0, nil
}
