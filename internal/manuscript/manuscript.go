// Package manuscript reads the written chapters and the chapter plan of a
// project directory. Chapters live next to the codex as chapter_<N>.md,
// with an optional chapter_<N>_revised.md that takes precedence.
package manuscript

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cast"
	"golang.org/x/sync/errgroup"

	"github.com/HendryAvila/storycodex/internal/logger"
)

// ProjectDataFile holds the legacy project settings.
const ProjectDataFile = "project_data.json"

// DefaultContextWords is the previous-chapter tail length used when the
// caller does not choose one.
const DefaultContextWords = 3000

// maxConcurrentReads bounds the chapter fan-out.
const maxConcurrentReads = 8

var chapterFile = regexp.MustCompile(`^chapter_(\d+)(_revised)?\.md$`)

// Project is a manuscript directory. It implements the chapter and plan
// providers consumed by analysis.
type Project struct {
	Dir string
	// PlannedOverride, when positive, replaces the plan from project data.
	PlannedOverride int
}

// New returns a manuscript reader for dir.
func New(dir string) *Project {
	return &Project{Dir: dir}
}

// ChapterFiles maps each written chapter to the file that should be read
// for it, preferring revised drafts.
func (p *Project) ChapterFiles() (map[int]string, error) {
	entries, err := os.ReadDir(p.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[int]string{}, nil
		}
		return nil, fmt.Errorf("reading project directory: %w", err)
	}

	files := map[int]string{}
	revised := map[int]bool{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := chapterFile.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 {
			continue
		}
		isRevised := m[2] != ""
		if _, ok := files[n]; ok && revised[n] && !isRevised {
			continue
		}
		files[n] = filepath.Join(p.Dir, e.Name())
		revised[n] = revised[n] || isRevised
	}
	return files, nil
}

// WrittenChapters returns chapter number -> word count. Files are read
// concurrently.
func (p *Project) WrittenChapters(ctx context.Context) (map[int]int, error) {
	files, err := p.ChapterFiles()
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	counts := make(map[int]int, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentReads)
	for n, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading chapter %d: %w", n, err)
			}
			words := len(strings.Fields(string(data)))
			mu.Lock()
			counts[n] = words
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	logger.Debug("counted chapters", "dir", p.Dir, "chapters", len(counts))
	return counts, nil
}

// PlannedChapters reports the target chapter count. A project data file
// without num_chapters still counts as a plan, with a count of 0 so the
// caller applies its default.
func (p *Project) PlannedChapters(context.Context) (int, bool, error) {
	if p.PlannedOverride > 0 {
		return p.PlannedOverride, true, nil
	}
	data, found, err := ReadProjectData(p.Dir)
	if err != nil || !found {
		return 0, false, err
	}
	raw, ok := data["num_chapters"]
	if !ok {
		return 0, true, nil
	}
	n, err := parseChapterCount(raw)
	if err != nil {
		return 0, true, fmt.Errorf("%s num_chapters: %w", ProjectDataFile, err)
	}
	return n, true, nil
}

// parseChapterCount accepts a number, a numeric string, or a [lo, hi]
// range whose upper bound wins.
func parseChapterCount(v any) (int, error) {
	if r, ok := v.([]any); ok {
		if len(r) == 0 {
			return 0, fmt.Errorf("empty range")
		}
		v = r[len(r)-1]
	}
	return cast.ToIntE(v)
}

// ReadProjectData decodes project_data.json. A missing file reports
// found=false without an error.
func ReadProjectData(dir string) (map[string]any, bool, error) {
	raw, err := os.ReadFile(filepath.Join(dir, ProjectDataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("reading %s: %w", ProjectDataFile, err)
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, false, fmt.Errorf("parsing %s: %w", ProjectDataFile, err)
	}
	return data, true, nil
}

// ProjectName returns the project title from project data, falling back
// to the directory name.
func (p *Project) ProjectName() string {
	if data, found, err := ReadProjectData(p.Dir); err == nil && found {
		for _, key := range []string{"project_name", "title"} {
			if name := cast.ToString(data[key]); name != "" {
				return name
			}
		}
	}
	return filepath.Base(filepath.Clean(p.Dir))
}

// --- Previous chapter ---

// PreviousChapter is the tail of the chapter before the one being written.
type PreviousChapter struct {
	Chapter   int    `json:"chapter"`
	Found     bool   `json:"found"`
	Revised   bool   `json:"revised"`
	Truncated bool   `json:"truncated"`
	Text      string `json:"text"`
}

// PreviousChapter returns the text of chapter n-1, cut to its last limit
// words. Chapter 1 and a missing previous chapter return Found=false.
func (p *Project) PreviousChapter(n, limit int) (PreviousChapter, error) {
	if n <= 1 {
		return PreviousChapter{}, nil
	}
	if limit <= 0 {
		limit = DefaultContextWords
	}
	prev := PreviousChapter{Chapter: n - 1}

	candidates := []struct {
		name    string
		revised bool
	}{
		{fmt.Sprintf("chapter_%d_revised.md", prev.Chapter), true},
		{fmt.Sprintf("chapter_%d.md", prev.Chapter), false},
	}
	for _, c := range candidates {
		data, err := os.ReadFile(filepath.Join(p.Dir, c.name))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return PreviousChapter{}, fmt.Errorf("reading chapter %d: %w", prev.Chapter, err)
		}
		prev.Found = true
		prev.Revised = c.revised
		prev.Text = string(data)
		if words := strings.Fields(prev.Text); len(words) > limit {
			prev.Text = strings.Join(words[len(words)-limit:], " ")
			prev.Truncated = true
		}
		logger.Debug("previous chapter context", "chapter", prev.Chapter, "revised", c.revised, "truncated", prev.Truncated)
		return prev, nil
	}
	logger.Warn("previous chapter not found", "chapter", prev.Chapter, "dir", p.Dir)
	return prev, nil
}
