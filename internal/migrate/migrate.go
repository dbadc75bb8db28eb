// Package migrate converts legacy project files (characters.json,
// scenes.json, project_data.json) into a codex.
package migrate

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cast"

	"github.com/HendryAvila/storycodex/internal/codex"
	"github.com/HendryAvila/storycodex/internal/logger"
	"github.com/HendryAvila/storycodex/internal/manuscript"
)

// Legacy filenames inside a project directory.
const (
	CharactersFile = "characters.json"
	ScenesFile     = "scenes.json"
)

// ErrMissingIdentity is returned for records without a name (characters)
// or scene number (scenes).
var ErrMissingIdentity = errors.New("record missing identity field")

// ErrTargetExists is returned by CheckTarget when codex.json is present,
// readable or not, and overwrite was not requested.
var ErrTargetExists = errors.New("codex already exists")

// CheckTarget reports whether a migration may write the project codex.
// An unreadable codex counts as existing: it may hold hand edits.
func CheckTarget(store codex.Store, dir string, overwrite bool) error {
	if overwrite {
		return nil
	}
	existing, err := store.Load(dir)
	if err != nil {
		return fmt.Errorf("%w: %s cannot be read: %v", ErrTargetExists, codex.CodexFile, err)
	}
	if existing != nil {
		return fmt.Errorf("%w: %s has %d characters", ErrTargetExists, codex.CodexFile, len(existing.Characters))
	}
	return nil
}

// Character converts a legacy character record. Absent fields default to
// empty; only a missing name fails.
func Character(rec map[string]any) (*codex.Character, error) {
	name := strings.TrimSpace(cast.ToString(rec["name"]))
	if name == "" {
		return nil, fmt.Errorf("character: %w: name", ErrMissingIdentity)
	}

	ch := codex.NewCharacter(name)
	ch.AgeAtStart = cast.ToString(rec["age"])
	ch.PhysicalDescription = cast.ToString(rec["physical_description"])
	ch.PersonalityTraits = cast.ToString(rec["personality_traits"])
	ch.Background = cast.ToString(rec["background"])
	ch.Motivations = cast.ToString(rec["motivations"])
	ch.Role = cast.ToString(rec["role"])
	ch.InternalConflicts = cast.ToString(rec["internal_conflicts"])
	ch.ExternalConflicts = cast.ToString(rec["external_conflicts"])
	ch.CharacterArc = cast.ToString(rec["character_arc"])
	return ch, nil
}

// Scene converts a legacy scene record of the given chapter. The setting
// doubles as the initial location. Only a missing scene number fails.
func Scene(chapter int, rec map[string]any) (codex.Scene, error) {
	raw, ok := rec["scene_number"]
	if !ok || raw == nil {
		return codex.Scene{}, fmt.Errorf("scene in chapter %d: %w: scene_number", chapter, ErrMissingIdentity)
	}
	number, err := cast.ToIntE(raw)
	if err != nil {
		return codex.Scene{}, fmt.Errorf("scene in chapter %d: scene_number %v: %w", chapter, raw, err)
	}

	setting := cast.ToString(rec["setting"])
	return codex.Scene{
		ID:            codex.SceneID(chapter, number),
		Chapter:       chapter,
		Number:        number,
		Summary:       cast.ToString(rec["summary"]),
		Characters:    cast.ToStringSlice(rec["characters"]),
		Setting:       setting,
		Goal:          cast.ToString(rec["goal"]),
		EmotionalBeat: cast.ToString(rec["emotional_beat"]),
		Location:      setting,
	}, nil
}

// Result summarizes a project migration.
type Result struct {
	Codex      *codex.Codex
	Characters int
	Chapters   int
	Scenes     int
	Skipped    []string // records that could not be converted, with the reason
}

// Project migrates a legacy project directory. Missing files are skipped;
// unreadable ones fail. Individual bad records are skipped and reported
// in Result.Skipped.
func Project(dir string) (*Result, error) {
	log := logger.With("dir", dir)
	log.Info("migrating project")
	cx := codex.New(manuscript.New(dir).ProjectName())
	res := &Result{Codex: cx}

	chars, err := readCharacters(dir)
	if err != nil {
		return nil, err
	}
	for _, rec := range chars {
		ch, err := Character(rec)
		if err != nil {
			res.Skipped = append(res.Skipped, err.Error())
			continue
		}
		Enrich(ch)
		if err := cx.AddCharacter(ch); err != nil {
			res.Skipped = append(res.Skipped, err.Error())
			continue
		}
		res.Characters++
	}

	scenes, err := readScenes(dir)
	if err != nil {
		return nil, err
	}
	chapters := make([]int, 0, len(scenes))
	for n := range scenes {
		chapters = append(chapters, n)
	}
	slices.Sort(chapters)
	for _, n := range chapters {
		if err := migrateChapter(cx, n, scenes[n], res); err != nil {
			res.Skipped = append(res.Skipped, err.Error())
			continue
		}
		res.Chapters++
	}

	data, found, err := manuscript.ReadProjectData(dir)
	if err != nil {
		return nil, err
	}
	if found {
		for _, theme := range themes(data) {
			cx.AddTheme(theme)
		}
	}

	for _, s := range res.Skipped {
		log.Warn("skipped legacy record", "reason", s)
	}
	log.Info("migration complete",
		"characters", res.Characters,
		"chapters", res.Chapters,
		"scenes", res.Scenes,
		"skipped", len(res.Skipped),
	)
	return res, nil
}

func migrateChapter(cx *codex.Codex, n int, recs []map[string]any, res *Result) error {
	ch := &codex.Chapter{
		Number: n,
		Title:  fmt.Sprintf("Chapter %d", n),
	}
	appearing := map[string]bool{}
	type appearance struct {
		name  string
		scene int
	}
	var appearances []appearance

	for _, rec := range recs {
		sc, err := Scene(n, rec)
		if err != nil {
			res.Skipped = append(res.Skipped, err.Error())
			continue
		}
		if sc.Number < 1 {
			res.Skipped = append(res.Skipped, fmt.Sprintf("scene in chapter %d: scene_number %d out of range", n, sc.Number))
			continue
		}
		if _, dup := ch.Scene(sc.Number); dup {
			res.Skipped = append(res.Skipped, fmt.Sprintf("scene %s: duplicate scene number", sc.ID))
			continue
		}
		ch.Scenes = append(ch.Scenes, sc)
		for _, raw := range sc.Characters {
			name := CleanName(raw)
			if name == "" {
				continue
			}
			appearing[name] = true
			appearances = append(appearances, appearance{name, sc.Number})
		}
	}

	for name := range appearing {
		ch.CharactersAppearing = append(ch.CharactersAppearing, name)
	}
	slices.Sort(ch.CharactersAppearing)

	if err := cx.AddChapter(ch); err != nil {
		return err
	}
	res.Scenes += len(ch.Scenes)
	for _, a := range appearances {
		if _, ok := cx.Character(a.name); ok {
			// Scene numbers were validated by AddChapter.
			_ = cx.RecordAppearance(a.name, n, a.scene, false)
		}
	}
	return nil
}

// CleanName strips a parenthetical suffix: "Mira (age 12)" -> "Mira".
func CleanName(s string) string {
	name, _, _ := strings.Cut(s, "(")
	return strings.TrimSpace(name)
}

// themes reads worldbuilding.themes, either a comma-separated string or a
// list.
func themes(data map[string]any) []string {
	wb := cast.ToStringMap(data["worldbuilding"])
	raw, ok := wb["themes"]
	if !ok {
		return nil
	}
	var parts []string
	if s, ok := raw.(string); ok {
		parts = strings.Split(s, ",")
	} else {
		parts = cast.ToStringSlice(raw)
	}
	var out []string
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// --- File readers ---

// readCharacters accepts either a list of records or an object of
// name -> record.
func readCharacters(dir string) ([]map[string]any, error) {
	raw, found, err := readJSON(dir, CharactersFile)
	if err != nil || !found {
		return nil, err
	}
	switch v := raw.(type) {
	case []any:
		out := make([]map[string]any, 0, len(v))
		for _, item := range v {
			out = append(out, cast.ToStringMap(item))
		}
		return out, nil
	case map[string]any:
		names := make([]string, 0, len(v))
		for name := range v {
			names = append(names, name)
		}
		slices.Sort(names)
		out := make([]map[string]any, 0, len(v))
		for _, name := range names {
			rec := cast.ToStringMap(v[name])
			if _, ok := rec["name"]; !ok {
				rec["name"] = name
			}
			out = append(out, rec)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s: expected a list or object of characters", CharactersFile)
	}
}

// readScenes returns chapter -> scene records.
func readScenes(dir string) (map[int][]map[string]any, error) {
	raw, found, err := readJSON(dir, ScenesFile)
	if err != nil || !found {
		return nil, err
	}
	byChapter, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s: expected an object keyed by chapter number", ScenesFile)
	}
	out := make(map[int][]map[string]any, len(byChapter))
	for key, list := range byChapter {
		n, err := cast.ToIntE(key)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("%s: bad chapter key %q", ScenesFile, key)
		}
		items, ok := list.([]any)
		if !ok {
			return nil, fmt.Errorf("%s: chapter %d: expected a list of scenes", ScenesFile, n)
		}
		for _, item := range items {
			out[n] = append(out[n], cast.ToStringMap(item))
		}
	}
	return out, nil
}

func readJSON(dir, name string) (any, bool, error) {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("reading %s: %w", name, err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, false, fmt.Errorf("parsing %s: %w", name, err)
	}
	return v, true, nil
}
