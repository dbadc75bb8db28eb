package migrate

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/HendryAvila/storycodex/internal/codex"
	"github.com/HendryAvila/storycodex/internal/manuscript"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
}

func TestCharacter(t *testing.T) {
	ch, err := Character(map[string]any{
		"name":               "Mira",
		"age":                17,
		"role":               "protagonist",
		"internal_conflicts": "struggles with trust, fears the river",
	})
	if err != nil {
		t.Fatalf("Character: %v", err)
	}
	if ch.Name != "Mira" || ch.AgeAtStart != "17" || ch.Role != "protagonist" {
		t.Errorf("Character = %+v", ch)
	}
	if !ch.IsAlive || ch.Relationships == nil {
		t.Error("migrated character should start alive with an empty relationship map")
	}
	if ch.Background != "" || ch.Psychology.Fears != nil {
		t.Error("absent fields should stay empty")
	}

	for _, rec := range []map[string]any{{}, {"name": "  "}, {"role": "x"}} {
		if _, err := Character(rec); !errors.Is(err, ErrMissingIdentity) {
			t.Errorf("Character(%v) error = %v, want ErrMissingIdentity", rec, err)
		}
	}
}

func TestScene(t *testing.T) {
	sc, err := Scene(3, map[string]any{
		"scene_number": float64(2),
		"setting":      "the mill",
		"characters":   []any{"Mira", "Jonah (flashback)"},
		"summary":      "Mira finds the ledger.",
	})
	if err != nil {
		t.Fatalf("Scene: %v", err)
	}
	if sc.ID != "ch3_sc2" || sc.Chapter != 3 || sc.Number != 2 {
		t.Errorf("scene identity = %s %d/%d, want ch3_sc2", sc.ID, sc.Chapter, sc.Number)
	}
	if sc.Location != "the mill" || sc.Setting != "the mill" {
		t.Errorf("Location = %q, want setting copied", sc.Location)
	}
	if len(sc.Characters) != 2 {
		t.Errorf("Characters = %v", sc.Characters)
	}

	if _, err := Scene(1, map[string]any{"summary": "no number"}); !errors.Is(err, ErrMissingIdentity) {
		t.Errorf("missing scene_number error = %v, want ErrMissingIdentity", err)
	}
	if _, err := Scene(1, map[string]any{"scene_number": "two"}); err == nil {
		t.Error("non-numeric scene_number accepted")
	}
	if sc, err := Scene(1, map[string]any{"scene_number": "4"}); err != nil || sc.Number != 4 {
		t.Errorf("numeric string scene_number = %d, %v, want 4", sc.Number, err)
	}
}

func TestCleanName(t *testing.T) {
	tests := map[string]string{
		"Mira":              "Mira",
		"Jonah (flashback)": "Jonah",
		"  Caleb  ":         "Caleb",
		"(offstage)":        "",
	}
	for in, want := range tests {
		if got := CleanName(in); got != want {
			t.Errorf("CleanName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestInferArcType(t *testing.T) {
	tests := []struct {
		arc  string
		want codex.ArcType
	}{
		{"Seeks to redeem her father's name", codex.ArcRedemption},
		{"He slowly matures into a leader", codex.ArcTransformation},
		{"Falls into the cult's grip", codex.ArcFall},
		{"A teen forced to grow up", codex.ArcComingOfAge},
		{"Learns the cost of secrets", codex.ArcEducation},
		{"Her faith is challenged", codex.ArcTesting},
		{"", codex.ArcTransformation},
		{"Nothing recognizable here", codex.ArcTransformation},
	}
	for _, tt := range tests {
		if got := InferArcType(tt.arc); got != tt.want {
			t.Errorf("InferArcType(%q) = %s, want %s", tt.arc, got, tt.want)
		}
	}
}

func TestInferDominantEmotions(t *testing.T) {
	ch := codex.NewCharacter("Mira")
	ch.InternalConflicts = "Afraid of the river, haunted by the loss of her brother"
	ch.Motivations = "Driven by hope and love for her village"
	ch.CharacterArc = "Rage turns to guilt"

	got := InferDominantEmotions(ch)
	want := []codex.EmotionType{codex.EmotionFear, codex.EmotionGrief, codex.EmotionHope, codex.EmotionDetermination}
	if !slices.Equal(got, want) {
		t.Errorf("InferDominantEmotions = %v, want %v", got, want)
	}

	if got := InferDominantEmotions(codex.NewCharacter("Blank")); len(got) != 0 {
		t.Errorf("blank character emotions = %v, want none", got)
	}
}

func TestEnrich_Psychology(t *testing.T) {
	ch := codex.NewCharacter("Mira")
	ch.InternalConflicts = "She struggles with pride, and her fear of deep water"
	ch.Motivations = "Wants to find her brother"
	ch.PersonalityTraits = "brave, loyal, stubborn"
	Enrich(ch)

	if !slices.Equal(ch.Psychology.Flaws, []string{"pride"}) {
		t.Errorf("Flaws = %v, want [pride]", ch.Psychology.Flaws)
	}
	if len(ch.Psychology.Fears) != 1 || ch.Psychology.Fears[0] != ch.InternalConflicts {
		t.Errorf("Fears = %v, want the internal conflict text", ch.Psychology.Fears)
	}
	if len(ch.Psychology.Desires) != 1 {
		t.Errorf("Desires = %v, want motivations", ch.Psychology.Desires)
	}
	if !slices.Equal(ch.Psychology.Strengths, []string{"Brave", "Loyal"}) {
		t.Errorf("Strengths = %v, want [Brave Loyal]", ch.Psychology.Strengths)
	}
}

func TestProject(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, CharactersFile, `[
		{"name": "Mira", "character_arc": "grows into a leader", "personality_traits": "Resourceful"},
		{"name": "Jonah", "motivations": "wants revenge"},
		{"role": "nameless"}
	]`)
	writeFile(t, dir, ScenesFile, `{
		"2": [{"scene_number": 1, "characters": ["Jonah"], "setting": "docks"}],
		"1": [
			{"scene_number": 2, "characters": ["Mira", "Jonah (disguised)"]},
			{"scene_number": 1, "characters": ["Mira", "Stranger"], "setting": "the mill"},
			{"summary": "missing number"}
		]
	}`)
	writeFile(t, dir, manuscript.ProjectDataFile, `{
		"project_name": "Ashfall",
		"worldbuilding": {"themes": "survival, memory , "}
	}`)

	res, err := Project(dir)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	cx := res.Codex
	if cx.ProjectName != "Ashfall" {
		t.Errorf("ProjectName = %q, want Ashfall", cx.ProjectName)
	}
	if res.Characters != 2 || res.Chapters != 2 || res.Scenes != 3 || len(res.Skipped) != 2 {
		t.Errorf("result = %d chars, %d chapters, %d scenes, skipped %v", res.Characters, res.Chapters, res.Scenes, res.Skipped)
	}

	ch1 := cx.Chapters[1]
	if ch1.Title != "Chapter 1" || ch1.Scenes[0].Number != 1 {
		t.Errorf("chapter 1 = %q, first scene %d", ch1.Title, ch1.Scenes[0].Number)
	}
	if !slices.Equal(ch1.CharactersAppearing, []string{"Jonah", "Mira", "Stranger"}) {
		t.Errorf("CharactersAppearing = %v", ch1.CharactersAppearing)
	}

	jonah, _ := cx.Character("Jonah")
	wantRefs := []codex.SceneRef{{Chapter: 1, Scene: 2}, {Chapter: 2, Scene: 1}}
	if !slices.Equal(jonah.ScenesAppeared, wantRefs) {
		t.Errorf("Jonah appearances = %v, want %v", jonah.ScenesAppeared, wantRefs)
	}
	mira, _ := cx.Character("Mira")
	if mira.ArcType != codex.ArcTransformation || !slices.Equal(mira.Psychology.Strengths, []string{"Resourceful"}) {
		t.Errorf("Mira enrichment = %s %v", mira.ArcType, mira.Psychology.Strengths)
	}
	if !slices.Equal(cx.GlobalThemes, []string{"survival", "memory"}) {
		t.Errorf("GlobalThemes = %v", cx.GlobalThemes)
	}
	if err := cx.Validate(); err != nil {
		t.Errorf("migrated codex invalid: %v", err)
	}
}

func TestProject_EmptyDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "quiet-book")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	res, err := Project(dir)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if res.Codex.ProjectName != "quiet-book" || len(res.Codex.Characters) != 0 {
		t.Errorf("empty project = %+v", res)
	}
}

func TestProject_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ScenesFile, `["not", "an", "object"]`)
	if _, err := Project(dir); err == nil {
		t.Error("Project accepted scenes.json that is not an object")
	}

	dir = t.TempDir()
	writeFile(t, dir, CharactersFile, `{broken`)
	if _, err := Project(dir); err == nil {
		t.Error("Project accepted unparsable characters.json")
	}
}

func TestCheckTarget(t *testing.T) {
	tests := []struct {
		name      string
		codex     string // codex.json body; empty means no file
		overwrite bool
		wantErr   bool
	}{
		{"no codex", "", false, false},
		{"valid codex", `{"characters": {}}`, false, true},
		{"truncated codex", `{"characters": {"A": `, false, true},
		{"truncated codex with overwrite", `{"characters": {"A": `, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.codex != "" {
				writeFile(t, dir, codex.CodexFile, tt.codex)
			}
			err := CheckTarget(codex.NewFileStore(), dir, tt.overwrite)
			if tt.wantErr && !errors.Is(err, ErrTargetExists) {
				t.Errorf("CheckTarget = %v, want ErrTargetExists", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("CheckTarget = %v, want nil", err)
			}
		})
	}
}
