package index

import (
	"path/filepath"
	"testing"

	"github.com/HendryAvila/storycodex/internal/codex"
)

// newTestStore opens an index in a temp directory for isolation.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Config{Path: filepath.Join(t.TempDir(), DataDir, DBFile), MaxSearchResults: 20})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testCodex(t *testing.T) *codex.Codex {
	t.Helper()
	cx := codex.New("Ashfall")

	mira := codex.NewCharacter("Mira")
	mira.Role = "protagonist"
	mira.Psychology.Secrets = []string{"she opened the floodgate"}
	if err := cx.AddCharacter(mira); err != nil {
		t.Fatal(err)
	}
	if err := cx.AddCharacter(codex.NewCharacter("Caleb")); err != nil {
		t.Fatal(err)
	}
	for _, ref := range []codex.SceneRef{{Chapter: 3, Scene: 1}, {Chapter: 2, Scene: 1}} {
		if err := cx.RecordAppearance("Mira", ref.Chapter, ref.Scene, false); err != nil {
			t.Fatal(err)
		}
	}

	scenes := []codex.Scene{
		{Chapter: 2, Number: 1, Summary: "Mira hides the brass locket in the mill.", Characters: []string{"Mira"}},
		{Chapter: 9, Number: 1, Summary: "The locket is opened at last.", Characters: []string{"Mira"}},
	}
	for _, sc := range scenes {
		if err := cx.AddScene(sc); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := cx.AddCallback(codex.Callback{
		ID:               "cb_locket",
		Name:             "the brass locket",
		SetupChapter:     2,
		SetupDescription: "Mira hides a locket",
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := cx.AddFact(codex.Fact{Fact: "The river floods every spring", Category: "world", EstablishedChapter: 1}); err != nil {
		t.Fatal(err)
	}
	if err := cx.SetSymbol("red thread", "fate binding the siblings"); err != nil {
		t.Fatal(err)
	}
	if err := cx.SetLocation(codex.Location{Name: "the mill", Description: "abandoned flour mill", FirstChapter: 2}); err != nil {
		t.Fatal(err)
	}
	if err := cx.SetItem(codex.Item{Name: "ledger", Owner: "Caleb", FirstChapter: 5}); err != nil {
		t.Fatal(err)
	}
	return cx
}

func TestEntries(t *testing.T) {
	entries := Entries(testCodex(t))

	byKey := map[string]Entry{}
	for _, e := range entries {
		byKey[string(e.Kind)+"/"+e.Key] = e
	}
	tests := []struct {
		key     string
		chapter int
	}{
		{"character/Mira", 2},
		{"character/Caleb", 0},
		{"scene/ch9_sc1", 9},
		{"callback/cb_locket", 2},
		{"fact/fact_1_0", 1},
		{"symbol/red thread", 0},
		{"location/the mill", 2},
		{"item/ledger", 5},
	}
	for _, tt := range tests {
		e, ok := byKey[tt.key]
		if !ok {
			t.Errorf("missing entry %s", tt.key)
			continue
		}
		if e.Chapter != tt.chapter {
			t.Errorf("%s chapter = %d, want %d", tt.key, e.Chapter, tt.chapter)
		}
	}
	if len(entries) != 9 {
		t.Errorf("len(Entries) = %d, want 9", len(entries))
	}
	if Entries(nil) != nil {
		t.Error("Entries(nil) should be empty")
	}
}

func TestRebuild_ReplacesContents(t *testing.T) {
	s := newTestStore(t)
	cx := testCodex(t)

	for range 2 {
		n, err := s.Rebuild(cx)
		if err != nil {
			t.Fatalf("Rebuild: %v", err)
		}
		if n != 9 {
			t.Errorf("Rebuild wrote %d entries, want 9", n)
		}
	}
	count, err := s.Count()
	if err != nil {
		t.Fatal(err)
	}
	if count != 9 {
		t.Errorf("Count after two rebuilds = %d, want 9", count)
	}

	if _, err := s.Rebuild(codex.New("empty")); err != nil {
		t.Fatal(err)
	}
	if count, _ := s.Count(); count != 0 {
		t.Errorf("Count after empty rebuild = %d, want 0", count)
	}
	if got, _ := s.Search("locket", Options{}); len(got) != 0 {
		t.Errorf("stale FTS rows after rebuild: %v", got)
	}
}

func TestSearch(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Rebuild(testCodex(t)); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	tests := []struct {
		name  string
		query string
		opts  Options
		want  []string // kind/key, any order
	}{
		{"all locket mentions", "locket", Options{}, []string{"scene/ch2_sc1", "scene/ch9_sc1", "callback/cb_locket"}},
		{"bounded by chapter", "locket", Options{MaxChapter: 5}, []string{"scene/ch2_sc1", "callback/cb_locket"}},
		{"kind filter", "locket", Options{Kind: KindCallback}, []string{"callback/cb_locket"}},
		{"secret", "floodgate", Options{}, []string{"character/Mira"}},
		{"owner text", "Caleb", Options{Kind: KindItem}, []string{"item/ledger"}},
		{"quotes stripped", `"river`, Options{}, []string{"fact/fact_1_0"}},
		{"no match", "dragon", Options{}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Search(tt.query, tt.opts)
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			seen := map[string]bool{}
			for _, r := range got {
				seen[string(r.Kind)+"/"+r.Key] = true
			}
			if len(got) != len(tt.want) {
				t.Errorf("Search(%q) returned %d results, want %d: %v", tt.query, len(got), len(tt.want), seen)
			}
			for _, w := range tt.want {
				if !seen[w] {
					t.Errorf("Search(%q) missing %s", tt.query, w)
				}
			}
		})
	}
}

func TestSearch_EmptyQueryListsByChapter(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Rebuild(testCodex(t)); err != nil {
		t.Fatal(err)
	}
	got, err := s.Search("  ", Options{MaxChapter: 2, Limit: 50})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for i, r := range got {
		if r.Chapter > 2 {
			t.Errorf("entry %s at chapter %d exceeds bound", r.Key, r.Chapter)
		}
		if i > 0 && got[i-1].Chapter > r.Chapter {
			t.Errorf("results not in chapter order at %d", i)
		}
	}
	if len(got) != 7 {
		t.Errorf("len = %d, want 7", len(got))
	}
}

func TestSearch_LimitAndKind(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Rebuild(testCodex(t)); err != nil {
		t.Fatal(err)
	}
	got, err := s.Search("", Options{Limit: 2})
	if err != nil || len(got) != 2 {
		t.Errorf("Search limit 2 = %d results, %v", len(got), err)
	}
	if _, err := s.Search("x", Options{Kind: "planet"}); err == nil {
		t.Error("unknown kind accepted")
	}
}

func TestSanitizeFTS(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"red thread", `"red" "thread"`},
		{`"quoted"`, `"quoted"`},
		{`" "`, ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := sanitizeFTS(tt.in); got != tt.want {
			t.Errorf("sanitizeFTS(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
