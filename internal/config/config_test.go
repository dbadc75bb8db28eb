package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/HendryAvila/storycodex/internal/manuscript"
)

func writeSettings(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", FileName, err)
	}
}

// --- Load ---

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ProjectDir != dir {
		t.Errorf("ProjectDir = %s, want %s", cfg.ProjectDir, dir)
	}
	if cfg.ContextWords != manuscript.DefaultContextWords {
		t.Errorf("ContextWords = %d, want %d", cfg.ContextWords, manuscript.DefaultContextWords)
	}
	if !cfg.Index.Enabled || cfg.Index.MaxResults != 20 {
		t.Errorf("Index = %+v, want enabled with 20 results", cfg.Index)
	}
	if want := filepath.Join(dir, ".storycodex", "index.db"); cfg.IndexPath() != want {
		t.Errorf("IndexPath = %s, want %s", cfg.IndexPath(), want)
	}
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	writeSettings(t, dir, `
planned_chapters: 30
index:
  enabled: false
  path: /tmp/elsewhere.db
`)
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PlannedChapters != 30 {
		t.Errorf("PlannedChapters = %d, want 30", cfg.PlannedChapters)
	}
	if cfg.Index.Enabled {
		t.Error("Index.Enabled = true, want false from yaml")
	}
	if cfg.Index.MaxResults != 20 {
		t.Errorf("Index.MaxResults = %d, want default 20 kept", cfg.Index.MaxResults)
	}
	if cfg.IndexPath() != "/tmp/elsewhere.db" {
		t.Errorf("IndexPath = %s, want absolute path kept", cfg.IndexPath())
	}
	if cfg.ContextWords != manuscript.DefaultContextWords {
		t.Errorf("ContextWords = %d, want default kept", cfg.ContextWords)
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	writeSettings(t, dir, "context_words: 500\n")
	t.Setenv("STORYCODEX_CONTEXT_WORDS", "1200")
	t.Setenv("STORYCODEX_INDEX_MAX_RESULTS", "50")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ContextWords != 1200 {
		t.Errorf("ContextWords = %d, want 1200 from env", cfg.ContextWords)
	}
	if cfg.Index.MaxResults != 50 {
		t.Errorf("Index.MaxResults = %d, want 50 from env", cfg.Index.MaxResults)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		settings string
		wantErr  string
	}{
		{"malformed yaml", "planned_chapters: [", "parsing"},
		{"negative plan", "planned_chapters: -1", "validating"},
		{"zero context", "context_words: 0", "validating"},
		{"too many results", "index:\n  max_results: 500", "validating"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeSettings(t, dir, tt.settings)
			_, err := Load(dir)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_BadEnv(t *testing.T) {
	t.Setenv("STORYCODEX_PLANNED_CHAPTERS", "many")
	if _, err := Load(t.TempDir()); err == nil {
		t.Error("Load accepted non-numeric STORYCODEX_PLANNED_CHAPTERS")
	}
}

// --- Derived collaborators ---

func TestManuscript_HonorsOverride(t *testing.T) {
	dir := t.TempDir()
	cfg := Default(dir)
	cfg.PlannedChapters = 40

	n, found, err := cfg.Manuscript().PlannedChapters(t.Context())
	if err != nil || !found || n != 40 {
		t.Errorf("PlannedChapters = %d, %v, %v, want 40, true, nil", n, found, err)
	}
}

func TestIndexStoreConfig(t *testing.T) {
	cfg := Default("/books/ashfall")
	got := cfg.IndexStoreConfig()
	if got.Path != "/books/ashfall/.storycodex/index.db" || got.MaxSearchResults != 20 {
		t.Errorf("IndexStoreConfig = %+v", got)
	}
}

// --- FindProjectRoot ---

func TestFindRootFrom(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "drafts", "act1")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	if got := findRootFrom(nested); got != nested {
		t.Errorf("without markers = %s, want start dir %s", got, nested)
	}

	if err := os.WriteFile(filepath.Join(root, manuscript.ProjectDataFile), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := findRootFrom(nested); got != root {
		t.Errorf("with project_data.json = %s, want %s", got, root)
	}
}
