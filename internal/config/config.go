// Package config loads storycodex settings for a project directory.
//
// Precedence, lowest to highest: built-in defaults, the project's
// storycodex.yaml, then STORYCODEX_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/HendryAvila/storycodex/internal/codex"
	"github.com/HendryAvila/storycodex/internal/index"
	"github.com/HendryAvila/storycodex/internal/manuscript"
)

// FileName is the optional per-project settings file.
const FileName = "storycodex.yaml"

// Config holds the settings of one project.
type Config struct {
	ProjectDir string `yaml:"-" env:"STORYCODEX_PROJECT_DIR"`

	// PlannedChapters overrides num_chapters from project_data.json when positive.
	PlannedChapters int `yaml:"planned_chapters" env:"STORYCODEX_PLANNED_CHAPTERS" validate:"gte=0"`
	// ContextWords is the previous-chapter tail length.
	ContextWords int `yaml:"context_words" env:"STORYCODEX_CONTEXT_WORDS" validate:"gte=1"`

	Index IndexConfig `yaml:"index" envPrefix:"STORYCODEX_INDEX_"`

	Debug bool `yaml:"debug" env:"STORYCODEX_DEBUG"`
}

// IndexConfig controls the full-text search index.
type IndexConfig struct {
	Enabled    bool   `yaml:"enabled" env:"ENABLED"`
	Path       string `yaml:"path" env:"PATH"` // relative paths resolve against the project dir
	MaxResults int    `yaml:"max_results" env:"MAX_RESULTS" validate:"gte=1,lte=100"`
}

// Default returns the built-in settings for a project directory.
func Default(projectDir string) *Config {
	return &Config{
		ProjectDir:   projectDir,
		ContextWords: manuscript.DefaultContextWords,
		Index: IndexConfig{
			Enabled:    true,
			Path:       filepath.Join(index.DataDir, index.DBFile),
			MaxResults: 20,
		},
	}
}

// Load resolves settings for projectDir. An empty projectDir is located
// with FindProjectRoot from the working directory. A missing settings
// file is not an error.
func Load(projectDir string) (*Config, error) {
	if projectDir == "" {
		root, err := FindProjectRoot()
		if err != nil {
			return nil, err
		}
		projectDir = root
	}
	cfg := Default(projectDir)

	data, err := os.ReadFile(filepath.Join(projectDir, FileName))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", FileName, err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("reading %s: %w", FileName, err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.ProjectDir == "" {
		cfg.ProjectDir = projectDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}
	return nil
}

// IndexPath returns the absolute location of the search index.
func (c *Config) IndexPath() string {
	if filepath.IsAbs(c.Index.Path) {
		return c.Index.Path
	}
	return filepath.Join(c.ProjectDir, c.Index.Path)
}

// IndexStoreConfig returns the index store settings.
func (c *Config) IndexStoreConfig() index.Config {
	return index.Config{Path: c.IndexPath(), MaxSearchResults: c.Index.MaxResults}
}

// Manuscript returns a manuscript reader honoring the planned-chapter
// override.
func (c *Config) Manuscript() *manuscript.Project {
	p := manuscript.New(c.ProjectDir)
	p.PlannedOverride = c.PlannedChapters
	return p
}

// FindProjectRoot walks up from the working directory looking for a
// directory holding codex.json or project_data.json. If none is found,
// it returns the working directory.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}
	return findRootFrom(dir), nil
}

func findRootFrom(dir string) string {
	markers := []string{codex.CodexFile, manuscript.ProjectDataFile, FileName}
	current := dir
	for {
		for _, m := range markers {
			if _, err := os.Stat(filepath.Join(current, m)); err == nil {
				return current
			}
		}
		parent := filepath.Dir(current)
		if parent == current {
			return dir
		}
		current = parent
	}
}
