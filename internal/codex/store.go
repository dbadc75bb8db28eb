package codex

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// CodexFile is the filename of the persisted codex inside a project.
const CodexFile = "codex.json"

// Store defines the persistence interface for a project codex.
// Abstracted for testability.
type Store interface {
	Load(projectRoot string) (*Codex, error)
	Save(projectRoot string, cx *Codex) error
}

// FileStore implements Store as one JSON document per project.
type FileStore struct{}

// NewFileStore creates a filesystem-backed codex store.
func NewFileStore() *FileStore {
	return &FileStore{}
}

// CodexPath returns the absolute path to a project's codex.json.
func CodexPath(projectRoot string) string {
	return filepath.Join(projectRoot, CodexFile)
}

// Load reads the project codex. Returns nil (not an error) when the
// project has no codex yet. Unparseable or invalid documents wrap
// ErrMalformed.
func (fs *FileStore) Load(projectRoot string) (*Codex, error) {
	data, err := os.ReadFile(CodexPath(projectRoot))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", CodexFile, err)
	}

	var cx Codex
	if err := json.Unmarshal(data, &cx); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrMalformed, CodexFile, err)
	}
	cx.normalize()
	if err := cx.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, CodexFile, err)
	}
	return &cx, nil
}

// Save overwrites the project codex with the whole aggregate and stamps
// last_updated. The document is written to a temporary file first and
// renamed into place.
func (fs *FileStore) Save(projectRoot string, cx *Codex) error {
	if cx == nil {
		return fmt.Errorf("%w: nil codex", ErrInvalid)
	}
	if err := os.MkdirAll(projectRoot, 0o755); err != nil {
		return fmt.Errorf("creating project directory: %w", err)
	}

	cx.LastUpdated = timeNow().UTC().Format(time.RFC3339)
	data, err := json.MarshalIndent(cx, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling codex: %w", err)
	}

	tmp, err := os.CreateTemp(projectRoot, ".codex-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing codex: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, CodexPath(projectRoot)); err != nil {
		return fmt.Errorf("replacing %s: %w", CodexFile, err)
	}
	return nil
}
