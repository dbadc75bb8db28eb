// Package index mirrors a codex into SQLite with FTS5 full-text search.
//
// The index is derived data: codex.json stays the source of truth and the
// index is rebuilt from a snapshot whenever the codex changes. Every entry
// carries the chapter in which it enters the story, so searches can be
// bounded to what is known at a given chapter.
package index

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/HendryAvila/storycodex/internal/codex"
	"github.com/HendryAvila/storycodex/internal/logger"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// ─── Types ───────────────────────────────────────────────────────────────────

// Kind names the codex collection an entry was taken from.
type Kind string

const (
	KindCharacter Kind = "character"
	KindScene     Kind = "scene"
	KindCallback  Kind = "callback"
	KindFact      Kind = "fact"
	KindMemory    Kind = "memory"
	KindSymbol    Kind = "symbol"
	KindLocation  Kind = "location"
	KindItem      Kind = "item"
)

var validKinds = map[Kind]bool{
	KindCharacter: true,
	KindScene:     true,
	KindCallback:  true,
	KindFact:      true,
	KindMemory:    true,
	KindSymbol:    true,
	KindLocation:  true,
	KindItem:      true,
}

// ValidateKind checks if the kind is one of the indexed collections.
func ValidateKind(k Kind) error {
	if !validKinds[k] {
		return fmt.Errorf("invalid entry kind %q: must be one of character, scene, callback, fact, memory, symbol, location, item", k)
	}
	return nil
}

// Entry is one indexed codex record. Chapter 0 means known from the start.
type Entry struct {
	ID      int64  `json:"id"`
	Kind    Kind   `json:"kind"`
	Key     string `json:"key"`
	Chapter int    `json:"chapter"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// SearchResult embeds an Entry with its FTS5 rank score.
type SearchResult struct {
	Entry
	Rank float64 `json:"rank"`
}

// Options holds filters for search queries.
type Options struct {
	Kind       Kind `json:"kind,omitempty"`
	MaxChapter int  `json:"max_chapter,omitempty"` // 0 = no bound
	Limit      int  `json:"limit,omitempty"`
}

// ─── Config ──────────────────────────────────────────────────────────────────

// DBFile is the index filename inside the project's data directory.
const DBFile = "index.db"

// DataDir is the per-project directory holding derived data.
const DataDir = ".storycodex"

// Config holds index configuration.
type Config struct {
	Path             string
	MaxSearchResults int
}

// DefaultConfig returns the default configuration for a project root.
func DefaultConfig(projectRoot string) Config {
	return Config{
		Path:             filepath.Join(projectRoot, DataDir, DBFile),
		MaxSearchResults: 20,
	}
}

// ─── Store ───────────────────────────────────────────────────────────────────

// Store is the codex search index backed by SQLite + FTS5.
type Store struct {
	db  *sql.DB
	cfg Config
}

// Open creates the index directory if needed, opens SQLite with WAL mode,
// and runs migrations.
func Open(cfg Config) (*Store, error) {
	if cfg.MaxSearchResults <= 0 {
		cfg.MaxSearchResults = 20
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o700); err != nil {
		return nil, fmt.Errorf("index: create data dir: %w", err)
	}

	db, err := openDB("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("index: open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("index: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, cfg: cfg}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("index: migration: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ─── Migrations ──────────────────────────────────────────────────────────────

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS entries (
			id      INTEGER PRIMARY KEY AUTOINCREMENT,
			kind    TEXT    NOT NULL,
			key     TEXT    NOT NULL,
			chapter INTEGER NOT NULL DEFAULT 0,
			title   TEXT    NOT NULL,
			content TEXT    NOT NULL
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_entries_key     ON entries(kind, key);
		CREATE INDEX        IF NOT EXISTS idx_entries_chapter ON entries(chapter);

		CREATE VIRTUAL TABLE IF NOT EXISTS entries_fts USING fts5(
			title,
			content,
			kind,
			content='entries',
			content_rowid='id'
		);

		CREATE TRIGGER IF NOT EXISTS entries_fts_insert AFTER INSERT ON entries BEGIN
			INSERT INTO entries_fts(rowid, title, content, kind)
			VALUES (new.id, new.title, new.content, new.kind);
		END;

		CREATE TRIGGER IF NOT EXISTS entries_fts_delete AFTER DELETE ON entries BEGIN
			INSERT INTO entries_fts(entries_fts, rowid, title, content, kind)
			VALUES ('delete', old.id, old.title, old.content, old.kind);
		END;

		CREATE TRIGGER IF NOT EXISTS entries_fts_update AFTER UPDATE ON entries BEGIN
			INSERT INTO entries_fts(entries_fts, rowid, title, content, kind)
			VALUES ('delete', old.id, old.title, old.content, old.kind);
			INSERT INTO entries_fts(rowid, title, content, kind)
			VALUES (new.id, new.title, new.content, new.kind);
		END;
	`
	_, err := s.db.Exec(schema)
	return err
}

// ─── Rebuild ─────────────────────────────────────────────────────────────────

// Rebuild replaces the index contents with the entries of cx in a single
// transaction and returns the number of entries written.
func (s *Store) Rebuild(cx *codex.Codex) (int, error) {
	entries := Entries(cx)

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("rebuild: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM entries`); err != nil {
		return 0, fmt.Errorf("rebuild: clear: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO entries (kind, key, chapter, title, content) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("rebuild: prepare: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, e := range entries {
		if _, err := stmt.Exec(e.Kind, e.Key, e.Chapter, e.Title, e.Content); err != nil {
			return 0, fmt.Errorf("rebuild: insert %s %q: %w", e.Kind, e.Key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("rebuild: commit: %w", err)
	}
	logger.Debug("index rebuilt", "path", s.cfg.Path, "entries", len(entries))
	return len(entries), nil
}

// Count returns the number of indexed entries.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

// ─── Search (FTS5) ───────────────────────────────────────────────────────────

// Search performs full-text search across entries. MaxChapter bounds the
// results to entries introduced at or before that chapter. An empty query
// lists entries in chapter order instead.
func (s *Store) Search(query string, opts Options) ([]SearchResult, error) {
	if opts.Kind != "" {
		if err := ValidateKind(opts.Kind); err != nil {
			return nil, err
		}
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}
	limit = min(limit, s.cfg.MaxSearchResults)

	var (
		sqlStr string
		args   []any
	)
	ftsQuery := sanitizeFTS(query)
	if ftsQuery == "" {
		sqlStr = `
			SELECT e.id, e.kind, e.key, e.chapter, e.title, e.content, 0 AS rank
			FROM entries e
			WHERE 1 = 1
		`
	} else {
		sqlStr = `
			SELECT e.id, e.kind, e.key, e.chapter, e.title, e.content, fts.rank
			FROM entries_fts fts
			JOIN entries e ON e.id = fts.rowid
			WHERE entries_fts MATCH ?
		`
		args = append(args, ftsQuery)
	}

	if opts.Kind != "" {
		sqlStr += " AND e.kind = ?"
		args = append(args, string(opts.Kind))
	}
	if opts.MaxChapter > 0 {
		sqlStr += " AND e.chapter <= ?"
		args = append(args, opts.MaxChapter)
	}
	if ftsQuery == "" {
		sqlStr += " ORDER BY e.chapter, e.kind, e.key LIMIT ?"
	} else {
		sqlStr += " ORDER BY fts.rank, e.chapter LIMIT ?"
	}
	args = append(args, limit)

	rows, err := s.db.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []SearchResult
	for rows.Next() {
		var sr SearchResult
		if err := rows.Scan(&sr.ID, &sr.Kind, &sr.Key, &sr.Chapter, &sr.Title, &sr.Content, &sr.Rank); err != nil {
			return nil, err
		}
		results = append(results, sr)
	}
	return results, rows.Err()
}

// sanitizeFTS wraps each word in quotes for safe FTS5 queries.
// "red thread" → `"red" "thread"`
func sanitizeFTS(query string) string {
	var words []string
	for _, w := range strings.Fields(query) {
		if w = strings.ReplaceAll(w, `"`, ""); w != "" {
			words = append(words, `"`+w+`"`)
		}
	}
	return strings.Join(words, " ")
}
