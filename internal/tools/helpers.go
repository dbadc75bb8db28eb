// Package tools implements the MCP tool handlers over a project codex.
//
// Each tool receives its dependencies via its struct and returns a
// handler compatible with mcp-go's CallToolRequest signature:
//   - one file per tool
//   - tools depend on the Workspace, never on the filesystem directly
//   - domain failures become tool errors; only infrastructure faults are
//     returned as Go errors
package tools

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cast"

	"github.com/HendryAvila/storycodex/internal/codex"
	"github.com/HendryAvila/storycodex/internal/config"
	"github.com/HendryAvila/storycodex/internal/index"
	"github.com/HendryAvila/storycodex/internal/logger"
)

// Workspace is the project every tool operates on.
type Workspace struct {
	store codex.Store
	cfg   *config.Config
	index *index.Store // nil when search is disabled
}

// NewWorkspace creates a Workspace over the given store and settings.
func NewWorkspace(store codex.Store, cfg *config.Config) *Workspace {
	return &Workspace{store: store, cfg: cfg}
}

// SetIndex enables the search index. Nil disables it.
func (w *Workspace) SetIndex(ix *index.Store) {
	w.index = ix
}

// Dir returns the project directory.
func (w *Workspace) Dir() string {
	return w.cfg.ProjectDir
}

// Config returns the project settings.
func (w *Workspace) Config() *config.Config {
	return w.cfg
}

// errNoCodex is reported to the client when the project has no codex.json.
var errNoCodex = errors.New("no codex found for this project. Run `codex_migrate` to create one from characters.json and scenes.json")

// load reads the codex. A missing codex returns errNoCodex; a malformed
// one is surfaced as-is so the client can see what is wrong.
func (w *Workspace) load() (*codex.Codex, error) {
	cx, err := w.store.Load(w.cfg.ProjectDir)
	if err != nil {
		return nil, err
	}
	if cx == nil {
		return nil, errNoCodex
	}
	return cx, nil
}

// loadOrNew reads the codex, starting an empty one when none exists yet.
func (w *Workspace) loadOrNew() (*codex.Codex, error) {
	cx, err := w.store.Load(w.cfg.ProjectDir)
	if err != nil {
		return nil, err
	}
	if cx == nil {
		cx = codex.New(w.cfg.Manuscript().ProjectName())
	}
	return cx, nil
}

// mutate runs load → fn → save. Errors from fn are domain errors and come
// back as tool errors; save failures are infrastructure faults.
func (w *Workspace) mutate(fn func(cx *codex.Codex) (string, error)) (*mcp.CallToolResult, error) {
	cx, err := w.loadOrNew()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Cannot load codex: %v", err)), nil
	}
	msg, err := fn(cx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := w.store.Save(w.cfg.ProjectDir, cx); err != nil {
		logger.Error("codex save failed", "project", w.cfg.ProjectDir, "err", err)
		return nil, fmt.Errorf("saving codex: %w", err)
	}
	w.reindex(cx)
	return mcp.NewToolResultText(msg), nil
}

// reindex refreshes the search index after a save. Failures only log:
// the codex on disk is already consistent.
func (w *Workspace) reindex(cx *codex.Codex) {
	if w.index == nil {
		return
	}
	if _, err := w.index.Rebuild(cx); err != nil {
		logger.Warn("search index refresh failed", "err", err)
	}
}

// intArg extracts an integer argument, accepting JSON numbers and numeric
// strings. Missing or unparsable values return defaultVal.
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key]
	if !ok || v == nil {
		return defaultVal
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return defaultVal
	}
	return n
}

// boolArg extracts a boolean argument from a tool request.
func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}

// requireChapter extracts a required 1-based chapter-like argument.
func requireChapter(req mcp.CallToolRequest, key string) (int, error) {
	n := intArg(req, key, 0)
	if n < 1 {
		return 0, fmt.Errorf("%s is required and must be a positive integer", key)
	}
	return n, nil
}

// jsonResult renders v as indented JSON under a markdown heading.
func jsonResult(title string, v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", title, err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("# %s\n\n```json\n%s\n```", title, data)), nil
}
