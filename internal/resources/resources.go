// Package resources implements MCP resource handlers for the story codex.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (codex://...) following MCP conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/storycodex/internal/codex"
)

// Handler manages codex resource endpoints for one project.
type Handler struct {
	store codex.Store
	dir   string
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(store codex.Store, projectDir string) *Handler {
	return &Handler{store: store, dir: projectDir}
}

// CodexResource returns the MCP resource definition for the whole codex.
func (h *Handler) CodexResource() mcp.Resource {
	return mcp.NewResource(
		"codex://project/codex",
		"Story Codex",
		mcp.WithResourceDescription("The project's codex.json: characters, chapters, callbacks, facts and world registries"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleCodex returns the current codex as JSON.
func (h *Handler) HandleCodex(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	cx, err := h.store.Load(h.dir)
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}
	if cx == nil {
		return errorResource(req.Params.URI, "no codex.json in this project"), nil
	}
	return jsonResource(req.Params.URI, "codex", cx)
}

// WarningsResource returns the MCP resource definition for reference checks.
func (h *Handler) WarningsResource() mcp.Resource {
	return mcp.NewResource(
		"codex://project/warnings",
		"Codex Warnings",
		mcp.WithResourceDescription("Dangling references and out-of-order history found in the codex"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleWarnings returns the codex reference warnings as JSON.
func (h *Handler) HandleWarnings(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	cx, err := h.store.Load(h.dir)
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}
	if cx == nil {
		return errorResource(req.Params.URI, "no codex.json in this project"), nil
	}
	warnings := cx.Check()
	if warnings == nil {
		warnings = []codex.Warning{}
	}
	return jsonResource(req.Params.URI, "warnings", warnings)
}

func jsonResource(uri, what string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", what, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
