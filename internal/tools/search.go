package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/storycodex/internal/index"
)

// SearchTool handles the codex_search MCP tool.
type SearchTool struct {
	ws *Workspace
}

// NewSearchTool creates a SearchTool.
func NewSearchTool(ws *Workspace) *SearchTool {
	return &SearchTool{ws: ws}
}

// Definition returns the MCP tool definition for registration.
func (t *SearchTool) Definition() mcp.Tool {
	return mcp.NewTool("codex_search",
		mcp.WithDescription(
			"Full-text search over the codex: characters, scenes, callbacks, facts, memories, "+
				"symbols, locations and items. Pass `max_chapter` to see only what exists "+
				"at or before that chapter, so later revelations do not leak into earlier scenes.",
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Words to search for; empty lists entries in chapter order"),
		),
		mcp.WithString("kind",
			mcp.Description("Restrict to one kind of entry"),
			mcp.Enum("character", "scene", "callback", "fact", "memory", "symbol", "location", "item"),
		),
		mcp.WithNumber("max_chapter",
			mcp.Description("Only entries introduced at or before this chapter (0 = no bound)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum results (default 10)"),
		),
	)
}

// Handle processes the codex_search tool call.
func (t *SearchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t.ws.index == nil {
		return mcp.NewToolResultError("Search is disabled for this project (index.enabled is false or the index failed to open)."), nil
	}
	cx, err := t.ws.load()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	// codex.json may have been edited outside the server.
	if _, err := t.ws.index.Rebuild(cx); err != nil {
		return nil, fmt.Errorf("refreshing search index: %w", err)
	}

	query := req.GetString("query", "")
	opts := index.Options{
		Kind:       index.Kind(req.GetString("kind", "")),
		MaxChapter: intArg(req, "max_chapter", 0),
		Limit:      intArg(req, "limit", 10),
	}
	results, err := t.ws.index.Search(query, opts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No codex entries match %q.", query)), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Search: %q (%d results)\n\n", query, len(results))
	for _, r := range results {
		when := "from the start"
		if r.Chapter > 0 {
			when = fmt.Sprintf("ch%d", r.Chapter)
		}
		fmt.Fprintf(&sb, "- **[%s] %s** `%s` (%s)\n  %s\n", r.Kind, r.Title, r.Key, when,
			snippet(r.Content, 160))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// snippet flattens s to one line and cuts it to n runes.
func snippet(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > n {
		return string(r[:n]) + "..."
	}
	return s
}
