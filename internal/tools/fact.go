package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/storycodex/internal/codex"
)

// AddFactTool handles the codex_add_fact MCP tool.
// Facts are append-only: an id, once established, keeps its text.
type AddFactTool struct {
	ws *Workspace
}

// NewAddFactTool creates an AddFactTool.
func NewAddFactTool(ws *Workspace) *AddFactTool {
	return &AddFactTool{ws: ws}
}

// Definition returns the MCP tool definition for registration.
func (t *AddFactTool) Definition() mcp.Tool {
	return mcp.NewTool("codex_add_fact",
		mcp.WithDescription(
			"Record a fact about the story world that later chapters must respect "+
				"(a date, a rule of magic, a scar). Facts are append-only: re-adding an id "+
				"with different text is rejected. Without `id`, one is generated as fact_<chapter>_<n>.",
		),
		mcp.WithString("fact",
			mcp.Required(),
			mcp.Description("The fact as a single assertion"),
		),
		mcp.WithNumber("chapter",
			mcp.Required(),
			mcp.Description("Chapter where the fact is established"),
		),
		mcp.WithNumber("scene",
			mcp.Description("Scene where it is established (0 = unspecified)"),
		),
		mcp.WithString("category",
			mcp.Description("character, world, tech, history, ..."),
		),
		mcp.WithString("source",
			mcp.Description("Where the fact comes from (dialogue, narration, ...)"),
		),
		mcp.WithString("id",
			mcp.Description("Explicit fact id (optional)"),
		),
	)
}

// Handle processes the codex_add_fact tool call.
func (t *AddFactTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	f := codex.Fact{
		ID:                 req.GetString("id", ""),
		Fact:               req.GetString("fact", ""),
		Category:           req.GetString("category", ""),
		EstablishedChapter: intArg(req, "chapter", 0),
		EstablishedScene:   intArg(req, "scene", 0),
		Source:             req.GetString("source", ""),
	}

	return t.ws.mutate(func(cx *codex.Codex) (string, error) {
		id, err := cx.AddFact(f)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("# Fact Established\n\n**ID:** `%s`\n**Chapter:** %d\n\n> %s", id, f.EstablishedChapter, f.Fact), nil
	})
}

// UpdateFactTool handles the codex_update_fact MCP tool.
type UpdateFactTool struct {
	ws *Workspace
}

// NewUpdateFactTool creates an UpdateFactTool.
func NewUpdateFactTool(ws *Workspace) *UpdateFactTool {
	return &UpdateFactTool{ws: ws}
}

// Definition returns the MCP tool definition for registration.
func (t *UpdateFactTool) Definition() mcp.Tool {
	return mcp.NewTool("codex_update_fact",
		mcp.WithDescription(
			"Track use of an established fact: `reference` records that a chapter relies on it, "+
				"`verify` marks it as checked against the manuscript.",
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Fact id"),
		),
		mcp.WithString("action",
			mcp.Required(),
			mcp.Enum("reference", "verify"),
		),
		mcp.WithNumber("chapter",
			mcp.Description("Referencing chapter (required for reference)"),
		),
	)
}

// Handle processes the codex_update_fact tool call.
func (t *UpdateFactTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}
	action := req.GetString("action", "")
	chapter := intArg(req, "chapter", 0)

	switch action {
	case "reference":
		if chapter < 1 {
			return mcp.NewToolResultError("chapter is required for action \"reference\""), nil
		}
	case "verify":
	default:
		return mcp.NewToolResultError(fmt.Sprintf("invalid action %q: must be one of reference, verify", action)), nil
	}

	return t.ws.mutate(func(cx *codex.Codex) (string, error) {
		if action == "verify" {
			if err := cx.VerifyFact(id); err != nil {
				return "", err
			}
			return fmt.Sprintf("Fact `%s` verified.", id), nil
		}
		if err := cx.ReferenceFact(id, chapter); err != nil {
			return "", err
		}
		return fmt.Sprintf("Fact `%s` referenced in chapter %d.", id, chapter), nil
	})
}
