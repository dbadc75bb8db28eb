package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/storycodex/internal/codex"
)

// AddCallbackTool handles the codex_add_callback MCP tool.
// It plants a narrative promise that should be paid off later.
type AddCallbackTool struct {
	ws *Workspace
}

// NewAddCallbackTool creates an AddCallbackTool.
func NewAddCallbackTool(ws *Workspace) *AddCallbackTool {
	return &AddCallbackTool{ws: ws}
}

// Definition returns the MCP tool definition for registration.
func (t *AddCallbackTool) Definition() mcp.Tool {
	return mcp.NewTool("codex_add_callback",
		mcp.WithDescription(
			"Plant a callback (Chekhov's gun): an object, line or event set up in one chapter "+
				"that must be paid off later. Without `id`, one is generated as cb_<chapter>_<n>. "+
				"Passing an existing `id` replaces that callback.",
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Short name, e.g. 'the brass locket'"),
		),
		mcp.WithNumber("setup_chapter",
			mcp.Required(),
			mcp.Description("Chapter where the callback is planted"),
		),
		mcp.WithNumber("setup_scene",
			mcp.Description("Scene where it is planted (0 = unspecified)"),
		),
		mcp.WithString("description",
			mcp.Required(),
			mcp.Description("What is set up and what the reader should remember"),
		),
		mcp.WithString("importance",
			mcp.Description("How much the payoff matters"),
			mcp.Enum("low", "medium", "high", "critical"),
			mcp.DefaultString("medium"),
		),
		mcp.WithString("id",
			mcp.Description("Explicit callback id (optional)"),
		),
		mcp.WithString("notes",
			mcp.Description("Free-form notes"),
		),
	)
}

// Handle processes the codex_add_callback tool call.
func (t *AddCallbackTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	importance := codex.Importance(req.GetString("importance", string(codex.ImportanceMedium)))
	if err := codex.ValidateImportance(importance); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	cb := codex.Callback{
		ID:               req.GetString("id", ""),
		Name:             req.GetString("name", ""),
		SetupChapter:     intArg(req, "setup_chapter", 0),
		SetupScene:       intArg(req, "setup_scene", 0),
		SetupDescription: req.GetString("description", ""),
		Importance:       importance,
		Notes:            req.GetString("notes", ""),
	}

	return t.ws.mutate(func(cx *codex.Codex) (string, error) {
		id, err := cx.AddCallback(cb)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf(
			"# Callback Planted\n\n"+
				"**ID:** `%s`\n"+
				"**Name:** %s\n"+
				"**Setup:** Chapter %d\n"+
				"**Importance:** %s\n\n"+
				"Pay it off with `codex_update_callback id=%s action=payoff chapter=N`.",
			id, cb.Name, cb.SetupChapter, cb.Importance, id,
		), nil
	})
}

// UpdateCallbackTool handles the codex_update_callback MCP tool.
// It moves a callback through its lifecycle.
type UpdateCallbackTool struct {
	ws *Workspace
}

// NewUpdateCallbackTool creates an UpdateCallbackTool.
func NewUpdateCallbackTool(ws *Workspace) *UpdateCallbackTool {
	return &UpdateCallbackTool{ws: ws}
}

// Definition returns the MCP tool definition for registration.
func (t *UpdateCallbackTool) Definition() mcp.Tool {
	return mcp.NewTool("codex_update_callback",
		mcp.WithDescription(
			"Advance a callback: `reference` records a mention in a later chapter, "+
				"`payoff` resolves it, `abandon` drops it deliberately. "+
				"Paid-off and abandoned callbacks cannot change again.",
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Callback id"),
		),
		mcp.WithString("action",
			mcp.Required(),
			mcp.Description("Lifecycle step"),
			mcp.Enum("reference", "payoff", "abandon"),
		),
		mcp.WithNumber("chapter",
			mcp.Description("Chapter of the reference or payoff (required for those actions)"),
		),
		mcp.WithNumber("scene",
			mcp.Description("Scene of the payoff (0 = unspecified)"),
		),
		mcp.WithString("description",
			mcp.Description("How it pays off, or why it is abandoned"),
		),
	)
}

// Handle processes the codex_update_callback tool call.
func (t *UpdateCallbackTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}
	action := req.GetString("action", "")
	chapter := intArg(req, "chapter", 0)
	scene := intArg(req, "scene", 0)
	description := req.GetString("description", "")

	switch action {
	case "reference", "payoff":
		if chapter < 1 {
			return mcp.NewToolResultError(fmt.Sprintf("chapter is required for action %q", action)), nil
		}
	case "abandon":
	default:
		return mcp.NewToolResultError(fmt.Sprintf("invalid action %q: must be one of reference, payoff, abandon", action)), nil
	}

	return t.ws.mutate(func(cx *codex.Codex) (string, error) {
		var err error
		switch action {
		case "reference":
			err = cx.ReferenceCallback(id, chapter)
		case "payoff":
			err = cx.PayOffCallback(id, chapter, scene, description)
		case "abandon":
			err = cx.AbandonCallback(id, description)
		}
		if err != nil {
			return "", err
		}
		cb, _ := cx.Callback(id)
		return fmt.Sprintf("# Callback Updated\n\n**ID:** `%s`\n**Name:** %s\n**Status:** %s", id, cb.Name, cb.Status), nil
	})
}
