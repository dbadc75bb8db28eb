package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// CharacterStateTool handles the codex_character_state MCP tool.
type CharacterStateTool struct {
	ws *Workspace
}

// NewCharacterStateTool creates a CharacterStateTool.
func NewCharacterStateTool(ws *Workspace) *CharacterStateTool {
	return &CharacterStateTool{ws: ws}
}

// Definition returns the MCP tool definition for registration.
func (t *CharacterStateTool) Definition() mcp.Tool {
	return mcp.NewTool("codex_character_state",
		mcp.WithDescription(
			"Show what a character knows, feels and holds as of a chapter: "+
				"emotions recorded in that chapter, memories and arc milestones up to it, "+
				"relationships, liveness, location and inventory. "+
				"Pass `with` to also get the relationship snapshot toward another character at that chapter.",
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Character name as stored in the codex"),
		),
		mcp.WithNumber("chapter",
			mcp.Required(),
			mcp.Description("Chapter to resolve the state at (1-based)"),
		),
		mcp.WithString("with",
			mcp.Description("Optional other character for a point-in-time relationship snapshot"),
		),
	)
}

// Handle processes the codex_character_state tool call.
func (t *CharacterStateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("name", "")
	if name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}
	chapter, err := requireChapter(req, "chapter")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	cx, err := t.ws.load()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	state, ok := cx.CharacterStateAt(name, chapter)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf(
			"Character %q is not in the codex. Known characters: %v", name, cx.CharacterNames(),
		)), nil
	}

	other := req.GetString("with", "")
	if other == "" {
		return jsonResult(fmt.Sprintf("%s at Chapter %d", name, chapter), state)
	}
	snapshot, found := cx.RelationshipAt(name, other, chapter)
	return jsonResult(fmt.Sprintf("%s at Chapter %d", name, chapter), struct {
		State        any `json:"state"`
		Relationship any `json:"relationship_snapshot"`
	}{
		State:        state,
		Relationship: relationshipView(other, snapshot, found),
	})
}

func relationshipView(target string, snapshot any, found bool) any {
	if !found {
		return map[string]string{"target": target, "note": "no recorded relationship state at or before this chapter"}
	}
	return map[string]any{"target": target, "state": snapshot}
}
