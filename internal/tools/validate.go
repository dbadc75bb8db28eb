package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// ValidateTool handles the codex_validate MCP tool.
// It checks field constraints and soft references across the codex.
type ValidateTool struct {
	ws *Workspace
}

// NewValidateTool creates a ValidateTool.
func NewValidateTool(ws *Workspace) *ValidateTool {
	return &ValidateTool{ws: ws}
}

// Definition returns the MCP tool definition for registration.
func (t *ValidateTool) Definition() mcp.Tool {
	return mcp.NewTool("codex_validate",
		mcp.WithDescription(
			"Check the codex for consistency: field constraints (ranges, enums, required fields) "+
				"and soft references that point nowhere (relationship targets, scene participants, "+
				"POV characters, callback and fact ids), out-of-order history and misfiled scenes. "+
				"Warnings never block writing.",
		),
	)
}

// Handle processes the codex_validate tool call.
func (t *ValidateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cx, err := t.ws.load()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Codex Validation: %s\n\n", cx.ProjectName)
	fmt.Fprintf(&sb, "**Characters:** %d | **Chapters:** %d | **Callbacks:** %d | **Facts:** %d\n\n",
		len(cx.Characters), len(cx.Chapters), len(cx.Callbacks), len(cx.Facts))

	if err := cx.Validate(); err != nil {
		fmt.Fprintf(&sb, "## ❌ Constraint violations\n\n%v\n\n", err)
	} else {
		sb.WriteString("## ✅ All field constraints hold\n\n")
	}

	warnings := cx.Check()
	if len(warnings) == 0 {
		sb.WriteString("## ✅ No dangling references\n")
		return mcp.NewToolResultText(sb.String()), nil
	}
	fmt.Fprintf(&sb, "## ⚠️ Reference warnings (%d)\n\n", len(warnings))
	for _, w := range warnings {
		fmt.Fprintf(&sb, "- %s\n", w)
	}
	return mcp.NewToolResultText(sb.String()), nil
}
