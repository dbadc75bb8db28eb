package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/storycodex/internal/migrate"
)

// MigrateTool handles the codex_migrate MCP tool.
// It builds a codex from the legacy project files.
type MigrateTool struct {
	ws *Workspace
}

// NewMigrateTool creates a MigrateTool.
func NewMigrateTool(ws *Workspace) *MigrateTool {
	return &MigrateTool{ws: ws}
}

// Definition returns the MCP tool definition for registration.
func (t *MigrateTool) Definition() mcp.Tool {
	return mcp.NewTool("codex_migrate",
		mcp.WithDescription(
			"Create codex.json from the project's characters.json, scenes.json and project_data.json. "+
				"Arc types, dominant emotions and psychology are inferred from the character text. "+
				"Refuses to overwrite an existing codex unless `overwrite` is true.",
		),
		mcp.WithBoolean("overwrite",
			mcp.Description("Replace an existing codex.json"),
		),
	)
}

// Handle processes the codex_migrate tool call.
func (t *MigrateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := migrate.CheckTarget(t.ws.store, t.ws.Dir(), boolArg(req, "overwrite", false)); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%v. Pass overwrite=true to rebuild it from the legacy files.", err)), nil
	}

	res, err := migrate.Project(t.ws.Dir())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Migration failed: %v", err)), nil
	}
	if err := t.ws.store.Save(t.ws.Dir(), res.Codex); err != nil {
		return nil, fmt.Errorf("saving codex: %w", err)
	}
	t.ws.reindex(res.Codex)

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Codex Migrated: %s\n\n", res.Codex.ProjectName)
	fmt.Fprintf(&sb, "- Characters: %d\n- Chapters: %d\n- Scenes: %d\n- Themes: %d\n",
		res.Characters, res.Chapters, res.Scenes, len(res.Codex.GlobalThemes))
	if len(res.Skipped) > 0 {
		fmt.Fprintf(&sb, "\n## ⚠️ Skipped records (%d)\n\n", len(res.Skipped))
		for _, s := range res.Skipped {
			fmt.Fprintf(&sb, "- %s\n", s)
		}
	}
	sb.WriteString("\nNext: run `codex_validate`, then `codex_analyze`.")
	return mcp.NewToolResultText(sb.String()), nil
}
