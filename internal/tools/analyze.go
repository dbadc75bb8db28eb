package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/storycodex/internal/analysis"
	"github.com/HendryAvila/storycodex/internal/logger"
)

// AnalyzeTool handles the codex_analyze MCP tool.
// It runs the gap/opportunity analysis and ranks next actions.
type AnalyzeTool struct {
	ws *Workspace
}

// NewAnalyzeTool creates an AnalyzeTool.
func NewAnalyzeTool(ws *Workspace) *AnalyzeTool {
	return &AnalyzeTool{ws: ws}
}

// Definition returns the MCP tool definition for registration.
func (t *AnalyzeTool) Definition() mcp.Tool {
	return mcp.NewTool("codex_analyze",
		mcp.WithDescription(
			"Analyze the book: progress against the chapter plan, character development, "+
				"callback health, structural and continuity gaps, opportunities, and up to seven "+
				"prioritized next actions. `format=sheet` (default) returns the plain-text fact sheet; "+
				"`format=json` returns the full report.",
		),
		mcp.WithString("format",
			mcp.Description("Output format"),
			mcp.Enum("sheet", "json"),
			mcp.DefaultString("sheet"),
		),
	)
}

// Handle processes the codex_analyze tool call.
func (t *AnalyzeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := Analyze(ctx, t.ws)
	if errors.Is(err, analysis.ErrNoData) {
		return mcp.NewToolResultError(
			"Nothing to analyze: no codex.json and no project_data.json. " +
				"Run `codex_migrate` or add characters with `codex_add_character` first.",
		), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if req.GetString("format", "sheet") == "json" {
		return jsonResult(fmt.Sprintf("Analysis: %s", report.ProjectName), report)
	}
	return mcp.NewToolResultText(analysis.FactSheet(report)), nil
}

// Analyze runs the analysis over the workspace. A malformed codex is
// logged and analyzed as absent.
func Analyze(ctx context.Context, ws *Workspace) (*analysis.Report, error) {
	cx, err := ws.store.Load(ws.Dir())
	if err != nil {
		logger.Warn("codex unreadable, analyzing without it", "dir", ws.Dir(), "err", err)
		cx = nil
	}
	ms := ws.cfg.Manuscript()
	name := ms.ProjectName()
	if cx != nil && cx.ProjectName != "" {
		name = cx.ProjectName
	}
	return analysis.New(name, cx, ms, ms).Analyze(ctx)
}
