package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// PreviousChapterTool handles the codex_previous_chapter MCP tool.
type PreviousChapterTool struct {
	ws *Workspace
}

// NewPreviousChapterTool creates a PreviousChapterTool.
func NewPreviousChapterTool(ws *Workspace) *PreviousChapterTool {
	return &PreviousChapterTool{ws: ws}
}

// Definition returns the MCP tool definition for registration.
func (t *PreviousChapterTool) Definition() mcp.Tool {
	return mcp.NewTool("codex_previous_chapter",
		mcp.WithDescription(
			"Return the closing text of the chapter before the one being written, "+
				"so the new chapter picks up voice and momentum. Revised drafts are preferred.",
		),
		mcp.WithNumber("chapter",
			mcp.Required(),
			mcp.Description("Chapter about to be written; the text of chapter-1 is returned"),
		),
		mcp.WithNumber("words",
			mcp.Description("How many trailing words to return (default from settings, 3000)"),
		),
	)
}

// Handle processes the codex_previous_chapter tool call.
func (t *PreviousChapterTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	chapter, err := requireChapter(req, "chapter")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if chapter == 1 {
		return mcp.NewToolResultText("Chapter 1 has no previous chapter."), nil
	}
	words := intArg(req, "words", t.ws.cfg.ContextWords)

	prev, err := t.ws.cfg.Manuscript().PreviousChapter(chapter, words)
	if err != nil {
		return nil, fmt.Errorf("reading previous chapter: %w", err)
	}
	if !prev.Found {
		return mcp.NewToolResultError(fmt.Sprintf(
			"Chapter %d has not been written yet (expected chapter_%d.md or chapter_%d_revised.md).",
			prev.Chapter, prev.Chapter, prev.Chapter,
		)), nil
	}

	draft := "original draft"
	if prev.Revised {
		draft = "revised draft"
	}
	header := fmt.Sprintf("# Chapter %d (%s)", prev.Chapter, draft)
	if prev.Truncated {
		header += fmt.Sprintf(", last %d words", words)
	}
	return mcp.NewToolResultText(header + "\n\n" + prev.Text), nil
}
