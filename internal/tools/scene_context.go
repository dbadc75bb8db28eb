package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/storycodex/internal/codex"
)

// SceneContextTool handles the codex_scene_context MCP tool.
// It assembles everything needed to write one scene.
type SceneContextTool struct {
	ws *Workspace
}

// NewSceneContextTool creates a SceneContextTool.
func NewSceneContextTool(ws *Workspace) *SceneContextTool {
	return &SceneContextTool{ws: ws}
}

// Definition returns the MCP tool definition for registration.
func (t *SceneContextTool) Definition() mcp.Tool {
	return mcp.NewTool("codex_scene_context",
		mcp.WithDescription(
			"Get the writing context for a scene: the scene plan, chapter metadata, "+
				"each participant's state as of the chapter, callbacks planted earlier "+
				"that are still pending, facts established so far, themes and symbols. "+
				"Call this before drafting a scene.",
		),
		mcp.WithNumber("chapter",
			mcp.Required(),
			mcp.Description("Chapter number (1-based)"),
		),
		mcp.WithNumber("scene",
			mcp.Required(),
			mcp.Description("Scene number within the chapter (1-based)"),
		),
	)
}

// Handle processes the codex_scene_context tool call.
func (t *SceneContextTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	chapter, err := requireChapter(req, "chapter")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	scene, err := requireChapter(req, "scene")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	cx, err := t.ws.load()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	sc := cx.SceneContext(chapter, scene)
	if sc.Empty() {
		// Not planned yet: still hand back what any scene in this chapter must respect.
		var open []codex.Callback
		for _, cb := range cx.PendingCallbacks() {
			if cb.SetupChapter < chapter {
				open = append(open, cb)
			}
		}
		return jsonResult(fmt.Sprintf("Unplanned Scene: Chapter %d, Scene %d", chapter, scene), struct {
			Note             string            `json:"note"`
			KnownChapters    []int             `json:"known_chapters"`
			PendingCallbacks []codex.Callback  `json:"active_callbacks"`
			EstablishedFacts []codex.Fact      `json:"established_facts"`
			Themes           []string          `json:"themes"`
			Symbols          map[string]string `json:"symbols"`
		}{
			Note:             "scene is not in the codex yet; add it with codex_add_scene once planned",
			KnownChapters:    cx.ChapterNumbers(),
			PendingCallbacks: open,
			EstablishedFacts: cx.FactsAtOrBefore(chapter),
			Themes:           cx.GlobalThemes,
			Symbols:          cx.RecurringSymbols,
		})
	}
	return jsonResult(fmt.Sprintf("Scene Context: Chapter %d, Scene %d", chapter, scene), sc)
}
