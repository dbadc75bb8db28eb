package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cast"

	"github.com/HendryAvila/storycodex/internal/codex"
)

// AddSceneTool handles the codex_add_scene MCP tool.
type AddSceneTool struct {
	ws *Workspace
}

// NewAddSceneTool creates an AddSceneTool.
func NewAddSceneTool(ws *Workspace) *AddSceneTool {
	return &AddSceneTool{ws: ws}
}

// Definition returns the MCP tool definition for registration.
func (t *AddSceneTool) Definition() mcp.Tool {
	return mcp.NewTool("codex_add_scene",
		mcp.WithDescription(
			"Add or replace a scene plan. Scenes stay ordered by number within their chapter; "+
				"the chapter is created when missing. Known characters get the appearance recorded.",
		),
		mcp.WithNumber("chapter",
			mcp.Required(),
			mcp.Description("Chapter number (1-based)"),
		),
		mcp.WithNumber("scene",
			mcp.Required(),
			mcp.Description("Scene number within the chapter (1-based)"),
		),
		mcp.WithString("summary",
			mcp.Description("What happens"),
		),
		mcp.WithString("characters",
			mcp.Description("Comma-separated participants"),
		),
		mcp.WithString("pov",
			mcp.Description("Point-of-view character"),
		),
		mcp.WithString("location",
			mcp.Description("Where the scene takes place"),
		),
		mcp.WithString("goal",
			mcp.Description("What the scene must accomplish"),
		),
		mcp.WithString("emotional_beat",
			mcp.Description("The emotional turn of the scene"),
		),
		mcp.WithString("scene_type",
			mcp.Description("Scene archetype"),
			mcp.Enum("action", "dialogue", "reflection", "flashback", "discovery", "confrontation", "escape", "reunion", "revelation", "transition"),
		),
	)
}

// Handle processes the codex_add_scene tool call.
func (t *AddSceneTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	chapter, err := requireChapter(req, "chapter")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	number, err := requireChapter(req, "scene")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	location := req.GetString("location", "")
	sc := codex.Scene{
		Chapter:       chapter,
		Number:        number,
		Summary:       req.GetString("summary", ""),
		Characters:    listArg(req, "characters"),
		POVCharacter:  req.GetString("pov", ""),
		Location:      location,
		Setting:       location,
		Goal:          req.GetString("goal", ""),
		EmotionalBeat: req.GetString("emotional_beat", ""),
		Type:          codex.SceneType(req.GetString("scene_type", "")),
	}

	return t.ws.mutate(func(cx *codex.Codex) (string, error) {
		if err := cx.AddScene(sc); err != nil {
			return "", err
		}
		var unknown []string
		for _, name := range sc.Characters {
			if _, ok := cx.Character(name); !ok {
				unknown = append(unknown, name)
				continue
			}
			if err := cx.RecordAppearance(name, chapter, number, name == sc.POVCharacter); err != nil {
				return "", err
			}
		}
		msg := fmt.Sprintf("# Scene Saved\n\n**ID:** `%s`\n**Characters:** %s",
			codex.SceneID(chapter, number), strings.Join(sc.Characters, ", "))
		if len(unknown) > 0 {
			msg += fmt.Sprintf("\n\n⚠️ Not in the codex yet: %s. Add them with `codex_add_character`.", strings.Join(unknown, ", "))
		}
		return msg, nil
	})
}

// listArg reads a list argument given either as a comma-separated string
// or as a JSON array.
func listArg(req mcp.CallToolRequest, key string) []string {
	raw, ok := req.GetArguments()[key]
	if !ok || raw == nil {
		return nil
	}
	var parts []string
	if s, ok := raw.(string); ok {
		parts = strings.Split(s, ",")
	} else {
		parts = cast.ToStringSlice(raw)
	}
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
