package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/storycodex/internal/codex"
)

// WorldTool handles the codex_set_world MCP tool.
// It maintains the world registries: themes, symbols, places, objects and
// the in-world timeline.
type WorldTool struct {
	ws *Workspace
}

// NewWorldTool creates a WorldTool.
func NewWorldTool(ws *Workspace) *WorldTool {
	return &WorldTool{ws: ws}
}

// Definition returns the MCP tool definition for registration.
func (t *WorldTool) Definition() mcp.Tool {
	return mcp.NewTool("codex_set_world",
		mcp.WithDescription(
			"Register world-building: a global `theme`, a recurring `symbol` and its meaning, "+
				"a `location`, an `item` (optionally owned by a character), or a `timeline` event. "+
				"Locations, items and symbols are keyed by name and replaced when set again.",
		),
		mcp.WithString("kind",
			mcp.Required(),
			mcp.Description("Registry to update"),
			mcp.Enum("theme", "symbol", "location", "item", "timeline"),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Theme, symbol, place or object name; the event text for timeline"),
		),
		mcp.WithString("description",
			mcp.Description("Meaning of a symbol, or description of a location or item"),
		),
		mcp.WithNumber("chapter",
			mcp.Description("First chapter it appears in (required for timeline)"),
		),
		mcp.WithString("owner",
			mcp.Description("For item: owning character"),
		),
		mcp.WithString("story_date",
			mcp.Description("For timeline: in-world date"),
		),
	)
}

// Handle processes the codex_set_world tool call.
func (t *WorldTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind := req.GetString("kind", "")
	name := req.GetString("name", "")
	if name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}
	description := req.GetString("description", "")
	chapter := intArg(req, "chapter", 0)

	return t.ws.mutate(func(cx *codex.Codex) (string, error) {
		var err error
		switch kind {
		case "theme":
			cx.AddTheme(name)
		case "symbol":
			err = cx.SetSymbol(name, description)
		case "location":
			err = cx.SetLocation(codex.Location{Name: name, Description: description, FirstChapter: chapter})
		case "item":
			err = cx.SetItem(codex.Item{
				Name:         name,
				Description:  description,
				Owner:        req.GetString("owner", ""),
				FirstChapter: chapter,
			})
		case "timeline":
			err = cx.AddTimelineEvent(codex.TimelineEvent{
				Chapter:   chapter,
				StoryDate: req.GetString("story_date", ""),
				Event:     name,
			})
		default:
			err = fmt.Errorf("invalid kind %q: must be one of theme, symbol, location, item, timeline", kind)
		}
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("# World Updated\n\n**%s:** %s", kind, name), nil
	})
}
