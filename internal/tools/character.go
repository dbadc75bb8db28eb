package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/storycodex/internal/codex"
)

// AddCharacterTool handles the codex_add_character MCP tool.
type AddCharacterTool struct {
	ws *Workspace
}

// NewAddCharacterTool creates an AddCharacterTool.
func NewAddCharacterTool(ws *Workspace) *AddCharacterTool {
	return &AddCharacterTool{ws: ws}
}

// Definition returns the MCP tool definition for registration.
func (t *AddCharacterTool) Definition() mcp.Tool {
	return mcp.NewTool("codex_add_character",
		mcp.WithDescription(
			"Add a character profile to the codex. Names are unique; "+
				"adding an existing name is rejected unless `replace` is true. "+
				"Set `death_chapter` for a character who dies: they count as alive only before it.",
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Unique character name"),
		),
		mcp.WithString("role",
			mcp.Description("protagonist, antagonist, mentor, ..."),
		),
		mcp.WithString("physical_description",
			mcp.Description("Appearance"),
		),
		mcp.WithString("background",
			mcp.Description("Backstory"),
		),
		mcp.WithString("motivations",
			mcp.Description("What drives the character"),
		),
		mcp.WithString("character_arc",
			mcp.Description("How the character changes over the book"),
		),
		mcp.WithString("arc_type",
			mcp.Description("Arc archetype"),
			mcp.Enum("coming_of_age", "redemption", "fall", "transformation", "flat", "disillusionment", "education", "testing"),
		),
		mcp.WithString("fears",
			mcp.Description("Comma-separated fears"),
		),
		mcp.WithString("desires",
			mcp.Description("Comma-separated desires"),
		),
		mcp.WithString("secrets",
			mcp.Description("Comma-separated secrets"),
		),
		mcp.WithNumber("death_chapter",
			mcp.Description("Chapter in which the character dies (optional)"),
		),
		mcp.WithBoolean("replace",
			mcp.Description("Overwrite an existing character with the same name"),
		),
	)
}

// Handle processes the codex_add_character tool call.
func (t *AddCharacterTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("name", "")
	if name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}

	ch := codex.NewCharacter(name)
	ch.Role = req.GetString("role", "")
	ch.PhysicalDescription = req.GetString("physical_description", "")
	ch.Background = req.GetString("background", "")
	ch.Motivations = req.GetString("motivations", "")
	ch.CharacterArc = req.GetString("character_arc", "")
	if arc := req.GetString("arc_type", ""); arc != "" {
		ch.ArcType = codex.ArcType(arc)
	}
	ch.Psychology.Fears = listArg(req, "fears")
	ch.Psychology.Desires = listArg(req, "desires")
	ch.Psychology.Secrets = listArg(req, "secrets")
	if death := intArg(req, "death_chapter", 0); death > 0 {
		ch.DeathChapter = &death
	}
	replace := boolArg(req, "replace", false)

	return t.ws.mutate(func(cx *codex.Codex) (string, error) {
		if _, exists := cx.Character(name); exists && !replace {
			return "", fmt.Errorf("character %q already exists; pass replace=true to overwrite", name)
		}
		if err := cx.AddCharacter(ch); err != nil {
			return "", err
		}
		status := "alive"
		if ch.DeathChapter != nil {
			status = fmt.Sprintf("dies in chapter %d", *ch.DeathChapter)
		}
		return fmt.Sprintf(
			"# Character Added\n\n**Name:** %s\n**Role:** %s\n**Arc:** %s\n**Status:** %s\n\nCodex now has %d characters.",
			ch.Name, ch.Role, ch.ArcType, status, len(cx.Characters),
		), nil
	})
}
