package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cast"

	"github.com/HendryAvila/storycodex/internal/codex"
)

// TrackCharacterTool handles the codex_track_character MCP tool.
// It records chapter-stamped history for an existing character.
type TrackCharacterTool struct {
	ws *Workspace
}

// NewTrackCharacterTool creates a TrackCharacterTool.
func NewTrackCharacterTool(ws *Workspace) *TrackCharacterTool {
	return &TrackCharacterTool{ws: ws}
}

// Definition returns the MCP tool definition for registration.
func (t *TrackCharacterTool) Definition() mcp.Tool {
	return mcp.NewTool("codex_track_character",
		mcp.WithDescription(
			"Record what happens to a character at a chapter. "+
				"`emotion`: an emotional moment (emotion, intensity, context). "+
				"`relationship`: a relationship snapshot toward `target` (trust, affection, conflict in [0,1]). "+
				"`milestone`: an arc turning point (description). "+
				"`memory`: something the character now remembers (content); known from this chapter on. "+
				"`death`: the character dies in this chapter. "+
				"`location`: where the character is now. "+
				"History stays ordered by chapter whatever order it is recorded in.",
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Character name"),
		),
		mcp.WithString("event",
			mcp.Required(),
			mcp.Description("What to record"),
			mcp.Enum("emotion", "relationship", "milestone", "memory", "death", "location"),
		),
		mcp.WithNumber("chapter",
			mcp.Required(),
			mcp.Description("Chapter where it happens"),
		),
		mcp.WithNumber("scene",
			mcp.Description("Scene where it happens (0 = unspecified)"),
		),
		mcp.WithString("emotion",
			mcp.Description("For emotion/memory: joy, sadness, anger, fear, grief, hope, guilt, ..."),
		),
		mcp.WithNumber("intensity",
			mcp.Description("For emotion: 0..1 (default 0.5)"),
		),
		mcp.WithString("target",
			mcp.Description("For relationship: the other character"),
		),
		mcp.WithString("relationship_type",
			mcp.Description("For relationship: family, friend, rival, enemy, mentor, student, romantic, ally, acquaintance, complicated"),
		),
		mcp.WithNumber("trust",
			mcp.Description("For relationship: 0..1"),
		),
		mcp.WithNumber("affection",
			mcp.Description("For relationship: 0..1"),
		),
		mcp.WithNumber("conflict",
			mcp.Description("For relationship: 0..1"),
		),
		mcp.WithString("description",
			mcp.Description("Context of the moment, snapshot, milestone or memory; the place for location"),
		),
		mcp.WithBoolean("is_trauma",
			mcp.Description("For memory: a traumatic memory"),
		),
	)
}

// Handle processes the codex_track_character tool call.
func (t *TrackCharacterTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("name", "")
	if name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}
	chapter, err := requireChapter(req, "chapter")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	scene := intArg(req, "scene", 0)
	event := req.GetString("event", "")
	description := req.GetString("description", "")

	return t.ws.mutate(func(cx *codex.Codex) (string, error) {
		if _, ok := cx.Character(name); !ok {
			return "", fmt.Errorf("character %q is not in the codex; add it with codex_add_character", name)
		}

		var what string
		switch event {
		case "emotion":
			emotion := codex.EmotionType(req.GetString("emotion", ""))
			if err := codex.ValidateEmotion(emotion); err != nil {
				return "", err
			}
			m := codex.EmotionalMoment{
				Chapter: chapter,
				Scene:   scene,
				Emotions: []codex.EmotionState{{
					Emotion:   emotion,
					Intensity: floatArg(req, "intensity", 0.5),
				}},
				Context: description,
			}
			if err := cx.AddEmotionalMoment(name, m); err != nil {
				return "", err
			}
			what = fmt.Sprintf("feels %s", emotion)

		case "relationship":
			target := req.GetString("target", "")
			if target == "" {
				return "", fmt.Errorf("target is required for event %q", event)
			}
			if rt := req.GetString("relationship_type", ""); rt != "" {
				ch, _ := cx.Character(name)
				r := ch.Relationships[target]
				r.Target = target
				r.Type = codex.RelationshipType(rt)
				if err := cx.SetRelationship(name, r); err != nil {
					return "", err
				}
			}
			s := codex.RelationshipState{
				Chapter:     chapter,
				Trust:       floatArg(req, "trust", 0.5),
				Affection:   floatArg(req, "affection", 0.5),
				Conflict:    floatArg(req, "conflict", 0),
				Description: description,
			}
			if err := cx.AddRelationshipState(name, target, s); err != nil {
				return "", err
			}
			what = fmt.Sprintf("relationship toward %s (trust %.2f, affection %.2f, conflict %.2f)",
				target, s.Trust, s.Affection, s.Conflict)

		case "milestone":
			if err := cx.AddArcMilestone(name, codex.ArcMilestone{Chapter: chapter, Scene: scene, Description: description}); err != nil {
				return "", err
			}
			what = "reaches an arc milestone"

		case "memory":
			m := codex.Memory{
				Owner:             name,
				Content:           description,
				EmotionalWeight:   codex.EmotionType(req.GetString("emotion", "")),
				IntroducedChapter: chapter,
				IsTrauma:          boolArg(req, "is_trauma", false),
			}
			id, err := cx.AddMemory(m)
			if err != nil {
				return "", err
			}
			what = fmt.Sprintf("remembers (memory `%s`)", id)

		case "death":
			if err := cx.MarkDead(name, chapter); err != nil {
				return "", err
			}
			what = "dies"

		case "location":
			if description == "" {
				return "", fmt.Errorf("description (the place) is required for event %q", event)
			}
			ch, _ := cx.Character(name)
			ch.CurrentLocation = description
			what = "is at " + description

		default:
			return "", fmt.Errorf("invalid event %q: must be one of emotion, relationship, milestone, memory, death, location", event)
		}

		return fmt.Sprintf("# Character Tracked\n\n**%s** %s in chapter %d.", name, what, chapter), nil
	})
}

// floatArg extracts a float argument. Missing or unparsable values return
// defaultVal.
func floatArg(req mcp.CallToolRequest, key string, defaultVal float64) float64 {
	v, ok := req.GetArguments()[key]
	if !ok || v == nil {
		return defaultVal
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return defaultVal
	}
	return f
}
