// Package prompts implements MCP prompt handlers for the story codex.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to execute a specific sequence. Unlike tools (which
// the AI calls), prompts are initiated by the user.
package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// NextPrompt handles the codex-next MCP prompt.
// It asks the AI to analyze the book and propose what to write next.
type NextPrompt struct{}

// NewNextPrompt creates a NextPrompt.
func NewNextPrompt() *NextPrompt {
	return &NextPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *NextPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("codex-next",
		mcp.WithPromptDescription(
			"What should I write next? Analyzes progress, open callbacks and "+
				"continuity gaps, then proposes the next scene.",
		),
	)
}

// Handle processes the codex-next prompt request.
func (p *NextPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return &mcp.GetPromptResult{
		Description: "Story Codex: next steps",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"Please run `codex_analyze` to check where my book stands.\n\n" +
						"Then:\n" +
						"1. Summarize progress in two or three lines\n" +
						"2. List the critical and high gaps, and any callback waiting too long for a payoff\n" +
						"3. Pick the single most useful next action and explain it briefly\n" +
						"4. If that action is writing a scene, run `codex_scene_context` for it " +
						"and outline the scene using only what the context says is true at that chapter",
				),
			},
		},
	}, nil
}
