package prompts

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
)

// WriteScenePrompt handles the codex-write-scene MCP prompt.
// It gathers continuity context before drafting a scene.
type WriteScenePrompt struct{}

// NewWriteScenePrompt creates a WriteScenePrompt.
func NewWriteScenePrompt() *WriteScenePrompt {
	return &WriteScenePrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *WriteScenePrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("codex-write-scene",
		mcp.WithPromptDescription(
			"Draft a scene with full continuity: who is alive, what they know and feel, "+
				"which callbacks are open and which facts are already established.",
		),
		mcp.WithArgument("chapter",
			mcp.ArgumentDescription("Chapter number. Default: 1"),
		),
		mcp.WithArgument("scene",
			mcp.ArgumentDescription("Scene number within the chapter. Default: 1"),
		),
	)
}

// Handle processes the codex-write-scene prompt request.
func (p *WriteScenePrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	chapter, scene := 1, 1
	if args := req.Params.Arguments; args != nil {
		if n, err := strconv.Atoi(args["chapter"]); err == nil && n > 0 {
			chapter = n
		}
		if n, err := strconv.Atoi(args["scene"]); err == nil && n > 0 {
			scene = n
		}
	}

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Write chapter %d, scene %d", chapter, scene),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"I want to write chapter %d, scene %d.\n\n"+
						"Please:\n"+
						"1. Run `codex_scene_context` with chapter=%d and scene=%d\n"+
						"2. Run `codex_previous_chapter` with chapter=%d to pick up voice and momentum\n"+
						"3. Draft the scene. Dead characters stay dead, characters only know the memories listed, "+
						"and established facts must not be contradicted\n"+
						"4. Tell me which open callbacks the scene references or pays off, "+
						"and record them with `codex_update_callback`\n"+
						"5. Save the scene with `codex_add_scene` once I approve it",
					chapter, scene, chapter, scene, chapter,
				)),
			},
		},
	}, nil
}
