// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it creates concrete implementations and
// injects them into the tools, prompts and resources that depend on them.
// No business logic lives here, only wiring.
package server

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/HendryAvila/storycodex/internal/codex"
	"github.com/HendryAvila/storycodex/internal/config"
	"github.com/HendryAvila/storycodex/internal/index"
	"github.com/HendryAvila/storycodex/internal/logger"
	"github.com/HendryAvila/storycodex/internal/prompts"
	"github.com/HendryAvila/storycodex/internal/resources"
	"github.com/HendryAvila/storycodex/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// tool is what every tool in internal/tools provides.
type tool interface {
	Definition() mcp.Tool
	Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// New creates and configures the MCP server for the project described by
// cfg, with all tools, prompts and resources registered.
//
// The returned cleanup function closes the search index and must be
// called on shutdown. It is always non-nil and safe to call even if the
// index is disabled or failed to open.
func New(cfg *config.Config) (*server.MCPServer, func(), error) {
	if cfg == nil {
		return nil, noop, fmt.Errorf("creating server: nil config")
	}
	store := codex.NewFileStore()
	ws := tools.NewWorkspace(store, cfg)

	s := server.NewMCPServer(
		"storycodex",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// Search is an independent subsystem: if the index fails to open the
	// codex tools keep working and codex_search reports it is disabled.
	cleanup := noop
	if cfg.Index.Enabled {
		ix, err := index.Open(cfg.IndexStoreConfig())
		if err != nil {
			logger.Warn("search index disabled", "path", cfg.IndexPath(), "err", err)
		} else {
			ws.SetIndex(ix)
			cleanup = func() {
				if err := ix.Close(); err != nil {
					logger.Warn("search index close", "err", err)
				}
			}
		}
	}

	for _, t := range []tool{
		// --- Read ---
		tools.NewSceneContextTool(ws),
		tools.NewCharacterStateTool(ws),
		tools.NewPreviousChapterTool(ws),
		tools.NewSearchTool(ws),

		// --- Write ---
		tools.NewAddCharacterTool(ws),
		tools.NewAddSceneTool(ws),
		tools.NewAddCallbackTool(ws),
		tools.NewUpdateCallbackTool(ws),
		tools.NewAddFactTool(ws),
		tools.NewUpdateFactTool(ws),
		tools.NewTrackCharacterTool(ws),
		tools.NewWorldTool(ws),

		// --- Analysis & maintenance ---
		tools.NewAnalyzeTool(ws),
		tools.NewValidateTool(ws),
		tools.NewMigrateTool(ws),
	} {
		s.AddTool(t.Definition(), t.Handle)
	}

	// --- Register prompts ---

	nextPrompt := prompts.NewNextPrompt()
	s.AddPrompt(nextPrompt.Definition(), nextPrompt.Handle)

	writePrompt := prompts.NewWriteScenePrompt()
	s.AddPrompt(writePrompt.Definition(), writePrompt.Handle)

	// --- Register resources ---

	resourceHandler := resources.NewHandler(store, cfg.ProjectDir)
	s.AddResource(resourceHandler.CodexResource(), resourceHandler.HandleCodex)
	s.AddResource(resourceHandler.WarningsResource(), resourceHandler.HandleWarnings)

	logger.Debug("server ready", "project", cfg.ProjectDir, "search", cfg.Index.Enabled)
	return s, cleanup, nil
}

// noop is the default cleanup when the index is disabled.
func noop() {}

// serverInstructions returns the system instructions that tell the AI
// how to use the codex while writing.
func serverInstructions() string {
	return `You have access to Story Codex, a continuity memory for a novel in progress.

## WHAT IT IS

The codex (codex.json in the project directory) records characters, chapters
and scenes, callbacks (setups that must pay off later), established facts,
memories, themes, symbols, locations and items. Every entry is tied to the
chapter where it happens, so the codex can answer "what is true at chapter N".

## BEFORE WRITING A SCENE

1. Call codex_scene_context with the chapter and scene number.
   It returns only characters alive at that chapter, what each one knows and
   feels, open callbacks planted earlier, and facts established so far.
2. Call codex_previous_chapter to read the end of the previous chapter.
3. Never contradict an established fact. Never bring back a dead character
   unless the story explicitly does so. Characters know only the memories listed.

## AFTER WRITING

- Save the scene with codex_add_scene.
- Record references and payoffs with codex_update_callback.
- Plant new setups with codex_add_callback and new facts with codex_add_fact.
- Add new characters with codex_add_character.
- Record emotions, relationship changes, milestones, memories, deaths and
  movements with codex_track_character.
- Register themes, symbols, locations, items and timeline events with codex_set_world.

## PLANNING

- codex_analyze reports progress, gaps and up to seven prioritized next actions.
- codex_character_state shows one character at a chapter, optionally with one relationship.
- codex_search finds entries by text; pass max_chapter to avoid later spoilers.
- codex_validate lists dangling references and constraint violations.

## EXISTING PROJECTS

If the project has characters.json and scenes.json but no codex.json,
call codex_migrate once to build the codex.`
}
