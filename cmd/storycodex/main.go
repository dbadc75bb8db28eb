// Story Codex: continuity memory for long-form fiction, served over MCP.
//
// The codex tracks characters, scenes, callbacks and established facts
// per chapter, so an AI co-writer sees only what is true at the chapter
// it is writing.
//
// Usage:
//
//	storycodex serve              # Start MCP server (stdio transport)
//	storycodex analyze [-json]    # Print the fact sheet
//	storycodex migrate [-force]   # Build codex.json from legacy files
//	storycodex validate           # Report codex warnings
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"

	"github.com/HendryAvila/storycodex/internal/analysis"
	"github.com/HendryAvila/storycodex/internal/codex"
	"github.com/HendryAvila/storycodex/internal/config"
	"github.com/HendryAvila/storycodex/internal/logger"
	"github.com/HendryAvila/storycodex/internal/migrate"
	codexserver "github.com/HendryAvila/storycodex/internal/server"
	"github.com/HendryAvila/storycodex/internal/tools"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(os.Args[2:])
	case "analyze":
		err = runAnalyze(os.Args[2:])
	case "migrate":
		err = runMigrate(os.Args[2:])
	case "validate":
		err = runValidate(os.Args[2:])
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	case "--version", "-v", "version":
		fmt.Printf("storycodex v%s\n", codexserver.Version)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup parses the shared -dir flag plus any command flags, then loads
// settings and configures logging.
func setup(name string, args []string, define func(fs *flag.FlagSet)) (*config.Config, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	dir := fs.String("dir", "", "project directory (default: nearest directory with codex.json or project_data.json)")
	if define != nil {
		define(fs)
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg, err := config.Load(*dir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger.Init(os.Stderr, level)
	return cfg, nil
}

func runServe(args []string) error {
	cfg, err := setup("serve", args, nil)
	if err != nil {
		return err
	}
	s, cleanup, err := codexserver.New(cfg)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	logger.Info("serving story codex", "project", cfg.ProjectDir, "version", codexserver.Version)

	// ServeStdio returns on SIGINT/SIGTERM, so the deferred cleanup runs.
	return server.ServeStdio(s)
}

func runAnalyze(args []string) error {
	var asJSON bool
	cfg, err := setup("analyze", args, func(fs *flag.FlagSet) {
		fs.BoolVar(&asJSON, "json", false, "print the full report as JSON")
	})
	if err != nil {
		return err
	}

	ws := tools.NewWorkspace(codex.NewFileStore(), cfg)
	report, err := tools.Analyze(context.Background(), ws)
	if errors.Is(err, analysis.ErrNoData) {
		return fmt.Errorf("nothing to analyze in %s: no codex.json or project_data.json", cfg.ProjectDir)
	}
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	fmt.Print(analysis.FactSheet(report))
	return nil
}

func runMigrate(args []string) error {
	var force bool
	cfg, err := setup("migrate", args, func(fs *flag.FlagSet) {
		fs.BoolVar(&force, "force", false, "overwrite an existing codex.json")
	})
	if err != nil {
		return err
	}

	store := codex.NewFileStore()
	if err := migrate.CheckTarget(store, cfg.ProjectDir, force); err != nil {
		return fmt.Errorf("%w in %s (use -force to overwrite)", err, cfg.ProjectDir)
	}

	res, err := migrate.Project(cfg.ProjectDir)
	if err != nil {
		return fmt.Errorf("migrating: %w", err)
	}
	if err := store.Save(cfg.ProjectDir, res.Codex); err != nil {
		return fmt.Errorf("saving codex: %w", err)
	}

	fmt.Printf("Migrated %s: %d characters, %d chapters, %d scenes\n",
		res.Codex.ProjectName, res.Characters, res.Chapters, res.Scenes)
	for _, s := range res.Skipped {
		fmt.Printf("  skipped: %s\n", s)
	}
	return nil
}

func runValidate(args []string) error {
	cfg, err := setup("validate", args, nil)
	if err != nil {
		return err
	}

	cx, err := codex.NewFileStore().Load(cfg.ProjectDir)
	if err != nil {
		return err
	}
	if cx == nil {
		return fmt.Errorf("no %s in %s", codex.CodexFile, cfg.ProjectDir)
	}

	warnings := cx.Check()
	for _, w := range warnings {
		fmt.Println(w)
	}
	if len(warnings) > 0 {
		return fmt.Errorf("%d warnings", len(warnings))
	}
	fmt.Println("codex OK")
	return nil
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Story Codex v%s, continuity memory for fiction (MCP server)

Usage:
  storycodex serve    [-dir DIR]           Start the MCP server (stdio transport)
  storycodex analyze  [-dir DIR] [-json]   Print the fact sheet or full report
  storycodex migrate  [-dir DIR] [-force]  Build codex.json from characters.json and scenes.json
  storycodex validate [-dir DIR]           Report dangling references
  storycodex version

Configuration:
  storycodex.yaml in the project directory, overridden by STORYCODEX_*
  environment variables (a .env file is loaded if present).

  Add to your AI tool's MCP config:

  {
    "mcpServers": {
      "storycodex": {
        "command": "storycodex",
        "args": ["serve", "-dir", "/path/to/novel"]
      }
    }
  }
`, codexserver.Version)
}
