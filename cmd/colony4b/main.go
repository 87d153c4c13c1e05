// Colony 4B is a single-player shift simulator set on Thebe: three Thebian
// days to clear a twenty-crystal Ambrosium quota, with a colony full of
// side work in the way.
//
// Usage: colony4b [--version] [--plain] [--trace] [--debug]
// [--seed <n>] [--script <file>] [--config <file>] [--content <dir>]
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/yaboy-beast/Mining-Colony-4b/cli"
	"github.com/yaboy-beast/Mining-Colony-4b/config"
	"github.com/yaboy-beast/Mining-Colony-4b/content"
	"github.com/yaboy-beast/Mining-Colony-4b/engine"
	"github.com/yaboy-beast/Mining-Colony-4b/engine/state"
	"github.com/yaboy-beast/Mining-Colony-4b/loader"
	"github.com/yaboy-beast/Mining-Colony-4b/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	trace := false
	var cfgPath string
	overrides := map[string]string{}

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("colony4b %s (commit %s, built %s)\n", version, commit, date)
			return
		case "--plain":
			overrides["plain"] = "true"
		case "--trace":
			trace = true
		case "--debug":
			overrides["debug"] = "true"
		case "--seed", "--script", "--config", "--content":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "%s requires a value\n", args[i])
				os.Exit(1)
			}
			flag := args[i]
			i++
			switch flag {
			case "--seed":
				overrides["seed"] = args[i]
			case "--script":
				overrides["script"] = args[i]
			case "--config":
				cfgPath = args[i]
			case "--content":
				overrides["content"] = args[i]
			}
		default:
			fmt.Fprintf(os.Stderr, "Unknown flag: %s\n", args[i])
			os.Exit(1)
		}
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	applyOverrides(&cfg, overrides)

	defs, err := loadContent(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading colony content: %v\n", err)
		os.Exit(1)
	}

	log, closeLog, err := openLog(cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	eng := engine.New(defs, cfg.Seed)
	eng.DebugAllowed = cfg.AllowDebug

	if log != nil {
		log.Info("session start",
			"title", defs.Game.Title,
			"seed", cfg.Seed,
			"debug", cfg.AllowDebug)
	}

	// Script mode: replay a command file, force plain, echo commands.
	if cfg.Script != "" {
		f, err := os.Open(cfg.Script)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening script: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		c := cli.New(eng, defs, log)
		c.In = f
		c.EchoInput = true
		c.Trace = trace
		c.Run()
		return
	}

	// Plain CLI if requested or stdout is not a terminal.
	if cfg.Plain || !isTerminal() {
		c := cli.New(eng, defs, log)
		c.Trace = trace
		c.Run()
		return
	}

	if err := tui.Run(eng, defs); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// The alt screen is gone by now; reprint the ending so it survives.
	if id := eng.State.Ending; id != "" {
		if end, ok := defs.Endings[id]; ok {
			fmt.Println("=== " + end.Title + " ===")
			for _, p := range end.Paragraphs {
				fmt.Println(p)
			}
		}
		if log != nil {
			log.Info("cycle ended", "ending", id, "turns", eng.State.TurnCount)
		}
	}
}

// applyOverrides layers command-line flags over the loaded configuration.
func applyOverrides(cfg *config.Config, overrides map[string]string) {
	if v, ok := overrides["plain"]; ok {
		cfg.Plain = v == "true"
	}
	if v, ok := overrides["debug"]; ok {
		cfg.AllowDebug = v == "true"
	}
	if v, ok := overrides["script"]; ok {
		cfg.Script = v
	}
	if v, ok := overrides["content"]; ok {
		cfg.ContentDir = v
	}
	if v, ok := overrides["seed"]; ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Seed = n
		} else {
			fmt.Fprintf(os.Stderr, "Bad seed %q, keeping %d\n", v, cfg.Seed)
		}
	}
}

// loadContent compiles the colony world: Lua files from the configured
// directory if one is set, the embedded content otherwise.
func loadContent(cfg config.Config) (*state.Defs, error) {
	if cfg.ContentDir != "" {
		return loader.Load(cfg.ContentDir)
	}
	return loader.LoadFS(content.Files)
}

// openLog opens the session log for appending. An empty path disables
// logging; the returned close function is always safe to call.
func openLog(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return nil, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, func() {}, err
	}
	log := slog.New(slog.NewTextHandler(f, nil))
	return log, func() { f.Close() }, nil
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
