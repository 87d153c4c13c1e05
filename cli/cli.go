// Package cli provides the plain terminal front end: the prompt loop, the
// numbered option list, meta-command dispatch, and the session log.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/yaboy-beast/Mining-Colony-4b/engine"
	"github.com/yaboy-beast/Mining-Colony-4b/engine/clock"
	"github.com/yaboy-beast/Mining-Colony-4b/engine/state"
	"github.com/yaboy-beast/Mining-Colony-4b/types"
)

// CLI handles terminal interaction with the player.
type CLI struct {
	Engine    *engine.Engine
	Defs      *state.Defs
	In        io.Reader
	Out       io.Writer
	Log       *slog.Logger
	Trace     bool
	EchoInput bool   // echo each input line after the prompt (script playback)
	lastCmd   string // for "again"/"g" repeat
}

// New creates a CLI wired to the given engine.
func New(eng *engine.Engine, defs *state.Defs, log *slog.Logger) *CLI {
	return &CLI{
		Engine: eng,
		Defs:   defs,
		In:     os.Stdin,
		Out:    os.Stdout,
		Log:    log,
	}
}

// Run starts the game loop: intro, starting room, then prompt → input →
// step → output until the cycle ends or input runs out.
func (c *CLI) Run() {
	if c.Defs.Game.Intro != "" {
		c.printLine(c.Defs.Game.Intro)
		c.printLine("")
	}
	for _, line := range c.Engine.DescribeRoom() {
		c.printLine(line)
	}
	c.showChoices()

	scanner := bufio.NewScanner(c.In)
	for {
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Comment lines, for script files.
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		if strings.HasPrefix(input, "/") {
			if c.handleMeta(input) {
				return
			}
			continue
		}

		// "again" / "g" repeats the last game command.
		lower := strings.ToLower(input)
		if lower == "again" || lower == "g" {
			if c.lastCmd == "" {
				c.printLine("Nothing to repeat.")
				continue
			}
			input = c.lastCmd
		} else {
			c.lastCmd = input
		}

		result := c.Engine.Step(input)
		c.printResult(result)
		if c.Trace {
			c.printTrace(result)
		}
		if c.Log != nil {
			c.Log.Info("command",
				"input", input,
				"turn", c.Engine.State.TurnCount,
				"location", c.Engine.State.Player.Location)
		}

		if result.Ended {
			if c.Log != nil {
				c.Log.Info("cycle ended", "ending", c.Engine.State.Ending)
			}
			return
		}
		c.showChoices()
	}
}

// showChoices prints the current interaction surface: the donation prompt
// when one is pending, the numbered option list otherwise.
func (c *CLI) showChoices() {
	if c.Engine.State.Prompt != "" {
		c.printLine("")
		c.printLine(c.Engine.Prompt())
		return
	}
	options := c.Engine.Options()
	if len(options) == 0 {
		return
	}
	c.printLine("")
	for i, opt := range options {
		c.printLine(fmt.Sprintf("  %d) %s", i+1, opt))
	}
}

// handleMeta dispatches meta-commands. Returns true if the session should
// exit.
func (c *CLI) handleMeta(input string) bool {
	switch strings.Fields(input)[0] {
	case "/quit", "/exit":
		c.printSystem("Goodbye.")
		return true

	case "/help":
		c.cmdHelp()

	case "/state":
		c.cmdState()

	case "/trace":
		c.Trace = !c.Trace
		if c.Trace {
			c.printSystem("Trace output enabled.")
		} else {
			c.printSystem("Trace output disabled.")
		}

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", input))
	}
	return false
}

func (c *CLI) cmdHelp() {
	help := []string{
		"System:",
		"  /quit   — Exit the session",
		"  /help   — Show this help",
		"  /state  — Dump current state",
		"  /trace  — Toggle effect/event trace output",
		"",
		"Game commands: type help, or pick a numbered option.",
	}
	for _, line := range help {
		c.printLine(line)
	}
}

func (c *CLI) cmdState() {
	s := c.Engine.State
	c.printSystem(fmt.Sprintf("Turn: %d", s.TurnCount))
	c.printSystem(fmt.Sprintf("Location: %s", s.Player.Location))
	c.printSystem(fmt.Sprintf("Clock: day %d, %s", s.Day, clock.Format(s.Hour)))
	c.printSystem(fmt.Sprintf("Minshin: %d  Quota: %d/%d", s.Player.Minshin, s.Player.Quota, c.Defs.Game.Quota))
	c.printSystem(fmt.Sprintf("Inventory: %v", s.Player.Inventory))
	if len(s.Quests) > 0 {
		c.printSystem(fmt.Sprintf("Quests: %v", s.Quests))
	}
	if len(s.Flags) > 0 {
		c.printSystem(fmt.Sprintf("Flags: %v", s.Flags))
	}
	if len(s.Counters) > 0 {
		c.printSystem(fmt.Sprintf("Counters: %v", s.Counters))
	}
}

func (c *CLI) printTrace(result types.Result) {
	if len(result.Effects) > 0 {
		c.printSystem(fmt.Sprintf("[trace] Effects: %d", len(result.Effects)))
		for _, e := range result.Effects {
			c.printSystem(fmt.Sprintf("[trace]   %s %v", e.Type, e.Params))
		}
	}
	if len(result.Events) > 0 {
		c.printSystem(fmt.Sprintf("[trace] Events: %d", len(result.Events)))
		for _, e := range result.Events {
			c.printSystem(fmt.Sprintf("[trace]   %s", e.Type))
		}
	}
}

func (c *CLI) printResult(result types.Result) {
	for _, line := range result.Output {
		c.printLine(line)
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
