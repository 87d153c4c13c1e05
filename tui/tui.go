package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/yaboy-beast/Mining-Colony-4b/engine"
	"github.com/yaboy-beast/Mining-Colony-4b/engine/clock"
	"github.com/yaboy-beast/Mining-Colony-4b/engine/state"
	"github.com/yaboy-beast/Mining-Colony-4b/types"
)

// rawLine stores an unstyled output line with its classification,
// so we can re-wrap and re-style when the terminal is resized.
type rawLine struct {
	text     string
	kind     lineKind
	isInput  bool // true for echoed player input
	isSystem bool // true for system messages
}

// Model is the Bubble Tea model for the colony terminal.
type Model struct {
	engine *engine.Engine
	defs   *state.Defs

	viewport viewport.Model
	input    textinput.Model
	history  *History

	rawLines []rawLine // accumulated narrative lines (unstyled, for re-wrapping)

	width    int
	height   int
	ready    bool
	trace    bool
	quitting bool
	ended    bool
	lastCmd  string
}

// gameOutputMsg carries output from the engine into the Update loop.
type gameOutputMsg struct {
	input    string   // echoed player input (empty for intro)
	lines    []string // output lines
	isSystem bool     // true for meta-command output
}

// New creates a TUI model wired to the given engine.
func New(eng *engine.Engine, defs *state.Defs) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	return Model{
		engine:  eng,
		defs:    defs,
		input:   ti,
		history: NewHistory(100),
	}
}

// Run starts the Bubble Tea program.
func Run(eng *engine.Engine, defs *state.Defs) error {
	m := New(eng, defs)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

// Init returns the initial command that produces the intro, the starting
// room, and the first option list.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.initialOutput())
}

func (m Model) initialOutput() tea.Cmd {
	return func() tea.Msg {
		var lines []string

		title := m.defs.Game.Title
		if m.defs.Game.Version != "" {
			title += " v" + m.defs.Game.Version
		}
		lines = append(lines, title)
		lines = append(lines, "")

		if m.defs.Game.Intro != "" {
			lines = append(lines, m.defs.Game.Intro)
			lines = append(lines, "")
		}

		lines = append(lines, m.engine.DescribeRoom()...)
		lines = append(lines, m.choiceLines()...)

		return gameOutputMsg{lines: lines}
	}
}

// choiceLines renders the current interaction surface: the pending input
// prompt when one is active, the numbered option list otherwise.
func (m Model) choiceLines() []string {
	if m.engine.State.Prompt != "" {
		return []string{"", m.engine.Prompt()}
	}
	options := m.engine.Options()
	if len(options) == 0 {
		return nil
	}
	lines := []string{""}
	for i, opt := range options {
		lines = append(lines, fmt.Sprintf("  %d) %s", i+1, opt))
	}
	return lines
}

// Update handles messages (key presses, window resize, game output).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := m.height - 2 // 1 status bar + 1 input line
		if vpHeight < 1 {
			vpHeight = 1
		}

		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}

		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			return m.handleEnter()

		case "up":
			if prev, ok := m.history.Prev(); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if next, ok := m.history.Next(); ok {
				m.input.SetValue(next)
				m.input.CursorEnd()
			} else {
				m.input.SetValue("")
				m.history.ResetCursor()
			}
			return m, nil

		case "pgup", "pgdown":
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}

	case gameOutputMsg:
		m = m.appendOutput(msg)
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	cmds = append(cmds, inputCmd)

	return m, tea.Batch(cmds...)
}

// handleEnter processes the submitted input line.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")

	if input == "" {
		return m, nil
	}

	m.history.Push(input)
	m.history.ResetCursor()

	// Handle "again" / "g".
	lower := strings.ToLower(input)
	if lower == "again" || lower == "g" {
		if m.lastCmd == "" {
			m = m.appendOutput(gameOutputMsg{
				input: input, lines: []string{"Nothing to repeat."}, isSystem: true,
			})
			return m, nil
		}
		input = m.lastCmd
	} else {
		m.lastCmd = input
	}

	// Meta-commands.
	if strings.HasPrefix(input, "/") {
		output, quit := m.handleMeta(input)
		m = m.appendOutput(gameOutputMsg{input: input, lines: output, isSystem: true})
		if quit {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	// Game command.
	result := m.engine.Step(input)
	output := result.Output
	if m.trace {
		output = append(output, m.formatTrace(result)...)
	}
	if result.Ended {
		m.ended = true
		m = m.appendOutput(gameOutputMsg{input: input, lines: output})
		return m, tea.Quit
	}
	output = append(output, m.choiceLines()...)
	m = m.appendOutput(gameOutputMsg{input: input, lines: output})
	return m, nil
}

// appendOutput adds lines to the narrative and refreshes the viewport.
func (m Model) appendOutput(msg gameOutputMsg) Model {
	if msg.input != "" {
		m.rawLines = append(m.rawLines, rawLine{
			text: "> " + msg.input, isInput: true,
		})
	}

	for _, line := range msg.lines {
		rl := rawLine{text: line, isSystem: msg.isSystem}
		if !msg.isSystem {
			rl.kind = classifyLine(line)
		}
		m.rawLines = append(m.rawLines, rl)
	}

	// Blank line separator between turns.
	m.rawLines = append(m.rawLines, rawLine{})

	m.refreshViewport()

	return m
}

// refreshViewport re-wraps and re-styles all raw lines at the current width
// and updates the viewport content.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	width := m.width
	if width < 10 {
		width = 10
	}

	var styled []string
	for _, rl := range m.rawLines {
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}

		wrapped := wordWrap(rl.text, width)

		switch {
		case rl.isInput:
			styled = append(styled, stylePlayerInput.Render(wrapped))
		case rl.isSystem:
			styled = append(styled, styledSystemMsg(wrapped))
		default:
			styled = append(styled, renderLineKind(wrapped, rl.kind))
		}
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// renderLineKind applies the style for a given lineKind.
func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindYouSee:
		return styledYouSee(line)
	case kindExits:
		return styleExits.Render(line)
	case kindOption:
		return styleOption.Render(line)
	case kindDialogue:
		return styleDialogue.Render(line)
	case kindSystem:
		return styleSystem.Render(line)
	case kindError:
		return styleError.Render(line)
	case kindTrace:
		return styleTrace.Render(line)
	default:
		return styleRoomDesc.Render(line)
	}
}

// wordWrap wraps text to fit within the given width, breaking at word
// boundaries. Preserves existing newlines within the text.
func wordWrap(text string, width int) string {
	if width <= 0 || len(text) <= width {
		return text
	}

	var result strings.Builder
	words := strings.Fields(text)
	lineLen := 0

	for i, word := range words {
		wLen := len(word)

		if i == 0 {
			result.WriteString(word)
			lineLen = wLen
			continue
		}

		if lineLen+1+wLen > width {
			result.WriteString("\n")
			result.WriteString(word)
			lineLen = wLen
		} else {
			result.WriteString(" ")
			result.WriteString(word)
			lineLen += 1 + wLen
		}
	}

	return result.String()
}

// View renders the full TUI layout: viewport + status bar + input.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	if m.ended {
		// The cycle is over; drop the input line so the ending reads clean.
		return m.viewport.View() + "\n" + m.renderStatusBar()
	}
	return m.viewport.View() + "\n" + m.renderStatusBar() + "\n" + m.input.View()
}

// handleMeta dispatches meta-commands. Returns output lines and quit flag.
func (m *Model) handleMeta(input string) ([]string, bool) {
	switch strings.Fields(input)[0] {
	case "/quit", "/exit":
		return []string{"Goodbye."}, true

	case "/help":
		return m.cmdHelp(), false

	case "/state":
		return m.cmdState(), false

	case "/trace":
		m.trace = !m.trace
		if m.trace {
			return []string{"Trace output enabled."}, false
		}
		return []string{"Trace output disabled."}, false

	default:
		return []string{fmt.Sprintf("Unknown command: %s. Type /help for available commands.", input)}, false
	}
}

func (m *Model) cmdHelp() []string {
	return []string{
		"System:",
		"  /quit   — Exit the session",
		"  /help   — Show this help",
		"  /state  — Dump current state",
		"  /trace  — Toggle effect/event trace output",
		"",
		"Game commands:",
		"  Pick a numbered option, or type a command directly:",
		"  go <place>            — Move (magnotube rides cost extra time)",
		"  take/drop <item>      — Pick something up or put it down",
		"  open <container>      — Open a cupboard or locker",
		"  look / read / check   — Examine things",
		"  talk to <person>      — Start a conversation",
		"  offer <item> to <person>",
		"  mine / deposit / buy  — Work the colony",
		"  inventory, map, quests, help",
		"  again (g)             — Repeat your last command",
		"",
		"Navigation: PgUp/PgDn to scroll, Up/Down for command history",
	}
}

func (m *Model) cmdState() []string {
	s := m.engine.State
	output := []string{
		fmt.Sprintf("Turn: %d", s.TurnCount),
		fmt.Sprintf("Location: %s", s.Player.Location),
		fmt.Sprintf("Clock: day %d, %s", s.Day, clock.Format(s.Hour)),
		fmt.Sprintf("Minshin: %d  Quota: %d/%d", s.Player.Minshin, s.Player.Quota, m.defs.Game.Quota),
		fmt.Sprintf("Inventory: %v", s.Player.Inventory),
	}
	if len(s.Quests) > 0 {
		output = append(output, fmt.Sprintf("Quests: %v", s.Quests))
	}
	if len(s.Flags) > 0 {
		output = append(output, fmt.Sprintf("Flags: %v", s.Flags))
	}
	if len(s.Counters) > 0 {
		output = append(output, fmt.Sprintf("Counters: %v", s.Counters))
	}
	return output
}

func (m *Model) formatTrace(result types.Result) []string {
	var lines []string
	if len(result.Effects) > 0 {
		lines = append(lines, fmt.Sprintf("[trace] Effects: %d", len(result.Effects)))
		for _, e := range result.Effects {
			lines = append(lines, fmt.Sprintf("[trace]   %s %v", e.Type, e.Params))
		}
	}
	if len(result.Events) > 0 {
		lines = append(lines, fmt.Sprintf("[trace] Events: %d", len(result.Events)))
		for _, e := range result.Events {
			lines = append(lines, fmt.Sprintf("[trace]   %s", e.Type))
		}
	}
	return lines
}

// viewportKeyMap returns a viewport keymap with Up/Down disabled
// (we use those for input history).
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
