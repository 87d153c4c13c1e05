package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleRoomDesc = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleRoomHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	styleYouSee = lipgloss.NewStyle().
			Bold(true)

	styleExits = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleOption = lipgloss.NewStyle().
			Foreground(lipgloss.Color("117"))

	styleDialogue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228"))

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindRoomDesc lineKind = iota
	kindRoomHeader
	kindYouSee
	kindExits
	kindOption
	kindDialogue
	kindSystem
	kindError
	kindTrace
)

// classifyLine determines what kind of output line this is.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "[trace]"):
		return kindTrace
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	case strings.HasPrefix(line, "== ") && strings.HasSuffix(line, " =="):
		return kindRoomHeader
	case strings.HasPrefix(line, "On the ground:"), strings.HasPrefix(line, "Inside:"):
		return kindYouSee
	case strings.HasPrefix(line, "Exits:"):
		return kindExits
	case isOptionLine(line):
		return kindOption
	case strings.HasPrefix(line, "you don't see"),
		strings.HasPrefix(line, "You can't"),
		strings.HasPrefix(line, "Your bag is full"),
		strings.HasPrefix(line, "Unrecognized command"):
		return kindError
	case containsQuotedSpeech(line):
		return kindDialogue
	default:
		return kindRoomDesc
	}
}

// isOptionLine matches numbered menu lines of the form "  3) take wrench".
func isOptionLine(line string) bool {
	trimmed := strings.TrimLeft(line, " ")
	if trimmed == line {
		return false // options are always indented
	}
	i := 0
	for i < len(trimmed) && trimmed[i] >= '0' && trimmed[i] <= '9' {
		i++
	}
	return i > 0 && i < len(trimmed) && trimmed[i] == ')'
}

// containsQuotedSpeech checks if a line contains NPC dialogue in double quotes.
func containsQuotedSpeech(line string) bool {
	inQuote := false
	quoteLen := 0
	for _, r := range line {
		if r == '"' {
			if inQuote && quoteLen > 5 {
				return true
			}
			inQuote = !inQuote
			quoteLen = 0
		} else if inQuote {
			quoteLen++
		}
	}
	return false
}

// styledYouSee renders "On the ground: coin." with the item names bold.
func styledYouSee(line string) string {
	for _, prefix := range []string{"On the ground: ", "Inside: "} {
		if strings.HasPrefix(line, prefix) {
			return styleRoomDesc.Render(prefix) + styleYouSee.Render(line[len(prefix):])
		}
	}
	return styleRoomDesc.Render(line)
}

// styledSystemMsg renders a system message in gray with brackets.
func styledSystemMsg(text string) string {
	return styleSystem.Render("[" + text + "]")
}
