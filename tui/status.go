package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yaboy-beast/Mining-Colony-4b/engine/clock"
	"github.com/yaboy-beast/Mining-Colony-4b/engine/state"
)

// roomDisplayName derives a human-readable name from a room ID.
// "central_plaza" -> "Central Plaza", "mine_entrance" -> "Mine Entrance".
func roomDisplayName(id string) string {
	words := strings.Split(id, "_")
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// renderStatusBar produces a full-width inverted status line showing the
// current room, the Thebian clock, the Minshin balance, quota progress,
// and completed side quests.
func (m Model) renderStatusBar() string {
	s := m.engine.State

	roomName := m.defs.Rooms[s.Player.Location].Name
	if roomName == "" {
		roomName = roomDisplayName(s.Player.Location)
	}

	left := fmt.Sprintf(" %s | Day %d, %s", roomName, s.Day+1, clock.Format(s.Hour))

	done := state.CompletedQuests(s)
	right := fmt.Sprintf("%d Minshin | Quota %d/%d | Quests %d/%d ",
		s.Player.Minshin, s.Player.Quota, m.defs.Game.Quota,
		done, len(m.defs.Quests))

	// Drop the quest segment first when the terminal is narrow.
	if lipgloss.Width(left)+lipgloss.Width(right)+2 >= m.width {
		right = fmt.Sprintf("%d M | %d/%d ",
			s.Player.Minshin, s.Player.Quota, m.defs.Game.Quota)
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}
