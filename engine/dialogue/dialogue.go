// Package dialogue selects what an NPC says when approached. Each NPC
// declares an ordered list of stage-gated greetings; the first one whose
// conditions hold wins, so later quest stages are listed before earlier
// ones in content.
package dialogue

import (
	"github.com/yaboy-beast/Mining-Colony-4b/engine/rules"
	"github.com/yaboy-beast/Mining-Colony-4b/engine/state"
	"github.com/yaboy-beast/Mining-Colony-4b/types"
)

// Greet returns the greeting an NPC opens with right now. The bool is false
// when the NPC is unknown or no greeting's conditions hold.
func Greet(npcID string, s *types.State, defs *state.Defs) (types.Greeting, bool) {
	npc, ok := defs.NPCs[npcID]
	if !ok {
		return types.Greeting{}, false
	}
	for _, g := range npc.Greetings {
		if rules.EvalAllConditions(g.Requires, s, defs) {
			return g, true
		}
	}
	return types.Greeting{}, false
}
