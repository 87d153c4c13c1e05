// Package ending decides how a cycle terminates. The resolver is called at
// fixed checkpoints (after deposits, day crossings, quest completions, and
// on quit) and applies a strict priority: special endings, then quota
// success or failure at the deadline, then resignation. It never consults
// the RNG, so the same state always resolves to the same ending.
package ending

import (
	"sort"

	"github.com/yaboy-beast/Mining-Colony-4b/engine/rules"
	"github.com/yaboy-beast/Mining-Colony-4b/engine/state"
	"github.com/yaboy-beast/Mining-Colony-4b/types"
)

// Checkpoint reasons.
const (
	ReasonDeposit = "deposit"
	ReasonClock   = "clock"
	ReasonQuest   = "quest"
	ReasonQuit    = "quit"
)

// Resolve returns the ending that applies at this checkpoint, if any.
func Resolve(s *types.State, defs *state.Defs, reason string) (types.EndingDef, bool) {
	// Special endings fire at any checkpoint: the skeleton discovery, the
	// co-foreman promotion when the last quest completes.
	for _, e := range byKind(defs, "special") {
		if rules.EvalAllConditions(e.Requires, s, defs) {
			return e, true
		}
	}

	// At the deadline, the quota decides between success and deportation.
	if s.Day >= defs.Game.PeriodDays {
		if s.Player.Quota >= defs.Game.Quota {
			if e, ok := successVariant(s, defs); ok {
				return e, true
			}
		}
		for _, e := range byKind(defs, "failure") {
			if rules.EvalAllConditions(e.Requires, s, defs) {
				return e, true
			}
		}
	}

	if reason == ReasonQuit {
		for _, e := range byKind(defs, "quit") {
			return e, true
		}
	}

	return types.EndingDef{}, false
}

// successVariant picks the success ending whose MinQuests threshold is the
// highest one the player cleared. Equal thresholds tie-break by ID so the
// outcome is stable regardless of content declaration order.
func successVariant(s *types.State, defs *state.Defs) (types.EndingDef, bool) {
	completed := state.CompletedQuests(s)
	candidates := byKind(defs, "success")
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].MinQuests != candidates[j].MinQuests {
			return candidates[i].MinQuests > candidates[j].MinQuests
		}
		return candidates[i].ID < candidates[j].ID
	})
	for _, e := range candidates {
		if completed >= e.MinQuests && rules.EvalAllConditions(e.Requires, s, defs) {
			return e, true
		}
	}
	return types.EndingDef{}, false
}

// byKind returns endings of a kind ordered by priority (desc) then ID (asc).
func byKind(defs *state.Defs, kind string) []types.EndingDef {
	var result []types.EndingDef
	for _, e := range defs.Endings {
		if e.Kind == kind {
			result = append(result, e)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Priority != result[j].Priority {
			return result[i].Priority > result[j].Priority
		}
		return result[i].ID < result[j].ID
	})
	return result
}
