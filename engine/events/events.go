// Package events implements single-pass event handler dispatch. Handlers
// react to things like quota_met, quest_completed, or donation milestones
// and produce additional effects, but never recurse: effects produced by a
// handler cannot trigger further handlers within the same step.
package events

import (
	"github.com/yaboy-beast/Mining-Colony-4b/engine/rules"
	"github.com/yaboy-beast/Mining-Colony-4b/engine/state"
	"github.com/yaboy-beast/Mining-Colony-4b/types"
)

// Dispatch runs event handlers against the emitted events. Single pass.
// Returns additional effects produced by matching handlers.
func Dispatch(events []types.Event, s *types.State, defs *state.Defs) []types.Effect {
	var result []types.Effect

	for _, event := range events {
		for _, handler := range defs.Handlers {
			if handler.EventType != event.Type {
				continue
			}
			if !rules.EvalAllConditions(handler.Conditions, s, defs) {
				continue
			}
			result = append(result, handler.Effects...)
		}
	}

	return result
}
