// Package rules implements the declarative rule pipeline: match criteria,
// condition predicates, and ranked selection.
package rules

import (
	"github.com/yaboy-beast/Mining-Colony-4b/engine/clock"
	"github.com/yaboy-beast/Mining-Colony-4b/engine/state"
	"github.com/yaboy-beast/Mining-Colony-4b/types"
)

// EvalCondition evaluates a single condition against the current state.
// Unknown condition types are false; the loader rejects them before play,
// so this only matters for hand-built test fixtures.
func EvalCondition(c types.Condition, s *types.State, defs *state.Defs) bool {
	switch c.Type {
	case "has_item":
		item, _ := c.Params["item"].(string)
		count := toInt(c.Params["count"])
		if count <= 0 {
			count = 1
		}
		return state.ItemCount(s, item) >= count

	case "flag_set":
		flag, _ := c.Params["flag"].(string)
		return state.GetFlag(s, flag)

	case "flag_not":
		flag, _ := c.Params["flag"].(string)
		return !state.GetFlag(s, flag)

	case "minshin_gte":
		return s.Player.Minshin >= toInt(c.Params["amount"])

	case "quota_met":
		return s.Player.Quota >= defs.Game.Quota

	case "day_gte":
		return s.Day >= toInt(c.Params["day"])

	case "day_lt":
		return s.Day < toInt(c.Params["day"])

	case "hour_between":
		from := toFloat(c.Params["from"])
		to := toFloat(c.Params["to"])
		return clock.Within(s.Hour, from, to)

	case "during_maintenance":
		return clock.Within(s.Hour, defs.Game.FacilityClose, defs.Game.FacilityOpen)

	case "donation_goal_met":
		return state.GetCounter(s, "donations_total") >= defs.Game.DonationGoal

	case "stage_is":
		quest, _ := c.Params["quest"].(string)
		stage, _ := c.Params["stage"].(string)
		return state.QuestStage(s, quest) == stage

	case "stage_at_least":
		quest, _ := c.Params["quest"].(string)
		stage, _ := c.Params["stage"].(string)
		want := state.StageIndex(defs, quest, stage)
		have := state.StageIndex(defs, quest, state.QuestStage(s, quest))
		return want >= 0 && have >= want

	case "quest_complete":
		quest, _ := c.Params["quest"].(string)
		return state.QuestComplete(s, quest)

	case "counter_gte":
		counter, _ := c.Params["counter"].(string)
		return state.GetCounter(s, counter) >= toInt(c.Params["value"])

	case "counter_lt":
		counter, _ := c.Params["counter"].(string)
		return state.GetCounter(s, counter) < toInt(c.Params["value"])

	case "in_room":
		room, _ := c.Params["room"].(string)
		return s.Player.Location == room

	case "container_open":
		room, _ := c.Params["room"].(string)
		container, _ := c.Params["container"].(string)
		return state.ContainerOpen(s, room, container)

	case "not":
		if c.Inner == nil {
			return true
		}
		return !EvalCondition(*c.Inner, s, defs)

	default:
		return false
	}
}

// EvalAllConditions returns true if all conditions pass (AND logic).
// An empty condition list is vacuously true.
func EvalAllConditions(conditions []types.Condition, s *types.State, defs *state.Defs) bool {
	for _, c := range conditions {
		if !EvalCondition(c, s, defs) {
			return false
		}
	}
	return true
}

// KnownCondition reports whether a condition type is part of the closed
// vocabulary. The loader uses this to reject typos at compile time.
func KnownCondition(typ string) bool {
	switch typ {
	case "has_item", "flag_set", "flag_not", "minshin_gte", "quota_met",
		"day_gte", "day_lt", "hour_between", "during_maintenance",
		"donation_goal_met", "stage_is", "stage_at_least",
		"quest_complete", "counter_gte", "counter_lt", "in_room",
		"container_open", "not":
		return true
	}
	return false
}

// toInt converts an any value to int, handling float64 from Lua.
func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	case int64:
		return int(n)
	default:
		return 0
	}
}

// toFloat converts an any value to float64, handling ints from fixtures.
func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}
