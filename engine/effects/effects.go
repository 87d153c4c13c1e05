// Package effects implements centralized state mutation via the Apply
// function. Every effect type is one atomic operation; anything that can
// fail validates first and leaves the state untouched on failure.
package effects

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yaboy-beast/Mining-Colony-4b/engine/clock"
	"github.com/yaboy-beast/Mining-Colony-4b/engine/state"
	"github.com/yaboy-beast/Mining-Colony-4b/types"
)

// Context carries the resolved intent context needed for template
// interpolation.
type Context struct {
	Verb     string
	ObjectID string
	TargetID string
}

// Apply applies a list of effects to the game state, mutating it.
// Returns events emitted and output text collected.
func Apply(s *types.State, defs *state.Defs, effects []types.Effect, ctx Context) ([]types.Event, []string) {
	var events []types.Event
	var output []string

	for _, eff := range effects {
		switch eff.Type {
		case "say":
			text, _ := eff.Params["text"].(string)
			output = append(output, interpolate(text, s, defs, ctx))

		case "give_item":
			// Mints items into the bag: purchases, mining loot, rewards.
			item := resolveTemplate(param(eff, "item"), ctx)
			count := countParam(eff)
			state.AddItem(s, item, count)
			events = append(events, types.Event{
				Type: "item_gained",
				Data: map[string]any{"item": item, "count": count},
			})

		case "take_item":
			// Moves items from a pool (room floor or container) to the bag.
			item := resolveTemplate(param(eff, "item"), ctx)
			from, _ := eff.Params["from"].(string)
			count := countParam(eff)
			if err := state.TakeFromPool(s, from, item, count); err != nil {
				break
			}
			state.AddItem(s, item, count)
			events = append(events, types.Event{
				Type: "item_taken",
				Data: map[string]any{"item": item, "from": from, "count": count},
			})

		case "drop_item":
			item := resolveTemplate(param(eff, "item"), ctx)
			count := countParam(eff)
			if err := state.RemoveItem(s, item, count); err != nil {
				break
			}
			state.AddToPool(s, state.RoomKey(s.Player.Location), item, count)
			events = append(events, types.Event{
				Type: "item_dropped",
				Data: map[string]any{"item": item, "count": count},
			})

		case "remove_item":
			// Destroys carried items: deliveries, confiscation, deposits.
			item := resolveTemplate(param(eff, "item"), ctx)
			count := countParam(eff)
			if err := state.RemoveItem(s, item, count); err != nil {
				break
			}
			events = append(events, types.Event{
				Type: "item_removed",
				Data: map[string]any{"item": item, "count": count},
			})

		case "add_minshin":
			amount := toInt(eff.Params["amount"])
			if s.Player.Minshin+amount < 0 {
				break
			}
			s.Player.Minshin += amount
			events = append(events, types.Event{
				Type: "minshin_changed",
				Data: map[string]any{"amount": amount, "balance": s.Player.Minshin},
			})

		case "add_quota":
			amount := toInt(eff.Params["amount"])
			before := s.Player.Quota
			s.Player.Quota += amount
			if before < defs.Game.Quota && s.Player.Quota >= defs.Game.Quota {
				events = append(events, types.Event{Type: "quota_met", Data: map[string]any{}})
			}

		case "set_flag":
			flag, _ := eff.Params["flag"].(string)
			value, _ := eff.Params["value"].(bool)
			s.Flags[flag] = value
			events = append(events, types.Event{
				Type: "flag_changed",
				Data: map[string]any{"flag": flag, "value": value},
			})

		case "inc_counter":
			counter, _ := eff.Params["counter"].(string)
			s.Counters[counter] += toInt(eff.Params["amount"])

		case "set_counter":
			counter, _ := eff.Params["counter"].(string)
			s.Counters[counter] = toInt(eff.Params["value"])

		case "set_stage":
			quest, _ := eff.Params["quest"].(string)
			stage, _ := eff.Params["stage"].(string)
			events = append(events, advanceQuest(s, defs, quest, stage)...)

		case "complete_quest":
			quest, _ := eff.Params["quest"].(string)
			events = append(events, advanceQuest(s, defs, quest, "completed")...)

		case "move_player":
			room, _ := eff.Params["room"].(string)
			s.Player.Location = room
			events = append(events, types.Event{
				Type: "room_entered",
				Data: map[string]any{"room": room},
			})

		case "move_npc":
			npc, _ := eff.Params["npc"].(string)
			room, _ := eff.Params["room"].(string)
			s.NPCRooms[npc] = room
			events = append(events, types.Event{
				Type: "npc_moved",
				Data: map[string]any{"npc": npc, "room": room},
			})

		case "advance_time":
			hours := toFloat(eff.Params["hours"])
			before := clock.Time{Day: s.Day, Hour: s.Hour}
			after := before.Add(hours, defs.Game.DayHours)
			s.Day, s.Hour = after.Day, after.Hour
			if after.Day > before.Day {
				events = append(events, types.Event{
					Type: "day_advanced",
					Data: map[string]any{"day": after.Day},
				})
			}

		case "set_menu":
			menu, _ := eff.Params["menu"].(string)
			s.Menus[s.Player.Location] = menu
			// Entering a menu narrates its prompt; the option list alone
			// would leave the turn silent.
			if menu != "" {
				if room, ok := defs.Rooms[s.Player.Location]; ok {
					if def, ok := room.Menus[menu]; ok && def.Prompt != "" {
						output = append(output, interpolate(def.Prompt, s, defs, ctx))
					}
				}
			}

		case "open_container":
			container, _ := eff.Params["container"].(string)
			s.Open[s.Player.Location+"/"+container] = true
			events = append(events, types.Event{
				Type: "container_opened",
				Data: map[string]any{"container": container},
			})

		case "set_max_inventory":
			s.Player.MaxInventory = toInt(eff.Params["slots"])

		case "set_prompt":
			prompt, _ := eff.Params["prompt"].(string)
			s.Prompt = prompt

		case "emit_event":
			event, _ := eff.Params["event"].(string)
			events = append(events, types.Event{Type: event, Data: map[string]any{}})

		case "stop":
			return events, output

		default:
			// Unknown effect type — the loader rejects these, so only
			// hand-built fixtures can reach here. Ignore.
		}
	}

	return events, output
}

// Known reports whether an effect type is part of the closed vocabulary.
// The loader uses this to reject typos at compile time.
func Known(typ string) bool {
	switch typ {
	case "say", "give_item", "take_item", "drop_item", "remove_item",
		"add_minshin", "add_quota", "set_flag", "inc_counter", "set_counter",
		"set_stage", "complete_quest", "move_player", "move_npc",
		"advance_time", "set_menu", "open_container", "set_max_inventory",
		"set_prompt", "emit_event", "stop",
		// Computed actions the engine expands before Apply sees them.
		"mine", "deposit_ambrosium", "deposit_materials", "prophecy",
		"begin_donation":
		return true
	}
	return false
}

// advanceQuest moves a quest to a later stage. Stage order is monotonic:
// a target at or before the current stage is a no-op, as is leaving the
// initial stage while a declared prerequisite quest is incomplete. Debug
// mode bypasses both checks.
func advanceQuest(s *types.State, defs *state.Defs, quest, stage string) []types.Event {
	cur := state.StageIndex(defs, quest, state.QuestStage(s, quest))
	next := state.StageIndex(defs, quest, stage)
	if next < 0 {
		return nil
	}
	if !s.Debug {
		if next <= cur {
			return nil
		}
		if cur == 0 {
			for _, req := range defs.Quests[quest].Requires {
				if !state.QuestComplete(s, req) {
					return nil
				}
			}
		}
	}
	s.Quests[quest] = stage
	events := []types.Event{{
		Type: "quest_stage",
		Data: map[string]any{"quest": quest, "stage": stage},
	}}
	if stage == "completed" {
		events = append(events, types.Event{
			Type: "quest_completed",
			Data: map[string]any{"quest": quest},
		})
	}
	return events
}

// interpolate replaces template variables in text.
func interpolate(text string, s *types.State, defs *state.Defs, ctx Context) string {
	if !strings.Contains(text, "{") {
		return text
	}
	r := strings.NewReplacer(
		"{verb}", ctx.Verb,
		"{object.name}", itemOrNPCName(defs, ctx.ObjectID),
		"{target.name}", itemOrNPCName(defs, ctx.TargetID),
		"{minshin}", strconv.Itoa(s.Player.Minshin),
		"{quota}", strconv.Itoa(s.Player.Quota),
		"{quota_target}", strconv.Itoa(defs.Game.Quota),
		"{day}", strconv.Itoa(s.Day),
		"{time}", clock.Format(s.Hour),
	)
	text = r.Replace(text)

	if strings.Contains(text, "{location}") {
		name := s.Player.Location
		if room, ok := defs.Rooms[s.Player.Location]; ok {
			name = room.Name
		}
		text = strings.ReplaceAll(text, "{location}", name)
	}
	return text
}

func itemOrNPCName(defs *state.Defs, id string) string {
	if id == "" {
		return ""
	}
	if def, ok := defs.Items[id]; ok {
		return def.Name
	}
	if def, ok := defs.NPCs[id]; ok {
		return def.Name
	}
	return id
}

// resolveTemplate handles {object} and {target} in effect params like
// RemoveItem("{object}").
func resolveTemplate(s string, ctx Context) string {
	s = strings.ReplaceAll(s, "{object}", ctx.ObjectID)
	s = strings.ReplaceAll(s, "{target}", ctx.TargetID)
	return s
}

func param(eff types.Effect, key string) string {
	v, _ := eff.Params[key].(string)
	return v
}

func countParam(eff types.Effect) int {
	count := toInt(eff.Params["count"])
	if count <= 0 {
		count = 1
	}
	return count
}

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

// FormatCount renders an item with its count for inventory listings,
// e.g. "Thebian Ground Soil x4".
func FormatCount(defs *state.Defs, itemID string, count int) string {
	name := itemOrNPCName(defs, itemID)
	if count <= 1 {
		return name
	}
	return fmt.Sprintf("%s x%d", name, count)
}
