package loader

import (
	"fmt"
	"os"
	"strings"

	"github.com/yaboy-beast/Mining-Colony-4b/engine/effects"
	"github.com/yaboy-beast/Mining-Colony-4b/engine/parser"
	"github.com/yaboy-beast/Mining-Colony-4b/engine/rules"
	"github.com/yaboy-beast/Mining-Colony-4b/engine/state"
	"github.com/yaboy-beast/Mining-Colony-4b/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

var validKinds = map[string]bool{
	types.KindKey:        true,
	types.KindResource:   true,
	types.KindConsumable: true,
}

var validEndingKinds = map[string]bool{
	"special": true, "success": true, "failure": true, "quit": true,
}

// validate checks the compiled defs for referential integrity. Broken
// content is a startup failure, never a runtime surprise.
func validate(defs *state.Defs) error {
	ve := &ValidationError{}
	errf := func(format string, args ...any) {
		ve.Errors = append(ve.Errors, fmt.Sprintf(format, args...))
	}
	warnf := func(format string, args ...any) {
		ve.Warnings = append(ve.Warnings, fmt.Sprintf(format, args...))
	}

	if defs.Game.Title == "" {
		errf("Game.title is required")
	}
	if defs.Game.Start == "" {
		errf("Game.start is required")
	} else if _, ok := defs.Rooms[defs.Game.Start]; !ok {
		errf("start room %q not found in defined rooms", defs.Game.Start)
	}
	if defs.Game.Quota <= 0 {
		errf("Game.quota must be positive")
	}
	if defs.Game.PeriodDays <= 0 {
		errf("Game.period_days must be positive")
	}
	if defs.Game.DayHours <= 0 {
		errf("Game.day_hours must be positive")
	}
	for _, field := range []struct{ name, item string }{
		{"crystal_item", defs.Game.CrystalItem},
		{"cluster_item", defs.Game.ClusterItem},
	} {
		if field.item != "" {
			if _, ok := defs.Items[field.item]; !ok {
				errf("Game.%s references undefined item %q", field.name, field.item)
			}
		}
	}
	for _, entry := range defs.Game.Loot {
		if _, ok := defs.Items[entry.Item]; !ok {
			errf("loot table references undefined item %q", entry.Item)
		}
		if entry.Weight <= 0 {
			errf("loot entry %q needs a positive weight", entry.Item)
		}
	}
	for item := range defs.Game.MaterialPrices {
		if _, ok := defs.Items[item]; !ok {
			errf("material_prices references undefined item %q", item)
		}
	}

	for id, item := range defs.Items {
		if !validKinds[item.Kind] {
			errf("item %q has unknown kind %q", id, item.Kind)
		}
	}
	if defs.Game.MaxStack <= 0 {
		for _, item := range defs.Items {
			if item.Kind == types.KindResource {
				errf("Game.max_stack must be positive when resource items are defined")
				break
			}
		}
	}

	for roomID, room := range defs.Rooms {
		for _, exit := range room.Exits {
			if _, ok := defs.Rooms[exit.To]; !ok {
				errf("room %q exit %q points to undefined room %q", roomID, exit.Name, exit.To)
			}
			validateConditions(exit.Requires, defs, ve)
		}
		for _, item := range room.Items {
			if _, ok := defs.Items[item]; !ok {
				errf("room %q places undefined item %q", roomID, item)
			}
		}
		for _, c := range room.Containers {
			for _, item := range c.Items {
				if _, ok := defs.Items[item]; !ok {
					errf("container %q in room %q holds undefined item %q", c.ID, roomID, item)
				}
			}
			if c.Key != "" {
				if _, ok := defs.Items[c.Key]; !ok {
					errf("container %q in room %q is locked by undefined item %q", c.ID, roomID, c.Key)
				}
			}
		}
		for _, npc := range room.NPCs {
			if _, ok := defs.NPCs[npc]; !ok {
				errf("room %q lists undefined npc %q", roomID, npc)
			}
		}
		for _, opt := range room.Extras {
			validateConditions(opt.Requires, defs, ve)
		}
		for menuID, menu := range room.Menus {
			if menu.Parent != "" {
				if _, ok := room.Menus[menu.Parent]; !ok {
					errf("menu %q in room %q has undefined parent %q", menuID, roomID, menu.Parent)
				}
			}
			for _, opt := range menu.Options {
				validateConditions(opt.Requires, defs, ve)
			}
		}
		validateRules(room.Rules, defs, ve)
	}

	for npcID, npc := range defs.NPCs {
		if npc.Room != "" {
			if _, ok := defs.Rooms[npc.Room]; !ok {
				errf("npc %q home room %q is undefined", npcID, npc.Room)
			}
		} else if !npc.Hidden {
			errf("npc %q needs a home room or hidden = true", npcID)
		}
		if npc.Quest != "" {
			if _, ok := defs.Quests[npc.Quest]; !ok {
				errf("npc %q fronts undefined quest %q", npcID, npc.Quest)
			}
		}
		for _, g := range npc.Greetings {
			validateConditions(g.Requires, defs, ve)
			validateEffects(g.Effects, defs, ve)
			if g.Menu != "" && npc.Room != "" {
				if room, ok := defs.Rooms[npc.Room]; ok {
					if _, ok := room.Menus[g.Menu]; !ok {
						errf("npc %q greeting enters undefined menu %q", npcID, g.Menu)
					}
				}
			}
		}
		validateRules(npc.Rules, defs, ve)
	}

	for questID, quest := range defs.Quests {
		if len(quest.Stages) < 2 {
			errf("quest %q needs at least an initial stage and \"completed\"", questID)
		} else if quest.Stages[len(quest.Stages)-1] != "completed" {
			errf("quest %q must end in stage \"completed\"", questID)
		}
		if quest.Giver != "" {
			if _, ok := defs.NPCs[quest.Giver]; !ok {
				errf("quest %q giver %q is undefined", questID, quest.Giver)
			}
		}
		for _, req := range quest.Requires {
			if _, ok := defs.Quests[req]; !ok {
				errf("quest %q requires undefined quest %q", questID, req)
			}
		}
		if quest.Hint == "" {
			warnf("quest %q has no prophecy hint", questID)
		}
	}

	for endingID, e := range defs.Endings {
		if !validEndingKinds[e.Kind] {
			errf("ending %q has unknown kind %q", endingID, e.Kind)
		}
		validateConditions(e.Requires, defs, ve)
	}

	validateRules(defs.GlobalRules, defs, ve)

	for _, handler := range defs.Handlers {
		validateConditions(handler.Conditions, defs, ve)
		validateEffects(handler.Effects, defs, ve)
	}

	// Rule IDs unique across all scopes.
	seen := map[string]bool{}
	for _, rule := range collectAllRules(defs) {
		if seen[rule.ID] {
			errf("duplicate rule ID %q", rule.ID)
		}
		seen[rule.ID] = true
	}

	for _, w := range ve.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateRules(ruleset []types.RuleDef, defs *state.Defs, ve *ValidationError) {
	for _, rule := range ruleset {
		validateConditions(rule.Conditions, defs, ve)
		validateEffects(rule.Effects, defs, ve)
		if rule.When.Verb != "" && !parser.Known(rule.When.Verb) {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"rule %q matches verb %q, which the parser never produces", rule.ID, rule.When.Verb))
		}
	}
}

func validateConditions(conditions []types.Condition, defs *state.Defs, ve *ValidationError) {
	for _, cond := range conditions {
		if !rules.KnownCondition(cond.Type) {
			ve.Errors = append(ve.Errors, fmt.Sprintf("unknown condition type %q", cond.Type))
			continue
		}
		switch cond.Type {
		case "has_item":
			checkItemRef(cond.Params["item"], "condition has_item", defs, ve)
		case "in_room":
			checkRoomRef(cond.Params["room"], "condition in_room", defs, ve)
		case "stage_is", "stage_at_least":
			checkStageRef(cond.Params, defs, ve)
		case "quest_complete":
			checkQuestRef(cond.Params["quest"], "condition quest_complete", defs, ve)
		case "container_open":
			checkRoomRef(cond.Params["room"], "condition container_open", defs, ve)
		case "not":
			if cond.Inner != nil {
				validateConditions([]types.Condition{*cond.Inner}, defs, ve)
			}
		}
	}
}

func validateEffects(effs []types.Effect, defs *state.Defs, ve *ValidationError) {
	for _, eff := range effs {
		if !effects.Known(eff.Type) {
			ve.Errors = append(ve.Errors, fmt.Sprintf("unknown effect type %q", eff.Type))
			continue
		}
		switch eff.Type {
		case "give_item", "remove_item", "take_item", "drop_item":
			checkItemRef(eff.Params["item"], "effect "+eff.Type, defs, ve)
		case "move_player":
			checkRoomRef(eff.Params["room"], "effect move_player", defs, ve)
		case "move_npc":
			checkRoomRef(eff.Params["room"], "effect move_npc", defs, ve)
			if npc, ok := eff.Params["npc"].(string); ok && !isTemplate(npc) {
				if _, ok := defs.NPCs[npc]; !ok {
					ve.Errors = append(ve.Errors, fmt.Sprintf(
						"effect move_npc references undefined npc %q", npc))
				}
			}
		case "set_stage":
			checkStageRef(eff.Params, defs, ve)
		case "complete_quest":
			checkQuestRef(eff.Params["quest"], "effect complete_quest", defs, ve)
		}
	}
}

func checkItemRef(v any, where string, defs *state.Defs, ve *ValidationError) {
	if item, ok := v.(string); ok && item != "" && !isTemplate(item) {
		if _, ok := defs.Items[item]; !ok {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"%s references undefined item %q", where, item))
		}
	}
}

func checkRoomRef(v any, where string, defs *state.Defs, ve *ValidationError) {
	if room, ok := v.(string); ok && room != "" && !isTemplate(room) {
		if _, ok := defs.Rooms[room]; !ok {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"%s references undefined room %q", where, room))
		}
	}
}

func checkQuestRef(v any, where string, defs *state.Defs, ve *ValidationError) {
	if quest, ok := v.(string); ok && quest != "" {
		if _, ok := defs.Quests[quest]; !ok {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"%s references undefined quest %q", where, quest))
		}
	}
}

func checkStageRef(params map[string]any, defs *state.Defs, ve *ValidationError) {
	quest, _ := params["quest"].(string)
	stage, _ := params["stage"].(string)
	q, ok := defs.Quests[quest]
	if !ok {
		ve.Errors = append(ve.Errors, fmt.Sprintf("stage reference names undefined quest %q", quest))
		return
	}
	for _, st := range q.Stages {
		if st == stage {
			return
		}
	}
	ve.Errors = append(ve.Errors, fmt.Sprintf(
		"quest %q has no stage %q", quest, stage))
}

// collectAllRules gathers all rules from all scopes.
func collectAllRules(defs *state.Defs) []types.RuleDef {
	var all []types.RuleDef
	all = append(all, defs.GlobalRules...)
	for _, room := range defs.Rooms {
		all = append(all, room.Rules...)
	}
	for _, npc := range defs.NPCs {
		all = append(all, npc.Rules...)
	}
	return all
}

// isTemplate reports whether the string contains a template variable like
// {object}, which resolves per turn and cannot be checked statically.
func isTemplate(s string) bool {
	return strings.Contains(s, "{") && strings.Contains(s, "}")
}
