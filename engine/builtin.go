package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yaboy-beast/Mining-Colony-4b/engine/dialogue"
	"github.com/yaboy-beast/Mining-Colony-4b/engine/resolve"
	"github.com/yaboy-beast/Mining-Colony-4b/engine/rules"
	"github.com/yaboy-beast/Mining-Colony-4b/engine/state"
	"github.com/yaboy-beast/Mining-Colony-4b/types"
)

// builtin provides default verb handling when no rule matched. The bool is
// false when the verb is not a built-in (or its preconditions put the turn
// back in the caller's hands), letting Step fall through to resolution
// errors or fallback text.
func (e *Engine) builtin(intent types.Intent, obj, tgt resolve.Match, resolveErr error) ([]types.Effect, []string, bool) {
	switch intent.Verb {
	case "go":
		return e.builtinGo(intent.Object)
	case "back":
		return e.builtinBack()
	case "take":
		if resolveErr != nil {
			return nil, nil, false
		}
		return e.builtinTake(intent, obj)
	case "drop":
		if resolveErr != nil {
			return nil, nil, false
		}
		return e.builtinDrop(intent, obj)
	case "open":
		return e.builtinOpen(intent.Object)
	case "look":
		if intent.Object == "" {
			return nil, e.DescribeRoom(), true
		}
		if resolveErr != nil {
			return nil, nil, false
		}
		return e.builtinLookAt(obj)
	case "read":
		if resolveErr != nil {
			return nil, nil, false
		}
		return e.builtinRead(intent, obj)
	case "talk":
		if resolveErr != nil {
			return nil, nil, false
		}
		return e.builtinTalk(intent, obj)
	case "inventory":
		return nil, e.inventoryLines(), true
	case "map":
		return nil, []string{e.Defs.Game.Map}, true
	case "help":
		return nil, []string{e.Defs.Game.Help}, true
	case "quests":
		return nil, e.questLines(), true
	case "wait":
		effs := []types.Effect{advanceTime(e.Defs.Game.MoveCost)}
		return effs, []string{"You wait. The colony hums around you."}, true
	case "quit":
		return nil, nil, true
	case "debugmode":
		return e.builtinDebugMode()
	case "debug":
		return e.builtinDebug(intent)
	default:
		return nil, nil, false
	}
}

func (e *Engine) builtinGo(name string) ([]types.Effect, []string, bool) {
	if name == "" {
		return nil, []string{"Go where?"}, true
	}
	exit, ok := state.FindExit(e.Defs, e.State.Player.Location, name)
	if !ok {
		return nil, []string{"You can't go that way."}, true
	}
	if !rules.EvalAllConditions(exit.Requires, e.State, e.Defs) {
		denied := exit.Denied
		if denied == "" {
			denied = "The way is barred."
		}
		return nil, []string{denied}, true
	}

	cost := exit.Cost
	if cost == 0 {
		cost = e.Defs.Game.MoveCost
	}
	var effs []types.Effect
	if exit.Travel != "" {
		effs = append(effs, sayEffect(exit.Travel))
	}
	// Leaving a room collapses its menu back to the main list.
	effs = append(effs,
		types.Effect{Type: "set_menu", Params: map[string]any{"menu": ""}},
		types.Effect{Type: "move_player", Params: map[string]any{"room": exit.To}},
		advanceTime(cost),
	)
	return effs, e.describeRoomID(exit.To), true
}

func (e *Engine) builtinBack() ([]types.Effect, []string, bool) {
	loc := e.State.Player.Location
	active := e.State.Menus[loc]
	if active == "" {
		return nil, []string{"You're not in the middle of anything."}, true
	}
	parent := ""
	if room, ok := e.Defs.Rooms[loc]; ok {
		if menu, ok := room.Menus[active]; ok {
			parent = menu.Parent
		}
	}
	effs := []types.Effect{{Type: "set_menu", Params: map[string]any{"menu": parent}}}
	return effs, nil, true
}

func (e *Engine) builtinTake(intent types.Intent, obj resolve.Match) ([]types.Effect, []string, bool) {
	if intent.Object == "" {
		return nil, []string{"Take what?"}, true
	}
	if obj.Kind != resolve.KindItem {
		return nil, []string{"You can't take that."}, true
	}
	if obj.Where == "inventory" {
		return nil, []string{"You already have that."}, true
	}
	def := e.Defs.Items[obj.ID]
	if state.FreeSlots(e.State) < 1 {
		return nil, []string{"Your bag is full. Drop or deposit something first."}, true
	}
	maxStack := e.Defs.Game.MaxStack
	if def.Kind == types.KindResource && maxStack > 0 && state.ItemCount(e.State, obj.ID) >= maxStack {
		return nil, []string{fmt.Sprintf("You can't carry any more %s.", def.Name)}, true
	}
	effs := []types.Effect{{
		Type:   "take_item",
		Params: map[string]any{"item": obj.ID, "from": obj.Where},
	}}
	return effs, []string{fmt.Sprintf("You take the %s.", def.Name)}, true
}

func (e *Engine) builtinDrop(intent types.Intent, obj resolve.Match) ([]types.Effect, []string, bool) {
	if intent.Object == "" {
		return nil, []string{"Drop what?"}, true
	}
	def := e.Defs.Items[obj.ID]
	if def.Kind == types.KindKey && !def.Droppable {
		return nil, []string{fmt.Sprintf("The %s is too important to leave lying around.", def.Name)}, true
	}
	effs := []types.Effect{{
		Type:   "drop_item",
		Params: map[string]any{"item": obj.ID},
	}}
	return effs, []string{fmt.Sprintf("You set the %s down.", def.Name)}, true
}

func (e *Engine) builtinOpen(name string) ([]types.Effect, []string, bool) {
	if name == "" {
		return nil, []string{"Open what?"}, true
	}
	loc := e.State.Player.Location
	c, ok := state.FindContainer(e.Defs, loc, name)
	if !ok {
		return nil, nil, false
	}
	if state.ContainerOpen(e.State, loc, c.ID) {
		return nil, []string{"It's already open."}, true
	}
	if c.Key != "" && !state.HasItem(e.State, c.Key) {
		return nil, []string{fmt.Sprintf("The %s is locked.", c.Name)}, true
	}
	effs := []types.Effect{{
		Type:   "open_container",
		Params: map[string]any{"container": c.ID},
	}}
	out := []string{fmt.Sprintf("You open the %s.", c.Name)}
	if items := state.PoolItems(e.State, state.ContainerKey(loc, c.ID)); len(items) > 0 {
		out = append(out, "Inside: "+e.itemList(state.ContainerKey(loc, c.ID), items)+".")
	} else {
		out = append(out, "It's empty.")
	}
	return effs, out, true
}

func (e *Engine) builtinLookAt(obj resolve.Match) ([]types.Effect, []string, bool) {
	if obj.Kind == resolve.KindNPC {
		if def, ok := e.Defs.NPCs[obj.ID]; ok && def.Description != "" {
			return nil, []string{def.Description}, true
		}
	}
	if def, ok := e.Defs.Items[obj.ID]; ok && def.Description != "" {
		return nil, []string{def.Description}, true
	}
	return nil, []string{"You see nothing special about it."}, true
}

func (e *Engine) builtinRead(intent types.Intent, obj resolve.Match) ([]types.Effect, []string, bool) {
	if intent.Object == "" {
		return nil, []string{"Read what?"}, true
	}
	if def, ok := e.Defs.Items[obj.ID]; ok && def.Text != "" {
		return nil, []string{def.Text}, true
	}
	return nil, []string{"There's nothing written on that."}, true
}

func (e *Engine) builtinTalk(intent types.Intent, obj resolve.Match) ([]types.Effect, []string, bool) {
	if intent.Object == "" {
		return nil, []string{"Talk to whom?"}, true
	}
	if obj.Kind != resolve.KindNPC {
		return nil, []string{"It doesn't have much to say."}, true
	}
	npc := e.Defs.NPCs[obj.ID]
	greeting, ok := dialogue.Greet(obj.ID, e.State, e.Defs)
	if !ok {
		return nil, []string{fmt.Sprintf("%s has nothing to say right now.", npc.Name)}, true
	}
	effs := append([]types.Effect{}, greeting.Effects...)
	if greeting.Menu != "" {
		effs = append(effs, types.Effect{Type: "set_menu", Params: map[string]any{"menu": greeting.Menu}})
	}
	return effs, []string{greeting.Text}, true
}

func (e *Engine) inventoryLines() []string {
	s := e.State
	lines := []string{fmt.Sprintf("Minshin: %d", s.Player.Minshin)}
	ids := sortedKeys(s.Player.Inventory)
	if len(ids) == 0 {
		lines = append(lines, "Your bag is empty.")
	} else {
		var entries []string
		for _, id := range ids {
			entries = append(entries, countLabel(e.Defs, id, s.Player.Inventory[id]))
		}
		lines = append(lines, "Carrying: "+strings.Join(entries, ", ")+".")
	}
	lines = append(lines, fmt.Sprintf("Slots: %d/%d", state.UsedSlots(s), s.Player.MaxInventory))
	return lines
}

func (e *Engine) questLines() []string {
	lines := []string{"Side quests:"}
	for _, id := range e.Defs.QuestOrder {
		q := e.Defs.Quests[id]
		if state.QuestComplete(e.State, id) {
			lines = append(lines, fmt.Sprintf("  [x] %s", q.Name))
			continue
		}
		stage := state.QuestStage(e.State, id)
		if stage == "" || stage == q.Stages[0] {
			lines = append(lines, fmt.Sprintf("  [ ] %s", q.Name))
			continue
		}
		lines = append(lines, fmt.Sprintf("  [ ] %s (%s)", q.Name, strings.ReplaceAll(stage, "_", " ")))
	}
	return lines
}

// DescribeRoom renders the player's current room.
func (e *Engine) DescribeRoom() []string {
	return e.describeRoomID(e.State.Player.Location)
}

func (e *Engine) describeRoomID(roomID string) []string {
	room, ok := e.Defs.Rooms[roomID]
	if !ok {
		return []string{"You are somewhere the colony maps don't cover."}
	}
	out := []string{"== " + room.Name + " ==", room.Description}

	for _, id := range state.NPCsInRoom(e.State, e.Defs, roomID) {
		if npc, ok := e.Defs.NPCs[id]; ok {
			out = append(out, npc.Name+" is here.")
		}
	}
	if items := state.PoolItems(e.State, state.RoomKey(roomID)); len(items) > 0 {
		out = append(out, "On the ground: "+e.itemList(state.RoomKey(roomID), items)+".")
	}
	if len(room.Exits) > 0 {
		var names []string
		for _, x := range room.Exits {
			names = append(names, x.Name)
		}
		out = append(out, "Exits: "+strings.Join(names, ", ")+".")
	}
	return out
}

// Options returns the numbered option list for the player's current
// position: the active menu's options if one is open, otherwise the main
// list generated from room contents plus the room's declared extras.
func (e *Engine) Options() []string {
	s, defs := e.State, e.Defs
	loc := s.Player.Location
	room, ok := defs.Rooms[loc]
	if !ok {
		return nil
	}

	if active := s.Menus[loc]; active != "" {
		if menu, ok := room.Menus[active]; ok {
			var options []string
			for _, opt := range menu.Options {
				if rules.EvalAllConditions(opt.Requires, s, defs) {
					options = append(options, opt.Text)
				}
			}
			return append(options, "go back")
		}
	}

	var options []string
	for _, opt := range room.Extras {
		if rules.EvalAllConditions(opt.Requires, s, defs) {
			options = append(options, opt.Text)
		}
	}
	for _, c := range room.Containers {
		if !state.ContainerOpen(s, loc, c.ID) {
			options = append(options, "open "+strings.ToLower(c.Name))
			continue
		}
		for _, id := range state.PoolItems(s, state.ContainerKey(loc, c.ID)) {
			if def, ok := defs.Items[id]; ok {
				options = append(options, "take "+strings.ToLower(def.Name))
			}
		}
	}
	for _, id := range state.PoolItems(s, state.RoomKey(loc)) {
		if def, ok := defs.Items[id]; ok {
			options = append(options, "take "+strings.ToLower(def.Name))
		}
	}
	for _, id := range state.NPCsInRoom(s, defs, loc) {
		if npc, ok := defs.NPCs[id]; ok {
			options = append(options, "talk to "+strings.ToLower(npc.Name))
		}
	}
	for _, x := range room.Exits {
		options = append(options, "go "+strings.ToLower(x.Name))
	}
	return options
}

// Prompt returns the pending input prompt text shown instead of the option
// list, or "" when no prompt is active.
func (e *Engine) Prompt() string {
	if e.State.Prompt == "donation" {
		return fmt.Sprintf("Enter a donation amount (minimum %d Minshin), or cancel:", e.Defs.Game.DonationMin)
	}
	return ""
}

func (e *Engine) itemList(poolKey string, ids []string) string {
	var entries []string
	for _, id := range ids {
		entries = append(entries, countLabel(e.Defs, id, state.PoolCount(e.State, poolKey, id)))
	}
	return strings.Join(entries, ", ")
}

func countLabel(defs *state.Defs, itemID string, count int) string {
	name := itemID
	if def, ok := defs.Items[itemID]; ok {
		name = def.Name
	}
	if count <= 1 {
		return name
	}
	return fmt.Sprintf("%s x%d", name, count)
}

func sortedKeys(m map[string]int) []string {
	var keys []string
	for k, n := range m {
		if n > 0 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func sayEffect(text string) types.Effect {
	return types.Effect{Type: "say", Params: map[string]any{"text": text}}
}

func advanceTime(hours float64) types.Effect {
	return types.Effect{Type: "advance_time", Params: map[string]any{"hours": hours}}
}
