// Package loader loads Lua game content into Go structs at startup. The
// Lua VM is discarded after loading — zero Lua at runtime.
package loader

import (
	"fmt"

	"github.com/yaboy-beast/Mining-Colony-4b/engine/state"
	"github.com/yaboy-beast/Mining-Colony-4b/types"
	lua "github.com/yuin/gopher-lua"
)

type rawRoom struct {
	id    string
	table *lua.LTable
}

type rawItem struct {
	id    string
	table *lua.LTable
}

type rawNPC struct {
	id    string
	table *lua.LTable
}

type rawQuest struct {
	id    string
	table *lua.LTable
}

type rawEnding struct {
	id    string
	table *lua.LTable
}

type rawRule struct {
	id         string
	when       *lua.LTable
	conditions *lua.LTable // may be nil
	then       *lua.LTable
	scope      string
	order      int
}

type rawHandler struct {
	eventType string
	table     *lua.LTable
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	if s, ok := tbl.RawGetString(key).(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getBool returns a bool field from a Lua table, or the default if missing.
func getBool(tbl *lua.LTable, key string, def bool) bool {
	if b, ok := tbl.RawGetString(key).(lua.LBool); ok {
		return bool(b)
	}
	return def
}

// getNumber returns a numeric field from a Lua table, or 0 if missing.
func getNumber(tbl *lua.LTable, key string) float64 {
	if n, ok := tbl.RawGetString(key).(lua.LNumber); ok {
		return float64(n)
	}
	return 0
}

// getInt returns an int field from a Lua table, or 0 if missing.
func getInt(tbl *lua.LTable, key string) int {
	return int(getNumber(tbl, key))
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	if t, ok := tbl.RawGetString(key).(*lua.LTable); ok {
		return t
	}
	return nil
}

// getStrings returns an array field as a string slice.
func getStrings(tbl *lua.LTable, key string) []string {
	arr := getTable(tbl, key)
	if arr == nil {
		return nil
	}
	var out []string
	for i := 1; i <= arr.MaxN(); i++ {
		if s, ok := arr.RawGetInt(i).(lua.LString); ok {
			out = append(out, string(s))
		}
	}
	return out
}

// toGoValue converts a Lua value to a Go value recursively.
func toGoValue(v lua.LValue) any {
	switch val := v.(type) {
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		f := float64(val)
		if f == float64(int(f)) {
			return int(f)
		}
		return f
	case *lua.LNilType:
		return nil
	case lua.LString:
		return string(val)
	case *lua.LTable:
		if maxN := val.MaxN(); maxN > 0 {
			arr := make([]any, 0, maxN)
			for i := 1; i <= maxN; i++ {
				arr = append(arr, toGoValue(val.RawGetInt(i)))
			}
			return arr
		}
		m := map[string]any{}
		val.ForEach(func(k, v lua.LValue) {
			if ks, ok := k.(lua.LString); ok {
				m[string(ks)] = toGoValue(v)
			}
		})
		return m
	default:
		return nil
	}
}

// tableToStringMap converts a Lua table to a map[string]string.
func tableToStringMap(tbl *lua.LTable) map[string]string {
	if tbl == nil {
		return nil
	}
	m := map[string]string{}
	tbl.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok {
			if vs, ok := v.(lua.LString); ok {
				m[string(ks)] = string(vs)
			}
		}
	})
	return m
}

// compile converts all collected Lua data into a Defs struct.
func compile(coll *collector) (*state.Defs, error) {
	defs := &state.Defs{
		Rooms:   map[string]types.RoomDef{},
		Items:   map[string]types.ItemDef{},
		NPCs:    map[string]types.NPCDef{},
		Quests:  map[string]types.QuestDef{},
		Endings: map[string]types.EndingDef{},
	}

	if coll.game == nil {
		return nil, fmt.Errorf("no Game{} definition found")
	}
	defs.Game = compileGame(coll.game)

	for _, raw := range coll.rooms {
		if _, dup := defs.Rooms[raw.id]; dup {
			return nil, fmt.Errorf("duplicate room %q", raw.id)
		}
		room, scopedIDs := compileRoom(raw)
		defs.Rooms[room.ID] = room
		markScopedRules(coll, scopedIDs, "room:"+raw.id)
	}

	for _, raw := range coll.items {
		if _, dup := defs.Items[raw.id]; dup {
			return nil, fmt.Errorf("duplicate item %q", raw.id)
		}
		defs.Items[raw.id] = compileItem(raw)
	}

	for _, raw := range coll.npcs {
		if _, dup := defs.NPCs[raw.id]; dup {
			return nil, fmt.Errorf("duplicate npc %q", raw.id)
		}
		npc, scopedIDs := compileNPC(raw)
		defs.NPCs[npc.ID] = npc
		markScopedRules(coll, scopedIDs, "npc:"+raw.id)
	}

	for _, raw := range coll.quests {
		if _, dup := defs.Quests[raw.id]; dup {
			return nil, fmt.Errorf("duplicate quest %q", raw.id)
		}
		defs.Quests[raw.id] = compileQuest(raw)
		defs.QuestOrder = append(defs.QuestOrder, raw.id)
	}

	for _, raw := range coll.endings {
		if _, dup := defs.Endings[raw.id]; dup {
			return nil, fmt.Errorf("duplicate ending %q", raw.id)
		}
		defs.Endings[raw.id] = compileEnding(raw)
	}

	// Rules land in the scope that claimed their marker.
	for i := range coll.rules {
		rule := compileRule(coll.rules[i])
		switch {
		case rule.Scope == "global":
			defs.GlobalRules = append(defs.GlobalRules, rule)
		case len(rule.Scope) > 5 && rule.Scope[:5] == "room:":
			roomID := rule.Scope[5:]
			if r, ok := defs.Rooms[roomID]; ok {
				r.Rules = append(r.Rules, rule)
				defs.Rooms[roomID] = r
			}
		case len(rule.Scope) > 4 && rule.Scope[:4] == "npc:":
			npcID := rule.Scope[4:]
			if n, ok := defs.NPCs[npcID]; ok {
				n.Rules = append(n.Rules, rule)
				defs.NPCs[npcID] = n
			}
		}
	}

	for _, raw := range coll.handlers {
		defs.Handlers = append(defs.Handlers, compileHandler(raw))
	}

	return defs, nil
}

func compileGame(tbl *lua.LTable) types.GameDef {
	game := types.GameDef{
		Title:          getString(tbl, "title"),
		Version:        getString(tbl, "version"),
		Start:          getString(tbl, "start"),
		Intro:          getString(tbl, "intro"),
		Map:            getString(tbl, "map"),
		Help:           getString(tbl, "help"),
		Quota:          getInt(tbl, "quota"),
		PeriodDays:     getInt(tbl, "period_days"),
		DayHours:       getNumber(tbl, "day_hours"),
		StartHour:      getNumber(tbl, "start_hour"),
		MoveCost:       getNumber(tbl, "move_cost"),
		StartMinshin:   getInt(tbl, "start_minshin"),
		MaxInventory:   getInt(tbl, "max_inventory"),
		MaxStack:       getInt(tbl, "max_stack"),
		DonationGoal:   getInt(tbl, "donation_goal"),
		DonationMin:    getInt(tbl, "donation_min"),
		FacilityClose:  getNumber(tbl, "facility_close"),
		FacilityOpen:   getNumber(tbl, "facility_open"),
		CrystalItem:    getString(tbl, "crystal_item"),
		ClusterItem:    getString(tbl, "cluster_item"),
		ClusterValue:   getInt(tbl, "cluster_value"),
		UpgradeFlag:    getString(tbl, "upgrade_flag"),
		UpgradedRolls:  getInt(tbl, "upgraded_rolls"),
		SkeletonAfter:  getInt(tbl, "skeleton_after"),
		SkeletonChance: getNumber(tbl, "skeleton_chance"),
		SkeletonFlag:   getString(tbl, "skeleton_flag"),
		PostQuotaBonus: getInt(tbl, "post_quota_bonus"),
		ProphecyCost:   getInt(tbl, "prophecy_cost"),
	}

	// loot = { { item = "...", weight = 60 }, ... }
	if loot := getTable(tbl, "loot"); loot != nil {
		for i := 1; i <= loot.MaxN(); i++ {
			if entry, ok := loot.RawGetInt(i).(*lua.LTable); ok {
				game.Loot = append(game.Loot, types.LootEntry{
					Item:   getString(entry, "item"),
					Weight: getInt(entry, "weight"),
				})
			}
		}
	}

	// material_prices = { item_id = minshin, ... }
	if prices := getTable(tbl, "material_prices"); prices != nil {
		game.MaterialPrices = map[string]int{}
		prices.ForEach(func(k, v lua.LValue) {
			if ks, ok := k.(lua.LString); ok {
				if n, ok := v.(lua.LNumber); ok {
					game.MaterialPrices[string(ks)] = int(n)
				}
			}
		})
	}

	return game
}

func compileRoom(raw rawRoom) (types.RoomDef, []string) {
	tbl := raw.table
	room := types.RoomDef{
		ID:          raw.id,
		Name:        getString(tbl, "name"),
		Description: getString(tbl, "description"),
		Items:       getStrings(tbl, "items"),
		NPCs:        getStrings(tbl, "npcs"),
		Fallbacks:   tableToStringMap(getTable(tbl, "fallbacks")),
	}

	// exits = { { name = "...", to = "...", requires = {...}, denied = "...",
	// travel = "...", cost = 0.5 }, ... }
	if exits := getTable(tbl, "exits"); exits != nil {
		for i := 1; i <= exits.MaxN(); i++ {
			if e, ok := exits.RawGetInt(i).(*lua.LTable); ok {
				exit := types.ExitDef{
					Name:   getString(e, "name"),
					To:     getString(e, "to"),
					Denied: getString(e, "denied"),
					Travel: getString(e, "travel"),
					Cost:   getNumber(e, "cost"),
				}
				if req := getTable(e, "requires"); req != nil {
					exit.Requires = compileConditions(req)
				}
				room.Exits = append(room.Exits, exit)
			}
		}
	}

	if containers := getTable(tbl, "containers"); containers != nil {
		for i := 1; i <= containers.MaxN(); i++ {
			if c, ok := containers.RawGetInt(i).(*lua.LTable); ok {
				room.Containers = append(room.Containers, types.ContainerDef{
					ID:    getString(c, "id"),
					Name:  getString(c, "name"),
					Items: getStrings(c, "items"),
					Key:   getString(c, "key"),
				})
			}
		}
	}

	if extras := getTable(tbl, "extras"); extras != nil {
		room.Extras = compileMenuOptions(extras)
	}

	if menus := getTable(tbl, "menus"); menus != nil {
		room.Menus = map[string]types.MenuDef{}
		menus.ForEach(func(k, v lua.LValue) {
			name, ok := k.(lua.LString)
			if !ok {
				return
			}
			menuTbl, ok := v.(*lua.LTable)
			if !ok {
				return
			}
			menu := types.MenuDef{
				Parent: getString(menuTbl, "parent"),
				Prompt: getString(menuTbl, "prompt"),
			}
			if opts := getTable(menuTbl, "options"); opts != nil {
				menu.Options = compileMenuOptions(opts)
			}
			room.Menus[string(name)] = menu
		})
	}

	return room, ruleMarkers(tbl)
}

// compileMenuOptions reads an array of either bare strings or
// { text = "...", requires = {...} } tables.
func compileMenuOptions(tbl *lua.LTable) []types.MenuOption {
	var options []types.MenuOption
	for i := 1; i <= tbl.MaxN(); i++ {
		switch v := tbl.RawGetInt(i).(type) {
		case lua.LString:
			options = append(options, types.MenuOption{Text: string(v)})
		case *lua.LTable:
			opt := types.MenuOption{Text: getString(v, "text")}
			if req := getTable(v, "requires"); req != nil {
				opt.Requires = compileConditions(req)
			}
			options = append(options, opt)
		}
	}
	return options
}

func compileItem(raw rawItem) types.ItemDef {
	tbl := raw.table
	item := types.ItemDef{
		ID:          raw.id,
		Name:        getString(tbl, "name"),
		Kind:        getString(tbl, "kind"),
		Description: getString(tbl, "description"),
		Text:        getString(tbl, "text"),
	}
	// Resources and consumables are droppable unless said otherwise; key
	// items default to non-droppable.
	item.Droppable = getBool(tbl, "droppable", item.Kind != types.KindKey)
	return item
}

func compileNPC(raw rawNPC) (types.NPCDef, []string) {
	tbl := raw.table
	npc := types.NPCDef{
		ID:          raw.id,
		Name:        getString(tbl, "name"),
		Room:        getString(tbl, "room"),
		Hidden:      getBool(tbl, "hidden", false),
		Description: getString(tbl, "description"),
		Quest:       getString(tbl, "quest"),
	}

	// greetings = { { requires = {...}, text = "...", menu = "...",
	// effects = {...} }, ... } — first passing entry wins, so later stages
	// come first.
	if greetings := getTable(tbl, "greetings"); greetings != nil {
		for i := 1; i <= greetings.MaxN(); i++ {
			if g, ok := greetings.RawGetInt(i).(*lua.LTable); ok {
				greeting := types.Greeting{
					Text: getString(g, "text"),
					Menu: getString(g, "menu"),
				}
				if req := getTable(g, "requires"); req != nil {
					greeting.Requires = compileConditions(req)
				}
				if eff := getTable(g, "effects"); eff != nil {
					greeting.Effects = compileEffects(eff)
				}
				npc.Greetings = append(npc.Greetings, greeting)
			}
		}
	}

	return npc, ruleMarkers(tbl)
}

func compileQuest(raw rawQuest) types.QuestDef {
	tbl := raw.table
	return types.QuestDef{
		ID:       raw.id,
		Name:     getString(tbl, "name"),
		Giver:    getString(tbl, "giver"),
		Stages:   getStrings(tbl, "stages"),
		Requires: getStrings(tbl, "requires"),
		Hint:     getString(tbl, "hint"),
	}
}

func compileEnding(raw rawEnding) types.EndingDef {
	tbl := raw.table
	e := types.EndingDef{
		ID:         raw.id,
		Title:      getString(tbl, "title"),
		Kind:       getString(tbl, "kind"),
		MinQuests:  getInt(tbl, "min_quests"),
		Priority:   getInt(tbl, "priority"),
		Paragraphs: getStrings(tbl, "paragraphs"),
	}
	if req := getTable(tbl, "requires"); req != nil {
		e.Requires = compileConditions(req)
	}
	return e
}

func compileRule(raw rawRule) types.RuleDef {
	rule := types.RuleDef{
		ID:          raw.id,
		Scope:       raw.scope,
		When:        compileMatchCriteria(raw.when),
		Effects:     compileEffects(raw.then),
		SourceOrder: raw.order,
		Priority:    getInt(raw.when, "priority"),
	}
	if raw.conditions != nil {
		rule.Conditions = compileConditions(raw.conditions)
	}
	return rule
}

func compileMatchCriteria(tbl *lua.LTable) types.MatchCriteria {
	return types.MatchCriteria{
		Verb:   getString(tbl, "verb"),
		Object: getString(tbl, "object"),
		Target: getString(tbl, "target"),
		Phrase: getString(tbl, "phrase"),
	}
}

func compileConditions(tbl *lua.LTable) []types.Condition {
	var conditions []types.Condition
	tbl.ForEach(func(k, v lua.LValue) {
		if _, ok := k.(lua.LNumber); !ok {
			return
		}
		if condTbl, ok := v.(*lua.LTable); ok {
			conditions = append(conditions, compileCondition(condTbl))
		}
	})
	return conditions
}

func compileCondition(tbl *lua.LTable) types.Condition {
	condType := getString(tbl, "type")

	if condType == "not" {
		if innerTbl := getTable(tbl, "inner"); innerTbl != nil {
			inner := compileCondition(innerTbl)
			return types.Condition{Type: "not", Negate: true, Inner: &inner}
		}
	}

	params := map[string]any{}
	tbl.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok {
			if key := string(ks); key != "type" {
				params[key] = toGoValue(v)
			}
		}
	})
	return types.Condition{Type: condType, Params: params}
}

func compileEffects(tbl *lua.LTable) []types.Effect {
	var effects []types.Effect
	tbl.ForEach(func(k, v lua.LValue) {
		if _, ok := k.(lua.LNumber); !ok {
			return
		}
		if effTbl, ok := v.(*lua.LTable); ok {
			effects = append(effects, compileEffect(effTbl))
		}
	})
	return effects
}

func compileEffect(tbl *lua.LTable) types.Effect {
	effType := getString(tbl, "type")
	params := map[string]any{}
	tbl.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok {
			if key := string(ks); key != "type" {
				params[key] = toGoValue(v)
			}
		}
	})
	return types.Effect{Type: effType, Params: params}
}

func compileHandler(raw rawHandler) types.EventHandler {
	handler := types.EventHandler{EventType: raw.eventType}
	if condTbl := getTable(raw.table, "conditions"); condTbl != nil {
		handler.Conditions = compileConditions(condTbl)
	}
	if effTbl := getTable(raw.table, "effects"); effTbl != nil {
		handler.Effects = compileEffects(effTbl)
	}
	return handler
}

// ruleMarkers collects __rule_id markers from a definition's rules field.
func ruleMarkers(tbl *lua.LTable) []string {
	var ids []string
	if rulesTable := getTable(tbl, "rules"); rulesTable != nil {
		rulesTable.ForEach(func(_, v lua.LValue) {
			if marker, ok := v.(*lua.LTable); ok {
				if id := getString(marker, "__rule_id"); id != "" {
					ids = append(ids, id)
				}
			}
		})
	}
	return ids
}

// markScopedRules updates raw rules in the collector to set their scope.
func markScopedRules(coll *collector, ruleIDs []string, scope string) {
	idSet := map[string]bool{}
	for _, id := range ruleIDs {
		idSet[id] = true
	}
	for i := range coll.rules {
		if idSet[coll.rules[i].id] {
			coll.rules[i].scope = scope
		}
	}
}
