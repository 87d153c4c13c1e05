package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers all Lua constructors and helpers as globals.
func registerAPI(L *lua.LState, coll *collector) {
	registerConstructors(L, coll)
	registerConditionHelpers(L)
	registerEffectHelpers(L)
}

// curried registers a two-step constructor: Name "id" { ... }.
func curried(L *lua.LState, name string, accept func(id string, tbl *lua.LTable)) {
	L.SetGlobal(name, L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			accept(id, L.CheckTable(1))
			return 0
		}))
		return 1
	}))
}

func registerConstructors(L *lua.LState, coll *collector) {
	// Game { title = "...", quota = 20, ... }
	L.SetGlobal("Game", L.NewFunction(func(L *lua.LState) int {
		coll.game = L.CheckTable(1)
		return 0
	}))

	curried(L, "Room", func(id string, tbl *lua.LTable) {
		coll.rooms = append(coll.rooms, rawRoom{id: id, table: tbl})
	})
	curried(L, "Item", func(id string, tbl *lua.LTable) {
		coll.items = append(coll.items, rawItem{id: id, table: tbl})
	})
	curried(L, "NPC", func(id string, tbl *lua.LTable) {
		coll.npcs = append(coll.npcs, rawNPC{id: id, table: tbl})
	})
	curried(L, "Quest", func(id string, tbl *lua.LTable) {
		coll.quests = append(coll.quests, rawQuest{id: id, table: tbl})
	})
	curried(L, "Ending", func(id string, tbl *lua.LTable) {
		coll.endings = append(coll.endings, rawEnding{id: id, table: tbl})
	})

	// Rule(id, when, [conditions,] then). Returns a marker table so rooms
	// and NPCs can claim the rule into their scope.
	L.SetGlobal("Rule", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		when := L.CheckTable(2)

		var conditions, thenTbl *lua.LTable
		if L.Get(4) != lua.LNil {
			if t, ok := L.Get(3).(*lua.LTable); ok {
				conditions = t
			}
			thenTbl = L.CheckTable(4)
		} else {
			thenTbl = L.CheckTable(3)
		}

		coll.rules = append(coll.rules, rawRule{
			id:         id,
			when:       when,
			conditions: conditions,
			then:       thenTbl,
			scope:      "global",
			order:      coll.nextSourceOrder(),
		})

		marker := L.NewTable()
		marker.RawSetString("__rule_id", lua.LString(id))
		L.Push(marker)
		return 1
	}))

	// On("event_type", { conditions = {...}, effects = {...} })
	L.SetGlobal("On", L.NewFunction(func(L *lua.LState) int {
		eventType := L.CheckString(1)
		tbl := L.CheckTable(2)
		coll.handlers = append(coll.handlers, rawHandler{eventType: eventType, table: tbl})
		return 0
	}))

	// When{} and Then{} are pass-throughs that make rule sites readable.
	passthrough := L.NewFunction(func(L *lua.LState) int {
		L.Push(L.CheckTable(1))
		return 1
	})
	L.SetGlobal("When", passthrough)
	L.SetGlobal("Then", passthrough)
}

// typed creates a table with a type field, the common shape of conditions
// and effects.
func typed(L *lua.LState, typ string) *lua.LTable {
	tbl := L.NewTable()
	tbl.RawSetString("type", lua.LString(typ))
	return tbl
}

func registerConditionHelpers(L *lua.LState) {
	// HasItem("id" [, count])
	L.SetGlobal("HasItem", L.NewFunction(func(L *lua.LState) int {
		tbl := typed(L, "has_item")
		tbl.RawSetString("item", lua.LString(L.CheckString(1)))
		if L.Get(2) != lua.LNil {
			tbl.RawSetString("count", L.CheckNumber(2))
		}
		L.Push(tbl)
		return 1
	}))

	L.SetGlobal("FlagSet", L.NewFunction(func(L *lua.LState) int {
		tbl := typed(L, "flag_set")
		tbl.RawSetString("flag", lua.LString(L.CheckString(1)))
		L.Push(tbl)
		return 1
	}))

	L.SetGlobal("FlagNot", L.NewFunction(func(L *lua.LState) int {
		tbl := typed(L, "flag_not")
		tbl.RawSetString("flag", lua.LString(L.CheckString(1)))
		L.Push(tbl)
		return 1
	}))

	L.SetGlobal("MinshinGte", L.NewFunction(func(L *lua.LState) int {
		tbl := typed(L, "minshin_gte")
		tbl.RawSetString("amount", L.CheckNumber(1))
		L.Push(tbl)
		return 1
	}))

	L.SetGlobal("QuotaMet", L.NewFunction(func(L *lua.LState) int {
		L.Push(typed(L, "quota_met"))
		return 1
	}))

	L.SetGlobal("DayGte", L.NewFunction(func(L *lua.LState) int {
		tbl := typed(L, "day_gte")
		tbl.RawSetString("day", L.CheckNumber(1))
		L.Push(tbl)
		return 1
	}))

	L.SetGlobal("DayLt", L.NewFunction(func(L *lua.LState) int {
		tbl := typed(L, "day_lt")
		tbl.RawSetString("day", L.CheckNumber(1))
		L.Push(tbl)
		return 1
	}))

	// HourBetween(from, to) — half-open [from, to), wraps past midnight.
	L.SetGlobal("HourBetween", L.NewFunction(func(L *lua.LState) int {
		tbl := typed(L, "hour_between")
		tbl.RawSetString("from", L.CheckNumber(1))
		tbl.RawSetString("to", L.CheckNumber(2))
		L.Push(tbl)
		return 1
	}))

	// DuringMaintenance() — inside the [facility_close, facility_open)
	// window declared in Game{}.
	L.SetGlobal("DuringMaintenance", L.NewFunction(func(L *lua.LState) int {
		L.Push(typed(L, "during_maintenance"))
		return 1
	}))

	// DonationGoalMet() — total memorial donations reached Game.donation_goal.
	L.SetGlobal("DonationGoalMet", L.NewFunction(func(L *lua.LState) int {
		L.Push(typed(L, "donation_goal_met"))
		return 1
	}))

	L.SetGlobal("StageIs", L.NewFunction(func(L *lua.LState) int {
		tbl := typed(L, "stage_is")
		tbl.RawSetString("quest", lua.LString(L.CheckString(1)))
		tbl.RawSetString("stage", lua.LString(L.CheckString(2)))
		L.Push(tbl)
		return 1
	}))

	L.SetGlobal("StageAtLeast", L.NewFunction(func(L *lua.LState) int {
		tbl := typed(L, "stage_at_least")
		tbl.RawSetString("quest", lua.LString(L.CheckString(1)))
		tbl.RawSetString("stage", lua.LString(L.CheckString(2)))
		L.Push(tbl)
		return 1
	}))

	L.SetGlobal("QuestComplete", L.NewFunction(func(L *lua.LState) int {
		tbl := typed(L, "quest_complete")
		tbl.RawSetString("quest", lua.LString(L.CheckString(1)))
		L.Push(tbl)
		return 1
	}))

	L.SetGlobal("CounterGte", L.NewFunction(func(L *lua.LState) int {
		tbl := typed(L, "counter_gte")
		tbl.RawSetString("counter", lua.LString(L.CheckString(1)))
		tbl.RawSetString("value", L.CheckNumber(2))
		L.Push(tbl)
		return 1
	}))

	L.SetGlobal("CounterLt", L.NewFunction(func(L *lua.LState) int {
		tbl := typed(L, "counter_lt")
		tbl.RawSetString("counter", lua.LString(L.CheckString(1)))
		tbl.RawSetString("value", L.CheckNumber(2))
		L.Push(tbl)
		return 1
	}))

	L.SetGlobal("InRoom", L.NewFunction(func(L *lua.LState) int {
		tbl := typed(L, "in_room")
		tbl.RawSetString("room", lua.LString(L.CheckString(1)))
		L.Push(tbl)
		return 1
	}))

	L.SetGlobal("ContainerOpen", L.NewFunction(func(L *lua.LState) int {
		tbl := typed(L, "container_open")
		tbl.RawSetString("room", lua.LString(L.CheckString(1)))
		tbl.RawSetString("container", lua.LString(L.CheckString(2)))
		L.Push(tbl)
		return 1
	}))

	L.SetGlobal("Not", L.NewFunction(func(L *lua.LState) int {
		tbl := typed(L, "not")
		tbl.RawSetString("inner", L.CheckTable(1))
		L.Push(tbl)
		return 1
	}))
}

func registerEffectHelpers(L *lua.LState) {
	L.SetGlobal("Say", L.NewFunction(func(L *lua.LState) int {
		tbl := typed(L, "say")
		tbl.RawSetString("text", lua.LString(L.CheckString(1)))
		L.Push(tbl)
		return 1
	}))

	// GiveItem("id" [, count]) mints items into the bag.
	L.SetGlobal("GiveItem", L.NewFunction(func(L *lua.LState) int {
		tbl := typed(L, "give_item")
		tbl.RawSetString("item", lua.LString(L.CheckString(1)))
		if L.Get(2) != lua.LNil {
			tbl.RawSetString("count", L.CheckNumber(2))
		}
		L.Push(tbl)
		return 1
	}))

	// RemoveItem("id" [, count]) destroys carried items.
	L.SetGlobal("RemoveItem", L.NewFunction(func(L *lua.LState) int {
		tbl := typed(L, "remove_item")
		tbl.RawSetString("item", lua.LString(L.CheckString(1)))
		if L.Get(2) != lua.LNil {
			tbl.RawSetString("count", L.CheckNumber(2))
		}
		L.Push(tbl)
		return 1
	}))

	L.SetGlobal("AddMinshin", L.NewFunction(func(L *lua.LState) int {
		tbl := typed(L, "add_minshin")
		tbl.RawSetString("amount", L.CheckNumber(1))
		L.Push(tbl)
		return 1
	}))

	L.SetGlobal("AddQuota", L.NewFunction(func(L *lua.LState) int {
		tbl := typed(L, "add_quota")
		tbl.RawSetString("amount", L.CheckNumber(1))
		L.Push(tbl)
		return 1
	}))

	L.SetGlobal("SetFlag", L.NewFunction(func(L *lua.LState) int {
		tbl := typed(L, "set_flag")
		tbl.RawSetString("flag", lua.LString(L.CheckString(1)))
		tbl.RawSetString("value", lua.LBool(L.CheckBool(2)))
		L.Push(tbl)
		return 1
	}))

	L.SetGlobal("IncCounter", L.NewFunction(func(L *lua.LState) int {
		tbl := typed(L, "inc_counter")
		tbl.RawSetString("counter", lua.LString(L.CheckString(1)))
		tbl.RawSetString("amount", L.CheckNumber(2))
		L.Push(tbl)
		return 1
	}))

	L.SetGlobal("SetCounter", L.NewFunction(func(L *lua.LState) int {
		tbl := typed(L, "set_counter")
		tbl.RawSetString("counter", lua.LString(L.CheckString(1)))
		tbl.RawSetString("value", L.CheckNumber(2))
		L.Push(tbl)
		return 1
	}))

	L.SetGlobal("SetStage", L.NewFunction(func(L *lua.LState) int {
		tbl := typed(L, "set_stage")
		tbl.RawSetString("quest", lua.LString(L.CheckString(1)))
		tbl.RawSetString("stage", lua.LString(L.CheckString(2)))
		L.Push(tbl)
		return 1
	}))

	L.SetGlobal("CompleteQuest", L.NewFunction(func(L *lua.LState) int {
		tbl := typed(L, "complete_quest")
		tbl.RawSetString("quest", lua.LString(L.CheckString(1)))
		L.Push(tbl)
		return 1
	}))

	L.SetGlobal("MovePlayer", L.NewFunction(func(L *lua.LState) int {
		tbl := typed(L, "move_player")
		tbl.RawSetString("room", lua.LString(L.CheckString(1)))
		L.Push(tbl)
		return 1
	}))

	L.SetGlobal("MoveNPC", L.NewFunction(func(L *lua.LState) int {
		tbl := typed(L, "move_npc")
		tbl.RawSetString("npc", lua.LString(L.CheckString(1)))
		tbl.RawSetString("room", lua.LString(L.CheckString(2)))
		L.Push(tbl)
		return 1
	}))

	L.SetGlobal("AdvanceTime", L.NewFunction(func(L *lua.LState) int {
		tbl := typed(L, "advance_time")
		tbl.RawSetString("hours", L.CheckNumber(1))
		L.Push(tbl)
		return 1
	}))

	L.SetGlobal("SetMenu", L.NewFunction(func(L *lua.LState) int {
		tbl := typed(L, "set_menu")
		tbl.RawSetString("menu", lua.LString(L.CheckString(1)))
		L.Push(tbl)
		return 1
	}))

	L.SetGlobal("OpenContainer", L.NewFunction(func(L *lua.LState) int {
		tbl := typed(L, "open_container")
		tbl.RawSetString("container", lua.LString(L.CheckString(1)))
		L.Push(tbl)
		return 1
	}))

	L.SetGlobal("SetMaxInventory", L.NewFunction(func(L *lua.LState) int {
		tbl := typed(L, "set_max_inventory")
		tbl.RawSetString("slots", L.CheckNumber(1))
		L.Push(tbl)
		return 1
	}))

	L.SetGlobal("EmitEvent", L.NewFunction(func(L *lua.LState) int {
		tbl := typed(L, "emit_event")
		tbl.RawSetString("event", lua.LString(L.CheckString(1)))
		L.Push(tbl)
		return 1
	}))

	L.SetGlobal("Stop", L.NewFunction(func(L *lua.LState) int {
		L.Push(typed(L, "stop"))
		return 1
	}))

	// Computed actions the engine expands with the RNG and the player's
	// holdings before applying.
	for name, typ := range map[string]string{
		"Mine":              "mine",
		"DepositAmbrosium":  "deposit_ambrosium",
		"DepositMaterials":  "deposit_materials",
		"Prophecy":          "prophecy",
		"BeginDonation":     "begin_donation",
	} {
		typ := typ
		L.SetGlobal(name, L.NewFunction(func(L *lua.LState) int {
			L.Push(typed(L, typ))
			return 1
		}))
	}
}
