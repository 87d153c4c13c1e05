package loader

import (
	"testing"

	lua "github.com/yuin/gopher-lua"
)

// newTestVM creates a sandboxed Lua VM with the API registered and a fresh collector.
func newTestVM() (*lua.LState, *collector) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibs(L)
	sandbox(L)
	coll := &collector{}
	registerAPI(L, coll)
	return L, coll
}

func TestCompileGame(t *testing.T) {
	L, _ := newTestVM()
	defer L.Close()

	if err := L.DoString(`
		return {
			title = "Mining Colony 4B",
			version = "1.0",
			start = "your_quarters",
			intro = "You wake to the shift klaxon.",
			quota = 20,
			period_days = 3,
			day_hours = 20,
			start_hour = 7,
			move_cost = 0.5,
			start_minshin = 100,
			max_inventory = 10,
			max_stack = 10,
			donation_goal = 200,
			donation_min = 10,
			crystal_item = "ambrosium_crystal",
			cluster_item = "ambrosium_cluster",
			cluster_value = 5,
			post_quota_bonus = 250,
			prophecy_cost = 50,
			skeleton_after = 40,
			skeleton_chance = 0.5,
			skeleton_flag = "found_skeleton",
			loot = {
				{ item = "ground_soil", weight = 60 },
				{ item = "ambrosium_crystal", weight = 20 },
			},
			material_prices = { ground_soil = 10, matterstone_ore = 100 },
		}
	`); err != nil {
		t.Fatal(err)
	}

	game := compileGame(L.CheckTable(-1))

	if game.Title != "Mining Colony 4B" {
		t.Errorf("Title = %q", game.Title)
	}
	if game.Quota != 20 || game.PeriodDays != 3 || game.DayHours != 20 {
		t.Errorf("clock constants = %d/%d/%g", game.Quota, game.PeriodDays, game.DayHours)
	}
	if game.MoveCost != 0.5 {
		t.Errorf("MoveCost = %g", game.MoveCost)
	}
	if game.ClusterValue != 5 || game.PostQuotaBonus != 250 {
		t.Errorf("economy constants = %d/%d", game.ClusterValue, game.PostQuotaBonus)
	}
	if game.SkeletonChance != 0.5 {
		t.Errorf("SkeletonChance = %g", game.SkeletonChance)
	}
	if len(game.Loot) != 2 || game.Loot[0].Item != "ground_soil" || game.Loot[0].Weight != 60 {
		t.Errorf("Loot = %+v", game.Loot)
	}
	if game.MaterialPrices["matterstone_ore"] != 100 {
		t.Errorf("MaterialPrices = %v", game.MaterialPrices)
	}
}

func TestCompileRoom_Full(t *testing.T) {
	L, coll := newTestVM()
	defer L.Close()

	if err := L.DoString(`
		local r = Rule("pond_donate",
			When { verb = "donate" },
			Then { BeginDonation() }
		)
		Room "memorial_pond" {
			name = "Memorial Pond",
			description = "Still water under grow-lights.",
			exits = {
				{ name = "central plaza", to = "central_plaza", travel = "You ride the magnotube.", cost = 0.5 },
				{ name = "gate", to = "checkpoint", requires = { HasItem("id_card") }, denied = "The scanner flashes red." },
			},
			items = { "lucky_coin" },
			npcs = { "cecil" },
			containers = {
				{ id = "locker", name = "Dented Locker", items = { "handbook" }, key = "locker_key" },
			},
			extras = { "donate", { text = "offer lucky coin", requires = { HasItem("lucky_coin") } } },
			menus = {
				terminal = {
					parent = "",
					prompt = "The terminal glows.",
					options = { "check weekly quota", "check news" },
				},
			},
			fallbacks = { mine = "Nothing to mine here." },
			rules = { r },
		}
	`); err != nil {
		t.Fatal(err)
	}

	room, scopedIDs := compileRoom(coll.rooms[0])

	if room.ID != "memorial_pond" || room.Name != "Memorial Pond" {
		t.Errorf("room = %q/%q", room.ID, room.Name)
	}
	if len(room.Exits) != 2 {
		t.Fatalf("exits = %d", len(room.Exits))
	}
	if room.Exits[0].To != "central_plaza" || room.Exits[0].Cost != 0.5 {
		t.Errorf("exit[0] = %+v", room.Exits[0])
	}
	if len(room.Exits[1].Requires) != 1 || room.Exits[1].Denied != "The scanner flashes red." {
		t.Errorf("exit[1] = %+v", room.Exits[1])
	}
	if len(room.Items) != 1 || room.Items[0] != "lucky_coin" {
		t.Errorf("items = %v", room.Items)
	}
	if len(room.Containers) != 1 || room.Containers[0].Key != "locker_key" {
		t.Errorf("containers = %+v", room.Containers)
	}
	if len(room.Extras) != 2 || room.Extras[0].Text != "donate" {
		t.Errorf("extras = %+v", room.Extras)
	}
	if len(room.Extras[1].Requires) != 1 {
		t.Errorf("conditional extra = %+v", room.Extras[1])
	}
	menu, ok := room.Menus["terminal"]
	if !ok || len(menu.Options) != 2 || menu.Prompt != "The terminal glows." {
		t.Errorf("menus = %+v", room.Menus)
	}
	if room.Fallbacks["mine"] != "Nothing to mine here." {
		t.Errorf("fallbacks = %v", room.Fallbacks)
	}
	if len(scopedIDs) != 1 || scopedIDs[0] != "pond_donate" {
		t.Errorf("scopedIDs = %v", scopedIDs)
	}
}

func TestCompileItem_DroppableDefaults(t *testing.T) {
	L, coll := newTestVM()
	defer L.Close()

	if err := L.DoString(`
		Item "id_card" { name = "ID Card", kind = "key" }
		Item "lucky_coin" { name = "Lucky Coin", kind = "key", droppable = true }
		Item "ground_soil" { name = "Thebian Ground Soil", kind = "resource" }
	`); err != nil {
		t.Fatal(err)
	}

	card := compileItem(coll.items[0])
	if card.Droppable {
		t.Error("key items should default to non-droppable")
	}
	coin := compileItem(coll.items[1])
	if !coin.Droppable {
		t.Error("explicit droppable = true ignored")
	}
	soil := compileItem(coll.items[2])
	if !soil.Droppable {
		t.Error("resources should default to droppable")
	}
}

func TestCompileNPC_Greetings(t *testing.T) {
	L, coll := newTestVM()
	defer L.Close()

	if err := L.DoString(`
		NPC "cecil" {
			name = "Greyman Cecil",
			room = "residential_corridor",
			quest = "cecil",
			greetings = {
				{
					requires = { StageIs("cecil", "searching") },
					text = "Found my coin yet?",
				},
				{
					text = "I dropped my lucky coin somewhere.",
					menu = "cecil_talk",
					effects = { SetStage("cecil", "searching") },
				},
			},
		}
	`); err != nil {
		t.Fatal(err)
	}

	npc, _ := compileNPC(coll.npcs[0])

	if npc.Name != "Greyman Cecil" || npc.Room != "residential_corridor" {
		t.Errorf("npc = %+v", npc)
	}
	if npc.Hidden {
		t.Error("hidden should default to false")
	}
	if len(npc.Greetings) != 2 {
		t.Fatalf("greetings = %d", len(npc.Greetings))
	}
	if len(npc.Greetings[0].Requires) != 1 || npc.Greetings[0].Requires[0].Type != "stage_is" {
		t.Errorf("greeting[0] = %+v", npc.Greetings[0])
	}
	if npc.Greetings[1].Menu != "cecil_talk" || len(npc.Greetings[1].Effects) != 1 {
		t.Errorf("greeting[1] = %+v", npc.Greetings[1])
	}
}

func TestCompileQuestAndEnding(t *testing.T) {
	L, coll := newTestVM()
	defer L.Close()

	if err := L.DoString(`
		Quest "weatherbee" {
			name = "Spirits at the Gate",
			giver = "weatherbee",
			stages = { "not_started", "read_notice", "congratulated", "completed" },
			requires = { "creedal" },
			hint = "Good news waits on the bulletin board.",
		}
		Ending "co_foreman" {
			title = "Co-Foreman of Colony 4B",
			kind = "special",
			priority = 5,
			requires = { QuestComplete("weatherbee") },
			paragraphs = { "First paragraph.", "Second paragraph." },
		}
	`); err != nil {
		t.Fatal(err)
	}

	quest := compileQuest(coll.quests[0])
	if quest.Giver != "weatherbee" || len(quest.Stages) != 4 {
		t.Errorf("quest = %+v", quest)
	}
	if len(quest.Requires) != 1 || quest.Requires[0] != "creedal" {
		t.Errorf("requires = %v", quest.Requires)
	}

	e := compileEnding(coll.endings[0])
	if e.Kind != "special" || e.Priority != 5 {
		t.Errorf("ending = %+v", e)
	}
	if len(e.Requires) != 1 || len(e.Paragraphs) != 2 {
		t.Errorf("ending = %+v", e)
	}
}

func TestCompileConditions_AllTypes(t *testing.T) {
	L, _ := newTestVM()
	defer L.Close()

	tests := []struct {
		lua      string
		wantType string
		checkKey string
		wantVal  any
	}{
		{`HasItem("id_card")`, "has_item", "item", "id_card"},
		{`HasItem("ground_soil", 10)`, "has_item", "count", 10},
		{`FlagSet("heavy_beam")`, "flag_set", "flag", "heavy_beam"},
		{`FlagNot("long_summoned")`, "flag_not", "flag", "long_summoned"},
		{`MinshinGte(150)`, "minshin_gte", "amount", 150},
		{`QuotaMet()`, "quota_met", "", nil},
		{`DayGte(1)`, "day_gte", "day", 1},
		{`DayLt(3)`, "day_lt", "day", 3},
		{`HourBetween(15, 20)`, "hour_between", "from", 15},
		{`DuringMaintenance()`, "during_maintenance", "", nil},
		{`DonationGoalMet()`, "donation_goal_met", "", nil},
		{`StageIs("cecil", "searching")`, "stage_is", "stage", "searching"},
		{`StageAtLeast("weatherbee", "congratulated")`, "stage_at_least", "quest", "weatherbee"},
		{`QuestComplete("long")`, "quest_complete", "quest", "long"},
		{`CounterGte("donations_total", 200)`, "counter_gte", "value", 200},
		{`CounterLt("mine_attempts", 40)`, "counter_lt", "counter", "mine_attempts"},
		{`InRoom("refinery")`, "in_room", "room", "refinery"},
		{`ContainerOpen("your_quarters", "cupboard")`, "container_open", "container", "cupboard"},
		{`Not(FlagSet("done"))`, "not", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.lua, func(t *testing.T) {
			if err := L.DoString("return " + tt.lua); err != nil {
				t.Fatal(err)
			}
			tbl := L.CheckTable(-1)
			L.Pop(1)

			cond := compileCondition(tbl)
			if cond.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", cond.Type, tt.wantType)
			}
			if tt.wantType == "not" {
				if cond.Inner == nil || cond.Inner.Type != "flag_set" || !cond.Negate {
					t.Errorf("Not compiled to %+v", cond)
				}
			} else if tt.checkKey != "" {
				if got := cond.Params[tt.checkKey]; got != tt.wantVal {
					t.Errorf("Params[%q] = %v (%T), want %v", tt.checkKey, got, got, tt.wantVal)
				}
			}
		})
	}
}

func TestCompileEffects_AllTypes(t *testing.T) {
	L, _ := newTestVM()
	defer L.Close()

	tests := []struct {
		lua      string
		wantType string
		checkKey string
		wantVal  any
	}{
		{`Say("hello")`, "say", "text", "hello"},
		{`GiveItem("steamed_buns")`, "give_item", "item", "steamed_buns"},
		{`GiveItem("ground_soil", 3)`, "give_item", "count", 3},
		{`RemoveItem("lucky_coin")`, "remove_item", "item", "lucky_coin"},
		{`AddMinshin(-150)`, "add_minshin", "amount", -150},
		{`AddQuota(5)`, "add_quota", "amount", 5},
		{`SetFlag("heavy_beam", true)`, "set_flag", "flag", "heavy_beam"},
		{`IncCounter("soil_delivered", 1)`, "inc_counter", "counter", "soil_delivered"},
		{`SetCounter("mine_attempts", 0)`, "set_counter", "value", 0},
		{`SetStage("cecil", "searching")`, "set_stage", "quest", "cecil"},
		{`CompleteQuest("creedal")`, "complete_quest", "quest", "creedal"},
		{`MovePlayer("central_plaza")`, "move_player", "room", "central_plaza"},
		{`MoveNPC("long", "memorial_pond")`, "move_npc", "npc", "long"},
		{`AdvanceTime(0.5)`, "advance_time", "hours", 0.5},
		{`SetMenu("terminal")`, "set_menu", "menu", "terminal"},
		{`OpenContainer("cupboard")`, "open_container", "container", "cupboard"},
		{`SetMaxInventory(20)`, "set_max_inventory", "slots", 20},
		{`EmitEvent("forged_card_detected")`, "emit_event", "event", "forged_card_detected"},
		{`Stop()`, "stop", "", nil},
		{`Mine()`, "mine", "", nil},
		{`DepositAmbrosium()`, "deposit_ambrosium", "", nil},
		{`DepositMaterials()`, "deposit_materials", "", nil},
		{`Prophecy()`, "prophecy", "", nil},
		{`BeginDonation()`, "begin_donation", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.lua, func(t *testing.T) {
			if err := L.DoString("return " + tt.lua); err != nil {
				t.Fatal(err)
			}
			tbl := L.CheckTable(-1)
			L.Pop(1)

			eff := compileEffect(tbl)
			if eff.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", eff.Type, tt.wantType)
			}
			if tt.checkKey != "" {
				if got := eff.Params[tt.checkKey]; got != tt.wantVal {
					t.Errorf("Params[%q] = %v (%T), want %v", tt.checkKey, got, got, tt.wantVal)
				}
			}
		})
	}
}

func TestCompileRule_ScopeResolution(t *testing.T) {
	L, coll := newTestVM()
	defer L.Close()

	if err := L.DoString(`
		local r = Rule("scoped_rule",
			When { verb = "check" },
			Then { Say("The terminal hums.") }
		)
		Room "your_quarters" {
			name = "Your Quarters",
			description = "A bunk and a desk.",
			rules = { r },
		}
	`); err != nil {
		t.Fatal(err)
	}

	if coll.rules[0].scope != "global" {
		t.Errorf("initial scope = %q", coll.rules[0].scope)
	}

	_, scopedIDs := compileRoom(coll.rooms[0])
	markScopedRules(coll, scopedIDs, "room:your_quarters")

	rule := compileRule(coll.rules[0])
	if rule.Scope != "room:your_quarters" {
		t.Errorf("scope = %q", rule.Scope)
	}
}

func TestCompileRule_WithConditions(t *testing.T) {
	L, coll := newTestVM()
	defer L.Close()

	if err := L.DoString(`
		Rule("buy_buns",
			When { verb = "buy", object = "steamed_buns" },
			{ MinshinGte(150), FlagNot("bought_buns") },
			Then { AddMinshin(-150), GiveItem("steamed_buns"), SetFlag("bought_buns", true) }
		)
	`); err != nil {
		t.Fatal(err)
	}

	rule := compileRule(coll.rules[0])
	if len(rule.Conditions) != 2 || rule.Conditions[0].Type != "minshin_gte" {
		t.Errorf("conditions = %+v", rule.Conditions)
	}
	if len(rule.Effects) != 3 {
		t.Errorf("effects = %d", len(rule.Effects))
	}
	if rule.When.Object != "steamed_buns" {
		t.Errorf("When.Object = %q", rule.When.Object)
	}
}

func TestCompileRule_PhraseMatch(t *testing.T) {
	L, coll := newTestVM()
	defer L.Close()

	if err := L.DoString(`
		Rule("high_five",
			When { phrase = "high five" },
			Then { Say("Weatherbee meets your palm with a sharp clap.") }
		)
	`); err != nil {
		t.Fatal(err)
	}

	rule := compileRule(coll.rules[0])
	if rule.When.Phrase != "high five" {
		t.Errorf("When.Phrase = %q", rule.When.Phrase)
	}
}

func TestCompileHandler(t *testing.T) {
	L, coll := newTestVM()
	defer L.Close()

	if err := L.DoString(`
		On("donation_made", {
			conditions = { CounterGte("donations_total", 200) },
			effects = { MoveNPC("long", "memorial_pond") },
		})
	`); err != nil {
		t.Fatal(err)
	}

	handler := compileHandler(coll.handlers[0])
	if handler.EventType != "donation_made" {
		t.Errorf("EventType = %q", handler.EventType)
	}
	if len(handler.Conditions) != 1 || handler.Conditions[0].Type != "counter_gte" {
		t.Errorf("conditions = %+v", handler.Conditions)
	}
	if len(handler.Effects) != 1 || handler.Effects[0].Type != "move_npc" {
		t.Errorf("effects = %+v", handler.Effects)
	}
}

func TestSourceOrder_AutoIncrement(t *testing.T) {
	L, coll := newTestVM()
	defer L.Close()

	if err := L.DoString(`
		Rule("first", When { verb = "look" }, Then { Say("1") })
		Rule("second", When { verb = "take" }, Then { Say("2") })
		Rule("third", When { verb = "drop" }, Then { Say("3") })
	`); err != nil {
		t.Fatal(err)
	}

	for i, raw := range coll.rules {
		if raw.order != i+1 {
			t.Errorf("rule %d order = %d, want %d", i, raw.order, i+1)
		}
	}
}
