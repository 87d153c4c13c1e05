package dialogue

import (
	"testing"

	"github.com/yaboy-beast/Mining-Colony-4b/engine/state"
	"github.com/yaboy-beast/Mining-Colony-4b/types"
)

func testDefs() *state.Defs {
	return &state.Defs{
		Game: types.GameDef{Start: "corridor"},
		Rooms: map[string]types.RoomDef{
			"corridor": {ID: "corridor", Name: "Residential Corridor"},
		},
		Items: map[string]types.ItemDef{
			"lucky_coin": {ID: "lucky_coin", Name: "Lucky Coin", Kind: types.KindKey},
		},
		NPCs: map[string]types.NPCDef{
			"cecil": {
				ID:   "cecil",
				Name: "Greyman Cecil",
				Room: "corridor",
				// Later stages first; the first passing greeting wins.
				Greetings: []types.Greeting{
					{
						Requires: []types.Condition{{Type: "quest_complete", Params: map[string]any{"quest": "cecil"}}},
						Text:     "\"Still got my coin close, friend. Thank you.\"",
					},
					{
						Requires: []types.Condition{{Type: "stage_is", Params: map[string]any{"quest": "cecil", "stage": "asked"}}},
						Text:     "\"Any sign of my lucky coin?\"",
						Menu:     "cecil_talk",
					},
					{
						Text: "\"Oh! A new face. I don't suppose you've seen a small brass coin?\"",
						Menu: "cecil_talk",
						Effects: []types.Effect{
							{Type: "set_stage", Params: map[string]any{"quest": "cecil", "stage": "asked"}},
						},
					},
				},
			},
		},
		Quests: map[string]types.QuestDef{
			"cecil": {ID: "cecil", Stages: []string{"not_started", "asked", "completed"}},
		},
	}
}

func TestGreet_FirstPassingWins(t *testing.T) {
	defs := testDefs()
	s := state.NewState(defs)

	g, ok := Greet("cecil", s, defs)
	if !ok {
		t.Fatal("expected a greeting")
	}
	if g.Text != "\"Oh! A new face. I don't suppose you've seen a small brass coin?\"" {
		t.Errorf("got %q", g.Text)
	}
	if len(g.Effects) != 1 || g.Effects[0].Type != "set_stage" {
		t.Errorf("expected the intro greeting to carry its stage effect, got %v", g.Effects)
	}
}

func TestGreet_StageGated(t *testing.T) {
	defs := testDefs()
	s := state.NewState(defs)
	s.Quests["cecil"] = "asked"

	g, ok := Greet("cecil", s, defs)
	if !ok {
		t.Fatal("expected a greeting")
	}
	if g.Text != "\"Any sign of my lucky coin?\"" {
		t.Errorf("got %q", g.Text)
	}
	if g.Menu != "cecil_talk" {
		t.Errorf("expected the talk menu, got %q", g.Menu)
	}
}

func TestGreet_CompletedQuest(t *testing.T) {
	defs := testDefs()
	s := state.NewState(defs)
	s.Quests["cecil"] = "completed"

	g, ok := Greet("cecil", s, defs)
	if !ok {
		t.Fatal("expected a greeting")
	}
	if g.Text != "\"Still got my coin close, friend. Thank you.\"" {
		t.Errorf("got %q", g.Text)
	}
	if g.Menu != "" {
		t.Errorf("completed greeting should not open a menu, got %q", g.Menu)
	}
}

func TestGreet_UnknownNPC(t *testing.T) {
	defs := testDefs()
	s := state.NewState(defs)

	if _, ok := Greet("nobody", s, defs); ok {
		t.Error("expected no greeting for unknown NPC")
	}
}

func TestGreet_NoPassingGreeting(t *testing.T) {
	defs := testDefs()
	defs.NPCs["silent"] = types.NPCDef{
		ID:   "silent",
		Name: "Silent Worker",
		Room: "corridor",
		Greetings: []types.Greeting{
			{
				Requires: []types.Condition{{Type: "flag_set", Params: map[string]any{"flag": "never"}}},
				Text:     "...",
			},
		},
	}
	s := state.NewState(defs)

	if _, ok := Greet("silent", s, defs); ok {
		t.Error("expected no greeting when every greeting is gated off")
	}
}
