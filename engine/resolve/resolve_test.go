package resolve

import (
	"testing"

	"github.com/yaboy-beast/Mining-Colony-4b/engine/state"
	"github.com/yaboy-beast/Mining-Colony-4b/types"
)

func testDefs() *state.Defs {
	return &state.Defs{
		Game: types.GameDef{Start: "quarters", MaxInventory: 10},
		Rooms: map[string]types.RoomDef{
			"quarters": {
				ID:   "quarters",
				Name: "Your Quarters",
				Containers: []types.ContainerDef{
					{ID: "cupboard", Name: "cupboard", Items: []string{"id_card", "mining_gun"}},
				},
			},
			"plaza": {
				ID:    "plaza",
				Name:  "Central Plaza",
				Items: []string{"lucky_coin"},
				NPCs:  []string{"ephsus"},
			},
		},
		Items: map[string]types.ItemDef{
			"id_card":    {ID: "id_card", Name: "ID Card", Kind: types.KindKey},
			"mining_gun": {ID: "mining_gun", Name: "Mining Gun", Kind: types.KindKey},
			"lucky_coin": {ID: "lucky_coin", Name: "Lucky Coin", Kind: types.KindKey},
			"soil":       {ID: "soil", Name: "Thebian Ground Soil", Kind: types.KindResource},
		},
		NPCs: map[string]types.NPCDef{
			"ephsus": {ID: "ephsus", Name: "Science Officer Ephsus", Room: "plaza"},
		},
	}
}

func TestName_CarriedItemWinsOverFloor(t *testing.T) {
	defs := testDefs()
	s := state.NewState(defs)
	s.Player.Location = "plaza"
	state.AddItem(s, "soil", 2)
	state.AddToPool(s, state.RoomKey("plaza"), "soil", 1)

	m, err := Name(s, defs, "soil")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Kind != KindItem || m.ID != "soil" || m.Where != "inventory" {
		t.Errorf("got %+v, want inventory soil", m)
	}
}

func TestName_FloorItem(t *testing.T) {
	defs := testDefs()
	s := state.NewState(defs)
	s.Player.Location = "plaza"

	m, err := Name(s, defs, "lucky coin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.ID != "lucky_coin" || m.Where != state.RoomKey("plaza") {
		t.Errorf("got %+v, want lucky_coin on the floor", m)
	}
}

func TestName_ClosedContainerHidesItems(t *testing.T) {
	defs := testDefs()
	s := state.NewState(defs)

	if _, err := Name(s, defs, "id card"); err == nil {
		t.Fatal("expected not-found while the cupboard is closed")
	}
	s.Open["quarters/cupboard"] = true
	m, err := Name(s, defs, "id card")
	if err != nil {
		t.Fatalf("unexpected error after opening: %v", err)
	}
	if m.ID != "id_card" || m.Where != state.ContainerKey("quarters", "cupboard") {
		t.Errorf("got %+v, want id_card in the cupboard", m)
	}
}

func TestName_NPC(t *testing.T) {
	defs := testDefs()
	s := state.NewState(defs)
	s.Player.Location = "plaza"

	m, err := Name(s, defs, "ephsus")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Kind != KindNPC || m.ID != "ephsus" {
		t.Errorf("got %+v, want the science officer", m)
	}
}

func TestName_PartialWordMatch(t *testing.T) {
	defs := testDefs()
	s := state.NewState(defs)
	s.Player.Location = "plaza"

	m, err := Name(s, defs, "coin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.ID != "lucky_coin" {
		t.Errorf("got %q, want lucky_coin", m.ID)
	}
}

func TestName_UnderscoreNormalization(t *testing.T) {
	defs := testDefs()
	s := state.NewState(defs)
	state.AddItem(s, "mining_gun", 1)

	m, err := Name(s, defs, "mining gun")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.ID != "mining_gun" {
		t.Errorf("got %q, want mining_gun", m.ID)
	}
}

func TestName_NotFoundInOtherRoom(t *testing.T) {
	defs := testDefs()
	s := state.NewState(defs)
	// Player is in quarters; the coin is in the plaza.

	_, err := Name(s, defs, "lucky coin")
	if err == nil {
		t.Fatal("expected not-found for item in another room")
	}
	if _, ok := err.(*NotFoundError); !ok {
		t.Errorf("expected NotFoundError, got %T: %v", err, err)
	}
}

func TestName_AmbiguityWithinTier(t *testing.T) {
	defs := testDefs()
	defs.Items["ration_card"] = types.ItemDef{ID: "ration_card", Name: "Ration Card", Kind: types.KindKey}
	s := state.NewState(defs)
	state.AddItem(s, "id_card", 1)
	state.AddItem(s, "ration_card", 1)

	_, err := Name(s, defs, "card")
	if err == nil {
		t.Fatal("expected ambiguity error")
	}
	ae, ok := err.(*AmbiguityError)
	if !ok {
		t.Fatalf("expected AmbiguityError, got %T: %v", err, err)
	}
	if len(ae.Candidates) != 2 {
		t.Errorf("expected 2 candidates, got %v", ae.Candidates)
	}
}

func TestCarriedItem_IgnoresRoom(t *testing.T) {
	defs := testDefs()
	s := state.NewState(defs)
	s.Player.Location = "plaza"

	// The coin is on the floor here, but drop/offer only reach into the bag.
	_, err := CarriedItem(s, defs, "lucky coin")
	if err == nil {
		t.Fatal("expected not-found for item not carried")
	}
	state.AddItem(s, "lucky_coin", 1)
	m, err := CarriedItem(s, defs, "lucky coin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Where != "inventory" {
		t.Errorf("got %+v, want inventory match", m)
	}
}
