// Package resolve maps spoken names from parsed intents to item or NPC IDs.
// Lookup walks a fixed priority order so the same word always lands on the
// same thing: inventory first, then the room floor, then open containers,
// then the people standing around.
package resolve

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yaboy-beast/Mining-Colony-4b/engine/state"
	"github.com/yaboy-beast/Mining-Colony-4b/types"
)

// Entity kinds a name can resolve to.
const (
	KindItem = "item"
	KindNPC  = "npc"
)

// Match is a resolved name.
type Match struct {
	Kind string
	ID   string
	// Where is the pool the item was found in: "inventory", a room key, or
	// a container key. Empty for NPCs.
	Where string
}

// AmbiguityError indicates multiple things matched a name at the same
// priority level.
type AmbiguityError struct {
	Name       string
	Candidates []string
}

func (e *AmbiguityError) Error() string {
	return fmt.Sprintf("which %s? (%s)", e.Name, strings.Join(e.Candidates, ", "))
}

// NotFoundError indicates nothing here matched a name.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("you don't see %q here", e.Name)
}

// Name resolves a spoken name against everything reachable from the
// player's position. Earlier tiers win outright; ambiguity is only possible
// within a single tier.
func Name(s *types.State, defs *state.Defs, name string) (Match, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Match{}, &NotFoundError{Name: name}
	}
	room := s.Player.Location

	// 1. Carried items.
	if m, err, ok := pickItem(defs, name, carriedIDs(s), "inventory"); ok {
		return m, err
	}

	// 2. Items on the room floor.
	floorKey := state.RoomKey(room)
	if m, err, ok := pickItem(defs, name, state.PoolItems(s, floorKey), floorKey); ok {
		return m, err
	}

	// 3. Items in open containers here.
	if rd, ok := defs.Rooms[room]; ok {
		for _, c := range rd.Containers {
			if !state.ContainerOpen(s, room, c.ID) {
				continue
			}
			key := state.ContainerKey(room, c.ID)
			if m, err, ok := pickItem(defs, name, state.PoolItems(s, key), key); ok {
				return m, err
			}
		}
	}

	// 4. NPCs in the room.
	var npcMatches []string
	for _, id := range state.NPCsInRoom(s, defs, room) {
		if def, ok := defs.NPCs[id]; ok && matchesName(name, id, def.Name) {
			npcMatches = append(npcMatches, id)
		}
	}
	switch len(npcMatches) {
	case 1:
		return Match{Kind: KindNPC, ID: npcMatches[0]}, nil
	default:
		if len(npcMatches) > 1 {
			return Match{}, &AmbiguityError{Name: name, Candidates: displayNames(defs, npcMatches)}
		}
	}

	return Match{}, &NotFoundError{Name: name}
}

// CarriedItem resolves a name against the inventory only. Used by drop and
// offer, where reaching into the room would be wrong.
func CarriedItem(s *types.State, defs *state.Defs, name string) (Match, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if m, err, ok := pickItem(defs, name, carriedIDs(s), "inventory"); ok {
		return m, err
	}
	return Match{}, &NotFoundError{Name: name}
}

func carriedIDs(s *types.State) []string {
	var ids []string
	for id, n := range s.Player.Inventory {
		if n > 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// pickItem matches a name against a candidate ID list. The third return is
// false when nothing matched, letting the caller fall through to the next
// tier.
func pickItem(defs *state.Defs, name string, candidates []string, where string) (Match, error, bool) {
	var matches []string
	for _, id := range candidates {
		def, ok := defs.Items[id]
		if !ok {
			continue
		}
		if matchesName(name, id, def.Name) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 0:
		return Match{}, nil, false
	case 1:
		return Match{Kind: KindItem, ID: matches[0], Where: where}, nil, true
	default:
		return Match{}, &AmbiguityError{Name: name, Candidates: displayNames(defs, matches)}, true
	}
}

// matchesName checks a query against an ID and display name. Supports exact
// name match, single-word match ("coin" for "Lucky Coin"), ID match, and
// space/underscore normalization ("id card" for "id_card").
func matchesName(query, id, display string) bool {
	displayLower := strings.ToLower(display)
	if displayLower == query {
		return true
	}
	for _, word := range strings.Fields(displayLower) {
		if word == query {
			return true
		}
	}
	if id == query {
		return true
	}
	return strings.ReplaceAll(query, " ", "_") == id
}

func displayNames(defs *state.Defs, ids []string) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if def, ok := defs.Items[id]; ok {
			names = append(names, def.Name)
			continue
		}
		if def, ok := defs.NPCs[id]; ok {
			names = append(names, def.Name)
			continue
		}
		names = append(names, id)
	}
	sort.Strings(names)
	return names
}
