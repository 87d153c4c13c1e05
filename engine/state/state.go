// Package state manages the mutable game state: the player, the clock, quest
// stages, and the item pools that every item in the colony lives in. Items
// are conserved by construction — they only move between pools and the
// player's inventory, except where an effect explicitly mints or destroys
// them (mining, deposits, purchases).
package state

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yaboy-beast/Mining-Colony-4b/types"
)

// Defs holds the immutable game definitions loaded from Lua.
type Defs struct {
	Game        types.GameDef
	Rooms       map[string]types.RoomDef
	Items       map[string]types.ItemDef
	NPCs        map[string]types.NPCDef
	Quests      map[string]types.QuestDef
	QuestOrder  []string // declaration order, used for deterministic ties
	Endings     map[string]types.EndingDef
	GlobalRules []types.RuleDef
	Handlers    []types.EventHandler
}

// RoomKey returns the pool key for a room floor.
func RoomKey(roomID string) string { return "room:" + roomID }

// ContainerKey returns the pool key for a container within a room.
func ContainerKey(roomID, containerID string) string {
	return "container:" + roomID + "/" + containerID
}

// NewState creates a fresh game state from definitions. Room and container
// item placements are copied into pools; quests start at their first stage.
func NewState(defs *Defs) *types.State {
	s := &types.State{
		Player: types.Player{
			Location:     defs.Game.Start,
			Inventory:    map[string]int{},
			MaxInventory: defs.Game.MaxInventory,
			Minshin:      defs.Game.StartMinshin,
		},
		Day:        0,
		Hour:       defs.Game.StartHour,
		Quests:     map[string]string{},
		Flags:      map[string]bool{},
		Counters:   map[string]int{},
		Pools:      map[string]map[string]int{},
		Open:       map[string]bool{},
		NPCRooms:   map[string]string{},
		Menus:      map[string]string{},
		CommandLog: []string{},
	}
	for id, q := range defs.Quests {
		if len(q.Stages) > 0 {
			s.Quests[id] = q.Stages[0]
		}
	}
	for id, room := range defs.Rooms {
		for _, item := range room.Items {
			AddToPool(s, RoomKey(id), item, 1)
		}
		for _, c := range room.Containers {
			for _, item := range c.Items {
				AddToPool(s, ContainerKey(id, c.ID), item, 1)
			}
		}
	}
	return s
}

// GetFlag returns the value of a flag. Unset flags return false.
func GetFlag(s *types.State, name string) bool {
	return s.Flags[name]
}

// GetCounter returns the value of a counter. Unset counters return 0.
func GetCounter(s *types.State, name string) int {
	return s.Counters[name]
}

// ItemCount returns how many of an item the player carries.
func ItemCount(s *types.State, itemID string) int {
	return s.Player.Inventory[itemID]
}

// HasItem returns true if the player carries at least one of the item.
func HasItem(s *types.State, itemID string) bool {
	return s.Player.Inventory[itemID] > 0
}

// UsedSlots returns the total number of inventory slots in use. Every unit
// of every item occupies one slot.
func UsedSlots(s *types.State) int {
	total := 0
	for _, n := range s.Player.Inventory {
		total += n
	}
	return total
}

// FreeSlots returns how many more units the player can carry.
func FreeSlots(s *types.State) int {
	return s.Player.MaxInventory - UsedSlots(s)
}

// AddItem puts count units of an item into the player's inventory. It does
// not check capacity; callers validate before mutating.
func AddItem(s *types.State, itemID string, count int) {
	if count <= 0 {
		return
	}
	s.Player.Inventory[itemID] += count
}

// RemoveItem takes count units of an item out of the player's inventory.
// It fails without mutating if the player carries fewer than count.
func RemoveItem(s *types.State, itemID string, count int) error {
	if count <= 0 {
		return nil
	}
	have := s.Player.Inventory[itemID]
	if have < count {
		return fmt.Errorf("remove %s x%d: only %d held", itemID, count, have)
	}
	if have == count {
		delete(s.Player.Inventory, itemID)
	} else {
		s.Player.Inventory[itemID] = have - count
	}
	return nil
}

// PoolCount returns how many of an item a pool holds.
func PoolCount(s *types.State, key, itemID string) int {
	return s.Pools[key][itemID]
}

// AddToPool puts count units of an item into a pool.
func AddToPool(s *types.State, key, itemID string, count int) {
	if count <= 0 {
		return
	}
	p := s.Pools[key]
	if p == nil {
		p = map[string]int{}
		s.Pools[key] = p
	}
	p[itemID] += count
}

// TakeFromPool removes count units of an item from a pool. It fails without
// mutating if the pool holds fewer than count.
func TakeFromPool(s *types.State, key, itemID string, count int) error {
	if count <= 0 {
		return nil
	}
	have := s.Pools[key][itemID]
	if have < count {
		return fmt.Errorf("take %s x%d from %s: only %d present", itemID, count, key, have)
	}
	if have == count {
		delete(s.Pools[key], itemID)
	} else {
		s.Pools[key][itemID] = have - count
	}
	return nil
}

// PoolItems returns the item IDs present in a pool, sorted for deterministic
// iteration.
func PoolItems(s *types.State, key string) []string {
	var ids []string
	for id, n := range s.Pools[key] {
		if n > 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// ContainerOpen reports whether a container has been opened.
func ContainerOpen(s *types.State, roomID, containerID string) bool {
	return s.Open[roomID+"/"+containerID]
}

// NPCLocation returns the effective room of an NPC. Runtime overrides beat
// the base definition; hidden NPCs are nowhere until spawned.
func NPCLocation(s *types.State, defs *Defs, npcID string) string {
	if loc, ok := s.NPCRooms[npcID]; ok {
		return loc
	}
	def, ok := defs.NPCs[npcID]
	if !ok || def.Hidden {
		return ""
	}
	return def.Room
}

// NPCsInRoom returns the IDs of all NPCs whose effective location matches
// the given room, in the room definition's declared order with late arrivals
// appended alphabetically.
func NPCsInRoom(s *types.State, defs *Defs, roomID string) []string {
	var result []string
	seen := map[string]bool{}
	if room, ok := defs.Rooms[roomID]; ok {
		for _, id := range room.NPCs {
			if NPCLocation(s, defs, id) == roomID {
				result = append(result, id)
				seen[id] = true
			}
		}
	}
	var extra []string
	for id := range defs.NPCs {
		if !seen[id] && NPCLocation(s, defs, id) == roomID {
			extra = append(extra, id)
		}
	}
	sort.Strings(extra)
	return append(result, extra...)
}

// QuestStage returns the current stage of a quest.
func QuestStage(s *types.State, questID string) string {
	return s.Quests[questID]
}

// QuestComplete reports whether a quest has reached its terminal stage.
func QuestComplete(s *types.State, questID string) bool {
	return s.Quests[questID] == "completed"
}

// CompletedQuests returns how many quests are at their terminal stage.
func CompletedQuests(s *types.State) int {
	n := 0
	for _, stage := range s.Quests {
		if stage == "completed" {
			n++
		}
	}
	return n
}

// StageIndex returns the position of a stage within a quest's declared
// order, or -1 when either the quest or the stage is unknown.
func StageIndex(defs *Defs, questID, stage string) int {
	q, ok := defs.Quests[questID]
	if !ok {
		return -1
	}
	for i, st := range q.Stages {
		if st == stage {
			return i
		}
	}
	return -1
}

// FindExit looks up a room exit by its spoken name, case-insensitively.
func FindExit(defs *Defs, roomID, name string) (types.ExitDef, bool) {
	room, ok := defs.Rooms[roomID]
	if !ok {
		return types.ExitDef{}, false
	}
	name = strings.ToLower(strings.TrimSpace(name))
	for _, e := range room.Exits {
		if strings.ToLower(e.Name) == name || e.To == name {
			return e, true
		}
	}
	return types.ExitDef{}, false
}

// FindContainer looks up a container in a room by ID or spoken name.
func FindContainer(defs *Defs, roomID, name string) (types.ContainerDef, bool) {
	room, ok := defs.Rooms[roomID]
	if !ok {
		return types.ContainerDef{}, false
	}
	name = strings.ToLower(strings.TrimSpace(name))
	for _, c := range room.Containers {
		if c.ID == name || strings.ToLower(c.Name) == name {
			return c, true
		}
	}
	return types.ContainerDef{}, false
}
