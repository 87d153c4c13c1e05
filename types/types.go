// Package types defines the shared data structures for the Colony 4B game
// core. This package contains only type definitions — no logic, no methods.
package types

// Item kinds. The enumeration is closed; the loader rejects anything else.
const (
	KindKey        = "key"
	KindResource   = "resource"
	KindConsumable = "consumable"
)

// Intent is the parsed representation of a player command.
type Intent struct {
	Verb   string
	Object string // optional
	Target string // optional
	Phrase string // normalized full input, for phrase-matched rules
}

// Effect is a single atomic state mutation instruction.
type Effect struct {
	Type   string
	Params map[string]any
}

// Event is emitted after effects are applied.
type Event struct {
	Type string
	Data map[string]any
}

// Result is the output of a single game step.
type Result struct {
	Effects []Effect
	Events  []Event
	Output  []string
	Ended   bool // a terminal ending was reached during this step
}

// MatchCriteria defines what intent a rule matches against.
type MatchCriteria struct {
	Verb   string
	Object string // specific item or NPC ID
	Target string // specific item, NPC, or fixture ID
	Phrase string // exact normalized phrase ("offer lucky coin")
}

// Condition is a predicate that must be true for a rule to fire.
type Condition struct {
	Type   string         // "has_item", "stage_is", "hour_between", etc.
	Params map[string]any // condition-specific parameters
	Negate bool           // true if wrapped in Not()
	Inner  *Condition     // for Not(): the negated inner condition
}

// RuleDef is a single rule that maps an intent to effects.
type RuleDef struct {
	ID          string
	Scope       string // "room:<id>", "npc:<id>", "global"
	When        MatchCriteria
	Conditions  []Condition
	Effects     []Effect
	Priority    int
	SourceOrder int
}

// ItemDef is the base definition of a catalog item.
type ItemDef struct {
	ID          string
	Name        string
	Kind        string // KindKey, KindResource, KindConsumable
	Description string
	Text        string // readable body for handbooks and notices
	Droppable   bool   // key items default to false
}

// Greeting is one stage-gated response an NPC can open with.
type Greeting struct {
	Requires []Condition
	Text     string
	Menu     string // interaction menu to enter, "" stays in place
	Effects  []Effect
}

// NPCDef is the base definition of a colony character.
type NPCDef struct {
	ID          string
	Name        string
	Room        string // home room; state may relocate or spawn later
	Hidden      bool   // absent until explicitly spawned (Foreman Long)
	Description string
	Quest       string // quest this NPC fronts, "" for none
	Greetings   []Greeting
	Rules       []RuleDef
}

// MenuOption is one numbered entry in an interaction menu.
type MenuOption struct {
	Text     string
	Requires []Condition
}

// MenuDef is a named interaction state within a room. Options replace the
// room's generated main list while the menu is active; "go back" returns to
// Parent ("" means the main list).
type MenuDef struct {
	Parent  string
	Prompt  string
	Options []MenuOption
}

// ExitDef is a named passage out of a room.
type ExitDef struct {
	Name     string // what the player types after "go"
	To       string // destination room ID
	Requires []Condition
	Denied   string  // shown when Requires fails
	Travel   string  // transit flavor shown on the way through
	Cost     float64 // hours; 0 means the game default
}

// ContainerDef is an openable fixture holding items.
type ContainerDef struct {
	ID    string
	Name  string
	Items []string // item IDs present at start
	Key   string   // item ID required to open, "" for unlocked
}

// RoomDef is the base definition of a room.
type RoomDef struct {
	ID          string
	Name        string
	Description string
	Exits       []ExitDef
	Items       []string // item IDs on the floor at start
	Containers  []ContainerDef
	NPCs        []string
	Extras      []MenuOption       // declared main-list options beyond the generated ones
	Menus       map[string]MenuDef // interaction states beyond the main list
	Rules       []RuleDef
	Fallbacks   map[string]string // verb → custom failure text
}

// QuestDef is one side quest's stage machine.
type QuestDef struct {
	ID       string
	Name     string
	Giver    string   // NPC ID shown on the quest board
	Stages   []string // ordered; first is the initial stage, last must be "completed"
	Requires []string // quest IDs that must be completed before this one starts
	Hint     string   // prophecy line sold by Hinter
}

// EndingDef is one way the cycle can end.
type EndingDef struct {
	ID         string
	Title      string
	Kind       string // "special", "success", "failure", "quit"
	Requires   []Condition
	MinQuests  int // success variants: minimum completed side quests
	Priority   int
	Paragraphs []string
}

// LootEntry is one slot in the mining loot table.
type LootEntry struct {
	Item   string
	Weight int
}

// GameDef holds game metadata and tuning constants from Lua.
type GameDef struct {
	Title   string
	Version string
	Start   string // starting room ID
	Intro   string
	Map     string // ASCII colony map shown by the map command
	Help    string // command summary shown by the help command

	Quota         int     // crystal-equivalents owed per period
	PeriodDays    int     // Thebian days in a quota period
	DayHours      float64 // hours in a Thebian day
	StartHour     float64 // wall-clock hour the cycle begins at
	MoveCost      float64 // hours per movement, mining swing, or deposit
	StartMinshin  int
	MaxInventory  int
	MaxStack      int // per-resource stack cap
	DonationGoal  int // total Minshin that summons the Foreman
	DonationMin   int
	FacilityClose float64 // facilities shut from this hour...
	FacilityOpen  float64 // ...until this hour (end of day)

	// Mining.
	Loot           []LootEntry
	CrystalItem    string  // item counted 1 toward the quota
	ClusterItem    string  // item counted ClusterValue toward the quota
	ClusterValue   int
	UpgradeFlag    string  // flag granting extra swings per mining action
	UpgradedRolls  int
	SkeletonAfter  int     // attempts before the discovery can happen
	SkeletonChance float64
	SkeletonFlag   string  // flag the discovery sets

	// Economy.
	PostQuotaBonus int            // Minshin per surplus crystal-equivalent
	ProphecyCost   int
	MaterialPrices map[string]int // refinery buy list: item ID → Minshin
}

// Player holds the player's runtime state.
type Player struct {
	Location     string
	Inventory    map[string]int // item ID → count
	MaxInventory int
	Minshin      int
	Quota        int // crystal-equivalents deposited this period
}

// State is the complete mutable game state.
type State struct {
	Player   Player
	Day      int
	Hour     float64
	Quests   map[string]string         // quest ID → current stage
	Flags    map[string]bool
	Counters map[string]int
	Pools    map[string]map[string]int // location key → item ID → count
	Open     map[string]bool           // "room/container" → opened
	NPCRooms map[string]string         // NPC ID → room override ("" = removed)
	Menus    map[string]string         // room ID → active menu ("" = main list)
	Prompt   string                    // pending input prompt ("donation"), "" otherwise
	Debug    bool
	Ending   string // ending ID once terminal, "" while playing

	TurnCount  int
	RNGSeed    int64
	CommandLog []string
}

// EventHandler is a rule triggered by an event rather than a player command.
type EventHandler struct {
	EventType  string
	Conditions []Condition
	Effects    []Effect
}
