package engine

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/yaboy-beast/Mining-Colony-4b/engine/effects"
	"github.com/yaboy-beast/Mining-Colony-4b/engine/state"
	"github.com/yaboy-beast/Mining-Colony-4b/types"
)

// expandSpecial rewrites computed-action effects into concrete effect lists
// before Apply sees them. Content rules gate these actions with conditions
// and then emit a single opaque effect; the expansion is where the RNG and
// the player's current holdings come in.
func (e *Engine) expandSpecial(effs []types.Effect, ctx effects.Context) []types.Effect {
	var out []types.Effect
	for _, eff := range effs {
		switch eff.Type {
		case "mine":
			out = append(out, e.expandMine()...)
		case "deposit_ambrosium":
			out = append(out, e.expandDepositAmbrosium()...)
		case "deposit_materials":
			out = append(out, e.expandDepositMaterials()...)
		case "prophecy":
			out = append(out, e.expandProphecy()...)
		case "begin_donation":
			out = append(out,
				types.Effect{Type: "set_prompt", Params: map[string]any{"prompt": "donation"}},
				sayEffect("The donation terminal lights up, cursor blinking over an amount field."),
			)
		default:
			out = append(out, eff)
		}
	}
	return out
}

func (e *Engine) expandMine() []types.Effect {
	s, game := e.State, e.Defs.Game

	free := state.FreeSlots(s)
	if free < 1 {
		return []types.Effect{sayEffect("Your bag is full. Deposit something before mining more.")}
	}

	rolls := 1
	if state.GetFlag(s, game.UpgradeFlag) && game.UpgradedRolls > 1 {
		rolls = game.UpgradedRolls
	}
	weights := make([]int, len(game.Loot))
	for i, entry := range game.Loot {
		weights[i] = entry.Weight
	}

	pending := map[string]int{}
	attempts := state.GetCounter(s, "mine_attempts")
	var effs []types.Effect

	for i := 0; i < rolls; i++ {
		attempts++
		effs = append(effs, types.Effect{
			Type:   "inc_counter",
			Params: map[string]any{"counter": "mine_attempts", "amount": 1},
		})

		if attempts > game.SkeletonAfter && e.RNG.Chance(game.SkeletonChance) {
			effs = append(effs,
				sayEffect("Your beam cuts through a pocket of loose regolith. Something pale tumbles out: a suit-clad skeleton, its chest badge stamped COLONY 4A."),
				types.Effect{Type: "set_flag", Params: map[string]any{"flag": game.SkeletonFlag, "value": true}},
				types.Effect{Type: "emit_event", Params: map[string]any{"event": "skeleton_found"}},
			)
			break
		}

		if free < 1 {
			effs = append(effs, sayEffect("Your bag is full. The rest of the seam will keep."))
			break
		}
		item := game.Loot[e.RNG.WeightedSelect(weights)].Item
		def := e.Defs.Items[item]
		if def.Kind == types.KindResource && game.MaxStack > 0 && state.ItemCount(s, item)+pending[item] >= game.MaxStack {
			effs = append(effs, sayEffect(fmt.Sprintf("You chip loose more %s than you can carry and leave it in the tailings.", def.Name)))
			continue
		}
		pending[item]++
		free--
		effs = append(effs,
			types.Effect{Type: "give_item", Params: map[string]any{"item": item}},
			sayEffect(fmt.Sprintf("You chip loose a %s.", def.Name)),
		)
	}

	return append(effs, advanceTime(game.MoveCost))
}

func (e *Engine) expandDepositAmbrosium() []types.Effect {
	s, game := e.State, e.Defs.Game

	crystals := state.ItemCount(s, game.CrystalItem)
	clusters := state.ItemCount(s, game.ClusterItem)
	if crystals == 0 && clusters == 0 {
		return []types.Effect{sayEffect("You have nothing of Ambrosium grade to deposit.")}
	}

	// Crystal-equivalents beyond the quota pay out instead of counting.
	equivalents := crystals + clusters*game.ClusterValue
	remaining := game.Quota - s.Player.Quota
	if remaining < 0 {
		remaining = 0
	}
	surplus := equivalents - remaining
	if surplus < 0 {
		surplus = 0
	}

	var effs []types.Effect
	if crystals > 0 {
		effs = append(effs, types.Effect{
			Type:   "remove_item",
			Params: map[string]any{"item": game.CrystalItem, "count": crystals},
		})
	}
	if clusters > 0 {
		effs = append(effs, types.Effect{
			Type:   "remove_item",
			Params: map[string]any{"item": game.ClusterItem, "count": clusters},
		})
	}
	effs = append(effs,
		types.Effect{Type: "add_quota", Params: map[string]any{"amount": equivalents}},
		sayEffect(fmt.Sprintf("The intake hopper swallows %d crystal-equivalents. Quota: {quota}/{quota_target}.", equivalents)),
	)
	if surplus > 0 && game.PostQuotaBonus > 0 {
		bonus := surplus * game.PostQuotaBonus
		effs = append(effs,
			types.Effect{Type: "add_minshin", Params: map[string]any{"amount": bonus}},
			sayEffect(fmt.Sprintf("Surplus payout: %d Minshin.", bonus)),
		)
	}
	return append(effs,
		types.Effect{Type: "emit_event", Params: map[string]any{"event": "ambrosium_deposited"}},
		advanceTime(game.MoveCost),
	)
}

func (e *Engine) expandDepositMaterials() []types.Effect {
	s, game := e.State, e.Defs.Game

	items := make([]string, 0, len(game.MaterialPrices))
	for item := range game.MaterialPrices {
		items = append(items, item)
	}
	sort.Strings(items)

	total := 0
	var effs []types.Effect
	for _, item := range items {
		n := state.ItemCount(s, item)
		if n == 0 {
			continue
		}
		total += n * game.MaterialPrices[item]
		effs = append(effs, types.Effect{
			Type:   "remove_item",
			Params: map[string]any{"item": item, "count": n},
		})
	}
	if total == 0 {
		return []types.Effect{sayEffect("You have no refinable materials on you.")}
	}
	return append(effs,
		types.Effect{Type: "add_minshin", Params: map[string]any{"amount": total}},
		sayEffect(fmt.Sprintf("The refinery weighs your haul and pays out %d Minshin.", total)),
		advanceTime(game.MoveCost),
	)
}

func (e *Engine) expandProphecy() []types.Effect {
	var open []string
	for _, id := range e.Defs.QuestOrder {
		if !state.QuestComplete(e.State, id) {
			open = append(open, id)
		}
	}
	if len(open) == 0 {
		return []types.Effect{sayEffect("Hinter waves your Minshin away. \"Your threads are all tied off. Nothing left to foretell.\"")}
	}
	quest := e.Defs.Quests[open[e.RNG.Pick(len(open))]]
	return []types.Effect{
		{Type: "add_minshin", Params: map[string]any{"amount": -e.Defs.Game.ProphecyCost}},
		sayEffect("Hinter pockets the coins and closes her eyes. \"" + quest.Hint + "\""),
	}
}

// handlePrompt consumes a whole input line while a prompt is pending. Only
// the donation terminal uses this today.
func (e *Engine) handlePrompt(input string) ([]types.Effect, []string) {
	s, game := e.State, e.Defs.Game
	clearPrompt := types.Effect{Type: "set_prompt", Params: map[string]any{"prompt": ""}}

	switch input {
	case "cancel", "back", "no", "quit":
		return []types.Effect{clearPrompt}, []string{"You step back from the terminal."}
	}

	n, err := strconv.Atoi(input)
	if err != nil {
		return nil, []string{"The terminal accepts numbers only. Enter an amount, or cancel."}
	}
	if n < game.DonationMin {
		return nil, []string{fmt.Sprintf("The minimum donation is %d Minshin.", game.DonationMin)}
	}
	if n > s.Player.Minshin {
		return nil, []string{"You don't have that much."}
	}

	total := state.GetCounter(s, "donations_total") + n
	return []types.Effect{
		clearPrompt,
		{Type: "add_minshin", Params: map[string]any{"amount": -n}},
		{Type: "inc_counter", Params: map[string]any{"counter": "donations_total", "amount": n}},
		sayEffect(fmt.Sprintf("The terminal chimes. Total donated to the memorial fund: %d Minshin.", total)),
		{Type: "emit_event", Params: map[string]any{"event": "donation_made"}},
	}, nil
}

const unrecognized = "Unrecognized command. Type help for the command list."

func (e *Engine) builtinDebugMode() ([]types.Effect, []string, bool) {
	if !e.DebugAllowed {
		return nil, []string{unrecognized}, true
	}
	e.State.Debug = !e.State.Debug
	if e.State.Debug {
		return nil, []string{"Debug mode enabled."}, true
	}
	return nil, []string{"Debug mode disabled."}, true
}

// builtinDebug parses "debug goto <room>", "debug give <item>", and
// "debug set time|day|minshin|quota <n>". All of them bypass preconditions
// and mutate state directly; none of them advance the clock.
func (e *Engine) builtinDebug(intent types.Intent) ([]types.Effect, []string, bool) {
	if !e.DebugAllowed || !e.State.Debug {
		return nil, []string{unrecognized}, true
	}
	s := e.State
	fields := strings.Fields(intent.Phrase)
	if len(fields) < 3 {
		return nil, []string{"Debug: goto <room>, give <item>, set time|day|minshin|quota <n>."}, true
	}

	switch fields[1] {
	case "goto":
		room := strings.ReplaceAll(strings.Join(fields[2:], " "), " ", "_")
		if _, ok := e.Defs.Rooms[room]; !ok {
			return nil, []string{fmt.Sprintf("Debug: no room %q.", room)}, true
		}
		s.Player.Location = room
		return nil, append([]string{"Debug: relocated."}, e.describeRoomID(room)...), true

	case "give":
		item := strings.ReplaceAll(strings.Join(fields[2:], " "), " ", "_")
		def, ok := e.Defs.Items[item]
		if !ok {
			return nil, []string{fmt.Sprintf("Debug: no item %q.", item)}, true
		}
		state.AddItem(s, item, 1)
		return nil, []string{fmt.Sprintf("Debug: %s added.", def.Name)}, true

	case "set":
		if len(fields) < 4 {
			return nil, []string{"Debug: set time|day|minshin|quota <n>."}, true
		}
		value := fields[3]
		switch fields[2] {
		case "time":
			h, err := strconv.ParseFloat(value, 64)
			if err != nil || h < 0 || h >= e.Defs.Game.DayHours {
				return nil, []string{fmt.Sprintf("Debug: time must be in [0, %g).", e.Defs.Game.DayHours)}, true
			}
			s.Hour = h
			return nil, []string{fmt.Sprintf("Debug: hour set to %g.", h)}, true
		case "day":
			d, err := strconv.Atoi(value)
			if err != nil || d < 0 {
				return nil, []string{"Debug: day must be a non-negative integer."}, true
			}
			s.Day = d
			return nil, []string{fmt.Sprintf("Debug: day set to %d.", d)}, true
		case "minshin":
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return nil, []string{"Debug: minshin must be a non-negative integer."}, true
			}
			s.Player.Minshin = n
			return nil, []string{fmt.Sprintf("Debug: minshin set to %d.", n)}, true
		case "quota":
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return nil, []string{"Debug: quota must be a non-negative integer."}, true
			}
			s.Player.Quota = n
			return nil, []string{fmt.Sprintf("Debug: quota set to %d.", n)}, true
		}
	}
	return nil, []string{"Debug: goto <room>, give <item>, set time|day|minshin|quota <n>."}, true
}
