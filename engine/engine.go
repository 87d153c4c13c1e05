// Package engine provides the Step() orchestrator that wires together
// parsing, resolution, rules, effects, events, and the ending resolver into
// a single turn.
package engine

import (
	"github.com/yaboy-beast/Mining-Colony-4b/engine/effects"
	"github.com/yaboy-beast/Mining-Colony-4b/engine/ending"
	"github.com/yaboy-beast/Mining-Colony-4b/engine/events"
	"github.com/yaboy-beast/Mining-Colony-4b/engine/parser"
	"github.com/yaboy-beast/Mining-Colony-4b/engine/resolve"
	"github.com/yaboy-beast/Mining-Colony-4b/engine/rules"
	"github.com/yaboy-beast/Mining-Colony-4b/engine/state"
	"github.com/yaboy-beast/Mining-Colony-4b/types"
)

// Engine holds the game definitions, mutable state, and the seeded RNG.
type Engine struct {
	Defs  *state.Defs
	State *types.State
	RNG   *RNG

	// DebugAllowed gates the debugmode command. When false the debug
	// surface does not exist as far as the player can tell.
	DebugAllowed bool
}

// New creates a new engine from definitions and an RNG seed.
func New(defs *state.Defs, seed int64) *Engine {
	s := state.NewState(defs)
	s.RNGSeed = seed
	return &Engine{
		Defs:  defs,
		State: s,
		RNG:   NewRNG(seed),
	}
}

// Step processes one player command and returns the result.
func (e *Engine) Step(input string) types.Result {
	var result types.Result
	s := e.State

	// Terminal states only acknowledge.
	if s.Ending != "" {
		result.Output = append(result.Output, "The cycle has ended. Type quit to leave.")
		result.Ended = true
		return result
	}

	s.CommandLog = append(s.CommandLog, input)

	normalized := parser.Normalize(input)
	if normalized == "" {
		result.Output = append(result.Output, "What do you want to do?")
		return result
	}

	// A pending input prompt (the donation terminal) captures the whole
	// line before any command parsing happens.
	if s.Prompt != "" {
		effs, out := e.handlePrompt(normalized)
		result.Output = append(result.Output, out...)
		e.applyAndFinish(&result, effs, effects.Context{}, "")
		return result
	}

	// A bare number selects from the current option list.
	if n, ok := parser.Number(normalized); ok {
		options := e.Options()
		if n < 1 || n > len(options) {
			result.Output = append(result.Output, "That's not one of the options.")
			s.TurnCount++
			return result
		}
		normalized = parser.Normalize(options[n-1])
	}

	intent := parser.Parse(normalized)

	// Resolve spoken names to IDs where the verb calls for it.
	objMatch, tgtMatch, resolveErr := e.resolveIntent(intent)

	effs, matched := rules.Evaluate(s, e.Defs, intent, objMatch.ID, tgtMatch.ID)

	if !matched {
		builtinEffs, builtinOut, handled := e.builtin(intent, objMatch, tgtMatch, resolveErr)
		switch {
		case handled:
			effs = builtinEffs
			result.Output = append(result.Output, builtinOut...)
		case resolveErr != nil:
			result.Output = append(result.Output, resolveErr.Error())
			s.TurnCount++
			return result
		case !parser.Known(intent.Verb):
			result.Output = append(result.Output, "Unrecognized command. Type help for the command list.")
			s.TurnCount++
			return result
		}
		// Known verb, nothing claimed it: keep the rules fallback text.
	}

	ctx := effects.Context{Verb: intent.Verb, ObjectID: objMatch.ID, TargetID: tgtMatch.ID}
	e.applyAndFinish(&result, effs, ctx, intent.Verb)
	return result
}

// applyAndFinish runs the back half of the turn: special-action expansion,
// effect application, event dispatch, the ending checkpoint, and turn
// accounting.
func (e *Engine) applyAndFinish(result *types.Result, effs []types.Effect, ctx effects.Context, verb string) {
	s := e.State

	effs = e.expandSpecial(effs, ctx)

	evts, output := effects.Apply(s, e.Defs, effs, ctx)
	result.Effects = append(result.Effects, effs...)
	result.Events = append(result.Events, evts...)
	result.Output = append(result.Output, output...)

	// Single-pass event dispatch: handler effects apply, their events do
	// not re-dispatch.
	if handlerEffs := events.Dispatch(evts, s, e.Defs); len(handlerEffs) > 0 {
		handlerEffs = e.expandSpecial(handlerEffs, ctx)
		evts2, output2 := effects.Apply(s, e.Defs, handlerEffs, ctx)
		result.Effects = append(result.Effects, handlerEffs...)
		result.Events = append(result.Events, evts2...)
		result.Output = append(result.Output, output2...)
	}

	if reason, ok := e.checkpoint(verb, result.Events); ok {
		if end, found := ending.Resolve(s, e.Defs, reason); found {
			s.Ending = end.ID
			result.Ended = true
			result.Output = append(result.Output, "", end.Title)
			result.Output = append(result.Output, end.Paragraphs...)
		}
	}

	s.TurnCount++
}

// checkpoint decides whether the ending resolver runs this turn and with
// what reason. Quit dominates; otherwise the events of the turn decide.
func (e *Engine) checkpoint(verb string, evts []types.Event) (string, bool) {
	if verb == "quit" {
		return ending.ReasonQuit, true
	}
	reason, found := "", false
	for _, ev := range evts {
		switch ev.Type {
		case "ambrosium_deposited":
			return ending.ReasonDeposit, true
		case "quest_completed":
			reason, found = ending.ReasonQuest, true
		case "day_advanced", "skeleton_found":
			if !found {
				reason, found = ending.ReasonClock, true
			}
		}
	}
	if !found && e.State.Day >= e.Defs.Game.PeriodDays {
		reason, found = ending.ReasonClock, true
	}
	return reason, found
}

// resolveIntent maps the intent's spoken names to IDs. Which slots get
// resolved depends on the verb: drop and offer reach only into the bag,
// go names an exit rather than an entity, and meta verbs resolve nothing.
// Resolution failures are returned, not fatal; a rule may still claim the
// raw text.
func (e *Engine) resolveIntent(intent types.Intent) (obj, tgt resolve.Match, err error) {
	s, defs := e.State, e.Defs

	switch intent.Verb {
	case "take", "look", "read", "talk":
		if intent.Object != "" {
			obj, err = resolve.Name(s, defs, intent.Object)
		}

	case "drop":
		if intent.Object != "" {
			obj, err = resolve.CarriedItem(s, defs, intent.Object)
		}

	case "offer":
		if intent.Object != "" {
			obj, err = resolve.CarriedItem(s, defs, intent.Object)
		}
		if err == nil && intent.Target != "" {
			tgt, err = resolve.Name(s, defs, intent.Target)
		}

	default:
		// go names an exit; open names a container; buy, check, and
		// insert act on fixtures and stock that rules know by raw text.
	}
	return obj, tgt, err
}
