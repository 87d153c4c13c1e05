package rules

import (
	"sort"

	"github.com/yaboy-beast/Mining-Colony-4b/engine/state"
	"github.com/yaboy-beast/Mining-Colony-4b/types"
)

// Evaluate runs the rules pipeline and returns the matched effects. The bool
// indicates whether a rule actually matched (true) vs. fallback was used
// (false); the engine uses this to decide whether built-in verb behavior
// should run instead. Name resolution happens before this is called.
func Evaluate(s *types.State, defs *state.Defs,
	intent types.Intent, objectID, targetID string) ([]types.Effect, bool) {

	// Rules match against resolved IDs where resolution succeeded, so
	// "coin", "lucky coin", and "Lucky Coin" all hit the same rule.
	if objectID != "" {
		intent.Object = objectID
	}
	if targetID != "" {
		intent.Target = targetID
	}

	// Collect candidate rules in resolution order buckets.
	buckets := collect(s, defs, objectID, targetID)

	// Filter, rank, and select per bucket; the first bucket with a winner
	// shadows everything below it.
	for _, bucket := range buckets {
		if winner := filterRankSelect(bucket, s, defs, intent); winner != nil {
			return winner.Effects, true
		}
	}

	// No rule matched — produce fallback.
	return fallback(s, defs, intent.Verb), false
}

// collect gathers candidate rules in resolution order:
// 1. Current room's rules
// 2. Target NPC's rules
// 3. Object NPC's rules
// 4. Global rules
func collect(s *types.State, defs *state.Defs, objectID, targetID string) [][]types.RuleDef {
	var buckets [][]types.RuleDef

	if room, ok := defs.Rooms[s.Player.Location]; ok && len(room.Rules) > 0 {
		buckets = append(buckets, room.Rules)
	}

	if targetID != "" {
		if npc, ok := defs.NPCs[targetID]; ok && len(npc.Rules) > 0 {
			buckets = append(buckets, npc.Rules)
		}
	}

	if objectID != "" && objectID != targetID {
		if npc, ok := defs.NPCs[objectID]; ok && len(npc.Rules) > 0 {
			buckets = append(buckets, npc.Rules)
		}
	}

	if len(defs.GlobalRules) > 0 {
		buckets = append(buckets, defs.GlobalRules)
	}

	return buckets
}

// filterRankSelect filters a bucket of rules, ranks them, and returns the
// top-ranked matching rule, or nil if none match.
func filterRankSelect(ruleset []types.RuleDef, s *types.State, defs *state.Defs,
	intent types.Intent) *types.RuleDef {

	var candidates []types.RuleDef
	for _, rule := range ruleset {
		if !MatchesIntent(rule.When, intent) {
			continue
		}
		if !EvalAllConditions(rule.Conditions, s, defs) {
			continue
		}
		candidates = append(candidates, rule)
	}

	if len(candidates) == 0 {
		return nil
	}

	// Rank: specificity (desc) → priority (desc) → source order (asc).
	sort.SliceStable(candidates, func(i, j int) bool {
		si, sj := Specificity(candidates[i]), Specificity(candidates[j])
		if si != sj {
			return si > sj
		}
		if candidates[i].Priority != candidates[j].Priority {
			return candidates[i].Priority > candidates[j].Priority
		}
		return candidates[i].SourceOrder < candidates[j].SourceOrder
	})

	return &candidates[0]
}

// fallback produces effects when no rule matched.
// Resolution: room fallback (verb) → room fallback (default) → global default.
func fallback(s *types.State, defs *state.Defs, verb string) []types.Effect {
	if room, ok := defs.Rooms[s.Player.Location]; ok {
		if text, ok := room.Fallbacks[verb]; ok {
			return []types.Effect{sayEffect(text)}
		}
		if text, ok := room.Fallbacks["default"]; ok {
			return []types.Effect{sayEffect(text)}
		}
	}
	return []types.Effect{sayEffect("You can't do that here.")}
}

func sayEffect(text string) types.Effect {
	return types.Effect{
		Type:   "say",
		Params: map[string]any{"text": text},
	}
}
