package rules

import (
	"github.com/yaboy-beast/Mining-Colony-4b/types"
)

// MatchesIntent checks if a rule's When criteria match the resolved intent.
// A phrase criterion matches the whole normalized input and ignores the
// verb/object split entirely; that is how menu verbs like "high five" and
// "mine away" are expressed in content.
func MatchesIntent(when types.MatchCriteria, intent types.Intent) bool {
	if when.Phrase != "" {
		return when.Phrase == intent.Phrase
	}

	// Verb is required and must match.
	if when.Verb != intent.Verb {
		return false
	}

	// If When specifies an object, it must match the resolved object.
	if when.Object != "" && when.Object != intent.Object {
		return false
	}

	// If When specifies a target, it must match the resolved target.
	if when.Target != "" && when.Target != intent.Target {
		return false
	}

	return true
}

// Specificity returns a numeric score for ranking rules.
// Higher is more specific. A full-phrase match beats anything assembled
// from verb and noun parts.
func Specificity(rule types.RuleDef) int {
	score := 0
	if rule.When.Phrase != "" {
		score += 8
	}
	if rule.When.Target != "" {
		score += 4
	}
	if rule.When.Object != "" {
		score += 2
	}
	return score
}
