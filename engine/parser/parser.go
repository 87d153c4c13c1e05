// Package parser converts command strings into Intent structs.
// Intentionally dumb: no NLP, just pattern matching. Menu numbers and
// phrase-matched rules are handled upstream in the engine; the parser only
// has to recognize the verb vocabulary of the colony.
package parser

import (
	"strconv"
	"strings"

	"github.com/yaboy-beast/Mining-Colony-4b/types"
)

var verbAliases = map[string]string{
	// Movement
	"walk":   "go",
	"move":   "go",
	"head":   "go",
	"travel": "go",
	"enter":  "go",

	// Take / Get
	"get":  "take",
	"grab": "take",

	// Drop
	"discard": "drop",

	// Look / Examine
	"l":       "look",
	"x":       "look",
	"examine": "look",
	"inspect": "look",

	// Check (terminals, boards, stalls)
	"view": "check",

	// Talk
	"speak": "talk",
	"chat":  "talk",

	// Offer / Give
	"give": "offer",
	"hand": "offer",

	// Market
	"purchase": "buy",

	// Meta
	"inv":    "inventory",
	"i":      "inventory",
	"m":      "map",
	"h":      "help",
	"exit":   "quit",
	"return": "back",
}

// canonicalVerbs is the closed set the engine dispatches on. Anything else
// is an unrecognized command unless a menu option or phrase rule claimed the
// input first.
var canonicalVerbs = map[string]bool{
	"go": true, "take": true, "drop": true, "open": true, "look": true,
	"read": true, "check": true, "insert": true, "talk": true, "offer": true,
	"buy": true, "mine": true, "deposit": true, "donate": true, "wait": true,
	"back": true, "inventory": true, "map": true, "help": true, "quit": true,
	"quests": true, "debugmode": true, "debug": true,
}

var prepositions = map[string]bool{
	"on": true, "at": true, "to": true,
	"with": true, "in": true, "from": true,
	"about": true, "into": true,
}

var articles = map[string]bool{
	"the": true, "a": true, "an": true, "some": true,
}

// Normalize lowercases, trims, and collapses internal whitespace. Menu
// option texts and rule phrases are compared against normalized input.
func Normalize(input string) string {
	return strings.Join(strings.Fields(strings.ToLower(input)), " ")
}

// Number reports whether the input is a bare menu selection number.
func Number(input string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return 0, false
	}
	return n, true
}

// Known reports whether the verb is part of the game's vocabulary.
func Known(verb string) bool {
	return canonicalVerbs[verb]
}

// Parse converts a raw command string into an Intent.
func Parse(input string) types.Intent {
	phrase := Normalize(input)
	if phrase == "" {
		return types.Intent{}
	}

	words := strings.Fields(phrase)

	// Handle multi-word verb phrases before general parsing.
	words = expandMultiWordVerbs(words)

	// Apply verb aliases.
	if alias, ok := verbAliases[words[0]]; ok {
		words[0] = alias
	}

	verb := words[0]
	rest := stripArticles(words[1:])

	// Use the first preposition as a delimiter between object and target.
	object, target := splitOnPreposition(rest)

	return types.Intent{
		Verb:   verb,
		Object: object,
		Target: target,
		Phrase: phrase,
	}
}

// expandMultiWordVerbs handles "pick up", "talk to", "go back" etc.
func expandMultiWordVerbs(words []string) []string {
	if len(words) < 2 {
		return words
	}

	switch words[0] {
	case "pick":
		if words[1] == "up" {
			return append([]string{"take"}, words[2:]...)
		}
	case "put":
		if words[1] == "down" {
			return append([]string{"drop"}, words[2:]...)
		}
	case "look":
		if words[1] == "at" || words[1] == "in" {
			return append([]string{"look"}, words[2:]...)
		}
	case "talk", "speak", "chat":
		if words[1] == "to" || words[1] == "with" {
			return append([]string{"talk"}, words[2:]...)
		}
	case "go":
		if len(words) == 2 && words[1] == "back" {
			return []string{"back"}
		}
	}

	return words
}

// stripArticles removes articles ("the", "a", "an", "some") from the word list.
func stripArticles(words []string) []string {
	result := make([]string, 0, len(words))
	for _, w := range words {
		if !articles[w] {
			result = append(result, w)
		}
	}
	return result
}

// splitOnPreposition splits words on the first preposition.
// Words before the preposition become the object, words after become the
// target. If no preposition is found, all words become the object.
func splitOnPreposition(words []string) (object, target string) {
	for i, w := range words {
		if prepositions[w] {
			object = strings.Join(words[:i], " ")
			target = strings.Join(words[i+1:], " ")
			return object, target
		}
	}
	return strings.Join(words, " "), ""
}
