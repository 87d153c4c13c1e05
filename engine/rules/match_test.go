package rules

import (
	"testing"

	"github.com/yaboy-beast/Mining-Colony-4b/types"
)

func TestMatchesIntent(t *testing.T) {
	tests := []struct {
		name   string
		when   types.MatchCriteria
		intent types.Intent
		want   bool
	}{
		{
			name:   "verb only",
			when:   types.MatchCriteria{Verb: "mine"},
			intent: types.Intent{Verb: "mine", Phrase: "mine"},
			want:   true,
		},
		{
			name:   "verb mismatch",
			when:   types.MatchCriteria{Verb: "mine"},
			intent: types.Intent{Verb: "take", Object: "soil", Phrase: "take soil"},
			want:   false,
		},
		{
			name:   "verb and object",
			when:   types.MatchCriteria{Verb: "offer", Object: "lucky coin"},
			intent: types.Intent{Verb: "offer", Object: "lucky coin", Phrase: "offer lucky coin"},
			want:   true,
		},
		{
			name:   "object mismatch",
			when:   types.MatchCriteria{Verb: "offer", Object: "lucky coin"},
			intent: types.Intent{Verb: "offer", Object: "steamed buns", Phrase: "offer steamed buns"},
			want:   false,
		},
		{
			name:   "unconstrained object matches anything",
			when:   types.MatchCriteria{Verb: "offer"},
			intent: types.Intent{Verb: "offer", Object: "steamed buns", Phrase: "offer steamed buns"},
			want:   true,
		},
		{
			name:   "target constraint",
			when:   types.MatchCriteria{Verb: "insert", Object: "id card", Target: "terminal"},
			intent: types.Intent{Verb: "insert", Object: "id card", Target: "terminal", Phrase: "insert id card into terminal"},
			want:   true,
		},
		{
			name:   "phrase match ignores verb split",
			when:   types.MatchCriteria{Phrase: "high five"},
			intent: types.Intent{Verb: "high", Object: "five", Phrase: "high five"},
			want:   true,
		},
		{
			name:   "phrase mismatch",
			when:   types.MatchCriteria{Phrase: "high five"},
			intent: types.Intent{Verb: "mine", Object: "away", Phrase: "mine away"},
			want:   false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchesIntent(tt.when, tt.intent); got != tt.want {
				t.Errorf("MatchesIntent = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSpecificity(t *testing.T) {
	phrase := types.RuleDef{When: types.MatchCriteria{Phrase: "mine away"}}
	full := types.RuleDef{When: types.MatchCriteria{Verb: "insert", Object: "id card", Target: "terminal"}}
	verbObj := types.RuleDef{When: types.MatchCriteria{Verb: "offer", Object: "buns"}}
	bare := types.RuleDef{When: types.MatchCriteria{Verb: "offer"}}

	if !(Specificity(phrase) > Specificity(full)) {
		t.Error("phrase should outrank verb+object+target")
	}
	if !(Specificity(full) > Specificity(verbObj)) {
		t.Error("verb+object+target should outrank verb+object")
	}
	if !(Specificity(verbObj) > Specificity(bare)) {
		t.Error("verb+object should outrank bare verb")
	}
}
