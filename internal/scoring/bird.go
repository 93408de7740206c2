package scoring

import (
	"github.com/Sumatoshi-tech/devdedup/internal/identity"
)

// Bird is the rule-ordered baseline heuristic after Bird et al. (MSR 2006).
// Rules are evaluated in a fixed precedence and the first rule that fires
// decides the pair; later rules are never consulted.
type Bird struct{}

// NewBird creates the baseline scorer.
func NewBird() *Bird {
	return &Bird{}
}

// Name returns the heuristic name.
func (s *Bird) Name() string {
	return HeuristicBird
}

// Score applies the baseline rules in order:
//  1. normalized emails are exactly equal (local and domain);
//  2. email local parts are equal after normalization and the names share a
//     non-initial token;
//  3. the name token sets are equal, at least one token has length >= 3, and
//     at most one side carries an email (two disagreeing emails are treated
//     as counter-evidence against a name-only match).
//
// The returned score is 1 on a match and 0 otherwise.
func (s *Bird) Score(a, b identity.Normalized) (float64, bool) {
	if emailsEqual(a, b) {
		return 1, true
	}

	if localsEqualWithSharedToken(a, b) {
		return 1, true
	}

	if nameSetsEqual(a, b) {
		return 1, true
	}

	return 0, false
}

func emailsEqual(a, b identity.Normalized) bool {
	return a.HasEmail() && b.HasEmail() &&
		a.EmailLocal == b.EmailLocal && a.EmailDomain == b.EmailDomain
}

// localsEqualWithSharedToken matches when the stripped email locals coincide
// and the names corroborate with at least one shared multi-rune token.
// Requiring the name evidence keeps generic locals like "dev" or "admin"
// from merging unrelated people across domains.
func localsEqualWithSharedToken(a, b identity.Normalized) bool {
	if !a.HasEmail() || !b.HasEmail() || a.EmailLocal != b.EmailLocal {
		return false
	}

	return sharedNonInitialToken(a.NameTokens, b.NameTokens)
}

func sharedNonInitialToken(aTokens, bTokens []string) bool {
	for _, at := range aTokens {
		if len([]rune(at)) < 2 {
			continue
		}

		for _, bt := range bTokens {
			if at == bt {
				return true
			}
		}
	}

	return false
}

// nameSetsEqual compares the order-independent token sets. At least one token
// must have length >= 3 so that two bare initial pairs never match on their
// own, and the rule only applies when the pair's emails could not already
// have decided it: when both sides carry an email, rules 1 and 2 have seen
// them disagree, and an identical name alone does not override that.
func nameSetsEqual(a, b identity.Normalized) bool {
	if !a.HasName() || !b.HasName() || a.JoinedName != b.JoinedName {
		return false
	}

	if a.HasEmail() && b.HasEmail() {
		return false
	}

	for _, tok := range a.NameTokens {
		if len([]rune(tok)) >= 3 {
			return true
		}
	}

	return false
}
