package rules

import (
	"sort"
	"strings"

	"tractor-game/internal/shared"
)

// OpponentHand pairs a seat with its current hand for throw arbitration.
type OpponentHand struct {
	Seat  int
	Cards []shared.Card
}

// ThrowStanding reports whether a declared throw stands, and if not, who can
// beat which decomposed part.
type ThrowStanding struct {
	Stands     bool
	BeatenBy   int
	BeatenPart *Pattern
}

// CanBeatPart reports whether the hand can beat one decomposed part of a
// throw. Holding cards in the part's suit group forces an in-group comparison;
// a hand void in a non-trump group beats the part with any legal trump
// combination of the same shape, regardless of key.
func CanBeatPart(part Pattern, hand []shared.Card, ctx Context) bool {
	groupCards := filterGroup(hand, part.SuitGroup, ctx)
	if len(groupCards) > 0 {
		top, ok := bestShapeTop(groupCards, part, ctx)
		return ok && top > part.TopKey
	}
	if part.SuitGroup == shared.GroupTrump {
		return false
	}
	trumpCards := filterGroup(hand, shared.GroupTrump, ctx)
	_, ok := bestShapeTop(trumpCards, part, ctx)
	return ok
}

// bestShapeTop finds the strongest combination among the cards matching the
// part's shape (single, pair, or tractor of the same length) and returns its
// top key.
func bestShapeTop(cards []shared.Card, part Pattern, ctx Context) (int, bool) {
	switch part.Kind {
	case Single:
		best := 0
		found := false
		for _, c := range cards {
			if k := ctx.Key(c); !found || k > best {
				best, found = k, true
			}
		}
		return best, found
	case Pair:
		pairs, _ := pairUp(sortByKeyDesc(cards, ctx))
		best := 0
		found := false
		for _, pr := range pairs {
			if k := ctx.Key(pr.cards[0]); !found || k > best {
				best, found = k, true
			}
		}
		return best, found
	case Tractor:
		pairs, _ := pairUp(sortByKeyDesc(cards, ctx))
		withSeq, _ := seqPairsOf(pairs, ctx)
		best := 0
		found := false
		// scan maximal runs; a run of length >= L tops out at its highest pair
		for start := 0; start < len(withSeq); {
			end := start
			for end+1 < len(withSeq) && withSeq[end+1].seq == withSeq[end].seq+1 {
				end++
			}
			if end-start+1 >= part.Length {
				if k := ctx.Key(withSeq[end].pair.cards[0]); !found || k > best {
					best, found = k, true
				}
			}
			start = end + 1
		}
		return best, found
	}
	return 0, false
}

// CheckThrowStanding iterates opponents, then the throw's decomposed parts;
// the first part any opponent can beat makes the throw fall.
func CheckThrowStanding(throw Pattern, opponents []OpponentHand, ctx Context) ThrowStanding {
	for _, opp := range opponents {
		for i := range throw.Parts {
			if CanBeatPart(throw.Parts[i], opp.Cards, ctx) {
				part := throw.Parts[i]
				return ThrowStanding{BeatenBy: opp.Seat, BeatenPart: &part}
			}
		}
	}
	return ThrowStanding{Stands: true}
}

// PunishThrow selects the part a fallen throw is punished down to: the lowest
// single, else the lowest pair, else the lowest tractor. Exactly the first
// non-empty bucket in that priority order is consulted.
func PunishThrow(throw Pattern, ctx Context) Pattern {
	for _, kind := range []Kind{Single, Pair, Tractor} {
		var chosen *Pattern
		for i := range throw.Parts {
			part := &throw.Parts[i]
			if part.Kind != kind {
				continue
			}
			if chosen == nil || lowerPart(*part, *chosen) {
				chosen = part
			}
		}
		if chosen != nil {
			return *chosen
		}
	}
	// decomposition always yields at least one part for a non-empty throw
	return throw
}

// lowerPart orders same-kind parts by key ascending, sorted ids as tie-break.
func lowerPart(a, b Pattern) bool {
	if a.TopKey != b.TopKey {
		return a.TopKey < b.TopKey
	}
	return sortedIDKey(a.Cards) < sortedIDKey(b.Cards)
}

func sortedIDKey(cards []shared.Card) string {
	ids := idsOf(cards)
	sort.Strings(ids)
	return strings.Join(ids, ",")
}
