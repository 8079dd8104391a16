package rules

import (
	"sort"

	"tractor-game/internal/shared"
)

// FollowVerdict is the outcome of validating a follower's proposed play.
// ExpectedIDs is populated only for INSUFFICIENT_TRACTOR_TEMPLATE_MISMATCH so
// clients can correct the play.
type FollowVerdict struct {
	OK          bool     `json:"ok"`
	Reason      Reason   `json:"reason,omitempty"`
	ExpectedIDs []string `json:"expected_ids,omitempty"`
}

func followReject(reason Reason) FollowVerdict {
	return FollowVerdict{Reason: reason}
}

// ValidateFollowPlay decides whether a proposed response to a lead is legal
// given the responder's full hand. It never panics and mutates nothing.
func ValidateFollowPlay(lead Pattern, playedIDs []string, hand []shared.Card, ctx Context) FollowVerdict {
	if len(playedIDs) != lead.Size {
		return followReject(ReasonWrongSize)
	}
	played, reason := resolveIDs(playedIDs, hand)
	if reason != "" {
		return followReject(reason)
	}

	groupCards := filterGroup(hand, lead.SuitGroup, ctx)
	playedGroup := filterGroup(played, lead.SuitGroup, ctx)

	if len(groupCards) == 0 {
		// Void responders may slough anything, except that a trump response
		// to a pair must itself be a pair when a trump pair is held.
		if lead.Kind == Pair && len(played) == 2 &&
			allInGroup(played, shared.GroupTrump, ctx) &&
			holdsPairIn(filterGroup(hand, shared.GroupTrump, ctx)) &&
			Analyze(played, ctx).Kind != Pair {
			return followReject(ReasonTrumpPairResponse)
		}
		return FollowVerdict{OK: true}
	}

	if len(groupCards) < lead.Size {
		// Too few group cards: the play must exhaust them, the rest is free.
		if !containsAllIDs(played, groupCards) {
			return followReject(ReasonMustPlayAllInGroup)
		}
		return FollowVerdict{OK: true}
	}

	// Sufficient group cards: everything played must stay in the group.
	if len(playedGroup) != len(played) {
		return followReject(ReasonMustFollowSuitGroup)
	}

	switch lead.Kind {
	case Pair:
		if holdsPairIn(groupCards) && Analyze(played, ctx).Kind != Pair {
			return followReject(ReasonMustPlayPair)
		}
	case Throw:
		need := lead.PairUnits()
		if avail := pairUnitsIn(groupCards); avail < need {
			need = avail
		}
		if pairUnitsIn(played) < need {
			return followReject(ReasonMustFollowThrowStructure)
		}
	case Tractor:
		return validateTractorFollow(lead, played, groupCards, ctx)
	}
	return FollowVerdict{OK: true}
}

// validateTractorFollow enforces tractor retention: a matching tractor must be
// played whole, otherwise the canonical expected fill applies.
func validateTractorFollow(lead Pattern, played, groupCards []shared.Card, ctx Context) FollowVerdict {
	if longestRunLen(groupCards, ctx) >= lead.Length {
		got := Analyze(played, ctx)
		if got.Kind != Tractor || got.Length != lead.Length {
			return followReject(ReasonMustPlayFullTractor)
		}
		return FollowVerdict{OK: true}
	}
	if pairUnitsIn(groupCards) == 0 {
		// no structure to retain, any same-group cards of the count pass
		return FollowVerdict{OK: true}
	}
	expected := ExpectedTractorFollow(lead, groupCards, ctx)
	if !sameIDSet(played, expected) {
		return FollowVerdict{Reason: ReasonTractorTemplateMismatch, ExpectedIDs: idsOf(expected)}
	}
	return FollowVerdict{OK: true}
}

// ExpectedTractorFollow computes the single canonical response to a tractor
// lead when the group holds pairs but no long-enough tractor: the longest
// consecutive-pair run (up to the lead's pair count), then remaining pairs by
// descending strength, then singles by ascending strength, until the lead's
// size is reached.
func ExpectedTractorFollow(lead Pattern, groupCards []shared.Card, ctx Context) []shared.Card {
	sorted := sortByKeyDesc(groupCards, ctx)
	pairs, singles := pairUp(sorted)
	withSeq, plain := seqPairsOf(pairs, ctx)

	run := bestRun(withSeq)
	if len(run) > lead.Length {
		run = run[len(run)-lead.Length:]
	}

	var expected []shared.Card
	for _, i := range run {
		expected = append(expected, withSeq[i].pair.cards[0], withSeq[i].pair.cards[1])
	}

	rest := append([]cardPair(nil), plain...)
	for i, sp := range withSeq {
		if !containsInt(run, i) {
			rest = append(rest, sp.pair)
		}
	}
	sort.Slice(rest, func(i, j int) bool {
		ki, kj := ctx.Key(rest[i].cards[0]), ctx.Key(rest[j].cards[0])
		if ki != kj {
			return ki > kj
		}
		return rest[i].idKey() < rest[j].idKey()
	})

	need := lead.Size - len(expected)
	for _, pr := range rest {
		if need < 2 {
			break
		}
		expected = append(expected, pr.cards[0], pr.cards[1])
		need -= 2
	}
	if need > 0 {
		asc := sortByKeyDesc(singles, ctx)
		for i := len(asc) - 1; i >= 0 && need > 0; i-- {
			expected = append(expected, asc[i])
			need--
		}
	}
	return expected
}

// longestRunLen returns the length in pairs of the longest consecutive-pair
// run within the cards.
func longestRunLen(cards []shared.Card, ctx Context) int {
	pairs, _ := pairUp(sortByKeyDesc(cards, ctx))
	withSeq, _ := seqPairsOf(pairs, ctx)
	return len(bestRun(withSeq))
}

// pairUnitsIn counts the pairKey pairs a card set contains.
func pairUnitsIn(cards []shared.Card) int {
	pairs, _ := pairUp(cards)
	return len(pairs)
}

// holdsPairIn reports whether the cards contain at least one pair.
func holdsPairIn(cards []shared.Card) bool {
	return pairUnitsIn(cards) > 0
}

// filterGroup keeps the cards belonging to the given suit group.
func filterGroup(cards []shared.Card, group shared.Group, ctx Context) []shared.Card {
	var out []shared.Card
	for _, c := range cards {
		if ctx.Group(c) == group {
			out = append(out, c)
		}
	}
	return out
}

// allInGroup reports whether every card belongs to the given suit group.
func allInGroup(cards []shared.Card, group shared.Group, ctx Context) bool {
	for _, c := range cards {
		if ctx.Group(c) != group {
			return false
		}
	}
	return true
}

// resolveIDs maps card ids to hand cards, rejecting duplicates and foreign ids.
func resolveIDs(ids []string, hand []shared.Card) ([]shared.Card, Reason) {
	byID := make(map[string]shared.Card, len(hand))
	for _, c := range hand {
		byID[c.ID] = c
	}
	seen := make(map[string]bool, len(ids))
	out := make([]shared.Card, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			return nil, ReasonDuplicateCard
		}
		seen[id] = true
		c, ok := byID[id]
		if !ok {
			return nil, ReasonCardNotInHand
		}
		out = append(out, c)
	}
	return out, ""
}

// containsAllIDs reports whether every card of want appears in got.
func containsAllIDs(got, want []shared.Card) bool {
	ids := make(map[string]bool, len(got))
	for _, c := range got {
		ids[c.ID] = true
	}
	for _, c := range want {
		if !ids[c.ID] {
			return false
		}
	}
	return true
}

// sameIDSet reports whether two card sets hold exactly the same ids.
func sameIDSet(a, b []shared.Card) bool {
	if len(a) != len(b) {
		return false
	}
	return containsAllIDs(a, b)
}

func idsOf(cards []shared.Card) []string {
	ids := make([]string, len(cards))
	for i, c := range cards {
		ids[i] = c.ID
	}
	return ids
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
