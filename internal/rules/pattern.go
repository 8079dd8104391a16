package rules

import (
	"sort"

	"tractor-game/internal/shared"
)

// Kind classifies a card combination.
type Kind string

const (
	Single  Kind = "SINGLE"
	Pair    Kind = "PAIR"
	Tractor Kind = "TRACTOR"
	Throw   Kind = "THROW"
	Invalid Kind = "INVALID"
)

// Reason enumerates why a combination or proposed play was rejected. The
// codes are part of the client-facing contract and must stay stable.
type Reason string

const (
	ReasonEmpty                  Reason = "EMPTY"
	ReasonMixedSuitGroup         Reason = "MIXED_SUITGROUP"
	ReasonNotPair                Reason = "NOT_PAIR"
	ReasonNotAllPairs            Reason = "NOT_ALL_PAIRS"
	ReasonTractorHasLevelOrJoker Reason = "TRACTOR_HAS_LEVEL_OR_JOKER"
	ReasonNotConsecutive         Reason = "NOT_CONSECUTIVE"
	ReasonOddCount               Reason = "ODD_COUNT"

	ReasonWrongSize                  Reason = "WRONG_SIZE"
	ReasonCardNotInHand              Reason = "CARD_NOT_IN_HAND"
	ReasonDuplicateCard              Reason = "DUPLICATE_CARD"
	ReasonMustFollowSuitGroup        Reason = "MUST_FOLLOW_SUITGROUP"
	ReasonMustPlayAllInGroup         Reason = "MUST_PLAY_ALL_IN_GROUP"
	ReasonTrumpPairResponse          Reason = "TRUMP_RESPONSE_TO_PAIR_MUST_BE_PAIR"
	ReasonMustPlayPair               Reason = "MUST_PLAY_PAIR"
	ReasonMustFollowThrowStructure   Reason = "MUST_FOLLOW_THROW_STRUCTURE"
	ReasonMustPlayFullTractor        Reason = "MUST_PLAY_FULL_TRACTOR"
	ReasonTractorTemplateMismatch    Reason = "INSUFFICIENT_TRACTOR_TEMPLATE_MISMATCH"
)

// Context carries the round parameters every classification depends on.
// An empty TrumpSuit means a no-trump round.
type Context struct {
	LevelRank shared.Rank
	TrumpSuit shared.Suit
}

// Group classifies a card under this context.
func (ctx Context) Group(c shared.Card) shared.Group {
	return shared.SuitGroup(c, ctx.LevelRank, ctx.TrumpSuit)
}

// Key returns the strength key of a card under this context.
func (ctx Context) Key(c shared.Card) int {
	return shared.CardKey(c, ctx.LevelRank, ctx.TrumpSuit)
}

// Seq returns the pair-adjacency rank of a card under this context.
func (ctx Context) Seq(c shared.Card) (int, bool) {
	return shared.SeqRank(c, ctx.LevelRank, ctx.TrumpSuit)
}

// Pattern is the classification of a card set. Length is populated only for
// tractors (count of connected pairs), Parts only for throws (the ordered
// maximal decomposition), Reason only for invalid sets.
type Pattern struct {
	Kind      Kind          `json:"kind"`
	SuitGroup shared.Group  `json:"suit_group"`
	Size      int           `json:"size"`
	Cards     []shared.Card `json:"cards"`
	TopKey    int           `json:"top_key"`
	Length    int           `json:"length,omitempty"`
	Parts     []Pattern     `json:"parts,omitempty"`
	Reason    Reason        `json:"reason,omitempty"`
}

// CardIDs returns the ids of the pattern's cards in their stored order.
func (p Pattern) CardIDs() []string {
	ids := make([]string, len(p.Cards))
	for i, c := range p.Cards {
		ids[i] = c.ID
	}
	return ids
}

// PairUnits counts the pair-shaped units a pattern contains: a pair is one
// unit, a tractor of length L is L units, a throw sums its parts.
func (p Pattern) PairUnits() int {
	switch p.Kind {
	case Pair:
		return 1
	case Tractor:
		return p.Length
	case Throw:
		units := 0
		for _, part := range p.Parts {
			units += part.PairUnits()
		}
		return units
	default:
		return 0
	}
}

func invalidPattern(cards []shared.Card, reason Reason) Pattern {
	return Pattern{Kind: Invalid, Size: len(cards), Cards: cards, Reason: reason}
}

// Analyze classifies a card set as SINGLE, PAIR, TRACTOR or INVALID. It never
// panics; malformed sets come back as INVALID with a reason code. The result
// is invariant to the input order.
func Analyze(cards []shared.Card, ctx Context) Pattern {
	if len(cards) == 0 {
		return invalidPattern(cards, ReasonEmpty)
	}
	group, ok := uniformGroup(cards, ctx)
	if !ok {
		return invalidPattern(cards, ReasonMixedSuitGroup)
	}

	sorted := sortByKeyDesc(cards, ctx)
	p := Pattern{SuitGroup: group, Size: len(sorted), Cards: sorted, TopKey: ctx.Key(sorted[0])}

	switch {
	case len(sorted) == 1:
		p.Kind = Single
		return p
	case len(sorted) == 2:
		if shared.PairKey(sorted[0]) != shared.PairKey(sorted[1]) {
			return invalidPattern(sorted, ReasonNotPair)
		}
		p.Kind = Pair
		return p
	case len(sorted)%2 != 0:
		return invalidPattern(sorted, ReasonOddCount)
	}

	pairs, leftovers := pairUp(sorted)
	if len(leftovers) > 0 {
		return invalidPattern(sorted, ReasonNotAllPairs)
	}
	seqs := make([]int, 0, len(pairs))
	for _, pr := range pairs {
		seq, ok := ctx.Seq(pr.cards[0])
		if !ok {
			return invalidPattern(sorted, ReasonTractorHasLevelOrJoker)
		}
		seqs = append(seqs, seq)
	}
	sort.Ints(seqs)
	for i := 1; i < len(seqs); i++ {
		if seqs[i] != seqs[i-1]+1 {
			return invalidPattern(sorted, ReasonNotConsecutive)
		}
	}
	p.Kind = Tractor
	p.Length = len(pairs)
	return p
}

// AnalyzeThrow validates only suit-group uniformity; any size or shape is
// allowed. The resulting pattern carries the maximal decomposition as Parts.
func AnalyzeThrow(cards []shared.Card, ctx Context) Pattern {
	if len(cards) == 0 {
		return invalidPattern(cards, ReasonEmpty)
	}
	group, ok := uniformGroup(cards, ctx)
	if !ok {
		return invalidPattern(cards, ReasonMixedSuitGroup)
	}
	sorted := sortByKeyDesc(cards, ctx)
	return Pattern{
		Kind:      Throw,
		SuitGroup: group,
		Size:      len(sorted),
		Cards:     sorted,
		TopKey:    ctx.Key(sorted[0]),
		Parts:     BestDecomposition(sorted, ctx),
	}
}

// uniformGroup returns the shared suit group of the cards, or false when the
// set mixes groups.
func uniformGroup(cards []shared.Card, ctx Context) (shared.Group, bool) {
	group := ctx.Group(cards[0])
	for _, c := range cards[1:] {
		if ctx.Group(c) != group {
			return group, false
		}
	}
	return group, true
}

// sortByKeyDesc copies and sorts cards by strength key descending, ids as the
// deterministic tie-break.
func sortByKeyDesc(cards []shared.Card, ctx Context) []shared.Card {
	out := make([]shared.Card, len(cards))
	copy(out, cards)
	sort.SliceStable(out, func(i, j int) bool {
		ki, kj := ctx.Key(out[i]), ctx.Key(out[j])
		if ki != kj {
			return ki > kj
		}
		return out[i].ID < out[j].ID
	})
	return out
}
