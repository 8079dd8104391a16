package shared

import "fmt"

// Suit represents the suit of a card. Jokers carry the pseudo-suit SuitJoker.
type Suit string

const (
	Spades    Suit = "S"
	Hearts    Suit = "H"
	Diamonds  Suit = "D"
	Clubs     Suit = "C"
	SuitJoker Suit = "Joker"
)

// NaturalSuits lists the four natural suits in deck order.
var NaturalSuits = []Suit{Spades, Hearts, Diamonds, Clubs}

// Rank represents the rank of a card ("2".."10", "J", "Q", "K", "A", "SJ", "BJ").
type Rank string

const (
	SmallJoker Rank = "SJ"
	BigJoker   Rank = "BJ"
)

// NaturalRanks lists the thirteen natural ranks from low to high.
var NaturalRanks = []Rank{"2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A"}

// rankOrder maps natural ranks to their base strength.
var rankOrder = map[Rank]int{
	"2": 2, "3": 3, "4": 4, "5": 5, "6": 6, "7": 7, "8": 8,
	"9": 9, "10": 10, "J": 11, "Q": 12, "K": 13, "A": 14,
}

// cardPoints maps ranks to their capture value.
var cardPoints = map[Rank]int{
	"5":  5,
	"10": 10,
	"K":  10,
}

// Card represents a single physical card in one of the two decks.
type Card struct {
	ID       string `json:"id"`
	Suit     Suit   `json:"suit"`
	Rank     Rank   `json:"rank"`
	DeckCopy int    `json:"deck_copy"`
}

// NewCard builds a card with its canonical id.
func NewCard(copy int, suit Suit, rank Rank) Card {
	return Card{ID: FormatID(copy, suit, rank), Suit: suit, Rank: rank, DeckCopy: copy}
}

// FormatID renders the stable external identifier: D{copy}_{suit}_{rank},
// or D{copy}_{SJ|BJ} for jokers. Serialization layers must preserve it verbatim.
func FormatID(copy int, suit Suit, rank Rank) string {
	if rank == SmallJoker || rank == BigJoker {
		return fmt.Sprintf("D%d_%s", copy, rank)
	}
	return fmt.Sprintf("D%d_%s_%s", copy, suit, rank)
}

// IsJoker reports whether the card is one of the two jokers.
func (c Card) IsJoker() bool {
	return c.Rank == SmallJoker || c.Rank == BigJoker
}

// Points returns the capture value of the card (5s are worth 5, 10s and Ks 10).
func (c Card) Points() int {
	return cardPoints[c.Rank]
}

// Group identifies the unit by which follow-legality is judged: the trump
// group or one of the natural suits.
type Group string

// GroupTrump is the combined trump group (jokers, level-rank cards and the
// trump suit).
const GroupTrump Group = "TRUMP"

// SuitGroup classifies a card under the given level rank and trump suit.
// An empty trumpSuit means a no-trump round: only jokers and level-rank cards
// are trump.
func SuitGroup(c Card, levelRank Rank, trumpSuit Suit) Group {
	if c.IsJoker() || c.Rank == levelRank {
		return GroupTrump
	}
	if trumpSuit != "" && c.Suit == trumpSuit {
		return GroupTrump
	}
	return Group(c.Suit)
}

// Card key tiers. Natural cards use their plain rank order; trump-suit cards
// sit above every natural card, level cards and jokers above those.
const (
	keyTrumpSuitBase = 500
	keyLevelOffSuit  = 997
	keyLevelInSuit   = 998
	keySmallJoker    = 999
	keyBigJoker      = 1000
)

// CardKey orders cards for sorting and strength comparison. Higher is stronger.
// Off-suit level cards share one key; exact ties keep the earlier play.
func CardKey(c Card, levelRank Rank, trumpSuit Suit) int {
	switch c.Rank {
	case BigJoker:
		return keyBigJoker
	case SmallJoker:
		return keySmallJoker
	case levelRank:
		if trumpSuit != "" && c.Suit == trumpSuit {
			return keyLevelInSuit
		}
		return keyLevelOffSuit
	}
	if trumpSuit != "" && c.Suit == trumpSuit {
		return keyTrumpSuitBase + rankOrder[c.Rank]
	}
	return rankOrder[c.Rank]
}

// Sequence ranks for the trump ordering. Regular trump-suit cards compress to
// 2..13 once the level rank is removed, then the level tiers and jokers stack
// on consecutive integers above them.
const (
	seqLevelOffSuit = 14
	seqLevelInSuit  = 15
	seqSmallJoker   = 16
	seqBigJoker     = 17
)

// SeqRank produces the contiguous ordering used only for pair adjacency when
// detecting tractors. For natural-suit cards, ranks above the level rank shift
// down by one to bridge the gap the level rank leaves behind. Level-rank cards
// and jokers have no value in the natural-suit ordering; in the trump ordering
// they map onto the tiers above the regular trump cards.
func SeqRank(c Card, levelRank Rank, trumpSuit Suit) (int, bool) {
	if SuitGroup(c, levelRank, trumpSuit) != GroupTrump {
		return compressRank(c.Rank, levelRank), true
	}
	switch c.Rank {
	case BigJoker:
		return seqBigJoker, true
	case SmallJoker:
		return seqSmallJoker, true
	case levelRank:
		// with no trump suit there is no in-suit tier; level cards take the
		// upper slot so the ladder up to the jokers stays consecutive
		if trumpSuit == "" || c.Suit == trumpSuit {
			return seqLevelInSuit, true
		}
		return seqLevelOffSuit, true
	}
	if trumpSuit != "" && c.Suit == trumpSuit {
		return compressRank(c.Rank, levelRank), true
	}
	// A card asked for in an ordering it does not belong to has no rank.
	return 0, false
}

// compressRank shifts ranks above the level rank down by one.
func compressRank(r Rank, levelRank Rank) int {
	o := rankOrder[r]
	if o > rankOrder[levelRank] {
		o--
	}
	return o
}

// PairKey identifies cards that may pair: same rank and same physical suit,
// with jokers normalized to their pseudo-suit so only identical jokers pair.
func PairKey(c Card) string {
	if c.IsJoker() {
		return string(SuitJoker) + "_" + string(c.Rank)
	}
	return string(c.Suit) + "_" + string(c.Rank)
}

// NextLevel returns the level rank one step above r, stopping at A.
func NextLevel(r Rank) Rank {
	for i, nr := range NaturalRanks {
		if nr == r {
			if i+1 < len(NaturalRanks) {
				return NaturalRanks[i+1]
			}
			return r
		}
	}
	return r
}

// AdvanceLevel moves a level rank up by steps, never past A.
func AdvanceLevel(r Rank, steps int) Rank {
	for ; steps > 0; steps-- {
		next := NextLevel(r)
		if next == r {
			break
		}
		r = next
	}
	return r
}
