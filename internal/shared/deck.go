package shared

import (
	"log"
	"math/rand/v2"
)

// DeckSize is the fixed card count for a game: two 54-card decks.
const DeckSize = 108

// Deck represents the shuffled draw pile for one round.
type Deck struct {
	Cards []Card
}

// NewDoubleDeck creates the 108-card double deck (two copies of 52 cards plus
// two jokers each). Card ids never collide within a game.
func NewDoubleDeck() *Deck {
	cards := make([]Card, 0, DeckSize)
	for copy := 1; copy <= 2; copy++ {
		for _, suit := range NaturalSuits {
			for _, rank := range NaturalRanks {
				cards = append(cards, NewCard(copy, suit, rank))
			}
		}
		cards = append(cards, NewCard(copy, SuitJoker, SmallJoker))
		cards = append(cards, NewCard(copy, SuitJoker, BigJoker))
	}
	return &Deck{Cards: cards}
}

// Shuffle randomizes the order of cards in the deck.
func (d *Deck) Shuffle() {
	rand.Shuffle(len(d.Cards), func(i, j int) {
		d.Cards[i], d.Cards[j] = d.Cards[j], d.Cards[i]
	})
}

// DealWithKitty distributes the deck evenly across numPlayers hands, holding
// back kittySize cards as the face-down kitty. Returns nil hands if the deck
// does not divide cleanly.
func (d *Deck) DealWithKitty(numPlayers, kittySize int) ([][]Card, []Card) {
	playable := len(d.Cards) - kittySize
	if playable <= 0 || playable%numPlayers != 0 {
		log.Printf("Error: cannot deal %d cards to %d players with a kitty of %d.", len(d.Cards), numPlayers, kittySize)
		return nil, nil
	}
	perHand := playable / numPlayers

	hands := make([][]Card, numPlayers)
	start := 0
	for i := 0; i < numPlayers; i++ {
		hand := make([]Card, perHand)
		copy(hand, d.Cards[start:start+perHand])
		hands[i] = hand
		start += perHand
	}
	kitty := make([]Card, kittySize)
	copy(kitty, d.Cards[start:])

	d.Cards = []Card{}
	return hands, kitty
}
