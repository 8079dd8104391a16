package rules

import (
	"testing"

	"tractor-game/internal/shared"
)

func TestCanBeatPartSingle(t *testing.T) {
	ctx := Context{LevelRank: "2", TrumpSuit: shared.Spades}
	part := Analyze([]shared.Card{card(1, shared.Hearts, "K")}, ctx)

	higher := []shared.Card{card(1, shared.Hearts, "A"), card(1, shared.Clubs, "3")}
	if !CanBeatPart(part, higher, ctx) {
		t.Fatalf("higher in-suit card should beat the part")
	}
	lower := []shared.Card{card(1, shared.Hearts, "4"), card(1, shared.Spades, "A")}
	if CanBeatPart(part, lower, ctx) {
		t.Fatalf("holding hearts forces the in-suit comparison")
	}
	voidWithTrump := []shared.Card{card(1, shared.Spades, "3"), card(1, shared.Clubs, "9")}
	if !CanBeatPart(part, voidWithTrump, ctx) {
		t.Fatalf("a void hand beats with any trump of the same shape")
	}
	voidNoTrump := []shared.Card{card(1, shared.Clubs, "9"), card(1, shared.Diamonds, "4")}
	if CanBeatPart(part, voidNoTrump, ctx) {
		t.Fatalf("a void hand with no trump cannot beat")
	}
}

func TestCanBeatPartPairShape(t *testing.T) {
	ctx := Context{LevelRank: "2", TrumpSuit: shared.Spades}
	part := Analyze([]shared.Card{card(1, shared.Hearts, "K"), card(2, shared.Hearts, "K")}, ctx)

	// void in hearts with loose trump singles: no pair shape, no beat
	looseTrump := []shared.Card{card(1, shared.Spades, "3"), card(1, shared.Spades, "5")}
	if CanBeatPart(part, looseTrump, ctx) {
		t.Fatalf("two loose trumps are not a pair")
	}
	trumpPair := []shared.Card{card(1, shared.Spades, "3"), card(2, shared.Spades, "3")}
	if !CanBeatPart(part, trumpPair, ctx) {
		t.Fatalf("a trump pair beats a non-trump pair part")
	}
	// higher loose hearts cannot beat a pair part either
	looseHearts := []shared.Card{card(1, shared.Hearts, "A"), card(1, shared.Hearts, "Q")}
	if CanBeatPart(part, looseHearts, ctx) {
		t.Fatalf("loose in-suit cards are not a pair")
	}
}

func TestCanBeatPartTrumpPart(t *testing.T) {
	ctx := Context{LevelRank: "2", TrumpSuit: shared.Spades}
	part := Analyze([]shared.Card{card(1, shared.Spades, "K")}, ctx)

	// nothing off-group ever beats a trump part
	offGroup := []shared.Card{card(1, shared.Hearts, "A"), card(1, shared.Clubs, "A")}
	if CanBeatPart(part, offGroup, ctx) {
		t.Fatalf("a hand void in trump cannot beat a trump part")
	}
	levelCard := []shared.Card{card(1, shared.Hearts, "2")}
	if !CanBeatPart(part, levelCard, ctx) {
		t.Fatalf("an off-suit level card outranks the trump king")
	}
}

func TestCheckThrowStanding(t *testing.T) {
	ctx := Context{LevelRank: "2", TrumpSuit: shared.Spades}
	throw := AnalyzeThrow([]shared.Card{
		card(1, shared.Hearts, "K"),
		card(1, shared.Hearts, "9"), card(2, shared.Hearts, "9"),
	}, ctx)

	harmless := []OpponentHand{
		{Seat: 1, Cards: []shared.Card{card(1, shared.Hearts, "4"), card(1, shared.Hearts, "6")}},
		{Seat: 3, Cards: []shared.Card{card(1, shared.Hearts, "7"), card(1, shared.Clubs, "4")}},
	}
	if s := CheckThrowStanding(throw, harmless, ctx); !s.Stands {
		t.Fatalf("throw should stand against weaker hands")
	}

	armed := []OpponentHand{
		{Seat: 1, Cards: []shared.Card{card(1, shared.Hearts, "4"), card(1, shared.Hearts, "6")}},
		{Seat: 3, Cards: []shared.Card{card(1, shared.Hearts, "A"), card(1, shared.Clubs, "4")}},
	}
	s := CheckThrowStanding(throw, armed, ctx)
	if s.Stands {
		t.Fatalf("the heart ace beats the king part")
	}
	if s.BeatenBy != 3 {
		t.Fatalf("beaten by seat %d, want 3", s.BeatenBy)
	}
	if s.BeatenPart == nil || s.BeatenPart.Kind != Single || s.BeatenPart.Cards[0].Rank != "K" {
		t.Fatalf("wrong beaten part: %+v", s.BeatenPart)
	}
}

func TestPunishThrowPicksLowestSingle(t *testing.T) {
	ctx := Context{LevelRank: "2", TrumpSuit: shared.Spades}
	throw := AnalyzeThrow([]shared.Card{
		card(1, shared.Hearts, "A"),
		card(1, shared.Hearts, "3"),
		card(1, shared.Hearts, "9"), card(2, shared.Hearts, "9"),
	}, ctx)
	p := PunishThrow(throw, ctx)
	if p.Kind != Single || p.Cards[0].Rank != "3" {
		t.Fatalf("punished to %s %s, want the 3 single", p.Kind, p.Cards[0].Rank)
	}
}

func TestPunishThrowFallsBackToPairs(t *testing.T) {
	ctx := Context{LevelRank: "2", TrumpSuit: shared.Spades}
	throw := AnalyzeThrow([]shared.Card{
		card(1, shared.Hearts, "K"), card(2, shared.Hearts, "K"),
		card(1, shared.Hearts, "5"), card(2, shared.Hearts, "5"),
	}, ctx)
	p := PunishThrow(throw, ctx)
	if p.Kind != Pair || p.Cards[0].Rank != "5" {
		t.Fatalf("punished to %s %s, want the 5 pair", p.Kind, p.Cards[0].Rank)
	}
}

func TestPunishThrowTractorOnly(t *testing.T) {
	ctx := Context{LevelRank: "2", TrumpSuit: shared.Spades}
	throw := AnalyzeThrow([]shared.Card{
		card(1, shared.Hearts, "9"), card(2, shared.Hearts, "9"),
		card(1, shared.Hearts, "10"), card(2, shared.Hearts, "10"),
	}, ctx)
	p := PunishThrow(throw, ctx)
	if p.Kind != Tractor || p.Length != 2 {
		t.Fatalf("punished to %s, want the whole tractor", p.Kind)
	}
}
