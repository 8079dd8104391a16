package game

import (
	"testing"
	"time"

	"tractor-game/internal/protocol"
	"tractor-game/internal/shared"
)

func card(copy int, suit shared.Suit, rank shared.Rank) shared.Card {
	return shared.NewCard(copy, suit, rank)
}

func eventsOfType(events []protocol.Event, typ string) []protocol.Event {
	var out []protocol.Event
	for _, ev := range events {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

func setHands(t *testing.T, e *Engine, hands [NumSeats][]shared.Card, kitty []shared.Card) []protocol.Event {
	t.Helper()
	e.SetHands(hands, kitty)
	events := e.DrainEvents()
	if e.Phase != PhaseFlipTrump {
		t.Fatalf("phase after deal = %s, want FLIP_TRUMP", e.Phase)
	}
	return events
}

func TestSetHandsOpensBidding(t *testing.T) {
	e := NewEngine()
	hands := [NumSeats][]shared.Card{
		{card(1, shared.Spades, "3")},
		{card(1, shared.Hearts, "4")},
		{card(1, shared.Clubs, "5")},
		{card(1, shared.Diamonds, "6")},
	}
	events := setHands(t, e, hands, []shared.Card{card(1, shared.Spades, "9")})
	if got := len(eventsOfType(events, "deal_hand")); got != NumSeats {
		t.Fatalf("deal_hand events = %d, want %d", got, NumSeats)
	}
	if got := len(eventsOfType(events, "request_action")); got != 1 {
		t.Fatalf("request_action events = %d, want 1", got)
	}
}

func TestSetHandsRejectsBadDeals(t *testing.T) {
	cases := []struct {
		name  string
		hands [NumSeats][]shared.Card
		kitty []shared.Card
	}{
		{
			"unequal hands",
			[NumSeats][]shared.Card{
				{card(1, shared.Spades, "3"), card(1, shared.Spades, "4")},
				{card(1, shared.Hearts, "4")},
				{card(1, shared.Clubs, "5")},
				{card(1, shared.Diamonds, "6")},
			},
			[]shared.Card{card(1, shared.Spades, "9")},
		},
		{
			"duplicate across hands",
			[NumSeats][]shared.Card{
				{card(1, shared.Spades, "3")},
				{card(1, shared.Spades, "3")},
				{card(1, shared.Clubs, "5")},
				{card(1, shared.Diamonds, "6")},
			},
			[]shared.Card{card(1, shared.Spades, "9")},
		},
		{
			"duplicate in kitty",
			[NumSeats][]shared.Card{
				{card(1, shared.Spades, "3")},
				{card(1, shared.Hearts, "4")},
				{card(1, shared.Clubs, "5")},
				{card(1, shared.Diamonds, "6")},
			},
			[]shared.Card{card(1, shared.Spades, "3")},
		},
		{
			"empty kitty",
			[NumSeats][]shared.Card{
				{card(1, shared.Spades, "3")},
				{card(1, shared.Hearts, "4")},
				{card(1, shared.Clubs, "5")},
				{card(1, shared.Diamonds, "6")},
			},
			nil,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			e := NewEngine()
			e.SetHands(c.hands, c.kitty)
			if e.Phase != PhaseDealing {
				t.Fatalf("bad deal accepted, phase = %s", e.Phase)
			}
			if len(e.DrainEvents()) != 0 {
				t.Fatalf("bad deal emitted events")
			}
		})
	}
}

func TestFlipTrumpBiddingWar(t *testing.T) {
	e := NewEngine()
	hands := [NumSeats][]shared.Card{
		{card(1, shared.Spades, "2"), card(1, shared.Clubs, "3")},
		{card(1, shared.Hearts, "2"), card(2, shared.Hearts, "2")},
		{card(1, shared.SuitJoker, shared.SmallJoker), card(2, shared.SuitJoker, shared.SmallJoker)},
		{card(1, shared.SuitJoker, shared.BigJoker), card(2, shared.SuitJoker, shared.BigJoker)},
	}
	setHands(t, e, hands, []shared.Card{card(1, shared.Spades, "9")})
	now := time.Now()

	e.FlipTrump(0, []string{"D1_S_2"}, now)
	if e.Candidate == nil || e.Candidate.Strength != 10 || e.Candidate.TrumpSuit != shared.Spades {
		t.Fatalf("single level bid: %+v", e.Candidate)
	}
	if e.BidGeneration != 1 {
		t.Fatalf("generation = %d, want 1", e.BidGeneration)
	}

	// stronger pair from the other team supersedes
	e.FlipTrump(1, []string{"D1_H_2", "D2_H_2"}, now)
	if e.Candidate.Seat != 1 || e.Candidate.Strength != 20 || e.Candidate.TrumpSuit != shared.Hearts {
		t.Fatalf("level pair bid: %+v", e.Candidate)
	}

	// the leader's teammate may not reinforce, even with a stronger bid
	e.FlipTrump(3, []string{"D1_BJ"}, now)
	if e.Candidate.Seat != 1 || e.BidGeneration != 2 {
		t.Fatalf("teammate reinforcement accepted: %+v gen %d", e.Candidate, e.BidGeneration)
	}

	// a joker pair from the other team declares no-trump
	e.FlipTrump(2, []string{"D1_SJ", "D2_SJ"}, now)
	if e.Candidate.Seat != 2 || e.Candidate.Strength != 50 || e.Candidate.TrumpSuit != "" {
		t.Fatalf("joker pair bid: %+v", e.Candidate)
	}
	if e.BidGeneration != 3 {
		t.Fatalf("generation = %d, want 3", e.BidGeneration)
	}

	// a weaker counter changes nothing
	e.FlipTrump(0, []string{"D1_S_2"}, now)
	if e.Candidate.Seat != 2 || e.BidGeneration != 3 {
		t.Fatalf("weak counter accepted: %+v gen %d", e.Candidate, e.BidGeneration)
	}

	// seat 3 is no longer blocked once the lead changed teams: the big joker
	// pair tops the ladder
	e.FlipTrump(3, []string{"D1_BJ", "D2_BJ"}, now)
	if e.Candidate.Seat != 3 || e.Candidate.Strength != 60 || e.Candidate.TrumpSuit != "" {
		t.Fatalf("big joker pair bid: %+v", e.Candidate)
	}
	if e.BidGeneration != 4 {
		t.Fatalf("generation = %d, want 4", e.BidGeneration)
	}
}

func TestFlipTrumpSameSeatUpgrade(t *testing.T) {
	e := NewEngine()
	hands := [NumSeats][]shared.Card{
		{card(1, shared.Spades, "2"), card(2, shared.Spades, "2")},
		{card(1, shared.Hearts, "2"), card(2, shared.Hearts, "2")},
		{card(1, shared.Clubs, "5"), card(1, shared.Clubs, "6")},
		{card(1, shared.Diamonds, "5"), card(1, shared.Diamonds, "6")},
	}
	setHands(t, e, hands, []shared.Card{card(1, shared.Spades, "9")})
	now := time.Now()

	e.FlipTrump(0, []string{"D1_S_2"}, now)
	// upgrading to the same suit's pair is allowed
	e.FlipTrump(0, []string{"D1_S_2", "D2_S_2"}, now)
	if e.Candidate.Strength != 20 || e.Candidate.TrumpSuit != shared.Spades {
		t.Fatalf("same-suit upgrade rejected: %+v", e.Candidate)
	}
	if e.BidGeneration != 2 {
		t.Fatalf("generation = %d, want 2", e.BidGeneration)
	}
	// re-flipping the same pair is not strictly stronger
	e.FlipTrump(0, []string{"D1_S_2", "D2_S_2"}, now)
	if e.BidGeneration != 2 {
		t.Fatalf("non-upgrade bumped the generation to %d", e.BidGeneration)
	}
}

func TestFlipTrumpNoTrumpUpgrade(t *testing.T) {
	e := NewEngine()
	hands := [NumSeats][]shared.Card{
		{card(1, shared.Spades, "2"), card(1, shared.Clubs, "3"), card(1, shared.Clubs, "4"), card(1, shared.Clubs, "6")},
		{card(1, shared.SuitJoker, shared.SmallJoker), card(2, shared.SuitJoker, shared.SmallJoker),
			card(1, shared.SuitJoker, shared.BigJoker), card(2, shared.SuitJoker, shared.BigJoker)},
		{card(1, shared.Diamonds, "5"), card(1, shared.Diamonds, "6"), card(1, shared.Diamonds, "8"), card(1, shared.Diamonds, "9")},
		{card(1, shared.Hearts, "5"), card(1, shared.Hearts, "6"), card(1, shared.Hearts, "8"), card(1, shared.Hearts, "9")},
	}
	setHands(t, e, hands, []shared.Card{card(1, shared.Spades, "9")})
	now := time.Now()

	e.FlipTrump(0, []string{"D1_S_2"}, now)
	e.FlipTrump(1, []string{"D1_SJ", "D2_SJ"}, now)
	if e.Candidate.Seat != 1 || e.Candidate.Strength != 50 || e.Candidate.TrumpSuit != "" {
		t.Fatalf("small joker pair bid: %+v", e.Candidate)
	}

	// the holder may only upgrade with a pair: a lone big joker changes nothing
	e.FlipTrump(1, []string{"D1_BJ"}, now)
	if e.Candidate.Strength != 50 || e.BidGeneration != 2 {
		t.Fatalf("single-card self upgrade accepted: %+v gen %d", e.Candidate, e.BidGeneration)
	}

	// upgrading the no-trump bid itself: small joker pair to big joker pair
	e.FlipTrump(1, []string{"D1_BJ", "D2_BJ"}, now)
	if e.Candidate.Seat != 1 || e.Candidate.Strength != 60 || e.Candidate.TrumpSuit != "" {
		t.Fatalf("big joker pair upgrade rejected: %+v", e.Candidate)
	}
	if e.BidGeneration != 3 {
		t.Fatalf("generation = %d, want 3", e.BidGeneration)
	}
}

func TestFinalizeTrumpWindow(t *testing.T) {
	e := NewEngine()
	hands := [NumSeats][]shared.Card{
		{card(1, shared.Spades, "2"), card(1, shared.Clubs, "3")},
		{card(1, shared.Hearts, "4"), card(1, shared.Hearts, "5")},
		{card(1, shared.Clubs, "5"), card(1, shared.Clubs, "6")},
		{card(1, shared.Diamonds, "5"), card(1, shared.Diamonds, "6")},
	}
	setHands(t, e, hands, []shared.Card{card(1, shared.Spades, "9")})
	now := time.Now()
	e.FlipTrump(0, []string{"D1_S_2"}, now)
	e.DrainEvents()

	e.FinalizeTrump(now.Add(e.FlipWindow / 2))
	if e.Phase != PhaseFlipTrump {
		t.Fatalf("finalized inside the fairness window")
	}
	e.FinalizeTrump(now.Add(e.FlipWindow))
	if e.Phase != PhaseBuryKitty {
		t.Fatalf("phase = %s, want BURY_KITTY", e.Phase)
	}
	if e.BankerSeat != 0 || e.TrumpSuit != shared.Spades || e.LevelRank != "2" {
		t.Fatalf("banker %d trump %s level %s", e.BankerSeat, e.TrumpSuit, e.LevelRank)
	}
	// the kitty moved into the banker's hand
	if len(e.Hands[0]) != 3 || len(e.Kitty) != 0 {
		t.Fatalf("kitty not moved: hand %d kitty %d", len(e.Hands[0]), len(e.Kitty))
	}
	events := e.DrainEvents()
	if len(eventsOfType(events, "trump_set")) != 1 {
		t.Fatalf("missing trump_set event")
	}
}

func TestFinalizeTrumpFallback(t *testing.T) {
	e := NewEngine()
	hands := [NumSeats][]shared.Card{
		{card(1, shared.Spades, "3")},
		{card(1, shared.Hearts, "4")},
		{card(1, shared.Clubs, "5")},
		{card(1, shared.Diamonds, "6")},
	}
	setHands(t, e, hands, []shared.Card{card(1, shared.SuitJoker, shared.SmallJoker), card(1, shared.Hearts, "9")})
	e.FinalizeTrumpFallback()
	// the joker is skipped; the first natural kitty card fixes the trump
	if e.TrumpSuit != shared.Hearts || e.NoTrump {
		t.Fatalf("fallback trump = %s no-trump %v, want hearts", e.TrumpSuit, e.NoTrump)
	}
	if e.BankerSeat != 0 {
		t.Fatalf("fallback banker = %d, want 0", e.BankerSeat)
	}
	if e.Phase != PhaseBuryKitty {
		t.Fatalf("phase = %s, want BURY_KITTY", e.Phase)
	}
}

func TestBuryKittyGate(t *testing.T) {
	e := NewEngine()
	hands := [NumSeats][]shared.Card{
		{card(1, shared.Spades, "3"), card(1, shared.Spades, "4")},
		{card(1, shared.Hearts, "4"), card(1, shared.Hearts, "5")},
		{card(1, shared.Clubs, "5"), card(1, shared.Clubs, "6")},
		{card(1, shared.Diamonds, "5"), card(1, shared.Diamonds, "6")},
	}
	setHands(t, e, hands, []shared.Card{card(1, shared.Spades, "9"), card(1, shared.Clubs, "9")})
	e.FinalizeTrumpFallback()
	e.DrainEvents()

	// wrong seat
	e.BuryKitty(1, []string{"D1_H_4", "D1_H_5"})
	if e.Phase != PhaseBuryKitty {
		t.Fatalf("non-banker bury accepted")
	}
	// wrong count
	e.BuryKitty(0, []string{"D1_S_9"})
	if e.Phase != PhaseBuryKitty {
		t.Fatalf("short bury accepted")
	}
	// card not owned
	e.BuryKitty(0, []string{"D1_H_4", "D1_H_5"})
	if e.Phase != PhaseBuryKitty {
		t.Fatalf("foreign bury accepted")
	}

	e.BuryKitty(0, []string{"D1_S_9", "D1_C_9"})
	if e.Phase != PhaseTrickPlay {
		t.Fatalf("phase = %s, want TRICK_PLAY", e.Phase)
	}
	if len(e.Kitty) != 2 || len(e.Hands[0]) != 2 {
		t.Fatalf("bury left hand %d kitty %d", len(e.Hands[0]), len(e.Kitty))
	}
	if e.Trick == nil || e.Trick.TurnSeat != e.BankerSeat {
		t.Fatalf("banker does not lead")
	}
}

type scriptedPlay struct {
	seat int
	ids  []string
}

// playRound walks a scripted round where every play is expected to be legal.
func playRound(t *testing.T, e *Engine, plays []scriptedPlay) {
	t.Helper()
	for _, p := range plays {
		before := len(e.Hands[p.seat])
		e.Play(p.seat, p.ids)
		if len(e.Hands[p.seat]) != before-len(p.ids) {
			t.Fatalf("seat %d play %v was rejected", p.seat, p.ids)
		}
	}
}

func TestRoundDefendersShutOut(t *testing.T) {
	e := NewEngine()
	hands := [NumSeats][]shared.Card{
		{card(1, shared.Hearts, "2")},
		{card(1, shared.Spades, "5")},
		{card(1, shared.Hearts, "3")},
		{card(1, shared.Clubs, "7")},
	}
	setHands(t, e, hands, []shared.Card{card(1, shared.Spades, "10"), card(1, shared.Clubs, "4")})
	now := time.Now()
	e.FlipTrump(0, []string{"D1_H_2"}, now)
	e.FinalizeTrump(now.Add(e.FlipWindow))
	if e.TrumpSuit != shared.Hearts || e.BankerSeat != 0 {
		t.Fatalf("trump %s banker %d", e.TrumpSuit, e.BankerSeat)
	}
	e.BuryKitty(0, []string{"D1_S_10", "D1_C_4"})
	e.DrainEvents()

	playRound(t, e, []scriptedPlay{
		{0, []string{"D1_H_2"}},
		{1, []string{"D1_S_5"}},
		{2, []string{"D1_H_3"}},
		{3, []string{"D1_C_7"}},
	})

	if e.Phase != PhaseRoundScore {
		t.Fatalf("phase = %s, want ROUND_SCORE", e.Phase)
	}
	// the banker's in-suit level card takes the trick and its 5 points
	if e.Points[0] != 5 || e.Points[1] != 0 {
		t.Fatalf("points = %v", e.Points)
	}

	events := e.DrainEvents()
	results := eventsOfType(events, "round_result")
	if len(results) != 1 {
		t.Fatalf("round_result events = %d", len(results))
	}
	res := results[0].Payload.(protocol.RoundResultPayload)
	if res.AttackerPoints != 0 || res.KittyBonus != 0 {
		t.Fatalf("attacker points %d bonus %d, want 0/0", res.AttackerPoints, res.KittyBonus)
	}
	if res.AdvancingTeam != 0 || res.LevelDelta != 3 {
		t.Fatalf("advancing %d delta %d, want team 0 by 3", res.AdvancingTeam, res.LevelDelta)
	}
	if res.Levels[0] != "5" {
		t.Fatalf("team 0 level = %s, want 5", res.Levels[0])
	}
	// a shut-out keeps the banker role on the team: the partner takes over
	if res.NextBankerSeat != 2 || res.BankerSwapped {
		t.Fatalf("next banker %d swapped %v", res.NextBankerSeat, res.BankerSwapped)
	}

	e.StartNextRound()
	if e.Phase != PhaseDealing || e.BankerSeat != 2 || e.LevelRank != "5" {
		t.Fatalf("next round: phase %s banker %d level %s", e.Phase, e.BankerSeat, e.LevelRank)
	}
}

func TestRoundKittyBonusForAttackers(t *testing.T) {
	e := NewEngine()
	hands := [NumSeats][]shared.Card{
		{card(1, shared.Clubs, "3"), card(1, shared.Hearts, "6")},
		{card(1, shared.Clubs, "A"), card(1, shared.Clubs, "4")},
		{card(1, shared.Diamonds, "4"), card(1, shared.Diamonds, "6")},
		{card(1, shared.Diamonds, "7"), card(1, shared.Diamonds, "9")},
	}
	setHands(t, e, hands, []shared.Card{card(1, shared.Spades, "K"), card(1, shared.Clubs, "5")})
	// nobody bids; the kitty's first card makes spades trump, seat 0 banker
	e.FinalizeTrumpFallback()
	e.BuryKitty(0, []string{"D1_S_K", "D1_C_5"})
	e.DrainEvents()

	playRound(t, e, []scriptedPlay{
		{0, []string{"D1_C_3"}},
		{1, []string{"D1_C_A"}}, // takes the trick for the attackers
		{2, []string{"D1_D_4"}},
		{3, []string{"D1_D_7"}},
		{1, []string{"D1_C_4"}},
		{2, []string{"D1_D_6"}},
		{3, []string{"D1_D_9"}},
		{0, []string{"D1_H_6"}},
	})

	if e.Phase != PhaseRoundScore {
		t.Fatalf("phase = %s, want ROUND_SCORE", e.Phase)
	}
	events := e.DrainEvents()
	reveals := eventsOfType(events, "kitty_reveal")
	if len(reveals) != 1 {
		t.Fatalf("kitty_reveal events = %d, want 1", len(reveals))
	}
	reveal := reveals[0].Payload.(protocol.KittyRevealPayload)
	// single-card last lead doubles the 15 buried points
	if reveal.Multiplier != 2 || reveal.Total != 30 {
		t.Fatalf("multiplier %d total %d, want 2 and 30", reveal.Multiplier, reveal.Total)
	}

	res := eventsOfType(events, "round_result")[0].Payload.(protocol.RoundResultPayload)
	if res.AttackerPoints != 30 || res.KittyBonus != 30 {
		t.Fatalf("attacker points %d bonus %d", res.AttackerPoints, res.KittyBonus)
	}
	// 30 is still under 40: the defenders advance two levels
	if res.AdvancingTeam != 0 || res.LevelDelta != 2 || res.Levels[0] != "4" {
		t.Fatalf("advancing %d delta %d level %s", res.AdvancingTeam, res.LevelDelta, res.Levels[0])
	}
}

func TestPlayRejectionsAreSilent(t *testing.T) {
	e := NewEngine()
	hands := [NumSeats][]shared.Card{
		{card(1, shared.Hearts, "2")},
		{card(1, shared.Spades, "5")},
		{card(1, shared.Hearts, "3")},
		{card(1, shared.Clubs, "7")},
	}
	setHands(t, e, hands, []shared.Card{card(1, shared.Spades, "10"), card(1, shared.Clubs, "4")})
	now := time.Now()
	e.FlipTrump(0, []string{"D1_H_2"}, now)
	e.FinalizeTrump(now.Add(e.FlipWindow))
	e.BuryKitty(0, []string{"D1_S_10", "D1_C_4"})
	e.DrainEvents()

	// out of turn
	e.Play(1, []string{"D1_S_5"})
	if len(e.DrainEvents()) != 0 || len(e.Trick.Plays) != 0 {
		t.Fatalf("out-of-turn play accepted")
	}
	// card not owned
	e.Play(0, []string{"D1_S_5"})
	if len(e.DrainEvents()) != 0 || len(e.Trick.Plays) != 0 {
		t.Fatalf("foreign card accepted")
	}

	e.Play(0, []string{"D1_H_2"})
	e.DrainEvents()
	// seat 2 holds a heart (trump group under hearts trump) and must follow
	e.Play(2, []string{"D1_H_3"})
	if len(e.Trick.Plays) != 1 {
		t.Fatalf("seat 2 played out of turn order")
	}
}

func TestGameOverAtTopLevel(t *testing.T) {
	e := NewEngine()
	e.Levels[0] = "K"
	hands := [NumSeats][]shared.Card{
		{card(1, shared.Spades, "A")},
		{card(1, shared.Clubs, "4")},
		{card(1, shared.Diamonds, "4")},
		{card(1, shared.Clubs, "6")},
	}
	setHands(t, e, hands, []shared.Card{card(1, shared.Spades, "4")})
	e.FinalizeTrumpFallback()
	if e.LevelRank != "K" {
		t.Fatalf("level rank = %s, want the banker team's K", e.LevelRank)
	}
	e.BuryKitty(0, []string{"D1_S_4"})
	e.DrainEvents()

	playRound(t, e, []scriptedPlay{
		{0, []string{"D1_S_A"}},
		{1, []string{"D1_C_4"}},
		{2, []string{"D1_D_4"}},
		{3, []string{"D1_C_6"}},
	})

	if e.Phase != PhaseGameOver {
		t.Fatalf("phase = %s, want GAME_OVER", e.Phase)
	}
	events := e.DrainEvents()
	overs := eventsOfType(events, "game_over")
	if len(overs) != 1 {
		t.Fatalf("game_over events = %d", len(overs))
	}
	over := overs[0].Payload.(protocol.GameOverPayload)
	if over.WinningTeam != 0 || over.Levels[0] != "A" {
		t.Fatalf("winner %d levels %v", over.WinningTeam, over.Levels)
	}
}

func TestRoundOutcomeTiers(t *testing.T) {
	cases := []struct {
		points   int
		delta    int
		attacker bool
		swap     bool
	}{
		{0, 3, false, false},
		{5, 2, false, false},
		{39, 2, false, false},
		{40, 1, false, false},
		{79, 1, false, false},
		{80, 0, false, true},
		{100, 0, false, true},
		{119, 0, false, true},
		{120, 1, true, true},
		{159, 1, true, true},
		{160, 2, true, true},
		{199, 2, true, true},
		{200, 3, true, true},
		{260, 3, true, true},
	}
	for _, c := range cases {
		got := roundOutcome(c.points)
		if got.LevelDelta != c.delta || got.AttackerAdvances != c.attacker || got.BankerSwaps != c.swap {
			t.Errorf("roundOutcome(%d) = %+v, want delta %d attacker %v swap %v",
				c.points, got, c.delta, c.attacker, c.swap)
		}
	}
}

func TestThrowLeadArbitration(t *testing.T) {
	e := NewEngine()
	hands := [NumSeats][]shared.Card{
		{card(1, shared.Clubs, "K"), card(1, shared.Clubs, "3"), card(1, shared.Hearts, "6")},
		{card(1, shared.Clubs, "A"), card(1, shared.Clubs, "4"), card(1, shared.Clubs, "6")},
		{card(1, shared.Diamonds, "4"), card(1, shared.Diamonds, "6"), card(1, shared.Diamonds, "8")},
		{card(1, shared.Diamonds, "7"), card(1, shared.Diamonds, "9"), card(1, shared.Diamonds, "J")},
	}
	setHands(t, e, hands, []shared.Card{card(1, shared.Spades, "8"), card(1, shared.Clubs, "5")})
	e.FinalizeTrumpFallback() // spades trump, seat 0 banker
	e.BuryKitty(0, []string{"D1_S_8", "D1_C_5"})
	e.DrainEvents()

	// seat 0 throws K+3 of clubs; seat 1's ace beats the king part, so the
	// throw is punished down to its lowest single
	e.Play(0, []string{"D1_C_K", "D1_C_3"})
	events := e.DrainEvents()
	punished := eventsOfType(events, "throw_punished")
	if len(punished) != 1 {
		t.Fatalf("throw_punished events = %d, want 1", len(punished))
	}
	pay := punished[0].Payload.(protocol.ThrowPunishedPayload)
	if pay.BeatenBy != 1 {
		t.Fatalf("beaten by %d, want 1", pay.BeatenBy)
	}
	if len(pay.PlayedIDs) != 1 || pay.PlayedIDs[0] != "D1_C_3" {
		t.Fatalf("punished play = %v, want the club 3", pay.PlayedIDs)
	}
	// the king returned to the hand
	if len(e.Hands[0]) != 2 {
		t.Fatalf("hand size %d after punishment, want 2", len(e.Hands[0]))
	}
	for _, c := range e.Hands[0] {
		if c.ID == "D1_C_3" {
			t.Fatalf("punished card still in hand")
		}
	}
}

func TestThrowLeadStands(t *testing.T) {
	e := NewEngine()
	hands := [NumSeats][]shared.Card{
		{card(1, shared.Clubs, "A"), card(1, shared.Clubs, "K"), card(1, shared.Hearts, "6")},
		{card(1, shared.Clubs, "4"), card(1, shared.Clubs, "6"), card(1, shared.Clubs, "7")},
		{card(1, shared.Diamonds, "4"), card(1, shared.Diamonds, "6"), card(1, shared.Diamonds, "8")},
		{card(1, shared.Clubs, "8"), card(1, shared.Clubs, "9"), card(1, shared.Clubs, "10")},
	}
	setHands(t, e, hands, []shared.Card{card(1, shared.Spades, "8"), card(1, shared.Clubs, "5")})
	e.FinalizeTrumpFallback()
	e.BuryKitty(0, []string{"D1_S_8", "D1_C_5"})
	e.DrainEvents()

	// ace and king of clubs are both unbeatable in clubs, and the opponents
	// hold clubs so they cannot trump in
	e.Play(0, []string{"D1_C_A", "D1_C_K"})
	events := e.DrainEvents()
	if len(eventsOfType(events, "throw_punished")) != 0 {
		t.Fatalf("standing throw was punished")
	}
	if len(e.Trick.Plays) != 1 || len(e.Trick.Plays[0].Cards) != 2 {
		t.Fatalf("throw not applied: %+v", e.Trick.Plays)
	}
}
