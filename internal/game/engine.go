package game

import (
	"time"

	"tractor-game/internal/protocol"
	"tractor-game/internal/rules"
	"tractor-game/internal/shared"

	"github.com/google/uuid"
)

// Phase represents the round state machine's current phase.
type Phase string

const (
	PhaseDealing    Phase = "DEALING"
	PhaseFlipTrump  Phase = "FLIP_TRUMP"
	PhaseBuryKitty  Phase = "BURY_KITTY"
	PhaseTrickPlay  Phase = "TRICK_PLAY"
	PhaseRoundScore Phase = "ROUND_SCORE"
	PhaseGameOver   Phase = "GAME_OVER"
)

// NumSeats is the fixed table size; seats 0/2 and 1/3 form the two teams.
const NumSeats = 4

// DefaultKittySize is the buried card count for a four-seat double-deck game.
const DefaultKittySize = 8

// DefaultFlipWindow is the fairness window a trump bid stays open for
// overriding before it can be finalized.
const DefaultFlipWindow = 5 * time.Second

// StartLevel is the level rank both teams begin at.
const StartLevel shared.Rank = "2"

// TopLevel ends the game once a team reaches it.
const TopLevel shared.Rank = "A"

// TrumpCandidate is the currently-winning trump bid during FLIP_TRUMP.
// It is replaced on supersession, never merged. An empty TrumpSuit is a
// no-trump (joker) bid.
type TrumpCandidate struct {
	Seat      int         `json:"seat"`
	Strength  int         `json:"strength"`
	TrumpSuit shared.Suit `json:"trump_suit,omitempty"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// SeatPlay is one seat's contribution to a trick.
type SeatPlay struct {
	Seat    int
	Cards   []shared.Card
	Pattern rules.Pattern
}

// TrickState is the live trick. It is created when bury completes or a trick
// concludes, and replaced at round end.
type TrickState struct {
	LeaderSeat    int
	TurnSeat      int
	LeadPattern   *rules.Pattern
	LeadSuitGroup shared.Group
	Plays         []SeatPlay
}

// TrickRecord is a finished trick in the round history.
type TrickRecord struct {
	Plays       []SeatPlay
	WinnerSeat  int
	Points      int
	LeadPattern rules.Pattern
}

// Engine is the rules-resolution core for one table. It is purely synchronous
// and not safe for concurrent calls; the owning transport must serialize
// access. Illegal actions on public mutators are silent no-ops: no state
// change, no events.
type Engine struct {
	ID         string
	Phase      Phase
	FlipWindow time.Duration

	BankerSeat int // -1 until the first trump is fixed
	Levels     [2]shared.Rank
	LevelRank  shared.Rank
	TrumpSuit  shared.Suit // empty during bidding and in no-trump rounds
	NoTrump    bool

	Hands     [NumSeats][]shared.Card
	Kitty     []shared.Card
	KittySize int

	Candidate     *TrumpCandidate
	BidGeneration int // bumped on every supersession; external timers key on it

	Trick      *TrickState
	Points     [2]int
	PointCards [2][]shared.Card
	History    []TrickRecord

	nextBanker int
	events     []protocol.Event
}

// NewEngine creates an engine for a fresh game: both teams at the start
// level, no banker yet.
func NewEngine() *Engine {
	return &Engine{
		ID:         uuid.NewString(),
		Phase:      PhaseDealing,
		FlipWindow: DefaultFlipWindow,
		BankerSeat: -1,
		Levels:     [2]shared.Rank{StartLevel, StartLevel},
		LevelRank:  StartLevel,
		nextBanker: -1,
	}
}

// TeamOf maps a seat to its team by parity.
func TeamOf(seat int) int {
	return seat % 2
}

func (e *Engine) ctx() rules.Context {
	return rules.Context{LevelRank: e.LevelRank, TrumpSuit: e.TrumpSuit}
}

func (e *Engine) emit(typ string, seat int, payload interface{}) {
	e.events = append(e.events, protocol.Event{Type: typ, Seat: seat, Payload: payload})
}

// DrainEvents returns all pending events and clears the queue. The owning
// transport must call this after every public mutator.
func (e *Engine) DrainEvents() []protocol.Event {
	evs := e.events
	e.events = nil
	return evs
}

// SetHands injects the post-deal hands and kitty and opens trump bidding.
// All four hands must be non-empty and of equal size, with no duplicate ids
// across hands and kitty.
func (e *Engine) SetHands(hands [NumSeats][]shared.Card, kitty []shared.Card) {
	if e.Phase != PhaseDealing || len(kitty) == 0 {
		return
	}
	seen := map[string]bool{}
	for seat := 0; seat < NumSeats; seat++ {
		if len(hands[seat]) == 0 || len(hands[seat]) != len(hands[0]) {
			return
		}
		for _, c := range hands[seat] {
			if seen[c.ID] {
				return
			}
			seen[c.ID] = true
		}
	}
	for _, c := range kitty {
		if seen[c.ID] {
			return
		}
		seen[c.ID] = true
	}

	for seat := 0; seat < NumSeats; seat++ {
		e.Hands[seat] = append([]shared.Card(nil), hands[seat]...)
	}
	e.Kitty = append([]shared.Card(nil), kitty...)
	e.KittySize = len(kitty)

	for seat := 0; seat < NumSeats; seat++ {
		e.emit("deal_hand", seat, protocol.DealHandPayload{Seat: seat, Cards: e.Hands[seat]})
	}
	e.setPhase(PhaseFlipTrump)
	e.emit("request_action", protocol.Broadcast, protocol.RequestActionPayload{Seat: protocol.Broadcast, Action: "flip_trump"})
}

// Bid strength tiers.
const (
	strengthLevelSingle = 10
	strengthLevelPair   = 20
	strengthSJSingle    = 30
	strengthBJSingle    = 40
	strengthSJPair      = 50
	strengthBJPair      = 60
)

// bidStrength grades a flip attempt. Joker bids declare no-trump (empty
// suit); invalid shapes report ok=false.
func (e *Engine) bidStrength(cards []shared.Card) (int, shared.Suit, bool) {
	switch len(cards) {
	case 1:
		c := cards[0]
		switch {
		case c.Rank == shared.BigJoker:
			return strengthBJSingle, "", true
		case c.Rank == shared.SmallJoker:
			return strengthSJSingle, "", true
		case c.Rank == e.LevelRank:
			return strengthLevelSingle, c.Suit, true
		}
	case 2:
		if shared.PairKey(cards[0]) != shared.PairKey(cards[1]) {
			return 0, "", false
		}
		c := cards[0]
		switch {
		case c.Rank == shared.BigJoker:
			return strengthBJPair, "", true
		case c.Rank == shared.SmallJoker:
			return strengthSJPair, "", true
		case c.Rank == e.LevelRank:
			return strengthLevelPair, c.Suit, true
		}
	}
	return 0, "", false
}

// FlipTrump registers a trump bid from a seat. A stronger bid supersedes the
// candidate; the holding seat may upgrade only to a strictly stronger pair of
// the same suit; teammates of the current leader may not reinforce.
func (e *Engine) FlipTrump(seat int, cardIDs []string, now time.Time) {
	if e.Phase != PhaseFlipTrump || seat < 0 || seat >= NumSeats {
		return
	}
	cards, ok := e.cardsFromHand(seat, cardIDs)
	if !ok {
		return
	}
	strength, suit, ok := e.bidStrength(cards)
	if !ok {
		return
	}
	if cand := e.Candidate; cand != nil {
		switch {
		case seat == cand.Seat:
			if len(cards) != 2 || strength <= cand.Strength || suit != cand.TrumpSuit {
				return
			}
		case TeamOf(seat) == TeamOf(cand.Seat):
			return
		default:
			if strength <= cand.Strength {
				return
			}
		}
	}
	e.Candidate = &TrumpCandidate{Seat: seat, Strength: strength, TrumpSuit: suit, ExpiresAt: now.Add(e.FlipWindow)}
	e.BidGeneration++
	e.emit("trump_candidate", protocol.Broadcast, protocol.TrumpCandidatePayload{
		Seat:      seat,
		Strength:  strength,
		TrumpSuit: suit,
		NoTrump:   suit == "",
		ExpiresAt: e.Candidate.ExpiresAt,
	})
}

// FinalizeTrump commits the winning bid once its fairness window has elapsed.
// It is idempotent and a no-op before the window closes, so callers may
// re-invoke it on any schedule.
func (e *Engine) FinalizeTrump(now time.Time) {
	if e.Phase != PhaseFlipTrump || e.Candidate == nil || now.Before(e.Candidate.ExpiresAt) {
		return
	}
	e.TrumpSuit = e.Candidate.TrumpSuit
	e.NoTrump = e.Candidate.TrumpSuit == ""
	if e.BankerSeat < 0 {
		e.BankerSeat = e.Candidate.Seat
		e.LevelRank = e.Levels[TeamOf(e.BankerSeat)]
	}
	e.moveKittyToBanker(false)
}

// FinalizeTrumpFallback resolves a round with no bids at all: trump becomes
// the suit of the first non-joker kitty card.
func (e *Engine) FinalizeTrumpFallback() {
	if e.Phase != PhaseFlipTrump || e.Candidate != nil {
		return
	}
	e.TrumpSuit = ""
	e.NoTrump = true
	for _, c := range e.Kitty {
		if !c.IsJoker() {
			e.TrumpSuit = c.Suit
			e.NoTrump = false
			break
		}
	}
	if e.BankerSeat < 0 {
		e.BankerSeat = 0
		e.LevelRank = e.Levels[TeamOf(e.BankerSeat)]
	}
	e.moveKittyToBanker(true)
}

// moveKittyToBanker hands the kitty to the banker and opens the bury phase.
func (e *Engine) moveKittyToBanker(fallback bool) {
	e.emit("trump_set", protocol.Broadcast, protocol.TrumpSetPayload{
		TrumpSuit:  e.TrumpSuit,
		NoTrump:    e.NoTrump,
		LevelRank:  e.LevelRank,
		BankerSeat: e.BankerSeat,
		Fallback:   fallback,
	})
	e.Hands[e.BankerSeat] = append(e.Hands[e.BankerSeat], e.Kitty...)
	e.Kitty = nil
	e.setPhase(PhaseBuryKitty)
	e.emit("request_action", e.BankerSeat, protocol.RequestActionPayload{Seat: e.BankerSeat, Action: "bury_kitty"})
}

// BuryKitty removes exactly kittySize cards from the banker's hand into the
// kitty and starts trick play with the banker leading.
func (e *Engine) BuryKitty(seat int, cardIDs []string) {
	if e.Phase != PhaseBuryKitty || seat != e.BankerSeat || len(cardIDs) != e.KittySize {
		return
	}
	cards, ok := e.cardsFromHand(seat, cardIDs)
	if !ok {
		return
	}
	e.removeFromHand(seat, cards)
	e.Kitty = cards

	e.Trick = &TrickState{LeaderSeat: e.BankerSeat, TurnSeat: e.BankerSeat}
	e.setPhase(PhaseTrickPlay)
	e.emit("request_action", e.BankerSeat, protocol.RequestActionPayload{Seat: e.BankerSeat, Action: "play_cards"})
}

// Play handles one seat's turn. Leaders may lead any single, pair or tractor;
// a lead that is no basic shape is treated as a throw and arbitrated instead
// of rejected. Followers are checked against the lead and rejected silently
// when illegal.
func (e *Engine) Play(seat int, cardIDs []string) {
	if e.Phase != PhaseTrickPlay || e.Trick == nil || seat != e.Trick.TurnSeat || len(cardIDs) == 0 {
		return
	}
	cards, ok := e.cardsFromHand(seat, cardIDs)
	if !ok {
		return
	}
	ctx := e.ctx()

	if len(e.Trick.Plays) == 0 {
		p := rules.Analyze(cards, ctx)
		if p.Kind != rules.Invalid {
			e.applyPlay(seat, p)
			return
		}
		throw := rules.AnalyzeThrow(cards, ctx)
		if throw.Kind != rules.Throw {
			return
		}
		standing := rules.CheckThrowStanding(throw, e.opponentsOf(seat), ctx)
		if standing.Stands {
			e.applyPlay(seat, throw)
			return
		}
		punished := rules.PunishThrow(throw, ctx)
		actual := rules.Analyze(punished.Cards, ctx)
		e.emit("throw_punished", protocol.Broadcast, protocol.ThrowPunishedPayload{
			Seat:          seat,
			AttemptedIDs:  throw.CardIDs(),
			PlayedIDs:     actual.CardIDs(),
			BeatenBy:      standing.BeatenBy,
			BeatenPartIDs: standing.BeatenPart.CardIDs(),
		})
		// the rest of the attempted throw returns to the hand untouched
		e.applyPlay(seat, actual)
		return
	}

	verdict := rules.ValidateFollowPlay(*e.Trick.LeadPattern, cardIDs, e.Hands[seat], ctx)
	if !verdict.OK {
		return
	}
	e.applyPlay(seat, rules.Analyze(cards, ctx))
}

// opponentsOf returns the two hands of the opposing team, lowest seat first.
func (e *Engine) opponentsOf(seat int) []rules.OpponentHand {
	first := (seat + 1) % NumSeats
	third := (seat + 3) % NumSeats
	if third < first {
		first, third = third, first
	}
	return []rules.OpponentHand{
		{Seat: first, Cards: e.Hands[first]},
		{Seat: third, Cards: e.Hands[third]},
	}
}

// applyPlay transfers the pattern's cards from the hand into the trick as one
// atomic move and advances the turn.
func (e *Engine) applyPlay(seat int, p rules.Pattern) {
	e.removeFromHand(seat, p.Cards)
	if len(e.Trick.Plays) == 0 {
		lead := p
		e.Trick.LeadPattern = &lead
		e.Trick.LeadSuitGroup = p.SuitGroup
	}
	e.Trick.Plays = append(e.Trick.Plays, SeatPlay{Seat: seat, Cards: p.Cards, Pattern: p})
	e.Trick.TurnSeat = (seat + 1) % NumSeats

	e.emit("trick_update", protocol.Broadcast, protocol.TrickUpdatePayload{
		Seat:        seat,
		CardIDs:     p.CardIDs(),
		PatternKind: string(p.Kind),
		NextSeat:    e.Trick.TurnSeat,
	})

	if len(e.Trick.Plays) == NumSeats {
		e.finishTrick()
		return
	}
	e.emit("request_action", e.Trick.TurnSeat, protocol.RequestActionPayload{Seat: e.Trick.TurnSeat, Action: "play_cards"})
}

// finishTrick resolves the winner, captures points and opens the next trick
// or ends the round.
func (e *Engine) finishTrick() {
	lead := *e.Trick.LeadPattern
	best := e.Trick.Plays[0]
	for _, play := range e.Trick.Plays[1:] {
		if competes(play.Pattern, lead) && beats(play.Pattern, best.Pattern) {
			best = play
		}
	}

	points := 0
	var trickCards []shared.Card
	for _, play := range e.Trick.Plays {
		for _, c := range play.Cards {
			points += c.Points()
			trickCards = append(trickCards, c)
		}
	}
	team := TeamOf(best.Seat)
	e.Points[team] += points
	for _, c := range trickCards {
		if c.Points() > 0 {
			e.PointCards[team] = append(e.PointCards[team], c)
		}
	}

	e.History = append(e.History, TrickRecord{
		Plays:       e.Trick.Plays,
		WinnerSeat:  best.Seat,
		Points:      points,
		LeadPattern: lead,
	})
	e.emit("trick_end", protocol.Broadcast, protocol.TrickEndPayload{
		WinnerSeat: best.Seat,
		Points:     points,
		CardIDs:    cardIDs(trickCards),
	})

	if e.handsEmpty() {
		e.finishRound()
		return
	}
	e.Trick = &TrickState{LeaderSeat: best.Seat, TurnSeat: best.Seat}
	e.emit("request_action", best.Seat, protocol.RequestActionPayload{Seat: best.Seat, Action: "play_cards"})
}

// competes reports whether a follower pattern structurally challenges the
// lead: same kind, and for tractors the same length. Throws can only be led,
// so a standing throw is never outranked by a follower.
func competes(p, lead rules.Pattern) bool {
	if p.Kind != lead.Kind {
		return false
	}
	if lead.Kind == rules.Tractor && p.Length != lead.Length {
		return false
	}
	return true
}

// beats compares a competing pattern against the current best: trump beats
// non-trump, same group compares top keys, exact ties keep the earlier play.
func beats(p, best rules.Pattern) bool {
	if p.SuitGroup == best.SuitGroup {
		return p.TopKey > best.TopKey
	}
	return p.SuitGroup == shared.GroupTrump
}

// StartNextRound resets per-round state for the next deal. The banker decided
// at round end takes over and the level rank follows their team's level.
func (e *Engine) StartNextRound() {
	if e.Phase != PhaseRoundScore || e.nextBanker < 0 {
		return
	}
	e.BankerSeat = e.nextBanker
	e.LevelRank = e.Levels[TeamOf(e.BankerSeat)]
	e.TrumpSuit = ""
	e.NoTrump = false
	e.Candidate = nil
	e.Trick = nil
	e.Points = [2]int{}
	e.PointCards = [2][]shared.Card{}
	e.History = nil
	e.Hands = [NumSeats][]shared.Card{}
	e.Kitty = nil
	e.setPhase(PhaseDealing)
}

func (e *Engine) setPhase(p Phase) {
	e.Phase = p
	e.emit("phase_change", protocol.Broadcast, protocol.PhaseChangePayload{Phase: string(p)})
}

func (e *Engine) handsEmpty() bool {
	for seat := 0; seat < NumSeats; seat++ {
		if len(e.Hands[seat]) > 0 {
			return false
		}
	}
	return true
}

// cardsFromHand resolves ids against a seat's hand, rejecting duplicates and
// cards the seat does not own.
func (e *Engine) cardsFromHand(seat int, ids []string) ([]shared.Card, bool) {
	byID := make(map[string]shared.Card, len(e.Hands[seat]))
	for _, c := range e.Hands[seat] {
		byID[c.ID] = c
	}
	seen := make(map[string]bool, len(ids))
	out := make([]shared.Card, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			return nil, false
		}
		seen[id] = true
		c, ok := byID[id]
		if !ok {
			return nil, false
		}
		out = append(out, c)
	}
	return out, true
}

// removeFromHand drops the given cards from a seat's hand in place.
func (e *Engine) removeFromHand(seat int, cards []shared.Card) {
	drop := make(map[string]bool, len(cards))
	for _, c := range cards {
		drop[c.ID] = true
	}
	hand := e.Hands[seat][:0]
	for _, c := range e.Hands[seat] {
		if !drop[c.ID] {
			hand = append(hand, c)
		}
	}
	e.Hands[seat] = hand
}

func cardIDs(cards []shared.Card) []string {
	ids := make([]string, len(cards))
	for i, c := range cards {
		ids[i] = c.ID
	}
	return ids
}
