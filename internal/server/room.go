package server

import (
	"log"
	"sync"
	"time"

	"tractor-game/internal/database"
	"tractor-game/internal/game"
	"tractor-game/internal/protocol"
	"tractor-game/internal/shared"

	"github.com/google/uuid"
)

// Room owns exactly one engine instance and serializes every call into it.
// The engine is not safe for concurrent use; everything below runs under the
// room lock, including the trump-window timer callback.
type Room struct {
	Code string

	mu      sync.Mutex
	seats   [game.NumSeats]*Client
	engine  *game.Engine
	started bool
	db      *database.Service

	// trumpTimer fires once per bid generation; superseding bids re-arm it.
	trumpTimer *time.Timer
}

// NewRoom creates an empty lobby room.
func NewRoom(code string, db *database.Service) *Room {
	return &Room{Code: code, db: db}
}

// AddClient seats a client in the lowest free seat. Returns the seat index or
// -1 when the room is full or the name is taken.
func (r *Room) AddClient(c *Client) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return -1
	}
	for _, seated := range r.seats {
		if seated != nil && seated.Name == c.Name {
			return -1
		}
	}
	for seat, seated := range r.seats {
		if seated == nil {
			r.seats[seat] = c
			return seat
		}
	}
	return -1
}

// RemoveClient unseats a client. An active game is forfeited: the room tells
// the remaining players and stops.
func (r *Room) RemoveClient(c *Client) (empty bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	found := false
	for seat, seated := range r.seats {
		if seated == c {
			r.seats[seat] = nil
			found = true
		}
	}
	if found && r.started {
		log.Printf("room %s: player %s left mid-game, forfeiting.", r.Code, c.ID)
		r.stopTrumpTimer()
		r.started = false
		r.engine = nil
		r.broadcast("player_left", protocol.PlayerLeftPayload{PlayerID: c.ID})
	}
	for _, seated := range r.seats {
		if seated != nil {
			return false
		}
	}
	return true
}

// Full reports whether all seats are taken.
func (r *Room) Full() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.seats {
		if c == nil {
			return false
		}
	}
	return true
}

// broadcastLobby sends the current seat list to everyone in the room.
func (r *Room) broadcastLobby() {
	r.mu.Lock()
	defer r.mu.Unlock()
	var infos []protocol.PlayerInfo
	for seat, c := range r.seats {
		if c != nil {
			infos = append(infos, protocol.PlayerInfo{ID: c.ID, Name: c.Name, Seat: seat})
		}
	}
	r.broadcast("lobby_update", protocol.LobbyUpdatePayload{Players: infos})
}

// Start deals a fresh double deck into the engine and opens bidding.
func (r *Room) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return
	}
	r.started = true
	r.engine = game.NewEngine()

	var players []protocol.PlayerInfo
	for seat, c := range r.seats {
		players = append(players, protocol.PlayerInfo{ID: c.ID, Name: c.Name, Seat: seat})
	}
	r.broadcast("game_start", protocol.GameStartPayload{GameID: r.engine.ID, Players: players})

	r.dealLocked()
}

// dealLocked shuffles, deals and arms the first trump window. Lock held.
func (r *Room) dealLocked() {
	deck := shared.NewDoubleDeck()
	deck.Shuffle()
	hands, kitty := deck.DealWithKitty(game.NumSeats, game.DefaultKittySize)
	var seatHands [game.NumSeats][]shared.Card
	copy(seatHands[:], hands)
	r.engine.SetHands(seatHands, kitty)
	r.dispatchLocked(r.engine.DrainEvents())
	r.armTrumpTimerLocked(r.engine.FlipWindow, r.engine.BidGeneration)
}

// HandleAction routes a seat's game command into the engine. Illegal actions
// are silent no-ops inside the engine; clients observe rejection as the
// absence of any resulting event.
func (r *Room) HandleAction(c *Client, action string, cardIDs []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.started || r.engine == nil {
		return
	}
	seat := -1
	for s, seated := range r.seats {
		if seated == c {
			seat = s
		}
	}
	if seat < 0 {
		return
	}

	switch action {
	case "flip_trump":
		before := r.engine.BidGeneration
		r.engine.FlipTrump(seat, cardIDs, time.Now())
		if r.engine.BidGeneration != before {
			cand := r.engine.Candidate
			r.armTrumpTimerLocked(time.Until(cand.ExpiresAt), r.engine.BidGeneration)
		}
	case "bury_kitty":
		r.engine.BuryKitty(seat, cardIDs)
	case "play_cards":
		r.engine.Play(seat, cardIDs)
	default:
		return
	}
	r.dispatchLocked(r.engine.DrainEvents())
	r.afterDispatchLocked()
}

// armTrumpTimerLocked replaces the pending trump-window timer with one keyed
// to the given bid generation. Lock held.
func (r *Room) armTrumpTimerLocked(d time.Duration, generation int) {
	r.stopTrumpTimer()
	if d < 0 {
		d = 0
	}
	r.trumpTimer = time.AfterFunc(d, func() {
		r.trumpWindowFired(generation)
	})
}

func (r *Room) stopTrumpTimer() {
	if r.trumpTimer != nil {
		r.trumpTimer.Stop()
		r.trumpTimer = nil
	}
}

// trumpWindowFired finalizes the trump once the fairness window elapses. A
// fired timer for a superseded candidate is ignored via the generation check.
func (r *Room) trumpWindowFired(generation int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.engine == nil || r.engine.Phase != game.PhaseFlipTrump || generation != r.engine.BidGeneration {
		return
	}
	if r.engine.Candidate == nil {
		r.engine.FinalizeTrumpFallback()
	} else {
		r.engine.FinalizeTrump(time.Now())
	}
	r.dispatchLocked(r.engine.DrainEvents())
}

// afterDispatchLocked reacts to phase landings that need room-side work:
// persisting results and rolling into the next round. Lock held.
func (r *Room) afterDispatchLocked() {
	switch r.engine.Phase {
	case game.PhaseRoundScore:
		r.engine.StartNextRound()
		r.dispatchLocked(r.engine.DrainEvents())
		r.dealLocked()
	case game.PhaseGameOver:
		r.stopTrumpTimer()
	}
}

// dispatchLocked routes a drained event batch to its seats and persists round
// results. Lock held.
func (r *Room) dispatchLocked(events []protocol.Event) {
	for _, ev := range events {
		if ev.Type == "round_result" {
			if payload, ok := ev.Payload.(protocol.RoundResultPayload); ok {
				r.persistRound(payload)
			}
		}
		msg, err := protocol.NewMessage(ev.Type, ev.Payload)
		if err != nil {
			log.Printf("room %s: failed to encode %s event: %v", r.Code, ev.Type, err)
			continue
		}
		if ev.Seat == protocol.Broadcast {
			r.sendAll(msg)
			continue
		}
		if c := r.seats[ev.Seat]; c != nil {
			trySend(c, msg)
		}
	}
}

func (r *Room) persistRound(res protocol.RoundResultPayload) {
	if r.db == nil {
		return
	}
	rec := database.RoundRecord{
		ID:             uuid.NewString(),
		GameID:         r.engine.ID,
		CreatedAt:      time.Now().UTC().Format(time.RFC3339),
		DefenderTeam:   res.DefenderTeam,
		AttackerTeam:   res.AttackerTeam,
		AttackerPoints: res.AttackerPoints,
		KittyBonus:     res.KittyBonus,
		LevelDelta:     res.LevelDelta,
		AdvancingTeam:  res.AdvancingTeam,
		Team0Level:     string(res.Levels[0]),
		Team1Level:     string(res.Levels[1]),
		NextBankerSeat: res.NextBankerSeat,
	}
	for seat, c := range r.seats {
		if c != nil {
			rec.Players[seat] = c.Name
		}
	}
	if err := r.db.InsertRound(rec); err != nil {
		log.Printf("room %s: failed to persist round result: %v", r.Code, err)
	}
}

// broadcast encodes and sends a message to every seat. Lock held by caller.
func (r *Room) broadcast(msgType string, payload interface{}) {
	msg, err := protocol.NewMessage(msgType, payload)
	if err != nil {
		log.Printf("room %s: failed to encode %s: %v", r.Code, msgType, err)
		return
	}
	r.sendAll(msg)
}

func (r *Room) sendAll(msg []byte) {
	for _, c := range r.seats {
		if c != nil {
			trySend(c, msg)
		}
	}
}

// trySend writes without blocking the room; a full channel means the client
// is stalled and the hub will clean it up on disconnect.
func trySend(c *Client, msg []byte) {
	select {
	case c.send <- msg:
	default:
		log.Printf("Failed to send message to client %s (channel full or closed).", c.ID)
	}
}
