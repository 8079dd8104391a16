package protocol

import (
	"encoding/json"
	"time"

	"tractor-game/internal/shared"
)

// Message represents a generic WebSocket message structure.
type Message struct {
	Type    string          `json:"type"`              // Type of the message (e.g., "join_room", "play_cards")
	Payload json.RawMessage `json:"payload,omitempty"` // Raw JSON payload, allows flexible structures
}

// Broadcast marks an event addressed to every seat in the room.
const Broadcast = -1

// Event is one entry of the engine's append-only event queue. The owning
// transport drains the queue after every engine call and routes each event to
// Seat, or to everyone when Seat is Broadcast.
type Event struct {
	Type    string
	Seat    int
	Payload interface{}
}

// --- Client -> Server Payload Structs ---

type CreateRoomPayload struct {
	Name string `json:"name"`
}

type JoinRoomPayload struct {
	Name     string `json:"name"`
	RoomCode string `json:"room_code"`
}

type FlipTrumpPayload struct {
	CardIDs []string `json:"card_ids"`
}

type BuryKittyPayload struct {
	CardIDs []string `json:"card_ids"`
}

type PlayCardsPayload struct {
	CardIDs []string `json:"card_ids"`
}

// --- Server -> Client Payload Structs ---

type RoomCreatedPayload struct {
	RoomCode string `json:"room_code"`
}

type PlayerInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Seat int    `json:"seat"`
}

type LobbyUpdatePayload struct {
	Players []PlayerInfo `json:"players"`
}

type JoinErrorPayload struct {
	Message string `json:"message"`
}

type GameStartPayload struct {
	GameID  string       `json:"game_id"`
	Players []PlayerInfo `json:"players"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

type PlayerLeftPayload struct {
	PlayerID string `json:"player_id"`
}

// --- Engine event payloads ---

type PhaseChangePayload struct {
	Phase string `json:"phase"`
}

type DealHandPayload struct {
	Seat  int           `json:"seat"`
	Cards []shared.Card `json:"cards"`
}

type RequestActionPayload struct {
	Seat   int    `json:"seat"`
	Action string `json:"action"` // "flip_trump", "bury_kitty", "play_cards"
}

type TrumpCandidatePayload struct {
	Seat      int         `json:"seat"`
	Strength  int         `json:"strength"`
	TrumpSuit shared.Suit `json:"trump_suit,omitempty"`
	NoTrump   bool        `json:"no_trump"`
	ExpiresAt time.Time   `json:"expires_at"`
}

type TrumpSetPayload struct {
	TrumpSuit  shared.Suit `json:"trump_suit,omitempty"`
	NoTrump    bool        `json:"no_trump"`
	LevelRank  shared.Rank `json:"level_rank"`
	BankerSeat int         `json:"banker_seat"`
	Fallback   bool        `json:"fallback"`
}

type TrickUpdatePayload struct {
	Seat        int      `json:"seat"`
	CardIDs     []string `json:"card_ids"`
	PatternKind string   `json:"pattern_kind"`
	NextSeat    int      `json:"next_seat"`
}

type TrickEndPayload struct {
	WinnerSeat int      `json:"winner_seat"`
	Points     int      `json:"points"`
	CardIDs    []string `json:"card_ids"`
}

type ThrowPunishedPayload struct {
	Seat          int      `json:"seat"`
	AttemptedIDs  []string `json:"attempted_ids"`
	PlayedIDs     []string `json:"played_ids"`
	BeatenBy      int      `json:"beaten_by"`
	BeatenPartIDs []string `json:"beaten_part_ids"`
}

// KittyStep carries the running total as each kitty card is revealed.
type KittyStep struct {
	CardID     string `json:"card_id"`
	Points     int    `json:"points"`
	Cumulative int    `json:"cumulative"`
}

type KittyRevealPayload struct {
	Cards      []shared.Card `json:"cards"`
	Multiplier int           `json:"multiplier"`
	Steps      []KittyStep   `json:"steps"`
	Total      int           `json:"total"`
}

type PlaySummary struct {
	Seat    int      `json:"seat"`
	CardIDs []string `json:"card_ids"`
}

type TrickSummary struct {
	WinnerSeat int           `json:"winner_seat"`
	Plays      []PlaySummary `json:"plays"`
}

type RoundResultPayload struct {
	DefenderTeam   int              `json:"defender_team"`
	AttackerTeam   int              `json:"attacker_team"`
	AttackerPoints int              `json:"attacker_points"`
	KittyBonus     int              `json:"kitty_bonus"`
	TeamPoints     [2]int           `json:"team_points"`
	PointCards     [2][]shared.Card `json:"point_cards"`
	LevelDelta     int              `json:"level_delta"`
	AdvancingTeam  int              `json:"advancing_team"` // -1 when no level change
	BankerSwapped  bool             `json:"banker_swapped"`
	Levels         [2]shared.Rank   `json:"levels"`
	NextBankerSeat int              `json:"next_banker_seat"`
	Kitty          []shared.Card    `json:"kitty"`
	Tricks         []TrickSummary   `json:"tricks"`
}

type GameOverPayload struct {
	WinningTeam int            `json:"winning_team"`
	Levels      [2]shared.Rank `json:"levels"`
}

// NewMessage builds the JSON wire form of a message.
func NewMessage(msgType string, payload interface{}) ([]byte, error) {
	if payload == nil {
		return json.Marshal(Message{Type: msgType})
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Message{Type: msgType, Payload: payloadBytes})
}
