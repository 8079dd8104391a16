package server

import (
	"encoding/json"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"tractor-game/internal/database"
	"tractor-game/internal/protocol"

	"github.com/google/uuid"
)

// clientMessage is a helper struct to pass messages along with the client reference.
type clientMessage struct {
	client  *Client
	message protocol.Message
}

const roomCodeLength = 5 // Length of the unique room code

// Hub manages active WebSocket connections and game rooms.
type Hub struct {
	clients        map[*Client]bool
	rooms          map[string]*Room
	clientToRoom   map[*Client]string
	processMessage chan clientMessage
	register       chan *Client
	unregister     chan *Client
	clientMu       sync.RWMutex
	roomMu         sync.RWMutex
	rng            *rand.Rand
	db             *database.Service
}

// NewHub creates a new Hub instance.
func NewHub(db *database.Service) *Hub {
	source := rand.NewSource(time.Now().UnixNano())
	return &Hub{
		clients:        make(map[*Client]bool),
		rooms:          make(map[string]*Room),
		clientToRoom:   make(map[*Client]string),
		processMessage: make(chan clientMessage),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		rng:            rand.New(source),
		db:             db,
	}
}

// generateRoomCode creates a unique alphanumeric room code.
func (h *Hub) generateRoomCode() string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	for {
		var sb strings.Builder
		for i := 0; i < roomCodeLength; i++ {
			sb.WriteByte(letters[h.rng.Intn(len(letters))])
		}
		code := sb.String()

		h.roomMu.RLock()
		_, exists := h.rooms[code]
		h.roomMu.RUnlock()
		if !exists {
			return code
		}
		log.Printf("Generated room code %s collided, retrying...", code)
	}
}

// Run starts the Hub's main loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			client.ID = uuid.NewString()
			log.Printf("Client %s (%s) connected", client.ID, client.conn.RemoteAddr())
			h.clientMu.Lock()
			h.clients[client] = true
			h.clientMu.Unlock()

		case client := <-h.unregister:
			h.handleUnregister(client)

		case clientMsg := <-h.processMessage:
			h.handleMessage(clientMsg.client, clientMsg.message)
		}
	}
}

// handleUnregister drops a disconnected client. The client is unseated from
// its room first, under the room lock, so that a concurrent room dispatch
// (the trump-window timer runs on its own goroutine) can never write to the
// send channel after it closes.
func (h *Hub) handleUnregister(client *Client) {
	h.clientMu.RLock()
	code, inRoom := h.clientToRoom[client]
	h.clientMu.RUnlock()

	if inRoom {
		h.roomMu.Lock()
		if room, ok := h.rooms[code]; ok {
			if room.RemoveClient(client) {
				delete(h.rooms, code)
				log.Printf("Room %s is empty, deleted.", code)
			} else {
				room.broadcastLobby()
			}
		}
		h.roomMu.Unlock()
	}

	h.clientMu.Lock()
	if _, exists := h.clients[client]; exists {
		delete(h.clients, client)
		delete(h.clientToRoom, client)
		close(client.send)
		log.Printf("Client %s (%s) disconnected", client.ID, client.Name)
	}
	h.clientMu.Unlock()
}

// handleMessage processes a message received from a client.
func (h *Hub) handleMessage(client *Client, msg protocol.Message) {
	switch msg.Type {
	case "create_room":
		h.handleCreateRoom(client, msg)
	case "join_room":
		h.handleJoinRoom(client, msg)
	case "flip_trump", "bury_kitty", "play_cards":
		h.handleGameAction(client, msg)
	case "ping":
		pongMsg, _ := protocol.NewMessage("pong", nil)
		client.send <- pongMsg
	default:
		log.Printf("Received unknown message type '%s' from client %s (%s)", msg.Type, client.ID, client.Name)
		h.sendErrorToClient(client, "Unknown message type.")
	}
}

// handleCreateRoom handles a request to create a new game room.
func (h *Hub) handleCreateRoom(client *Client, msg protocol.Message) {
	h.clientMu.RLock()
	_, alreadyInRoom := h.clientToRoom[client]
	h.clientMu.RUnlock()
	if alreadyInRoom {
		h.sendErrorToClient(client, "Already in a room.")
		return
	}

	var payload protocol.CreateRoomPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil || payload.Name == "" {
		h.sendErrorToClient(client, "Invalid create_room message.")
		return
	}

	code := h.generateRoomCode()
	room := NewRoom(code, h.db)
	client.Name = payload.Name
	room.AddClient(client)

	h.roomMu.Lock()
	h.rooms[code] = room
	h.roomMu.Unlock()

	h.clientMu.Lock()
	h.clientToRoom[client] = code
	h.clientMu.Unlock()

	log.Printf("Client %s (%s) created room %s", client.ID, client.Name, code)

	created, _ := protocol.NewMessage("room_created", protocol.RoomCreatedPayload{RoomCode: code})
	trySend(client, created)
	room.broadcastLobby()
}

// handleJoinRoom handles a request to join an existing room.
func (h *Hub) handleJoinRoom(client *Client, msg protocol.Message) {
	h.clientMu.RLock()
	_, alreadyInRoom := h.clientToRoom[client]
	h.clientMu.RUnlock()
	if alreadyInRoom {
		h.sendJoinError(client, "Already in a room.")
		return
	}

	var payload protocol.JoinRoomPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil || payload.Name == "" || payload.RoomCode == "" {
		h.sendJoinError(client, "Invalid join_room message.")
		return
	}
	code := strings.ToUpper(payload.RoomCode)

	h.roomMu.RLock()
	room, exists := h.rooms[code]
	h.roomMu.RUnlock()
	if !exists {
		h.sendJoinError(client, "Room code not found.")
		return
	}

	client.Name = payload.Name
	if room.AddClient(client) < 0 {
		h.sendJoinError(client, "Room is full or name already taken.")
		return
	}

	h.clientMu.Lock()
	h.clientToRoom[client] = code
	h.clientMu.Unlock()

	log.Printf("Client %s (%s) joined room %s", client.ID, client.Name, code)
	room.broadcastLobby()

	if room.Full() {
		log.Printf("Room %s is full. Starting game...", code)
		room.Start()
	}
}

// handleGameAction forwards game commands to the client's room.
func (h *Hub) handleGameAction(client *Client, msg protocol.Message) {
	h.clientMu.RLock()
	code, inRoom := h.clientToRoom[client]
	h.clientMu.RUnlock()
	if !inRoom {
		h.sendErrorToClient(client, "You are not in a room.")
		return
	}

	h.roomMu.RLock()
	room, exists := h.rooms[code]
	h.roomMu.RUnlock()
	if !exists {
		h.sendErrorToClient(client, "Room not found.")
		return
	}

	var cardIDs []string
	switch msg.Type {
	case "flip_trump":
		var payload protocol.FlipTrumpPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			h.sendErrorToClient(client, "Invalid flip_trump payload.")
			return
		}
		cardIDs = payload.CardIDs
	case "bury_kitty":
		var payload protocol.BuryKittyPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			h.sendErrorToClient(client, "Invalid bury_kitty payload.")
			return
		}
		cardIDs = payload.CardIDs
	case "play_cards":
		var payload protocol.PlayCardsPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			h.sendErrorToClient(client, "Invalid play_cards payload.")
			return
		}
		cardIDs = payload.CardIDs
	}
	room.HandleAction(client, msg.Type, cardIDs)
}

// sendErrorToClient sends a generic error message to a specific client.
func (h *Hub) sendErrorToClient(client *Client, errorMsg string) {
	msgBytes, err := protocol.NewMessage("error", protocol.ErrorPayload{Message: errorMsg})
	if err != nil {
		log.Printf("Error creating error message for client %s: %v", client.ID, err)
		return
	}
	trySend(client, msgBytes)
}

// sendJoinError sends a specific join error message to a client.
func (h *Hub) sendJoinError(client *Client, errorMsg string) {
	msgBytes, err := protocol.NewMessage("join_error", protocol.JoinErrorPayload{Message: errorMsg})
	if err != nil {
		log.Printf("Error creating join_error message for client %s: %v", client.ID, err)
		return
	}
	trySend(client, msgBytes)
}
