package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"collab-notepad-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const clusterChannel = "collab_events"

// UpdateNoteFrame is the outbound realtime edit event. It carries content
// only; broadcast never touches the note store.
type UpdateNoteFrame struct {
	Event   string    `json:"event"`
	NoteId  uuid.UUID `json:"note_id"`
	Content string    `json:"content"`
}

// clusterFrame is the payload relayed through Redis so other instances can
// fan out to their local room members. Origin is the sending connection id,
// used to keep the sender excluded everywhere.
type clusterFrame struct {
	NoteId       string          `json:"note_id,omitempty"`
	TargetUserId string          `json:"target_user_id,omitempty"`
	Origin       string          `json:"origin,omitempty"`
	Message      json.RawMessage `json:"message"`
}

// Hub owns all room membership state. Rooms map a note id to the sessions
// currently subscribed to it; the user index serves targeted notification
// pushes (multi-device). Callers never see the raw maps.
type Hub struct {
	// UserID -> connections (multi-device)
	clients map[uuid.UUID][]*Client

	// Note id -> room members
	rooms map[uuid.UUID]map[*Client]struct{}

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Lock for safe map access
	mu sync.RWMutex

	// Redis connection for cross-instance fan-out (optional)
	rdb *redis.Client

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		rooms:      make(map[uuid.UUID]map[*Client]struct{}),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client.UserID] = append(h.clients[client.UserID], client)
	h.mu.Unlock()
	h.logger.Info("Hub", "Client registered", map[string]interface{}{"user_id": client.UserID, "conn_id": client.ConnID})
}

// removeClient drops the connection from the user index and from every room
// it joined, so a dropped connection never leaves dangling membership.
func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[client.UserID]
	if !ok {
		return
	}

	found := false
	for i, c := range clients {
		if c == client {
			h.clients[client.UserID] = append(clients[:i], clients[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		return
	}
	if len(h.clients[client.UserID]) == 0 {
		delete(h.clients, client.UserID)
	}

	for noteId := range client.rooms {
		if members, ok := h.rooms[noteId]; ok {
			delete(members, client)
			if len(members) == 0 {
				delete(h.rooms, noteId)
			}
		}
	}
	client.rooms = make(map[uuid.UUID]struct{})

	close(client.Send)
	h.logger.Info("Hub", "Client unregistered", map[string]interface{}{"user_id": client.UserID, "conn_id": client.ConnID})
}

// Join subscribes the session to a note's room. Idempotent: joining twice
// leaves membership identical to joining once. The room is created on first
// join and destroyed when the last member leaves.
func (h *Hub) Join(client *Client, noteId uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[noteId]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[noteId] = members
	}
	members[client] = struct{}{}
	client.rooms[noteId] = struct{}{}
}

// Leave removes the session from a note's room.
func (h *Hub) Leave(client *Client, noteId uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if members, ok := h.rooms[noteId]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, noteId)
		}
	}
	delete(client.rooms, noteId)
}

// BroadcastEdit relays content to every session in the note's room except
// the sender. Best-effort: recipients with a full send buffer are dropped
// without failing the sender. Nothing is persisted here.
func (h *Hub) BroadcastEdit(sender *Client, noteId uuid.UUID, content string) {
	data, _ := json.Marshal(UpdateNoteFrame{
		Event:   "update_note",
		NoteId:  noteId,
		Content: content,
	})

	var dead []*Client

	h.mu.RLock()
	for client := range h.rooms[noteId] {
		if client == sender {
			continue
		}
		select {
		case client.Send <- data:
		default:
			dead = append(dead, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range dead {
		h.logger.Warn("Hub", "Client send buffer full, dropping connection", map[string]interface{}{"user_id": client.UserID})
		h.unregister <- client
	}

	var origin string
	if sender != nil {
		origin = sender.ConnID.String()
	}
	h.publishToCluster(clusterFrame{
		NoteId:  noteId.String(),
		Origin:  origin,
		Message: data,
	})
}

// SendToUser pushes a payload to every connection of one user.
func (h *Hub) SendToUser(userId uuid.UUID, payload []byte) {
	var dead []*Client

	h.mu.RLock()
	for _, client := range h.clients[userId] {
		select {
		case client.Send <- payload:
		default:
			dead = append(dead, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range dead {
		h.unregister <- client
	}

	h.publishToCluster(clusterFrame{
		TargetUserId: userId.String(),
		Message:      payload,
	})
}

func (h *Hub) publishToCluster(frame clusterFrame) {
	if h.rdb == nil {
		return
	}
	jsonPayload, _ := json.Marshal(frame)
	h.rdb.Publish(context.Background(), clusterChannel, jsonPayload)
}

// subscribeToRedis delivers frames published by other instances to the
// local room or user, skipping the originating connection if it lives here.
func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var frame clusterFrame
		if err := json.Unmarshal([]byte(msg.Payload), &frame); err != nil {
			h.logger.Warn("Hub", "Cluster frame parse error", map[string]interface{}{"error": err.Error()})
			continue
		}

		switch {
		case frame.NoteId != "":
			noteId, err := uuid.Parse(frame.NoteId)
			if err != nil {
				continue
			}
			h.deliverToRoom(noteId, frame.Origin, frame.Message)
		case frame.TargetUserId != "":
			userId, err := uuid.Parse(frame.TargetUserId)
			if err != nil {
				continue
			}
			h.deliverToUser(userId, frame.Message)
		}
	}
}

func (h *Hub) deliverToRoom(noteId uuid.UUID, origin string, payload []byte) {
	var dead []*Client

	h.mu.RLock()
	for client := range h.rooms[noteId] {
		if origin != "" && client.ConnID.String() == origin {
			continue
		}
		select {
		case client.Send <- payload:
		default:
			dead = append(dead, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range dead {
		h.unregister <- client
	}
}

func (h *Hub) deliverToUser(userId uuid.UUID, payload []byte) {
	var dead []*Client

	h.mu.RLock()
	for _, client := range h.clients[userId] {
		select {
		case client.Send <- payload:
		default:
			dead = append(dead, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range dead {
		h.unregister <- client
	}
}

// roomSize is used by tests and logging; rooms stay encapsulated otherwise.
func (h *Hub) roomSize(noteId uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[noteId])
}
