package websocket

import (
	"encoding/json"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// InboundFrame is a message from the client over the collab channel.
type InboundFrame struct {
	Event   string    `json:"event"`
	NoteId  uuid.UUID `json:"note_id"`
	Content string    `json:"content"`
}

// Client is a middleman between one websocket connection and the hub.
type Client struct {
	Hub *Hub

	// The websocket connection.
	Conn *websocket.Conn

	// ConnID identifies this connection across instances (cluster relay).
	ConnID uuid.UUID

	// UserID associated with this connection
	UserID uuid.UUID

	// Buffered channel of outbound messages.
	Send chan []byte

	// Rooms this session joined; owned by the hub, guarded by hub.mu.
	rooms map[uuid.UUID]struct{}
}

// readPump pumps messages from the websocket connection to the hub.
// One goroutine per connection, so edits from the same sender reach the hub
// in submission order.
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn("Client", "Unexpected close", map[string]interface{}{"user_id": c.UserID, "error": err.Error()})
			}
			break
		}
		c.handleFrame(data)
	}
}

func (c *Client) handleFrame(data []byte) {
	var frame InboundFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		c.Hub.logger.Debug("Client", "Dropping malformed frame", map[string]interface{}{"user_id": c.UserID})
		return
	}

	switch frame.Event {
	case "join":
		c.Hub.Join(c, frame.NoteId)
	case "leave":
		c.Hub.Leave(c, frame.NoteId)
	case "edit_note":
		c.Hub.BroadcastEdit(c, frame.NoteId, frame.Content)
	default:
		c.Hub.logger.Debug("Client", "Unknown event", map[string]interface{}{"event": frame.Event})
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWs attaches a fresh client to the hub and runs its pumps. The read
// pump runs on the caller's goroutine so the fiber websocket handler stays
// alive for the lifetime of the connection.
func ServeWs(hub *Hub, conn *websocket.Conn, userID uuid.UUID) {
	client := &Client{
		Hub:    hub,
		Conn:   conn,
		ConnID: uuid.New(),
		UserID: userID,
		Send:   make(chan []byte, 256),
		rooms:  make(map[uuid.UUID]struct{}),
	}
	client.Hub.register <- client

	go client.writePump()
	client.readPump()
}
