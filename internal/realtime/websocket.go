package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nathanbarrett/livv-stack-sub000/internal/auth"
	"github.com/nathanbarrett/livv-stack-sub000/internal/events"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
	maxFrameSize = 512

	// PrincipalHeader carries the authenticated principal, set by whatever
	// authentication middleware fronts this server.
	PrincipalHeader = "X-Livv-Principal"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// wireMessage is the JSON frame exchanged with websocket clients.
//
// Server to client: {"type":"event","topic":"board.7","event":{...}},
// plus "connected", "subscribed", "unsubscribed" and "error" confirmations.
// Client to server: {"type":"subscribe","board_id":7} and
// {"type":"unsubscribe","board_id":7}.
type wireMessage struct {
	Type    string        `json:"type"`
	Topic   string        `json:"topic,omitempty"`
	BoardID int           `json:"board_id,omitempty"`
	Event   *events.Event `json:"event,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// Client represents a connected websocket client.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	ctx       context.Context
	principal auth.Principal
	send      chan []byte

	mu     sync.Mutex // Protects topics
	topics map[string]bool
}

// ServeWS upgrades an HTTP request to a websocket connection and registers
// the client with the hub. The client starts with no subscriptions.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		hub:       h,
		conn:      conn,
		ctx:       context.WithoutCancel(r.Context()),
		principal: auth.Principal(r.Header.Get(PrincipalHeader)),
		send:      make(chan []byte, h.sendBuffer),
		topics:    make(map[string]bool),
	}

	h.addClient(client)

	go client.writePump()
	go client.readPump()

	welcome := wireMessage{Type: "connected"}
	if data, err := json.Marshal(welcome); err == nil {
		h.trySend(client, data)
	}
}

func (c *Client) isSubscribed(topic string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.topics[topic]
}

func (c *Client) subscribe(topic string) {
	c.mu.Lock()
	c.topics[topic] = true
	c.mu.Unlock()
}

func (c *Client) unsubscribe(topic string) {
	c.mu.Lock()
	delete(c.topics, topic)
	c.mu.Unlock()
}

// readPump reads subscribe/unsubscribe messages from the client and detects
// disconnects.
func (c *Client) readPump() {
	defer func() {
		// Closing the send channel in removeClient signals writePump to exit;
		// writePump is responsible for closing the connection.
		c.hub.removeClient(c)
	}()

	c.conn.SetReadLimit(maxFrameSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Debug("websocket read error", "error", err)
			}
			return
		}

		var msg wireMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.reply(wireMessage{Type: "error", Error: "malformed message"})
			continue
		}

		switch msg.Type {
		case "subscribe":
			c.handleSubscribe(msg.BoardID)

		case "unsubscribe":
			c.unsubscribe(events.Topic(msg.BoardID))
			c.reply(wireMessage{Type: "unsubscribed", BoardID: msg.BoardID})
		}
	}
}

// handleSubscribe attaches the client to a board topic after the authorizer
// confirms the principal may view the board.
func (c *Client) handleSubscribe(boardID int) {
	if boardID <= 0 {
		c.reply(wireMessage{Type: "error", Error: "subscribe requires a board_id"})
		return
	}

	allowed, err := c.hub.authorizeSubscribe(c, boardID)
	if err != nil {
		slog.Error("subscription authorization failed", "board_id", boardID, "error", err)
		c.reply(wireMessage{Type: "error", BoardID: boardID, Error: "authorization failed"})
		return
	}
	if !allowed {
		c.reply(wireMessage{Type: "error", BoardID: boardID, Error: "not authorized for board"})
		return
	}

	c.subscribe(events.Topic(boardID))
	c.hub.metrics.IncSubscriptions()
	c.reply(wireMessage{Type: "subscribed", BoardID: boardID})
}

func (c *Client) reply(msg wireMessage) {
	if data, err := json.Marshal(msg); err == nil {
		c.hub.trySend(c, data)
	}
}

// writePump writes queued messages to the websocket connection and keeps the
// connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		if err := c.conn.Close(); err != nil {
			slog.Debug("websocket close error", "error", err)
		}
	}()

	for {
		select {
		case message, open := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !open {
				// Hub closed the channel
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// Each message is its own frame so subscribers always receive
			// complete JSON documents.
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

			queued := len(c.send)
			for i := 0; i < queued; i++ {
				if err := c.conn.WriteMessage(websocket.TextMessage, <-c.send); err != nil {
					return
				}
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
