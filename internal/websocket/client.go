// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package websocket

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 * 1024
	sendBuffer     = 64
)

// QueryMessage is the payload of a query message.
type QueryMessage struct {
	Query          string `json:"query"`
	ConversationID string `json:"conversationId,omitempty"`
	MaxResults     int    `json:"maxResults,omitempty"`
	// IncludeFollowedUsersPreferences defaults to true when omitted.
	IncludeFollowedUsersPreferences *bool `json:"includeFollowedUsersPreferences,omitempty"`
}

// QueryHandler answers query messages. userID is empty for anonymous
// connections. The returned message is sent back to the asking client.
type QueryHandler interface {
	HandleQuery(ctx context.Context, userID string, query *QueryMessage) Message
}

type inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// clientIDCounter generates unique, monotonically increasing IDs for clients.
var clientIDCounter atomic.Uint64

// Client is a middleman between the websocket connection and the hub
type Client struct {
	id      uint64
	hub     *Hub
	conn    *websocket.Conn
	handler QueryHandler
	userID  string
	logger  zerolog.Logger

	mu     sync.Mutex
	send   chan Message
	closed bool
}

// NewClient creates a client for conn. handler may be nil for broadcast-only
// connections.
func NewClient(hub *Hub, conn *websocket.Conn, handler QueryHandler, userID string) *Client {
	id := clientIDCounter.Add(1)
	return &Client{
		id:      id,
		hub:     hub,
		conn:    conn,
		handler: handler,
		userID:  userID,
		send:    make(chan Message, sendBuffer),
		logger:  hub.logger.With().Uint64("client_id", id).Logger(),
	}
}

// ID returns the client's unique identifier
func (c *Client) ID() uint64 {
	return c.id
}

// Start registers the client and begins reading and writing. ctx bounds
// query handling; it should outlive the HTTP request that upgraded conn.
func (c *Client) Start(ctx context.Context) {
	select {
	case c.hub.register <- c:
	case <-ctx.Done():
		_ = c.conn.Close()
		return
	}
	go c.writePump()
	go c.readPump(ctx)
}

// enqueue queues message without blocking. It reports false when the
// buffer is full or the client is closed.
func (c *Client) enqueue(message Message) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// readPump reads client messages and answers queries in arrival order.
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-ctx.Done():
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
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
				c.logger.Warn().Err(err).Msg("unexpected websocket close error")
			}
			return
		}

		if reply, ok := c.handle(ctx, data); ok && !c.enqueue(reply) {
			c.logger.Warn().Str("message_type", reply.Type).Msg("client send buffer full, dropping reply")
		}
		if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			return
		}
	}
}

// handle returns the reply to one inbound frame, if any.
func (c *Client) handle(ctx context.Context, data []byte) (Message, bool) {
	var in inbound
	if err := json.Unmarshal(data, &in); err != nil {
		return ErrorMessage("BAD_MESSAGE", "message must be a JSON object with a type"), true
	}

	switch in.Type {
	case MessageTypePing:
		return Message{Type: MessageTypePong}, true
	case MessageTypeQuery:
		if c.handler == nil {
			return ErrorMessage("BAD_MESSAGE", "queries are not accepted on this connection"), true
		}
		var q QueryMessage
		if len(in.Data) == 0 || json.Unmarshal(in.Data, &q) != nil {
			return ErrorMessage("BAD_MESSAGE", "query data must be an object"), true
		}
		return c.handler.HandleQuery(ctx, c.userID, &q), true
	default:
		return ErrorMessage("BAD_MESSAGE", "unknown message type "+in.Type), true
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				// The hub closed the channel
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			data, err := json.Marshal(message)
			if err != nil {
				c.logger.Error().Err(err).Str("message_type", message.Type).Msg("failed to encode message")
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
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
