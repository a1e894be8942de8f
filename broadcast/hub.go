package broadcast

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-set/v2"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 256
)

// Conn is the part of *websocket.Conn the hub needs.
type Conn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	Close() error
}

// Hub fans events out to websocket clients in this process, grouped by channel.
type Hub struct {
	logger     *slog.Logger
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu       sync.RWMutex
	channels map[string]*set.Set[*Client]
}

var _ Publisher = (*Hub)(nil)

type Client struct {
	hub     *Hub
	id      string
	channel string
	userID  string
	socket  Conn
	send    chan []byte
	// closed is guarded by hub.mu.
	closed bool
}

type clientMessage struct {
	Type string `json:"type"`
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:     logger,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		channels:   make(map[string]*set.Set[*Client]),
	}
}

// Run processes registrations until ctx is cancelled, then disconnects everyone.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			subs, ok := h.channels[client.channel]
			if !ok {
				subs = set.New[*Client](4)
				h.channels[client.channel] = subs
			}
			subs.Insert(client)
			h.mu.Unlock()
			h.logger.Debug("client registered",
				slog.String("client", client.id),
				slog.String("channel", client.channel),
				slog.String("user_id", client.userID))

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()

		case <-ctx.Done():
			h.mu.Lock()
			for _, subs := range h.channels {
				for _, client := range subs.Slice() {
					h.remove(client)
				}
			}
			h.mu.Unlock()
			return
		}
	}
}

// remove must be called with h.mu held.
func (h *Hub) remove(client *Client) {
	subs, ok := h.channels[client.channel]
	if !ok || !subs.Remove(client) {
		return
	}
	if subs.Empty() {
		delete(h.channels, client.channel)
	}
	client.closed = true
	close(client.send)
	h.logger.Debug("client unregistered",
		slog.String("client", client.id),
		slog.String("channel", client.channel))
}

func (h *Hub) Publish(_ context.Context, channel, event string, payload any) error {
	env, err := NewEnvelope(channel, event, payload)
	if err != nil {
		return err
	}
	return h.Deliver(env)
}

// Deliver sends an already built envelope to local subscribers. Clients whose
// buffers are full are dropped.
func (h *Hub) Deliver(env *Envelope) error {
	data, err := env.Encode()
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.channels[env.Channel]
	if !ok {
		return nil
	}
	delivered := 0
	for _, client := range subs.Slice() {
		select {
		case client.send <- data:
			delivered++
		default:
			h.logger.Warn("client send buffer full, disconnecting",
				slog.String("client", client.id),
				slog.String("channel", env.Channel))
			h.remove(client)
		}
	}
	h.logger.Debug("event delivered",
		slog.String("event", env.Type),
		slog.String("channel", env.Channel),
		slog.Int("clients", delivered))
	return nil
}

func (h *Hub) Subscribers(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if subs, ok := h.channels[channel]; ok {
		return subs.Size()
	}
	return 0
}

// Serve registers the connection on channel and starts its pumps.
func (h *Hub) Serve(conn Conn, channel, userID string) *Client {
	client := &Client{
		hub:     h,
		id:      uuid.NewString(),
		channel: channel,
		userID:  userID,
		socket:  conn,
		send:    make(chan []byte, sendBuffer),
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return client
	}

	go client.writePump()
	go client.readPump()

	return client
}

func (c *Client) ID() string { return c.id }

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.socket.Close()
	}()

	c.socket.SetReadLimit(maxMessageSize)
	_ = c.socket.SetReadDeadline(time.Now().Add(pongWait))
	c.socket.SetPongHandler(func(string) error {
		return c.socket.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Info("websocket read error", slog.String("client", c.id), slog.String("error", err.Error()))
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.hub.logger.Debug("ignoring malformed client message", slog.String("client", c.id))
			continue
		}
		c.handleMessage(msg)
	}
}

func (c *Client) handleMessage(msg clientMessage) {
	switch msg.Type {
	case "ping":
		env, err := NewEnvelope(c.channel, "pong", "pong")
		if err != nil {
			return
		}
		data, err := env.Encode()
		if err != nil {
			return
		}
		c.hub.mu.RLock()
		defer c.hub.mu.RUnlock()
		if c.closed {
			return
		}
		select {
		case c.send <- data:
		default:
		}
	default:
		c.hub.logger.Debug("unknown client message",
			slog.String("type", msg.Type),
			slog.String("client", c.id))
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.socket.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.socket.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.socket.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
