package sse

import (
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/wavebreaker/wavebreaker/internal/logger"
)

type Event string

const (
	// EventDethroned tells a player somebody beat their reigning top
	// score on a song.
	EventDethroned Event = "Dethroned"
	// EventRivalAdded tells a player somebody declared them a rival.
	EventRivalAdded Event = "RivalAdded"
)

type Message struct {
	Channel string `json:"channel"`
	Event   Event  `json:"event"`
	Data    any    `json:"data,omitempty"`
}

// PlayerChannel names the per-player notification channel.
func PlayerChannel(playerID int32) string {
	return "player:" + strconv.Itoa(int(playerID))
}

type Client struct {
	ID       uuid.UUID
	PlayerID int32
	Outbound chan Message
	done     chan struct{}
	closeOnce sync.Once
}

func (c *Client) Done() <-chan struct{} { return c.done }

func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// Hub fans notification messages out to connected SSE clients,
// keyed by channel name.
type Hub struct {
	mu            sync.RWMutex
	log           *logger.Logger
	subscriptions map[string]map[*Client]bool
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		log:           log.With("component", "SSEHub"),
		subscriptions: make(map[string]map[*Client]bool),
	}
}

// Subscribe registers a new client listening on the player's channel.
func (h *Hub) Subscribe(playerID int32) *Client {
	client := &Client{
		ID:       uuid.New(),
		PlayerID: playerID,
		Outbound: make(chan Message, 16),
		done:     make(chan struct{}),
	}

	channel := PlayerChannel(playerID)
	h.mu.Lock()
	clients, exists := h.subscriptions[channel]
	if !exists {
		clients = make(map[*Client]bool)
		h.subscriptions[channel] = clients
	}
	clients[client] = true
	h.mu.Unlock()

	h.log.Debug("SSE client subscribed", "clientID", client.ID, "channel", channel)
	return client
}

func (h *Hub) Unsubscribe(client *Client) {
	channel := PlayerChannel(client.PlayerID)
	h.mu.Lock()
	if clients, exists := h.subscriptions[channel]; exists {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.subscriptions, channel)
		}
	}
	h.mu.Unlock()
	client.close()
	h.log.Debug("SSE client unsubscribed", "clientID", client.ID, "channel", channel)
}

// Publish delivers a message to every client on its channel. Slow
// clients are skipped rather than blocking the publisher.
func (h *Hub) Publish(msg Message) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.subscriptions[msg.Channel]))
	for c := range h.subscriptions[msg.Channel] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		select {
		case c.Outbound <- msg:
		default:
			h.log.Warn("Dropping SSE message for slow client", "clientID", c.ID, "channel", msg.Channel)
		}
	}
}
