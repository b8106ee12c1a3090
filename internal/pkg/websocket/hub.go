package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Event types pushed to topic subscribers
const (
	EventTopicUpdated = "topic.updated"
	EventTopicDeleted = "topic.deleted"
	EventReplyCreated = "reply.created"
	EventReplyDeleted = "reply.deleted"
)

// Event is one change of a discussion topic
type Event struct {
	Type      string      `json:"type"`
	TopicID   int64       `json:"topic"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Publisher receives discussion events after they are stored.
type Publisher interface {
	Publish(event Event)
}

type discard struct{}

func (discard) Publish(Event) {}

// Discard is a Publisher that drops every event.
var Discard Publisher = discard{}

// Hub keeps the connected clients of every topic and fans events out to them
type Hub struct {
	// Registered clients organized by topic ID
	clients map[int64]map[*Client]bool
	mu      sync.RWMutex

	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// NewHub creates a Hub. Browsers are accepted from allowedOrigins only;
// "*" accepts every origin and requests without an Origin header always pass.
func NewHub(allowedOrigins []string, logger zerolog.Logger) *Hub {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || origins["*"] || origins[origin]
		},
	}
	return &Hub{
		clients:  make(map[int64]map[*Client]bool),
		upgrader: upgrader,
		logger:   logger,
	}
}

// Serve upgrades the request and subscribes the connection to topicID.
// On failure the upgrader has already answered the request.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, topicID, userID int64) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug().Err(err).Int64("topicID", topicID).Msg("Failed to upgrade connection to WebSocket")
		return err
	}

	client := &Client{
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		userID:  userID,
		topicID: topicID,
		logger:  h.logger,
	}
	h.register(client)

	go client.writePump()
	go client.readPump()
	return nil
}

func (h *Hub) register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.topicID]; !ok {
		h.clients[client.topicID] = make(map[*Client]bool)
	}
	h.clients[client.topicID][client] = true

	h.logger.Info().
		Int64("topicID", client.topicID).
		Int64("userID", client.userID).
		Str("addr", client.conn.RemoteAddr().String()).
		Msg("Client subscribed")
}

func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

// removeLocked drops client and closes its send channel; h.mu must be held.
func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.clients[client.topicID]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, client.topicID)
	}

	h.logger.Info().
		Int64("topicID", client.topicID).
		Int64("userID", client.userID).
		Msg("Client unsubscribed")
}

// Publish sends event to every client of its topic. Clients whose buffer is
// full are dropped. After a topic.deleted event the topic's clients are closed.
func (h *Hub) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().Err(err).Int64("topicID", event.TopicID).Msg("Failed to marshal event for broadcast")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.clients[event.TopicID]
	for client := range clients {
		select {
		case client.send <- data:
		default:
			h.logger.Warn().Int64("userID", client.userID).Msg("Dropping slow subscriber")
			h.removeLocked(client)
		}
	}
	if event.Type == EventTopicDeleted {
		for client := range clients {
			h.removeLocked(client)
		}
	}

	h.logger.Debug().
		Str("type", event.Type).
		Int64("topicID", event.TopicID).
		Int("clientCount", len(clients)).
		Msg("Event broadcast")
}

// ClientCount returns the number of subscribers of a topic
func (h *Hub) ClientCount(topicID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[topicID])
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.clients {
		for client := range clients {
			h.removeLocked(client)
		}
	}
}
