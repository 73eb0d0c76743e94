package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"storepal-voice-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const relayEventsChannel = "relay_events"

// Hub fans live conversation events out to connected observer dashboards.
// Every observer receives every event; there is no per-conversation routing.
type Hub struct {
	// Registered observers by connection id
	clients map[uuid.UUID]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Lock for safe map access
	mu sync.RWMutex

	// Redis connection for cross-instance fanout
	rdb *redis.Client

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID]*Client),
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
			h.mu.Lock()
			h.clients[client.Id] = client
			h.mu.Unlock()
			h.logger.Info("Hub", "Observer registered", map[string]interface{}{"observer_id": client.Id})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.Id]; ok {
				delete(h.clients, client.Id)
				close(client.Send)
				h.logger.Info("Hub", "Observer unregistered", map[string]interface{}{"observer_id": client.Id})
			}
			h.mu.Unlock()
		}
	}
}

// Publish implements the relay's observer contract: it delivers one session
// event to every local observer and mirrors it to other instances via redis.
func (h *Hub) Publish(conversationId, eventType string, data map[string]interface{}) {
	payload, err := json.Marshal(map[string]interface{}{
		"type":            eventType,
		"conversation_id": conversationId,
		"data":            data,
		"emitted_at":      time.Now().UTC(),
	})
	if err != nil {
		return
	}

	h.broadcastLocal(payload)

	if h.rdb != nil {
		h.rdb.Publish(context.Background(), relayEventsChannel, payload)
	}
}

func (h *Hub) broadcastLocal(payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		select {
		case client.Send <- payload:
		default:
			// Slow observer: drop it rather than block the relay.
			go func(c *Client) { h.unregister <- c }(client)
		}
	}
}

func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, relayEventsChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for msg := range ch {
		if !json.Valid([]byte(msg.Payload)) {
			log.Printf("Redis msg parse error: invalid payload on %s", relayEventsChannel)
			continue
		}
		h.broadcastLocal([]byte(msg.Payload))
	}
}
