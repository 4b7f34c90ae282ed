package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"gm-shield-be/internal/pkg/logger"
	"gm-shield-be/internal/progress"

	"github.com/redis/go-redis/v9"
)

// redisChannel carries progress frames between instances.
const redisChannel = "progress_events"

type Hub struct {
	// Registered clients. The value is unused, membership only.
	clients map[*Client]struct{}

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Lock for safe map access
	mu sync.RWMutex

	// Redis connection for cross-instance fan-out, may be nil
	rdb *redis.Client

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]struct{}),
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
			h.clients[client] = struct{}{}
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"source_filter": client.SourceFilter})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastProgress delivers a progress frame to all local clients whose
// filter matches, then publishes it for other instances. Implements
// progress.Sink.
func (h *Hub) BroadcastProgress(event progress.Event) {
	data, _ := json.Marshal(map[string]interface{}{
		"type": "progress",
		"data": event,
	})

	h.deliverLocal(event.SourceId.String(), data)

	if h.rdb != nil {
		payload := map[string]interface{}{
			"source_id": event.SourceId.String(),
			"message":   data,
		}
		jsonPayload, _ := json.Marshal(payload)
		h.rdb.Publish(context.Background(), redisChannel, jsonPayload)
	}
}

func (h *Hub) deliverLocal(sourceId string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		if client.SourceFilter != "" && client.SourceFilter != sourceId {
			continue
		}
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("Hub", "Client send buffer full, dropping connection", nil)
			go func(c *Client) { h.unregister <- c }(client)
		}
	}
}

func (h *Hub) subscribeToRedis() {
	// Every instance subscribes to the shared channel and delivers to
	// whichever clients it holds locally.
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, redisChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload struct {
			SourceId string          `json:"source_id"`
			Message  json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			h.logger.Warn("Hub", "Redis message parse error", map[string]interface{}{"error": err.Error()})
			continue
		}
		h.deliverLocal(payload.SourceId, payload.Message)
	}
}
