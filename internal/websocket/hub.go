package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"docinsight-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const statusChannel = "ingest_status_events"

// StatusUpdate is pushed to clients watching a project whenever a source
// finishes ingestion.
type StatusUpdate struct {
	Kind       string    `json:"kind"` // document | meeting
	Id         uuid.UUID `json:"id"`
	ProjectId  uuid.UUID `json:"project_id"`
	Status     string    `json:"status"`
	ChunkCount int       `json:"chunk_count,omitempty"`
}

// Hub fans status updates out to websocket clients grouped by project. Redis
// pub/sub carries updates between instances so a client connected anywhere
// sees updates produced by any worker.
type Hub struct {
	// ProjectID -> connected clients (multiple tabs/watchers per project)
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	rdb *redis.Client

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
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
			h.clients[client.ProjectID] = append(h.clients[client.ProjectID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"project_id": client.ProjectID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.ProjectID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.ProjectID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.ProjectID]) == 0 {
					delete(h.clients, client.ProjectID)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish delivers an update to local watchers of the project and relays it
// over Redis for watchers connected to other instances.
func (h *Hub) Publish(update StatusUpdate) {
	data, _ := json.Marshal(map[string]interface{}{
		"type": "ingest_status",
		"data": update,
	})

	h.sendLocal(update.ProjectId, data)

	if h.rdb != nil {
		payload := map[string]interface{}{
			"project_id": update.ProjectId.String(),
			"message":    data,
		}
		jsonPayload, _ := json.Marshal(payload)
		h.rdb.Publish(context.Background(), statusChannel, jsonPayload)
	}
}

func (h *Hub) sendLocal(projectId uuid.UUID, data []byte) {
	h.mu.RLock()
	clients := h.clients[projectId]
	h.mu.RUnlock()

	for _, client := range clients {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("Hub", "Client Send buffer full, dropping connection", map[string]interface{}{"project_id": projectId})
			close(client.Send)
			h.unregister <- client
		}
	}
}

func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, statusChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload struct {
			ProjectID string          `json:"project_id"`
			Message   json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}

		projectId, err := uuid.Parse(payload.ProjectID)
		if err != nil {
			continue
		}

		h.sendLocal(projectId, payload.Message)
	}
}
