package handler

import (
	"context"

	"docinsight-be/internal/entity"
	"docinsight-be/internal/pkg/logger"
	internalWS "docinsight-be/internal/websocket"
	"docinsight-be/pkg/events"
	pktNats "docinsight-be/pkg/nats"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// StatusHandler pushes ingestion completion updates to websocket watchers.
// It consumes the same bus events the insight analyzer does, on its own
// durable consumers.
type StatusHandler struct {
	subscriber *pktNats.Subscriber
	hub        *internalWS.Hub
	logger     logger.ILogger
}

func NewStatusHandler(subscriber *pktNats.Subscriber, hub *internalWS.Hub, log logger.ILogger) *StatusHandler {
	return &StatusHandler{
		subscriber: subscriber,
		hub:        hub,
		logger:     log,
	}
}

// Start attaches the handler to the event bus. Safe to skip when NATS is not
// configured, the websocket endpoint then stays silent.
func (h *StatusHandler) Start() error {
	if h.subscriber == nil {
		return nil
	}
	if err := h.subscriber.Subscribe("events."+events.TypeDocumentIngested, "status-push-documents", h.handleIngested("document", "document_id")); err != nil {
		return err
	}
	return h.subscriber.Subscribe("events."+events.TypeMeetingIngested, "status-push-meetings", h.handleIngested("meeting", "meeting_id"))
}

func (h *StatusHandler) handleIngested(kind, idKey string) pktNats.EventHandler {
	return func(ctx context.Context, event events.Event) error {
		payload := event.Payload()

		id, err := payloadID(payload, idKey)
		if err != nil {
			h.logger.Warn("StatusHandler", "Malformed event payload", map[string]interface{}{"error": err.Error()})
			return nil // Not retriable
		}
		projectId, err := payloadID(payload, "project_id")
		if err != nil {
			h.logger.Warn("StatusHandler", "Malformed event payload", map[string]interface{}{"error": err.Error()})
			return nil
		}

		chunkCount := 0
		if raw, ok := payload["chunk_count"].(float64); ok {
			chunkCount = int(raw)
		}

		h.hub.Publish(internalWS.StatusUpdate{
			Kind:       kind,
			Id:         id,
			ProjectId:  projectId,
			Status:     entity.DocumentStatusCompleted,
			ChunkCount: chunkCount,
		})
		return nil
	}
}

func payloadID(payload map[string]interface{}, key string) (uuid.UUID, error) {
	raw, ok := payload[key].(string)
	if !ok {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "payload missing "+key)
	}
	return uuid.Parse(raw)
}

// ServeWs upgrades the connection and registers it as a project watcher.
func (h *StatusHandler) ServeWs(c *fiber.Ctx) error {
	projectID, err := uuid.Parse(c.Query("project_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "project_id is required"})
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("StatusHandler", "Starting WebSocket session", map[string]interface{}{"project_id": projectID})
			internalWS.ServeWs(h.hub, conn, projectID)
			h.logger.Info("StatusHandler", "WebSocket session ended", map[string]interface{}{"project_id": projectID})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

// RegisterRoutes registers the websocket endpoint.
func (h *StatusHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws/status", h.ServeWs)
}
