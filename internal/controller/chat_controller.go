package controller

import (
	"bufio"
	"encoding/json"
	"fmt"

	"docinsight-be/internal/dto"
	"docinsight-be/internal/pkg/serverutils"
	"docinsight-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Query(ctx *fiber.Ctx) error
	StreamQuery(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
	ListSessions(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
}

func NewChatController(chatService service.IChatService) IChatController {
	return &chatController{
		chatService: chatService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Post("query", c.Query)
	h.Post("query/stream", c.StreamQuery)
	h.Get("health", c.Health)
	h.Get("sessions", c.ListSessions)
	h.Get("sessions/:id/history", c.History)
	h.Delete("sessions/:id", c.DeleteSession)
}

func (c *chatController) Query(ctx *fiber.Ctx) error {
	var req dto.ChatQueryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	err := serverutils.ValidateRequest(req)
	if err != nil {
		return err
	}

	res, err := c.chatService.Query(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success query chat", res))
}

// writeSSEEvent emits one event in wire format: the event name line, the
// JSON payload on a data line, and a blank terminator line.
func writeSSEEvent(w *bufio.Writer, event string, payload interface{}) bool {
	data, err := json.Marshal(payload)
	if err != nil {
		return false
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return false
	}
	return w.Flush() == nil
}

func (c *chatController) StreamQuery(ctx *fiber.Ctx) error {
	var req dto.ChatQueryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	err := serverutils.ValidateRequest(req)
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, "text/event-stream")
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set(fiber.HeaderConnection, "keep-alive")
	ctx.Set("X-Accel-Buffering", "no")

	// The fasthttp request context outlives the fiber handler and is
	// cancelled when the client disconnects, which aborts the model stream.
	reqCtx := ctx.Context()

	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		c.chatService.StreamQuery(reqCtx, &req, service.StreamCallbacks{
			OnSources: func(event dto.StreamSourcesEvent) {
				writeSSEEvent(w, "sources", event)
			},
			OnChunk: func(delta string) {
				writeSSEEvent(w, "chunk", dto.StreamChunkEvent{Delta: delta})
			},
			OnDone: func(event dto.StreamDoneEvent) {
				writeSSEEvent(w, "done", event)
			},
			OnError: func(message string) {
				writeSSEEvent(w, "error", dto.StreamErrorEvent{Message: message})
			},
		})
	}))

	return nil
}

func (c *chatController) Health(ctx *fiber.Ctx) error {
	res := c.chatService.Health(ctx.Context())
	return ctx.JSON(serverutils.SuccessResponse("Success check chat health", res))
}

func (c *chatController) ListSessions(ctx *fiber.Ctx) error {
	projectId, err := uuid.Parse(ctx.Query("project_id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "project_id is required")
	}

	res, err := c.chatService.ListSessions(ctx.Context(), projectId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list chat sessions", res))
}

func (c *chatController) History(ctx *fiber.Ctx) error {
	idParam := ctx.Params("id")
	id, _ := uuid.Parse(idParam)

	res, err := c.chatService.History(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show chat history", res))
}

func (c *chatController) DeleteSession(ctx *fiber.Ctx) error {
	idParam := ctx.Params("id")
	id, _ := uuid.Parse(idParam)

	err := c.chatService.DeleteSession(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete chat session", nil))
}
