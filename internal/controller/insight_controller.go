package controller

import (
	"docinsight-be/internal/dto"
	"docinsight-be/internal/pkg/serverutils"
	"docinsight-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IInsightController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Resolve(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Cleanup(ctx *fiber.Ctx) error
}

type insightController struct {
	insightService service.IInsightService
}

func NewInsightController(insightService service.IInsightService) IInsightController {
	return &insightController{
		insightService: insightService,
	}
}

func (c *insightController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/insight/v1")
	h.Post("", c.Create)
	h.Get("", c.List)
	h.Post("cleanup", c.Cleanup)
	h.Patch(":id/resolve", c.Resolve)
	h.Delete(":id", c.Delete)
}

func (c *insightController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateInsightRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	err := serverutils.ValidateRequest(req)
	if err != nil {
		return err
	}

	res, err := c.insightService.Create(ctx.Context(), &req)
	if err != nil {
		return err
	}

	status := fiber.StatusCreated
	if !res.Inserted {
		// Duplicate content hash, the existing row wins
		status = fiber.StatusOK
	}
	return ctx.Status(status).JSON(serverutils.SuccessResponse("Success create insight", res))
}

func (c *insightController) List(ctx *fiber.Ctx) error {
	projectId, err := uuid.Parse(ctx.Query("project_id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "project_id is required")
	}

	insightType := ctx.Query("type", "")
	severity := ctx.Query("severity", "")

	res, err := c.insightService.List(ctx.Context(), projectId, insightType, severity)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list insights", res))
}

func (c *insightController) Resolve(ctx *fiber.Ctx) error {
	idParam := ctx.Params("id")
	id, _ := uuid.Parse(idParam)

	var req dto.ResolveInsightRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	err := c.insightService.Resolve(ctx.Context(), id, req.Resolved)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success resolve insight", nil))
}

func (c *insightController) Delete(ctx *fiber.Ctx) error {
	idParam := ctx.Params("id")
	id, _ := uuid.Parse(idParam)

	err := c.insightService.Delete(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete insight", nil))
}

func (c *insightController) Cleanup(ctx *fiber.Ctx) error {
	res, err := c.insightService.CleanupDuplicates(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success cleanup insights", res))
}
