package controller

import (
	"docinsight-be/internal/dto"
	"docinsight-be/internal/pkg/serverutils"
	"docinsight-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IMeetingController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Reprocess(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type meetingController struct {
	meetingService service.IMeetingService
}

func NewMeetingController(meetingService service.IMeetingService) IMeetingController {
	return &meetingController{
		meetingService: meetingService,
	}
}

func (c *meetingController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/meeting/v1")
	h.Post("", c.Create)
	h.Get("", c.List)
	h.Get(":id", c.Show)
	h.Post(":id/reprocess", c.Reprocess)
	h.Delete(":id", c.Delete)
}

func (c *meetingController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateMeetingRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	err := serverutils.ValidateRequest(req)
	if err != nil {
		return err
	}

	res, err := c.meetingService.Create(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Success create meeting", res))
}

func (c *meetingController) Show(ctx *fiber.Ctx) error {
	idParam := ctx.Params("id")
	id, _ := uuid.Parse(idParam)

	res, err := c.meetingService.Show(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show meeting", res))
}

func (c *meetingController) List(ctx *fiber.Ctx) error {
	projectId, err := uuid.Parse(ctx.Query("project_id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "project_id is required")
	}

	res, err := c.meetingService.List(ctx.Context(), projectId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list meetings", res))
}

func (c *meetingController) Reprocess(ctx *fiber.Ctx) error {
	idParam := ctx.Params("id")
	id, _ := uuid.Parse(idParam)

	res, err := c.meetingService.Reprocess(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Success reprocess meeting", res))
}

func (c *meetingController) Delete(ctx *fiber.Ctx) error {
	idParam := ctx.Params("id")
	id, _ := uuid.Parse(idParam)

	err := c.meetingService.Delete(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete meeting", nil))
}
