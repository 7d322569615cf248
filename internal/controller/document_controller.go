package controller

import (
	"docinsight-be/internal/dto"
	"docinsight-be/internal/pkg/serverutils"
	"docinsight-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Status(ctx *fiber.Ctx) error
	Reprocess(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type documentController struct {
	documentService service.IDocumentService
}

func NewDocumentController(documentService service.IDocumentService) IDocumentController {
	return &documentController{
		documentService: documentService,
	}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/document/v1")
	h.Post("", c.Create)
	h.Get("", c.List)
	h.Get(":id", c.Show)
	h.Put(":id", c.Update)
	h.Get(":id/status", c.Status)
	h.Post(":id/reprocess", c.Reprocess)
	h.Delete(":id", c.Delete)
}

func (c *documentController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	err := serverutils.ValidateRequest(req)
	if err != nil {
		return err
	}

	res, err := c.documentService.Create(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Success create document", res))
}

func (c *documentController) Update(ctx *fiber.Ctx) error {
	idParam := ctx.Params("id")
	id, _ := uuid.Parse(idParam)

	var req dto.UpdateDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	err := serverutils.ValidateRequest(req)
	if err != nil {
		return err
	}

	res, err := c.documentService.Update(ctx.Context(), id, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update document", res))
}

func (c *documentController) Show(ctx *fiber.Ctx) error {
	idParam := ctx.Params("id")
	id, _ := uuid.Parse(idParam)

	res, err := c.documentService.Show(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show document", res))
}

func (c *documentController) List(ctx *fiber.Ctx) error {
	projectId, err := uuid.Parse(ctx.Query("project_id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "project_id is required")
	}

	res, err := c.documentService.List(ctx.Context(), projectId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list documents", res))
}

func (c *documentController) Status(ctx *fiber.Ctx) error {
	idParam := ctx.Params("id")
	id, _ := uuid.Parse(idParam)

	res, err := c.documentService.Status(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show document status", res))
}

func (c *documentController) Reprocess(ctx *fiber.Ctx) error {
	idParam := ctx.Params("id")
	id, _ := uuid.Parse(idParam)

	res, err := c.documentService.Reprocess(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Success reprocess document", res))
}

func (c *documentController) Delete(ctx *fiber.Ctx) error {
	idParam := ctx.Params("id")
	id, _ := uuid.Parse(idParam)

	err := c.documentService.Delete(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete document", nil))
}
