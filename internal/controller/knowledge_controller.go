package controller

import (
	"context"

	"gm-shield-be/internal/dto"
	"gm-shield-be/internal/pkg/serverutils"
	"gm-shield-be/internal/service"
	"gm-shield-be/pkg/taskqueue"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IKnowledgeController interface {
	RegisterRoutes(r fiber.Router)
	Index(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Stats(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type knowledgeController struct {
	knowledgeService service.IKnowledgeService
	ingestionService service.IIngestionService
	queue            *taskqueue.Queue
}

func NewKnowledgeController(
	knowledgeService service.IKnowledgeService,
	ingestionService service.IIngestionService,
	queue *taskqueue.Queue,
) IKnowledgeController {
	return &knowledgeController{
		knowledgeService: knowledgeService,
		ingestionService: ingestionService,
		queue:            queue,
	}
}

func (c *knowledgeController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/knowledge/v1")
	h.Post("", c.Index)
	h.Get("", c.List)
	h.Get("stats", c.Stats)
	h.Get(":id", c.Show)
	h.Delete(":id", c.Delete)
}

// Index registers (or refreshes) a source and schedules its ingestion
// in the background. The response carries the task id for polling.
func (c *knowledgeController) Index(ctx *fiber.Ctx) error {
	var req dto.IndexSourceRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	source, err := c.knowledgeService.CreateOrRefresh(ctx.Context(), req.FilePath, req.Description)
	if err != nil {
		return err
	}

	sourceId := source.Id
	taskId, err := c.queue.Enqueue(func(workCtx context.Context) (string, error) {
		return c.ingestionService.Run(workCtx, sourceId), nil
	})
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Ingestion scheduled", dto.IndexSourceResponse{
		SourceId: source.Id,
		TaskId:   taskId,
		Status:   string(source.Status),
	}))
}

func (c *knowledgeController) List(ctx *fiber.Ctx) error {
	res, err := c.knowledgeService.List(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list sources", res))
}

func (c *knowledgeController) Stats(ctx *fiber.Ctx) error {
	res, err := c.knowledgeService.Stats(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success knowledge stats", res))
}

func (c *knowledgeController) Show(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid source id")
	}

	res, err := c.knowledgeService.Get(ctx.Context(), id)
	if err != nil {
		if err == service.ErrSourceNotFound {
			return fiber.NewError(fiber.StatusNotFound, "source not found")
		}
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show source", res))
}

func (c *knowledgeController) Delete(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid source id")
	}

	res, err := c.knowledgeService.Delete(ctx.Context(), id)
	if err != nil {
		if err == service.ErrSourceNotFound {
			return fiber.NewError(fiber.StatusNotFound, "source not found")
		}
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success delete source", res))
}
