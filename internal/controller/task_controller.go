package controller

import (
	"gm-shield-be/internal/dto"
	"gm-shield-be/internal/pkg/serverutils"
	"gm-shield-be/pkg/taskqueue"

	"github.com/gofiber/fiber/v2"
)

type ITaskController interface {
	RegisterRoutes(r fiber.Router)
	Show(ctx *fiber.Ctx) error
}

type taskController struct {
	queue *taskqueue.Queue
}

func NewTaskController(queue *taskqueue.Queue) ITaskController {
	return &taskController{
		queue: queue,
	}
}

func (c *taskController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/task/v1")
	h.Get(":id", c.Show)
}

func (c *taskController) Show(ctx *fiber.Ctx) error {
	record, ok := c.queue.GetStatus(ctx.Params("id"))
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "task not found")
	}

	res := dto.TaskStatusResponse{
		Id:          record.ID,
		Status:      string(record.Status),
		Result:      record.Result,
		Error:       record.Error,
		EnqueuedAt:  record.EnqueuedAt,
		StartedAt:   record.StartedAt,
		CompletedAt: record.CompletedAt,
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show task", res))
}
