package controller

import (
	"strconv"

	"gm-shield-be/internal/dto"
	"gm-shield-be/internal/pkg/serverutils"
	"gm-shield-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISearchController interface {
	RegisterRoutes(r fiber.Router)
	Search(ctx *fiber.Ctx) error
	Related(ctx *fiber.Ctx) error
}

type searchController struct {
	retrievalService service.IRetrievalService
}

func NewSearchController(retrievalService service.IRetrievalService) ISearchController {
	return &searchController{
		retrievalService: retrievalService,
	}
}

func (c *searchController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/search/v1")
	h.Get("", c.Search)
	h.Post("related", c.Related)
}

func (c *searchController) Search(ctx *fiber.Ctx) error {
	query := ctx.Query("q")
	if query == "" {
		return fiber.NewError(fiber.StatusBadRequest, "query parameter 'q' is required")
	}
	topK, _ := strconv.Atoi(ctx.Query("top_k"))

	res, err := c.retrievalService.Search(ctx.Context(), query, topK)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success search", res))
}

func (c *searchController) Related(ctx *fiber.Ctx) error {
	var req dto.RelatedSearchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.retrievalService.SearchRelated(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success related search", res))
}
