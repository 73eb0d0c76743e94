package controller

import (
	"storepal-voice-be/internal/dto"
	"storepal-voice-be/internal/pkg/serverutils"
	"storepal-voice-be/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type ISearchController interface {
	RegisterRoutes(r fiber.Router)
	Search(ctx *fiber.Ctx) error
}

type searchController struct {
	service  service.ISearchService
	validate *validator.Validate
}

func NewSearchController(service service.ISearchService) ISearchController {
	return &searchController{
		service:  service,
		validate: validator.New(),
	}
}

func (c *searchController) RegisterRoutes(r fiber.Router) {
	r.Get("/search", c.Search)
}

// Search runs a product lookup outside any voice session, for debugging and
// dashboard use.
func (c *searchController) Search(ctx *fiber.Ctx) error {
	req := dto.SearchRequest{
		Query: ctx.Query("q", ""),
		TopK:  ctx.QueryInt("top_k", 0),
	}
	if err := c.validate.Struct(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "q parameter is required"))
	}

	results, err := c.service.Search(ctx.Context(), req.Query, 0, req.TopK)
	if err != nil {
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(serverutils.ErrorResponse(503, "product search is unavailable"))
	}

	return ctx.JSON(dto.SearchResponse{
		Query:             req.Query,
		Results:           results,
		FormattedResponse: c.service.Render(results),
	})
}
