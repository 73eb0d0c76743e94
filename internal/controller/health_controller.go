package controller

import (
	"storepal-voice-be/internal/config"
	"storepal-voice-be/internal/dto"

	"github.com/gofiber/fiber/v2"
)

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	Root(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
}

type healthController struct {
	cfg           *config.Config
	searchEnabled bool
}

func NewHealthController(cfg *config.Config, searchEnabled bool) IHealthController {
	return &healthController{cfg: cfg, searchEnabled: searchEnabled}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	r.Get("/", c.Root)
	r.Get("/health", c.Health)
}

func (c *healthController) Root(ctx *fiber.Ctx) error {
	return ctx.JSON(dto.ServiceInfoResponse{
		Message:           "StorePal voice relay",
		Status:            "running",
		AgentId:           c.cfg.ElevenLabs.AgentID,
		WebsocketEndpoint: "/ws/conversation",
	})
}

func (c *healthController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(dto.HealthResponse{
		Status:              "healthy",
		ApiConfigured:       c.cfg.ElevenLabs.APIKey != "",
		VectorSearchEnabled: c.searchEnabled,
	})
}
