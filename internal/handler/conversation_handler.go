package handler

import (
	"context"
	"time"

	"storepal-voice-be/internal/config"
	"storepal-voice-be/internal/pkg/logger"
	"storepal-voice-be/internal/relay"
	"storepal-voice-be/internal/service"
	internalWS "storepal-voice-be/internal/websocket"
	"storepal-voice-be/pkg/events"
	"storepal-voice-be/pkg/intent"
	pktNats "storepal-voice-be/pkg/nats"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// ConversationHandler upgrades client connections on /ws/conversation and
// hands each one to a relay session.
type ConversationHandler struct {
	searcher   service.ISearchService
	classifier *intent.Classifier
	hub        *internalWS.Hub
	publisher  *pktNats.Publisher
	cfg        *config.Config
	logger     logger.ILogger
}

func NewConversationHandler(
	searcher service.ISearchService,
	classifier *intent.Classifier,
	hub *internalWS.Hub,
	pub *pktNats.Publisher,
	cfg *config.Config,
	log logger.ILogger,
) *ConversationHandler {
	return &ConversationHandler{
		searcher:   searcher,
		classifier: classifier,
		hub:        hub,
		publisher:  pub,
		cfg:        cfg,
		logger:     log,
	}
}

// ServeWs handles websocket requests from the client.
func (h *ConversationHandler) ServeWs(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("ConversationHandler", "Starting relay session", nil)

		var observer relay.Observer
		if h.hub != nil {
			observer = h.hub
		}

		session := relay.NewSession(conn, h.searcher, h.classifier, observer, h.logger, relay.Options{
			BaseURL: h.cfg.ElevenLabs.BaseURL,
			AgentId: h.cfg.ElevenLabs.AgentID,
			APIKey:  h.cfg.ElevenLabs.APIKey,
			Agent: relay.AgentConfig{
				Prompt:       h.cfg.Agent.Prompt,
				FirstMessage: h.cfg.Agent.FirstMessage,
				Language:     h.cfg.Agent.Language,
			},
		})

		h.publishLifecycle(events.NewConversationStarted(session.Id()))

		if err := session.Run(context.Background()); err != nil {
			h.logger.Warn("ConversationHandler", "Relay session ended with error", map[string]interface{}{
				"conversation_id": session.Id(),
				"error":           err.Error(),
			})
		}

		h.publishLifecycle(events.NewConversationEnded(session.Id(), "session_closed"))
		h.logger.Info("ConversationHandler", "Relay session ended", map[string]interface{}{
			"conversation_id": session.Id(),
		})
	})(c)
}

// publishLifecycle emits a conversation lifecycle event. Auxiliary: failures
// are logged, never surfaced to the client.
func (h *ConversationHandler) publishLifecycle(evt events.Event) {
	if h.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := h.publisher.Publish(ctx, evt); err != nil {
		h.logger.Warn("ConversationHandler", "Failed to publish lifecycle event", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (h *ConversationHandler) RegisterRoutes(app fiber.Router) {
	app.Get("/ws/conversation", h.ServeWs)
}
