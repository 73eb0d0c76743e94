package bootstrap

import (
	"context"
	"log"
	"time"

	"storepal-voice-be/internal/config"
	"storepal-voice-be/internal/constant"
	"storepal-voice-be/internal/controller"
	"storepal-voice-be/internal/handler"
	"storepal-voice-be/internal/pkg/logger"
	"storepal-voice-be/internal/repository/implementation"
	"storepal-voice-be/internal/service"
	"storepal-voice-be/internal/websocket"
	"storepal-voice-be/pkg/embedding"
	"storepal-voice-be/pkg/intent"

	pktNats "storepal-voice-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const searchEventsTopic = "search_performed"

type Container struct {
	// Controllers
	SearchController controller.ISearchController
	HealthController controller.IHealthController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	ConversationHandler *handler.ConversationHandler
	WebSocketHub        *websocket.Hub

	// Whether the vector-search stack is wired (DB reachable + configured)
	SearchEnabled bool
}

// NewContainer wires the whole application. db may be nil: the relay then
// runs without product search, degrading every triggered lookup to the
// unavailable apology, mirroring how the service behaves when the vector
// store is down.
func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	relayLogger := logger.NewIsolatedLogger(cfg.App.RelayLogFilePath)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// Initialize Embedding Provider based on Config
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Ai.GeminiAPIKey)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
		rdb = nil
	}

	// WebSocket Hub
	wsHub := websocket.NewHub(rdb, sysLogger)
	go wsHub.Run()

	// 3. Services
	publisherService := service.NewPublisherService(searchEventsTopic, pubSub)

	searchEnabled := db != nil
	var searchService service.ISearchService
	var consumerService service.IConsumerService
	if searchEnabled {
		productRepo := implementation.NewProductRepository(db)
		embeddingRepo := implementation.NewProductEmbeddingRepository(db)
		searchLogRepo := implementation.NewSearchLogRepository(db)

		searchService = service.NewSearchService(
			productRepo,
			embeddingRepo,
			embeddingProvider,
			publisherService,
			sysLogger,
			service.SearchOptions{
				Breadth:       cfg.Search.Breadth,
				Depth:         cfg.Search.Depth,
				MinScore:      cfg.Search.MinScore,
				CacheTTL:      time.Duration(cfg.Search.CacheTTLSecs) * time.Second,
				ExpandQueries: cfg.Search.ExpandQueries,
			},
		)
		consumerService = service.NewConsumerService(pubSub, searchEventsTopic, searchLogRepo, sysLogger)
	} else {
		log.Printf("[WARN] Database not configured: product search disabled")
		searchService = service.NewUnavailableSearchService()
	}

	classifier := intent.NewClassifier(constant.DefaultSearchKeywords)

	// 4. Controllers & Handlers
	conversationHandler := handler.NewConversationHandler(
		searchService,
		classifier,
		wsHub,
		natsPub,
		cfg,
		relayLogger,
	)

	return &Container{
		SearchController:    controller.NewSearchController(searchService),
		HealthController:    controller.NewHealthController(cfg, searchEnabled),
		ConsumerService:     consumerService,
		ConversationHandler: conversationHandler,
		WebSocketHub:        wsHub,
		SearchEnabled:       searchEnabled,
	}
}
