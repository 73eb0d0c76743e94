package main

import (
	"context"
	"log"

	"storepal-voice-be/internal/bootstrap"
	"storepal-voice-be/internal/config"
	"storepal-voice-be/internal/server"
	"storepal-voice-be/internal/tracer"
	"storepal-voice-be/pkg/database"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database (optional: the relay runs without search when
	// no connection string is configured)
	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Printf("[WARN] Unable to connect to GORM DB, search disabled: %v", err)
		db = nil
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(db, cfg)

	// 4. Start Background Services
	if container.ConsumerService != nil {
		go func() {
			log.Println("Background: Starting Consumer Service...")
			if err := container.ConsumerService.Consume(context.Background()); err != nil {
				log.Printf("Background Consumer Error: %v", err)
			}
		}()
	}

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}
