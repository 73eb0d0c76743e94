package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"storepal-voice-be/internal/entity"
	"storepal-voice-be/internal/repository/implementation"
	"storepal-voice-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresCatalog(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	require.NoError(t, database.Migrate(gormDB))

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	assert.NoError(t, sqlDB.Ping())

	productRepo := implementation.NewProductRepository(gormDB)
	embeddingRepo := implementation.NewProductEmbeddingRepository(gormDB)
	searchLogRepo := implementation.NewSearchLogRepository(gormDB)

	ctx := context.Background()

	t.Run("Check Product Repository", func(t *testing.T) {
		count, err := productRepo.Count(ctx)
		assert.NoError(t, err)
		t.Logf("Product count: %d", count)
	})

	t.Run("Vector Search Round Trip", func(t *testing.T) {
		productId := uuid.New()
		product := &entity.Product{
			Id:            productId,
			ProductId:     999001,
			ItemName:      "Integration Test Kombucha",
			Category:      "Beverages",
			Description:   "Fermented tea, integration fixture.",
			AisleLocation: "F9",
			CreatedAt:     time.Now(),
		}
		require.NoError(t, productRepo.Create(ctx, product))

		vec := make([]float32, 768)
		vec[0] = 1
		require.NoError(t, embeddingRepo.Create(ctx, &entity.ProductEmbedding{
			Id:             uuid.New(),
			Document:       "Integration Test Kombucha",
			EmbeddingValue: vec,
			ProductId:      productId,
			CreatedAt:      time.Now(),
		}))

		scored, err := embeddingRepo.SearchSimilarWithScore(ctx, vec, 5, 0)
		require.NoError(t, err)
		require.NotEmpty(t, scored)

		found := false
		for _, s := range scored {
			if s.Embedding.ProductId == productId {
				found = true
				assert.InDelta(t, 1.0, s.Similarity, 0.001, "identical vector must score ~1")
			}
		}
		assert.True(t, found, "inserted embedding must be retrievable by similarity")

		// Cleanup
		gormDB.Exec("DELETE FROM product_embeddings WHERE product_id = ?", productId)
		gormDB.Exec("DELETE FROM products WHERE id = ?", productId)
	})

	t.Run("Check Search Log Repository", func(t *testing.T) {
		logEntry := &entity.SearchLog{
			Id:             uuid.New(),
			ConversationId: "integration-test",
			Query:          "kombucha",
			ResultCount:    1,
			TopScore:       0.92,
			DurationMs:     12,
			CreatedAt:      time.Now(),
		}
		require.NoError(t, searchLogRepo.Create(ctx, logEntry))

		count, err := searchLogRepo.Count(ctx)
		assert.NoError(t, err)
		assert.Greater(t, count, int64(0))

		gormDB.Exec("DELETE FROM search_logs WHERE id = ?", logEntry.Id)
	})
}
