package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"storepal-voice-be/internal/config"
	"storepal-voice-be/internal/entity"
	"storepal-voice-be/internal/repository/implementation"
	"storepal-voice-be/pkg/database"
	"storepal-voice-be/pkg/embedding"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

type fixture struct {
	ProductId     int
	ItemName      string
	Category      string
	Description   string
	AisleLocation string
}

var catalog = []fixture{
	{1001, "Organic Bananas", "Produce", "Fresh organic bananas sold by the bunch, certified organic.", "A1"},
	{1002, "Whole Milk", "Dairy", "Grade A whole milk, 1 gallon jug.", "B3"},
	{1003, "Sourdough Bread", "Bakery", "Artisan sourdough loaf baked daily in store.", "C2"},
	{1004, "Free Range Eggs", "Dairy", "One dozen large brown free range eggs.", "B3"},
	{1005, "Chicken Breast", "Meat", "Boneless skinless chicken breast, family pack.", "D1"},
	{1006, "Frozen Pizza", "Frozen", "Stone-baked margherita pizza, 12 inch.", "E4"},
	{1007, "Baby Spinach", "Produce", "Pre-washed baby spinach, 8 oz clamshell.", "A2"},
	{1008, "Greek Yogurt", "Dairy", "Plain whole milk Greek yogurt, 32 oz tub.", "B2"},
	{1009, "Ground Coffee", "Beverages", "Medium roast 100% arabica ground coffee, 12 oz bag.", "F1"},
	{1010, "Olive Oil", "Pantry", "Extra virgin olive oil, cold pressed, 500 ml bottle.", "G3"},
	{1011, "Pasta Sauce", "Pantry", "Tomato basil pasta sauce, no added sugar.", "G2"},
	{1012, "Tortilla Chips", "Snacks", "Restaurant style corn tortilla chips, 13 oz bag.", "H1"},
	{1013, "Orange Juice", "Beverages", "100% squeezed orange juice, not from concentrate.", "F2"},
	{1014, "Cheddar Cheese", "Dairy", "Sharp cheddar cheese block, aged 9 months.", "B1"},
	{1015, "Salmon Fillet", "Seafood", "Atlantic salmon fillet, skin on, per pound.", "D3"},
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	color.Cyan("🚀 Seeding StorePal product catalog\n")

	color.Yellow("Step 1: Extensions and schema migration")
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS vector;`).Error; err != nil {
		color.Red("Failed to create vector extension: %v", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		color.Red("Migration failed: %v", err)
		os.Exit(1)
	}
	color.Green("Schema ready")

	cfg := config.Load()
	var provider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		provider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
	} else {
		provider = embedding.NewGeminiProvider(cfg.Ai.GeminiAPIKey)
	}

	productRepo := implementation.NewProductRepository(db)
	embeddingRepo := implementation.NewProductEmbeddingRepository(db)

	ctx := context.Background()

	if count, err := productRepo.Count(ctx); err == nil && count > 0 {
		color.Yellow("Catalog already has %d products, skipping seed", count)
		return
	}

	color.Yellow("Step 2: Inserting %d products with embeddings", len(catalog))

	products := make([]*entity.Product, 0, len(catalog))
	embeddings := make([]*entity.ProductEmbedding, 0, len(catalog))
	for _, f := range catalog {
		now := time.Now()
		product := &entity.Product{
			Id:            uuid.New(),
			ProductId:     f.ProductId,
			ItemName:      f.ItemName,
			Category:      f.Category,
			Description:   f.Description,
			AisleLocation: f.AisleLocation,
			CreatedAt:     now,
		}

		document := fmt.Sprintf("Product: %s\nCategory: %s\nAisle: %s\nDescription: %s",
			f.ItemName, f.Category, f.AisleLocation, f.Description)

		res, err := provider.Generate(document, embedding.TaskTypeDocument)
		if err != nil {
			color.Red("Embedding failed for %s: %v", f.ItemName, err)
			os.Exit(1)
		}

		products = append(products, product)
		embeddings = append(embeddings, &entity.ProductEmbedding{
			Id:             uuid.New(),
			Document:       document,
			EmbeddingValue: res.Embedding.Values,
			ProductId:      product.Id,
			CreatedAt:      now,
		})
		color.Green("  embedded %s (aisle %s)", f.ItemName, f.AisleLocation)
	}

	if err := productRepo.CreateBulk(ctx, products); err != nil {
		color.Red("Product insert failed: %v", err)
		os.Exit(1)
	}
	if err := embeddingRepo.CreateBulk(ctx, embeddings); err != nil {
		color.Red("Embedding insert failed: %v", err)
		os.Exit(1)
	}

	color.Cyan("\n✅ Seeded %d products", len(products))
}
