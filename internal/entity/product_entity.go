package entity

import (
	"time"

	"github.com/google/uuid"
)

// Product is one inventory item in the store catalog.
type Product struct {
	Id            uuid.UUID
	ProductId     int // stable catalog number from the source inventory feed
	ItemName      string
	Category      string
	Description   string
	AisleLocation string
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}

// ProductEmbedding is the vector-indexed document for one product.
type ProductEmbedding struct {
	Id             uuid.UUID
	Document       string
	EmbeddingValue []float32
	ProductId      uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}

// ProductMatch is one ranked search candidate. Immutable once produced by the
// search gateway; consumed by the enrichment injector and the HTTP search API.
type ProductMatch struct {
	ProductId     int     `json:"product_id"`
	ItemName      string  `json:"item_name"`
	Category      string  `json:"category"`
	Description   string  `json:"description"`
	AisleLocation string  `json:"aisle_location"`
	Score         float64 `json:"score"`
}
