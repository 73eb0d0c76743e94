package contract

import (
	"context"

	"storepal-voice-be/internal/entity"

	"github.com/google/uuid"
)

// ScoredProductEmbedding pairs an embedding row with its cosine similarity
// against a query vector.
type ScoredProductEmbedding struct {
	Embedding  *entity.ProductEmbedding
	Similarity float64
}

type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	CreateBulk(ctx context.Context, products []*entity.Product) error
	FindAllByIds(ctx context.Context, ids []uuid.UUID) ([]*entity.Product, error)
	Count(ctx context.Context) (int64, error)
}

type ProductEmbeddingRepository interface {
	Create(ctx context.Context, embedding *entity.ProductEmbedding) error
	CreateBulk(ctx context.Context, embeddings []*entity.ProductEmbedding) error
	// SearchSimilarWithScore returns up to limit embeddings ordered by
	// descending cosine similarity, dropping rows below threshold.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*ScoredProductEmbedding, error)
	Count(ctx context.Context) (int64, error)
}

type SearchLogRepository interface {
	Create(ctx context.Context, log *entity.SearchLog) error
	Count(ctx context.Context) (int64, error)
}
