package implementation

import (
	"context"

	"storepal-voice-be/internal/entity"
	"storepal-voice-be/internal/mapper"
	"storepal-voice-be/internal/model"
	"storepal-voice-be/internal/repository/contract"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type ProductEmbeddingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ProductEmbeddingMapper
}

func NewProductEmbeddingRepository(db *gorm.DB) contract.ProductEmbeddingRepository {
	return &ProductEmbeddingRepositoryImpl{
		db:     db,
		mapper: mapper.NewProductEmbeddingMapper(),
	}
}

func (r *ProductEmbeddingRepositoryImpl) Create(ctx context.Context, embedding *entity.ProductEmbedding) error {
	m := r.mapper.ToModel(embedding)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*embedding = *r.mapper.ToEntity(m)
	return nil
}

func (r *ProductEmbeddingRepositoryImpl) CreateBulk(ctx context.Context, embeddings []*entity.ProductEmbedding) error {
	models := make([]*model.ProductEmbedding, len(embeddings))
	for i, e := range embeddings {
		models[i] = r.mapper.ToModel(e)
	}

	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}

	for i, m := range models {
		*embeddings[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

// SearchSimilarWithScore runs the pgvector cosine search. Cosine distance in
// pgvector is 1 - cosine_similarity, so similarity = 1 - (a <=> b).
func (r *ProductEmbeddingRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*contract.ScoredProductEmbedding, error) {
	if limit <= 0 {
		limit = 5
	}

	type result struct {
		model.ProductEmbedding
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("product_embeddings").
		Select("product_embeddings.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Where("1 - (embedding_value <=> ?) >= ?", queryVector, threshold).
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error

	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredProductEmbedding, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredProductEmbedding{
			Embedding:  r.mapper.ToEntity(&res.ProductEmbedding),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}

func (r *ProductEmbeddingRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ProductEmbedding{}).Count(&count).Error
	return count, err
}
