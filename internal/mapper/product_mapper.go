package mapper

import (
	"time"

	"storepal-voice-be/internal/entity"
	"storepal-voice-be/internal/model"

	"github.com/pgvector/pgvector-go"
)

type ProductMapper struct{}

func NewProductMapper() *ProductMapper {
	return &ProductMapper{}
}

func (m *ProductMapper) ToEntity(p *model.Product) *entity.Product {
	if p == nil {
		return nil
	}

	var updatedAt *time.Time
	if !p.UpdatedAt.IsZero() {
		t := p.UpdatedAt
		updatedAt = &t
	}

	return &entity.Product{
		Id:            p.Id,
		ProductId:     p.ProductId,
		ItemName:      p.ItemName,
		Category:      p.Category,
		Description:   p.Description,
		AisleLocation: p.AisleLocation,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     updatedAt,
	}
}

func (m *ProductMapper) ToModel(p *entity.Product) *model.Product {
	if p == nil {
		return nil
	}

	var updatedAt time.Time
	if p.UpdatedAt != nil {
		updatedAt = *p.UpdatedAt
	}

	return &model.Product{
		Id:            p.Id,
		ProductId:     p.ProductId,
		ItemName:      p.ItemName,
		Category:      p.Category,
		Description:   p.Description,
		AisleLocation: p.AisleLocation,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     updatedAt,
	}
}

func (m *ProductMapper) ToEntities(products []*model.Product) []*entity.Product {
	entities := make([]*entity.Product, len(products))
	for i, p := range products {
		entities[i] = m.ToEntity(p)
	}
	return entities
}

type ProductEmbeddingMapper struct{}

func NewProductEmbeddingMapper() *ProductEmbeddingMapper {
	return &ProductEmbeddingMapper{}
}

func (m *ProductEmbeddingMapper) ToEntity(e *model.ProductEmbedding) *entity.ProductEmbedding {
	if e == nil {
		return nil
	}

	var updatedAt *time.Time
	if !e.UpdatedAt.IsZero() {
		t := e.UpdatedAt
		updatedAt = &t
	}

	return &entity.ProductEmbedding{
		Id:             e.Id,
		Document:       e.Document,
		EmbeddingValue: e.EmbeddingValue.Slice(),
		ProductId:      e.ProductId,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      updatedAt,
	}
}

func (m *ProductEmbeddingMapper) ToModel(e *entity.ProductEmbedding) *model.ProductEmbedding {
	if e == nil {
		return nil
	}

	var updatedAt time.Time
	if e.UpdatedAt != nil {
		updatedAt = *e.UpdatedAt
	}

	return &model.ProductEmbedding{
		Id:             e.Id,
		Document:       e.Document,
		EmbeddingValue: pgvector.NewVector(e.EmbeddingValue),
		ProductId:      e.ProductId,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      updatedAt,
	}
}
