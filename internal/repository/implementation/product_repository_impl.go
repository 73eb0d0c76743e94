package implementation

import (
	"context"

	"storepal-voice-be/internal/entity"
	"storepal-voice-be/internal/mapper"
	"storepal-voice-be/internal/model"
	"storepal-voice-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ProductMapper
}

func NewProductRepository(db *gorm.DB) contract.ProductRepository {
	return &ProductRepositoryImpl{
		db:     db,
		mapper: mapper.NewProductMapper(),
	}
}

func (r *ProductRepositoryImpl) Create(ctx context.Context, product *entity.Product) error {
	m := r.mapper.ToModel(product)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*product = *r.mapper.ToEntity(m)
	return nil
}

func (r *ProductRepositoryImpl) CreateBulk(ctx context.Context, products []*entity.Product) error {
	models := make([]*model.Product, len(products))
	for i, p := range products {
		models[i] = r.mapper.ToModel(p)
	}

	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}

	for i, m := range models {
		*products[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *ProductRepositoryImpl) FindAllByIds(ctx context.Context, ids []uuid.UUID) ([]*entity.Product, error) {
	var models []*model.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ProductRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).Count(&count).Error
	return count, err
}
