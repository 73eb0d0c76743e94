package implementation

import (
	"context"

	"storepal-voice-be/internal/entity"
	"storepal-voice-be/internal/mapper"
	"storepal-voice-be/internal/model"
	"storepal-voice-be/internal/repository/contract"

	"gorm.io/gorm"
)

type SearchLogRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SearchLogMapper
}

func NewSearchLogRepository(db *gorm.DB) contract.SearchLogRepository {
	return &SearchLogRepositoryImpl{
		db:     db,
		mapper: mapper.NewSearchLogMapper(),
	}
}

func (r *SearchLogRepositoryImpl) Create(ctx context.Context, log *entity.SearchLog) error {
	m := r.mapper.ToModel(log)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*log = *r.mapper.ToEntity(m)
	return nil
}

func (r *SearchLogRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.SearchLog{}).Count(&count).Error
	return count, err
}
