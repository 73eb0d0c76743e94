package mapper

import (
	"storepal-voice-be/internal/entity"
	"storepal-voice-be/internal/model"
)

type SearchLogMapper struct{}

func NewSearchLogMapper() *SearchLogMapper {
	return &SearchLogMapper{}
}

func (m *SearchLogMapper) ToModel(l *entity.SearchLog) *model.SearchLog {
	if l == nil {
		return nil
	}
	return &model.SearchLog{
		Id:             l.Id,
		ConversationId: l.ConversationId,
		Query:          l.Query,
		ResultCount:    l.ResultCount,
		TopScore:       l.TopScore,
		DurationMs:     l.DurationMs,
		CreatedAt:      l.CreatedAt,
	}
}

func (m *SearchLogMapper) ToEntity(l *model.SearchLog) *entity.SearchLog {
	if l == nil {
		return nil
	}
	return &entity.SearchLog{
		Id:             l.Id,
		ConversationId: l.ConversationId,
		Query:          l.Query,
		ResultCount:    l.ResultCount,
		TopScore:       l.TopScore,
		DurationMs:     l.DurationMs,
		CreatedAt:      l.CreatedAt,
	}
}
