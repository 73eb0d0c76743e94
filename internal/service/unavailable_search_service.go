package service

import (
	"context"
	"fmt"

	"storepal-voice-be/internal/constant"
	"storepal-voice-be/internal/entity"
)

// unavailableSearchService stands in when no vector store is configured.
// Every lookup degrades to the unavailable apology so the relay and the
// HTTP surface keep working without a database.
type unavailableSearchService struct{}

func NewUnavailableSearchService() ISearchService {
	return unavailableSearchService{}
}

func (unavailableSearchService) Search(ctx context.Context, query string, breadth, depth int) ([]entity.ProductMatch, error) {
	return nil, fmt.Errorf("product search is not configured")
}

func (unavailableSearchService) Render(results []entity.ProductMatch) string {
	if len(results) == 0 {
		return constant.ProductNotFoundMessage
	}
	return constant.SearchUnavailableMessage
}

func (unavailableSearchService) SearchAndRender(ctx context.Context, conversationId, query string) (string, []entity.ProductMatch) {
	return constant.SearchUnavailableMessage, nil
}

func (unavailableSearchService) IsFallback(rendered string) bool {
	switch rendered {
	case constant.ProductNotFoundMessage,
		constant.SearchUnavailableMessage,
		constant.SearchErrorMessage:
		return true
	}
	return false
}
