package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"storepal-voice-be/internal/constant"
	"storepal-voice-be/internal/dto"
	"storepal-voice-be/internal/entity"
	"storepal-voice-be/internal/pkg/logger"
	"storepal-voice-be/internal/repository/contract"
	"storepal-voice-be/pkg/embedding"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// ISearchService is the product search gateway. Search never returns partial
// garbage: results are deduplicated, sorted by descending score, cut off at
// the minimum relevance threshold and truncated to depth. SearchAndRender
// never fails past this boundary; callers always get a renderable string.
type ISearchService interface {
	Search(ctx context.Context, query string, breadth, depth int) ([]entity.ProductMatch, error)
	Render(results []entity.ProductMatch) string
	SearchAndRender(ctx context.Context, conversationId, query string) (string, []entity.ProductMatch)
	IsFallback(rendered string) bool
}

type SearchOptions struct {
	Breadth       int
	Depth         int
	MinScore      float64
	CacheTTL      time.Duration
	ExpandQueries bool
}

func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		Breadth:  20,
		Depth:    5,
		MinScore: 0.35,
		CacheTTL: 30 * time.Second,
	}
}

type searchService struct {
	products   contract.ProductRepository
	embeddings contract.ProductEmbeddingRepository
	provider   embedding.EmbeddingProvider
	publisher  IPublisherService
	cache      *cache.Cache
	logger     logger.ILogger
	opts       SearchOptions
}

func NewSearchService(
	products contract.ProductRepository,
	embeddings contract.ProductEmbeddingRepository,
	provider embedding.EmbeddingProvider,
	publisher IPublisherService,
	log logger.ILogger,
	opts SearchOptions,
) ISearchService {
	if opts.Breadth <= 0 {
		opts.Breadth = DefaultSearchOptions().Breadth
	}
	if opts.Depth <= 0 || opts.Depth > opts.Breadth {
		opts.Depth = DefaultSearchOptions().Depth
	}

	return &searchService{
		products:   products,
		embeddings: embeddings,
		provider:   provider,
		publisher:  publisher,
		cache:      cache.New(opts.CacheTTL, 2*opts.CacheTTL),
		logger:     log,
		opts:       opts,
	}
}

// Search retrieves up to breadth raw candidates per query variant, merges and
// deduplicates them by catalog id keeping the best score, then applies the
// minimum-score cutoff and truncates to depth.
func (s *searchService) Search(ctx context.Context, query string, breadth, depth int) ([]entity.ProductMatch, error) {
	if breadth <= 0 {
		breadth = s.opts.Breadth
	}
	if depth <= 0 || depth > breadth {
		depth = s.opts.Depth
	}

	cacheKey := fmt.Sprintf("%s|%d|%d", strings.ToLower(strings.TrimSpace(query)), breadth, depth)
	if cached, found := s.cache.Get(cacheKey); found {
		return cached.([]entity.ProductMatch), nil
	}

	queries := []string{query}
	if s.opts.ExpandQueries {
		queries = append(queries, expandQuery(query)...)
	}

	bestByProduct := make(map[uuid.UUID]float64)
	for _, q := range queries {
		embeddingRes, err := s.provider.Generate(q, embedding.TaskTypeQuery)
		if err != nil {
			return nil, fmt.Errorf("embedding generation failed: %w", err)
		}

		scored, err := s.embeddings.SearchSimilarWithScore(ctx, embeddingRes.Embedding.Values, breadth, 0)
		if err != nil {
			return nil, fmt.Errorf("vector search failed: %w", err)
		}

		for _, res := range scored {
			if prev, ok := bestByProduct[res.Embedding.ProductId]; !ok || res.Similarity > prev {
				bestByProduct[res.Embedding.ProductId] = res.Similarity
			}
		}
	}

	matches, err := s.hydrateMatches(ctx, bestByProduct)
	if err != nil {
		return nil, err
	}

	// Threshold first, then rank. A candidate below the cutoff never makes
	// the list even when fewer than depth candidates survive.
	filtered := matches[:0]
	for _, m := range matches {
		if m.Score >= s.opts.MinScore {
			filtered = append(filtered, m)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Score > filtered[j].Score
	})
	if len(filtered) > depth {
		filtered = filtered[:depth]
	}

	s.cache.Set(cacheKey, filtered, cache.DefaultExpiration)
	return filtered, nil
}

func (s *searchService) hydrateMatches(ctx context.Context, bestByProduct map[uuid.UUID]float64) ([]entity.ProductMatch, error) {
	if len(bestByProduct) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(bestByProduct))
	for id := range bestByProduct {
		ids = append(ids, id)
	}

	products, err := s.products.FindAllByIds(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("candidate hydration failed: %w", err)
	}

	matches := make([]entity.ProductMatch, 0, len(products))
	for _, p := range products {
		matches = append(matches, entity.ProductMatch{
			ProductId:     p.ProductId,
			ItemName:      p.ItemName,
			Category:      p.Category,
			Description:   p.Description,
			AisleLocation: p.AisleLocation,
			Score:         bestByProduct[p.Id],
		})
	}
	return matches, nil
}

// Render formats ranked candidates as a natural-language reply for the agent.
func (s *searchService) Render(results []entity.ProductMatch) string {
	if len(results) == 0 {
		return constant.ProductNotFoundMessage
	}

	if len(results) == 1 {
		r := results[0]
		return fmt.Sprintf(
			"I found %s! It's in the %s section, located in aisle %s. %s",
			r.ItemName, r.Category, r.AisleLocation, r.Description,
		)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I found %d products that might help:\n\n", len(results))
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s - Aisle %s\n", i+1, r.ItemName, r.AisleLocation)
		if r.Description != "" {
			fmt.Fprintf(&b, "   %s\n", r.Description)
		}
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

// SearchAndRender runs the full gateway pipeline and degrades to an apology
// string on failure. It also publishes the search-performed event.
func (s *searchService) SearchAndRender(ctx context.Context, conversationId, query string) (string, []entity.ProductMatch) {
	start := time.Now()

	results, err := s.Search(ctx, query, s.opts.Breadth, s.opts.Depth)
	if err != nil {
		s.logger.Error("SearchService", "Product search failed", map[string]interface{}{
			"query": query,
			"error": err.Error(),
		})
		return constant.SearchUnavailableMessage, nil
	}

	s.logger.Info("SearchService", "Product search completed", map[string]interface{}{
		"query":   query,
		"results": len(results),
	})

	if s.publisher != nil {
		topScore := 0.0
		if len(results) > 0 {
			topScore = results[0].Score
		}
		if err := s.publisher.PublishSearchPerformed(&dto.SearchPerformedMessage{
			ConversationId: conversationId,
			Query:          query,
			ResultCount:    len(results),
			TopScore:       topScore,
			DurationMs:     time.Since(start).Milliseconds(),
		}); err != nil {
			s.logger.Warn("SearchService", "Failed to publish search event", map[string]interface{}{"error": err.Error()})
		}
	}

	return s.Render(results), results
}

// IsFallback reports whether rendered text is one of the canned no-result
// responses rather than real product information.
func (s *searchService) IsFallback(rendered string) bool {
	switch rendered {
	case constant.ProductNotFoundMessage,
		constant.SearchUnavailableMessage,
		constant.SearchErrorMessage:
		return true
	}
	return false
}

// expandQuery appends synonym variants for a few broad intents. Optional and
// off by default; the single-query contract is authoritative.
func expandQuery(query string) []string {
	lower := strings.ToLower(query)
	var extra []string
	if strings.Contains(lower, "healthy") {
		extra = append(extra, query+" organic food")
	}
	if strings.Contains(lower, "fruit") || strings.Contains(lower, "vegetable") {
		extra = append(extra, query+" fresh produce")
	}
	return extra
}
