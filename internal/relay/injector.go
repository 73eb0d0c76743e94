package relay

import (
	"context"
	"time"

	"storepal-voice-be/internal/constant"
)

const enrichmentTimeout = 15 * time.Second

// runEnrichment sequences one triggered search into the live conversation:
// search, contextual update upstream, fixed delay, follow-up trigger, set
// the one-shot suppression marker, and finally a product_search_result event
// downstream. The downstream step always runs, even when the upstream
// injection was skipped for a no-match result or the client already left
// (the send degrades to a no-op on a closed socket). Runs on its own
// goroutine; must never panic past the dispatcher.
func (s *Session) runEnrichment(query string) {
	defer s.injectWG.Done()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Relay", "Enrichment panic recovered", map[string]interface{}{
				"conversation_id": s.Id(),
				"panic":           r,
			})
		}
	}()

	// Independent deadline: the session context may be cancelled by a
	// client disconnect mid-flight, but upstream delivery is best-effort
	// to completion.
	ctx, cancel := context.WithTimeout(context.Background(), enrichmentTimeout)
	defer cancel()

	rendered, _ := s.searcher.SearchAndRender(ctx, s.Id(), query)

	if !s.searcher.IsFallback(rendered) {
		if err := s.upstream.WriteText(NewContextualUpdate(constant.ContextualUpdatePrefix + rendered)); err != nil {
			s.logger.Warn("Relay", "Contextual update send failed", map[string]interface{}{
				"conversation_id": s.Id(),
				"error":           err.Error(),
			})
		} else {
			// Let the provider ingest the context before asking it
			// to respond from it.
			time.Sleep(s.opts.InjectDelay)
			if err := s.upstream.WriteText(NewUserMessage(constant.EnrichmentTriggerMessage)); err != nil {
				s.logger.Warn("Relay", "Enrichment trigger send failed", map[string]interface{}{
					"conversation_id": s.Id(),
					"error":           err.Error(),
				})
			}

			s.mu.Lock()
			s.enrichment = &enrichmentContext{
				query:    query,
				rendered: rendered,
				deadline: time.Now().Add(s.opts.SuppressionTTL),
			}
			s.mu.Unlock()
		}
	}

	// The client always learns the outcome of a triggered search.
	if err := s.client.WriteText(NewSearchResultMessage(query, rendered)); err != nil {
		s.logger.Debug("Relay", "Search result forward skipped", map[string]interface{}{
			"conversation_id": s.Id(),
			"error":           err.Error(),
		})
	}
	s.notifyObserver("product_search_result", map[string]interface{}{
		"query":   query,
		"results": rendered,
	})
}
