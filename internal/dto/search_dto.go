package dto

import "storepal-voice-be/internal/entity"

type SearchRequest struct {
	Query string `json:"query" validate:"required"`
	TopK  int    `json:"top_k" validate:"omitempty,min=1,max=50"`
}

type SearchResponse struct {
	Query             string                `json:"query"`
	Results           []entity.ProductMatch `json:"results"`
	FormattedResponse string                `json:"formatted_response"`
}

// SearchPerformedMessage is the payload published on the internal event bus
// for every triggered search, consumed by the analytics consumer.
type SearchPerformedMessage struct {
	ConversationId string  `json:"conversation_id"`
	Query          string  `json:"query"`
	ResultCount    int     `json:"result_count"`
	TopScore       float64 `json:"top_score"`
	DurationMs     int64   `json:"duration_ms"`
}

type HealthResponse struct {
	Status              string `json:"status"`
	ApiConfigured       bool   `json:"api_configured"`
	VectorSearchEnabled bool   `json:"vector_search_enabled"`
}

type ServiceInfoResponse struct {
	Message           string `json:"message"`
	Status            string `json:"status"`
	AgentId           string `json:"agent_id,omitempty"`
	WebsocketEndpoint string `json:"websocket_endpoint"`
}
