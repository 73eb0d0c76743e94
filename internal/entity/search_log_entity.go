package entity

import (
	"time"

	"github.com/google/uuid"
)

// SearchLog records one triggered product search for analytics.
type SearchLog struct {
	Id             uuid.UUID
	ConversationId string
	Query          string
	ResultCount    int
	TopScore       float64
	DurationMs     int64
	CreatedAt      time.Time
}
