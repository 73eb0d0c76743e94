package model

import (
	"time"

	"github.com/google/uuid"
)

type SearchLog struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ConversationId string    `gorm:"type:text;index"`
	Query          string    `gorm:"type:text;not null"`
	ResultCount    int       `gorm:"not null"`
	TopScore       float64
	DurationMs     int64
	CreatedAt      time.Time `gorm:"autoCreateTime;index"`
}

func (SearchLog) TableName() string {
	return "search_logs"
}
