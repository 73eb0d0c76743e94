package model

import (
	"time"

	"github.com/google/uuid"
)

type Product struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductId     int       `gorm:"uniqueIndex;not null"`
	ItemName      string    `gorm:"type:text;not null"`
	Category      string    `gorm:"type:text;index"`
	Description   string    `gorm:"type:text"`
	AisleLocation string    `gorm:"type:text;index"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

func (Product) TableName() string {
	return "products"
}
