package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentMethod stores a label the customer picked at checkout (card alias,
// UPI handle). It is descriptive only; no instrument is tokenized or charged
// by this service.
type PaymentMethod struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	Type      string    `gorm:"column:type;not null"`
	Name      string    `gorm:"column:name;not null"`
	Number    string    `gorm:"column:number;not null"`
	Expiry    *string   `gorm:"column:expiry"`
	IsDefault bool      `gorm:"column:is_default;not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
