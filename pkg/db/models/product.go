package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Product is the catalog entity referenced by carts and orders. Catalog
// management lives outside this service; stock is mutated only through the
// inventory ledger.
type Product struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string          `gorm:"column:name;not null"`
	Category  string          `gorm:"column:category;not null"`
	Fabric    *string         `gorm:"column:fabric"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Images    pq.StringArray  `gorm:"column:images;type:text[]"`
	Stock     int             `gorm:"column:stock;not null;default:0"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
