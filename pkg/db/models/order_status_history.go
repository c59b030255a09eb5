package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/vasthra-labs/vasthra-backend/pkg/enums"
)

// OrderStatusHistory is the append-only audit log of state-machine
// transitions. Entries are never updated or deleted.
type OrderStatusHistory struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID         `gorm:"column:order_id;type:uuid;not null;index"`
	Status    enums.OrderStatus `gorm:"column:status;type:text;not null"`
	Notes     *string           `gorm:"column:notes"`
	UpdatedBy uuid.UUID         `gorm:"column:updated_by;type:uuid;not null"`
	Timestamp time.Time         `gorm:"column:timestamp;autoCreateTime"`
}

// TableName keeps the singular table name; gorm would pluralize
// History to "histories" otherwise.
func (OrderStatusHistory) TableName() string {
	return "order_status_history"
}
