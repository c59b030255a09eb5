package models

import (
	"time"

	"github.com/google/uuid"
)

// TrackingEvent is the customer-visible shipping narrative. Its status label
// is free text and may describe checkpoints that have no state-machine
// counterpart.
type TrackingEvent struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	Status      string    `gorm:"column:status;not null"`
	Description *string   `gorm:"column:description"`
	Location    *string   `gorm:"column:location"`
	Date        time.Time `gorm:"column:date;autoCreateTime"`
}
