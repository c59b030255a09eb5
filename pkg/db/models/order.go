package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vasthra-labs/vasthra-backend/pkg/enums"
)

// Order is the durable record of a placed order. Writes go exclusively
// through the order lifecycle service; monetary fields are captured from the
// checkout request and never recomputed afterwards.
type Order struct {
	ID             uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber    string               `gorm:"column:order_number;not null;uniqueIndex"`
	UserID         uuid.UUID            `gorm:"column:user_id;type:uuid;not null;index"`
	Status         enums.OrderStatus    `gorm:"column:status;type:text;not null;default:'PENDING'"`
	Subtotal       decimal.Decimal      `gorm:"column:subtotal;type:numeric(12,2);not null"`
	Tax            decimal.Decimal      `gorm:"column:tax;type:numeric(12,2);not null"`
	Shipping       decimal.Decimal      `gorm:"column:shipping;type:numeric(12,2);not null"`
	Total          decimal.Decimal      `gorm:"column:total;type:numeric(12,2);not null"`
	PaymentMethod  string               `gorm:"column:payment_method;not null"`
	PaymentStatus  enums.PaymentStatus  `gorm:"column:payment_status;type:text;not null;default:'PENDING'"`
	DeliveryMethod enums.DeliveryMethod `gorm:"column:delivery_method;type:text;not null"`
	AddressID      *uuid.UUID           `gorm:"column:address_id;type:uuid"`
	TrackingNumber *string              `gorm:"column:tracking_number"`
	Notes          *string              `gorm:"column:notes"`
	Items          []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	StatusHistory  []OrderStatusHistory `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	TrackingEvents []TrackingEvent      `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Address        *Address             `gorm:"foreignKey:AddressID"`
	User           *User                `gorm:"foreignKey:UserID"`
	CreatedAt      time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
