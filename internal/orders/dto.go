package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vasthra-labs/vasthra-backend/pkg/enums"
	"github.com/vasthra-labs/vasthra-backend/pkg/pagination"
)

// CreateOrderItem is one checkout line as submitted by the storefront.
// The price is the unit price the customer saw and is persisted as-is.
type CreateOrderItem struct {
	ProductID uuid.UUID
	Quantity  int
	Price     decimal.Decimal
	Size      *string
	Color     *string
}

// CreateOrderInput carries everything required to place an order. Monetary
// totals are computed by the storefront and trusted here.
type CreateOrderInput struct {
	UserID         uuid.UUID
	Items          []CreateOrderItem
	Subtotal       decimal.Decimal
	Tax            decimal.Decimal
	Shipping       decimal.Decimal
	Total          decimal.Decimal
	PaymentMethod  string
	DeliveryMethod enums.DeliveryMethod
	AddressID      *uuid.UUID
	Notes          *string
}

// CreateOrderResult identifies the freshly placed order.
type CreateOrderResult struct {
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
}

// UpdateStatusInput captures a staff-side lifecycle update.
type UpdateStatusInput struct {
	ActorID          uuid.UUID
	ActorRole        enums.UserRole
	OrderID          uuid.UUID
	NewStatus        enums.OrderStatus
	NewPaymentStatus *enums.PaymentStatus
	TrackingNumber   *string
	Notes            *string
}

// CancelInput captures a customer-initiated cancellation.
type CancelInput struct {
	UserID  uuid.UUID
	OrderID uuid.UUID
	Reason  string
}

// TrackingEventInput appends a checkpoint to the shipping narrative.
type TrackingEventInput struct {
	ActorID     uuid.UUID
	ActorRole   enums.UserRole
	OrderID     uuid.UUID
	Status      string
	Description *string
	Location    *string
}

// AdminOrderFilters describe the inputs supported by the staff order list.
type AdminOrderFilters struct {
	Status        *enums.OrderStatus
	PaymentStatus *enums.PaymentStatus
	DateFrom      *time.Time
	DateTo        *time.Time
	Query         string
}

// OrderCustomer is the owner contact projection shown to staff.
type OrderCustomer struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Phone *string   `json:"phone,omitempty"`
}

// OrderItemView is the line-item projection embedded in order reads.
type OrderItemView struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Images    []string        `json:"images,omitempty"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Size      *string         `json:"size,omitempty"`
	Color     *string         `json:"color,omitempty"`
}

// TrackingEventView is one checkpoint in the shipping narrative.
type TrackingEventView struct {
	Status      string    `json:"status"`
	Description *string   `json:"description,omitempty"`
	Location    *string   `json:"location,omitempty"`
	Date        time.Time `json:"date"`
}

// StatusHistoryView is one audit entry of the order state machine.
type StatusHistoryView struct {
	Status    enums.OrderStatus `json:"status"`
	Notes     *string           `json:"notes,omitempty"`
	UpdatedBy uuid.UUID         `json:"updated_by"`
	Timestamp time.Time         `json:"timestamp"`
}

// AddressView is the shipping address snapshot embedded in order detail.
type AddressView struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
	Phone   string `json:"phone"`
}

// OrderDetail is the full order view. Customer contact is populated only
// when the caller is staff.
type OrderDetail struct {
	ID             uuid.UUID            `json:"id"`
	OrderNumber    string               `json:"order_number"`
	Status         enums.OrderStatus    `json:"status"`
	PaymentStatus  enums.PaymentStatus  `json:"payment_status"`
	PaymentMethod  string               `json:"payment_method"`
	DeliveryMethod enums.DeliveryMethod `json:"delivery_method"`
	Subtotal       decimal.Decimal      `json:"subtotal"`
	Tax            decimal.Decimal      `json:"tax"`
	Shipping       decimal.Decimal      `json:"shipping"`
	Total          decimal.Decimal      `json:"total"`
	TrackingNumber *string              `json:"tracking_number,omitempty"`
	Notes          *string              `json:"notes,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
	Items          []OrderItemView      `json:"items"`
	Address        *AddressView         `json:"address,omitempty"`
	TrackingEvents []TrackingEventView  `json:"tracking_events"`
	StatusHistory  []StatusHistoryView  `json:"status_history"`
	Customer       *OrderCustomer       `json:"customer,omitempty"`
}

// CustomerOrderSummary is the per-order card on the customer's order list.
type CustomerOrderSummary struct {
	ID             uuid.UUID           `json:"id"`
	OrderNumber    string              `json:"order_number"`
	Status         enums.OrderStatus   `json:"status"`
	PaymentStatus  enums.PaymentStatus `json:"payment_status"`
	Total          decimal.Decimal     `json:"total"`
	CreatedAt      time.Time           `json:"created_at"`
	Items          []OrderItemView     `json:"items"`
	LatestTracking *TrackingEventView  `json:"latest_tracking,omitempty"`
}

// AdminOrderSummary is one row of the staff console list.
type AdminOrderSummary struct {
	ID            uuid.UUID           `json:"id"`
	OrderNumber   string              `json:"order_number"`
	Status        enums.OrderStatus   `json:"status"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`
	Total         decimal.Decimal     `json:"total"`
	ItemCount     int                 `json:"item_count"`
	CreatedAt     time.Time           `json:"created_at"`
	Customer      OrderCustomer       `json:"customer"`
}

// AdminOrderList wraps one page of the staff list plus page arithmetic.
type AdminOrderList struct {
	Orders []AdminOrderSummary `json:"orders"`
	Meta   pagination.Meta     `json:"meta"`
}

// Statistics is the staff dashboard aggregate.
type Statistics struct {
	TotalOrders     int64                         `json:"total_orders"`
	ByStatus        map[enums.OrderStatus]int64   `json:"by_status"`
	ByPaymentStatus map[enums.PaymentStatus]int64 `json:"by_payment_status"`
	Revenue         decimal.Decimal               `json:"revenue"`
	RecentOrders    []AdminOrderSummary           `json:"recent_orders"`
}
