package orders

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vasthra-labs/vasthra-backend/pkg/db/models"
	"github.com/vasthra-labs/vasthra-backend/pkg/enums"
	"github.com/vasthra-labs/vasthra-backend/pkg/pagination"
)

// Repository defines persistence operations for order tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	CreateOrderItems(ctx context.Context, items []models.OrderItem) error
	AppendStatusHistory(ctx context.Context, entry *models.OrderStatusHistory) error
	AppendTrackingEvent(ctx context.Context, event *models.TrackingEvent) error
	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindOrderWithItems(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindOrderDetail(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	ListUserOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	ListOrders(ctx context.Context, params pagination.Params, filters AdminOrderFilters) ([]models.Order, int64, error)
	UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error
	CountByStatus(ctx context.Context) (map[enums.OrderStatus]int64, error)
	CountByPaymentStatus(ctx context.Context) (map[enums.PaymentStatus]int64, error)
	SumPaidRevenue(ctx context.Context) (decimal.Decimal, error)
	ListRecentOrders(ctx context.Context, limit int) ([]models.Order, error)
}
