package orders

import (
	"context"
	stdErrors "errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vasthra-labs/vasthra-backend/pkg/db/models"
	"github.com/vasthra-labs/vasthra-backend/pkg/enums"
	pkgerrors "github.com/vasthra-labs/vasthra-backend/pkg/errors"
	"github.com/vasthra-labs/vasthra-backend/pkg/pagination"
)

const recentOrdersLimit = 5

// Query exposes read-only order views for customers and staff.
type Query interface {
	GetByID(ctx context.Context, callerID uuid.UUID, callerRole enums.UserRole, orderID uuid.UUID) (*OrderDetail, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]CustomerOrderSummary, error)
	ListAll(ctx context.Context, callerRole enums.UserRole, params pagination.Params, filters AdminOrderFilters) (*AdminOrderList, error)
	Statistics(ctx context.Context, callerRole enums.UserRole) (*Statistics, error)
}

type query struct {
	repo Repository
}

// NewQuery builds the order query service.
func NewQuery(repo Repository) (Query, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	return &query{repo: repo}, nil
}

func (q *query) GetByID(ctx context.Context, callerID uuid.UUID, callerRole enums.UserRole, orderID uuid.UUID) (*OrderDetail, error) {
	if callerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	order, err := q.repo.FindOrderDetail(ctx, orderID)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	staff := callerRole.IsStaff()
	// Somebody else's order must be indistinguishable from a missing one.
	if !staff && order.UserID != callerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}

	detail := &OrderDetail{
		ID:             order.ID,
		OrderNumber:    order.OrderNumber,
		Status:         order.Status,
		PaymentStatus:  order.PaymentStatus,
		PaymentMethod:  order.PaymentMethod,
		DeliveryMethod: order.DeliveryMethod,
		Subtotal:       order.Subtotal,
		Tax:            order.Tax,
		Shipping:       order.Shipping,
		Total:          order.Total,
		TrackingNumber: order.TrackingNumber,
		Notes:          order.Notes,
		CreatedAt:      order.CreatedAt,
		Items:          itemViews(order.Items),
		TrackingEvents: trackingViews(order.TrackingEvents),
		StatusHistory:  historyViews(order.StatusHistory),
	}
	if order.Address != nil {
		detail.Address = &AddressView{
			Name:    order.Address.Name,
			Address: order.Address.Address,
			City:    order.Address.City,
			State:   order.Address.State,
			Pincode: order.Address.Pincode,
			Phone:   order.Address.Phone,
		}
	}
	if staff && order.User != nil {
		detail.Customer = customerView(order.User)
	}
	return detail, nil
}

func (q *query) ListForUser(ctx context.Context, userID uuid.UUID) ([]CustomerOrderSummary, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	orders, err := q.repo.ListUserOrders(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	summaries := make([]CustomerOrderSummary, 0, len(orders))
	for _, order := range orders {
		summary := CustomerOrderSummary{
			ID:            order.ID,
			OrderNumber:   order.OrderNumber,
			Status:        order.Status,
			PaymentStatus: order.PaymentStatus,
			Total:         order.Total,
			CreatedAt:     order.CreatedAt,
			Items:         itemViews(order.Items),
		}
		// Tracking events arrive newest first; the card shows only the
		// latest checkpoint.
		if len(order.TrackingEvents) > 0 {
			view := trackingView(order.TrackingEvents[0])
			summary.LatestTracking = &view
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (q *query) ListAll(ctx context.Context, callerRole enums.UserRole, params pagination.Params, filters AdminOrderFilters) (*AdminOrderList, error) {
	if !callerRole.IsStaff() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "staff role required")
	}
	if filters.Status != nil && !filters.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status filter")
	}
	if filters.PaymentStatus != nil && !filters.PaymentStatus.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment status filter")
	}

	params = params.Normalize()
	orders, total, err := q.repo.ListOrders(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	return &AdminOrderList{
		Orders: adminSummaries(orders),
		Meta:   pagination.NewMeta(total, params),
	}, nil
}

func (q *query) Statistics(ctx context.Context, callerRole enums.UserRole) (*Statistics, error) {
	if !callerRole.IsStaff() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "staff role required")
	}

	byStatus, err := q.repo.CountByStatus(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count orders by status")
	}
	byPayment, err := q.repo.CountByPaymentStatus(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count orders by payment status")
	}
	revenue, err := q.repo.SumPaidRevenue(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum revenue")
	}
	recent, err := q.repo.ListRecentOrders(ctx, recentOrdersLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list recent orders")
	}

	var total int64
	for _, count := range byStatus {
		total += count
	}

	return &Statistics{
		TotalOrders:     total,
		ByStatus:        byStatus,
		ByPaymentStatus: byPayment,
		Revenue:         revenue,
		RecentOrders:    adminSummaries(recent),
	}, nil
}

func itemViews(items []models.OrderItem) []OrderItemView {
	views := make([]OrderItemView, 0, len(items))
	for _, item := range items {
		view := OrderItemView{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
			Size:      item.Size,
			Color:     item.Color,
		}
		if item.Product != nil {
			view.Name = item.Product.Name
			view.Images = item.Product.Images
		}
		views = append(views, view)
	}
	return views
}

func trackingView(event models.TrackingEvent) TrackingEventView {
	return TrackingEventView{
		Status:      event.Status,
		Description: event.Description,
		Location:    event.Location,
		Date:        event.Date,
	}
}

func trackingViews(events []models.TrackingEvent) []TrackingEventView {
	views := make([]TrackingEventView, 0, len(events))
	for _, event := range events {
		views = append(views, trackingView(event))
	}
	return views
}

func historyViews(entries []models.OrderStatusHistory) []StatusHistoryView {
	views := make([]StatusHistoryView, 0, len(entries))
	for _, entry := range entries {
		views = append(views, StatusHistoryView{
			Status:    entry.Status,
			Notes:     entry.Notes,
			UpdatedBy: entry.UpdatedBy,
			Timestamp: entry.Timestamp,
		})
	}
	return views
}

func customerView(user *models.User) *OrderCustomer {
	return &OrderCustomer{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Phone: user.Phone,
	}
}

func adminSummaries(orders []models.Order) []AdminOrderSummary {
	summaries := make([]AdminOrderSummary, 0, len(orders))
	for _, order := range orders {
		summary := AdminOrderSummary{
			ID:            order.ID,
			OrderNumber:   order.OrderNumber,
			Status:        order.Status,
			PaymentStatus: order.PaymentStatus,
			Total:         order.Total,
			ItemCount:     len(order.Items),
			CreatedAt:     order.CreatedAt,
		}
		if order.User != nil {
			summary.Customer = *customerView(order.User)
		}
		summaries = append(summaries, summary)
	}
	return summaries
}
