package orders

import (
	"context"
	stdErrors "errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/vasthra-labs/vasthra-backend/internal/inventory"
	"github.com/vasthra-labs/vasthra-backend/pkg/db/models"
	"github.com/vasthra-labs/vasthra-backend/pkg/enums"
	pkgerrors "github.com/vasthra-labs/vasthra-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CartClearer empties the customer's cart once their order is durable. It
// runs inside the order transaction.
type CartClearer interface {
	Clear(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
}

// Service owns all order writes. Nothing else mutates orders or their
// history and tracking children.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) error
	Cancel(ctx context.Context, input CancelInput) error
	AddTrackingEvent(ctx context.Context, input TrackingEventInput) error
}

type service struct {
	repo      Repository
	tx        txRunner
	inventory inventory.Ledger
	cart      CartClearer
	now       func() time.Time
	randInt   func(n int) int
}

// NewService builds the order lifecycle service with the required dependencies.
func NewService(repo Repository, tx txRunner, ledger inventory.Ledger, cart CartClearer) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("inventory ledger required")
	}
	if cart == nil {
		return nil, fmt.Errorf("cart clearer required")
	}
	return &service{
		repo:      repo,
		tx:        tx,
		inventory: ledger,
		cart:      cart,
		now:       time.Now,
		randInt:   rand.Intn,
	}, nil
}

const orderNumberAttempts = 5

// generateOrderNumber builds ORD + the last six digits of a millisecond
// timestamp + a four-digit zero-padded random suffix, e.g. ORD1234560007.
func generateOrderNumber(now time.Time, randInt func(n int) int) string {
	fragment := now.UnixMilli() % 1_000_000
	return fmt.Sprintf("ORD%06d%04d", fragment, randInt(10_000))
}

func isDuplicateOrderNumber(err error) bool {
	if stdErrors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if stdErrors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func (s *service) Create(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order requires at least one item")
	}
	for _, item := range input.Items {
		if item.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item product id required")
		}
		if item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
	}
	if !input.DeliveryMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid delivery method")
	}
	if input.DeliveryMethod == enums.DeliveryMethodHomeDelivery && input.AddressID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "home delivery requires a shipping address")
	}
	if strings.TrimSpace(input.PaymentMethod) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method required")
	}

	var result *CreateOrderResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		// Reserve before insert. A failed reservation aborts the whole
		// transaction, so earlier decrements roll back with it.
		for _, item := range input.Items {
			if err := s.inventory.Reserve(ctx, tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		order := &models.Order{
			ID:             uuid.New(),
			UserID:         input.UserID,
			Status:         enums.OrderStatusPending,
			Subtotal:       input.Subtotal,
			Tax:            input.Tax,
			Shipping:       input.Shipping,
			Total:          input.Total,
			PaymentMethod:  input.PaymentMethod,
			PaymentStatus:  enums.PaymentStatusPending,
			DeliveryMethod: input.DeliveryMethod,
			AddressID:      input.AddressID,
			Notes:          input.Notes,
		}

		var created bool
		for attempt := 0; attempt < orderNumberAttempts; attempt++ {
			order.OrderNumber = generateOrderNumber(s.now(), s.randInt)
			if _, err := repo.CreateOrder(ctx, order); err != nil {
				if isDuplicateOrderNumber(err) {
					continue
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
			}
			created = true
			break
		}
		if !created {
			return pkgerrors.New(pkgerrors.CodeDependency, "could not allocate a unique order number")
		}

		items := make([]models.OrderItem, 0, len(input.Items))
		for _, item := range input.Items {
			items = append(items, models.OrderItem{
				ID:        uuid.New(),
				OrderID:   order.ID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Price:     item.Price,
				Size:      item.Size,
				Color:     item.Color,
			})
		}
		if err := repo.CreateOrderItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order items")
		}

		notes := "Order placed"
		entry := &models.OrderStatusHistory{
			ID:        uuid.New(),
			OrderID:   order.ID,
			Status:    enums.OrderStatusPending,
			Notes:     &notes,
			UpdatedBy: input.UserID,
		}
		if err := repo.AppendStatusHistory(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record status history")
		}

		if err := s.cart.Clear(ctx, tx, input.UserID); err != nil {
			return err
		}

		result = &CreateOrderResult{
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) error {
	if input.ActorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.ActorRole.IsStaff() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "staff role required")
	}
	if input.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.NewStatus.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}
	if input.NewPaymentStatus != nil && !input.NewPaymentStatus.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid payment status")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindOrderWithItems(ctx, input.OrderID)
		if err != nil {
			if stdErrors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.Status == input.NewStatus {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order already in requested status")
		}
		// The repo may refresh the loaded struct on update, so the
		// restock decision below works off a snapshot.
		previousStatus := order.Status

		updates := map[string]any{"status": input.NewStatus}
		if input.NewPaymentStatus != nil {
			updates["payment_status"] = *input.NewPaymentStatus
		}
		if input.TrackingNumber != nil {
			updates["tracking_number"] = *input.TrackingNumber
		}
		if err := repo.UpdateOrder(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
		}

		entry := &models.OrderStatusHistory{
			ID:        uuid.New(),
			OrderID:   order.ID,
			Status:    input.NewStatus,
			Notes:     input.Notes,
			UpdatedBy: input.ActorID,
		}
		if err := repo.AppendStatusHistory(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record status history")
		}

		switch input.NewStatus {
		case enums.OrderStatusShipped:
			if input.TrackingNumber != nil {
				desc := fmt.Sprintf("Your order has been shipped with tracking number %s", *input.TrackingNumber)
				if err := repo.AppendTrackingEvent(ctx, trackingEvent(order.ID, "Shipped", desc)); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record tracking event")
				}
			}

		case enums.OrderStatusDelivered:
			if err := repo.AppendTrackingEvent(ctx, trackingEvent(order.ID, "Delivered", "Your order has been delivered successfully")); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record tracking event")
			}

		case enums.OrderStatusCancelled:
			// Restock only when stock is still held. Orders past
			// PROCESSING already left the warehouse.
			if previousStatus.IsCancellable() {
				for _, item := range order.Items {
					if err := s.inventory.Release(ctx, tx, item.ProductID, item.Quantity); err != nil {
						return err
					}
				}
			}
			if err := repo.AppendTrackingEvent(ctx, trackingEvent(order.ID, "Cancelled", "Your order has been cancelled")); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record tracking event")
			}
		}

		return nil
	})
}

func (s *service) Cancel(ctx context.Context, input CancelInput) error {
	if input.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindOrderWithItems(ctx, input.OrderID)
		if err != nil {
			if stdErrors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		// Ownership failures read the same as missing orders so callers
		// cannot probe for other customers' order ids.
		if order.UserID != input.UserID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		if !order.Status.IsCancellable() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order can no longer be cancelled")
		}

		if err := repo.UpdateOrder(ctx, order.ID, map[string]any{"status": enums.OrderStatusCancelled}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
		}

		notes := fmt.Sprintf("Cancelled by customer. Reason: %s", input.Reason)
		entry := &models.OrderStatusHistory{
			ID:        uuid.New(),
			OrderID:   order.ID,
			Status:    enums.OrderStatusCancelled,
			Notes:     &notes,
			UpdatedBy: input.UserID,
		}
		if err := repo.AppendStatusHistory(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record status history")
		}

		desc := fmt.Sprintf("Order cancelled by customer. Reason: %s", input.Reason)
		if err := repo.AppendTrackingEvent(ctx, trackingEvent(order.ID, "Cancelled", desc)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record tracking event")
		}

		for _, item := range order.Items {
			if err := s.inventory.Release(ctx, tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *service) AddTrackingEvent(ctx context.Context, input TrackingEventInput) error {
	if input.ActorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.ActorRole.IsStaff() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "staff role required")
	}
	if input.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if strings.TrimSpace(input.Status) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "tracking status required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if _, err := repo.FindOrder(ctx, input.OrderID); err != nil {
			if stdErrors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		event := &models.TrackingEvent{
			ID:          uuid.New(),
			OrderID:     input.OrderID,
			Status:      input.Status,
			Description: input.Description,
			Location:    input.Location,
		}
		if err := repo.AppendTrackingEvent(ctx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record tracking event")
		}
		return nil
	})
}

func trackingEvent(orderID uuid.UUID, status, description string) *models.TrackingEvent {
	return &models.TrackingEvent{
		ID:          uuid.New(),
		OrderID:     orderID,
		Status:      status,
		Description: &description,
	}
}
