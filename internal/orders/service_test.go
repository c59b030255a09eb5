package orders

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vasthra-labs/vasthra-backend/pkg/db/models"
	"github.com/vasthra-labs/vasthra-backend/pkg/enums"
	pkgerrors "github.com/vasthra-labs/vasthra-backend/pkg/errors"
	"github.com/vasthra-labs/vasthra-backend/pkg/pagination"
)

type stubOrdersRepo struct {
	order        *models.Order
	createdOrder *models.Order
	items        []models.OrderItem
	history      []models.OrderStatusHistory
	events       []models.TrackingEvent
	orderUpdates map[string]any
	createOrder  func(ctx context.Context, order *models.Order) (*models.Order, error)
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubOrdersRepo) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if s.createOrder != nil {
		return s.createOrder(ctx, order)
	}
	s.createdOrder = order
	return order, nil
}

func (s *stubOrdersRepo) CreateOrderItems(ctx context.Context, items []models.OrderItem) error {
	s.items = append(s.items, items...)
	return nil
}

func (s *stubOrdersRepo) AppendStatusHistory(ctx context.Context, entry *models.OrderStatusHistory) error {
	s.history = append(s.history, *entry)
	return nil
}

func (s *stubOrdersRepo) AppendTrackingEvent(ctx context.Context, event *models.TrackingEvent) error {
	s.events = append(s.events, *event)
	return nil
}

func (s *stubOrdersRepo) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if s.order == nil || s.order.ID != orderID {
		return nil, gorm.ErrRecordNotFound
	}
	return s.order, nil
}

func (s *stubOrdersRepo) FindOrderWithItems(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return s.FindOrder(ctx, orderID)
}

func (s *stubOrdersRepo) FindOrderDetail(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return s.FindOrder(ctx, orderID)
}

func (s *stubOrdersRepo) ListUserOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	panic("not implemented")
}

func (s *stubOrdersRepo) ListOrders(ctx context.Context, params pagination.Params, filters AdminOrderFilters) ([]models.Order, int64, error) {
	panic("not implemented")
}

func (s *stubOrdersRepo) UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	s.orderUpdates = updates
	if s.order == nil || s.order.ID != orderID {
		return gorm.ErrRecordNotFound
	}
	if v, ok := updates["status"].(enums.OrderStatus); ok {
		s.order.Status = v
	}
	if v, ok := updates["payment_status"].(enums.PaymentStatus); ok {
		s.order.PaymentStatus = v
	}
	if v, ok := updates["tracking_number"].(string); ok {
		s.order.TrackingNumber = &v
	}
	return nil
}

func (s *stubOrdersRepo) CountByStatus(ctx context.Context) (map[enums.OrderStatus]int64, error) {
	panic("not implemented")
}

func (s *stubOrdersRepo) CountByPaymentStatus(ctx context.Context) (map[enums.PaymentStatus]int64, error) {
	panic("not implemented")
}

func (s *stubOrdersRepo) SumPaidRevenue(ctx context.Context) (decimal.Decimal, error) {
	panic("not implemented")
}

func (s *stubOrdersRepo) ListRecentOrders(ctx context.Context, limit int) ([]models.Order, error) {
	panic("not implemented")
}

type stockCall struct {
	productID uuid.UUID
	qty       int
}

type stubLedger struct {
	reserves   []stockCall
	releases   []stockCall
	reserveErr func(productID uuid.UUID) error
}

func (s *stubLedger) Reserve(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	if s.reserveErr != nil {
		if err := s.reserveErr(productID); err != nil {
			return err
		}
	}
	s.reserves = append(s.reserves, stockCall{productID: productID, qty: qty})
	return nil
}

func (s *stubLedger) Release(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	s.releases = append(s.releases, stockCall{productID: productID, qty: qty})
	return nil
}

type stubCartClearer struct {
	cleared []uuid.UUID
	err     error
}

func (s *stubCartClearer) Clear(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	if s.err != nil {
		return s.err
	}
	s.cleared = append(s.cleared, userID)
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newTestService(t *testing.T, repo *stubOrdersRepo, ledger *stubLedger, cart *stubCartClearer) Service {
	t.Helper()

	svc, err := NewService(repo, stubTxRunner{}, ledger, cart)
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}
	return svc
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	appErr := pkgerrors.As(err)
	if appErr == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	if appErr.Code() != code {
		t.Fatalf("expected code %s got %s", code, appErr.Code())
	}
}

var orderNumberRe = regexp.MustCompile(`^ORD\d{10}$`)

func validCreateInput(userID uuid.UUID, items ...CreateOrderItem) CreateOrderInput {
	return CreateOrderInput{
		UserID:         userID,
		Items:          items,
		Subtotal:       decimal.NewFromInt(2000),
		Tax:            decimal.NewFromInt(100),
		Shipping:       decimal.NewFromInt(50),
		Total:          decimal.NewFromInt(2150),
		PaymentMethod:  "UPI",
		DeliveryMethod: enums.DeliveryMethodStorePickup,
	}
}

func TestGenerateOrderNumberFormat(t *testing.T) {
	now := time.UnixMilli(1712345123456)
	number := generateOrderNumber(now, func(int) int { return 7 })
	if number != "ORD1234560007" {
		t.Fatalf("unexpected order number %s", number)
	}
	if !orderNumberRe.MatchString(number) {
		t.Fatalf("order number %s does not match format", number)
	}
}

func TestCreateOrderHappyPath(t *testing.T) {
	repo := &stubOrdersRepo{}
	ledger := &stubLedger{}
	cart := &stubCartClearer{}
	svc := newTestService(t, repo, ledger, cart)

	userID := uuid.New()
	productID := uuid.New()
	input := validCreateInput(userID, CreateOrderItem{
		ProductID: productID,
		Quantity:  2,
		Price:     decimal.NewFromInt(1000),
	})

	result, err := svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if !orderNumberRe.MatchString(result.OrderNumber) {
		t.Fatalf("order number %s does not match format", result.OrderNumber)
	}
	if repo.createdOrder == nil {
		t.Fatal("expected order persisted")
	}
	if repo.createdOrder.Status != enums.OrderStatusPending {
		t.Fatalf("expected PENDING got %s", repo.createdOrder.Status)
	}
	if repo.createdOrder.PaymentStatus != enums.PaymentStatusPending {
		t.Fatalf("expected payment PENDING got %s", repo.createdOrder.PaymentStatus)
	}
	if len(repo.items) != 1 || repo.items[0].Quantity != 2 {
		t.Fatalf("unexpected order items %+v", repo.items)
	}
	if len(ledger.reserves) != 1 || ledger.reserves[0] != (stockCall{productID: productID, qty: 2}) {
		t.Fatalf("unexpected reservations %+v", ledger.reserves)
	}
	if len(repo.history) != 1 {
		t.Fatalf("expected exactly one history entry, got %d", len(repo.history))
	}
	if repo.history[0].Status != enums.OrderStatusPending || repo.history[0].Notes == nil || *repo.history[0].Notes != "Order placed" {
		t.Fatalf("unexpected history entry %+v", repo.history[0])
	}
	if len(cart.cleared) != 1 || cart.cleared[0] != userID {
		t.Fatalf("expected cart cleared for %s, got %+v", userID, cart.cleared)
	}
}

func TestCreateOrderValidation(t *testing.T) {
	repo := &stubOrdersRepo{}
	ledger := &stubLedger{}
	cart := &stubCartClearer{}
	svc := newTestService(t, repo, ledger, cart)

	userID := uuid.New()

	_, err := svc.Create(context.Background(), validCreateInput(userID))
	assertCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.Create(context.Background(), validCreateInput(userID, CreateOrderItem{
		ProductID: uuid.New(),
		Quantity:  0,
		Price:     decimal.NewFromInt(1000),
	}))
	assertCode(t, err, pkgerrors.CodeValidation)

	input := validCreateInput(userID, CreateOrderItem{
		ProductID: uuid.New(),
		Quantity:  1,
		Price:     decimal.NewFromInt(1000),
	})
	input.DeliveryMethod = enums.DeliveryMethodHomeDelivery
	input.AddressID = nil
	_, err = svc.Create(context.Background(), input)
	assertCode(t, err, pkgerrors.CodeValidation)

	if len(ledger.reserves) != 0 {
		t.Fatalf("validation failures must not reserve stock, got %+v", ledger.reserves)
	}
}

func TestCreateOrderReservationFailureAborts(t *testing.T) {
	repo := &stubOrdersRepo{}
	failing := uuid.New()
	ledger := &stubLedger{
		reserveErr: func(productID uuid.UUID) error {
			if productID == failing {
				return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock")
			}
			return nil
		},
	}
	cart := &stubCartClearer{}
	svc := newTestService(t, repo, ledger, cart)

	userID := uuid.New()
	input := validCreateInput(userID,
		CreateOrderItem{ProductID: uuid.New(), Quantity: 1, Price: decimal.NewFromInt(500)},
		CreateOrderItem{ProductID: failing, Quantity: 3, Price: decimal.NewFromInt(700)},
	)

	_, err := svc.Create(context.Background(), input)
	assertCode(t, err, pkgerrors.CodeInsufficientStock)

	if repo.createdOrder != nil {
		t.Fatal("no order must be created when a reservation fails")
	}
	if len(cart.cleared) != 0 {
		t.Fatal("cart must not be cleared when a reservation fails")
	}
}

func TestCreateOrderRetriesDuplicateOrderNumber(t *testing.T) {
	attempts := 0
	repo := &stubOrdersRepo{}
	repo.createOrder = func(ctx context.Context, order *models.Order) (*models.Order, error) {
		attempts++
		if attempts == 1 {
			return nil, &duplicateErr{}
		}
		repo.createdOrder = order
		return order, nil
	}
	ledger := &stubLedger{}
	cart := &stubCartClearer{}
	svc := newTestService(t, repo, ledger, cart)

	result, err := svc.Create(context.Background(), validCreateInput(uuid.New(), CreateOrderItem{
		ProductID: uuid.New(),
		Quantity:  1,
		Price:     decimal.NewFromInt(999),
	}))
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 insert attempts got %d", attempts)
	}
	if !orderNumberRe.MatchString(result.OrderNumber) {
		t.Fatalf("order number %s does not match format", result.OrderNumber)
	}
}

type duplicateErr struct{}

func (duplicateErr) Error() string {
	return "UNIQUE constraint failed: orders.order_number"
}

func TestUpdateStatusRequiresStaff(t *testing.T) {
	repo := &stubOrdersRepo{}
	svc := newTestService(t, repo, &stubLedger{}, &stubCartClearer{})

	err := svc.UpdateStatus(context.Background(), UpdateStatusInput{
		ActorID:   uuid.New(),
		ActorRole: enums.UserRoleCustomer,
		OrderID:   uuid.New(),
		NewStatus: enums.OrderStatusProcessing,
	})
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestUpdateStatusShippedAddsTrackingEvent(t *testing.T) {
	orderID := uuid.New()
	repo := &stubOrdersRepo{
		order: &models.Order{
			ID:     orderID,
			UserID: uuid.New(),
			Status: enums.OrderStatusProcessing,
		},
	}
	ledger := &stubLedger{}
	svc := newTestService(t, repo, ledger, &stubCartClearer{})

	trk := "TRK123456"
	err := svc.UpdateStatus(context.Background(), UpdateStatusInput{
		ActorID:        uuid.New(),
		ActorRole:      enums.UserRoleStaff,
		OrderID:        orderID,
		NewStatus:      enums.OrderStatusShipped,
		TrackingNumber: &trk,
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if repo.order.Status != enums.OrderStatusShipped {
		t.Fatalf("expected SHIPPED got %s", repo.order.Status)
	}
	if len(repo.history) != 1 {
		t.Fatalf("expected exactly one history entry, got %d", len(repo.history))
	}
	if len(repo.events) != 1 {
		t.Fatalf("expected one tracking event, got %d", len(repo.events))
	}
	event := repo.events[0]
	if event.Status != "Shipped" {
		t.Fatalf("unexpected event status %s", event.Status)
	}
	if event.Description == nil || *event.Description != "Your order has been shipped with tracking number TRK123456" {
		t.Fatalf("unexpected event description %v", event.Description)
	}
	if len(ledger.releases) != 0 {
		t.Fatalf("shipping must not touch stock, got %+v", ledger.releases)
	}
}

func TestUpdateStatusDeliveredAddsTrackingEvent(t *testing.T) {
	orderID := uuid.New()
	repo := &stubOrdersRepo{
		order: &models.Order{
			ID:     orderID,
			UserID: uuid.New(),
			Status: enums.OrderStatusShipped,
		},
	}
	svc := newTestService(t, repo, &stubLedger{}, &stubCartClearer{})

	paid := enums.PaymentStatusPaid
	err := svc.UpdateStatus(context.Background(), UpdateStatusInput{
		ActorID:          uuid.New(),
		ActorRole:        enums.UserRoleAdmin,
		OrderID:          orderID,
		NewStatus:        enums.OrderStatusDelivered,
		NewPaymentStatus: &paid,
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if repo.order.PaymentStatus != enums.PaymentStatusPaid {
		t.Fatalf("expected payment PAID got %s", repo.order.PaymentStatus)
	}
	if len(repo.events) != 1 {
		t.Fatalf("expected one tracking event, got %d", len(repo.events))
	}
	if repo.events[0].Description == nil || *repo.events[0].Description != "Your order has been delivered successfully" {
		t.Fatalf("unexpected event description %v", repo.events[0].Description)
	}
}

func TestUpdateStatusCancelledReleasesHeldStock(t *testing.T) {
	orderID := uuid.New()
	productID := uuid.New()
	repo := &stubOrdersRepo{
		order: &models.Order{
			ID:     orderID,
			UserID: uuid.New(),
			Status: enums.OrderStatusProcessing,
			Items: []models.OrderItem{
				{OrderID: orderID, ProductID: productID, Quantity: 4},
			},
		},
	}
	ledger := &stubLedger{}
	svc := newTestService(t, repo, ledger, &stubCartClearer{})

	err := svc.UpdateStatus(context.Background(), UpdateStatusInput{
		ActorID:   uuid.New(),
		ActorRole: enums.UserRoleStaff,
		OrderID:   orderID,
		NewStatus: enums.OrderStatusCancelled,
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if len(ledger.releases) != 1 || ledger.releases[0] != (stockCall{productID: productID, qty: 4}) {
		t.Fatalf("expected stock release, got %+v", ledger.releases)
	}
	if len(repo.events) != 1 || repo.events[0].Status != "Cancelled" {
		t.Fatalf("expected cancelled tracking event, got %+v", repo.events)
	}
	if repo.events[0].Description == nil || *repo.events[0].Description != "Your order has been cancelled" {
		t.Fatalf("unexpected event description %v", repo.events[0].Description)
	}
}

func TestUpdateStatusCancelledAfterShipmentKeepsStock(t *testing.T) {
	orderID := uuid.New()
	repo := &stubOrdersRepo{
		order: &models.Order{
			ID:     orderID,
			UserID: uuid.New(),
			Status: enums.OrderStatusShipped,
			Items: []models.OrderItem{
				{OrderID: orderID, ProductID: uuid.New(), Quantity: 2},
			},
		},
	}
	ledger := &stubLedger{}
	svc := newTestService(t, repo, ledger, &stubCartClearer{})

	err := svc.UpdateStatus(context.Background(), UpdateStatusInput{
		ActorID:   uuid.New(),
		ActorRole: enums.UserRoleStaff,
		OrderID:   orderID,
		NewStatus: enums.OrderStatusCancelled,
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if len(ledger.releases) != 0 {
		t.Fatalf("stock already shipped must not be released, got %+v", ledger.releases)
	}
}

func TestUpdateStatusRejectsNoopTransition(t *testing.T) {
	orderID := uuid.New()
	repo := &stubOrdersRepo{
		order: &models.Order{
			ID:     orderID,
			UserID: uuid.New(),
			Status: enums.OrderStatusProcessing,
		},
	}
	svc := newTestService(t, repo, &stubLedger{}, &stubCartClearer{})

	err := svc.UpdateStatus(context.Background(), UpdateStatusInput{
		ActorID:   uuid.New(),
		ActorRole: enums.UserRoleStaff,
		OrderID:   orderID,
		NewStatus: enums.OrderStatusProcessing,
	})
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestCancelHidesForeignOrders(t *testing.T) {
	orderID := uuid.New()
	repo := &stubOrdersRepo{
		order: &models.Order{
			ID:     orderID,
			UserID: uuid.New(),
			Status: enums.OrderStatusPending,
		},
	}
	svc := newTestService(t, repo, &stubLedger{}, &stubCartClearer{})

	err := svc.Cancel(context.Background(), CancelInput{
		UserID:  uuid.New(),
		OrderID: orderID,
		Reason:  "changed mind",
	})
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestCancelRejectsShippedOrder(t *testing.T) {
	orderID := uuid.New()
	owner := uuid.New()
	repo := &stubOrdersRepo{
		order: &models.Order{
			ID:     orderID,
			UserID: owner,
			Status: enums.OrderStatusShipped,
		},
	}
	ledger := &stubLedger{}
	svc := newTestService(t, repo, ledger, &stubCartClearer{})

	err := svc.Cancel(context.Background(), CancelInput{
		UserID:  owner,
		OrderID: orderID,
		Reason:  "too late",
	})
	assertCode(t, err, pkgerrors.CodeStateConflict)
	if len(ledger.releases) != 0 {
		t.Fatalf("rejected cancellation must not release stock, got %+v", ledger.releases)
	}
}

func TestCancelHappyPath(t *testing.T) {
	orderID := uuid.New()
	owner := uuid.New()
	productID := uuid.New()
	repo := &stubOrdersRepo{
		order: &models.Order{
			ID:     orderID,
			UserID: owner,
			Status: enums.OrderStatusPending,
			Items: []models.OrderItem{
				{OrderID: orderID, ProductID: productID, Quantity: 2},
			},
		},
	}
	ledger := &stubLedger{}
	svc := newTestService(t, repo, ledger, &stubCartClearer{})

	err := svc.Cancel(context.Background(), CancelInput{
		UserID:  owner,
		OrderID: orderID,
		Reason:  "changed mind",
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if repo.order.Status != enums.OrderStatusCancelled {
		t.Fatalf("expected CANCELLED got %s", repo.order.Status)
	}
	if len(repo.history) != 1 {
		t.Fatalf("expected exactly one history entry, got %d", len(repo.history))
	}
	if repo.history[0].Notes == nil || *repo.history[0].Notes != "Cancelled by customer. Reason: changed mind" {
		t.Fatalf("unexpected history notes %v", repo.history[0].Notes)
	}
	if len(repo.events) != 1 {
		t.Fatalf("expected one tracking event, got %d", len(repo.events))
	}
	if repo.events[0].Description == nil || *repo.events[0].Description != "Order cancelled by customer. Reason: changed mind" {
		t.Fatalf("unexpected event description %v", repo.events[0].Description)
	}
	if len(ledger.releases) != 1 || ledger.releases[0] != (stockCall{productID: productID, qty: 2}) {
		t.Fatalf("expected stock release, got %+v", ledger.releases)
	}
}

func TestAddTrackingEventRequiresStaff(t *testing.T) {
	svc := newTestService(t, &stubOrdersRepo{}, &stubLedger{}, &stubCartClearer{})

	err := svc.AddTrackingEvent(context.Background(), TrackingEventInput{
		ActorID:   uuid.New(),
		ActorRole: enums.UserRoleCustomer,
		OrderID:   uuid.New(),
		Status:    "In transit",
	})
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestAddTrackingEventAppendsOnly(t *testing.T) {
	orderID := uuid.New()
	repo := &stubOrdersRepo{
		order: &models.Order{
			ID:     orderID,
			UserID: uuid.New(),
			Status: enums.OrderStatusShipped,
		},
	}
	ledger := &stubLedger{}
	svc := newTestService(t, repo, ledger, &stubCartClearer{})

	location := "Chennai hub"
	err := svc.AddTrackingEvent(context.Background(), TrackingEventInput{
		ActorID:   uuid.New(),
		ActorRole: enums.UserRoleStaff,
		OrderID:   orderID,
		Status:    "In transit",
		Location:  &location,
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if len(repo.events) != 1 || repo.events[0].Status != "In transit" {
		t.Fatalf("expected appended event, got %+v", repo.events)
	}
	if repo.order.Status != enums.OrderStatusShipped {
		t.Fatalf("order status must not change, got %s", repo.order.Status)
	}
	if len(repo.history) != 0 {
		t.Fatalf("tracking events must not touch history, got %+v", repo.history)
	}
	if len(ledger.releases)+len(ledger.reserves) != 0 {
		t.Fatal("tracking events must not touch stock")
	}
}
