package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vasthra-labs/vasthra-backend/api/middleware"
	internalorders "github.com/vasthra-labs/vasthra-backend/internal/orders"
	"github.com/vasthra-labs/vasthra-backend/pkg/enums"
	"github.com/vasthra-labs/vasthra-backend/pkg/pagination"
)

type stubOrdersService struct {
	create      func(ctx context.Context, input internalorders.CreateOrderInput) (*internalorders.CreateOrderResult, error)
	update      func(ctx context.Context, input internalorders.UpdateStatusInput) error
	cancel      func(ctx context.Context, input internalorders.CancelInput) error
	addTracking func(ctx context.Context, input internalorders.TrackingEventInput) error
}

func (s *stubOrdersService) Create(ctx context.Context, input internalorders.CreateOrderInput) (*internalorders.CreateOrderResult, error) {
	if s.create != nil {
		return s.create(ctx, input)
	}
	return nil, nil
}

func (s *stubOrdersService) UpdateStatus(ctx context.Context, input internalorders.UpdateStatusInput) error {
	if s.update != nil {
		return s.update(ctx, input)
	}
	return nil
}

func (s *stubOrdersService) Cancel(ctx context.Context, input internalorders.CancelInput) error {
	if s.cancel != nil {
		return s.cancel(ctx, input)
	}
	return nil
}

func (s *stubOrdersService) AddTrackingEvent(ctx context.Context, input internalorders.TrackingEventInput) error {
	if s.addTracking != nil {
		return s.addTracking(ctx, input)
	}
	return nil
}

type stubOrdersQuery struct {
	getByID     func(ctx context.Context, callerID uuid.UUID, callerRole enums.UserRole, orderID uuid.UUID) (*internalorders.OrderDetail, error)
	listForUser func(ctx context.Context, userID uuid.UUID) ([]internalorders.CustomerOrderSummary, error)
	listAll     func(ctx context.Context, callerRole enums.UserRole, params pagination.Params, filters internalorders.AdminOrderFilters) (*internalorders.AdminOrderList, error)
	statistics  func(ctx context.Context, callerRole enums.UserRole) (*internalorders.Statistics, error)
}

func (s *stubOrdersQuery) GetByID(ctx context.Context, callerID uuid.UUID, callerRole enums.UserRole, orderID uuid.UUID) (*internalorders.OrderDetail, error) {
	if s.getByID != nil {
		return s.getByID(ctx, callerID, callerRole, orderID)
	}
	return nil, nil
}

func (s *stubOrdersQuery) ListForUser(ctx context.Context, userID uuid.UUID) ([]internalorders.CustomerOrderSummary, error) {
	if s.listForUser != nil {
		return s.listForUser(ctx, userID)
	}
	return nil, nil
}

func (s *stubOrdersQuery) ListAll(ctx context.Context, callerRole enums.UserRole, params pagination.Params, filters internalorders.AdminOrderFilters) (*internalorders.AdminOrderList, error) {
	if s.listAll != nil {
		return s.listAll(ctx, callerRole, params, filters)
	}
	return nil, nil
}

func (s *stubOrdersQuery) Statistics(ctx context.Context, callerRole enums.UserRole) (*internalorders.Statistics, error) {
	if s.statistics != nil {
		return s.statistics(ctx, callerRole)
	}
	return nil, nil
}

func authedRequest(req *http.Request, userID uuid.UUID, role enums.UserRole) *http.Request {
	ctx := middleware.WithUserID(req.Context(), userID.String())
	ctx = middleware.WithRole(ctx, role)
	return req.WithContext(ctx)
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestCreateOrderMapsPayload(t *testing.T) {
	userID := uuid.New()
	productID := uuid.New()
	var captured internalorders.CreateOrderInput
	svc := &stubOrdersService{
		create: func(ctx context.Context, input internalorders.CreateOrderInput) (*internalorders.CreateOrderResult, error) {
			captured = input
			return &internalorders.CreateOrderResult{OrderID: uuid.New(), OrderNumber: "ORD1234560001"}, nil
		},
	}

	body := `{
		"items":[{"product_id":"` + productID.String() + `","quantity":2,"price":"1500.00","size":"M"}],
		"subtotal":"3000.00","tax":"150.00","shipping":"0","total":"3150.00",
		"payment_method":"upi","delivery_method":"HOME_DELIVERY"
	}`

	handler := CreateOrder(svc, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	req = authedRequest(req, userID, enums.UserRoleCustomer)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}

	if captured.UserID != userID {
		t.Fatalf("user id not taken from context")
	}
	if len(captured.Items) != 1 || captured.Items[0].ProductID != productID || captured.Items[0].Quantity != 2 {
		t.Fatalf("items not mapped: %+v", captured.Items)
	}
	if !captured.Total.Equal(decimal.RequireFromString("3150.00")) {
		t.Fatalf("total not mapped: %s", captured.Total)
	}
	if captured.DeliveryMethod != enums.DeliveryMethodHomeDelivery {
		t.Fatalf("delivery method not mapped: %s", captured.DeliveryMethod)
	}

	var envelope struct {
		Data internalorders.CreateOrderResult `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.OrderNumber != "ORD1234560001" {
		t.Fatalf("order number not returned")
	}
}

func TestCreateOrderRejectsEmptyItems(t *testing.T) {
	handler := CreateOrder(&stubOrdersService{}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(`{"items":[],"payment_method":"upi","delivery_method":"HOME_DELIVERY"}`))
	req = authedRequest(req, uuid.New(), enums.UserRoleCustomer)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCreateOrderRequiresAuth(t *testing.T) {
	handler := CreateOrder(&stubOrdersService{}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(`{}`))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCancelOrderPassesReason(t *testing.T) {
	userID := uuid.New()
	orderID := uuid.New()
	var captured internalorders.CancelInput
	svc := &stubOrdersService{
		cancel: func(ctx context.Context, input internalorders.CancelInput) error {
			captured = input
			return nil
		},
	}

	handler := CancelOrder(svc, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/cancel", strings.NewReader(`{"reason":"Changed my mind"}`))
	req = authedRequest(req, userID, enums.UserRoleCustomer)
	req = withURLParam(req, "orderId", orderID.String())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if captured.OrderID != orderID || captured.UserID != userID {
		t.Fatalf("identifiers not mapped")
	}
	if captured.Reason != "Changed my mind" {
		t.Fatalf("unexpected reason %q", captured.Reason)
	}
}

func TestCancelOrderRejectsBadID(t *testing.T) {
	handler := CancelOrder(&stubOrdersService{}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/not-a-uuid/cancel", strings.NewReader(`{"reason":"oops"}`))
	req = authedRequest(req, uuid.New(), enums.UserRoleCustomer)
	req = withURLParam(req, "orderId", "not-a-uuid")

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestGetOrderForwardsCaller(t *testing.T) {
	userID := uuid.New()
	orderID := uuid.New()
	query := &stubOrdersQuery{
		getByID: func(ctx context.Context, callerID uuid.UUID, callerRole enums.UserRole, incoming uuid.UUID) (*internalorders.OrderDetail, error) {
			if callerID != userID || incoming != orderID {
				t.Fatalf("caller or order id not forwarded")
			}
			if callerRole != enums.UserRoleCustomer {
				t.Fatalf("unexpected role %s", callerRole)
			}
			return &internalorders.OrderDetail{OrderNumber: "ORD0000010001"}, nil
		},
	}

	handler := GetOrder(query, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+orderID.String(), nil)
	req = authedRequest(req, userID, enums.UserRoleCustomer)
	req = withURLParam(req, "orderId", orderID.String())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data internalorders.OrderDetail `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.OrderNumber != "ORD0000010001" {
		t.Fatalf("unexpected order number %q", envelope.Data.OrderNumber)
	}
}
