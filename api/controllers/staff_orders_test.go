package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	internalorders "github.com/vasthra-labs/vasthra-backend/internal/orders"
	"github.com/vasthra-labs/vasthra-backend/pkg/enums"
	"github.com/vasthra-labs/vasthra-backend/pkg/pagination"
)

func TestStaffListOrdersParsesFilters(t *testing.T) {
	var capturedParams pagination.Params
	var capturedFilters internalorders.AdminOrderFilters
	query := &stubOrdersQuery{
		listAll: func(ctx context.Context, callerRole enums.UserRole, params pagination.Params, filters internalorders.AdminOrderFilters) (*internalorders.AdminOrderList, error) {
			if callerRole != enums.UserRoleAdmin {
				t.Fatalf("role not forwarded: %s", callerRole)
			}
			capturedParams = params
			capturedFilters = filters
			return &internalorders.AdminOrderList{
				Orders: []internalorders.AdminOrderSummary{{OrderNumber: "ORD0000010001"}},
				Meta:   pagination.Meta{Total: 23, Page: 3, Limit: 10, TotalPages: 3},
			}, nil
		},
	}

	handler := StaffListOrders(query, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/staff/v1/orders?page=3&limit=10&status=SHIPPED&payment_status=PAID&q=arjun&date_from=2026-08-01", nil)
	req = authedRequest(req, uuid.New(), enums.UserRoleAdmin)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	if capturedParams.Page != 3 || capturedParams.Limit != 10 {
		t.Fatalf("pagination not parsed: %+v", capturedParams)
	}
	if capturedFilters.Status == nil || *capturedFilters.Status != enums.OrderStatusShipped {
		t.Fatalf("status filter not parsed")
	}
	if capturedFilters.PaymentStatus == nil || *capturedFilters.PaymentStatus != enums.PaymentStatusPaid {
		t.Fatalf("payment status filter not parsed")
	}
	if capturedFilters.Query != "arjun" {
		t.Fatalf("search query not parsed: %q", capturedFilters.Query)
	}
	if capturedFilters.DateFrom == nil || !capturedFilters.DateFrom.Equal(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("date_from not parsed: %v", capturedFilters.DateFrom)
	}

	var envelope struct {
		Data internalorders.AdminOrderList `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Meta.TotalPages != 3 {
		t.Fatalf("meta not returned: %+v", envelope.Data.Meta)
	}
}

func TestStaffListOrdersRejectsBadDate(t *testing.T) {
	handler := StaffListOrders(&stubOrdersQuery{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/staff/v1/orders?date_from=yesterday", nil)
	req = authedRequest(req, uuid.New(), enums.UserRoleAdmin)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestStaffUpdateOrderStatusMapsPayload(t *testing.T) {
	actorID := uuid.New()
	orderID := uuid.New()
	var captured internalorders.UpdateStatusInput
	svc := &stubOrdersService{
		update: func(ctx context.Context, input internalorders.UpdateStatusInput) error {
			captured = input
			return nil
		},
	}

	body := `{"status":"SHIPPED","payment_status":"PAID","tracking_number":"TRK9955","notes":"Dispatched via BlueDart"}`
	handler := StaffUpdateOrderStatus(svc, nil)
	req := httptest.NewRequest(http.MethodPatch, "/api/staff/v1/orders/"+orderID.String()+"/status", strings.NewReader(body))
	req = authedRequest(req, actorID, enums.UserRoleAdmin)
	req = withURLParam(req, "orderId", orderID.String())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	if captured.ActorID != actorID || captured.OrderID != orderID {
		t.Fatalf("identifiers not mapped")
	}
	if captured.NewStatus != enums.OrderStatusShipped {
		t.Fatalf("status not mapped: %s", captured.NewStatus)
	}
	if captured.NewPaymentStatus == nil || *captured.NewPaymentStatus != enums.PaymentStatusPaid {
		t.Fatalf("payment status not mapped")
	}
	if captured.TrackingNumber == nil || *captured.TrackingNumber != "TRK9955" {
		t.Fatalf("tracking number not mapped")
	}
}

func TestStaffAddTrackingEvent(t *testing.T) {
	actorID := uuid.New()
	orderID := uuid.New()
	var captured internalorders.TrackingEventInput
	svc := &stubOrdersService{
		addTracking: func(ctx context.Context, input internalorders.TrackingEventInput) error {
			captured = input
			return nil
		},
	}

	body := `{"status":"In Transit","description":"Left the Chennai hub","location":"Chennai"}`
	handler := StaffAddTrackingEvent(svc, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/staff/v1/orders/"+orderID.String()+"/tracking-events", strings.NewReader(body))
	req = authedRequest(req, actorID, enums.UserRoleAdmin)
	req = withURLParam(req, "orderId", orderID.String())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}

	if captured.Status != "In Transit" {
		t.Fatalf("status not mapped: %q", captured.Status)
	}
	if captured.Location == nil || *captured.Location != "Chennai" {
		t.Fatalf("location not mapped")
	}
}

func TestStaffOrderStatistics(t *testing.T) {
	query := &stubOrdersQuery{
		statistics: func(ctx context.Context, callerRole enums.UserRole) (*internalorders.Statistics, error) {
			return &internalorders.Statistics{TotalOrders: 7}, nil
		},
	}

	handler := StaffOrderStatistics(query, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/staff/v1/orders/statistics", nil)
	req = authedRequest(req, uuid.New(), enums.UserRoleAdmin)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data internalorders.Statistics `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.TotalOrders != 7 {
		t.Fatalf("unexpected total %d", envelope.Data.TotalOrders)
	}
}
