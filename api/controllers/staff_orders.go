package controllers

import (
	"net/http"
	"strings"

	"github.com/vasthra-labs/vasthra-backend/api/middleware"
	"github.com/vasthra-labs/vasthra-backend/api/responses"
	"github.com/vasthra-labs/vasthra-backend/api/validators"
	"github.com/vasthra-labs/vasthra-backend/internal/orders"
	"github.com/vasthra-labs/vasthra-backend/pkg/enums"
	pkgerrors "github.com/vasthra-labs/vasthra-backend/pkg/errors"
	"github.com/vasthra-labs/vasthra-backend/pkg/logger"
	"github.com/vasthra-labs/vasthra-backend/pkg/pagination"
)

// StaffListOrders returns a filtered, paginated page of every order.
func StaffListOrders(query orders.Query, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if query == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders query unavailable"))
			return
		}

		page, err := validators.ParseQueryInt(r, "page", 1, 1, 1_000_000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters, err := buildStaffOrderFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := query.ListAll(r.Context(), middleware.RoleFromContext(r.Context()), pagination.Params{Page: page, Limit: limit}, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// StaffGetOrder returns the full order detail including the customer contact.
func StaffGetOrder(query orders.Query, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if query == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders query unavailable"))
			return
		}

		userID, err := middleware.RequireUserID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := query.GetByID(r.Context(), userID, middleware.RoleFromContext(r.Context()), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, detail)
	}
}

// StaffUpdateOrderStatus applies a lifecycle update to one order.
func StaffUpdateOrderStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		actorID, err := middleware.RequireUserID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateOrderStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := orders.UpdateStatusInput{
			ActorID:        actorID,
			ActorRole:      middleware.RoleFromContext(r.Context()),
			OrderID:        orderID,
			NewStatus:      enums.OrderStatus(payload.Status),
			TrackingNumber: payload.TrackingNumber,
			Notes:          payload.Notes,
		}
		if payload.PaymentStatus != nil {
			ps := enums.PaymentStatus(*payload.PaymentStatus)
			input.NewPaymentStatus = &ps
		}

		if err := svc.UpdateStatus(r.Context(), input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "updated"})
	}
}

// StaffAddTrackingEvent appends a checkpoint to the shipping narrative.
func StaffAddTrackingEvent(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		actorID, err := middleware.RequireUserID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload trackingEventRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		err = svc.AddTrackingEvent(r.Context(), orders.TrackingEventInput{
			ActorID:     actorID,
			ActorRole:   middleware.RoleFromContext(r.Context()),
			OrderID:     orderID,
			Status:      validators.SanitizeString(payload.Status, 100),
			Description: payload.Description,
			Location:    payload.Location,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"status": "recorded"})
	}
}

// StaffOrderStatistics returns the dashboard aggregates.
func StaffOrderStatistics(query orders.Query, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if query == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders query unavailable"))
			return
		}

		stats, err := query.Statistics(r.Context(), middleware.RoleFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, stats)
	}
}

func buildStaffOrderFilters(r *http.Request) (orders.AdminOrderFilters, error) {
	var filters orders.AdminOrderFilters

	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status := enums.OrderStatus(raw)
		filters.Status = &status
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("payment_status")); raw != "" {
		status := enums.PaymentStatus(raw)
		filters.PaymentStatus = &status
	}

	dateFrom, err := validators.ParseQueryDate(r, "date_from")
	if err != nil {
		return filters, err
	}
	filters.DateFrom = dateFrom

	dateTo, err := validators.ParseQueryDate(r, "date_to")
	if err != nil {
		return filters, err
	}
	filters.DateTo = dateTo

	filters.Query = validators.SanitizeString(r.URL.Query().Get("q"), 100)
	return filters, nil
}

type updateOrderStatusRequest struct {
	Status         string  `json:"status" validate:"required"`
	PaymentStatus  *string `json:"payment_status,omitempty"`
	TrackingNumber *string `json:"tracking_number,omitempty"`
	Notes          *string `json:"notes,omitempty"`
}

type trackingEventRequest struct {
	Status      string  `json:"status" validate:"required,min=2,max=100"`
	Description *string `json:"description,omitempty"`
	Location    *string `json:"location,omitempty"`
}
