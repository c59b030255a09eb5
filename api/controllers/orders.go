package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vasthra-labs/vasthra-backend/api/middleware"
	"github.com/vasthra-labs/vasthra-backend/api/responses"
	"github.com/vasthra-labs/vasthra-backend/api/validators"
	"github.com/vasthra-labs/vasthra-backend/internal/orders"
	"github.com/vasthra-labs/vasthra-backend/pkg/enums"
	pkgerrors "github.com/vasthra-labs/vasthra-backend/pkg/errors"
	"github.com/vasthra-labs/vasthra-backend/pkg/logger"
)

// CreateOrder places an order for the signed-in customer.
func CreateOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		userID, err := middleware.RequireUserID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]orders.CreateOrderItem, 0, len(payload.Items))
		for _, item := range payload.Items {
			items = append(items, orders.CreateOrderItem{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Price:     item.Price,
				Size:      item.Size,
				Color:     item.Color,
			})
		}

		result, err := svc.Create(r.Context(), orders.CreateOrderInput{
			UserID:         userID,
			Items:          items,
			Subtotal:       payload.Subtotal,
			Tax:            payload.Tax,
			Shipping:       payload.Shipping,
			Total:          payload.Total,
			PaymentMethod:  payload.PaymentMethod,
			DeliveryMethod: enums.DeliveryMethod(payload.DeliveryMethod),
			AddressID:      payload.AddressID,
			Notes:          payload.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// ListMyOrders returns the signed-in customer's order summaries.
func ListMyOrders(query orders.Query, logg *logger.Logger) http.HandlerFunc {
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

		list, err := query.ListForUser(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// GetOrder returns the full order detail visible to the caller.
func GetOrder(query orders.Query, logg *logger.Logger) http.HandlerFunc {
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

// CancelOrder processes a customer-initiated cancellation.
func CancelOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
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

		var payload cancelOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		err = svc.Cancel(r.Context(), orders.CancelInput{
			UserID:  userID,
			OrderID: orderID,
			Reason:  validators.SanitizeString(payload.Reason, 500),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "cancelled"})
	}
}

func parseOrderID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "orderId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	orderID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id")
	}
	return orderID, nil
}

type createOrderItemRequest struct {
	ProductID uuid.UUID       `json:"product_id" validate:"required"`
	Quantity  int             `json:"quantity" validate:"required,gt=0"`
	Price     decimal.Decimal `json:"price"`
	Size      *string         `json:"size,omitempty"`
	Color     *string         `json:"color,omitempty"`
}

type createOrderRequest struct {
	Items          []createOrderItemRequest `json:"items" validate:"required,min=1,dive"`
	Subtotal       decimal.Decimal          `json:"subtotal"`
	Tax            decimal.Decimal          `json:"tax"`
	Shipping       decimal.Decimal          `json:"shipping"`
	Total          decimal.Decimal          `json:"total"`
	PaymentMethod  string                   `json:"payment_method" validate:"required"`
	DeliveryMethod string                   `json:"delivery_method" validate:"required"`
	AddressID      *uuid.UUID               `json:"address_id,omitempty"`
	Notes          *string                  `json:"notes,omitempty"`
}

type cancelOrderRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}
