package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tradelinkhq/tradelink-backend/api/middleware"
	"github.com/tradelinkhq/tradelink-backend/api/responses"
	"github.com/tradelinkhq/tradelink-backend/api/validators"
	internalorders "github.com/tradelinkhq/tradelink-backend/internal/orders"
	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
	pkgerrors "github.com/tradelinkhq/tradelink-backend/pkg/errors"
	"github.com/tradelinkhq/tradelink-backend/pkg/logger"
	"github.com/tradelinkhq/tradelink-backend/pkg/types"
)

type createOrderItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

type createOrderRequest struct {
	SupplierID      string                   `json:"supplier_id" validate:"required,uuid"`
	Items           []createOrderItemRequest `json:"items" validate:"required,min=1,dive"`
	DeliveryAddress *types.Address           `json:"delivery_address,omitempty"`
	Notes           *string                  `json:"notes,omitempty"`
	Discount        *string                  `json:"discount,omitempty"`
	Freight         *string                  `json:"freight,omitempty"`
}

type updateOrderStatusRequest struct {
	Status string  `json:"status" validate:"required"`
	Note   *string `json:"note,omitempty"`
}

// CreateOrder runs the fulfillment transaction for the calling customer.
func CreateOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, ok := middleware.CustomerIDFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "customer identity required"))
			return
		}

		var req createOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		supplierID, err := uuid.Parse(req.SupplierID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid supplier id"))
			return
		}

		discount, err := parseOptionalMoney("discount", req.Discount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		freight, err := parseOptionalMoney("freight", req.Freight)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines := make([]internalorders.CreateOrderLine, 0, len(req.Items))
		for _, item := range req.Items {
			productID, err := uuid.Parse(item.ProductID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid product id"))
				return
			}
			lines = append(lines, internalorders.CreateOrderLine{ProductID: productID, Quantity: item.Quantity})
		}

		order, err := svc.Create(r.Context(), internalorders.CreateOrderInput{
			CustomerID:      customerID,
			SupplierID:      supplierID,
			Lines:           lines,
			DeliveryAddress: req.DeliveryAddress,
			Notes:           req.Notes,
			Discount:        discount,
			Freight:         freight,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithOrderNumber(ctx, order.OrderNumber)
			logg.Info(ctx, "order created")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, renderOrder(order))
	}
}

// GetOrder returns the order detail scoped to the calling customer.
func GetOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, ok := middleware.CustomerIDFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "customer identity required"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if order.CustomerID != customerID {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "order not found"))
			return
		}

		responses.WriteSuccess(w, renderOrder(order))
	}
}

// ListOrders returns the calling customer's orders, newest first.
func ListOrders(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, ok := middleware.CustomerIDFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "customer identity required"))
			return
		}

		params, err := validators.PaginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := internalorders.CustomerOrderFilters{}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, parseErr := enums.ParseOrderStatus(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter"))
				return
			}
			filters.Status = &status
		}

		list, err := svc.ListForCustomer(r.Context(), customerID, params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payloads := make([]orderPayload, 0, len(list.Orders))
		for i := range list.Orders {
			payloads = append(payloads, renderOrder(&list.Orders[i]))
		}
		responses.WriteSuccess(w, map[string]any{
			"orders":      payloads,
			"next_cursor": list.NextCursor,
		})
	}
}

// UpdateOrderStatus applies one transition on the status machine.
func UpdateOrderStatus(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, ok := middleware.CustomerIDFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "customer identity required"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateOrderStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseOrderStatus(req.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, err.Error()))
			return
		}

		order, err := svc.UpdateStatus(r.Context(), internalorders.UpdateStatusInput{
			OrderID: orderID,
			Status:  status,
			Note:    req.Note,
			Actor:   "customer:" + customerID.String(),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, renderOrder(order))
	}
}

func parseOrderID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "orderID"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	orderID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id")
	}
	return orderID, nil
}
