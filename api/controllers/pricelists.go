package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradelinkhq/tradelink-backend/api/responses"
	"github.com/tradelinkhq/tradelink-backend/api/validators"
	"github.com/tradelinkhq/tradelink-backend/internal/pricelists"
	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
	pkgerrors "github.com/tradelinkhq/tradelink-backend/pkg/errors"
	"github.com/tradelinkhq/tradelink-backend/pkg/logger"
)

type createPriceListRequest struct {
	Name          string `json:"name" validate:"required"`
	DiscountType  string `json:"discount_type" validate:"required,oneof=percentage fixed_amount"`
	DiscountValue string `json:"discount_value" validate:"required"`
	IsActive      *bool  `json:"is_active,omitempty"`
}

type updatePriceListRequest struct {
	Name          *string `json:"name,omitempty"`
	DiscountType  *string `json:"discount_type,omitempty" validate:"omitempty,oneof=percentage fixed_amount"`
	DiscountValue *string `json:"discount_value,omitempty"`
	IsActive      *bool   `json:"is_active,omitempty"`
}

type upsertListItemRequest struct {
	SpecialPrice *string `json:"special_price,omitempty"`
}

type assignPriceListRequest struct {
	PriceListID *string `json:"price_list_id,omitempty"`
}

type upsertCustomerPriceRequest struct {
	Price string `json:"price" validate:"required"`
}

type priceListItemPayload struct {
	PriceListID  uuid.UUID `json:"price_list_id"`
	ProductID    uuid.UUID `json:"product_id"`
	SpecialPrice *string   `json:"special_price,omitempty"`
}

type customerLinkPayload struct {
	CustomerID  uuid.UUID  `json:"customer_id"`
	SupplierID  uuid.UUID  `json:"supplier_id"`
	PriceListID *uuid.UUID `json:"price_list_id,omitempty"`
}

type customerPricePayload struct {
	CustomerID uuid.UUID `json:"customer_id"`
	ProductID  uuid.UUID `json:"product_id"`
	Price      string    `json:"price"`
}

// CreatePriceList registers a discount list for a supplier. New lists default
// to active unless the request disables them.
func CreatePriceList(svc pricelists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		supplierID, err := parseSupplierID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req createPriceListRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		discountType, err := enums.ParseDiscountType(req.DiscountType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, err.Error()))
			return
		}
		discountValue, err := parseMoney("discount_value", req.DiscountValue)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		isActive := true
		if req.IsActive != nil {
			isActive = *req.IsActive
		}

		list, err := svc.CreateList(r.Context(), pricelists.CreateListInput{
			SupplierID:    supplierID,
			Name:          req.Name,
			DiscountType:  discountType,
			DiscountValue: discountValue,
			IsActive:      isActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, renderPriceList(list))
	}
}

// ListPriceLists returns every list a supplier has, active or not.
func ListPriceLists(svc pricelists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		supplierID, err := parseSupplierID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lists, err := svc.ListsForSupplier(r.Context(), supplierID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payloads := make([]priceListPayload, 0, len(lists))
		for i := range lists {
			payloads = append(payloads, renderPriceList(&lists[i]))
		}
		responses.WriteSuccess(w, map[string]any{"price_lists": payloads})
	}
}

// UpdatePriceList patches a list's name, discount, or active flag.
func UpdatePriceList(svc pricelists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listID, err := parseListID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updatePriceListRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := pricelists.UpdateListInput{
			Name:     req.Name,
			IsActive: req.IsActive,
		}
		if req.DiscountType != nil {
			discountType, parseErr := enums.ParseDiscountType(*req.DiscountType)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, parseErr.Error()))
				return
			}
			input.DiscountType = &discountType
		}
		if req.DiscountValue != nil {
			discountValue, parseErr := parseMoney("discount_value", *req.DiscountValue)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, parseErr)
				return
			}
			input.DiscountValue = &discountValue
		}

		list, err := svc.UpdateList(r.Context(), listID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, renderPriceList(list))
	}
}

// UpsertPriceListItem pins a product onto a list, optionally with a special
// price. Without one the list's blanket discount applies.
func UpsertPriceListItem(svc pricelists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listID, err := parseListID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := parseProductID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req upsertListItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var specialPrice *decimal.Decimal
		if req.SpecialPrice != nil && *req.SpecialPrice != "" {
			value, parseErr := parseMoney("special_price", *req.SpecialPrice)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, parseErr)
				return
			}
			specialPrice = &value
		}

		item, err := svc.UpsertItem(r.Context(), listID, productID, specialPrice)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payload := priceListItemPayload{
			PriceListID: item.PriceListID,
			ProductID:   item.ProductID,
		}
		if item.SpecialPrice != nil {
			formatted := item.SpecialPrice.StringFixed(2)
			payload.SpecialPrice = &formatted
		}
		responses.WriteSuccess(w, payload)
	}
}

// RemovePriceListItem drops a product from a list.
func RemovePriceListItem(svc pricelists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listID, err := parseListID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := parseProductID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RemoveItem(r.Context(), listID, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "removed"})
	}
}

// AssignCustomerPriceList points a customer's link at one of the supplier's
// lists. A null price_list_id clears the assignment.
func AssignCustomerPriceList(svc pricelists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		supplierID, err := parseSupplierID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		customerID, err := parseCustomerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req assignPriceListRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var listID *uuid.UUID
		if req.PriceListID != nil && *req.PriceListID != "" {
			parsed, parseErr := uuid.Parse(*req.PriceListID)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid price list id"))
				return
			}
			listID = &parsed
		}

		link, err := svc.AssignListToCustomer(r.Context(), customerID, supplierID, listID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, customerLinkPayload{
			CustomerID:  link.CustomerID,
			SupplierID:  link.SupplierID,
			PriceListID: link.PriceListID,
		})
	}
}

// UpsertCustomerPrice sets a per-customer override that beats every list price.
func UpsertCustomerPrice(svc pricelists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := parseCustomerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := parseProductID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req upsertCustomerPriceRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		price, err := parseMoney("price", req.Price)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		override, err := svc.UpsertCustomerPrice(r.Context(), customerID, productID, price)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, customerPricePayload{
			CustomerID: override.CustomerID,
			ProductID:  override.ProductID,
			Price:      override.Price.StringFixed(2),
		})
	}
}

// RemoveCustomerPrice clears a per-customer override.
func RemoveCustomerPrice(svc pricelists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := parseCustomerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := parseProductID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RemoveCustomerPrice(r.Context(), customerID, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "removed"})
	}
}

func parseListID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "listID"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "price list id is required")
	}
	listID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price list id")
	}
	return listID, nil
}

func parseCustomerID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "customerID"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	customerID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid customer id")
	}
	return customerID, nil
}
