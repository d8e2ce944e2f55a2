package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tradelinkhq/tradelink-backend/api/middleware"
	"github.com/tradelinkhq/tradelink-backend/api/responses"
	"github.com/tradelinkhq/tradelink-backend/internal/pricing"
	"github.com/tradelinkhq/tradelink-backend/internal/products"
	pkgerrors "github.com/tradelinkhq/tradelink-backend/pkg/errors"
	"github.com/tradelinkhq/tradelink-backend/pkg/logger"
)

type catalogProductPayload struct {
	ID            uuid.UUID `json:"id"`
	SKU           string    `json:"sku"`
	Name          string    `json:"name"`
	Description   *string   `json:"description,omitempty"`
	UnitPrice     string    `json:"unit_price"`
	PriceSource   string    `json:"price_source"`
	StockQuantity int       `json:"stock_quantity"`
}

// CatalogProducts lists a supplier's active products with prices resolved for
// the calling customer. Anonymous callers see base prices. This is a read
// preview: stock counts may be stale by the time an order is placed.
func CatalogProducts(productsRepo products.Repository, pricingSvc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		supplierID, err := parseSupplierID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		supplier, err := productsRepo.FindSupplier(r.Context(), supplierID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading supplier"))
			return
		}
		if supplier == nil || !supplier.IsActive {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found"))
			return
		}

		catalog, err := productsRepo.ListActiveBySupplier(r.Context(), supplierID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading catalog"))
			return
		}

		var customerID *uuid.UUID
		if id, ok := middleware.CustomerIDFromContext(r.Context()); ok {
			customerID = &id
		}

		priced, err := pricingSvc.PriceProducts(r.Context(), nil, customerID, supplierID, catalog)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving prices"))
			return
		}

		payloads := make([]catalogProductPayload, 0, len(priced))
		for _, p := range priced {
			payloads = append(payloads, catalogProductPayload{
				ID:            p.Product.ID,
				SKU:           p.Product.SKU,
				Name:          p.Product.Name,
				Description:   p.Product.Description,
				UnitPrice:     p.UnitPrice.StringFixed(2),
				PriceSource:   p.Source.String(),
				StockQuantity: p.Product.StockQuantity,
			})
		}
		responses.WriteSuccess(w, map[string]any{"products": payloads})
	}
}

func parseSupplierID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "supplierID"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier id is required")
	}
	supplierID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid supplier id")
	}
	return supplierID, nil
}

func parseProductID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "productID"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	productID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
	}
	return productID, nil
}
