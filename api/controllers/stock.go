package controllers

import (
	"context"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/tradelinkhq/tradelink-backend/api/responses"
	"github.com/tradelinkhq/tradelink-backend/api/validators"
	"github.com/tradelinkhq/tradelink-backend/internal/products"
	"github.com/tradelinkhq/tradelink-backend/internal/stock"
	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
	pkgerrors "github.com/tradelinkhq/tradelink-backend/pkg/errors"
	"github.com/tradelinkhq/tradelink-backend/pkg/logger"
)

const defaultMovementLimit = 100

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type adjustStockRequest struct {
	Type     string `json:"type" validate:"required,oneof=in adjustment"`
	Quantity int    `json:"quantity" validate:"required"`
	Reason   string `json:"reason" validate:"required"`
}

// AdjustStock lets a supplier restock or correct a product's count. Outbound
// movements are reserved for order fulfillment and rejected here.
func AdjustStock(stockSvc stock.Service, productsRepo products.Repository, tx txRunner, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		supplierID, err := parseSupplierID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := parseProductID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req adjustStockRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		movementType, err := enums.ParseStockMovementType(req.Type)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, err.Error()))
			return
		}

		product, err := productsRepo.FindProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product"))
			return
		}
		if product == nil || product.SupplierID != supplierID {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "product not found"))
			return
		}

		reason := strings.TrimSpace(req.Reason)
		actor := "supplier:" + supplierID.String()

		var movements []models.StockMovement
		txErr := tx.WithTx(r.Context(), func(gtx *gorm.DB) error {
			applied, applyErr := stockSvc.Apply(r.Context(), gtx,
				[]stock.Delta{{ProductID: productID, Quantity: req.Quantity}},
				stock.ApplyOptions{Type: movementType, Reason: reason, Actor: actor})
			if applyErr != nil {
				return applyErr
			}
			movements = applied
			return nil
		})
		if txErr != nil {
			responses.WriteError(r.Context(), logg, w, txErr)
			return
		}

		payloads := make([]movementPayload, 0, len(movements))
		for _, movement := range movements {
			payloads = append(payloads, renderMovement(movement))
		}
		responses.WriteSuccess(w, map[string]any{"movements": payloads})
	}
}

// ListStockMovements returns a product's ledger, oldest first.
func ListStockMovements(stockSvc stock.Service, productsRepo products.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		supplierID, err := parseSupplierID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := parseProductID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := productsRepo.FindProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product"))
			return
		}
		if product == nil || product.SupplierID != supplierID {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "product not found"))
			return
		}

		limit, err := validators.QueryInt(r, "limit", defaultMovementLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		movements, err := stockSvc.Movements(r.Context(), productID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payloads := make([]movementPayload, 0, len(movements))
		for _, movement := range movements {
			payloads = append(payloads, renderMovement(movement))
		}
		responses.WriteSuccess(w, map[string]any{"movements": payloads})
	}
}
