package stock

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
	pkgerrors "github.com/tradelinkhq/tradelink-backend/pkg/errors"
)

// Delta requests one stock change. Quantity is a positive magnitude for
// in/out movements; adjustments may carry either sign.
type Delta struct {
	ProductID uuid.UUID
	Quantity  int
}

// ApplyOptions describes the ledger entry written for every delta.
type ApplyOptions struct {
	Type      enums.StockMovementType
	Reason    string
	Reference *string
	Actor     string
}

// Service mutates product stock exclusively through the movement ledger.
type Service interface {
	Apply(ctx context.Context, tx *gorm.DB, deltas []Delta, opts ApplyOptions) ([]models.StockMovement, error)
	Movements(ctx context.Context, productID uuid.UUID, limit int) ([]models.StockMovement, error)
}

type service struct {
	repo Repository
}

// NewService builds the stock service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("stock repository required")
	}
	return &service{repo: repo}, nil
}

// Apply adjusts stock for every delta and appends one ledger row per product,
// capturing the before/after counts from the guarded update. Callers run this
// inside a transaction: the first failing delta aborts and the caller's
// rollback discards every change already applied.
func (s *service) Apply(ctx context.Context, tx *gorm.DB, deltas []Delta, opts ApplyOptions) ([]models.StockMovement, error) {
	if !opts.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid stock movement type %q", opts.Type))
	}
	if opts.Actor == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock movement actor required")
	}

	repo := s.repo.WithTx(tx)
	movements := make([]models.StockMovement, 0, len(deltas))

	for _, delta := range deltas {
		change, err := signedChange(opts.Type, delta.Quantity)
		if err != nil {
			return nil, err
		}

		before, after, err := repo.AdjustStock(ctx, delta.ProductID, change)
		if err != nil {
			if errors.Is(err, ErrInsufficientStock) {
				return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock, "stock changed concurrently").
					WithDetails(map[string]any{"product_id": delta.ProductID})
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "adjusting stock")
		}

		movement := models.StockMovement{
			ProductID:   delta.ProductID,
			Type:        opts.Type,
			Quantity:    abs(change),
			StockBefore: before,
			StockAfter:  after,
			Reason:      opts.Reason,
			Reference:   opts.Reference,
			Actor:       opts.Actor,
		}
		if err := repo.CreateMovement(ctx, &movement); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording stock movement")
		}
		movements = append(movements, movement)
	}

	return movements, nil
}

func (s *service) Movements(ctx context.Context, productID uuid.UUID, limit int) ([]models.StockMovement, error) {
	movements, err := s.repo.ListMovements(ctx, productID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing stock movements")
	}
	return movements, nil
}

// signedChange converts a movement type plus magnitude into the delta applied
// to stock_quantity.
func signedChange(movementType enums.StockMovementType, quantity int) (int, error) {
	switch movementType {
	case enums.StockMovementOut:
		if quantity <= 0 {
			return 0, pkgerrors.New(pkgerrors.CodeValidation, "outbound quantity must be positive")
		}
		return -quantity, nil
	case enums.StockMovementIn:
		if quantity <= 0 {
			return 0, pkgerrors.New(pkgerrors.CodeValidation, "inbound quantity must be positive")
		}
		return quantity, nil
	default:
		if quantity == 0 {
			return 0, pkgerrors.New(pkgerrors.CodeValidation, "adjustment quantity must be non-zero")
		}
		return quantity, nil
	}
}

func abs(value int) int {
	if value < 0 {
		return -value
	}
	return value
}
