package stock

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
)

// ErrInsufficientStock signals the guarded update found fewer units than the
// decrement required (or the product row is gone).
var ErrInsufficientStock = errors.New("insufficient stock for decrement")

// Repository defines persistence for product stock and the movement ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	AdjustStock(ctx context.Context, productID uuid.UUID, delta int) (before, after int, err error)
	CreateMovement(ctx context.Context, movement *models.StockMovement) error
	ListMovements(ctx context.Context, productID uuid.UUID, limit int) ([]models.StockMovement, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a stock repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// AdjustStock applies a signed delta to a product's stock quantity with a
// guard that refuses to drive the count negative. The guard lives in the
// UPDATE itself so two concurrent decrements cannot both take the last units;
// the losing statement matches zero rows. Before/after are reconstructed from
// the post-update value, which is exact because the statement is atomic.
func (r *repository) AdjustStock(ctx context.Context, productID uuid.UUID, delta int) (int, int, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID)
	if delta < 0 {
		query = query.Where("stock_quantity >= ?", -delta)
	}

	result := query.Update("stock_quantity", gorm.Expr("stock_quantity + ?", delta))
	if result.Error != nil {
		return 0, 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, 0, ErrInsufficientStock
	}

	var product models.Product
	err := r.db.WithContext(ctx).
		Select("stock_quantity").
		Where("id = ?", productID).
		First(&product).Error
	if err != nil {
		return 0, 0, err
	}

	after := product.StockQuantity
	return after - delta, after, nil
}

func (r *repository) CreateMovement(ctx context.Context, movement *models.StockMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

func (r *repository) ListMovements(ctx context.Context, productID uuid.UUID, limit int) ([]models.StockMovement, error) {
	query := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at ASC, id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var movements []models.StockMovement
	if err := query.Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}
