package pricing

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
)

// Repository defines the batch lookups the cascade needs.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindLink(ctx context.Context, customerID, supplierID uuid.UUID) (*models.CustomerSupplierLink, error)
	FindListItems(ctx context.Context, priceListID uuid.UUID, productIDs []uuid.UUID) ([]models.PriceListItem, error)
	FindCustomerPrices(ctx context.Context, customerID uuid.UUID, productIDs []uuid.UUID) ([]models.CustomerProductPrice, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a pricing repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// FindLink returns the customer-supplier link with its price list preloaded,
// or nil when the customer has no relationship with the supplier.
func (r *repository) FindLink(ctx context.Context, customerID, supplierID uuid.UUID) (*models.CustomerSupplierLink, error) {
	var link models.CustomerSupplierLink
	err := r.db.WithContext(ctx).
		Preload("PriceList").
		Where("customer_id = ? AND supplier_id = ?", customerID, supplierID).
		First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &link, nil
}

func (r *repository) FindListItems(ctx context.Context, priceListID uuid.UUID, productIDs []uuid.UUID) ([]models.PriceListItem, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	var items []models.PriceListItem
	err := r.db.WithContext(ctx).
		Where("price_list_id = ? AND product_id IN ?", priceListID, productIDs).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) FindCustomerPrices(ctx context.Context, customerID uuid.UUID, productIDs []uuid.UUID) ([]models.CustomerProductPrice, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	var prices []models.CustomerProductPrice
	err := r.db.WithContext(ctx).
		Where("customer_id = ? AND product_id IN ?", customerID, productIDs).
		Find(&prices).Error
	if err != nil {
		return nil, err
	}
	return prices, nil
}
