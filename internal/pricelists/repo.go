package pricelists

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
)

// Repository defines persistence for price lists and customer agreements.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateList(ctx context.Context, list *models.PriceList) error
	FindList(ctx context.Context, listID uuid.UUID) (*models.PriceList, error)
	UpdateList(ctx context.Context, listID uuid.UUID, updates map[string]any) error
	ListBySupplier(ctx context.Context, supplierID uuid.UUID) ([]models.PriceList, error)
	UpsertItem(ctx context.Context, item *models.PriceListItem) error
	DeleteItem(ctx context.Context, listID, productID uuid.UUID) (int64, error)
	FindLink(ctx context.Context, customerID, supplierID uuid.UUID) (*models.CustomerSupplierLink, error)
	CreateLink(ctx context.Context, link *models.CustomerSupplierLink) error
	UpdateLinkPriceList(ctx context.Context, linkID uuid.UUID, priceListID *uuid.UUID) error
	UpsertCustomerPrice(ctx context.Context, price *models.CustomerProductPrice) error
	DeleteCustomerPrice(ctx context.Context, customerID, productID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a price list repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateList(ctx context.Context, list *models.PriceList) error {
	return r.db.WithContext(ctx).Create(list).Error
}

func (r *repository) FindList(ctx context.Context, listID uuid.UUID) (*models.PriceList, error) {
	var list models.PriceList
	err := r.db.WithContext(ctx).Where("id = ?", listID).First(&list).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &list, nil
}

func (r *repository) UpdateList(ctx context.Context, listID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.PriceList{}).
		Where("id = ?", listID).
		Updates(updates).Error
}

func (r *repository) ListBySupplier(ctx context.Context, supplierID uuid.UUID) ([]models.PriceList, error) {
	var lists []models.PriceList
	err := r.db.WithContext(ctx).
		Where("supplier_id = ?", supplierID).
		Order("created_at ASC").
		Find(&lists).Error
	if err != nil {
		return nil, err
	}
	return lists, nil
}

func (r *repository) UpsertItem(ctx context.Context, item *models.PriceListItem) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "price_list_id"}, {Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"special_price", "updated_at"}),
		}).
		Create(item).Error
}

func (r *repository) DeleteItem(ctx context.Context, listID, productID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("price_list_id = ? AND product_id = ?", listID, productID).
		Delete(&models.PriceListItem{})
	return result.RowsAffected, result.Error
}

func (r *repository) FindLink(ctx context.Context, customerID, supplierID uuid.UUID) (*models.CustomerSupplierLink, error) {
	var link models.CustomerSupplierLink
	err := r.db.WithContext(ctx).
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

func (r *repository) CreateLink(ctx context.Context, link *models.CustomerSupplierLink) error {
	return r.db.WithContext(ctx).Create(link).Error
}

func (r *repository) UpdateLinkPriceList(ctx context.Context, linkID uuid.UUID, priceListID *uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.CustomerSupplierLink{}).
		Where("id = ?", linkID).
		Update("price_list_id", priceListID).Error
}

func (r *repository) UpsertCustomerPrice(ctx context.Context, price *models.CustomerProductPrice) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "customer_id"}, {Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"price", "updated_at"}),
		}).
		Create(price).Error
}

func (r *repository) DeleteCustomerPrice(ctx context.Context, customerID, productID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("customer_id = ? AND product_id = ?", customerID, productID).
		Delete(&models.CustomerProductPrice{})
	return result.RowsAffected, result.Error
}
