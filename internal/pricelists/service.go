package pricelists

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradelinkhq/tradelink-backend/internal/products"
	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
	pkgerrors "github.com/tradelinkhq/tradelink-backend/pkg/errors"
)

var hundred = decimal.NewFromInt(100)

// CreateListInput describes a new price list.
type CreateListInput struct {
	SupplierID    uuid.UUID
	Name          string
	DiscountType  enums.DiscountType
	DiscountValue decimal.Decimal
	IsActive      bool
}

// UpdateListInput carries the optional fields of a price list update.
type UpdateListInput struct {
	Name          *string
	DiscountType  *enums.DiscountType
	DiscountValue *decimal.Decimal
	IsActive      *bool
}

// Service manages supplier price lists and customer pricing agreements.
type Service interface {
	CreateList(ctx context.Context, input CreateListInput) (*models.PriceList, error)
	UpdateList(ctx context.Context, listID uuid.UUID, input UpdateListInput) (*models.PriceList, error)
	ListsForSupplier(ctx context.Context, supplierID uuid.UUID) ([]models.PriceList, error)
	UpsertItem(ctx context.Context, listID, productID uuid.UUID, specialPrice *decimal.Decimal) (*models.PriceListItem, error)
	RemoveItem(ctx context.Context, listID, productID uuid.UUID) error
	AssignListToCustomer(ctx context.Context, customerID, supplierID uuid.UUID, listID *uuid.UUID) (*models.CustomerSupplierLink, error)
	UpsertCustomerPrice(ctx context.Context, customerID, productID uuid.UUID, price decimal.Decimal) (*models.CustomerProductPrice, error)
	RemoveCustomerPrice(ctx context.Context, customerID, productID uuid.UUID) error
}

type service struct {
	repo     Repository
	products products.Repository
}

// NewService builds the price list service.
func NewService(repo Repository, productsRepo products.Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("price list repository required")
	}
	if productsRepo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	return &service{repo: repo, products: productsRepo}, nil
}

func (s *service) CreateList(ctx context.Context, input CreateListInput) (*models.PriceList, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price list name required")
	}
	if err := validateDiscount(input.DiscountType, input.DiscountValue); err != nil {
		return nil, err
	}

	supplier, err := s.products.FindSupplier(ctx, input.SupplierID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading supplier")
	}
	if supplier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
	}

	list := &models.PriceList{
		SupplierID:    input.SupplierID,
		Name:          input.Name,
		DiscountType:  input.DiscountType,
		DiscountValue: input.DiscountValue,
		IsActive:      input.IsActive,
	}
	if err := s.repo.CreateList(ctx, list); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating price list")
	}

	// gorm skips zero values for defaulted columns; force the flag when the
	// list is created disabled.
	if !input.IsActive {
		if err := s.repo.UpdateList(ctx, list.ID, map[string]any{"is_active": false}); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deactivating price list")
		}
	}
	return list, nil
}

func (s *service) UpdateList(ctx context.Context, listID uuid.UUID, input UpdateListInput) (*models.PriceList, error) {
	list, err := s.requireList(ctx, listID)
	if err != nil {
		return nil, err
	}

	discountType := list.DiscountType
	if input.DiscountType != nil {
		discountType = *input.DiscountType
	}
	discountValue := list.DiscountValue
	if input.DiscountValue != nil {
		discountValue = *input.DiscountValue
	}
	if err := validateDiscount(discountType, discountValue); err != nil {
		return nil, err
	}

	updates := map[string]any{
		"discount_type":  discountType,
		"discount_value": discountValue,
	}
	if input.Name != nil {
		if *input.Name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price list name required")
		}
		updates["name"] = *input.Name
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}

	if err := s.repo.UpdateList(ctx, listID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating price list")
	}
	return s.requireList(ctx, listID)
}

func (s *service) ListsForSupplier(ctx context.Context, supplierID uuid.UUID) ([]models.PriceList, error) {
	lists, err := s.repo.ListBySupplier(ctx, supplierID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing price lists")
	}
	return lists, nil
}

func (s *service) UpsertItem(ctx context.Context, listID, productID uuid.UUID, specialPrice *decimal.Decimal) (*models.PriceListItem, error) {
	if specialPrice != nil && specialPrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "special price cannot be negative")
	}

	list, err := s.requireList(ctx, listID)
	if err != nil {
		return nil, err
	}

	product, err := s.products.FindProduct(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if product.SupplierID != list.SupplierID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product belongs to a different supplier").
			WithDetails(map[string]any{"product_id": productID})
	}

	item := &models.PriceListItem{
		PriceListID:  listID,
		ProductID:    productID,
		SpecialPrice: specialPrice,
	}
	if err := s.repo.UpsertItem(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "upserting price list item")
	}
	return item, nil
}

func (s *service) RemoveItem(ctx context.Context, listID, productID uuid.UUID) error {
	if _, err := s.requireList(ctx, listID); err != nil {
		return err
	}

	affected, err := s.repo.DeleteItem(ctx, listID, productID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "removing price list item")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "price list item not found")
	}
	return nil
}

// AssignListToCustomer points a customer-supplier link at a list, creating
// the link when it does not exist yet. A nil listID clears the assignment.
func (s *service) AssignListToCustomer(ctx context.Context, customerID, supplierID uuid.UUID, listID *uuid.UUID) (*models.CustomerSupplierLink, error) {
	if listID != nil {
		list, err := s.requireList(ctx, *listID)
		if err != nil {
			return nil, err
		}
		if list.SupplierID != supplierID {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price list belongs to a different supplier")
		}
	}

	link, err := s.repo.FindLink(ctx, customerID, supplierID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading customer-supplier link")
	}

	if link == nil {
		link = &models.CustomerSupplierLink{
			CustomerID:  customerID,
			SupplierID:  supplierID,
			PriceListID: listID,
		}
		if err := s.repo.CreateLink(ctx, link); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating customer-supplier link")
		}
		return link, nil
	}

	if err := s.repo.UpdateLinkPriceList(ctx, link.ID, listID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "assigning price list")
	}
	link.PriceListID = listID
	return link, nil
}

func (s *service) UpsertCustomerPrice(ctx context.Context, customerID, productID uuid.UUID, price decimal.Decimal) (*models.CustomerProductPrice, error) {
	if price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer price cannot be negative")
	}

	product, err := s.products.FindProduct(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	override := &models.CustomerProductPrice{
		CustomerID: customerID,
		ProductID:  productID,
		Price:      price,
	}
	if err := s.repo.UpsertCustomerPrice(ctx, override); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "upserting customer price")
	}
	return override, nil
}

func (s *service) RemoveCustomerPrice(ctx context.Context, customerID, productID uuid.UUID) error {
	affected, err := s.repo.DeleteCustomerPrice(ctx, customerID, productID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "removing customer price")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "customer price not found")
	}
	return nil
}

func (s *service) requireList(ctx context.Context, listID uuid.UUID) (*models.PriceList, error) {
	list, err := s.repo.FindList(ctx, listID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading price list")
	}
	if list == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "price list not found")
	}
	return list, nil
}

func validateDiscount(discountType enums.DiscountType, value decimal.Decimal) error {
	if !discountType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid discount type %q", discountType))
	}
	if value.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount value cannot be negative")
	}
	if discountType == enums.DiscountTypePercentage && value.GreaterThan(hundred) {
		return pkgerrors.New(pkgerrors.CodeValidation, "percentage discount cannot exceed 100")
	}
	return nil
}
