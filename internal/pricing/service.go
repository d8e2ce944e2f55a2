package pricing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
)

// PricedProduct couples a product with its resolved unit price.
type PricedProduct struct {
	Product   models.Product
	UnitPrice decimal.Decimal
	Source    enums.PriceSource
}

// Service resolves prices for product batches. Order creation and the catalog
// preview both go through PriceProducts so the two paths cannot drift apart.
type Service interface {
	PriceProducts(ctx context.Context, tx *gorm.DB, customerID *uuid.UUID, supplierID uuid.UUID, products []models.Product) ([]PricedProduct, error)
}

type service struct {
	repo Repository
}

// NewService builds the pricing service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("pricing repository required")
	}
	return &service{repo: repo}, nil
}

// PriceProducts resolves the cascade for every product in the batch. A nil
// customerID means an anonymous caller: everything prices at base. A non-nil
// tx scopes the lookups to the caller's transaction.
func (s *service) PriceProducts(ctx context.Context, tx *gorm.DB, customerID *uuid.UUID, supplierID uuid.UUID, products []models.Product) ([]PricedProduct, error) {
	if len(products) == 0 {
		return nil, nil
	}

	priced := make([]PricedProduct, 0, len(products))

	if customerID == nil {
		for _, product := range products {
			price, source := Resolve(product, Lookups{})
			priced = append(priced, PricedProduct{Product: product, UnitPrice: price, Source: source})
		}
		return priced, nil
	}

	repo := s.repo.WithTx(tx)

	productIDs := make([]uuid.UUID, 0, len(products))
	for _, product := range products {
		productIDs = append(productIDs, product.ID)
	}

	overrides, err := repo.FindCustomerPrices(ctx, *customerID, productIDs)
	if err != nil {
		return nil, fmt.Errorf("loading customer prices: %w", err)
	}
	overrideByProduct := make(map[uuid.UUID]*models.CustomerProductPrice, len(overrides))
	for i := range overrides {
		overrideByProduct[overrides[i].ProductID] = &overrides[i]
	}

	link, err := repo.FindLink(ctx, *customerID, supplierID)
	if err != nil {
		return nil, fmt.Errorf("loading customer-supplier link: %w", err)
	}

	var list *models.PriceList
	itemByProduct := map[uuid.UUID]*models.PriceListItem{}
	if link != nil && link.PriceList != nil {
		list = link.PriceList
		if list.IsActive {
			items, err := repo.FindListItems(ctx, list.ID, productIDs)
			if err != nil {
				return nil, fmt.Errorf("loading price list items: %w", err)
			}
			for i := range items {
				itemByProduct[items[i].ProductID] = &items[i]
			}
		}
	}

	for _, product := range products {
		price, source := Resolve(product, Lookups{
			Override: overrideByProduct[product.ID],
			List:     list,
			ListItem: itemByProduct[product.ID],
		})
		priced = append(priced, PricedProduct{Product: product, UnitPrice: price, Source: source})
	}

	return priced, nil
}
