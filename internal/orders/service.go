package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tradelinkhq/tradelink-backend/internal/pricing"
	"github.com/tradelinkhq/tradelink-backend/internal/products"
	"github.com/tradelinkhq/tradelink-backend/internal/stock"
	"github.com/tradelinkhq/tradelink-backend/pkg/config"
	pkgdb "github.com/tradelinkhq/tradelink-backend/pkg/db"
	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
	pkgerrors "github.com/tradelinkhq/tradelink-backend/pkg/errors"
	"github.com/tradelinkhq/tradelink-backend/pkg/metrics"
	"github.com/tradelinkhq/tradelink-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service drives order fulfillment and the status machine.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	ListForCustomer(ctx context.Context, customerID uuid.UUID, params pagination.Params, filters CustomerOrderFilters) (*OrderList, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Order, error)
}

type service struct {
	repo     Repository
	products products.Repository
	pricing  pricing.Service
	stock    stock.Service
	tx       txRunner
	metrics  *metrics.OrderMetrics
	cfg      config.OrdersConfig
}

// NewService builds the orders service with the required dependencies.
// Metrics may be nil (tests).
func NewService(
	repo Repository,
	productsRepo products.Repository,
	pricingSvc pricing.Service,
	stockSvc stock.Service,
	tx txRunner,
	orderMetrics *metrics.OrderMetrics,
	cfg config.OrdersConfig,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if productsRepo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if pricingSvc == nil {
		return nil, fmt.Errorf("pricing service required")
	}
	if stockSvc == nil {
		return nil, fmt.Errorf("stock service required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:     repo,
		products: productsRepo,
		pricing:  pricingSvc,
		stock:    stockSvc,
		tx:       tx,
		metrics:  orderMetrics,
		cfg:      cfg,
	}, nil
}

// Create runs the full fulfillment transaction: product validation, stock
// check with a complete shortage report, price cascade resolution, totals,
// order + item + ledger + history writes. Everything commits or nothing does.
// An order number collision retries the whole transaction with a fresh number
// because the failed insert poisons the surrounding transaction.
func (s *service) Create(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	start := time.Now()

	if err := validateCreateInput(input); err != nil {
		s.metrics.ObserveCreate("validation_failed", time.Since(start))
		s.metrics.IncFailed("validation")
		return nil, err
	}

	retries := s.cfg.NumberMaxRetries
	if retries < 1 {
		retries = 1
	}

	var order *models.Order
	var err error
	for attempt := 0; attempt < retries; attempt++ {
		order, err = s.createAttempt(ctx, input)
		if err != nil && pkgdb.IsUniqueViolation(err, "order_number") {
			continue
		}
		break
	}

	if err != nil {
		s.observeCreateFailure(err, start)
		return nil, err
	}

	s.metrics.ObserveCreate("committed", time.Since(start))
	s.metrics.IncCreated()
	return order, nil
}

func (s *service) createAttempt(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	number, err := GenerateOrderNumber(s.cfg.NumberPrefix, time.Now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generating order number")
	}

	var created *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		order, txErr := s.fulfill(ctx, tx, input, number)
		if txErr != nil {
			return txErr
		}
		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) fulfill(ctx context.Context, tx *gorm.DB, input CreateOrderInput, number string) (*models.Order, error) {
	productsRepo := s.products.WithTx(tx)

	supplier, err := productsRepo.FindSupplier(ctx, input.SupplierID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading supplier")
	}
	if supplier == nil || !supplier.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found").
			WithDetails(map[string]any{"supplier_id": input.SupplierID})
	}

	productIDs := make([]uuid.UUID, 0, len(input.Lines))
	for _, line := range input.Lines {
		productIDs = append(productIDs, line.ProductID)
	}

	loaded, err := productsRepo.FindActiveBySupplierAndIDs(ctx, input.SupplierID, productIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading products")
	}

	productsByID := make(map[uuid.UUID]models.Product, len(loaded))
	for _, product := range loaded {
		productsByID[product.ID] = product
	}
	if missing := missingProductIDs(productIDs, productsByID); len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "one or more products not found for supplier").
			WithDetails(map[string]any{"product_ids": missing})
	}

	lines := make([]stock.Line, 0, len(input.Lines))
	for _, line := range input.Lines {
		lines = append(lines, stock.Line{ProductID: line.ProductID, Quantity: line.Quantity})
	}
	if shortages := stock.ValidateAvailability(lines, productsByID); len(shortages) > 0 {
		return nil, stock.InsufficientStockError(shortages)
	}

	priced, err := s.pricing.PriceProducts(ctx, tx, &input.CustomerID, input.SupplierID, loaded)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving prices")
	}
	pricedByID := make(map[uuid.UUID]pricing.PricedProduct, len(priced))
	for _, p := range priced {
		pricedByID[p.Product.ID] = p
	}

	items := make([]models.OrderItem, 0, len(input.Lines))
	lineTotals := make([]decimal.Decimal, 0, len(input.Lines))
	for _, line := range input.Lines {
		p := pricedByID[line.ProductID]
		lineTotal := LineTotal(p.UnitPrice, line.Quantity)
		items = append(items, models.OrderItem{
			ProductID:   line.ProductID,
			ProductName: p.Product.Name,
			Quantity:    line.Quantity,
			UnitPrice:   p.UnitPrice,
			PriceSource: p.Source,
			LineTotal:   lineTotal,
		})
		lineTotals = append(lineTotals, lineTotal)
	}

	totals := ComputeTotals(lineTotals, input.Discount, input.Freight)

	repo := s.repo.WithTx(tx)

	order := &models.Order{
		OrderNumber:     number,
		CustomerID:      input.CustomerID,
		SupplierID:      input.SupplierID,
		Status:          enums.OrderStatusPending,
		Subtotal:        totals.Subtotal,
		Discount:        totals.Discount,
		Freight:         totals.Freight,
		Total:           totals.Total,
		DeliveryAddress: input.DeliveryAddress,
		Notes:           input.Notes,
	}
	if _, err := repo.CreateOrder(ctx, order); err != nil {
		return nil, err
	}

	for i := range items {
		items[i].OrderID = order.ID
	}
	if err := repo.CreateOrderItems(ctx, items); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persisting order items")
	}

	deltas := make([]stock.Delta, 0, len(input.Lines))
	for _, line := range input.Lines {
		deltas = append(deltas, stock.Delta{ProductID: line.ProductID, Quantity: line.Quantity})
	}
	if _, err := s.stock.Apply(ctx, tx, deltas, stock.ApplyOptions{
		Type:      enums.StockMovementOut,
		Reason:    "order fulfillment",
		Reference: &number,
		Actor:     actorForCustomer(input.CustomerID),
	}); err != nil {
		return nil, err
	}

	if err := repo.CreateStatusHistory(ctx, &models.OrderStatusHistory{
		OrderID: order.ID,
		Status:  enums.OrderStatusPending,
		Actor:   actorForCustomer(input.CustomerID),
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording initial status")
	}

	order.Items = items
	return order, nil
}

// Get returns the order with items and status trail preloaded.
func (s *service) Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func (s *service) ListForCustomer(ctx context.Context, customerID uuid.UUID, params pagination.Params, filters CustomerOrderFilters) (*OrderList, error) {
	list, err := s.repo.ListByCustomer(ctx, customerID, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing orders")
	}
	return list, nil
}

// UpdateStatus applies one transition on the status machine, appends the
// history row, and restores inventory when a decremented order is cancelled.
func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Order, error) {
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order status %q", input.Status))
	}
	if input.Actor == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor required")
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByID(ctx, input.OrderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
		}
		if order == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}

		if !order.Status.CanTransitionTo(input.Status) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot transition order from %s to %s", order.Status, input.Status)).
				WithDetails(map[string]any{"from": order.Status, "to": input.Status})
		}

		if err := repo.UpdateStatus(ctx, order.ID, input.Status); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating order status")
		}

		if err := repo.CreateStatusHistory(ctx, &models.OrderStatusHistory{
			OrderID: order.ID,
			Status:  input.Status,
			Note:    input.Note,
			Actor:   input.Actor,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording status change")
		}

		if input.Status == enums.OrderStatusCancelled && s.cfg.RestockCancelledOrders {
			deltas := make([]stock.Delta, 0, len(order.Items))
			for _, item := range order.Items {
				deltas = append(deltas, stock.Delta{ProductID: item.ProductID, Quantity: item.Quantity})
			}
			if _, err := s.stock.Apply(ctx, tx, deltas, stock.ApplyOptions{
				Type:      enums.StockMovementIn,
				Reason:    "order cancellation restock",
				Reference: &order.OrderNumber,
				Actor:     input.Actor,
			}); err != nil {
				return err
			}
		}

		order.Status = input.Status
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) observeCreateFailure(err error, start time.Time) {
	typed := pkgerrors.As(err)
	switch {
	case typed != nil && typed.Code() == pkgerrors.CodeInsufficientStock:
		s.metrics.ObserveCreate("insufficient_stock", time.Since(start))
		s.metrics.IncFailed("insufficient_stock")
		s.metrics.IncShortage()
	case typed != nil && typed.Code() == pkgerrors.CodeNotFound:
		s.metrics.ObserveCreate("not_found", time.Since(start))
		s.metrics.IncFailed("not_found")
	case typed != nil && typed.Code() == pkgerrors.CodeValidation:
		s.metrics.ObserveCreate("validation_failed", time.Since(start))
		s.metrics.IncFailed("validation")
	default:
		s.metrics.ObserveCreate("error", time.Since(start))
		s.metrics.IncFailed("error")
	}
}

func validateCreateInput(input CreateOrderInput) error {
	if input.CustomerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if input.SupplierID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "supplier id required")
	}
	if len(input.Lines) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one line is required")
	}
	seen := make(map[uuid.UUID]struct{}, len(input.Lines))
	for _, line := range input.Lines {
		if line.ProductID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "line product id required")
		}
		if line.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "line quantity must be positive").
				WithDetails(map[string]any{"product_id": line.ProductID})
		}
		if _, dup := seen[line.ProductID]; dup {
			return pkgerrors.New(pkgerrors.CodeValidation, "duplicate product line").
				WithDetails(map[string]any{"product_id": line.ProductID})
		}
		seen[line.ProductID] = struct{}{}
	}
	if input.Discount.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount cannot be negative")
	}
	if input.Freight.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "freight cannot be negative")
	}
	if input.DeliveryAddress != nil {
		if err := input.DeliveryAddress.Validate(); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid delivery address")
		}
	}
	return nil
}

func missingProductIDs(requested []uuid.UUID, loaded map[uuid.UUID]models.Product) []uuid.UUID {
	var missing []uuid.UUID
	for _, id := range requested {
		if _, ok := loaded[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

func actorForCustomer(customerID uuid.UUID) string {
	return "customer:" + customerID.String()
}
