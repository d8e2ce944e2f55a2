package orders

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tradelinkhq/tradelink-backend/internal/pricing"
	"github.com/tradelinkhq/tradelink-backend/internal/products"
	"github.com/tradelinkhq/tradelink-backend/internal/stock"
	"github.com/tradelinkhq/tradelink-backend/pkg/config"
	pkgdb "github.com/tradelinkhq/tradelink-backend/pkg/db"
	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
	pkgerrors "github.com/tradelinkhq/tradelink-backend/pkg/errors"
	"github.com/tradelinkhq/tradelink-backend/pkg/pagination"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:orders_%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	// A single pooled connection serializes concurrent transactions, which is
	// what lets the concurrency tests below run against sqlite.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, conn.AutoMigrate(
		&models.Supplier{},
		&models.Customer{},
		&models.Product{},
		&models.PriceList{},
		&models.PriceListItem{},
		&models.CustomerSupplierLink{},
		&models.CustomerProductPrice{},
		&models.Order{},
		&models.OrderItem{},
		&models.StockMovement{},
		&models.OrderStatusHistory{},
	))

	return conn
}

type ordersFixture struct {
	conn     *gorm.DB
	svc      Service
	supplier models.Supplier
	customer models.Customer
}

func setupOrdersFixture(t *testing.T) *ordersFixture {
	t.Helper()

	conn := setupOrdersTestDB(t)

	supplier := models.Supplier{Name: "Acme Wholesale", Email: "sales@acme.test", IsActive: true}
	require.NoError(t, conn.Create(&supplier).Error)

	customer := models.Customer{Name: "Corner Shop", Email: "orders@corner.test", IsActive: true}
	require.NoError(t, conn.Create(&customer).Error)

	pricingSvc, err := pricing.NewService(pricing.NewRepository(conn))
	require.NoError(t, err)
	stockSvc, err := stock.NewService(stock.NewRepository(conn))
	require.NoError(t, err)

	svc, err := NewService(
		NewRepository(conn),
		products.NewRepository(conn),
		pricingSvc,
		stockSvc,
		pkgdb.NewFromConn(conn),
		nil,
		config.OrdersConfig{NumberPrefix: "TL", NumberMaxRetries: 5, RestockCancelledOrders: true},
	)
	require.NoError(t, err)

	return &ordersFixture{conn: conn, svc: svc, supplier: supplier, customer: customer}
}

func (f *ordersFixture) seedProduct(t *testing.T, sku, basePrice string, stockQty int) models.Product {
	t.Helper()

	product := models.Product{
		SupplierID:    f.supplier.ID,
		SKU:           sku,
		Name:          "Product " + sku,
		BasePrice:     money(basePrice),
		StockQuantity: stockQty,
		IsActive:      true,
	}
	require.NoError(t, f.conn.Create(&product).Error)
	return product
}

func (f *ordersFixture) createInput(lines ...CreateOrderLine) CreateOrderInput {
	return CreateOrderInput{
		CustomerID: f.customer.ID,
		SupplierID: f.supplier.ID,
		Lines:      lines,
	}
}

func TestCreate_HappyPathFreezesPricesAndWritesLedger(t *testing.T) {
	t.Parallel()

	f := setupOrdersFixture(t)
	widget := f.seedProduct(t, "SKU-W", "10.50", 10)
	gadget := f.seedProduct(t, "SKU-G", "4.50", 5)
	ctx := context.Background()

	order, err := f.svc.Create(ctx, f.createInput(
		CreateOrderLine{ProductID: widget.ID, Quantity: 2},
		CreateOrderLine{ProductID: gadget.ID, Quantity: 1},
	))
	require.NoError(t, err)
	require.NotNil(t, order)

	assert.Equal(t, enums.OrderStatusPending, order.Status)
	assert.True(t, order.Subtotal.Equal(money("25.50")), "subtotal = %s", order.Subtotal)
	assert.True(t, order.Total.Equal(money("25.50")), "total = %s", order.Total)
	require.Len(t, order.Items, 2)

	// prices frozen at base for an unlinked customer
	for _, item := range order.Items {
		assert.Equal(t, enums.PriceSourceBase, item.PriceSource)
	}

	var reloadedWidget models.Product
	require.NoError(t, f.conn.First(&reloadedWidget, "id = ?", widget.ID).Error)
	assert.Equal(t, 8, reloadedWidget.StockQuantity)

	var movements []models.StockMovement
	require.NoError(t, f.conn.Order("created_at ASC").Find(&movements).Error)
	require.Len(t, movements, 2)
	for _, movement := range movements {
		assert.Equal(t, enums.StockMovementOut, movement.Type)
		require.NotNil(t, movement.Reference)
		assert.Equal(t, order.OrderNumber, *movement.Reference)
	}

	var history []models.OrderStatusHistory
	require.NoError(t, f.conn.Where("order_id = ?", order.ID).Find(&history).Error)
	require.Len(t, history, 1)
	assert.Equal(t, enums.OrderStatusPending, history[0].Status)
}

func TestCreate_AppliesCustomerPricingAgreements(t *testing.T) {
	t.Parallel()

	f := setupOrdersFixture(t)
	product := f.seedProduct(t, "SKU-P", "100.00", 10)
	ctx := context.Background()

	list := models.PriceList{
		SupplierID:    f.supplier.ID,
		Name:          "Wholesale 10",
		DiscountType:  enums.DiscountTypePercentage,
		DiscountValue: money("10"),
		IsActive:      true,
	}
	require.NoError(t, f.conn.Create(&list).Error)
	require.NoError(t, f.conn.Create(&models.CustomerSupplierLink{
		CustomerID:  f.customer.ID,
		SupplierID:  f.supplier.ID,
		PriceListID: &list.ID,
	}).Error)

	order, err := f.svc.Create(ctx, f.createInput(CreateOrderLine{ProductID: product.ID, Quantity: 2}))
	require.NoError(t, err)
	require.Len(t, order.Items, 1)

	assert.True(t, order.Items[0].UnitPrice.Equal(money("90.00")), "unit price = %s", order.Items[0].UnitPrice)
	assert.Equal(t, enums.PriceSourcePriceListDiscount, order.Items[0].PriceSource)
	assert.True(t, order.Total.Equal(money("180.00")))
}

func TestCreate_ShortageReportsAllFailingLinesWithoutMutation(t *testing.T) {
	t.Parallel()

	f := setupOrdersFixture(t)
	scarce := f.seedProduct(t, "SKU-S", "5.00", 2)
	empty := f.seedProduct(t, "SKU-E", "5.00", 0)
	plenty := f.seedProduct(t, "SKU-OK", "5.00", 50)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.createInput(
		CreateOrderLine{ProductID: scarce.ID, Quantity: 3},
		CreateOrderLine{ProductID: empty.ID, Quantity: 1},
		CreateOrderLine{ProductID: plenty.ID, Quantity: 10},
	))
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInsufficientStock, typed.Code())

	details, ok := typed.Details().(map[string]any)
	require.True(t, ok)
	shortages, ok := details["shortages"].([]stock.Shortage)
	require.True(t, ok)
	assert.Len(t, shortages, 2)

	// nothing moved, nothing written
	var reloaded models.Product
	require.NoError(t, f.conn.First(&reloaded, "id = ?", plenty.ID).Error)
	assert.Equal(t, 50, reloaded.StockQuantity)

	var orderCount, movementCount int64
	require.NoError(t, f.conn.Model(&models.Order{}).Count(&orderCount).Error)
	require.NoError(t, f.conn.Model(&models.StockMovement{}).Count(&movementCount).Error)
	assert.Zero(t, orderCount)
	assert.Zero(t, movementCount)
}

func TestCreate_UnknownSupplierAndProductAreDistinct(t *testing.T) {
	t.Parallel()

	f := setupOrdersFixture(t)
	product := f.seedProduct(t, "SKU-1", "5.00", 5)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, CreateOrderInput{
		CustomerID: f.customer.ID,
		SupplierID: uuid.New(),
		Lines:      []CreateOrderLine{{ProductID: product.ID, Quantity: 1}},
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
	assert.Contains(t, typed.Message(), "supplier")

	_, err = f.svc.Create(ctx, f.createInput(CreateOrderLine{ProductID: uuid.New(), Quantity: 1}))
	require.Error(t, err)
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
	assert.Contains(t, typed.Message(), "products")
}

func TestCreate_InactiveProductNotOrderable(t *testing.T) {
	t.Parallel()

	f := setupOrdersFixture(t)
	product := f.seedProduct(t, "SKU-X", "5.00", 5)
	require.NoError(t, f.conn.Model(&product).Update("is_active", false).Error)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.createInput(CreateOrderLine{ProductID: product.ID, Quantity: 1}))
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestCreate_ValidationRejectsBadLines(t *testing.T) {
	t.Parallel()

	f := setupOrdersFixture(t)
	product := f.seedProduct(t, "SKU-V", "5.00", 5)
	ctx := context.Background()

	cases := []struct {
		name  string
		input CreateOrderInput
	}{
		{name: "no lines", input: f.createInput()},
		{name: "zero quantity", input: f.createInput(CreateOrderLine{ProductID: product.ID, Quantity: 0})},
		{name: "negative quantity", input: f.createInput(CreateOrderLine{ProductID: product.ID, Quantity: -1})},
		{name: "duplicate product", input: f.createInput(
			CreateOrderLine{ProductID: product.ID, Quantity: 1},
			CreateOrderLine{ProductID: product.ID, Quantity: 2},
		)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, tc.input)
			require.Error(t, err)
			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
		})
	}
}

func TestCreate_ConcurrentOrdersCannotOversell(t *testing.T) {
	t.Parallel()

	f := setupOrdersFixture(t)
	product := f.seedProduct(t, "SKU-C", "10.00", 5)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			_, errs[slot] = f.svc.Create(ctx, f.createInput(CreateOrderLine{ProductID: product.ID, Quantity: 3}))
		}(i)
	}
	wg.Wait()

	var succeeded, short int
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		typed := pkgerrors.As(err)
		require.NotNil(t, typed, "unexpected error: %v", err)
		require.Equal(t, pkgerrors.CodeInsufficientStock, typed.Code(), "unexpected error: %v", err)
		short++
	}
	assert.Equal(t, 1, succeeded, "exactly one order must win the last units")
	assert.Equal(t, 1, short)

	var reloaded models.Product
	require.NoError(t, f.conn.First(&reloaded, "id = ?", product.ID).Error)
	assert.Equal(t, 2, reloaded.StockQuantity)

	var movementCount int64
	require.NoError(t, f.conn.Model(&models.StockMovement{}).Count(&movementCount).Error)
	assert.EqualValues(t, 1, movementCount)
}

func TestUpdateStatus_WalksTheFullLifecycle(t *testing.T) {
	t.Parallel()

	f := setupOrdersFixture(t)
	product := f.seedProduct(t, "SKU-L", "5.00", 5)
	ctx := context.Background()

	order, err := f.svc.Create(ctx, f.createInput(CreateOrderLine{ProductID: product.ID, Quantity: 1}))
	require.NoError(t, err)

	steps := []enums.OrderStatus{
		enums.OrderStatusConfirmed,
		enums.OrderStatusProcessing,
		enums.OrderStatusShipped,
		enums.OrderStatusDelivered,
	}
	for _, status := range steps {
		updated, err := f.svc.UpdateStatus(ctx, UpdateStatusInput{
			OrderID: order.ID,
			Status:  status,
			Actor:   "supplier:acme",
		})
		require.NoError(t, err, "transition to %s", status)
		assert.Equal(t, status, updated.Status)
	}

	// terminal: no further moves
	_, err = f.svc.UpdateStatus(ctx, UpdateStatusInput{
		OrderID: order.ID,
		Status:  enums.OrderStatusCancelled,
		Actor:   "supplier:acme",
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())

	detail, err := f.svc.Get(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, detail.StatusHistory, 5) // pending + four transitions
}

func TestUpdateStatus_RejectsSkippedStates(t *testing.T) {
	t.Parallel()

	f := setupOrdersFixture(t)
	product := f.seedProduct(t, "SKU-J", "5.00", 5)
	ctx := context.Background()

	order, err := f.svc.Create(ctx, f.createInput(CreateOrderLine{ProductID: product.ID, Quantity: 1}))
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, UpdateStatusInput{
		OrderID: order.ID,
		Status:  enums.OrderStatusShipped,
		Actor:   "supplier:acme",
	})
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
}

func TestUpdateStatus_CancelRestoresInventoryThroughLedger(t *testing.T) {
	t.Parallel()

	f := setupOrdersFixture(t)
	product := f.seedProduct(t, "SKU-R", "5.00", 10)
	ctx := context.Background()

	order, err := f.svc.Create(ctx, f.createInput(CreateOrderLine{ProductID: product.ID, Quantity: 4}))
	require.NoError(t, err)

	var afterCreate models.Product
	require.NoError(t, f.conn.First(&afterCreate, "id = ?", product.ID).Error)
	require.Equal(t, 6, afterCreate.StockQuantity)

	_, err = f.svc.UpdateStatus(ctx, UpdateStatusInput{
		OrderID: order.ID,
		Status:  enums.OrderStatusCancelled,
		Actor:   "customer:" + f.customer.ID.String(),
	})
	require.NoError(t, err)

	var afterCancel models.Product
	require.NoError(t, f.conn.First(&afterCancel, "id = ?", product.ID).Error)
	assert.Equal(t, 10, afterCancel.StockQuantity)

	var movements []models.StockMovement
	require.NoError(t, f.conn.Where("product_id = ?", product.ID).Order("created_at ASC").Find(&movements).Error)
	require.Len(t, movements, 2)
	assert.Equal(t, enums.StockMovementOut, movements[0].Type)
	assert.Equal(t, enums.StockMovementIn, movements[1].Type)
	assert.Equal(t, movements[0].StockAfter, movements[1].StockBefore)
	require.NotNil(t, movements[1].Reference)
	assert.Equal(t, order.OrderNumber, *movements[1].Reference)
}

func TestGet_UnknownOrderIsNotFound(t *testing.T) {
	t.Parallel()

	f := setupOrdersFixture(t)

	_, err := f.svc.Get(context.Background(), uuid.New())
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestListForCustomer_PagesNewestFirst(t *testing.T) {
	t.Parallel()

	f := setupOrdersFixture(t)
	product := f.seedProduct(t, "SKU-PG", "5.00", 100)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := f.svc.Create(ctx, f.createInput(CreateOrderLine{ProductID: product.ID, Quantity: 1}))
		require.NoError(t, err)
	}

	page1, err := f.svc.ListForCustomer(ctx, f.customer.ID, pagination.Params{Limit: 3}, CustomerOrderFilters{})
	require.NoError(t, err)
	require.Len(t, page1.Orders, 3)
	require.NotNil(t, page1.NextCursor)

	page2, err := f.svc.ListForCustomer(ctx, f.customer.ID, pagination.Params{Limit: 3, Cursor: *page1.NextCursor}, CustomerOrderFilters{})
	require.NoError(t, err)
	require.Len(t, page2.Orders, 2)
	assert.Nil(t, page2.NextCursor)

	seen := map[uuid.UUID]struct{}{}
	for _, o := range append(page1.Orders, page2.Orders...) {
		_, dup := seen[o.ID]
		require.False(t, dup, "order %s appeared on both pages", o.ID)
		seen[o.ID] = struct{}{}
	}
}

func TestListForCustomer_FiltersByStatus(t *testing.T) {
	t.Parallel()

	f := setupOrdersFixture(t)
	product := f.seedProduct(t, "SKU-F", "5.00", 100)
	ctx := context.Background()

	first, err := f.svc.Create(ctx, f.createInput(CreateOrderLine{ProductID: product.ID, Quantity: 1}))
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, f.createInput(CreateOrderLine{ProductID: product.ID, Quantity: 1}))
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, UpdateStatusInput{OrderID: first.ID, Status: enums.OrderStatusConfirmed, Actor: "supplier:acme"})
	require.NoError(t, err)

	confirmed := enums.OrderStatusConfirmed
	list, err := f.svc.ListForCustomer(ctx, f.customer.ID, pagination.Params{}, CustomerOrderFilters{Status: &confirmed})
	require.NoError(t, err)
	require.Len(t, list.Orders, 1)
	assert.Equal(t, first.ID, list.Orders[0].ID)
}

func TestCreate_OrderNumbersAreUnique(t *testing.T) {
	t.Parallel()

	f := setupOrdersFixture(t)
	product := f.seedProduct(t, "SKU-N", "1.00", 1000)
	ctx := context.Background()

	seen := map[string]struct{}{}
	for i := 0; i < 25; i++ {
		order, err := f.svc.Create(ctx, f.createInput(CreateOrderLine{ProductID: product.ID, Quantity: 1}))
		require.NoError(t, err)
		_, dup := seen[order.OrderNumber]
		require.False(t, dup, "duplicate order number %s", order.OrderNumber)
		seen[order.OrderNumber] = struct{}{}
	}
}

func TestCreate_TotalsUseOrderLevelDiscountAndFreight(t *testing.T) {
	t.Parallel()

	f := setupOrdersFixture(t)
	product := f.seedProduct(t, "SKU-T", "20.00", 10)
	ctx := context.Background()

	input := f.createInput(CreateOrderLine{ProductID: product.ID, Quantity: 2})
	input.Discount = money("5.00")
	input.Freight = money("3.25")

	order, err := f.svc.Create(ctx, input)
	require.NoError(t, err)

	assert.True(t, order.Subtotal.Equal(money("40.00")))
	assert.True(t, order.Discount.Equal(money("5.00")))
	assert.True(t, order.Freight.Equal(money("3.25")))
	assert.True(t, order.Total.Equal(money("38.25")), "total = %s", order.Total)
}

func TestCreate_NegativeDiscountRejected(t *testing.T) {
	t.Parallel()

	f := setupOrdersFixture(t)
	product := f.seedProduct(t, "SKU-ND", "20.00", 10)

	input := f.createInput(CreateOrderLine{ProductID: product.ID, Quantity: 1})
	input.Discount = decimal.NewFromInt(-1)

	_, err := f.svc.Create(context.Background(), input)
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}
