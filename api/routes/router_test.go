package routes

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tradelinkhq/tradelink-backend/internal/orders"
	"github.com/tradelinkhq/tradelink-backend/internal/pricelists"
	"github.com/tradelinkhq/tradelink-backend/internal/pricing"
	"github.com/tradelinkhq/tradelink-backend/internal/products"
	"github.com/tradelinkhq/tradelink-backend/internal/stock"
	"github.com/tradelinkhq/tradelink-backend/pkg/config"
	pkgdb "github.com/tradelinkhq/tradelink-backend/pkg/db"
	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
	"github.com/tradelinkhq/tradelink-backend/pkg/logger"
)

type routerFixture struct {
	conn     *gorm.DB
	handler  http.Handler
	supplier models.Supplier
	customer models.Customer
}

func setupRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:routes_%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
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

	supplier := models.Supplier{Name: "Acme Wholesale", Email: "sales@acme.test", IsActive: true}
	require.NoError(t, conn.Create(&supplier).Error)
	customer := models.Customer{Name: "Corner Shop", Email: "orders@corner.test", IsActive: true}
	require.NoError(t, conn.Create(&customer).Error)

	dbClient := pkgdb.NewFromConn(conn)
	productsRepo := products.NewRepository(conn)

	pricingSvc, err := pricing.NewService(pricing.NewRepository(conn))
	require.NoError(t, err)
	stockSvc, err := stock.NewService(stock.NewRepository(conn))
	require.NoError(t, err)
	pricelistsSvc, err := pricelists.NewService(pricelists.NewRepository(conn), productsRepo)
	require.NoError(t, err)
	ordersSvc, err := orders.NewService(
		orders.NewRepository(conn),
		productsRepo,
		pricingSvc,
		stockSvc,
		dbClient,
		nil,
		config.OrdersConfig{NumberPrefix: "TL", NumberMaxRetries: 5, RestockCancelledOrders: true},
	)
	require.NoError(t, err)

	logg := logger.New(logger.Options{ServiceName: "test-routes", Level: logger.ParseLevel("debug"), Output: io.Discard})
	cfg := &config.Config{App: config.AppConfig{Env: "test", Port: "0"}}

	handler := NewRouter(cfg, logg, dbClient, nil, nil,
		productsRepo, pricingSvc, pricelistsSvc, stockSvc, ordersSvc)

	return &routerFixture{conn: conn, handler: handler, supplier: supplier, customer: customer}
}

func (f *routerFixture) seedProduct(t *testing.T, sku, basePrice string, stockQty int) models.Product {
	t.Helper()

	price, err := decimal.NewFromString(basePrice)
	require.NoError(t, err)
	product := models.Product{
		SupplierID:    f.supplier.ID,
		SKU:           sku,
		Name:          "Product " + sku,
		BasePrice:     price,
		StockQuantity: stockQty,
		IsActive:      true,
	}
	require.NoError(t, f.conn.Create(&product).Error)
	return product
}

func (f *routerFixture) do(method, path, customerID string, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if customerID != "" {
		req.Header.Set("X-Customer-Id", customerID)
	}
	resp := httptest.NewRecorder()
	f.handler.ServeHTTP(resp, req)
	return resp
}

func TestHealthLive(t *testing.T) {
	t.Parallel()

	f := setupRouterFixture(t)
	resp := f.do(http.MethodGet, "/health/live", "", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "test", resp.Header().Get("X-TradeLink-Env"))
}

func TestCatalogAnonymousSeesBasePrices(t *testing.T) {
	t.Parallel()

	f := setupRouterFixture(t)
	f.seedProduct(t, "SKU-A", "12.00", 4)

	resp := f.do(http.MethodGet, "/api/v1/catalog/suppliers/"+f.supplier.ID.String()+"/products", "", "")
	require.Equal(t, http.StatusOK, resp.Code)

	var payload struct {
		Data struct {
			Products []struct {
				SKU         string `json:"sku"`
				UnitPrice   string `json:"unit_price"`
				PriceSource string `json:"price_source"`
			} `json:"products"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &payload))
	require.Len(t, payload.Data.Products, 1)
	assert.Equal(t, "12.00", payload.Data.Products[0].UnitPrice)
	assert.Equal(t, "base", payload.Data.Products[0].PriceSource)
}

func TestCreateOrderRequiresCustomerIdentity(t *testing.T) {
	t.Parallel()

	f := setupRouterFixture(t)
	body := fmt.Sprintf(`{"supplier_id":%q,"items":[{"product_id":%q,"quantity":1}]}`,
		f.supplier.ID, uuid.NewString())

	resp := f.do(http.MethodPost, "/api/v1/orders", "", body)
	require.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestCreateOrderRejectsMalformedCustomerHeader(t *testing.T) {
	t.Parallel()

	f := setupRouterFixture(t)
	resp := f.do(http.MethodPost, "/api/v1/orders", "not-a-uuid", `{}`)
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCreateOrderEndToEnd(t *testing.T) {
	t.Parallel()

	f := setupRouterFixture(t)
	product := f.seedProduct(t, "SKU-B", "10.50", 8)

	body := fmt.Sprintf(`{"supplier_id":%q,"items":[{"product_id":%q,"quantity":3}]}`,
		f.supplier.ID, product.ID)
	resp := f.do(http.MethodPost, "/api/v1/orders", f.customer.ID.String(), body)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var payload struct {
		Data struct {
			ID          string `json:"id"`
			OrderNumber string `json:"order_number"`
			Status      string `json:"status"`
			Total       string `json:"total"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &payload))
	assert.Regexp(t, `^TL-\d{8}-[0-9A-Z]{6}$`, payload.Data.OrderNumber)
	assert.Equal(t, "pending", payload.Data.Status)
	assert.Equal(t, "31.50", payload.Data.Total)

	var stored models.Product
	require.NoError(t, f.conn.First(&stored, "id = ?", product.ID).Error)
	assert.Equal(t, 5, stored.StockQuantity)

	detail := f.do(http.MethodGet, "/api/v1/orders/"+payload.Data.ID, f.customer.ID.String(), "")
	require.Equal(t, http.StatusOK, detail.Code)

	// Another customer must not see the order.
	other := models.Customer{Name: "Other Shop", Email: "other@shop.test", IsActive: true}
	require.NoError(t, f.conn.Create(&other).Error)
	foreign := f.do(http.MethodGet, "/api/v1/orders/"+payload.Data.ID, other.ID.String(), "")
	require.Equal(t, http.StatusNotFound, foreign.Code)
}

func TestAdjustStockAndReadLedger(t *testing.T) {
	t.Parallel()

	f := setupRouterFixture(t)
	product := f.seedProduct(t, "SKU-C", "5.00", 10)
	base := "/api/v1/suppliers/" + f.supplier.ID.String() + "/products/" + product.ID.String()

	resp := f.do(http.MethodPut, base+"/stock", "", `{"type":"in","quantity":5,"reason":"restock"}`)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var stored models.Product
	require.NoError(t, f.conn.First(&stored, "id = ?", product.ID).Error)
	assert.Equal(t, 15, stored.StockQuantity)

	ledger := f.do(http.MethodGet, base+"/movements", "", "")
	require.Equal(t, http.StatusOK, ledger.Code)

	var payload struct {
		Data struct {
			Movements []struct {
				Type        string `json:"type"`
				Quantity    int    `json:"quantity"`
				StockBefore int    `json:"stock_before"`
				StockAfter  int    `json:"stock_after"`
			} `json:"movements"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(ledger.Body.Bytes(), &payload))
	require.Len(t, payload.Data.Movements, 1)
	assert.Equal(t, "in", payload.Data.Movements[0].Type)
	assert.Equal(t, 10, payload.Data.Movements[0].StockBefore)
	assert.Equal(t, 15, payload.Data.Movements[0].StockAfter)
}

func TestPriceListLifecycleOverHTTP(t *testing.T) {
	t.Parallel()

	f := setupRouterFixture(t)
	product := f.seedProduct(t, "SKU-D", "100.00", 20)

	create := f.do(http.MethodPost, "/api/v1/suppliers/"+f.supplier.ID.String()+"/price-lists", "",
		`{"name":"Gold","discount_type":"percentage","discount_value":"10"}`)
	require.Equal(t, http.StatusCreated, create.Code, create.Body.String())

	var created struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(create.Body.Bytes(), &created))

	assign := f.do(http.MethodPut,
		"/api/v1/suppliers/"+f.supplier.ID.String()+"/customers/"+f.customer.ID.String()+"/price-list", "",
		fmt.Sprintf(`{"price_list_id":%q}`, created.Data.ID))
	require.Equal(t, http.StatusOK, assign.Code, assign.Body.String())

	// The discounted price shows up once the customer identifies itself.
	catalog := f.do(http.MethodGet, "/api/v1/catalog/suppliers/"+f.supplier.ID.String()+"/products",
		f.customer.ID.String(), "")
	require.Equal(t, http.StatusOK, catalog.Code)

	var payload struct {
		Data struct {
			Products []struct {
				ID          string `json:"id"`
				UnitPrice   string `json:"unit_price"`
				PriceSource string `json:"price_source"`
			} `json:"products"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(catalog.Body.Bytes(), &payload))
	require.Len(t, payload.Data.Products, 1)
	assert.Equal(t, product.ID.String(), payload.Data.Products[0].ID)
	assert.Equal(t, "90.00", payload.Data.Products[0].UnitPrice)
	assert.Equal(t, "price_list_discount", payload.Data.Products[0].PriceSource)
}
