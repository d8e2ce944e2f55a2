package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tradelinkhq/tradelink-backend/api/controllers"
	"github.com/tradelinkhq/tradelink-backend/api/middleware"
	"github.com/tradelinkhq/tradelink-backend/internal/orders"
	"github.com/tradelinkhq/tradelink-backend/internal/pricelists"
	"github.com/tradelinkhq/tradelink-backend/internal/pricing"
	"github.com/tradelinkhq/tradelink-backend/internal/products"
	"github.com/tradelinkhq/tradelink-backend/internal/stock"
	"github.com/tradelinkhq/tradelink-backend/pkg/config"
	"github.com/tradelinkhq/tradelink-backend/pkg/db"
	"github.com/tradelinkhq/tradelink-backend/pkg/logger"
	pkgredis "github.com/tradelinkhq/tradelink-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *pkgredis.Client,
	gatherer prometheus.Gatherer,
	productsRepo products.Repository,
	pricingSvc pricing.Service,
	pricelistsSvc pricelists.Service,
	stockSvc stock.Service,
	ordersSvc orders.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	// Avoid typed-nil interfaces when redis is absent (tests, local tooling).
	var redisPinger pkgredis.Pinger
	var idempotencyStore pkgredis.IdempotencyStore
	if redisClient != nil {
		redisPinger = redisClient
		idempotencyStore = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbClient, redisPinger))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.CustomerContext(logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Get("/catalog/suppliers/{supplierID}/products", controllers.CatalogProducts(productsRepo, pricingSvc, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Use(middleware.RequireCustomer(logg))
			r.Post("/", controllers.CreateOrder(ordersSvc, logg))
			r.Get("/", controllers.ListOrders(ordersSvc, logg))
			r.Get("/{orderID}", controllers.GetOrder(ordersSvc, logg))
			r.Post("/{orderID}/status", controllers.UpdateOrderStatus(ordersSvc, logg))
		})

		r.Route("/suppliers/{supplierID}", func(r chi.Router) {
			r.Route("/price-lists", func(r chi.Router) {
				r.Post("/", controllers.CreatePriceList(pricelistsSvc, logg))
				r.Get("/", controllers.ListPriceLists(pricelistsSvc, logg))
			})
			r.Put("/customers/{customerID}/price-list", controllers.AssignCustomerPriceList(pricelistsSvc, logg))
			r.Route("/products/{productID}", func(r chi.Router) {
				r.Put("/stock", controllers.AdjustStock(stockSvc, productsRepo, dbClient, logg))
				r.Get("/movements", controllers.ListStockMovements(stockSvc, productsRepo, logg))
			})
		})

		r.Route("/price-lists/{listID}", func(r chi.Router) {
			r.Patch("/", controllers.UpdatePriceList(pricelistsSvc, logg))
			r.Put("/items/{productID}", controllers.UpsertPriceListItem(pricelistsSvc, logg))
			r.Delete("/items/{productID}", controllers.RemovePriceListItem(pricelistsSvc, logg))
		})

		r.Route("/customers/{customerID}/product-prices/{productID}", func(r chi.Router) {
			r.Put("/", controllers.UpsertCustomerPrice(pricelistsSvc, logg))
			r.Delete("/", controllers.RemoveCustomerPrice(pricelistsSvc, logg))
		})
	})

	return r
}
