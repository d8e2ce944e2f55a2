package orders

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
	"github.com/tradelinkhq/tradelink-backend/pkg/types"
)

// CreateOrderLine is one requested product/quantity pair.
type CreateOrderLine struct {
	ProductID uuid.UUID
	Quantity  int
}

// CreateOrderInput carries everything the fulfillment transaction needs.
type CreateOrderInput struct {
	CustomerID      uuid.UUID
	SupplierID      uuid.UUID
	Lines           []CreateOrderLine
	DeliveryAddress *types.Address
	Notes           *string
	Discount        decimal.Decimal
	Freight         decimal.Decimal
}

// UpdateStatusInput requests one transition on the order status machine.
type UpdateStatusInput struct {
	OrderID uuid.UUID
	Status  enums.OrderStatus
	Note    *string
	Actor   string
}

// CustomerOrderFilters narrows a customer's order listing.
type CustomerOrderFilters struct {
	Status *enums.OrderStatus
}

// OrderList is one page of a customer's orders.
type OrderList struct {
	Orders     []models.Order
	NextCursor *string
}
