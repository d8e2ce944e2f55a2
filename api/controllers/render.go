package controllers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
	pkgerrors "github.com/tradelinkhq/tradelink-backend/pkg/errors"
	"github.com/tradelinkhq/tradelink-backend/pkg/types"
)

// Wire money values are decimal strings, never floats.

type orderItemPayload struct {
	ID          uuid.UUID `json:"id"`
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	UnitPrice   string    `json:"unit_price"`
	PriceSource string    `json:"price_source"`
	LineTotal   string    `json:"line_total"`
}

type statusHistoryPayload struct {
	Status    string    `json:"status"`
	Note      *string   `json:"note,omitempty"`
	Actor     string    `json:"actor"`
	CreatedAt time.Time `json:"created_at"`
}

type orderPayload struct {
	ID              uuid.UUID              `json:"id"`
	OrderNumber     string                 `json:"order_number"`
	CustomerID      uuid.UUID              `json:"customer_id"`
	SupplierID      uuid.UUID              `json:"supplier_id"`
	Status          string                 `json:"status"`
	Subtotal        string                 `json:"subtotal"`
	Discount        string                 `json:"discount"`
	Freight         string                 `json:"freight"`
	Total           string                 `json:"total"`
	DeliveryAddress *types.Address         `json:"delivery_address,omitempty"`
	Notes           *string                `json:"notes,omitempty"`
	Items           []orderItemPayload     `json:"items,omitempty"`
	StatusHistory   []statusHistoryPayload `json:"status_history,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
}

func renderOrder(order *models.Order) orderPayload {
	payload := orderPayload{
		ID:              order.ID,
		OrderNumber:     order.OrderNumber,
		CustomerID:      order.CustomerID,
		SupplierID:      order.SupplierID,
		Status:          order.Status.String(),
		Subtotal:        order.Subtotal.StringFixed(2),
		Discount:        order.Discount.StringFixed(2),
		Freight:         order.Freight.StringFixed(2),
		Total:           order.Total.StringFixed(2),
		DeliveryAddress: order.DeliveryAddress,
		Notes:           order.Notes,
		CreatedAt:       order.CreatedAt,
	}
	for _, item := range order.Items {
		payload.Items = append(payload.Items, orderItemPayload{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice.StringFixed(2),
			PriceSource: item.PriceSource.String(),
			LineTotal:   item.LineTotal.StringFixed(2),
		})
	}
	for _, entry := range order.StatusHistory {
		payload.StatusHistory = append(payload.StatusHistory, statusHistoryPayload{
			Status:    entry.Status.String(),
			Note:      entry.Note,
			Actor:     entry.Actor,
			CreatedAt: entry.CreatedAt,
		})
	}
	return payload
}

type movementPayload struct {
	ID          uuid.UUID `json:"id"`
	ProductID   uuid.UUID `json:"product_id"`
	Type        string    `json:"type"`
	Quantity    int       `json:"quantity"`
	StockBefore int       `json:"stock_before"`
	StockAfter  int       `json:"stock_after"`
	Reason      string    `json:"reason"`
	Reference   *string   `json:"reference,omitempty"`
	Actor       string    `json:"actor"`
	CreatedAt   time.Time `json:"created_at"`
}

func renderMovement(movement models.StockMovement) movementPayload {
	return movementPayload{
		ID:          movement.ID,
		ProductID:   movement.ProductID,
		Type:        movement.Type.String(),
		Quantity:    movement.Quantity,
		StockBefore: movement.StockBefore,
		StockAfter:  movement.StockAfter,
		Reason:      movement.Reason,
		Reference:   movement.Reference,
		Actor:       movement.Actor,
		CreatedAt:   movement.CreatedAt,
	}
}

type priceListPayload struct {
	ID            uuid.UUID `json:"id"`
	SupplierID    uuid.UUID `json:"supplier_id"`
	Name          string    `json:"name"`
	DiscountType  string    `json:"discount_type"`
	DiscountValue string    `json:"discount_value"`
	IsActive      bool      `json:"is_active"`
}

func renderPriceList(list *models.PriceList) priceListPayload {
	return priceListPayload{
		ID:            list.ID,
		SupplierID:    list.SupplierID,
		Name:          list.Name,
		DiscountType:  list.DiscountType.String(),
		DiscountValue: list.DiscountValue.StringFixed(2),
		IsActive:      list.IsActive,
	}
}

// parseMoney converts a wire decimal string into a decimal value.
func parseMoney(field, raw string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, pkgerrors.New(pkgerrors.CodeValidation, field+" must be a decimal string")
	}
	return value, nil
}

// parseOptionalMoney treats an absent value as zero.
func parseOptionalMoney(field string, raw *string) (decimal.Decimal, error) {
	if raw == nil || *raw == "" {
		return decimal.Zero, nil
	}
	return parseMoney(field, *raw)
}
