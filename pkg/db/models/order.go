package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
	"github.com/tradelinkhq/tradelink-backend/pkg/types"
)

// Order is created once by the fulfillment transaction. Line items and the
// monetary totals are frozen at creation; only the status moves afterwards.
type Order struct {
	ID              uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	OrderNumber     string               `gorm:"column:order_number;not null;uniqueIndex"`
	CustomerID      uuid.UUID            `gorm:"column:customer_id;type:uuid;not null;index"`
	SupplierID      uuid.UUID            `gorm:"column:supplier_id;type:uuid;not null;index"`
	Status          enums.OrderStatus    `gorm:"column:status;type:text;not null;default:'pending'"`
	Subtotal        decimal.Decimal      `gorm:"column:subtotal;type:numeric(12,2);not null"`
	Discount        decimal.Decimal      `gorm:"column:discount;type:numeric(12,2);not null"`
	Freight         decimal.Decimal      `gorm:"column:freight;type:numeric(12,2);not null"`
	Total           decimal.Decimal      `gorm:"column:total;type:numeric(12,2);not null"`
	DeliveryAddress *types.Address       `gorm:"column:delivery_address;type:jsonb;serializer:json"`
	Notes           *string              `gorm:"column:notes"`
	TrackingCode    *string              `gorm:"column:tracking_code"`
	Items           []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	StatusHistory   []OrderStatusHistory `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
