package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product represents one supplier catalog listing. StockQuantity is mutated
// only through the stock movement ledger and must never go negative.
type Product struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	SupplierID    uuid.UUID       `gorm:"column:supplier_id;type:uuid;not null;uniqueIndex:idx_products_supplier_sku"`
	SKU           string          `gorm:"column:sku;not null;uniqueIndex:idx_products_supplier_sku"`
	Name          string          `gorm:"column:name;not null"`
	Description   *string         `gorm:"column:description"`
	BasePrice     decimal.Decimal `gorm:"column:base_price;type:numeric(12,2);not null"`
	StockQuantity int             `gorm:"column:stock_quantity;not null;default:0"`
	StockMinimum  int             `gorm:"column:stock_minimum;not null;default:0"`
	StockMaximum  int             `gorm:"column:stock_maximum;not null;default:0"`
	IsActive      bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
