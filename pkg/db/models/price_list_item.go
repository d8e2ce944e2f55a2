package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PriceListItem pins a product inside a price list. A non-null SpecialPrice
// replaces the list's blanket discount for that product.
type PriceListItem struct {
	ID           uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	PriceListID  uuid.UUID        `gorm:"column:price_list_id;type:uuid;not null;uniqueIndex:idx_price_list_product"`
	ProductID    uuid.UUID        `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_price_list_product"`
	SpecialPrice *decimal.Decimal `gorm:"column:special_price;type:numeric(12,2)"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (i *PriceListItem) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
