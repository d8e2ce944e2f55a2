package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
)

// PriceList applies a blanket discount to every product of a supplier unless
// a PriceListItem overrides the price for a specific product.
type PriceList struct {
	ID            uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	SupplierID    uuid.UUID          `gorm:"column:supplier_id;type:uuid;not null;index"`
	Name          string             `gorm:"column:name;not null"`
	DiscountType  enums.DiscountType `gorm:"column:discount_type;type:text;not null"`
	DiscountValue decimal.Decimal    `gorm:"column:discount_value;type:numeric(12,2);not null"`
	IsActive      bool               `gorm:"column:is_active;not null;default:true"`
	Items         []PriceListItem    `gorm:"foreignKey:PriceListID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *PriceList) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
