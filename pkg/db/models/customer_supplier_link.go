package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CustomerSupplierLink records that a customer buys from a supplier,
// optionally under one of the supplier's price lists.
type CustomerSupplierLink struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID  uuid.UUID  `gorm:"column:customer_id;type:uuid;not null;uniqueIndex:idx_customer_supplier"`
	SupplierID  uuid.UUID  `gorm:"column:supplier_id;type:uuid;not null;uniqueIndex:idx_customer_supplier"`
	PriceListID *uuid.UUID `gorm:"column:price_list_id;type:uuid"`
	PriceList   *PriceList `gorm:"foreignKey:PriceListID"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (l *CustomerSupplierLink) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
