package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
)

// StockMovement is one row of the append-only inventory ledger. For any
// product, replaying its movements in order reconstructs the current
// stock_quantity: each row's StockBefore equals the previous row's StockAfter.
type StockMovement struct {
	ID          uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	ProductID   uuid.UUID               `gorm:"column:product_id;type:uuid;not null;index"`
	Type        enums.StockMovementType `gorm:"column:type;type:text;not null"`
	Quantity    int                     `gorm:"column:quantity;not null"`
	StockBefore int                     `gorm:"column:stock_before;not null"`
	StockAfter  int                     `gorm:"column:stock_after;not null"`
	Reason      string                  `gorm:"column:reason;not null"`
	Reference   *string                 `gorm:"column:reference"`
	Actor       string                  `gorm:"column:actor;not null"`
	CreatedAt   time.Time               `gorm:"column:created_at;autoCreateTime"`
}

func (m *StockMovement) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
