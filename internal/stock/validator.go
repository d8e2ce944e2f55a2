package stock

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
	pkgerrors "github.com/tradelinkhq/tradelink-backend/pkg/errors"
)

// Line is one requested quantity against a product.
type Line struct {
	ProductID uuid.UUID
	Quantity  int
}

// Shortage reports one line that cannot be satisfied from current stock.
type Shortage struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Requested   int       `json:"requested"`
	Available   int       `json:"available"`
}

// ValidateAvailability checks every line against the loaded products and
// returns the complete shortage list, never stopping at the first failure.
// A nil return means all lines can be satisfied.
func ValidateAvailability(lines []Line, productsByID map[uuid.UUID]models.Product) []Shortage {
	var shortages []Shortage
	for _, line := range lines {
		product, ok := productsByID[line.ProductID]
		if !ok {
			continue
		}
		if product.StockQuantity < line.Quantity {
			shortages = append(shortages, Shortage{
				ProductID:   product.ID,
				ProductName: product.Name,
				Requested:   line.Quantity,
				Available:   product.StockQuantity,
			})
		}
	}
	return shortages
}

// InsufficientStockError wraps a shortage report in the coded error the API
// layer maps to a 409 response.
func InsufficientStockError(shortages []Shortage) error {
	return pkgerrors.New(pkgerrors.CodeInsufficientStock,
		fmt.Sprintf("%d line(s) exceed available stock", len(shortages))).
		WithDetails(map[string]any{"shortages": shortages})
}
