package types

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem is the economic snapshot of one product/quantity pairing, frozen
// into the checkout session at cart time. Settlement never re-joins against
// the live catalog; these terms are authoritative for the order.
type OrderItem struct {
	ProductID      uuid.UUID       `json:"productId" validate:"required"`
	Quantity       int             `json:"quantity" validate:"gte=0"`
	UnitPrice      decimal.Decimal `json:"price"`
	SupplierID     uuid.UUID       `json:"supplierId" validate:"required"`
	CommissionRate decimal.Decimal `json:"commission"`
}
