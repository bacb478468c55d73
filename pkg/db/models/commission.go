package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmarquina/shoplink-backend/pkg/enums"
)

// Commission is one party's earned revenue share on one order line item.
// Rows are insert-only at settlement time; paid_at and dispute_reason are
// written later by the payout flow.
type Commission struct {
	ID            uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	OrderID       uuid.UUID              `gorm:"column:order_id;type:uuid;not null;index"`
	BeneficiaryID uuid.UUID              `gorm:"column:beneficiary_id;type:uuid;not null;index"`
	SupplierID    uuid.UUID              `gorm:"column:supplier_id;type:uuid;not null"`
	ProductID     uuid.UUID              `gorm:"column:product_id;type:uuid;not null"`
	Amount        decimal.Decimal        `gorm:"column:amount;type:numeric(12,2);not null"`
	Rate          decimal.Decimal        `gorm:"column:rate;type:numeric(7,2);not null"`
	Status        enums.CommissionStatus `gorm:"column:status;type:commission_status;not null;default:'pending'"`
	PaidAt        *time.Time             `gorm:"column:paid_at"`
	DisputeReason *string                `gorm:"column:dispute_reason"`
	CreatedAt     time.Time              `gorm:"column:created_at;autoCreateTime"`
}
