package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the supplier catalog listing. Settlement only touches the stock
// columns; everything else belongs to the catalog flows.
type Product struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	SupplierID     uuid.UUID       `gorm:"column:supplier_id;type:uuid;not null;index"`
	Title          string          `gorm:"column:title;not null"`
	Price          decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	CommissionRate decimal.Decimal `gorm:"column:commission_rate;type:numeric(5,2);not null;default:0"`
	StockCount     int             `gorm:"column:stock_count;not null;default:0"`
	InStock        bool            `gorm:"column:in_stock;not null;default:false"`
	IsActive       bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
