package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmarquina/shoplink-backend/pkg/enums"
	"github.com/dmarquina/shoplink-backend/pkg/types"
)

// Order represents one completed checkout. It is created exactly once per
// payment session; the unique index on stripe_payment_intent_id rejects
// duplicates from webhook redeliveries.
type Order struct {
	ID                    uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID            uuid.UUID         `gorm:"column:customer_id;type:uuid;not null"`
	Items                 []types.OrderItem `gorm:"column:items;type:jsonb;serializer:json;not null"`
	Total                 decimal.Decimal   `gorm:"column:total;type:numeric(12,2);not null"`
	Status                enums.OrderStatus `gorm:"column:status;type:order_status;not null;default:'confirmed'"`
	ShippingAddress       *types.Address    `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	BillingAddress        *types.Address    `gorm:"column:billing_address;type:jsonb;serializer:json"`
	PaymentMethod         enums.PaymentMethod `gorm:"column:payment_method;type:payment_method;not null;default:'stripe'"`
	StripePaymentIntentID string            `gorm:"column:stripe_payment_intent_id;not null;uniqueIndex:idx_orders_payment_intent"`
	CreatedAt             time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
