package settlement

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"
	"go.uber.org/multierr"

	"github.com/dmarquina/shoplink-backend/internal/inventory"
	"github.com/dmarquina/shoplink-backend/pkg/config"
	"github.com/dmarquina/shoplink-backend/pkg/db/models"
	"github.com/dmarquina/shoplink-backend/pkg/enums"
	pkgerrors "github.com/dmarquina/shoplink-backend/pkg/errors"
	"github.com/dmarquina/shoplink-backend/pkg/logger"
	"github.com/dmarquina/shoplink-backend/pkg/metrics"
	"github.com/dmarquina/shoplink-backend/pkg/types"
)

// Outcome labels recorded against settlement_events_total.
const (
	outcomeSettled          = "settled"
	outcomeDuplicate        = "duplicate"
	outcomeInvalidMetadata  = "invalid_metadata"
	outcomeDecodeFailed     = "decode_failed"
	outcomeOrderWriteFailed = "order_write_failed"
	outcomeIgnored          = "ignored"
)

type orderStore interface {
	CreateIfAbsent(ctx context.Context, order *models.Order) (bool, error)
}

type commissionStore interface {
	Create(ctx context.Context, commission *models.Commission) error
}

type stockLedger interface {
	DecrementAndReport(ctx context.Context, productID uuid.UUID, qty int) (inventory.StockReport, error)
}

type ServiceParams struct {
	Orders      orderStore
	Commissions commissionStore
	Stock       stockLedger
	Logger      *logger.Logger
	Metrics     *metrics.SettlementMetrics
	Config      config.SettlementConfig
}

// Service turns verified Stripe events into orders, stock movements and
// commission rows. Every failure past signature verification is terminal for
// the affected writes only: the processor records what it can, logs what it
// cannot, and never asks Stripe to redeliver.
type Service struct {
	orders      orderStore
	commissions commissionStore
	stock       stockLedger
	logger      *logger.Logger
	metrics     *metrics.SettlementMetrics
	cfg         config.SettlementConfig
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order store required")
	}
	if params.Commissions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "commission store required")
	}
	if params.Stock == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "stock ledger required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Service{
		orders:      params.Orders,
		commissions: params.Commissions,
		stock:       params.Stock,
		logger:      params.Logger,
		metrics:     params.Metrics,
		cfg:         params.Config,
	}, nil
}

func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}
	ctx = s.logger.WithEventID(ctx, event.ID)
	started := time.Now()

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			s.logger.Error(ctx, "decode checkout session", err)
			s.metrics.ObserveEvent(string(event.Type), outcomeDecodeFailed, time.Since(started))
			return nil
		}
		outcome := s.settleSession(ctx, &session)
		s.metrics.ObserveEvent(string(event.Type), outcome, time.Since(started))
		return nil
	case stripe.EventTypePaymentIntentSucceeded:
		ctx = s.logger.WithField(ctx, "payment_intent_id", event.GetObjectValue("id"))
		s.logger.Info(ctx, "payment intent succeeded")
		s.metrics.ObserveEvent(string(event.Type), outcomeIgnored, time.Since(started))
		return nil
	case stripe.EventTypePaymentIntentPaymentFailed:
		ctx = s.logger.WithField(ctx, "payment_intent_id", event.GetObjectValue("id"))
		s.logger.Warn(ctx, "payment intent failed")
		s.metrics.ObserveEvent(string(event.Type), outcomeIgnored, time.Since(started))
		return nil
	default:
		return nil
	}
}

func (s *Service) settleSession(ctx context.Context, session *stripe.CheckoutSession) string {
	ctx = s.logger.WithField(ctx, "checkout_session_id", session.ID)

	meta, err := parseSessionMetadata(session.Metadata)
	if err != nil {
		s.logger.Error(ctx, "checkout session metadata rejected", err)
		return outcomeInvalidMetadata
	}

	paymentIntentID := ""
	if session.PaymentIntent != nil {
		paymentIntentID = session.PaymentIntent.ID
	}
	if paymentIntentID == "" {
		s.logger.Error(ctx, "checkout session has no payment intent", nil)
		return outcomeInvalidMetadata
	}

	order := &models.Order{
		ID:                    uuid.New(),
		CustomerID:            meta.CustomerID,
		Items:                 meta.Payload.Items,
		Total:                 meta.Payload.Total.Round(s.cfg.CurrencyPrecision),
		Status:                enums.OrderStatusConfirmed,
		ShippingAddress:       meta.Payload.ShippingAddress,
		BillingAddress:        meta.Payload.BillingAddress,
		PaymentMethod:         enums.PaymentMethodStripe,
		StripePaymentIntentID: paymentIntentID,
	}

	created, err := s.orders.CreateIfAbsent(ctx, order)
	if err != nil {
		s.logger.Error(ctx, "persist order", err)
		return outcomeOrderWriteFailed
	}
	if !created {
		s.metrics.IncDuplicate()
		s.logger.Info(ctx, "payment intent already settled, skipping")
		return outcomeDuplicate
	}
	ctx = s.logger.WithOrderID(ctx, order.ID.String())
	s.logger.Info(ctx, "order recorded")

	var errs error
	for _, item := range meta.Payload.Items {
		errs = multierr.Append(errs, s.settleItem(ctx, order, item, meta))
	}
	if errs != nil {
		s.logger.Error(ctx, "settlement completed with partial failures", errs)
	}
	return outcomeSettled
}

// settleItem moves stock and records commissions for a single line item. A
// refused or failed stock update skips the item's commissions; commission
// write failures are collected so the remaining records still land.
func (s *Service) settleItem(ctx context.Context, order *models.Order, item types.OrderItem, meta *SessionMetadata) error {
	ctx = s.logger.WithProductID(ctx, item.ProductID.String())

	report, err := s.stock.DecrementAndReport(ctx, item.ProductID, item.Quantity)
	if err != nil {
		s.metrics.IncStockFailure()
		s.logger.Error(ctx, "stock decrement failed", err)
		return err
	}
	if !report.Success {
		s.metrics.IncStockFailure()
		s.logger.Warn(ctx, "stock decrement refused: "+report.ErrorMessage)
		return pkgerrors.New(pkgerrors.CodeStateConflict, report.ErrorMessage)
	}
	s.logger.Info(s.logger.WithFields(ctx, map[string]any{
		"stock_count": report.StockCount,
		"in_stock":    report.InStock,
	}), "stock updated")

	effective := item.UnitPrice
	if price, ok := meta.CustomPrices[item.ProductID]; ok {
		effective = price
	}
	qty := decimal.NewFromInt(int64(item.Quantity))
	revenue := effective.Mul(qty)

	var errs error

	supplierAmount := revenue.Mul(item.CommissionRate).
		Div(decimal.NewFromInt(100)).
		Round(s.cfg.CurrencyPrecision)
	supplier := &models.Commission{
		OrderID:       order.ID,
		BeneficiaryID: attributedBeneficiary(meta),
		SupplierID:    item.SupplierID,
		ProductID:     item.ProductID,
		Amount:        supplierAmount,
		Rate:          item.CommissionRate.Round(2),
		Status:        enums.CommissionStatusPending,
	}
	if err := s.commissions.Create(ctx, supplier); err != nil {
		s.logger.Error(ctx, "record supplier commission", err)
		errs = multierr.Append(errs, err)
	} else {
		s.metrics.IncCommission("supplier")
	}

	markup := effective.Sub(item.UnitPrice).Mul(qty)
	if meta.InfluencerID != nil && markup.IsPositive() {
		rate := decimal.Zero
		if item.UnitPrice.IsPositive() {
			rate = effective.Sub(item.UnitPrice).
				Div(item.UnitPrice).
				Mul(decimal.NewFromInt(100)).
				Round(2)
		}
		influencer := &models.Commission{
			OrderID:       order.ID,
			BeneficiaryID: *meta.InfluencerID,
			SupplierID:    item.SupplierID,
			ProductID:     item.ProductID,
			Amount:        markup.Round(s.cfg.CurrencyPrecision),
			Rate:          rate,
			Status:        enums.CommissionStatusPending,
		}
		if err := s.commissions.Create(ctx, influencer); err != nil {
			s.logger.Error(ctx, "record influencer commission", err)
			errs = multierr.Append(errs, err)
		} else {
			s.metrics.IncCommission("influencer")
		}
	}

	s.logger.Info(s.logger.WithFields(ctx, map[string]any{
		"item_revenue":        revenue.Round(s.cfg.CurrencyPrecision).String(),
		"supplier_commission": supplierAmount.String(),
		"supplier_net":        revenue.Sub(supplierAmount).Round(s.cfg.CurrencyPrecision).String(),
	}), "line item settled")

	return errs
}

// attributedBeneficiary applies the direct-purchase attribution rule for the
// supplier share: the referring influencer earns it when the session carries
// one, and on a direct sale the purchaser is credited instead.
func attributedBeneficiary(meta *SessionMetadata) uuid.UUID {
	if meta.InfluencerID != nil {
		return *meta.InfluencerID
	}
	return meta.CustomerID
}
