package settlement

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/dmarquina/shoplink-backend/pkg/errors"
	"github.com/dmarquina/shoplink-backend/pkg/types"
)

// Metadata keys written by the checkout flow when it creates the Stripe
// session. The serialized payloads under these keys are the only input the
// settlement processor has beyond store reads.
const (
	metadataKeyUserID       = "userId"
	metadataKeyOrderData    = "orderData"
	metadataKeyInfluencerID = "influencer_id"
	metadataKeyCustomPrices = "custom_prices"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// CheckoutPayload is the orderData envelope frozen into the session at
// checkout time.
type CheckoutPayload struct {
	Items           []types.OrderItem `json:"items" validate:"required,min=1,dive"`
	Total           decimal.Decimal   `json:"total"`
	ShippingAddress *types.Address    `json:"shippingAddress"`
	BillingAddress  *types.Address    `json:"billingAddress"`
}

// SessionMetadata is the validated view of a checkout session's metadata bag.
//
// The purchaser id and order payload are mandatory: without them no order can
// be materialized and the event is dropped. Influencer attribution and custom
// prices fail closed: anything malformed is treated as absent so a broken
// storefront tag degrades to a direct sale instead of killing the settlement.
type SessionMetadata struct {
	CustomerID   uuid.UUID
	Payload      CheckoutPayload
	InfluencerID *uuid.UUID
	CustomPrices map[uuid.UUID]decimal.Decimal
}

func parseSessionMetadata(raw map[string]string) (*SessionMetadata, error) {
	if raw == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session metadata missing")
	}

	userID := strings.TrimSpace(raw[metadataKeyUserID])
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "userId metadata missing")
	}
	customerID, err := uuid.Parse(userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "userId metadata malformed")
	}

	orderData := raw[metadataKeyOrderData]
	if orderData == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "orderData metadata missing")
	}

	var payload CheckoutPayload
	if err := json.Unmarshal([]byte(orderData), &payload); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "orderData metadata malformed")
	}
	if err := validate.Struct(&payload); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "orderData payload invalid")
	}

	return &SessionMetadata{
		CustomerID:   customerID,
		Payload:      payload,
		InfluencerID: parseInfluencerID(raw[metadataKeyInfluencerID]),
		CustomPrices: parseCustomPrices(raw[metadataKeyCustomPrices]),
	}, nil
}

func parseInfluencerID(raw string) *uuid.UUID {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}

func parseCustomPrices(raw string) map[uuid.UUID]decimal.Decimal {
	if raw == "" {
		return nil
	}
	var byProduct map[string]decimal.Decimal
	if err := json.Unmarshal([]byte(raw), &byProduct); err != nil {
		return nil
	}
	prices := make(map[uuid.UUID]decimal.Decimal, len(byProduct))
	for key, price := range byProduct {
		productID, err := uuid.Parse(key)
		if err != nil {
			continue
		}
		prices[productID] = price
	}
	if len(prices) == 0 {
		return nil
	}
	return prices
}
