package settlement

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestParseSessionMetadata(t *testing.T) {
	customerID := uuid.New()
	influencerID := uuid.New()
	productID := uuid.New()
	supplierID := uuid.New()

	orderData := `{
		"items": [{"productId": "` + productID.String() + `", "quantity": 2, "price": "50.00", "supplierId": "` + supplierID.String() + `", "commission": "20"}],
		"total": "100.00",
		"shippingAddress": {"name": "Dana", "line1": "1 Main St", "city": "Lima", "state": "LIM", "postalCode": "15001", "country": "PE"}
	}`

	meta, err := parseSessionMetadata(map[string]string{
		"userId":        customerID.String(),
		"orderData":     orderData,
		"influencer_id": influencerID.String(),
		"custom_prices": `{"` + productID.String() + `": "60.00"}`,
	})
	if err != nil {
		t.Fatalf("parse metadata: %v", err)
	}

	if meta.CustomerID != customerID {
		t.Fatalf("customer id = %s, want %s", meta.CustomerID, customerID)
	}
	if meta.InfluencerID == nil || *meta.InfluencerID != influencerID {
		t.Fatalf("influencer id not carried through")
	}
	if len(meta.Payload.Items) != 1 {
		t.Fatalf("expected one item, got %d", len(meta.Payload.Items))
	}
	item := meta.Payload.Items[0]
	if item.ProductID != productID || item.Quantity != 2 {
		t.Fatalf("item snapshot mangled: %+v", item)
	}
	if !item.UnitPrice.Equal(decimal.RequireFromString("50.00")) {
		t.Fatalf("unit price = %s", item.UnitPrice)
	}
	if meta.Payload.ShippingAddress == nil || meta.Payload.ShippingAddress.City != "Lima" {
		t.Fatalf("shipping address not carried through")
	}
	price, ok := meta.CustomPrices[productID]
	if !ok || !price.Equal(decimal.RequireFromString("60.00")) {
		t.Fatalf("custom price not carried through")
	}
}

func TestParseSessionMetadataRejectsRequiredFields(t *testing.T) {
	validOrderData := `{"items":[{"productId":"` + uuid.NewString() + `","quantity":1,"price":"5","supplierId":"` + uuid.NewString() + `","commission":"10"}],"total":"5"}`

	cases := []struct {
		name     string
		metadata map[string]string
	}{
		{name: "nil metadata", metadata: nil},
		{name: "missing user id", metadata: map[string]string{"orderData": validOrderData}},
		{name: "malformed user id", metadata: map[string]string{"userId": "not-a-uuid", "orderData": validOrderData}},
		{name: "missing order data", metadata: map[string]string{"userId": uuid.NewString()}},
		{name: "malformed order data", metadata: map[string]string{"userId": uuid.NewString(), "orderData": "{"}},
		{name: "empty items", metadata: map[string]string{"userId": uuid.NewString(), "orderData": `{"items":[],"total":"0"}`}},
		{name: "item missing product id", metadata: map[string]string{
			"userId":    uuid.NewString(),
			"orderData": `{"items":[{"quantity":1,"price":"5","supplierId":"` + uuid.NewString() + `","commission":"10"}],"total":"5"}`,
		}},
		{name: "negative quantity", metadata: map[string]string{
			"userId":    uuid.NewString(),
			"orderData": `{"items":[{"productId":"` + uuid.NewString() + `","quantity":-1,"price":"5","supplierId":"` + uuid.NewString() + `","commission":"10"}],"total":"5"}`,
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := parseSessionMetadata(tc.metadata); err == nil {
				t.Fatalf("expected rejection")
			}
		})
	}
}

func TestParseSessionMetadataFailsClosedOnOptionalFields(t *testing.T) {
	validOrderData := `{"items":[{"productId":"` + uuid.NewString() + `","quantity":1,"price":"5","supplierId":"` + uuid.NewString() + `","commission":"10"}],"total":"5"}`

	meta, err := parseSessionMetadata(map[string]string{
		"userId":        uuid.NewString(),
		"orderData":     validOrderData,
		"influencer_id": "not-a-uuid",
		"custom_prices": "{broken",
	})
	if err != nil {
		t.Fatalf("optional fields must not fail the parse: %v", err)
	}
	if meta.InfluencerID != nil {
		t.Fatalf("malformed influencer id must be dropped")
	}
	if meta.CustomPrices != nil {
		t.Fatalf("malformed custom prices must be dropped")
	}
}
