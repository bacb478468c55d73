package commissions

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dmarquina/shoplink-backend/pkg/db/models"
	"github.com/dmarquina/shoplink-backend/pkg/enums"
)

func TestCreateAndListByOrderID(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	repo := NewRepository(db)

	orderID := uuid.New()
	supplierID := uuid.New()
	influencerID := uuid.New()
	productID := uuid.New()

	supplier := &models.Commission{
		OrderID:       orderID,
		BeneficiaryID: supplierID,
		SupplierID:    supplierID,
		ProductID:     productID,
		Amount:        decimal.RequireFromString("52.00"),
		Rate:          decimal.NewFromInt(20),
		Status:        enums.CommissionStatusPending,
	}
	if err := repo.Create(ctx, supplier); err != nil {
		t.Fatalf("create supplier commission: %v", err)
	}

	influencer := &models.Commission{
		OrderID:       orderID,
		BeneficiaryID: influencerID,
		SupplierID:    supplierID,
		ProductID:     productID,
		Amount:        decimal.RequireFromString("60.00"),
		Rate:          decimal.NewFromInt(30),
		Status:        enums.CommissionStatusPending,
	}
	if err := repo.Create(ctx, influencer); err != nil {
		t.Fatalf("create influencer commission: %v", err)
	}

	records, err := repo.ListByOrderID(ctx, orderID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 commission rows, got %d", len(records))
	}
	for _, record := range records {
		if record.Status != enums.CommissionStatusPending {
			t.Fatalf("expected pending status, got %s", record.Status)
		}
		if record.PaidAt != nil {
			t.Fatalf("settlement must not set paid_at")
		}
	}

	other, err := repo.ListByOrderID(ctx, uuid.New())
	if err != nil {
		t.Fatalf("list other: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("expected no rows for unrelated order, got %d", len(other))
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:commissions_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Commission{}); err != nil {
		t.Fatalf("migrate commissions: %v", err)
	}
	return db
}
