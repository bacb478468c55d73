package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/dmarquina/shoplink-backend/pkg/errors"
)

// StockReport is the outcome of one atomic stock decrement.
type StockReport struct {
	StockCount   int
	InStock      bool
	Success      bool
	ErrorMessage string
}

// Ledger owns the stock columns on products. The decrement is a single
// conditional UPDATE so concurrent settlements against the same product
// cannot lose updates or drive the count negative.
type Ledger interface {
	WithTx(tx *gorm.DB) Ledger
	DecrementAndReport(ctx context.Context, productID uuid.UUID, qty int) (StockReport, error)
}

type ledger struct {
	db *gorm.DB
}

// NewLedger returns a stock ledger bound to the provided database.
func NewLedger(db *gorm.DB) Ledger {
	return &ledger{db: db}
}

func (l *ledger) WithTx(tx *gorm.DB) Ledger {
	if tx == nil {
		return l
	}
	return &ledger{db: tx}
}

// DecrementAndReport subtracts qty from the product's stock count and
// recomputes the in-stock flag in one statement. A qty of zero is still
// executed as a no-op decrement. Business failures (unknown product,
// insufficient stock) come back in the report with Success=false; only
// transport-level failures surface as errors.
func (l *ledger) DecrementAndReport(ctx context.Context, productID uuid.UUID, qty int) (StockReport, error) {
	if productID == uuid.Nil {
		return StockReport{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if qty < 0 {
		return StockReport{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must not be negative")
	}

	var row struct {
		StockCount int
		InStock    bool
	}
	res := l.db.WithContext(ctx).Raw(`
		UPDATE products
		SET stock_count = stock_count - ?,
		    in_stock = stock_count - ? > 0,
		    updated_at = ?
		WHERE id = ? AND stock_count >= ?
		RETURNING stock_count, in_stock`,
		qty, qty, time.Now().UTC(), productID, qty,
	).Scan(&row)
	if res.Error != nil {
		return StockReport{}, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "decrement stock")
	}

	if res.RowsAffected == 0 {
		return l.reportFailure(ctx, productID, qty)
	}

	return StockReport{
		StockCount: row.StockCount,
		InStock:    row.InStock,
		Success:    true,
	}, nil
}

// reportFailure distinguishes an unknown product from an insufficient stock
// refusal. Read-only; the conditional UPDATE above already declined to touch
// the row.
func (l *ledger) reportFailure(ctx context.Context, productID uuid.UUID, qty int) (StockReport, error) {
	var current struct {
		StockCount int
		InStock    bool
	}
	res := l.db.WithContext(ctx).Raw(
		`SELECT stock_count, in_stock FROM products WHERE id = ?`, productID,
	).Scan(&current)
	if res.Error != nil {
		return StockReport{}, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "inspect stock")
	}
	if res.RowsAffected == 0 {
		return StockReport{
			ErrorMessage: fmt.Sprintf("product %s not found", productID),
		}, nil
	}
	return StockReport{
		StockCount: current.StockCount,
		InStock:    current.InStock,
		ErrorMessage: fmt.Sprintf(
			"insufficient stock for product %s: have %d, need %d",
			productID, current.StockCount, qty,
		),
	}, nil
}
