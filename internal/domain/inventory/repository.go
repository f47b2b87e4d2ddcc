package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/core/internal/domain/shared"
)

// LedgerRepository persists the append-only stock movement ledger
type LedgerRepository interface {
	Append(ctx context.Context, entry *LedgerEntry) error
	FindByKey(ctx context.Context, tenantID uuid.UUID, key StockKey, filter shared.Filter) (*shared.Paginated[LedgerEntry], error)
	// SumDeltas folds the full ledger history of one balance key. Used by
	// recompute to rebuild the projection from its source of truth.
	SumDeltas(ctx context.Context, tenantID uuid.UUID, key StockKey) (decimal.Decimal, error)
}

// BalanceRepository persists derived stock balances
type BalanceRepository interface {
	FindByKey(ctx context.Context, tenantID uuid.UUID, key StockKey) (*StockBalance, error)
	// FindByKeyForUpdate loads the balance under a row lock; concurrent
	// movements on the same key serialize behind it. The row is created
	// empty if it does not exist yet.
	FindByKeyForUpdate(ctx context.Context, tenantID uuid.UUID, key StockKey) (*StockBalance, error)
	Save(ctx context.Context, balance *StockBalance) error
	// SaveWithVersion persists the balance only when the stored version
	// still matches expectedVersion; a lost race returns ErrConcurrencyConflict.
	SaveWithVersion(ctx context.Context, balance *StockBalance, expectedVersion int) error
	ListByWarehouse(ctx context.Context, tenantID, warehouseID uuid.UUID, filter shared.Filter) (*shared.Paginated[StockBalance], error)
}

// ReceiptRepository persists goods receipts
type ReceiptRepository interface {
	Save(ctx context.Context, receipt *GoodsReceipt) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*GoodsReceipt, error)
	FindByIdempotencyKey(ctx context.Context, tenantID uuid.UUID, key string) (*GoodsReceipt, error)
	FindByPurchaseOrder(ctx context.Context, tenantID, purchaseOrderID uuid.UUID) ([]GoodsReceipt, error)
}

// ProductReader answers catalog checks for receiving. Active reports whether
// the product exists and is in active status; discontinued or disabled
// products cannot receive stock.
type ProductReader interface {
	Active(ctx context.Context, tenantID, productID uuid.UUID) (bool, error)
}
