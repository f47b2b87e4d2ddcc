package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/erp/core/internal/domain/inventory"
	"github.com/erp/core/internal/domain/shared"
)

// GormLedgerRepository implements inventory.LedgerRepository using GORM.
// Ledger rows are append-only.
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewGormLedgerRepository creates a new GormLedgerRepository
func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// Append writes one ledger entry
func (r *GormLedgerRepository) Append(ctx context.Context, entry *inventory.LedgerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// FindByKey returns the ledger for one stock key, newest first
func (r *GormLedgerRepository) FindByKey(ctx context.Context, tenantID uuid.UUID, key inventory.StockKey, filter shared.Filter) (*shared.Paginated[inventory.LedgerEntry], error) {
	query := r.db.WithContext(ctx).Model(&inventory.LedgerEntry{}).
		Where("tenant_id = ? AND product_id = ? AND warehouse_id = ? AND sub_location = ?",
			tenantID, key.ProductID, key.WarehouseID, key.SubLocation)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var entries []inventory.LedgerEntry
	if filter.OrderBy == "" {
		filter.OrderBy = "occurred_at"
	}
	if err := applyFilter(query, filter).Find(&entries).Error; err != nil {
		return nil, err
	}

	page := shared.NewPaginated(entries, total, filter.Page, filter.PageSize)
	return &page, nil
}

// SumDeltas folds every entry of one balance key into a single quantity.
// COALESCE keeps an empty history summing to zero instead of NULL.
func (r *GormLedgerRepository) SumDeltas(ctx context.Context, tenantID uuid.UUID, key inventory.StockKey) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.WithContext(ctx).Model(&inventory.LedgerEntry{}).
		Where("tenant_id = ? AND product_id = ? AND warehouse_id = ? AND sub_location = ?",
			tenantID, key.ProductID, key.WarehouseID, key.SubLocation).
		Select("COALESCE(SUM(quantity_delta), 0)").
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, err
	}
	return sum, nil
}
