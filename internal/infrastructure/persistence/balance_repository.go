package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/erp/core/internal/domain/inventory"
	"github.com/erp/core/internal/domain/shared"
)

// GormBalanceRepository implements inventory.BalanceRepository using GORM
type GormBalanceRepository struct {
	db *gorm.DB
}

// NewGormBalanceRepository creates a new GormBalanceRepository
func NewGormBalanceRepository(db *gorm.DB) *GormBalanceRepository {
	return &GormBalanceRepository{db: db}
}

// FindByKey finds a balance row by its stock key within the tenant
func (r *GormBalanceRepository) FindByKey(ctx context.Context, tenantID uuid.UUID, key inventory.StockKey) (*inventory.StockBalance, error) {
	var balance inventory.StockBalance
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ? AND warehouse_id = ? AND sub_location = ?",
			tenantID, key.ProductID, key.WarehouseID, key.SubLocation).
		First(&balance).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &balance, nil
}

// FindByKeyForUpdate loads the balance row under FOR UPDATE, creating an
// empty row first if none exists. The insert uses ON CONFLICT DO NOTHING so
// two sessions racing to create the same key both end up locking one row.
func (r *GormBalanceRepository) FindByKeyForUpdate(ctx context.Context, tenantID uuid.UUID, key inventory.StockKey) (*inventory.StockBalance, error) {
	fresh := inventory.NewStockBalance(tenantID, key)
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "product_id"}, {Name: "warehouse_id"}, {Name: "sub_location"}},
			DoNothing: true,
		}).
		Create(fresh).Error; err != nil {
		return nil, err
	}

	var balance inventory.StockBalance
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND product_id = ? AND warehouse_id = ? AND sub_location = ?",
			tenantID, key.ProductID, key.WarehouseID, key.SubLocation).
		First(&balance).Error; err != nil {
		return nil, err
	}
	return &balance, nil
}

// Save persists a balance row
func (r *GormBalanceRepository) Save(ctx context.Context, balance *inventory.StockBalance) error {
	balance.Version++
	balance.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Save(balance).Error
}

// SaveWithVersion updates the row only when the stored version still matches
// expectedVersion. Zero affected rows means a concurrent writer won.
func (r *GormBalanceRepository) SaveWithVersion(ctx context.Context, balance *inventory.StockBalance, expectedVersion int) error {
	balance.Version = expectedVersion + 1
	balance.UpdatedAt = time.Now().UTC()

	result := r.db.WithContext(ctx).Model(&inventory.StockBalance{}).
		Where("id = ? AND version = ?", balance.ID, expectedVersion).
		Updates(map[string]interface{}{
			"on_hand":    balance.OnHand,
			"reserved":   balance.Reserved,
			"version":    balance.Version,
			"updated_at": balance.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		balance.Version = expectedVersion
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// ListByWarehouse returns the balances of one warehouse with pagination
func (r *GormBalanceRepository) ListByWarehouse(ctx context.Context, tenantID, warehouseID uuid.UUID, filter shared.Filter) (*shared.Paginated[inventory.StockBalance], error) {
	query := r.db.WithContext(ctx).Model(&inventory.StockBalance{}).
		Where("tenant_id = ? AND warehouse_id = ?", tenantID, warehouseID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var balances []inventory.StockBalance
	if err := applyFilter(query, filter).Find(&balances).Error; err != nil {
		return nil, err
	}

	page := shared.NewPaginated(balances, total, filter.Page, filter.PageSize)
	return &page, nil
}
