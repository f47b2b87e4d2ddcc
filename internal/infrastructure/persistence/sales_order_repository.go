package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/erp/core/internal/domain/shared"
	"github.com/erp/core/internal/domain/trade"
)

// GormSalesOrderRepository implements trade.SalesOrderRepository using GORM
type GormSalesOrderRepository struct {
	db *gorm.DB
}

// NewGormSalesOrderRepository creates a new GormSalesOrderRepository
func NewGormSalesOrderRepository(db *gorm.DB) *GormSalesOrderRepository {
	return &GormSalesOrderRepository{db: db}
}

// FindByID finds a sales order by ID within a tenant
func (r *GormSalesOrderRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*trade.SalesOrder, error) {
	var order trade.SalesOrder
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	order.Status = trade.NormalizeStatus(string(order.Status))
	return &order, nil
}

// FindByIDForUpdate loads the order under FOR UPDATE so the surrounding
// transaction serializes with concurrent transitions on the same order.
func (r *GormSalesOrderRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*trade.SalesOrder, error) {
	var order trade.SalesOrder
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	// Items load outside the locking clause; FOR UPDATE on a join would
	// lock product rows too.
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", order.ID).
		Find(&order.Items).Error; err != nil {
		return nil, err
	}
	order.Status = trade.NormalizeStatus(string(order.Status))
	return &order, nil
}

// Save persists a sales order and its items
func (r *GormSalesOrderRepository) Save(ctx context.Context, order *trade.SalesOrder) error {
	return r.db.WithContext(ctx).Save(order).Error
}

// SaveWithVersion updates the order only when the stored version still
// matches expectedVersion. Zero affected rows means another writer got there
// first.
func (r *GormSalesOrderRepository) SaveWithVersion(ctx context.Context, order *trade.SalesOrder, expectedVersion int) error {
	order.Version = expectedVersion + 1
	order.UpdatedAt = time.Now().UTC()

	result := r.db.WithContext(ctx).Model(&trade.SalesOrder{}).
		Where("tenant_id = ? AND id = ? AND version = ?", order.TenantID, order.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":        order.Status,
			"total_amount":  order.TotalAmount,
			"remark":        order.Remark,
			"confirmed_at":  order.ConfirmedAt,
			"shipped_at":    order.ShippedAt,
			"completed_at":  order.CompletedAt,
			"cancelled_at":  order.CancelledAt,
			"cancel_reason": order.CancelReason,
			"last_actor_id": order.LastActorID,
			"version":       order.Version,
			"updated_at":    order.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		order.Version = expectedVersion
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// List returns sales orders for a tenant with pagination
func (r *GormSalesOrderRepository) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[trade.SalesOrder], error) {
	query := r.db.WithContext(ctx).Model(&trade.SalesOrder{}).Where("tenant_id = ?", tenantID)

	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if customerID, ok := filter.Filters["customer_id"]; ok {
		query = query.Where("customer_id = ?", customerID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var orders []trade.SalesOrder
	if err := applyFilter(query, filter).Find(&orders).Error; err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Status = trade.NormalizeStatus(string(orders[i].Status))
	}

	page := shared.NewPaginated(orders, total, filter.Page, filter.PageSize)
	return &page, nil
}
