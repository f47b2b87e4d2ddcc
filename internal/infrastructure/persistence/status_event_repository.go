package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/erp/core/internal/domain/trade"
)

// GormStatusEventRepository implements trade.StatusEventRepository using GORM.
// The table is append-only; no update or delete path exists.
type GormStatusEventRepository struct {
	db *gorm.DB
}

// NewGormStatusEventRepository creates a new GormStatusEventRepository
func NewGormStatusEventRepository(db *gorm.DB) *GormStatusEventRepository {
	return &GormStatusEventRepository{db: db}
}

// Append writes one audit row
func (r *GormStatusEventRepository) Append(ctx context.Context, event *trade.StatusEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// FindByOrder returns the audit trail for an order, most recent first
func (r *GormStatusEventRepository) FindByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]trade.StatusEvent, error) {
	var events []trade.StatusEvent
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND order_id = ?", tenantID, orderID).
		Order("occurred_at DESC, created_at DESC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
