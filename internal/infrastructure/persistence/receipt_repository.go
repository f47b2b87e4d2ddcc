package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/erp/core/internal/domain/inventory"
	"github.com/erp/core/internal/domain/shared"
)

// GormReceiptRepository implements inventory.ReceiptRepository using GORM
type GormReceiptRepository struct {
	db *gorm.DB
}

// NewGormReceiptRepository creates a new GormReceiptRepository
func NewGormReceiptRepository(db *gorm.DB) *GormReceiptRepository {
	return &GormReceiptRepository{db: db}
}

// Save persists a goods receipt and its lines. A duplicate idempotency key
// surfaces as a retryable conflict so the caller re-reads the original.
func (r *GormReceiptRepository) Save(ctx context.Context, receipt *inventory.GoodsReceipt) error {
	if err := r.db.WithContext(ctx).Create(receipt).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrConcurrencyConflict
		}
		return err
	}
	return nil
}

// FindByID finds a goods receipt by ID within a tenant
func (r *GormReceiptRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*inventory.GoodsReceipt, error) {
	var receipt inventory.GoodsReceipt
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&receipt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &receipt, nil
}

// FindByIdempotencyKey finds the receipt created under an idempotency key
func (r *GormReceiptRepository) FindByIdempotencyKey(ctx context.Context, tenantID uuid.UUID, key string) (*inventory.GoodsReceipt, error) {
	var receipt inventory.GoodsReceipt
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND idempotency_key = ?", tenantID, key).
		First(&receipt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &receipt, nil
}

// FindByPurchaseOrder returns the receipts booked against a purchase order
func (r *GormReceiptRepository) FindByPurchaseOrder(ctx context.Context, tenantID, purchaseOrderID uuid.UUID) ([]inventory.GoodsReceipt, error) {
	var receipts []inventory.GoodsReceipt
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND purchase_order_id = ?", tenantID, purchaseOrderID).
		Order("received_at ASC").
		Find(&receipts).Error; err != nil {
		return nil, err
	}
	return receipts, nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique_violation
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
