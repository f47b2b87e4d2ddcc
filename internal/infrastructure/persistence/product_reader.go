package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProductReader implements inventory.ProductReader against the product
// catalog table owned by the catalog service.
type GormProductReader struct {
	db *gorm.DB
}

// NewGormProductReader creates a new GormProductReader
func NewGormProductReader(db *gorm.DB) *GormProductReader {
	return &GormProductReader{db: db}
}

// Active reports whether the product exists within the tenant and carries
// active status. Discontinued or disabled products are treated as unknown.
func (r *GormProductReader) Active(ctx context.Context, tenantID, productID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Table("products").
		Where("tenant_id = ? AND id = ? AND status = ?", tenantID, productID, "ACTIVE").
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
