package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/erp/core/internal/domain/shared"
)

// GormCustomerTouchRepository implements trade.CustomerTouchRepository.
// Only the activity stamp lives here; the full customer aggregate belongs to
// the CRM service.
type GormCustomerTouchRepository struct {
	db *gorm.DB
}

// NewGormCustomerTouchRepository creates a new GormCustomerTouchRepository
func NewGormCustomerTouchRepository(db *gorm.DB) *GormCustomerTouchRepository {
	return &GormCustomerTouchRepository{db: db}
}

// TouchLastActivity stamps the customer's last activity time
func (r *GormCustomerTouchRepository) TouchLastActivity(ctx context.Context, tenantID, customerID uuid.UUID) error {
	result := r.db.WithContext(ctx).Table("customers").
		Where("tenant_id = ? AND id = ?", tenantID, customerID).
		Updates(map[string]interface{}{
			"last_activity_at": time.Now().UTC(),
			"updated_at":       time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError(shared.KindNotFound, "CUSTOMER_NOT_FOUND",
			"customer "+customerID.String()+" does not exist")
	}
	return nil
}
