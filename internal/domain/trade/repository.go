package trade

import (
	"context"

	"github.com/google/uuid"

	"github.com/erp/core/internal/domain/shared"
)

// SalesOrderRepository persists sales order aggregates
type SalesOrderRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*SalesOrder, error)
	// FindByIDForUpdate loads the order under a row lock so the caller's
	// transaction serializes with concurrent transitions on the same order.
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*SalesOrder, error)
	Save(ctx context.Context, order *SalesOrder) error
	// SaveWithVersion persists the order only if its stored version still
	// matches expectedVersion, returning a retryable conflict otherwise.
	SaveWithVersion(ctx context.Context, order *SalesOrder, expectedVersion int) error
	List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[SalesOrder], error)
}

// StatusEventRepository persists the append-only status audit trail
type StatusEventRepository interface {
	Append(ctx context.Context, event *StatusEvent) error
	FindByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]StatusEvent, error)
}

// PurchaseOrderRepository persists purchase order aggregates
type PurchaseOrderRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*PurchaseOrder, error)
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*PurchaseOrder, error)
	Save(ctx context.Context, order *PurchaseOrder) error
}

// CustomerTouchRepository stamps customer activity as a transition side effect
type CustomerTouchRepository interface {
	TouchLastActivity(ctx context.Context, tenantID, customerID uuid.UUID) error
}
