package trade

import (
	"github.com/google/uuid"

	"github.com/erp/core/internal/domain/shared"
)

// SalesOrderStatusChangedEvent is raised whenever a sales order transitions
type SalesOrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderID    uuid.UUID   `json:"order_id"`
	FromStatus OrderStatus `json:"from_status"`
	ToStatus   OrderStatus `json:"to_status"`
	ActorID    uuid.UUID   `json:"actor_id"`
	Reason     string      `json:"reason,omitempty"`
}

// NewSalesOrderStatusChangedEvent creates a status change event
func NewSalesOrderStatusChangedEvent(tenantID, orderID uuid.UUID, from, to OrderStatus, actorID uuid.UUID, reason string) *SalesOrderStatusChangedEvent {
	return &SalesOrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("sales_order.status_changed", "SalesOrder", orderID, tenantID),
		OrderID:         orderID,
		FromStatus:      from,
		ToStatus:        to,
		ActorID:         actorID,
		Reason:          reason,
	}
}
