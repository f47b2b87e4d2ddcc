package trade

import (
	"time"

	"github.com/google/uuid"

	"github.com/erp/core/internal/domain/shared"
)

// ClientContext carries request metadata about the caller of a transition,
// recorded alongside the audit row.
type ClientContext struct {
	IP        string `json:"ip,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}

// StatusEvent is an append-only audit record of a sales order status change.
// Rows are written in the same transaction as the order update and are never
// updated or deleted afterwards.
type StatusEvent struct {
	shared.BaseEntity
	TenantID   uuid.UUID   `gorm:"type:uuid;not null;index" json:"tenant_id"`
	OrderID    uuid.UUID   `gorm:"type:uuid;not null;index:idx_status_events_order" json:"order_id"`
	FromStatus OrderStatus `gorm:"type:varchar(20);not null" json:"from_status"`
	ToStatus   OrderStatus `gorm:"type:varchar(20);not null" json:"to_status"`
	ActorID    uuid.UUID   `gorm:"type:uuid;not null" json:"actor_id"`
	Reason     string      `gorm:"type:varchar(500)" json:"reason,omitempty"`
	ClientIP   string      `gorm:"type:varchar(45)" json:"client_ip,omitempty"`
	UserAgent  string      `gorm:"type:varchar(255)" json:"user_agent,omitempty"`
	OccurredAt time.Time   `gorm:"type:timestamptz;not null;index:idx_status_events_order" json:"occurred_at"`
}

// TableName specifies the table name for StatusEvent
func (StatusEvent) TableName() string {
	return "sales_order_status_events"
}

// NewStatusEvent records a completed transition for the audit trail
func NewStatusEvent(tenantID, orderID uuid.UUID, from, to OrderStatus, actorID uuid.UUID, reason string, client ClientContext) *StatusEvent {
	return &StatusEvent{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   tenantID,
		OrderID:    orderID,
		FromStatus: from,
		ToStatus:   to,
		ActorID:    actorID,
		Reason:     reason,
		ClientIP:   client.IP,
		UserAgent:  client.UserAgent,
		OccurredAt: time.Now().UTC(),
	}
}
