package trade

import (
	"time"

	"github.com/google/uuid"

	"github.com/erp/core/internal/domain/trade"
)

// TransitionCommand asks for one sales order status transition
type TransitionCommand struct {
	TenantID uuid.UUID
	OrderID  uuid.UUID
	Target   trade.OrderStatus
	ActorID  uuid.UUID
	Reason   string
	Client   trade.ClientContext
}

// TransitionResult reports the outcome of a transition. AuditEventID points
// at the status event row recorded in the same transaction.
type TransitionResult struct {
	OrderID      uuid.UUID         `json:"order_id"`
	FromStatus   trade.OrderStatus `json:"from_status"`
	ToStatus     trade.OrderStatus `json:"to_status"`
	AuditEventID uuid.UUID         `json:"audit_event_id"`
	OccurredAt   time.Time         `json:"occurred_at"`
}

// BatchTransitionCommand asks for the same transition on several orders.
// The transitions themselves run under trade.SystemActorID; RequestedBy
// records which operator triggered the batch, for logging only.
type BatchTransitionCommand struct {
	TenantID    uuid.UUID
	OrderIDs    []uuid.UUID
	Target      trade.OrderStatus
	RequestedBy uuid.UUID
	Reason      string
	Client      trade.ClientContext
}

// BatchItemResult is the per-order outcome of a batch transition. Each order
// succeeds or fails independently of its siblings.
type BatchItemResult struct {
	OrderID uuid.UUID         `json:"order_id"`
	Result  *TransitionResult `json:"result,omitempty"`
	Error   string            `json:"error,omitempty"`
	Kind    string            `json:"error_kind,omitempty"`
}

// BatchTransitionResult aggregates a batch run
type BatchTransitionResult struct {
	Items     []BatchItemResult `json:"items"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
}

// StatusEventDTO is one audit trail row for API consumers
type StatusEventDTO struct {
	ID         uuid.UUID         `json:"id"`
	FromStatus trade.OrderStatus `json:"from_status"`
	ToStatus   trade.OrderStatus `json:"to_status"`
	ActorID    uuid.UUID         `json:"actor_id"`
	Reason     string            `json:"reason,omitempty"`
	ClientIP   string            `json:"client_ip,omitempty"`
	UserAgent  string            `json:"user_agent,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

func toStatusEventDTO(e *trade.StatusEvent) StatusEventDTO {
	return StatusEventDTO{
		ID:         e.ID,
		FromStatus: e.FromStatus,
		ToStatus:   e.ToStatus,
		ActorID:    e.ActorID,
		Reason:     e.Reason,
		ClientIP:   e.ClientIP,
		UserAgent:  e.UserAgent,
		OccurredAt: e.OccurredAt,
	}
}
