package trade

import (
	"strings"

	"github.com/google/uuid"
)

// OrderStatus represents the lifecycle status of a sales order
type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "DRAFT"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// transitionMatrix is the single source of truth for legal status topology.
// A state that maps to an empty set is terminal. The matrix must be consulted
// before any permission or business-rule check.
var transitionMatrix = map[OrderStatus][]OrderStatus{
	OrderStatusDraft:     {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:   {OrderStatusCompleted},
	OrderStatusCompleted: {},
	OrderStatusCancelled: {},
}

// transitionPermissions maps each target status to the permission code an
// actor needs before the transition is attempted.
var transitionPermissions = map[OrderStatus]string{
	OrderStatusConfirmed: "sales_order:confirm",
	OrderStatusShipped:   "sales_order:ship",
	OrderStatusCompleted: "sales_order:complete",
	OrderStatusCancelled: "sales_order:cancel",
}

// SystemActorID is the well-known actor recorded on transitions executed by
// batch jobs rather than a human operator. Permission grants for it are
// configured once at startup, independent of whoever requested the batch.
var SystemActorID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// IsValid checks if the status is a member of the closed enumeration
func (s OrderStatus) IsValid() bool {
	_, ok := transitionMatrix[s]
	return ok
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// IsTerminal reports whether no transition ever leaves this status
func (s OrderStatus) IsTerminal() bool {
	return len(transitionMatrix[s]) == 0
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, t := range transitionMatrix[s] {
		if t == target {
			return true
		}
	}
	return false
}

// AllowedTargets returns the set of states reachable from s in one step.
// The returned slice is a copy; the matrix itself is never mutated at runtime.
func AllowedTargets(s OrderStatus) []OrderStatus {
	targets := transitionMatrix[s]
	out := make([]OrderStatus, len(targets))
	copy(out, targets)
	return out
}

// PermissionForTarget returns the permission code required to move a document
// into the target status.
func PermissionForTarget(target OrderStatus) string {
	return transitionPermissions[target]
}

// legacyStatusAliases maps historical free-text status values that predate the
// closed enumeration. This is a compatibility shim for old rows, not an
// extension point: new spellings must not be added here.
var legacyStatusAliases = map[string]OrderStatus{
	"draft":       OrderStatusDraft,
	"new":         OrderStatusDraft,
	"open":        OrderStatusDraft,
	"pending":     OrderStatusDraft,
	"confirmed":   OrderStatusConfirmed,
	"approved":    OrderStatusConfirmed,
	"in_progress": OrderStatusConfirmed,
	"shipped":     OrderStatusShipped,
	"delivering":  OrderStatusShipped,
	"completed":   OrderStatusCompleted,
	"done":        OrderStatusCompleted,
	"closed":      OrderStatusCompleted,
	"delivered":   OrderStatusCompleted,
	"cancelled":   OrderStatusCancelled,
	"canceled":    OrderStatusCancelled,
	"void":        OrderStatusCancelled,
}

// NormalizeStatus maps a raw persisted status string onto the enumeration.
// The function is total: enumeration members pass through, known legacy
// spellings map to their modern member, and anything else falls back to DRAFT,
// the initial state from which every recovery path is reachable.
func NormalizeStatus(raw string) OrderStatus {
	if s := OrderStatus(raw); s.IsValid() {
		return s
	}
	if s, ok := legacyStatusAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return s
	}
	return OrderStatusDraft
}
