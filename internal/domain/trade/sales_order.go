package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/core/internal/domain/shared"
)

// SalesOrder is the sales order aggregate root. All status mutation goes
// through ApplyTransition; writing Status directly bypasses the lifecycle
// rules and is never correct.
type SalesOrder struct {
	shared.TenantAggregateRoot
	OrderNo     string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_sales_order_no" json:"order_no"`
	CustomerID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"customer_id"`
	WarehouseID *uuid.UUID      `gorm:"type:uuid;index" json:"warehouse_id,omitempty"`
	Status      OrderStatus     `gorm:"type:varchar(20);not null;default:'DRAFT'" json:"status"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"total_amount"`
	Remark      string          `gorm:"type:varchar(500)" json:"remark"`

	ConfirmedAt  *time.Time `gorm:"type:timestamptz" json:"confirmed_at,omitempty"`
	ShippedAt    *time.Time `gorm:"type:timestamptz" json:"shipped_at,omitempty"`
	CompletedAt  *time.Time `gorm:"type:timestamptz" json:"completed_at,omitempty"`
	CancelledAt  *time.Time `gorm:"type:timestamptz" json:"cancelled_at,omitempty"`
	CancelReason string     `gorm:"type:varchar(500)" json:"cancel_reason,omitempty"`
	LastActorID  *uuid.UUID `gorm:"type:uuid" json:"last_actor_id,omitempty"`

	Items []SalesOrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// SalesOrderItem is a line on a sales order
type SalesOrderItem struct {
	shared.BaseEntity
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null" json:"product_id"`
	Quantity  decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_price"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
}

// TableName specifies the table name for SalesOrder
func (SalesOrder) TableName() string {
	return "sales_orders"
}

// TableName specifies the table name for SalesOrderItem
func (SalesOrderItem) TableName() string {
	return "sales_order_items"
}

// NewSalesOrder creates a new sales order in DRAFT status
func NewSalesOrder(tenantID uuid.UUID, orderNo string, customerID uuid.UUID) (*SalesOrder, error) {
	if orderNo == "" {
		return nil, shared.NewValidationError("INVALID_ORDER_NO", "order number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_CUSTOMER", "customer id cannot be empty")
	}
	return &SalesOrder{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		OrderNo:             orderNo,
		CustomerID:          customerID,
		Status:              OrderStatusDraft,
		TotalAmount:         decimal.Zero,
	}, nil
}

// ApplyTransition moves the order to the target status. It checks the
// transition matrix only; permission and precondition checks belong to the
// application layer and must already have passed. On success it stamps the
// matching timestamp field and records a status change event.
func (o *SalesOrder) ApplyTransition(target OrderStatus, actorID uuid.UUID, reason string) error {
	if !target.IsValid() {
		return shared.NewValidationError("INVALID_STATUS", "unknown target status: "+string(target))
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError(shared.KindIllegalTransition, "ILLEGAL_TRANSITION",
			"cannot transition sales order from "+string(o.Status)+" to "+string(target))
	}

	from := o.Status
	now := time.Now().UTC()
	switch target {
	case OrderStatusConfirmed:
		o.ConfirmedAt = &now
	case OrderStatusShipped:
		o.ShippedAt = &now
	case OrderStatusCompleted:
		o.CompletedAt = &now
	case OrderStatusCancelled:
		o.CancelledAt = &now
		o.CancelReason = reason
	}
	o.Status = target
	o.LastActorID = &actorID
	o.UpdatedAt = now

	o.AddDomainEvent(NewSalesOrderStatusChangedEvent(o.TenantID, o.ID, from, target, actorID, reason))
	return nil
}

// HasItems reports whether the order carries at least one line
func (o *SalesOrder) HasItems() bool {
	return len(o.Items) > 0
}

// RecalculateTotal recomputes the order total from its lines
func (o *SalesOrder) RecalculateTotal() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Amount)
	}
	o.TotalAmount = total
}
