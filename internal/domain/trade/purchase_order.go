package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/core/internal/domain/shared"
)

// PurchaseOrderStatus represents the status of a purchase order
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusDraft           PurchaseOrderStatus = "DRAFT"
	PurchaseOrderStatusConfirmed       PurchaseOrderStatus = "CONFIRMED"
	PurchaseOrderStatusPartialReceived PurchaseOrderStatus = "PARTIAL_RECEIVED"
	PurchaseOrderStatusCompleted       PurchaseOrderStatus = "COMPLETED"
	PurchaseOrderStatusCancelled       PurchaseOrderStatus = "CANCELLED"
)

// PurchaseOrder is the purchase order aggregate root. Only the receiving
// slice of its lifecycle lives here; procurement workflows own the rest.
type PurchaseOrder struct {
	shared.TenantAggregateRoot
	OrderNo     string              `gorm:"type:varchar(50);not null;uniqueIndex:idx_purchase_order_no" json:"order_no"`
	SupplierID  uuid.UUID           `gorm:"type:uuid;not null;index" json:"supplier_id"`
	WarehouseID uuid.UUID           `gorm:"type:uuid;not null;index" json:"warehouse_id"`
	Status      PurchaseOrderStatus `gorm:"type:varchar(20);not null;default:'DRAFT'" json:"status"`
	TotalAmount decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0" json:"total_amount"`

	Items []PurchaseOrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// PurchaseOrderItem is a line on a purchase order
type PurchaseOrderItem struct {
	shared.BaseEntity
	OrderID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null" json:"product_id"`
	Quantity         decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	ReceivedQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"received_quantity"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_price"`
}

// TableName specifies the table name for PurchaseOrder
func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// TableName specifies the table name for PurchaseOrderItem
func (PurchaseOrderItem) TableName() string {
	return "purchase_order_items"
}

// RemainingQuantity returns the quantity still outstanding on the line
func (i *PurchaseOrderItem) RemainingQuantity() decimal.Decimal {
	return i.Quantity.Sub(i.ReceivedQuantity)
}

// CanReceive reports whether the order is in a status that accepts receipts
func (o *PurchaseOrder) CanReceive() bool {
	return o.Status == PurchaseOrderStatusConfirmed || o.Status == PurchaseOrderStatusPartialReceived
}

// ApplyReceipt books received quantities against the order lines and advances
// the order status. Quantities must be positive and must not push any line
// past its ordered quantity.
func (o *PurchaseOrder) ApplyReceipt(received map[uuid.UUID]decimal.Decimal) error {
	if !o.CanReceive() {
		return shared.NewPreconditionError("ORDER_NOT_RECEIVABLE",
			"purchase order in status "+string(o.Status)+" cannot receive goods")
	}
	if len(received) == 0 {
		return shared.NewValidationError("EMPTY_RECEIPT", "receipt contains no lines")
	}

	lines := make(map[uuid.UUID]*PurchaseOrderItem, len(o.Items))
	for idx := range o.Items {
		lines[o.Items[idx].ProductID] = &o.Items[idx]
	}

	for productID, qty := range received {
		line, ok := lines[productID]
		if !ok {
			return shared.NewValidationError("PRODUCT_NOT_ON_ORDER",
				"product "+productID.String()+" is not on purchase order "+o.OrderNo)
		}
		if qty.LessThanOrEqual(decimal.Zero) {
			return shared.NewValidationError("INVALID_QUANTITY", "received quantity must be positive")
		}
		if qty.GreaterThan(line.RemainingQuantity()) {
			return shared.NewValidationError("OVER_RECEIPT",
				"received quantity exceeds outstanding quantity for product "+productID.String())
		}
	}

	for productID, qty := range received {
		line := lines[productID]
		line.ReceivedQuantity = line.ReceivedQuantity.Add(qty)
	}

	fully := true
	for idx := range o.Items {
		if o.Items[idx].RemainingQuantity().GreaterThan(decimal.Zero) {
			fully = false
			break
		}
	}
	if fully {
		o.Status = PurchaseOrderStatusCompleted
	} else {
		o.Status = PurchaseOrderStatusPartialReceived
	}
	o.UpdatedAt = time.Now().UTC()
	return nil
}
