package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/core/internal/domain/shared"
)

// GoodsReceipt records one receiving operation against a purchase order.
// IdempotencyKey, when supplied by the caller, is unique per tenant so a
// retried request surfaces the original receipt instead of double-booking.
type GoodsReceipt struct {
	shared.TenantAggregateRoot
	ReceiptNo       string     `gorm:"type:varchar(50);not null;uniqueIndex:idx_goods_receipt_no" json:"receipt_no"`
	PurchaseOrderID uuid.UUID  `gorm:"type:uuid;not null;index" json:"purchase_order_id"`
	WarehouseID     uuid.UUID  `gorm:"type:uuid;not null" json:"warehouse_id"`
	IdempotencyKey  *string    `gorm:"type:varchar(100);uniqueIndex:idx_goods_receipt_idem,where:idempotency_key IS NOT NULL" json:"idempotency_key,omitempty"`
	ReceivedBy      uuid.UUID  `gorm:"type:uuid;not null" json:"received_by"`
	ReceivedAt      time.Time  `gorm:"type:timestamptz;not null" json:"received_at"`
	Remark          string     `gorm:"type:varchar(500)" json:"remark,omitempty"`

	Items []GoodsReceiptItem `gorm:"foreignKey:ReceiptID" json:"items,omitempty"`
}

// ReceiptLine is the input for one received line: where the goods were put
// and how much arrived.
type ReceiptLine struct {
	Key      StockKey
	Quantity decimal.Decimal
}

// GoodsReceiptItem is a received line
type GoodsReceiptItem struct {
	shared.BaseEntity
	ReceiptID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"receipt_id"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null" json:"product_id"`
	WarehouseID uuid.UUID       `gorm:"type:uuid;not null" json:"warehouse_id"`
	SubLocation string          `gorm:"type:varchar(50);not null;default:''" json:"sub_location,omitempty"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
}

// TableName specifies the table name for GoodsReceipt
func (GoodsReceipt) TableName() string {
	return "goods_receipts"
}

// TableName specifies the table name for GoodsReceiptItem
func (GoodsReceiptItem) TableName() string {
	return "goods_receipt_items"
}

// NewGoodsReceipt creates a goods receipt with its lines. WarehouseID on the
// header is the order's default; each line carries its own stock key.
func NewGoodsReceipt(tenantID uuid.UUID, receiptNo string, purchaseOrderID, warehouseID, receivedBy uuid.UUID, lines []ReceiptLine) (*GoodsReceipt, error) {
	if receiptNo == "" {
		return nil, shared.NewValidationError("INVALID_RECEIPT_NO", "receipt number cannot be empty")
	}
	if len(lines) == 0 {
		return nil, shared.NewValidationError("EMPTY_RECEIPT", "receipt contains no lines")
	}

	receipt := &GoodsReceipt{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ReceiptNo:           receiptNo,
		PurchaseOrderID:     purchaseOrderID,
		WarehouseID:         warehouseID,
		ReceivedBy:          receivedBy,
		ReceivedAt:          time.Now().UTC(),
	}
	for _, line := range lines {
		if line.Quantity.LessThanOrEqual(decimal.Zero) {
			return nil, shared.NewValidationError("INVALID_QUANTITY", "received quantity must be positive")
		}
		receipt.Items = append(receipt.Items, GoodsReceiptItem{
			BaseEntity:  shared.NewBaseEntity(),
			ReceiptID:   receipt.ID,
			ProductID:   line.Key.ProductID,
			WarehouseID: line.Key.WarehouseID,
			SubLocation: line.Key.SubLocation,
			Quantity:    line.Quantity,
		})
	}
	return receipt, nil
}

// WithIdempotencyKey attaches the caller-supplied dedup key
func (r *GoodsReceipt) WithIdempotencyKey(key string) *GoodsReceipt {
	if key != "" {
		r.IdempotencyKey = &key
	}
	return r
}
