package inventory

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/core/internal/domain/shared"
)

// StockMovedEvent is raised after a ledger entry and its balance update commit
type StockMovedEvent struct {
	shared.BaseDomainEvent
	ProductID     uuid.UUID       `json:"product_id"`
	WarehouseID   uuid.UUID       `json:"warehouse_id"`
	SubLocation   string          `json:"sub_location,omitempty"`
	MovementType  MovementType    `json:"movement_type"`
	QuantityDelta decimal.Decimal `json:"quantity_delta"`
	OnHandAfter   decimal.Decimal `json:"on_hand_after"`
}

// NewStockMovedEvent creates a stock movement event
func NewStockMovedEvent(tenantID uuid.UUID, entry *LedgerEntry) *StockMovedEvent {
	return &StockMovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("inventory.stock_moved", "StockBalance", entry.ProductID, tenantID),
		ProductID:       entry.ProductID,
		WarehouseID:     entry.WarehouseID,
		SubLocation:     entry.SubLocation,
		MovementType:    entry.MovementType,
		QuantityDelta:   entry.QuantityDelta,
		OnHandAfter:     entry.BalanceAfter,
	}
}

// GoodsReceivedEvent is raised after a goods receipt commits
type GoodsReceivedEvent struct {
	shared.BaseDomainEvent
	ReceiptID       uuid.UUID `json:"receipt_id"`
	PurchaseOrderID uuid.UUID `json:"purchase_order_id"`
	WarehouseID     uuid.UUID `json:"warehouse_id"`
	LineCount       int       `json:"line_count"`
}

// NewGoodsReceivedEvent creates a goods received event
func NewGoodsReceivedEvent(receipt *GoodsReceipt) *GoodsReceivedEvent {
	return &GoodsReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("inventory.goods_received", "GoodsReceipt", receipt.ID, receipt.TenantID),
		ReceiptID:       receipt.ID,
		PurchaseOrderID: receipt.PurchaseOrderID,
		WarehouseID:     receipt.WarehouseID,
		LineCount:       len(receipt.Items),
	}
}
