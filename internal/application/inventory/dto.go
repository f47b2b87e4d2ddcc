package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/core/internal/domain/inventory"
)

// ReceiveLine is one line of a receive request. WarehouseID defaults to the
// purchase order's warehouse when empty; SubLocation narrows the booking to a
// bin or shelf within it.
type ReceiveLine struct {
	ProductID   uuid.UUID       `json:"product_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	WarehouseID *uuid.UUID      `json:"warehouse_id,omitempty"`
	SubLocation string          `json:"sub_location,omitempty"`
}

// ReceiveCommand asks to book received goods against a purchase order
type ReceiveCommand struct {
	TenantID        uuid.UUID
	PurchaseOrderID uuid.UUID
	ActorID         uuid.UUID
	Lines           []ReceiveLine
	// IdempotencyKey is optional; when set, retries with the same key
	// return the original receipt instead of booking stock twice.
	IdempotencyKey string
	Remark         string
}

// ReceiveResult reports the outcome of a receive operation
type ReceiveResult struct {
	ReceiptID  uuid.UUID `json:"receipt_id"`
	ReceiptNo  string    `json:"receipt_no"`
	LineCount  int       `json:"line_count"`
	ReceivedAt time.Time `json:"received_at"`
	// Replayed is true when the idempotency key matched an earlier receipt
	// and no stock moved in this call.
	Replayed bool `json:"replayed"`
}

// BalanceDTO is a stock position for API consumers
type BalanceDTO struct {
	ProductID   uuid.UUID       `json:"product_id"`
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	SubLocation string          `json:"sub_location,omitempty"`
	OnHand      decimal.Decimal `json:"on_hand"`
	Reserved    decimal.Decimal `json:"reserved"`
	Available   decimal.Decimal `json:"available"`
}

func toBalanceDTO(b *inventory.StockBalance) BalanceDTO {
	return BalanceDTO{
		ProductID:   b.ProductID,
		WarehouseID: b.WarehouseID,
		SubLocation: b.SubLocation,
		OnHand:      b.OnHand,
		Reserved:    b.Reserved,
		Available:   b.Available(),
	}
}

// LedgerEntryDTO is one movement row for API consumers
type LedgerEntryDTO struct {
	ID            uuid.UUID              `json:"id"`
	SubLocation   string                 `json:"sub_location,omitempty"`
	MovementType  inventory.MovementType `json:"movement_type"`
	QuantityDelta decimal.Decimal        `json:"quantity_delta"`
	BalanceAfter  decimal.Decimal        `json:"balance_after"`
	RefType       string                 `json:"ref_type,omitempty"`
	RefID         *uuid.UUID             `json:"ref_id,omitempty"`
	OccurredAt    time.Time              `json:"occurred_at"`
}

func toLedgerEntryDTO(e *inventory.LedgerEntry) LedgerEntryDTO {
	return LedgerEntryDTO{
		ID:            e.ID,
		SubLocation:   e.SubLocation,
		MovementType:  e.MovementType,
		QuantityDelta: e.QuantityDelta,
		BalanceAfter:  e.BalanceAfter,
		RefType:       e.RefType,
		RefID:         e.RefID,
		OccurredAt:    e.OccurredAt,
	}
}
