package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/core/internal/domain/shared"
)

// MovementType classifies why stock moved
type MovementType string

const (
	MovementTypeReceipt    MovementType = "RECEIPT"
	MovementTypeShipment   MovementType = "SHIPMENT"
	MovementTypeAdjustment MovementType = "ADJUSTMENT"
	MovementTypeReturn     MovementType = "RETURN"
)

// LedgerEntry is one immutable row of the stock movement ledger. QuantityDelta
// is signed: receipts and returns are positive, shipments and negative
// adjustments are negative. The on-hand balance of any stock key must always
// equal the sum of its entries' deltas.
type LedgerEntry struct {
	shared.BaseEntity
	TenantID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"tenant_id"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_ledger_stock_key" json:"product_id"`
	WarehouseID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_ledger_stock_key" json:"warehouse_id"`
	SubLocation   string          `gorm:"type:varchar(50);not null;default:'';index:idx_ledger_stock_key" json:"sub_location,omitempty"`
	MovementType  MovementType    `gorm:"type:varchar(20);not null" json:"movement_type"`
	QuantityDelta decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity_delta"`
	// BalanceAfter snapshots on-hand after this entry was applied, for
	// auditing and fast point-in-time reads.
	BalanceAfter decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"balance_after"`
	RefType      string          `gorm:"type:varchar(30)" json:"ref_type,omitempty"`
	RefID        *uuid.UUID      `gorm:"type:uuid" json:"ref_id,omitempty"`
	ActorID      uuid.UUID       `gorm:"type:uuid;not null" json:"actor_id"`
	OccurredAt   time.Time       `gorm:"type:timestamptz;not null;index" json:"occurred_at"`
	Remark       string          `gorm:"type:varchar(500)" json:"remark,omitempty"`
}

// TableName specifies the table name for LedgerEntry
func (LedgerEntry) TableName() string {
	return "stock_ledger_entries"
}

// NewLedgerEntry creates a ledger entry for a stock movement. The delta must
// be non-zero; zero movements carry no information and would bloat the ledger.
func NewLedgerEntry(tenantID uuid.UUID, key StockKey, movement MovementType, delta, balanceAfter decimal.Decimal, actorID uuid.UUID) (*LedgerEntry, error) {
	if delta.IsZero() {
		return nil, shared.NewValidationError("ZERO_DELTA", "ledger entry delta cannot be zero")
	}
	return &LedgerEntry{
		BaseEntity:    shared.NewBaseEntity(),
		TenantID:      tenantID,
		ProductID:     key.ProductID,
		WarehouseID:   key.WarehouseID,
		SubLocation:   key.SubLocation,
		MovementType:  movement,
		QuantityDelta: delta,
		BalanceAfter:  balanceAfter,
		ActorID:       actorID,
		OccurredAt:    time.Now().UTC(),
	}, nil
}

// Key returns the stock key this entry moved
func (e *LedgerEntry) Key() StockKey {
	return StockKey{ProductID: e.ProductID, WarehouseID: e.WarehouseID, SubLocation: e.SubLocation}
}

// WithReference attaches the originating document to the entry
func (e *LedgerEntry) WithReference(refType string, refID uuid.UUID) *LedgerEntry {
	e.RefType = refType
	e.RefID = &refID
	return e
}
