package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/core/internal/domain/shared"
)

// StockKey identifies one balance row: a product in a warehouse, optionally
// narrowed to a named sub-location (bin, shelf, staging area) within it. The
// empty SubLocation means the warehouse-level position.
type StockKey struct {
	ProductID   uuid.UUID
	WarehouseID uuid.UUID
	SubLocation string
}

// StockBalance is the derived on-hand position for one stock key. It is a
// projection of the ledger: every change to OnHand must be paired with a
// ledger entry in the same transaction. Reserved tracks quantity promised to
// confirmed sales orders but not yet shipped.
type StockBalance struct {
	shared.BaseEntity
	TenantID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_balance_key" json:"tenant_id"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_balance_key" json:"product_id"`
	WarehouseID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_balance_key" json:"warehouse_id"`
	SubLocation string          `gorm:"type:varchar(50);not null;default:'';uniqueIndex:idx_balance_key" json:"sub_location,omitempty"`
	OnHand      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"on_hand"`
	Reserved    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"reserved"`
	Version     int             `gorm:"not null;default:1" json:"version"`
}

// TableName specifies the table name for StockBalance
func (StockBalance) TableName() string {
	return "stock_balances"
}

// NewStockBalance creates an empty balance row for a stock key
func NewStockBalance(tenantID uuid.UUID, key StockKey) *StockBalance {
	return &StockBalance{
		BaseEntity:  shared.NewBaseEntity(),
		TenantID:    tenantID,
		ProductID:   key.ProductID,
		WarehouseID: key.WarehouseID,
		SubLocation: key.SubLocation,
		OnHand:      decimal.Zero,
		Reserved:    decimal.Zero,
		Version:     1,
	}
}

// Key returns the stock key this row aggregates
func (b *StockBalance) Key() StockKey {
	return StockKey{ProductID: b.ProductID, WarehouseID: b.WarehouseID, SubLocation: b.SubLocation}
}

// Available returns the quantity free for new commitments
func (b *StockBalance) Available() decimal.Decimal {
	return b.OnHand.Sub(b.Reserved)
}

// Apply moves OnHand by a signed delta. Negative results are rejected; the
// ledger entry for the movement must be written in the same transaction.
func (b *StockBalance) Apply(delta decimal.Decimal) error {
	next := b.OnHand.Add(delta)
	if next.IsNegative() {
		return shared.NewPreconditionError("INSUFFICIENT_STOCK",
			"movement would drive on-hand below zero for product "+b.ProductID.String())
	}
	b.OnHand = next
	b.UpdatedAt = time.Now().UTC()
	return nil
}

// Reserve commits available quantity to a sales order
func (b *StockBalance) Reserve(qty decimal.Decimal) error {
	if qty.LessThanOrEqual(decimal.Zero) {
		return shared.NewValidationError("INVALID_QUANTITY", "reserve quantity must be positive")
	}
	if qty.GreaterThan(b.Available()) {
		return shared.NewPreconditionError("INSUFFICIENT_AVAILABLE",
			"cannot reserve more than available for product "+b.ProductID.String())
	}
	b.Reserved = b.Reserved.Add(qty)
	b.UpdatedAt = time.Now().UTC()
	return nil
}

// Release returns previously reserved quantity to the available pool
func (b *StockBalance) Release(qty decimal.Decimal) error {
	if qty.LessThanOrEqual(decimal.Zero) {
		return shared.NewValidationError("INVALID_QUANTITY", "release quantity must be positive")
	}
	if qty.GreaterThan(b.Reserved) {
		return shared.NewPreconditionError("RELEASE_EXCEEDS_RESERVED",
			"cannot release more than reserved for product "+b.ProductID.String())
	}
	b.Reserved = b.Reserved.Sub(qty)
	b.UpdatedAt = time.Now().UTC()
	return nil
}

// ConsumeReservation ships reserved quantity: both on-hand and reserved drop
// together so available is unchanged by the shipment itself. No operation in
// this module calls it; it is the balance-side contract for the shipping
// writer, which lives outside this module and must pair each consume with a
// negative ledger entry in the same transaction.
func (b *StockBalance) ConsumeReservation(qty decimal.Decimal) error {
	if qty.LessThanOrEqual(decimal.Zero) {
		return shared.NewValidationError("INVALID_QUANTITY", "consume quantity must be positive")
	}
	if qty.GreaterThan(b.Reserved) {
		return shared.NewPreconditionError("CONSUME_EXCEEDS_RESERVED",
			"cannot ship more than reserved for product "+b.ProductID.String())
	}
	if qty.GreaterThan(b.OnHand) {
		return shared.NewPreconditionError("INSUFFICIENT_STOCK",
			"cannot ship more than on-hand for product "+b.ProductID.String())
	}
	b.Reserved = b.Reserved.Sub(qty)
	b.OnHand = b.OnHand.Sub(qty)
	b.UpdatedAt = time.Now().UTC()
	return nil
}
