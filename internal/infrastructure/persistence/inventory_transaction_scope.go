package persistence

import (
	"context"

	"gorm.io/gorm"

	appinv "github.com/erp/core/internal/application/inventory"
)

// GormInventoryTransactionScope implements the inventory TransactionScope
// using GORM transactions. The purchase order update, receipt, ledger entries,
// and balance updates of one receive call commit together.
type GormInventoryTransactionScope struct {
	db *gorm.DB
}

// NewGormInventoryTransactionScope creates a new GormInventoryTransactionScope
func NewGormInventoryTransactionScope(db *gorm.DB) *GormInventoryTransactionScope {
	return &GormInventoryTransactionScope{db: db}
}

// Execute runs the given function within a database transaction
func (s *GormInventoryTransactionScope) Execute(ctx context.Context, fn func(repos appinv.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(appinv.TransactionalRepositories{
			PurchaseOrders: NewGormPurchaseOrderRepository(tx),
			Receipts:       NewGormReceiptRepository(tx),
			Ledger:         NewGormLedgerRepository(tx),
			Balances:       NewGormBalanceRepository(tx),
		})
	})
}

var _ appinv.TransactionScope = (*GormInventoryTransactionScope)(nil)
