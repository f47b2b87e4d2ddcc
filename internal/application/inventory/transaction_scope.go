package inventory

import (
	"context"

	"github.com/erp/core/internal/domain/inventory"
	"github.com/erp/core/internal/domain/trade"
)

// TransactionalRepositories bundles the repositories of one receiving
// transaction: the purchase order update, the receipt record, the ledger
// entries, and the balance updates commit or roll back together.
type TransactionalRepositories struct {
	PurchaseOrders trade.PurchaseOrderRepository
	Receipts       inventory.ReceiptRepository
	Ledger         inventory.LedgerRepository
	Balances       inventory.BalanceRepository
}

// TransactionScope executes a function within a database transaction
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// NoOpTransactionScope runs the function against fixed repositories without a
// real transaction. For tests.
type NoOpTransactionScope struct {
	Repos TransactionalRepositories
}

// Execute runs fn directly against the configured repositories
func (s *NoOpTransactionScope) Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s.Repos)
}
