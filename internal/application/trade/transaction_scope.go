package trade

import (
	"context"

	"github.com/erp/core/internal/domain/inventory"
	"github.com/erp/core/internal/domain/trade"
)

// TransactionalRepositories bundles the repositories that participate in one
// status transition transaction. The order update, its audit event, and every
// stock side effect either all commit or none do.
type TransactionalRepositories struct {
	SalesOrders  trade.SalesOrderRepository
	StatusEvents trade.StatusEventRepository
	Customers    trade.CustomerTouchRepository
	Balances     inventory.BalanceRepository
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
