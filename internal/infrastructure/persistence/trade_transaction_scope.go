package persistence

import (
	"context"

	"gorm.io/gorm"

	apptrade "github.com/erp/core/internal/application/trade"
)

// GormTradeTransactionScope implements the trade TransactionScope using GORM
// transactions. A status transition and all its side effects run on one
// connection and commit together.
type GormTradeTransactionScope struct {
	db *gorm.DB
}

// NewGormTradeTransactionScope creates a new GormTradeTransactionScope
func NewGormTradeTransactionScope(db *gorm.DB) *GormTradeTransactionScope {
	return &GormTradeTransactionScope{db: db}
}

// Execute runs the given function within a database transaction
func (s *GormTradeTransactionScope) Execute(ctx context.Context, fn func(repos apptrade.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(apptrade.TransactionalRepositories{
			SalesOrders:  NewGormSalesOrderRepository(tx),
			StatusEvents: NewGormStatusEventRepository(tx),
			Customers:    NewGormCustomerTouchRepository(tx),
			Balances:     NewGormBalanceRepository(tx),
		})
	})
}

var _ apptrade.TransactionScope = (*GormTradeTransactionScope)(nil)
