package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	appinv "github.com/erp/core/internal/application/inventory"
	"github.com/erp/core/internal/domain/inventory"
	"github.com/erp/core/internal/domain/shared"
	"github.com/erp/core/internal/domain/trade"
)

func newSqliteDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&trade.StatusEvent{},
		&inventory.LedgerEntry{},
	))
	return db
}

func TestGormStatusEventRepository(t *testing.T) {
	ctx := context.Background()
	db := newSqliteDB(t)
	repo := NewGormStatusEventRepository(db)

	tenantID := uuid.New()
	orderID := uuid.New()
	actorID := uuid.New()

	t.Run("append and read back newest first", func(t *testing.T) {
		first := trade.NewStatusEvent(tenantID, orderID, trade.OrderStatusDraft, trade.OrderStatusConfirmed, actorID, "", trade.ClientContext{IP: "10.0.0.1"})
		second := trade.NewStatusEvent(tenantID, orderID, trade.OrderStatusConfirmed, trade.OrderStatusShipped, actorID, "", trade.ClientContext{})
		second.OccurredAt = first.OccurredAt.Add(time.Second)

		require.NoError(t, repo.Append(ctx, first))
		require.NoError(t, repo.Append(ctx, second))

		events, err := repo.FindByOrder(ctx, tenantID, orderID)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, trade.OrderStatusShipped, events[0].ToStatus)
		assert.Equal(t, trade.OrderStatusConfirmed, events[1].ToStatus)
	})

	t.Run("trail is tenant scoped", func(t *testing.T) {
		events, err := repo.FindByOrder(ctx, uuid.New(), orderID)
		require.NoError(t, err)
		assert.Empty(t, events)
	})
}

func TestGormLedgerRepository(t *testing.T) {
	ctx := context.Background()
	db := newSqliteDB(t)
	repo := NewGormLedgerRepository(db)

	tenantID := uuid.New()
	key := inventory.StockKey{ProductID: uuid.New(), WarehouseID: uuid.New()}
	actorID := uuid.New()

	appendEntry := func(t *testing.T, k inventory.StockKey, delta, after int64, movement inventory.MovementType) {
		t.Helper()
		entry, err := inventory.NewLedgerEntry(tenantID, k,
			movement, decimal.NewFromInt(delta), decimal.NewFromInt(after), actorID)
		require.NoError(t, err)
		require.NoError(t, repo.Append(ctx, entry))
	}

	t.Run("sum of deltas tracks appended history", func(t *testing.T) {
		sum, err := repo.SumDeltas(ctx, tenantID, key)
		require.NoError(t, err)
		assert.True(t, sum.IsZero())

		appendEntry(t, key, 10, 10, inventory.MovementTypeReceipt)
		appendEntry(t, key, -4, 6, inventory.MovementTypeShipment)
		appendEntry(t, key, 2, 8, inventory.MovementTypeReturn)

		sum, err = repo.SumDeltas(ctx, tenantID, key)
		require.NoError(t, err)
		assert.True(t, sum.Equal(decimal.NewFromInt(8)))
	})

	t.Run("find by key paginates", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.PageSize = 2

		page, err := repo.FindByKey(ctx, tenantID, key, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(3), page.Total)
		assert.Len(t, page.Items, 2)
		assert.Equal(t, 2, page.TotalPages)
	})

	t.Run("sub locations are distinct keys", func(t *testing.T) {
		binned := inventory.StockKey{ProductID: key.ProductID, WarehouseID: key.WarehouseID, SubLocation: "B-01"}
		appendEntry(t, binned, 3, 3, inventory.MovementTypeReceipt)

		sum, err := repo.SumDeltas(ctx, tenantID, binned)
		require.NoError(t, err)
		assert.True(t, sum.Equal(decimal.NewFromInt(3)))

		// the warehouse-level key is unaffected by the binned entry
		sum, err = repo.SumDeltas(ctx, tenantID, key)
		require.NoError(t, err)
		assert.True(t, sum.Equal(decimal.NewFromInt(8)))
	})

	t.Run("other keys do not leak in", func(t *testing.T) {
		sum, err := repo.SumDeltas(ctx, tenantID, inventory.StockKey{ProductID: uuid.New(), WarehouseID: key.WarehouseID})
		require.NoError(t, err)
		assert.True(t, sum.IsZero())
	})
}

func TestGormProductReader_Active(t *testing.T) {
	ctx := context.Background()
	db := newSqliteDB(t)
	require.NoError(t, db.Exec(`CREATE TABLE products (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		name TEXT NOT NULL,
		sku TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'ACTIVE'
	)`).Error)
	reader := NewGormProductReader(db)

	tenantID := uuid.New()
	activeID := uuid.New()
	discontinuedID := uuid.New()

	insert := func(id uuid.UUID, sku, status string) {
		require.NoError(t, db.Exec(
			`INSERT INTO products (id, tenant_id, name, sku, status) VALUES (?, ?, ?, ?, ?)`,
			id, tenantID, "widget "+sku, sku, status).Error)
	}
	insert(activeID, "SKU-1", "ACTIVE")
	insert(discontinuedID, "SKU-2", "DISCONTINUED")

	t.Run("active product answers true", func(t *testing.T) {
		ok, err := reader.Active(ctx, tenantID, activeID)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("discontinued product answers false", func(t *testing.T) {
		ok, err := reader.Active(ctx, tenantID, discontinuedID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("missing product answers false", func(t *testing.T) {
		ok, err := reader.Active(ctx, tenantID, uuid.New())
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("tenant scoped", func(t *testing.T) {
		ok, err := reader.Active(ctx, uuid.New(), activeID)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestGormInventoryTransactionScope_Rollback(t *testing.T) {
	ctx := context.Background()
	db := newSqliteDB(t)
	require.NoError(t, db.AutoMigrate(&inventory.StockBalance{}))
	scope := NewGormInventoryTransactionScope(db)

	tenantID := uuid.New()
	key := inventory.StockKey{ProductID: uuid.New(), WarehouseID: uuid.New()}
	actorID := uuid.New()

	writeBoth := func(repos appinv.TransactionalRepositories) error {
		entry, err := inventory.NewLedgerEntry(tenantID, key,
			inventory.MovementTypeReceipt, decimal.NewFromInt(5), decimal.NewFromInt(5), actorID)
		if err != nil {
			return err
		}
		if err := repos.Ledger.Append(ctx, entry); err != nil {
			return err
		}
		balance := inventory.NewStockBalance(tenantID, key)
		if err := balance.Apply(decimal.NewFromInt(5)); err != nil {
			return err
		}
		return repos.Balances.Save(ctx, balance)
	}

	t.Run("failure after writes leaves no rows", func(t *testing.T) {
		err := scope.Execute(ctx, func(repos appinv.TransactionalRepositories) error {
			if err := writeBoth(repos); err != nil {
				return err
			}
			return errors.New("injected")
		})
		require.Error(t, err)

		var entries, balances int64
		require.NoError(t, db.Model(&inventory.LedgerEntry{}).Count(&entries).Error)
		require.NoError(t, db.Model(&inventory.StockBalance{}).Count(&balances).Error)
		assert.Zero(t, entries)
		assert.Zero(t, balances)
	})

	t.Run("clean run commits both rows", func(t *testing.T) {
		require.NoError(t, scope.Execute(ctx, writeBoth))

		var entries, balances int64
		require.NoError(t, db.Model(&inventory.LedgerEntry{}).Count(&entries).Error)
		require.NoError(t, db.Model(&inventory.StockBalance{}).Count(&balances).Error)
		assert.Equal(t, int64(1), entries)
		assert.Equal(t, int64(1), balances)
	})
}
