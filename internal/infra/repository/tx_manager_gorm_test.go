package repository

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/domain/model"
	"storefront/internal/infra/db/dbtest"
	repo "storefront/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTxManagerGorm_RollbackOnError(t *testing.T) {
	gdb := dbtest.Open(t)
	ctx := context.Background()
	u := dbtest.CreateUser(t, gdb, "tx@example.com", model.RoleUser)
	p := dbtest.CreateProduct(t, gdb, "Tx", "1.00", 5)
	boom := errors.New("boom")

	err := NewTxManagerGorm(gdb).WithinTx(ctx, func(r repo.TxRepos) error {
		ok, err := r.Inventory().DecreaseStockIfEnough(ctx, p.ID, 2)
		require.NoError(t, err)
		require.True(t, ok)
		require.NoError(t, r.Carts().AddQuantity(ctx, u.ID, p.ID, 1))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, int64(5), dbtest.Stock(t, gdb, p.ID))
	n, err := NewCartGormRepository(gdb).SumQuantity(ctx, u.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTxManagerGorm_Commit(t *testing.T) {
	gdb := dbtest.Open(t)
	ctx := context.Background()
	p := dbtest.CreateProduct(t, gdb, "Tx", "1.00", 5)

	err := NewTxManagerGorm(gdb).WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Inventory().SetStock(ctx, p.ID, 9); err != nil {
			return err
		}
		return r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  1,
			Action:       model.AuditActionUpdateStock,
			ResourceType: model.AuditResourceProduct,
			ResourceID:   p.ID,
		})
	})
	require.NoError(t, err)
	assert.Equal(t, int64(9), dbtest.Stock(t, gdb, p.ID))

	logs, err := NewAuditLogGormRepository(gdb).List(ctx, repo.AuditLogFilter{})
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestTxManagerGorm_CanceledContextRollsBack(t *testing.T) {
	gdb := dbtest.Open(t)
	p := dbtest.CreateProduct(t, gdb, "Tx", "1.00", 5)
	ctx, cancel := context.WithCancel(context.Background())

	err := NewTxManagerGorm(gdb).WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Inventory().SetStock(ctx, p.ID, 1); err != nil {
			return err
		}
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(5), dbtest.Stock(t, gdb, p.ID))
}
