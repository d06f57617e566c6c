package usecase_test

import (
	"context"
	"testing"

	"storefront/internal/domain/model"
	"storefront/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_DeleteCategoryRules(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	admin := dbtestAdmin(t, s)

	cat, err := s.catalog.CreateCategory(ctx, admin.ID, "garden", "")
	require.NoError(t, err)
	_, err = s.catalog.CreateCategory(ctx, admin.ID, "garden", "again")
	assert.Equal(t, usecase.KindConflict, usecase.KindOf(err))

	p, err := s.catalog.CreateProduct(ctx, admin.ID, usecase.ProductInput{
		Name: "Hose", Price: decimal.RequireFromString("19.99"), Category: "garden", Stock: 2,
	})
	require.NoError(t, err)

	// 商品が残っている間は消せない
	err = s.catalog.DeleteCategory(ctx, admin.ID, cat.ID)
	assert.ErrorIs(t, err, usecase.ErrReferentialIntegrity)

	require.NoError(t, s.catalog.DeleteProduct(ctx, admin.ID, p.ID))
	require.NoError(t, s.catalog.DeleteCategory(ctx, admin.ID, cat.ID))

	err = s.catalog.DeleteCategory(ctx, admin.ID, cat.ID)
	assert.ErrorIs(t, err, usecase.ErrNotFound)
}

func TestCatalog_ProductLifecycle(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	admin := dbtestAdmin(t, s)
	_, err := s.catalog.CreateCategory(ctx, admin.ID, "kitchen", "")
	require.NoError(t, err)

	// 未登録カテゴリは不可
	_, err = s.catalog.CreateProduct(ctx, admin.ID, usecase.ProductInput{Name: "Pan", Price: decimal.NewFromInt(1), Category: "nope"})
	assert.Equal(t, usecase.KindValidation, usecase.KindOf(err))

	p, err := s.catalog.CreateProduct(ctx, admin.ID, usecase.ProductInput{
		Name: "Teapot", Price: decimal.RequireFromString("25.00"), Category: "kitchen", Stock: 4,
	})
	require.NoError(t, err)

	updated, err := s.catalog.UpdateProduct(ctx, admin.ID, p.ID, usecase.ProductInput{
		Name: "Teapot XL", Price: decimal.RequireFromString("30.00"), Category: "kitchen", Stock: 6,
	})
	require.NoError(t, err)
	assert.Equal(t, "Teapot XL", updated.Name)

	got, err := s.catalog.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(decimal.NewFromInt(30)))

	list, err := s.catalog.ListProducts(ctx, usecase.ListProductsInput{Category: "kitchen"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Total)

	require.NoError(t, s.catalog.DeleteProduct(ctx, admin.ID, p.ID))
	_, err = s.catalog.GetProduct(ctx, p.ID)
	assert.ErrorIs(t, err, usecase.ErrNotFound)
}

func TestCatalog_ProductValidation(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	admin := dbtestAdmin(t, s)

	_, err := s.catalog.CreateProduct(ctx, admin.ID, usecase.ProductInput{Name: " ", Price: decimal.NewFromInt(1)})
	assert.Equal(t, usecase.KindValidation, usecase.KindOf(err))

	_, err = s.catalog.CreateProduct(ctx, admin.ID, usecase.ProductInput{Name: "X", Price: decimal.NewFromInt(-1)})
	assert.Equal(t, usecase.KindValidation, usecase.KindOf(err))

	_, err = s.catalog.ListProducts(ctx, usecase.ListProductsInput{Sort: "random"})
	assert.Equal(t, usecase.KindValidation, usecase.KindOf(err))

	min, max := decimal.NewFromInt(10), decimal.NewFromInt(5)
	_, err = s.catalog.ListProducts(ctx, usecase.ListProductsInput{MinPrice: &min, MaxPrice: &max})
	assert.Equal(t, usecase.KindValidation, usecase.KindOf(err))
}

func TestCatalog_AdminUpdateInventory(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	admin := dbtestAdmin(t, s)
	p := s.product(t, "Bolt", "0.10", 100)

	require.NoError(t, s.catalog.AdminUpdateInventory(ctx, admin.ID, p.ID, 40, "stocktake"))
	assert.Equal(t, int64(40), s.stock(t, p.ID))

	var adj model.InventoryAdjustment
	require.NoError(t, s.gdb.Where("product_id = ?", p.ID).First(&adj).Error)
	assert.Equal(t, int64(-60), adj.Delta)
	assert.Equal(t, "stocktake", adj.Reason)

	var audit model.AuditLog
	require.NoError(t, s.gdb.Where("action = ?", model.AuditActionUpdateStock).First(&audit).Error)
	assert.JSONEq(t, `{"stock":100}`, audit.BeforeJSON)

	err := s.catalog.AdminUpdateInventory(ctx, admin.ID, p.ID, -1, "oops")
	assert.Equal(t, usecase.KindValidation, usecase.KindOf(err))
	err = s.catalog.AdminUpdateInventory(ctx, admin.ID, 9999, 1, "x")
	assert.ErrorIs(t, err, usecase.ErrNotFound)
	// 失敗時は調整履歴も残らない
	assert.Equal(t, int64(1), s.countRows(t, &model.InventoryAdjustment{}))
}
