package repository

import (
	"context"
	"testing"

	"storefront/internal/domain/model"
	"storefront/internal/infra/db/dbtest"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCatalog(t *testing.T, r *ProductGormRepository) {
	t.Helper()
	for _, p := range []model.Product{
		{Name: "Laptop Pro", Description: "fast", Price: decimal.RequireFromString("1299.00"), Category: "laptops", Stock: 3},
		{Name: "Laptop Air", Description: "light", Price: decimal.RequireFromString("899.00"), Category: "laptops", Stock: 3},
		{Name: "Cable", Description: "USB-C laptop cable", Price: decimal.RequireFromString("12.50"), Category: "accessories", Stock: 50},
	} {
		_, err := r.Create(context.Background(), p)
		require.NoError(t, err)
	}
}

func names(ps []model.Product) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Name)
	}
	return out
}

func TestProductGorm_ListFilters(t *testing.T) {
	r := NewProductGormRepository(dbtest.Open(t))
	seedCatalog(t, r)
	ctx := context.Background()

	// 名前か説明に一致、大文字小文字は無視
	got, total, err := r.List(ctx, repo.ProductListQuery{Q: "LAPTOP", Sort: "name_asc"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, []string{"Cable", "Laptop Air", "Laptop Pro"}, names(got))

	got, _, err = r.List(ctx, repo.ProductListQuery{Category: "laptops", Sort: "price_asc"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Laptop Air", "Laptop Pro"}, names(got))

	min := decimal.NewFromInt(100)
	max := decimal.NewFromInt(1000)
	got, _, err = r.List(ctx, repo.ProductListQuery{MinPrice: &min, MaxPrice: &max})
	require.NoError(t, err)
	assert.Equal(t, []string{"Laptop Air"}, names(got))

	got, total, err = r.List(ctx, repo.ProductListQuery{Page: 2, Limit: 2, Sort: "price_desc"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, []string{"Cable"}, names(got))
}

func TestProductGorm_UpdateDeleteCount(t *testing.T) {
	r := NewProductGormRepository(dbtest.Open(t))
	ctx := context.Background()

	p, err := r.Create(ctx, model.Product{Name: "Mug", Price: decimal.RequireFromString("8.00"), Category: "kitchen", Stock: 1})
	require.NoError(t, err)

	p.Price = decimal.RequireFromString("9.50")
	p.Stock = 4
	require.NoError(t, r.Update(ctx, p))

	got, err := r.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("9.50")))
	assert.Equal(t, int64(4), got.Stock)

	n, err := r.CountByCategory(ctx, "kitchen")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, r.SoftDelete(ctx, p.ID))
	_, err = r.FindByID(ctx, p.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound)
	assert.ErrorIs(t, r.SoftDelete(ctx, p.ID), repo.ErrNotFound)

	n, err = r.CountByCategory(ctx, "kitchen")
	require.NoError(t, err)
	assert.Zero(t, n)
}
