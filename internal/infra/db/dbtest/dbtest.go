// Package dbtest はテスト用のインメモリsqlite DBを用意する。
package dbtest

import (
	"context"
	"testing"

	"storefront/internal/config"
	"storefront/internal/domain/model"
	"storefront/internal/infra/db"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Open はテストごとに独立したDBを作り、マイグレーションまで済ませる。
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	cfg := config.Config{
		DBDriver:    "sqlite",
		DatabaseURL: "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		GoEnv:       "prod",
	}
	gdb, err := db.Connect(context.Background(), cfg)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

func CreateUser(t testing.TB, gdb *gorm.DB, email string, role model.Role) model.User {
	t.Helper()
	u := model.User{Email: email, PasswordHash: "x", Name: email, Role: role, IsActive: true}
	require.NoError(t, gdb.Create(&u).Error)
	return u
}

func CreateProduct(t testing.TB, gdb *gorm.DB, name, price string, stock int64) model.Product {
	t.Helper()
	p := model.Product{
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Category: "general",
		Stock:    stock,
	}
	require.NoError(t, gdb.Create(&p).Error)
	return p
}

// Stock は論理削除済みも含めて現在の在庫を読む。
func Stock(t testing.TB, gdb *gorm.DB, productID int64) int64 {
	t.Helper()
	var p model.Product
	require.NoError(t, gdb.Unscoped().First(&p, productID).Error)
	return p.Stock
}
