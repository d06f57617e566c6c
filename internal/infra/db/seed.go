package db

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/domain/model"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedOptions は初期データ投入の設定。AdminEmailが空なら管理者は作らない。
type SeedOptions struct {
	AdminEmail    string
	AdminPassword string
}

var seedCategories = []model.Category{
	{Name: "laptops", Description: "Notebooks and ultrabooks"},
	{Name: "phones", Description: "Smartphones"},
	{Name: "accessories", Description: "Cables, chargers and peripherals"},
}

var seedProducts = []model.Product{
	{Name: "Laptop Pro 14", Description: "14 inch laptop, 16GB RAM", Price: decimal.RequireFromString("1299.00"), Category: "laptops", Stock: 10},
	{Name: "Laptop Air 13", Description: "Light 13 inch laptop", Price: decimal.RequireFromString("899.00"), Category: "laptops", Stock: 15},
	{Name: "Phone X", Description: "6.1 inch smartphone", Price: decimal.RequireFromString("699.00"), Category: "phones", Stock: 25},
	{Name: "USB-C Cable", Description: "1m braided cable", Price: decimal.RequireFromString("12.50"), Category: "accessories", Stock: 200},
	{Name: "Wireless Mouse", Description: "Bluetooth mouse", Price: decimal.RequireFromString("29.90"), Category: "accessories", Stock: 80},
}

// Seed は初期データを入れる。何度実行しても重複しない。
func Seed(ctx context.Context, gdb *gorm.DB, opts SeedOptions) error {
	return gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, c := range seedCategories {
			if err := tx.Where(model.Category{Name: c.Name}).FirstOrCreate(&c).Error; err != nil {
				return fmt.Errorf("seed category %s: %w", c.Name, err)
			}
		}
		for _, p := range seedProducts {
			if err := tx.Where("name = ?", p.Name).FirstOrCreate(&p).Error; err != nil {
				return fmt.Errorf("seed product %s: %w", p.Name, err)
			}
		}

		email := strings.ToLower(strings.TrimSpace(opts.AdminEmail))
		if email == "" {
			return nil
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(opts.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
		admin := model.User{
			Email:        email,
			PasswordHash: string(hash),
			Name:         "Administrator",
			Role:         model.RoleAdmin,
			IsActive:     true,
		}
		if err := tx.Where("email = ?", email).FirstOrCreate(&admin).Error; err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
		return nil
	})
}
