package db

import (
	"fmt"

	"storefront/internal/domain/model"

	"gorm.io/gorm"
)

// Models はスキーマ管理の対象。
func Models() []any {
	return []any{
		&model.User{},
		&model.Address{},
		&model.Category{},
		&model.Product{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.InventoryAdjustment{},
		&model.AuditLog{},
	}
}

func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("database: migrate: %w", err)
	}
	return nil
}
