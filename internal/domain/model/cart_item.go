package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// カートの明細。(user_id, product_id) は一意。
// 価格は持たない（表示時は常に現在の商品価格）。
type CartItem struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"user_id"`
	ProductID int64     `gorm:"not null;uniqueIndex:idx_cart_user_product;index" json:"product_id"`
	Quantity  int64     `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// CartLine はカート明細に現在の商品情報を結合したもの。
type CartLine struct {
	ProductID int64
	Quantity  int64
	Name      string
	Price     decimal.Decimal
	Image     string
	Category  string
	Stock     int64
	CreatedAt time.Time
}
