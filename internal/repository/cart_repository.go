package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// カート明細の永続化。1ユーザー1商品につき1行。
type CartRepository interface {
	// 明細に現在の商品情報を結合して返す（新しい順）
	ListLines(ctx context.Context, userID int64) ([]model.CartLine, error)
	// 同一商品は数量を加算、無ければ作成
	AddQuantity(ctx context.Context, userID, productID, qty int64) error
	// 既存明細の数量を上書き。明細が無ければErrNotFound
	SetQuantity(ctx context.Context, userID, productID, qty int64) error
	// 無くてもエラーにしない
	Remove(ctx context.Context, userID, productID int64) error
	ClearByUser(ctx context.Context, userID int64) error
	// 数量の合計（明細が無ければ0）
	SumQuantity(ctx context.Context, userID int64) (int64, error)
}
