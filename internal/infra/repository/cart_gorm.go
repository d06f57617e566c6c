package repository

import (
	"context"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartGormRepository struct {
	db *gorm.DB
}

var _ repo.CartRepository = (*CartGormRepository)(nil)

// DI
func NewCartGormRepository(db *gorm.DB) *CartGormRepository {
	return &CartGormRepository{db: db}
}

// 明細を現在の商品情報と結合して返す。削除済み商品の明細は出さない。
func (r *CartGormRepository) ListLines(ctx context.Context, userID int64) ([]model.CartLine, error) {
	lines := []model.CartLine{}
	err := r.db.WithContext(ctx).
		Table("cart_items").
		Select("cart_items.product_id, cart_items.quantity, cart_items.created_at, "+
			"products.name, products.price, products.image, products.category, products.stock").
		Joins("JOIN products ON products.id = cart_items.product_id AND products.deleted_at IS NULL").
		Where("cart_items.user_id = ?", userID).
		Order("cart_items.created_at DESC, cart_items.id DESC").
		Scan(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// 同一商品は数量加算、無ければ作成。UPSERT1本なので同時に追加しても明細は1行。
func (r *CartGormRepository) AddQuantity(ctx context.Context, userID, productID, qty int64) error {
	item := model.CartItem{UserID: userID, ProductID: productID, Quantity: qty}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity":   gorm.Expr("cart_items.quantity + excluded.quantity"),
				"updated_at": gorm.Expr("excluded.updated_at"),
			}),
		}).
		Create(&item).Error
	return translate(err)
}

// 既存明細の数量だけ上書きする。明細が無ければErrNotFound（作成はしない）。
func (r *CartGormRepository) SetQuantity(ctx context.Context, userID, productID, qty int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.CartItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Update("quantity", qty)
	return affectedOne(res)
}

func (r *CartGormRepository) Remove(ctx context.Context, userID, productID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&model.CartItem{}).Error
}

func (r *CartGormRepository) ClearByUser(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.CartItem{}).Error
}

// ListLinesと同じ結合条件で数える
func (r *CartGormRepository) SumQuantity(ctx context.Context, userID int64) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Table("cart_items").
		Select("COALESCE(SUM(cart_items.quantity), 0)").
		Joins("JOIN products ON products.id = cart_items.product_id AND products.deleted_at IS NULL").
		Where("cart_items.user_id = ?", userID).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}
