package usecase

import (
	"context"
	"errors"

	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
)

// CartUsecase は /cart の業務ロジックです。
// 在庫はここでは見ない（注文確定時にだけ確認する）。
type CartUsecase struct {
	cartRepo    repo.CartRepository
	productRepo repo.ProductRepository
}

func NewCartUsecase(cartRepo repo.CartRepository, productRepo repo.ProductRepository) *CartUsecase {
	return &CartUsecase{cartRepo: cartRepo, productRepo: productRepo}
}

// 価格は常に現在の商品価格。
type CartLineOutput struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int64           `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Image     string          `json:"image"`
	Category  string          `json:"category"`
	Stock     int64           `json:"stock"`
}

// Subtotalは送料を含まない暫定の合計。
type CartOutput struct {
	Items    []CartLineOutput `json:"items"`
	Subtotal decimal.Decimal  `json:"subtotal"`
	Count    int64            `json:"count"`
}

func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (CartOutput, error) {
	if userID <= 0 {
		return CartOutput{}, ErrUnauthorized
	}

	lines, err := u.cartRepo.ListLines(ctx, userID)
	if err != nil {
		return CartOutput{}, storageError(ctx, "cart.list", err)
	}

	out := CartOutput{Items: make([]CartLineOutput, 0, len(lines)), Subtotal: decimal.Zero}
	for _, l := range lines {
		sub := l.Price.Mul(decimal.NewFromInt(l.Quantity))
		out.Items = append(out.Items, CartLineOutput{
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     l.Price,
			Quantity:  l.Quantity,
			Subtotal:  sub,
			Image:     l.Image,
			Category:  l.Category,
			Stock:     l.Stock,
		})
		out.Subtotal = out.Subtotal.Add(sub)
		out.Count += l.Quantity
	}
	return out, nil
}

// AddItem は同一商品なら数量を加算する。
func (u *CartUsecase) AddItem(ctx context.Context, userID, productID, qty int64) error {
	if userID <= 0 {
		return ErrUnauthorized
	}
	if productID <= 0 {
		return NewError(KindValidation, "invalid product_id")
	}
	if qty < 1 {
		return NewError(KindValidation, "quantity must be >= 1")
	}
	if err := u.ensureProduct(ctx, productID); err != nil {
		return err
	}

	if err := u.cartRepo.AddQuantity(ctx, userID, productID, qty); err != nil {
		return storageError(ctx, "cart.add", err)
	}
	return nil
}

// SetQuantity はカートにある明細の数量を上書きする。0以下なら削除と同じ。
// 明細が無ければ404（追加はAddItemだけ）。
func (u *CartUsecase) SetQuantity(ctx context.Context, userID, productID, qty int64) error {
	if qty <= 0 {
		return u.RemoveItem(ctx, userID, productID)
	}
	if userID <= 0 {
		return ErrUnauthorized
	}
	if productID <= 0 {
		return NewError(KindValidation, "invalid product_id")
	}
	if err := u.ensureProduct(ctx, productID); err != nil {
		return err
	}

	err := u.cartRepo.SetQuantity(ctx, userID, productID, qty)
	if errors.Is(err, repo.ErrNotFound) {
		return NewError(KindNotFound, "cart item not found")
	}
	if err != nil {
		return storageError(ctx, "cart.set", err)
	}
	return nil
}

// 無い明細の削除も成功扱い。
func (u *CartUsecase) RemoveItem(ctx context.Context, userID, productID int64) error {
	if userID <= 0 {
		return ErrUnauthorized
	}
	if productID <= 0 {
		return NewError(KindValidation, "invalid product_id")
	}
	if err := u.cartRepo.Remove(ctx, userID, productID); err != nil {
		return storageError(ctx, "cart.remove", err)
	}
	return nil
}

func (u *CartUsecase) Clear(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return ErrUnauthorized
	}
	if err := u.cartRepo.ClearByUser(ctx, userID); err != nil {
		return storageError(ctx, "cart.clear", err)
	}
	return nil
}

func (u *CartUsecase) Count(ctx context.Context, userID int64) (int64, error) {
	if userID <= 0 {
		return 0, ErrUnauthorized
	}
	n, err := u.cartRepo.SumQuantity(ctx, userID)
	if err != nil {
		return 0, storageError(ctx, "cart.count", err)
	}
	return n, nil
}

func (u *CartUsecase) ensureProduct(ctx context.Context, productID int64) error {
	_, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewError(KindNotFound, "product not found")
	}
	if err != nil {
		return storageError(ctx, "product.find", err)
	}
	return nil
}
