package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
)

// CatalogUsecase は商品とカテゴリの業務ロジック。
type CatalogUsecase struct {
	tx         repo.TransactionManager
	products   repo.ProductRepository
	categories repo.CategoryRepository
}

// DI
func NewCatalogUsecase(tx repo.TransactionManager, products repo.ProductRepository, categories repo.CategoryRepository) *CatalogUsecase {
	return &CatalogUsecase{tx: tx, products: products, categories: categories}
}

// GET /productsの入力。Limitが0なら全件。
type ListProductsInput struct {
	Page     int
	Limit    int
	Q        string
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Sort     string
}

type ProductListOutput struct {
	Items []model.Product `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

func (u *CatalogUsecase) ListProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if in.Page < 0 {
		return ProductListOutput{}, NewError(KindValidation, "invalid page")
	}
	if in.Page == 0 {
		in.Page = 1
	}
	if in.Limit < 0 || in.Limit > 100 {
		return ProductListOutput{}, NewError(KindValidation, "invalid limit")
	}
	if len(in.Q) > 100 {
		return ProductListOutput{}, NewError(KindValidation, "q too long")
	}
	if in.MinPrice != nil && in.MinPrice.IsNegative() {
		return ProductListOutput{}, NewError(KindValidation, "min_price must be >= 0")
	}
	if in.MaxPrice != nil && in.MaxPrice.IsNegative() {
		return ProductListOutput{}, NewError(KindValidation, "max_price must be >= 0")
	}
	if in.MinPrice != nil && in.MaxPrice != nil && in.MinPrice.GreaterThan(*in.MaxPrice) {
		return ProductListOutput{}, NewError(KindValidation, "min_price must be <= max_price")
	}
	switch in.Sort {
	case "", "new", "price_asc", "price_desc", "name_asc":
	default:
		return ProductListOutput{}, NewError(KindValidation, "invalid sort")
	}

	items, total, err := u.products.List(ctx, repo.ProductListQuery{
		Page:     in.Page,
		Limit:    in.Limit,
		Q:        strings.TrimSpace(in.Q),
		Category: strings.TrimSpace(in.Category),
		MinPrice: in.MinPrice,
		MaxPrice: in.MaxPrice,
		Sort:     in.Sort,
	})
	if err != nil {
		return ProductListOutput{}, storageError(ctx, "product.list", err)
	}

	return ProductListOutput{Items: items, Total: total, Page: in.Page, Limit: in.Limit}, nil
}

func (u *CatalogUsecase) GetProduct(ctx context.Context, productID int64) (model.Product, error) {
	if productID <= 0 {
		return model.Product{}, NewError(KindValidation, "invalid product id")
	}

	p, err := u.products.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewError(KindNotFound, "product not found")
	}
	if err != nil {
		return model.Product{}, storageError(ctx, "product.find", err)
	}
	return p, nil
}

type ProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Category    string
	Stock       int64
	Image       string
}

func (u *CatalogUsecase) CreateProduct(ctx context.Context, adminUserID int64, in ProductInput) (model.Product, error) {
	if adminUserID <= 0 {
		return model.Product{}, ErrUnauthorized
	}
	p, err := u.validateProduct(ctx, in)
	if err != nil {
		return model.Product{}, err
	}

	created, err := u.products.Create(ctx, p)
	if err != nil {
		return model.Product{}, storageError(ctx, "product.create", err)
	}
	return created, nil
}

// UpdateProduct は変更可能な項目をすべて置き換える。
func (u *CatalogUsecase) UpdateProduct(ctx context.Context, adminUserID int64, productID int64, in ProductInput) (model.Product, error) {
	if adminUserID <= 0 {
		return model.Product{}, ErrUnauthorized
	}
	if productID <= 0 {
		return model.Product{}, NewError(KindValidation, "invalid product id")
	}
	p, err := u.validateProduct(ctx, in)
	if err != nil {
		return model.Product{}, err
	}
	p.ID = productID

	err = u.products.Update(ctx, p)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewError(KindNotFound, "product not found")
	}
	if err != nil {
		return model.Product{}, storageError(ctx, "product.update", err)
	}
	return u.GetProduct(ctx, productID)
}

// 過去の注文明細が参照するので論理削除。
func (u *CatalogUsecase) DeleteProduct(ctx context.Context, adminUserID int64, productID int64) error {
	if adminUserID <= 0 {
		return ErrUnauthorized
	}
	if productID <= 0 {
		return NewError(KindValidation, "invalid product id")
	}

	err := u.products.SoftDelete(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewError(KindNotFound, "product not found")
	}
	if err != nil {
		return storageError(ctx, "product.delete", err)
	}
	return nil
}

// AdminUpdateInventory は在庫を指定値にし、調整履歴と監査ログを同じtxで残す。
func (u *CatalogUsecase) AdminUpdateInventory(ctx context.Context, adminUserID int64, productID int64, newStock int64, reason string) error {
	if adminUserID <= 0 {
		return ErrUnauthorized
	}
	if productID <= 0 {
		return NewError(KindValidation, "invalid product id")
	}
	if newStock < 0 {
		return NewError(KindValidation, "stock must be >= 0")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return NewError(KindValidation, "reason required")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//変更前の在庫（before）
		p, err := r.Products().FindByID(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewError(KindNotFound, "product not found")
		}
		if err != nil {
			return err
		}

		if err := r.Inventory().SetStock(ctx, productID, newStock); err != nil {
			return err
		}

		if err := r.Inventory().CreateAdjustment(ctx, model.InventoryAdjustment{
			ProductID:   productID,
			AdminUserID: adminUserID,
			Delta:       newStock - p.Stock,
			Reason:      reason,
		}); err != nil {
			return err
		}

		before, _ := json.Marshal(map[string]int64{"stock": p.Stock})
		after, _ := json.Marshal(map[string]any{"stock": newStock, "reason": reason})
		return r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  adminUserID,
			Action:       model.AuditActionUpdateStock,
			ResourceType: model.AuditResourceProduct,
			ResourceID:   productID,
			BeforeJSON:   string(before),
			AfterJSON:    string(after),
		})
	})
	if err != nil {
		return passThrough(ctx, "inventory.update", err)
	}
	return nil
}

func (u *CatalogUsecase) ListCategories(ctx context.Context) ([]model.Category, error) {
	list, err := u.categories.List(ctx)
	if err != nil {
		return nil, storageError(ctx, "category.list", err)
	}
	return list, nil
}

func (u *CatalogUsecase) CreateCategory(ctx context.Context, adminUserID int64, name, description string) (model.Category, error) {
	if adminUserID <= 0 {
		return model.Category{}, ErrUnauthorized
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Category{}, NewError(KindValidation, "name required")
	}
	if len(name) > 100 {
		return model.Category{}, NewError(KindValidation, "name too long")
	}

	c, err := u.categories.Create(ctx, model.Category{Name: name, Description: strings.TrimSpace(description)})
	if errors.Is(err, repo.ErrDuplicate) {
		return model.Category{}, NewError(KindConflict, "category already exists")
	}
	if err != nil {
		return model.Category{}, storageError(ctx, "category.create", err)
	}
	return c, nil
}

// DeleteCategory は商品が1件でも参照していれば削除しない。
func (u *CatalogUsecase) DeleteCategory(ctx context.Context, adminUserID int64, categoryID int64) error {
	if adminUserID <= 0 {
		return ErrUnauthorized
	}
	if categoryID <= 0 {
		return NewError(KindValidation, "invalid category id")
	}

	// 件数確認と削除を同じtxで行う
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		c, err := r.Categories().FindByID(ctx, categoryID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewError(KindNotFound, "category not found")
		}
		if err != nil {
			return err
		}

		n, err := r.Products().CountByCategory(ctx, c.Name)
		if err != nil {
			return err
		}
		if n > 0 {
			return &Error{Kind: KindReferentialIntegrity, Message: "category has products"}
		}

		err = r.Categories().Delete(ctx, categoryID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewError(KindNotFound, "category not found")
		}
		return err
	})
	if err != nil {
		return passThrough(ctx, "category.delete", err)
	}
	return nil
}

func (u *CatalogUsecase) validateProduct(ctx context.Context, in ProductInput) (model.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.Product{}, NewError(KindValidation, "name required")
	}
	if in.Price.IsNegative() {
		return model.Product{}, NewError(KindValidation, "price must be >= 0")
	}
	if in.Stock < 0 {
		return model.Product{}, NewError(KindValidation, "stock must be >= 0")
	}

	category := strings.TrimSpace(in.Category)
	if category != "" {
		_, err := u.categories.FindByName(ctx, category)
		if errors.Is(err, repo.ErrNotFound) {
			return model.Product{}, NewError(KindValidation, "unknown category")
		}
		if err != nil {
			return model.Product{}, storageError(ctx, "category.find", err)
		}
	}

	return model.Product{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price.Round(2),
		Category:    category,
		Stock:       in.Stock,
		Image:       strings.TrimSpace(in.Image),
	}, nil
}
