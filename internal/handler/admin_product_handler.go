package handler

import (
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// priceは "19.99" のような文字列でも数値でも受け付ける
type ProductCreateRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Stock       int64           `json:"stock"`
	Image       string          `json:"image"`
}

// InventoryUpdateRequest は在庫更新の入力です。
type InventoryUpdateRequest struct {
	Stock  *int64 `json:"stock"`
	Reason string `json:"reason"`
}

type CategoryCreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// /admin/products, /admin/inventory, /admin/categories をまとめる
type AdminProductHandler struct {
	uc *usecase.CatalogUsecase
}

// DI
func NewAdminProductHandler(uc *usecase.CatalogUsecase) *AdminProductHandler {
	return &AdminProductHandler{uc: uc}
}

func (h *AdminProductHandler) RegisterRoutes(e *echo.Echo, guards Guards) {
	admin := e.Group("/admin", guards.Admin...)

	admin.POST("/products", h.createProduct)
	admin.PUT("/products/:id", h.updateProduct)
	admin.DELETE("/products/:id", h.deleteProduct)
	admin.PUT("/inventory/:product_id", h.updateInventory)
	admin.POST("/categories", h.createCategory)
	admin.DELETE("/categories/:id", h.deleteCategory)
}

func (h *AdminProductHandler) createProduct(c echo.Context) error {
	var req ProductCreateRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}

	adminID, found := middleware.CurrentUserID(c)
	if !found {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}

	p, err := h.uc.CreateProduct(c.Request().Context(), adminID, req.input())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *AdminProductHandler) updateProduct(c echo.Context) error {
	id, valid := paramID(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid id")
	}

	var req ProductCreateRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}

	adminID, found := middleware.CurrentUserID(c)
	if !found {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}

	p, err := h.uc.UpdateProduct(c.Request().Context(), adminID, id, req.input())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *AdminProductHandler) deleteProduct(c echo.Context) error {
	id, valid := paramID(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid id")
	}

	adminID, found := middleware.CurrentUserID(c)
	if !found {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}

	if err := h.uc.DeleteProduct(c.Request().Context(), adminID, id); err != nil {
		return writeError(c, err)
	}
	return ok(c, "deleted")
}

func (h *AdminProductHandler) updateInventory(c echo.Context) error {
	productID, valid := paramID(c, "product_id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid product_id")
	}

	var req InventoryUpdateRequest
	if err := c.Bind(&req); err != nil || req.Stock == nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}

	adminID, found := middleware.CurrentUserID(c)
	if !found {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}

	if err := h.uc.AdminUpdateInventory(c.Request().Context(), adminID, productID, *req.Stock, req.Reason); err != nil {
		return writeError(c, err)
	}
	return ok(c, "stock updated")
}

func (h *AdminProductHandler) createCategory(c echo.Context) error {
	var req CategoryCreateRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}

	adminID, found := middleware.CurrentUserID(c)
	if !found {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}

	cat, err := h.uc.CreateCategory(c.Request().Context(), adminID, req.Name, req.Description)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, cat)
}

// 商品が残っているカテゴリは409
func (h *AdminProductHandler) deleteCategory(c echo.Context) error {
	id, valid := paramID(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid id")
	}

	adminID, found := middleware.CurrentUserID(c)
	if !found {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}

	if err := h.uc.DeleteCategory(c.Request().Context(), adminID, id); err != nil {
		return writeError(c, err)
	}
	return ok(c, "deleted")
}

func (r ProductCreateRequest) input() usecase.ProductInput {
	return usecase.ProductInput{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Category:    r.Category,
		Stock:       r.Stock,
		Image:       r.Image,
	}
}
