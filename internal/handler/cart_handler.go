package handler

import (
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type CartHandler struct {
	uc *usecase.CartUsecase
}

// DI
func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

type AddCartRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity *int64 `json:"quantity"`
}

type CartCountResponse struct {
	Count int64 `json:"count"`
}

// /cart, /cart/items/:product_id を登録
func (h *CartHandler) RegisterRoutes(e *echo.Echo, guards Guards) {
	g := e.Group("/cart", guards.Auth...)

	g.GET("", h.getCart)
	g.GET("/count", h.count)
	g.POST("/items", h.addItem)
	g.PUT("/items/:product_id", h.setQuantity)
	g.DELETE("/items/:product_id", h.removeItem)
	g.DELETE("", h.clear)
}

func (h *CartHandler) getCart(c echo.Context) error {
	userID, found := middleware.CurrentUserID(c)
	if !found {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}

	out, err := h.uc.GetCart(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) count(c echo.Context) error {
	userID, found := middleware.CurrentUserID(c)
	if !found {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}

	n, err := h.uc.Count(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, CartCountResponse{Count: n})
}

func (h *CartHandler) addItem(c echo.Context) error {
	userID, found := middleware.CurrentUserID(c)
	if !found {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}

	var req AddCartRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if req.ProductID <= 0 {
		return fail(c, http.StatusBadRequest, "invalid product_id")
	}
	// 数量省略時は1個
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	if err := h.uc.AddItem(c.Request().Context(), userID, req.ProductID, req.Quantity); err != nil {
		return writeError(c, err)
	}
	return ok(c, "added to cart")
}

// quantity=0 は削除と同じ
func (h *CartHandler) setQuantity(c echo.Context) error {
	userID, found := middleware.CurrentUserID(c)
	if !found {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}

	productID, valid := paramID(c, "product_id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid product_id")
	}

	var req UpdateCartItemRequest
	if err := c.Bind(&req); err != nil || req.Quantity == nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}

	if err := h.uc.SetQuantity(c.Request().Context(), userID, productID, *req.Quantity); err != nil {
		return writeError(c, err)
	}
	return ok(c, "cart updated")
}

func (h *CartHandler) removeItem(c echo.Context) error {
	userID, found := middleware.CurrentUserID(c)
	if !found {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}

	productID, valid := paramID(c, "product_id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid product_id")
	}

	if err := h.uc.RemoveItem(c.Request().Context(), userID, productID); err != nil {
		return writeError(c, err)
	}
	return ok(c, "removed from cart")
}

func (h *CartHandler) clear(c echo.Context) error {
	userID, found := middleware.CurrentUserID(c)
	if !found {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}

	if err := h.uc.Clear(c.Request().Context(), userID); err != nil {
		return writeError(c, err)
	}
	return ok(c, "cart cleared")
}
