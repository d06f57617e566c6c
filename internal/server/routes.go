package server

import (
	"context"
	"net/http"

	"storefront/internal/handler"

	"github.com/labstack/echo/v4"
)

// Handlers はルートに載せるhandlerの一覧。
type Handlers struct {
	Auth         *handler.AuthHandler
	Product      *handler.ProductHandler
	Cart         *handler.CartHandler
	Order        *handler.OrderHandler
	Address      *handler.AddressHandler
	AdminProduct *handler.AdminProductHandler
	AdminOrder   *handler.AdminOrderHandler
	AdminUser    *handler.AdminUserHandler
}

func RegisterRoutes(e *echo.Echo, h Handlers, guards handler.Guards) {
	h.Auth.RegisterRoutes(e, guards)
	h.Product.RegisterRoutes(e)
	h.Cart.RegisterRoutes(e, guards)
	h.Order.RegisterRoutes(e, guards)
	h.Address.RegisterRoutes(e, guards)
	h.AdminProduct.RegisterRoutes(e, guards)
	h.AdminOrder.RegisterRoutes(e, guards)
	h.AdminUser.RegisterRoutes(e, guards)
}

type healthResponse struct {
	Status string `json:"status"`
	DB     string `json:"db"`
}

// DBに届かなければ503
func healthz(ping func(context.Context) error) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, healthResponse{Status: "degraded", DB: "down"})
		}
		return c.JSON(http.StatusOK, healthResponse{Status: "ok", DB: "up"})
	}
}
