package handler

import (
	"errors"
	"net/http"
	"strconv"

	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// 在庫不足のときだけ商品の情報も返す
type InsufficientStockResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	ProductID int64  `json:"product_id"`
	Requested int64  `json:"requested"`
	Available int64  `json:"available"`
}

// Guards は各handlerのRegisterRoutesに渡す認証ミドルウェアの組。
// Auth: JWT + token_version, Admin: それに加えてADMIN限定。
type Guards struct {
	Auth  []echo.MiddlewareFunc
	Admin []echo.MiddlewareFunc
}

func NewGuards(parser middleware.TokenParser, users repository.UserRepository) Guards {
	auth := []echo.MiddlewareFunc{
		middleware.AuthJWT(parser),
		middleware.TokenVersionGuard(users),
	}
	admin := append(append([]echo.MiddlewareFunc{}, auth...), middleware.AdminRoleGuard())
	return Guards{Auth: auth, Admin: admin}
}

func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, ErrorResponse{Success: false, Error: msg})
}

func ok(c echo.Context, msg string) error {
	return c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: msg})
}

// usecaseのエラーをHTTPに変換する
func writeError(c echo.Context, err error) error {
	var ise *usecase.InsufficientStockError
	if errors.As(err, &ise) {
		return c.JSON(http.StatusConflict, InsufficientStockResponse{
			Success:   false,
			Error:     ise.Error(),
			ProductID: ise.ProductID,
			Requested: ise.Requested,
			Available: ise.Available,
		})
	}

	msg := "internal error"
	if e, found := usecase.AsError(err); found && e.Kind != usecase.KindStorage {
		msg = e.Message
	}
	return fail(c, statusOf(usecase.KindOf(err)), msg)
}

func statusOf(kind usecase.Kind) int {
	switch kind {
	case usecase.KindValidation, usecase.KindEmptyCart:
		return http.StatusBadRequest
	case usecase.KindUnauthorized:
		return http.StatusUnauthorized
	case usecase.KindForbidden:
		return http.StatusForbidden
	case usecase.KindNotFound:
		return http.StatusNotFound
	case usecase.KindConflict, usecase.KindInsufficientStock, usecase.KindReferentialIntegrity:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// パスパラメータを正のint64として読む
func paramID(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func queryInt(c echo.Context, name string, def int) (int, bool) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}
