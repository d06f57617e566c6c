package handler

import (
	"net/http"
	"strconv"

	"storefront/internal/domain/model"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminUserHandler struct {
	accounts *usecase.AccountUsecase
	audits   *usecase.AuditUsecase
}

func NewAdminUserHandler(accounts *usecase.AccountUsecase, audits *usecase.AuditUsecase) *AdminUserHandler {
	return &AdminUserHandler{accounts: accounts, audits: audits}
}

type RoleUpdateRequest struct {
	Role string `json:"role"`
}

func (h *AdminUserHandler) RegisterRoutes(e *echo.Echo, guards Guards) {
	// /admin 配下は全部「JWT必須 + token_version一致 + ADMIN限定」
	admin := e.Group("/admin", guards.Admin...)

	admin.GET("/users", h.list)
	admin.PUT("/users/:id/role", h.updateRole)
	admin.POST("/users/:id/force-logout", h.forceLogout)
	admin.GET("/audit-logs", h.auditLogs)
}

func (h *AdminUserHandler) list(c echo.Context) error {
	page, valid := queryInt(c, "page", 1)
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid page")
	}
	limit, valid := queryInt(c, "limit", 50)
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid limit")
	}

	out, err := h.accounts.ListUsers(c.Request().Context(), page, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminUserHandler) updateRole(c echo.Context) error {
	targetID, valid := paramID(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid user_id")
	}

	var req RoleUpdateRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}

	adminID, found := middleware.CurrentUserID(c)
	if !found {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}

	user, err := h.accounts.UpdateRole(c.Request().Context(), adminID, targetID, req.Role)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AdminUserHandler) forceLogout(c echo.Context) error {
	targetID, valid := paramID(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid user_id")
	}

	adminID, found := middleware.CurrentUserID(c)
	if !found {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}

	res, err := h.accounts.ForceLogout(c.Request().Context(), adminID, targetID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *AdminUserHandler) auditLogs(c echo.Context) error {
	f := repository.AuditLogFilter{}

	limit, valid := queryInt(c, "limit", 50)
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid limit")
	}
	offset, valid := queryInt(c, "offset", 0)
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid offset")
	}
	f.Limit, f.Offset = limit, offset

	for name, dst := range map[string]**int64{
		"actor_user_id": &f.ActorUserID,
		"resource_id":   &f.ResourceID,
	} {
		if v := c.QueryParam(name); v != "" {
			id, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return fail(c, http.StatusBadRequest, "invalid "+name)
			}
			*dst = &id
		}
	}
	if v := c.QueryParam("action"); v != "" {
		a := model.AuditAction(v)
		f.Action = &a
	}
	if v := c.QueryParam("resource_type"); v != "" {
		rt := model.AuditResourceType(v)
		f.ResourceType = &rt
	}

	var err error
	if f.CreatedFrom, err = queryTime(c, "from"); err != nil {
		return fail(c, http.StatusBadRequest, "invalid from")
	}
	if f.CreatedTo, err = queryTime(c, "to"); err != nil {
		return fail(c, http.StatusBadRequest, "invalid to")
	}

	logs, err := h.audits.List(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, logs)
}
