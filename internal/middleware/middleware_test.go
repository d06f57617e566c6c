package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/infra/auth"
	"storefront/internal/logging"
	"storefront/internal/repository"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type userRepoMock struct {
	mock.Mock
	repository.UserRepository
}

func (m *userRepoMock) FindByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

const secret = "test-secret"

func bearer(t *testing.T, userID int64, role model.Role, tv int) string {
	t.Helper()
	tok, _, err := auth.NewJWTIssuer(secret, time.Minute).Issue(userID, role, tv, time.Now())
	require.NoError(t, err)
	return "Bearer " + tok
}

// ガードを通過したらuser_idを返すだけのルート
func newGuardedEcho(users repository.UserRepository, admin bool) *echo.Echo {
	e := echo.New()
	chain := []echo.MiddlewareFunc{AuthJWT(auth.NewJWTIssuer(secret, time.Minute)), TokenVersionGuard(users)}
	if admin {
		chain = append(chain, AdminRoleGuard())
	}
	e.GET("/private", func(c echo.Context) error {
		id, _ := CurrentUserID(c)
		return c.JSON(http.StatusOK, map[string]int64{"user_id": id})
	}, chain...)
	return e
}

func do(e *echo.Echo, authz string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	if authz != "" {
		req.Header.Set(echo.HeaderAuthorization, authz)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuthJWT_RejectsBadHeaders(t *testing.T) {
	e := newGuardedEcho(&userRepoMock{}, false)
	expired, _, err := auth.NewJWTIssuer(secret, time.Minute).Issue(1, model.RoleUser, 0, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	for name, h := range map[string]string{
		"missing":      "",
		"not bearer":   "Basic abc",
		"empty token":  "Bearer ",
		"garbage":      "Bearer not-a-jwt",
		"expired":      "Bearer " + expired,
		"wrong secret": "Bearer " + mustIssue(t, "other", 1),
	} {
		t.Run(name, func(t *testing.T) {
			rec := do(e, h)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"success":false,"error":"unauthorized"}`, rec.Body.String())
		})
	}
}

func mustIssue(t *testing.T, key string, userID int64) string {
	t.Helper()
	tok, _, err := auth.NewJWTIssuer(key, time.Minute).Issue(userID, model.RoleUser, 0, time.Now())
	require.NoError(t, err)
	return tok
}

func TestTokenVersionGuard(t *testing.T) {
	cases := []struct {
		name   string
		user   *model.User
		err    error
		tv     int
		status int
	}{
		{"current version", &model.User{ID: 7, Role: model.RoleUser, TokenVersion: 2, IsActive: true}, nil, 2, http.StatusOK},
		{"stale version", &model.User{ID: 7, Role: model.RoleUser, TokenVersion: 3, IsActive: true}, nil, 2, http.StatusUnauthorized},
		{"inactive", &model.User{ID: 7, Role: model.RoleUser, TokenVersion: 2}, nil, 2, http.StatusForbidden},
		{"deleted user", nil, repository.ErrNotFound, 2, http.StatusUnauthorized},
		{"db down", nil, errors.New("connection refused"), 2, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			users := &userRepoMock{}
			users.On("FindByID", mock.Anything, int64(7)).Return(tc.user, tc.err)

			rec := do(newGuardedEcho(users, false), bearer(t, 7, model.RoleUser, tc.tv))
			assert.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusOK {
				assert.JSONEq(t, `{"user_id":7}`, rec.Body.String())
			}
			users.AssertExpectations(t)
		})
	}
}

func TestAdminRoleGuard(t *testing.T) {
	users := &userRepoMock{}
	users.On("FindByID", mock.Anything, int64(1)).Return(&model.User{ID: 1, TokenVersion: 0, IsActive: true}, nil)
	e := newGuardedEcho(users, true)

	assert.Equal(t, http.StatusForbidden, do(e, bearer(t, 1, model.RoleUser, 0)).Code)
	assert.Equal(t, http.StatusOK, do(e, bearer(t, 1, model.RoleAdmin, 0)).Code)
}

func TestAdminRoleGuard_WithoutAuth(t *testing.T) {
	e := echo.New()
	e.GET("/private", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, AdminRoleGuard())

	assert.Equal(t, http.StatusUnauthorized, do(e, "").Code)
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	e.Use(echomw.RequestID(), RequestLogger(logging.NewWithWriter("info", &buf)))

	e.GET("/ok", func(c echo.Context) error {
		// ハンドラ内のロガーにもrequest_idが付く
		logging.FromContext(c.Request().Context()).Info("inside handler")
		return c.NoContent(http.StatusNoContent)
	})
	e.GET("/boom", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTeapot, "nope")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rid := rec.Header().Get(echo.HeaderXRequestID)
	require.NotEmpty(t, rid)
	assert.Contains(t, buf.String(), `"msg":"inside handler"`)
	assert.Contains(t, buf.String(), `"request_id":"`+rid+`"`)
	assert.Contains(t, buf.String(), `"path":"/ok"`)

	// エラーはRequestLoggerの中でレスポンスに変換される
	buf.Reset()
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Contains(t, buf.String(), `"level":"ERROR"`)
	assert.Contains(t, buf.String(), `"status":418`)
}
