package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestWriteError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"validation", usecase.NewError(usecase.KindValidation, "quantity must be >= 1"), http.StatusBadRequest, `{"success":false,"error":"quantity must be >= 1"}`},
		{"empty cart", usecase.ErrEmptyCart, http.StatusBadRequest, `{"success":false,"error":"cart is empty"}`},
		{"unauthorized", usecase.ErrUnauthorized, http.StatusUnauthorized, `{"success":false,"error":"unauthorized"}`},
		{"forbidden", usecase.ErrForbidden, http.StatusForbidden, `{"success":false,"error":"forbidden"}`},
		{"not found", usecase.NewError(usecase.KindNotFound, "order not found"), http.StatusNotFound, `{"success":false,"error":"order not found"}`},
		{"conflict", usecase.NewError(usecase.KindConflict, "email already used"), http.StatusConflict, `{"success":false,"error":"email already used"}`},
		{"raw error is hidden", errors.New("pq: connection refused"), http.StatusInternalServerError, `{"success":false,"error":"internal error"}`},
		{
			"insufficient stock",
			&usecase.InsufficientStockError{ProductID: 3, ProductName: "Mug", Requested: 5, Available: 2},
			http.StatusConflict,
			`{"success":false,"error":"insufficient stock for \"Mug\": requested 5, available 2","product_id":3,"requested":5,"available":2}`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			assert.NoError(t, writeError(c, tc.err))
			assert.Equal(t, tc.status, rec.Code)
			assert.JSONEq(t, tc.body, rec.Body.String())
		})
	}
}

func TestParamIDAndQueryInt(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/?page=2&limit=-1&bad=x", nil), httptest.NewRecorder())
	c.SetParamNames("id", "zero")
	c.SetParamValues("42", "0")

	id, valid := paramID(c, "id")
	assert.True(t, valid)
	assert.Equal(t, int64(42), id)
	_, valid = paramID(c, "zero")
	assert.False(t, valid)

	page, valid := queryInt(c, "page", 1)
	assert.True(t, valid)
	assert.Equal(t, 2, page)
	def, valid := queryInt(c, "missing", 7)
	assert.True(t, valid)
	assert.Equal(t, 7, def)
	_, valid = queryInt(c, "limit", 1)
	assert.False(t, valid)
	_, valid = queryInt(c, "bad", 1)
	assert.False(t, valid)
}
