package usecase_test

import (
	"context"
	"testing"

	"storefront/internal/domain/model"
	"storefront/internal/usecase"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// placeOrder はqty個をカートに入れて注文する。
func placeOrder(t *testing.T, s *stack, userID, productID, qty int64) usecase.OrderOutput {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.cart.AddItem(ctx, userID, productID, qty))
	out, err := s.orders.CreateOrder(ctx, userID, card("1 Main St"))
	require.NoError(t, err)
	return out
}

func TestAdminUpdateStatus_CancelRestoresStock(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	admin := dbtestAdmin(t, s)
	u := s.user(t, "cancel@example.com")
	p := s.product(t, "Kettle", "30.00", 5)
	o := placeOrder(t, s, u.ID, p.ID, 2)
	require.Equal(t, int64(3), s.stock(t, p.ID))

	require.NoError(t, s.adminOrder.UpdateStatus(ctx, admin.ID, o.ID, "canceled"))

	assert.Equal(t, int64(5), s.stock(t, p.ID))
	got, err := s.adminOrder.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, string(model.OrderStatusCanceled), got.Status)

	var logs []model.AuditLog
	require.NoError(t, s.gdb.Where("action = ?", model.AuditActionUpdateOrderStatus).Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, admin.ID, logs[0].ActorUserID)
	assert.Equal(t, o.ID, logs[0].ResourceID)
	assert.JSONEq(t, `{"status":"PENDING"}`, logs[0].BeforeJSON)
	assert.JSONEq(t, `{"status":"CANCELED"}`, logs[0].AfterJSON)

	evs := s.pub.Events()
	require.Len(t, evs, 2)
	assert.Equal(t, model.OrderEventStatusChanged, evs[1].Type)
	assert.Equal(t, model.OrderStatusPending, evs[1].PreviousStatus)
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.StatusChangeCounter(string(model.OrderStatusCanceled))))

	// 終端からは動かせない
	err = s.adminOrder.UpdateStatus(ctx, admin.ID, o.ID, "PROCESSING")
	assert.Equal(t, usecase.KindConflict, usecase.KindOf(err))
	assert.Equal(t, int64(5), s.stock(t, p.ID))
}

func TestAdminUpdateStatus_Transitions(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	admin := dbtestAdmin(t, s)
	u := s.user(t, "flow@example.com")
	p := s.product(t, "Kettle", "30.00", 5)
	o := placeOrder(t, s, u.ID, p.ID, 1)

	for _, st := range []string{"PROCESSING", "SHIPPED", "DELIVERED"} {
		require.NoError(t, s.adminOrder.UpdateStatus(ctx, admin.ID, o.ID, st), st)
	}
	// 配送済みはキャンセル不可、在庫も戻らない
	err := s.adminOrder.UpdateStatus(ctx, admin.ID, o.ID, "CANCELED")
	assert.Equal(t, usecase.KindConflict, usecase.KindOf(err))
	assert.Equal(t, int64(4), s.stock(t, p.ID))
}

func TestAdminUpdateStatus_SameStatusIsNoop(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	admin := dbtestAdmin(t, s)
	u := s.user(t, "noop@example.com")
	p := s.product(t, "Kettle", "30.00", 5)
	o := placeOrder(t, s, u.ID, p.ID, 1)

	require.NoError(t, s.adminOrder.UpdateStatus(ctx, admin.ID, o.ID, "PENDING"))
	assert.Zero(t, s.countRows(t, &model.AuditLog{}))
	assert.Len(t, s.pub.Events(), 1)
}

func TestAdminUpdateStatus_Errors(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	admin := dbtestAdmin(t, s)

	err := s.adminOrder.UpdateStatus(ctx, admin.ID, 1, "LOST")
	assert.Equal(t, usecase.KindValidation, usecase.KindOf(err))

	err = s.adminOrder.UpdateStatus(ctx, admin.ID, 9999, "SHIPPED")
	assert.ErrorIs(t, err, usecase.ErrNotFound)

	err = s.adminOrder.UpdateStatus(ctx, 0, 1, "SHIPPED")
	assert.ErrorIs(t, err, usecase.ErrUnauthorized)
}

func TestAdminListOrders(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	admin := dbtestAdmin(t, s)
	u := s.user(t, "list@example.com")
	p := s.product(t, "Kettle", "30.00", 10)
	first := placeOrder(t, s, u.ID, p.ID, 1)
	placeOrder(t, s, u.ID, p.ID, 2)
	require.NoError(t, s.adminOrder.UpdateStatus(ctx, admin.ID, first.ID, "SHIPPED"))

	out, err := s.adminOrder.List(ctx, repoFilter("SHIPPED"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), out.Total)
	require.Len(t, out.Items, 1)
	assert.Equal(t, first.OrderNumber, out.Items[0].OrderNumber)

	_, err = s.adminOrder.List(ctx, repoFilter("LOST"))
	assert.Equal(t, usecase.KindValidation, usecase.KindOf(err))
}
