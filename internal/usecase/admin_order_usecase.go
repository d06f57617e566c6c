package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

type AdminOrderUsecase struct {
	tx        repo.TransactionManager
	orders    repo.OrderRepository
	items     repo.OrderItemRepository
	publisher EventPublisher
	metrics   OrderMetrics
	clock     Clock
}

// publisher/metricsはnilなら何もしない実装になる。
func NewAdminOrderUsecase(tx repo.TransactionManager, orders repo.OrderRepository, items repo.OrderItemRepository, publisher EventPublisher, metrics OrderMetrics) *AdminOrderUsecase {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &AdminOrderUsecase{
		tx:        tx,
		orders:    orders,
		items:     items,
		publisher: publisher,
		metrics:   metrics,
		clock:     systemClock{},
	}
}

type AdminOrderListOutput struct {
	Items []OrderSummaryOutput `json:"items"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}

func (u *AdminOrderUsecase) List(ctx context.Context, f repo.AdminOrderListFilter) (AdminOrderListOutput, error) {
	if f.Page < 1 {
		return AdminOrderListOutput{}, NewError(KindValidation, "invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return AdminOrderListOutput{}, NewError(KindValidation, "invalid limit")
	}
	if f.Status != "" {
		if _, ok := model.ParseOrderStatus(f.Status); !ok {
			return AdminOrderListOutput{}, NewError(KindValidation, "invalid status")
		}
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return AdminOrderListOutput{}, NewError(KindValidation, "from must be before to")
	}

	list, total, err := u.orders.ListAdmin(ctx, f)
	if err != nil {
		return AdminOrderListOutput{}, storageError(ctx, "order.list_admin", err)
	}

	out := AdminOrderListOutput{Items: make([]OrderSummaryOutput, 0, len(list)), Total: total, Page: f.Page, Limit: f.Limit}
	for _, s := range list {
		out.Items = append(out.Items, toOrderSummaryOutput(s))
	}
	return out, nil
}

func (u *AdminOrderUsecase) Get(ctx context.Context, orderID int64) (OrderOutput, error) {
	if orderID <= 0 {
		return OrderOutput{}, NewError(KindValidation, "invalid id")
	}
	o, err := u.orders.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return OrderOutput{}, NewError(KindNotFound, "order not found")
	}
	if err != nil {
		return OrderOutput{}, storageError(ctx, "order.find", err)
	}
	items, err := u.items.ListByOrderID(ctx, orderID)
	if err != nil {
		return OrderOutput{}, storageError(ctx, "order_item.list", err)
	}
	return toOrderOutput(o, items), nil
}

// UpdateStatus はステータスを進める。CANCELEDにしたときは在庫を戻す。
// 同じステータスへの更新は何もせず成功。
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, actorAdminUserID, orderID int64, status string) error {
	if actorAdminUserID <= 0 {
		return ErrUnauthorized
	}
	if orderID <= 0 {
		return NewError(KindValidation, "invalid id")
	}
	next, ok := model.ParseOrderStatus(strings.ToUpper(strings.TrimSpace(status)))
	if !ok {
		return NewError(KindValidation, "invalid status")
	}

	var (
		before  model.Order
		changed bool
	)
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewError(KindNotFound, "order not found")
		}
		if err != nil {
			return err
		}
		before = o

		if o.Status == next {
			return nil
		}
		if !o.Status.CanTransitionTo(next) {
			return NewError(KindConflict, fmt.Sprintf("cannot change %s order to %s", o.Status, next))
		}

		if next == model.OrderStatusCanceled {
			items, err := r.OrderItems().ListByOrderID(ctx, orderID)
			if err != nil {
				return err
			}
			for _, it := range items {
				if err := r.Inventory().IncreaseStock(ctx, it.ProductID, it.Quantity); err != nil {
					return err
				}
			}
		}

		if err := r.Orders().UpdateStatus(ctx, orderID, next); err != nil {
			return err
		}

		//監査ログ
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actorAdminUserID,
			Action:       model.AuditActionUpdateOrderStatus,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			BeforeJSON:   fmt.Sprintf(`{"status":%q}`, o.Status),
			AfterJSON:    fmt.Sprintf(`{"status":%q}`, next),
		}); err != nil {
			return err
		}
		changed = true
		return nil
	})
	if err != nil {
		return passThrough(ctx, "order.update_status", err)
	}

	if changed {
		u.metrics.RecordStatusChange(string(next))
		publish(ctx, u.publisher, model.OrderEvent{
			Type:           model.OrderEventStatusChanged,
			OrderID:        before.ID,
			OrderNumber:    before.OrderNumber,
			UserID:         before.UserID,
			Status:         next,
			PreviousStatus: before.Status,
			Total:          before.Total,
			OccurredAt:     u.clock.Now(),
		})
	}
	return nil
}
