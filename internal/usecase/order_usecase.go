package usecase

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/logging"
	"storefront/internal/metrics"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
)

// 受け付ける支払い方法
var paymentMethods = map[string]bool{
	"card":             true,
	"transfer":         true,
	"cash_on_delivery": true,
	"paypal":           true,
}

type OrderUsecase struct {
	tx        repo.TransactionManager
	orders    repo.OrderRepository
	items     repo.OrderItemRepository
	shipping  ShippingPolicy
	publisher EventPublisher
	metrics   OrderMetrics
	clock     Clock
}

type OrderOption func(*OrderUsecase)

func WithShippingPolicy(p ShippingPolicy) OrderOption {
	return func(u *OrderUsecase) { u.shipping = p }
}

func WithEventPublisher(p EventPublisher) OrderOption {
	return func(u *OrderUsecase) { u.publisher = p }
}

func WithOrderMetrics(m OrderMetrics) OrderOption {
	return func(u *OrderUsecase) { u.metrics = m }
}

func WithClock(c Clock) OrderOption {
	return func(u *OrderUsecase) { u.clock = c }
}

func NewOrderUsecase(tx repo.TransactionManager, orders repo.OrderRepository, items repo.OrderItemRepository, opts ...OrderOption) *OrderUsecase {
	u := &OrderUsecase{
		tx:        tx,
		orders:    orders,
		items:     items,
		shipping:  DefaultShippingPolicy(),
		publisher: noopPublisher{},
		metrics:   noopMetrics{},
		clock:     systemClock{},
	}
	for _, o := range opts {
		o(u)
	}
	return u
}

// 配送先はShippingAddress（文字列）かAddressID（登録済み住所）のどちらか。
type CreateOrderInput struct {
	ShippingAddress string
	AddressID       int64
	PaymentMethod   string
	Discount        decimal.Decimal
}

type OrderItemOutput struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int64           `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type OrderOutput struct {
	ID              int64             `json:"id"`
	OrderNumber     string            `json:"order_number"`
	UserID          int64             `json:"user_id"`
	Status          string            `json:"status"`
	ShippingAddress string            `json:"shipping_address"`
	PaymentMethod   string            `json:"payment_method"`
	Subtotal        decimal.Decimal   `json:"subtotal"`
	ShippingFee     decimal.Decimal   `json:"shipping_fee"`
	Discount        decimal.Decimal   `json:"discount"`
	Total           decimal.Decimal   `json:"total"`
	CreatedAt       time.Time         `json:"created_at"`
	Items           []OrderItemOutput `json:"items"`
}

// CreateOrder はカートから注文を作る。
// 在庫確認・注文作成・在庫減算・カート削除は1つのトランザクションで行い、
// どこかで失敗したら何も残らない。
func (u *OrderUsecase) CreateOrder(ctx context.Context, userID int64, in CreateOrderInput) (OrderOutput, error) {
	out, err := u.createOrder(ctx, userID, in)
	u.metrics.RecordCheckout(checkoutOutcome(err))
	if err != nil {
		return OrderOutput{}, err
	}

	u.publish(ctx, model.OrderEvent{
		Type:        model.OrderEventCreated,
		OrderID:     out.ID,
		OrderNumber: out.OrderNumber,
		UserID:      userID,
		Status:      model.OrderStatus(out.Status),
		Total:       out.Total,
		OccurredAt:  u.clock.Now(),
	})
	return out, nil
}

func (u *OrderUsecase) createOrder(ctx context.Context, userID int64, in CreateOrderInput) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, ErrUnauthorized
	}
	payment := strings.TrimSpace(in.PaymentMethod)
	if payment == "" {
		return OrderOutput{}, NewError(KindValidation, "payment_method required")
	}
	if !paymentMethods[payment] {
		return OrderOutput{}, NewError(KindValidation, "invalid payment_method")
	}
	shippingText := strings.TrimSpace(in.ShippingAddress)
	if shippingText == "" && in.AddressID <= 0 {
		return OrderOutput{}, NewError(KindValidation, "shipping_address required")
	}
	if in.Discount.IsNegative() {
		return OrderOutput{}, NewError(KindValidation, "discount must be >= 0")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//登録済み住所は本人のものだけ
		if shippingText == "" {
			addr, err := r.Addresses().FindByID(ctx, in.AddressID)
			if errors.Is(err, repo.ErrNotFound) || (err == nil && addr.UserID != userID) {
				return NewError(KindNotFound, "address not found")
			}
			if err != nil {
				return err
			}
			shippingText = addr.Format()
		}

		lines, err := r.Carts().ListLines(ctx, userID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		number, err := r.Orders().NextOrderNumber(ctx)
		if err != nil {
			return err
		}

		//在庫確認と価格の確定（この時点の価格で固定）
		verified := make([]model.OrderItem, 0, len(lines))
		subtotal := decimal.Zero
		for _, l := range lines {
			p, err := r.Products().FindByID(ctx, l.ProductID)
			if errors.Is(err, repo.ErrNotFound) {
				return &InsufficientStockError{ProductID: l.ProductID, ProductName: l.Name, Requested: l.Quantity}
			}
			if err != nil {
				return err
			}
			if p.Stock < l.Quantity {
				return &InsufficientStockError{ProductID: p.ID, ProductName: p.Name, Requested: l.Quantity, Available: p.Stock}
			}

			lineTotal := p.Price.Mul(decimal.NewFromInt(l.Quantity))
			verified = append(verified, model.OrderItem{
				ProductID:           p.ID,
				ProductNameSnapshot: p.Name,
				UnitPrice:           p.Price,
				Quantity:            l.Quantity,
				Subtotal:            lineTotal,
			})
			subtotal = subtotal.Add(lineTotal)
		}

		fee := u.shipping.Fee(subtotal)
		if in.Discount.GreaterThan(subtotal.Add(fee)) {
			return NewError(KindValidation, "discount exceeds order amount")
		}

		order := model.Order{
			OrderNumber:     number,
			UserID:          userID,
			ShippingAddress: shippingText,
			PaymentMethod:   payment,
			Subtotal:        subtotal,
			ShippingFee:     fee,
			Discount:        in.Discount,
			Total:           subtotal.Add(fee).Sub(in.Discount),
			Status:          model.OrderStatusPending,
		}
		if err := r.Orders().Create(ctx, &order); err != nil {
			return err
		}

		for i := range verified {
			it := &verified[i]
			it.OrderID = order.ID
			if err := r.OrderItems().Create(ctx, it); err != nil {
				return err
			}
			//確認後に他の注文が在庫を取った場合はここで止まる
			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, it.ProductID, it.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				avail := int64(0)
				if p, err := r.Products().FindByID(ctx, it.ProductID); err == nil {
					avail = p.Stock
				}
				return &InsufficientStockError{ProductID: it.ProductID, ProductName: it.ProductNameSnapshot, Requested: it.Quantity, Available: avail}
			}
		}

		if err := r.Carts().ClearByUser(ctx, userID); err != nil {
			return err
		}

		out = toOrderOutput(order, verified)
		return nil
	})
	if err != nil {
		return OrderOutput{}, passThrough(ctx, "order.create", err)
	}
	return out, nil
}

type OrderSummaryOutput struct {
	ID          int64           `json:"id"`
	OrderNumber string          `json:"order_number"`
	Status      string          `json:"status"`
	Total       decimal.Decimal `json:"total"`
	ItemCount   int64           `json:"item_count"`
	CreatedAt   time.Time       `json:"created_at"`
}

// 新しい順
func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64) ([]OrderSummaryOutput, error) {
	if userID <= 0 {
		return nil, ErrUnauthorized
	}
	list, err := u.orders.ListByUserID(ctx, userID)
	if err != nil {
		return nil, storageError(ctx, "order.list", err)
	}
	outs := make([]OrderSummaryOutput, 0, len(list))
	for _, s := range list {
		outs = append(outs, toOrderSummaryOutput(s))
	}
	return outs, nil
}

// GetMyOrder は注文番号（ORD-...）またはIDで自分の注文を返す。他人の注文はnot found。
func (u *OrderUsecase) GetMyOrder(ctx context.Context, userID int64, ref string) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, ErrUnauthorized
	}
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return OrderOutput{}, NewError(KindValidation, "invalid order reference")
	}

	var (
		o   model.Order
		err error
	)
	if id, convErr := strconv.ParseInt(ref, 10, 64); convErr == nil {
		o, err = u.orders.FindByID(ctx, id)
	} else {
		o, err = u.orders.FindByNumber(ctx, ref)
	}
	if errors.Is(err, repo.ErrNotFound) || (err == nil && o.UserID != userID) {
		return OrderOutput{}, NewError(KindNotFound, "order not found")
	}
	if err != nil {
		return OrderOutput{}, storageError(ctx, "order.find", err)
	}

	items, err := u.items.ListByOrderID(ctx, o.ID)
	if err != nil {
		return OrderOutput{}, storageError(ctx, "order_item.list", err)
	}
	return toOrderOutput(o, items), nil
}

func (u *OrderUsecase) publish(ctx context.Context, ev model.OrderEvent) {
	publish(ctx, u.publisher, ev)
}

// publish はcommit後に呼ぶ。失敗しても注文はそのまま。
func publish(ctx context.Context, p EventPublisher, ev model.OrderEvent) {
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := p.PublishOrderEvent(pctx, ev); err != nil {
		logging.FromContext(ctx).Warn("publish order event failed",
			"type", ev.Type, "order_number", ev.OrderNumber, "error", err)
	}
}

func checkoutOutcome(err error) string {
	if err == nil {
		return metrics.CheckoutSuccess
	}
	switch KindOf(err) {
	case KindEmptyCart:
		return metrics.CheckoutEmptyCart
	case KindInsufficientStock:
		return metrics.CheckoutInsufficientStock
	case KindStorage:
		return metrics.CheckoutError
	default:
		return metrics.CheckoutRejected
	}
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	out := OrderOutput{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		UserID:          o.UserID,
		Status:          string(o.Status),
		ShippingAddress: o.ShippingAddress,
		PaymentMethod:   o.PaymentMethod,
		Subtotal:        o.Subtotal,
		ShippingFee:     o.ShippingFee,
		Discount:        o.Discount,
		Total:           o.Total,
		CreatedAt:       o.CreatedAt,
		Items:           make([]OrderItemOutput, 0, len(items)),
	}
	for _, it := range items {
		out.Items = append(out.Items, OrderItemOutput{
			ProductID: it.ProductID,
			Name:      it.ProductNameSnapshot,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			Subtotal:  it.Subtotal,
		})
	}
	return out
}

func toOrderSummaryOutput(s model.OrderSummary) OrderSummaryOutput {
	return OrderSummaryOutput{
		ID:          s.ID,
		OrderNumber: s.OrderNumber,
		Status:      string(s.Status),
		Total:       s.Total,
		ItemCount:   s.ItemCount,
		CreatedAt:   s.CreatedAt,
	}
}
