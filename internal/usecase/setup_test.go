package usecase_test

import (
	"context"
	"sync"
	"testing"

	"storefront/internal/domain/model"
	"storefront/internal/infra/db/dbtest"
	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/metrics"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// recordingPublisher は送られたイベントを覚えておく。errを入れると送信失敗を再現する。
type recordingPublisher struct {
	mu     sync.Mutex
	events []model.OrderEvent
	err    error
}

func (p *recordingPublisher) PublishOrderEvent(_ context.Context, ev model.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) Events() []model.OrderEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]model.OrderEvent(nil), p.events...)
}

type stack struct {
	gdb     *gorm.DB
	pub     *recordingPublisher
	metrics *metrics.Metrics

	cart       *usecase.CartUsecase
	orders     *usecase.OrderUsecase
	adminOrder *usecase.AdminOrderUsecase
	catalog    *usecase.CatalogUsecase
	addresses  *usecase.AddressUsecase
}

func newStack(t *testing.T) *stack {
	t.Helper()
	gdb := dbtest.Open(t)
	pub := &recordingPublisher{}
	m := metrics.New()

	txm := infraRepo.NewTxManagerGorm(gdb)
	products := infraRepo.NewProductGormRepository(gdb)
	orderRepo := infraRepo.NewOrderGormRepository(gdb)
	itemRepo := infraRepo.NewOrderItemGormRepository(gdb)

	return &stack{
		gdb:     gdb,
		pub:     pub,
		metrics: m,
		cart:    usecase.NewCartUsecase(infraRepo.NewCartGormRepository(gdb), products),
		orders: usecase.NewOrderUsecase(txm, orderRepo, itemRepo,
			usecase.WithEventPublisher(pub),
			usecase.WithOrderMetrics(m),
		),
		adminOrder: usecase.NewAdminOrderUsecase(txm, orderRepo, itemRepo, pub, m),
		catalog:    usecase.NewCatalogUsecase(txm, products, infraRepo.NewCategoryGormRepository(gdb)),
		addresses:  usecase.NewAddressUsecase(infraRepo.NewAddressGormRepository(gdb)),
	}
}

func (s *stack) user(t *testing.T, email string) model.User {
	t.Helper()
	return dbtest.CreateUser(t, s.gdb, email, model.RoleUser)
}

func (s *stack) product(t *testing.T, name, price string, stock int64) model.Product {
	t.Helper()
	return dbtest.CreateProduct(t, s.gdb, name, price, stock)
}

func (s *stack) stock(t *testing.T, productID int64) int64 {
	t.Helper()
	return dbtest.Stock(t, s.gdb, productID)
}

func (s *stack) countRows(t *testing.T, m any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.gdb.Model(m).Count(&n).Error)
	return n
}

func dbtestAdmin(t *testing.T, s *stack) model.User {
	t.Helper()
	return dbtest.CreateUser(t, s.gdb, "admin@example.com", model.RoleAdmin)
}

func repoFilter(status string) repo.AdminOrderListFilter {
	return repo.AdminOrderListFilter{Page: 1, Limit: 50, Status: status}
}
