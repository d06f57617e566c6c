package usecase

import (
	"context"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/stretchr/testify/mock"
)

// =====================
// TxManager / Repository mocks
// 使わないメソッドは埋め込んだinterface経由でpanicする
// =====================

type txManagerMock struct{ mock.Mock }

func (m *txManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type productRepoMock struct {
	mock.Mock
	repo.ProductRepository
}

func (m *productRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

// メソッドを持たないので、呼ばれたらpanicする
type categoryRepoMock struct {
	mock.Mock
	repo.CategoryRepository
}

type cartRepoMock struct {
	mock.Mock
	repo.CartRepository
}

func (m *cartRepoMock) AddQuantity(ctx context.Context, userID, productID, qty int64) error {
	args := m.Called(ctx, userID, productID, qty)
	return args.Error(0)
}

func (m *cartRepoMock) SumQuantity(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type userRepoMock struct {
	mock.Mock
	repo.UserRepository
}

func (m *userRepoMock) FindByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *userRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *userRepoMock) IncrementTokenVersion(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type auditRepoMock struct {
	mock.Mock
	repo.AuditLogRepository
}

func (m *auditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

type publisherMock struct{ mock.Mock }

func (m *publisherMock) PublishOrderEvent(ctx context.Context, ev model.OrderEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

type metricsMock struct{ mock.Mock }

func (m *metricsMock) RecordCheckout(outcome string)    { m.Called(outcome) }
func (m *metricsMock) RecordStatusChange(status string) { m.Called(status) }
