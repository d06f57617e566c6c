package usecase

import (
	"context"
	"time"

	"storefront/internal/domain/model"
)

// bcryptなど。
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(hash, plain string) bool
}

// アクセストークンの発行。
type TokenIssuer interface {
	Issue(userID int64, role model.Role, tokenVersion int, now time.Time) (token string, expiresAt time.Time, err error)
}

// 注文イベントの送信先。commit後にベストエフォートで呼ぶ。
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, ev model.OrderEvent) error
}

type OrderMetrics interface {
	RecordCheckout(outcome string)
	RecordStatusChange(status string)
}

// 会員登録の入力チェック（形式・強度・重複）。
type AccountValidator interface {
	ValidateRegister(ctx context.Context, email, password string) error
}

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

type noopPublisher struct{}

func (noopPublisher) PublishOrderEvent(context.Context, model.OrderEvent) error { return nil }

type noopMetrics struct{}

func (noopMetrics) RecordCheckout(string)     {}
func (noopMetrics) RecordStatusChange(string) {}
