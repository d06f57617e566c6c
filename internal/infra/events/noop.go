package events

import (
	"context"

	"storefront/internal/domain/model"
)

// NoopPublisher はKAFKA_BROKERS未設定時に使う。
type NoopPublisher struct{}

func (NoopPublisher) PublishOrderEvent(context.Context, model.OrderEvent) error { return nil }

func (NoopPublisher) Close() error { return nil }
