package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// 住所(Address)を保存・取得する窓口
type AddressRepository interface {
	//作成後はIDなどが埋まったaddressを返す
	Create(ctx context.Context, address model.Address) (model.Address, error)

	//ユーザーが持つ住所一覧（デフォルトが先頭）
	ListByUserID(ctx context.Context, userID int64) ([]model.Address, error)

	CountByUserID(ctx context.Context, userID int64) (int64, error)

	//見つからなければErrNotFound
	FindByID(ctx context.Context, addressID int64) (model.Address, error)

	Delete(ctx context.Context, addressID int64) error

	//住所がそのユーザーのものか確認
	IsOwnedByUser(ctx context.Context, addressID, userID int64) (bool, error)

	//デフォルト住所の切り替え
	SetDefault(ctx context.Context, userID, addressID int64) error
}
