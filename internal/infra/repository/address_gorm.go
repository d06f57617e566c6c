package repository

import (
	"context"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type addressGormRepository struct {
	db *gorm.DB
}

func NewAddressGormRepository(db *gorm.DB) repo.AddressRepository {
	return &addressGormRepository{db: db}
}

// ownedBy はユーザーの住所に絞るscope
func ownedBy(userID int64) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
}

func (r *addressGormRepository) addresses(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&model.Address{})
}

func (r *addressGormRepository) Create(ctx context.Context, address model.Address) (model.Address, error) {
	err := r.db.WithContext(ctx).Create(&address).Error
	return address, translate(err)
}

// デフォルトが先頭、あとは登録順
func (r *addressGormRepository) ListByUserID(ctx context.Context, userID int64) ([]model.Address, error) {
	list := []model.Address{}
	err := r.addresses(ctx).Scopes(ownedBy(userID)).Order("is_default DESC, id ASC").Find(&list).Error
	return list, err
}

func (r *addressGormRepository) CountByUserID(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := r.addresses(ctx).Scopes(ownedBy(userID)).Count(&n).Error
	return n, err
}

func (r *addressGormRepository) FindByID(ctx context.Context, addressID int64) (model.Address, error) {
	var a model.Address
	if err := r.db.WithContext(ctx).First(&a, addressID).Error; err != nil {
		return model.Address{}, translate(err)
	}
	return a, nil
}

func (r *addressGormRepository) Delete(ctx context.Context, addressID int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Address{}, addressID)
	return affectedOne(res)
}

func (r *addressGormRepository) IsOwnedByUser(ctx context.Context, addressID, userID int64) (bool, error) {
	var n int64
	err := r.addresses(ctx).Scopes(ownedBy(userID)).Where("id = ?", addressID).Count(&n).Error
	return n == 1, err
}

// デフォルトは1ユーザーにつき1件。外す→付けるを同じtxで行う
func (r *addressGormRepository) SetDefault(ctx context.Context, userID, addressID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		mine := tx.Model(&model.Address{}).Scopes(ownedBy(userID))

		if err := mine.Session(&gorm.Session{}).
			Where("is_default = ?", true).
			Update("is_default", false).Error; err != nil {
			return err
		}
		return affectedOne(mine.Session(&gorm.Session{}).
			Where("id = ?", addressID).
			Update("is_default", true))
	})
}
