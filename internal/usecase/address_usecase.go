package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/repository"
)

type AddressDTO struct {
	ID         int64     `json:"id"`
	Recipient  string    `json:"recipient"`
	Line1      string    `json:"line1"`
	Line2      string    `json:"line2"`
	City       string    `json:"city"`
	Region     string    `json:"region"`
	PostalCode string    `json:"postal_code"`
	Country    string    `json:"country"`
	Phone      string    `json:"phone"`
	IsDefault  bool      `json:"is_default"`
	Formatted  string    `json:"formatted"`
	CreatedAt  time.Time `json:"created_at"`
}

type AddressCreateRequest struct {
	Recipient  string `json:"recipient"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	Region     string `json:"region"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
}

type AddressUsecase struct {
	addresses repository.AddressRepository
}

func NewAddressUsecase(addresses repository.AddressRepository) *AddressUsecase {
	return &AddressUsecase{addresses: addresses}
}

func (u *AddressUsecase) List(ctx context.Context, userID int64) ([]AddressDTO, error) {
	if userID <= 0 {
		return nil, ErrUnauthorized
	}

	list, err := u.addresses.ListByUserID(ctx, userID)
	if err != nil {
		return nil, storageError(ctx, "address.list", err)
	}

	out := make([]AddressDTO, 0, len(list))
	for i := range list {
		out = append(out, toAddressDTO(list[i]))
	}
	return out, nil
}

// 最初に登録した住所がデフォルトになる。
func (u *AddressUsecase) Create(ctx context.Context, userID int64, req AddressCreateRequest) (AddressDTO, error) {
	if userID <= 0 {
		return AddressDTO{}, ErrUnauthorized
	}

	a := model.Address{
		UserID:     userID,
		Recipient:  strings.TrimSpace(req.Recipient),
		Line1:      strings.TrimSpace(req.Line1),
		Line2:      strings.TrimSpace(req.Line2),
		City:       strings.TrimSpace(req.City),
		Region:     strings.TrimSpace(req.Region),
		PostalCode: strings.TrimSpace(req.PostalCode),
		Country:    strings.TrimSpace(req.Country),
		Phone:      strings.TrimSpace(req.Phone),
	}
	if a.Recipient == "" || a.Line1 == "" || a.City == "" || a.PostalCode == "" || a.Country == "" {
		return AddressDTO{}, NewError(KindValidation, "recipient, line1, city, postal_code and country are required")
	}

	n, err := u.addresses.CountByUserID(ctx, userID)
	if err != nil {
		return AddressDTO{}, storageError(ctx, "address.count", err)
	}
	a.IsDefault = n == 0

	now := time.Now()
	a.CreatedAt, a.UpdatedAt = now, now

	created, err := u.addresses.Create(ctx, a)
	if err != nil {
		return AddressDTO{}, storageError(ctx, "address.create", err)
	}
	return toAddressDTO(created), nil
}

func (u *AddressUsecase) Delete(ctx context.Context, userID int64, addressID int64) error {
	if err := u.checkOwner(ctx, userID, addressID); err != nil {
		return err
	}
	// 注文は住所の文字列コピーを持つので削除しても影響しない
	if err := u.addresses.Delete(ctx, addressID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NewError(KindNotFound, "address not found")
		}
		return storageError(ctx, "address.delete", err)
	}
	return nil
}

func (u *AddressUsecase) SetDefault(ctx context.Context, userID int64, addressID int64) error {
	if err := u.checkOwner(ctx, userID, addressID); err != nil {
		return err
	}
	if err := u.addresses.SetDefault(ctx, userID, addressID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NewError(KindNotFound, "address not found")
		}
		return storageError(ctx, "address.set_default", err)
	}
	return nil
}

// 所有チェック（本人のみ）。存在しなければ404、他人のものなら403。
func (u *AddressUsecase) checkOwner(ctx context.Context, userID, addressID int64) error {
	if userID <= 0 {
		return ErrUnauthorized
	}
	if addressID <= 0 {
		return NewError(KindValidation, "invalid address id")
	}

	owned, err := u.addresses.IsOwnedByUser(ctx, addressID, userID)
	if err != nil {
		return storageError(ctx, "address.owned", err)
	}
	if owned {
		return nil
	}
	if _, err := u.addresses.FindByID(ctx, addressID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NewError(KindNotFound, "address not found")
		}
		return storageError(ctx, "address.find", err)
	}
	return ErrForbidden
}

func toAddressDTO(a model.Address) AddressDTO {
	return AddressDTO{
		ID:         a.ID,
		Recipient:  a.Recipient,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		Region:     a.Region,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		Phone:      a.Phone,
		IsDefault:  a.IsDefault,
		Formatted:  a.Format(),
		CreatedAt:  a.CreatedAt,
	}
}
