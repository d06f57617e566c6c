package usecase

import (
	"context"

	"storefront/internal/domain/model"
	"storefront/internal/repository"
)

type AuditUsecase struct {
	audits repository.AuditLogRepository
}

func NewAuditUsecase(audits repository.AuditLogRepository) *AuditUsecase {
	return &AuditUsecase{audits: audits}
}

// 新しい順。Limitは1〜200。
func (u *AuditUsecase) List(ctx context.Context, f repository.AuditLogFilter) ([]model.AuditLog, error) {
	if f.Limit < 0 || f.Limit > 200 {
		return nil, NewError(KindValidation, "invalid limit")
	}
	if f.Offset < 0 {
		return nil, NewError(KindValidation, "invalid offset")
	}
	if f.CreatedFrom != nil && f.CreatedTo != nil && f.CreatedFrom.After(*f.CreatedTo) {
		return nil, NewError(KindValidation, "from must be before to")
	}

	logs, err := u.audits.List(ctx, f)
	if err != nil {
		return nil, storageError(ctx, "audit.list", err)
	}
	return logs, nil
}
