package validator

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"storefront/internal/repository"
	"storefront/internal/usecase"
)

const minPasswordLen = 8

// よくある弱いパスワード
var weakPasswords = map[string]struct{}{
	"password":     {},
	"password123":  {},
	"123456789012": {},
	"1234567890":   {},
	"12345678":     {},
	"qwertyuiop":   {},
	"letmein123":   {},
	"admin123":     {},
}

type authValidator struct {
	users repository.UserRepository
}

// Usecaseは interface を依存注入
func NewAuthValidator(users repository.UserRepository) usecase.AccountValidator {
	return &authValidator{users: users}
}

// サインアップの入力を検証
func (v *authValidator) ValidateRegister(ctx context.Context, email string, password string) error {
	email = strings.TrimSpace(email)

	if email == "" || password == "" {
		return usecase.NewError(usecase.KindValidation, "email and password are required")
	}
	if !isEmailLike(email) {
		return usecase.NewError(usecase.KindValidation, "invalid email format")
	}
	if len(password) < minPasswordLen {
		return usecase.NewError(usecase.KindValidation, "password too short")
	}
	if _, weak := weakPasswords[strings.ToLower(password)]; weak {
		return usecase.NewError(usecase.KindValidation, "password too weak")
	}

	// email重複チェック（DBが必要）
	_, err := v.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return usecase.NewError(usecase.KindConflict, "email already used")
	case errors.Is(err, repository.ErrNotFound):
		return nil
	default:
		return err
	}
}

// 表示名付き（"A <a@b.c>"）は受け付けない
func isEmailLike(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndex(s, "@")
	return at > 0 && strings.Contains(s[at+1:], ".")
}
