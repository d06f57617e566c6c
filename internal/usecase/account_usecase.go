package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/logging"
	"storefront/internal/repository"
)

type UserDTO struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	Role         string     `json:"role"`
	TokenVersion int        `json:"token_version"`
	IsActive     bool       `json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

type JwtAccessTokenDTO struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenVersion int    `json:"token_version"`
}

type AuthRegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type AuthLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthLoginResponse struct {
	User  UserDTO           `json:"user"`
	Token JwtAccessTokenDTO `json:"token"`
}

type UserListOutput struct {
	Items []UserDTO `json:"items"`
	Total int64     `json:"total"`
	Page  int       `json:"page"`
	Limit int       `json:"limit"`
}

type ForceLogoutResponse struct {
	UserID          int64 `json:"user_id"`
	NewTokenVersion int   `json:"new_token_version"`
}

type AccountUsecase struct {
	users     repository.UserRepository
	audits    repository.AuditLogRepository
	validator AccountValidator
	hasher    PasswordHasher
	issuer    TokenIssuer
	clock     Clock
}

func NewAccountUsecase(
	users repository.UserRepository,
	audits repository.AuditLogRepository,
	validator AccountValidator,
	hasher PasswordHasher,
	issuer TokenIssuer,
) *AccountUsecase {
	return &AccountUsecase{
		users:     users,
		audits:    audits,
		validator: validator,
		hasher:    hasher,
		issuer:    issuer,
		clock:     systemClock{},
	}
}

func (u *AccountUsecase) Register(ctx context.Context, req AuthRegisterRequest) (UserDTO, error) {
	email := normalizeEmail(req.Email)

	//入力検証（validatorに寄せる）
	if err := u.validator.ValidateRegister(ctx, email, req.Password); err != nil {
		return UserDTO{}, err
	}

	//パスワードは必ずハッシュ化して保存
	pwHash, err := u.hasher.Hash(req.Password)
	if err != nil {
		return UserDTO{}, storageError(ctx, "password.hash", err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: pwHash,
		Name:         strings.TrimSpace(req.Name),
		Role:         model.RoleUser,
		IsActive:     true,
	}
	if err := u.users.Create(ctx, user); err != nil {
		//validator通過後に同じメールが入った場合
		if errors.Is(err, repository.ErrDuplicate) {
			return UserDTO{}, NewError(KindConflict, "email already used")
		}
		return UserDTO{}, storageError(ctx, "user.create", err)
	}
	return toUserDTO(user), nil
}

// Login は停止中ユーザーを拒否し、成功したら最終ログイン時刻を更新してトークンを返す。
func (u *AccountUsecase) Login(ctx context.Context, req AuthLoginRequest) (AuthLoginResponse, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return AuthLoginResponse{}, NewError(KindValidation, "email and password are required")
	}

	user, err := u.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return AuthLoginResponse{}, NewError(KindUnauthorized, "invalid credentials")
	}
	if err != nil {
		return AuthLoginResponse{}, storageError(ctx, "user.find", err)
	}
	if !user.IsActive {
		return AuthLoginResponse{}, NewError(KindForbidden, "user is inactive")
	}
	if !u.hasher.Verify(user.PasswordHash, req.Password) {
		return AuthLoginResponse{}, NewError(KindUnauthorized, "invalid credentials")
	}

	now := u.clock.Now()
	user.LastLoginAt = &now
	if err := u.users.Update(ctx, user); err != nil {
		return AuthLoginResponse{}, storageError(ctx, "user.update", err)
	}

	token, exp, err := u.issuer.Issue(user.ID, user.Role, user.TokenVersion, now)
	if err != nil {
		return AuthLoginResponse{}, storageError(ctx, "token.issue", err)
	}

	return AuthLoginResponse{
		User: toUserDTO(user),
		Token: JwtAccessTokenDTO{
			AccessToken:  token,
			ExpiresIn:    int(exp.Sub(now).Seconds()),
			TokenVersion: user.TokenVersion,
		},
	}, nil
}

func (u *AccountUsecase) Me(ctx context.Context, userID int64) (UserDTO, error) {
	user, err := u.findUser(ctx, userID)
	if err != nil {
		return UserDTO{}, err
	}
	if !user.IsActive {
		return UserDTO{}, ErrForbidden
	}
	return toUserDTO(user), nil
}

func (u *AccountUsecase) ListUsers(ctx context.Context, page, limit int) (UserListOutput, error) {
	if page < 1 {
		return UserListOutput{}, NewError(KindValidation, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return UserListOutput{}, NewError(KindValidation, "invalid limit")
	}

	users, total, err := u.users.List(ctx, page, limit)
	if err != nil {
		return UserListOutput{}, storageError(ctx, "user.list", err)
	}
	out := UserListOutput{Items: make([]UserDTO, 0, len(users)), Total: total, Page: page, Limit: limit}
	for i := range users {
		out.Items = append(out.Items, toUserDTO(&users[i]))
	}
	return out, nil
}

// UpdateRole はロールを変える。自分自身のロールは変えられない。
// 既存トークンに古いロールが残らないようtoken_versionも上げる。
func (u *AccountUsecase) UpdateRole(ctx context.Context, actorID, targetID int64, role string) (UserDTO, error) {
	if actorID <= 0 {
		return UserDTO{}, ErrUnauthorized
	}
	next := model.Role(strings.ToUpper(strings.TrimSpace(role)))
	if next != model.RoleUser && next != model.RoleAdmin {
		return UserDTO{}, NewError(KindValidation, "invalid role")
	}
	if actorID == targetID {
		return UserDTO{}, NewError(KindConflict, "cannot change own role")
	}

	user, err := u.findUser(ctx, targetID)
	if err != nil {
		return UserDTO{}, err
	}
	if user.Role == next {
		return toUserDTO(user), nil
	}

	before := user.Role
	user.Role = next
	user.TokenVersion++
	if err := u.users.Update(ctx, user); err != nil {
		return UserDTO{}, storageError(ctx, "user.update", err)
	}
	u.audit(ctx, model.AuditLog{
		ActorUserID:  actorID,
		Action:       model.AuditActionUpdateUserRole,
		ResourceType: model.AuditResourceUser,
		ResourceID:   targetID,
		BeforeJSON:   fmt.Sprintf(`{"role":%q}`, before),
		AfterJSON:    fmt.Sprintf(`{"role":%q}`, next),
	})
	return toUserDTO(user), nil
}

// ForceLogout はtoken_versionを上げ、発行済みトークンをすべて無効にする。
func (u *AccountUsecase) ForceLogout(ctx context.Context, actorID, targetID int64) (ForceLogoutResponse, error) {
	if actorID <= 0 {
		return ForceLogoutResponse{}, ErrUnauthorized
	}
	if targetID <= 0 {
		return ForceLogoutResponse{}, NewError(KindValidation, "invalid user id")
	}

	if err := u.users.IncrementTokenVersion(ctx, targetID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ForceLogoutResponse{}, NewError(KindNotFound, "user not found")
		}
		return ForceLogoutResponse{}, storageError(ctx, "user.increment_token_version", err)
	}
	user, err := u.findUser(ctx, targetID)
	if err != nil {
		return ForceLogoutResponse{}, err
	}

	u.audit(ctx, model.AuditLog{
		ActorUserID:  actorID,
		Action:       model.AuditActionForceLogout,
		ResourceType: model.AuditResourceUser,
		ResourceID:   targetID,
		AfterJSON:    fmt.Sprintf(`{"token_version":%d}`, user.TokenVersion),
	})
	return ForceLogoutResponse{UserID: targetID, NewTokenVersion: user.TokenVersion}, nil
}

func (u *AccountUsecase) findUser(ctx context.Context, userID int64) (*model.User, error) {
	if userID <= 0 {
		return nil, ErrUnauthorized
	}
	user, err := u.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewError(KindNotFound, "user not found")
	}
	if err != nil {
		return nil, storageError(ctx, "user.find", err)
	}
	return user, nil
}

// 監査ログの失敗は操作自体を失敗にしない
func (u *AccountUsecase) audit(ctx context.Context, log model.AuditLog) {
	if err := u.audits.Create(ctx, log); err != nil {
		logging.FromContext(ctx).Error("audit log failed", "action", log.Action, "error", err)
	}
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// model.UserをAPI返却用DTOに変換。
func toUserDTO(u *model.User) UserDTO {
	return UserDTO{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Role:         string(u.Role),
		TokenVersion: u.TokenVersion,
		IsActive:     u.IsActive,
		LastLoginAt:  u.LastLoginAt,
	}
}
