package usecase

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/logging"
)

// Kind はエラーの分類。handlerはこれでHTTPステータスを決める。
type Kind string

const (
	KindValidation           Kind = "validation"
	KindUnauthorized         Kind = "unauthorized"
	KindForbidden            Kind = "forbidden"
	KindNotFound             Kind = "not_found"
	KindConflict             Kind = "conflict"
	KindEmptyCart            Kind = "empty_cart"
	KindInsufficientStock    Kind = "insufficient_stock"
	KindReferentialIntegrity Kind = "referential_integrity"
	KindStorage              Kind = "storage"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is は同じKindなら一致とみなす（errors.Is(err, ErrEmptyCart) など）。
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func NewError(kind Kind, message string) error {
	return &Error{Kind: kind, Message: message}
}

func AsError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

var (
	ErrUnauthorized         = &Error{Kind: KindUnauthorized, Message: "unauthorized"}
	ErrForbidden            = &Error{Kind: KindForbidden, Message: "forbidden"}
	ErrNotFound             = &Error{Kind: KindNotFound, Message: "not found"}
	ErrEmptyCart            = &Error{Kind: KindEmptyCart, Message: "cart is empty"}
	ErrInsufficientStock    = &Error{Kind: KindInsufficientStock, Message: "insufficient stock"}
	ErrReferentialIntegrity = &Error{Kind: KindReferentialIntegrity, Message: "resource is still referenced"}
	ErrStorage              = &Error{Kind: KindStorage, Message: "internal error"}
)

// InsufficientStockError は在庫不足の商品を特定する。
type InsufficientStockError struct {
	ProductID   int64
	ProductName string
	Requested   int64
	Available   int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: requested %d, available %d", e.ProductName, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == KindInsufficientStock
}

// KindOf はerrの分類を返す。分類されていないものはstorage扱い。
func KindOf(err error) Kind {
	if e, ok := AsError(err); ok {
		return e.Kind
	}
	var ise *InsufficientStockError
	if errors.As(err, &ise) {
		return KindInsufficientStock
	}
	return KindStorage
}

// storageError は原因をログに残し、外には中身を出さないエラーにする。
func storageError(ctx context.Context, op string, err error) error {
	logging.FromContext(ctx).Error("storage error", "op", op, "error", err)
	return &Error{Kind: KindStorage, Message: "internal error", Err: fmt.Errorf("%s: %w", op, err)}
}

// passThrough はtx内で既に分類済みのエラーはそのまま、それ以外はstorageErrorにする。
func passThrough(ctx context.Context, op string, err error) error {
	if _, ok := AsError(err); ok {
		return err
	}
	var ise *InsufficientStockError
	if errors.As(err, &ise) {
		return err
	}
	return storageError(ctx, op, err)
}
