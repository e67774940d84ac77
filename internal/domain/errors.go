package domain

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindConflict        Kind = "CONFLICT"
	KindUnauthenticated Kind = "UNAUTHENTICATED"
	KindForbidden       Kind = "FORBIDDEN"
	KindNotFound        Kind = "NOT_FOUND"
	KindValidation      Kind = "VALIDATION"
	KindInternal        Kind = "INTERNAL"
)

func (k Kind) HTTPStatus() int {
	switch k {
	case KindConflict:
		return http.StatusConflict
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error 业务错误；Msg 面向调用方，Err 只进日志
type Error struct {
	Kind    Kind
	Msg     string
	Details any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is 按 Kind 匹配，errors.Is(err, domain.ErrNotFound) 即可判断类别
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

var (
	ErrConflict        = &Error{Kind: KindConflict, Msg: "conflict"}
	ErrUnauthenticated = &Error{Kind: KindUnauthenticated, Msg: "unauthenticated"}
	ErrForbidden       = &Error{Kind: KindForbidden, Msg: "forbidden"}
	ErrNotFound        = &Error{Kind: KindNotFound, Msg: "not found"}
	ErrValidation      = &Error{Kind: KindValidation, Msg: "validation failed"}
	ErrInternal        = &Error{Kind: KindInternal, Msg: "internal error"}
)

func Conflict(msg string) error        { return &Error{Kind: KindConflict, Msg: msg} }
func Unauthenticated(msg string) error { return &Error{Kind: KindUnauthenticated, Msg: msg} }
func Forbidden(msg string) error       { return &Error{Kind: KindForbidden, Msg: msg} }
func NotFound(msg string) error        { return &Error{Kind: KindNotFound, Msg: msg} }
func Validation(msg string) error      { return &Error{Kind: KindValidation, Msg: msg} }

func ValidationWithDetails(msg string, details any) error {
	return &Error{Kind: KindValidation, Msg: msg, Details: details}
}

func Internal(msg string, err error) error {
	return &Error{Kind: KindInternal, Msg: msg, Err: err}
}

// KindOf 非 *Error 一律视为 Internal
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
