package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("record was modified by another request, please reload and retry")

// Kind 错误类别标签，响应边界按 Kind 做一次穷举分派
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindBadRequest
	KindTransition
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindBadRequest:
		return "BadRequestError"
	case KindTransition:
		return "TransitionError"
	case KindNotFound:
		return "NotFoundError"
	case KindConflict:
		return "ConflictError"
	default:
		return "InternalError"
	}
}

// HTTPStatus 错误类别对应的 HTTP 状态码
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation, KindBadRequest, KindTransition:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Source 错误来源（字段路径 + 描述），对应响应体 errorSources
type Source struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// AppError 应用层类型化错误
type AppError struct {
	Kind    Kind
	Message string
	Sources []Source
	Err     error // 底层原因，可为 nil
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// Is 同类别的 AppError 视为相等，便于 errors.Is(err, &AppError{Kind: KindNotFound})
// Transition 是 BadRequest 的子类，可被 BadRequest 目标匹配
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	sameKind := t.Kind == e.Kind || (t.Kind == KindBadRequest && e.Kind == KindTransition)
	return sameKind && (t.Message == "" || t.Message == e.Message)
}

// HTTPStatus 错误对应的 HTTP 状态码
func (e *AppError) HTTPStatus() int { return e.Kind.HTTPStatus() }

// ── 构造函数 ──

func New(kind Kind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...any) *AppError {
	return &AppError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validation(message string, sources ...Source) *AppError {
	return &AppError{Kind: KindValidation, Message: message, Sources: sources}
}

func BadRequest(message string) *AppError { return New(KindBadRequest, message) }

func NotFound(message string) *AppError { return New(KindNotFound, message) }

func Conflict(message string) *AppError { return New(KindConflict, message) }

// Transition 非法状态跳转
func Transition(from, to fmt.Stringer) *AppError {
	return Newf(KindTransition, "Can not change %s to %s", from, to)
}

// Internal 包装不可在本地恢复的存储/运行时错误
func Internal(err error) *AppError {
	return &AppError{Kind: KindInternal, Message: "Something went wrong", Err: err}
}

// Wrap 为底层错误附加类别与描述
func Wrap(err error, kind Kind, message string) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

// KindOf 返回错误类别；非 AppError 一律视为 KindInternal
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// As 是标准库 errors.As 的便捷转发
func As(err error) (*AppError, bool) {
	var appErr *AppError
	ok := errors.As(err, &appErr)
	return appErr, ok
}
