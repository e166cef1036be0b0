package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/amakane-hakari/sortkv/internal/eviction"
)

// AppError はクライアントへ返すエラーを表します。
type AppError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Meta    any    `json:"meta,omitempty"`
}

const (
	// CodeBadRequest は 400 Bad Request エラーを表します。
	CodeBadRequest = "BAD_REQUEST"
	// CodeInvalidJSON は 不正なJSONによる 400 Bad Request エラーを表します。
	CodeInvalidJSON = "INVALID_JSON"
	// CodeNotFound は 404 Not Found エラーを表します。
	CodeNotFound = "NOT_FOUND"
	// CodeConflict は 409 Conflict エラーを表します。
	CodeConflict = "CONFLICT"
	// CodeTimeout は タイムアウトによる 408 Request Timeout エラーを表します。
	CodeTimeout = "TIMEOUT"
	// CodeCanceled は キャンセルによる 408 Request Timeout エラーを表します。
	CodeCanceled = "CANCELED"
	// CodeInternalError は 500 Internal Server Error エラーを表します。
	CodeInternalError = "INTERNAL_ERROR"
)

func (e *AppError) Error() string { return e.Code + ": " + e.Message }

// NewAppError は新しい AppError を作成します。
func NewAppError(status int, code, message string, meta any) *AppError {
	return &AppError{Status: status, Code: code, Message: message, Meta: meta}
}

// BadRequest は 400 を表す AppError を作成します。
func BadRequest(msg string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeBadRequest, msg, nil)
}

// InvalidJSON は 不正なJSONによる 400 を表す AppError を作成します。
func InvalidJSON(msg string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeInvalidJSON, msg, nil)
}

// NotFound は 404 を表す AppError を作成します。
func NotFound(msg string) *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, msg, nil)
}

// Conflict は 409 を表す AppError を作成します。
func Conflict(msg string) *AppError {
	return NewAppError(http.StatusConflict, CodeConflict, msg, nil)
}

// Internal は 500 を表す AppError を作成します。
func Internal(msg string) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, msg, nil)
}

// FromStdError は error を AppError に変換します。
// ポリシーの設定値エラーは 400、それ以外の未知のエラーは 500 になります。
func FromStdError(err error) *AppError {
	if err == nil {
		return nil
	}

	var app *AppError
	if errors.As(err, &app) {
		return app
	}
	switch {
	case errors.Is(err, eviction.ErrInvalidMaxSize), errors.Is(err, eviction.ErrNilComparator):
		return BadRequest(err.Error())
	case errors.Is(err, context.Canceled):
		return NewAppError(http.StatusRequestTimeout, CodeCanceled, "request canceled", nil)
	case errors.Is(err, context.DeadlineExceeded):
		return NewAppError(http.StatusRequestTimeout, CodeTimeout, "request timeout", nil)
	default:
		return Internal("unexpected error")
	}
}
