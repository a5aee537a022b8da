package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Code int

const (
	BadRequestCode Code = iota + 40000
	NotFoundCode
	ConflictCode
	UnauthenticatedCode
	ExternalErrorCode
	InternalErrorCode
)

var ErrStrMap = map[Code]string{
	BadRequestCode:      "bad request",
	NotFoundCode:        "resource not found",
	ConflictCode:        "conflict",
	UnauthenticatedCode: "unauthenticated",
	ExternalErrorCode:   "external dependency error",
	InternalErrorCode:   "internal server error",
}

// AppError 帶有錯誤碼的業務錯誤, handler 依照 Code 決定 http status
type AppError struct {
	Code Code
	Msg  string
	Err  error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code Code, msg string) *AppError {
	return &AppError{Code: code, Msg: msg}
}

func Wrap(code Code, msg string, err error) *AppError {
	return &AppError{Code: code, Msg: msg, Err: err}
}

func BadRequest(msg string) *AppError {
	return New(BadRequestCode, msg)
}

func NotFound(msg string) *AppError {
	return New(NotFoundCode, msg)
}

func Conflict(msg string) *AppError {
	return New(ConflictCode, msg)
}

func External(msg string, err error) *AppError {
	return Wrap(ExternalErrorCode, msg, err)
}

func Internal(msg string, err error) *AppError {
	return Wrap(InternalErrorCode, msg, err)
}

// CodeOf 取出錯誤碼, 非 AppError 一律視為 internal
func CodeOf(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return InternalErrorCode
}

// HTTPStatus conflict 類錯誤對外仍回 400, 錯誤碼留在 body 區分
func HTTPStatus(code Code) int {
	switch code {
	case BadRequestCode, ConflictCode:
		return http.StatusBadRequest
	case NotFoundCode:
		return http.StatusNotFound
	case UnauthenticatedCode:
		return http.StatusUnauthorized
	case ExternalErrorCode:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
