// Package apperr описывает таксономию ошибок, которые видит клиент RPC
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code — класс ошибки
type Code string

const (
	NotFound     Code = "NOT_FOUND"
	Unauthorized Code = "UNAUTHORIZED"
	BadRequest   Code = "BAD_REQUEST"
	Internal     Code = "INTERNAL"
)

// Error — ошибка с кодом и сообщением для пользователя
// Err хранит исходную причину и наружу не отдаётся
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is позволяет сравнивать ошибки по коду: errors.Is(err, apperr.E(apperr.NotFound, ""))
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code && (t.Message == "" || t.Message == e.Message)
}

// E создаёт ошибку с кодом
func E(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap создаёт ошибку с кодом и причиной
func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

func NotFoundf(format string, args ...any) *Error {
	return E(NotFound, fmt.Sprintf(format, args...))
}

func BadRequestf(format string, args ...any) *Error {
	return E(BadRequest, fmt.Sprintf(format, args...))
}

func Unauthorizedf(format string, args ...any) *Error {
	return E(Unauthorized, fmt.Sprintf(format, args...))
}

// Internalw оборачивает сбой внешней зависимости
func Internalw(err error, message string) *Error {
	return Wrap(Internal, message, err)
}

// CodeOf извлекает код из цепочки ошибок, неизвестные ошибки считаются INTERNAL
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return Internal
}

// MessageOf возвращает сообщение, которое безопасно показать клиенту
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "internal server error"
}

// HTTPStatus сопоставляет код ошибки со статусом HTTP
func HTTPStatus(code Code) int {
	switch code {
	case NotFound:
		return http.StatusNotFound
	case Unauthorized:
		return http.StatusUnauthorized
	case BadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// CodeFromStatus — обратное преобразование, нужно клиенту, если тело ответа не разобралось
func CodeFromStatus(status int) Code {
	switch status {
	case http.StatusNotFound:
		return NotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return Unauthorized
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return BadRequest
	default:
		return Internal
	}
}
