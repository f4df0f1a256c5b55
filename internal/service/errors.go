package service

import (
	"errors"
	"fmt"
)

const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeDuplicateAccount   = "DUPLICATE_ACCOUNT"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUnauthenticated    = "UNAUTHENTICATED"
	CodeNotFound           = "NOT_FOUND"
	CodeVersionConflict    = "VERSION_CONFLICT"
)

type BusinessError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

type Detail struct {
	Key     string
	Payload any
}

func (b *BusinessError) Error() string {
	if b.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", b.Code, b.Message, b.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", b.Code, b.Message)
}

func (b *BusinessError) Unwrap() error {
	return b.Err
}

func ToDetail(key string, payload any) Detail {
	return Detail{
		Key:     key,
		Payload: payload,
	}
}

func NewBusinessError(code string, message string, details ...Detail) *BusinessError {
	busErr := &BusinessError{
		Code:    code,
		Message: message,
		Details: make(map[string]any),
	}
	for _, detail := range details {
		busErr.Details[detail.Key] = detail.Payload
	}
	return busErr
}

// IsCode проверяет, что в цепочке ошибок есть BusinessError с нужным кодом
func IsCode(err error, code string) bool {
	var busErr *BusinessError
	if errors.As(err, &busErr) {
		return busErr.Code == code
	}
	return false
}

func NewNotFound(resource string, id string) *BusinessError {
	return &BusinessError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s %s не найден(а)", resource, id),
		Details: map[string]any{
			"resource": resource,
			"id":       id,
		},
	}
}

func NewValidationError(field, reason string) *BusinessError {
	return &BusinessError{
		Code:    CodeValidation,
		Message: fmt.Sprintf("Неверное значение поля '%s': %s", field, reason),
		Details: map[string]any{
			"field":  field,
			"reason": reason,
		},
	}
}

func NewDuplicateAccount(email string) *BusinessError {
	return NewBusinessError(CodeDuplicateAccount, "Пользователь с таким email уже существует",
		ToDetail("email", email))
}

// одинаковая ошибка для неверного email и неверного пароля
func NewInvalidCredentials() *BusinessError {
	return NewBusinessError(CodeInvalidCredentials, "Неверный email или пароль")
}

func NewUnauthenticated() *BusinessError {
	return NewBusinessError(CodeUnauthenticated, "Требуется вход в систему")
}

func NewVersionConflict(resource string, id string, err error) *BusinessError {
	busErr := NewBusinessError(CodeVersionConflict, fmt.Sprintf("%s %s изменён(а) параллельно, повторите запрос", resource, id),
		ToDetail("resource", resource),
		ToDetail("id", id))
	busErr.Err = err
	return busErr
}
