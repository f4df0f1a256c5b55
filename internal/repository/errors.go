package repository

import "errors"

var (
	ErrNotFound        = errors.New("запись не найдена")
	ErrDuplicate       = errors.New("запись уже существует")
	ErrVersionConflict = errors.New("конфликт версий")
)
