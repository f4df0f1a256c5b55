package task

import (
	"strings"
	"time"
)

// TaskOption изменяет редактируемые поля задачи.
// Выполнение задачи меняется только через переключение статуса.
type TaskOption func(*Task)

func WithTitle(title string) TaskOption {
	return func(task *Task) {
		task.Title = strings.TrimSpace(title)
	}
}

func WithCategory(category string) TaskOption {
	if category == "" {
		return nil
	}
	return func(task *Task) {
		task.Category = category
	}
}

func WithPriority(priority Priority) TaskOption {
	if priority == "" {
		return nil
	}
	return func(task *Task) {
		task.Priority = priority
	}
}

func WithStart(start time.Time) TaskOption {
	if start.IsZero() {
		return nil
	}
	return func(task *Task) {
		task.Start = start
	}
}

func WithEnd(end time.Time) TaskOption {
	if end.IsZero() {
		return nil
	}
	return func(task *Task) {
		task.End = end
	}
}
