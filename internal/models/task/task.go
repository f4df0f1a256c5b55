package task

import (
	"time"
)

type Task struct {
	ID        int64      `json:"id" db:"id"`
	Owner     string     `json:"owner" db:"owner"`
	Title     string     `json:"title" db:"title"`
	Category  string     `json:"category" db:"category"`
	Priority  Priority   `json:"priority" db:"priority"`
	Start     time.Time  `json:"start" db:"start_at"`
	End       time.Time  `json:"end" db:"end_at"`
	Completed bool       `json:"completed" db:"completed"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty" db:"updated_at,omitempty"`
	Version   int        `json:"version" db:"version"`
}

type Priority string

const PriorityHigh Priority = "High"
const PriorityMedium Priority = "Medium"
const PriorityLow Priority = "Low"

// категория по умолчанию из формы добавления
const DefaultCategory = "Academic"

// Rank возвращает порядок приоритета: High=1, Medium=2, Low=3, остальное после Low
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

func (p Priority) Valid() bool {
	return p.Rank() < 4
}

type Stats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
}

func CountStats(tasks []*Task) Stats {
	stats := Stats{Total: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			stats.Completed++
		}
	}
	stats.Pending = stats.Total - stats.Completed
	return stats
}

// Clone возвращает копию задачи, чтобы хранилища не отдавали наружу свои указатели
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	cp := *t
	if t.UpdatedAt != nil {
		updated := *t.UpdatedAt
		cp.UpdatedAt = &updated
	}
	return &cp
}
