package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"taskManager/internal/models/reset"
	"taskManager/internal/models/task"
	"taskManager/internal/models/user"
)

// поле datetime-local из браузера приходит без секунд и часового пояса
const datetimeLocalLayout = "2006-01-02T15:04"

// Timestamp принимает RFC3339 или значение поля datetime-local (считается UTC)
type Timestamp struct {
	time.Time
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		ts.Time = time.Time{}
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, datetimeLocalLayout + ":05", datetimeLocalLayout} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			ts.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("неверный формат времени %q", raw)
}

type SignupRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ResetRequest struct {
	Email  string `json:"email"`
	Method string `json:"method"`
	Phone  string `json:"phone"`
}

type ResetConfirmRequest struct {
	Token           string `json:"token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type UserResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func FromUser(u *user.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

type ReceiptResponse struct {
	Email       string    `json:"email"`
	Method      string    `json:"method"`
	Target      string    `json:"target"`
	RequestedAt time.Time `json:"requested_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func FromReceipt(r *reset.Receipt) ReceiptResponse {
	return ReceiptResponse{
		Email:       r.Email,
		Method:      string(r.Method),
		Target:      r.Target,
		RequestedAt: r.RequestedAt,
		ExpiresAt:   r.ExpiresAt,
	}
}

type CreateTaskRequest struct {
	Title    string    `json:"title"`
	Category string    `json:"category"`
	Priority string    `json:"priority"`
	Start    Timestamp `json:"start"`
	End      Timestamp `json:"end"`
}

type UpdateTaskRequest struct {
	Title    *string    `json:"title,omitempty"`
	Category *string    `json:"category,omitempty"`
	Priority *string    `json:"priority,omitempty"`
	Start    *Timestamp `json:"start,omitempty"`
	End      *Timestamp `json:"end,omitempty"`
}

// Options переводит заполненные поля запроса в опции обновления
func (r UpdateTaskRequest) Options() []task.TaskOption {
	var options []task.TaskOption
	if r.Title != nil {
		options = append(options, task.WithTitle(*r.Title))
	}
	if r.Category != nil {
		options = append(options, task.WithCategory(*r.Category))
	}
	if r.Priority != nil {
		options = append(options, task.WithPriority(task.Priority(*r.Priority)))
	}
	if r.Start != nil {
		options = append(options, task.WithStart(r.Start.Time))
	}
	if r.End != nil {
		options = append(options, task.WithEnd(r.End.Time))
	}
	return options
}

type TaskResponse struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	Category  string     `json:"category"`
	Priority  string     `json:"priority"`
	Start     time.Time  `json:"start"`
	End       time.Time  `json:"end"`
	Completed bool       `json:"completed"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func FromTask(t *task.Task) TaskResponse {
	return TaskResponse{
		ID:        t.ID,
		Title:     t.Title,
		Category:  t.Category,
		Priority:  string(t.Priority),
		Start:     t.Start,
		End:       t.End,
		Completed: t.Completed,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func FromTaskList(tasks []*task.Task) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t)
	}
	return result
}
