package handlers

import (
	"context"
	"time"

	"taskManager/internal/models/reset"
	"taskManager/internal/models/task"
	"taskManager/internal/models/user"
	"taskManager/internal/session"
)

type AccountService interface {
	HealthCheck(ctx context.Context) error
	Register(ctx context.Context, name, email, password, confirmPassword string) (*user.User, error)
	Authenticate(ctx context.Context, email, password string) (*user.User, error)
}

type ResetService interface {
	RequestReset(ctx context.Context, email string, method reset.Method, phone string) (*reset.Receipt, error)
	ConfirmReset(ctx context.Context, token, password, confirmPassword string) error
}

type SessionRegistry interface {
	Open(u *user.User) (string, *session.Session)
	Close(token string)
}

type TaskService interface {
	HealthCheck(ctx context.Context) error
	List(ctx context.Context, sess *session.Session) ([]*task.Task, error)
	ListOrdered(ctx context.Context, sess *session.Session) ([]*task.Task, error)
	Get(ctx context.Context, sess *session.Session, id int64) (*task.Task, error)
	Add(ctx context.Context, sess *session.Session, title, category string, priority task.Priority, start, end time.Time) (*task.Task, error)
	ToggleCompletion(ctx context.Context, sess *session.Session, id int64) (*task.Task, error)
	Update(ctx context.Context, sess *session.Session, id int64, options ...task.TaskOption) (*task.Task, error)
	Delete(ctx context.Context, sess *session.Session, id int64) error
	Stats(ctx context.Context, sess *session.Session) (task.Stats, error)
}
