package service

import (
	"context"
	"time"

	"taskManager/internal/models/reset"
	"taskManager/internal/models/task"
	"taskManager/internal/models/user"
)

// хранилища сообщают об ошибках через repository.ErrNotFound, ErrDuplicate и ErrVersionConflict

type UserRepository interface {
	HealthCheck(context.Context) error
	Create(context.Context, *user.User) error
	GetByEmail(context.Context, string) (*user.User, error)
	UpdatePassword(ctx context.Context, email, passwordHash string) error
}

// TaskRepository хранит задачи, разбитые по владельцам. Все методы работают
// только с коллекцией переданного владельца.
type TaskRepository interface {
	HealthCheck(context.Context) error
	ListByOwner(ctx context.Context, owner string) ([]*task.Task, error)
	GetByID(ctx context.Context, owner string, id int64) (*task.Task, error)
	Create(context.Context, *task.Task) error
	Update(context.Context, *task.Task) error
	Delete(ctx context.Context, owner string, id int64) error
}

type ResetTokenRepository interface {
	Save(context.Context, *reset.Token) error
	// Consume помечает токен использованным, если он ещё годен на момент now
	Consume(ctx context.Context, token string, now time.Time) (*reset.Token, error)
	PurgeExpired(ctx context.Context, now time.Time) (int, error)
}
