package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskManager/internal/logger"
	"taskManager/internal/models/user"
	repo "taskManager/internal/repository"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type UserStorage struct {
	*Storage
}

func NewUserStorage(storage *Storage) *UserStorage {
	return &UserStorage{Storage: storage}
}

func (s *UserStorage) Create(ctx context.Context, userToCreate *user.User) error {
	start := time.Now()

	query := `INSERT INTO users
				(id, name, email, password_hash, created_at)
				VALUES ($1, $2, $3, $4, $5)
				RETURNING created_at`

	err := s.pool.QueryRow(ctx, query,
		userToCreate.ID,
		userToCreate.Name,
		user.NormalizeEmail(userToCreate.Email),
		userToCreate.PasswordHash,
		userToCreate.CreatedAt,
	).Scan(&userToCreate.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return repo.ErrDuplicate
		}
		logger.Error("Repository: Не удалось добавить пользователя", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("добавление пользователя: %w", err)
	}

	warnIfSlow(start, time.Millisecond*50, "create_user")
	return nil
}

func (s *UserStorage) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	start := time.Now()

	query := `SELECT
				id,
				name,
				email,
				password_hash,
				created_at
				FROM users
				WHERE email = $1`

	found := &user.User{}
	err := s.pool.QueryRow(ctx, query, user.NormalizeEmail(email)).Scan(
		&found.ID,
		&found.Name,
		&found.Email,
		&found.PasswordHash,
		&found.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить пользователя", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение пользователя: %w", err)
	}

	warnIfSlow(start, time.Millisecond*100, "get_user")
	return found, nil
}

func (s *UserStorage) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	start := time.Now()

	query := `UPDATE users
				SET password_hash = $1
			WHERE email = $2`

	tag, err := s.pool.Exec(ctx, query, passwordHash, user.NormalizeEmail(email))
	if err != nil {
		logger.Error("Repository: Не удалось обновить пароль", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("обновление пароля: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}

	warnIfSlow(start, time.Millisecond*100, "update_password")
	return nil
}
