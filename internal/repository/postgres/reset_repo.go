package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskManager/internal/logger"
	"taskManager/internal/models/reset"
	repo "taskManager/internal/repository"

	"github.com/jackc/pgx/v5"
)

type ResetTokenStorage struct {
	*Storage
}

func NewResetTokenStorage(storage *Storage) *ResetTokenStorage {
	return &ResetTokenStorage{Storage: storage}
}

func (s *ResetTokenStorage) Save(ctx context.Context, token *reset.Token) error {
	query := `INSERT INTO reset_tokens
				(token, email, created_at, expires_at)
				VALUES ($1, $2, $3, $4)`

	_, err := s.pool.Exec(ctx, query, token.Token, token.Email, token.CreatedAt, token.ExpiresAt)
	if err != nil {
		if isUniqueViolation(err) {
			return repo.ErrDuplicate
		}
		logger.Error("Repository: Не удалось сохранить токен сброса", err)
		return fmt.Errorf("сохранение токена: %w", err)
	}
	return nil
}

// Consume атомарно помечает токен использованным
func (s *ResetTokenStorage) Consume(ctx context.Context, token string, now time.Time) (*reset.Token, error) {
	query := `UPDATE reset_tokens
				SET used_at = $2
			WHERE token = $1 AND used_at IS NULL AND expires_at > $2
			RETURNING token, email, created_at, expires_at, used_at`

	consumed := &reset.Token{}
	err := s.pool.QueryRow(ctx, query, token, now).Scan(
		&consumed.Token,
		&consumed.Email,
		&consumed.CreatedAt,
		&consumed.ExpiresAt,
		&consumed.UsedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось использовать токен сброса", err)
		return nil, fmt.Errorf("использование токена: %w", err)
	}
	return consumed, nil
}

func (s *ResetTokenStorage) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM reset_tokens WHERE used_at IS NOT NULL OR expires_at <= $1`, now)
	if err != nil {
		logger.Error("Repository: Не удалось очистить токены сброса", err)
		return 0, fmt.Errorf("очистка токенов: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
