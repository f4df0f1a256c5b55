// Package local хранит данные как целые JSON-документы по ключам в файле SQLite,
// повторяя раскладку localStorage браузерного клиента: пользователи, задачи по
// владельцам и токены сброса лежат каждый под своим ключом.
package local

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"taskManager/internal/logger"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const (
	KeyUsers       = "taskManagerUsers"
	KeyTasks       = "taskManagerTasks"
	KeyResetTokens = "taskManagerResetTokens"
)

//go:embed schema.sql
var schemaFS embed.FS

type Store struct {
	db *sql.DB
}

func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("путь к базе обязателен")
	}
	if err := ensureDir(path); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		logger.Error("Repository: Ошибка открытия SQLite", err)
		return nil, fmt.Errorf("открытие базы: %w", err)
	}
	// одно соединение: запись документов идёт строго последовательно
	db.SetMaxOpenConns(1)

	if err := applySchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info("Repository: Локальное хранилище открыто", zap.String("path", path))
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	logger.Info("Repository: Закрытие локального хранилища")
	return s.db.Close()
}

func (s *Store) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	logger.Info("Repository: Соединение стабильно")
	return nil
}

func applySchema(ctx context.Context, db *sql.DB) error {
	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("чтение схемы: %w", err)
	}
	if _, err := db.ExecContext(ctx, string(schemaSQL)); err != nil {
		return fmt.Errorf("применение схемы: %w", err)
	}
	return nil
}

// read загружает документ по ключу в dst; отсутствие документа оставляет dst пустым
func (s *Store) read(ctx context.Context, key string, dst any) error {
	return load(ctx, s.db, key, dst)
}

// mutate читает документ, вызывает fn и сохраняет документ целиком в одной транзакции.
// Ошибка из fn откатывает транзакцию и возвращается как есть.
func (s *Store) mutate(ctx context.Context, key string, dst any, fn func() error) error {
	start := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("начало транзакции: %w", err)
	}
	defer tx.Rollback()

	if err := load(ctx, tx, key, dst); err != nil {
		return err
	}
	if err := fn(); err != nil {
		return err
	}

	payload, err := json.Marshal(dst)
	if err != nil {
		return fmt.Errorf("сериализация документа %s: %w", key, err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO documents (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(payload), time.Now().UTC())
	if err != nil {
		logger.Error("Repository: Не удалось сохранить документ", err, zap.String("key", key))
		return fmt.Errorf("сохранение документа %s: %w", key, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("фиксация транзакции: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленная операция", zap.String("key", key), zap.Duration("ms", time.Since(start)))
	}
	return nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func load(ctx context.Context, q queryer, key string, dst any) error {
	var raw string
	err := q.QueryRowContext(ctx, `SELECT value FROM documents WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		logger.Error("Repository: Не удалось прочитать документ", err, zap.String("key", key))
		return fmt.Errorf("чтение документа %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("разбор документа %s: %w", key, err)
	}
	return nil
}

func ensureDir(path string) error {
	if strings.Contains(path, ":memory:") || strings.Contains(path, "mode=memory") {
		return nil
	}
	clean := strings.TrimPrefix(path, "file:")
	clean = strings.Split(clean, "?")[0]
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("создание каталога %q: %w", dir, err)
	}
	return nil
}
