package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskManager/internal/logger"
	"taskManager/internal/models/task"
	repo "taskManager/internal/repository"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const taskColumns = `id,
				owner,
				title,
				category,
				priority,
				start_at,
				end_at,
				completed,
				created_at,
				updated_at,
				version`

type TaskStorage struct {
	*Storage
}

func NewTaskStorage(storage *Storage) *TaskStorage {
	return &TaskStorage{Storage: storage}
}

func scanTask(row pgx.Row) (*task.Task, error) {
	t := &task.Task{}
	err := row.Scan(
		&t.ID,
		&t.Owner,
		&t.Title,
		&t.Category,
		&t.Priority,
		&t.Start,
		&t.End,
		&t.Completed,
		&t.CreatedAt,
		&t.UpdatedAt,
		&t.Version,
	)
	return t, err
}

func (s *TaskStorage) Create(ctx context.Context, taskToCreate *task.Task) error {
	start := time.Now()

	createdAt := taskToCreate.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `INSERT INTO tasks
				(id, owner, title, category, priority, start_at, end_at, completed, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
				RETURNING created_at, version`

	err := s.pool.QueryRow(ctx, query,
		taskToCreate.ID,
		taskToCreate.Owner,
		taskToCreate.Title,
		taskToCreate.Category,
		taskToCreate.Priority,
		taskToCreate.Start,
		taskToCreate.End,
		taskToCreate.Completed,
		createdAt,
	).Scan(&taskToCreate.CreatedAt, &taskToCreate.Version)

	if err != nil {
		if isUniqueViolation(err) {
			return repo.ErrDuplicate
		}
		logger.Error("Repository: Не удалось добавить задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("добавление задачи: %w", err)
	}

	warnIfSlow(start, time.Millisecond*50, "create_task")
	return nil
}

// Update обновляет задачу с проверкой версии
func (s *TaskStorage) Update(ctx context.Context, taskToUpdate *task.Task) error {
	start := time.Now()

	query := `UPDATE tasks
			SET title = $1,
				category = $2,
				priority = $3,
				start_at = $4,
				end_at = $5,
				completed = $6,
				updated_at = COALESCE($7, NOW()),
				version = version + 1
			WHERE id = $8 AND owner = $9 AND version = $10
			RETURNING updated_at, version`

	err := s.pool.QueryRow(ctx, query,
		taskToUpdate.Title,
		taskToUpdate.Category,
		taskToUpdate.Priority,
		taskToUpdate.Start,
		taskToUpdate.End,
		taskToUpdate.Completed,
		taskToUpdate.UpdatedAt,
		taskToUpdate.ID,
		taskToUpdate.Owner,
		taskToUpdate.Version,
	).Scan(&taskToUpdate.UpdatedAt, &taskToUpdate.Version)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return s.missingOrConflict(ctx, taskToUpdate)
		}
		logger.Error("Repository: Не удалось обновить задачу", err)
		return fmt.Errorf("обновление задачи: %w", err)
	}

	warnIfSlow(start, time.Millisecond*100, "update_task")
	return nil
}

// missingOrConflict различает отсутствие задачи и устаревшую версию после неудачного UPDATE
func (s *TaskStorage) missingOrConflict(ctx context.Context, t *task.Task) error {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM tasks WHERE id = $1 AND owner = $2)`,
		t.ID, t.Owner,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("проверка задачи: %w", err)
	}
	if !exists {
		return repo.ErrNotFound
	}

	logger.Warn("Repository: Конфликт версий при обновлении задачи",
		zap.Int64("task_id", t.ID),
		zap.Int("expected_version", t.Version))
	return repo.ErrVersionConflict
}

func (s *TaskStorage) Delete(ctx context.Context, owner string, id int64) error {
	start := time.Now()

	query := `DELETE FROM tasks
				WHERE id = $1 AND owner = $2`

	tag, err := s.pool.Exec(ctx, query, id, owner)
	if err != nil {
		logger.Error("Repository: Удаление задачи", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("удаление задачи: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}

	warnIfSlow(start, time.Millisecond*100, "delete_task")
	return nil
}

func (s *TaskStorage) GetByID(ctx context.Context, owner string, id int64) (*task.Task, error) {
	start := time.Now()

	query := `SELECT ` + taskColumns + `
				FROM tasks
				WHERE id = $1 AND owner = $2`

	found, err := scanTask(s.pool.QueryRow(ctx, query, id, owner))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить задачу", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задачи: %w", err)
	}

	warnIfSlow(start, time.Millisecond*100, "get_task")
	return found, nil
}

// ListByOwner возвращает задачи владельца в порядке добавления
func (s *TaskStorage) ListByOwner(ctx context.Context, owner string) ([]*task.Task, error) {
	start := time.Now()

	query := `SELECT ` + taskColumns + `
				FROM tasks
				WHERE owner = $1
				ORDER BY seq`

	rows, err := s.pool.Query(ctx, query, owner)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	defer rows.Close()

	tasks := []*task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			logger.Warn("Repository: Ошибка сканирования задачи", zap.Error(err))
			return nil, fmt.Errorf("сканирование задачи: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}

	warnIfSlow(start, time.Millisecond*50+time.Millisecond*time.Duration(len(tasks)), "list_tasks")
	return tasks, nil
}
