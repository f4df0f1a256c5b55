package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"taskManager/internal/models/task"
	"taskManager/internal/repository"
	"taskManager/internal/session"
)

// здесь происходит проверка ошибок бизнес-логики задач
type TaskService struct {
	repo TaskRepository
	ids  *IDSource
	now  func() time.Time
}

func NewTaskService(repo TaskRepository, ids *IDSource) *TaskService {
	if ids == nil {
		ids = NewIDSource(nil)
	}
	return &TaskService{
		repo: repo,
		ids:  ids,
		now:  time.Now,
	}
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	if err := s.repo.HealthCheck(ctx); err != nil {
		return fmt.Errorf("проверка здоровья сервиса: %w", err)
	}
	return nil
}

// List возвращает задачи владельца сессии в порядке добавления
func (s *TaskService) List(ctx context.Context, sess *session.Session) ([]*task.Task, error) {
	owner, err := ownerOf(sess)
	if err != nil {
		return nil, err
	}

	tasks, err := s.repo.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	return tasks, nil
}

// ListOrdered возвращает задачи в порядке отображения
func (s *TaskService) ListOrdered(ctx context.Context, sess *session.Session) ([]*task.Task, error) {
	tasks, err := s.List(ctx, sess)
	if err != nil {
		return nil, err
	}
	return task.Order(tasks), nil
}

func (s *TaskService) Add(ctx context.Context, sess *session.Session, title, category string, priority task.Priority, start, end time.Time) (*task.Task, error) {
	owner, err := ownerOf(sess)
	if err != nil {
		return nil, err
	}

	if category == "" {
		category = task.DefaultCategory
	}
	if priority == "" {
		priority = task.PriorityMedium
	}

	newTask := &task.Task{
		ID:        s.ids.Next(),
		Owner:     owner,
		Title:     strings.TrimSpace(title),
		Category:  category,
		Priority:  priority,
		Start:     start,
		End:       end,
		Completed: false,
		CreatedAt: s.now(),
	}

	if err := validateTask(newTask); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, newTask); err != nil {
		return nil, fmt.Errorf("добавление задачи: %w", err)
	}
	return newTask, nil
}

// Get возвращает одну задачу владельца для просмотра подробностей
func (s *TaskService) Get(ctx context.Context, sess *session.Session, id int64) (*task.Task, error) {
	owner, err := ownerOf(sess)
	if err != nil {
		return nil, err
	}
	return s.getOwned(ctx, owner, id)
}

func (s *TaskService) ToggleCompletion(ctx context.Context, sess *session.Session, id int64) (*task.Task, error) {
	owner, err := ownerOf(sess)
	if err != nil {
		return nil, err
	}

	existing, err := s.getOwned(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	existing.Completed = !existing.Completed
	existing.UpdatedAt = &now

	if err := s.save(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// Update меняет редактируемые поля задачи и проверяет её по тем же правилам, что и при добавлении
func (s *TaskService) Update(ctx context.Context, sess *session.Session, id int64, options ...task.TaskOption) (*task.Task, error) {
	owner, err := ownerOf(sess)
	if err != nil {
		return nil, err
	}

	existing, err := s.getOwned(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	for _, opt := range options {
		if opt != nil {
			opt(existing)
		}
	}
	// владельца и статус выполнения опции поменять не могут
	existing.Owner = owner

	if err := validateTask(existing); err != nil {
		return nil, err
	}

	now := s.now()
	existing.UpdatedAt = &now

	if err := s.save(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *TaskService) Delete(ctx context.Context, sess *session.Session, id int64) error {
	owner, err := ownerOf(sess)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, owner, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NewNotFound("задача", strconv.FormatInt(id, 10))
		}
		return fmt.Errorf("удаление задачи: %w", err)
	}
	return nil
}

func (s *TaskService) Stats(ctx context.Context, sess *session.Session) (task.Stats, error) {
	tasks, err := s.List(ctx, sess)
	if err != nil {
		return task.Stats{}, err
	}
	return task.CountStats(tasks), nil
}

func (s *TaskService) getOwned(ctx context.Context, owner string, id int64) (*task.Task, error) {
	existing, err := s.repo.GetByID(ctx, owner, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewNotFound("задача", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("получение задачи: %w", err)
	}
	return existing, nil
}

func (s *TaskService) save(ctx context.Context, t *task.Task) error {
	if err := s.repo.Update(ctx, t); err != nil {
		id := strconv.FormatInt(t.ID, 10)
		switch {
		case errors.Is(err, repository.ErrVersionConflict):
			return NewVersionConflict("задача", id, err)
		case errors.Is(err, repository.ErrNotFound):
			return NewNotFound("задача", id)
		default:
			return fmt.Errorf("обновление задачи: %w", err)
		}
	}
	return nil
}

func ownerOf(sess *session.Session) (string, error) {
	identity, ok := sess.Current()
	if !ok {
		return "", NewUnauthenticated()
	}
	return identity.Email, nil
}

func validateTask(t *task.Task) error {
	if t.Title == "" {
		return NewValidationError("title", "обязательное поле")
	}
	if t.Start.IsZero() {
		return NewValidationError("start", "обязательное поле")
	}
	if t.End.IsZero() {
		return NewValidationError("end", "обязательное поле")
	}
	if !t.Start.Before(t.End) {
		return NewValidationError("end", "время окончания должно быть позже времени начала")
	}
	if !t.Priority.Valid() {
		return NewValidationError("priority", fmt.Sprintf("допустимые значения: %s, %s, %s",
			task.PriorityHigh, task.PriorityMedium, task.PriorityLow))
	}
	return nil
}
