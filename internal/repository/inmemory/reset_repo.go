package inmemory

import (
	"context"
	"sync"
	"time"

	"taskManager/internal/models/reset"
	repo "taskManager/internal/repository"
)

type ResetTokenStorage struct {
	storage map[string]*reset.Token
	mtx     *sync.Mutex
}

func NewResetTokenStorage() *ResetTokenStorage {
	return &ResetTokenStorage{
		storage: make(map[string]*reset.Token),
		mtx:     &sync.Mutex{},
	}
}

func (s *ResetTokenStorage) Save(ctx context.Context, token *reset.Token) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[token.Token]; ok {
		return repo.ErrDuplicate
	}
	cp := *token
	s.storage[token.Token] = &cp
	return nil
}

func (s *ResetTokenStorage) Consume(ctx context.Context, token string, now time.Time) (*reset.Token, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	found, ok := s.storage[token]
	if !ok || !found.Usable(now) {
		return nil, repo.ErrNotFound
	}
	usedAt := now
	found.UsedAt = &usedAt

	cp := *found
	return &cp, nil
}

// PurgeExpired удаляет просроченные и использованные токены
func (s *ResetTokenStorage) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	removed := 0
	for key, t := range s.storage {
		if !t.Usable(now) {
			delete(s.storage, key)
			removed++
		}
	}
	return removed, nil
}
