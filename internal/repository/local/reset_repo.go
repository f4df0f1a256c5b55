package local

import (
	"context"
	"time"

	"taskManager/internal/models/reset"
	repo "taskManager/internal/repository"
)

type ResetTokenStorage struct {
	store *Store
}

func NewResetTokenStorage(store *Store) *ResetTokenStorage {
	return &ResetTokenStorage{store: store}
}

func (s *ResetTokenStorage) Save(ctx context.Context, token *reset.Token) error {
	var tokens map[string]*reset.Token
	return s.store.mutate(ctx, KeyResetTokens, &tokens, func() error {
		if tokens == nil {
			tokens = make(map[string]*reset.Token)
		}
		if _, ok := tokens[token.Token]; ok {
			return repo.ErrDuplicate
		}
		cp := *token
		tokens[token.Token] = &cp
		return nil
	})
}

func (s *ResetTokenStorage) Consume(ctx context.Context, token string, now time.Time) (*reset.Token, error) {
	var tokens map[string]*reset.Token
	var consumed reset.Token
	err := s.store.mutate(ctx, KeyResetTokens, &tokens, func() error {
		found, ok := tokens[token]
		if !ok || !found.Usable(now) {
			return repo.ErrNotFound
		}
		usedAt := now
		found.UsedAt = &usedAt
		consumed = *found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &consumed, nil
}

func (s *ResetTokenStorage) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	var tokens map[string]*reset.Token
	removed := 0
	err := s.store.mutate(ctx, KeyResetTokens, &tokens, func() error {
		for key, t := range tokens {
			if !t.Usable(now) {
				delete(tokens, key)
				removed++
			}
		}
		return nil
	})
	return removed, err
}
