package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskManager/internal/models/reset"
	"taskManager/internal/models/user"
	"taskManager/internal/repository"

	"github.com/google/uuid"
)

const DefaultResetTokenTTL = 15 * time.Minute

// Notifier доставляет токен сброса пользователю. Настоящей отправки писем и SMS нет.
type Notifier interface {
	Deliver(ctx context.Context, receipt reset.Receipt, token string) error
}

type ResetService struct {
	accounts *AccountService
	tokens   ResetTokenRepository
	notifier Notifier
	ttl      time.Duration
	now      func() time.Time
}

func NewResetService(accounts *AccountService, tokens ResetTokenRepository, notifier Notifier, ttl time.Duration) *ResetService {
	if ttl <= 0 {
		ttl = DefaultResetTokenTTL
	}
	return &ResetService{
		accounts: accounts,
		tokens:   tokens,
		notifier: notifier,
		ttl:      ttl,
		now:      time.Now,
	}
}

// RequestReset проверяет запрос и выдаёт квитанцию об имитации отправки.
// Сам токен в квитанцию не попадает, он уходит только через Notifier.
func (s *ResetService) RequestReset(ctx context.Context, email string, method reset.Method, phone string) (*reset.Receipt, error) {
	email = user.NormalizeEmail(email)
	phone = strings.TrimSpace(phone)
	if method == "" {
		method = reset.MethodEmail
	}

	if method == reset.MethodSMS && phone == "" {
		return nil, NewValidationError("phone", "обязательное поле для SMS")
	}
	if email == "" {
		return nil, NewValidationError("email", "обязательное поле")
	}
	if method != reset.MethodEmail && method != reset.MethodSMS {
		return nil, NewValidationError("method", fmt.Sprintf("допустимые значения: %s, %s", reset.MethodEmail, reset.MethodSMS))
	}

	exists, err := s.accounts.Exists(ctx, email)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, NewNotFound("аккаунт", email)
	}

	now := s.now()
	token := &reset.Token{
		Token:     uuid.NewString(),
		Email:     email,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.tokens.Save(ctx, token); err != nil {
		return nil, fmt.Errorf("сохранение токена сброса: %w", err)
	}

	target := email
	if method == reset.MethodSMS {
		target = phone
	}
	receipt := reset.Receipt{
		Email:       email,
		Method:      method,
		Target:      target,
		RequestedAt: now,
		ExpiresAt:   token.ExpiresAt,
	}

	if s.notifier != nil {
		if err := s.notifier.Deliver(ctx, receipt, token.Token); err != nil {
			// недоставленный токен гасится сразу
			if _, revokeErr := s.tokens.Consume(ctx, token.Token, now); revokeErr != nil {
				err = errors.Join(err, fmt.Errorf("отзыв токена: %w", revokeErr))
			}
			return nil, fmt.Errorf("доставка токена сброса: %w", err)
		}
	}
	return &receipt, nil
}

// ConfirmReset меняет пароль по одноразовому токену
func (s *ResetService) ConfirmReset(ctx context.Context, token, password, confirmPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return NewValidationError("token", "обязательное поле")
	}
	if err := validatePassword(password, confirmPassword); err != nil {
		return err
	}

	consumed, err := s.tokens.Consume(ctx, token, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NewNotFound("токен сброса", "")
		}
		return fmt.Errorf("использование токена сброса: %w", err)
	}

	return s.accounts.changePassword(ctx, consumed.Email, password)
}

func (s *ResetService) Name() string {
	return "reset_tokens"
}

func (s *ResetService) Sweep(ctx context.Context, now time.Time) (int, error) {
	return s.PurgeExpired(ctx, now)
}

func (s *ResetService) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	removed, err := s.tokens.PurgeExpired(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("очистка токенов сброса: %w", err)
	}
	return removed, nil
}
