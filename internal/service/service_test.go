package service_test

import (
	"context"
	"testing"
	"time"

	"taskManager/internal/models/reset"
	"taskManager/internal/models/task"
	"taskManager/internal/models/user"
	"taskManager/internal/service"
	"taskManager/internal/session"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// минимальная стоимость bcrypt, чтобы тесты не тормозили
const testBcryptCost = 4

// MockTaskRepository - мок репозитория задач
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTaskRepository) ListByOwner(ctx context.Context, owner string) ([]*task.Task, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockTaskRepository) GetByID(ctx context.Context, owner string, id int64) (*task.Task, error) {
	args := m.Called(ctx, owner, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskRepository) Create(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTaskRepository) Update(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTaskRepository) Delete(ctx context.Context, owner string, id int64) error {
	args := m.Called(ctx, owner, id)
	return args.Error(0)
}

var _ service.TaskRepository = (*MockTaskRepository)(nil)

// MockUserRepository - мок репозитория пользователей
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUserRepository) Create(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	args := m.Called(ctx, email, passwordHash)
	return args.Error(0)
}

var _ service.UserRepository = (*MockUserRepository)(nil)

// recordingNotifier запоминает последний выданный токен сброса
type recordingNotifier struct {
	receipts []reset.Receipt
	tokens   []string
	err      error
}

// Deliver запоминает токен даже при ошибке доставки
func (n *recordingNotifier) Deliver(ctx context.Context, receipt reset.Receipt, token string) error {
	n.tokens = append(n.tokens, token)
	if n.err != nil {
		return n.err
	}
	n.receipts = append(n.receipts, receipt)
	return nil
}

func (n *recordingNotifier) lastToken(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, n.tokens, "токен не был доставлен")
	return n.tokens[len(n.tokens)-1]
}

func newSession(email string) *session.Session {
	sess := session.New()
	sess.Start(&user.User{ID: 1, Name: "Test", Email: email})
	return sess
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}
