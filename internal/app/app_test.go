package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"taskManager/internal/app"
	"taskManager/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = "0"
	cfg.Server.RateLimit = 0
	cfg.Auth.BcryptCost = 4
	return &cfg
}

type client struct {
	t      *testing.T
	server *httptest.Server
	token  string
}

func (c *client) call(method, path string, body any) (int, map[string]any) {
	c.t.Helper()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(c.t, err)
	}

	req, err := http.NewRequest(method, c.server.URL+path, bytes.NewReader(payload))
	require.NoError(c.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.server.Client().Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	decoded := map[string]any{}
	if resp.StatusCode != http.StatusNoContent {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(&decoded))
	}
	return resp.StatusCode, decoded
}

func (c *client) signupAndLogin(name, email string) {
	c.t.Helper()

	status, _ := c.call(http.MethodPost, "/auth/signup", map[string]string{
		"name": name, "email": email, "password": "secret1", "confirm_password": "secret1",
	})
	require.Equal(c.t, http.StatusCreated, status)

	status, body := c.call(http.MethodPost, "/auth/login", map[string]string{"email": email, "password": "secret1"})
	require.Equal(c.t, http.StatusOK, status)
	c.token = body["token"].(string)
}

func (c *client) addTask(title, priority string) int64 {
	c.t.Helper()

	status, body := c.call(http.MethodPost, "/tasks", map[string]string{
		"title":    title,
		"priority": priority,
		"start":    "2024-05-06T09:00",
		"end":      "2024-05-06T10:30",
	})
	require.Equal(c.t, http.StatusCreated, status, body)
	return int64(body["task"].(map[string]any)["id"].(float64))
}

func listTitles(body map[string]any) []string {
	var res []string
	for _, raw := range body["tasks"].([]any) {
		res = append(res, raw.(map[string]any)["title"].(string))
	}
	return res
}

func startApp(t *testing.T, cfg *config.Config) *httptest.Server {
	t.Helper()

	application, err := app.New(cfg).Init(context.Background())
	require.NoError(t, err)
	t.Cleanup(application.Shutdown)

	server := httptest.NewServer(application.Handler())
	t.Cleanup(server.Close)
	return server
}

// TestApp_TaskFlow тестирует полный сценарий через HTTP на каждом хранилище
func TestApp_TaskFlow(t *testing.T) {
	backends := map[string]func(t *testing.T) *config.Config{
		"inmemory": func(t *testing.T) *config.Config {
			return testConfig()
		},
		"local": func(t *testing.T) *config.Config {
			cfg := testConfig()
			cfg.Repository.Type = config.RepositoryLocal
			cfg.Local.Path = filepath.Join(t.TempDir(), "tasks.db")
			return cfg
		},
	}

	for name, newConfig := range backends {
		t.Run("success - "+name, func(t *testing.T) {
			server := startApp(t, newConfig(t))

			alice := &client{t: t, server: server}
			alice.signupAndLogin("Alice", "alice@example.com")

			a := alice.addTask("A", "Low")
			b := alice.addTask("B", "High")
			alice.addTask("C", "High")
			alice.addTask("D", "Medium")

			status, _ := alice.call(http.MethodPost, "/tasks/"+itoa(b)+"/toggle", nil)
			require.Equal(t, http.StatusOK, status)

			status, body := alice.call(http.MethodGet, "/tasks", nil)
			require.Equal(t, http.StatusOK, status)
			assert.Equal(t, []string{"C", "D", "A", "B"}, listTitles(body))

			status, body = alice.call(http.MethodGet, "/tasks?order=insertion", nil)
			require.Equal(t, http.StatusOK, status)
			assert.Equal(t, []string{"A", "B", "C", "D"}, listTitles(body))

			status, body = alice.call(http.MethodGet, "/tasks/stats", nil)
			require.Equal(t, http.StatusOK, status)
			assert.Equal(t, map[string]any{"total": 4.0, "completed": 1.0, "pending": 3.0}, body["stats"])

			status, body = alice.call(http.MethodPatch, "/tasks/"+itoa(a), map[string]string{"end": "2024-05-06T08:00"})
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, "VALIDATION_ERROR", body["error"])

			bob := &client{t: t, server: server}
			bob.signupAndLogin("Bob", "bob@example.com")

			status, body = bob.call(http.MethodGet, "/tasks", nil)
			require.Equal(t, http.StatusOK, status)
			assert.Empty(t, body["tasks"])

			status, _ = bob.call(http.MethodGet, "/tasks/"+itoa(b), nil)
			assert.Equal(t, http.StatusNotFound, status)

			status, body = alice.call(http.MethodGet, "/tasks/"+itoa(b), nil)
			require.Equal(t, http.StatusOK, status)
			detail := body["task"].(map[string]any)
			assert.Equal(t, "B", detail["title"])
			assert.Equal(t, true, detail["completed"])

			status, _ = bob.call(http.MethodDelete, "/tasks/"+itoa(a), nil)
			assert.Equal(t, http.StatusNotFound, status)

			status, _ = alice.call(http.MethodDelete, "/tasks/"+itoa(a), nil)
			assert.Equal(t, http.StatusNoContent, status)

			status, _ = alice.call(http.MethodPost, "/auth/logout", nil)
			assert.Equal(t, http.StatusNoContent, status)

			status, body = alice.call(http.MethodGet, "/tasks", nil)
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Equal(t, "UNAUTHENTICATED", body["error"])
		})
	}
}

func TestApp_AccountErrors(t *testing.T) {
	server := startApp(t, testConfig())
	c := &client{t: t, server: server}
	c.signupAndLogin("Alice", "alice@example.com")

	status, body := c.call(http.MethodPost, "/auth/signup", map[string]string{
		"name": "Alice", "email": "ALICE@example.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "DUPLICATE_ACCOUNT", body["error"])

	_, unknown := c.call(http.MethodPost, "/auth/login", map[string]string{"email": "bob@example.com", "password": "secret1"})
	_, wrong := c.call(http.MethodPost, "/auth/login", map[string]string{"email": "alice@example.com", "password": "nope123"})
	assert.Equal(t, unknown, wrong)

	status, body = c.call(http.MethodPost, "/auth/reset", map[string]string{"email": "alice@example.com", "method": "sms"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", body["error"])

	status, body = c.call(http.MethodPost, "/auth/reset", map[string]string{"email": "alice@example.com"})
	assert.Equal(t, http.StatusAccepted, status)
	receipt := body["receipt"].(map[string]any)
	assert.Equal(t, "email", receipt["method"])
	assert.NotContains(t, receipt, "token")

	status, _ = c.call(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestApp_InitRejectsUnknownRepository(t *testing.T) {
	cfg := testConfig()
	cfg.Repository.Type = "mongo"

	_, err := app.New(cfg).Init(context.Background())
	assert.Error(t, err)
}

// TestApp_Run тестирует запуск и остановку сервера по отмене контекста
func TestApp_Run(t *testing.T) {
	application, err := app.New(testConfig()).Init(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- application.Run(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("сервер не остановился")
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
