package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"taskManager/internal/config"
	"taskManager/internal/handlers"
	"taskManager/internal/logger"
	"taskManager/internal/middleware"
	"taskManager/internal/notify"
	"taskManager/internal/repository/inmemory"
	"taskManager/internal/repository/local"
	"taskManager/internal/repository/postgres"
	"taskManager/internal/service"
	"taskManager/internal/session"
	"taskManager/internal/worker"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type App struct {
	config *config.Config
	server *http.Server
	router *chi.Mux

	users  service.UserRepository
	tasks  service.TaskRepository
	tokens service.ResetTokenRepository

	accountService *service.AccountService
	taskService    *service.TaskService
	resetService   *service.ResetService
	sessions       *session.Registry

	worker    *worker.ExpiryWorker
	shutdowns []func() // функции для graceful shutdown, вызываются в обратном порядке
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) (*App, error) {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return nil, fmt.Errorf("инициализация логгера: %w", err)
	}

	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Завершение работы логгирования...")
		logger.Sync()
	})

	if err := a.initRepositories(ctx); err != nil {
		a.Shutdown()
		return nil, fmt.Errorf("инициализация хранилища: %w", err)
	}

	a.initServices()
	a.initRouter()

	a.server = &http.Server{
		Addr:         a.config.GetServerAddr(),
		Handler:      a.router,
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
	}

	logger.Info("App: Приложение инициализировано",
		zap.String("repository", a.config.Repository.Type),
		zap.String("addr", a.server.Addr))

	return a, nil
}

func (a *App) initRepositories(ctx context.Context) error {
	switch a.config.Repository.Type {
	case config.RepositoryInMemory:
		a.users = inmemory.NewUserStorage()
		a.tasks = inmemory.NewTaskStorage()
		a.tokens = inmemory.NewResetTokenStorage()

	case config.RepositoryLocal:
		store, err := local.Open(ctx, a.config.Local.Path)
		if err != nil {
			return err
		}
		a.shutdowns = append(a.shutdowns, func() {
			logger.Info("Закрытие локального хранилища...")
			if err := store.Close(); err != nil {
				logger.Error("App: Ошибка закрытия локального хранилища", err)
			}
		})
		a.users = local.NewUserStorage(store)
		a.tasks = local.NewTaskStorage(store)
		a.tokens = local.NewResetTokenStorage(store)

	case config.RepositoryPostgres:
		storage, err := postgres.New(ctx, a.config.Database)
		if err != nil {
			return err
		}
		a.shutdowns = append(a.shutdowns, func() {
			logger.Info("Закрытие пула PostgreSQL...")
			storage.Close()
		})
		if err := storage.Migrate(ctx); err != nil {
			return err
		}
		a.users = postgres.NewUserStorage(storage)
		a.tasks = postgres.NewTaskStorage(storage)
		a.tokens = postgres.NewResetTokenStorage(storage)

	default:
		return fmt.Errorf("неизвестный тип репозитория %q", a.config.Repository.Type)
	}
	return nil
}

func (a *App) initServices() {
	ids := service.NewIDSource(nil)

	a.accountService = service.NewAccountService(a.users, ids, a.config.Auth.BcryptCost)
	a.taskService = service.NewTaskService(a.tasks, ids)
	a.resetService = service.NewResetService(
		a.accountService,
		a.tokens,
		notify.LogNotifier{ExposeToken: a.config.Logging.Development},
		a.config.Auth.ResetTokenTTL,
	)
	a.sessions = session.NewRegistry(a.config.Auth.SessionIdleTimeout)

	interval := a.config.Auth.SweepInterval
	a.worker = worker.NewExpiryWorker(&interval, a.sessions, a.resetService)
}

func (a *App) initRouter() {
	authHandler := handlers.NewAuthHandler(a.accountService, a.resetService, a.sessions)
	taskHandler := handlers.NewTaskHandler(a.taskService, a.accountService)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: a.config.CORS.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	r.Use(middleware.RateLimit(a.config.Server.RateLimit))
	r.Use(middleware.Authenticate(a.sessions))

	handlers.RegisterRoutes(r, authHandler, taskHandler)

	a.router = r
}

// Handler отдаёт собранный роутер, нужен для тестов через httptest
func (a *App) Handler() http.Handler {
	return a.router
}

// Run запускает HTTP сервер и фоновую очистку и ждёт отмены ctx или ошибки сервера
func (a *App) Run(ctx context.Context) error {
	defer a.Shutdown()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.worker.Start(gctx)
		return nil
	})

	g.Go(func() error {
		logger.Info("App: Сервер запущен", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http сервер: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("App: Остановка сервера...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("остановка http сервера: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func (a *App) Shutdown() {
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
	a.shutdowns = nil
}
