package handlers

import (
	"net/http"
	"strconv"
	"time"

	"taskManager/internal/handlers/dto"
	"taskManager/internal/logger"
	"taskManager/internal/middleware"
	"taskManager/internal/models/task"
	"taskManager/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type TaskHandler struct {
	tasks    TaskService
	accounts AccountService
}

func NewTaskHandler(tasks TaskService, accounts AccountService) *TaskHandler {
	return &TaskHandler{
		tasks:    tasks,
		accounts: accounts,
	}
}

func (h *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: Health check")

	checks := map[string]string{"tasks": "ok", "accounts": "ok"}
	status := http.StatusOK

	if err := h.tasks.HealthCheck(r.Context()); err != nil {
		logger.Error("HTTP: Health check задач не пройден", err)
		checks["tasks"] = err.Error()
		status = http.StatusServiceUnavailable
	}
	if err := h.accounts.HealthCheck(r.Context()); err != nil {
		logger.Error("HTTP: Health check аккаунтов не пройден", err)
		checks["accounts"] = err.Error()
		status = http.StatusServiceUnavailable
	}

	state := "ok"
	if status != http.StatusOK {
		state = "unavailable"
	}

	responseWithJSON(w, status,
		toPayload("status", state),
		toPayload("service", "task-manager"),
		toPayload("checks", checks),
	)
}

// ListTasks отдаёт задачи в порядке отображения; ?order=insertion - в порядке добавления
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	sess := middleware.SessionFromContext(r.Context())

	var (
		tasks []*task.Task
		err   error
	)
	switch order := r.URL.Query().Get("order"); order {
	case "", "display":
		tasks, err = h.tasks.ListOrdered(r.Context(), sess)
	case "insertion":
		tasks, err = h.tasks.List(r.Context(), sess)
	default:

		logger.Warn("HTTP: Неверное значение параметра",
			zap.String("query", "order"),
			zap.String("value", order),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, service.CodeValidation, "order: допустимые значения display, insertion")
		return
	}
	if err != nil {
		handleServiceError(w, r, err, "list_tasks")
		return
	}

	logger.Info("HTTP_OUT: Задачи получены",
		zap.Int("count", len(tasks)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK,
		toPayload("tasks", dto.FromTaskList(tasks)),
		toPayload("count", len(tasks)),
	)
}

func (h *TaskHandler) PostTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.CreateTaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	logger.Info("HTTP: Вызов сервиса создания задачи")
	created, err := h.tasks.Add(r.Context(), middleware.SessionFromContext(r.Context()),
		request.Title, request.Category, task.Priority(request.Priority), request.Start.Time, request.End.Time)
	if err != nil {
		handleServiceError(w, r, err, "create_task")
		return
	}

	logger.Info("HTTP_OUT: Задача создана",
		zap.Int64("task_id", created.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithJSON(w, http.StatusCreated, toPayload("task", dto.FromTask(created)))
}

func (h *TaskHandler) Stats(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	stats, err := h.tasks.Stats(r.Context(), middleware.SessionFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, err, "task_stats")
		return
	}

	responseWithJSON(w, http.StatusOK, toPayload("stats", stats))
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := taskID(w, r)
	if !ok {
		return
	}

	var request dto.UpdateTaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	logger.Info("HTTP: запрос к сервису обновления задачи")
	updated, err := h.tasks.Update(r.Context(), middleware.SessionFromContext(r.Context()), id, request.Options()...)
	if err != nil {
		handleServiceError(w, r, err, "update_task")
		return
	}

	logger.Info("HTTP_OUT: Задача обновлена",
		zap.Int64("task_id", id),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, toPayload("task", dto.FromTask(updated)))
}

func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := taskID(w, r)
	if !ok {
		return
	}

	found, err := h.tasks.Get(r.Context(), middleware.SessionFromContext(r.Context()), id)
	if err != nil {
		handleServiceError(w, r, err, "get_task")
		return
	}

	logger.Info("HTTP_OUT: Задача получена",
		zap.Int64("task_id", id),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, toPayload("task", dto.FromTask(found)))
}

func (h *TaskHandler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := taskID(w, r)
	if !ok {
		return
	}

	toggled, err := h.tasks.ToggleCompletion(r.Context(), middleware.SessionFromContext(r.Context()), id)
	if err != nil {
		handleServiceError(w, r, err, "toggle_task")
		return
	}

	logger.Info("HTTP_OUT: Статус задачи переключён",
		zap.Int64("task_id", id),
		zap.Bool("completed", toggled.Completed),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, toPayload("task", dto.FromTask(toggled)))
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := taskID(w, r)
	if !ok {
		return
	}

	logger.Info("HTTP: Обращение к сервису для удаления задачи")
	if err := h.tasks.Delete(r.Context(), middleware.SessionFromContext(r.Context()), id); err != nil {
		handleServiceError(w, r, err, "delete_task")
		return
	}

	logger.Info("HTTP_OUT: Задача удалена",
		zap.Int64("task_id", id),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusNoContent))

	responseNoContent(w)
}

func taskID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idParam := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil || id <= 0 {

		logger.Warn("HTTP: Не удалось получить id",
			zap.String("id", idParam),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, service.CodeValidation, "id задачи должен быть положительным числом")
		return 0, false
	}
	return id, true
}
