package handlers

import (
	"net/http"
	"time"

	"taskManager/internal/handlers/dto"
	"taskManager/internal/logger"
	"taskManager/internal/middleware"
	"taskManager/internal/models/reset"
	"taskManager/internal/service"

	"go.uber.org/zap"
)

type AuthHandler struct {
	accounts AccountService
	resets   ResetService
	sessions SessionRegistry
}

func NewAuthHandler(accounts AccountService, resets ResetService, sessions SessionRegistry) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		resets:   resets,
		sessions: sessions,
	}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.SignupRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	logger.Info("HTTP: Вызов сервиса регистрации")
	u, err := h.accounts.Register(r.Context(), request.Name, request.Email, request.Password, request.ConfirmPassword)
	if err != nil {
		handleServiceError(w, r, err, "signup")
		return
	}

	logger.Info("HTTP_OUT: Аккаунт создан",
		zap.Int64("user_id", u.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithJSON(w, http.StatusCreated, toPayload("user", dto.FromUser(u)))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.LoginRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	u, err := h.accounts.Authenticate(r.Context(), request.Email, request.Password)
	if err != nil {
		handleServiceError(w, r, err, "login")
		return
	}

	token, _ := h.sessions.Open(u)

	logger.Info("HTTP_OUT: Сессия открыта",
		zap.Int64("user_id", u.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK,
		toPayload("token", token),
		toPayload("user", u.Identity()),
	)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	token := middleware.TokenFromContext(r.Context())
	if token == "" {
		handleServiceError(w, r, service.NewUnauthenticated(), "logout")
		return
	}

	h.sessions.Close(token)

	logger.Info("HTTP_OUT: Сессия закрыта",
		zap.Int("http_status", http.StatusNoContent))

	responseNoContent(w)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	identity, ok := middleware.SessionFromContext(r.Context()).Current()
	if !ok {
		handleServiceError(w, r, service.NewUnauthenticated(), "me")
		return
	}

	responseWithJSON(w, http.StatusOK, toPayload("user", identity))
}

func (h *AuthHandler) RequestReset(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.ResetRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	receipt, err := h.resets.RequestReset(r.Context(), request.Email, reset.Method(request.Method), request.Phone)
	if err != nil {
		handleServiceError(w, r, err, "request_reset")
		return
	}

	logger.Info("HTTP_OUT: Запрос на сброс пароля принят",
		zap.String("method", string(receipt.Method)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusAccepted))

	responseWithJSON(w, http.StatusAccepted, toPayload("receipt", dto.FromReceipt(receipt)))
}

func (h *AuthHandler) ConfirmReset(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.ResetConfirmRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	if err := h.resets.ConfirmReset(r.Context(), request.Token, request.Password, request.ConfirmPassword); err != nil {
		handleServiceError(w, r, err, "confirm_reset")
		return
	}

	logger.Info("HTTP_OUT: Пароль изменён",
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusNoContent))

	responseNoContent(w)
}
