package middleware

import (
	"context"
	"net/http"
	"strings"

	"taskManager/internal/logger"
	"taskManager/internal/session"

	"go.uber.org/zap"
)

const sessionKey contextKey = "session"
const tokenKey contextKey = "session_token"

type SessionLookup interface {
	Lookup(token string) (*session.Session, bool)
}

// Authenticate находит сессию по заголовку Authorization: Bearer <token> и кладёт её в контекст.
// Запрос без сессии пропускается дальше: решение об отказе принимает сервис.
func Authenticate(sessions SessionLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			sess, ok := sessions.Lookup(token)
			if !ok {
				logger.Warn("HTTP: Неизвестный или завершённый токен сессии",
					zap.String("request_id", GetRequestID(r.Context())),
					zap.String("client_ip", r.RemoteAddr))
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), token, sess)))
		})
	}
}

// SessionFromContext возвращает nil, если запрос не аутентифицирован
func SessionFromContext(ctx context.Context) *session.Session {
	if sess, ok := ctx.Value(sessionKey).(*session.Session); ok {
		return sess
	}
	return nil
}

func TokenFromContext(ctx context.Context) string {
	if token, ok := ctx.Value(tokenKey).(string); ok {
		return token
	}
	return ""
}

func WithSession(ctx context.Context, token string, sess *session.Session) context.Context {
	ctx = context.WithValue(ctx, sessionKey, sess)
	return context.WithValue(ctx, tokenKey, token)
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
