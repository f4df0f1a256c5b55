package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

type clientInfo struct {
	count   int
	resetAt time.Time
}

// fixedWindow считает запросы каждого клиента в окне фиксированной длины
type fixedWindow struct {
	clients     map[string]*clientInfo
	mtx         sync.Mutex
	limit       int
	window      time.Duration
	nextCleanup time.Time
}

// allow возвращает остаток запросов, время сброса окна и признак, что запрос пропущен
func (fw *fixedWindow) allow(key string, now time.Time) (int, time.Time, bool) {
	fw.mtx.Lock()
	defer fw.mtx.Unlock()

	// истёкшие окна удаляются не чаще раза за окно
	if now.After(fw.nextCleanup) {
		for client, info := range fw.clients {
			if now.After(info.resetAt) {
				delete(fw.clients, client)
			}
		}
		fw.nextCleanup = now.Add(fw.window)
	}

	info, exists := fw.clients[key]
	if !exists || now.After(info.resetAt) {
		info = &clientInfo{count: 0, resetAt: now.Add(fw.window)}
		fw.clients[key] = info
	}

	if info.count >= fw.limit {
		return 0, info.resetAt, false
	}
	info.count++

	return max(fw.limit-info.count, 0), info.resetAt, true
}

// RateLimit ограничивает число запросов в минуту с одного IP; rpm <= 0 отключает ограничение
func RateLimit(rpm int) func(http.Handler) http.Handler {
	if rpm <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	limiter := &fixedWindow{
		clients: make(map[string]*clientInfo),
		limit:   rpm,
		window:  time.Minute,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			now := time.Now()
			remaining, resetAt, ok := limiter.allow(getIp(r), now)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rpm))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

			if !ok {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)

				json.NewEncoder(w).Encode(map[string]any{
					"error":       "RATE_LIMIT_EXCEEDED",
					"message":     "Слишком много запросов. Попробуйте позже.",
					"retry_after": int(resetAt.Sub(now).Seconds()),
					"request_id":  GetRequestID(r.Context()),
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func getIp(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
