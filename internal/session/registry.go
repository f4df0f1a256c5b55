package session

import (
	"context"
	"sync"
	"time"

	"taskManager/internal/models/user"

	"github.com/google/uuid"
)

// Registry связывает токены HTTP-клиентов с их сессиями. В памяти процесса,
// после перезапуска все сессии теряются.
type Registry struct {
	sessions    map[string]*Session
	mtx         *sync.RWMutex
	idleTimeout time.Duration
}

func NewRegistry(idleTimeout time.Duration) *Registry {
	return &Registry{
		sessions:    make(map[string]*Session),
		mtx:         &sync.RWMutex{},
		idleTimeout: idleTimeout,
	}
}

func (r *Registry) Open(u *user.User) (string, *Session) {
	sess := New()
	sess.Start(u)
	token := uuid.NewString()

	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.sessions[token] = sess
	return token, sess
}

func (r *Registry) Lookup(token string) (*Session, bool) {
	r.mtx.RLock()
	sess, ok := r.sessions[token]
	r.mtx.RUnlock()

	if !ok {
		return nil, false
	}
	if _, active := sess.Current(); !active {
		return nil, false
	}

	now := time.Now()
	if r.idleTimeout > 0 && now.Sub(sess.LastSeen()) > r.idleTimeout {
		r.Close(token)
		return nil, false
	}
	sess.Touch(now)
	return sess, true
}

func (r *Registry) Close(token string) {
	r.mtx.Lock()
	sess, ok := r.sessions[token]
	delete(r.sessions, token)
	r.mtx.Unlock()

	if ok {
		sess.End()
	}
}

func (r *Registry) Len() int {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	return len(r.sessions)
}

func (r *Registry) Name() string {
	return "sessions"
}

// Sweep удаляет завершённые сессии и сессии, простаивающие дольше idleTimeout
func (r *Registry) Sweep(ctx context.Context, now time.Time) (int, error) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	removed := 0
	for token, sess := range r.sessions {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		_, active := sess.Current()
		if !active || (r.idleTimeout > 0 && now.Sub(sess.LastSeen()) > r.idleTimeout) {
			sess.End()
			delete(r.sessions, token)
			removed++
		}
	}
	return removed, nil
}
