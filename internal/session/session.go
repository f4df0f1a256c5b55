package session

import (
	"sync"
	"time"

	"taskManager/internal/models/user"
)

// Session хранит не более одного вошедшего пользователя.
// Передаётся явно во все операции, которым нужна текущая личность.
type Session struct {
	mtx      sync.RWMutex
	identity *user.Identity
	lastSeen time.Time
}

func New() *Session {
	return &Session{lastSeen: time.Now()}
}

// Start запоминает пользователя, перезаписывая предыдущего
func (s *Session) Start(u *user.User) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	identity := u.Identity()
	s.identity = &identity
	s.lastSeen = time.Now()
}

func (s *Session) Current() (user.Identity, bool) {
	if s == nil {
		return user.Identity{}, false
	}
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	if s.identity == nil {
		return user.Identity{}, false
	}
	return *s.identity, true
}

func (s *Session) End() {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.identity = nil
}

func (s *Session) Touch(now time.Time) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.lastSeen = now
}

func (s *Session) LastSeen() time.Time {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	return s.lastSeen
}
