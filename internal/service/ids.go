package service

import (
	"sync"
	"time"
)

// IDSource выдаёт строго возрастающие идентификаторы на основе времени в миллисекундах
type IDSource struct {
	mtx  sync.Mutex
	last int64
	now  func() time.Time
}

func NewIDSource(now func() time.Time) *IDSource {
	if now == nil {
		now = time.Now
	}
	return &IDSource{now: now}
}

func (g *IDSource) Next() int64 {
	g.mtx.Lock()
	defer g.mtx.Unlock()

	id := g.now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}
