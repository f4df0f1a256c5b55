package worker

import (
	"context"
	"time"

	"taskManager/internal/logger"

	"go.uber.org/zap"
)

// Sweeper удаляет устаревшие записи: простаивающие сессии, просроченные токены сброса
type Sweeper interface {
	Name() string
	Sweep(ctx context.Context, now time.Time) (int, error)
}

type ExpiryWorker struct {
	sweepers []Sweeper
	interval time.Duration
	now      func() time.Time
}

func NewExpiryWorker(interval *time.Duration, sweepers ...Sweeper) *ExpiryWorker {
	var intervalToSet time.Duration
	if interval == nil || *interval <= 0 {
		intervalToSet = time.Minute
	} else {
		intervalToSet = *interval
	}

	return &ExpiryWorker{
		sweepers: sweepers,
		interval: intervalToSet,
		now:      time.Now,
	}
}

func (w *ExpiryWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			logger.Info("Worker: Фоновая очистка устаревших записей", zap.Time("started_at", w.now()))
			w.Check(ctx)
		case <-ctx.Done():
			logger.Info("Worker: Фоновая очистка останавливается")
			return
		}
	}
}

// Check один раз проходит по всем очисткам; ошибка одной не мешает остальным
func (w *ExpiryWorker) Check(ctx context.Context) int {
	start := time.Now()
	now := w.now()

	total := 0
	for _, sweeper := range w.sweepers {
		removed, err := sweeper.Sweep(ctx, now)
		if err != nil {
			logger.Warn("Worker: Ошибка очистки", zap.String("sweeper", sweeper.Name()), zap.Error(err))
			continue
		}
		total += removed
	}

	logger.Info(
		"Worker: Завершение очистки",
		zap.Duration("ms", time.Since(start)),
		zap.Int("sweepers", len(w.sweepers)),
		zap.Int("removed", total),
	)
	return total
}
