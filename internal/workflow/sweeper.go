package workflow

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper периодически отменяет просроченные неоплаченные заказы.
// Ошибка цикла логируется, следующий тик пройдёт как обычно.
type Sweeper struct {
	log      *slog.Logger
	svc      *Service
	interval time.Duration
}

func NewSweeper(log *slog.Logger, svc *Service, interval time.Duration) *Sweeper {
	return &Sweeper{log: log, svc: svc, interval: interval}
}

func (s *Sweeper) Run(ctx context.Context) {
	// первый проход сразу: после рестарта не ждём целый интервал
	s.sweep(ctx)

	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	if _, err := s.svc.SweepExpired(ctx); err != nil {
		s.log.Error("sweep cycle failed", "err", err)
	}
}
