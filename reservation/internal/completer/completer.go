package completer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Astemirdum/equipment-reservation/reservation/internal/metrics"
)

const jobName = "complete-expired"

type Job interface {
	CompleteExpired(ctx context.Context) (int, error)
}

// Completer periodically marks approved reservations whose end time has passed as completed.
type Completer struct {
	job      Job
	lock     Lock
	interval time.Duration
	metrics  *metrics.Metrics
	log      *zap.Logger
}

func New(job Job, lock Lock, interval time.Duration, m *metrics.Metrics, log *zap.Logger) *Completer {
	if lock == nil {
		lock = &LocalLock{}
	}
	return &Completer{
		job:      job,
		lock:     lock,
		interval: interval,
		metrics:  m,
		log:      log.Named("completer"),
	}
}

// Run sweeps once immediately and then every interval until ctx is done.
func (c *Completer) Run(ctx context.Context) error {
	c.log.Info("completer started", zap.Duration("interval", c.interval))
	c.RunOnce(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.RunOnce(ctx)
		case <-ctx.Done():
			c.log.Info("completer stopped")
			return nil
		}
	}
}

// RunOnce reports whether this instance performed the sweep.
func (c *Completer) RunOnce(ctx context.Context) bool {
	ok, err := c.lock.Acquire(ctx)
	if err != nil {
		c.log.Error("acquire lock", zap.Error(err))
		return false
	}
	if !ok {
		c.log.Debug("sweep skipped, lock held elsewhere")
		return false
	}
	defer func() {
		if err := c.lock.Release(context.WithoutCancel(ctx)); err != nil {
			c.log.Warn("release lock", zap.Error(err))
		}
	}()

	start := time.Now()
	n, err := c.job.CompleteExpired(ctx)
	c.metrics.Job(jobName, time.Since(start), err)
	if err != nil {
		c.log.Error("complete expired", zap.Error(err))
		return true
	}
	if n > 0 {
		c.log.Info("reservations completed", zap.Int("count", n))
	}
	return true
}
