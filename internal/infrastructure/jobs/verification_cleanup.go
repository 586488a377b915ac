package jobs

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"mechamind.backend/pkg/logger"
	"mechamind.backend/pkg/metrics"
)

// DefaultRetention keeps expired signups around long enough for a resend.
const DefaultRetention = 24 * time.Hour

type expiredCodeDeleter interface {
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// VerificationCleanupJob purges verification codes and pending signups that
// expired more than retention ago.
type VerificationCleanupJob struct {
	repo      expiredCodeDeleter
	interval  time.Duration
	retention time.Duration
	now       func() time.Time
	stop      chan struct{}
	stopOnce  sync.Once
}

func NewVerificationCleanupJob(repo expiredCodeDeleter, interval, retention time.Duration) *VerificationCleanupJob {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if retention < 0 {
		retention = 0
	}
	return &VerificationCleanupJob{
		repo:      repo,
		interval:  interval,
		retention: retention,
		now:       time.Now,
		stop:      make(chan struct{}),
	}
}

func (j *VerificationCleanupJob) Start(ctx context.Context) {
	logger.Info(ctx, "Starting verification cleanup job", zap.Duration("interval", j.interval))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(context.Background(), "Verification cleanup job stopped (context cancelled)")
			return
		case <-j.stop:
			logger.Info(ctx, "Verification cleanup job stopped")
			return
		case <-ticker.C:
			j.RunOnce(ctx)
		}
	}
}

// Stop is safe to call more than once.
func (j *VerificationCleanupJob) Stop() {
	j.stopOnce.Do(func() { close(j.stop) })
}

// RunOnce performs a single purge and returns the number of codes removed.
func (j *VerificationCleanupJob) RunOnce(ctx context.Context) int64 {
	cutoff := j.now().Add(-j.retention)
	n, err := j.repo.DeleteExpired(ctx, cutoff)
	if err != nil {
		logger.Error(ctx, "Error purging expired verification codes", zap.Error(err))
		return 0
	}
	if n > 0 {
		metrics.OTPEvents.WithLabelValues("purged").Add(float64(n))
		logger.Info(ctx, "Purged expired verification codes", zap.Int64("count", n))
	}
	return n
}
