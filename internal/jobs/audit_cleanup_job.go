package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// AuditCleanupJobName is the name of the audit log retention job
const AuditCleanupJobName = "audit_cleanup"

// AuditCleaner defines the interface for the audit retention cleanup
type AuditCleaner interface {
	// CleanupOlderThan removes audit entries past the retention window and
	// returns how many rows were deleted.
	CleanupOlderThan(ctx context.Context, retention time.Duration) (int64, error)
}

// AuditCleanupJob removes audit log entries past the retention window
type AuditCleanupJob struct {
	cleaner   AuditCleaner
	retention time.Duration
	logger    *zap.Logger
	timeout   time.Duration
}

// NewAuditCleanupJob creates a new audit cleanup job
func NewAuditCleanupJob(cleaner AuditCleaner, retention time.Duration, logger *zap.Logger, timeout time.Duration) *AuditCleanupJob {
	return &AuditCleanupJob{
		cleaner:   cleaner,
		retention: retention,
		logger:    logger,
		timeout:   timeout,
	}
}

// Run executes one cleanup pass. Called by the scheduler.
func (j *AuditCleanupJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()

	removed, err := j.cleaner.CleanupOlderThan(ctx, j.retention)
	if err != nil {
		j.logger.Error("audit cleanup failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	if removed > 0 {
		j.logger.Info("audit cleanup completed",
			zap.Int64("removed", removed),
			zap.Duration("duration", time.Since(start)))
	}
}

// RegisterAuditCleanupJob registers the audit retention job with the scheduler
func RegisterAuditCleanupJob(scheduler *Scheduler, cleaner AuditCleaner, retention time.Duration, logger *zap.Logger, cronExpr string, timeout time.Duration) error {
	job := NewAuditCleanupJob(cleaner, retention, logger, timeout)
	return scheduler.AddJob(AuditCleanupJobName, cronExpr, job.Run)
}
