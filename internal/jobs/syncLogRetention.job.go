package jobs

import (
	"context"
	"time"
	"turnover/internal/repositories"
	"turnover/internal/services"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
)

const syncLogRetention = 30 * 24 * time.Hour

type SyncLogRetentionJob struct {
	db       *gorm.DB
	syncLogs repositories.SyncLogRepository
	log      logger.Logger
	schedule services.Schedule
	now      func() time.Time
}

func NewSyncLogRetentionJob(
	db *gorm.DB,
	syncLogs repositories.SyncLogRepository,
	schedule services.Schedule,
) *SyncLogRetentionJob {
	return &SyncLogRetentionJob{
		db:       db,
		syncLogs: syncLogs,
		log:      logger.New("syncLogRetentionJob"),
		schedule: schedule,
		now:      time.Now,
	}
}

func (j *SyncLogRetentionJob) Name() string {
	return "SyncLogRetention"
}

func (j *SyncLogRetentionJob) Execute(ctx context.Context) error {
	log := j.log.Function("Execute")

	cutoff := j.now().UTC().Add(-syncLogRetention)
	deleted, err := j.syncLogs.DeleteOlderThan(ctx, j.db, cutoff)
	if err != nil {
		return log.Err("sync log pruning failed", err)
	}

	log.Info("pruned sync logs", "deleted", deleted, "cutoff", cutoff)
	return nil
}

func (j *SyncLogRetentionJob) Schedule() services.Schedule {
	return j.schedule
}
