package repositories

import (
	"context"
	"time"
	. "turnover/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
)

type SyncLogRepository interface {
	Create(ctx context.Context, tx *gorm.DB, entry *SyncLog) error
	GetRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*SyncLog, error)
	DeleteOlderThan(ctx context.Context, tx *gorm.DB, before time.Time) (int64, error)
}

type syncLogRepository struct {
	log logger.Logger
}

func NewSyncLogRepository() SyncLogRepository {
	return &syncLogRepository{log: logger.New("syncLogRepository")}
}

func (r *syncLogRepository) Create(ctx context.Context, tx *gorm.DB, entry *SyncLog) error {
	log := r.log.Function("Create")

	if err := tx.WithContext(ctx).Create(entry).Error; err != nil {
		return log.Err("failed to write sync log", err, "source", entry.Source, "message", entry.Message)
	}

	return nil
}

func (r *syncLogRepository) GetRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*SyncLog, error) {
	log := r.log.Function("GetRecent")

	var entries []*SyncLog
	if err := tx.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, log.Err("failed to get sync logs", err)
	}

	return entries, nil
}

// DeleteOlderThan hard-deletes entries created before the cutoff.
func (r *syncLogRepository) DeleteOlderThan(
	ctx context.Context,
	tx *gorm.DB,
	before time.Time,
) (int64, error) {
	log := r.log.Function("DeleteOlderThan")

	result := tx.WithContext(ctx).
		Unscoped().
		Where("created_at < ?", before.UTC()).
		Delete(&SyncLog{})
	if result.Error != nil {
		return 0, log.Err("failed to prune sync logs", result.Error, "before", before)
	}

	return result.RowsAffected, nil
}
