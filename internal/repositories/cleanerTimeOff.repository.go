package repositories

import (
	"context"
	"fmt"
	"turnover/internal/database"
	. "turnover/internal/models"
	"turnover/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const TIME_OFF_CACHE_PREFIX = "time_off"

type TimeOffRepository interface {
	GetByCleaner(ctx context.Context, tx *gorm.DB, cleanerID uuid.UUID) ([]*CleanerTimeOff, error)
	Create(ctx context.Context, tx *gorm.DB, timeOff *CleanerTimeOff) error
	Delete(ctx context.Context, tx *gorm.DB, cleanerID uuid.UUID, id uuid.UUID) error
}

type timeOffRepository struct {
	cache database.CacheClient
	log   logger.Logger
}

func NewTimeOffRepository(cache database.CacheClient) TimeOffRepository {
	return &timeOffRepository{
		cache: cache,
		log:   logger.New("timeOffRepository"),
	}
}

func (r *timeOffRepository) GetByCleaner(
	ctx context.Context,
	tx *gorm.DB,
	cleanerID uuid.UUID,
) ([]*CleanerTimeOff, error) {
	log := r.log.Function("GetByCleaner")

	var cached []*CleanerTimeOff
	found, err := database.NewCacheBuilder(r.cache, cleanerID).
		WithContext(ctx).
		WithHash(TIME_OFF_CACHE_PREFIX).
		Get(&cached)
	if err != nil && !database.IsCacheUnavailable(err) {
		log.Warn("failed to get time off from cache", "cleanerID", cleanerID, "error", err)
	}
	if found {
		return cached, nil
	}

	var entries []*CleanerTimeOff
	if err := tx.WithContext(ctx).
		Where("cleaner_id = ?", cleanerID).
		Order("start_date ASC").
		Find(&entries).Error; err != nil {
		return nil, log.Err("failed to get time off", err, "cleanerID", cleanerID)
	}

	err = database.NewCacheBuilder(r.cache, cleanerID).
		WithContext(ctx).
		WithHash(TIME_OFF_CACHE_PREFIX).
		WithStruct(entries).
		WithTTL(AVAILABILITY_CACHE_EXPIRY).
		Set()
	if err != nil && !database.IsCacheUnavailable(err) {
		log.Warn("failed to cache time off", "cleanerID", cleanerID, "error", err)
	}

	return entries, nil
}

func (r *timeOffRepository) Create(ctx context.Context, tx *gorm.DB, timeOff *CleanerTimeOff) error {
	log := r.log.Function("Create")

	if err := tx.WithContext(ctx).Create(timeOff).Error; err != nil {
		return log.Err("failed to create time off", classify(err, "time off"),
			"cleanerID", timeOff.CleanerID)
	}

	r.clearCache(ctx, timeOff.CleanerID)
	return nil
}

func (r *timeOffRepository) Delete(
	ctx context.Context,
	tx *gorm.DB,
	cleanerID uuid.UUID,
	id uuid.UUID,
) error {
	log := r.log.Function("Delete")

	result := tx.WithContext(ctx).
		Where("id = ? AND cleaner_id = ?", id, cleanerID).
		Delete(&CleanerTimeOff{})
	if result.Error != nil {
		return log.Err("failed to delete time off", result.Error, "id", id)
	}

	if result.RowsAffected == 0 {
		return log.Err("time off not found",
			fmt.Errorf("%w: time off", types.ErrNotFound), "id", id, "cleanerID", cleanerID)
	}

	r.clearCache(ctx, cleanerID)
	return nil
}

func (r *timeOffRepository) clearCache(ctx context.Context, cleanerID uuid.UUID) {
	err := database.NewCacheBuilder(r.cache, cleanerID).
		WithContext(ctx).
		WithHash(TIME_OFF_CACHE_PREFIX).
		Delete()
	if err != nil && !database.IsCacheUnavailable(err) {
		r.log.Function("clearCache").
			Warn("failed to clear time off cache", "cleanerID", cleanerID, "error", err)
	}
}
