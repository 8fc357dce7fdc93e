package repositories

import (
	"context"
	"time"
	"turnover/internal/database"
	. "turnover/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	AVAILABILITY_CACHE_PREFIX = "availability"
	AVAILABILITY_CACHE_EXPIRY = 6 * time.Hour
)

type AvailabilityRepository interface {
	GetWeekly(ctx context.Context, tx *gorm.DB, cleanerID uuid.UUID) ([]*CleanerAvailability, error)
	ReplaceWeekly(
		ctx context.Context,
		tx *gorm.DB,
		cleanerID uuid.UUID,
		entries []*CleanerAvailability,
	) error
	InvalidateWeekly(ctx context.Context, cleanerID uuid.UUID)
}

type availabilityRepository struct {
	cache database.CacheClient
	log   logger.Logger
}

func NewAvailabilityRepository(cache database.CacheClient) AvailabilityRepository {
	return &availabilityRepository{
		cache: cache,
		log:   logger.New("availabilityRepository"),
	}
}

func (r *availabilityRepository) GetWeekly(
	ctx context.Context,
	tx *gorm.DB,
	cleanerID uuid.UUID,
) ([]*CleanerAvailability, error) {
	log := r.log.Function("GetWeekly")

	var cached []*CleanerAvailability
	found, err := database.NewCacheBuilder(r.cache, cleanerID).
		WithContext(ctx).
		WithHash(AVAILABILITY_CACHE_PREFIX).
		Get(&cached)
	if err != nil && !database.IsCacheUnavailable(err) {
		log.Warn("failed to get availability from cache", "cleanerID", cleanerID, "error", err)
	}
	if found {
		return cached, nil
	}

	var entries []*CleanerAvailability
	if err := tx.WithContext(ctx).
		Where("cleaner_id = ?", cleanerID).
		Order("weekday ASC").
		Find(&entries).Error; err != nil {
		return nil, log.Err("failed to get availability", err, "cleanerID", cleanerID)
	}

	err = database.NewCacheBuilder(r.cache, cleanerID).
		WithContext(ctx).
		WithHash(AVAILABILITY_CACHE_PREFIX).
		WithStruct(entries).
		WithTTL(AVAILABILITY_CACHE_EXPIRY).
		Set()
	if err != nil && !database.IsCacheUnavailable(err) {
		log.Warn("failed to cache availability", "cleanerID", cleanerID, "error", err)
	}

	return entries, nil
}

// ReplaceWeekly swaps the whole weekly set. Old rows are hard deleted so the
// (cleaner, weekday) unique index stays free for the new set.
func (r *availabilityRepository) ReplaceWeekly(
	ctx context.Context,
	tx *gorm.DB,
	cleanerID uuid.UUID,
	entries []*CleanerAvailability,
) error {
	log := r.log.Function("ReplaceWeekly")

	if err := tx.WithContext(ctx).
		Unscoped().
		Where("cleaner_id = ?", cleanerID).
		Delete(&CleanerAvailability{}).Error; err != nil {
		return log.Err("failed to clear availability", err, "cleanerID", cleanerID)
	}

	for _, entry := range entries {
		entry.CleanerID = cleanerID
	}

	if len(entries) > 0 {
		if err := tx.WithContext(ctx).Create(entries).Error; err != nil {
			return log.Err("failed to create availability", classify(err, "availability"),
				"cleanerID", cleanerID)
		}
	}

	r.InvalidateWeekly(ctx, cleanerID)
	return nil
}

// InvalidateWeekly drops the cached weekly set. Callers that replace inside a
// transaction call it again after commit, since a reader may have cached the
// old rows while the transaction was open.
func (r *availabilityRepository) InvalidateWeekly(ctx context.Context, cleanerID uuid.UUID) {
	err := database.NewCacheBuilder(r.cache, cleanerID).
		WithContext(ctx).
		WithHash(AVAILABILITY_CACHE_PREFIX).
		Delete()
	if err != nil && !database.IsCacheUnavailable(err) {
		r.log.Function("InvalidateWeekly").
			Warn("failed to clear availability cache", "cleanerID", cleanerID, "error", err)
	}
}
