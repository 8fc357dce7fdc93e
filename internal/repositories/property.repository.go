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
	PROPERTY_CACHE_EXPIRY = 6 * time.Hour
	PROPERTY_CACHE_PREFIX = "property"
)

type PropertyRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*Property, error)
	Create(ctx context.Context, tx *gorm.DB, property *Property) error
}

type propertyRepository struct {
	cache database.CacheClient
	log   logger.Logger
}

func NewPropertyRepository(cache database.CacheClient) PropertyRepository {
	return &propertyRepository{
		cache: cache,
		log:   logger.New("propertyRepository"),
	}
}

// GetByID reads through the general cache. Properties are never updated in
// place, so entries only expire.
func (r *propertyRepository) GetByID(
	ctx context.Context,
	tx *gorm.DB,
	id uuid.UUID,
) (*Property, error) {
	log := r.log.Function("GetByID")

	var property Property
	found, err := database.NewCacheBuilder(r.cache, id).
		WithContext(ctx).
		WithHash(PROPERTY_CACHE_PREFIX).
		Get(&property)
	if err != nil && !database.IsCacheUnavailable(err) {
		log.Warn("failed to get property from cache", "propertyID", id, "error", err)
	}
	if found {
		return &property, nil
	}

	if err := tx.WithContext(ctx).First(&property, "id = ?", id).Error; err != nil {
		return nil, log.Err("failed to get property", classify(err, "property"), "propertyID", id)
	}

	err = database.NewCacheBuilder(r.cache, id).
		WithContext(ctx).
		WithHash(PROPERTY_CACHE_PREFIX).
		WithStruct(property).
		WithTTL(PROPERTY_CACHE_EXPIRY).
		Set()
	if err != nil && !database.IsCacheUnavailable(err) {
		log.Warn("failed to cache property", "propertyID", id, "error", err)
	}

	return &property, nil
}

func (r *propertyRepository) Create(ctx context.Context, tx *gorm.DB, property *Property) error {
	log := r.log.Function("Create")

	if err := tx.WithContext(ctx).Create(property).Error; err != nil {
		return log.Err("failed to create property", classify(err, "property"), "hostID", property.HostID)
	}

	return nil
}
