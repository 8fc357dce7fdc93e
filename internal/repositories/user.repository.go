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
	USER_CACHE_EXPIRY = 24 * time.Hour
	USER_CACHE_PREFIX = "user"
)

type UserRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*User, error)
	GetPoolCleaners(ctx context.Context, tx *gorm.DB) ([]*User, error)
	Create(ctx context.Context, tx *gorm.DB, user *User) error
}

type userRepository struct {
	cache database.CacheClient
	log   logger.Logger
}

func NewUserRepository(cache database.CacheClient) UserRepository {
	return &userRepository{
		cache: cache,
		log:   logger.New("userRepository"),
	}
}

func (r *userRepository) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*User, error) {
	log := r.log.Function("GetByID")

	var user User
	found, err := database.NewCacheBuilder(r.cache, id).
		WithContext(ctx).
		WithHash(USER_CACHE_PREFIX).
		Get(&user)
	if err != nil && !database.IsCacheUnavailable(err) {
		log.Warn("failed to get user from cache", "userID", id, "error", err)
	}
	if found {
		return &user, nil
	}

	if err := tx.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, log.Err("failed to get user by id", classify(err, "user"), "userID", id)
	}

	err = database.NewCacheBuilder(r.cache, id).
		WithContext(ctx).
		WithHash(USER_CACHE_PREFIX).
		WithStruct(user).
		WithTTL(USER_CACHE_EXPIRY).
		Set()
	if err != nil && !database.IsCacheUnavailable(err) {
		log.Warn("failed to add user to cache", "userID", id, "error", err)
	}

	return &user, nil
}

// GetPoolCleaners returns active cleaners outside any company, oldest first so
// that round-robin order is stable between passes.
func (r *userRepository) GetPoolCleaners(ctx context.Context, tx *gorm.DB) ([]*User, error) {
	log := r.log.Function("GetPoolCleaners")

	var cleaners []*User
	if err := tx.WithContext(ctx).
		Where("role = ? AND company_id IS NULL AND is_active = ?", RoleCleaner, true).
		Order("created_at ASC, id ASC").
		Find(&cleaners).Error; err != nil {
		return nil, log.Err("failed to get cleaners", err)
	}

	return cleaners, nil
}

func (r *userRepository) Create(ctx context.Context, tx *gorm.DB, user *User) error {
	log := r.log.Function("Create")

	if err := tx.WithContext(ctx).Create(user).Error; err != nil {
		return log.Err("failed to create user", classify(err, "user"), "email", user.Email)
	}

	return nil
}
