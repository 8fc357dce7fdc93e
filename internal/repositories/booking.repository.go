package repositories

import (
	"context"
	"fmt"
	"time"
	. "turnover/internal/models"
	"turnover/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*Booking, error)
	GetUnresolved(ctx context.Context, tx *gorm.DB) ([]*Booking, error)
	Create(ctx context.Context, tx *gorm.DB, booking *Booking) error
	UpdateCleaningStatus(
		ctx context.Context,
		tx *gorm.DB,
		id uuid.UUID,
		from CleaningStatus,
		to CleaningStatus,
	) error
	UpdateCleaningType(ctx context.Context, tx *gorm.DB, id uuid.UUID, cleaningType CleaningType) error
	MarkPaid(ctx context.Context, tx *gorm.DB, id uuid.UUID, paidAt time.Time) error
}

type bookingRepository struct {
	log logger.Logger
}

func NewBookingRepository() BookingRepository {
	return &bookingRepository{log: logger.New("bookingRepository")}
}

func (r *bookingRepository) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*Booking, error) {
	log := r.log.Function("GetByID")

	var booking Booking
	if err := tx.WithContext(ctx).
		Preload("Property").
		First(&booking, "id = ?", id).Error; err != nil {
		return nil, log.Err("failed to get booking", classify(err, "booking"), "bookingID", id)
	}

	return &booking, nil
}

// GetUnresolved returns confirmed bookings still waiting for a cleaning
// assignment, earliest checkout first.
func (r *bookingRepository) GetUnresolved(ctx context.Context, tx *gorm.DB) ([]*Booking, error) {
	log := r.log.Function("GetUnresolved")

	var bookings []*Booking
	if err := tx.WithContext(ctx).
		Where("status = ? AND cleaning_status = ?", BookingStatusConfirmed, CleaningStatusPending).
		Order("check_out ASC, id ASC").
		Find(&bookings).Error; err != nil {
		return nil, log.Err("failed to get unresolved bookings", err)
	}

	return bookings, nil
}

func (r *bookingRepository) Create(ctx context.Context, tx *gorm.DB, booking *Booking) error {
	log := r.log.Function("Create")

	if err := tx.WithContext(ctx).Create(booking).Error; err != nil {
		return log.Err(
			"failed to create booking",
			classify(err, "booking"),
			"propertyID", booking.PropertyID,
		)
	}

	return nil
}

// UpdateCleaningStatus only moves a booking that is still in the expected
// state, so concurrent writers cannot skip or repeat a step.
func (r *bookingRepository) UpdateCleaningStatus(
	ctx context.Context,
	tx *gorm.DB,
	id uuid.UUID,
	from CleaningStatus,
	to CleaningStatus,
) error {
	log := r.log.Function("UpdateCleaningStatus")

	if !from.CanTransitionTo(to) {
		return log.Err("invalid cleaning status transition",
			fmt.Errorf("%w: %s to %s", types.ErrInvalidTransition, from, to),
			"bookingID", id)
	}

	result := tx.WithContext(ctx).
		Model(&Booking{}).
		Where("id = ? AND cleaning_status = ?", id, from).
		Update("cleaning_status", to)
	if result.Error != nil {
		return log.Err("failed to update cleaning status", result.Error, "bookingID", id)
	}

	if result.RowsAffected == 0 {
		return log.Err("booking not in expected cleaning status",
			fmt.Errorf("%w: booking is not %s", types.ErrInvalidTransition, from),
			"bookingID", id, "to", to)
	}

	return nil
}

func (r *bookingRepository) UpdateCleaningType(
	ctx context.Context,
	tx *gorm.DB,
	id uuid.UUID,
	cleaningType CleaningType,
) error {
	log := r.log.Function("UpdateCleaningType")

	result := tx.WithContext(ctx).
		Model(&Booking{}).
		Where("id = ? AND cleaning_status = ?", id, CleaningStatusPending).
		Update("cleaning_type", cleaningType)
	if result.Error != nil {
		return log.Err("failed to update cleaning type", result.Error, "bookingID", id)
	}

	if result.RowsAffected == 0 {
		return log.Err("cleaning type is fixed once scheduled",
			fmt.Errorf("%w: booking is no longer pending", types.ErrInvalidTransition),
			"bookingID", id)
	}

	return nil
}

func (r *bookingRepository) MarkPaid(
	ctx context.Context,
	tx *gorm.DB,
	id uuid.UUID,
	paidAt time.Time,
) error {
	log := r.log.Function("MarkPaid")

	result := tx.WithContext(ctx).
		Model(&Booking{}).
		Where("id = ?", id).
		Update("paid_at", paidAt)
	if result.Error != nil {
		return log.Err("failed to mark booking paid", result.Error, "bookingID", id)
	}

	if result.RowsAffected == 0 {
		return log.Err("booking not found",
			fmt.Errorf("%w: booking", types.ErrNotFound), "bookingID", id)
	}

	return nil
}
