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

type CleaningJobRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*CleaningJob, error)
	GetActiveByBookingSlot(
		ctx context.Context,
		tx *gorm.DB,
		bookingID uuid.UUID,
		slot JobSlot,
	) (*CleaningJob, error)
	GetActiveByBooking(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID) ([]*CleaningJob, error)
	GetByCleaner(ctx context.Context, tx *gorm.DB, cleanerID uuid.UUID) ([]*CleaningJob, error)
	CountForCleanerBetween(
		ctx context.Context,
		tx *gorm.DB,
		cleanerID uuid.UUID,
		from time.Time,
		to time.Time,
	) (int64, error)
	ExistsForCleanerAndBooking(
		ctx context.Context,
		tx *gorm.DB,
		cleanerID uuid.UUID,
		bookingID uuid.UUID,
	) (bool, error)
	Create(ctx context.Context, tx *gorm.DB, job *CleaningJob) error
	Transition(
		ctx context.Context,
		tx *gorm.DB,
		id uuid.UUID,
		from JobStatus,
		to JobStatus,
		updates map[string]any,
	) error
	Reassign(ctx context.Context, tx *gorm.DB, job *CleaningJob, cleanerID uuid.UUID) error
}

type cleaningJobRepository struct {
	log logger.Logger
}

func NewCleaningJobRepository() CleaningJobRepository {
	return &cleaningJobRepository{log: logger.New("cleaningJobRepository")}
}

func (r *cleaningJobRepository) GetByID(
	ctx context.Context,
	tx *gorm.DB,
	id uuid.UUID,
) (*CleaningJob, error) {
	log := r.log.Function("GetByID")

	var job CleaningJob
	if err := tx.WithContext(ctx).
		Preload("Booking").
		First(&job, "id = ?", id).Error; err != nil {
		return nil, log.Err("failed to get cleaning job", classify(err, "cleaning job"), "jobID", id)
	}

	return &job, nil
}

func (r *cleaningJobRepository) GetActiveByBookingSlot(
	ctx context.Context,
	tx *gorm.DB,
	bookingID uuid.UUID,
	slot JobSlot,
) (*CleaningJob, error) {
	var job CleaningJob
	if err := tx.WithContext(ctx).
		Where("booking_id = ? AND slot = ? AND status <> ?", bookingID, slot, JobStatusCancelled).
		First(&job).Error; err != nil {
		// Absence is the common case for the engine, so it is not logged.
		return nil, classify(err, "cleaning job")
	}

	return &job, nil
}

func (r *cleaningJobRepository) GetActiveByBooking(
	ctx context.Context,
	tx *gorm.DB,
	bookingID uuid.UUID,
) ([]*CleaningJob, error) {
	log := r.log.Function("GetActiveByBooking")

	var jobs []*CleaningJob
	if err := tx.WithContext(ctx).
		Where("booking_id = ? AND status <> ?", bookingID, JobStatusCancelled).
		Order("scheduled_at ASC").
		Find(&jobs).Error; err != nil {
		return nil, log.Err("failed to get jobs for booking", err, "bookingID", bookingID)
	}

	return jobs, nil
}

func (r *cleaningJobRepository) GetByCleaner(
	ctx context.Context,
	tx *gorm.DB,
	cleanerID uuid.UUID,
) ([]*CleaningJob, error) {
	log := r.log.Function("GetByCleaner")

	var jobs []*CleaningJob
	if err := tx.WithContext(ctx).
		Preload("Booking").
		Preload("Booking.Property").
		Where("cleaner_id = ?", cleanerID).
		Order("scheduled_at ASC").
		Find(&jobs).Error; err != nil {
		return nil, log.Err("failed to get jobs for cleaner", err, "cleanerID", cleanerID)
	}

	return jobs, nil
}

// CountForCleanerBetween counts live jobs scheduled in [from, to).
func (r *cleaningJobRepository) CountForCleanerBetween(
	ctx context.Context,
	tx *gorm.DB,
	cleanerID uuid.UUID,
	from time.Time,
	to time.Time,
) (int64, error) {
	log := r.log.Function("CountForCleanerBetween")

	var count int64
	if err := tx.WithContext(ctx).
		Model(&CleaningJob{}).
		Where("cleaner_id = ? AND status <> ?", cleanerID, JobStatusCancelled).
		Where("scheduled_at >= ? AND scheduled_at < ?", from.UTC(), to.UTC()).
		Count(&count).Error; err != nil {
		return 0, log.Err("failed to count jobs for cleaner", err, "cleanerID", cleanerID)
	}

	return count, nil
}

func (r *cleaningJobRepository) ExistsForCleanerAndBooking(
	ctx context.Context,
	tx *gorm.DB,
	cleanerID uuid.UUID,
	bookingID uuid.UUID,
) (bool, error) {
	log := r.log.Function("ExistsForCleanerAndBooking")

	var count int64
	if err := tx.WithContext(ctx).
		Model(&CleaningJob{}).
		Where("cleaner_id = ? AND booking_id = ? AND status <> ?", cleanerID, bookingID, JobStatusCancelled).
		Count(&count).Error; err != nil {
		return false, log.Err("failed to check cleaner conflict", err,
			"cleanerID", cleanerID, "bookingID", bookingID)
	}

	return count > 0, nil
}

// Create returns types.ErrAlreadyAssigned when the booking slot already has a
// live job.
func (r *cleaningJobRepository) Create(ctx context.Context, tx *gorm.DB, job *CleaningJob) error {
	log := r.log.Function("Create")

	job.ScheduledAt = job.ScheduledAt.UTC()
	if err := tx.WithContext(ctx).Create(job).Error; err != nil {
		err = classify(err, "cleaning job")
		if isAlreadyAssigned(err) {
			log.Debug("booking slot already assigned", "bookingID", job.BookingID, "slot", job.Slot)
			return err
		}
		return log.Err("failed to create cleaning job", err,
			"bookingID", job.BookingID, "slot", job.Slot)
	}

	return nil
}

func (r *cleaningJobRepository) Transition(
	ctx context.Context,
	tx *gorm.DB,
	id uuid.UUID,
	from JobStatus,
	to JobStatus,
	updates map[string]any,
) error {
	log := r.log.Function("Transition")

	if !from.CanTransitionTo(to) {
		return log.Err("invalid job status transition",
			fmt.Errorf("%w: %s to %s", types.ErrInvalidTransition, from, to), "jobID", id)
	}

	values := map[string]any{"status": to}
	for k, v := range updates {
		values[k] = v
	}

	result := tx.WithContext(ctx).
		Model(&CleaningJob{}).
		Where("id = ? AND status = ?", id, from).
		Updates(values)
	if result.Error != nil {
		return log.Err("failed to update job status", result.Error, "jobID", id)
	}

	if result.RowsAffected == 0 {
		return log.Err("job not in expected status",
			fmt.Errorf("%w: job is not %s", types.ErrInvalidTransition, from),
			"jobID", id, "to", to)
	}

	return nil
}

// Reassign hands the job to another cleaner and resets it to assigned.
func (r *cleaningJobRepository) Reassign(
	ctx context.Context,
	tx *gorm.DB,
	job *CleaningJob,
	cleanerID uuid.UUID,
) error {
	log := r.log.Function("Reassign")

	if !job.Status.CanReassign() {
		return log.Err("job can no longer be reassigned",
			fmt.Errorf("%w: job is %s", types.ErrInvalidTransition, job.Status), "jobID", job.ID)
	}

	result := tx.WithContext(ctx).
		Model(&CleaningJob{}).
		Where("id = ? AND status = ?", job.ID, job.Status).
		Updates(map[string]any{
			"cleaner_id":  cleanerID,
			"status":      JobStatusAssigned,
			"accepted_at": nil,
		})
	if result.Error != nil {
		return log.Err("failed to reassign job", result.Error, "jobID", job.ID)
	}

	if result.RowsAffected == 0 {
		return log.Err("job changed during reassignment",
			fmt.Errorf("%w: job is no longer %s", types.ErrInvalidTransition, job.Status),
			"jobID", job.ID)
	}

	job.CleanerID = &cleanerID
	job.Status = JobStatusAssigned
	job.AcceptedAt = nil

	return nil
}
