package cleaningJobController

import (
	"context"
	"errors"
	"fmt"
	"time"
	"turnover/internal/database"
	. "turnover/internal/models"
	"turnover/internal/repositories"
	"turnover/internal/services"
	"turnover/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CleaningJobController struct {
	jobRepo            repositories.CleaningJobRepository
	bookingRepo        repositories.BookingRepository
	payoutRepo         repositories.PayoutRepository
	transactionService *services.TransactionService
	db                 database.DB
	log                logger.Logger
	now                func() time.Time
}

type CompleteJobRequest struct {
	Notes *string `json:"notes,omitempty"`
}

type CleaningJobControllerInterface interface {
	GetMyJobs(ctx context.Context, user *User) ([]*CleaningJob, error)
	Accept(ctx context.Context, user *User, jobID uuid.UUID) (*CleaningJob, error)
	Start(ctx context.Context, user *User, jobID uuid.UUID) (*CleaningJob, error)
	Complete(
		ctx context.Context,
		user *User,
		jobID uuid.UUID,
		request *CompleteJobRequest,
	) (*CleaningJob, error)
}

func New(
	repos repositories.Repository,
	services services.Service,
	db database.DB,
) CleaningJobControllerInterface {
	return &CleaningJobController{
		jobRepo:            repos.CleaningJob,
		bookingRepo:        repos.Booking,
		payoutRepo:         repos.Payout,
		transactionService: services.Transaction,
		db:                 db,
		log:                logger.New("cleaningJobController"),
		now:                time.Now,
	}
}

func (c *CleaningJobController) GetMyJobs(ctx context.Context, user *User) ([]*CleaningJob, error) {
	return c.jobRepo.GetByCleaner(ctx, c.db.SQL, user.ID)
}

func (c *CleaningJobController) Accept(
	ctx context.Context,
	user *User,
	jobID uuid.UUID,
) (*CleaningJob, error) {
	return c.advance(ctx, user, jobID, JobStatusAccepted, nil)
}

// Start also moves the booking into in-progress the first time any of its
// jobs starts.
func (c *CleaningJobController) Start(
	ctx context.Context,
	user *User,
	jobID uuid.UUID,
) (*CleaningJob, error) {
	return c.advance(ctx, user, jobID, JobStatusInProgress,
		func(ctx context.Context, tx *gorm.DB, job *CleaningJob) error {
			err := c.bookingRepo.UpdateCleaningStatus(ctx, tx, job.BookingID,
				CleaningStatusScheduled, CleaningStatusInProgress)
			if errors.Is(err, types.ErrInvalidTransition) {
				return nil
			}
			return err
		})
}

// Complete records the payout hand-off and completes the booking once every
// live job on it is done.
func (c *CleaningJobController) Complete(
	ctx context.Context,
	user *User,
	jobID uuid.UUID,
	request *CompleteJobRequest,
) (*CleaningJob, error) {
	return c.advance(ctx, user, jobID, JobStatusCompleted,
		func(ctx context.Context, tx *gorm.DB, job *CleaningJob) error {
			if err := c.payoutRepo.Create(ctx, tx, &Payout{
				JobID:     job.ID,
				CleanerID: *job.CleanerID,
				Amount:    job.Payout,
			}); err != nil {
				return err
			}

			siblings, err := c.jobRepo.GetActiveByBooking(ctx, tx, job.BookingID)
			if err != nil {
				return err
			}
			for _, sibling := range siblings {
				if sibling.ID != job.ID && sibling.Status != JobStatusCompleted {
					return nil
				}
			}

			err = c.bookingRepo.UpdateCleaningStatus(ctx, tx, job.BookingID,
				CleaningStatusInProgress, CleaningStatusCompleted)
			if errors.Is(err, types.ErrInvalidTransition) {
				c.log.Function("Complete").Warn("booking was not in progress, leaving status",
					"bookingID", job.BookingID, "jobID", job.ID)
				return nil
			}
			return err
		},
		withNotes(request))
}

type jobUpdate func(job *CleaningJob, values map[string]any)

func withNotes(request *CompleteJobRequest) jobUpdate {
	return func(job *CleaningJob, values map[string]any) {
		if request != nil && request.Notes != nil {
			values["notes"] = *request.Notes
			job.Notes = request.Notes
		}
	}
}

// advance moves a job the caller owns one step forward and runs the follow-up
// in the same transaction.
func (c *CleaningJobController) advance(
	ctx context.Context,
	user *User,
	jobID uuid.UUID,
	to JobStatus,
	followUp func(ctx context.Context, tx *gorm.DB, job *CleaningJob) error,
	extra ...jobUpdate,
) (*CleaningJob, error) {
	log := c.log.Function("advance")

	var job *CleaningJob
	err := c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		var err error
		job, err = c.jobRepo.GetByID(ctx, tx, jobID)
		if err != nil {
			return err
		}

		if job.CleanerID == nil || *job.CleanerID != user.ID {
			return fmt.Errorf("%w: job is assigned to another cleaner", types.ErrForbidden)
		}

		now := c.now().UTC()
		values := map[string]any{}
		switch to {
		case JobStatusAccepted:
			values["accepted_at"] = now
			job.AcceptedAt = &now
		case JobStatusInProgress:
			values["started_at"] = now
			job.StartedAt = &now
		case JobStatusCompleted:
			values["completed_at"] = now
			job.CompletedAt = &now
		}
		for _, apply := range extra {
			apply(job, values)
		}

		if err := c.jobRepo.Transition(ctx, tx, job.ID, job.Status, to, values); err != nil {
			return err
		}
		job.Status = to

		if followUp == nil {
			return nil
		}
		return followUp(ctx, tx, job)
	})
	if err != nil {
		return nil, log.Err("failed to advance job", err, "jobID", jobID, "to", to, "userID", user.ID)
	}

	log.Info("job advanced", "jobID", jobID, "status", to, "cleanerID", user.ID)
	return job, nil
}
