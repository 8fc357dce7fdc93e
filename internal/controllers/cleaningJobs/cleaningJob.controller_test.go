package cleaningJobController

import (
	"context"
	"testing"
	"time"
	"turnover/internal/models"
	"turnover/internal/repositories"
	"turnover/internal/services"
	"turnover/internal/testutil"
	"turnover/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var checkOut = time.Date(2025, 6, 10, 11, 0, 0, 0, time.UTC)

func TestCleaningJobController_Lifecycle(t *testing.T) {
	db := testutil.NewDB(t)
	repos := repositories.New(db)
	ctx := context.Background()

	host := testutil.CreateHost(t, db)
	property := testutil.CreateProperty(t, db, host.ID)
	cleaner := testutil.CreateCleaner(t, db, "Carla")
	other := testutil.CreateCleaner(t, db, "Other")
	booking := testutil.CreateBooking(t, db, property.ID, checkOut, models.CleaningTypePostCheckout)

	job := &models.CleaningJob{
		BookingID:   booking.ID,
		Slot:        models.JobSlotPostCheckout,
		CleanerID:   &cleaner.ID,
		Status:      models.JobStatusAssigned,
		Payout:      decimal.RequireFromString("45"),
		ScheduledAt: checkOut,
	}
	require.NoError(t, repos.CleaningJob.Create(ctx, db.SQL, job))
	require.NoError(t, repos.Booking.UpdateCleaningStatus(ctx, db.SQL, booking.ID,
		models.CleaningStatusPending, models.CleaningStatusScheduled))

	controller := &CleaningJobController{
		jobRepo:            repos.CleaningJob,
		bookingRepo:        repos.Booking,
		payoutRepo:         repos.Payout,
		transactionService: services.NewTransactionService(db),
		db:                 db,
		log:                logger.New("test"),
		now:                func() time.Time { return checkOut },
	}

	_, err := controller.Accept(ctx, other, job.ID)
	assert.ErrorIs(t, err, types.ErrForbidden)

	_, err = controller.Complete(ctx, cleaner, job.ID, nil)
	assert.ErrorIs(t, err, types.ErrInvalidTransition)

	accepted, err := controller.Accept(ctx, cleaner, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusAccepted, accepted.Status)
	require.NotNil(t, accepted.AcceptedAt)

	started, err := controller.Start(ctx, cleaner, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusInProgress, started.Status)

	reloaded, err := repos.Booking.GetByID(ctx, db.SQL, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CleaningStatusInProgress, reloaded.CleaningStatus)

	notes := "left spare towels"
	completed, err := controller.Complete(ctx, cleaner, job.ID, &CompleteJobRequest{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, completed.Status)
	require.NotNil(t, completed.CompletedAt)
	assert.Equal(t, &notes, completed.Notes)

	payout, err := repos.Payout.GetByJobID(ctx, db.SQL, job.ID)
	require.NoError(t, err)
	assert.Equal(t, cleaner.ID, payout.CleanerID)
	assert.True(t, decimal.RequireFromString("45").Equal(payout.Amount))

	reloaded, err = repos.Booking.GetByID(ctx, db.SQL, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CleaningStatusCompleted, reloaded.CleaningStatus)

	jobs, err := controller.GetMyJobs(ctx, cleaner)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, models.JobStatusCompleted, jobs[0].Status)
}
