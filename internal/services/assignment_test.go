package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
	"turnover/internal/database"
	"turnover/internal/models"
	"turnover/internal/repositories"
	"turnover/internal/testutil"
	"turnover/internal/types"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// 2025-06-10 is a Tuesday.
var tuesday = time.Date(2025, 6, 10, 11, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu     sync.Mutex
	jobIDs []uuid.UUID
}

func (n *recordingNotifier) NotifyJobAssigned(jobID uuid.UUID) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.jobIDs = append(n.jobIDs, jobID)
	return true
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.jobIDs)
}

type engineEnv struct {
	db       database.DB
	repos    repositories.Repository
	engine   *AssignmentService
	notifier *recordingNotifier
	property *models.Property
}

func newEngineEnv(t *testing.T) *engineEnv {
	t.Helper()

	db := testutil.NewDB(t)
	repos := repositories.New(db)
	return newEngineEnvWithRepos(t, db, repos)
}

func newEngineEnvWithRepos(t *testing.T, db database.DB, repos repositories.Repository) *engineEnv {
	t.Helper()

	oracle := NewAvailabilityService(repos.Availability, repos.TimeOff, time.UTC)
	selector := NewCandidateService(repos, oracle, time.UTC, 2*time.Hour)
	notifier := &recordingNotifier{}
	engine := NewAssignmentService(
		db,
		NewTransactionService(db),
		repos,
		selector,
		notifier,
		decimal.RequireFromString("45.00"),
	)

	host := testutil.CreateHost(t, db)
	return &engineEnv{
		db:       db,
		repos:    repos,
		engine:   engine,
		notifier: notifier,
		property: testutil.CreateProperty(t, db, host.ID),
	}
}

func (e *engineEnv) booking(t *testing.T, checkOut time.Time, cleaningType models.CleaningType) *models.Booking {
	return testutil.CreateBooking(t, e.db, e.property.ID, checkOut, cleaningType)
}

func (e *engineEnv) activeJobs(t *testing.T, bookingID uuid.UUID) []*models.CleaningJob {
	t.Helper()
	jobs, err := e.repos.CleaningJob.GetActiveByBooking(context.Background(), e.db.SQL, bookingID)
	require.NoError(t, err)
	return jobs
}

func (e *engineEnv) reload(t *testing.T, bookingID uuid.UUID) *models.Booking {
	t.Helper()
	booking, err := e.repos.Booking.GetByID(context.Background(), e.db.SQL, bookingID)
	require.NoError(t, err)
	return booking
}

func (e *engineEnv) syncLogs(t *testing.T) []*models.SyncLog {
	t.Helper()
	logs, err := e.repos.SyncLog.GetRecent(context.Background(), e.db.SQL, 50)
	require.NoError(t, err)
	return logs
}

func TestAssignmentPass_EndToEnd(t *testing.T) {
	env := newEngineEnv(t)
	ctx := context.Background()

	cleaner := testutil.CreateCleaner(t, env.db, "Carla")
	testutil.SetWeekly(t, env.db, cleaner.ID, time.Tuesday, 9, 17)
	booking := env.booking(t, tuesday, models.CleaningTypePostCheckout)

	created, err := env.engine.RunAssignmentPass(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	jobs := env.activeJobs(t, booking.ID)
	require.Len(t, jobs, 1)
	job := jobs[0]
	assert.Equal(t, models.JobStatusAssigned, job.Status)
	assert.Equal(t, models.JobSlotPostCheckout, job.Slot)
	require.NotNil(t, job.CleanerID)
	assert.Equal(t, cleaner.ID, *job.CleanerID)
	assert.True(t, job.ScheduledAt.Equal(tuesday))
	assert.True(t, decimal.RequireFromString("45").Equal(job.Payout))

	assert.Equal(t, models.CleaningStatusScheduled, env.reload(t, booking.ID).CleaningStatus)
	assert.Equal(t, []uuid.UUID{job.ID}, env.notifier.jobIDs)
}

func TestAssignmentPass_Idempotent(t *testing.T) {
	env := newEngineEnv(t)
	ctx := context.Background()

	testutil.CreateCleaner(t, env.db, "Carla")
	env.booking(t, tuesday, models.CleaningTypePostCheckout)
	env.booking(t, tuesday.Add(time.Hour), models.CleaningTypePostCheckout)

	first, err := env.engine.RunAssignmentPass(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, first)

	second, err := env.engine.RunAssignmentPass(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, second)
	assert.Equal(t, 2, env.notifier.count())
}

func TestAssignmentPass_RoundRobin(t *testing.T) {
	env := newEngineEnv(t)
	ctx := context.Background()

	cleaners := []*models.User{
		testutil.CreateCleaner(t, env.db, "Ana"),
		testutil.CreateCleaner(t, env.db, "Ben"),
		testutil.CreateCleaner(t, env.db, "Cho"),
	}

	bookings := make([]*models.Booking, 6)
	for i := range bookings {
		bookings[i] = env.booking(t, tuesday.Add(time.Duration(i)*time.Hour), models.CleaningTypePostCheckout)
	}

	created, err := env.engine.TriggerNow(ctx, models.SyncSourceDispatch)
	require.NoError(t, err)
	assert.Equal(t, 6, created)

	perCleaner := map[uuid.UUID]int{}
	for i, booking := range bookings {
		jobs := env.activeJobs(t, booking.ID)
		require.Len(t, jobs, 1)
		require.NotNil(t, jobs[0].CleanerID)
		assert.Equal(t, cleaners[i%3].ID, *jobs[0].CleanerID, "booking %d", i)
		perCleaner[*jobs[0].CleanerID]++
	}

	for _, cleaner := range cleaners {
		assert.Equal(t, 2, perCleaner[cleaner.ID])
	}
}

func TestAssignmentPass_TimeOffExcludesCleaner(t *testing.T) {
	env := newEngineEnv(t)

	away := testutil.CreateCleaner(t, env.db, "Away")
	home := testutil.CreateCleaner(t, env.db, "Home")
	testutil.AddTimeOff(t, env.db, away.ID, tuesday.AddDate(0, 0, -1), tuesday.AddDate(0, 0, 2))
	booking := env.booking(t, tuesday, models.CleaningTypePostCheckout)

	created, err := env.engine.RunAssignmentPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	jobs := env.activeJobs(t, booking.ID)
	require.Len(t, jobs, 1)
	assert.Equal(t, home.ID, *jobs[0].CleanerID)
}

func TestAssignmentPass_WindowBoundaries(t *testing.T) {
	testCases := []struct {
		name     string
		checkOut time.Time
		assigned bool
	}{
		{name: "window start", checkOut: time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC), assigned: true},
		{name: "window end", checkOut: time.Date(2025, 6, 10, 17, 0, 0, 0, time.UTC), assigned: true},
		{name: "one minute past end", checkOut: time.Date(2025, 6, 10, 17, 1, 0, 0, time.UTC)},
		{name: "one minute before start", checkOut: time.Date(2025, 6, 10, 8, 59, 0, 0, time.UTC)},
		{name: "weekday without entry", checkOut: time.Date(2025, 6, 11, 3, 0, 0, 0, time.UTC), assigned: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := newEngineEnv(t)
			cleaner := testutil.CreateCleaner(t, env.db, "Carla")
			testutil.SetWeekly(t, env.db, cleaner.ID, time.Tuesday, 9, 17)
			booking := env.booking(t, tc.checkOut, models.CleaningTypePostCheckout)

			created, err := env.engine.RunAssignmentPass(context.Background())
			require.NoError(t, err)

			if tc.assigned {
				assert.Equal(t, 1, created)
				assert.Equal(t, models.CleaningStatusScheduled, env.reload(t, booking.ID).CleaningStatus)
				return
			}

			assert.Equal(t, 0, created)
			assert.Empty(t, env.activeJobs(t, booking.ID))
			assert.Equal(t, models.CleaningStatusPending, env.reload(t, booking.ID).CleaningStatus)
		})
	}
}

func TestAssignmentPass_NoCandidatesRetriesLater(t *testing.T) {
	env := newEngineEnv(t)
	ctx := context.Background()

	cleaner := testutil.CreateCleaner(t, env.db, "Carla")
	timeOff := testutil.AddTimeOff(t, env.db, cleaner.ID, tuesday, tuesday)
	booking := env.booking(t, tuesday, models.CleaningTypePostCheckout)

	created, err := env.engine.RunAssignmentPass(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, created)
	assert.Equal(t, models.CleaningStatusPending, env.reload(t, booking.ID).CleaningStatus)

	logs := env.syncLogs(t)
	require.Len(t, logs, 1)
	assert.Equal(t, models.SyncLogWarning, logs[0].Status)
	assert.Equal(t, models.SyncSourceScheduler, logs[0].Source)
	require.NotNil(t, logs[0].BookingID)
	assert.Equal(t, booking.ID, *logs[0].BookingID)

	require.NoError(t, env.repos.TimeOff.Delete(ctx, env.db.SQL, cleaner.ID, timeOff.ID))

	created, err = env.engine.RunAssignmentPass(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, created)
	assert.Equal(t, models.CleaningStatusScheduled, env.reload(t, booking.ID).CleaningStatus)
}

func TestAssignmentPass_RoundTripCreatesBothSlots(t *testing.T) {
	env := newEngineEnv(t)

	first := testutil.CreateCleaner(t, env.db, "Ana")
	second := testutil.CreateCleaner(t, env.db, "Ben")
	booking := env.booking(t, tuesday, models.CleaningTypeRoundTrip)

	created, err := env.engine.RunAssignmentPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	bySlot := map[models.JobSlot]*models.CleaningJob{}
	for _, job := range env.activeJobs(t, booking.ID) {
		bySlot[job.Slot] = job
	}
	require.Len(t, bySlot, 2)

	post := bySlot[models.JobSlotPostCheckout]
	pre := bySlot[models.JobSlotPreCheckout]
	assert.Equal(t, first.ID, *post.CleanerID)
	assert.Equal(t, second.ID, *pre.CleanerID)
	assert.True(t, post.ScheduledAt.Equal(tuesday))
	assert.True(t, pre.ScheduledAt.Equal(tuesday.Add(-2*time.Hour)))
	assert.Equal(t, models.CleaningStatusScheduled, env.reload(t, booking.ID).CleaningStatus)
}

func TestAssignmentPass_PartialRoundTripStaysPending(t *testing.T) {
	env := newEngineEnv(t)
	ctx := context.Background()

	cleaner := testutil.CreateCleaner(t, env.db, "Carla")
	// Post slot at 11:00 is covered, pre slot at 09:00 is not.
	testutil.SetWeekly(t, env.db, cleaner.ID, time.Tuesday, 10, 17)
	booking := env.booking(t, tuesday, models.CleaningTypeRoundTrip)

	created, err := env.engine.RunAssignmentPass(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, created)
	assert.Equal(t, models.CleaningStatusPending, env.reload(t, booking.ID).CleaningStatus)

	created, err = env.engine.RunAssignmentPass(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, created)
	assert.Len(t, env.activeJobs(t, booking.ID), 1)
}

type failingJobRepository struct {
	repositories.CleaningJobRepository
	failFor uuid.UUID
}

func (r *failingJobRepository) Create(ctx context.Context, tx *gorm.DB, job *models.CleaningJob) error {
	if job.BookingID == r.failFor {
		return errors.New("disk full")
	}
	return r.CleaningJobRepository.Create(ctx, tx, job)
}

func TestAssignmentPass_FailureIsolatedToBooking(t *testing.T) {
	db := testutil.NewDB(t)
	repos := repositories.New(db)
	failing := &failingJobRepository{CleaningJobRepository: repos.CleaningJob}
	repos.CleaningJob = failing
	env := newEngineEnvWithRepos(t, db, repos)

	testutil.CreateCleaner(t, env.db, "Carla")
	broken := env.booking(t, tuesday, models.CleaningTypePostCheckout)
	healthy := env.booking(t, tuesday.Add(time.Hour), models.CleaningTypePostCheckout)
	failing.failFor = broken.ID

	created, err := env.engine.RunAssignmentPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	assert.Empty(t, env.activeJobs(t, broken.ID))
	assert.Equal(t, models.CleaningStatusPending, env.reload(t, broken.ID).CleaningStatus)
	assert.Len(t, env.activeJobs(t, healthy.ID), 1)
	assert.Equal(t, models.CleaningStatusScheduled, env.reload(t, healthy.ID).CleaningStatus)

	logs := env.syncLogs(t)
	require.Len(t, logs, 1)
	assert.Equal(t, models.SyncLogError, logs[0].Status)
	assert.Equal(t, broken.ID, *logs[0].BookingID)
}

// racingJobRepository hides a live job from the existence check, as when a
// concurrent pass commits between the check and the insert.
type racingJobRepository struct {
	repositories.CleaningJobRepository
	hideFor uuid.UUID
}

func (r *racingJobRepository) GetActiveByBookingSlot(
	ctx context.Context,
	tx *gorm.DB,
	bookingID uuid.UUID,
	slot models.JobSlot,
) (*models.CleaningJob, error) {
	if bookingID == r.hideFor {
		return nil, types.ErrNotFound
	}
	return r.CleaningJobRepository.GetActiveByBookingSlot(ctx, tx, bookingID, slot)
}

func TestAssignmentPass_DuplicateInsertSkipsBooking(t *testing.T) {
	db := testutil.NewDB(t)
	repos := repositories.New(db)
	racing := &racingJobRepository{CleaningJobRepository: repos.CleaningJob}
	repos.CleaningJob = racing
	env := newEngineEnvWithRepos(t, db, repos)
	ctx := context.Background()

	carla := testutil.CreateCleaner(t, env.db, "Carla")
	booking := env.booking(t, tuesday, models.CleaningTypePostCheckout)
	require.NoError(t, repos.CleaningJob.Create(ctx, env.db.SQL, &models.CleaningJob{
		BookingID:   booking.ID,
		Slot:        models.JobSlotPostCheckout,
		CleanerID:   &carla.ID,
		Status:      models.JobStatusAssigned,
		Payout:      decimal.RequireFromString("45.00"),
		ScheduledAt: tuesday,
	}))
	racing.hideFor = booking.ID

	created, err := env.engine.RunAssignmentPass(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, created)

	assert.Len(t, env.activeJobs(t, booking.ID), 1)
	assert.Equal(t, models.CleaningStatusPending, env.reload(t, booking.ID).CleaningStatus)
	for _, entry := range env.syncLogs(t) {
		assert.NotEqual(t, models.SyncLogError, entry.Status, entry.Message)
	}
	assert.Zero(t, env.notifier.count())
}

// notifyOrderRepository records how many notifications were queued when each
// booking's insert ran.
type notifyOrderRepository struct {
	repositories.CleaningJobRepository
	notifier *recordingNotifier
	seen     map[uuid.UUID]int
}

func (r *notifyOrderRepository) Create(ctx context.Context, tx *gorm.DB, job *models.CleaningJob) error {
	r.seen[job.BookingID] = r.notifier.count()
	return r.CleaningJobRepository.Create(ctx, tx, job)
}

func TestAssignmentPass_NotifiesEachBookingAfterCommit(t *testing.T) {
	db := testutil.NewDB(t)
	repos := repositories.New(db)
	ordering := &notifyOrderRepository{
		CleaningJobRepository: repos.CleaningJob,
		seen:                  map[uuid.UUID]int{},
	}
	repos.CleaningJob = ordering
	env := newEngineEnvWithRepos(t, db, repos)
	ordering.notifier = env.notifier

	testutil.CreateCleaner(t, env.db, "Carla")
	first := env.booking(t, tuesday, models.CleaningTypePostCheckout)
	second := env.booking(t, tuesday.Add(time.Hour), models.CleaningTypePostCheckout)

	created, err := env.engine.RunAssignmentPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	assert.Equal(t, 0, ordering.seen[first.ID])
	assert.Equal(t, 1, ordering.seen[second.ID])
	assert.Equal(t, 2, env.notifier.count())
}

func TestAssignManually_ReassignsExistingJob(t *testing.T) {
	env := newEngineEnv(t)
	ctx := context.Background()

	first := testutil.CreateCleaner(t, env.db, "Ana")
	booking := env.booking(t, tuesday, models.CleaningTypePostCheckout)

	_, err := env.engine.RunAssignmentPass(ctx)
	require.NoError(t, err)
	original := env.activeJobs(t, booking.ID)
	require.Len(t, original, 1)
	require.Equal(t, first.ID, *original[0].CleanerID)

	second := testutil.CreateCleaner(t, env.db, "Ben")
	job, err := env.engine.AssignManually(ctx, booking.ID, second.ID, "", nil)
	require.NoError(t, err)
	assert.Equal(t, original[0].ID, job.ID)
	assert.Equal(t, second.ID, *job.CleanerID)

	jobs := env.activeJobs(t, booking.ID)
	require.Len(t, jobs, 1)
	assert.Equal(t, second.ID, *jobs[0].CleanerID)
	assert.Equal(t, models.JobStatusAssigned, jobs[0].Status)
	assert.Equal(t, 2, env.notifier.count())

	again, err := env.engine.AssignManually(ctx, booking.ID, second.ID, models.JobSlotPostCheckout, nil)
	require.NoError(t, err)
	assert.Equal(t, job.ID, again.ID)
	assert.Equal(t, 2, env.notifier.count())
}

func TestAssignManually_CreatesJobAndSchedules(t *testing.T) {
	env := newEngineEnv(t)
	ctx := context.Background()

	// Company cleaners are outside the pool but can still be dispatched.
	companyID := uuid.New()
	cleaner := &models.User{
		FirstName: "Corp",
		Email:     "corp@cleaners.test",
		Role:      models.RoleCleaner,
		CompanyID: &companyID,
		IsActive:  true,
	}
	require.NoError(t, env.db.SQL.Create(cleaner).Error)
	booking := env.booking(t, tuesday, models.CleaningTypePostCheckout)
	payout := decimal.RequireFromString("60.00")

	job, err := env.engine.AssignManually(ctx, booking.ID, cleaner.ID, "", &payout)
	require.NoError(t, err)
	assert.True(t, payout.Equal(job.Payout))
	assert.Equal(t, models.CleaningStatusScheduled, env.reload(t, booking.ID).CleaningStatus)

	logs := env.syncLogs(t)
	require.Len(t, logs, 1)
	assert.Equal(t, models.SyncSourceDispatch, logs[0].Source)
	assert.Equal(t, models.SyncLogInfo, logs[0].Status)
}

func TestAssignManually_Rejections(t *testing.T) {
	env := newEngineEnv(t)
	ctx := context.Background()

	cleaner := testutil.CreateCleaner(t, env.db, "Carla")
	host := testutil.CreateHost(t, env.db)
	booking := env.booking(t, tuesday, models.CleaningTypePostCheckout)
	negative := decimal.RequireFromString("-1")

	testCases := []struct {
		name      string
		bookingID uuid.UUID
		cleanerID uuid.UUID
		slot      models.JobSlot
		payout    *decimal.Decimal
		want      error
	}{
		{name: "unknown booking", bookingID: uuid.New(), cleanerID: cleaner.ID, want: types.ErrNotFound},
		{name: "unknown cleaner", bookingID: booking.ID, cleanerID: uuid.New(), want: types.ErrNotFound},
		{name: "host is not a cleaner", bookingID: booking.ID, cleanerID: host.ID, want: types.ErrInvalidInput},
		{
			name:      "slot outside cleaning type",
			bookingID: booking.ID,
			cleanerID: cleaner.ID,
			slot:      models.JobSlotPreCheckout,
			want:      types.ErrInvalidInput,
		},
		{
			name:      "negative payout",
			bookingID: booking.ID,
			cleanerID: cleaner.ID,
			payout:    &negative,
			want:      types.ErrInvalidInput,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.engine.AssignManually(ctx, tc.bookingID, tc.cleanerID, tc.slot, tc.payout)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	assert.Empty(t, env.activeJobs(t, booking.ID))
	assert.Equal(t, 0, env.notifier.count())
}
