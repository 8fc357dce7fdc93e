package services

import (
	"context"
	"errors"
	"testing"
	"time"
	"turnover/internal/events"
	"turnover/internal/models"
	"turnover/internal/repositories"
	"turnover/internal/testutil"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type channelPublisher struct {
	events chan events.Event
	err    error
}

func (p *channelPublisher) Publish(channel events.Channel, event events.Event) error {
	if p.err != nil {
		return p.err
	}
	event.Channel = channel
	p.events <- event
	return nil
}

func TestNotificationService_PublishesAssignedJob(t *testing.T) {
	db := testutil.NewDB(t)
	repos := repositories.New(db)
	ctx := context.Background()

	host := testutil.CreateHost(t, db)
	property := testutil.CreateProperty(t, db, host.ID)
	cleaner := testutil.CreateCleaner(t, db, "Carla")
	booking := testutil.CreateBooking(t, db, property.ID, tuesday, models.CleaningTypePostCheckout)

	job := &models.CleaningJob{
		BookingID:   booking.ID,
		Slot:        models.JobSlotPostCheckout,
		CleanerID:   &cleaner.ID,
		Status:      models.JobStatusAssigned,
		Payout:      decimal.RequireFromString("45"),
		ScheduledAt: tuesday,
	}
	require.NoError(t, repos.CleaningJob.Create(ctx, db.SQL, job))

	publisher := &channelPublisher{events: make(chan events.Event, 1)}
	notifications := NewNotificationService(db.SQL, repos.CleaningJob, publisher, 4, 1)
	defer notifications.Close()

	assert.True(t, notifications.NotifyJobAssigned(job.ID))

	select {
	case event := <-publisher.events:
		assert.Equal(t, events.JOB_ASSIGNED, event.Type)
		assert.Equal(t, events.SEND_CHANNEL, event.Channel)
		require.NotNil(t, event.UserID)
		assert.Equal(t, cleaner.ID, *event.UserID)
		assert.Equal(t, job.ID.String(), event.Data["jobId"])
		assert.Equal(t, "2025-06-10T11:00:00Z", event.Data["scheduledAt"])
		assert.Equal(t, "45.00", event.Data["payout"])
	case <-time.After(2 * time.Second):
		t.Fatal("notification was not published")
	}
}

func TestNotificationService_DropsWhenQueueFull(t *testing.T) {
	// No workers, so nothing drains the queue.
	notifications := &NotificationService{
		queue: make(chan uuid.UUID, 1),
		done:  make(chan struct{}),
		log:   logger.New("test"),
	}

	assert.True(t, notifications.NotifyJobAssigned(uuid.New()))
	assert.False(t, notifications.NotifyJobAssigned(uuid.New()))
}

func TestNotificationService_RejectsAfterClose(t *testing.T) {
	publisher := &channelPublisher{events: make(chan events.Event, 1), err: errors.New("unreachable")}
	notifications := NewNotificationService(nil, nil, publisher, 1, 2)

	notifications.Close()
	notifications.Close()

	assert.False(t, notifications.NotifyJobAssigned(uuid.New()))
}

func TestJobAssignedEvent(t *testing.T) {
	cleanerID := uuid.New()
	job := &models.CleaningJob{
		BookingID:   uuid.New(),
		Slot:        models.JobSlotPreCheckout,
		CleanerID:   &cleanerID,
		Payout:      decimal.RequireFromString("52.5"),
		ScheduledAt: time.Date(2025, 6, 10, 9, 0, 0, 0, time.FixedZone("MDT", -6*3600)),
	}

	event := JobAssignedEvent(job)
	assert.Equal(t, &cleanerID, event.UserID)
	assert.Equal(t, "pre_checkout", event.Data["slot"])
	assert.Equal(t, "2025-06-10T15:00:00Z", event.Data["scheduledAt"])
	assert.Equal(t, "52.50", event.Data["payout"])
}
