package services

import (
	"context"
	"sync"
	"time"
	"turnover/internal/events"
	"turnover/internal/models"
	"turnover/internal/repositories"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const notificationLoadTimeout = 10 * time.Second

// Publisher delivers an event to a channel on the event bus.
type Publisher interface {
	Publish(channel events.Channel, event events.Event) error
}

// NotificationService tells cleaners about new assignments off the
// assignment path. Delivery is at most once: a full queue or a failed publish
// drops the notification with a warning.
type NotificationService struct {
	db        *gorm.DB
	jobs      repositories.CleaningJobRepository
	publisher Publisher
	queue     chan uuid.UUID
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
	log       logger.Logger
}

func NewNotificationService(
	db *gorm.DB,
	jobs repositories.CleaningJobRepository,
	publisher Publisher,
	queueSize int,
	workers int,
) *NotificationService {
	if queueSize < 1 {
		queueSize = 1
	}
	if workers < 1 {
		workers = 1
	}

	s := &NotificationService{
		db:        db,
		jobs:      jobs,
		publisher: publisher,
		queue:     make(chan uuid.UUID, queueSize),
		done:      make(chan struct{}),
		log:       logger.New("notificationService"),
	}

	for range workers {
		s.wg.Add(1)
		go s.worker()
	}

	return s
}

// NotifyJobAssigned never blocks. It reports whether the job was queued.
func (s *NotificationService) NotifyJobAssigned(jobID uuid.UUID) bool {
	select {
	case <-s.done:
		return false
	default:
	}

	select {
	case s.queue <- jobID:
		return true
	default:
		s.log.Function("NotifyJobAssigned").Warn("notification queue full, dropping", "jobID", jobID)
		return false
	}
}

// Close stops accepting work, lets the workers deliver what is already
// queued and waits for them.
func (s *NotificationService) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	s.wg.Wait()
}

func (s *NotificationService) worker() {
	defer s.wg.Done()

	for {
		select {
		case <-s.done:
			s.drain()
			return
		case jobID := <-s.queue:
			s.deliver(jobID)
		}
	}
}

// drain delivers whatever was queued before Close.
func (s *NotificationService) drain() {
	for {
		select {
		case jobID := <-s.queue:
			s.deliver(jobID)
		default:
			return
		}
	}
}

func (s *NotificationService) deliver(jobID uuid.UUID) {
	log := s.log.Function("deliver")

	ctx, cancel := context.WithTimeout(context.Background(), notificationLoadTimeout)
	defer cancel()

	job, err := s.jobs.GetByID(ctx, s.db, jobID)
	if err != nil {
		log.Warn("dropping notification, job not loaded", "jobID", jobID, "error", err)
		return
	}
	if job.CleanerID == nil {
		log.Warn("dropping notification, job has no cleaner", "jobID", jobID)
		return
	}

	event := JobAssignedEvent(job)
	if err := s.publisher.Publish(events.SEND_CHANNEL, event); err != nil {
		log.Warn("dropping notification, publish failed", "jobID", jobID, "error", err)
		return
	}

	log.Debug("cleaner notified", "jobID", jobID, "cleanerID", *job.CleanerID)
}

func JobAssignedEvent(job *models.CleaningJob) events.Event {
	return events.Event{
		Type:    events.JOB_ASSIGNED,
		Channel: events.SEND_CHANNEL,
		UserID:  job.CleanerID,
		Data: map[string]any{
			"jobId":       job.ID.String(),
			"bookingId":   job.BookingID.String(),
			"slot":        string(job.Slot),
			"scheduledAt": job.ScheduledAt.UTC().Format(time.RFC3339),
			"payout":      job.Payout.StringFixed(2),
		},
	}
}
