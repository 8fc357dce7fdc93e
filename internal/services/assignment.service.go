package services

import (
	"context"
	"errors"
	"fmt"
	"time"
	"turnover/internal/database"
	"turnover/internal/models"
	"turnover/internal/repositories"
	"turnover/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Selector produces the eligible cleaners for one booking slot.
type Selector interface {
	SelectForSlot(
		ctx context.Context,
		tx *gorm.DB,
		booking *models.Booking,
		slot models.JobSlot,
	) ([]models.Candidate, error)
	SlotTime(booking *models.Booking, slot models.JobSlot) time.Time
}

// Notifier hands an assignment to the outbound notification queue.
type Notifier interface {
	NotifyJobAssigned(jobID uuid.UUID) bool
}

// AssignmentService is the assignment engine. Passes hold no lock; the
// active-slot unique index keeps overlapping passes from creating duplicates.
type AssignmentService struct {
	db            *gorm.DB
	tx            Transactor
	repos         repositories.Repository
	selector      Selector
	notifier      Notifier
	defaultPayout decimal.Decimal
	log           logger.Logger
}

func NewAssignmentService(
	db database.DB,
	tx Transactor,
	repos repositories.Repository,
	selector Selector,
	notifier Notifier,
	defaultPayout decimal.Decimal,
) *AssignmentService {
	return &AssignmentService{
		db:            db.SQL,
		tx:            tx,
		repos:         repos,
		selector:      selector,
		notifier:      notifier,
		defaultPayout: defaultPayout,
		log:           logger.New("assignmentService"),
	}
}

// passState is folded through the booking loop. created doubles as the
// round-robin cursor: the Nth job of a pass goes to candidates[N mod len].
type passState struct {
	created int
}

type slotPlan struct {
	slot    models.JobSlot
	cleaner *models.User
	at      time.Time
}

// RunAssignmentPass is the clock's entry point.
func (s *AssignmentService) RunAssignmentPass(ctx context.Context) (int, error) {
	return s.TriggerNow(ctx, models.SyncSourceScheduler)
}

// TriggerNow runs one pass synchronously and returns the number of jobs it
// created. A failing booking is logged and skipped; only failing to list the
// pending bookings fails the pass.
func (s *AssignmentService) TriggerNow(ctx context.Context, source string) (int, error) {
	log := s.log.Function("TriggerNow")

	bookings, err := s.repos.Booking.GetUnresolved(ctx, s.db)
	if err != nil {
		return 0, log.Err("failed to load unresolved bookings", err, "source", source)
	}

	state := passState{}
	for _, booking := range bookings {
		state = s.assignBooking(ctx, source, booking, state)
	}

	log.Info("assignment pass finished",
		"source", source, "pending", len(bookings), "created", state.created)

	return state.created, nil
}

// assignBooking plans every uncovered slot outside a transaction, then writes
// the jobs and the status change atomically and queues the notifications once
// they are committed. It returns state unchanged when the booking is skipped
// or fails.
func (s *AssignmentService) assignBooking(
	ctx context.Context,
	source string,
	booking *models.Booking,
	state passState,
) passState {
	log := s.log.Function("assignBooking")

	slots := booking.CleaningType.Slots()
	covered := 0
	plans := make([]slotPlan, 0, len(slots))
	var unfilled []models.JobSlot

	for _, slot := range slots {
		_, err := s.repos.CleaningJob.GetActiveByBookingSlot(ctx, s.db, booking.ID, slot)
		if err == nil {
			covered++
			continue
		}
		if !errors.Is(err, types.ErrNotFound) {
			s.recordFailure(ctx, source, booking.ID, "failed to check existing jobs", err)
			return state
		}

		candidates, err := s.selector.SelectForSlot(ctx, s.db, booking, slot)
		if err != nil {
			s.recordFailure(ctx, source, booking.ID, "failed to select candidates", err)
			return state
		}
		if len(candidates) == 0 {
			unfilled = append(unfilled, slot)
			continue
		}

		pool := preferUnconflicted(candidates)
		pick := pool[(state.created+len(plans))%len(pool)]
		plans = append(plans, slotPlan{
			slot:    slot,
			cleaner: pick.Cleaner,
			at:      s.selector.SlotTime(booking, slot),
		})
	}

	if len(unfilled) > 0 {
		s.recordNoCandidates(ctx, source, booking, unfilled)
	}

	if len(plans) == 0 && covered < len(slots) {
		return state
	}

	created := make([]uuid.UUID, 0, len(plans))
	err := s.tx.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		created = created[:0]
		for _, plan := range plans {
			job := &models.CleaningJob{
				BookingID:   booking.ID,
				Slot:        plan.slot,
				CleanerID:   &plan.cleaner.ID,
				Status:      models.JobStatusAssigned,
				Payout:      s.defaultPayout,
				ScheduledAt: plan.at,
			}
			if err := s.repos.CleaningJob.Create(ctx, tx, job); err != nil {
				return err
			}
			created = append(created, job.ID)
		}

		if covered+len(plans) < len(slots) {
			return nil
		}

		return s.repos.Booking.UpdateCleaningStatus(ctx, tx, booking.ID,
			models.CleaningStatusPending, models.CleaningStatusScheduled)
	})

	switch {
	case err == nil:
	case errors.Is(err, types.ErrAlreadyAssigned), errors.Is(err, types.ErrInvalidTransition):
		log.Info("booking handled by a concurrent pass, skipping", "bookingID", booking.ID, "source", source)
		return state
	case errors.Is(err, types.ErrNotFound):
		log.Warn("booking disappeared during pass, skipping", "bookingID", booking.ID)
		return state
	default:
		s.recordFailure(ctx, source, booking.ID, "failed to assign booking", err)
		return state
	}

	for i, plan := range plans {
		log.Info("cleaner assigned",
			"bookingID", booking.ID, "slot", plan.slot, "cleanerID", plan.cleaner.ID, "jobID", created[i])
		s.notifier.NotifyJobAssigned(created[i])
	}

	return passState{created: state.created + len(created)}
}

// preferUnconflicted keeps a cleaner off a second slot of the same booking
// while anyone else is eligible.
func preferUnconflicted(candidates []models.Candidate) []models.Candidate {
	free := make([]models.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if !c.Conflict {
			free = append(free, c)
		}
	}
	if len(free) == 0 {
		return candidates
	}
	return free
}

// AssignManually is the dispatcher override: it bypasses round robin, moves an
// existing live job to the chosen cleaner, or creates the job.
func (s *AssignmentService) AssignManually(
	ctx context.Context,
	bookingID uuid.UUID,
	cleanerID uuid.UUID,
	slot models.JobSlot,
	payout *decimal.Decimal,
) (*models.CleaningJob, error) {
	log := s.log.Function("AssignManually")

	if payout != nil && payout.IsNegative() {
		return nil, log.Err("invalid payout",
			fmt.Errorf("%w: payout cannot be negative", types.ErrInvalidInput), "bookingID", bookingID)
	}

	var job *models.CleaningJob
	notify := false

	err := s.tx.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		booking, err := s.repos.Booking.GetByID(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if booking.Status == models.BookingStatusCancelled || booking.Status == models.BookingStatusCompleted {
			return fmt.Errorf("%w: booking is %s", types.ErrInvalidTransition, booking.Status)
		}

		slots := booking.CleaningType.Slots()
		if slot == "" {
			slot = slots[0]
		}
		if !containsSlot(slots, slot) {
			return fmt.Errorf("%w: slot %s is not part of a %s cleaning",
				types.ErrInvalidInput, slot, booking.CleaningType)
		}

		cleaner, err := s.repos.User.GetByID(ctx, tx, cleanerID)
		if err != nil {
			return err
		}
		if cleaner.Role != models.RoleCleaner || !cleaner.IsActive {
			return fmt.Errorf("%w: user is not an active cleaner", types.ErrInvalidInput)
		}

		existing, err := s.repos.CleaningJob.GetActiveByBookingSlot(ctx, tx, bookingID, slot)
		switch {
		case err == nil:
			job = existing
			if existing.CleanerID != nil && *existing.CleanerID == cleanerID {
				return nil
			}
			if err := s.repos.CleaningJob.Reassign(ctx, tx, existing, cleanerID); err != nil {
				return err
			}
		case errors.Is(err, types.ErrNotFound):
			amount := s.defaultPayout
			if payout != nil {
				amount = *payout
			}
			job = &models.CleaningJob{
				BookingID:   bookingID,
				Slot:        slot,
				CleanerID:   &cleanerID,
				Status:      models.JobStatusAssigned,
				Payout:      amount,
				ScheduledAt: s.selector.SlotTime(booking, slot),
			}
			if err := s.repos.CleaningJob.Create(ctx, tx, job); err != nil {
				return err
			}
		default:
			return err
		}
		notify = true

		if booking.CleaningStatus != models.CleaningStatusPending {
			return nil
		}

		active, err := s.repos.CleaningJob.GetActiveByBooking(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if !coversAll(active, slots) {
			return nil
		}

		return s.repos.Booking.UpdateCleaningStatus(ctx, tx, bookingID,
			models.CleaningStatusPending, models.CleaningStatusScheduled)
	})
	if err != nil {
		return nil, log.Err("manual assignment failed", err,
			"bookingID", bookingID, "cleanerID", cleanerID, "slot", slot)
	}

	if notify {
		s.notifier.NotifyJobAssigned(job.ID)
		s.writeSyncLog(ctx, &models.SyncLog{
			Source:    models.SyncSourceDispatch,
			Status:    models.SyncLogInfo,
			Message:   "cleaner assigned by dispatcher",
			BookingID: &bookingID,
			Details: datatypes.JSON(fmt.Sprintf(`{"jobId":%q,"cleanerId":%q,"slot":%q}`,
				job.ID, cleanerID, slot)),
		})
	}

	return job, nil
}

func containsSlot(slots []models.JobSlot, slot models.JobSlot) bool {
	for _, s := range slots {
		if s == slot {
			return true
		}
	}
	return false
}

func coversAll(jobs []*models.CleaningJob, slots []models.JobSlot) bool {
	for _, slot := range slots {
		found := false
		for _, job := range jobs {
			if job.Slot == slot {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (s *AssignmentService) recordNoCandidates(
	ctx context.Context,
	source string,
	booking *models.Booking,
	slots []models.JobSlot,
) {
	s.log.Function("recordNoCandidates").
		Warn("no available cleaners, booking stays pending", "bookingID", booking.ID, "slots", slots)

	s.writeSyncLog(ctx, &models.SyncLog{
		Source:    source,
		Status:    models.SyncLogWarning,
		Message:   fmt.Sprintf("No available cleaners for booking %s", booking.ID),
		BookingID: &booking.ID,
		Details:   datatypes.JSON(fmt.Sprintf(`{"slots":%q,"checkOut":%q}`, slotNames(slots), booking.CheckOut.Format(time.RFC3339))),
	})
}

func (s *AssignmentService) recordFailure(
	ctx context.Context,
	source string,
	bookingID uuid.UUID,
	message string,
	err error,
) {
	s.log.Function("recordFailure").Er(message, err, "bookingID", bookingID, "source", source)

	s.writeSyncLog(ctx, &models.SyncLog{
		Source:    source,
		Status:    models.SyncLogError,
		Message:   fmt.Sprintf("%s: %v", message, err),
		BookingID: &bookingID,
	})
}

// writeSyncLog is best effort; the pass never fails on it.
func (s *AssignmentService) writeSyncLog(ctx context.Context, entry *models.SyncLog) {
	if err := s.repos.SyncLog.Create(ctx, s.db, entry); err != nil {
		s.log.Function("writeSyncLog").Warn("sync log entry dropped", "message", entry.Message, "error", err)
	}
}

func slotNames(slots []models.JobSlot) string {
	names := ""
	for i, slot := range slots {
		if i > 0 {
			names += ","
		}
		names += string(slot)
	}
	return names
}
