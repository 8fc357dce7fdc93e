package services

import (
	"context"
	"time"
	"turnover/internal/models"
	"turnover/internal/repositories"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Oracle decides whether a cleaner may work at an instant.
type Oracle interface {
	IsAvailable(ctx context.Context, tx *gorm.DB, cleanerID uuid.UUID, at time.Time) (bool, error)
}

type CandidateService struct {
	users             repositories.UserRepository
	bookings          repositories.BookingRepository
	jobs              repositories.CleaningJobRepository
	oracle            Oracle
	location          *time.Location
	preCheckoutOffset time.Duration
	log               logger.Logger
}

func NewCandidateService(
	repos repositories.Repository,
	oracle Oracle,
	location *time.Location,
	preCheckoutOffset time.Duration,
) *CandidateService {
	if location == nil {
		location = time.UTC
	}

	return &CandidateService{
		users:             repos.User,
		bookings:          repos.Booking,
		jobs:              repos.CleaningJob,
		oracle:            oracle,
		location:          location,
		preCheckoutOffset: preCheckoutOffset,
		log:               logger.New("candidateService"),
	}
}

// SelectCandidates lists eligible cleaners for the booking's primary slot.
func (s *CandidateService) SelectCandidates(
	ctx context.Context,
	tx *gorm.DB,
	bookingID uuid.UUID,
) ([]models.Candidate, error) {
	booking, err := s.bookings.GetByID(ctx, tx, bookingID)
	if err != nil {
		return nil, err
	}

	return s.SelectForSlot(ctx, tx, booking, booking.CleaningType.Slots()[0])
}

// SelectForSlot keeps pool order. A cleaner whose records cannot be read is
// left out with a warning instead of failing the whole selection.
func (s *CandidateService) SelectForSlot(
	ctx context.Context,
	tx *gorm.DB,
	booking *models.Booking,
	slot models.JobSlot,
) ([]models.Candidate, error) {
	log := s.log.Function("SelectForSlot")

	cleaners, err := s.users.GetPoolCleaners(ctx, tx)
	if err != nil {
		return nil, log.Err("failed to load cleaner pool", err, "bookingID", booking.ID)
	}

	target := s.SlotTime(booking, slot)
	dayStart, dayEnd := s.dayBounds(target)

	candidates := make([]models.Candidate, 0, len(cleaners))
	for _, cleaner := range cleaners {
		available, err := s.oracle.IsAvailable(ctx, tx, cleaner.ID, target)
		if err != nil {
			log.Warn("excluding cleaner after availability lookup failed",
				"cleanerID", cleaner.ID, "bookingID", booking.ID, "error", err)
			continue
		}
		if !available {
			continue
		}

		load, err := s.jobs.CountForCleanerBetween(ctx, tx, cleaner.ID, dayStart, dayEnd)
		if err != nil {
			log.Warn("excluding cleaner after load lookup failed",
				"cleanerID", cleaner.ID, "bookingID", booking.ID, "error", err)
			continue
		}

		conflict, err := s.jobs.ExistsForCleanerAndBooking(ctx, tx, cleaner.ID, booking.ID)
		if err != nil {
			log.Warn("excluding cleaner after conflict lookup failed",
				"cleanerID", cleaner.ID, "bookingID", booking.ID, "error", err)
			continue
		}

		candidates = append(candidates, models.Candidate{
			Cleaner:  cleaner,
			Slot:     slot,
			Load:     load,
			Conflict: conflict,
		})
	}

	log.Debug("candidates selected",
		"bookingID", booking.ID, "slot", slot, "pool", len(cleaners), "eligible", len(candidates))

	return candidates, nil
}

func (s *CandidateService) SlotTime(booking *models.Booking, slot models.JobSlot) time.Time {
	return booking.SlotTime(slot, s.preCheckoutOffset)
}

// dayBounds returns the operating-timezone calendar day containing at.
func (s *CandidateService) dayBounds(at time.Time) (time.Time, time.Time) {
	local := at.In(s.location)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.location)
	return start, start.AddDate(0, 0, 1)
}
