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

// AvailabilityService answers whether a cleaner may work at an instant.
type AvailabilityService struct {
	availability repositories.AvailabilityRepository
	timeOff      repositories.TimeOffRepository
	location     *time.Location
	log          logger.Logger
}

func NewAvailabilityService(
	availability repositories.AvailabilityRepository,
	timeOff repositories.TimeOffRepository,
	location *time.Location,
) *AvailabilityService {
	if location == nil {
		location = time.UTC
	}

	return &AvailabilityService{
		availability: availability,
		timeOff:      timeOff,
		location:     location,
		log:          logger.New("availabilityService"),
	}
}

// IsAvailable loads the cleaner's weekly windows and time off and evaluates
// them at the given instant. Storage errors are returned to the caller.
func (s *AvailabilityService) IsAvailable(
	ctx context.Context,
	tx *gorm.DB,
	cleanerID uuid.UUID,
	at time.Time,
) (bool, error) {
	log := s.log.Function("IsAvailable")

	weekly, err := s.availability.GetWeekly(ctx, tx, cleanerID)
	if err != nil {
		return false, log.Err("failed to load weekly availability", err, "cleanerID", cleanerID)
	}

	timeOff, err := s.timeOff.GetByCleaner(ctx, tx, cleanerID)
	if err != nil {
		return false, log.Err("failed to load time off", err, "cleanerID", cleanerID)
	}

	return Available(at, weekly, timeOff, s.location), nil
}

func (s *AvailabilityService) Location() *time.Location {
	return s.location
}

// Available evaluates availability at the wall-clock minute of at in loc.
//
// A weekday without an entry counts as available all day, so newly onboarded
// cleaners are assignable before they set a schedule. Time off covering the
// calendar day always wins.
func Available(
	at time.Time,
	weekly []*models.CleanerAvailability,
	timeOff []*models.CleanerTimeOff,
	loc *time.Location,
) bool {
	local := at.In(loc)

	for _, blackout := range timeOff {
		if blackout.CoversDay(local) {
			return false
		}
	}

	minuteOfDay := local.Hour()*60 + local.Minute()
	for _, window := range weekly {
		if window.Weekday == int(local.Weekday()) {
			return window.Covers(minuteOfDay)
		}
	}

	return true
}
