package repositories

import (
	"errors"
	"fmt"
	"turnover/internal/database"
	"turnover/internal/types"

	"gorm.io/gorm"
)

type Repository struct {
	User         UserRepository
	Property     PropertyRepository
	Booking      BookingRepository
	CleaningJob  CleaningJobRepository
	Availability AvailabilityRepository
	TimeOff      TimeOffRepository
	SyncLog      SyncLogRepository
	Payout       PayoutRepository
}

func New(db database.DB) Repository {
	return Repository{
		User:         NewUserRepository(db.Cache.User),
		Property:     NewPropertyRepository(db.Cache.General),
		Booking:      NewBookingRepository(),
		CleaningJob:  NewCleaningJobRepository(),
		Availability: NewAvailabilityRepository(db.Cache.Availability),
		TimeOff:      NewTimeOffRepository(db.Cache.Availability),
		SyncLog:      NewSyncLogRepository(),
		Payout:       NewPayoutRepository(),
	}
}

// classify maps gorm errors onto the service taxonomy.
func classify(err error, what string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %s", types.ErrNotFound, what)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %s", types.ErrAlreadyAssigned, what)
	case errors.Is(err, gorm.ErrInvalidValue):
		return fmt.Errorf("%w: %s", types.ErrInvalidInput, what)
	}
	return err
}

func isAlreadyAssigned(err error) bool {
	return errors.Is(err, types.ErrAlreadyAssigned)
}
