package cleanerController

import (
	"context"
	"fmt"
	"time"
	"turnover/internal/database"
	. "turnover/internal/models"
	"turnover/internal/repositories"
	"turnover/internal/services"
	"turnover/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	clockLayout = "15:04"
	dateLayout  = "2006-01-02"
)

type CleanerController struct {
	availabilityRepo   repositories.AvailabilityRepository
	timeOffRepo        repositories.TimeOffRepository
	transactionService *services.TransactionService
	db                 database.DB
	log                logger.Logger
}

type WindowRequest struct {
	Weekday   int    `json:"weekday"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type ReplaceAvailabilityRequest struct {
	Windows []WindowRequest `json:"windows"`
}

type CreateTimeOffRequest struct {
	StartDate string  `json:"startDate"`
	EndDate   string  `json:"endDate"`
	Reason    *string `json:"reason,omitempty"`
}

type CleanerControllerInterface interface {
	GetAvailability(ctx context.Context, user *User) ([]*CleanerAvailability, error)
	ReplaceAvailability(
		ctx context.Context,
		user *User,
		request *ReplaceAvailabilityRequest,
	) ([]*CleanerAvailability, error)
	GetTimeOff(ctx context.Context, user *User) ([]*CleanerTimeOff, error)
	CreateTimeOff(ctx context.Context, user *User, request *CreateTimeOffRequest) (*CleanerTimeOff, error)
	DeleteTimeOff(ctx context.Context, user *User, timeOffID uuid.UUID) error
}

func New(
	repos repositories.Repository,
	services services.Service,
	db database.DB,
) CleanerControllerInterface {
	return &CleanerController{
		availabilityRepo:   repos.Availability,
		timeOffRepo:        repos.TimeOff,
		transactionService: services.Transaction,
		db:                 db,
		log:                logger.New("cleanerController"),
	}
}

func (c *CleanerController) GetAvailability(
	ctx context.Context,
	user *User,
) ([]*CleanerAvailability, error) {
	return c.availabilityRepo.GetWeekly(ctx, c.db.SQL, user.ID)
}

func (c *CleanerController) ReplaceAvailability(
	ctx context.Context,
	user *User,
	request *ReplaceAvailabilityRequest,
) ([]*CleanerAvailability, error) {
	log := c.log.Function("ReplaceAvailability")

	entries, err := parseWindows(user.ID, request.Windows)
	if err != nil {
		return nil, log.Err("invalid availability", err, "cleanerID", user.ID)
	}

	err = c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		return c.availabilityRepo.ReplaceWeekly(ctx, tx, user.ID, entries)
	})
	if err != nil {
		return nil, log.Err("failed to replace availability", err, "cleanerID", user.ID)
	}
	c.availabilityRepo.InvalidateWeekly(ctx, user.ID)

	log.Info("weekly availability replaced", "cleanerID", user.ID, "windows", len(entries))
	return entries, nil
}

func (c *CleanerController) GetTimeOff(ctx context.Context, user *User) ([]*CleanerTimeOff, error) {
	return c.timeOffRepo.GetByCleaner(ctx, c.db.SQL, user.ID)
}

func (c *CleanerController) CreateTimeOff(
	ctx context.Context,
	user *User,
	request *CreateTimeOffRequest,
) (*CleanerTimeOff, error) {
	log := c.log.Function("CreateTimeOff")

	start, err := time.Parse(dateLayout, request.StartDate)
	if err != nil {
		return nil, log.Err("invalid start date",
			fmt.Errorf("%w: startDate must be YYYY-MM-DD", types.ErrInvalidInput), "cleanerID", user.ID)
	}
	end, err := time.Parse(dateLayout, request.EndDate)
	if err != nil {
		return nil, log.Err("invalid end date",
			fmt.Errorf("%w: endDate must be YYYY-MM-DD", types.ErrInvalidInput), "cleanerID", user.ID)
	}
	if end.Before(start) {
		return nil, log.Err("invalid time off range",
			fmt.Errorf("%w: endDate is before startDate", types.ErrInvalidInput), "cleanerID", user.ID)
	}

	timeOff := &CleanerTimeOff{
		CleanerID: user.ID,
		StartDate: datatypes.Date(start),
		EndDate:   datatypes.Date(end),
		Reason:    request.Reason,
	}
	if err := c.timeOffRepo.Create(ctx, c.db.SQL, timeOff); err != nil {
		return nil, err
	}

	return timeOff, nil
}

func (c *CleanerController) DeleteTimeOff(ctx context.Context, user *User, timeOffID uuid.UUID) error {
	return c.timeOffRepo.Delete(ctx, c.db.SQL, user.ID, timeOffID)
}

func parseWindows(cleanerID uuid.UUID, windows []WindowRequest) ([]*CleanerAvailability, error) {
	seen := make(map[int]bool, len(windows))
	entries := make([]*CleanerAvailability, 0, len(windows))

	for _, window := range windows {
		if window.Weekday < 0 || window.Weekday > 6 {
			return nil, fmt.Errorf("%w: weekday %d is outside 0-6", types.ErrInvalidInput, window.Weekday)
		}
		if seen[window.Weekday] {
			return nil, fmt.Errorf("%w: weekday %d listed twice", types.ErrInvalidInput, window.Weekday)
		}
		seen[window.Weekday] = true

		start, err := parseClock(window.StartTime)
		if err != nil {
			return nil, err
		}
		end, err := parseClock(window.EndTime)
		if err != nil {
			return nil, err
		}
		if end < start {
			return nil, fmt.Errorf("%w: weekday %d ends before it starts", types.ErrInvalidInput, window.Weekday)
		}

		entries = append(entries, &CleanerAvailability{
			CleanerID: cleanerID,
			Weekday:   window.Weekday,
			StartTime: start,
			EndTime:   end,
		})
	}

	return entries, nil
}

func parseClock(value string) (datatypes.Time, error) {
	t, err := time.Parse(clockLayout, value)
	if err != nil {
		return 0, fmt.Errorf("%w: time %q must be HH:MM", types.ErrInvalidInput, value)
	}
	return datatypes.NewTime(t.Hour(), t.Minute(), 0, 0), nil
}
