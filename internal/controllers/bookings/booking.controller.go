package bookingController

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
	"github.com/shopspring/decimal"
)

type BookingController struct {
	bookingRepo  repositories.BookingRepository
	propertyRepo repositories.PropertyRepository
	assignment   *services.AssignmentService
	db           database.DB
	log          logger.Logger
}

type CreateBookingRequest struct {
	PropertyID   uuid.UUID       `json:"propertyId"`
	CheckIn      time.Time       `json:"checkIn"`
	CheckOut     time.Time       `json:"checkOut"`
	Amount       decimal.Decimal `json:"amount"`
	CleaningType CleaningType    `json:"cleaningType,omitempty"`
	ExternalRef  *string         `json:"externalRef,omitempty"`
}

type ScheduleCleaningRequest struct {
	CleaningType *CleaningType `json:"cleaningType,omitempty"`
}

type SyncResponse struct {
	Created int `json:"created"`
}

type BookingControllerInterface interface {
	CreateBooking(ctx context.Context, user *User, request *CreateBookingRequest) (*Booking, error)
	MarkPaid(ctx context.Context, user *User, bookingID uuid.UUID) (*Booking, error)
	ScheduleCleaning(
		ctx context.Context,
		user *User,
		bookingID uuid.UUID,
		request *ScheduleCleaningRequest,
	) (*Booking, error)
	Sync(ctx context.Context, user *User) (*SyncResponse, error)
	VerifyCleaning(ctx context.Context, user *User, bookingID uuid.UUID) (*Booking, error)
}

func New(
	repos repositories.Repository,
	services services.Service,
	db database.DB,
) BookingControllerInterface {
	return &BookingController{
		bookingRepo:  repos.Booking,
		propertyRepo: repos.Property,
		assignment:   services.Assignment,
		db:           db,
		log:          logger.New("bookingController"),
	}
}

func (c *BookingController) CreateBooking(
	ctx context.Context,
	user *User,
	request *CreateBookingRequest,
) (*Booking, error) {
	log := c.log.Function("CreateBooking")

	if err := validateCreate(request); err != nil {
		return nil, log.Err("invalid booking request", err, "userID", user.ID)
	}

	property, err := c.propertyRepo.GetByID(ctx, c.db.SQL, request.PropertyID)
	if err != nil {
		return nil, err
	}
	if !canManage(user, property.HostID) {
		return nil, log.Err("property belongs to another host",
			fmt.Errorf("%w: property", types.ErrForbidden), "userID", user.ID, "propertyID", property.ID)
	}

	cleaningType := request.CleaningType
	if cleaningType == "" {
		cleaningType = property.DefaultCleaningType
	}

	booking := &Booking{
		PropertyID:   property.ID,
		CheckIn:      request.CheckIn,
		CheckOut:     request.CheckOut,
		Amount:       request.Amount,
		CleaningType: cleaningType,
		ExternalRef:  request.ExternalRef,
	}
	if err := c.bookingRepo.Create(ctx, c.db.SQL, booking); err != nil {
		return nil, err
	}

	log.Info("booking created", "bookingID", booking.ID, "propertyID", property.ID)
	return c.triggerAndReload(ctx, booking.ID)
}

func (c *BookingController) MarkPaid(
	ctx context.Context,
	user *User,
	bookingID uuid.UUID,
) (*Booking, error) {
	if _, err := c.ownedBooking(ctx, user, bookingID); err != nil {
		return nil, err
	}

	if err := c.bookingRepo.MarkPaid(ctx, c.db.SQL, bookingID, time.Now().UTC()); err != nil {
		return nil, err
	}

	return c.triggerAndReload(ctx, bookingID)
}

func (c *BookingController) ScheduleCleaning(
	ctx context.Context,
	user *User,
	bookingID uuid.UUID,
	request *ScheduleCleaningRequest,
) (*Booking, error) {
	log := c.log.Function("ScheduleCleaning")

	booking, err := c.ownedBooking(ctx, user, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.Status == BookingStatusCancelled {
		return nil, log.Err("cannot schedule cleaning",
			fmt.Errorf("%w: booking is cancelled", types.ErrInvalidTransition), "bookingID", bookingID)
	}

	if request.CleaningType != nil && *request.CleaningType != booking.CleaningType {
		if !request.CleaningType.IsValid() {
			return nil, log.Err("cannot schedule cleaning",
				fmt.Errorf("%w: unknown cleaning type %q", types.ErrInvalidInput, *request.CleaningType),
				"bookingID", bookingID)
		}
		if err := c.bookingRepo.UpdateCleaningType(ctx, c.db.SQL, bookingID, *request.CleaningType); err != nil {
			return nil, err
		}
	}

	return c.triggerAndReload(ctx, bookingID)
}

func (c *BookingController) Sync(ctx context.Context, user *User) (*SyncResponse, error) {
	log := c.log.Function("Sync")

	created, err := c.assignment.TriggerNow(ctx, SyncSourceHost)
	if err != nil {
		return nil, log.Err("host sync failed", err, "userID", user.ID)
	}

	return &SyncResponse{Created: created}, nil
}

func (c *BookingController) VerifyCleaning(
	ctx context.Context,
	user *User,
	bookingID uuid.UUID,
) (*Booking, error) {
	if _, err := c.ownedBooking(ctx, user, bookingID); err != nil {
		return nil, err
	}

	if err := c.bookingRepo.UpdateCleaningStatus(ctx, c.db.SQL, bookingID,
		CleaningStatusCompleted, CleaningStatusVerified); err != nil {
		return nil, err
	}

	return c.bookingRepo.GetByID(ctx, c.db.SQL, bookingID)
}

func (c *BookingController) ownedBooking(
	ctx context.Context,
	user *User,
	bookingID uuid.UUID,
) (*Booking, error) {
	booking, err := c.bookingRepo.GetByID(ctx, c.db.SQL, bookingID)
	if err != nil {
		return nil, err
	}

	// Preload skips a soft-deleted property.
	if booking.Property == nil {
		return nil, c.log.Function("ownedBooking").Err("booking has no property",
			fmt.Errorf("%w: property", types.ErrNotFound), "bookingID", bookingID)
	}

	if !canManage(user, booking.Property.HostID) {
		return nil, c.log.Function("ownedBooking").Err("booking belongs to another host",
			fmt.Errorf("%w: booking", types.ErrForbidden), "userID", user.ID, "bookingID", bookingID)
	}

	return booking, nil
}

// triggerAndReload runs a pass in the request. A failed pass does not fail
// the request; the clock retries the booking.
func (c *BookingController) triggerAndReload(ctx context.Context, bookingID uuid.UUID) (*Booking, error) {
	if _, err := c.assignment.TriggerNow(ctx, SyncSourceHost); err != nil {
		c.log.Function("triggerAndReload").Warn("on-demand assignment pass failed",
			"bookingID", bookingID, "error", err)
	}

	return c.bookingRepo.GetByID(ctx, c.db.SQL, bookingID)
}

func canManage(user *User, hostID uuid.UUID) bool {
	return user.Role == RoleAdmin || user.ID == hostID
}

func validateCreate(request *CreateBookingRequest) error {
	switch {
	case request.PropertyID == uuid.Nil:
		return fmt.Errorf("%w: propertyId is required", types.ErrInvalidInput)
	case request.CheckIn.IsZero() || request.CheckOut.IsZero():
		return fmt.Errorf("%w: checkIn and checkOut are required", types.ErrInvalidInput)
	case !request.CheckOut.After(request.CheckIn):
		return fmt.Errorf("%w: checkOut must be after checkIn", types.ErrInvalidInput)
	case request.Amount.IsNegative():
		return fmt.Errorf("%w: amount cannot be negative", types.ErrInvalidInput)
	case request.CleaningType != "" && !request.CleaningType.IsValid():
		return fmt.Errorf("%w: unknown cleaning type %q", types.ErrInvalidInput, request.CleaningType)
	}
	return nil
}
