package bookingController

import (
	"context"
	"testing"
	"time"
	"turnover/config"
	"turnover/internal/events"
	"turnover/internal/models"
	"turnover/internal/repositories"
	"turnover/internal/services"
	"turnover/internal/testutil"
	"turnover/internal/types"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.Config {
	return config.Config{
		JWTSecret:                "secret",
		SchedulerIntervalMinutes: 5,
		OperatingTimezone:        "UTC",
		DefaultPayout:            "45.00",
		PreCheckoutOffsetMinutes: 120,
		NotificationQueueSize:    8,
		NotificationWorkers:      1,
	}
}

func TestBookingController_CreateTriggersAssignment(t *testing.T) {
	db := testutil.NewDB(t)
	repos := repositories.New(db)
	svc := services.New(db, repos, testConfig(), events.New(nil))
	t.Cleanup(svc.Notification.Close)
	controller := New(repos, svc, db)
	ctx := context.Background()

	host := testutil.CreateHost(t, db)
	stranger := testutil.CreateHost(t, db)
	property := testutil.CreateProperty(t, db, host.ID)
	testutil.CreateCleaner(t, db, "Carla")

	checkOut := time.Date(2025, 6, 10, 11, 0, 0, 0, time.UTC)
	request := &CreateBookingRequest{
		PropertyID: property.ID,
		CheckIn:    checkOut.Add(-72 * time.Hour),
		CheckOut:   checkOut,
		Amount:     decimal.RequireFromString("380.00"),
	}

	_, err := controller.CreateBooking(ctx, stranger, request)
	assert.ErrorIs(t, err, types.ErrForbidden)

	booking, err := controller.CreateBooking(ctx, host, request)
	require.NoError(t, err)
	assert.Equal(t, models.CleaningTypePostCheckout, booking.CleaningType)
	assert.Equal(t, models.CleaningStatusScheduled, booking.CleaningStatus)

	_, err = controller.VerifyCleaning(ctx, host, booking.ID)
	assert.ErrorIs(t, err, types.ErrInvalidTransition)

	_, err = controller.MarkPaid(ctx, stranger, booking.ID)
	assert.ErrorIs(t, err, types.ErrForbidden)

	paid, err := controller.MarkPaid(ctx, host, booking.ID)
	require.NoError(t, err)
	assert.NotNil(t, paid.PaidAt)

	_, err = controller.ScheduleCleaning(ctx, host, booking.ID, &ScheduleCleaningRequest{
		CleaningType: func() *models.CleaningType { v := models.CleaningTypeRoundTrip; return &v }(),
	})
	assert.ErrorIs(t, err, types.ErrInvalidTransition)
}

func TestBookingController_DeletedPropertyIsNotFound(t *testing.T) {
	db := testutil.NewDB(t)
	repos := repositories.New(db)
	svc := services.New(db, repos, testConfig(), events.New(nil))
	t.Cleanup(svc.Notification.Close)
	controller := New(repos, svc, db)
	ctx := context.Background()

	host := testutil.CreateHost(t, db)
	property := testutil.CreateProperty(t, db, host.ID)
	booking := testutil.CreateBooking(t, db, property.ID,
		time.Date(2025, 6, 10, 11, 0, 0, 0, time.UTC), models.CleaningTypePostCheckout)
	require.NoError(t, db.SQL.Delete(property).Error)

	_, err := controller.MarkPaid(ctx, host, booking.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = controller.VerifyCleaning(ctx, host, booking.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestValidateCreate(t *testing.T) {
	checkOut := time.Date(2025, 6, 10, 11, 0, 0, 0, time.UTC)
	valid := func() *CreateBookingRequest {
		return &CreateBookingRequest{
			PropertyID: uuid.New(),
			CheckIn:    checkOut.Add(-24 * time.Hour),
			CheckOut:   checkOut,
		}
	}

	testCases := []struct {
		name      string
		mutate    func(r *CreateBookingRequest)
		wantError bool
	}{
		{name: "valid", mutate: func(r *CreateBookingRequest) {}},
		{name: "missing property", mutate: func(r *CreateBookingRequest) { r.PropertyID = uuid.Nil }, wantError: true},
		{name: "checkout before checkin", mutate: func(r *CreateBookingRequest) { r.CheckOut = r.CheckIn.Add(-time.Hour) }, wantError: true},
		{name: "negative amount", mutate: func(r *CreateBookingRequest) { r.Amount = decimal.NewFromInt(-1) }, wantError: true},
		{name: "unknown cleaning type", mutate: func(r *CreateBookingRequest) { r.CleaningType = "deep" }, wantError: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			request := valid()
			tc.mutate(request)
			err := validateCreate(request)
			if tc.wantError {
				assert.ErrorIs(t, err, types.ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
