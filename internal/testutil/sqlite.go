// Package testutil builds throwaway databases and fixtures for package tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"
	"turnover/internal/database"
	"turnover/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
)

// NewDB returns a migrated in-memory SQLite database private to the test.
// The pool is capped at one connection, so queries issued outside an open
// transaction block until it finishes.
func NewDB(t *testing.T) database.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared&_foreign_keys=off", name, uuid.NewString())

	db, err := database.NewWithDialector(sqlite.Open(dsn))
	require.NoError(t, err)

	sqlDB, err := db.SQL.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.MigrateModels())

	t.Cleanup(func() { _ = db.Close() })
	return db
}

func CreateHost(t *testing.T, db database.DB) *models.User {
	t.Helper()

	host := &models.User{
		FirstName: "Hannah",
		LastName:  "Host",
		Email:     uuid.NewString() + "@hosts.test",
		Role:      models.RoleHost,
		IsActive:  true,
	}
	require.NoError(t, db.SQL.Create(host).Error)
	return host
}

func CreateCleaner(t *testing.T, db database.DB, name string) *models.User {
	t.Helper()

	cleaner := &models.User{
		FirstName: name,
		Email:     strings.ToLower(name) + "-" + uuid.NewString() + "@cleaners.test",
		Role:      models.RoleCleaner,
		IsActive:  true,
	}
	require.NoError(t, db.SQL.Create(cleaner).Error)
	// created_at drives pool order; keep it strictly increasing.
	time.Sleep(2 * time.Millisecond)
	return cleaner
}

func CreateProperty(t *testing.T, db database.DB, hostID uuid.UUID) *models.Property {
	t.Helper()

	property := &models.Property{
		HostID:              hostID,
		Name:                "Lakeside Cabin",
		Address:             "1 Shore Rd",
		DefaultCleaningType: models.CleaningTypePostCheckout,
	}
	require.NoError(t, db.SQL.Create(property).Error)
	return property
}

func CreateBooking(
	t *testing.T,
	db database.DB,
	propertyID uuid.UUID,
	checkOut time.Time,
	cleaningType models.CleaningType,
) *models.Booking {
	t.Helper()

	booking := &models.Booking{
		PropertyID:   propertyID,
		CheckIn:      checkOut.Add(-72 * time.Hour),
		CheckOut:     checkOut,
		CleaningType: cleaningType,
		Amount:       decimal.RequireFromString("420.00"),
	}
	require.NoError(t, db.SQL.Create(booking).Error)
	// Keeps id order aligned with creation order for equal checkouts.
	time.Sleep(2 * time.Millisecond)
	return booking
}

func SetWeekly(
	t *testing.T,
	db database.DB,
	cleanerID uuid.UUID,
	weekday time.Weekday,
	startHour, endHour int,
) {
	t.Helper()

	entry := &models.CleanerAvailability{
		CleanerID: cleanerID,
		Weekday:   int(weekday),
		StartTime: datatypes.NewTime(startHour, 0, 0, 0),
		EndTime:   datatypes.NewTime(endHour, 0, 0, 0),
	}
	require.NoError(t, db.SQL.Create(entry).Error)
}

func AddTimeOff(t *testing.T, db database.DB, cleanerID uuid.UUID, start, end time.Time) *models.CleanerTimeOff {
	t.Helper()

	entry := &models.CleanerTimeOff{
		CleanerID: cleanerID,
		StartDate: Date(start),
		EndDate:   Date(end),
	}
	require.NoError(t, db.SQL.Create(entry).Error)
	return entry
}

func Date(t time.Time) datatypes.Date {
	y, m, d := t.Date()
	return datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}
