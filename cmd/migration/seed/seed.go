package seed

import (
	"context"
	"time"
	"turnover/config"
	. "turnover/internal/models"
	"turnover/internal/services"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Seed loads a small working set: one admin, one host with a property, two
// cleaners with weekly windows and a handful of upcoming bookings. Dev tokens
// for every seeded user are logged.
func Seed(ctx context.Context, db *gorm.DB, config config.Config, log logger.Logger) error {
	log = log.Function("Seed")
	log.Info("Seeding development data")

	users := []*User{
		{FirstName: "Ada", LastName: "Admin", Email: "admin@turnover.local", Role: RoleAdmin, IsActive: true},
		{FirstName: "Hank", LastName: "Host", Email: "host@turnover.local", Role: RoleHost, IsActive: true},
		{FirstName: "Carla", LastName: "Ruiz", Email: "carla@turnover.local", Role: RoleCleaner, IsActive: true},
		{FirstName: "Dev", LastName: "Patel", Email: "dev@turnover.local", Role: RoleCleaner, IsActive: true},
	}

	auth := services.NewAuthService(config.JWTSecret)

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, user := range users {
			if err := tx.Where(User{Email: user.Email}).FirstOrCreate(user).Error; err != nil {
				return log.Err("failed to create user", err, "email", user.Email)
			}
		}
		host, carla, dev := users[1], users[2], users[3]

		property := &Property{
			HostID:              host.ID,
			Name:                "Lakeside Cabin",
			Address:             "14 Shore Road",
			DefaultCleaningType: CleaningTypePostCheckout,
		}
		if err := tx.Where(Property{HostID: host.ID, Name: property.Name}).FirstOrCreate(property).Error; err != nil {
			return log.Err("failed to create property", err)
		}

		if err := seedWeekly(tx, carla, []time.Weekday{
			time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
		}, 8, 17); err != nil {
			return log.Err("failed to seed availability", err, "cleaner", carla.Email)
		}
		if err := seedWeekly(tx, dev, []time.Weekday{
			time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday,
		}, 9, 18); err != nil {
			return log.Err("failed to seed availability", err, "cleaner", dev.Email)
		}

		loc := config.Location()
		today := time.Now().In(loc)
		for offset, cleaningType := range []CleaningType{
			CleaningTypePostCheckout,
			CleaningTypeRoundTrip,
			CleaningTypePostCheckout,
		} {
			day := today.AddDate(0, 0, offset+1)
			checkOut := time.Date(day.Year(), day.Month(), day.Day(), 11, 0, 0, 0, loc).UTC()
			ref := "seed-" + checkOut.Format("2006-01-02")

			booking := &Booking{
				PropertyID:   property.ID,
				CheckIn:      checkOut.Add(-72 * time.Hour),
				CheckOut:     checkOut,
				CleaningType: cleaningType,
				Amount:       decimal.RequireFromString("420.00"),
				ExternalRef:  &ref,
			}
			if err := tx.Where(Booking{PropertyID: property.ID, ExternalRef: &ref}).
				FirstOrCreate(booking).Error; err != nil {
				return log.Err("failed to create booking", err, "externalRef", ref)
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	for _, user := range users {
		token, err := auth.IssueToken(user.ID, user.Role)
		if err != nil {
			return log.Err("failed to issue dev token", err, "email", user.Email)
		}
		log.Info("Seeded user", "email", user.Email, "role", user.Role, "token", token)
	}

	log.Info("Seeding complete")
	return nil
}

func seedWeekly(tx *gorm.DB, cleaner *User, days []time.Weekday, startHour, endHour int) error {
	for _, day := range days {
		window := &CleanerAvailability{
			CleanerID: cleaner.ID,
			Weekday:   int(day),
			StartTime: datatypes.NewTime(startHour, 0, 0, 0),
			EndTime:   datatypes.NewTime(endHour, 0, 0, 0),
		}
		if err := tx.Where(CleanerAvailability{CleanerID: cleaner.ID, Weekday: int(day)}).
			FirstOrCreate(window).Error; err != nil {
			return err
		}
	}
	return nil
}
