package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CleanerAvailability is a recurring weekly window. Start and end are wall-clock
// times in the operating timezone.
type CleanerAvailability struct {
	BaseUUIDModel
	CleanerID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_cleaner_availability_weekday" json:"cleanerId"`
	Weekday   int            `gorm:"type:smallint;not null;uniqueIndex:idx_cleaner_availability_weekday" json:"weekday"`
	StartTime datatypes.Time `gorm:"not null"                                                     json:"startTime"`
	EndTime   datatypes.Time `gorm:"not null"                                                     json:"endTime"`
}

func (a *CleanerAvailability) BeforeCreate(tx *gorm.DB) error {
	if a.CleanerID == uuid.Nil || a.Weekday < 0 || a.Weekday > 6 {
		return gorm.ErrInvalidValue
	}
	if a.EndTime < a.StartTime {
		return gorm.ErrInvalidValue
	}
	return a.BaseUUIDModel.BeforeCreate(tx)
}

// Covers reports whether the wall-clock minute falls inside the window,
// both ends inclusive.
func (a CleanerAvailability) Covers(minuteOfDay int) bool {
	return minuteOf(a.StartTime) <= minuteOfDay && minuteOfDay <= minuteOf(a.EndTime)
}

func minuteOf(t datatypes.Time) int {
	return int(time.Duration(t) / time.Minute)
}
