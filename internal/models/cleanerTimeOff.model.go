package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CleanerTimeOff blocks whole calendar days, start and end inclusive. Entries
// may overlap.
type CleanerTimeOff struct {
	BaseUUIDModel
	CleanerID uuid.UUID      `gorm:"type:uuid;not null;index" json:"cleanerId"`
	StartDate datatypes.Date `gorm:"not null"                 json:"startDate"`
	EndDate   datatypes.Date `gorm:"not null"                 json:"endDate"`
	Reason    *string        `gorm:"type:text"                json:"reason,omitempty"`
}

func (t *CleanerTimeOff) BeforeCreate(tx *gorm.DB) error {
	if t.CleanerID == uuid.Nil {
		return gorm.ErrInvalidValue
	}
	if dayKey(time.Time(t.EndDate)) < dayKey(time.Time(t.StartDate)) {
		return gorm.ErrInvalidValue
	}
	return t.BaseUUIDModel.BeforeCreate(tx)
}

// CoversDay compares calendar dates only; the clock part of day is ignored.
func (t CleanerTimeOff) CoversDay(day time.Time) bool {
	key := dayKey(day)
	return dayKey(time.Time(t.StartDate)) <= key && key <= dayKey(time.Time(t.EndDate))
}

func dayKey(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}
