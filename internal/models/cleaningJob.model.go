package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type JobStatus string

const (
	JobStatusUnassigned JobStatus = "unassigned"
	JobStatusAssigned   JobStatus = "assigned"
	JobStatusAccepted   JobStatus = "accepted"
	JobStatusInProgress JobStatus = "in-progress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusCancelled  JobStatus = "cancelled"
)

var jobStatusOrder = map[JobStatus]int{
	JobStatusUnassigned: 0,
	JobStatusAssigned:   1,
	JobStatusAccepted:   2,
	JobStatusInProgress: 3,
	JobStatusCompleted:  4,
}

// CanTransitionTo allows exactly one step forward. Cancellation sits outside
// the lifecycle and is never reached through it.
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	from, ok := jobStatusOrder[s]
	if !ok {
		return false
	}
	to, ok := jobStatusOrder[next]
	if !ok {
		return false
	}
	return to == from+1
}

// CanReassign reports whether a dispatcher may hand the job to another cleaner.
func (s JobStatus) CanReassign() bool {
	switch s {
	case JobStatusUnassigned, JobStatusAssigned, JobStatusAccepted:
		return true
	}
	return false
}

func (s JobStatus) IsActive() bool {
	return s != JobStatusCancelled
}

type JobSlot string

const (
	JobSlotPostCheckout JobSlot = "post_checkout"
	JobSlotPreCheckout  JobSlot = "pre_checkout"
)

func (s JobSlot) IsValid() bool {
	return s == JobSlotPostCheckout || s == JobSlotPreCheckout
}

// CleaningJob rows are never deleted. At most one non-cancelled job exists per
// (booking, slot); the partial unique index idx_cleaning_jobs_active_slot
// enforces it.
type CleaningJob struct {
	BaseUUIDModel
	BookingID   uuid.UUID       `gorm:"type:uuid;not null;index"                json:"bookingId"`
	Slot        JobSlot         `gorm:"type:text;not null"                      json:"slot"`
	CleanerID   *uuid.UUID      `gorm:"type:uuid;index"                         json:"cleanerId,omitempty"`
	Status      JobStatus       `gorm:"type:text;not null;default:'unassigned'" json:"status"`
	Payout      decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"   json:"payout"`
	ScheduledAt time.Time       `gorm:"type:timestamp;not null;index"           json:"scheduledAt"`
	Notes       *string         `gorm:"type:text"                               json:"notes,omitempty"`
	AcceptedAt  *time.Time      `gorm:"type:timestamp"                          json:"acceptedAt,omitempty"`
	StartedAt   *time.Time      `gorm:"type:timestamp"                          json:"startedAt,omitempty"`
	CompletedAt *time.Time      `gorm:"type:timestamp"                          json:"completedAt,omitempty"`

	Booking *Booking `gorm:"foreignKey:BookingID" json:"booking,omitempty"`
	Cleaner *User    `gorm:"foreignKey:CleanerID" json:"cleaner,omitempty"`
}

func (j *CleaningJob) BeforeCreate(tx *gorm.DB) error {
	if j.BookingID == uuid.Nil || !j.Slot.IsValid() || j.ScheduledAt.IsZero() {
		return gorm.ErrInvalidValue
	}
	if j.Status == "" {
		j.Status = JobStatusUnassigned
	}
	if j.Status == JobStatusAssigned && j.CleanerID == nil {
		return gorm.ErrInvalidValue
	}
	if j.Payout.IsNegative() {
		return gorm.ErrInvalidValue
	}
	return j.BaseUUIDModel.BeforeCreate(tx)
}
