package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCheckedIn BookingStatus = "checked-in"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

type CleaningStatus string

const (
	CleaningStatusPending    CleaningStatus = "pending"
	CleaningStatusScheduled  CleaningStatus = "scheduled"
	CleaningStatusInProgress CleaningStatus = "in-progress"
	CleaningStatusCompleted  CleaningStatus = "completed"
	CleaningStatusVerified   CleaningStatus = "verified"
)

var cleaningStatusOrder = map[CleaningStatus]int{
	CleaningStatusPending:    0,
	CleaningStatusScheduled:  1,
	CleaningStatusInProgress: 2,
	CleaningStatusCompleted:  3,
	CleaningStatusVerified:   4,
}

// CanTransitionTo allows exactly one step forward.
func (s CleaningStatus) CanTransitionTo(next CleaningStatus) bool {
	from, ok := cleaningStatusOrder[s]
	if !ok {
		return false
	}
	to, ok := cleaningStatusOrder[next]
	if !ok {
		return false
	}
	return to == from+1
}

type CleaningType string

const (
	CleaningTypePostCheckout CleaningType = "post_checkout"
	CleaningTypePreCheckout  CleaningType = "pre_checkout"
	CleaningTypeRoundTrip    CleaningType = "round_trip"
)

func (c CleaningType) IsValid() bool {
	switch c {
	case CleaningTypePostCheckout, CleaningTypePreCheckout, CleaningTypeRoundTrip:
		return true
	}
	return false
}

// Slots lists the job slots a cleaning type requires, primary slot first.
func (c CleaningType) Slots() []JobSlot {
	switch c {
	case CleaningTypePreCheckout:
		return []JobSlot{JobSlotPreCheckout}
	case CleaningTypeRoundTrip:
		return []JobSlot{JobSlotPostCheckout, JobSlotPreCheckout}
	default:
		return []JobSlot{JobSlotPostCheckout}
	}
}

type Booking struct {
	BaseUUIDModel
	PropertyID     uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_bookings_property_external_ref" json:"propertyId"`
	CheckIn        time.Time       `gorm:"type:timestamp;not null"                                                 json:"checkIn"`
	CheckOut       time.Time       `gorm:"type:timestamp;not null;index"                                           json:"checkOut"`
	Status         BookingStatus   `gorm:"type:text;not null;default:'confirmed';index:idx_bookings_status"        json:"status"`
	CleaningStatus CleaningStatus  `gorm:"type:text;not null;default:'pending';index:idx_bookings_status"          json:"cleaningStatus"`
	CleaningType   CleaningType    `gorm:"type:text;not null"                                                      json:"cleaningType"`
	Amount         decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"                                   json:"amount"`
	PaidAt         *time.Time      `gorm:"type:timestamp"                                                          json:"paidAt,omitempty"`
	ExternalRef    *string         `gorm:"type:text;uniqueIndex:idx_bookings_property_external_ref"                json:"externalRef,omitempty"`

	Property *Property `gorm:"foreignKey:PropertyID" json:"property,omitempty"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.PropertyID == uuid.Nil || b.CheckIn.IsZero() || b.CheckOut.IsZero() {
		return gorm.ErrInvalidValue
	}
	if b.CheckOut.Before(b.CheckIn) {
		return gorm.ErrInvalidValue
	}
	b.CheckIn = b.CheckIn.UTC()
	b.CheckOut = b.CheckOut.UTC()
	if b.Status == "" {
		b.Status = BookingStatusConfirmed
	}
	if b.CleaningStatus == "" {
		b.CleaningStatus = CleaningStatusPending
	}
	if b.CleaningType == "" {
		b.CleaningType = CleaningTypePostCheckout
	}
	if !b.CleaningType.IsValid() {
		return gorm.ErrInvalidValue
	}
	return b.BaseUUIDModel.BeforeCreate(tx)
}

// SlotTime is the instant a slot's cleaning is due.
func (b *Booking) SlotTime(slot JobSlot, preCheckoutOffset time.Duration) time.Time {
	if slot == JobSlotPreCheckout {
		return b.CheckOut.Add(-preCheckoutOffset)
	}
	return b.CheckOut
}
