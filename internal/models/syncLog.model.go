package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SyncLogStatus string

const (
	SyncLogInfo    SyncLogStatus = "info"
	SyncLogWarning SyncLogStatus = "warning"
	SyncLogError   SyncLogStatus = "error"
)

const (
	SyncSourceScheduler = "scheduler"
	SyncSourceDispatch  = "dispatch"
	SyncSourceHost      = "host_sync"
	SyncSourceCLI       = "cli"
)

// SyncLog records operator-visible outcomes of assignment passes.
type SyncLog struct {
	BaseUUIDModel
	Source    string         `gorm:"type:text;not null;index" json:"source"`
	Status    SyncLogStatus  `gorm:"type:text;not null;index" json:"status"`
	Message   string         `gorm:"type:text;not null"       json:"message"`
	BookingID *uuid.UUID     `gorm:"type:uuid;index"          json:"bookingId,omitempty"`
	Details   datatypes.JSON `json:"details,omitempty"`
}

func (s *SyncLog) BeforeCreate(tx *gorm.DB) error {
	if s.Source == "" || s.Message == "" {
		return gorm.ErrInvalidValue
	}
	if s.Status == "" {
		s.Status = SyncLogInfo
	}
	return s.BaseUUIDModel.BeforeCreate(tx)
}
