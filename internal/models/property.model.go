package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Property struct {
	BaseUUIDModel
	HostID              uuid.UUID    `gorm:"type:uuid;not null;index" json:"hostId"`
	Name                string       `gorm:"type:text;not null"       json:"name"`
	Address             string       `gorm:"type:text"                json:"address"`
	DefaultCleaningType CleaningType `gorm:"type:text;not null"       json:"defaultCleaningType"`

	Host *User `gorm:"foreignKey:HostID" json:"host,omitempty"`
}

func (p *Property) BeforeCreate(tx *gorm.DB) error {
	if p.HostID == uuid.Nil || p.Name == "" {
		return gorm.ErrInvalidValue
	}
	if p.DefaultCleaningType == "" {
		p.DefaultCleaningType = CleaningTypePostCheckout
	}
	if !p.DefaultCleaningType.IsValid() {
		return gorm.ErrInvalidValue
	}
	return p.BaseUUIDModel.BeforeCreate(tx)
}
