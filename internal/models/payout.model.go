package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PayoutStatus string

const (
	PayoutStatusPending PayoutStatus = "pending"
	PayoutStatusPaid    PayoutStatus = "paid"
)

type Payout struct {
	BaseUUIDModel
	JobID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"        json:"jobId"`
	CleanerID uuid.UUID       `gorm:"type:uuid;not null;index"              json:"cleanerId"`
	Amount    decimal.Decimal `gorm:"type:decimal(10,2);not null"           json:"amount"`
	Status    PayoutStatus    `gorm:"type:text;not null;default:'pending'"  json:"status"`
}

func (p *Payout) BeforeCreate(tx *gorm.DB) error {
	if p.JobID == uuid.Nil || p.CleanerID == uuid.Nil || p.Amount.IsNegative() {
		return gorm.ErrInvalidValue
	}
	if p.Status == "" {
		p.Status = PayoutStatusPending
	}
	return p.BaseUUIDModel.BeforeCreate(tx)
}
