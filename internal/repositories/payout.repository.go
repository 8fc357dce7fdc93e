package repositories

import (
	"context"
	. "turnover/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PayoutRepository interface {
	Create(ctx context.Context, tx *gorm.DB, payout *Payout) error
	GetByJobID(ctx context.Context, tx *gorm.DB, jobID uuid.UUID) (*Payout, error)
}

type payoutRepository struct {
	log logger.Logger
}

func NewPayoutRepository() PayoutRepository {
	return &payoutRepository{log: logger.New("payoutRepository")}
}

func (r *payoutRepository) Create(ctx context.Context, tx *gorm.DB, payout *Payout) error {
	log := r.log.Function("Create")

	if err := tx.WithContext(ctx).Create(payout).Error; err != nil {
		return log.Err("failed to create payout", classify(err, "payout"), "jobID", payout.JobID)
	}

	return nil
}

func (r *payoutRepository) GetByJobID(ctx context.Context, tx *gorm.DB, jobID uuid.UUID) (*Payout, error) {
	log := r.log.Function("GetByJobID")

	var payout Payout
	if err := tx.WithContext(ctx).First(&payout, "job_id = ?", jobID).Error; err != nil {
		return nil, log.Err("failed to get payout", classify(err, "payout"), "jobID", jobID)
	}

	return &payout, nil
}
