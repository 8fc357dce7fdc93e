package dispatchController

import (
	"context"
	"fmt"
	"turnover/internal/database"
	. "turnover/internal/models"
	"turnover/internal/services"
	"turnover/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DispatchController struct {
	candidates *services.CandidateService
	assignment *services.AssignmentService
	db         database.DB
	log        logger.Logger
}

type AssignRequest struct {
	CleanerID uuid.UUID        `json:"cleanerId"`
	Slot      JobSlot          `json:"slot,omitempty"`
	Payout    *decimal.Decimal `json:"payout,omitempty"`
}

type RunPassResponse struct {
	Created int `json:"created"`
}

type DispatchControllerInterface interface {
	GetCandidates(ctx context.Context, bookingID uuid.UUID) ([]Candidate, error)
	Assign(ctx context.Context, bookingID uuid.UUID, request *AssignRequest) (*CleaningJob, error)
	RunPass(ctx context.Context) (*RunPassResponse, error)
}

func New(services services.Service, db database.DB) DispatchControllerInterface {
	return &DispatchController{
		candidates: services.Candidate,
		assignment: services.Assignment,
		db:         db,
		log:        logger.New("dispatchController"),
	}
}

func (c *DispatchController) GetCandidates(
	ctx context.Context,
	bookingID uuid.UUID,
) ([]Candidate, error) {
	log := c.log.Function("GetCandidates")

	candidates, err := c.candidates.SelectCandidates(ctx, c.db.SQL, bookingID)
	if err != nil {
		return nil, log.Err("failed to select candidates", err, "bookingID", bookingID)
	}

	return candidates, nil
}

func (c *DispatchController) Assign(
	ctx context.Context,
	bookingID uuid.UUID,
	request *AssignRequest,
) (*CleaningJob, error) {
	if request.CleanerID == uuid.Nil {
		return nil, invalidInput("cleanerId is required")
	}
	if request.Slot != "" && !request.Slot.IsValid() {
		return nil, invalidInput("unknown slot " + string(request.Slot))
	}

	return c.assignment.AssignManually(ctx, bookingID, request.CleanerID, request.Slot, request.Payout)
}

func (c *DispatchController) RunPass(ctx context.Context) (*RunPassResponse, error) {
	created, err := c.assignment.TriggerNow(ctx, SyncSourceDispatch)
	if err != nil {
		return nil, err
	}

	return &RunPassResponse{Created: created}, nil
}

func invalidInput(msg string) error {
	return fmt.Errorf("%w: %s", types.ErrInvalidInput, msg)
}
