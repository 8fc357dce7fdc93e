package jobs

import (
	"context"
	"time"
	"turnover/internal/events"
	"turnover/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

// PassRunner runs one assignment pass and reports the jobs it created.
type PassRunner interface {
	RunAssignmentPass(ctx context.Context) (int, error)
}

type AssignmentPassJob struct {
	engine    PassRunner
	publisher services.Publisher
	log       logger.Logger
	schedule  services.Schedule
}

func NewAssignmentPassJob(
	engine PassRunner,
	publisher services.Publisher,
	schedule services.Schedule,
) *AssignmentPassJob {
	log := logger.New("assignmentPassJob")
	log.Info("Creating new assignment pass job", "schedule", schedule)

	return &AssignmentPassJob{
		engine:    engine,
		publisher: publisher,
		log:       log,
		schedule:  schedule,
	}
}

func (j *AssignmentPassJob) Name() string {
	return "AssignmentPass"
}

func (j *AssignmentPassJob) Execute(ctx context.Context) error {
	log := j.log.Function("Execute")

	started := time.Now()
	created, err := j.engine.RunAssignmentPass(ctx)
	if err != nil {
		return log.Err("assignment pass failed", err)
	}

	if created == 0 {
		log.Debug("assignment pass created no jobs")
		return nil
	}

	event := events.Event{
		Type: events.PASS_COMPLETED,
		Data: map[string]any{
			"created":    created,
			"durationMs": time.Since(started).Milliseconds(),
		},
	}
	if err := j.publisher.Publish(events.BROADCAST_CHANNEL, event); err != nil {
		log.Warn("failed to broadcast pass result", "error", err)
	}

	log.Info("assignment pass completed", "created", created)
	return nil
}

func (j *AssignmentPassJob) Schedule() services.Schedule {
	return j.schedule
}
