package jobs

import (
	"turnover/config"
	"turnover/internal/database"
	"turnover/internal/events"
	"turnover/internal/repositories"
	"turnover/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

const (
	EveryInterval = services.EveryInterval
	Daily         = services.Daily
)

func RegisterAllJobs(
	schedulerService *services.SchedulerService,
	config config.Config,
	db database.DB,
	services services.Service,
	repos repositories.Repository,
	eventBus *events.EventBus,
) error {
	log := logger.New("jobs").Function("RegisterAllJobs")

	if !config.SchedulerEnabled {
		log.Info("Scheduler disabled, skipping job registration")
		return nil
	}

	log.Info("Registering jobs")

	assignmentPassJob := NewAssignmentPassJob(services.Assignment, eventBus, EveryInterval)
	if err := schedulerService.AddJob(assignmentPassJob); err != nil {
		return log.Err("failed to register assignment pass job", err)
	}
	log.Info("Registered assignment pass job", "intervalMinutes", config.SchedulerIntervalMinutes)

	retentionJob := NewSyncLogRetentionJob(db.SQL, repos.SyncLog, Daily)
	if err := schedulerService.AddJob(retentionJob); err != nil {
		return log.Err("failed to register sync log retention job", err)
	}
	log.Info("Registered sync log retention job", "schedule", "daily")

	return nil
}
