package services

import (
	"turnover/config"
	"turnover/internal/database"
	"turnover/internal/events"
	"turnover/internal/repositories"
)

type Service struct {
	Transaction  *TransactionService
	Scheduler    *SchedulerService
	Availability *AvailabilityService
	Candidate    *CandidateService
	Assignment   *AssignmentService
	Notification *NotificationService
	Auth         *AuthService
}

func New(
	db database.DB,
	repos repositories.Repository,
	config config.Config,
	eventBus *events.EventBus,
) Service {
	location := config.Location()

	transactionService := NewTransactionService(db)
	schedulerService := NewSchedulerService(config.SchedulerInterval())
	availabilityService := NewAvailabilityService(repos.Availability, repos.TimeOff, location)
	candidateService := NewCandidateService(
		repos,
		availabilityService,
		location,
		config.PreCheckoutOffset(),
	)
	notificationService := NewNotificationService(
		db.SQL,
		repos.CleaningJob,
		eventBus,
		config.NotificationQueueSize,
		config.NotificationWorkers,
	)
	assignmentService := NewAssignmentService(
		db,
		transactionService,
		repos,
		candidateService,
		notificationService,
		config.DefaultPayoutAmount(),
	)

	return Service{
		Transaction:  transactionService,
		Scheduler:    schedulerService,
		Availability: availabilityService,
		Candidate:    candidateService,
		Assignment:   assignmentService,
		Notification: notificationService,
		Auth:         NewAuthService(config.JWTSecret),
	}
}
