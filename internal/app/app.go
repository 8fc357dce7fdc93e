package app

import (
	"context"
	"turnover/config"
	"turnover/internal/controllers"
	"turnover/internal/database"
	"turnover/internal/events"
	"turnover/internal/handlers/middleware"
	"turnover/internal/jobs"
	"turnover/internal/repositories"
	"turnover/internal/services"
	"turnover/internal/websockets"

	logger "github.com/Bparsons0904/goLogger"
)

type App struct {
	Database    database.DB
	Middleware  middleware.Middleware
	Websocket   *websockets.Manager
	EventBus    *events.EventBus
	Config      config.Config
	Repos       repositories.Repository
	Services    services.Service
	Controllers controllers.Controllers
}

func New() (*App, error) {
	log := logger.New("app").Function("New")

	config, err := config.New()
	if err != nil {
		return &App{}, log.Err("failed to initialize config", err)
	}

	db, err := database.New(config)
	if err != nil {
		return &App{}, log.Err("failed to create database", err)
	}

	return Build(config, db)
}

// Build wires every component on top of an open database.
func Build(config config.Config, db database.DB) (*App, error) {
	log := logger.New("app").Function("Build")

	eventBus := events.New(db.Cache.Events)
	repos := repositories.New(db)
	svc := services.New(db, repos, config, eventBus)

	websocket := websockets.New(eventBus, svc.Auth, repos.User, db.SQL)
	middleware := middleware.New(db, config, repos, svc.Auth)

	if err := jobs.RegisterAllJobs(svc.Scheduler, config, db, svc, repos, eventBus); err != nil {
		return &App{}, log.Err("failed to register jobs", err)
	}

	app := &App{
		Database:    db,
		Config:      config,
		Middleware:  middleware,
		Websocket:   websocket,
		EventBus:    eventBus,
		Repos:       repos,
		Services:    svc,
		Controllers: controllers.New(svc, repos, db),
	}

	if err := app.validate(); err != nil {
		return &App{}, log.Err("failed to validate app", err)
	}

	return app, nil
}

func (a *App) validate() error {
	log := logger.New("app").Function("validate")
	if a.Database.SQL == nil {
		return log.ErrMsg("database is nil")
	}

	nilChecks := []any{
		a.Websocket,
		a.EventBus,
		a.Services.Transaction,
		a.Services.Scheduler,
		a.Services.Assignment,
		a.Services.Notification,
		a.Services.Auth,
		a.Controllers.Dispatch,
		a.Controllers.Booking,
		a.Controllers.Cleaner,
		a.Controllers.CleaningJob,
		a.Repos.User,
		a.Repos.Booking,
		a.Repos.CleaningJob,
	}

	for _, check := range nilChecks {
		if check == nil {
			return log.ErrMsg("nil check failed")
		}
	}

	return nil
}

func (a *App) Close() (err error) {
	if a.Services.Scheduler != nil {
		if closeErr := a.Services.Scheduler.Stop(context.Background()); closeErr != nil {
			err = closeErr
		}
	}

	if a.Services.Notification != nil {
		a.Services.Notification.Close()
	}

	if a.Websocket != nil {
		a.Websocket.Close()
	}

	if a.EventBus != nil {
		if closeErr := a.EventBus.Close(); closeErr != nil {
			err = closeErr
		}
	}

	if dbErr := a.Database.Close(); dbErr != nil {
		err = dbErr
	}

	return err
}
