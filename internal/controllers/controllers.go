package controllers

import (
	"turnover/internal/database"
	"turnover/internal/repositories"
	"turnover/internal/services"

	bookingController "turnover/internal/controllers/bookings"
	cleanerController "turnover/internal/controllers/cleaners"
	cleaningJobController "turnover/internal/controllers/cleaningJobs"
	dispatchController "turnover/internal/controllers/dispatch"
)

type Controllers struct {
	Dispatch    dispatchController.DispatchControllerInterface
	Booking     bookingController.BookingControllerInterface
	Cleaner     cleanerController.CleanerControllerInterface
	CleaningJob cleaningJobController.CleaningJobControllerInterface
}

func New(
	services services.Service,
	repos repositories.Repository,
	db database.DB,
) Controllers {
	return Controllers{
		Dispatch:    dispatchController.New(services, db),
		Booking:     bookingController.New(repos, services, db),
		Cleaner:     cleanerController.New(repos, services, db),
		CleaningJob: cleaningJobController.New(repos, services, db),
	}
}
