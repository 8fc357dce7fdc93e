package handlers

import (
	"context"
	"turnover/internal/app"
	cleaningJobController "turnover/internal/controllers/cleaningJobs"
	"turnover/internal/handlers/middleware"
	"turnover/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type JobHandler struct {
	Handler
	jobController cleaningJobController.CleaningJobControllerInterface
}

func NewJobHandler(app app.App, router fiber.Router) *JobHandler {
	return &JobHandler{
		jobController: app.Controllers.CleaningJob,
		Handler: Handler{
			log:        logger.New("handlers").Function("job"),
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *JobHandler) Register() {
	jobs := h.router.Group("/jobs", h.middleware.RequireRole(models.RoleCleaner))

	jobs.Get("", h.getMyJobs)
	jobs.Post("/:id/accept", h.transition("accept", h.jobController.Accept))
	jobs.Post("/:id/start", h.transition("start", h.jobController.Start))
	jobs.Post("/:id/complete", h.complete)
}

func (h *JobHandler) getMyJobs(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).Function("getMyJobs")

	jobs, err := h.jobController.GetMyJobs(c.UserContext(), middleware.GetUser(c))
	if err != nil {
		return respondError(c, log, err, "Failed to load jobs")
	}

	return c.JSON(fiber.Map{
		"jobs": jobs,
	})
}

type jobAction func(ctx context.Context, user *models.User, jobID uuid.UUID) (*models.CleaningJob, error)

func (h *JobHandler) transition(name string, action jobAction) fiber.Handler {
	return func(c *fiber.Ctx) error {
		log := logger.New("handlers").TraceFromContext(c.UserContext()).Function(name)

		jobID, err := parseIDParam(c, "id")
		if err != nil {
			return respondError(c, log, err, "")
		}

		job, err := action(c.UserContext(), middleware.GetUser(c), jobID)
		if err != nil {
			return respondError(c, log, err, "Failed to "+name+" job")
		}

		return c.JSON(fiber.Map{
			"job": job,
		})
	}
}

func (h *JobHandler) complete(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).Function("complete")

	jobID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, log, err, "")
	}

	var req cleaningJobController.CompleteJobRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badBody(c, log, err)
		}
	}

	job, err := h.jobController.Complete(c.UserContext(), middleware.GetUser(c), jobID, &req)
	if err != nil {
		return respondError(c, log, err, "Failed to complete job")
	}

	return c.JSON(fiber.Map{
		"job": job,
	})
}
