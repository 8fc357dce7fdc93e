package handlers

import (
	"turnover/internal/app"
	cleanerController "turnover/internal/controllers/cleaners"
	"turnover/internal/handlers/middleware"
	"turnover/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

type CleanerHandler struct {
	Handler
	cleanerController cleanerController.CleanerControllerInterface
}

func NewCleanerHandler(app app.App, router fiber.Router) *CleanerHandler {
	return &CleanerHandler{
		cleanerController: app.Controllers.Cleaner,
		Handler: Handler{
			log:        logger.New("handlers").Function("cleaner"),
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *CleanerHandler) Register() {
	me := h.router.Group("/cleaners/me", h.middleware.RequireRole(models.RoleCleaner))

	me.Get("/availability", h.getAvailability)
	me.Put("/availability", h.replaceAvailability)
	me.Get("/time-off", h.getTimeOff)
	me.Post("/time-off", h.createTimeOff)
	me.Delete("/time-off/:id", h.deleteTimeOff)
}

func (h *CleanerHandler) getAvailability(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).Function("getAvailability")

	windows, err := h.cleanerController.GetAvailability(c.UserContext(), middleware.GetUser(c))
	if err != nil {
		return respondError(c, log, err, "Failed to load availability")
	}

	return c.JSON(fiber.Map{
		"availability": windows,
	})
}

func (h *CleanerHandler) replaceAvailability(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).Function("replaceAvailability")

	var req cleanerController.ReplaceAvailabilityRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, log, err)
	}

	windows, err := h.cleanerController.ReplaceAvailability(c.UserContext(), middleware.GetUser(c), &req)
	if err != nil {
		return respondError(c, log, err, "Failed to replace availability")
	}

	return c.JSON(fiber.Map{
		"availability": windows,
	})
}

func (h *CleanerHandler) getTimeOff(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).Function("getTimeOff")

	entries, err := h.cleanerController.GetTimeOff(c.UserContext(), middleware.GetUser(c))
	if err != nil {
		return respondError(c, log, err, "Failed to load time off")
	}

	return c.JSON(fiber.Map{
		"timeOff": entries,
	})
}

func (h *CleanerHandler) createTimeOff(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).Function("createTimeOff")

	var req cleanerController.CreateTimeOffRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, log, err)
	}

	entry, err := h.cleanerController.CreateTimeOff(c.UserContext(), middleware.GetUser(c), &req)
	if err != nil {
		return respondError(c, log, err, "Failed to create time off")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"timeOff": entry,
	})
}

func (h *CleanerHandler) deleteTimeOff(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).Function("deleteTimeOff")

	timeOffID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, log, err, "")
	}

	if err := h.cleanerController.DeleteTimeOff(c.UserContext(), middleware.GetUser(c), timeOffID); err != nil {
		return respondError(c, log, err, "Failed to delete time off")
	}

	return c.SendStatus(fiber.StatusNoContent)
}
