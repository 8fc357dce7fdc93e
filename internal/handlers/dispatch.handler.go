package handlers

import (
	"turnover/internal/app"
	dispatchController "turnover/internal/controllers/dispatch"
	"turnover/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

type DispatchHandler struct {
	Handler
	dispatchController dispatchController.DispatchControllerInterface
}

func NewDispatchHandler(app app.App, router fiber.Router) *DispatchHandler {
	return &DispatchHandler{
		dispatchController: app.Controllers.Dispatch,
		Handler: Handler{
			log:        logger.New("handlers").Function("dispatch"),
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *DispatchHandler) Register() {
	dispatch := h.router.Group("/admin/dispatch", h.middleware.RequireRole(models.RoleAdmin))

	dispatch.Get("/bookings/:id/candidates", h.getCandidates)
	dispatch.Post("/bookings/:id/assign", h.assign)
	dispatch.Post("/run", h.runPass)
}

func (h *DispatchHandler) getCandidates(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).Function("getCandidates")

	bookingID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, log, err, "")
	}

	candidates, err := h.dispatchController.GetCandidates(c.UserContext(), bookingID)
	if err != nil {
		return respondError(c, log, err, "Failed to select candidates")
	}

	return c.JSON(fiber.Map{
		"candidates": candidates,
	})
}

func (h *DispatchHandler) assign(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).Function("assign")

	bookingID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, log, err, "")
	}

	var req dispatchController.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, log, err)
	}

	job, err := h.dispatchController.Assign(c.UserContext(), bookingID, &req)
	if err != nil {
		return respondError(c, log, err, "Failed to assign cleaner")
	}

	return c.JSON(fiber.Map{
		"job": job,
	})
}

func (h *DispatchHandler) runPass(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).Function("runPass")

	result, err := h.dispatchController.RunPass(c.UserContext())
	if err != nil {
		return respondError(c, log, err, "Failed to run assignment pass")
	}

	return c.JSON(result)
}
