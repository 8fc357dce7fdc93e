package handlers

import (
	"turnover/internal/app"
	bookingController "turnover/internal/controllers/bookings"
	"turnover/internal/handlers/middleware"
	"turnover/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

type BookingHandler struct {
	Handler
	bookingController bookingController.BookingControllerInterface
}

func NewBookingHandler(app app.App, router fiber.Router) *BookingHandler {
	return &BookingHandler{
		bookingController: app.Controllers.Booking,
		Handler: Handler{
			log:        logger.New("handlers").Function("booking"),
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *BookingHandler) Register() {
	bookings := h.router.Group("/bookings", h.middleware.RequireRole(models.RoleHost))

	bookings.Post("", h.createBooking)
	bookings.Post("/sync", h.sync)
	bookings.Post("/:id/paid", h.markPaid)
	bookings.Post("/:id/schedule-cleaning", h.scheduleCleaning)
	bookings.Post("/:id/verify", h.verifyCleaning)
}

func (h *BookingHandler) createBooking(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).Function("createBooking")
	user := middleware.GetUser(c)

	var req bookingController.CreateBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, log, err)
	}

	booking, err := h.bookingController.CreateBooking(c.UserContext(), user, &req)
	if err != nil {
		return respondError(c, log, err, "Failed to create booking")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"booking": booking,
	})
}

func (h *BookingHandler) sync(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).Function("sync")

	result, err := h.bookingController.Sync(c.UserContext(), middleware.GetUser(c))
	if err != nil {
		return respondError(c, log, err, "Failed to sync bookings")
	}

	return c.JSON(result)
}

func (h *BookingHandler) markPaid(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).Function("markPaid")

	bookingID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, log, err, "")
	}

	booking, err := h.bookingController.MarkPaid(c.UserContext(), middleware.GetUser(c), bookingID)
	if err != nil {
		return respondError(c, log, err, "Failed to mark booking paid")
	}

	return c.JSON(fiber.Map{
		"booking": booking,
	})
}

func (h *BookingHandler) scheduleCleaning(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).Function("scheduleCleaning")

	bookingID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, log, err, "")
	}

	var req bookingController.ScheduleCleaningRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badBody(c, log, err)
		}
	}

	booking, err := h.bookingController.ScheduleCleaning(
		c.UserContext(),
		middleware.GetUser(c),
		bookingID,
		&req,
	)
	if err != nil {
		return respondError(c, log, err, "Failed to schedule cleaning")
	}

	return c.JSON(fiber.Map{
		"booking": booking,
	})
}

func (h *BookingHandler) verifyCleaning(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).Function("verifyCleaning")

	bookingID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, log, err, "")
	}

	booking, err := h.bookingController.VerifyCleaning(c.UserContext(), middleware.GetUser(c), bookingID)
	if err != nil {
		return respondError(c, log, err, "Failed to verify cleaning")
	}

	return c.JSON(fiber.Map{
		"booking": booking,
	})
}
