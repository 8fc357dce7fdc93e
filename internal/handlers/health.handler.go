package handlers

import (
	"time"
	"turnover/internal/app"

	"github.com/gofiber/fiber/v2"
)

func HealthHandler(router fiber.Router, app *app.App) {
	router.Get("/health", func(c *fiber.Ctx) error {
		response := fiber.Map{
			"status":  "ok",
			"version": app.Config.GeneralVersion,
			"service": "turnover_api",
		}

		if scheduler := app.Services.Scheduler; scheduler != nil {
			status := fiber.Map{
				"running": scheduler.IsRunning(),
				"jobs":    scheduler.GetJobCount(),
			}
			if next := scheduler.GetNextRunTime(); next != nil {
				status["nextRun"] = next.UTC().Format(time.RFC3339)
			}
			response["scheduler"] = status
		}

		return c.JSON(response)
	})
}
