package handlers

import (
	"turnover/internal/app"
	"turnover/internal/handlers/middleware"
	"turnover/internal/websockets"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type Handler struct {
	middleware middleware.Middleware
	log        logger.Logger
	router     fiber.Router
}

func Router(router fiber.Router, app *app.App) (err error) {
	router.Use(app.Middleware.TraceID())
	setupWebSocketRoute(router, app)

	api := router.Group("/api")
	HealthHandler(api, app)

	protected := api.Group("", app.Middleware.RequireAuth())
	NewDispatchHandler(*app, protected).Register()
	NewBookingHandler(*app, protected).Register()
	NewCleanerHandler(*app, protected).Register()
	NewJobHandler(*app, protected).Register()

	return nil
}

func setupWebSocketRoute(router fiber.Router, app *app.App) {
	router.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			if token := c.Query("token"); token != "" {
				c.Locals(websockets.TokenLocal, token)
			}
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	router.Get("/ws", websocket.New(func(c *websocket.Conn) {
		app.Websocket.HandleWebSocket(c)
	}))
}
