package server

import (
	"errors"
	"fmt"
	"time"
	"turnover/internal/app"
	"turnover/internal/handlers"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberLogs "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/helmet/v2"
)

const (
	requestBodyLimit = 1 << 20
	shutdownGrace    = 5 * time.Second
)

type AppServer struct {
	FiberApp *fiber.App
	log      logger.Logger
}

func New(app *app.App) (*AppServer, error) {
	log := logger.New("server").Function("New")
	log.Info("Initializing server", "environment", app.Config.Environment)

	development := app.Config.Environment == "development"

	server := fiber.New(fiber.Config{
		ServerHeader:            fmt.Sprintf("Turnover/%s", app.Config.GeneralVersion),
		AppName:                 "turnover_api",
		BodyLimit:               requestBodyLimit,
		ReadTimeout:             15 * time.Second,
		WriteTimeout:            30 * time.Second,
		IdleTimeout:             2 * time.Minute,
		EnableTrustedProxyCheck: true,
		DisableStartupMessage:   !development,
		EnablePrintRoutes:       development,
		ErrorHandler:            errorHandler,
	})

	server.Use(recover.New(recover.Config{EnableStackTrace: development}))
	server.Use(cors.New(cors.Config{
		AllowOrigins:  app.Config.CorsAllowOrigins,
		AllowMethods:  "GET, POST, PUT, DELETE, OPTIONS",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, X-Trace-ID",
		ExposeHeaders: "X-Trace-ID",
		MaxAge:        300,
	}))
	server.Use(fiberLogs.New(fiberLogs.Config{
		Format: "${time} ${status} ${method} ${path} ${latency} trace=${respHeader:X-Trace-ID}\n",
	}))
	server.Use(compress.New())

	// JSON API only, nothing is framed or rendered.
	server.Use(helmet.New(helmet.Config{
		XSSProtection:             "0",
		ContentTypeNosniff:        "nosniff",
		XFrameOptions:             "DENY",
		ReferrerPolicy:            "no-referrer",
		CrossOriginOpenerPolicy:   "same-origin",
		CrossOriginResourcePolicy: "same-origin",
		XDNSPrefetchControl:       "off",
		XPermittedCrossDomain:     "none",
		ContentSecurityPolicy:     "default-src 'none'; frame-ancestors 'none'",
	}))

	if err := handlers.Router(server, app); err != nil {
		return &AppServer{}, log.Err("failed to initialize handlers", err)
	}

	return &AppServer{FiberApp: server, log: logger.New("server")}, nil
}

func (s *AppServer) Listen(port int) error {
	log := s.log.Function("Listen")

	if port <= 0 {
		return log.Error("Fatal error: invalid port", "port", port)
	}

	log.Info("Starting server", "port", port)
	return s.FiberApp.Listen(fmt.Sprintf(":%d", port))
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *AppServer) Shutdown() error {
	return s.FiberApp.ShutdownWithTimeout(shutdownGrace)
}

// errorHandler answers anything a handler did not render itself, such as
// unknown routes and recovered panics, with the API's JSON error shape.
func errorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "Internal server error"

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		status = fiberErr.Code
		message = fiberErr.Message
	}

	if status >= fiber.StatusInternalServerError {
		logger.New("server").TraceFromContext(c.UserContext()).Function("errorHandler").
			Er("unhandled request error", err, "path", c.Path())
	}

	return c.Status(status).JSON(fiber.Map{"error": message})
}
