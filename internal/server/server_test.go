package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"turnover/config"
	"turnover/internal/app"
	"turnover/internal/testutil"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ServesJSONWithSecurityHeaders(t *testing.T) {
	db := testutil.NewDB(t)
	built, err := app.Build(config.Config{
		ServerPort:               8288,
		Environment:              "test",
		CorsAllowOrigins:         "*",
		JWTSecret:                "server-secret",
		SchedulerIntervalMinutes: 5,
		OperatingTimezone:        "UTC",
		DefaultPayout:            "45.00",
		PreCheckoutOffsetMinutes: 120,
		NotificationQueueSize:    4,
		NotificationWorkers:      1,
	}, db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = built.Close() })

	server, err := New(built)
	require.NoError(t, err)

	resp, err := server.FiberApp.Test(httptest.NewRequest(http.MethodGet, "/api/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))

	resp, err = server.FiberApp.Test(httptest.NewRequest(http.MethodGet, "/nowhere", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body["error"])
}

func TestListen_RejectsInvalidPort(t *testing.T) {
	server := &AppServer{FiberApp: fiber.New(), log: testLogger()}
	assert.Error(t, server.Listen(0))
}

func testLogger() logger.Logger {
	return logger.New("server_test")
}
