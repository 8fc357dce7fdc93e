package config

import (
	"testing"
	"time"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func validConfig() Config {
	return Config{
		ServerPort:               8288,
		JWTSecret:                "secret",
		SchedulerIntervalMinutes: 5,
		OperatingTimezone:        "America/Denver",
		DefaultPayout:            "45.00",
		PreCheckoutOffsetMinutes: 120,
		NotificationQueueSize:    16,
		NotificationWorkers:      1,
	}
}

func TestValidateConfig(t *testing.T) {
	log := logger.New("test")

	testCases := []struct {
		name      string
		mutate    func(c *Config)
		wantError bool
	}{
		{name: "valid config", mutate: func(c *Config) {}},
		{name: "missing port", mutate: func(c *Config) { c.ServerPort = 0 }, wantError: true},
		{name: "missing jwt secret", mutate: func(c *Config) { c.JWTSecret = "" }, wantError: true},
		{name: "zero interval", mutate: func(c *Config) { c.SchedulerIntervalMinutes = 0 }, wantError: true},
		{name: "bad timezone", mutate: func(c *Config) { c.OperatingTimezone = "Mars/Olympus" }, wantError: true},
		{name: "bad payout", mutate: func(c *Config) { c.DefaultPayout = "forty" }, wantError: true},
		{name: "negative payout", mutate: func(c *Config) { c.DefaultPayout = "-1" }, wantError: true},
		{name: "negative offset", mutate: func(c *Config) { c.PreCheckoutOffsetMinutes = -5 }, wantError: true},
		{name: "no workers", mutate: func(c *Config) { c.NotificationWorkers = 0 }, wantError: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			config := validConfig()
			tc.mutate(&config)

			err := validateConfig(config, log)
			if tc.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigDerivedValues(t *testing.T) {
	config := validConfig()

	assert.Equal(t, 5*time.Minute, config.SchedulerInterval())
	assert.Equal(t, 2*time.Hour, config.PreCheckoutOffset())
	assert.True(t, decimal.RequireFromString("45").Equal(config.DefaultPayoutAmount()))
	assert.Equal(t, "America/Denver", config.Location().String())

	config.OperatingTimezone = ""
	assert.Equal(t, time.UTC, config.Location())
}
