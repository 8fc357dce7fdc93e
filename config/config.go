package config

import (
	"time"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	GeneralVersion           string `mapstructure:"GENERAL_VERSION"`
	Environment              string `mapstructure:"ENVIRONMENT"`
	ServerPort               int    `mapstructure:"SERVER_PORT"`
	DatabaseHost             string `mapstructure:"DB_HOST"`
	DatabasePort             int    `mapstructure:"DB_PORT"`
	DatabaseName             string `mapstructure:"DB_NAME"`
	DatabaseUser             string `mapstructure:"DB_USER"`
	DatabasePassword         string `mapstructure:"DB_PASSWORD"`
	DatabaseCacheAddress     string `mapstructure:"DB_CACHE_ADDRESS"`
	DatabaseCachePort        int    `mapstructure:"DB_CACHE_PORT"`
	CorsAllowOrigins         string `mapstructure:"CORS_ALLOW_ORIGINS"`
	JWTSecret                string `mapstructure:"JWT_SECRET"`
	SchedulerEnabled         bool   `mapstructure:"SCHEDULER_ENABLED"`
	SchedulerIntervalMinutes int    `mapstructure:"SCHEDULER_INTERVAL_MINUTES"`
	OperatingTimezone        string `mapstructure:"OPERATING_TIMEZONE"`
	DefaultPayout            string `mapstructure:"DEFAULT_PAYOUT"`
	PreCheckoutOffsetMinutes int    `mapstructure:"PRE_CHECKOUT_OFFSET_MINUTES"`
	NotificationQueueSize    int    `mapstructure:"NOTIFICATION_QUEUE_SIZE"`
	NotificationWorkers      int    `mapstructure:"NOTIFICATION_WORKERS"`
}

var ConfigInstance Config

var envVars = []string{
	"GENERAL_VERSION", "ENVIRONMENT", "SERVER_PORT",
	"DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD",
	"DB_CACHE_ADDRESS", "DB_CACHE_PORT",
	"CORS_ALLOW_ORIGINS", "JWT_SECRET",
	"SCHEDULER_ENABLED", "SCHEDULER_INTERVAL_MINUTES", "OPERATING_TIMEZONE",
	"DEFAULT_PAYOUT", "PRE_CHECKOUT_OFFSET_MINUTES",
	"NOTIFICATION_QUEUE_SIZE", "NOTIFICATION_WORKERS",
}

func New() (Config, error) {
	log := logger.New("config").Function("New")
	log.Info("Initializing config")

	viper.AutomaticEnv()
	setDefaults()

	for _, env := range envVars {
		if err := viper.BindEnv(env); err != nil {
			log.Warn("Failed to bind environment variable", "env", env, "error", err)
		}
	}

	envVarsSet := viper.IsSet("SERVER_PORT") && viper.IsSet("DB_HOST")

	if envVarsSet {
		log.Info("Environment variables detected, skipping file loading")
	} else {
		log.Info("Environment variables not found, attempting to load from files")

		viper.SetConfigFile(".env")
		viper.SetConfigType("env")

		if err := viper.ReadInConfig(); err != nil {
			log.Warn("Could not find .env file", "error", err)
		} else {
			log.Info("Loaded .env file")
		}

		viper.SetConfigFile(".env.local")
		if err := viper.MergeInConfig(); err != nil {
			log.Debug("No .env.local file found", "error", err)
		} else {
			log.Info("Loaded .env.local overrides")
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return Config{}, log.Err("Fatal error: could not unmarshal config", err)
	}

	if err := validateConfig(config, log); err != nil {
		return Config{}, err
	}

	ConfigInstance = config
	log.Info(
		"Successfully initialized config",
		"environment", config.Environment,
		"port", config.ServerPort,
		"schedulerEnabled", config.SchedulerEnabled,
		"timezone", config.OperatingTimezone,
	)

	return config, nil
}

func GetConfig() Config {
	return ConfigInstance
}

func setDefaults() {
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("SCHEDULER_ENABLED", true)
	viper.SetDefault("SCHEDULER_INTERVAL_MINUTES", 5)
	viper.SetDefault("OPERATING_TIMEZONE", "UTC")
	viper.SetDefault("DEFAULT_PAYOUT", "45.00")
	viper.SetDefault("PRE_CHECKOUT_OFFSET_MINUTES", 120)
	viper.SetDefault("NOTIFICATION_QUEUE_SIZE", 256)
	viper.SetDefault("NOTIFICATION_WORKERS", 2)
}

// Location resolves the operating timezone. Availability windows are stored as
// wall-clock times in this zone.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.OperatingTimezone)
	if err != nil || c.OperatingTimezone == "" {
		return time.UTC
	}
	return loc
}

func (c Config) SchedulerInterval() time.Duration {
	return time.Duration(c.SchedulerIntervalMinutes) * time.Minute
}

func (c Config) PreCheckoutOffset() time.Duration {
	return time.Duration(c.PreCheckoutOffsetMinutes) * time.Minute
}

func (c Config) DefaultPayoutAmount() decimal.Decimal {
	amount, err := decimal.NewFromString(c.DefaultPayout)
	if err != nil {
		return decimal.Zero
	}
	return amount
}

func validateConfig(config Config, log logger.Logger) error {
	if config.ServerPort <= 0 {
		return log.Error(
			"Fatal error: invalid server port",
			"port", config.ServerPort,
		)
	}

	if config.JWTSecret == "" {
		return log.ErrMsg("Fatal error: JWT_SECRET is required")
	}

	if config.SchedulerIntervalMinutes <= 0 {
		return log.Error(
			"Fatal error: scheduler interval must be positive",
			"minutes", config.SchedulerIntervalMinutes,
		)
	}

	if _, err := time.LoadLocation(config.OperatingTimezone); err != nil {
		return log.Err("Fatal error: invalid operating timezone", err,
			"timezone", config.OperatingTimezone)
	}

	payout, err := decimal.NewFromString(config.DefaultPayout)
	if err != nil {
		return log.Err("Fatal error: invalid default payout", err, "payout", config.DefaultPayout)
	}
	if payout.IsNegative() {
		return log.Error("Fatal error: default payout cannot be negative", "payout", config.DefaultPayout)
	}

	if config.PreCheckoutOffsetMinutes < 0 {
		return log.Error(
			"Fatal error: pre-checkout offset cannot be negative",
			"minutes", config.PreCheckoutOffsetMinutes,
		)
	}

	if config.NotificationQueueSize <= 0 || config.NotificationWorkers <= 0 {
		return log.Error(
			"Fatal error: notification queue size and workers must be positive",
			"queueSize", config.NotificationQueueSize,
			"workers", config.NotificationWorkers,
		)
	}

	return nil
}
