package main

import (
	"database/sql"
	"os"
	"path/filepath"
	"turnover/cmd/migration/seed"
	"turnover/config"
	"turnover/internal/app"
	"turnover/internal/database"
	"turnover/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	_ "github.com/lib/pq"
	migrate "github.com/rubenv/sql-migrate"
	"github.com/spf13/cobra"
)

func newUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Create tables and indexes, then apply SQL migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.New("migrations").Function("up")

			config, db, err := open(log)
			if err != nil {
				return err
			}
			defer db.Close()

			return migrateUp(db, config, log)
		},
	}
}

func newDownCmd() *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back SQL migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.New("migrations").Function("down")

			config, db, err := open(log)
			if err != nil {
				return err
			}
			defer db.Close()

			_, err = runMigrations(config, log, migrate.Down, steps)
			return err
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	return cmd
}

func newSeedCmd() *cobra.Command {
	var clean bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load development users, a property and sample bookings",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.New("migrations").Function("seed")

			config, db, err := open(log)
			if err != nil {
				return err
			}
			defer db.Close()

			if clean {
				if err := cleanDatabase(db, log); err != nil {
					return err
				}
			}

			if err := migrateUp(db, config, log); err != nil {
				return err
			}

			return seed.Seed(cmd.Context(), db.SQL, config, log)
		},
	}
	cmd.Flags().BoolVar(&clean, "clean", true, "drop all tables and flush caches first")

	return cmd
}

func newPassCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pass",
		Short: "Run one assignment pass and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.New("migrations").Function("pass")

			config, db, err := open(log)
			if err != nil {
				return err
			}

			config.SchedulerEnabled = false
			built, err := app.Build(config, db)
			if err != nil {
				_ = db.Close()
				return log.Err("failed to build app", err)
			}
			defer func() {
				if err := built.Close(); err != nil {
					log.Er("failed to close app", err)
				}
			}()

			created, err := built.Services.Assignment.TriggerNow(cmd.Context(), models.SyncSourceCLI)
			if err != nil {
				return log.Err("assignment pass failed", err)
			}

			log.Info("Assignment pass complete", "created", created)
			return nil
		},
	}
}

func open(log logger.Logger) (config.Config, database.DB, error) {
	config, err := config.New()
	if err != nil {
		return config, database.DB{}, log.Err("failed to initialize config", err)
	}

	db, err := database.New(config)
	if err != nil {
		return config, database.DB{}, log.Err("failed to create database", err)
	}

	return config, db, nil
}

func migrateUp(db database.DB, config config.Config, log logger.Logger) error {
	log = log.Function("migrateUp")
	log.Info("Running migrations up")

	if err := db.MigrateModels(); err != nil {
		return log.Err("failed to auto migrate", err)
	}

	if _, err := runMigrations(config, log, migrate.Up, 0); err != nil {
		return log.Err("failed to run migrations", err)
	}

	return nil
}

// runMigrations applies the SQL files on top of the GORM schema. max of zero
// means no limit.
func runMigrations(
	config config.Config,
	log logger.Logger,
	direction migrate.MigrationDirection,
	max int,
) (int, error) {
	log = log.Function("runMigrations")

	files, err := filepath.Glob(filepath.Join(MIGRATION_PATH, "*.sql"))
	if err != nil {
		return 0, log.Err("failed to check for migration files", err)
	}

	if len(files) == 0 {
		log.Info("No migration files found, skipping file-based migrations")
		return 0, nil
	}

	sqlDB, err := sql.Open(MIGRATION_DB, database.PostgresDSN(config))
	if err != nil {
		return 0, log.Err("failed to open database for migrations", err)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			log.Er("failed to close database", err)
		}
	}()

	migrations := &migrate.FileMigrationSource{Dir: MIGRATION_PATH}
	n, err := migrate.ExecMax(sqlDB, MIGRATION_DB, migrations, direction, max)
	if err != nil {
		return 0, log.Err("failed to run migrations", err)
	}

	if n == 0 {
		log.Info("No migrations to apply")
	} else {
		log.Info("Applied migrations", "migrationCount", n, "direction", direction)
	}

	return n, nil
}

func cleanDatabase(db database.DB, log logger.Logger) error {
	log = log.Function("cleanDatabase")
	log.Info("Cleaning database before seeding")

	if err := db.SQL.Migrator().DropTable(
		&models.Payout{},
		&models.SyncLog{},
		&models.CleanerTimeOff{},
		&models.CleanerAvailability{},
		&models.CleaningJob{},
		&models.Booking{},
		&models.Property{},
		&models.User{},
		"gorp_migrations",
	); err != nil {
		return log.Err("failed to drop tables", err)
	}

	if err := db.FlushAllCaches(); err != nil {
		return log.Err("failed to flush cache databases", err)
	}

	if _, err := os.Stat(MIGRATION_PATH); os.IsNotExist(err) {
		log.Warn("Migrations directory not found, run from the repository root", "path", MIGRATION_PATH)
	}

	log.Info("Database cleaned successfully")
	return nil
}
