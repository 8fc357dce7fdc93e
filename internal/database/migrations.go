package database

import (
	"turnover/internal/models"

	logger "github.com/Bparsons0904/goLogger"
)

// MigrateModels runs GORM AutoMigrate for all models
func (db *DB) MigrateModels() error {
	log := logger.New("database").Function("MigrateModels")
	log.Info("Starting database migration")

	modelsToMigrate := []any{
		&models.User{},
		&models.Property{},
		&models.Booking{},
		&models.CleaningJob{},
		&models.CleanerAvailability{},
		&models.CleanerTimeOff{},
		&models.SyncLog{},
		&models.Payout{},
	}

	for _, model := range modelsToMigrate {
		if err := db.SQL.AutoMigrate(model); err != nil {
			return log.Err("Failed to migrate model", err, "model", model)
		}
	}

	log.Info("Database migration completed successfully")
	return db.CreateIndexes()
}

// ActiveJobIndexSQL guarantees at most one live job per booking slot. Both
// PostgreSQL and SQLite accept partial indexes in this form.
const ActiveJobIndexSQL = `CREATE UNIQUE INDEX IF NOT EXISTS idx_cleaning_jobs_active_slot
	ON cleaning_jobs (booking_id, slot) WHERE status <> 'cancelled' AND deleted_at IS NULL`

// CreateIndexes creates indexes that GORM tags cannot express.
func (db *DB) CreateIndexes() error {
	log := logger.New("database").Function("CreateIndexes")

	indexes := []string{
		ActiveJobIndexSQL,
		"CREATE INDEX IF NOT EXISTS idx_cleaning_jobs_cleaner_scheduled ON cleaning_jobs (cleaner_id, scheduled_at)",
	}

	for _, indexSQL := range indexes {
		if err := db.SQL.Exec(indexSQL).Error; err != nil {
			return log.Err("Failed to create index", err, "sql", indexSQL)
		}
	}

	log.Info("Additional database indexes created")
	return nil
}
