package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/pkg/config"
)

// NewPostgresDB opens the run journal database. The journal is an audit
// trail of pipeline runs, not a hot path, so the pool stays small and
// timestamps are normalized to UTC at the connection level.
func NewPostgresDB(cfg *config.Config) (*gorm.DB, error) {
	logMode := gormlogger.Info
	if cfg.Server.Environment == "production" {
		logMode = gormlogger.Error
	}

	db, err := gorm.Open(postgres.Open(cfg.GetDatabaseDSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logMode),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to run journal database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get run journal database handle: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.Database.MaxConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MinConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping run journal database: %w", err)
	}

	log.Println("✅ Run journal database connected")

	return db, nil
}

// AutoMigrate keeps the pipeline_runs schema current in non-production
// environments. Production deployments apply the SQL migrations under
// migrations/ through cmd/migrate instead.
func AutoMigrate(db *gorm.DB) error {
	log.Println("🔄 Migrating pipeline_runs schema...")

	if err := db.AutoMigrate(&entities.PipelineRun{}); err != nil {
		return fmt.Errorf("failed to migrate pipeline_runs: %w", err)
	}

	log.Println("✅ pipeline_runs schema up to date")
	return nil
}

// CloseDB closes the run journal connection.
func CloseDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get run journal database handle: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close run journal database: %w", err)
	}

	log.Println("✅ Run journal database closed")
	return nil
}
