package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/chronocop/chronocop/internal/database/migrations"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DBFileName is the sqlite file created inside the data directory.
const DBFileName = "time_audit.db"

// New opens (or creates) the sqlite database under dataDir and runs
// migrations.
func New(dataDir string) (*gorm.DB, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return open(filepath.Join(dataDir, DBFileName))
}

// NewMemory creates an in-memory database for testing.
func NewMemory() (*gorm.DB, error) {
	return open(":memory:")
}

func open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Single writer; serialize all access through one connection.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if err := db.Exec(p).Error; err != nil {
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	if err := db.AutoMigrate(&TimeEntry{}, &Setting{}, &DailySummary{}, &WeeklySummary{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	if err := migrations.RunMigrations(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}
