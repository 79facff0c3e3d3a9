package database

import (
	"testing"

	"github.com/chronocop/chronocop/internal/database/migrations"
	"github.com/chronocop/chronocop/internal/domain"
)

func TestNewMemoryMigrates(t *testing.T) {
	db, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	for _, table := range []string{"time_entries", "app_settings", "daily_summaries", "weekly_summaries", "schema_migrations"} {
		if !db.Migrator().HasTable(table) {
			t.Errorf("missing table %s", table)
		}
	}

	var records []migrations.MigrationRecord
	if err := db.Find(&records).Error; err != nil {
		t.Fatal(err)
	}
	if len(records) == 0 {
		t.Error("expected registered migrations to be recorded")
	}

	// Re-running is a no-op.
	if err := migrations.RunMigrations(db); err != nil {
		t.Fatalf("second run: %v", err)
	}
	var again []migrations.MigrationRecord
	if err := db.Find(&again).Error; err != nil {
		t.Fatal(err)
	}
	if len(again) != len(records) {
		t.Errorf("migration records grew from %d to %d", len(records), len(again))
	}
}

func TestEnergySpellingNormalization(t *testing.T) {
	db, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	// Simulate a row written by an early frontend build, then replay the
	// registered data migration against it.
	err = db.Exec(`INSERT INTO time_entries (date, start_time, end_time, activity, type, energy_impact, created_at, updated_at)
		VALUES ('2024-01-01', '09:00', '09:30', 'standup', 'planned', 'energized', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`).Error
	if err != nil {
		t.Fatal(err)
	}
	err = db.Where("id = ?", "202501100001_normalize_energy_spelling").
		Delete(&migrations.MigrationRecord{}).Error
	if err != nil {
		t.Fatal(err)
	}
	if err := migrations.RunMigrations(db); err != nil {
		t.Fatal(err)
	}

	var entry TimeEntry
	if err := db.First(&entry).Error; err != nil {
		t.Fatal(err)
	}
	if entry.EnergyImpact != domain.EnergyEnergised {
		t.Errorf("energy = %q, want normalized spelling", entry.EnergyImpact)
	}
}
