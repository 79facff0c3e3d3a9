package database

import (
	"time"

	"github.com/chronocop/chronocop/internal/domain"
)

// TimeEntry is a single 30-minute activity block. The composite unique
// index is the slot invariant: one entry per (date, start_time).
type TimeEntry struct {
	ID           uint                `gorm:"primaryKey;autoIncrement" json:"id"`
	Date         string              `gorm:"size:10;not null;index;uniqueIndex:uniq_date_start,priority:1" json:"date"`
	StartTime    string              `gorm:"size:5;not null;uniqueIndex:uniq_date_start,priority:2" json:"start_time"`
	EndTime      string              `gorm:"size:5;not null" json:"end_time"`
	Activity     string              `gorm:"size:200;not null" json:"activity"`
	Type         domain.ActivityType `gorm:"size:10;not null" json:"type"`
	EnergyImpact domain.EnergyImpact `gorm:"size:10;not null" json:"energy_impact"`
	CreatedAt    time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

func (TimeEntry) TableName() string { return "time_entries" }

// Setting is one key/value configuration row.
type Setting struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Key       string    `gorm:"size:100;not null;uniqueIndex" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Setting) TableName() string { return "app_settings" }

// DailySummary caches the most recent generated narrative for one date.
// Regeneration replaces the row outright so token_count and timestamps
// never carry stale values.
type DailySummary struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Date       string    `gorm:"size:10;not null;uniqueIndex" json:"date"`
	Summary    string    `gorm:"type:text;not null" json:"summary"`
	TokenCount *int      `json:"token_count"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (DailySummary) TableName() string { return "daily_summaries" }

// WeeklySummary is the weekly counterpart, keyed by the Monday of its week.
type WeeklySummary struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	WeekStartDate string    `gorm:"size:10;not null;uniqueIndex" json:"week_start_date"`
	Summary       string    `gorm:"type:text;not null" json:"summary"`
	TokenCount    *int      `json:"token_count"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (WeeklySummary) TableName() string { return "weekly_summaries" }
