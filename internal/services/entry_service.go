package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/chronocop/chronocop/internal/apperrors"
	"github.com/chronocop/chronocop/internal/database"
	"github.com/chronocop/chronocop/internal/domain"
	"github.com/chronocop/chronocop/internal/timeslot"
	"gorm.io/gorm"
)

// EntryService owns the time-entry collection and enforces the
// one-entry-per-slot invariant.
type EntryService struct {
	db *gorm.DB
}

func NewEntryService(db *gorm.DB) *EntryService {
	return &EntryService{db: db}
}

// ListRange returns entries with startDate <= date <= endDate, ordered by
// (date, start_time) ascending.
func (s *EntryService) ListRange(ctx context.Context, startDate, endDate string) ([]database.TimeEntry, error) {
	var entries []database.TimeEntry
	if err := s.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", startDate, endDate).
		Order("date, start_time").
		Find(&entries).Error; err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	return entries, nil
}

// validateEntryInput applies the checks in a fixed order so error
// reporting is deterministic: required fields, slot boundary, type enum,
// energy enum, activity length, date parse.
func validateEntryInput(date, startTime, activity string, activityType domain.ActivityType, energy domain.EnergyImpact) error {
	required := []struct {
		name, value string
	}{
		{"date", date},
		{"start_time", startTime},
		{"activity", activity},
		{"type", string(activityType)},
		{"energy_impact", string(energy)},
	}
	for _, f := range required {
		if f.value == "" {
			return apperrors.NewValidationError(fmt.Sprintf("Missing required field: %s", f.name))
		}
	}

	if !timeslot.IsValidSlotBoundary(startTime) {
		return apperrors.NewValidationError("Start time must be on 30-minute boundaries (:00 or :30)")
	}

	if !activityType.Valid() {
		return apperrors.NewValidationError(
			fmt.Sprintf("Invalid type %q: must be %s or %s", activityType, domain.TypePlanned, domain.TypeReactive))
	}

	if !energy.Valid() {
		return apperrors.NewValidationError(
			fmt.Sprintf("Invalid energy_impact %q: must be %s, %s or %s",
				energy, domain.EnergyEnergised, domain.EnergyNeutral, domain.EnergyDrained))
	}

	if len(activity) > domain.MaxActivityLength {
		return apperrors.NewValidationError(
			fmt.Sprintf("Activity description must be %d characters or less", domain.MaxActivityLength))
	}

	if _, err := timeslot.ParseDate(date); err != nil {
		return apperrors.NewValidationError("Invalid date format. Use YYYY-MM-DD")
	}

	return nil
}

// Create validates the request, derives the end time and persists a new
// entry. An occupied slot yields a conflict error and no mutation.
func (s *EntryService) Create(ctx context.Context, date, startTime, activity string, activityType domain.ActivityType, energy domain.EnergyImpact) (*database.TimeEntry, error) {
	if err := validateEntryInput(date, startTime, activity, activityType, energy); err != nil {
		return nil, err
	}

	// Slot times are matched and ordered as strings, so "9:00" and
	// "09:00" must collapse to one stored form.
	startTime, err := timeslot.CanonicalTime(startTime)
	if err != nil {
		return nil, apperrors.NewValidationError("Invalid time format. Use HH:MM")
	}
	endTime, err := timeslot.DeriveEndTime(startTime)
	if err != nil {
		return nil, apperrors.NewValidationError("Invalid time format. Use HH:MM")
	}

	entry := &database.TimeEntry{
		Date:         date,
		StartTime:    startTime,
		EndTime:      endTime,
		Activity:     activity,
		Type:         activityType,
		EnergyImpact: energy,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&database.TimeEntry{}).
			Where("date = ? AND start_time = ?", date, startTime).
			Count(&count).Error; err != nil {
			return apperrors.NewPersistenceError(err)
		}
		if count > 0 {
			return apperrors.NewConflictError("Time slot already occupied")
		}
		if err := tx.Create(entry).Error; err != nil {
			return apperrors.NewPersistenceError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Update replaces all mutable fields of an existing entry atomically. The
// conflict check excludes the entry's own id so moving an entry onto its
// current slot succeeds.
func (s *EntryService) Update(ctx context.Context, id uint, date, startTime, activity string, activityType domain.ActivityType, energy domain.EnergyImpact) (*database.TimeEntry, error) {
	var entry database.TimeEntry
	if err := s.db.WithContext(ctx).First(&entry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("Entry %d not found", id))
		}
		return nil, apperrors.NewPersistenceError(err)
	}

	if err := validateEntryInput(date, startTime, activity, activityType, energy); err != nil {
		return nil, err
	}

	startTime, err := timeslot.CanonicalTime(startTime)
	if err != nil {
		return nil, apperrors.NewValidationError("Invalid time format. Use HH:MM")
	}
	endTime, err := timeslot.DeriveEndTime(startTime)
	if err != nil {
		return nil, apperrors.NewValidationError("Invalid time format. Use HH:MM")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&database.TimeEntry{}).
			Where("date = ? AND start_time = ? AND id <> ?", date, startTime, id).
			Count(&count).Error; err != nil {
			return apperrors.NewPersistenceError(err)
		}
		if count > 0 {
			return apperrors.NewConflictError("Time slot already occupied")
		}

		entry.Date = date
		entry.StartTime = startTime
		entry.EndTime = endTime
		entry.Activity = activity
		entry.Type = activityType
		entry.EnergyImpact = energy

		if err := tx.Save(&entry).Error; err != nil {
			return apperrors.NewPersistenceError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Delete removes an entry by id.
func (s *EntryService) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&database.TimeEntry{}, id)
	if res.Error != nil {
		return apperrors.NewPersistenceError(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("Entry %d not found", id))
	}
	return nil
}
