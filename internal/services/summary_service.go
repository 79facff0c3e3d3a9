package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chronocop/chronocop/internal/apperrors"
	"github.com/chronocop/chronocop/internal/database"
	"github.com/chronocop/chronocop/internal/logger"
	"github.com/chronocop/chronocop/internal/timeslot"
	"gorm.io/gorm"
)

// SettingNarrativeAPIKey is the settings key holding the collaborator
// credential.
const SettingNarrativeAPIKey = "narrative_api_key"

// Network budgets for a generation round trip. No locks are held on the
// store while the call is in flight.
const (
	dailyTimeout  = 30 * time.Second
	weeklyTimeout = 45 * time.Second
)

// NarrativeGenerator is the slice of NarrativeService that summary
// generation depends on.
type NarrativeGenerator interface {
	Generate(ctx context.Context, apiKey, prompt string, maxTokens int) (string, int, error)
}

// SummaryService caches generated narratives, one row per day and one per
// Monday-anchored week, regenerating by transactional replace.
type SummaryService struct {
	db        *gorm.DB
	entries   *EntryService
	settings  *SettingsService
	narrative NarrativeGenerator

	mu       sync.Mutex
	inflight map[string]*sync.Mutex
}

func NewSummaryService(db *gorm.DB, entries *EntryService, settings *SettingsService, narrative NarrativeGenerator) *SummaryService {
	return &SummaryService{
		db:        db,
		entries:   entries,
		settings:  settings,
		narrative: narrative,
		inflight:  make(map[string]*sync.Mutex),
	}
}

// lockKey serializes generation per summary key so concurrent requests
// for the same date cannot duplicate network calls or race the replace.
func (s *SummaryService) lockKey(key string) func() {
	s.mu.Lock()
	m, ok := s.inflight[key]
	if !ok {
		m = &sync.Mutex{}
		s.inflight[key] = m
	}
	s.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// GetDaily returns the cached summary for date, if any.
func (s *SummaryService) GetDaily(ctx context.Context, date string) (*database.DailySummary, error) {
	var summary database.DailySummary
	err := s.db.WithContext(ctx).Where("date = ?", date).First(&summary).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("No summary for %s", date))
	}
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	return &summary, nil
}

// GetWeekly returns the cached summary for the given week start. The
// caller must already have normalized weekStart to a Monday.
func (s *SummaryService) GetWeekly(ctx context.Context, weekStart string) (*database.WeeklySummary, error) {
	var summary database.WeeklySummary
	err := s.db.WithContext(ctx).Where("week_start_date = ?", weekStart).First(&summary).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("No summary for week of %s", weekStart))
	}
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	return &summary, nil
}

// asGenerationError guarantees collaborator failures carry the
// generation type, whatever the client implementation returned.
func asGenerationError(err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.NewGenerationError(err, "Narrative generation failed")
}

// apiKey loads the collaborator credential, failing validation when it
// was never configured.
func (s *SummaryService) apiKey(ctx context.Context) (string, error) {
	key, err := s.settings.Get(ctx, SettingNarrativeAPIKey, "")
	if err != nil {
		return "", err
	}
	if key == "" {
		return "", apperrors.NewValidationError("Narrative API key not configured")
	}
	return key, nil
}

// GenerateDaily builds the day's statistics, asks the collaborator for a
// narrative and replaces any cached summary for that date. A generation
// failure leaves the old summary untouched.
func (s *SummaryService) GenerateDaily(ctx context.Context, date string) (*database.DailySummary, error) {
	if _, err := timeslot.ParseDate(date); err != nil {
		return nil, apperrors.NewValidationError("Invalid date format. Use YYYY-MM-DD")
	}

	unlock := s.lockKey("daily:" + date)
	defer unlock()

	key, err := s.apiKey(ctx)
	if err != nil {
		return nil, err
	}

	entries, err := s.entries.ListRange(ctx, date, date)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("No entries for %s", date))
	}

	prompt := BuildDailyPrompt(date, entries)

	// Entries were read above; an edit during the call simply means the
	// summary reflects a stale snapshot.
	genCtx, cancel := context.WithTimeout(ctx, dailyTimeout)
	defer cancel()
	text, tokens, err := s.narrative.Generate(genCtx, key, prompt, TokensDaily)
	if err != nil {
		return nil, asGenerationError(err)
	}

	summary := &database.DailySummary{
		Date:       date,
		Summary:    text,
		TokenCount: &tokens,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("date = ?", date).Delete(&database.DailySummary{}).Error; err != nil {
			return err
		}
		return tx.Create(summary).Error
	})
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}

	logger.Info("Generated daily summary", "date", date, "entries", len(entries), "tokens", tokens)
	return summary, nil
}

// GenerateWeekly is the weekly counterpart; any date inside the week is
// accepted and normalized to its Monday.
func (s *SummaryService) GenerateWeekly(ctx context.Context, date string) (*database.WeeklySummary, error) {
	day, err := timeslot.ParseDate(date)
	if err != nil {
		return nil, apperrors.NewValidationError("Invalid date format. Use YYYY-MM-DD")
	}
	start, end := timeslot.WeekRange(day)
	weekStart := start.Format(timeslot.DateLayout)

	unlock := s.lockKey("weekly:" + weekStart)
	defer unlock()

	key, err := s.apiKey(ctx)
	if err != nil {
		return nil, err
	}

	entries, err := s.entries.ListRange(ctx, weekStart, end.Format(timeslot.DateLayout))
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("No entries for week of %s", weekStart))
	}

	prompt := BuildWeeklyPrompt(weekStart, entries)

	genCtx, cancel := context.WithTimeout(ctx, weeklyTimeout)
	defer cancel()
	text, tokens, err := s.narrative.Generate(genCtx, key, prompt, TokensWeekly)
	if err != nil {
		return nil, asGenerationError(err)
	}

	summary := &database.WeeklySummary{
		WeekStartDate: weekStart,
		Summary:       text,
		TokenCount:    &tokens,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("week_start_date = ?", weekStart).Delete(&database.WeeklySummary{}).Error; err != nil {
			return err
		}
		return tx.Create(summary).Error
	})
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}

	logger.Info("Generated weekly summary", "week_start", weekStart, "entries", len(entries), "tokens", tokens)
	return summary, nil
}
