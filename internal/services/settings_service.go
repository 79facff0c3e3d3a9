package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/chronocop/chronocop/internal/apperrors"
	"github.com/chronocop/chronocop/internal/database"
	"gorm.io/gorm"
)

// SettingsService is key/value persistence for configuration such as the
// narrative API credential.
type SettingsService struct {
	db *gorm.DB
}

func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{db: db}
}

// Get returns the value stored under key, or defaultValue when absent.
func (s *SettingsService) Get(ctx context.Context, key, defaultValue string) (string, error) {
	var setting database.Setting
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return defaultValue, nil
	}
	if err != nil {
		return "", apperrors.NewPersistenceError(err)
	}
	return setting.Value, nil
}

// Lookup returns the full row for key, with a not-found error when the
// key is unset.
func (s *SettingsService) Lookup(ctx context.Context, key string) (*database.Setting, error) {
	var setting database.Setting
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("Setting %q not found", key))
	}
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	return &setting, nil
}

// Set upserts: overwrites the value if key exists, inserts otherwise.
func (s *SettingsService) Set(ctx context.Context, key, value string) (*database.Setting, error) {
	var setting database.Setting
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("key = ?", key).First(&setting).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			setting = database.Setting{Key: key, Value: value}
			return tx.Create(&setting).Error
		case err != nil:
			return err
		default:
			setting.Value = value
			return tx.Save(&setting).Error
		}
	})
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	return &setting, nil
}

// Delete removes the key, reporting not-found for unknown keys.
func (s *SettingsService) Delete(ctx context.Context, key string) error {
	res := s.db.WithContext(ctx).Where("key = ?", key).Delete(&database.Setting{})
	if res.Error != nil {
		return apperrors.NewPersistenceError(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("Setting %q not found", key))
	}
	return nil
}

// ListAll returns every setting as a key to value mapping.
func (s *SettingsService) ListAll(ctx context.Context) (map[string]string, error) {
	var settings []database.Setting
	if err := s.db.WithContext(ctx).Order("key").Find(&settings).Error; err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	out := make(map[string]string, len(settings))
	for _, setting := range settings {
		out[setting.Key] = setting.Value
	}
	return out, nil
}
