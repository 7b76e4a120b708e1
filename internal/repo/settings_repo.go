// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides helpers for the singleton settings row.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/cuneytkuscu/whatsapp-rag-bot/internal/domain"
)

// GetSetting returns the singleton settings row, or ErrNotFound when the
// database has never been seeded.
func GetSetting(ctx context.Context, db *gorm.DB) (*domain.Setting, error) {
	var s domain.Setting
	err := db.WithContext(ctx).
		Where("id = ?", domain.SettingsRowID).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// SeedSetting inserts the singleton row with the given defaults if it does
// not exist yet and returns the current row either way. Called once at boot.
func SeedSetting(ctx context.Context, db *gorm.DB, model, trigger string) (*domain.Setting, error) {
	if s, err := GetSetting(ctx, db); err == nil {
		return s, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	s := &domain.Setting{
		ID:          domain.SettingsRowID,
		Model:       model,
		TriggerWord: trigger,
		CreatedAt:   time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

// UpdateSetting overwrites the singleton row's model and trigger word.
// Last write wins; there is no history.
func UpdateSetting(ctx context.Context, db *gorm.DB, model, trigger string) error {
	res := db.WithContext(ctx).
		Model(&domain.Setting{}).
		Where("id = ?", domain.SettingsRowID).
		Updates(map[string]any{"model": model, "trigger_word": trigger})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
