// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the sender
// whitelist.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When an entry is not found, functions return gorm.ErrRecordNotFound
//     (exported in this package as ErrNotFound).
//   - Duplicate phone numbers surface as ErrDuplicateEntry.
//   - On other DB errors the raw gorm error is propagated.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cuneytkuscu/whatsapp-rag-bot/internal/domain"
)

// ErrDuplicateEntry indicates that a whitelist row with the same phone
// number already exists.
var ErrDuplicateEntry = errors.New("whitelist entry already exists")

// CreateWhitelistEntry inserts a new whitelist row. The entry ID is a
// randomly generated UUID and CreatedAt is set to UTC. A unique-constraint
// violation on the phone number maps to ErrDuplicateEntry.
func CreateWhitelistEntry(ctx context.Context, db *gorm.DB, phone, name, trigger string) (*domain.WhitelistEntry, error) {
	e := &domain.WhitelistEntry{
		ID:          uuid.NewString(),
		PhoneNumber: phone,
		DisplayName: name,
		TriggerWord: trigger,
		CreatedAt:   time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(e).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEntry
		}
		return nil, err
	}
	return e, nil
}

// ListWhitelist returns all whitelist entries ordered by creation time
// ascending (stable admin-panel order). It returns an empty slice when the
// table is empty.
func ListWhitelist(ctx context.Context, db *gorm.DB) ([]domain.WhitelistEntry, error) {
	var out []domain.WhitelistEntry
	err := db.WithContext(ctx).
		Order("created_at asc").
		Find(&out).Error
	return out, err
}

// DeleteWhitelistEntry removes the entry with the given ID. The delete is
// permanent so the phone number can be re-added later. If no rows are
// affected it returns ErrNotFound.
func DeleteWhitelistEntry(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Delete(&domain.WhitelistEntry{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ReplaceWhitelist replaces the whole whitelist with the given phone numbers
// inside one transaction. Existing display names and trigger overrides for
// numbers that stay in the list are preserved; numbers absent from the new
// list are removed; new numbers are inserted bare. This backs the admin
// "comma-separated whitelist" field, where the submitted list is the whole
// truth (last write wins).
func ReplaceWhitelist(ctx context.Context, db *gorm.DB, phones []string) error {
	keep := make(map[string]struct{}, len(phones))
	for _, p := range phones {
		keep[p] = struct{}{}
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := ListWhitelist(ctx, tx)
		if err != nil {
			return err
		}
		have := make(map[string]struct{}, len(existing))
		for _, e := range existing {
			have[e.PhoneNumber] = struct{}{}
			if _, ok := keep[e.PhoneNumber]; !ok {
				if err := tx.Delete(&domain.WhitelistEntry{}, "id = ?", e.ID).Error; err != nil {
					return err
				}
			}
		}
		for _, p := range phones {
			if _, ok := have[p]; ok {
				continue
			}
			if _, err := CreateWhitelistEntry(ctx, tx, p, "", ""); err != nil {
				return err
			}
		}
		return nil
	})
}

// isUniqueViolation detects unique-constraint violations across drivers
// that may not map to gorm.ErrDuplicatedKey.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique")
}
