// Package services – SettingsService
//
// SettingsService owns the runtime configuration the webhook pipeline reads
// on every event: the active model, the global trigger word, the allow list,
// and per-sender trigger overrides. Reads take an immutable snapshot through
// an atomic pointer; writers persist to the database first, rebuild the
// snapshot from the persisted state, and swap it in under a mutex. A reader
// therefore never observes a half-applied update.

package services

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"gorm.io/gorm"

	"github.com/cuneytkuscu/whatsapp-rag-bot/internal/domain"
	"github.com/cuneytkuscu/whatsapp-rag-bot/internal/repo"
)

// Settings is an immutable view of the pipeline configuration. Callers must
// not mutate the maps.
type Settings struct {
	Model       string
	TriggerWord string

	// AllowList holds authorized sender numbers. Empty means open gate.
	AllowList map[string]struct{}

	// Triggers maps sender number to a per-sender trigger override. Senders
	// absent from the map use TriggerWord.
	Triggers map[string]string

	// Entries backs the admin panel listing, ordered by creation time.
	Entries []domain.WhitelistEntry
}

// TriggerFor returns the trigger word in effect for the given sender.
func (s *Settings) TriggerFor(sender string) string {
	if t, ok := s.Triggers[sender]; ok && t != "" {
		return t
	}
	return s.TriggerWord
}

// SettingsService loads, serves, and mutates pipeline settings.
type SettingsService struct {
	DB *gorm.DB

	mu      sync.Mutex // serializes writers
	current atomic.Pointer[Settings]
}

// NewSettingsService builds the service and loads the initial snapshot from
// the database. The settings row must already be seeded.
func NewSettingsService(ctx context.Context, db *gorm.DB) (*SettingsService, error) {
	s := &SettingsService{DB: db}
	if err := s.reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Current returns the settings snapshot in effect right now.
func (s *SettingsService) Current() *Settings {
	return s.current.Load()
}

// UpdateSettings persists a new model name and allow list, then swaps in a
// rebuilt snapshot. allowListRaw is a comma-separated list of phone numbers;
// entries already on the list keep their display names and trigger overrides.
func (s *SettingsService) UpdateSettings(ctx context.Context, model, triggerWord, allowListRaw string) error {
	model = strings.TrimSpace(model)
	triggerWord = strings.TrimSpace(triggerWord)
	if model == "" {
		model = s.Current().Model
	}
	if triggerWord == "" {
		triggerWord = s.Current().TriggerWord
	}

	phones := parseAllowList(allowListRaw)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := repo.UpdateSetting(ctx, s.DB, model, triggerWord); err != nil {
		return err
	}
	if err := repo.ReplaceWhitelist(ctx, s.DB, phones); err != nil {
		return err
	}
	return s.reload(ctx)
}

// AddEntry adds one sender to the allow list, optionally with a display name
// and a per-sender trigger override.
func (s *SettingsService) AddEntry(ctx context.Context, phone, name, trigger string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ErrInvalidPhoneNumber
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := repo.CreateWhitelistEntry(ctx, s.DB, phone, strings.TrimSpace(name), strings.TrimSpace(trigger)); err != nil {
		return err
	}
	return s.reload(ctx)
}

// RemoveEntry deletes a whitelist entry by id.
func (s *SettingsService) RemoveEntry(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := repo.DeleteWhitelistEntry(ctx, s.DB, id); err != nil {
		return err
	}
	return s.reload(ctx)
}

// reload rebuilds the snapshot from the database and swaps it in. Callers
// other than the constructor must hold mu.
func (s *SettingsService) reload(ctx context.Context) error {
	setting, err := repo.GetSetting(ctx, s.DB)
	if err != nil {
		return err
	}
	entries, err := repo.ListWhitelist(ctx, s.DB)
	if err != nil {
		return err
	}

	snap := &Settings{
		Model:       setting.Model,
		TriggerWord: setting.TriggerWord,
		AllowList:   make(map[string]struct{}, len(entries)),
		Triggers:    make(map[string]string),
		Entries:     entries,
	}
	for _, e := range entries {
		snap.AllowList[e.PhoneNumber] = struct{}{}
		if e.TriggerWord != "" {
			snap.Triggers[e.PhoneNumber] = e.TriggerWord
		}
	}
	s.current.Store(snap)
	return nil
}

// parseAllowList splits a comma-separated phone list, trims entries, and
// drops blanks and duplicates. Tokens are otherwise taken verbatim:
// authorization matches the sender id exactly, so group ids and other
// non-numeric JID prefixes are legal whitelist entries.
func parseAllowList(raw string) []string {
	seen := make(map[string]struct{})
	var phones []string
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		phones = append(phones, p)
	}
	return phones
}
