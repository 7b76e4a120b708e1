package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"gorm.io/gorm"

	"github.com/cuneytkuscu/whatsapp-rag-bot/internal/repo"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	if _, err := repo.SeedSetting(context.Background(), db, "llama-3.3-70b-versatile", "@siri"); err != nil {
		t.Fatalf("SeedSetting: %v", err)
	}
	return db
}

func TestNewSettingsService_LoadsSeededRow(t *testing.T) {
	svc, err := NewSettingsService(context.Background(), newTestDB(t))
	if err != nil {
		t.Fatalf("NewSettingsService: %v", err)
	}
	snap := svc.Current()
	if snap.Model != "llama-3.3-70b-versatile" || snap.TriggerWord != "@siri" {
		t.Fatalf("snapshot = %+v", snap)
	}
	if len(snap.AllowList) != 0 {
		t.Fatalf("fresh allow list should be empty")
	}
}

func TestUpdateSettings_PersistsAndSwapsSnapshot(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc, err := NewSettingsService(ctx, db)
	if err != nil {
		t.Fatalf("NewSettingsService: %v", err)
	}

	if err := svc.UpdateSettings(ctx, "mixtral-8x7b", "@bot", "5511999999999, 4915123456789"); err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}

	snap := svc.Current()
	if snap.Model != "mixtral-8x7b" || snap.TriggerWord != "@bot" {
		t.Fatalf("snapshot = %+v", snap)
	}
	if _, ok := snap.AllowList["5511999999999"]; !ok {
		t.Fatalf("allow list missing first number: %v", snap.AllowList)
	}
	if len(snap.AllowList) != 2 {
		t.Fatalf("allow list size = %d; want 2", len(snap.AllowList))
	}

	// Survives a service restart via the database.
	svc2, err := NewSettingsService(ctx, db)
	if err != nil {
		t.Fatalf("NewSettingsService (reload): %v", err)
	}
	if got := svc2.Current(); got.Model != "mixtral-8x7b" || len(got.AllowList) != 2 {
		t.Fatalf("reloaded snapshot = %+v", got)
	}
}

func TestUpdateSettings_KeepsEntryMetadataForKeptNumbers(t *testing.T) {
	ctx := context.Background()
	svc, err := NewSettingsService(ctx, newTestDB(t))
	if err != nil {
		t.Fatalf("NewSettingsService: %v", err)
	}

	if err := svc.AddEntry(ctx, "5511999999999", "Alice", "@bot"); err != nil {
		t.Fatalf("AddEntry: %v", err)
	}
	if err := svc.UpdateSettings(ctx, "", "", "5511999999999, 4915123456789"); err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}

	snap := svc.Current()
	if got := snap.TriggerFor("5511999999999"); got != "@bot" {
		t.Fatalf("kept entry lost its trigger override: %q", got)
	}
	if got := snap.TriggerFor("4915123456789"); got != "@siri" {
		t.Fatalf("new entry should use the global trigger: %q", got)
	}
}

func TestAddEntry_Validation(t *testing.T) {
	ctx := context.Background()
	svc, err := NewSettingsService(ctx, newTestDB(t))
	if err != nil {
		t.Fatalf("NewSettingsService: %v", err)
	}

	if err := svc.AddEntry(ctx, "   ", "", ""); !errors.Is(err, ErrInvalidPhoneNumber) {
		t.Fatalf("err = %v; want ErrInvalidPhoneNumber", err)
	}
	if err := svc.AddEntry(ctx, "5511999999999", "Alice", ""); err != nil {
		t.Fatalf("AddEntry: %v", err)
	}
	// Group ids and other non-numeric sender ids are stored verbatim.
	if err := svc.AddEntry(ctx, "120363041234567890", "Support group", ""); err != nil {
		t.Fatalf("AddEntry group id: %v", err)
	}
	if _, ok := svc.Current().AllowList["120363041234567890"]; !ok {
		t.Fatalf("group id missing from snapshot")
	}
	if err := svc.AddEntry(ctx, "5511999999999", "Alice again", ""); !errors.Is(err, repo.ErrDuplicateEntry) {
		t.Fatalf("err = %v; want ErrDuplicateEntry", err)
	}
}

func TestRemoveEntry_UpdatesSnapshot(t *testing.T) {
	ctx := context.Background()
	svc, err := NewSettingsService(ctx, newTestDB(t))
	if err != nil {
		t.Fatalf("NewSettingsService: %v", err)
	}

	if err := svc.AddEntry(ctx, "5511999999999", "", ""); err != nil {
		t.Fatalf("AddEntry: %v", err)
	}
	id := svc.Current().Entries[0].ID

	if err := svc.RemoveEntry(ctx, id); err != nil {
		t.Fatalf("RemoveEntry: %v", err)
	}
	if len(svc.Current().AllowList) != 0 {
		t.Fatalf("allow list should be empty after removal")
	}
	if err := svc.RemoveEntry(ctx, id); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("err = %v; want ErrNotFound", err)
	}

	// A removed number must be addable again.
	if err := svc.AddEntry(ctx, "5511999999999", "", ""); err != nil {
		t.Fatalf("re-AddEntry after remove: %v", err)
	}
	if _, ok := svc.Current().AllowList["5511999999999"]; !ok {
		t.Fatalf("re-added number missing from snapshot")
	}
}

// Readers must never observe a snapshot where the model and trigger come
// from different updates.
func TestCurrent_NoTornReadsUnderConcurrentUpdates(t *testing.T) {
	ctx := context.Background()
	svc, err := NewSettingsService(ctx, newTestDB(t))
	if err != nil {
		t.Fatalf("NewSettingsService: %v", err)
	}

	pairs := map[string]string{
		"llama-3.3-70b-versatile": "@siri",
		"model-a":                 "@a",
		"model-b":                 "@b",
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				snap := svc.Current()
				want, ok := pairs[snap.Model]
				if !ok || snap.TriggerWord != want {
					t.Errorf("torn snapshot: model=%q trigger=%q", snap.Model, snap.TriggerWord)
					return
				}
			}
		}()
	}

	for i := 0; i < 10; i++ {
		if err := svc.UpdateSettings(ctx, "model-a", "@a", ""); err != nil {
			t.Fatalf("UpdateSettings: %v", err)
		}
		if err := svc.UpdateSettings(ctx, "model-b", "@b", ""); err != nil {
			t.Fatalf("UpdateSettings: %v", err)
		}
	}
	close(done)
	wg.Wait()
}
