package repo

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	return db
}

func TestOpenSQLite_SetsPragmas(t *testing.T) {
	db := openTestDB(t)

	var journalMode string
	if err := db.Raw("PRAGMA journal_mode;").Row().Scan(&journalMode); err != nil {
		t.Fatalf("PRAGMA journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Fatalf("journal_mode = %q; want wal", journalMode)
	}

	var fkOn int
	if err := db.Raw("PRAGMA foreign_keys;").Row().Scan(&fkOn); err != nil {
		t.Fatalf("PRAGMA foreign_keys: %v", err)
	}
	if fkOn != 1 {
		t.Fatalf("foreign_keys = %d; want 1", fkOn)
	}
}

func TestWhitelist_CreateListDelete(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	e, err := CreateWhitelistEntry(ctx, db, "5511999999999", "Alice", "@bot")
	if err != nil {
		t.Fatalf("CreateWhitelistEntry: %v", err)
	}
	if e.ID == "" {
		t.Fatalf("entry should get a generated id")
	}

	if _, err := CreateWhitelistEntry(ctx, db, "5511999999999", "dup", ""); !errors.Is(err, ErrDuplicateEntry) {
		t.Fatalf("err = %v; want ErrDuplicateEntry", err)
	}

	if _, err := CreateWhitelistEntry(ctx, db, "4915123456789", "", ""); err != nil {
		t.Fatalf("CreateWhitelistEntry: %v", err)
	}

	entries, err := ListWhitelist(ctx, db)
	if err != nil {
		t.Fatalf("ListWhitelist: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d; want 2", len(entries))
	}
	if entries[0].PhoneNumber != "5511999999999" {
		t.Fatalf("list not ordered by creation: %v", entries)
	}
	if entries[0].TriggerWord != "@bot" || entries[0].DisplayName != "Alice" {
		t.Fatalf("entry fields lost: %+v", entries[0])
	}

	if err := DeleteWhitelistEntry(ctx, db, e.ID); err != nil {
		t.Fatalf("DeleteWhitelistEntry: %v", err)
	}
	if err := DeleteWhitelistEntry(ctx, db, e.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v; want ErrNotFound", err)
	}
}

func TestWhitelist_ReAddAfterDelete(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	e, err := CreateWhitelistEntry(ctx, db, "5511999999999", "Alice", "")
	if err != nil {
		t.Fatalf("CreateWhitelistEntry: %v", err)
	}
	if err := DeleteWhitelistEntry(ctx, db, e.ID); err != nil {
		t.Fatalf("DeleteWhitelistEntry: %v", err)
	}

	// The delete must free the unique phone_number index.
	if _, err := CreateWhitelistEntry(ctx, db, "5511999999999", "", ""); err != nil {
		t.Fatalf("re-create after delete: %v", err)
	}
	entries, err := ListWhitelist(ctx, db)
	if err != nil {
		t.Fatalf("ListWhitelist: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d; want 1", len(entries))
	}
}

func TestReplaceWhitelist_ReintroducesDroppedNumber(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	if _, err := CreateWhitelistEntry(ctx, db, "5511999999999", "", ""); err != nil {
		t.Fatalf("CreateWhitelistEntry: %v", err)
	}
	if err := ReplaceWhitelist(ctx, db, []string{"4915123456789"}); err != nil {
		t.Fatalf("ReplaceWhitelist (drop): %v", err)
	}
	if err := ReplaceWhitelist(ctx, db, []string{"5511999999999", "4915123456789"}); err != nil {
		t.Fatalf("ReplaceWhitelist (reintroduce): %v", err)
	}

	entries, err := ListWhitelist(ctx, db)
	if err != nil {
		t.Fatalf("ListWhitelist: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d; want 2", len(entries))
	}
}

func TestReplaceWhitelist_PreservesKeptEntries(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	if _, err := CreateWhitelistEntry(ctx, db, "111111111", "Keep", "@keep"); err != nil {
		t.Fatalf("CreateWhitelistEntry: %v", err)
	}
	if _, err := CreateWhitelistEntry(ctx, db, "222222222", "Drop", ""); err != nil {
		t.Fatalf("CreateWhitelistEntry: %v", err)
	}

	if err := ReplaceWhitelist(ctx, db, []string{"111111111", "333333333"}); err != nil {
		t.Fatalf("ReplaceWhitelist: %v", err)
	}

	entries, err := ListWhitelist(ctx, db)
	if err != nil {
		t.Fatalf("ListWhitelist: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d; want 2", len(entries))
	}
	byPhone := map[string]string{}
	for _, e := range entries {
		byPhone[e.PhoneNumber] = e.TriggerWord
	}
	if _, dropped := byPhone["222222222"]; dropped {
		t.Fatalf("dropped number still present")
	}
	if byPhone["111111111"] != "@keep" {
		t.Fatalf("kept entry lost its trigger override")
	}
	if _, added := byPhone["333333333"]; !added {
		t.Fatalf("new number missing")
	}
}

func TestReplaceWhitelist_EmptyClearsList(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	if _, err := CreateWhitelistEntry(ctx, db, "111111111", "", ""); err != nil {
		t.Fatalf("CreateWhitelistEntry: %v", err)
	}
	if err := ReplaceWhitelist(ctx, db, nil); err != nil {
		t.Fatalf("ReplaceWhitelist: %v", err)
	}
	entries, err := ListWhitelist(ctx, db)
	if err != nil {
		t.Fatalf("ListWhitelist: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("entries = %d; want 0", len(entries))
	}
}

func TestSettings_SeedGetUpdate(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	if _, err := GetSetting(ctx, db); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err before seed = %v; want ErrNotFound", err)
	}

	if _, err := SeedSetting(ctx, db, "llama-3.3-70b-versatile", "@siri"); err != nil {
		t.Fatalf("SeedSetting: %v", err)
	}
	// Seeding twice must not overwrite operator changes.
	if err := UpdateSetting(ctx, db, "mixtral-8x7b", "@bot"); err != nil {
		t.Fatalf("UpdateSetting: %v", err)
	}
	if _, err := SeedSetting(ctx, db, "llama-3.3-70b-versatile", "@siri"); err != nil {
		t.Fatalf("SeedSetting (idempotent): %v", err)
	}

	s, err := GetSetting(ctx, db)
	if err != nil {
		t.Fatalf("GetSetting: %v", err)
	}
	if s.Model != "mixtral-8x7b" || s.TriggerWord != "@bot" {
		t.Fatalf("setting = %+v", s)
	}
}

func TestDocuments_CreateCountPage(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	for i := 0; i < 3; i++ {
		id := []string{"a", "b", "c"}[i]
		if _, err := CreateDocument(ctx, db, id, id+".pdf", "Doc "+id, i+1); err != nil {
			t.Fatalf("CreateDocument: %v", err)
		}
	}

	total, err := CountDocuments(ctx, db)
	if err != nil {
		t.Fatalf("CountDocuments: %v", err)
	}
	if total != 3 {
		t.Fatalf("total = %d; want 3", total)
	}

	page, err := ListDocumentsPage(ctx, db, 0, 2)
	if err != nil {
		t.Fatalf("ListDocumentsPage: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("page size = %d; want 2", len(page))
	}

	rest, err := ListDocumentsPage(ctx, db, 2, 2)
	if err != nil {
		t.Fatalf("ListDocumentsPage: %v", err)
	}
	if len(rest) != 1 {
		t.Fatalf("remaining = %d; want 1", len(rest))
	}
}
