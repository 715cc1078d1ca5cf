package repositories

import (
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/afterthoughts/internal/models"
	"github.com/desertthunder/afterthoughts/internal/shared"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

func cachedDiary(id, userID, title string, createdAt time.Time) *models.CachedDiary {
	return models.NewCachedDiary(models.Diary{ID: id, UserID: userID, Title: title, CreatedAt: createdAt})
}

func cachedEntry(id, diaryID, title, content string, draft bool, createdAt time.Time) *models.CachedEntry {
	return models.NewCachedEntry(models.Entry{
		ID:        id,
		DiaryID:   diaryID,
		Title:     title,
		Content:   content,
		IsDraft:   draft,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	})
}

func TestNextSequence(t *testing.T) {
	db := testDB(t)

	first, err := NextSequence(db, "diaries")
	if err != nil {
		t.Fatalf("NextSequence failed: %v", err)
	}
	second, err := NextSequence(db, "diaries")
	if err != nil {
		t.Fatalf("NextSequence failed: %v", err)
	}
	if second != first+1 {
		t.Errorf("sequence = %d after %d, want monotonic increment", second, first)
	}

	entrySeq, err := NextSequence(db, "entries")
	if err != nil {
		t.Fatalf("NextSequence failed: %v", err)
	}
	if entrySeq != 1 {
		t.Errorf("entries sequence = %d, want independent counter starting at 1", entrySeq)
	}
}

func TestDiaryRepository(t *testing.T) {
	now := time.Now()

	t.Run("create and get", func(t *testing.T) {
		repo := NewDiaryRepository(testDB(t))

		if err := repo.Create(cachedDiary("d1", "u1", "Journal", now)); err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		got, err := repo.Get("d1")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.Title() != "Journal" || got.UserID() != "u1" {
			t.Errorf("Get() = %+v", got.Remote())
		}
		if got.Sequence() == 0 {
			t.Error("expected a generated sequence")
		}
	})

	t.Run("create rejects invalid rows", func(t *testing.T) {
		repo := NewDiaryRepository(testDB(t))
		if err := repo.Create(cachedDiary("d1", "u1", "  ", now)); err == nil {
			t.Error("expected validation error for blank title")
		}
	})

	t.Run("update", func(t *testing.T) {
		repo := NewDiaryRepository(testDB(t))
		diary := cachedDiary("d1", "u1", "Journal", now)
		if err := repo.Create(diary); err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		diary.SetTitle("Renamed")
		if err := repo.Update(diary); err != nil {
			t.Fatalf("Update failed: %v", err)
		}

		got, err := repo.Get("d1")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.Title() != "Renamed" {
			t.Errorf("title = %q, want Renamed", got.Title())
		}
	})

	t.Run("update missing row", func(t *testing.T) {
		repo := NewDiaryRepository(testDB(t))
		if err := repo.Update(cachedDiary("ghost", "u1", "x", now)); err == nil {
			t.Error("expected error for missing row")
		}
	})

	t.Run("soft delete hides the row", func(t *testing.T) {
		repo := NewDiaryRepository(testDB(t))
		if err := repo.Create(cachedDiary("d1", "u1", "Journal", now)); err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		if err := repo.Delete("d1"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, err := repo.Get("d1"); err == nil {
			t.Error("expected deleted row to be invisible")
		}
		if err := repo.Delete("d1"); err == nil {
			t.Error("expected second delete to fail")
		}
	})

	t.Run("list filters by user, newest first", func(t *testing.T) {
		repo := NewDiaryRepository(testDB(t))
		if err := repo.Create(cachedDiary("d1", "u1", "Older", now.Add(-time.Hour))); err != nil {
			t.Fatal(err)
		}
		if err := repo.Create(cachedDiary("d2", "u1", "Newer", now)); err != nil {
			t.Fatal(err)
		}
		if err := repo.Create(cachedDiary("d3", "u2", "Other account", now)); err != nil {
			t.Fatal(err)
		}

		diaries, err := repo.List(map[string]any{"user_id": "u1"})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(diaries) != 2 {
			t.Fatalf("list length = %d, want 2", len(diaries))
		}
		if diaries[0].ID() != "d2" || diaries[1].ID() != "d1" {
			t.Errorf("order = [%s %s], want newest first", diaries[0].ID(), diaries[1].ID())
		}
	})

	t.Run("replace resets the user's cache", func(t *testing.T) {
		repo := NewDiaryRepository(testDB(t))
		if err := repo.Create(cachedDiary("stale", "u1", "Stale", now)); err != nil {
			t.Fatal(err)
		}

		fresh := []models.Diary{
			{ID: "d1", UserID: "u1", Title: "Fresh one", CreatedAt: now},
			{ID: "d2", UserID: "u1", Title: "Fresh two", CreatedAt: now},
		}
		if err := repo.Replace("u1", fresh); err != nil {
			t.Fatalf("Replace failed: %v", err)
		}

		diaries, err := repo.List(map[string]any{"user_id": "u1"})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(diaries) != 2 {
			t.Fatalf("list length = %d, want 2", len(diaries))
		}
		if _, err := repo.Get("stale"); err == nil {
			t.Error("stale row survived Replace")
		}
	})
}

func TestEntryRepository(t *testing.T) {
	now := time.Now()

	seedDiary := func(t *testing.T, db *sql.DB) {
		t.Helper()
		if err := NewDiaryRepository(db).Create(cachedDiary("d1", "u1", "Journal", now)); err != nil {
			t.Fatalf("failed to seed diary: %v", err)
		}
	}

	t.Run("create and get", func(t *testing.T) {
		db := testDB(t)
		seedDiary(t, db)
		repo := NewEntryRepository(db)

		if err := repo.Create(cachedEntry("e1", "d1", "Day one", "content", true, now)); err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		got, err := repo.Get("e1")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.Content() != "content" || !got.IsDraft() {
			t.Errorf("Get() = %+v", got.Remote())
		}
	})

	t.Run("untitled entries are allowed", func(t *testing.T) {
		db := testDB(t)
		seedDiary(t, db)
		repo := NewEntryRepository(db)

		if err := repo.Create(cachedEntry("e1", "d1", "", "untitled body", true, now)); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		got, err := repo.Get("e1")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.Title() != "" {
			t.Errorf("title = %q, want empty", got.Title())
		}
	})

	t.Run("update clears the draft flag but never sets it", func(t *testing.T) {
		db := testDB(t)
		seedDiary(t, db)
		repo := NewEntryRepository(db)

		entry := cachedEntry("e1", "d1", "Day one", "content", true, now)
		if err := repo.Create(entry); err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		// Draft -> published.
		entry.SetIsDraft(false)
		if err := repo.Update(entry); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		got, err := repo.Get("e1")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.IsDraft() {
			t.Fatal("draft flag not cleared")
		}

		// Published rows never go back to draft.
		entry.SetIsDraft(true)
		if err := repo.Update(entry); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		got, err = repo.Get("e1")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.IsDraft() {
			t.Error("published row was re-marked as a draft")
		}
	})

	t.Run("list filters by diary and draft state", func(t *testing.T) {
		db := testDB(t)
		seedDiary(t, db)
		repo := NewEntryRepository(db)

		rows := []*models.CachedEntry{
			cachedEntry("e1", "d1", "Draft", "body", true, now.Add(-time.Hour)),
			cachedEntry("e2", "d1", "Published", "body", false, now),
		}
		for _, e := range rows {
			if err := repo.Create(e); err != nil {
				t.Fatal(err)
			}
		}

		all, err := repo.List(map[string]any{"diary_id": "d1"})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(all) != 2 {
			t.Fatalf("list length = %d, want 2", len(all))
		}
		if all[0].ID() != "e2" {
			t.Errorf("first row = %s, want newest first", all[0].ID())
		}

		drafts, err := repo.List(map[string]any{"diary_id": "d1", "is_draft": true})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(drafts) != 1 || drafts[0].ID() != "e1" {
			t.Errorf("drafts = %v", drafts)
		}
	})

	t.Run("soft delete hides the row", func(t *testing.T) {
		db := testDB(t)
		seedDiary(t, db)
		repo := NewEntryRepository(db)

		if err := repo.Create(cachedEntry("e1", "d1", "t", "c", false, now)); err != nil {
			t.Fatal(err)
		}
		if err := repo.Delete("e1"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, err := repo.Get("e1"); err == nil || !strings.Contains(err.Error(), "not found") {
			t.Errorf("Get after delete = %v, want not found", err)
		}
	})

	t.Run("replace resets a diary's cache", func(t *testing.T) {
		db := testDB(t)
		seedDiary(t, db)
		repo := NewEntryRepository(db)

		if err := repo.Create(cachedEntry("stale", "d1", "t", "c", false, now)); err != nil {
			t.Fatal(err)
		}

		fresh := []models.Entry{
			{ID: "e1", DiaryID: "d1", Title: "One", Content: "c", CreatedAt: now, UpdatedAt: now},
		}
		if err := repo.ReplaceForDiary("d1", fresh); err != nil {
			t.Fatalf("ReplaceForDiary failed: %v", err)
		}

		entries, err := repo.List(map[string]any{"diary_id": "d1"})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(entries) != 1 || entries[0].ID() != "e1" {
			t.Errorf("entries = %v, want the fresh row only", entries)
		}
	})
}

func TestKVRepository(t *testing.T) {
	t.Run("get unset key", func(t *testing.T) {
		repo := NewKVRepository(testDB(t))
		value, err := repo.Get("missing")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if value != "" {
			t.Errorf("value = %q, want empty", value)
		}
	})

	t.Run("set upserts", func(t *testing.T) {
		repo := NewKVRepository(testDB(t))
		if err := repo.Set("last_sync", "2025-03-14"); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		if err := repo.Set("last_sync", "2025-03-15"); err != nil {
			t.Fatalf("second Set failed: %v", err)
		}

		value, err := repo.Get("last_sync")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if value != "2025-03-15" {
			t.Errorf("value = %q, want the newer write", value)
		}
	})

	t.Run("dark mode defaults to true", func(t *testing.T) {
		repo := NewKVRepository(testDB(t))

		dark, err := repo.DarkMode()
		if err != nil {
			t.Fatalf("DarkMode failed: %v", err)
		}
		if !dark {
			t.Error("unset preference must default to dark")
		}

		if err := repo.SetDarkMode(false); err != nil {
			t.Fatalf("SetDarkMode failed: %v", err)
		}
		dark, err = repo.DarkMode()
		if err != nil {
			t.Fatalf("DarkMode failed: %v", err)
		}
		if dark {
			t.Error("preference did not persist")
		}

		if err := repo.SetDarkMode(true); err != nil {
			t.Fatalf("SetDarkMode failed: %v", err)
		}
		dark, err = repo.DarkMode()
		if err != nil {
			t.Fatalf("DarkMode failed: %v", err)
		}
		if !dark {
			t.Error("preference did not flip back")
		}
	})
}
