package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/afterthoughts/internal/models"
	"github.com/desertthunder/afterthoughts/internal/shared"
)

type mockStore struct {
	mu      sync.Mutex
	seq     int
	entries map[string]models.Entry
	calls   []string

	latestDraftErr error
	createErr      error
	updateErr      error
	publishErr     error

	// When set, writes signal slowStarted and block until slowGate closes,
	// holding a save in flight for overlap tests.
	slowStarted chan struct{}
	slowGate    chan struct{}
}

func newMockStore() *mockStore {
	return &mockStore{entries: make(map[string]models.Entry)}
}

func (m *mockStore) record(call string) { m.calls = append(m.calls, call) }

func (m *mockStore) callCount(prefix string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, c := range m.calls {
		if c == prefix {
			count++
		}
	}
	return count
}

func (m *mockStore) LatestDraft(ctx context.Context, diaryID string) (*models.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("LatestDraft")
	if m.latestDraftErr != nil {
		return nil, m.latestDraftErr
	}
	var latest *models.Entry
	for _, e := range m.entries {
		if e.DiaryID != diaryID || !e.IsDraft {
			continue
		}
		if latest == nil || e.UpdatedAt.After(latest.UpdatedAt) {
			entry := e
			latest = &entry
		}
	}
	return latest, nil
}

func (m *mockStore) block() {
	if m.slowStarted != nil {
		m.slowStarted <- struct{}{}
		<-m.slowGate
	}
}

func (m *mockStore) CreateEntry(ctx context.Context, diaryID, title, content string, draft bool) (*models.Entry, error) {
	m.block()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("CreateEntry")
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.seq++
	now := time.Now()
	e := models.Entry{
		ID:        fmt.Sprintf("entry-%d", m.seq),
		DiaryID:   diaryID,
		Title:     title,
		Content:   content,
		IsDraft:   draft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.entries[e.ID] = e
	return &e, nil
}

func (m *mockStore) UpdateEntry(ctx context.Context, entryID, title, content string) error {
	m.block()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("UpdateEntry")
	if m.updateErr != nil {
		return m.updateErr
	}
	e, ok := m.entries[entryID]
	if !ok {
		return fmt.Errorf("entry not found: %s", entryID)
	}
	e.Title = title
	e.Content = content
	e.UpdatedAt = time.Now()
	m.entries[entryID] = e
	return nil
}

func (m *mockStore) PublishEntry(ctx context.Context, entryID, title, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("PublishEntry")
	if m.publishErr != nil {
		return m.publishErr
	}
	e, ok := m.entries[entryID]
	if !ok {
		return fmt.Errorf("entry not found: %s", entryID)
	}
	e.Title = title
	e.Content = content
	e.IsDraft = false
	e.UpdatedAt = time.Now()
	m.entries[entryID] = e
	return nil
}

func (m *mockStore) entry(id string) (models.Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	return e, ok
}

func (m *mockStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func TestSessionAutosave(t *testing.T) {
	ctx := context.Background()

	t.Run("first save creates a draft, later saves update it", func(t *testing.T) {
		store := newMockStore()
		session := NewSession(store, Opts{})

		if _, err := session.Open(ctx, "diary-1"); err != nil {
			t.Fatalf("Open failed: %v", err)
		}

		session.SetInput("Morning", "First thoughts")
		saved, err := session.Autosave(ctx)
		if err != nil {
			t.Fatalf("Autosave failed: %v", err)
		}
		if !saved {
			t.Fatal("expected first autosave to persist")
		}
		if store.callCount("CreateEntry") != 1 {
			t.Errorf("CreateEntry calls = %d, want 1", store.callCount("CreateEntry"))
		}

		id := session.EntryID()
		if id == "" {
			t.Fatal("expected session to remember the draft row")
		}
		if e, ok := store.entry(id); !ok || !e.IsDraft {
			t.Fatalf("expected draft row, got %+v (exists=%v)", e, ok)
		}

		session.SetInput("Morning", "First thoughts, extended")
		if _, err := session.Autosave(ctx); err != nil {
			t.Fatalf("second Autosave failed: %v", err)
		}
		if store.callCount("CreateEntry") != 1 {
			t.Errorf("CreateEntry calls after second save = %d, want 1", store.callCount("CreateEntry"))
		}
		if store.callCount("UpdateEntry") != 1 {
			t.Errorf("UpdateEntry calls = %d, want 1", store.callCount("UpdateEntry"))
		}
		if store.count() != 1 {
			t.Errorf("row count = %d, want 1", store.count())
		}
	})

	t.Run("clean session is a no-op", func(t *testing.T) {
		store := newMockStore()
		session := NewSession(store, Opts{})

		if _, err := session.Open(ctx, "diary-1"); err != nil {
			t.Fatalf("Open failed: %v", err)
		}

		saved, err := session.Autosave(ctx)
		if err != nil {
			t.Fatalf("Autosave failed: %v", err)
		}
		if saved {
			t.Error("expected no save without input")
		}

		session.SetInput("Title", "Content")
		if _, err := session.Autosave(ctx); err != nil {
			t.Fatalf("Autosave failed: %v", err)
		}

		// Unchanged input stays clean.
		saved, err = session.Autosave(ctx)
		if err != nil {
			t.Fatalf("Autosave failed: %v", err)
		}
		if saved {
			t.Error("expected idempotent tick after save")
		}
	})

	t.Run("blank fields are skipped without error", func(t *testing.T) {
		tests := []struct {
			name    string
			title   string
			content string
		}{
			{"empty title", "", "some content"},
			{"empty content", "a title", ""},
			{"whitespace title", "   ", "some content"},
			{"whitespace content", "a title", "\n\t "},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				store := newMockStore()
				session := NewSession(store, Opts{})
				if _, err := session.Open(ctx, "diary-1"); err != nil {
					t.Fatalf("Open failed: %v", err)
				}
				session.SetInput(tt.title, tt.content)

				saved, err := session.Autosave(ctx)
				if err != nil {
					t.Fatalf("Autosave failed: %v", err)
				}
				if saved {
					t.Error("expected blank snapshot to be skipped")
				}
				if store.count() != 0 {
					t.Errorf("row count = %d, want 0", store.count())
				}
			})
		}
	})

	t.Run("keystrokes during a save stay dirty", func(t *testing.T) {
		store := newMockStore()
		session := NewSession(store, Opts{})
		if _, err := session.Open(ctx, "diary-1"); err != nil {
			t.Fatalf("Open failed: %v", err)
		}

		session.SetInput("Title", "v1")
		if _, err := session.Autosave(ctx); err != nil {
			t.Fatalf("Autosave failed: %v", err)
		}

		session.SetInput("Title", "v2")
		if !session.Dirty() {
			t.Fatal("expected newer input to mark the session dirty")
		}

		saved, err := session.Autosave(ctx)
		if err != nil {
			t.Fatalf("Autosave failed: %v", err)
		}
		if !saved {
			t.Fatal("expected the newer snapshot to persist")
		}
		if e, _ := store.entry(session.EntryID()); e.Content != "v2" {
			t.Errorf("content = %q, want %q", e.Content, "v2")
		}
	})

	t.Run("failed save keeps the session dirty", func(t *testing.T) {
		store := newMockStore()
		store.createErr = errors.New("boom")
		session := NewSession(store, Opts{})
		if _, err := session.Open(ctx, "diary-1"); err != nil {
			t.Fatalf("Open failed: %v", err)
		}

		session.SetInput("Title", "Content")
		if _, err := session.Autosave(ctx); err == nil {
			t.Fatal("expected autosave error")
		}
		if !session.Dirty() {
			t.Error("expected session to stay dirty after a failed save")
		}

		store.createErr = nil
		saved, err := session.Autosave(ctx)
		if err != nil {
			t.Fatalf("retry Autosave failed: %v", err)
		}
		if !saved {
			t.Error("expected retry to persist")
		}
	})

	t.Run("adopts a draft created elsewhere instead of duplicating", func(t *testing.T) {
		store := newMockStore()
		session := NewSession(store, Opts{})
		if _, err := session.Open(ctx, "diary-1"); err != nil {
			t.Fatalf("Open failed: %v", err)
		}

		// Another device writes a draft between Open and the first tick.
		other, err := store.CreateEntry(ctx, "diary-1", "Elsewhere", "remote draft", true)
		if err != nil {
			t.Fatalf("seed failed: %v", err)
		}

		session.SetInput("Local", "local text")
		if _, err := session.Autosave(ctx); err != nil {
			t.Fatalf("Autosave failed: %v", err)
		}

		if session.EntryID() != other.ID {
			t.Errorf("session bound to %q, want adopted draft %q", session.EntryID(), other.ID)
		}
		if store.count() != 1 {
			t.Errorf("row count = %d, want 1", store.count())
		}
	})
}

func TestSessionOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("resumes the newest draft without marking dirty", func(t *testing.T) {
		store := newMockStore()
		if _, err := store.CreateEntry(ctx, "diary-1", "Old", "older draft", true); err != nil {
			t.Fatal(err)
		}
		time.Sleep(5 * time.Millisecond)
		newest, err := store.CreateEntry(ctx, "diary-1", "New", "newest draft", true)
		if err != nil {
			t.Fatal(err)
		}

		session := NewSession(store, Opts{})
		snap, err := session.Open(ctx, "diary-1")
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}

		if snap.Title != "New" || snap.Content != "newest draft" {
			t.Errorf("restored snapshot = %+v, want newest draft", snap)
		}
		if session.EntryID() != newest.ID {
			t.Errorf("bound to %q, want %q", session.EntryID(), newest.ID)
		}
		if session.Dirty() {
			t.Error("restoring a draft must not mark the session dirty")
		}
	})

	t.Run("published entries are not resumed", func(t *testing.T) {
		store := newMockStore()
		if _, err := store.CreateEntry(ctx, "diary-1", "Done", "published", false); err != nil {
			t.Fatal(err)
		}

		session := NewSession(store, Opts{})
		snap, err := session.Open(ctx, "diary-1")
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		if snap != (Snapshot{}) {
			t.Errorf("snapshot = %+v, want empty", snap)
		}
	})
}

func TestSessionPublish(t *testing.T) {
	ctx := context.Background()

	t.Run("promotes the draft row exactly once", func(t *testing.T) {
		store := newMockStore()
		session := NewSession(store, Opts{})
		if _, err := session.Open(ctx, "diary-1"); err != nil {
			t.Fatalf("Open failed: %v", err)
		}

		session.SetInput("Title", "Content")
		if _, err := session.Autosave(ctx); err != nil {
			t.Fatalf("Autosave failed: %v", err)
		}
		id := session.EntryID()

		if err := session.Publish(ctx); err != nil {
			t.Fatalf("Publish failed: %v", err)
		}

		e, ok := store.entry(id)
		if !ok {
			t.Fatal("published row missing")
		}
		if e.IsDraft {
			t.Error("expected draft flag cleared")
		}
		if session.Mode() != ModeIdle {
			t.Errorf("mode = %v, want idle", session.Mode())
		}
	})

	t.Run("publishes directly when no draft was persisted", func(t *testing.T) {
		store := newMockStore()
		session := NewSession(store, Opts{})
		if _, err := session.Open(ctx, "diary-1"); err != nil {
			t.Fatalf("Open failed: %v", err)
		}

		session.SetInput("Title", "Content")
		if err := session.Publish(ctx); err != nil {
			t.Fatalf("Publish failed: %v", err)
		}

		if store.callCount("PublishEntry") != 0 {
			t.Error("expected a direct insert, not a promote")
		}
		if store.callCount("CreateEntry") != 1 {
			t.Errorf("CreateEntry calls = %d, want 1", store.callCount("CreateEntry"))
		}
	})

	t.Run("rejects a second submission while one is in flight", func(t *testing.T) {
		store := newMockStore()
		store.slowStarted = make(chan struct{})
		store.slowGate = make(chan struct{})
		session := NewSession(store, Opts{})
		if _, err := session.Open(ctx, "diary-1"); err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		session.SetInput("Title", "Content")

		first := make(chan error, 1)
		go func() { first <- session.Publish(ctx) }()
		<-store.slowStarted

		if err := session.Publish(ctx); !errors.Is(err, shared.ErrSaveInFlight) {
			t.Errorf("second publish error = %v, want ErrSaveInFlight", err)
		}

		close(store.slowGate)
		if err := <-first; err != nil {
			t.Fatalf("first Publish failed: %v", err)
		}
		if store.callCount("CreateEntry") != 1 {
			t.Errorf("CreateEntry calls = %d, want 1", store.callCount("CreateEntry"))
		}
		if store.count() != 1 {
			t.Errorf("row count = %d, want 1", store.count())
		}
	})

	t.Run("rejects empty fields", func(t *testing.T) {
		store := newMockStore()
		session := NewSession(store, Opts{})
		if _, err := session.Open(ctx, "diary-1"); err != nil {
			t.Fatalf("Open failed: %v", err)
		}

		session.SetInput("", "Content")
		if err := session.Publish(ctx); err == nil {
			t.Error("expected error for empty title")
		}

		session.SetInput("Title", "  ")
		if err := session.Publish(ctx); err == nil {
			t.Error("expected error for empty content")
		}
	})
}

func TestSessionEdit(t *testing.T) {
	ctx := context.Background()

	t.Run("autosaves update the row without touching the draft flag", func(t *testing.T) {
		store := newMockStore()
		row, err := store.CreateEntry(ctx, "diary-1", "Published", "original", false)
		if err != nil {
			t.Fatal(err)
		}

		session := NewSession(store, Opts{})
		snap := session.OpenEntry(*row)
		if snap.Content != "original" {
			t.Errorf("snapshot content = %q, want %q", snap.Content, "original")
		}

		session.SetInput("Published", "revised")
		saved, err := session.Autosave(ctx)
		if err != nil {
			t.Fatalf("Autosave failed: %v", err)
		}
		if !saved {
			t.Fatal("expected edit autosave to persist")
		}

		e, _ := store.entry(row.ID)
		if e.Content != "revised" {
			t.Errorf("content = %q, want %q", e.Content, "revised")
		}
		if e.IsDraft {
			t.Error("edit autosave must not mark the row as a draft")
		}
		if store.callCount("CreateEntry") != 1 {
			t.Error("edit session must never create rows")
		}
	})

	t.Run("save finalizes and resets", func(t *testing.T) {
		store := newMockStore()
		row, err := store.CreateEntry(ctx, "diary-1", "Published", "original", false)
		if err != nil {
			t.Fatal(err)
		}

		session := NewSession(store, Opts{})
		session.OpenEntry(*row)
		session.SetInput("Renamed", "rewritten")

		if err := session.Save(ctx); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if session.Mode() != ModeIdle {
			t.Errorf("mode = %v, want idle", session.Mode())
		}
		if e, _ := store.entry(row.ID); e.Title != "Renamed" {
			t.Errorf("title = %q, want %q", e.Title, "Renamed")
		}
	})

	t.Run("rejects an overlapping save", func(t *testing.T) {
		store := newMockStore()
		row, err := store.CreateEntry(ctx, "diary-1", "Published", "original", false)
		if err != nil {
			t.Fatal(err)
		}
		store.slowStarted = make(chan struct{})
		store.slowGate = make(chan struct{})

		session := NewSession(store, Opts{})
		session.OpenEntry(*row)
		session.SetInput("Renamed", "rewritten")

		first := make(chan error, 1)
		go func() { first <- session.Save(ctx) }()
		<-store.slowStarted

		if err := session.Save(ctx); !errors.Is(err, shared.ErrSaveInFlight) {
			t.Errorf("second save error = %v, want ErrSaveInFlight", err)
		}

		close(store.slowGate)
		if err := <-first; err != nil {
			t.Fatalf("first Save failed: %v", err)
		}
		if store.callCount("UpdateEntry") != 1 {
			t.Errorf("UpdateEntry calls = %d, want 1", store.callCount("UpdateEntry"))
		}
	})
}

func TestSessionDiscard(t *testing.T) {
	ctx := context.Background()

	store := newMockStore()
	session := NewSession(store, Opts{})
	if _, err := session.Open(ctx, "diary-1"); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	session.SetInput("Title", "Content")
	if !session.Dirty() {
		t.Fatal("expected dirty session")
	}

	session.Discard()
	if session.Dirty() {
		t.Error("discard must clear the dirty flag")
	}
	if session.Mode() != ModeIdle {
		t.Errorf("mode = %v, want idle", session.Mode())
	}
	if store.count() != 0 {
		t.Error("discard must not persist anything")
	}
}

func TestSessionStart(t *testing.T) {
	store := newMockStore()
	session := NewSession(store, Opts{Interval: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := session.Open(ctx, "diary-1"); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	session.SetInput("Title", "ticked content")

	session.Start(ctx, nil)
	defer session.Close()

	deadline := time.After(time.Second)
	for store.count() == 0 {
		select {
		case <-deadline:
			t.Fatal("autosave loop never persisted the draft")
		case <-time.After(5 * time.Millisecond):
		}
	}
}
