package editor

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/desertthunder/afterthoughts/internal/models"
	"github.com/desertthunder/afterthoughts/internal/shared"
)

// DefaultInterval is the autosave cadence used when no override is configured.
const DefaultInterval = 10 * time.Second

// Mode identifies what kind of interaction a session is tracking.
type Mode int

const (
	ModeIdle    Mode = iota // no composer open
	ModeCompose             // writing a new entry, persisted as a draft
	ModeEdit                // editing an existing entry in place
)

func (m Mode) String() string {
	switch m {
	case ModeCompose:
		return "compose"
	case ModeEdit:
		return "edit"
	default:
		return "idle"
	}
}

// Store defines the persistence operations a session needs.
// Implemented by services.SupabaseService; tests substitute a double.
type Store interface {
	LatestDraft(ctx context.Context, diaryID string) (*models.Entry, error)
	CreateEntry(ctx context.Context, diaryID, title, content string, draft bool) (*models.Entry, error)
	UpdateEntry(ctx context.Context, entryID, title, content string) error
	PublishEntry(ctx context.Context, entryID, title, content string) error
}

// Snapshot is the latest-value cell the autosave tick reads.
type Snapshot struct {
	Title   string
	Content string
}

// blank reports whether either field is empty or whitespace.
// Autosave skips blank snapshots instead of erroring.
func (s Snapshot) blank() bool {
	return strings.TrimSpace(s.Title) == "" || strings.TrimSpace(s.Content) == ""
}

// Opts configures a [Session].
type Opts struct {
	Interval time.Duration // autosave cadence, DefaultInterval when zero
	OnSaved  func()        // invoked after every confirmed persist so the host can refresh its list
}

// Session is the autosave state machine for one composer or edit-modal interaction.
type Session struct {
	store    Store
	interval time.Duration
	onSaved  func()

	mu      sync.Mutex
	mode    Mode
	diaryID string
	entryID string // draft row while composing, target row while editing
	latest  Snapshot
	dirty   bool
	saving  bool
	stop    chan struct{}
}

// NewSession creates an idle session bound to a store.
func NewSession(store Store, opts Opts) *Session {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	return &Session{
		store:    store,
		interval: opts.Interval,
		onSaved:  opts.OnSaved,
	}
}

// Open begins a compose session for a new entry in the given diary. When the
// diary holds a draft, the newest one is resumed: its fields prefill the
// snapshot and later autosaves update that same row, keeping the diary at a
// single draft. The restored snapshot is returned for the host's form fields;
// restoring does not mark the session dirty.
func (s *Session) Open(ctx context.Context, diaryID string) (Snapshot, error) {
	draft, err := s.store.LatestDraft(ctx, diaryID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to restore draft: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.mode = ModeCompose
	s.diaryID = diaryID
	s.entryID = ""
	s.latest = Snapshot{}
	s.dirty = false
	s.saving = false

	if draft != nil {
		s.entryID = draft.ID
		s.latest = Snapshot{Title: draft.Title, Content: draft.Content}
	}

	return s.latest, nil
}

// OpenEntry begins an edit session on an existing entry. Autosaves update
// the row directly; the draft flag is never touched.
func (s *Session) OpenEntry(entry models.Entry) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mode = ModeEdit
	s.diaryID = entry.DiaryID
	s.entryID = entry.ID
	s.latest = Snapshot{Title: entry.Title, Content: entry.Content}
	s.dirty = false
	s.saving = false

	return s.latest
}

// SetInput records the current form values into the latest-value cell and
// marks the session dirty. Called synchronously on every input event so the
// autosave tick always observes the newest keystroke.
func (s *Session) SetInput(title, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode == ModeIdle {
		return
	}
	next := Snapshot{Title: title, Content: content}
	if next == s.latest {
		return
	}
	s.latest = next
	s.dirty = true
}

// Mode returns the session's current mode.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Dirty reports whether unsaved changes exist. Hosts consult this before any
// action that would discard input and prompt for confirmation when true.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// EntryID returns the row the session is bound to: the draft created by the
// first autosave while composing, or the edited entry's id. Empty while a new
// entry has not been persisted yet.
func (s *Session) EntryID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entryID
}

// Snapshot returns the latest form values.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// Autosave persists the latest snapshot if the session is dirty. It is a
// no-op (not an error) when the session is clean, a save is already in
// flight, or either field is blank. The first save of a compose session
// creates a draft row and remembers its id; every later save updates that
// row. Edit sessions always update the existing row.
//
// Returns true when a save was performed.
func (s *Session) Autosave(ctx context.Context) (bool, error) {
	s.mu.Lock()
	if s.mode == ModeIdle || !s.dirty || s.saving {
		s.mu.Unlock()
		return false, nil
	}
	snap := s.latest
	if snap.blank() {
		s.mu.Unlock()
		return false, nil
	}
	s.saving = true
	mode, diaryID, entryID := s.mode, s.diaryID, s.entryID
	s.mu.Unlock()

	var created string
	err := func() error {
		if mode == ModeEdit || entryID != "" {
			return s.store.UpdateEntry(ctx, entryID, snap.Title, snap.Content)
		}

		// Check-then-act against a draft another device may have written
		// since Open, keeping the diary at one draft.
		if existing, err := s.store.LatestDraft(ctx, diaryID); err == nil && existing != nil {
			created = existing.ID
			return s.store.UpdateEntry(ctx, existing.ID, snap.Title, snap.Content)
		}

		row, err := s.store.CreateEntry(ctx, diaryID, snap.Title, snap.Content, true)
		if err != nil {
			return err
		}
		created = row.ID
		return nil
	}()

	s.mu.Lock()
	s.saving = false
	if err != nil {
		s.mu.Unlock()
		return false, fmt.Errorf("autosave failed: %w", err)
	}
	if created != "" && s.mode == ModeCompose {
		s.entryID = created
	}
	// Only clear the flag when nothing changed during the save; newer
	// keystrokes stay dirty for the next tick.
	if s.latest == snap {
		s.dirty = false
	}
	onSaved := s.onSaved
	s.mu.Unlock()

	if onSaved != nil {
		onSaved()
	}
	return true, nil
}

// Publish finalizes a compose session. Requires non-empty title and content.
// With a draft row in hand it promotes that row, clearing its draft flag;
// otherwise it inserts a published row directly. Success resets the session.
// A second Publish while one is in flight is rejected, so a repeated submit
// keystroke cannot insert a duplicate row.
func (s *Session) Publish(ctx context.Context) error {
	s.mu.Lock()
	if s.mode != ModeCompose {
		s.mu.Unlock()
		return fmt.Errorf("%w: no composer open", shared.ErrInvalidInput)
	}
	if s.saving {
		s.mu.Unlock()
		return shared.ErrSaveInFlight
	}
	snap := s.latest
	diaryID, entryID := s.diaryID, s.entryID
	if strings.TrimSpace(snap.Title) == "" {
		s.mu.Unlock()
		return shared.ErrEmptyTitle
	}
	if strings.TrimSpace(snap.Content) == "" {
		s.mu.Unlock()
		return shared.ErrEmptyContent
	}
	s.saving = true
	s.mu.Unlock()

	var err error
	if entryID != "" {
		err = s.store.PublishEntry(ctx, entryID, snap.Title, snap.Content)
	} else {
		_, err = s.store.CreateEntry(ctx, diaryID, snap.Title, snap.Content, false)
	}
	if err != nil {
		s.mu.Lock()
		s.saving = false
		s.mu.Unlock()
		return fmt.Errorf("publish failed: %w", err)
	}

	s.reset()
	if s.onSaved != nil {
		s.onSaved()
	}
	return nil
}

// Save finalizes an edit session by rewriting the entry. Requires non-empty
// title and content; the draft flag is untouched. Success resets the session.
// Like Publish, an overlapping Save is rejected while one is in flight.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	if s.mode != ModeEdit {
		s.mu.Unlock()
		return fmt.Errorf("%w: no entry open for editing", shared.ErrInvalidInput)
	}
	if s.saving {
		s.mu.Unlock()
		return shared.ErrSaveInFlight
	}
	snap := s.latest
	entryID := s.entryID
	if strings.TrimSpace(snap.Title) == "" {
		s.mu.Unlock()
		return shared.ErrEmptyTitle
	}
	if strings.TrimSpace(snap.Content) == "" {
		s.mu.Unlock()
		return shared.ErrEmptyContent
	}
	s.saving = true
	s.mu.Unlock()

	if err := s.store.UpdateEntry(ctx, entryID, snap.Title, snap.Content); err != nil {
		s.mu.Lock()
		s.saving = false
		s.mu.Unlock()
		return fmt.Errorf("save failed: %w", err)
	}

	s.reset()
	if s.onSaved != nil {
		s.onSaved()
	}
	return nil
}

// Discard abandons the session without persisting. The host is responsible
// for prompting when Dirty reports true; Discard itself never blocks.
func (s *Session) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Session) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Session) resetLocked() {
	s.mode = ModeIdle
	s.diaryID = ""
	s.entryID = ""
	s.latest = Snapshot{}
	s.dirty = false
	s.saving = false
}

// Start launches the periodic autosave loop. Each tick calls Autosave with
// the given context; errors are delivered to onErr when non-nil and do not
// stop the loop. Close stops the loop. Hosts that drive ticks themselves
// (the TUI uses its own tick messages) skip Start and call Autosave directly.
func (s *Session) Start(ctx context.Context, onErr func(error)) {
	s.mu.Lock()
	if s.stop != nil {
		s.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	s.stop = stop
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-stop:
				return
			case <-ticker.C:
				if _, err := s.Autosave(ctx); err != nil && onErr != nil {
					onErr(err)
				}
			}
		}
	}()
}

// Interval returns the autosave cadence.
func (s *Session) Interval() time.Duration {
	return s.interval
}

// Close stops the autosave loop if one is running. Safe to call on every
// exit path; it does not reset session state.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
}
