// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/afterthoughts/internal/models"
	"github.com/desertthunder/afterthoughts/internal/services"
	"github.com/desertthunder/afterthoughts/internal/shared"
)

// MockJournalStore is an in-memory test double for [services.JournalStore].
//
// Rows live in maps guarded by a mutex so tests can drive it from timer and
// callback goroutines. Err* fields force the matching operation to fail.
type MockJournalStore struct {
	mu      sync.Mutex
	seq     int
	diaries map[string]models.Diary
	entries map[string]models.Entry
	calls   []string

	ErrListDiaries  error
	ErrCreateDiary  error
	ErrRenameDiary  error
	ErrDeleteDiary  error
	ErrListEntries  error
	ErrLatestDraft  error
	ErrCreateEntry  error
	ErrUpdateEntry  error
	ErrPublishEntry error
	ErrDeleteEntry  error

	// FailDeleteEntryID aborts the cascade mid-run when set.
	FailDeleteEntryID string
}

// NewMockJournalStore creates an empty in-memory store.
func NewMockJournalStore() *MockJournalStore {
	return &MockJournalStore{
		diaries: make(map[string]models.Diary),
		entries: make(map[string]models.Entry),
	}
}

// Calls returns the operation log in invocation order.
func (m *MockJournalStore) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// SeedDiary inserts a diary row directly.
func (m *MockJournalStore) SeedDiary(d models.Diary) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.diaries[d.ID] = d
}

// SeedEntry inserts an entry row directly.
func (m *MockJournalStore) SeedEntry(e models.Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[e.ID] = e
}

// Entry returns an entry row and whether it exists.
func (m *MockJournalStore) Entry(id string) (models.Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	return e, ok
}

// Diary returns a diary row and whether it exists.
func (m *MockJournalStore) Diary(id string) (models.Diary, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.diaries[id]
	return d, ok
}

// EntryCount returns the number of stored entries.
func (m *MockJournalStore) EntryCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *MockJournalStore) record(call string) { m.calls = append(m.calls, call) }

func (m *MockJournalStore) nextID() string {
	m.seq++
	return fmt.Sprintf("id-%d", m.seq)
}

func (m *MockJournalStore) ListDiaries(ctx context.Context, userID string) ([]models.Diary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("ListDiaries")
	if m.ErrListDiaries != nil {
		return nil, m.ErrListDiaries
	}
	var out []models.Diary
	for _, d := range m.diaries {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *MockJournalStore) CreateDiary(ctx context.Context, userID, title string) (*models.Diary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("CreateDiary")
	if m.ErrCreateDiary != nil {
		return nil, m.ErrCreateDiary
	}
	d := models.Diary{ID: m.nextID(), UserID: userID, Title: title, CreatedAt: time.Now()}
	m.diaries[d.ID] = d
	return &d, nil
}

func (m *MockJournalStore) RenameDiary(ctx context.Context, diaryID, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("RenameDiary")
	if m.ErrRenameDiary != nil {
		return m.ErrRenameDiary
	}
	d, ok := m.diaries[diaryID]
	if !ok {
		return shared.ErrDiaryNotFound
	}
	d.Title = title
	m.diaries[diaryID] = d
	return nil
}

func (m *MockJournalStore) DeleteDiary(ctx context.Context, diaryID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("DeleteDiary " + diaryID)
	if m.ErrDeleteDiary != nil {
		return m.ErrDeleteDiary
	}
	if _, ok := m.diaries[diaryID]; !ok {
		return shared.ErrDiaryNotFound
	}
	delete(m.diaries, diaryID)
	return nil
}

func (m *MockJournalStore) ListEntries(ctx context.Context, diaryID string) ([]models.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("ListEntries")
	if m.ErrListEntries != nil {
		return nil, m.ErrListEntries
	}
	var out []models.Entry
	for _, e := range m.entries {
		if e.DiaryID == diaryID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MockJournalStore) LatestDraft(ctx context.Context, diaryID string) (*models.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("LatestDraft")
	if m.ErrLatestDraft != nil {
		return nil, m.ErrLatestDraft
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

func (m *MockJournalStore) CreateEntry(ctx context.Context, diaryID, title, content string, draft bool) (*models.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("CreateEntry")
	if m.ErrCreateEntry != nil {
		return nil, m.ErrCreateEntry
	}
	now := time.Now()
	e := models.Entry{ID: m.nextID(), DiaryID: diaryID, Title: title, Content: content, IsDraft: draft, CreatedAt: now, UpdatedAt: now}
	m.entries[e.ID] = e
	return &e, nil
}

func (m *MockJournalStore) UpdateEntry(ctx context.Context, entryID, title, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("UpdateEntry")
	if m.ErrUpdateEntry != nil {
		return m.ErrUpdateEntry
	}
	e, ok := m.entries[entryID]
	if !ok {
		return shared.ErrEntryNotFound
	}
	e.Title = title
	e.Content = content
	e.UpdatedAt = time.Now()
	m.entries[entryID] = e
	return nil
}

func (m *MockJournalStore) PublishEntry(ctx context.Context, entryID, title, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("PublishEntry")
	if m.ErrPublishEntry != nil {
		return m.ErrPublishEntry
	}
	e, ok := m.entries[entryID]
	if !ok {
		return shared.ErrEntryNotFound
	}
	e.Title = title
	e.Content = content
	e.IsDraft = false
	e.UpdatedAt = time.Now()
	m.entries[entryID] = e
	return nil
}

func (m *MockJournalStore) DeleteEntry(ctx context.Context, entryID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("DeleteEntry " + entryID)
	if m.ErrDeleteEntry != nil {
		return m.ErrDeleteEntry
	}
	if m.FailDeleteEntryID == entryID {
		return errors.New("delete rejected")
	}
	if _, ok := m.entries[entryID]; !ok {
		return shared.ErrEntryNotFound
	}
	delete(m.entries, entryID)
	return nil
}

// MockAuthenticator is a test double for [services.Authenticator].
type MockAuthenticator struct {
	mu        sync.Mutex
	session   *models.Session
	listeners map[int]func(*models.Session)
	nextID    int

	ErrSignIn  error
	ErrCurrent error
}

// NewMockAuthenticator creates an authenticator holding the given session (nil means signed out).
func NewMockAuthenticator(session *models.Session) *MockAuthenticator {
	return &MockAuthenticator{session: session, listeners: make(map[int]func(*models.Session))}
}

func (m *MockAuthenticator) SignIn(ctx context.Context, creds models.Credentials) (*models.Session, error) {
	if m.ErrSignIn != nil {
		return nil, m.ErrSignIn
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session, nil
}

func (m *MockAuthenticator) SignUp(ctx context.Context, form models.SignupForm) error { return nil }

func (m *MockAuthenticator) SignOut(ctx context.Context) error {
	m.Broadcast(nil)
	return nil
}

func (m *MockAuthenticator) CurrentSession(ctx context.Context) (*models.Session, error) {
	if m.ErrCurrent != nil {
		return nil, m.ErrCurrent
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil, shared.ErrNotAuthenticated
	}
	return m.session, nil
}

func (m *MockAuthenticator) UpdateProfile(ctx context.Context, profile models.Profile) error {
	return nil
}

func (m *MockAuthenticator) OnAuthChange(fn func(*models.Session)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := m.nextID
	m.listeners[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	}
}

// Broadcast pushes a session change to every listener, as the real collaborator would.
func (m *MockAuthenticator) Broadcast(session *models.Session) {
	m.mu.Lock()
	m.session = session
	fns := make([]func(*models.Session), 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.mu.Unlock()
	for _, fn := range fns {
		fn(session)
	}
}

// MockSpeechSession is a controllable test double for [services.SpeechSession].
type MockSpeechSession struct {
	mu        sync.Mutex
	handler   services.SessionHandler
	Stopped   int
	Cancelled int
}

func (s *MockSpeechSession) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Stopped++
	return nil
}

func (s *MockSpeechSession) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Cancelled++
	return nil
}

// Emit delivers a result to the session's handler.
func (s *MockSpeechSession) Emit(res services.Result) {
	if s.handler.OnResult != nil {
		s.handler.OnResult(res)
	}
}

// Fail delivers an error to the session's handler.
func (s *MockSpeechSession) Fail(err error) {
	if s.handler.OnError != nil {
		s.handler.OnError(err)
	}
}

// MockSpeechProvider is a test double for [services.SpeechProvider].
type MockSpeechProvider struct {
	mu       sync.Mutex
	sessions []*MockSpeechSession

	ErrKey  error
	ErrDial error
}

func (p *MockSpeechProvider) TemporaryKey(ctx context.Context) (string, error) {
	if p.ErrKey != nil {
		return "", p.ErrKey
	}
	return "temp-key", nil
}

func (p *MockSpeechProvider) Dial(ctx context.Context, apiKey string, handler services.SessionHandler) (services.SpeechSession, error) {
	if p.ErrDial != nil {
		return nil, p.ErrDial
	}
	session := &MockSpeechSession{handler: handler}
	p.mu.Lock()
	p.sessions = append(p.sessions, session)
	p.mu.Unlock()
	if handler.OnStarted != nil {
		handler.OnStarted()
	}
	return session, nil
}

// Session returns the nth dialed session.
func (p *MockSpeechProvider) Session(n int) *MockSpeechSession {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n >= len(p.sessions) {
		return nil
	}
	return p.sessions[n]
}

// DialCount returns how many sessions were opened.
func (p *MockSpeechProvider) DialCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sessions)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

var _ io.ReadCloser = (*FCloser)(nil)

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
