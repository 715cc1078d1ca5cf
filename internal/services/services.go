// package services defines interfaces for the hosted collaborators
//
// Supabase (auth + rows), Soniox (realtime speech-to-text)
package services

import (
	"context"

	"github.com/desertthunder/afterthoughts/internal/models"
)

// Authenticator defines account session operations against the hosted auth collaborator.
type Authenticator interface {
	// SignIn exchanges email/password credentials for a session.
	SignIn(ctx context.Context, creds models.Credentials) (*models.Session, error)

	// SignUp creates an account. Responses that merely indicate a pending
	// email confirmation are treated as success.
	SignUp(ctx context.Context, form models.SignupForm) error

	// SignOut revokes the current session.
	SignOut(ctx context.Context) error

	// CurrentSession returns a valid session, refreshing an expired token
	// when a refresh token is held. Returns shared.ErrNotAuthenticated
	// when no session exists.
	CurrentSession(ctx context.Context) (*models.Session, error)

	// UpdateProfile writes first/last name into account metadata.
	UpdateProfile(ctx context.Context, profile models.Profile) error

	// OnAuthChange registers a listener invoked with the new session on
	// sign-in and refresh, and with nil on sign-out. The returned function
	// unsubscribes the listener.
	OnAuthChange(fn func(*models.Session)) (unsubscribe func())
}

// JournalStore defines row operations for diaries and entries.
// Ownership is enforced by the collaborator's row-level access policy, not here.
type JournalStore interface {
	ListDiaries(ctx context.Context, userID string) ([]models.Diary, error)
	CreateDiary(ctx context.Context, userID, title string) (*models.Diary, error)
	RenameDiary(ctx context.Context, diaryID, title string) error
	DeleteDiary(ctx context.Context, diaryID string) error

	ListEntries(ctx context.Context, diaryID string) ([]models.Entry, error)
	// LatestDraft returns the most recently updated draft for a diary, or nil when none exists.
	LatestDraft(ctx context.Context, diaryID string) (*models.Entry, error)
	CreateEntry(ctx context.Context, diaryID, title, content string, draft bool) (*models.Entry, error)
	UpdateEntry(ctx context.Context, entryID, title, content string) error
	// PublishEntry updates a row and clears its draft flag. A published
	// entry is never re-marked as a draft.
	PublishEntry(ctx context.Context, entryID, title, content string) error
	DeleteEntry(ctx context.Context, entryID string) error
}

// Token is a single transcript fragment from the speech collaborator.
// Non-final tokens are provisional and may be revised; only final tokens
// are accumulated by the voice adapter.
type Token struct {
	Text    string `json:"text"`
	IsFinal bool   `json:"is_final"`
}

// Result is a partial transcription result composed of tokens.
type Result struct {
	Tokens []Token `json:"tokens"`
}

// SessionHandler carries the callbacks a speech session invokes during its lifetime.
// Any callback may be nil.
type SessionHandler struct {
	OnStarted  func()          // connection established, audio may flow
	OnResult   func(Result)    // partial result received
	OnFinished func()          // collaborator finalized the stream
	OnError    func(err error) // connection or protocol failure
}

// SpeechSession is a live streaming transcription connection.
type SpeechSession interface {
	// Stop requests graceful finalization; remaining buffered audio is transcribed.
	Stop() error
	// Cancel tears the connection down immediately without finalization.
	Cancel() error
}

// SpeechProvider issues short-lived credentials and opens streaming sessions.
type SpeechProvider interface {
	// TemporaryKey obtains a short-lived API key (valid ~60 seconds).
	TemporaryKey(ctx context.Context) (string, error)
	// Dial opens a streaming session authenticated with the given key.
	Dial(ctx context.Context, apiKey string, handler SessionHandler) (SpeechSession, error)
}
