package models

import (
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// Diary represents a journal row from the hosted collaborator.
type Diary struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// Entry represents an entry row from the hosted collaborator.
//
// An entry is a draft until published; publishing clears IsDraft exactly once
// and an entry is never re-marked as a draft.
type Entry struct {
	ID        string    `json:"id"`
	DiaryID   string    `json:"diary_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	IsDraft   bool      `json:"is_draft"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Blank reports whether the entry has no usable title or content.
// Autosave skips blank entries instead of erroring.
func (e Entry) Blank() bool {
	return strings.TrimSpace(e.Title) == "" || strings.TrimSpace(e.Content) == ""
}

// Session represents an authenticated account session.
//
// Token carries the access/refresh credential pair and its expiry; the
// Supabase client refreshes it transparently when expired.
type Session struct {
	UserID string
	Email  string
	Token  *oauth2.Token
}

// Valid reports whether the session holds a usable access token.
func (s *Session) Valid() bool {
	return s != nil && s.Token != nil && s.Token.Valid()
}

// Profile contains account metadata stored with the auth collaborator.
type Profile struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}
