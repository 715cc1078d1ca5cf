package models

import (
	"fmt"
	"strings"
	"time"
)

// CachedDiary is a locally persisted mirror of a remote [Diary] row.
// Implements [Model] with soft delete support.
type CachedDiary struct {
	id        string
	sequence  int
	userID    string
	title     string
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewCachedDiary builds a cache row from a remote diary.
func NewCachedDiary(d Diary) *CachedDiary {
	now := time.Now()
	return &CachedDiary{
		id:        d.ID,
		userID:    d.UserID,
		title:     d.Title,
		createdAt: d.CreatedAt,
		updatedAt: now,
	}
}

func (d *CachedDiary) ID() string            { return d.id }
func (d *CachedDiary) Sequence() int         { return d.sequence }
func (d *CachedDiary) UserID() string        { return d.userID }
func (d *CachedDiary) Title() string         { return d.title }
func (d *CachedDiary) CreatedAt() time.Time  { return d.createdAt }
func (d *CachedDiary) UpdatedAt() time.Time  { return d.updatedAt }
func (d *CachedDiary) DeletedAt() *time.Time { return d.deletedAt }

func (d *CachedDiary) SetID(id string)           { d.id = id }
func (d *CachedDiary) SetSequence(seq int)       { d.sequence = seq }
func (d *CachedDiary) SetTitle(title string)     { d.title = title }
func (d *CachedDiary) SetCreatedAt(t time.Time)  { d.createdAt = t }
func (d *CachedDiary) SetUpdatedAt(t time.Time)  { d.updatedAt = t }
func (d *CachedDiary) SetDeletedAt(t *time.Time) { d.deletedAt = t }
func (d *CachedDiary) SetUserID(userID string)   { d.userID = userID }

// Validate checks cache row invariants before persistence.
func (d *CachedDiary) Validate() error {
	if d.id == "" {
		return fmt.Errorf("diary id is required")
	}
	if d.userID == "" {
		return fmt.Errorf("diary user_id is required")
	}
	if strings.TrimSpace(d.title) == "" {
		return fmt.Errorf("diary title is required")
	}
	return nil
}

// Remote converts the cache row back to its remote representation.
func (d *CachedDiary) Remote() Diary {
	return Diary{ID: d.id, UserID: d.userID, Title: d.title, CreatedAt: d.createdAt}
}

// CachedEntry is a locally persisted mirror of a remote [Entry] row.
// Implements [Model] with soft delete support.
type CachedEntry struct {
	id        string
	sequence  int
	diaryID   string
	title     string
	content   string
	isDraft   bool
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewCachedEntry builds a cache row from a remote entry.
func NewCachedEntry(e Entry) *CachedEntry {
	return &CachedEntry{
		id:        e.ID,
		diaryID:   e.DiaryID,
		title:     e.Title,
		content:   e.Content,
		isDraft:   e.IsDraft,
		createdAt: e.CreatedAt,
		updatedAt: e.UpdatedAt,
	}
}

func (e *CachedEntry) ID() string            { return e.id }
func (e *CachedEntry) Sequence() int         { return e.sequence }
func (e *CachedEntry) DiaryID() string       { return e.diaryID }
func (e *CachedEntry) Title() string         { return e.title }
func (e *CachedEntry) Content() string       { return e.content }
func (e *CachedEntry) IsDraft() bool         { return e.isDraft }
func (e *CachedEntry) CreatedAt() time.Time  { return e.createdAt }
func (e *CachedEntry) UpdatedAt() time.Time  { return e.updatedAt }
func (e *CachedEntry) DeletedAt() *time.Time { return e.deletedAt }

func (e *CachedEntry) SetID(id string)           { e.id = id }
func (e *CachedEntry) SetSequence(seq int)       { e.sequence = seq }
func (e *CachedEntry) SetTitle(title string)     { e.title = title }
func (e *CachedEntry) SetContent(content string) { e.content = content }
func (e *CachedEntry) SetIsDraft(d bool)         { e.isDraft = d }
func (e *CachedEntry) SetCreatedAt(t time.Time)  { e.createdAt = t }
func (e *CachedEntry) SetUpdatedAt(t time.Time)  { e.updatedAt = t }
func (e *CachedEntry) SetDeletedAt(t *time.Time) { e.deletedAt = t }
func (e *CachedEntry) SetDiaryID(id string)      { e.diaryID = id }

// Validate checks cache row invariants before persistence.
func (e *CachedEntry) Validate() error {
	if e.id == "" {
		return fmt.Errorf("entry id is required")
	}
	if e.diaryID == "" {
		return fmt.Errorf("entry diary_id is required")
	}
	if strings.TrimSpace(e.content) == "" {
		return fmt.Errorf("entry content is required")
	}
	return nil
}

// Remote converts the cache row back to its remote representation.
func (e *CachedEntry) Remote() Entry {
	return Entry{
		ID:        e.id,
		DiaryID:   e.diaryID,
		Title:     e.title,
		Content:   e.content,
		IsDraft:   e.isDraft,
		CreatedAt: e.createdAt,
		UpdatedAt: e.updatedAt,
	}
}
