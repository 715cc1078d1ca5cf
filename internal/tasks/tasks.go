package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/afterthoughts/internal/models"
	"github.com/desertthunder/afterthoughts/internal/services"
	"github.com/desertthunder/afterthoughts/internal/shared"
)

// CascadeResult contains all data from a cascade delete operation.
type CascadeResult struct {
	DiaryID        string // Deleted diary
	DeletedEntries int    // Child rows removed before the parent
	TotalEntries   int    // Child rows found at the start
}

// SyncResult contains counts from a cache synchronization run.
type SyncResult struct {
	Diaries int // Diaries cached
	Entries int // Entries cached across all diaries
}

// DiaryDump is one diary with its entries, used by journal exports.
type DiaryDump struct {
	Diary   models.Diary   `json:"diary"`
	Entries []models.Entry `json:"entries"`
}

// DumpResult contains the full journal for a user.
type DumpResult struct {
	UserID  string      `json:"user_id"`
	Diaries []DiaryDump `json:"diaries"`
	Errors  []string    `json:"errors,omitempty"`
}

// DiaryCache mirrors remote diary rows locally.
type DiaryCache interface {
	Replace(userID string, diaries []models.Diary) error
}

// EntryCache mirrors remote entry rows locally.
type EntryCache interface {
	ReplaceForDiary(diaryID string, entries []models.Entry) error
}

// JournalEngine defines multi-step operations over the journal row store.
type JournalEngine interface {
	// DeleteDiary removes a diary and all of its entries. Children are
	// deleted before the parent; a child failure aborts the run and leaves
	// the diary intact.
	DeleteDiary(ctx context.Context, progress chan<- ProgressUpdate, diaryID string) (*CascadeResult, error)

	// SyncCache refreshes the local cache from the row store.
	SyncCache(ctx context.Context, progress chan<- ProgressUpdate, userID string) (*SyncResult, error)

	// Dump collects every diary and entry for a user.
	Dump(ctx context.Context, progress chan<- ProgressUpdate, userID string) (*DumpResult, error)
}

// Engine implements JournalEngine against a hosted row store with an optional local cache.
type Engine struct {
	store   services.JournalStore
	diaries DiaryCache
	entries EntryCache
}

// NewEngine creates an Engine. The caches may be nil, in which case SyncCache is unavailable.
func NewEngine(store services.JournalStore, diaries DiaryCache, entries EntryCache) *Engine {
	return &Engine{store: store, diaries: diaries, entries: entries}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// DeleteDiary removes a diary and its entries, children first.
//
// The row store has no server-side cascade, so each child is deleted
// individually. Any child failure aborts the run before the parent delete;
// the diary stays listable with its surviving entries.
func (e *Engine) DeleteDiary(ctx context.Context, progress chan<- ProgressUpdate, diaryID string) (*CascadeResult, error) {
	if e.store == nil {
		return nil, fmt.Errorf("%w: journal store not initialized", shared.ErrServiceUnavailable)
	}

	result := &CascadeResult{DiaryID: diaryID}

	e.sendProgress(progress, fetchEntriesUpdate(1, 1))
	entries, err := e.store.ListEntries(ctx, diaryID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list entries: %v", shared.ErrAPIRequest, err)
	}
	result.TotalEntries = len(entries)

	for i, entry := range entries {
		e.sendProgress(progress, deleteEntryUpdate(i+1, len(entries), entry))
		if err := e.store.DeleteEntry(ctx, entry.ID); err != nil {
			return result, fmt.Errorf("%w: failed to delete entry %s: %v", shared.ErrAPIRequest, entry.ID, err)
		}
		result.DeletedEntries++
	}

	e.sendProgress(progress, deleteDiaryUpdate(1, 1, diaryID))
	if err := e.store.DeleteDiary(ctx, diaryID); err != nil {
		return result, fmt.Errorf("%w: failed to delete diary: %v", shared.ErrAPIRequest, err)
	}

	return result, nil
}

// SyncCache replaces the local cache with the row store's current contents.
func (e *Engine) SyncCache(ctx context.Context, progress chan<- ProgressUpdate, userID string) (*SyncResult, error) {
	if e.store == nil {
		return nil, fmt.Errorf("%w: journal store not initialized", shared.ErrServiceUnavailable)
	}
	if e.diaries == nil || e.entries == nil {
		return nil, fmt.Errorf("%w: local cache not initialized", shared.ErrServiceUnavailable)
	}

	result := &SyncResult{}

	e.sendProgress(progress, fetchDiariesUpdate(1, 1))
	diaries, err := e.store.ListDiaries(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list diaries: %v", shared.ErrAPIRequest, err)
	}

	e.sendProgress(progress, syncDiariesUpdate(1, 1, len(diaries)))
	if err := e.diaries.Replace(userID, diaries); err != nil {
		return nil, fmt.Errorf("failed to cache diaries: %w", err)
	}
	result.Diaries = len(diaries)

	for i, diary := range diaries {
		e.sendProgress(progress, syncEntriesUpdate(i+1, len(diaries), diary.Title))
		entries, err := e.store.ListEntries(ctx, diary.ID)
		if err != nil {
			return result, fmt.Errorf("%w: failed to list entries for %s: %v", shared.ErrAPIRequest, diary.ID, err)
		}
		if err := e.entries.ReplaceForDiary(diary.ID, entries); err != nil {
			return result, fmt.Errorf("failed to cache entries for %s: %w", diary.ID, err)
		}
		result.Entries += len(entries)
	}

	return result, nil
}

// Dump collects every diary with its entries. Per-diary fetch failures are
// recorded and the run continues, so a partial dump is still useful.
func (e *Engine) Dump(ctx context.Context, progress chan<- ProgressUpdate, userID string) (*DumpResult, error) {
	if e.store == nil {
		return nil, fmt.Errorf("%w: journal store not initialized", shared.ErrServiceUnavailable)
	}

	result := &DumpResult{UserID: userID}

	e.sendProgress(progress, fetchDiariesUpdate(1, 1))
	diaries, err := e.store.ListDiaries(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list diaries: %v", shared.ErrAPIRequest, err)
	}

	for i, diary := range diaries {
		e.sendProgress(progress, dumpDiaryUpdate(i+1, len(diaries), diary.Title))
		entries, err := e.store.ListEntries(ctx, diary.ID)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", diary.ID, err))
			continue
		}
		result.Diaries = append(result.Diaries, DiaryDump{Diary: diary, Entries: entries})
	}

	return result, nil
}
