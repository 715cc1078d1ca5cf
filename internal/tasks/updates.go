package tasks

import (
	"fmt"

	"github.com/desertthunder/afterthoughts/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchEntries Phase = iota
	DeleteEntries
	DeleteDiary
	FetchDiaries
	SyncDiaries
	SyncEntries
	DumpJournal
)

func (p Phase) String() string {
	switch p {
	case FetchEntries:
		return "fetch_entries"
	case DeleteEntries:
		return "delete_entries"
	case DeleteDiary:
		return "delete_diary"
	case FetchDiaries:
		return "fetch_diaries"
	case SyncDiaries:
		return "sync_diaries"
	case SyncEntries:
		return "sync_entries"
	case DumpJournal:
		return "dump_journal"
	default:
		return ""
	}
}

func fetchEntriesUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchEntries,
		Step:    step,
		Total:   total,
		Message: "Fetching diary entries...",
	}
}

func deleteEntryUpdate(step, total int, entry models.Entry) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DeleteEntries,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Deleting entry %s...", step, total, entry.ID),
	}
}

func deleteDiaryUpdate(step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DeleteDiary,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Deleting diary: %s", title),
	}
}

func fetchDiariesUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchDiaries,
		Step:    step,
		Total:   total,
		Message: "Fetching diaries...",
	}
}

func syncDiariesUpdate(step, total int, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SyncDiaries,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Caching %d diaries...", count),
	}
}

func syncEntriesUpdate(step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SyncEntries,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Caching entries: %s...", step, total, title),
	}
}

func dumpDiaryUpdate(step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DumpJournal,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Collecting: %s...", step, total, title),
	}
}
