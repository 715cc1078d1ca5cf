package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/afterthoughts/internal/editor"
	"github.com/desertthunder/afterthoughts/internal/models"
	"github.com/desertthunder/afterthoughts/internal/tasks"
	"github.com/desertthunder/afterthoughts/internal/voice"
)

// sessionResolvedMsg carries the result of the startup session check.
type sessionResolvedMsg struct {
	session *models.Session
	err     error
}

// signedInMsg carries the result of a sign-in attempt.
type signedInMsg struct {
	session *models.Session
	err     error
}

// signedUpMsg carries the result of a sign-up attempt.
type signedUpMsg struct {
	err error
}

// signedOutMsg reports that the session ended, locally or remotely.
type signedOutMsg struct{}

// diariesFetchedMsg carries a refreshed diary list.
type diariesFetchedMsg struct {
	diaries []models.Diary
	err     error
}

// entriesFetchedMsg carries a refreshed entry list for the open diary.
type entriesFetchedMsg struct {
	entries []models.Entry
	err     error
}

// diaryCreatedMsg carries a newly created diary row.
type diaryCreatedMsg struct {
	diary *models.Diary
	err   error
}

// diaryRenamedMsg reports the outcome of a rename.
type diaryRenamedMsg struct {
	err error
}

// composerOpenedMsg carries the restored draft snapshot for the form fields.
type composerOpenedMsg struct {
	snapshot editor.Snapshot
	editing  bool
	err      error
}

// eventMsg wraps messages originating on callback goroutines (dictation,
// auth changes, idle expiry). The pump re-arms itself once per delivery.
type eventMsg struct {
	inner tea.Msg
}

// autosaveTickMsg fires on the autosave cadence while a composer is open.
// The generation guards against stale ticks from a previously closed composer.
type autosaveTickMsg struct {
	gen int
}

// autosavedMsg reports the outcome of one autosave pass.
type autosavedMsg struct {
	saved bool
	err   error
}

// publishedMsg reports the outcome of a publish or edit-save.
type publishedMsg struct {
	err error
}

// entryDeletedMsg reports the outcome of a single entry delete.
type entryDeletedMsg struct {
	err error
}

// cascadeProgressMsg carries one step of a cascade delete.
type cascadeProgressMsg tasks.ProgressUpdate

// cascadeDoneMsg reports cascade completion.
type cascadeDoneMsg struct {
	result *tasks.CascadeResult
	err    error
}

// voiceEventKind enumerates recorder callbacks arriving over the voice channel.
type voiceEventKind int

const (
	voiceTranscript voiceEventKind = iota
	voiceState
	voiceError
)

// voiceEventMsg carries a recorder callback into the update loop.
type voiceEventMsg struct {
	kind    voiceEventKind
	content string
	state   voice.State
	message string
}
