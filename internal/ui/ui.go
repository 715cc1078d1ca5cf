package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/afterthoughts/internal/editor"
	"github.com/desertthunder/afterthoughts/internal/models"
	"github.com/desertthunder/afterthoughts/internal/services"
	"github.com/desertthunder/afterthoughts/internal/session"
	"github.com/desertthunder/afterthoughts/internal/tasks"
	"github.com/desertthunder/afterthoughts/internal/voice"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LoginView ViewState = iota
	SignupView
	DiaryListView
	EntryListView
	ComposerView
	DiaryFormView
	ConfirmView
	DeleteView
)

// confirmKind identifies what a ConfirmView "y" applies to.
type confirmKind int

const (
	confirmNone confirmKind = iota
	confirmDiscard
	confirmDeleteDiary
	confirmDeleteEntry
)

// Prefs persists small UI preferences across runs.
type Prefs interface {
	DarkMode() (bool, error)
	SetDarkMode(enabled bool) error
}

// Opts carries the collaborators a [Model] is built from.
type Opts struct {
	Auth   services.Authenticator
	Store  services.JournalStore
	Engine *tasks.Engine
	Speech services.SpeechProvider // nil disables dictation
	Prefs  Prefs                   // nil disables theme persistence

	AutosaveInterval time.Duration
	IdleTimeout      time.Duration
}

// Model represents the TUI application state.
type Model struct {
	ctx    context.Context
	view   ViewState
	auth   services.Authenticator
	store  services.JournalStore
	engine *tasks.Engine
	prefs  Prefs

	gate     *session.Gate
	idle     *session.IdleWatcher
	editor   *editor.Session
	recorder *voice.Recorder

	width  int
	height int
	dark   bool

	account *models.Session

	diaryList list.Model
	diaries   []models.Diary
	entryList list.Model
	entries   []models.Entry
	current   *models.Diary

	emailInput    textinput.Model
	passwordInput textinput.Model
	signupInputs  []textinput.Model
	termsAccepted bool
	focus         int

	titleInput textinput.Model
	bodyInput  textarea.Model
	editing    bool

	diaryInput textinput.Model
	renaming   *models.Diary

	confirm    confirmKind
	confirmFor ViewState
	target     string // row id the pending confirm applies to

	tickGen int

	progressChan  chan tasks.ProgressUpdate
	progress      tasks.ProgressUpdate
	cascadeResult *tasks.CascadeResult
	cascadeErr    error

	events chan tea.Msg

	voiceState voice.State
	voiceErr   string

	status string
	err    error
	help   help.Model
	keys   keyMap
}

// NewModel creates a new TUI model with the provided collaborators.
func NewModel(ctx context.Context, opts Opts) *Model {
	m := &Model{
		ctx:    ctx,
		view:   LoginView,
		auth:   opts.Auth,
		store:  opts.Store,
		engine: opts.Engine,
		prefs:  opts.Prefs,
		gate:   session.NewGate(opts.Auth),
		events: make(chan tea.Msg, 50),
		dark:   true,
		help:   help.New(),
		keys:   newKeyMap(),
	}

	m.editor = editor.NewSession(opts.Store, editor.Opts{Interval: opts.AutosaveInterval})
	m.idle = session.NewIdleWatcher(opts.IdleTimeout, func() {
		m.push(signedOutMsg{})
	})

	if opts.Speech != nil {
		m.recorder = voice.NewRecorder(opts.Speech, voice.Opts{
			OnTranscript: func(content string) {
				m.push(voiceEventMsg{kind: voiceTranscript, content: content})
			},
			OnStateChange: func(s voice.State) {
				m.push(voiceEventMsg{kind: voiceState, state: s})
			},
			OnError: func(message string) {
				m.push(voiceEventMsg{kind: voiceError, message: message})
			},
		})
	}

	if opts.Prefs != nil {
		if dark, err := opts.Prefs.DarkMode(); err == nil {
			m.dark = dark
		}
	}

	m.emailInput = newInput("email", false)
	m.emailInput.Focus()
	m.passwordInput = newInput("password", true)

	m.signupInputs = []textinput.Model{
		newInput("first name", false),
		newInput("last name", false),
		newInput("email", false),
		newInput("password", true),
		newInput("confirm password", true),
	}

	m.titleInput = newInput("title", false)
	m.bodyInput = textarea.New()
	m.bodyInput.Placeholder = "Write your thoughts..."
	m.diaryInput = newInput("diary title", false)

	return m
}

func newInput(placeholder string, secret bool) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	if secret {
		in.EchoMode = textinput.EchoPassword
	}
	return in
}

// push delivers a callback-origin message into the update loop without blocking.
func (m *Model) push(msg tea.Msg) {
	select {
	case m.events <- msg:
	default:
	}
}

func (m *Model) styles() *Palette {
	if m.dark {
		return darkStyles
	}
	return lightStyles
}

// Init resolves any persisted session and starts the event pump.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.resolveSession(), m.waitForEvent())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.diaryList.SetSize(msg.Width-4, msg.Height-8)
		m.entryList.SetSize(msg.Width-4, msg.Height-8)
		m.bodyInput.SetWidth(msg.Width - 4)
		m.bodyInput.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		m.idle.Touch()
		switch m.view {
		case LoginView:
			return m.handleLoginKeys(msg)
		case SignupView:
			return m.handleSignupKeys(msg)
		case DiaryListView:
			return m.handleDiaryListKeys(msg)
		case EntryListView:
			return m.handleEntryListKeys(msg)
		case ComposerView:
			return m.handleComposerKeys(msg)
		case DiaryFormView:
			return m.handleDiaryFormKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case DeleteView:
			return m, nil
		}

	case sessionResolvedMsg:
		if msg.err != nil || msg.session == nil {
			m.view = LoginView
			return m, nil
		}
		return m, m.enterSession(msg.session)

	case signedInMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.passwordInput.SetValue("")
		return m, m.enterSession(msg.session)

	case signedUpMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.status = "Account created. Check your email, then sign in."
		m.view = LoginView
		return m, nil

	case signedOutMsg:
		return m, m.leaveSession()

	case diariesFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.setDiaries(msg.diaries)
		return m, nil

	case entriesFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.setEntries(msg.entries)
		return m, nil

	case diaryCreatedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		// Prepend so the new diary is visible before the next refetch.
		m.setDiaries(append([]models.Diary{*msg.diary}, m.diaries...))
		m.view = DiaryListView
		return m, m.fetchDiaries()

	case diaryRenamedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.view = DiaryListView
		return m, m.fetchDiaries()

	case composerOpenedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.openComposer(msg.snapshot, msg.editing)
		return m, m.scheduleAutosave()

	case autosaveTickMsg:
		if m.view != ComposerView || msg.gen != m.tickGen {
			return m, nil
		}
		return m, tea.Batch(m.autosave(), m.scheduleAutosave())

	case autosavedMsg:
		if msg.err != nil {
			m.status = "Autosave failed"
			return m, nil
		}
		if msg.saved {
			m.status = "Draft saved"
			return m, m.fetchEntries()
		}
		return m, nil

	case publishedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.closeComposer()
		m.view = EntryListView
		return m, m.fetchEntries()

	case entryDeletedMsg:
		if msg.err != nil {
			m.err = msg.err
		}
		return m, m.fetchEntries()

	case cascadeProgressMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForCascade()

	case cascadeDoneMsg:
		if m.progressChan != nil {
			m.progressChan = nil
		}
		if msg.err != nil {
			m.err = msg.err
		}
		m.view = DiaryListView
		return m, m.fetchDiaries()

	case voiceEventMsg:
		return m.handleVoiceEvent(msg), nil

	case eventMsg:
		model, cmd := m.Update(msg.inner)
		return model, tea.Batch(cmd, m.waitForEvent())
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case LoginView:
		return m.renderLogin()
	case SignupView:
		return m.renderSignup()
	case DiaryListView:
		return m.renderDiaryList()
	case EntryListView:
		return m.renderEntryList()
	case ComposerView:
		return m.renderComposer()
	case DiaryFormView:
		return m.renderDiaryForm()
	case ConfirmView:
		return m.renderConfirm()
	case DeleteView:
		return m.renderDelete()
	default:
		return ""
	}
}

func (m *Model) setDiaries(diaries []models.Diary) {
	m.diaries = diaries
	items := make([]list.Item, len(diaries))
	for i, d := range diaries {
		items[i] = diaryItem{diary: d}
	}
	m.diaryList = list.New(items, list.NewDefaultDelegate(), 0, 0)
	m.diaryList.Title = "Diaries"
	m.diaryList.SetSize(m.width-4, m.height-8)
}

func (m *Model) setEntries(entries []models.Entry) {
	m.entries = entries
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = entryItem{entry: e}
	}
	m.entryList = list.New(items, list.NewDefaultDelegate(), 0, 0)
	title := "Entries"
	if m.current != nil {
		title = m.current.Title
	}
	m.entryList.Title = title
	m.entryList.SetSize(m.width-4, m.height-8)
}

func (m *Model) openComposer(snap editor.Snapshot, editing bool) {
	m.editing = editing
	m.titleInput.SetValue(snap.Title)
	m.bodyInput.SetValue(snap.Content)
	m.titleInput.Focus()
	m.bodyInput.Blur()
	m.focus = 0
	m.status = ""
	m.tickGen++
	m.view = ComposerView
}

func (m *Model) closeComposer() {
	if m.recorder != nil {
		m.recorder.Teardown()
		m.voiceState = voice.StateIdle
		m.voiceErr = ""
	}
	m.titleInput.SetValue("")
	m.bodyInput.SetValue("")
	m.status = ""
}

func (m *Model) handleVoiceEvent(msg voiceEventMsg) *Model {
	switch msg.kind {
	case voiceTranscript:
		m.bodyInput.SetValue(msg.content)
		m.editor.SetInput(m.titleInput.Value(), msg.content)
	case voiceState:
		m.voiceState = msg.state
	case voiceError:
		m.voiceErr = msg.message
	}
	return m
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case DiaryListView:
		m.diaryList, cmd = m.diaryList.Update(msg)
	case EntryListView:
		m.entryList, cmd = m.entryList.Update(msg)
	}
	return m, cmd
}
