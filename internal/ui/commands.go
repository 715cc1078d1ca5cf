package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/afterthoughts/internal/models"
	"github.com/desertthunder/afterthoughts/internal/tasks"
)

// waitForEvent pumps one callback-origin message into the update loop.
// The eventMsg handler re-arms the pump, so exactly one reader exists.
func (m *Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return eventMsg{inner: <-m.events}
	}
}

func (m *Model) resolveSession() tea.Cmd {
	return func() tea.Msg {
		session, err := m.auth.CurrentSession(m.ctx)
		return sessionResolvedMsg{session: session, err: err}
	}
}

// enterSession wires the gate and idle watcher, then loads the diary list.
func (m *Model) enterSession(s *models.Session) tea.Cmd {
	m.account = s
	if _, err := m.gate.Enter(m.ctx, func() { m.push(signedOutMsg{}) }); err != nil {
		m.view = LoginView
		return nil
	}
	m.idle.Start()
	m.view = DiaryListView
	m.setDiaries(nil)
	return m.fetchDiaries()
}

// leaveSession tears down session-scoped state and returns to the login view.
// Safe when already signed out; remote revocation is best effort.
func (m *Model) leaveSession() tea.Cmd {
	if m.account == nil {
		return nil
	}
	m.account = nil
	m.gate.Leave()
	m.idle.Stop()
	if m.recorder != nil {
		m.recorder.Teardown()
	}
	m.editor.Discard()
	m.closeComposer()
	m.current = nil
	m.diaries = nil
	m.entries = nil
	m.err = nil
	m.status = ""
	m.focus = 0
	m.emailInput.Focus()
	m.passwordInput.SetValue("")
	m.view = LoginView
	return func() tea.Msg {
		_ = m.auth.SignOut(m.ctx)
		return nil
	}
}

func (m *Model) signIn(creds models.Credentials) tea.Cmd {
	return func() tea.Msg {
		session, err := m.auth.SignIn(m.ctx, creds)
		return signedInMsg{session: session, err: err}
	}
}

func (m *Model) signUp(form models.SignupForm) tea.Cmd {
	return func() tea.Msg {
		return signedUpMsg{err: m.auth.SignUp(m.ctx, form)}
	}
}

func (m *Model) signOut() tea.Cmd {
	return func() tea.Msg {
		return signedOutMsg{}
	}
}

func (m *Model) fetchDiaries() tea.Cmd {
	if m.account == nil {
		return nil
	}
	userID := m.account.UserID
	return func() tea.Msg {
		diaries, err := m.store.ListDiaries(m.ctx, userID)
		return diariesFetchedMsg{diaries: diaries, err: err}
	}
}

func (m *Model) fetchEntries() tea.Cmd {
	if m.current == nil {
		return nil
	}
	diaryID := m.current.ID
	return func() tea.Msg {
		entries, err := m.store.ListEntries(m.ctx, diaryID)
		return entriesFetchedMsg{entries: entries, err: err}
	}
}

func (m *Model) createDiary(title string) tea.Cmd {
	userID := m.account.UserID
	return func() tea.Msg {
		diary, err := m.store.CreateDiary(m.ctx, userID, title)
		return diaryCreatedMsg{diary: diary, err: err}
	}
}

func (m *Model) renameDiary(diaryID, title string) tea.Cmd {
	return func() tea.Msg {
		return diaryRenamedMsg{err: m.store.RenameDiary(m.ctx, diaryID, title)}
	}
}

func (m *Model) deleteEntry(entryID string) tea.Cmd {
	return func() tea.Msg {
		return entryDeletedMsg{err: m.store.DeleteEntry(m.ctx, entryID)}
	}
}

// openCompose restores any existing draft before showing the composer.
func (m *Model) openCompose(diaryID string) tea.Cmd {
	return func() tea.Msg {
		snap, err := m.editor.Open(m.ctx, diaryID)
		return composerOpenedMsg{snapshot: snap, editing: false, err: err}
	}
}

func (m *Model) scheduleAutosave() tea.Cmd {
	gen := m.tickGen
	return tea.Tick(m.editor.Interval(), func(time.Time) tea.Msg {
		return autosaveTickMsg{gen: gen}
	})
}

func (m *Model) autosave() tea.Cmd {
	return func() tea.Msg {
		saved, err := m.editor.Autosave(m.ctx)
		return autosavedMsg{saved: saved, err: err}
	}
}

// finalize publishes a composed entry or saves an edited one.
func (m *Model) finalize() tea.Cmd {
	editing := m.editing
	return func() tea.Msg {
		if editing {
			return publishedMsg{err: m.editor.Save(m.ctx)}
		}
		return publishedMsg{err: m.editor.Publish(m.ctx)}
	}
}

// toggleVoice starts or stops dictation. Debounce rejections are silent.
func (m *Model) toggleVoice() tea.Cmd {
	if m.recorder == nil {
		return nil
	}
	content := m.bodyInput.Value()
	idle := m.voiceIdle()
	return func() tea.Msg {
		if idle {
			_ = m.recorder.Start(m.ctx, content)
		} else {
			_ = m.recorder.Stop()
		}
		return nil
	}
}

func (m *Model) toggleTheme() tea.Cmd {
	m.dark = !m.dark
	if m.prefs == nil {
		return nil
	}
	dark := m.dark
	return func() tea.Msg {
		_ = m.prefs.SetDarkMode(dark)
		return nil
	}
}

// startCascade deletes a diary's entries then the diary, streaming progress.
func (m *Model) startCascade(diaryID string) tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	m.progress = tasks.ProgressUpdate{}

	go func() {
		result, err := m.engine.DeleteDiary(m.ctx, m.progressChan, diaryID)
		m.cascadeResult = result
		m.cascadeErr = err
		close(m.progressChan)
	}()

	return m.waitForCascade()
}

func (m *Model) waitForCascade() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return cascadeDoneMsg{result: m.cascadeResult, err: m.cascadeErr}
		}
		update, ok := <-m.progressChan
		if !ok {
			return cascadeDoneMsg{result: m.cascadeResult, err: m.cascadeErr}
		}
		return cascadeProgressMsg(update)
	}
}
