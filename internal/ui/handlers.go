package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/afterthoughts/internal/models"
	"github.com/desertthunder/afterthoughts/internal/shared"
	"github.com/desertthunder/afterthoughts/internal/voice"
)

func (m *Model) handleLoginKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "tab", "shift+tab", "up", "down":
		m.focus = (m.focus + 1) % 2
		if m.focus == 0 {
			m.emailInput.Focus()
			m.passwordInput.Blur()
		} else {
			m.emailInput.Blur()
			m.passwordInput.Focus()
		}
		return m, nil
	case "ctrl+n":
		m.err = nil
		m.focus = 0
		m.signupInputs[0].Focus()
		m.view = SignupView
		return m, nil
	case "enter":
		creds := models.Credentials{
			Email:    strings.TrimSpace(m.emailInput.Value()),
			Password: m.passwordInput.Value(),
		}
		if err := creds.Validate(); err != nil {
			m.err = err
			return m, nil
		}
		return m, m.signIn(creds)
	}

	var cmd tea.Cmd
	if m.focus == 0 {
		m.emailInput, cmd = m.emailInput.Update(msg)
	} else {
		m.passwordInput, cmd = m.passwordInput.Update(msg)
	}
	return m, cmd
}

func (m *Model) handleSignupKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	const termsIndex = 5

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.err = nil
		m.view = LoginView
		m.focus = 0
		m.emailInput.Focus()
		return m, nil
	case "tab", "down":
		m.focus = (m.focus + 1) % (termsIndex + 1)
		m.focusSignup()
		return m, nil
	case "shift+tab", "up":
		m.focus = (m.focus + termsIndex) % (termsIndex + 1)
		m.focusSignup()
		return m, nil
	case " ":
		if m.focus == termsIndex {
			m.termsAccepted = !m.termsAccepted
			return m, nil
		}
	case "enter":
		form := models.SignupForm{
			FirstName:       strings.TrimSpace(m.signupInputs[0].Value()),
			LastName:        strings.TrimSpace(m.signupInputs[1].Value()),
			Email:           strings.TrimSpace(m.signupInputs[2].Value()),
			Password:        m.signupInputs[3].Value(),
			ConfirmPassword: m.signupInputs[4].Value(),
			AgreedToTerms:   m.termsAccepted,
		}
		if err := form.Validate(); err != nil {
			m.err = err
			return m, nil
		}
		return m, m.signUp(form)
	}

	if m.focus < termsIndex {
		var cmd tea.Cmd
		m.signupInputs[m.focus], cmd = m.signupInputs[m.focus].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) focusSignup() {
	for i := range m.signupInputs {
		if i == m.focus {
			m.signupInputs[i].Focus()
		} else {
			m.signupInputs[i].Blur()
		}
	}
}

func (m *Model) handleDiaryListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "ctrl+t":
		return m, m.toggleTheme()
	case "ctrl+o":
		return m, m.signOut()
	case "n":
		m.renaming = nil
		m.diaryInput.SetValue("")
		m.diaryInput.Focus()
		m.view = DiaryFormView
		return m, nil
	case "r":
		if d := m.selectedDiary(); d != nil {
			m.renaming = d
			m.diaryInput.SetValue(d.Title)
			m.diaryInput.Focus()
			m.view = DiaryFormView
		}
		return m, nil
	case "d":
		if d := m.selectedDiary(); d != nil {
			m.confirm = confirmDeleteDiary
			m.confirmFor = DiaryListView
			m.target = d.ID
			m.view = ConfirmView
		}
		return m, nil
	case "enter":
		if d := m.selectedDiary(); d != nil {
			m.current = d
			m.view = EntryListView
			m.setEntries(nil)
			return m, m.fetchEntries()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.diaryList, cmd = m.diaryList.Update(msg)
	return m, cmd
}

func (m *Model) handleEntryListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "ctrl+t":
		return m, m.toggleTheme()
	case "ctrl+o":
		return m, m.signOut()
	case "esc":
		m.current = nil
		m.view = DiaryListView
		return m, m.fetchDiaries()
	case "n":
		if m.current != nil {
			return m, m.openCompose(m.current.ID)
		}
		return m, nil
	case "d":
		if e := m.selectedEntry(); e != nil {
			m.confirm = confirmDeleteEntry
			m.confirmFor = EntryListView
			m.target = e.ID
			m.view = ConfirmView
		}
		return m, nil
	case "enter":
		if e := m.selectedEntry(); e != nil {
			snap := m.editor.OpenEntry(*e)
			m.openComposer(snap, true)
			return m, m.scheduleAutosave()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.entryList, cmd = m.entryList.Update(msg)
	return m, cmd
}

func (m *Model) handleComposerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		if m.editor.Dirty() {
			m.confirm = confirmDiscard
			m.confirmFor = EntryListView
			m.view = ConfirmView
			return m, nil
		}
		m.editor.Discard()
		m.closeComposer()
		m.view = EntryListView
		return m, m.fetchEntries()
	case "ctrl+s":
		return m, m.finalize()
	case "ctrl+r":
		return m, m.toggleVoice()
	case "tab":
		if m.focus == 0 {
			m.focus = 1
			m.titleInput.Blur()
			cmd := m.bodyInput.Focus()
			return m, cmd
		}
		m.focus = 0
		m.bodyInput.Blur()
		m.titleInput.Focus()
		return m, nil
	}

	var cmd tea.Cmd
	if m.focus == 0 {
		m.titleInput, cmd = m.titleInput.Update(msg)
	} else {
		m.bodyInput, cmd = m.bodyInput.Update(msg)
	}
	m.editor.SetInput(m.titleInput.Value(), m.bodyInput.Value())
	return m, cmd
}

func (m *Model) handleDiaryFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = DiaryListView
		return m, nil
	case "enter":
		title := strings.TrimSpace(m.diaryInput.Value())
		if title == "" {
			m.err = shared.ErrEmptyTitle
			return m, nil
		}
		m.err = nil
		if m.renaming != nil {
			return m, m.renameDiary(m.renaming.ID, title)
		}
		return m, m.createDiary(title)
	}

	var cmd tea.Cmd
	m.diaryInput, cmd = m.diaryInput.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "y":
		kind := m.confirm
		m.confirm = confirmNone
		switch kind {
		case confirmDiscard:
			m.editor.Discard()
			m.closeComposer()
			m.view = m.confirmFor
			return m, m.fetchEntries()
		case confirmDeleteDiary:
			m.view = DeleteView
			return m, m.startCascade(m.target)
		case confirmDeleteEntry:
			m.view = m.confirmFor
			return m, m.deleteEntry(m.target)
		}
		return m, nil
	case "n", "esc":
		kind := m.confirm
		m.confirm = confirmNone
		if kind == confirmDiscard {
			m.view = ComposerView
		} else {
			m.view = m.confirmFor
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) selectedDiary() *models.Diary {
	item := m.diaryList.SelectedItem()
	if item == nil {
		return nil
	}
	if d, ok := item.(diaryItem); ok {
		diary := d.diary
		return &diary
	}
	return nil
}

func (m *Model) selectedEntry() *models.Entry {
	item := m.entryList.SelectedItem()
	if item == nil {
		return nil
	}
	if e, ok := item.(entryItem); ok {
		entry := e.entry
		return &entry
	}
	return nil
}

func (m *Model) voiceIdle() bool {
	return m.recorder == nil || m.recorder.State() == voice.StateIdle
}
