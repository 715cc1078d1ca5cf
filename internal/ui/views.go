package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/desertthunder/afterthoughts/internal/tasks"
	"github.com/desertthunder/afterthoughts/internal/voice"
)

func (m *Model) renderLogin() string {
	s := m.styles()
	var b strings.Builder

	b.WriteString(s.title.Render("Afterthoughts"))
	b.WriteString("\n\n")
	b.WriteString(m.emailInput.View())
	b.WriteString("\n")
	b.WriteString(m.passwordInput.View())
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(s.err.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n\n")
	}
	if m.status != "" {
		b.WriteString(s.ok.Render(m.status))
		b.WriteString("\n\n")
	}

	b.WriteString(s.help.Render("enter sign in • tab next field • ctrl+n sign up • ctrl+c quit"))
	return b.String()
}

func (m *Model) renderSignup() string {
	s := m.styles()
	var b strings.Builder

	b.WriteString(s.title.Render("Create account"))
	b.WriteString("\n\n")
	for _, in := range m.signupInputs {
		b.WriteString(in.View())
		b.WriteString("\n")
	}

	check := "[ ]"
	if m.termsAccepted {
		check = "[x]"
	}
	terms := fmt.Sprintf("%s I accept the terms and conditions", check)
	if m.focus == len(m.signupInputs) {
		terms = s.ok.Render(terms)
	}
	b.WriteString("\n")
	b.WriteString(terms)
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(s.err.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n\n")
	}

	b.WriteString(s.help.Render("enter submit • tab next field • space accept terms • esc back"))
	return b.String()
}

func (m *Model) renderDiaryList() string {
	s := m.styles()
	var header string
	if m.err != nil {
		header = s.err.Render(fmt.Sprintf("Error: %v", m.err)) + "\n"
	}

	helpKeys := []key.Binding{m.keys.enter, m.keys.create, m.keys.rename, m.keys.remove, m.keys.signout, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s%s\n\n%s", header, m.diaryList.View(), helpView)
}

func (m *Model) renderEntryList() string {
	s := m.styles()
	var header string
	if m.err != nil {
		header = s.err.Render(fmt.Sprintf("Error: %v", m.err)) + "\n"
	}

	helpKeys := []key.Binding{m.keys.enter, m.keys.create, m.keys.remove, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s%s\n\n%s", header, m.entryList.View(), helpView)
}

func (m *Model) renderComposer() string {
	s := m.styles()
	var b strings.Builder

	heading := "New entry"
	if m.editing {
		heading = "Edit entry"
	}
	b.WriteString(s.title.Render(heading))
	b.WriteString("\n")
	b.WriteString(m.titleInput.View())
	b.WriteString("\n\n")
	b.WriteString(m.bodyInput.View())
	b.WriteString("\n\n")

	var status []string
	if m.status != "" {
		status = append(status, s.ok.Render(m.status))
	}
	switch m.voiceState {
	case voice.StateStarting:
		status = append(status, s.warn.Render("● connecting..."))
	case voice.StateRecording:
		status = append(status, s.err.Render("● recording"))
	}
	if m.voiceErr != "" {
		status = append(status, s.err.Render(m.voiceErr))
	}
	if m.err != nil {
		status = append(status, s.err.Render(fmt.Sprintf("Error: %v", m.err)))
	}
	if len(status) > 0 {
		b.WriteString(strings.Join(status, "  "))
		b.WriteString("\n\n")
	}

	b.WriteString(s.help.Render("ctrl+s save • ctrl+r dictate • tab switch field • esc close"))
	return b.String()
}

func (m *Model) renderDiaryForm() string {
	s := m.styles()
	heading := "New diary"
	if m.renaming != nil {
		heading = fmt.Sprintf("Rename '%s'", m.renaming.Title)
	}

	var errLine string
	if m.err != nil {
		errLine = s.err.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n"
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s%s",
		s.title.Render(heading),
		m.diaryInput.View(),
		errLine,
		s.help.Render("enter confirm • esc cancel"))
}

func (m *Model) renderConfirm() string {
	s := m.styles()
	var question string
	switch m.confirm {
	case confirmDiscard:
		question = "Discard unsaved changes?"
	case confirmDeleteDiary:
		question = "Delete this diary and all of its entries?"
	case confirmDeleteEntry:
		question = "Delete this entry?"
	default:
		question = "Are you sure?"
	}

	helpKeys := []key.Binding{m.keys.yes, m.keys.no}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", s.warn.Render(question), helpView)
}

func (m *Model) renderDelete() string {
	s := m.styles()
	title := s.title.Render("Deleting diary")

	var phase string
	switch m.progress.Phase {
	case tasks.FetchEntries:
		phase = "Collecting entries..."
	case tasks.DeleteEntries:
		phase = fmt.Sprintf("Deleting entries (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.DeleteDiary:
		phase = "Deleting diary..."
	default:
		phase = "Working..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}
