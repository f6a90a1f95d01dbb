package tui

import (
	"errors"
	"net/http"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrSnakeDoc/serene/internal/auth"
	"github.com/MrSnakeDoc/serene/internal/client"
	"github.com/MrSnakeDoc/serene/internal/dashboard"
	"github.com/MrSnakeDoc/serene/internal/domain"
	"github.com/MrSnakeDoc/serene/internal/logger"
)

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.editor.SetWidth(max(msg.Width/2-6, 20))
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ForceQuit) {
			return m, tea.Quit
		}
		if m.screen == screenAuth {
			return m.updateAuth(msg)
		}
		if m.dialog != dialogNone {
			return m.updateDialog(msg)
		}
		return m.updateDashboard(msg)

	case authDoneMsg:
		m.pending.auth = false
		if msg.err != nil {
			return m, m.failed("sign in", msg.err)
		}
		m.user = msg.res.User
		m.screen = screenDashboard
		m.inputs[fieldPassword].Reset()
		m.setPane(paneEditor)
		m.pending.load = true
		return m, m.loadCmd(m.date)

	case resetSentMsg:
		m.pending.reset = false
		if msg.err != nil {
			return m, m.failed("password reset", msg.err)
		}
		return m, m.notify("Check your inbox", "A reset link was sent to "+msg.email+".")

	case signedOutMsg:
		m.pending.signOut = false
		if msg.err != nil && !client.IsStatus(msg.err, http.StatusUnauthorized) {
			return m, m.failed("sign out", msg.err)
		}
		m.toSignIn()
		return m, nil

	case loadedMsg:
		m.pending.load = false
		if msg.err != nil {
			return m, m.failed("load", msg.err)
		}
		m.state = msg.state
		m.syncEditor()
		if msg.state.Seeded {
			return m, m.notify("Welcome", "We added a few starter habits and entries to get you going.")
		}
		if len(msg.state.Degraded) > 0 {
			return m, m.notify("Partially loaded", "Could not read: "+strings.Join(msg.state.Degraded, ", "))
		}
		return m, nil

	case entrySavedMsg:
		m.pending.save = false
		if msg.err != nil {
			return m, m.failed("save entry", msg.err)
		}
		saved := msg.entry
		m.state.Entries = dashboard.ReduceEntries(m.state.Entries, dashboard.EntryEvent{Saved: &saved})
		return m, m.notify("Saved", "Entry for "+saved.Date+" saved.")

	case entryDeletedMsg:
		m.pending.delete = false
		if msg.err != nil {
			return m, m.failed("delete entry", msg.err)
		}
		var date string
		for _, e := range m.state.Entries {
			if e.ID == msg.id {
				date = e.Date
			}
		}
		m.state.Entries = dashboard.ReduceEntries(m.state.Entries, dashboard.EntryEvent{DeletedID: msg.id})
		if date == m.date {
			m.syncEditor()
		}
		m.clampCursors()
		return m, nil

	case habitAddedMsg:
		m.pending.addHabit = false
		if msg.err != nil {
			return m, m.failed("add habit", msg.err)
		}
		h := msg.habit
		m.state.Habits = dashboard.ReduceHabits(m.state.Habits, dashboard.HabitEvent{Saved: &h})
		// The dialog may have been closed, or another opened, meanwhile.
		if m.dialog == dialogAddHabit {
			m.closeDialog()
		}
		return m, nil

	case toggledMsg:
		if msg.err != nil {
			return m, m.failed("toggle habit", msg.err)
		}
		m.state.Logs = dashboard.ReduceLogs(m.state.Logs, msg.logs)
		return m, nil

	case promptMsg:
		m.pending.prompt = false
		if msg.err != nil {
			return m, m.failed("prompt", msg.err)
		}
		m.prompt = msg.text
		return m, nil

	case toastExpiredMsg:
		if m.toast != nil && m.toast.id == msg.id {
			m.toast = nil
		}
		return m, nil
	}

	return m.forward(msg)
}

// forward hands non-key messages (cursor blink) to the focused widget.
func (m Model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.screen == screenAuth:
		m.inputs[m.authFocus], cmd = m.inputs[m.authFocus].Update(msg)
	case m.dialog == dialogSearch:
		m.searchInput, cmd = m.searchInput.Update(msg)
	case m.dialog == dialogAddHabit:
		if m.habitFocus == 0 {
			m.habitName, cmd = m.habitName.Update(msg)
		} else {
			m.habitIcon, cmd = m.habitIcon.Update(msg)
		}
	case m.pane == paneEditor:
		m.editor, cmd = m.editor.Update(msg)
	}
	return m, cmd
}

// ─────────────────────────────────────────────────────────────────
// Sign-in screen
// ─────────────────────────────────────────────────────────────────

func (m Model) updateAuth(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		if m.pending.auth {
			return m, nil
		}
		email := strings.TrimSpace(m.inputs[fieldEmail].Value())
		password := m.inputs[fieldPassword].Value()
		if email == "" || password == "" {
			return m, m.notifyError("Missing fields", "Enter your email and password.")
		}
		m.pending.auth = true
		if m.signUp {
			return m, m.signUpCmd(email, password, strings.TrimSpace(m.inputs[fieldName].Value()))
		}
		return m, m.signInCmd(email, password)

	case key.Matches(msg, m.keys.Mode):
		m.signUp = !m.signUp
		if m.authFocus >= m.visibleFields() {
			m.focusAuth(0)
		}
		return m, nil

	case key.Matches(msg, m.keys.Reset):
		if m.pending.reset {
			return m, nil
		}
		email := strings.TrimSpace(m.inputs[fieldEmail].Value())
		if email == "" {
			return m, m.notifyError("Missing email", "Enter the email of your account first.")
		}
		m.pending.reset = true
		return m, m.resetCmd(email)

	case key.Matches(msg, m.keys.NextPane), key.Matches(msg, m.keys.Down):
		m.focusAuth((m.authFocus + 1) % m.visibleFields())
		return m, nil

	case key.Matches(msg, m.keys.PrevPane):
		m.focusAuth((m.authFocus + m.visibleFields() - 1) % m.visibleFields())
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.authFocus], cmd = m.inputs[m.authFocus].Update(msg)
	return m, cmd
}

func (m *Model) focusAuth(i int) {
	for j := range m.inputs {
		m.inputs[j].Blur()
	}
	m.authFocus = i
	m.inputs[i].Focus()
}

// toSignIn drops every piece of user state and shows the sign-in form.
func (m *Model) toSignIn() {
	m.screen = screenAuth
	m.dialog = dialogNone
	m.user = auth.User{}
	m.state = dashboard.State{}
	m.search, m.page, m.prompt = "", 1, ""
	m.entryCursor, m.habitCursor = 0, 0
	m.pending = pending{}
	m.editor.Reset()
	m.inputs[fieldPassword].Reset()
	m.focusAuth(fieldEmail)
}

// ─────────────────────────────────────────────────────────────────
// Dashboard
// ─────────────────────────────────────────────────────────────────

func (m Model) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Save):
		return m.save()
	case key.Matches(msg, m.keys.Prompt):
		if m.pending.prompt {
			return m, nil
		}
		m.pending.prompt = true
		return m, m.promptCmd()
	case key.Matches(msg, m.keys.SignOut):
		if m.pending.signOut {
			return m, nil
		}
		m.pending.signOut = true
		return m, m.signOutCmd()
	case key.Matches(msg, m.keys.NextPane):
		m.setPane((m.pane + 1) % numPanes)
		return m, nil
	case key.Matches(msg, m.keys.PrevPane):
		m.setPane((m.pane + numPanes - 1) % numPanes)
		return m, nil
	}

	if m.pane == paneEditor {
		if key.Matches(msg, m.keys.Cancel) {
			m.setPane(paneEntries)
			return m, nil
		}
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.PrevDay):
		m.shiftDate(-1)
		return m, nil
	case key.Matches(msg, m.keys.NextDay):
		m.shiftDate(1)
		return m, nil
	case key.Matches(msg, m.keys.Today):
		m.setDate(domain.FormatDate(m.now()))
		return m, nil
	}

	if m.pane == paneEntries {
		return m.updateEntries(msg)
	}
	return m.updateHabits(msg)
}

func (m Model) updateEntries(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.snapshot().Entries.Items
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.entryCursor > 0 {
			m.entryCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.entryCursor < len(items)-1 {
			m.entryCursor++
		}
	case key.Matches(msg, m.keys.PrevPage):
		m.turnPage(-1)
	case key.Matches(msg, m.keys.NextPage):
		m.turnPage(1)
	case key.Matches(msg, m.keys.Open):
		if m.entryCursor < len(items) {
			m.setDate(items[m.entryCursor].Date)
			m.setPane(paneEditor)
		}
	case key.Matches(msg, m.keys.Delete):
		if m.entryCursor < len(items) {
			m.deleteID = items[m.entryCursor].ID
			m.dialog = dialogConfirmDelete
		}
	case key.Matches(msg, m.keys.Search):
		m.dialog = dialogSearch
		m.searchInput.SetValue(m.search)
		m.searchInput.CursorEnd()
		return m, m.searchInput.Focus()
	}
	return m, nil
}

func (m Model) updateHabits(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	habits := m.snapshot().Habits
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.habitCursor > 0 {
			m.habitCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.habitCursor < len(habits)-1 {
			m.habitCursor++
		}
	case key.Matches(msg, m.keys.Toggle):
		if m.habitCursor < len(habits) {
			return m, m.toggleCmd(m.date, habits[m.habitCursor].ID)
		}
	case key.Matches(msg, m.keys.Add):
		m.dialog = dialogAddHabit
		m.habitFocus = 0
		m.habitIcon.Blur()
		return m, m.habitName.Focus()
	}
	return m, nil
}

// save writes the editor content to the entry of the selected date,
// creating it when the date has none.
func (m Model) save() (tea.Model, tea.Cmd) {
	if m.pending.save {
		return m, nil
	}
	content := m.editor.Value()
	if strings.TrimSpace(content) == "" {
		return m, m.notifyError("Nothing to save", "Write something first.")
	}
	existing := dashboard.EntryForDate(dashboard.SortEntries(m.state.Entries), m.date)
	m.pending.save = true
	return m, m.saveCmd(existing, m.date, content)
}

// ─────────────────────────────────────────────────────────────────
// Dialogs
// ─────────────────────────────────────────────────────────────────

func (m Model) updateDialog(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Cancel) {
		m.closeDialog()
		return m, nil
	}

	switch m.dialog {
	case dialogConfirmDelete:
		if key.Matches(msg, m.keys.Confirm) {
			if m.pending.delete {
				return m, nil
			}
			id := m.deleteID
			m.closeDialog()
			m.pending.delete = true
			return m, m.deleteCmd(id)
		}
		if msg.String() == "n" {
			m.closeDialog()
		}
		return m, nil

	case dialogSearch:
		if key.Matches(msg, m.keys.Submit) {
			m.search = strings.TrimSpace(m.searchInput.Value())
			m.page, m.entryCursor = 1, 0
			m.closeDialog()
			return m, nil
		}
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		return m, cmd

	case dialogAddHabit:
		switch {
		case key.Matches(msg, m.keys.Submit):
			if m.pending.addHabit {
				return m, nil
			}
			in := domain.HabitInput{
				Name: strings.TrimSpace(m.habitName.Value()),
				Icon: strings.TrimSpace(m.habitIcon.Value()),
			}
			if in.Icon == "" {
				in.Icon = domain.FallbackIcon
			}
			if in.Name == "" {
				return m, m.notifyError("Missing name", "Give the habit a name.")
			}
			m.pending.addHabit = true
			return m, m.addHabitCmd(in)
		case key.Matches(msg, m.keys.NextPane), key.Matches(msg, m.keys.PrevPane):
			m.habitFocus = 1 - m.habitFocus
			if m.habitFocus == 0 {
				m.habitIcon.Blur()
				return m, m.habitName.Focus()
			}
			m.habitName.Blur()
			return m, m.habitIcon.Focus()
		}
		var cmd tea.Cmd
		if m.habitFocus == 0 {
			m.habitName, cmd = m.habitName.Update(msg)
		} else {
			m.habitIcon, cmd = m.habitIcon.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

func (m *Model) closeDialog() {
	switch m.dialog {
	case dialogAddHabit:
		m.habitName.Reset()
		m.habitIcon.Reset()
		m.habitName.Blur()
		m.habitIcon.Blur()
	case dialogSearch:
		m.searchInput.Blur()
	case dialogConfirmDelete:
		m.deleteID = ""
	}
	m.dialog = dialogNone
}

// ─────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────

func (m *Model) setPane(p pane) {
	m.pane = p
	if p == paneEditor {
		m.editor.Focus()
		return
	}
	m.editor.Blur()
}

func (m *Model) shiftDate(days int) {
	date, err := domain.AddDays(m.date, days)
	if err != nil {
		return
	}
	m.setDate(date)
}

func (m *Model) setDate(date string) {
	m.date = date
	m.habitCursor = 0
	m.syncEditor()
}

// syncEditor loads the entry of the selected date into the editor.
func (m *Model) syncEditor() {
	e := dashboard.EntryForDate(dashboard.SortEntries(m.state.Entries), m.date)
	if e == nil {
		m.editor.Reset()
		return
	}
	m.editor.SetValue(e.Content)
}

func (m *Model) turnPage(delta int) {
	m.page += delta
	m.page = m.snapshot().Entries.Page
	m.entryCursor = 0
}

func (m *Model) clampCursors() {
	snap := m.snapshot()
	m.page = snap.Entries.Page
	if m.entryCursor >= len(snap.Entries.Items) {
		m.entryCursor = max(len(snap.Entries.Items)-1, 0)
	}
}

func (m *Model) notify(title, description string) tea.Cmd {
	return m.showToast(title, description, false)
}

func (m *Model) notifyError(title, description string) tea.Cmd {
	return m.showToast(title, description, true)
}

func (m *Model) showToast(title, description string, isErr bool) tea.Cmd {
	m.toastSeq++
	m.toast = &toast{id: m.toastSeq, title: title, description: description, isErr: isErr}
	return expireToast(m.toastSeq, toastDuration)
}

// failed shows err as an error toast. An expired session sends the user
// back to the sign-in form.
func (m *Model) failed(action string, err error) tea.Cmd {
	m.log.Warn("request failed", logger.String("action", action), logger.Error(err))

	var ae *client.APIError
	if !errors.As(err, &ae) {
		return m.notifyError("Connection problem", err.Error())
	}
	if ae.Status == http.StatusUnauthorized && m.screen == screenDashboard {
		m.toSignIn()
	}
	return m.notifyError(ae.Title, ae.Description)
}
