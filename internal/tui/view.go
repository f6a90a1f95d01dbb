package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/MrSnakeDoc/serene/internal/dashboard"
	"github.com/MrSnakeDoc/serene/internal/domain"
)

const chartWidth = 20

func (m Model) View() string {
	var body string
	if m.screen == screenAuth {
		body = m.viewAuth()
	} else {
		body = m.viewDashboard()
	}

	if m.dialog != dialogNone && m.width > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.viewDialog())
	}
	if m.dialog != dialogNone {
		body = lipgloss.JoinVertical(lipgloss.Left, body, m.viewDialog())
	}
	return body
}

func (m Model) viewAuth() string {
	mode := "Sign in"
	if m.signUp {
		mode = "Create account"
	}

	lines := []string{titleStyle.Render("Serene"), "", headingStyle.Render(mode), ""}
	for i := 0; i < m.visibleFields(); i++ {
		lines = append(lines, m.inputs[i].View())
	}
	if m.pending.auth {
		lines = append(lines, "", dimStyle.Render("Signing in…"))
	}
	lines = append(lines, "", m.viewToast(), m.help.View(authHelp{m.keys}))

	return lipgloss.NewStyle().Padding(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) viewDashboard() string {
	snap := m.snapshot()

	name := m.user.DisplayName
	if name == "" {
		name = m.user.Email
	}
	header := titleStyle.Render("Serene") + " " + dimStyle.Render(name+" · "+longDate(m.date))
	if m.pending.load {
		header += dimStyle.Render("  loading…")
	}

	left := lipgloss.JoinVertical(lipgloss.Left,
		m.frame(paneEditor, "Entry", m.editor.View()),
		m.viewPrompt(),
	)
	right := lipgloss.JoinVertical(lipgloss.Left,
		m.frame(paneHabits, "Habits", m.viewHabits(snap)),
		paneStyle.Render(headingStyle.Render("This week")+"\n"+renderWeek(snap.Week, len(m.state.Habits), chartWidth)),
		m.frame(paneEntries, "Past entries", m.viewEntries(snap)),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.JoinHorizontal(lipgloss.Top, left, right),
		m.viewToast(),
		m.help.View(m.keys),
	)
}

func (m Model) frame(p pane, title, content string) string {
	style := paneStyle
	if m.pane == p {
		style = activePaneStyle
	}
	return style.Render(headingStyle.Render(title) + "\n" + content)
}

func (m Model) viewPrompt() string {
	text := m.prompt
	switch {
	case m.pending.prompt:
		text = dimStyle.Render("Thinking…")
	case text == "":
		text = dimStyle.Render("ctrl+p for a writing prompt")
	}
	return paneStyle.Width(max(m.width/2-4, 30)).Render(headingStyle.Render("Prompt") + "\n" + text)
}

func (m Model) viewHabits(snap dashboard.Snapshot) string {
	if len(snap.Habits) == 0 {
		return dimStyle.Render("No habits yet. Press a to add one.")
	}
	lines := make([]string, 0, len(snap.Habits))
	for i, h := range snap.Habits {
		box := "[ ]"
		if h.Completed {
			box = doneStyle.Render("[x]")
		}
		line := fmt.Sprintf("%s %s %s", box, h.Name, dimStyle.Render(h.Icon))
		if m.pane == paneHabits && i == m.habitCursor {
			line = selectedStyle.Render("> ") + line
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewEntries(snap dashboard.Snapshot) string {
	page := snap.Entries
	var b strings.Builder
	if page.Search != "" {
		fmt.Fprintf(&b, "%s\n", dimStyle.Render("matching “"+page.Search+"”"))
	}
	if len(page.Items) == 0 {
		b.WriteString(dimStyle.Render("Nothing here yet."))
		return b.String()
	}
	for i, e := range page.Items {
		line := fmt.Sprintf("%s  %s", e.Date, excerpt(e.Content, 36))
		if m.pane == paneEntries && i == m.entryCursor {
			line = selectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
	fmt.Fprintf(&b, "%s", dimStyle.Render(fmt.Sprintf("page %d/%d · %d entries", page.Page, page.TotalPages, page.Total)))
	return b.String()
}

func (m Model) viewDialog() string {
	var content string
	switch m.dialog {
	case dialogConfirmDelete:
		content = headingStyle.Render("Delete entry?") + "\n\nThis cannot be undone.\n\n" +
			dimStyle.Render("y delete · n/esc keep")
		if m.pending.delete {
			content += "\n" + dimStyle.Render("Deleting…")
		}
	case dialogSearch:
		content = headingStyle.Render("Search entries") + "\n\n" + m.searchInput.View() + "\n\n" +
			dimStyle.Render("enter apply · esc cancel")
	case dialogAddHabit:
		content = headingStyle.Render("New habit") + "\n\n" + m.habitName.View() + "\n" + m.habitIcon.View() + "\n\n" +
			dimStyle.Render("tab switch · enter add · esc cancel")
		if m.pending.addHabit {
			content += "\n" + dimStyle.Render("Adding…")
		}
	}
	return modalStyle.Render(content)
}

func (m Model) viewToast() string {
	if m.toast == nil {
		return ""
	}
	style := toastStyle
	if m.toast.isErr {
		style = errorToastStyle
	}
	return style.Render(headingStyle.Render(m.toast.title) + "\n" + m.toast.description)
}

func longDate(date string) string {
	t, err := domain.ParseDate(date)
	if err != nil {
		return date
	}
	return t.Format("Monday, January 2 2006")
}

// excerpt returns the first line of s cut to n runes.
func excerpt(s string, n int) string {
	s, _, _ = strings.Cut(strings.TrimSpace(s), "\n")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
