package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/serene/internal/auth"
	"github.com/MrSnakeDoc/serene/internal/dashboard"
	"github.com/MrSnakeDoc/serene/internal/domain"
)

// API is the part of the HTTP client the UI drives.
type API interface {
	SignIn(ctx context.Context, email, password string) (auth.Result, error)
	SignUp(ctx context.Context, email, password, displayName string) (auth.Result, error)
	SignOut(ctx context.Context) error
	RequestPasswordReset(ctx context.Context, email string) error

	Dashboard(ctx context.Context, q dashboard.Query) (dashboard.Snapshot, error)
	Entries(ctx context.Context) ([]domain.Entry, error)
	Habits(ctx context.Context) ([]domain.Habit, error)
	HabitLogs(ctx context.Context) (domain.HabitLog, error)

	SaveEntry(ctx context.Context, e domain.Entry) (domain.Entry, error)
	UpdateEntry(ctx context.Context, id, content string) (domain.Entry, error)
	DeleteEntry(ctx context.Context, id string) error
	AddHabit(ctx context.Context, in domain.HabitInput) (domain.Habit, error)
	ToggleHabit(ctx context.Context, date, habitID string) (domain.HabitLog, error)
	Prompt(ctx context.Context, previous *string) (string, error)
}

type authDoneMsg struct {
	res auth.Result
	err error
}

type resetSentMsg struct {
	email string
	err   error
}

type signedOutMsg struct{ err error }

type loadedMsg struct {
	state dashboard.State
	err   error
}

type entrySavedMsg struct {
	entry domain.Entry
	err   error
}

type entryDeletedMsg struct {
	id  string
	err error
}

type habitAddedMsg struct {
	habit domain.Habit
	err   error
}

type toggledMsg struct {
	logs domain.HabitLog
	err  error
}

type promptMsg struct {
	text string
	err  error
}

type toastExpiredMsg struct{ id int }

// call runs fn off the update loop with a bounded context.
func (m Model) call(fn func(ctx context.Context) tea.Msg) tea.Cmd {
	timeout := m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return fn(ctx)
	}
}

func (m Model) signInCmd(email, password string) tea.Cmd {
	api := m.api
	return m.call(func(ctx context.Context) tea.Msg {
		res, err := api.SignIn(ctx, email, password)
		return authDoneMsg{res: res, err: err}
	})
}

func (m Model) signUpCmd(email, password, name string) tea.Cmd {
	api := m.api
	return m.call(func(ctx context.Context) tea.Msg {
		res, err := api.SignUp(ctx, email, password, name)
		return authDoneMsg{res: res, err: err}
	})
}

func (m Model) resetCmd(email string) tea.Cmd {
	api := m.api
	return m.call(func(ctx context.Context) tea.Msg {
		return resetSentMsg{email: email, err: api.RequestPasswordReset(ctx, email)}
	})
}

func (m Model) signOutCmd() tea.Cmd {
	api := m.api
	return m.call(func(ctx context.Context) tea.Msg {
		return signedOutMsg{err: api.SignOut(ctx)}
	})
}

// loadCmd asks the server for the dashboard first, which seeds a fresh
// account, then reads the raw collections the view is composed from.
func (m Model) loadCmd(date string) tea.Cmd {
	api := m.api
	return m.call(func(ctx context.Context) tea.Msg {
		snap, err := api.Dashboard(ctx, dashboard.Query{Date: date})
		if err != nil {
			return loadedMsg{err: err}
		}

		st := dashboard.State{Degraded: snap.Degraded, Seeded: snap.Seeded}
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			st.Entries, err = api.Entries(gctx)
			return err
		})
		g.Go(func() error {
			var err error
			st.Habits, err = api.Habits(gctx)
			return err
		})
		g.Go(func() error {
			var err error
			st.Logs, err = api.HabitLogs(gctx)
			return err
		})
		if err := g.Wait(); err != nil {
			return loadedMsg{err: err}
		}
		return loadedMsg{state: st}
	})
}

func (m Model) saveCmd(existing *domain.Entry, date, content string) tea.Cmd {
	api := m.api
	now := m.now()
	return m.call(func(ctx context.Context) tea.Msg {
		var (
			e   domain.Entry
			err error
		)
		if existing != nil {
			e, err = api.UpdateEntry(ctx, existing.ID, content)
		} else {
			e, err = api.SaveEntry(ctx, domain.Entry{
				Date:      date,
				Content:   content,
				CreatedAt: now.UTC().Format(time.RFC3339),
			})
		}
		return entrySavedMsg{entry: e, err: err}
	})
}

func (m Model) deleteCmd(id string) tea.Cmd {
	api := m.api
	return m.call(func(ctx context.Context) tea.Msg {
		return entryDeletedMsg{id: id, err: api.DeleteEntry(ctx, id)}
	})
}

func (m Model) addHabitCmd(in domain.HabitInput) tea.Cmd {
	api := m.api
	return m.call(func(ctx context.Context) tea.Msg {
		h, err := api.AddHabit(ctx, in)
		return habitAddedMsg{habit: h, err: err}
	})
}

func (m Model) toggleCmd(date, habitID string) tea.Cmd {
	api := m.api
	return m.call(func(ctx context.Context) tea.Msg {
		logs, err := api.ToggleHabit(ctx, date, habitID)
		return toggledMsg{logs: logs, err: err}
	})
}

func (m Model) promptCmd() tea.Cmd {
	api := m.api
	return m.call(func(ctx context.Context) tea.Msg {
		text, err := api.Prompt(ctx, nil)
		return promptMsg{text: text, err: err}
	})
}

func expireToast(id int, after time.Duration) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg { return toastExpiredMsg{id: id} })
}
