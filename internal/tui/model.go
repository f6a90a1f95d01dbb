// Package tui is the terminal client: a sign-in screen and a journal
// dashboard driven by the HTTP API.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/MrSnakeDoc/serene/internal/auth"
	"github.com/MrSnakeDoc/serene/internal/dashboard"
	"github.com/MrSnakeDoc/serene/internal/domain"
	"github.com/MrSnakeDoc/serene/internal/logger"
)

const (
	defaultTimeout = 15 * time.Second
	toastDuration  = 4 * time.Second
)

type screen int

const (
	screenAuth screen = iota
	screenDashboard
)

type pane int

const (
	paneEditor pane = iota
	paneEntries
	paneHabits
	numPanes
)

type dialog int

const (
	dialogNone dialog = iota
	dialogConfirmDelete
	dialogAddHabit
	dialogSearch
)

// auth form fields
const (
	fieldEmail = iota
	fieldPassword
	fieldName
)

// pending marks requests in flight; the matching action is disabled
// until the response arrives.
type pending struct {
	auth     bool
	reset    bool
	signOut  bool
	load     bool
	save     bool
	delete   bool
	addHabit bool
	prompt   bool
}

type toast struct {
	id          int
	title       string
	description string
	isErr       bool
}

// Options tunes a Model. Zero values pick defaults.
type Options struct {
	Timeout time.Duration
	Now     func() time.Time
}

type Model struct {
	api     API
	log     logger.Logger
	now     func() time.Time
	timeout time.Duration

	keys KeyMap
	help help.Model

	screen screen
	pane   pane
	dialog dialog
	width  int
	height int

	// sign-in form
	signUp    bool
	inputs    []textinput.Model
	authFocus int

	user  auth.User
	state dashboard.State

	date        string
	search      string
	page        int
	entryCursor int
	habitCursor int
	deleteID    string
	prompt      string

	editor      textarea.Model
	searchInput textinput.Model
	habitName   textinput.Model
	habitIcon   textinput.Model
	habitFocus  int

	pending  pending
	toast    *toast
	toastSeq int
}

func New(api API, log logger.Logger, opts Options) Model {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.Prompt = "Email     "
	email.Focus()

	password := textinput.New()
	password.Placeholder = "at least 6 characters"
	password.Prompt = "Password  "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	name := textinput.New()
	name.Placeholder = "optional"
	name.Prompt = "Name      "

	editor := textarea.New()
	editor.Placeholder = "How was your day?"
	editor.ShowLineNumbers = false
	editor.CharLimit = 0
	editor.SetWidth(60)
	editor.SetHeight(10)

	search := textinput.New()
	search.Placeholder = "words to find"
	search.Prompt = "/ "

	habitName := textinput.New()
	habitName.Placeholder = "Read 10 pages"
	habitName.Prompt = "Name "
	habitName.CharLimit = 80

	habitIcon := textinput.New()
	habitIcon.Placeholder = domain.FallbackIcon
	habitIcon.Prompt = "Icon "

	return Model{
		api:         api,
		log:         log,
		now:         opts.Now,
		timeout:     opts.Timeout,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		screen:      screenAuth,
		inputs:      []textinput.Model{email, password, name},
		date:        domain.FormatDate(opts.Now()),
		page:        1,
		editor:      editor,
		searchInput: search,
		habitName:   habitName,
		habitIcon:   habitIcon,
	}
}

// query is the view selection of the dashboard.
func (m Model) query() dashboard.Query {
	return dashboard.Query{
		Date:     m.date,
		Search:   m.search,
		Page:     m.page,
		PageSize: dashboard.DefaultPageSize,
	}
}

// snapshot composes the dashboard from the local state.
func (m Model) snapshot() dashboard.Snapshot {
	return dashboard.Compose(m.state, m.query())
}

// visibleFields is the number of auth inputs shown in the current mode.
func (m Model) visibleFields() int {
	if m.signUp {
		return 3
	}
	return 2
}
