package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/MrSnakeDoc/serene/internal/auth"
	"github.com/MrSnakeDoc/serene/internal/config"
	"github.com/MrSnakeDoc/serene/internal/dashboard"
	"github.com/MrSnakeDoc/serene/internal/domain"
	"github.com/MrSnakeDoc/serene/internal/httpserver"
	"github.com/MrSnakeDoc/serene/internal/httpserver/deps"
	"github.com/MrSnakeDoc/serene/internal/logger"
	"github.com/MrSnakeDoc/serene/internal/sources/seed"
	"github.com/MrSnakeDoc/serene/internal/store/memory"
)

// ─────────────────────────────────────────────────────────────────
// Harness
// ─────────────────────────────────────────────────────────────────

type outbox struct {
	mu    sync.Mutex
	links map[string]string // email -> last link
}

func (o *outbox) SendPasswordReset(_ context.Context, to, link string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.links[to] = link
	return nil
}

func (o *outbox) link(to string) string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.links[to]
}

type recordingPrompter struct {
	mu     sync.Mutex
	inputs []string
}

func (p *recordingPrompter) Generate(_ context.Context, previous string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inputs = append(p.inputs, previous)
	return "What made you smile today?"
}

type env struct {
	handler  http.Handler
	mail     *outbox
	prompter *recordingPrompter
}

func newEnv(t *testing.T, tweak func(*deps.Deps)) *env {
	t.Helper()

	log := logger.Nop()
	st := memory.New()
	mail := &outbox{links: map[string]string{}}
	prompter := &recordingPrompter{}

	seeds, err := seed.NewSource("")
	require.NoError(t, err)

	d := deps.Deps{
		Logger:    log,
		StartTime: time.Now(),
		Version:   "test",
		StoreKind: config.StoreMemory,
		Store:     st,
		Auth: auth.NewService(st, mail, auth.Options{
			Secret:     strings.Repeat("k", config.MinJWTSecretLen),
			TokenTTL:   time.Hour,
			ResetTTL:   time.Hour,
			ResetURL:   "http://serene.test/reset",
			BcryptCost: bcrypt.MinCost,
		}, log),
		Dashboard:        dashboard.NewService(st, seeds, log),
		Prompt:           prompter,
		PromptMaxEntries: 5,
	}
	if tweak != nil {
		tweak(&d)
	}

	cfg := &config.Config{ListenPort: ":0", RequestTimeout: 5 * time.Second}
	return &env{
		handler:  httpserver.New(cfg, log, d).Handler(),
		mail:     mail,
		prompter: prompter,
	}
}

func (e *env) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *env) signUp(t *testing.T, email string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"email": email, "password": "secret123", "displayName": "Tester",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var res auth.Result
	decode(t, rec, &res)
	require.NotEmpty(t, res.Token)
	return res.Token
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

type errorBody struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func requireError(t *testing.T, rec *httptest.ResponseRecorder, status int) errorBody {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
	var body errorBody
	decode(t, rec, &body)
	require.NotEmpty(t, body.Title)
	require.NotEmpty(t, body.Description)
	return body
}

// ─────────────────────────────────────────────────────────────────
// Ops
// ─────────────────────────────────────────────────────────────────

func TestHealthAndReadiness(t *testing.T) {
	e := newEnv(t, nil)

	rec := e.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	rec = e.do(t, http.MethodGet, "/readyz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ready":true}`, rec.Body.String())
}

func TestInfraRespectsCIDRs(t *testing.T) {
	e := newEnv(t, func(d *deps.Deps) { d.AllowedCIDRS = []string{"10.0.0.0/8"} })

	req := httptest.NewRequest(http.MethodGet, "/infra", nil)
	req.RemoteAddr = "192.0.2.10:5555"
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	requireError(t, rec, http.StatusForbidden)

	req = httptest.NewRequest(http.MethodGet, "/infra", nil)
	req.RemoteAddr = "10.1.2.3:5555"
	rec = httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Mode string `json:"mode"`
	}
	decode(t, rec, &body)
	assert.Equal(t, "degraded", body.Mode) // no prompt backend configured
}

func TestUnknownRouteIsJSON(t *testing.T) {
	e := newEnv(t, nil)
	requireError(t, e.do(t, http.MethodGet, "/nope", "", nil), http.StatusNotFound)
}

func TestIconsArePublic(t *testing.T) {
	e := newEnv(t, nil)

	rec := e.do(t, http.MethodGet, "/api/icons", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Icons    []string `json:"icons"`
		Fallback string   `json:"fallback"`
	}
	decode(t, rec, &body)
	assert.Equal(t, domain.FallbackIcon, body.Fallback)
	assert.Contains(t, body.Icons, "Book")
}

// ─────────────────────────────────────────────────────────────────
// Auth
// ─────────────────────────────────────────────────────────────────

func TestProtectedRoutesNeedASession(t *testing.T) {
	e := newEnv(t, nil)

	for _, path := range []string{"/api/entries", "/api/habits", "/api/habit-logs", "/api/dashboard", "/api/me"} {
		requireError(t, e.do(t, http.MethodGet, path, "", nil), http.StatusUnauthorized)
		requireError(t, e.do(t, http.MethodGet, path, "garbage", nil), http.StatusUnauthorized)
	}
}

func TestSignUpSignInSignOut(t *testing.T) {
	e := newEnv(t, nil)
	token := e.signUp(t, "ana@example.com")

	body := requireError(t, e.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"email": "ANA@example.com", "password": "secret123",
	}), http.StatusConflict)
	assert.Equal(t, "Sign up failed", body.Title)

	body = requireError(t, e.do(t, http.MethodPost, "/api/auth/signin", "", map[string]string{
		"email": "ana@example.com", "password": "wrong-password",
	}), http.StatusUnauthorized)
	assert.Equal(t, "Invalid email or password.", body.Description)

	rec := e.do(t, http.MethodPost, "/api/auth/signin", "", map[string]string{
		"email": "ana@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me auth.User
	decode(t, rec, &me)
	assert.Equal(t, "Tester", me.DisplayName)

	rec = e.do(t, http.MethodPatch, "/api/me", token, map[string]string{"photoURL": "https://img.test/a.png"})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &me)
	assert.Equal(t, "https://img.test/a.png", me.PhotoURL)
	assert.Equal(t, "Tester", me.DisplayName)

	require.Equal(t, http.StatusNoContent, e.do(t, http.MethodPost, "/api/auth/signout", token, nil).Code)
	requireError(t, e.do(t, http.MethodGet, "/api/me", token, nil), http.StatusUnauthorized)
}

func TestSignUpRejectsBadInput(t *testing.T) {
	e := newEnv(t, nil)

	requireError(t, e.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"email": "not-an-email", "password": "secret123",
	}), http.StatusBadRequest)
	requireError(t, e.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"email": "bo@example.com", "password": "123",
	}), http.StatusBadRequest)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	requireError(t, rec, http.StatusBadRequest)
}

func TestPasswordResetFlow(t *testing.T) {
	e := newEnv(t, nil)
	e.signUp(t, "cy@example.com")

	body := requireError(t, e.do(t, http.MethodPost, "/api/auth/password-reset", "", map[string]string{
		"email": "ghost@example.com",
	}), http.StatusNotFound)
	assert.Equal(t, "No account found for this email.", body.Description)

	rec := e.do(t, http.MethodPost, "/api/auth/password-reset", "", map[string]string{"email": "cy@example.com"})
	require.Equal(t, http.StatusAccepted, rec.Code)

	link, err := url.Parse(e.mail.link("cy@example.com"))
	require.NoError(t, err)
	token := link.Query().Get("token")
	require.NotEmpty(t, token)

	confirm := map[string]string{"token": token, "password": "brand-new-pass"}
	require.Equal(t, http.StatusNoContent, e.do(t, http.MethodPost, "/api/auth/password-reset/confirm", "", confirm).Code)
	requireError(t, e.do(t, http.MethodPost, "/api/auth/password-reset/confirm", "", confirm), http.StatusBadRequest)

	rec = e.do(t, http.MethodPost, "/api/auth/signin", "", map[string]string{
		"email": "cy@example.com", "password": "brand-new-pass",
	})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthRoutesAreRateLimited(t *testing.T) {
	e := newEnv(t, func(d *deps.Deps) {
		d.AuthRateBurst = 2
		d.AuthRatePerMin = 1
	})

	creds := map[string]string{"email": "dan@example.com", "password": "whatever1"}
	for i := 0; i < 2; i++ {
		requireError(t, e.do(t, http.MethodPost, "/api/auth/signin", "", creds), http.StatusUnauthorized)
	}
	rec := e.do(t, http.MethodPost, "/api/auth/signin", "", creds)
	requireError(t, rec, http.StatusTooManyRequests)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

// ─────────────────────────────────────────────────────────────────
// Journal
// ─────────────────────────────────────────────────────────────────

func TestDashboardSeedsOnce(t *testing.T) {
	e := newEnv(t, nil)
	token := e.signUp(t, "eve@example.com")

	rec := e.do(t, http.MethodGet, "/api/dashboard", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var snap dashboard.Snapshot
	decode(t, rec, &snap)
	assert.True(t, snap.Seeded)
	assert.Len(t, snap.Habits, 5)
	assert.Len(t, snap.Week, dashboard.WeekLength)
	assert.Equal(t, 4, snap.Entries.Total)
	assert.Len(t, snap.Entries.Items, 4)

	rec = e.do(t, http.MethodGet, "/api/dashboard?page=1&pageSize=2", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	snap = dashboard.Snapshot{}
	decode(t, rec, &snap)
	assert.False(t, snap.Seeded)
	assert.Len(t, snap.Entries.Items, 2)
	assert.Equal(t, 2, snap.Entries.TotalPages)
}

func TestDashboardValidatesQuery(t *testing.T) {
	e := newEnv(t, nil)
	token := e.signUp(t, "fay@example.com")

	for _, q := range []string{"date=2024-13-01", "date=yesterday", "page=0", "pageSize=abc", "pageSize=500"} {
		requireError(t, e.do(t, http.MethodGet, "/api/dashboard?"+q, token, nil), http.StatusBadRequest)
	}

	rec := e.do(t, http.MethodGet, "/api/dashboard?date=2024-05-10", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var snap dashboard.Snapshot
	decode(t, rec, &snap)
	assert.Equal(t, "2024-05-10", snap.Date)
	assert.Equal(t, "2024-05-04", snap.Week[0].Date)
	assert.Equal(t, "May 10", snap.Week[6].Label)
}

func TestEntryLifecycle(t *testing.T) {
	e := newEnv(t, nil)
	token := e.signUp(t, "gus@example.com")

	requireError(t, e.do(t, http.MethodPost, "/api/entries", token, map[string]string{
		"date": "10/05/2024", "content": "x",
	}), http.StatusBadRequest)

	requireError(t, e.do(t, http.MethodPost, "/api/entries", token, map[string]string{
		"date": "2024-05-10", "content": "   \n\t",
	}), http.StatusBadRequest)

	rec := e.do(t, http.MethodPost, "/api/entries", token, map[string]string{
		"date": "2024-05-10", "content": "first draft",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created domain.Entry
	decode(t, rec, &created)
	require.NotEmpty(t, created.ID)

	rec = e.do(t, http.MethodPost, "/api/entries", token, map[string]string{
		"id": created.ID, "date": "2099-01-01", "content": "second draft",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var saved domain.Entry
	decode(t, rec, &saved)
	assert.Equal(t, created.ID, saved.ID)
	assert.Equal(t, "2024-05-10", saved.Date)
	assert.Equal(t, "second draft", saved.Content)

	requireError(t, e.do(t, http.MethodPost, "/api/entries", token, map[string]string{
		"id": created.ID, "content": " ",
	}), http.StatusBadRequest)
	requireError(t, e.do(t, http.MethodPut, "/api/entries/"+created.ID, token, map[string]string{"content": ""}), http.StatusBadRequest)

	rec = e.do(t, http.MethodPut, "/api/entries/"+created.ID, token, map[string]string{"content": "final"})
	require.Equal(t, http.StatusOK, rec.Code)

	requireError(t, e.do(t, http.MethodPut, "/api/entries/missing", token, map[string]string{"content": "x"}), http.StatusNotFound)

	rec = e.do(t, http.MethodGet, "/api/entries", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []domain.Entry
	decode(t, rec, &entries)
	require.Len(t, entries, 1)
	assert.Equal(t, "final", entries[0].Content)

	require.Equal(t, http.StatusNoContent, e.do(t, http.MethodDelete, "/api/entries/"+created.ID, token, nil).Code)
	require.Equal(t, http.StatusNoContent, e.do(t, http.MethodDelete, "/api/entries/"+created.ID, token, nil).Code)

	rec = e.do(t, http.MethodGet, "/api/entries", token, nil)
	entries = nil
	decode(t, rec, &entries)
	assert.Empty(t, entries)
}

func TestUsersAreIsolated(t *testing.T) {
	e := newEnv(t, nil)
	alice := e.signUp(t, "alice@example.com")
	bob := e.signUp(t, "bob@example.com")

	rec := e.do(t, http.MethodPost, "/api/entries", alice, map[string]string{"date": "2024-05-10", "content": "mine"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created domain.Entry
	decode(t, rec, &created)

	var entries []domain.Entry
	decode(t, e.do(t, http.MethodGet, "/api/entries", bob, nil), &entries)
	assert.Empty(t, entries)

	requireError(t, e.do(t, http.MethodPut, "/api/entries/"+created.ID, bob, map[string]string{"content": "stolen"}), http.StatusNotFound)
}

func TestHabitLifecycle(t *testing.T) {
	e := newEnv(t, nil)
	token := e.signUp(t, "hal@example.com")

	requireError(t, e.do(t, http.MethodPost, "/api/habits", token, map[string]string{"name": "Read"}), http.StatusBadRequest)
	requireError(t, e.do(t, http.MethodPost, "/api/habits", token, map[string]string{"name": "  ", "icon": "Book"}), http.StatusBadRequest)

	rec := e.do(t, http.MethodPost, "/api/habits", token, map[string]string{"name": "Read", "icon": "Book"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var h domain.Habit
	decode(t, rec, &h)
	require.NotEmpty(t, h.ID)

	requireError(t, e.do(t, http.MethodPatch, "/api/habits/"+h.ID, token, map[string]string{"name": ""}), http.StatusBadRequest)
	requireError(t, e.do(t, http.MethodPatch, "/api/habits/missing", token, map[string]string{"name": "x"}), http.StatusNotFound)

	rec = e.do(t, http.MethodPatch, "/api/habits/"+h.ID, token, map[string]string{"icon": "Moon"})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &h)
	assert.Equal(t, "Read", h.Name)
	assert.Equal(t, "Moon", h.Icon)

	require.Equal(t, http.StatusNoContent, e.do(t, http.MethodDelete, "/api/habits/"+h.ID, token, nil).Code)

	var habits []domain.Habit
	decode(t, e.do(t, http.MethodGet, "/api/habits", token, nil), &habits)
	assert.Empty(t, habits)
}

func TestToggleTwice(t *testing.T) {
	e := newEnv(t, nil)
	token := e.signUp(t, "ivy@example.com")
	path := "/api/habit-logs/2024-05-10/toggle"

	rec := e.do(t, http.MethodPost, path, token, map[string]string{"habitId": "h1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"2024-05-10":["h1"]}`, rec.Body.String())

	rec = e.do(t, http.MethodPost, path, token, map[string]string{"habitId": "h2"})
	assert.JSONEq(t, `{"2024-05-10":["h1","h2"]}`, rec.Body.String())

	rec = e.do(t, http.MethodPost, path, token, map[string]string{"habitId": "h1"})
	assert.JSONEq(t, `{"2024-05-10":["h2"]}`, rec.Body.String())

	rec = e.do(t, http.MethodGet, "/api/habit-logs", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"2024-05-10":["h2"]}`, rec.Body.String())

	requireError(t, e.do(t, http.MethodPost, "/api/habit-logs/10-05-2024/toggle", token, map[string]string{"habitId": "h1"}), http.StatusBadRequest)
	requireError(t, e.do(t, http.MethodPost, path, token, map[string]string{}), http.StatusBadRequest)
}

func TestPrompt(t *testing.T) {
	e := newEnv(t, nil)
	token := e.signUp(t, "joy@example.com")

	for _, in := range []domain.Entry{
		{Date: "2024-05-01", Content: "older", CreatedAt: "2024-05-01T08:00:00Z"},
		{Date: "2024-05-02", Content: "newer", CreatedAt: "2024-05-02T08:00:00Z"},
		{Date: "2024-05-03", Content: "   ", CreatedAt: "2024-05-03T08:00:00Z"},
	} {
		rec := e.do(t, http.MethodPost, "/api/entries", token, in)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := e.do(t, http.MethodPost, "/api/prompt", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"prompt":"What made you smile today?"}`, rec.Body.String())

	rec = e.do(t, http.MethodPost, "/api/prompt", token, map[string]string{"previousEntries": ""})
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, e.prompter.inputs, 2)
	assert.Equal(t, "newer\n\n---\n\nolder", e.prompter.inputs[0])
	assert.Equal(t, "", e.prompter.inputs[1])
}
