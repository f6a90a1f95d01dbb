// Package client is a typed HTTP client for the Serene API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/MrSnakeDoc/serene/internal/auth"
	"github.com/MrSnakeDoc/serene/internal/dashboard"
	"github.com/MrSnakeDoc/serene/internal/domain"
	"github.com/MrSnakeDoc/serene/internal/utils"
)

// DefaultTimeout bounds one request when the caller's context has no deadline.
const DefaultTimeout = 15 * time.Second

// APIError is a non-2xx answer decoded from {"title","description"}.
type APIError struct {
	Status      int
	Title       string
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Title, e.Description)
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Status == status
}

// Icons is the habit icon catalog.
type Icons struct {
	Icons    []string `json:"icons"`
	Fallback string   `json:"fallback"`
}

// Client talks to one server. It keeps the session token of the last
// successful sign-in and is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

// New creates a client for baseURL (e.g. "http://localhost:8080").
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// Token returns the current session token, empty when signed out.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken replaces the session token.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// ─────────────────────────────────────────────────────────────────
// Auth
// ─────────────────────────────────────────────────────────────────

func (c *Client) SignUp(ctx context.Context, email, password, displayName string) (auth.Result, error) {
	var res auth.Result
	err := c.do(ctx, http.MethodPost, "/api/auth/signup", map[string]string{
		"email": email, "password": password, "displayName": displayName,
	}, &res)
	if err != nil {
		return auth.Result{}, err
	}
	c.SetToken(res.Token)
	return res, nil
}

func (c *Client) SignIn(ctx context.Context, email, password string) (auth.Result, error) {
	var res auth.Result
	err := c.do(ctx, http.MethodPost, "/api/auth/signin", map[string]string{
		"email": email, "password": password,
	}, &res)
	if err != nil {
		return auth.Result{}, err
	}
	c.SetToken(res.Token)
	return res, nil
}

// SignOut revokes the token server side and forgets it.
func (c *Client) SignOut(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/api/auth/signout", nil, nil); err != nil {
		return err
	}
	c.SetToken("")
	return nil
}

func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/password-reset", map[string]string{"email": email}, nil)
}

func (c *Client) ConfirmPasswordReset(ctx context.Context, token, password string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/password-reset/confirm", map[string]string{
		"token": token, "password": password,
	}, nil)
}

func (c *Client) Me(ctx context.Context) (auth.User, error) {
	var u auth.User
	err := c.do(ctx, http.MethodGet, "/api/me", nil, &u)
	return u, err
}

func (c *Client) UpdateProfile(ctx context.Context, upd auth.ProfileUpdate) (auth.User, error) {
	var u auth.User
	err := c.do(ctx, http.MethodPatch, "/api/me", upd, &u)
	return u, err
}

// ─────────────────────────────────────────────────────────────────
// Journal
// ─────────────────────────────────────────────────────────────────

func (c *Client) Icons(ctx context.Context) (Icons, error) {
	var icons Icons
	err := c.do(ctx, http.MethodGet, "/api/icons", nil, &icons)
	return icons, err
}

// Dashboard loads the snapshot of q.Date. The first call for a new account
// writes its starter data.
func (c *Client) Dashboard(ctx context.Context, q dashboard.Query) (dashboard.Snapshot, error) {
	v := url.Values{}
	if q.Date != "" {
		v.Set("date", q.Date)
	}
	if q.Search != "" {
		v.Set("q", q.Search)
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		v.Set("pageSize", strconv.Itoa(q.PageSize))
	}

	path := "/api/dashboard"
	if len(v) > 0 {
		path += "?" + v.Encode()
	}

	var snap dashboard.Snapshot
	err := c.do(ctx, http.MethodGet, path, nil, &snap)
	return snap, err
}

func (c *Client) Entries(ctx context.Context) ([]domain.Entry, error) {
	var entries []domain.Entry
	err := c.do(ctx, http.MethodGet, "/api/entries", nil, &entries)
	return entries, err
}

// SaveEntry creates e, or updates its content when e.ID is set.
func (c *Client) SaveEntry(ctx context.Context, e domain.Entry) (domain.Entry, error) {
	var saved domain.Entry
	err := c.do(ctx, http.MethodPost, "/api/entries", e, &saved)
	return saved, err
}

func (c *Client) UpdateEntry(ctx context.Context, id, content string) (domain.Entry, error) {
	var saved domain.Entry
	err := c.do(ctx, http.MethodPut, "/api/entries/"+url.PathEscape(id), map[string]string{"content": content}, &saved)
	return saved, err
}

func (c *Client) DeleteEntry(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/entries/"+url.PathEscape(id), nil, nil)
}

func (c *Client) Habits(ctx context.Context) ([]domain.Habit, error) {
	var habits []domain.Habit
	err := c.do(ctx, http.MethodGet, "/api/habits", nil, &habits)
	return habits, err
}

func (c *Client) AddHabit(ctx context.Context, in domain.HabitInput) (domain.Habit, error) {
	var h domain.Habit
	err := c.do(ctx, http.MethodPost, "/api/habits", in, &h)
	return h, err
}

func (c *Client) UpdateHabit(ctx context.Context, p domain.HabitPatch) (domain.Habit, error) {
	var h domain.Habit
	body := map[string]*string{"name": p.Name, "icon": p.Icon}
	err := c.do(ctx, http.MethodPatch, "/api/habits/"+url.PathEscape(p.ID), body, &h)
	return h, err
}

func (c *Client) DeleteHabit(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/habits/"+url.PathEscape(id), nil, nil)
}

func (c *Client) HabitLogs(ctx context.Context) (domain.HabitLog, error) {
	logs := domain.HabitLog{}
	err := c.do(ctx, http.MethodGet, "/api/habit-logs", nil, &logs)
	return logs, err
}

// ToggleHabit flips habitID on date and returns the full mapping.
func (c *Client) ToggleHabit(ctx context.Context, date, habitID string) (domain.HabitLog, error) {
	logs := domain.HabitLog{}
	err := c.do(ctx, http.MethodPost, "/api/habit-logs/"+url.PathEscape(date)+"/toggle",
		map[string]string{"habitId": habitID}, &logs)
	return logs, err
}

// Prompt asks for a writing prompt. A nil previous lets the server use the
// account's latest entries.
func (c *Client) Prompt(ctx context.Context, previous *string) (string, error) {
	var res struct {
		Prompt string `json:"prompt"`
	}
	err := c.do(ctx, http.MethodPost, "/api/prompt", map[string]*string{"previousEntries": previous}, &res)
	return res.Prompt, err
}

// ─────────────────────────────────────────────────────────────────
// Transport
// ─────────────────────────────────────────────────────────────────

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach server: %w", err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	ae := &APIError{Status: resp.StatusCode}

	var body struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(data, &body) == nil && body.Title != "" {
		ae.Title, ae.Description = body.Title, body.Description
		return ae
	}

	ae.Title = http.StatusText(resp.StatusCode)
	ae.Description = strings.TrimSpace(string(data))
	if ae.Description == "" {
		ae.Description = ae.Title
	}
	return ae
}
