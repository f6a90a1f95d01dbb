package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/MrSnakeDoc/serene/internal/auth"
	"github.com/MrSnakeDoc/serene/internal/client"
	"github.com/MrSnakeDoc/serene/internal/config"
	"github.com/MrSnakeDoc/serene/internal/dashboard"
	"github.com/MrSnakeDoc/serene/internal/domain"
	"github.com/MrSnakeDoc/serene/internal/httpserver"
	"github.com/MrSnakeDoc/serene/internal/httpserver/deps"
	"github.com/MrSnakeDoc/serene/internal/logger"
	"github.com/MrSnakeDoc/serene/internal/mailer"
	"github.com/MrSnakeDoc/serene/internal/prompt"
	"github.com/MrSnakeDoc/serene/internal/sources/seed"
	"github.com/MrSnakeDoc/serene/internal/store/memory"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	log := logger.Nop()
	st := memory.New()
	seeds, err := seed.NewSource("")
	require.NoError(t, err)

	d := deps.Deps{
		Logger:    log,
		StartTime: time.Now(),
		StoreKind: config.StoreMemory,
		Store:     st,
		Auth: auth.NewService(st, mailer.NewLogMailer(log), auth.Options{
			Secret:     strings.Repeat("x", config.MinJWTSecretLen),
			TokenTTL:   time.Hour,
			ResetTTL:   time.Hour,
			BcryptCost: bcrypt.MinCost,
		}, log),
		Dashboard:        dashboard.NewService(st, seeds, log),
		Prompt:           prompt.NewGenerator(nil, time.Second, log),
		PromptMaxEntries: 5,
	}

	cfg := &config.Config{RequestTimeout: 5 * time.Second}
	srv := httptest.NewServer(httpserver.New(cfg, log, d).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestClientRoundTrip(t *testing.T) {
	ctx := context.Background()
	srv := newServer(t)
	c := client.New(srv.URL+"/", srv.Client())

	res, err := c.SignUp(ctx, "kim@example.com", "secret123", "Kim")
	require.NoError(t, err)
	assert.Equal(t, res.Token, c.Token())
	assert.Equal(t, "Kim", res.User.DisplayName)

	snap, err := c.Dashboard(ctx, dashboard.Query{Date: "2024-05-10", PageSize: 2})
	require.NoError(t, err)
	assert.True(t, snap.Seeded)
	assert.Len(t, snap.Entries.Items, 2)

	habits, err := c.Habits(ctx)
	require.NoError(t, err)
	assert.Len(t, habits, 5)

	saved, err := c.SaveEntry(ctx, domain.Entry{Date: "2024-05-10", Content: "hello"})
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)

	updated, err := c.UpdateEntry(ctx, saved.ID, "hello again")
	require.NoError(t, err)
	assert.Equal(t, "hello again", updated.Content)

	logs, err := c.ToggleHabit(ctx, "2024-05-10", "h1")
	require.NoError(t, err)
	assert.True(t, logs.Day("2024-05-10").Has("h1"))

	name := "Read more"
	h, err := c.UpdateHabit(ctx, domain.HabitPatch{ID: "h1", Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Read more", h.Name)
	assert.NotEmpty(t, h.Icon)

	text, err := c.Prompt(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, prompt.FallbackPrompt, text)

	require.NoError(t, c.DeleteEntry(ctx, saved.ID))
	require.NoError(t, c.SignOut(ctx))
	assert.Empty(t, c.Token())

	_, err = c.Entries(ctx)
	assert.True(t, client.IsStatus(err, http.StatusUnauthorized), "got %v", err)
}

func TestClientDecodesAPIErrors(t *testing.T) {
	ctx := context.Background()
	c := client.New(newServer(t).URL, nil)

	_, err := c.SignIn(ctx, "nobody@example.com", "secret123")
	require.Error(t, err)

	var ae *client.APIError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, http.StatusUnauthorized, ae.Status)
	assert.Equal(t, "Sign in failed", ae.Title)
	assert.Equal(t, "Invalid email or password.", ae.Description)
	assert.Empty(t, c.Token())
}

func TestClientPlainTextError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := client.New(srv.URL, nil).Habits(context.Background())

	var ae *client.APIError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, http.StatusBadGateway, ae.Status)
	assert.Equal(t, "Bad Gateway", ae.Title)
	assert.Equal(t, "upstream exploded", ae.Description)
}
