package deps

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/serene/internal/auth"
	"github.com/MrSnakeDoc/serene/internal/dashboard"
	"github.com/MrSnakeDoc/serene/internal/logger"
	"github.com/MrSnakeDoc/serene/internal/store"
)

// Dashboard loads the raw state of one user, seeding it when new.
type Dashboard interface {
	Load(ctx context.Context, userID string) dashboard.State
}

// Prompter returns a writing prompt, never an empty string.
type Prompter interface {
	Generate(ctx context.Context, previousEntries string) string
}

type Deps struct {
	Logger       logger.Logger
	StartTime    time.Time
	Version      string
	Commit       string
	BuildDate    string
	GoVersion    string
	TimeNow      func() time.Time // for testing, defaults to time.Now
	AllowedHosts []string         // Host headers allowed to access the server
	AllowedCIDRS []string         // IPs allowed to access the /infra endpoint
	TrustProxy   bool             // true if running behind a trusted reverse proxy (e.g., cloudflared)
	CORSOrigins  []string         // origins allowed by the CORS middleware

	StoreKind string      // "redis" | "sqlite" | "memory", reported by /infra and /healthz
	Store     store.Store // per-user data, always addressed with the session's user id
	Auth      auth.Provider
	Dashboard Dashboard
	Prompt    Prompter

	PromptEnabled    bool // a generation backend is configured
	PromptMaxEntries int  // entries fed to the prompt when the client sends none

	AuthRateBurst  int // token bucket of the auth routes, per client IP
	AuthRatePerMin int
}

// Now returns the current time through TimeNow when set.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
