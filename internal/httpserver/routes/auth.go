package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/serene/internal/httpserver/deps"
	"github.com/MrSnakeDoc/serene/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/serene/internal/httpserver/mw"
)

func init() {
	Register(registerAuth)
}

func registerAuth(r chi.Router, d deps.Deps) {
	limited := r
	if d.AuthRateBurst > 0 {
		// one bucket per client IP shared by every credential endpoint
		limited = r.With(mw.RateLimit(mw.RateLimitConfig{
			Burst:             d.AuthRateBurst,
			RefillPerIPPerMin: d.AuthRatePerMin,
			MaxEntries:        10_000,
			TrustProxy:        d.TrustProxy,
		}))
	}
	limited.Post("/api/auth/signup", handlers.SignUp(d))
	limited.Post("/api/auth/signin", handlers.SignIn(d))
	limited.Post("/api/auth/password-reset", handlers.PasswordReset(d))
	limited.Post("/api/auth/password-reset/confirm", handlers.ConfirmPasswordReset(d))

	authed := r.With(mw.RequireSession(d.Auth, d.Logger))
	authed.Post("/api/auth/signout", handlers.SignOut(d))
	authed.Get("/api/me", handlers.Me(d))
	authed.Patch("/api/me", handlers.UpdateMe(d))
}
