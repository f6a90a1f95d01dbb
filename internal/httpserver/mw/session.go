package mw

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/serene/internal/auth"
	"github.com/MrSnakeDoc/serene/internal/logger"
)

// Verifier resolves a bearer token into a session.
type Verifier interface {
	Verify(ctx context.Context, token string) (auth.Session, error)
}

type sessionKey struct{}

// SessionFrom returns the session stored by RequireSession.
func SessionFrom(ctx context.Context) (auth.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(auth.Session)
	return s, ok
}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s auth.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// RequireSession rejects requests without a valid "Authorization: Bearer"
// token and stores the verified session in the request context.
func RequireSession(v Verifier, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				WriteError(w, http.StatusUnauthorized, "Not signed in", "Please sign in to continue.")
				return
			}

			sess, err := v.Verify(r.Context(), token)
			if err != nil {
				var ae *auth.Error
				if errors.As(err, &ae) {
					WriteError(w, http.StatusUnauthorized, ae.Title, ae.Message)
					return
				}
				if errors.Is(err, auth.ErrUnauthenticated) {
					WriteError(w, http.StatusUnauthorized, "Session expired", "Please sign in again.")
					return
				}
				log.Error("failed to verify session", logger.Error(err))
				WriteError(w, http.StatusInternalServerError, "Something went wrong", "Please try again later.")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
