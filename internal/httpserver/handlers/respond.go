package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/serene/internal/auth"
	"github.com/MrSnakeDoc/serene/internal/domain"
	"github.com/MrSnakeDoc/serene/internal/httpserver/deps"
	"github.com/MrSnakeDoc/serene/internal/httpserver/mw"
	"github.com/MrSnakeDoc/serene/internal/logger"
)

const maxBodyBytes = 1 << 20

// errBadBody marks a request body that is not the expected JSON document.
var errBadBody = errors.New("malformed request body")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads one JSON document into v. An empty body leaves v as is.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: %v", errBadBody, err)
	}
	return nil
}

// statusOf maps an error onto the API status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, errBadBody), errors.Is(err, domain.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadySeeded), errors.Is(err, domain.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, domain.ErrContention):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError answers with {"title","description"}. Auth errors are shown
// verbatim; internal errors never leak their text.
func writeError(d deps.Deps, w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)

	var ae *auth.Error
	if errors.As(err, &ae) {
		mw.WriteError(w, status, ae.Title, ae.Message)
		return
	}

	switch status {
	case http.StatusInternalServerError:
		d.Logger.Error("request failed",
			logger.String("path", r.URL.Path),
			logger.String("request_id", middleware.GetReqID(r.Context())),
			logger.Error(err))
		mw.WriteError(w, status, "Something went wrong", "Please try again later.")
	case http.StatusServiceUnavailable:
		d.Logger.Warn("request gave up under contention",
			logger.String("path", r.URL.Path),
			logger.Error(err))
		mw.WriteError(w, status, "Busy", err.Error())
	default:
		mw.WriteError(w, status, http.StatusText(status), err.Error())
	}
}

// session returns the verified session. Routes using it are mounted behind
// mw.RequireSession, so a missing session is a wiring bug.
func session(r *http.Request) (auth.Session, error) {
	s, ok := mw.SessionFrom(r.Context())
	if !ok {
		return auth.Session{}, auth.ErrUnauthenticated
	}
	return s, nil
}
