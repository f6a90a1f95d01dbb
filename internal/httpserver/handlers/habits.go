package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/serene/internal/domain"
	"github.com/MrSnakeDoc/serene/internal/httpserver/deps"
)

type habitPatchRequest struct {
	Name *string `json:"name"`
	Icon *string `json:"icon"`
}

type toggleRequest struct {
	HabitID string `json:"habitId"`
}

// ListHabits returns the caller's habit definitions.
func ListHabits(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := session(r)
		if err != nil {
			writeError(d, w, r, err)
			return
		}

		habits, err := d.Store.ListHabits(r.Context(), sess.UserID)
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, habits)
	}
}

// AddHabit creates a habit. Both name and icon are required here; the
// store only insists on the name.
func AddHabit(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := session(r)
		if err != nil {
			writeError(d, w, r, err)
			return
		}

		var in domain.HabitInput
		if err := decodeJSON(r, &in); err != nil {
			writeError(d, w, r, err)
			return
		}
		in.Name = strings.TrimSpace(in.Name)
		in.Icon = strings.TrimSpace(in.Icon)
		if in.Name == "" || in.Icon == "" {
			writeError(d, w, r, domain.Invalidf("habit name and icon are required"))
			return
		}

		h, err := d.Store.AddHabit(r.Context(), sess.UserID, in)
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, h)
	}
}

// UpdateHabit applies {name?,icon?} to {id}.
func UpdateHabit(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := session(r)
		if err != nil {
			writeError(d, w, r, err)
			return
		}

		var req habitPatchRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(d, w, r, err)
			return
		}

		h, err := d.Store.UpdateHabit(r.Context(), sess.UserID, domain.HabitPatch{
			ID:   chi.URLParam(r, "id"),
			Name: req.Name,
			Icon: req.Icon,
		})
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, h)
	}
}

// DeleteHabit removes the definition of {id}. Logs keep the id.
func DeleteHabit(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := session(r)
		if err != nil {
			writeError(d, w, r, err)
			return
		}

		if err := d.Store.DeleteHabit(r.Context(), sess.UserID, chi.URLParam(r, "id")); err != nil {
			writeError(d, w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ListHabitLogs returns the full date -> completed ids mapping.
func ListHabitLogs(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := session(r)
		if err != nil {
			writeError(d, w, r, err)
			return
		}

		logs, err := d.Store.ListLogs(r.Context(), sess.UserID)
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, logs)
	}
}

// ToggleHabit flips {habitId} on {date} and returns the mapping read after
// the commit.
func ToggleHabit(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := session(r)
		if err != nil {
			writeError(d, w, r, err)
			return
		}

		var req toggleRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(d, w, r, err)
			return
		}

		logs, err := d.Store.ToggleHabit(r.Context(), sess.UserID, strings.TrimSpace(req.HabitID), chi.URLParam(r, "date"))
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, logs)
	}
}
