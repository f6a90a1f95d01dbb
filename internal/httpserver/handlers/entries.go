package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/serene/internal/domain"
	"github.com/MrSnakeDoc/serene/internal/httpserver/deps"
)

var errEmptyContent = domain.Invalidf("entry content must not be empty")

type contentRequest struct {
	Content string `json:"content"`
}

// ListEntries returns every entry of the caller, unordered.
func ListEntries(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := session(r)
		if err != nil {
			writeError(d, w, r, err)
			return
		}

		entries, err := d.Store.ListEntries(r.Context(), sess.UserID)
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

// SaveEntry creates an entry (201) or, when the body carries an id, updates
// that entry's content (200).
func SaveEntry(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := session(r)
		if err != nil {
			writeError(d, w, r, err)
			return
		}

		var in domain.Entry
		if err := decodeJSON(r, &in); err != nil {
			writeError(d, w, r, err)
			return
		}

		if !in.HasContent() {
			writeError(d, w, r, errEmptyContent)
			return
		}

		saved, err := d.Store.SaveEntry(r.Context(), sess.UserID, in)
		if err != nil {
			writeError(d, w, r, err)
			return
		}

		status := http.StatusOK
		if in.ID == "" {
			status = http.StatusCreated
		}
		writeJSON(w, status, saved)
	}
}

// UpdateEntry replaces the content of {id}.
func UpdateEntry(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := session(r)
		if err != nil {
			writeError(d, w, r, err)
			return
		}

		var req contentRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(d, w, r, err)
			return
		}

		in := domain.Entry{ID: chi.URLParam(r, "id"), Content: req.Content}
		if !in.HasContent() {
			writeError(d, w, r, errEmptyContent)
			return
		}

		saved, err := d.Store.SaveEntry(r.Context(), sess.UserID, in)
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, saved)
	}
}

// DeleteEntry removes {id}; deleting a missing entry succeeds.
func DeleteEntry(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := session(r)
		if err != nil {
			writeError(d, w, r, err)
			return
		}

		if err := d.Store.DeleteEntry(r.Context(), sess.UserID, chi.URLParam(r, "id")); err != nil {
			writeError(d, w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
