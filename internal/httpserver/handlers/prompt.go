package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/serene/internal/httpserver/deps"
	"github.com/MrSnakeDoc/serene/internal/logger"
	"github.com/MrSnakeDoc/serene/internal/prompt"
)

type promptRequest struct {
	PreviousEntries *string `json:"previousEntries"`
}

type promptResponse struct {
	Prompt string `json:"prompt"`
}

// Prompt returns a writing prompt. Without previousEntries in the body the
// caller's most recent entries are used. It always answers 200.
func Prompt(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := session(r)
		if err != nil {
			writeError(d, w, r, err)
			return
		}

		var req promptRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(d, w, r, err)
			return
		}

		var previous string
		if req.PreviousEntries != nil {
			previous = *req.PreviousEntries
		} else {
			entries, err := d.Store.ListEntries(r.Context(), sess.UserID)
			if err != nil {
				d.Logger.Warn("failed to read entries for prompt, continuing without",
					logger.String("user_id", sess.UserID),
					logger.Error(err))
			}
			previous = prompt.PreviousEntriesText(entries, d.PromptMaxEntries)
		}

		writeJSON(w, http.StatusOK, promptResponse{Prompt: d.Prompt.Generate(r.Context(), previous)})
	}
}
