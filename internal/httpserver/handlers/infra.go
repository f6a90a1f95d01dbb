package handlers

import (
	"context"
	"net/http"

	"github.com/MrSnakeDoc/serene/internal/httpserver/deps"
)

type componentStatus struct {
	OK     bool   `json:"ok"`
	Mode   string `json:"mode,omitempty"`
	Impact string `json:"impact,omitempty"`
	Error  string `json:"error,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

// Infra reports the state of each backing component.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components := map[string]componentStatus{
			"store":  checkStore(r.Context(), d),
			"prompt": promptStatus(d),
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Mode:       determineMode(components),
			Components: components,
		})
	}
}

func determineMode(components map[string]componentStatus) string {
	if s, ok := components["store"]; ok && !s.OK {
		return "critical"
	}
	if p, ok := components["prompt"]; ok && !p.OK {
		return "degraded"
	}
	return "optimal"
}

func checkStore(ctx context.Context, d deps.Deps) componentStatus {
	ctx, cancel := context.WithTimeout(ctx, readyTimeout)
	defer cancel()

	if err := d.Store.Ping(ctx); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   d.StoreKind,
			Impact: "reads-and-writes-failing",
			Error:  err.Error(),
		}
	}
	return componentStatus{OK: true, Mode: d.StoreKind}
}

func promptStatus(d deps.Deps) componentStatus {
	if !d.PromptEnabled {
		return componentStatus{
			OK:     false,
			Mode:   "fallback",
			Impact: "fixed-prompt-only",
		}
	}
	return componentStatus{OK: true, Mode: "genai"}
}
