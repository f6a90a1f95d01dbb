package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/MrSnakeDoc/serene/internal/domain"
	"github.com/MrSnakeDoc/serene/internal/httpserver/deps"
)

type iconsResponse struct {
	Icons    []string `json:"icons"`
	Fallback string   `json:"fallback"`
}

// Icons lists the habit icon catalog.
func Icons(_ deps.Deps) http.HandlerFunc {
	body := iconsResponse{Icons: domain.IconNames(), Fallback: domain.FallbackIcon}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(body)
	}
}
