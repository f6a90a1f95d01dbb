package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/MrSnakeDoc/serene/internal/dashboard"
	"github.com/MrSnakeDoc/serene/internal/domain"
	"github.com/MrSnakeDoc/serene/internal/httpserver/deps"
)

const maxPageSize = 50

// Dashboard loads (and on first use seeds) the caller's data and returns
// the snapshot of the selected day. ?date defaults to today.
func Dashboard(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := session(r)
		if err != nil {
			writeError(d, w, r, err)
			return
		}

		q, err := parseDashboardQuery(r, domain.FormatDate(d.Now()))
		if err != nil {
			writeError(d, w, r, err)
			return
		}

		st := d.Dashboard.Load(r.Context(), sess.UserID)
		writeJSON(w, http.StatusOK, dashboard.Compose(st, q))
	}
}

func parseDashboardQuery(r *http.Request, today string) (dashboard.Query, error) {
	v := r.URL.Query()
	q := dashboard.Query{
		Date:     strings.TrimSpace(v.Get("date")),
		Search:   strings.TrimSpace(v.Get("q")),
		Page:     1,
		PageSize: dashboard.DefaultPageSize,
	}

	if q.Date == "" {
		q.Date = today
	}
	if err := domain.ValidateDate(q.Date); err != nil {
		return q, err
	}

	if raw := v.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return q, domain.Invalidf("page must be a positive integer, got %q", raw)
		}
		q.Page = n
	}
	if raw := v.Get("pageSize"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxPageSize {
			return q, domain.Invalidf("pageSize must be between 1 and %d, got %q", maxPageSize, raw)
		}
		q.PageSize = n
	}
	return q, nil
}
