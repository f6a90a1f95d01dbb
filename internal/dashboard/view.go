package dashboard

import (
	"sort"
	"strings"

	"github.com/MrSnakeDoc/serene/internal/domain"
)

// DefaultPageSize is the page size of the past entries list
const DefaultPageSize = 5

// WeekLength is the number of days in the weekly chart
const WeekLength = 7

// Query selects what the snapshot shows
type Query struct {
	Date     string // selected day, YYYY-MM-DD
	Search   string
	Page     int // 1-based
	PageSize int
}

// HabitStatus is a habit as shown in the checklist for the selected day
type HabitStatus struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Icon      string `json:"icon"` // always a catalog icon
	Completed bool   `json:"completed"`
}

// DayCount is one bar of the weekly chart
type DayCount struct {
	Date      string `json:"date"`
	Label     string `json:"label"`
	Completed int    `json:"completed"`
}

// EntryPage is one page of the filtered, sorted entries
type EntryPage struct {
	Items      []domain.Entry `json:"items"`
	Search     string         `json:"search,omitempty"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	Total      int            `json:"total"`
	TotalPages int            `json:"totalPages"`
}

// Snapshot is everything the dashboard renders for one day
type Snapshot struct {
	Date         string          `json:"date"`
	EntryForDate *domain.Entry   `json:"entryForDate"`
	Entries      EntryPage       `json:"entries"`
	EntryDates   []string        `json:"entryDates"`
	Habits       []HabitStatus   `json:"habits"`
	Week         []DayCount      `json:"week"`
	Logs         domain.HabitLog `json:"logs"`
	Degraded     []string        `json:"degraded,omitempty"`
	Seeded       bool            `json:"seeded,omitempty"`
}

// Compose builds the snapshot of st for q. q.Date must be a valid date.
func Compose(st State, q Query) Snapshot {
	sorted := SortEntries(st.Entries)
	filtered := Search(sorted, q.Search)

	return Snapshot{
		Date:         q.Date,
		EntryForDate: EntryForDate(sorted, q.Date),
		Entries:      Paginate(filtered, q.Search, q.Page, q.PageSize),
		EntryDates:   EntryDates(st.Entries),
		Habits:       Checklist(st.Habits, st.Logs.Day(q.Date)),
		Week:         WeeklySeries(st.Logs, st.Habits, q.Date),
		Logs:         st.Logs,
		Degraded:     st.Degraded,
		Seeded:       st.Seeded,
	}
}

// SortEntries returns a copy ordered newest first by display time
func SortEntries(entries []domain.Entry) []domain.Entry {
	out := append([]domain.Entry(nil), entries...)
	sort.SliceStable(out, func(i, j int) bool {
		ti, tj := out[i].DisplayTime(), out[j].DisplayTime()
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Search keeps entries whose content contains every whitespace separated
// fragment of query, ignoring case
func Search(entries []domain.Entry, query string) []domain.Entry {
	fragments := strings.Fields(strings.ToLower(query))
	if len(fragments) == 0 {
		return entries
	}

	out := make([]domain.Entry, 0, len(entries))
	for _, e := range entries {
		content := strings.ToLower(e.Content)
		match := true
		for _, f := range fragments {
			if !strings.Contains(content, f) {
				match = false
				break
			}
		}
		if match {
			out = append(out, e)
		}
	}
	return out
}

// Paginate cuts one page. Out of range pages are clamped.
func Paginate(entries []domain.Entry, search string, page, size int) EntryPage {
	if size <= 0 {
		size = DefaultPageSize
	}
	totalPages := (len(entries) + size - 1) / size
	if totalPages == 0 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * size
	end := min(start+size, len(entries))

	items := make([]domain.Entry, 0, end-start)
	items = append(items, entries[start:end]...)

	return EntryPage{
		Items:      items,
		Search:     search,
		Page:       page,
		PageSize:   size,
		Total:      len(entries),
		TotalPages: totalPages,
	}
}

// EntryForDate returns the entry of date; with several, the first of the
// sorted slice wins
func EntryForDate(sorted []domain.Entry, date string) *domain.Entry {
	for i := range sorted {
		if sorted[i].Date == date {
			e := sorted[i]
			return &e
		}
	}
	return nil
}

// EntryDates lists the distinct dates that have an entry, ascending
func EntryDates(entries []domain.Entry) []string {
	seen := make(map[string]struct{}, len(entries))
	dates := make([]string, 0, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.Date]; ok {
			continue
		}
		seen[e.Date] = struct{}{}
		dates = append(dates, e.Date)
	}
	sort.Strings(dates)
	return dates
}

// Checklist marks each habit completed or not for one day
func Checklist(habits []domain.Habit, day domain.CompletedSet) []HabitStatus {
	sorted := append([]domain.Habit(nil), habits...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	out := make([]HabitStatus, len(sorted))
	for i, h := range sorted {
		out[i] = HabitStatus{
			ID:        h.ID,
			Name:      h.Name,
			Icon:      domain.ResolveIcon(h.Icon),
			Completed: day.Has(h.ID),
		}
	}
	return out
}

// WeeklySeries counts completed, currently defined habits for the seven
// days ending at end
func WeeklySeries(logs domain.HabitLog, habits []domain.Habit, end string) []DayCount {
	last, err := domain.ParseDate(end)
	if err != nil {
		return nil
	}

	out := make([]DayCount, WeekLength)
	for i := range out {
		day := last.AddDate(0, 0, i-(WeekLength-1))
		date := domain.FormatDate(day)
		out[i] = DayCount{
			Date:      date,
			Label:     day.Format("Jan 2"),
			Completed: logs.Day(date).CountKnown(habits),
		}
	}
	return out
}
