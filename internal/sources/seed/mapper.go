package seed

import (
	"fmt"
	"strings"
	"time"

	"github.com/MrSnakeDoc/serene/internal/domain"
)

// Map turns the document into records positioned relative to now. The
// calendar day is taken in now's location.
func Map(f File, now time.Time) (domain.Seed, error) {
	out := domain.Seed{Logs: domain.HabitLog{}}

	seen := make(map[string]bool, len(f.Habits))
	for _, h := range f.Habits {
		if h.ID == "" || strings.TrimSpace(h.Name) == "" {
			return domain.Seed{}, fmt.Errorf("seed habit needs an id and a name: %+v", h)
		}
		if seen[h.ID] {
			return domain.Seed{}, fmt.Errorf("duplicate seed habit id %q", h.ID)
		}
		seen[h.ID] = true
		out.Habits = append(out.Habits, domain.Habit{ID: h.ID, Name: h.Name, Icon: h.Icon})
	}

	for _, e := range f.Entries {
		if e.ID == "" || e.DaysAgo < 0 {
			return domain.Seed{}, fmt.Errorf("seed entry needs an id and daysAgo >= 0: %+v", e)
		}
		at := now.AddDate(0, 0, -e.DaysAgo)
		out.Entries = append(out.Entries, domain.Entry{
			ID:        e.ID,
			Date:      domain.FormatDate(at),
			Content:   strings.TrimSpace(e.Content),
			CreatedAt: at.UTC().Format(time.RFC3339),
		})
	}

	for _, l := range f.Logs {
		if l.DaysAgo < 0 {
			return domain.Seed{}, fmt.Errorf("seed log needs daysAgo >= 0: %+v", l)
		}
		date := domain.FormatDate(now.AddDate(0, 0, -l.DaysAgo))
		set := out.Logs[date]
		if set == nil {
			set = domain.CompletedSet{}
			out.Logs[date] = set
		}
		for _, id := range l.Completed {
			set[id] = struct{}{}
		}
	}

	return out, nil
}

// Source produces the seed for a given moment
type Source struct {
	file File
}

// NewSource loads and validates the seed document once
func NewSource(filePath string) (*Source, error) {
	f, err := NewLoader(filePath).Load()
	if err != nil {
		return nil, err
	}
	if _, err := Map(f, time.Now()); err != nil {
		return nil, err
	}
	return &Source{file: f}, nil
}

// Seed maps the loaded document relative to now
func (s *Source) Seed(now time.Time) domain.Seed {
	// validated in NewSource, Map cannot fail here
	seed, _ := Map(s.file, now)
	return seed
}
