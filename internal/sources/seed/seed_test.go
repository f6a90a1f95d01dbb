package seed

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/MrSnakeDoc/serene/internal/domain"
)

func TestDefaultSeed(t *testing.T) {
	src, err := NewSource("")
	if err != nil {
		t.Fatalf("NewSource() error = %v", err)
	}

	now := time.Date(2024, 3, 10, 18, 30, 0, 0, time.UTC)
	s := src.Seed(now)

	if len(s.Habits) != 5 {
		t.Fatalf("got %d habits, want 5", len(s.Habits))
	}
	wantIcons := []string{"Book", "Leaf", "Droplets", "Footprints", "Sunrise"}
	for i, h := range s.Habits {
		if h.Icon != wantIcons[i] {
			t.Errorf("habit %s icon = %s, want %s", h.ID, h.Icon, wantIcons[i])
		}
	}

	gotDates := make([]string, len(s.Entries))
	for i, e := range s.Entries {
		gotDates[i] = e.Date
	}
	wantDates := []string{"2024-03-10", "2024-03-09", "2024-03-07", "2024-03-05"}
	if diff := cmp.Diff(wantDates, gotDates); diff != "" {
		t.Errorf("entry dates mismatch (-want +got):\n%s", diff)
	}
	if s.Entries[1].CreatedAt != "2024-03-09T18:30:00Z" {
		t.Errorf("CreatedAt = %s", s.Entries[1].CreatedAt)
	}

	if len(s.Logs) != 8 {
		t.Errorf("got %d log days, want 8", len(s.Logs))
	}
	if diff := cmp.Diff([]string{"h1", "h3"}, s.Logs.Day("2024-03-10").IDs()); diff != "" {
		t.Errorf("today's log mismatch (-want +got):\n%s", diff)
	}
	if got := s.Logs.Day("2024-03-08").CountKnown(s.Habits); got != 5 {
		t.Errorf("two days ago completed %d habits, want 5", got)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	doc := `
habits:
  - {id: x, name: Journal, icon: PenLine}
entries:
  - {id: e, daysAgo: 2, content: "  hi  "}
logs:
  - {daysAgo: 0, completed: [x]}
  - {daysAgo: 0, completed: [y]}
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}

	src, err := NewSource(path)
	if err != nil {
		t.Fatalf("NewSource() error = %v", err)
	}
	s := src.Seed(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	want := domain.Seed{
		Habits:  []domain.Habit{{ID: "x", Name: "Journal", Icon: "PenLine"}},
		Entries: []domain.Entry{{ID: "e", Date: "2023-12-30", Content: "hi", CreatedAt: "2023-12-30T12:00:00Z"}},
		Logs:    domain.HabitLog{"2024-01-01": domain.NewCompletedSet("x", "y")},
	}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Errorf("seed mismatch (-want +got):\n%s", diff)
	}
}

func TestInvalidSeeds(t *testing.T) {
	tests := []struct {
		name string
		file File
	}{
		{"habit without name", File{Habits: []HabitDoc{{ID: "h"}}}},
		{"duplicate habit", File{Habits: []HabitDoc{{ID: "h", Name: "a"}, {ID: "h", Name: "b"}}}},
		{"entry in the future", File{Entries: []EntryDoc{{ID: "e", DaysAgo: -1}}}},
		{"log in the future", File{Logs: []LogDoc{{DaysAgo: -2}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Map(tt.file, time.Now()); err == nil {
				t.Error("Map() should fail")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := NewSource(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing seed file")
	}
}
