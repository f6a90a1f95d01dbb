package dashboard

import "github.com/MrSnakeDoc/serene/internal/domain"

// EntryEvent is a confirmed server response about one entry
type EntryEvent struct {
	Saved     *domain.Entry
	DeletedID string
}

// ReduceEntries folds ev into entries without mutating the input
func ReduceEntries(entries []domain.Entry, ev EntryEvent) []domain.Entry {
	out := make([]domain.Entry, 0, len(entries)+1)
	replaced := false
	for _, e := range entries {
		switch {
		case ev.DeletedID != "" && e.ID == ev.DeletedID:
			continue
		case ev.Saved != nil && e.ID == ev.Saved.ID:
			out = append(out, *ev.Saved)
			replaced = true
		default:
			out = append(out, e)
		}
	}
	if ev.Saved != nil && !replaced {
		out = append(out, *ev.Saved)
	}
	return out
}

// HabitEvent is a confirmed server response about one habit
type HabitEvent struct {
	Saved     *domain.Habit
	DeletedID string
}

// ReduceHabits folds ev into habits without mutating the input
func ReduceHabits(habits []domain.Habit, ev HabitEvent) []domain.Habit {
	out := make([]domain.Habit, 0, len(habits)+1)
	replaced := false
	for _, h := range habits {
		switch {
		case ev.DeletedID != "" && h.ID == ev.DeletedID:
			continue
		case ev.Saved != nil && h.ID == ev.Saved.ID:
			out = append(out, *ev.Saved)
			replaced = true
		default:
			out = append(out, h)
		}
	}
	if ev.Saved != nil && !replaced {
		out = append(out, *ev.Saved)
	}
	return out
}

// ReduceLogs adopts the full mapping returned by a toggle. The server read
// it after its commit, so it supersedes whatever the client held.
func ReduceLogs(current, confirmed domain.HabitLog) domain.HabitLog {
	if confirmed == nil {
		return current
	}
	return confirmed.Clone().Normalize()
}
