package domain

// Seed is the starter data written once for a newly observed account.
type Seed struct {
	Entries []Entry
	Habits  []Habit
	Logs    HabitLog
}

// IsEmpty reports whether the seed would write nothing.
func (s Seed) IsEmpty() bool {
	return len(s.Entries) == 0 && len(s.Habits) == 0 && len(s.Logs) == 0
}
