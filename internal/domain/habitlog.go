package domain

import (
	"encoding/json"
	"sort"
)

// CompletedSet is the set of habit ids completed on one day.
//
// It lives in memory as a true set and crosses every storage or wire
// boundary as a sorted list of unique ids (see MarshalJSON).
type CompletedSet map[string]struct{}

// NewCompletedSet builds a set from ids, dropping duplicates and blanks.
func NewCompletedSet(ids ...string) CompletedSet {
	s := make(CompletedSet, len(ids))
	for _, id := range ids {
		if id != "" {
			s[id] = struct{}{}
		}
	}
	return s
}

// Has reports membership. A nil set has no members.
func (s CompletedSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Toggle flips membership of id and reports whether it is now a member.
func (s CompletedSet) Toggle(id string) bool {
	if s.Has(id) {
		delete(s, id)
		return false
	}
	s[id] = struct{}{}
	return true
}

// IDs returns the members sorted, the canonical serialized order.
func (s CompletedSet) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Clone returns an independent copy.
func (s CompletedSet) Clone() CompletedSet {
	c := make(CompletedSet, len(s))
	for id := range s {
		c[id] = struct{}{}
	}
	return c
}

// CountKnown counts members that are ids of currently defined habits.
// Dangling ids left behind by deleted habits count as nothing.
func (s CompletedSet) CountKnown(habits []Habit) int {
	n := 0
	for _, h := range habits {
		if s.Has(h.ID) {
			n++
		}
	}
	return n
}

func (s CompletedSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.IDs())
}

func (s *CompletedSet) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewCompletedSet(ids...)
	return nil
}

// LogRecord is the persisted form of one day: {"completedHabits": [...]}.
type LogRecord struct {
	CompletedHabits CompletedSet `json:"completedHabits"`
}

// EncodeLogRecord serializes a day's set into its stored document.
func EncodeLogRecord(s CompletedSet) ([]byte, error) {
	if s == nil {
		s = CompletedSet{}
	}
	return json.Marshal(LogRecord{CompletedHabits: s})
}

// DecodeLogRecord parses a stored document back into a set.
func DecodeLogRecord(data []byte) (CompletedSet, error) {
	var rec LogRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	if rec.CompletedHabits == nil {
		return CompletedSet{}, nil
	}
	return rec.CompletedHabits, nil
}

// HabitLog maps a YYYY-MM-DD date to the habits completed that day.
// A date with an empty set means the same as an absent date.
type HabitLog map[string]CompletedSet

// Day returns the set for date, never nil.
func (l HabitLog) Day(date string) CompletedSet {
	if s, ok := l[date]; ok && s != nil {
		return s
	}
	return CompletedSet{}
}

// Normalize drops dates whose set is empty.
func (l HabitLog) Normalize() HabitLog {
	for date, s := range l {
		if len(s) == 0 {
			delete(l, date)
		}
	}
	return l
}

// Clone deep-copies the log.
func (l HabitLog) Clone() HabitLog {
	c := make(HabitLog, len(l))
	for date, s := range l {
		c[date] = s.Clone()
	}
	return c
}

// Equal compares two logs under the empty-equals-absent rule.
func (l HabitLog) Equal(other HabitLog) bool {
	seen := make(map[string]struct{}, len(l))
	for date, s := range l {
		seen[date] = struct{}{}
		o := other.Day(date)
		if len(s) != len(o) {
			return false
		}
		for id := range s {
			if !o.Has(id) {
				return false
			}
		}
	}
	for date, s := range other {
		if _, ok := seen[date]; !ok && len(s) != 0 {
			return false
		}
	}
	return true
}
