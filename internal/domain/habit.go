package domain

import "strings"

// Habit is a named, iconified recurring action a user tracks daily.
type Habit struct {
	// ID is assigned by the store on creation.
	ID string `json:"id"`

	// Name is the free-text label shown next to the checkbox.
	Name string `json:"name"`

	// Icon is a symbolic name from the icon catalog.
	// Unknown names are stored as-is and resolved to FallbackIcon on display.
	Icon string `json:"icon"`
}

// HabitInput carries the fields of a habit being created.
type HabitInput struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// HabitPatch carries a partial update. Nil fields are left untouched.
type HabitPatch struct {
	ID   string  `json:"id"`
	Name *string `json:"name,omitempty"`
	Icon *string `json:"icon,omitempty"`
}

// Apply merges the patch into h and returns the result.
func (p HabitPatch) Apply(h Habit) Habit {
	if p.Name != nil {
		h.Name = *p.Name
	}
	if p.Icon != nil {
		h.Icon = *p.Icon
	}
	return h
}

// ValidateHabitName is the single check every store applies on write.
func ValidateHabitName(name string) error {
	if strings.TrimSpace(name) == "" {
		return Invalidf("habit name must not be empty")
	}
	return nil
}

// ValidatePatch rejects patches that would blank out the name.
func ValidatePatch(p HabitPatch) error {
	if p.ID == "" {
		return Invalidf("habit id is required")
	}
	if p.Name != nil {
		return ValidateHabitName(*p.Name)
	}
	return nil
}
