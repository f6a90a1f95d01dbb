package domain

import "sort"

// FallbackIcon is rendered for any icon name outside the catalog.
const FallbackIcon = "HelpCircle"

// icons is the fixed catalog offered by the habit icon picker.
var icons = map[string]struct{}{
	"Activity":   {},
	"Apple":      {},
	"Bed":        {},
	"Bike":       {},
	"Book":       {},
	"BookOpen":   {},
	"Brain":      {},
	"Brush":      {},
	"Camera":     {},
	"Carrot":     {},
	"Coffee":     {},
	"Droplets":   {},
	"Dumbbell":   {},
	"Flower":     {},
	"Footprints": {},
	"Guitar":     {},
	"Heart":      {},
	"Languages":  {},
	"Laptop":     {},
	"Leaf":       {},
	"Moon":       {},
	"Music":      {},
	"PenLine":    {},
	"PiggyBank":  {},
	"Pill":       {},
	"Salad":      {},
	"Smile":      {},
	"Sparkles":   {},
	"Sun":        {},
	"Sunrise":    {},
	"Target":     {},
	"Timer":      {},
	"Trees":      {},
	"Users":      {},
	"Wind":       {},
	FallbackIcon: {},
}

// IsKnownIcon reports whether name belongs to the catalog.
func IsKnownIcon(name string) bool {
	_, ok := icons[name]
	return ok
}

// ResolveIcon returns name when it is in the catalog and FallbackIcon otherwise.
func ResolveIcon(name string) string {
	if IsKnownIcon(name) {
		return name
	}
	return FallbackIcon
}

// IconNames lists the catalog in lexical order.
func IconNames() []string {
	names := make([]string, 0, len(icons))
	for name := range icons {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
