package prompt

import (
	"sort"
	"strings"

	"github.com/MrSnakeDoc/serene/internal/domain"
)

// EntrySeparator joins entries in the generator input
const EntrySeparator = "\n\n---\n\n"

// PreviousEntriesText joins the content of at most limit entries, newest
// first by display time. Entries without content are skipped. limit <= 0
// means no limit.
func PreviousEntriesText(entries []domain.Entry, limit int) string {
	withContent := make([]domain.Entry, 0, len(entries))
	for _, e := range entries {
		if e.HasContent() {
			withContent = append(withContent, e)
		}
	}

	sort.SliceStable(withContent, func(i, j int) bool {
		return withContent[i].DisplayTime().After(withContent[j].DisplayTime())
	})
	if limit > 0 && len(withContent) > limit {
		withContent = withContent[:limit]
	}

	parts := make([]string, len(withContent))
	for i, e := range withContent {
		parts[i] = e.Content
	}
	return strings.Join(parts, EntrySeparator)
}
