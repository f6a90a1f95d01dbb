package memory

import (
	"testing"

	"github.com/MrSnakeDoc/serene/internal/domain"
	"github.com/MrSnakeDoc/serene/internal/store"
	"github.com/MrSnakeDoc/serene/internal/store/storetest"
)

func TestStoreConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return New()
	})
}

func TestListEntriesReturnsCopies(t *testing.T) {
	s := New()
	ctx := t.Context()

	created, err := s.SaveEntry(ctx, "u1", domainEntry("2024-01-01", "original"))
	if err != nil {
		t.Fatalf("SaveEntry() error = %v", err)
	}

	entries, err := s.ListEntries(ctx, "u1")
	if err != nil {
		t.Fatalf("ListEntries() error = %v", err)
	}
	entries[0].Content = "mutated"

	again, _ := s.ListEntries(ctx, "u1")
	if again[0].Content != "original" {
		t.Errorf("store content changed through a returned slice: %q", again[0].Content)
	}
	if again[0].ID != created.ID {
		t.Errorf("ID = %s, want %s", again[0].ID, created.ID)
	}
}

func TestListLogsIsSnapshot(t *testing.T) {
	s := New()
	ctx := t.Context()

	logs, err := s.ToggleHabit(ctx, "u1", "h1", "2024-01-01")
	if err != nil {
		t.Fatalf("ToggleHabit() error = %v", err)
	}
	logs["2024-01-01"].Toggle("h2")

	fresh, _ := s.ListLogs(ctx, "u1")
	if fresh.Day("2024-01-01").Has("h2") {
		t.Error("mutating a returned log must not reach the store")
	}
}

func domainEntry(date, content string) domain.Entry {
	return domain.Entry{Date: date, Content: content}
}
