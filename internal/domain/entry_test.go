package domain

import (
	"errors"
	"testing"
	"time"
)

func TestEntryDisplayTime(t *testing.T) {
	tests := []struct {
		name  string
		entry Entry
		want  time.Time
	}{
		{
			name:  "createdAt wins",
			entry: Entry{Date: "2024-01-01", CreatedAt: "2024-01-03T10:00:00Z"},
			want:  time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC),
		},
		{
			name:  "falls back to date",
			entry: Entry{Date: "2024-01-01"},
			want:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "unparsable createdAt falls back to date",
			entry: Entry{Date: "2024-01-02", CreatedAt: "yesterday"},
			want:  time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.entry.DisplayTime(); !got.Equal(tt.want) {
				t.Errorf("DisplayTime() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidateNewEntry(t *testing.T) {
	tests := []struct {
		name    string
		entry   Entry
		wantErr bool
	}{
		{name: "valid", entry: Entry{Date: "2024-02-29", Content: "x"}},
		{name: "bad date", entry: Entry{Date: "2023-02-29"}, wantErr: true},
		{name: "wrong layout", entry: Entry{Date: "01/02/2024"}, wantErr: true},
		{name: "bad createdAt", entry: Entry{Date: "2024-01-01", CreatedAt: "now"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNewEntry(tt.entry)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalid) {
					t.Errorf("ValidateNewEntry() = %v, want ErrInvalid", err)
				}
				return
			}
			if err != nil {
				t.Errorf("ValidateNewEntry() = %v, want nil", err)
			}
		})
	}
}

func TestAddDays(t *testing.T) {
	got, err := AddDays("2024-03-01", -1)
	if err != nil {
		t.Fatalf("AddDays() error = %v", err)
	}
	if got != "2024-02-29" {
		t.Errorf("AddDays() = %s, want 2024-02-29", got)
	}
}

func TestResolveIcon(t *testing.T) {
	if got := ResolveIcon("Book"); got != "Book" {
		t.Errorf("ResolveIcon(Book) = %s", got)
	}
	if got := ResolveIcon("NotAnIcon"); got != FallbackIcon {
		t.Errorf("ResolveIcon(NotAnIcon) = %s, want %s", got, FallbackIcon)
	}
	if got := ResolveIcon(""); got != FallbackIcon {
		t.Errorf("ResolveIcon(\"\") = %s, want %s", got, FallbackIcon)
	}
}
