package prompt

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/MrSnakeDoc/serene/internal/domain"
	"github.com/MrSnakeDoc/serene/internal/logger"
)

type fakeBackend struct {
	answer string
	err    error
	block  bool
	got    string
}

func (f *fakeBackend) Complete(ctx context.Context, instruction string) (string, error) {
	f.got = instruction
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.answer, f.err
}

func TestGenerate(t *testing.T) {
	tests := []struct {
		name    string
		backend *fakeBackend
		want    string
	}{
		{"answer", &fakeBackend{answer: "What made you smile today?"}, "What made you smile today?"},
		{"quoted answer", &fakeBackend{answer: "  \"What made you smile?\"\n"}, "What made you smile?"},
		{"backend error", &fakeBackend{err: errors.New("quota exceeded")}, FallbackPrompt},
		{"empty answer", &fakeBackend{answer: "   "}, FallbackPrompt},
		{"timeout", &fakeBackend{block: true}, FallbackPrompt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGenerator(tt.backend, 20*time.Millisecond, logger.Nop())
			if got := g.Generate(context.Background(), "I walked by the sea."); got != tt.want {
				t.Errorf("Generate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGenerateWithoutBackend(t *testing.T) {
	g := NewGenerator(nil, time.Second, logger.Nop())
	if got := g.Generate(context.Background(), ""); got != FallbackPrompt {
		t.Errorf("Generate() = %q, want fallback", got)
	}
}

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		contains string
		absent   string
	}{
		{"blank uses no-entries sentence", "  \n", NoEntriesText, ""},
		{"text inserted verbatim", "Day one.\n\n---\n\n<b>Day two</b>", "<b>Day two</b>", NoEntriesText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Render(tt.in)
			if !strings.Contains(out, tt.contains) {
				t.Errorf("Render() missing %q:\n%s", tt.contains, out)
			}
			if tt.absent != "" && strings.Contains(out, tt.absent) {
				t.Errorf("Render() unexpectedly contains %q", tt.absent)
			}
			if !strings.HasSuffix(out, "Generated Prompt:") {
				t.Errorf("Render() must end with the answer cue")
			}
		})
	}
}

func TestPreviousEntriesText(t *testing.T) {
	entries := []domain.Entry{
		{ID: "a", Date: "2024-01-01", Content: "oldest"},
		{ID: "b", Date: "2024-01-03", Content: "newest", CreatedAt: "2024-01-03T20:00:00Z"},
		{ID: "c", Date: "2024-01-02", Content: "middle", CreatedAt: "2024-01-02T08:00:00Z"},
		{ID: "d", Date: "2024-01-04", Content: "   "},
	}

	tests := []struct {
		limit int
		want  string
	}{
		{0, "newest" + EntrySeparator + "middle" + EntrySeparator + "oldest"},
		{2, "newest" + EntrySeparator + "middle"},
		{1, "newest"},
	}

	for _, tt := range tests {
		if got := PreviousEntriesText(entries, tt.limit); got != tt.want {
			t.Errorf("PreviousEntriesText(limit=%d) = %q, want %q", tt.limit, got, tt.want)
		}
	}

	if got := PreviousEntriesText(nil, 5); got != "" {
		t.Errorf("PreviousEntriesText(nil) = %q, want empty", got)
	}
}
