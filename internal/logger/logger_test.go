package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in     string
		wantOK bool
	}{
		{"debug", true},
		{"info", true},
		{"warn", true},
		{"error", true},
		{"verbose", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := parseLevel(tt.in); (got != nil) != tt.wantOK {
				t.Errorf("parseLevel(%q) = %v, want ok=%v", tt.in, got, tt.wantOK)
			}
		})
	}
}

func TestFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serene.log")
	log := NewWithOptions(Options{Level: "info", File: path})

	log.With(String("component", "test")).Info("hello", Int("n", 1))
	log.Debug("dropped below level")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"msg":"hello"`) || !strings.Contains(out, `"component":"test"`) {
		t.Errorf("unexpected log output: %s", out)
	}
	if strings.Contains(out, "dropped below level") {
		t.Error("debug line written at info level")
	}
}
