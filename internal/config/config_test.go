package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// baseEnv sets the minimum a memory-backed server needs
func baseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SERENE_ENV_FILE", filepath.Join(t.TempDir(), "absent.env"))
	t.Setenv("SERENE_JWT_SECRET", testSecret)
	t.Setenv("SERENE_STORE", "memory")
}

func expectPanic(t *testing.T, contains string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic containing %q", contains)
		}
		if msg, _ := r.(string); !strings.Contains(msg, contains) {
			t.Errorf("panic = %v, want it to mention %q", r, contains)
		}
	}()
	fn()
}

func TestLoadDefaults(t *testing.T) {
	baseEnv(t)

	cfg := Load()

	if cfg.ListenPort != ":8080" {
		t.Errorf("ListenPort = %q, want :8080", cfg.ListenPort)
	}
	if cfg.Store != StoreMemory {
		t.Errorf("Store = %q, want memory", cfg.Store)
	}
	if cfg.ResetTTL != time.Hour {
		t.Errorf("ResetTTL = %v, want 1h", cfg.ResetTTL)
	}
	if !cfg.SeedEnabled {
		t.Error("SeedEnabled should default to true")
	}
	if cfg.PromptMaxEntries != 5 {
		t.Errorf("PromptMaxEntries = %d, want 5", cfg.PromptMaxEntries)
	}
	if cfg.ToggleMaxRetries != 10 {
		t.Errorf("ToggleMaxRetries = %d, want 10", cfg.ToggleMaxRetries)
	}
	if cfg.RedisAddr != "" {
		t.Errorf("RedisAddr = %q, want empty for the memory store", cfg.RedisAddr)
	}
}

func TestLoadRejectsBadInput(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		contains string
	}{
		{
			name:     "short secret",
			env:      map[string]string{"SERENE_JWT_SECRET": "short"},
			contains: "SERENE_JWT_SECRET",
		},
		{
			name:     "unknown store",
			env:      map[string]string{"SERENE_STORE": "mongo"},
			contains: "SERENE_STORE",
		},
		{
			name:     "redis without address",
			env:      map[string]string{"SERENE_STORE": "redis"},
			contains: "SERENE_REDIS_ADDR",
		},
		{
			name: "redis without required password",
			env: map[string]string{
				"SERENE_STORE":      "redis",
				"SERENE_REDIS_ADDR": "localhost:6379",
			},
			contains: "SERENE_REDIS_PASSWORD",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			baseEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			expectPanic(t, tt.contains, func() { Load() })
		})
	}
}

func TestLoadRedis(t *testing.T) {
	baseEnv(t)
	t.Setenv("SERENE_STORE", "Redis")
	t.Setenv("SERENE_REDIS_ADDR", "redis:6379")
	t.Setenv("SERENE_REDIS_PASSWORD_REQUIRED", "false")
	t.Setenv("SERENE_REDIS_DB", "2")

	cfg := Load()

	if cfg.Store != StoreRedis {
		t.Errorf("Store = %q, want redis", cfg.Store)
	}
	if cfg.RedisAddr != "redis:6379" || cfg.RedisDB != 2 {
		t.Errorf("redis settings = %q db %d", cfg.RedisAddr, cfg.RedisDB)
	}
	if cfg.RedisConnectTimeout != 30*time.Second {
		t.Errorf("RedisConnectTimeout = %v, want 30s", cfg.RedisConnectTimeout)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "serene.env")
	content := "SERENE_JWT_SECRET=" + testSecret + "\nSERENE_STORE=sqlite\nSERENE_LISTEN_PORT=:9999\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("SERENE_ENV_FILE", path)
	// already set variables win over the file
	t.Setenv("SERENE_LISTEN_PORT", ":7000")
	// t.Setenv restores the previous value, the file ones need manual cleanup
	t.Cleanup(func() {
		_ = os.Unsetenv("SERENE_JWT_SECRET")
		_ = os.Unsetenv("SERENE_STORE")
	})

	cfg := Load()

	if cfg.Store != StoreSQLite {
		t.Errorf("Store = %q, want sqlite from the env file", cfg.Store)
	}
	if cfg.ListenPort != ":7000" {
		t.Errorf("ListenPort = %q, want the process value :7000", cfg.ListenPort)
	}
}

func TestRedacted(t *testing.T) {
	cfg := &Config{JWTSecret: testSecret, RedisPassword: "pw", GenAIAPIKey: "key"}

	r := cfg.Redacted()

	for name, v := range map[string]string{"JWTSecret": r.JWTSecret, "RedisPassword": r.RedisPassword, "GenAIAPIKey": r.GenAIAPIKey} {
		if v != "***REDACTED***" {
			t.Errorf("%s = %q, want redacted", name, v)
		}
	}
	if cfg.JWTSecret != testSecret {
		t.Error("Redacted must not modify the receiver")
	}
}

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{" a , b ,, c ", []string{"a", "b", "c"}},
		{`"http://x.test", 'http://y.test'`, []string{"http://x.test", "http://y.test"}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := splitAndTrim(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("splitAndTrim(%q) = %v, want %v", tt.in, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("splitAndTrim(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestMustDuration(t *testing.T) {
	tests := []struct {
		name  string
		value string
		def   time.Duration
		want  time.Duration
	}{
		{"unset uses default", "", 5 * time.Second, 5 * time.Second},
		{"valid value", "250ms", time.Second, 250 * time.Millisecond},
		{"garbage uses default", "soon", time.Minute, time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SERENE_TEST_DURATION", tt.value)
			if got := mustDuration("SERENE_TEST_DURATION", tt.def); got != tt.want {
				t.Errorf("mustDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMustBool(t *testing.T) {
	tests := []struct {
		value string
		def   bool
		want  bool
	}{
		{"", true, true},
		{"false", true, false},
		{"1", false, true},
		{"nope", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("SERENE_TEST_BOOL", tt.value)
			if got := mustBool("SERENE_TEST_BOOL", tt.def); got != tt.want {
				t.Errorf("mustBool(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}
