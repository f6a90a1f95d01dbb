package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/MrSnakeDoc/serene/internal/logger"
)

func testOptions(addr string) ConnectOptions {
	return ConnectOptions{
		Addr:           addr,
		ConnectTimeout: 300 * time.Millisecond,
		RetryInterval:  20 * time.Millisecond,
		MaxWait:        50 * time.Millisecond,
		PingTimeout:    50 * time.Millisecond,
		DialTimeout:    50 * time.Millisecond,
		WarnThreshold:  1,
	}
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := Connect(context.Background(), testOptions(mr.Addr()), logger.Nop())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	if err := client.Set(context.Background(), "k", "v", 0).Err(); err != nil {
		t.Errorf("client not usable: %v", err)
	}
}

func TestConnectGivesUp(t *testing.T) {
	// nothing listens on port 1
	_, err := Connect(context.Background(), testOptions("127.0.0.1:1"), logger.Nop())
	if err == nil {
		t.Fatal("expected Connect() to fail")
	}
}

func TestConnectValidatesOptions(t *testing.T) {
	opts := testOptions("localhost:6379")
	opts.RetryInterval = 0

	if _, err := Connect(context.Background(), opts, logger.Nop()); err == nil {
		t.Fatal("expected invalid options error")
	}
}

func TestBackoffCaps(t *testing.T) {
	b := &backoff{next: time.Second, max: 3 * time.Second}
	want := []time.Duration{time.Second, 2 * time.Second, 3 * time.Second, 3 * time.Second}

	for i, w := range want {
		if got := b.wait(); got != w {
			t.Errorf("wait #%d = %v, want %v", i, got, w)
		}
	}
}
