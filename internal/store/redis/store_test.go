package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/serene/internal/domain"
	"github.com/MrSnakeDoc/serene/internal/store"
	"github.com/MrSnakeDoc/serene/internal/store/storetest"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewStore(client, 0), mr
}

func TestStoreConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		s, _ := newTestStore(t)
		return s
	})
}

func TestToggleWritesLogRecord(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	if _, err := s.ToggleHabit(ctx, "u1", "h2", "2024-01-01"); err != nil {
		t.Fatalf("ToggleHabit() error = %v", err)
	}
	if _, err := s.ToggleHabit(ctx, "u1", "h1", "2024-01-01"); err != nil {
		t.Fatalf("ToggleHabit() error = %v", err)
	}

	got, err := mr.Get("serene:user:u1:habitlog:2024-01-01")
	if err != nil {
		t.Fatalf("log key missing: %v", err)
	}
	want := `{"completedHabits":["h1","h2"]}`
	if got != want {
		t.Errorf("log record = %s, want %s", got, want)
	}

	members, err := mr.SMembers("serene:user:u1:habitlogs")
	if err != nil || len(members) != 1 || members[0] != "2024-01-01" {
		t.Errorf("log dates = %v (err %v), want [2024-01-01]", members, err)
	}
}

func TestSeedWritesMarker(t *testing.T) {
	s, mr := newTestStore(t)

	if err := s.SeedInitialData(context.Background(), "u1", seedFixture()); err != nil {
		t.Fatalf("SeedInitialData() error = %v", err)
	}
	if !mr.Exists("serene:user:u1:seeded") {
		t.Error("seeded marker was not written")
	}
	if !mr.Exists("serene:user:u1:habit:h1") {
		t.Error("seeded habit was not written")
	}
}

func TestResetTokenExpires(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	if err := s.PutResetToken(ctx, "tok", "acc-1", time.Now().Add(time.Minute)); err != nil {
		t.Fatalf("PutResetToken() error = %v", err)
	}
	mr.FastForward(2 * time.Minute)

	if _, err := s.ConsumeResetToken(ctx, "tok"); err == nil {
		t.Error("expected expired token to be gone")
	}
}

func TestRevokedTokenExpires(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	if err := s.RevokeToken(ctx, "jti", time.Now().Add(time.Minute)); err != nil {
		t.Fatalf("RevokeToken() error = %v", err)
	}
	if ttl := mr.TTL("serene:revoked:jti"); ttl <= 0 || ttl > time.Minute {
		t.Errorf("revoked TTL = %v, want within (0, 1m]", ttl)
	}
}

func TestListSkipsDanglingIndexMembers(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	if _, err := mr.SAdd("serene:user:u1:habits", "ghost"); err != nil {
		t.Fatal(err)
	}
	habits, err := s.ListHabits(ctx, "u1")
	if err != nil {
		t.Fatalf("ListHabits() error = %v", err)
	}
	if len(habits) != 0 {
		t.Errorf("ListHabits() = %v, want empty", habits)
	}
}

func TestParseLogKey(t *testing.T) {
	tests := []struct {
		key      string
		wantUser string
		wantDate string
		wantErr  bool
	}{
		{"serene:user:u1:habitlog:2024-01-01", "u1", "2024-01-01", false},
		{"serene:user:a:b:habitlog:2024-02-29", "a:b", "2024-02-29", false},
		{"serene:user:u1:habitlog:", "", "", true},
		{"serene:user::habitlog:2024-01-01", "", "", true},
		{"jump:service:x", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			user, date, err := ParseLogKey(tt.key)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLogKey() error = %v, wantErr %v", err, tt.wantErr)
			}
			if user != tt.wantUser || date != tt.wantDate {
				t.Errorf("ParseLogKey() = (%q, %q), want (%q, %q)", user, date, tt.wantUser, tt.wantDate)
			}
		})
	}
}

func seedFixture() domain.Seed {
	return domain.Seed{
		Habits: []domain.Habit{{ID: "h1", Name: "Read", Icon: "Book"}},
		Logs:   domain.HabitLog{"2024-01-01": domain.NewCompletedSet("h1")},
	}
}
