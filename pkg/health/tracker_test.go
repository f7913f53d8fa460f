package health

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// setupTestRedis creates a Redis client for testing, skipping the test if
// Redis is unavailable.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15, // Use a separate DB for tests
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available for testing: %v", err)
	}

	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush test DB: %v", err)
	}

	t.Cleanup(func() {
		_ = client.FlushDB(context.Background()).Err()
		_ = client.Close()
	})

	return client
}

func TestTrackerInitialState(t *testing.T) {
	client := setupTestRedis(t)
	tracker := NewTracker(client, 3, zerolog.Nop())

	state, err := tracker.State(context.Background())
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if state.ConsecutiveFailures != 0 {
		t.Errorf("ConsecutiveFailures = %d, want 0", state.ConsecutiveFailures)
	}
	if state.Degraded {
		t.Error("fresh tracker should not be degraded")
	}
	if !state.LastSuccess.IsZero() {
		t.Errorf("LastSuccess = %v, want zero", state.LastSuccess)
	}
}

func TestTrackerFailureRun(t *testing.T) {
	client := setupTestRedis(t)
	tracker := NewTracker(client, 3, zerolog.Nop())
	ctx := context.Background()

	for i := 1; i <= 2; i++ {
		count, err := tracker.RecordFailure(ctx)
		if err != nil {
			t.Fatalf("RecordFailure: %v", err)
		}
		if count != int64(i) {
			t.Errorf("count = %d, want %d", count, i)
		}
	}

	degraded, err := tracker.Degraded(ctx)
	if err != nil {
		t.Fatalf("Degraded: %v", err)
	}
	if degraded {
		t.Error("should not be degraded below threshold")
	}

	if _, err := tracker.RecordFailure(ctx); err != nil {
		t.Fatalf("RecordFailure: %v", err)
	}

	degraded, err = tracker.Degraded(ctx)
	if err != nil {
		t.Fatalf("Degraded: %v", err)
	}
	if !degraded {
		t.Error("should be degraded at threshold")
	}
}

func TestTrackerSuccessResetsRun(t *testing.T) {
	client := setupTestRedis(t)
	tracker := NewTracker(client, 2, zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := tracker.RecordFailure(ctx); err != nil {
			t.Fatalf("RecordFailure: %v", err)
		}
	}
	if err := tracker.RecordSuccess(ctx); err != nil {
		t.Fatalf("RecordSuccess: %v", err)
	}

	state, err := tracker.State(ctx)
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if state.ConsecutiveFailures != 0 {
		t.Errorf("ConsecutiveFailures = %d after success, want 0", state.ConsecutiveFailures)
	}
	if state.Degraded {
		t.Error("success should clear the degraded state")
	}
	if state.LastSuccess.IsZero() {
		t.Error("LastSuccess should be stamped")
	}
	if d := time.Since(state.LastSuccess); d < 0 || d > time.Minute {
		t.Errorf("LastSuccess %v not recent", state.LastSuccess)
	}
}

func TestTrackerSharedAcrossInstances(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()

	a := NewTracker(client, 2, zerolog.Nop())
	b := NewTracker(client, 2, zerolog.Nop())

	if _, err := a.RecordFailure(ctx); err != nil {
		t.Fatalf("RecordFailure: %v", err)
	}
	if _, err := b.RecordFailure(ctx); err != nil {
		t.Fatalf("RecordFailure: %v", err)
	}

	// Both instances see the combined run.
	for _, tr := range []*Tracker{a, b} {
		degraded, err := tr.Degraded(ctx)
		if err != nil {
			t.Fatalf("Degraded: %v", err)
		}
		if !degraded {
			t.Error("instance should see the shared degraded state")
		}
	}
}

func TestTrackerDefaultThreshold(t *testing.T) {
	client := setupTestRedis(t)

	tracker := NewTracker(client, 0, zerolog.Nop())
	if tracker.threshold != DefaultDegradedThreshold {
		t.Errorf("threshold = %d, want %d", tracker.threshold, DefaultDegradedThreshold)
	}
}
