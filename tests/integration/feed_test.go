package integration

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/mlundgren/hnfeed/internal/testutil"
	"github.com/mlundgren/hnfeed/pkg/cache"
	"github.com/mlundgren/hnfeed/pkg/feed"
	"github.com/mlundgren/hnfeed/pkg/fetch"
	"github.com/mlundgren/hnfeed/pkg/health"
	"github.com/mlundgren/hnfeed/pkg/highlight"
	"github.com/mlundgren/hnfeed/pkg/hn"
)

// setupRedis creates a Redis container for integration testing.
func setupRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	cleanup := func() {
		redisClient.Close()
		container.Terminate(ctx)
	}

	return redisClient, cleanup
}

// newMockClient creates an hn.Client pointed at the mock upstream with the
// local limiter effectively open.
func newMockClient(t *testing.T, mock *testutil.MockHN) *hn.Client {
	t.Helper()

	c, err := hn.New(hn.Config{
		BaseURL:           mock.URL(),
		Timeout:           5 * time.Second,
		RequestsPerSecond: 1000,
		Burst:             1000,
	})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return c
}

// TestFullPageFlow tests the complete flow: ranking fetch → bounded batch
// fetch → tier annotation → cursor continuation.
func TestFullPageFlow(t *testing.T) {
	mockHN := testutil.NewMockHN()
	defer mockHN.Close()

	mockHN.SetList("topstories", []int64{1, 2, 3, 4, 5})
	mockHN.AddStory(1, "huge launch", 900, 600)
	mockHN.AddStory(2, "interesting find", 150, 80)
	mockHN.AddStory(3, "quiet post", 12, 1)
	mockHN.AddStory(4, "another one", 40, 20)
	mockHN.AddStory(5, "last one", 5, 0)

	client := newMockClient(t, mockHN)

	fetcher, err := fetch.NewFetcher(client, fetch.Config{Concurrency: 3})
	if err != nil {
		t.Fatalf("Failed to create fetcher: %v", err)
	}

	assembler, err := feed.NewAssembler(client, fetcher, nil, feed.Config{PageSize: 3})
	if err != nil {
		t.Fatalf("Failed to create assembler: %v", err)
	}

	ctx := context.Background()

	// Page 1
	page1, err := assembler.GetPage(ctx, "", 0)
	if err != nil {
		t.Fatalf("First page failed: %v", err)
	}
	if len(page1.Items) != 3 {
		t.Fatalf("First page has %d items, want 3", len(page1.Items))
	}
	if page1.Items[0].ID != 1 || page1.Items[0].Tier != highlight.TierHot {
		t.Errorf("Item 1 = %+v, want hot", page1.Items[0])
	}
	if page1.Items[1].Tier != highlight.TierRising {
		t.Errorf("Item 2 tier = %q, want rising", page1.Items[1].Tier)
	}
	if page1.Items[2].Tier != highlight.TierNone {
		t.Errorf("Item 3 tier = %q, want none", page1.Items[2].Tier)
	}

	// Page 2 via the returned cursor
	page2, err := assembler.GetPage(ctx, page1.Next, 0)
	if err != nil {
		t.Fatalf("Second page failed: %v", err)
	}
	if len(page2.Items) != 2 {
		t.Fatalf("Second page has %d items, want 2", len(page2.Items))
	}
	if page2.Items[0].ID != 4 || page2.Items[1].ID != 5 {
		t.Errorf("Second page IDs = %d, %d, want 4, 5", page2.Items[0].ID, page2.Items[1].ID)
	}
}

// TestConcurrencyCapAtUpstream verifies the fetcher's in-flight cap holds at
// the HTTP level, not just in process.
func TestConcurrencyCapAtUpstream(t *testing.T) {
	mockHN := testutil.NewMockHN()
	defer mockHN.Close()

	ids := make([]int64, 20)
	for i := range ids {
		ids[i] = int64(i + 1)
		mockHN.AddStory(ids[i], "story", 10, 2)
	}
	mockHN.SetList("topstories", ids)
	mockHN.SetItemDelay(20 * time.Millisecond)

	client := newMockClient(t, mockHN)

	const limit = 4
	fetcher, err := fetch.NewFetcher(client, fetch.Config{Concurrency: limit})
	if err != nil {
		t.Fatalf("Failed to create fetcher: %v", err)
	}

	outcomes, err := fetcher.FetchAll(context.Background(), ids)
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	for _, o := range outcomes {
		if !o.OK() {
			t.Errorf("Item %d failed: %v", o.ID, o.Err)
		}
	}

	if got := mockHN.MaxInFlight(); got > limit {
		t.Errorf("Peak upstream concurrency = %d, exceeds limit %d", got, limit)
	}
}

// TestCachedPageSkipsUpstream tests that a second page assembly is served
// from Redis.
func TestCachedPageSkipsUpstream(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mockHN := testutil.NewMockHN()
	defer mockHN.Close()

	mockHN.SetList("topstories", []int64{1, 2})
	mockHN.AddStory(1, "first", 50, 10)
	mockHN.AddStory(2, "second", 60, 15)

	client := newMockClient(t, mockHN)

	store := cache.NewStore(redisClient, cache.DefaultConfig())
	caching := cache.NewCachingSource(client, store)

	fetcher, err := fetch.NewFetcher(caching, fetch.Config{Concurrency: 2})
	if err != nil {
		t.Fatalf("Failed to create fetcher: %v", err)
	}
	assembler, err := feed.NewAssembler(caching, fetcher, nil, feed.Config{PageSize: 2})
	if err != nil {
		t.Fatalf("Failed to create assembler: %v", err)
	}

	ctx := context.Background()

	// First assembly populates the cache: 1 list + 2 item requests.
	if _, err := assembler.GetPage(ctx, "", 0); err != nil {
		t.Fatalf("First page failed: %v", err)
	}
	first := mockHN.RequestCount()
	if first != 3 {
		t.Errorf("Upstream requests after first page = %d, want 3", first)
	}

	// Second assembly of the same window must not touch the upstream.
	page, err := assembler.GetPage(ctx, "", 0)
	if err != nil {
		t.Fatalf("Second page failed: %v", err)
	}
	if len(page.Items) != 2 {
		t.Errorf("Cached page has %d items, want 2", len(page.Items))
	}
	if got := mockHN.RequestCount(); got != first {
		t.Errorf("Upstream requests after cached page = %d, want %d", got, first)
	}
}

// TestFailureIsolationInPage tests that one failing item does not take the
// page down.
func TestFailureIsolationInPage(t *testing.T) {
	mockHN := testutil.NewMockHN()
	defer mockHN.Close()

	mockHN.SetList("topstories", []int64{1, 2, 3})
	mockHN.AddStory(1, "ok one", 10, 2)
	mockHN.AddStory(3, "ok two", 10, 2)
	mockHN.FailWith(2, 500)

	client := newMockClient(t, mockHN)

	fetcher, err := fetch.NewFetcher(client, fetch.Config{Concurrency: 3})
	if err != nil {
		t.Fatalf("Failed to create fetcher: %v", err)
	}
	assembler, err := feed.NewAssembler(client, fetcher, nil, feed.Config{PageSize: 3})
	if err != nil {
		t.Fatalf("Failed to create assembler: %v", err)
	}

	page, err := assembler.GetPage(context.Background(), "", 0)
	if err != nil {
		t.Fatalf("GetPage failed: %v", err)
	}

	if len(page.Items) != 2 {
		t.Fatalf("Page has %d items, want 2", len(page.Items))
	}
	if page.Items[0].ID != 1 || page.Items[1].ID != 3 {
		t.Errorf("Page IDs = %d, %d, want 1, 3", page.Items[0].ID, page.Items[1].ID)
	}
}

// TestHealthStateAcrossPages tests the shared degraded/recovered cycle
// driven by page outcomes.
func TestHealthStateAcrossPages(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mockHN := testutil.NewMockHN()
	defer mockHN.Close()

	mockHN.SetList("topstories", []int64{1, 2})
	mockHN.FailWith(1, 503)
	mockHN.FailWith(2, 503)

	client := newMockClient(t, mockHN)

	tracker := health.NewTracker(redisClient, 2, zerolog.Nop())

	fetcher, err := fetch.NewFetcher(client, fetch.Config{Concurrency: 2})
	if err != nil {
		t.Fatalf("Failed to create fetcher: %v", err)
	}
	assembler, err := feed.NewAssembler(client, fetcher, tracker, feed.Config{PageSize: 2})
	if err != nil {
		t.Fatalf("Failed to create assembler: %v", err)
	}

	ctx := context.Background()

	// Two fully-failed pages push the tracker over the threshold.
	for i := 0; i < 2; i++ {
		if _, err := assembler.GetPage(ctx, "", 0); err == nil {
			t.Fatal("Expected degraded error for fully-failed page")
		}
	}

	degraded, err := tracker.Degraded(ctx)
	if err != nil {
		t.Fatalf("Degraded check failed: %v", err)
	}
	if !degraded {
		t.Error("Tracker should report degraded after two failed pages")
	}

	// Upstream recovers; one good page clears the state.
	mockHN.ClearFailures()
	mockHN.AddStory(1, "back", 10, 2)
	mockHN.AddStory(2, "alive", 10, 2)

	if _, err := assembler.GetPage(ctx, "", 0); err != nil {
		t.Fatalf("Recovered page failed: %v", err)
	}

	state, err := tracker.State(ctx)
	if err != nil {
		t.Fatalf("State failed: %v", err)
	}
	if state.Degraded || state.ConsecutiveFailures != 0 {
		t.Errorf("State after recovery = %+v, want cleared", state)
	}
	if state.LastSuccess.IsZero() {
		t.Error("LastSuccess should be stamped after recovery")
	}
}
