// Package testutil provides test doubles for the Hacker News upstream API.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"
)

// MockItem is the wire shape served by the mock item endpoint.
type MockItem struct {
	ID          int64   `json:"id"`
	Type        string  `json:"type,omitempty"`
	By          string  `json:"by,omitempty"`
	Title       string  `json:"title,omitempty"`
	URL         string  `json:"url,omitempty"`
	Text        string  `json:"text,omitempty"`
	Time        int64   `json:"time,omitempty"`
	Score       int     `json:"score,omitempty"`
	Descendants int     `json:"descendants,omitempty"`
	Kids        []int64 `json:"kids,omitempty"`
	Deleted     bool    `json:"deleted,omitempty"`
	Dead        bool    `json:"dead,omitempty"`
}

// MockHN is a configurable in-process Hacker News API for testing. It serves
// /item/{id}.json and /{list}.json, answers unknown IDs with a literal null
// body like the real API, and tracks request concurrency so tests can assert
// on the fetcher's in-flight cap.
type MockHN struct {
	server *httptest.Server

	mu        sync.Mutex
	items     map[int64]MockItem
	lists     map[string][]int64
	failures  map[int64]int // ID -> status code to force
	itemDelay time.Duration

	requestCount int
	inFlight     int
	maxInFlight  int
}

// NewMockHN creates a new mock upstream server.
func NewMockHN() *MockHN {
	mock := &MockHN{
		items:    make(map[int64]MockItem),
		lists:    make(map[string][]int64),
		failures: make(map[int64]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(mock.handle))
	return mock
}

// URL returns the mock server URL, usable as the client base URL.
func (m *MockHN) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockHN) Close() {
	m.server.Close()
}

// AddItem registers an item to be served.
func (m *MockHN) AddItem(it MockItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[it.ID] = it
}

// AddStory registers a plain story with the given engagement numbers.
func (m *MockHN) AddStory(id int64, title string, score, descendants int) {
	m.AddItem(MockItem{
		ID:          id,
		Type:        "story",
		By:          "tester",
		Title:       title,
		URL:         fmt.Sprintf("https://example.com/%d", id),
		Time:        time.Now().Unix(),
		Score:       score,
		Descendants: descendants,
	})
}

// SetList registers an ordered ID ranking.
func (m *MockHN) SetList(name string, ids []int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists[name] = ids
}

// FailWith forces a status code for one item ID.
func (m *MockHN) FailWith(id int64, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[id] = status
}

// ClearFailures removes all forced status codes.
func (m *MockHN) ClearFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = make(map[int64]int)
}

// SetItemDelay makes every item response sleep first.
func (m *MockHN) SetItemDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.itemDelay = d
}

// RequestCount returns the number of requests served.
func (m *MockHN) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requestCount
}

// MaxInFlight returns the peak number of simultaneous item requests.
func (m *MockHN) MaxInFlight() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxInFlight
}

// Reset clears tracking counters.
func (m *MockHN) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount = 0
	m.maxInFlight = 0
}

func (m *MockHN) handle(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.requestCount++
	m.inFlight++
	if m.inFlight > m.maxInFlight {
		m.maxInFlight = m.inFlight
	}
	delay := m.itemDelay
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.inFlight--
		m.mu.Unlock()
	}()

	if delay > 0 {
		time.Sleep(delay)
	}

	path := strings.TrimPrefix(r.URL.Path, "/")
	path = strings.TrimSuffix(path, ".json")

	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	if id, ok := strings.CutPrefix(path, "item/"); ok {
		m.handleItem(w, id)
		return
	}

	m.handleList(w, path)
}

func (m *MockHN) handleItem(w http.ResponseWriter, rawID string) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	m.mu.Lock()
	status, forced := m.failures[id]
	it, exists := m.items[id]
	m.mu.Unlock()

	if forced {
		w.WriteHeader(status)
		fmt.Fprintf(w, `{"error": "forced failure"}`)
		return
	}

	if !exists {
		// The real API answers 200 with a null body for unknown IDs.
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "null")
		return
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(it)
}

func (m *MockHN) handleList(w http.ResponseWriter, name string) {
	m.mu.Lock()
	ids, exists := m.lists[name]
	m.mu.Unlock()

	if !exists {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "null")
		return
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(ids)
}
