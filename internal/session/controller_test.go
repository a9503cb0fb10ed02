package session

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kwhittaker/estatesearch/internal/index/document"
)

var now = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func resultDoc(id string) document.Doc {
	return document.FromTask(document.TaskRecord{ID: id, Title: "Result " + id, UpdatedAt: now})
}

// recorder captures every published state in order.
type recorder struct {
	mu     sync.Mutex
	states []State
}

func (r *recorder) observe(s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *recorder) all() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]State, len(r.states))
	copy(out, r.states)
	return out
}

func TestDebounceCollapsesRapidKeystrokes(t *testing.T) {
	var calls atomic.Int32
	var lastQuery atomic.Value
	search := func(ctx context.Context, query string, limit int) []document.Doc {
		calls.Add(1)
		lastQuery.Store(query)
		return []document.Doc{resultDoc("d1")}
	}

	c := New(search, Config{Debounce: 60 * time.Millisecond}, nil)
	c.SetQuery("a")
	time.Sleep(10 * time.Millisecond)
	c.SetQuery("ab")
	time.Sleep(10 * time.Millisecond)
	c.SetQuery("abc")

	time.Sleep(300 * time.Millisecond)

	if got := calls.Load(); got != 1 {
		t.Fatalf("search called %d times, want exactly 1", got)
	}
	if got := lastQuery.Load(); got != "abc" {
		t.Errorf("search called with %v, want %q", got, "abc")
	}
	st := c.State()
	if st.Searching || len(st.Results) != 1 {
		t.Errorf("final state = %+v", st)
	}
}

func TestEmptyQueryClearsSynchronouslyWithoutSearch(t *testing.T) {
	var calls atomic.Int32
	search := func(ctx context.Context, query string, limit int) []document.Doc {
		calls.Add(1)
		return []document.Doc{resultDoc("d1")}
	}

	rec := &recorder{}
	c := New(search, Config{Debounce: 30 * time.Millisecond}, rec.observe)
	c.SetQuery("window")
	time.Sleep(150 * time.Millisecond)
	if len(c.State().Results) != 1 {
		t.Fatal("precondition: first search should have produced results")
	}

	c.SetQuery("   ")
	st := c.State()
	if st.Searching {
		t.Error("isSearching must be false immediately after empty query")
	}
	if len(st.Results) != 0 {
		t.Error("results must be cleared synchronously for empty query")
	}

	time.Sleep(150 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Errorf("empty query triggered a search: %d total calls, want 1", got)
	}
}

func TestWhitespaceOnlyFromIdleNeverSearches(t *testing.T) {
	var calls atomic.Int32
	search := func(ctx context.Context, query string, limit int) []document.Doc {
		calls.Add(1)
		return nil
	}
	c := New(search, Config{Debounce: 20 * time.Millisecond}, nil)
	c.SetQuery("")
	c.SetQuery(" \t ")
	time.Sleep(100 * time.Millisecond)
	if calls.Load() != 0 {
		t.Errorf("whitespace queries issued %d search calls, want 0", calls.Load())
	}
}

func TestIsSearchingDuringDebounce(t *testing.T) {
	search := func(ctx context.Context, query string, limit int) []document.Doc {
		return nil
	}
	c := New(search, Config{Debounce: 200 * time.Millisecond}, nil)
	c.SetQuery("window")
	if !c.IsSearching() {
		t.Error("isSearching must be true while debouncing")
	}
	time.Sleep(500 * time.Millisecond)
	if c.IsSearching() {
		t.Error("isSearching must be false after results are published")
	}
}

func TestSupersededSearchResultNeverPublished(t *testing.T) {
	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})
	search := func(ctx context.Context, query string, limit int) []document.Doc {
		if query == "first" {
			close(firstStarted)
			<-releaseFirst
			return []document.Doc{resultDoc("stale")}
		}
		return []document.Doc{resultDoc("fresh")}
	}

	rec := &recorder{}
	c := New(search, Config{Debounce: 20 * time.Millisecond}, rec.observe)

	c.SetQuery("first")
	<-firstStarted // first search is now in flight

	c.SetQuery("second")
	time.Sleep(150 * time.Millisecond) // second search completes
	close(releaseFirst)                // first search returns late
	time.Sleep(150 * time.Millisecond)

	st := c.State()
	if st.Query != "second" {
		t.Errorf("published query = %q, want %q", st.Query, "second")
	}
	if len(st.Results) != 1 || st.Results[0].ID != "fresh" {
		t.Errorf("published results = %+v, want the second query's results", st.Results)
	}
	for _, s := range rec.all() {
		for _, d := range s.Results {
			if d.ID == "stale" {
				t.Fatal("stale result from superseded search reached published state")
			}
		}
	}
}

func TestSupersededDuringDebounceNeverCallsEngine(t *testing.T) {
	var queries sync.Map
	search := func(ctx context.Context, query string, limit int) []document.Doc {
		queries.Store(query, true)
		return nil
	}
	c := New(search, Config{Debounce: 80 * time.Millisecond}, nil)
	c.SetQuery("doomed")
	time.Sleep(20 * time.Millisecond)
	c.SetQuery("winner")
	time.Sleep(400 * time.Millisecond)

	if _, ok := queries.Load("doomed"); ok {
		t.Error("query superseded during debounce still reached the engine")
	}
	if _, ok := queries.Load("winner"); !ok {
		t.Error("winning query never reached the engine")
	}
}

func TestInFlightContextCancelledOnSupersession(t *testing.T) {
	started := make(chan struct{})
	cancelled := make(chan struct{})
	search := func(ctx context.Context, query string, limit int) []document.Doc {
		if query == "slow" {
			close(started)
			select {
			case <-ctx.Done():
				close(cancelled)
			case <-time.After(2 * time.Second):
			}
		}
		return nil
	}
	c := New(search, Config{Debounce: 10 * time.Millisecond}, nil)
	c.SetQuery("slow")
	<-started
	c.SetQuery("next")
	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Error("in-flight search context was not cancelled on supersession")
	}
}

func TestCloseStopsPendingWork(t *testing.T) {
	var calls atomic.Int32
	search := func(ctx context.Context, query string, limit int) []document.Doc {
		calls.Add(1)
		return nil
	}
	c := New(search, Config{Debounce: 50 * time.Millisecond}, nil)
	c.SetQuery("window")
	c.Close()
	time.Sleep(200 * time.Millisecond)
	if calls.Load() != 0 {
		t.Errorf("search ran after Close: %d calls", calls.Load())
	}
	if c.IsSearching() {
		t.Error("isSearching must be false after Close")
	}
}
