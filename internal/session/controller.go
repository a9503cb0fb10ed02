// Package session implements the query session controller that sits between
// user keystrokes and the index engine. It debounces query-text changes,
// cancels superseded work, and publishes results to an observer callback.
//
// The controller moves through three logical states: idle, debouncing, and
// searching. Every query change supersedes whatever was pending: a request
// that is superseded during the debounce delay never reaches the engine, and
// one superseded while its search is outstanding has its result discarded.
// Supersession is tracked with a monotonically increasing generation counter
// captured at request start and re-checked at every suspension point.
package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/kwhittaker/estatesearch/internal/index/document"
)

// DefaultDebounce is the delay applied after the last keystroke before a
// search is issued. Tunable via Config.
const DefaultDebounce = 200 * time.Millisecond

// SearchFunc executes a search. The context is cancelled when the request
// is superseded; implementations may ignore it, in which case the stale
// result is still discarded on return.
type SearchFunc func(ctx context.Context, query string, limit int) []document.Doc

// State is the published view of the session, observed by the UI layer.
type State struct {
	Query     string
	Results   []document.Doc
	Searching bool
}

// Config tunes the controller. Zero values fall back to defaults.
type Config struct {
	Debounce time.Duration
	Limit    int
}

// Controller owns the debounce timer and supersession bookkeeping for one
// search box. All methods are safe for concurrent use.
//
// The onChange callback is invoked synchronously with internal state held;
// observers must not call back into the Controller from it.
type Controller struct {
	search   SearchFunc
	debounce time.Duration
	limit    int
	onChange func(State)
	logger   *slog.Logger

	mu     sync.Mutex
	gen    uint64
	timer  *time.Timer
	cancel context.CancelFunc
	state  State
}

// New creates a Controller in the idle state. onChange may be nil.
func New(search SearchFunc, cfg Config, onChange func(State)) *Controller {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Limit <= 0 {
		cfg.Limit = 25
	}
	return &Controller{
		search:   search,
		debounce: cfg.Debounce,
		limit:    cfg.Limit,
		onChange: onChange,
		logger:   slog.Default().With("component", "query-session"),
	}
}

// SetQuery records a new query text. Any pending debounce or in-flight
// search is superseded. An empty or whitespace-only query clears results
// synchronously and issues no search call at all.
func (c *Controller) SetQuery(raw string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.supersedeLocked()
	c.state.Query = raw

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		c.state.Results = nil
		c.state.Searching = false
		c.publishLocked()
		return
	}

	c.state.Searching = true
	gen := c.gen
	c.timer = time.AfterFunc(c.debounce, func() {
		c.runSearch(gen, trimmed)
	})
	c.publishLocked()
}

// State returns a copy of the current published state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsSearching reports whether a debounce or search is outstanding.
func (c *Controller) IsSearching() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Searching
}

// Close cancels any pending work. The controller may be reused afterwards;
// the next SetQuery starts a fresh request.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.supersedeLocked()
	c.state.Searching = false
}

// runSearch fires when the debounce delay elapses. The generation captured
// at scheduling time is re-checked before the search is issued and again
// before its result is published.
func (c *Controller) runSearch(gen uint64, query string) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.cancel = cancel
	limit := c.limit
	c.mu.Unlock()

	results := c.search(ctx, query, limit)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		c.logger.Debug("discarding superseded search result", "query", query)
		return
	}
	c.cancel = nil
	c.state.Results = results
	c.state.Searching = false
	c.publishLocked()
}

// supersedeLocked advances the generation and tears down the pending timer
// and in-flight search context. Callers must hold mu.
func (c *Controller) supersedeLocked() {
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Controller) publishLocked() {
	if c.onChange != nil {
		c.onChange(c.state)
	}
}
