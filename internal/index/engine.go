// Package index implements the in-memory search index engine. The Engine is
// the single mutual-exclusion boundary around all index state: warm start,
// every incremental change, and every search are serialized against each
// other, so no caller ever observes a partially applied mutation.
package index

import (
	"log/slog"
	"sync"
	"time"

	"github.com/kwhittaker/estatesearch/internal/index/document"
	"github.com/kwhittaker/estatesearch/internal/index/ranker"
	"github.com/kwhittaker/estatesearch/internal/index/store"
)

// Engine owns the inverted index and answers ranked queries over it. All
// operations are total: malformed input degrades to empty output and
// changes for unknown ids are silently ignored.
type Engine struct {
	mu     sync.RWMutex
	store  *store.Store
	ready  bool
	logger *slog.Logger
}

// Stats is a point-in-time summary of engine state.
type Stats struct {
	Docs   int  `json:"docs"`
	Tokens int  `json:"tokens"`
	Ready  bool `json:"ready"`
}

// New returns an empty, not-yet-ready Engine.
func New() *Engine {
	return &Engine{
		store:  store.New(),
		logger: slog.Default().With("component", "index-engine"),
	}
}

// WarmStart clears any existing state, indexes every record in the
// snapshot, and marks the engine ready. Calling it again performs a full
// rebuild, not a merge.
func (e *Engine) WarmStart(snap document.Snapshot) {
	start := time.Now()
	docs := snap.Docs()

	e.mu.Lock()
	e.store.Reset()
	for _, d := range docs {
		e.store.Insert(d)
	}
	e.ready = true
	docCount, tokenCount := e.store.Len(), e.store.TokenCount()
	e.mu.Unlock()

	e.logger.Info("warm start complete",
		"docs", docCount,
		"tokens", tokenCount,
		"duration", time.Since(start).Round(time.Millisecond),
	)
}

// Apply incrementally applies one change. Inserts replace any document
// already indexed under the same id; updates without a prior document and
// deletes of unknown ids are no-ops, because change notifications may race
// the warm-start bulk load.
func (e *Engine) Apply(ch document.Change) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch ch.Op {
	case document.OpInsert:
		e.store.Insert(ch.Doc)
	case document.OpUpdate:
		if _, ok := e.store.Get(ch.Doc.ID); !ok {
			e.logger.Debug("update for unknown id ignored", "id", ch.Doc.ID)
			return
		}
		e.store.Insert(ch.Doc)
	case document.OpDelete:
		e.store.Delete(ch.ID)
	default:
		e.logger.Warn("unknown change op ignored", "op", ch.Op)
	}
}

// Search returns the ranked documents for query, truncated to limit when
// limit > 0. An empty or whitespace-only query returns documents ordered
// by type priority and recency without tokenizing. A query whose tokens
// are all filtered out matches nothing.
func (e *Engine) Search(query string, limit int) []document.Doc {
	q := ranker.ParseQuery(query)

	e.mu.RLock()
	defer e.mu.RUnlock()

	if q.Empty() {
		return ranker.Recent(e.store.Docs(), limit)
	}
	if len(q.Tokens) == 0 {
		return []document.Doc{}
	}

	// Candidate set: union of ids posted under any query token, with a
	// per-doc count of how many distinct tokens matched.
	matched := make(map[string]int)
	for _, tok := range q.Tokens {
		for id := range e.store.IDsForToken(tok) {
			matched[id]++
		}
	}
	candidates := make([]ranker.Candidate, 0, len(matched))
	for id, n := range matched {
		doc, ok := e.store.Get(id)
		if !ok {
			continue
		}
		candidates = append(candidates, ranker.Candidate{Doc: doc, Matched: n})
	}
	return ranker.Rank(candidates, q, limit)
}

// Ready reports whether a warm start has completed.
func (e *Engine) Ready() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ready
}

// Stats returns current document and token counts.
func (e *Engine) Stats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return Stats{
		Docs:   e.store.Len(),
		Tokens: e.store.TokenCount(),
		Ready:  e.ready,
	}
}
