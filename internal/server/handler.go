// Package server exposes the search index over HTTP for the client
// application: ranked search, index stats, and cache management endpoints.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/kwhittaker/estatesearch/internal/index"
	"github.com/kwhittaker/estatesearch/internal/index/document"
	"github.com/kwhittaker/estatesearch/internal/searchcache"
	apperrors "github.com/kwhittaker/estatesearch/pkg/errors"
	"github.com/kwhittaker/estatesearch/pkg/logger"
	"github.com/kwhittaker/estatesearch/pkg/metrics"
)

// Result is the wire shape of one ranked document.
type Result struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Primary   string    `json:"primary"`
	Secondary string    `json:"secondary"`
	Tertiary  string    `json:"tertiary,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SearchResponse is the body of a successful search call.
type SearchResponse struct {
	Query   string   `json:"query"`
	Total   int      `json:"total"`
	Results []Result `json:"results"`
}

// Handler serves the search API over a warm index engine.
type Handler struct {
	engine       *index.Engine
	cache        *searchcache.QueryCache
	metrics      *metrics.Metrics
	defaultLimit int
	maxResults   int
	logger       *slog.Logger
}

// New creates a Handler. cache and m may be nil to disable caching and
// metric recording.
func New(engine *index.Engine, cache *searchcache.QueryCache, m *metrics.Metrics, defaultLimit, maxResults int) *Handler {
	return &Handler{
		engine:       engine,
		cache:        cache,
		metrics:      m,
		defaultLimit: defaultLimit,
		maxResults:   maxResults,
		logger:       slog.Default().With("component", "search-handler"),
	}
}

// Search handles GET /api/v1/search?q=...&limit=N. An empty q is allowed
// and returns documents ordered by type priority and recency.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	if !h.engine.Ready() {
		h.writeError(w, apperrors.ErrIndexNotReady)
		return
	}

	query := r.URL.Query().Get("q")
	limit := h.defaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			h.writeError(w, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest,
				"limit must be a positive integer, got %q", limitStr))
			return
		}
		if parsed > h.maxResults {
			parsed = h.maxResults
		}
		limit = parsed
	}

	var docs []document.Doc
	cacheHit := false
	if h.cache != nil {
		docs, cacheHit = h.cache.GetOrCompute(ctx, query, limit, func() []document.Doc {
			return h.engine.Search(query, limit)
		})
	} else {
		docs = h.engine.Search(query, limit)
	}

	h.recordSearch(query, docs, cacheHit, time.Since(start))
	log.Debug("search completed",
		"query", query,
		"results", len(docs),
		"cache_hit", cacheHit,
		"latency", time.Since(start).Round(time.Microsecond),
	)

	results := make([]Result, len(docs))
	for i, d := range docs {
		results[i] = Result{
			ID:        d.ID,
			Type:      string(d.Type),
			Primary:   d.PrimaryText,
			Secondary: d.SecondaryText,
			Tertiary:  d.TertiaryText,
			UpdatedAt: d.UpdatedAt,
		}
	}
	h.writeJSON(w, http.StatusOK, SearchResponse{
		Query:   query,
		Total:   len(results),
		Results: results,
	})
}

// Stats handles GET /api/v1/index/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.engine.Stats())
}

// CacheStats handles GET /api/v1/cache/stats.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": strconv.FormatFloat(hitRate, 'f', 1, 64) + "%",
	})
}

// CacheInvalidate handles POST /api/v1/cache/invalidate.
func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, apperrors.ErrCacheDisabled)
		return
	}
	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, apperrors.New(apperrors.ErrInternal, http.StatusInternalServerError, "cache invalidation failed"))
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func (h *Handler) recordSearch(query string, docs []document.Doc, cacheHit bool, elapsed time.Duration) {
	if h.metrics == nil {
		return
	}
	outcome := "hit"
	switch {
	case query == "":
		outcome = "empty_query"
	case len(docs) == 0:
		outcome = "zero_result"
	}
	h.metrics.SearchQueriesTotal.WithLabelValues(outcome).Inc()
	cacheStatus := "miss"
	if cacheHit {
		cacheStatus = "hit"
	}
	h.metrics.SearchLatency.WithLabelValues(cacheStatus).Observe(elapsed.Seconds())
	h.metrics.SearchResultsCount.Observe(float64(len(docs)))
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

// writeError answers with the HTTP status mapped from err's sentinel and a
// JSON error body. An AppError's message is preferred over the raw chain.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	message := err.Error()
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	h.writeJSON(w, apperrors.HTTPStatusCode(err), map[string]string{"error": message})
}
