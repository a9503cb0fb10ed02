package server

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kwhittaker/estatesearch/internal/index"
	"github.com/kwhittaker/estatesearch/internal/index/document"
)

var now = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func testHandler(t *testing.T, warm bool) *Handler {
	t.Helper()
	engine := index.New()
	if warm {
		engine.WarmStart(document.Snapshot{
			Tasks: []document.TaskRecord{
				{ID: "t1", Title: "Fix Broken Window", StatusDisplay: "Open", UpdatedAt: now},
				{ID: "t2", Title: "Mow Lawn", StatusDisplay: "Open", UpdatedAt: now.Add(-time.Hour)},
			},
			Listings: []document.ListingRecord{
				{ID: "l1", Address: "123 Main St", City: "Springfield", StatusDisplay: "Active", UpdatedAt: now},
			},
		})
	}
	return New(engine, nil, nil, 25, 100)
}

func doSearch(t *testing.T, h *Handler, url string) (int, SearchResponse) {
	t.Helper()
	req := httptest.NewRequest("GET", url, nil)
	rec := httptest.NewRecorder()
	h.Search(rec, req)
	var resp SearchResponse
	if rec.Code == 200 {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
	}
	return rec.Code, resp
}

func TestSearchEndpoint(t *testing.T) {
	h := testHandler(t, true)
	code, resp := doSearch(t, h, "/api/v1/search?q=window")
	if code != 200 {
		t.Fatalf("status = %d", code)
	}
	if resp.Total != 1 || resp.Results[0].ID != "t1" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.Results[0].Type != "task" || resp.Results[0].Primary != "Fix Broken Window" {
		t.Errorf("result shape wrong: %+v", resp.Results[0])
	}
}

func TestSearchEmptyQueryReturnsRecent(t *testing.T) {
	h := testHandler(t, true)
	code, resp := doSearch(t, h, "/api/v1/search?q=")
	if code != 200 {
		t.Fatalf("status = %d", code)
	}
	if resp.Total != 3 {
		t.Fatalf("Total = %d, want all docs", resp.Total)
	}
	if resp.Results[0].ID != "l1" {
		t.Errorf("listing should lead the empty-query ordering, got %s", resp.Results[0].ID)
	}
}

func TestSearchNotReady(t *testing.T) {
	h := testHandler(t, false)
	req := httptest.NewRequest("GET", "/api/v1/search?q=window", nil)
	rec := httptest.NewRecorder()
	h.Search(rec, req)
	if rec.Code != 503 {
		t.Errorf("status = %d before warm start, want 503", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["error"] != "index not ready" {
		t.Errorf("error body = %q", body["error"])
	}
}

func TestSearchLimitValidation(t *testing.T) {
	h := testHandler(t, true)
	req := httptest.NewRequest("GET", "/api/v1/search?q=window&limit=zero", nil)
	rec := httptest.NewRecorder()
	h.Search(rec, req)
	if rec.Code != 400 {
		t.Errorf("non-numeric limit: status = %d, want 400", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(body["error"], `"zero"`) {
		t.Errorf("error body should name the rejected limit, got %q", body["error"])
	}
	if code, _ := doSearch(t, h, "/api/v1/search?q=window&limit=-1"); code != 400 {
		t.Errorf("negative limit: status = %d, want 400", code)
	}
	code, resp := doSearch(t, h, "/api/v1/search?q=&limit=2")
	if code != 200 || resp.Total != 2 {
		t.Errorf("limit not applied: status %d, total %d", code, resp.Total)
	}
}

func TestStatsEndpoint(t *testing.T) {
	h := testHandler(t, true)
	req := httptest.NewRequest("GET", "/api/v1/index/stats", nil)
	rec := httptest.NewRecorder()
	h.Stats(rec, req)
	var st index.Stats
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatal(err)
	}
	if st.Docs != 3 || !st.Ready {
		t.Errorf("stats = %+v", st)
	}
}

func TestCacheEndpointsDisabled(t *testing.T) {
	h := testHandler(t, true)
	rec := httptest.NewRecorder()
	h.CacheStats(rec, httptest.NewRequest("GET", "/api/v1/cache/stats", nil))
	if rec.Code != 200 {
		t.Errorf("cache stats with no cache: status %d", rec.Code)
	}
	rec = httptest.NewRecorder()
	h.CacheInvalidate(rec, httptest.NewRequest("POST", "/api/v1/cache/invalidate", nil))
	if rec.Code != 503 {
		t.Errorf("cache invalidate with no cache: status %d, want 503", rec.Code)
	}
}
