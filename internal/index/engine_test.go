package index

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/kwhittaker/estatesearch/internal/index/document"
)

var now = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func taskDoc(id, title string) document.Doc {
	return document.FromTask(document.TaskRecord{ID: id, Title: title, UpdatedAt: now})
}

func warmEngine(docs ...document.Doc) *Engine {
	e := New()
	e.WarmStart(document.Snapshot{})
	for _, d := range docs {
		e.Apply(document.Insert(d))
	}
	return e
}

func TestReadyTransitions(t *testing.T) {
	e := New()
	if e.Ready() {
		t.Error("engine must not be ready before warm start")
	}
	e.WarmStart(document.Snapshot{})
	if !e.Ready() {
		t.Error("engine must be ready after warm start")
	}
}

func TestSearchEmptyIndex(t *testing.T) {
	e := New()
	if got := e.Search("window", 10); len(got) != 0 {
		t.Errorf("empty index returned %d results", len(got))
	}
	if got := e.Search("", 10); len(got) != 0 {
		t.Errorf("empty index returned %d results for empty query", len(got))
	}
}

func TestWarmStartIndexesSnapshot(t *testing.T) {
	e := New()
	e.WarmStart(document.Snapshot{
		Tasks:    []document.TaskRecord{{ID: "t1", Title: "Fix Window", UpdatedAt: now}},
		Listings: []document.ListingRecord{{ID: "l1", Address: "123 Main St", City: "Springfield", UpdatedAt: now}},
	})
	if got := e.Search("window", 10); len(got) != 1 || got[0].ID != "t1" {
		t.Errorf("search after warm start = %v", got)
	}
	if st := e.Stats(); st.Docs != 2 || !st.Ready {
		t.Errorf("Stats = %+v", st)
	}
}

func TestWarmStartIsFullRebuild(t *testing.T) {
	e := New()
	e.WarmStart(document.Snapshot{
		Tasks: []document.TaskRecord{{ID: "t1", Title: "Fix Window", UpdatedAt: now}},
	})
	e.WarmStart(document.Snapshot{
		Tasks: []document.TaskRecord{{ID: "t2", Title: "Mow Lawn", UpdatedAt: now}},
	})
	if got := e.Search("window", 10); len(got) != 0 {
		t.Errorf("doc from previous warm start still searchable: %v", got)
	}
	if st := e.Stats(); st.Docs != 1 {
		t.Errorf("Docs = %d after rebuild, want 1", st.Docs)
	}
}

func TestApplyDeleteRemovesFromEveryQuery(t *testing.T) {
	e := warmEngine(taskDoc("t1", "Fix Broken Window"))
	e.Apply(document.Delete("t1"))
	for _, q := range []string{"fix", "broken", "window", "fix broken window", ""} {
		if got := e.Search(q, 10); len(got) != 0 {
			t.Errorf("query %q still returns deleted doc: %v", q, got)
		}
	}
}

func TestApplyUpdateReplacesTokens(t *testing.T) {
	e := warmEngine(taskDoc("t1", "Fix Broken Window"))
	e.Apply(document.Update(taskDoc("t1", "Paint Front Door")))

	if got := e.Search("window", 10); len(got) != 0 {
		t.Errorf("old token still resolves after update: %v", got)
	}
	if got := e.Search("door", 10); len(got) != 1 || got[0].ID != "t1" {
		t.Errorf("new tokens not searchable after update: %v", got)
	}
}

func TestApplyUpdateUnknownIDIsNoop(t *testing.T) {
	e := warmEngine()
	e.Apply(document.Update(taskDoc("ghost", "Phantom Task")))
	if st := e.Stats(); st.Docs != 0 {
		t.Errorf("update of unknown id created a document: %+v", st)
	}
}

func TestApplyDeleteUnknownIDIsNoop(t *testing.T) {
	e := warmEngine(taskDoc("t1", "Fix Window"))
	e.Apply(document.Delete("ghost"))
	if st := e.Stats(); st.Docs != 1 {
		t.Errorf("delete of unknown id disturbed state: %+v", st)
	}
}

func TestEmptyQueryOrdersByTypeThenRecency(t *testing.T) {
	e := warmEngine()
	e.Apply(document.Insert(document.FromListing(document.ListingRecord{
		ID: "l1", Address: "1 Elm St", UpdatedAt: now.Add(-time.Hour),
	})))
	e.Apply(document.Insert(taskDoc("t1", "Anything")))

	got := e.Search("", 10)
	if len(got) != 2 {
		t.Fatalf("empty query returned %d docs, want 2", len(got))
	}
	if got[0].ID != "l1" || got[1].ID != "t1" {
		t.Errorf("empty query order = [%s %s], want listing first", got[0].ID, got[1].ID)
	}
}

func TestSearchLimitTruncates(t *testing.T) {
	e := warmEngine()
	for i := 0; i < 5; i++ {
		e.Apply(document.Insert(taskDoc(fmt.Sprintf("t%d", i), "Window check")))
	}
	if got := e.Search("window", 3); len(got) != 3 {
		t.Errorf("len = %d, want 3", len(got))
	}
	if got := e.Search("window", 0); len(got) != 5 {
		t.Errorf("limit 0 should not truncate, len = %d", len(got))
	}
}

func TestConcurrentApplyAndSearch(t *testing.T) {
	e := warmEngine()
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				id := fmt.Sprintf("t-%d-%d", w, i)
				e.Apply(document.Insert(taskDoc(id, "Fix Broken Window")))
				if i%3 == 0 {
					e.Apply(document.Delete(id))
				}
			}
		}(w)
	}
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				// Every observed result must be a fully indexed doc.
				for _, d := range e.Search("broken window", 50) {
					if d.SearchKey == "" || d.ID == "" {
						t.Error("search observed partially applied document")
						return
					}
				}
			}
		}()
	}
	wg.Wait()
}
