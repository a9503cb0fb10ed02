package ranker

import (
	"testing"
	"time"

	"github.com/kwhittaker/estatesearch/internal/index/document"
)

var base = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func taskDoc(id, title string, at time.Time) document.Doc {
	return document.FromTask(document.TaskRecord{ID: id, Title: title, UpdatedAt: at})
}

func listingDoc(id, address string, at time.Time) document.Doc {
	return document.FromListing(document.ListingRecord{ID: id, Address: address, UpdatedAt: at})
}

// matchedCount mimics the engine: how many query tokens occur in the doc.
func matchedCount(d document.Doc, q Query) int {
	set := make(map[string]struct{})
	for _, tok := range d.Tokens() {
		set[tok] = struct{}{}
	}
	n := 0
	for _, tok := range q.Tokens {
		if _, ok := set[tok]; ok {
			n++
		}
	}
	return n
}

func rank(q Query, limit int, docs ...document.Doc) []document.Doc {
	cands := make([]Candidate, 0, len(docs))
	for _, d := range docs {
		if m := matchedCount(d, q); m > 0 {
			cands = append(cands, Candidate{Doc: d, Matched: m})
		}
	}
	return Rank(cands, q, limit)
}

func TestPhraseMatchBeatsTokenMatch(t *testing.T) {
	a := taskDoc("a", "Fix Broken Window", base)
	b := taskDoc("b", "Window needs a fix", base)
	got := rank(ParseQuery("fix broken window"), 10, b, a)
	if len(got) != 2 || got[0].ID != "a" {
		t.Fatalf("phrase match should rank first, got order %v", ids(got))
	}
}

func TestStartsWithBoost(t *testing.T) {
	a := taskDoc("a", "Window Repair", base)
	b := taskDoc("b", "Repair Window", base)
	got := rank(ParseQuery("window"), 10, b, a)
	if len(got) != 2 || got[0].ID != "a" {
		t.Fatalf("starts-with boost should rank %q first, got %v", "Window Repair", ids(got))
	}
}

func TestTypePriorityBreaksTies(t *testing.T) {
	listing := listingDoc("l", "Test Item", base)
	task := taskDoc("t", "Test Item", base)
	got := rank(ParseQuery("test item"), 10, task, listing)
	if len(got) != 2 || got[0].ID != "l" {
		t.Fatalf("listing should outrank task on equal score, got %v", ids(got))
	}
}

func TestRecencyBreaksRemainingTies(t *testing.T) {
	older := taskDoc("old", "Test Item", base.Add(-time.Hour))
	newer := taskDoc("new", "Test Item", base)
	got := rank(ParseQuery("test item"), 10, older, newer)
	if len(got) != 2 || got[0].ID != "new" {
		t.Fatalf("newer doc should rank first, got %v", ids(got))
	}
}

func TestAllTokensBeatsPartial(t *testing.T) {
	// "hinge on the window" holds both tokens but not as a phrase, so it
	// lands in the all-tokens tier, still above the partial match.
	full := taskDoc("full", "Hinge on the window", base)
	partial := taskDoc("part", "Oil the hinge", base)
	got := rank(ParseQuery("window hinge"), 10, partial, full)
	if len(got) != 2 || got[0].ID != "full" {
		t.Fatalf("full token-set match should rank first, got %v", ids(got))
	}
	if Score(full, ParseQuery("window hinge"), 2) != 500 {
		t.Errorf("expected all-tokens tier score 500, got %d", Score(full, ParseQuery("window hinge"), 2))
	}
}

func TestRankTruncatesToLimit(t *testing.T) {
	docs := []document.Doc{
		taskDoc("a", "window one", base),
		taskDoc("b", "window two", base),
		taskDoc("c", "window three", base),
	}
	got := rank(ParseQuery("window"), 2, docs...)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
}

func TestRecentOrdering(t *testing.T) {
	task := taskDoc("t", "Anything", base.Add(time.Hour))
	listing := listingDoc("l", "1 Elm St", base)
	got := Recent([]document.Doc{task, listing}, 0)
	if len(got) != 2 || got[0].ID != "l" {
		t.Fatalf("listing should come first on the empty-query path, got %v", ids(got))
	}

	// Within a type, most recent first.
	t1 := taskDoc("t1", "One", base.Add(-time.Minute))
	t2 := taskDoc("t2", "Two", base)
	got = Recent([]document.Doc{t1, t2}, 0)
	if got[0].ID != "t2" {
		t.Fatalf("recency order wrong: %v", ids(got))
	}
}

func TestParseQueryEmpty(t *testing.T) {
	if !ParseQuery("   ").Empty() {
		t.Error("whitespace query should be empty")
	}
	if ParseQuery("window").Empty() {
		t.Error("non-empty query reported empty")
	}
}

func ids(docs []document.Doc) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.ID
	}
	return out
}
