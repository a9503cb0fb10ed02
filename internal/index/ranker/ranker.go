// Package ranker implements the pure scoring function of the search index.
// Scoring is tiered: a phrase match (the whole normalised query appearing
// as a substring of the document's search key) beats a full token-set
// match, which beats a partial token match. A starts-with bonus is added
// on top of whichever tier applied, so "Window Repair" outranks
// "Repair Window" for the query "window". Type priority and recency are
// used only as final tie-breakers, in that order.
package ranker

import (
	"sort"
	"strings"

	"github.com/kwhittaker/estatesearch/internal/index/document"
	"github.com/kwhittaker/estatesearch/internal/index/tokenizer"
)

const (
	phraseScore    = 1000
	allTokensScore = 500
	prefixBonus    = 200
)

// Query is a parsed search query: the normalised raw text and its tokens.
type Query struct {
	Norm   string
	Tokens []string
}

// ParseQuery normalises and tokenizes raw query text.
func ParseQuery(raw string) Query {
	return Query{
		Norm:   tokenizer.Normalize(raw),
		Tokens: tokenizer.Tokenize(raw),
	}
}

// Empty reports whether the query has no searchable content at all.
func (q Query) Empty() bool {
	return q.Norm == ""
}

// Candidate pairs a document with the number of query tokens it matched.
// The matched count is computed by the engine from its posting sets.
type Candidate struct {
	Doc     document.Doc
	Matched int
}

// Rank scores and orders candidates for q, truncating to limit when
// limit > 0. Candidates that matched no token should not be passed in;
// they would score zero but still occupy result slots.
func Rank(candidates []Candidate, q Query, limit int) []document.Doc {
	type scored struct {
		doc   document.Doc
		score int
	}
	ranked := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		ranked = append(ranked, scored{doc: c.Doc, score: Score(c.Doc, q, c.Matched)})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		pi, pj := ranked[i].doc.Type.Priority(), ranked[j].doc.Type.Priority()
		if pi != pj {
			return pi < pj
		}
		if !ranked[i].doc.UpdatedAt.Equal(ranked[j].doc.UpdatedAt) {
			return ranked[i].doc.UpdatedAt.After(ranked[j].doc.UpdatedAt)
		}
		return ranked[i].doc.ID < ranked[j].doc.ID
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	docs := make([]document.Doc, len(ranked))
	for i, r := range ranked {
		docs[i] = r.doc
	}
	return docs
}

// Score computes the relevance score of doc for q given how many query
// tokens the doc matched.
func Score(doc document.Doc, q Query, matched int) int {
	score := 0
	switch {
	case strings.Contains(doc.SearchKey, q.Norm):
		score = phraseScore
	case len(q.Tokens) > 0 && matched == len(q.Tokens):
		score = allTokensScore
	}
	if strings.HasPrefix(doc.PrimaryNorm, q.Norm) {
		score += prefixBonus
	}
	return score
}

// Recent orders docs for the empty query: type priority first, then most
// recently updated, truncated to limit when limit > 0. No tokenization
// occurs on this path.
func Recent(docs []document.Doc, limit int) []document.Doc {
	out := make([]document.Doc, len(docs))
	copy(out, docs)
	sort.Slice(out, func(i, j int) bool {
		pi, pj := out[i].Type.Priority(), out[j].Type.Priority()
		if pi != pj {
			return pi < pj
		}
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
