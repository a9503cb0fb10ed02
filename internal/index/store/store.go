// Package store holds the mutable inverted-index state: a document table
// keyed by id and a token table mapping each token to the set of document
// ids containing it. The store is not safe for concurrent use; the index
// engine is the single exclusion boundary around it.
package store

import "github.com/kwhittaker/estatesearch/internal/index/document"

// Store owns all indexed documents and their postings. After any mutation
// the token table is exactly the union of the tokens of every resident
// document; no stale id survives a delete or replace.
type Store struct {
	docs     map[string]document.Doc
	postings map[string]map[string]struct{}
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		docs:     make(map[string]document.Doc),
		postings: make(map[string]map[string]struct{}),
	}
}

// Insert adds doc to the document table and registers its id under every
// token of its search key. An existing document with the same id is fully
// replaced: its old postings are removed first.
func (s *Store) Insert(doc document.Doc) {
	if old, ok := s.docs[doc.ID]; ok {
		s.removePostings(old)
	}
	s.docs[doc.ID] = doc
	for _, tok := range doc.Tokens() {
		set, ok := s.postings[tok]
		if !ok {
			set = make(map[string]struct{})
			s.postings[tok] = set
		}
		set[doc.ID] = struct{}{}
	}
}

// Delete removes the document with the given id and all its postings.
// Unknown ids are a no-op.
func (s *Store) Delete(id string) {
	doc, ok := s.docs[id]
	if !ok {
		return
	}
	s.removePostings(doc)
	delete(s.docs, id)
}

// Get returns the document with the given id, if present.
func (s *Store) Get(id string) (document.Doc, bool) {
	doc, ok := s.docs[id]
	return doc, ok
}

// IDsForToken returns the set of document ids indexed under tok. The
// returned map is the store's own; callers must treat it as read-only.
func (s *Store) IDsForToken(tok string) map[string]struct{} {
	return s.postings[tok]
}

// Docs returns a copy of every resident document, in no particular order.
func (s *Store) Docs() []document.Doc {
	docs := make([]document.Doc, 0, len(s.docs))
	for _, d := range s.docs {
		docs = append(docs, d)
	}
	return docs
}

// Len returns the number of resident documents.
func (s *Store) Len() int {
	return len(s.docs)
}

// TokenCount returns the number of distinct tokens in the token table.
func (s *Store) TokenCount() int {
	return len(s.postings)
}

// Reset discards all documents and postings.
func (s *Store) Reset() {
	s.docs = make(map[string]document.Doc)
	s.postings = make(map[string]map[string]struct{})
}

// removePostings drops id from the posting set of every token the document
// contributes, deleting sets that become empty.
func (s *Store) removePostings(doc document.Doc) {
	for _, tok := range doc.Tokens() {
		set, ok := s.postings[tok]
		if !ok {
			continue
		}
		delete(set, doc.ID)
		if len(set) == 0 {
			delete(s.postings, tok)
		}
	}
}
