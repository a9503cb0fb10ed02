// Package document defines the canonical searchable record (Doc), the closed
// set of entity types with their ranking priority, the per-entity adapters
// that project minimal persistence DTOs into Docs, and the change/snapshot
// payloads exchanged with the persistence layer.
package document

import (
	"strings"
	"time"

	"github.com/kwhittaker/estatesearch/internal/index/tokenizer"
)

// Type tags a Doc with the entity kind it was built from. The set is closed;
// adding a kind requires a new adapter and a priority entry.
type Type string

const (
	TypeListing  Type = "listing"
	TypeProperty Type = "property"
	TypeTask     Type = "task"
	TypeActivity Type = "activity"
	TypeRealtor  Type = "realtor"
)

// typePriority is the explicit total order used to break ranking ties:
// lower value ranks first. Listings outrank properties, which outrank
// tasks, activities, and realtors, in that order.
var typePriority = map[Type]int{
	TypeListing:  0,
	TypeProperty: 1,
	TypeTask:     2,
	TypeActivity: 3,
	TypeRealtor:  4,
}

// Priority returns the tie-break rank for the type. Unknown types sort last.
func (t Type) Priority() int {
	if p, ok := typePriority[t]; ok {
		return p
	}
	return len(typePriority)
}

// Doc is one searchable record. PrimaryNorm and SearchKey are derived in
// full from the source fields on construction and never patched in place.
type Doc struct {
	ID            string    `json:"id"`
	Type          Type      `json:"type"`
	PrimaryText   string    `json:"primary_text"`
	SecondaryText string    `json:"secondary_text"`
	TertiaryText  string    `json:"tertiary_text,omitempty"`
	PrimaryNorm   string    `json:"primary_norm"`
	SearchKey     string    `json:"search_key"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// New builds a Doc, deriving PrimaryNorm from primary and SearchKey from the
// normalised concatenation of every non-empty searchable field.
func New(typ Type, id, primary, secondary, tertiary string, updatedAt time.Time, extraFields ...string) Doc {
	fields := make([]string, 0, 3+len(extraFields))
	for _, f := range append([]string{primary, secondary, tertiary}, extraFields...) {
		if strings.TrimSpace(f) != "" {
			fields = append(fields, f)
		}
	}
	return Doc{
		ID:            id,
		Type:          typ,
		PrimaryText:   primary,
		SecondaryText: secondary,
		TertiaryText:  tertiary,
		PrimaryNorm:   tokenizer.Normalize(primary),
		SearchKey:     tokenizer.Normalize(strings.Join(fields, " ")),
		UpdatedAt:     updatedAt,
	}
}

// Tokens returns the indexable tokens of the Doc's search key.
func (d Doc) Tokens() []string {
	return tokenizer.Tokenize(d.SearchKey)
}
