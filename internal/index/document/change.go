package document

// ChangeOp discriminates the Change tagged union.
type ChangeOp string

const (
	OpInsert ChangeOp = "insert"
	OpUpdate ChangeOp = "update"
	OpDelete ChangeOp = "delete"
)

// Change is one incremental mutation emitted by the persistence layer.
// Insert and Update carry the full replacement Doc; Delete carries only
// the id. Soft-deleted entities arrive as Delete.
type Change struct {
	Op  ChangeOp
	Doc Doc    // set for insert and update
	ID  string // set for delete
}

// Insert builds an insert change for doc.
func Insert(doc Doc) Change {
	return Change{Op: OpInsert, Doc: doc, ID: doc.ID}
}

// Update builds a full-replace update change for doc.
func Update(doc Doc) Change {
	return Change{Op: OpUpdate, Doc: doc, ID: doc.ID}
}

// Delete builds a delete change for the given document id.
func Delete(id string) Change {
	return Change{Op: OpDelete, ID: id}
}

// Snapshot is the bulk warm-start payload: one collection of minimal
// projections per entity kind. It is consumed once and not retained.
type Snapshot struct {
	Tasks      []TaskRecord     `json:"tasks"`
	Activities []ActivityRecord `json:"activities"`
	Listings   []ListingRecord  `json:"listings"`
	Properties []PropertyRecord `json:"properties"`
	Realtors   []RealtorRecord  `json:"realtors"`
}

// Docs converts every projection in the snapshot through its adapter.
func (s Snapshot) Docs() []Doc {
	docs := make([]Doc, 0, s.Len())
	for _, r := range s.Listings {
		docs = append(docs, FromListing(r))
	}
	for _, r := range s.Properties {
		docs = append(docs, FromProperty(r))
	}
	for _, r := range s.Tasks {
		docs = append(docs, FromTask(r))
	}
	for _, r := range s.Activities {
		docs = append(docs, FromActivity(r))
	}
	for _, r := range s.Realtors {
		docs = append(docs, FromRealtor(r))
	}
	return docs
}

// Len returns the total number of records across all collections.
func (s Snapshot) Len() int {
	return len(s.Tasks) + len(s.Activities) + len(s.Listings) + len(s.Properties) + len(s.Realtors)
}
