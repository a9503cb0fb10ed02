package document

import "time"

// The record types below are the minimal projections the persistence layer
// exposes to the index. Adapters never see full domain objects.

// TaskRecord is the projected shape of a maintenance or follow-up task.
type TaskRecord struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	StatusRaw     string    `json:"status_raw"`
	StatusDisplay string    `json:"status_display"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ActivityRecord is the projected shape of a logged activity entry.
type ActivityRecord struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Notes         string    `json:"notes"`
	StatusRaw     string    `json:"status_raw"`
	StatusDisplay string    `json:"status_display"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ListingRecord is the projected shape of a sale or rental listing.
type ListingRecord struct {
	ID            string    `json:"id"`
	Address       string    `json:"address"`
	City          string    `json:"city"`
	StatusRaw     string    `json:"status_raw"`
	StatusDisplay string    `json:"status_display"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// PropertyRecord is the projected shape of a managed property.
type PropertyRecord struct {
	ID        string    `json:"id"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RealtorRecord is the projected shape of a realtor contact.
type RealtorRecord struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Agency    string    `json:"agency"`
	City      string    `json:"city"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FromTask converts a task projection into a searchable Doc.
func FromTask(r TaskRecord) Doc {
	return New(TypeTask, r.ID, r.Title, r.Description, r.StatusDisplay, r.UpdatedAt)
}

// FromActivity converts an activity projection into a searchable Doc.
func FromActivity(r ActivityRecord) Doc {
	return New(TypeActivity, r.ID, r.Title, r.Notes, r.StatusDisplay, r.UpdatedAt)
}

// FromListing converts a listing projection into a searchable Doc. The
// secondary line combines city and status the way the result rows render it.
func FromListing(r ListingRecord) Doc {
	secondary := r.City
	if r.StatusDisplay != "" {
		if secondary != "" {
			secondary += " · " + r.StatusDisplay
		} else {
			secondary = r.StatusDisplay
		}
	}
	return New(TypeListing, r.ID, r.Address, secondary, "", r.UpdatedAt, r.City, r.StatusDisplay)
}

// FromProperty converts a property projection into a searchable Doc.
func FromProperty(r PropertyRecord) Doc {
	return New(TypeProperty, r.ID, r.Address, r.City, "", r.UpdatedAt)
}

// FromRealtor converts a realtor projection into a searchable Doc.
func FromRealtor(r RealtorRecord) Doc {
	return New(TypeRealtor, r.ID, r.Name, r.Agency, r.City, r.UpdatedAt)
}
