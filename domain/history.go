package domain

import "time"

// Diff is the audit payload stored with a history entry: either a full-record
// creation snapshot or a set of field-level changes, never both.
type Diff struct {
	Created *Buyer       `json:"created,omitempty"`
	Fields  FieldChanges `json:"fields,omitempty"`
}

// NewCreatedDiff marks the entry as a full-record creation.
func NewCreatedDiff(b *Buyer) Diff {
	return Diff{Created: b}
}

// NewFieldDiff marks the entry as a field-level update.
func NewFieldDiff(changes FieldChanges) Diff {
	return Diff{Fields: changes}
}

// HistoryEntry is one immutable row of a buyer's audit trail. Entries are
// append-only: they are never updated or deleted on their own.
type HistoryEntry struct {
	ID        string    `json:"id"`
	BuyerID   string    `json:"buyerId"`
	ChangedBy string    `json:"changedBy"`
	ChangedAt time.Time `json:"changedAt"`
	Diff      Diff      `json:"diff"`
}
