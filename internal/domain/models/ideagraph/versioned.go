package ideagraph

import (
	"time"

	"github.com/google/uuid"
)

// Version carries the physical and logical identity of a graph row.
//
// ID identifies the row itself. BaseID is shared by every row that represents
// the same logical entity over time. TombstoneDate is nil while the row is live.
// ID is empty until the row has been persisted.
//
// Two lifecycles are built on these fields:
//   - edit history (Versioned): NextVersion keeps BaseID and the caller
//     tombstones the superseded row, so at most one row per BaseID is live.
//   - archival snapshot (Archived): Archive leaves BaseID empty so the row gets
//     a fresh logical identity on insert, and is tombstoned from birth.
type Version struct {
	ID            string     `json:"id" db:"id"`
	BaseID        string     `json:"base_id" db:"base_id"`
	TombstoneDate *time.Time `json:"tombstone_date,omitempty" db:"tombstone_date"`
}

// Versioned is implemented by rows that take part in edit history.
type Versioned interface {
	VersionInfo() Version
	IsTombstoned() bool
}

// Archived is implemented by rows that can be frozen into an archival copy.
type Archived interface {
	VersionInfo() Version
	ArchivedAt() *time.Time
}

// VersionInfo returns the identity fields.
func (v Version) VersionInfo() Version { return v }

// IsTombstoned reports whether the row is historical, deleted or frozen.
func (v Version) IsTombstoned() bool { return v.TombstoneDate != nil }

// IsLive reports whether the row is the current version of its entity.
func (v Version) IsLive() bool { return v.TombstoneDate == nil }

// IsPersisted reports whether the row has been assigned an identity by a store.
func (v Version) IsPersisted() bool { return v.ID != "" }

// ArchivedAt returns the tombstone date of an archival copy.
func (v Version) ArchivedAt() *time.Time { return v.TombstoneDate }

// NextVersion returns the identity of the row that will supersede v.
func (v Version) NextVersion() Version {
	base := v.BaseID
	if base == "" {
		base = v.ID
	}
	return Version{BaseID: base}
}

// Archive returns the identity of a frozen copy of v, tombstoned at the given time.
func (v Version) Archive(at time.Time) Version {
	ts := at.UTC()
	return Version{TombstoneDate: &ts}
}

// AssignIdentity fills in ID and BaseID for a row about to be inserted.
// A row without BaseID starts a new logical entity.
func (v *Version) AssignIdentity() {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.BaseID == "" {
		v.BaseID = v.ID
	}
}
