package ward

import (
	"time"

	"github.com/google/uuid"
)

// BedStatus is the allocation state of a single bed.
type BedStatus string

const (
	BedAvailable   BedStatus = "available"
	BedOccupied    BedStatus = "occupied"
	BedReserved    BedStatus = "reserved"
	BedMaintenance BedStatus = "maintenance"
)

// ValidBedStatus reports whether s is one of the known bed statuses.
func ValidBedStatus(s BedStatus) bool {
	switch s {
	case BedAvailable, BedOccupied, BedReserved, BedMaintenance:
		return true
	}
	return false
}

// Ward maps to the ward table. Occupancy counts are never stored on the
// ward row; they are derived from the bed collection on every read.
type Ward struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Code      string    `db:"code" json:"code"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Bed maps to the bed table. A bed belongs to exactly one ward for its
// lifetime. OccupantAdmissionID is set if and only if Status is occupied.
type Bed struct {
	ID                  uuid.UUID  `db:"id" json:"id"`
	WardID              uuid.UUID  `db:"ward_id" json:"ward_id"`
	Number              int        `db:"number" json:"number"`
	Label               string     `db:"label" json:"label"`
	Status              BedStatus  `db:"status" json:"status"`
	OccupantAdmissionID *uuid.UUID `db:"occupant_admission_id" json:"occupant_admission_id,omitempty"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updated_at"`
}

// Occupancy is a derived per-ward census of bed states.
type Occupancy struct {
	TotalBeds   int `json:"total_beds"`
	Occupied    int `json:"occupied"`
	Available   int `json:"available"`
	Reserved    int `json:"reserved"`
	Maintenance int `json:"maintenance"`
}

// Summary is a ward together with its derived occupancy.
type Summary struct {
	Ward
	Occupancy Occupancy `json:"occupancy"`
}
