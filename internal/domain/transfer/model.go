package transfer

import (
	"time"

	"github.com/google/uuid"
)

// Transfer is one completed ward-to-ward move of an admission. Rows are
// append-only; a transfer is recorded only after the bed move succeeded.
type Transfer struct {
	ID            uuid.UUID `json:"id" db:"id"`
	AdmissionID   uuid.UUID `json:"admission_id" db:"admission_id"`
	FromWardID    uuid.UUID `json:"from_ward_id" db:"from_ward_id"`
	FromBedID     uuid.UUID `json:"from_bed_id" db:"from_bed_id"`
	FromBedLabel  string    `json:"from_bed_label" db:"from_bed_label"`
	ToWardID      uuid.UUID `json:"to_ward_id" db:"to_ward_id"`
	ToBedID       uuid.UUID `json:"to_bed_id" db:"to_bed_id"`
	ToBedLabel    string    `json:"to_bed_label" db:"to_bed_label"`
	Reason        string    `json:"reason" db:"reason"`
	TransferredAt time.Time `json:"transferred_at" db:"transferred_at"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
