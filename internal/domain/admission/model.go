package admission

import (
	"time"

	"github.com/google/uuid"
)

// Status is the clinical state of an admission. Active, critical and
// stable all mean "occupying a bed" and may change in any order;
// discharged is terminal.
type Status string

const (
	StatusActive     Status = "active"
	StatusCritical   Status = "critical"
	StatusStable     Status = "stable"
	StatusDischarged Status = "discharged"
)

// ValidClinicalStatus reports whether s is a status an operator may set
// directly. Discharged is only reachable through the discharge flow.
func ValidClinicalStatus(s Status) bool {
	switch s {
	case StatusActive, StatusCritical, StatusStable:
		return true
	}
	return false
}

// Admission maps to the admission table. Patient and doctor references
// are opaque to the engine (id + display name supplied by the caller).
// WardID/BedID are the current placement while the admission is active;
// after discharge they record the last bed held.
type Admission struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	PatientID     uuid.UUID  `db:"patient_id" json:"patient_id"`
	PatientName   string     `db:"patient_name" json:"patient_name"`
	DoctorID      uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	DoctorName    string     `db:"doctor_name" json:"doctor_name"`
	WardID        uuid.UUID  `db:"ward_id" json:"ward_id"`
	BedID         uuid.UUID  `db:"bed_id" json:"bed_id"`
	Status        Status     `db:"status" json:"status"`
	Diagnosis     string     `db:"diagnosis" json:"diagnosis"`
	Notes         *string    `db:"notes" json:"notes,omitempty"`
	PaymentMethod *string    `db:"payment_method" json:"payment_method,omitempty"`
	DepositAmount *float64   `db:"deposit_amount" json:"deposit_amount,omitempty"`
	AdmittedAt    time.Time  `db:"admitted_at" json:"admitted_at"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}
