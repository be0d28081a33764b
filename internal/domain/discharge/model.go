package discharge

import (
	"time"

	"github.com/google/uuid"
)

// Type classifies how an admission ended.
type Type string

const (
	TypeNormal   Type = "normal"
	TypeLAMA     Type = "lama" // left against medical advice
	TypeReferral Type = "referral"
	TypeDeceased Type = "deceased"
)

func ValidType(t Type) bool {
	switch t {
	case TypeNormal, TypeLAMA, TypeReferral, TypeDeceased:
		return true
	}
	return false
}

// Discharge is the closing record of an admission. Patient, doctor and
// placement fields are snapshots taken at discharge time so the record
// stands on its own even if the ward is later reorganized.
type Discharge struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	AdmissionID  uuid.UUID  `json:"admission_id" db:"admission_id"`
	PatientID    uuid.UUID  `json:"patient_id" db:"patient_id"`
	PatientName  string     `json:"patient_name" db:"patient_name"`
	DoctorID     uuid.UUID  `json:"doctor_id" db:"doctor_id"`
	DoctorName   string     `json:"doctor_name" db:"doctor_name"`
	WardID       uuid.UUID  `json:"ward_id" db:"ward_id"`
	BedID        uuid.UUID  `json:"bed_id" db:"bed_id"`
	Diagnosis    string     `json:"diagnosis" db:"diagnosis"`
	Type         Type       `json:"type" db:"type"`
	Reason       string     `json:"reason" db:"reason"`
	Notes        *string    `json:"notes,omitempty" db:"notes"`
	Medications  []string   `json:"medications,omitempty" db:"medications"`
	FollowUpDate *time.Time `json:"follow_up_date,omitempty" db:"follow_up_date"`
	AdmittedAt   time.Time  `json:"admitted_at" db:"admitted_at"`
	DischargedAt time.Time  `json:"discharged_at" db:"discharged_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}
