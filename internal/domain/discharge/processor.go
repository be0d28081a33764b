package discharge

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hims/hims/internal/domain/admission"
	"github.com/hims/hims/internal/platform/telemetry"
)

// Processor closes admissions: it frees the bed, marks the admission
// discharged and writes the closing record as one unit.
type Processor struct {
	repo   Repository
	ledger *admission.Ledger
}

func NewProcessor(repo Repository, ledger *admission.Ledger) *Processor {
	return &Processor{repo: repo, ledger: ledger}
}

// Request carries the parameters of a discharge.
type Request struct {
	Type         Type       `json:"type" validate:"required,discharge_type"`
	Reason       string     `json:"reason" validate:"required"`
	Notes        *string    `json:"notes,omitempty"`
	Medications  []string   `json:"medications,omitempty"`
	FollowUpDate *time.Time `json:"follow_up_date,omitempty"`
}

// Discharge closes the admission and returns the discharge record. The
// record write happens inside the atomic unit; if it fails the bed is
// re-claimed and the admission stays active.
func (p *Processor) Discharge(ctx context.Context, admissionID uuid.UUID, req Request) (*Discharge, error) {
	if !ValidType(req.Type) {
		return nil, fmt.Errorf("%w: invalid discharge type %q", ErrInvalid, req.Type)
	}
	if strings.TrimSpace(req.Reason) == "" {
		return nil, fmt.Errorf("%w: reason is required", ErrInvalid)
	}

	var rec *Discharge
	_, err := p.ledger.Conclude(ctx, admissionID, func(a *admission.Admission) error {
		d := &Discharge{
			AdmissionID:  a.ID,
			PatientID:    a.PatientID,
			PatientName:  a.PatientName,
			DoctorID:     a.DoctorID,
			DoctorName:   a.DoctorName,
			WardID:       a.WardID,
			BedID:        a.BedID,
			Diagnosis:    a.Diagnosis,
			Type:         req.Type,
			Reason:       strings.TrimSpace(req.Reason),
			Notes:        req.Notes,
			Medications:  req.Medications,
			FollowUpDate: req.FollowUpDate,
			AdmittedAt:   a.AdmittedAt,
			DischargedAt: time.Now().UTC(),
		}
		if err := p.repo.Create(ctx, d); err != nil {
			return err
		}
		rec = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	telemetry.DischargesTotal.WithLabelValues(string(rec.Type)).Inc()
	return rec, nil
}

// Record returns the discharge record of an admission, if any.
func (p *Processor) Record(ctx context.Context, admissionID uuid.UUID) (*Discharge, error) {
	if _, err := p.ledger.GetAdmission(ctx, admissionID); err != nil {
		return nil, err
	}
	return p.repo.GetByAdmission(ctx, admissionID)
}

// List returns discharge records, most recent first.
func (p *Processor) List(ctx context.Context, limit, offset int) ([]*Discharge, int, error) {
	return p.repo.List(ctx, limit, offset)
}
