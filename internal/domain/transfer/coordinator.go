package transfer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hims/hims/internal/domain/admission"
	"github.com/hims/hims/internal/platform/telemetry"
)

// Coordinator moves active admissions between wards and keeps the
// per-admission transfer history.
type Coordinator struct {
	repo   Repository
	ledger *admission.Ledger
}

func NewCoordinator(repo Repository, ledger *admission.Ledger) *Coordinator {
	return &Coordinator{repo: repo, ledger: ledger}
}

// Request carries the parameters of a transfer.
type Request struct {
	ToWardID uuid.UUID `json:"to_ward_id" validate:"required"`
	Reason   string    `json:"reason" validate:"required"`
}

// Transfer moves the admission to an available bed in the destination
// ward and appends a history row. The history write happens inside the
// atomic move; if it fails the patient stays where they were.
func (co *Coordinator) Transfer(ctx context.Context, admissionID uuid.UUID, req Request) (*Transfer, error) {
	if strings.TrimSpace(req.Reason) == "" {
		return nil, fmt.Errorf("%w: reason is required", ErrInvalid)
	}
	if req.ToWardID == uuid.Nil {
		return nil, fmt.Errorf("%w: to_ward_id is required", ErrInvalid)
	}

	var rec *Transfer
	_, err := co.ledger.Relocate(ctx, admissionID, req.ToWardID, func(rel admission.Relocation) error {
		t := &Transfer{
			AdmissionID:   admissionID,
			FromWardID:    rel.FromWardID,
			FromBedID:     rel.FromBed.ID,
			FromBedLabel:  rel.FromBed.Label,
			ToWardID:      rel.ToWardID,
			ToBedID:       rel.ToBed.ID,
			ToBedLabel:    rel.ToBed.Label,
			Reason:        strings.TrimSpace(req.Reason),
			TransferredAt: time.Now().UTC(),
		}
		if err := co.repo.Create(ctx, t); err != nil {
			return err
		}
		rec = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	telemetry.TransfersTotal.Inc()
	return rec, nil
}

// History returns the admission's transfers in chronological order.
// The admission must exist; an empty history is a valid result.
func (co *Coordinator) History(ctx context.Context, admissionID uuid.UUID) ([]*Transfer, error) {
	if _, err := co.ledger.GetAdmission(ctx, admissionID); err != nil {
		return nil, err
	}
	return co.repo.ListByAdmission(ctx, admissionID)
}
