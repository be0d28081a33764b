package admission

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hims/hims/internal/domain/ward"
	"github.com/hims/hims/internal/platform/telemetry"
)

// Ledger owns admission records and drives their lifecycle. Every
// state-changing operation (admit, status change, relocation,
// conclusion) runs under one mutex, so the bed mutation and the
// admission mutation of a single operation are observed together or not
// at all. When a downstream write fails after the bed has already been
// touched, the bed mutation is rolled back before the error is returned.
type Ledger struct {
	mu        sync.Mutex
	repo      Repository
	registry  *ward.Registry
	allocator *ward.Allocator
}

func NewLedger(repo Repository, registry *ward.Registry, allocator *ward.Allocator) *Ledger {
	return &Ledger{repo: repo, registry: registry, allocator: allocator}
}

// AdmitRequest carries everything the front desk submits for a new
// inpatient admission. Fee fields are opaque to the engine.
type AdmitRequest struct {
	PatientID     uuid.UUID  `json:"patient_id" validate:"required"`
	PatientName   string     `json:"patient_name" validate:"required"`
	WardID        uuid.UUID  `json:"ward_id" validate:"required"`
	DoctorID      uuid.UUID  `json:"doctor_id" validate:"required"`
	DoctorName    string     `json:"doctor_name"`
	Diagnosis     string     `json:"diagnosis" validate:"required"`
	Notes         *string    `json:"notes,omitempty"`
	PaymentMethod *string    `json:"payment_method,omitempty"`
	DepositAmount *float64   `json:"deposit_amount,omitempty"`
	AdmittedAt    *time.Time `json:"admitted_at,omitempty"`
}

// Admit allocates a bed in the requested ward and creates the admission
// as one unit. No admission record exists if allocation fails, and no
// bed stays claimed if the record cannot be persisted.
func (l *Ledger) Admit(ctx context.Context, req AdmitRequest) (*Admission, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := validateAdmit(req); err != nil {
		return nil, err
	}

	bed, err := l.registry.FindAvailableBed(ctx, req.WardID)
	if err != nil {
		return nil, err
	}

	admittedAt := time.Now().UTC()
	if req.AdmittedAt != nil {
		admittedAt = *req.AdmittedAt
	}

	a := &Admission{
		ID:            uuid.New(),
		PatientID:     req.PatientID,
		PatientName:   req.PatientName,
		DoctorID:      req.DoctorID,
		DoctorName:    req.DoctorName,
		WardID:        req.WardID,
		BedID:         bed.ID,
		Status:        StatusActive,
		Diagnosis:     req.Diagnosis,
		Notes:         req.Notes,
		PaymentMethod: req.PaymentMethod,
		DepositAmount: req.DepositAmount,
		AdmittedAt:    admittedAt,
	}

	if err := l.allocator.Claim(ctx, bed.ID, a.ID); err != nil {
		return nil, err
	}
	if err := l.repo.Create(ctx, a); err != nil {
		if relErr := l.allocator.Release(ctx, bed.ID); relErr != nil {
			return nil, fmt.Errorf("create admission: %v (release bed %s: %w)", err, bed.Label, relErr)
		}
		return nil, err
	}
	telemetry.AdmissionsTotal.Inc()
	return a, nil
}

// SetClinicalStatus switches between active, critical and stable. It has
// no bed effect and is rejected once the admission is discharged.
func (l *Ledger) SetClinicalStatus(ctx context.Context, id uuid.UUID, status Status) (*Admission, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !ValidClinicalStatus(status) {
		return nil, fmt.Errorf("%w: invalid clinical status %q", ErrInvalid, status)
	}
	a, err := l.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status == StatusDischarged {
		return nil, ErrAdmissionDischarged
	}
	a.Status = status
	if err := l.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (l *Ledger) GetAdmission(ctx context.Context, id uuid.UUID) (*Admission, error) {
	return l.repo.Get(ctx, id)
}

func (l *Ledger) ListAdmissions(ctx context.Context, f Filter, limit, offset int) ([]*Admission, int, error) {
	return l.repo.List(ctx, f, limit, offset)
}

// Relocation is the before/after snapshot of a completed bed move,
// handed to the record callback of Relocate.
type Relocation struct {
	Admission  *Admission
	FromWardID uuid.UUID
	ToWardID   uuid.UUID
	FromBed    *ward.Bed
	ToBed      *ward.Bed
}

// Relocate moves an active admission to a free bed in the destination
// ward. The record callback runs inside the atomic unit; if it fails the
// move is undone and the admission is left exactly as it was.
func (l *Ledger) Relocate(ctx context.Context, id, toWardID uuid.UUID, record func(Relocation) error) (*Admission, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	a, err := l.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status == StatusDischarged {
		return nil, ErrAdmissionDischarged
	}

	fromBed, err := l.registry.GetBed(ctx, a.BedID)
	if err != nil {
		return nil, err
	}
	toBed, err := l.registry.FindAvailableBed(ctx, toWardID)
	if err != nil {
		return nil, err
	}

	if err := l.allocator.Move(ctx, fromBed.ID, toBed.ID, a.ID); err != nil {
		return nil, err
	}

	fromWardID := a.WardID
	a.WardID = toWardID
	a.BedID = toBed.ID
	if err := l.repo.Update(ctx, a); err != nil {
		return nil, l.undoMove(ctx, a, fromWardID, fromBed, toBed, err)
	}

	if record != nil {
		rel := Relocation{
			Admission:  a,
			FromWardID: fromWardID,
			ToWardID:   toWardID,
			FromBed:    fromBed,
			ToBed:      toBed,
		}
		if err := record(rel); err != nil {
			cause := l.undoMove(ctx, a, fromWardID, fromBed, toBed, err)
			if uerr := l.repo.Update(ctx, a); uerr != nil {
				return nil, fmt.Errorf("%v (restore admission: %w)", cause, uerr)
			}
			return nil, cause
		}
	}
	return a, nil
}

// Conclude releases the admission's bed and marks it discharged. The
// record callback runs inside the atomic unit; if it fails the bed is
// re-claimed and the previous status restored.
func (l *Ledger) Conclude(ctx context.Context, id uuid.UUID, record func(a *Admission) error) (*Admission, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	a, err := l.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status == StatusDischarged {
		return nil, ErrAdmissionDischarged
	}

	prev := a.Status
	if err := l.allocator.Release(ctx, a.BedID); err != nil {
		return nil, err
	}

	a.Status = StatusDischarged
	if err := l.repo.Update(ctx, a); err != nil {
		a.Status = prev
		if cerr := l.allocator.Claim(ctx, a.BedID, a.ID); cerr != nil {
			return nil, fmt.Errorf("update admission: %v (re-claim bed: %w)", err, cerr)
		}
		return nil, err
	}

	if record != nil {
		if err := record(a); err != nil {
			// Re-claim the bed before touching the admission row. If the
			// freed bed was taken in the meantime the admission stays
			// discharged rather than becoming active without a bed.
			if cerr := l.allocator.Claim(ctx, a.BedID, a.ID); cerr != nil {
				return nil, fmt.Errorf("record discharge: %v (re-claim bed: %w)", err, cerr)
			}
			a.Status = prev
			if uerr := l.repo.Update(ctx, a); uerr != nil {
				return nil, fmt.Errorf("record discharge: %v (restore admission: %w)", err, uerr)
			}
			return nil, err
		}
	}
	return a, nil
}

func (l *Ledger) undoMove(ctx context.Context, a *Admission, fromWardID uuid.UUID, fromBed, toBed *ward.Bed, cause error) error {
	if err := l.allocator.Move(ctx, toBed.ID, fromBed.ID, a.ID); err != nil {
		return fmt.Errorf("%v (undo bed move: %w)", cause, err)
	}
	a.WardID = fromWardID
	a.BedID = fromBed.ID
	return cause
}

func validateAdmit(req AdmitRequest) error {
	switch {
	case req.PatientID == uuid.Nil:
		return fmt.Errorf("%w: patient_id is required", ErrInvalid)
	case strings.TrimSpace(req.PatientName) == "":
		return fmt.Errorf("%w: patient_name is required", ErrInvalid)
	case req.WardID == uuid.Nil:
		return fmt.Errorf("%w: ward_id is required", ErrInvalid)
	case req.DoctorID == uuid.Nil:
		return fmt.Errorf("%w: doctor_id is required", ErrInvalid)
	case strings.TrimSpace(req.Diagnosis) == "":
		return fmt.Errorf("%w: diagnosis is required", ErrInvalid)
	}
	return nil
}
