package ward

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists wards and beds. Lookup misses are reported as
// ErrWardNotFound / ErrBedNotFound; FirstAvailableBed reports
// ErrNoBedsAvailable when every bed in the ward is taken.
type Repository interface {
	CreateWard(ctx context.Context, w *Ward) error
	GetWard(ctx context.Context, id uuid.UUID) (*Ward, error)
	ListWards(ctx context.Context) ([]*Ward, error)

	CreateBed(ctx context.Context, b *Bed) error
	GetBed(ctx context.Context, id uuid.UUID) (*Bed, error)
	ListBeds(ctx context.Context, wardID uuid.UUID) ([]*Bed, error)
	UpdateBed(ctx context.Context, b *Bed) error
	DeleteBed(ctx context.Context, id uuid.UUID) error

	// MoveBed atomically claims the destination bed for the admission
	// and releases the source bed. No reader can observe the admission
	// in both beds or in neither. Fails with ErrBedNotOccupied when the
	// source is not held by the admission and ErrBedNotAvailable when
	// the destination is taken; either way nothing has changed.
	MoveBed(ctx context.Context, fromBedID, toBedID, admissionID uuid.UUID) error

	// FirstAvailableBed returns the available bed with the lowest number
	// in the ward, for deterministic allocation.
	FirstAvailableBed(ctx context.Context, wardID uuid.UUID) (*Bed, error)
	CountBedsByStatus(ctx context.Context, wardID uuid.UUID) (map[BedStatus]int, error)
}
