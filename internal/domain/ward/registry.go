package ward

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Registry is the read-only view over wards and beds. It never mutates
// state; every write goes through the Allocator. Reads take the shared
// lock's read side for their whole duration, so multi-step mutations
// are observed either fully applied or not at all.
type Registry struct {
	mu   *sync.RWMutex
	repo Repository
}

func NewRegistry(repo Repository) *Registry {
	return &Registry{mu: new(sync.RWMutex), repo: repo}
}

func (r *Registry) ListWards(ctx context.Context) ([]*Summary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wards, err := r.repo.ListWards(ctx)
	if err != nil {
		return nil, err
	}
	summaries := make([]*Summary, 0, len(wards))
	for _, w := range wards {
		occ, err := r.occupancy(ctx, w.ID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, &Summary{Ward: *w, Occupancy: occ})
	}
	return summaries, nil
}

func (r *Registry) GetWard(ctx context.Context, id uuid.UUID) (*Summary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, err := r.repo.GetWard(ctx, id)
	if err != nil {
		return nil, err
	}
	occ, err := r.occupancy(ctx, w.ID)
	if err != nil {
		return nil, err
	}
	return &Summary{Ward: *w, Occupancy: occ}, nil
}

func (r *Registry) GetBed(ctx context.Context, id uuid.UUID) (*Bed, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.repo.GetBed(ctx, id)
}

// ListBeds returns the ward's beds ordered by bed number.
func (r *Registry) ListBeds(ctx context.Context, wardID uuid.UUID) ([]*Bed, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, err := r.repo.GetWard(ctx, wardID); err != nil {
		return nil, err
	}
	return r.repo.ListBeds(ctx, wardID)
}

// FindAvailableBed returns the free bed with the lowest number in the
// ward. Returns ErrWardNotFound for an unknown ward and ErrNoBedsAvailable
// when the ward is full.
func (r *Registry) FindAvailableBed(ctx context.Context, wardID uuid.UUID) (*Bed, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, err := r.repo.GetWard(ctx, wardID); err != nil {
		return nil, err
	}
	return r.repo.FirstAvailableBed(ctx, wardID)
}

func (r *Registry) occupancy(ctx context.Context, wardID uuid.UUID) (Occupancy, error) {
	counts, err := r.repo.CountBedsByStatus(ctx, wardID)
	if err != nil {
		return Occupancy{}, err
	}
	occ := Occupancy{
		Occupied:    counts[BedOccupied],
		Available:   counts[BedAvailable],
		Reserved:    counts[BedReserved],
		Maintenance: counts[BedMaintenance],
	}
	occ.TotalBeds = occ.Occupied + occ.Available + occ.Reserved + occ.Maintenance
	return occ, nil
}
