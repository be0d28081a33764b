package ward

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Allocator is the single mutation chokepoint for ward and bed state.
// Bed claims, releases, moves and administrative changes all serialize
// through the lock it shares with the Registry, so the occupancy
// invariant (bed status, occupant reference and derived ward counts
// agree) can never be observed broken, not even by a concurrent reader.
type Allocator struct {
	mu   *sync.RWMutex
	repo Repository
}

// NewAllocator builds the write side over the same store and lock as
// the given registry.
func NewAllocator(reg *Registry) *Allocator {
	return &Allocator{mu: reg.mu, repo: reg.repo}
}

// Claim marks an available bed as occupied by the given admission.
func (a *Allocator) Claim(ctx context.Context, bedID, admissionID uuid.UUID) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.claim(ctx, bedID, admissionID)
}

// Release frees an occupied bed.
func (a *Allocator) Release(ctx context.Context, bedID uuid.UUID) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.release(ctx, bedID)
}

// Move reassigns an admission from one bed to another as a single unit.
// The store applies the destination claim and the source release
// atomically; on failure nothing has changed and the admission never
// loses its bed.
func (a *Allocator) Move(ctx context.Context, fromBedID, toBedID, admissionID uuid.UUID) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if fromBedID == toBedID {
		return fmt.Errorf("%w: source and destination bed are the same", ErrInvalid)
	}
	return a.repo.MoveBed(ctx, fromBedID, toBedID, admissionID)
}

// SetBedStatus switches a bed between available, reserved and
// maintenance. Occupied is not reachable this way; only Claim and
// Release touch occupancy.
func (a *Allocator) SetBedStatus(ctx context.Context, bedID uuid.UUID, status BedStatus) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch status {
	case BedAvailable, BedReserved, BedMaintenance:
	default:
		return fmt.Errorf("%w: cannot set bed status to %q", ErrInvalid, status)
	}

	bed, err := a.repo.GetBed(ctx, bedID)
	if err != nil {
		return err
	}
	if bed.Status == BedOccupied {
		return fmt.Errorf("%w: release bed %s before changing its status", ErrBedOccupied, bed.Label)
	}
	if bed.Status == status {
		return nil
	}
	bed.Status = status
	return a.repo.UpdateBed(ctx, bed)
}

// CreateWard creates a ward with bedCount numbered beds, all available.
func (a *Allocator) CreateWard(ctx context.Context, name, code string, bedCount int) (*Ward, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	name = strings.TrimSpace(name)
	code = strings.ToUpper(strings.TrimSpace(code))
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if code == "" {
		return nil, fmt.Errorf("%w: code is required", ErrInvalid)
	}
	if bedCount < 0 {
		return nil, fmt.Errorf("%w: bed count cannot be negative", ErrInvalid)
	}

	w := &Ward{ID: uuid.New(), Name: name, Code: code}
	if err := a.repo.CreateWard(ctx, w); err != nil {
		return nil, err
	}
	for n := 1; n <= bedCount; n++ {
		if err := a.addBed(ctx, w, n); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// Resize grows or shrinks a ward to newTotal beds. Growth appends new
// available beds after the highest existing number. Shrinking removes
// available beds only, highest number first; it fails with ErrBedsInUse
// if occupied, reserved or maintenance beds would have to go.
func (a *Allocator) Resize(ctx context.Context, wardID uuid.UUID, newTotal int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if newTotal < 0 {
		return fmt.Errorf("%w: bed count cannot be negative", ErrInvalid)
	}
	w, err := a.repo.GetWard(ctx, wardID)
	if err != nil {
		return err
	}
	beds, err := a.repo.ListBeds(ctx, wardID)
	if err != nil {
		return err
	}

	if newTotal >= len(beds) {
		next := 0
		for _, b := range beds {
			if b.Number > next {
				next = b.Number
			}
		}
		for i := len(beds); i < newTotal; i++ {
			next++
			if err := a.addBed(ctx, w, next); err != nil {
				return err
			}
		}
		return nil
	}

	var free []*Bed
	for _, b := range beds {
		if b.Status == BedAvailable {
			free = append(free, b)
		}
	}
	excess := len(beds) - newTotal
	if excess > len(free) {
		return fmt.Errorf("%w: ward %s has only %d removable beds, need %d",
			ErrBedsInUse, w.Code, len(free), excess)
	}
	// ListBeds is ordered ascending, so drop from the tail.
	for i := 0; i < excess; i++ {
		b := free[len(free)-1-i]
		if err := a.repo.DeleteBed(ctx, b.ID); err != nil {
			return err
		}
	}
	return nil
}

func (a *Allocator) addBed(ctx context.Context, w *Ward, number int) error {
	return a.repo.CreateBed(ctx, &Bed{
		ID:     uuid.New(),
		WardID: w.ID,
		Number: number,
		Label:  fmt.Sprintf("%s-%d", w.Code, number),
		Status: BedAvailable,
	})
}

func (a *Allocator) claim(ctx context.Context, bedID, admissionID uuid.UUID) error {
	bed, err := a.repo.GetBed(ctx, bedID)
	if err != nil {
		return err
	}
	if bed.Status != BedAvailable {
		return fmt.Errorf("%w: bed %s is %s", ErrBedNotAvailable, bed.Label, bed.Status)
	}
	bed.Status = BedOccupied
	bed.OccupantAdmissionID = &admissionID
	return a.repo.UpdateBed(ctx, bed)
}

func (a *Allocator) release(ctx context.Context, bedID uuid.UUID) error {
	bed, err := a.repo.GetBed(ctx, bedID)
	if err != nil {
		return err
	}
	if bed.Status != BedOccupied {
		return fmt.Errorf("%w: bed %s is %s", ErrBedNotOccupied, bed.Label, bed.Status)
	}
	bed.Status = BedAvailable
	bed.OccupantAdmissionID = nil
	return a.repo.UpdateBed(ctx, bed)
}
