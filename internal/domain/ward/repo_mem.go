package ward

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// repoMem is the in-process store used when the service runs without
// postgres (STORE_DRIVER=memory) and by the test suites.
type repoMem struct {
	mu    sync.RWMutex
	wards map[uuid.UUID]*Ward
	beds  map[uuid.UUID]*Bed
}

func NewMemRepo() Repository {
	return &repoMem{
		wards: make(map[uuid.UUID]*Ward),
		beds:  make(map[uuid.UUID]*Bed),
	}
}

func (r *repoMem) CreateWard(_ context.Context, w *Ward) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	now := time.Now().UTC()
	w.CreatedAt = now
	w.UpdatedAt = now
	cp := *w
	r.wards[w.ID] = &cp
	return nil
}

func (r *repoMem) GetWard(_ context.Context, id uuid.UUID) (*Ward, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.wards[id]
	if !ok {
		return nil, ErrWardNotFound
	}
	cp := *w
	return &cp, nil
}

func (r *repoMem) ListWards(_ context.Context) ([]*Ward, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	wards := make([]*Ward, 0, len(r.wards))
	for _, w := range r.wards {
		cp := *w
		wards = append(wards, &cp)
	}
	sort.Slice(wards, func(i, j int) bool { return wards[i].Name < wards[j].Name })
	return wards, nil
}

func (r *repoMem) CreateBed(_ context.Context, b *Bed) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now
	cp := *b
	r.beds[b.ID] = &cp
	return nil
}

func (r *repoMem) GetBed(_ context.Context, id uuid.UUID) (*Bed, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.beds[id]
	if !ok {
		return nil, ErrBedNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *repoMem) ListBeds(_ context.Context, wardID uuid.UUID) ([]*Bed, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var beds []*Bed
	for _, b := range r.beds {
		if b.WardID == wardID {
			cp := *b
			beds = append(beds, &cp)
		}
	}
	sort.Slice(beds, func(i, j int) bool { return beds[i].Number < beds[j].Number })
	return beds, nil
}

func (r *repoMem) UpdateBed(_ context.Context, b *Bed) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.beds[b.ID]; !ok {
		return ErrBedNotFound
	}
	b.UpdatedAt = time.Now().UTC()
	cp := *b
	r.beds[b.ID] = &cp
	return nil
}

func (r *repoMem) MoveBed(_ context.Context, fromBedID, toBedID, admissionID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	from, ok := r.beds[fromBedID]
	if !ok {
		return ErrBedNotFound
	}
	to, ok := r.beds[toBedID]
	if !ok {
		return ErrBedNotFound
	}
	if from.Status != BedOccupied || from.OccupantAdmissionID == nil {
		return fmt.Errorf("%w: bed %s is %s", ErrBedNotOccupied, from.Label, from.Status)
	}
	if *from.OccupantAdmissionID != admissionID {
		return fmt.Errorf("%w: bed %s is held by another admission", ErrBedNotOccupied, from.Label)
	}
	if to.Status != BedAvailable {
		return fmt.Errorf("%w: bed %s is %s", ErrBedNotAvailable, to.Label, to.Status)
	}

	now := time.Now().UTC()
	occupant := admissionID
	to.Status = BedOccupied
	to.OccupantAdmissionID = &occupant
	to.UpdatedAt = now
	from.Status = BedAvailable
	from.OccupantAdmissionID = nil
	from.UpdatedAt = now
	return nil
}

func (r *repoMem) DeleteBed(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.beds[id]; !ok {
		return ErrBedNotFound
	}
	delete(r.beds, id)
	return nil
}

func (r *repoMem) FirstAvailableBed(_ context.Context, wardID uuid.UUID) (*Bed, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var best *Bed
	for _, b := range r.beds {
		if b.WardID != wardID || b.Status != BedAvailable {
			continue
		}
		if best == nil || b.Number < best.Number {
			best = b
		}
	}
	if best == nil {
		return nil, ErrNoBedsAvailable
	}
	cp := *best
	return &cp, nil
}

func (r *repoMem) CountBedsByStatus(_ context.Context, wardID uuid.UUID) (map[BedStatus]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[BedStatus]int)
	for _, b := range r.beds {
		if b.WardID == wardID {
			counts[b.Status]++
		}
	}
	return counts, nil
}
