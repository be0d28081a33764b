package discharge

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type repoMem struct {
	mu         sync.RWMutex
	discharges map[uuid.UUID]*Discharge
	byAdm      map[uuid.UUID]uuid.UUID
}

func NewMemRepo() Repository {
	return &repoMem{
		discharges: make(map[uuid.UUID]*Discharge),
		byAdm:      make(map[uuid.UUID]uuid.UUID),
	}
}

func (r *repoMem) Create(_ context.Context, d *Discharge) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byAdm[d.AdmissionID]; exists {
		return ErrAlreadyDischarged
	}
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	d.CreatedAt = time.Now().UTC()
	cp := copyDischarge(d)
	r.discharges[d.ID] = cp
	r.byAdm[d.AdmissionID] = d.ID
	return nil
}

func (r *repoMem) GetByAdmission(_ context.Context, admissionID uuid.UUID) (*Discharge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byAdm[admissionID]
	if !ok {
		return nil, ErrDischargeNotFound
	}
	return copyDischarge(r.discharges[id]), nil
}

func (r *repoMem) List(_ context.Context, limit, offset int) ([]*Discharge, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*Discharge, 0, len(r.discharges))
	for _, d := range r.discharges {
		all = append(all, copyDischarge(d))
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].DischargedAt.After(all[j].DischargedAt)
	})

	total := len(all)
	if offset >= total {
		return []*Discharge{}, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func copyDischarge(d *Discharge) *Discharge {
	cp := *d
	if d.Medications != nil {
		cp.Medications = append([]string(nil), d.Medications...)
	}
	return &cp
}
