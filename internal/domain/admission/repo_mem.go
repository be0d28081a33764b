package admission

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type repoMem struct {
	mu         sync.RWMutex
	admissions map[uuid.UUID]*Admission
}

func NewMemRepo() Repository {
	return &repoMem{admissions: make(map[uuid.UUID]*Admission)}
}

func (r *repoMem) Create(_ context.Context, a *Admission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	cp := *a
	r.admissions[a.ID] = &cp
	return nil
}

func (r *repoMem) Get(_ context.Context, id uuid.UUID) (*Admission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.admissions[id]
	if !ok {
		return nil, ErrAdmissionNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *repoMem) Update(_ context.Context, a *Admission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.admissions[a.ID]; !ok {
		return ErrAdmissionNotFound
	}
	a.UpdatedAt = time.Now().UTC()
	cp := *a
	r.admissions[a.ID] = &cp
	return nil
}

func (r *repoMem) List(_ context.Context, f Filter, limit, offset int) ([]*Admission, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*Admission
	for _, a := range r.admissions {
		if f.PatientID != uuid.Nil && a.PatientID != f.PatientID {
			continue
		}
		if f.WardID != uuid.Nil && a.WardID != f.WardID {
			continue
		}
		if f.ActiveOnly && a.Status == StatusDischarged {
			continue
		}
		cp := *a
		matched = append(matched, &cp)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].AdmittedAt.After(matched[j].AdmittedAt)
	})

	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return matched[offset:end], total, nil
}
