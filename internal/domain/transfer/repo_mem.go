package transfer

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type repoMem struct {
	mu        sync.RWMutex
	transfers map[uuid.UUID]*Transfer
}

func NewMemRepo() Repository {
	return &repoMem{transfers: make(map[uuid.UUID]*Transfer)}
}

func (r *repoMem) Create(_ context.Context, t *Transfer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.CreatedAt = time.Now().UTC()
	cp := *t
	r.transfers[t.ID] = &cp
	return nil
}

func (r *repoMem) ListByAdmission(_ context.Context, admissionID uuid.UUID) ([]*Transfer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Transfer
	for _, t := range r.transfers {
		if t.AdmissionID == admissionID {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TransferredAt.Equal(out[j].TransferredAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].TransferredAt.Before(out[j].TransferredAt)
	})
	return out, nil
}
