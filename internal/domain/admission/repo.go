package admission

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrAdmissionNotFound   = errors.New("admission not found")
	ErrAdmissionDischarged = errors.New("admission already discharged")
	ErrInvalid             = errors.New("invalid request")
)

// Filter narrows List results. Zero-value fields are ignored.
type Filter struct {
	PatientID  uuid.UUID
	WardID     uuid.UUID
	ActiveOnly bool
}

type Repository interface {
	Create(ctx context.Context, a *Admission) error
	Get(ctx context.Context, id uuid.UUID) (*Admission, error)
	Update(ctx context.Context, a *Admission) error
	List(ctx context.Context, f Filter, limit, offset int) ([]*Admission, int, error)
}
