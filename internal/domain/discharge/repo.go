package discharge

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrDischargeNotFound = errors.New("discharge not found")
	ErrAlreadyDischarged = errors.New("admission already has a discharge record")
	ErrInvalid           = errors.New("invalid discharge request")
)

// Repository persists discharge records. At most one record exists per
// admission; Create must refuse a second one.
type Repository interface {
	Create(ctx context.Context, d *Discharge) error
	GetByAdmission(ctx context.Context, admissionID uuid.UUID) (*Discharge, error)
	List(ctx context.Context, limit, offset int) ([]*Discharge, int, error)
}
