package transfer

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrInvalid = errors.New("invalid transfer request")

// Repository persists the transfer history. There is no update or
// delete; history is append-only.
type Repository interface {
	Create(ctx context.Context, t *Transfer) error
	ListByAdmission(ctx context.Context, admissionID uuid.UUID) ([]*Transfer, error)
}
