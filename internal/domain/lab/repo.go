package lab

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists lab orders. Implementations must make each call atomic
// from the caller's perspective and surface ErrConcurrentModification when
// an optimistic version check fails, so callers can reload and retry.
type Repository interface {
	Create(ctx context.Context, order *LabOrder) error
	GetByID(ctx context.Context, id uuid.UUID) (*LabOrder, error)
	GetByOrderNumber(ctx context.Context, orderNumber string) (*LabOrder, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*LabOrder, int, error)
	ListByStatus(ctx context.Context, status Status, limit, offset int) ([]*LabOrder, int, error)
	// UpdateOrder persists header fields (status, payment, completion stamps)
	// with an optimistic version check.
	UpdateOrder(ctx context.Context, order *LabOrder) error
	// SaveResult persists one recorded result together with the order's
	// status in a single atomic write (last write wins per parameter key).
	SaveResult(ctx context.Context, order *LabOrder, detailID uuid.UUID, result *RecordedResult) error
	// NextOrderNumber issues a globally unique human-readable order number.
	NextOrderNumber(ctx context.Context) (string, error)
}
