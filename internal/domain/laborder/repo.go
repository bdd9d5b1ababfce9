package laborder

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, o *LabOrder) error
	GetByID(ctx context.Context, id uuid.UUID) (*LabOrder, error)
	Update(ctx context.Context, o *LabOrder) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*LabOrder, int, error)
}

// Recomputer re-derives a patient's paid flags after a billable record
// changed. Implemented by the ledger service.
type Recomputer interface {
	RecomputePatient(ctx context.Context, patientID uuid.UUID) error
}
