package expense

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, e *Expense) error
	GetByID(ctx context.Context, id uuid.UUID) (*Expense, error)
	Update(ctx context.Context, e *Expense) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Expense, int, error)
}

// Recomputer re-derives a patient's paid flags after a billable record
// changed. Implemented by the ledger service.
type Recomputer interface {
	RecomputePatient(ctx context.Context, patientID uuid.UUID) error
}
