package ledger

import (
	"context"

	"github.com/google/uuid"
)

// Store is the ledger's view of persistence. Implementations are tenant
// scoped: the connection carried in ctx already points at the tenant schema.
type Store interface {
	// ListBillableItems returns the patient's billable charges: completed
	// appointments and lab orders with a positive fee, and positive
	// expenses, excluding soft-deleted source records.
	ListBillableItems(ctx context.Context, patientID uuid.UUID) ([]BillableItem, error)

	// ListPayments returns all payments recorded for the patient.
	ListPayments(ctx context.Context, patientID uuid.UUID) ([]Payment, error)

	// InsertPayment persists a new payment.
	InsertPayment(ctx context.Context, p *Payment) error

	// DeletePayment removes a payment; ErrNotFound if no row matched.
	DeletePayment(ctx context.Context, patientID, paymentID uuid.UUID) error

	// SaveItemPaidFlags writes is_paid flags back to the source tables.
	SaveItemPaidFlags(ctx context.Context, flags []PaidFlag) error

	// PatientExists reports whether the patient exists and is not deleted.
	PatientExists(ctx context.Context, patientID uuid.UUID) (bool, error)

	// WithinTx runs fn inside a transaction; the payment write and the flag
	// writes of one recompute either all land or none do.
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
