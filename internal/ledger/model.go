package ledger

import (
	"time"

	"github.com/google/uuid"
)

// ItemKind identifies which clinical record a billable item was derived from.
type ItemKind string

const (
	ItemKindAppointment ItemKind = "appointment"
	ItemKindLabOrder    ItemKind = "lab_order"
	ItemKindExpense     ItemKind = "expense"
)

// BillableItem is a dated charge attributed to a patient. It is a read-only
// projection over the appointment, lab order, and expense tables; only the
// IsPaid flag is ever written back, and only by the recompute path.
type BillableItem struct {
	ID          uuid.UUID `db:"id" json:"id"`
	PatientID   uuid.UUID `db:"patient_id" json:"patient_id"`
	Kind        ItemKind  `db:"kind" json:"kind"`
	Description *string   `db:"description" json:"description,omitempty"`
	Date        time.Time `db:"service_date" json:"date"`
	Amount      Amount    `db:"amount_cents" json:"amount_cents"`
	IsPaid      bool      `db:"is_paid" json:"is_paid"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Payment is money received against a patient's account. Payments are
// immutable once recorded; a correction is a delete plus a new payment.
type Payment struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	Date      time.Time `db:"paid_at" json:"date"`
	Amount    Amount    `db:"amount_cents" json:"amount_cents"`
	Note      *string   `db:"note" json:"note,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Balance is the derived account position for one patient. It is recomputed
// from the current item and payment sets on every read and never stored.
type Balance struct {
	TotalDebt   Amount `json:"total_debt_cents"`
	TotalPaid   Amount `json:"total_paid_cents"`
	Outstanding Amount `json:"outstanding_cents"`
}

// PaidFlag is a pending is_paid write for one billable item.
type PaidFlag struct {
	ID     uuid.UUID
	Kind   ItemKind
	IsPaid bool
}

// Statement bundles everything a patient account statement needs: the charge
// list with freshly derived paid flags, the payment list, and the balance.
type Statement struct {
	PatientID uuid.UUID      `json:"patient_id"`
	Items     []BillableItem `json:"items"`
	Payments  []Payment      `json:"payments"`
	Balance   Balance        `json:"balance"`
}
