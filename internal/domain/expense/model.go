package expense

import (
	"time"

	"github.com/google/uuid"
)

// Expense maps to the expenses table: a direct charge on the patient's
// account (supplies, procedures billed outside appointments). There is no
// lifecycle; any expense with a positive amount is a charge.
type Expense struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	PatientID   uuid.UUID  `db:"patient_id" json:"patient_id"`
	Description string     `db:"description" json:"description"`
	IncurredAt  time.Time  `db:"incurred_at" json:"incurred_at"`
	AmountCents int64      `db:"amount_cents" json:"amount_cents"`
	IsPaid      bool       `db:"is_paid" json:"is_paid"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt   *time.Time `db:"deleted_at" json:"-"`
}
