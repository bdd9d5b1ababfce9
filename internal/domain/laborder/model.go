package laborder

import (
	"time"

	"github.com/google/uuid"
)

// Lab order statuses. Only completed orders with a positive price become
// charges.
const (
	StatusOrdered   = "ordered"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// LabOrder maps to the lab_orders table.
type LabOrder struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	PatientID      uuid.UUID  `db:"patient_id" json:"patient_id"`
	PractitionerID uuid.UUID  `db:"practitioner_id" json:"practitioner_id"`
	TestName       string     `db:"test_name" json:"test_name"`
	OrderedAt      time.Time  `db:"ordered_at" json:"ordered_at"`
	Status         string     `db:"status" json:"status"`
	PriceCents     int64      `db:"price_cents" json:"price_cents"`
	IsPaid         bool       `db:"is_paid" json:"is_paid"`
	Result         *string    `db:"result" json:"result,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt      *time.Time `db:"deleted_at" json:"-"`
}
