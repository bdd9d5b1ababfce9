package appointment

import (
	"time"

	"github.com/google/uuid"
)

// Appointment statuses. Only completed appointments with a positive fee
// become charges on the patient's account.
const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Appointment maps to the appointments table.
type Appointment struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	PatientID      uuid.UUID  `db:"patient_id" json:"patient_id"`
	PractitionerID uuid.UUID  `db:"practitioner_id" json:"practitioner_id"`
	Reason         string     `db:"reason" json:"reason"`
	ScheduledAt    time.Time  `db:"scheduled_at" json:"scheduled_at"`
	Status         string     `db:"status" json:"status"`
	FeeCents       int64      `db:"fee_cents" json:"fee_cents"`
	IsPaid         bool       `db:"is_paid" json:"is_paid"`
	Note           *string    `db:"note" json:"note,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt      *time.Time `db:"deleted_at" json:"-"`
}

// validTransitions gates the status lifecycle. Terminal states have no
// outgoing edges.
var validTransitions = map[string][]string{
	StatusScheduled: {StatusCompleted, StatusCancelled},
}

func canTransition(from, to string) bool {
	for _, t := range validTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}
