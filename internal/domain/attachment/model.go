package attachment

import (
	"time"

	"github.com/google/uuid"
)

// Attachment is metadata for a file associated with a patient (scans,
// referral letters). Content lives in external storage under StorageKey;
// this service never touches the bytes.
type Attachment struct {
	ID          uuid.UUID `db:"id" json:"id"`
	PatientID   uuid.UUID `db:"patient_id" json:"patient_id"`
	FileName    string    `db:"file_name" json:"file_name"`
	ContentType string    `db:"content_type" json:"content_type"`
	SizeBytes   int64     `db:"size_bytes" json:"size_bytes"`
	StorageKey  string    `db:"storage_key" json:"storage_key"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
