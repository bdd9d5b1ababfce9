package ledger

import "errors"

// All ledger errors are recoverable by the caller; handlers map them to 4xx
// responses and none of them terminates the process.
var (
	// ErrInvalidAmount rejects a non-positive payment amount.
	ErrInvalidAmount = errors.New("payment amount must be positive")

	// ErrExceedsBalance rejects a payment that would push the paid total
	// above the patient's total debt.
	ErrExceedsBalance = errors.New("payment amount exceeds outstanding balance")

	// ErrNotFound reports a patient or payment that does not exist in the
	// current tenant.
	ErrNotFound = errors.New("not found")

	// ErrConflict reports a lost race on the per-patient write boundary,
	// e.g. a transaction serialization failure. Safe to retry.
	ErrConflict = errors.New("concurrent modification")
)
