package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service owns the recompute path. Every payment mutation (and, defensively,
// every billable-record mutation) triggers a full re-derivation of paid
// flags from the current charge and payment sets; nothing is patched
// incrementally.
type Service struct {
	store  Store
	logger zerolog.Logger
	locks  patientLocks
}

func NewService(store Store, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger.With().Str("component", "ledger").Logger(),
		locks:  patientLocks{m: make(map[uuid.UUID]*sync.Mutex)},
	}
}

// patientLocks serializes payment mutations per patient. Two concurrent
// AddPayment calls for one patient must not both validate against a stale
// outstanding balance; mutations on different patients stay independent.
type patientLocks struct {
	mu sync.Mutex
	m  map[uuid.UUID]*sync.Mutex
}

func (l *patientLocks) lock(patientID uuid.UUID) func() {
	l.mu.Lock()
	pm, ok := l.m[patientID]
	if !ok {
		pm = &sync.Mutex{}
		l.m[patientID] = pm
	}
	l.mu.Unlock()

	pm.Lock()
	return pm.Unlock
}

// AddPayment records a payment against the patient's account. The amount
// must be positive and must not exceed the current outstanding balance; on
// success the payment insert and the resulting paid-flag updates commit in
// one transaction.
func (s *Service) AddPayment(ctx context.Context, patientID uuid.UUID, amount Amount, date time.Time, note *string) (*Payment, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if date.IsZero() {
		date = time.Now().UTC()
	}

	unlock := s.locks.lock(patientID)
	defer unlock()

	var payment *Payment
	err := s.store.WithinTx(ctx, func(ctx context.Context) error {
		exists, err := s.store.PatientExists(ctx, patientID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}

		items, err := s.store.ListBillableItems(ctx, patientID)
		if err != nil {
			return err
		}
		payments, err := s.store.ListPayments(ctx, patientID)
		if err != nil {
			return err
		}

		current := Allocate(items, payments)
		if amount > current.RawOutstanding {
			s.logger.Info().
				Str("patient_id", patientID.String()).
				Str("amount", amount.String()).
				Str("outstanding", current.Outstanding.String()).
				Msg("payment rejected: exceeds outstanding balance")
			return ErrExceedsBalance
		}

		p := &Payment{
			ID:        uuid.New(),
			PatientID: patientID,
			Date:      date,
			Amount:    amount,
			Note:      note,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.store.InsertPayment(ctx, p); err != nil {
			return err
		}

		next := Allocate(items, append(payments, *p))
		if flags := ChangedFlags(items, next); len(flags) > 0 {
			if err := s.store.SaveItemPaidFlags(ctx, flags); err != nil {
				return err
			}
		}

		payment = p
		s.logger.Debug().
			Str("patient_id", patientID.String()).
			Str("payment_id", p.ID.String()).
			Str("amount", amount.String()).
			Str("outstanding", next.Outstanding.String()).
			Msg("payment recorded")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// RemovePayment deletes a payment and unconditionally re-derives all paid
// flags from what remains. The previous allocation is never trusted: the
// FIFO threshold can shift several items at once.
func (s *Service) RemovePayment(ctx context.Context, patientID, paymentID uuid.UUID) error {
	unlock := s.locks.lock(patientID)
	defer unlock()

	return s.store.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.store.DeletePayment(ctx, patientID, paymentID); err != nil {
			return err
		}
		alloc, flags, err := s.recompute(ctx, patientID)
		if err != nil {
			return err
		}
		s.logger.Debug().
			Str("patient_id", patientID.String()).
			Str("payment_id", paymentID.String()).
			Int("flags_changed", len(flags)).
			Str("outstanding", alloc.Outstanding.String()).
			Msg("payment removed")
		return nil
	})
}

// RecomputePatient re-derives paid flags after a billable record changed
// (amount edit, completion, soft delete). The charge set itself is ground
// truth; this only brings the flags back in line with it.
func (s *Service) RecomputePatient(ctx context.Context, patientID uuid.UUID) error {
	unlock := s.locks.lock(patientID)
	defer unlock()

	return s.store.WithinTx(ctx, func(ctx context.Context) error {
		_, _, err := s.recompute(ctx, patientID)
		return err
	})
}

// recompute loads both sets, allocates, and persists the flags that changed.
// Must run inside a transaction.
func (s *Service) recompute(ctx context.Context, patientID uuid.UUID) (Allocation, []PaidFlag, error) {
	items, err := s.store.ListBillableItems(ctx, patientID)
	if err != nil {
		return Allocation{}, nil, err
	}
	payments, err := s.store.ListPayments(ctx, patientID)
	if err != nil {
		return Allocation{}, nil, err
	}

	alloc := Allocate(items, payments)
	flags := ChangedFlags(items, alloc)
	if len(flags) > 0 {
		if err := s.store.SaveItemPaidFlags(ctx, flags); err != nil {
			return Allocation{}, nil, err
		}
	}
	return alloc, flags, nil
}

// GetBalance returns the derived balance for a patient. Read-only: it always
// runs the engine over fresh snapshots and never consults a cached value.
func (s *Service) GetBalance(ctx context.Context, patientID uuid.UUID) (Balance, error) {
	exists, err := s.store.PatientExists(ctx, patientID)
	if err != nil {
		return Balance{}, err
	}
	if !exists {
		return Balance{}, ErrNotFound
	}

	items, err := s.store.ListBillableItems(ctx, patientID)
	if err != nil {
		return Balance{}, err
	}
	payments, err := s.store.ListPayments(ctx, patientID)
	if err != nil {
		return Balance{}, err
	}
	return Allocate(items, payments).Balance(), nil
}

// ListPayments returns the patient's payments in ledger order.
func (s *Service) ListPayments(ctx context.Context, patientID uuid.UUID) ([]Payment, error) {
	exists, err := s.store.PatientExists(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}
	payments, err := s.store.ListPayments(ctx, patientID)
	if err != nil {
		return nil, err
	}
	SortPayments(payments)
	return payments, nil
}

// GetStatement returns the statement read model: charges in allocation order
// with freshly derived paid flags, payments, and the balance. The paid flags
// in the response come from the engine, not from storage, so the statement
// can never disagree with the balance it reports.
func (s *Service) GetStatement(ctx context.Context, patientID uuid.UUID) (*Statement, error) {
	exists, err := s.store.PatientExists(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}

	items, err := s.store.ListBillableItems(ctx, patientID)
	if err != nil {
		return nil, err
	}
	payments, err := s.store.ListPayments(ctx, patientID)
	if err != nil {
		return nil, err
	}

	alloc := Allocate(items, payments)
	SortItems(items)
	SortPayments(payments)
	for i := range items {
		items[i].IsPaid = alloc.PaidIDs[items[i].ID]
	}

	return &Statement{
		PatientID: patientID,
		Items:     items,
		Payments:  payments,
		Balance:   alloc.Balance(),
	}, nil
}
