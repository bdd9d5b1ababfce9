package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// -- Mock Store --

type mockStore struct {
	mu       sync.Mutex
	patients map[uuid.UUID]bool
	items    []BillableItem
	payments map[uuid.UUID]Payment

	failSaveFlags error
}

func newMockStore() *mockStore {
	return &mockStore{
		patients: make(map[uuid.UUID]bool),
		payments: make(map[uuid.UUID]Payment),
	}
}

func (m *mockStore) ListBillableItems(_ context.Context, patientID uuid.UUID) ([]BillableItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []BillableItem
	for _, it := range m.items {
		if it.PatientID == patientID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (m *mockStore) ListPayments(_ context.Context, patientID uuid.UUID) ([]Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Payment
	for _, p := range m.payments {
		if p.PatientID == patientID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockStore) InsertPayment(_ context.Context, p *Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[p.ID] = *p
	return nil
}

func (m *mockStore) DeletePayment(_ context.Context, patientID, paymentID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[paymentID]
	if !ok || p.PatientID != patientID {
		return ErrNotFound
	}
	delete(m.payments, paymentID)
	return nil
}

func (m *mockStore) SaveItemPaidFlags(_ context.Context, flags []PaidFlag) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSaveFlags != nil {
		return m.failSaveFlags
	}
	for _, f := range flags {
		for i := range m.items {
			if m.items[i].ID == f.ID {
				m.items[i].IsPaid = f.IsPaid
			}
		}
	}
	return nil
}

func (m *mockStore) PatientExists(_ context.Context, patientID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.patients[patientID], nil
}

// WithinTx snapshots the store and restores it if fn fails, mimicking a
// rollback.
func (m *mockStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	itemsBefore := make([]BillableItem, len(m.items))
	copy(itemsBefore, m.items)
	paymentsBefore := make(map[uuid.UUID]Payment, len(m.payments))
	for k, v := range m.payments {
		paymentsBefore[k] = v
	}
	m.mu.Unlock()

	if err := fn(ctx); err != nil {
		m.mu.Lock()
		m.items = itemsBefore
		m.payments = paymentsBefore
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *mockStore) addPatient() uuid.UUID {
	id := uuid.New()
	m.patients[id] = true
	return id
}

func (m *mockStore) addItem(patientID uuid.UUID, date string, cents int64) uuid.UUID {
	it := item(date, cents)
	it.PatientID = patientID
	m.items = append(m.items, it)
	return it.ID
}

func (m *mockStore) itemPaid(t *testing.T, id uuid.UUID) bool {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range m.items {
		if it.ID == id {
			return it.IsPaid
		}
	}
	t.Fatalf("item %s not in store", id)
	return false
}

func newTestService(store *mockStore) *Service {
	return NewService(store, zerolog.Nop())
}

// -- Tests --

func TestAddPayment_InvalidAmount(t *testing.T) {
	store := newMockStore()
	patientID := store.addPatient()
	svc := newTestService(store)

	for _, cents := range []int64{0, -1, -5000} {
		_, err := svc.AddPayment(context.Background(), patientID, Amount(cents), time.Time{}, nil)
		if !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("amount %d: expected ErrInvalidAmount, got %v", cents, err)
		}
	}
	if len(store.payments) != 0 {
		t.Errorf("rejected payments must not be persisted")
	}
}

func TestAddPayment_UnknownPatient(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store)

	_, err := svc.AddPayment(context.Background(), uuid.New(), 100, time.Time{}, nil)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAddPayment_ExceedsBalance(t *testing.T) {
	store := newMockStore()
	patientID := store.addPatient()
	store.addItem(patientID, "2024-01-01", 10000)
	svc := newTestService(store)

	_, err := svc.AddPayment(context.Background(), patientID, 10001, time.Time{}, nil)
	if !errors.Is(err, ErrExceedsBalance) {
		t.Errorf("expected ErrExceedsBalance, got %v", err)
	}
	if len(store.payments) != 0 {
		t.Errorf("rejected payment must not be persisted")
	}

	// Exactly the outstanding amount is accepted.
	if _, err := svc.AddPayment(context.Background(), patientID, 10000, time.Time{}, nil); err != nil {
		t.Fatalf("payment equal to outstanding rejected: %v", err)
	}

	// Account settled: any further payment exceeds the balance.
	_, err = svc.AddPayment(context.Background(), patientID, 1, time.Time{}, nil)
	if !errors.Is(err, ErrExceedsBalance) {
		t.Errorf("expected ErrExceedsBalance on settled account, got %v", err)
	}
}

func TestAddPayment_PersistsChangedFlags(t *testing.T) {
	store := newMockStore()
	patientID := store.addPatient()
	first := store.addItem(patientID, "2024-01-01", 10000)
	second := store.addItem(patientID, "2024-02-01", 10000)
	third := store.addItem(patientID, "2024-03-01", 10000)
	svc := newTestService(store)
	ctx := context.Background()

	if _, err := svc.AddPayment(ctx, patientID, 5000, time.Time{}, nil); err != nil {
		t.Fatalf("add payment: %v", err)
	}
	if store.itemPaid(t, first) {
		t.Errorf("first item paid after $50 against a $100 charge")
	}

	if _, err := svc.AddPayment(ctx, patientID, 6000, time.Time{}, nil); err != nil {
		t.Fatalf("add payment: %v", err)
	}
	if !store.itemPaid(t, first) || store.itemPaid(t, second) || store.itemPaid(t, third) {
		t.Errorf("after $110 total, only the first item should be paid")
	}

	balance, err := svc.GetBalance(ctx, patientID)
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	if balance.TotalDebt != 30000 || balance.TotalPaid != 11000 || balance.Outstanding != 19000 {
		t.Errorf("balance = %+v, want debt 30000 paid 11000 outstanding 19000", balance)
	}
}

func TestAddPayment_RollsBackOnFlagWriteFailure(t *testing.T) {
	store := newMockStore()
	patientID := store.addPatient()
	store.addItem(patientID, "2024-01-01", 1000)
	store.failSaveFlags = errors.New("disk on fire")
	svc := newTestService(store)

	_, err := svc.AddPayment(context.Background(), patientID, 1000, time.Time{}, nil)
	if err == nil {
		t.Fatal("expected error from flag write")
	}
	if len(store.payments) != 0 {
		t.Errorf("payment must roll back with the failed flag write")
	}
}

func TestRemovePayment_RoundTrip(t *testing.T) {
	store := newMockStore()
	patientID := store.addPatient()
	first := store.addItem(patientID, "2024-01-01", 10000)
	second := store.addItem(patientID, "2024-02-01", 10000)
	third := store.addItem(patientID, "2024-03-01", 10000)
	svc := newTestService(store)
	ctx := context.Background()

	for _, cents := range []int64{5000, 6000, 10000} {
		if _, err := svc.AddPayment(ctx, patientID, Amount(cents), time.Time{}, nil); err != nil {
			t.Fatalf("add payment %d: %v", cents, err)
		}
	}
	last, err := svc.AddPayment(ctx, patientID, 9000, time.Time{}, nil)
	if err != nil {
		t.Fatalf("add final payment: %v", err)
	}
	if !store.itemPaid(t, third) {
		t.Fatalf("all items should be paid at $300 total")
	}

	if err := svc.RemovePayment(ctx, patientID, last.ID); err != nil {
		t.Fatalf("remove payment: %v", err)
	}

	if !store.itemPaid(t, first) || !store.itemPaid(t, second) {
		t.Errorf("first two items must stay paid at $210 total")
	}
	if store.itemPaid(t, third) {
		t.Errorf("third item must revert to unpaid after removing the $90 payment")
	}

	balance, err := svc.GetBalance(ctx, patientID)
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	if balance.Outstanding != 9000 {
		t.Errorf("outstanding = %d, want 9000", balance.Outstanding)
	}
}

func TestRemovePayment_NotFound(t *testing.T) {
	store := newMockStore()
	patientID := store.addPatient()
	svc := newTestService(store)

	err := svc.RemovePayment(context.Background(), patientID, uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRecomputePatient_AfterAmountEdit(t *testing.T) {
	store := newMockStore()
	patientID := store.addPatient()
	itemID := store.addItem(patientID, "2024-01-01", 5000)
	svc := newTestService(store)
	ctx := context.Background()

	if _, err := svc.AddPayment(ctx, patientID, 5000, time.Time{}, nil); err != nil {
		t.Fatalf("add payment: %v", err)
	}
	if !store.itemPaid(t, itemID) {
		t.Fatalf("item should be paid")
	}

	// The owning record's update path raised the fee; the paid total no
	// longer covers the charge.
	store.mu.Lock()
	store.items[0].Amount = 8000
	store.mu.Unlock()

	if err := svc.RecomputePatient(ctx, patientID); err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if store.itemPaid(t, itemID) {
		t.Errorf("item must flip to unpaid after its amount grew past the paid total")
	}
}

func TestGetBalance_UnknownPatient(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store)

	_, err := svc.GetBalance(context.Background(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGetStatement(t *testing.T) {
	store := newMockStore()
	patientID := store.addPatient()
	store.addItem(patientID, "2024-02-01", 2000)
	store.addItem(patientID, "2024-01-01", 1000)
	svc := newTestService(store)
	ctx := context.Background()

	if _, err := svc.AddPayment(ctx, patientID, 1000, time.Time{}, nil); err != nil {
		t.Fatalf("add payment: %v", err)
	}

	st, err := svc.GetStatement(ctx, patientID)
	if err != nil {
		t.Fatalf("get statement: %v", err)
	}
	if len(st.Items) != 2 || len(st.Payments) != 1 {
		t.Fatalf("statement has %d items, %d payments", len(st.Items), len(st.Payments))
	}
	if !st.Items[0].Date.Before(st.Items[1].Date) {
		t.Errorf("statement items not in allocation order")
	}
	if !st.Items[0].IsPaid || st.Items[1].IsPaid {
		t.Errorf("statement paid flags do not match the allocation")
	}
	if st.Balance.Outstanding != 2000 {
		t.Errorf("statement outstanding = %d, want 2000", st.Balance.Outstanding)
	}
}

// Concurrent payments against one patient must be serialized: the paid total
// can never overshoot the debt, no matter the interleaving.
func TestAddPayment_ConcurrentSamePatient(t *testing.T) {
	store := newMockStore()
	patientID := store.addPatient()
	store.addItem(patientID, "2024-01-01", 10000)
	svc := newTestService(store)

	const workers = 8
	var wg sync.WaitGroup
	var accepted int64
	var acceptedMu sync.Mutex

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.AddPayment(context.Background(), patientID, 6000, time.Time{}, nil); err == nil {
				acceptedMu.Lock()
				accepted++
				acceptedMu.Unlock()
			}
		}()
	}
	wg.Wait()

	if accepted != 1 {
		t.Errorf("exactly one $60 payment fits a $100 debt, %d were accepted", accepted)
	}

	balance, err := svc.GetBalance(context.Background(), patientID)
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	if balance.TotalPaid > balance.TotalDebt {
		t.Errorf("paid total %d overshot debt %d", balance.TotalPaid, balance.TotalDebt)
	}
}
