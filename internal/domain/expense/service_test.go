package expense

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type mockRepo struct {
	expenses map[uuid.UUID]*Expense
}

func newMockRepo() *mockRepo {
	return &mockRepo{expenses: make(map[uuid.UUID]*Expense)}
}

func (m *mockRepo) Create(_ context.Context, e *Expense) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	cp := *e
	m.expenses[e.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Expense, error) {
	e, ok := m.expenses[id]
	if !ok || e.DeletedAt != nil {
		return nil, ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, e *Expense) error {
	old, ok := m.expenses[e.ID]
	if !ok || old.DeletedAt != nil {
		return ErrNotFound
	}
	cp := *e
	m.expenses[e.ID] = &cp
	return nil
}

func (m *mockRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	e, ok := m.expenses[id]
	if !ok || e.DeletedAt != nil {
		return ErrNotFound
	}
	now := time.Now()
	e.DeletedAt = &now
	return nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*Expense, int, error) {
	var result []*Expense
	for _, e := range m.expenses {
		if e.PatientID == patientID && e.DeletedAt == nil {
			result = append(result, e)
		}
	}
	return result, len(result), nil
}

type mockRecomputer struct {
	calls []uuid.UUID
}

func (m *mockRecomputer) RecomputePatient(_ context.Context, patientID uuid.UUID) error {
	m.calls = append(m.calls, patientID)
	return nil
}

func newTestService() (*Service, *mockRecomputer) {
	rec := &mockRecomputer{}
	return NewService(newMockRepo(), rec, zerolog.Nop()), rec
}

func TestCreate_PositiveAmountRecomputes(t *testing.T) {
	svc, rec := newTestService()

	e := &Expense{PatientID: uuid.New(), Description: "crutches", AmountCents: 4500}
	if err := svc.Create(context.Background(), e); err != nil {
		t.Fatalf("create: %v", err)
	}
	if e.IncurredAt.IsZero() {
		t.Error("incurred_at not defaulted")
	}
	if len(rec.calls) != 1 || rec.calls[0] != e.PatientID {
		t.Errorf("expected one recompute, got %v", rec.calls)
	}
}

func TestCreate_ZeroAmountSkipsRecompute(t *testing.T) {
	svc, rec := newTestService()
	e := &Expense{PatientID: uuid.New(), Description: "waived fee", AmountCents: 0}
	if err := svc.Create(context.Background(), e); err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(rec.calls) != 0 {
		t.Errorf("zero-amount expense should not recompute, got %d calls", len(rec.calls))
	}
}

func TestUpdate_OnlyChangesRecompute(t *testing.T) {
	svc, rec := newTestService()
	e := &Expense{PatientID: uuid.New(), Description: "bandages", AmountCents: 1000,
		IncurredAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)}
	if err := svc.Create(context.Background(), e); err != nil {
		t.Fatalf("create: %v", err)
	}
	rec.calls = nil

	// Description-only edit leaves the charge set unchanged.
	if _, err := svc.Update(context.Background(), e.ID, "sterile bandages", time.Time{}, 1000); err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(rec.calls) != 0 {
		t.Errorf("description edit should not recompute, got %d", len(rec.calls))
	}

	if _, err := svc.Update(context.Background(), e.ID, "sterile bandages", time.Time{}, 2000); err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(rec.calls) != 1 {
		t.Errorf("amount edit should recompute, got %d", len(rec.calls))
	}

	rec.calls = nil
	newDate := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if _, err := svc.Update(context.Background(), e.ID, "sterile bandages", newDate, 2000); err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(rec.calls) != 1 {
		t.Errorf("date edit should recompute, got %d", len(rec.calls))
	}
}

func TestDelete_Recomputes(t *testing.T) {
	svc, rec := newTestService()
	e := &Expense{PatientID: uuid.New(), Description: "crutches", AmountCents: 4500}
	if err := svc.Create(context.Background(), e); err != nil {
		t.Fatalf("create: %v", err)
	}
	rec.calls = nil

	if err := svc.Delete(context.Background(), e.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(rec.calls) != 1 {
		t.Errorf("expected recompute after delete, got %d", len(rec.calls))
	}
	if err := svc.Delete(context.Background(), e.ID); err != ErrNotFound {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}
