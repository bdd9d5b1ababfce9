package practitioner

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockRepo struct {
	practitioners map[uuid.UUID]*Practitioner
}

func newMockRepo() *mockRepo {
	return &mockRepo{practitioners: make(map[uuid.UUID]*Practitioner)}
}

func (m *mockRepo) Create(_ context.Context, p *Practitioner) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	m.practitioners[p.ID] = p
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Practitioner, error) {
	p, ok := m.practitioners[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (m *mockRepo) Update(_ context.Context, p *Practitioner) error {
	if _, ok := m.practitioners[p.ID]; !ok {
		return ErrNotFound
	}
	m.practitioners[p.ID] = p
	return nil
}

func (m *mockRepo) List(_ context.Context, activeOnly bool, limit, offset int) ([]*Practitioner, int, error) {
	var result []*Practitioner
	for _, p := range m.practitioners {
		if activeOnly && !p.Active {
			continue
		}
		result = append(result, p)
	}
	return result, len(result), nil
}

func TestCreate_RequiresLastName(t *testing.T) {
	svc := NewService(newMockRepo())
	if err := svc.Create(context.Background(), &Practitioner{FirstName: "John"}); err == nil {
		t.Fatal("expected error for missing last_name")
	}
}

func TestDeactivate(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	p := &Practitioner{LastName: "House", Active: true}
	if err := svc.Create(context.Background(), p); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Deactivate(context.Background(), p.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	got, err := svc.Get(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Active {
		t.Error("practitioner still active after deactivate")
	}

	active, total, err := svc.List(context.Background(), true, 20, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(active) != 0 || total != 0 {
		t.Errorf("active list not empty: %d/%d", len(active), total)
	}
}

func TestDeactivate_NotFound(t *testing.T) {
	svc := NewService(newMockRepo())
	if err := svc.Deactivate(context.Background(), uuid.New()); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
