package laborder

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Service struct {
	repo   Repository
	ledger Recomputer
	logger zerolog.Logger
}

func NewService(repo Repository, ledger Recomputer, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		ledger: ledger,
		logger: logger.With().Str("component", "laborder").Logger(),
	}
}

func (s *Service) Create(ctx context.Context, o *LabOrder) error {
	if o.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if o.PractitionerID == uuid.Nil {
		return fmt.Errorf("practitioner_id is required")
	}
	if o.TestName == "" {
		return fmt.Errorf("test_name is required")
	}
	if o.PriceCents < 0 {
		return fmt.Errorf("price_cents must not be negative")
	}
	if o.OrderedAt.IsZero() {
		o.OrderedAt = time.Now().UTC()
	}
	if o.Status == "" {
		o.Status = StatusOrdered
	}
	if o.Status != StatusOrdered {
		return fmt.Errorf("new lab orders must be ordered, got %q", o.Status)
	}
	return s.repo.Create(ctx, o)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*LabOrder, error) {
	return s.repo.GetByID(ctx, id)
}

// Complete records the result and final price; the order becomes a charge.
func (s *Service) Complete(ctx context.Context, id uuid.UUID, priceCents int64, result *string) (*LabOrder, error) {
	if priceCents < 0 {
		return nil, fmt.Errorf("price_cents must not be negative")
	}
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.Status != StatusOrdered {
		return nil, fmt.Errorf("cannot complete %s lab order", o.Status)
	}

	o.Status = StatusCompleted
	o.PriceCents = priceCents
	o.Result = result
	if err := s.repo.Update(ctx, o); err != nil {
		return nil, err
	}
	if err := s.recompute(ctx, o.PatientID); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*LabOrder, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.Status != StatusOrdered {
		return nil, fmt.Errorf("cannot cancel %s lab order", o.Status)
	}
	o.Status = StatusCancelled
	if err := s.repo.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	if o.Status == StatusCompleted && o.PriceCents > 0 {
		return s.recompute(ctx, o.PatientID)
	}
	return nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*LabOrder, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) recompute(ctx context.Context, patientID uuid.UUID) error {
	if err := s.ledger.RecomputePatient(ctx, patientID); err != nil {
		return fmt.Errorf("recompute patient %s: %w", patientID, err)
	}
	s.logger.Debug().Str("patient_id", patientID.String()).Msg("ledger recomputed")
	return nil
}
