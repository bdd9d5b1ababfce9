package expense

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
		logger: logger.With().Str("component", "expense").Logger(),
	}
}

// Create records an expense. Any positive amount is immediately a charge,
// so the patient's paid flags are re-derived right away.
func (s *Service) Create(ctx context.Context, e *Expense) error {
	if e.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if e.Description == "" {
		return fmt.Errorf("description is required")
	}
	if e.AmountCents < 0 {
		return fmt.Errorf("amount_cents must not be negative")
	}
	if e.IncurredAt.IsZero() {
		e.IncurredAt = time.Now().UTC()
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return err
	}
	if e.AmountCents > 0 {
		return s.recompute(ctx, e.PatientID)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Expense, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, description string, incurredAt time.Time, amountCents int64) (*Expense, error) {
	if description == "" {
		return nil, fmt.Errorf("description is required")
	}
	if amountCents < 0 {
		return nil, fmt.Errorf("amount_cents must not be negative")
	}
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	changed := e.AmountCents != amountCents || (!incurredAt.IsZero() && !incurredAt.Equal(e.IncurredAt))
	e.Description = description
	if !incurredAt.IsZero() {
		e.IncurredAt = incurredAt
	}
	e.AmountCents = amountCents
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}

	// A date change reorders the FIFO queue, an amount change moves the
	// threshold; both shift which charges count as paid.
	if changed {
		if err := s.recompute(ctx, e.PatientID); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	if e.AmountCents > 0 {
		return s.recompute(ctx, e.PatientID)
	}
	return nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Expense, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) recompute(ctx context.Context, patientID uuid.UUID) error {
	if err := s.ledger.RecomputePatient(ctx, patientID); err != nil {
		return fmt.Errorf("recompute patient %s: %w", patientID, err)
	}
	s.logger.Debug().Str("patient_id", patientID.String()).Msg("ledger recomputed")
	return nil
}
