package appointment

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
		logger: logger.With().Str("component", "appointment").Logger(),
	}
}

func (s *Service) Create(ctx context.Context, a *Appointment) error {
	if a.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if a.PractitionerID == uuid.Nil {
		return fmt.Errorf("practitioner_id is required")
	}
	if a.ScheduledAt.IsZero() {
		return fmt.Errorf("scheduled_at is required")
	}
	if a.FeeCents < 0 {
		return fmt.Errorf("fee_cents must not be negative")
	}
	if a.Status == "" {
		a.Status = StatusScheduled
	}
	if a.Status != StatusScheduled {
		return fmt.Errorf("new appointments must be scheduled, got %q", a.Status)
	}
	return s.repo.Create(ctx, a)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

// Update edits the mutable fields. A fee change on a completed appointment
// moves a charge, so the patient's paid flags are re-derived afterwards.
func (s *Service) Update(ctx context.Context, id uuid.UUID, reason string, scheduledAt time.Time, feeCents int64, note *string) (*Appointment, error) {
	if feeCents < 0 {
		return nil, fmt.Errorf("fee_cents must not be negative")
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	feeChanged := a.FeeCents != feeCents
	a.Reason = reason
	if !scheduledAt.IsZero() {
		a.ScheduledAt = scheduledAt
	}
	a.FeeCents = feeCents
	a.Note = note
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}

	if feeChanged && a.Status == StatusCompleted {
		if err := s.recompute(ctx, a.PatientID); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Complete marks the appointment done and captures the final fee, at which
// point it becomes a charge on the patient's account.
func (s *Service) Complete(ctx context.Context, id uuid.UUID, feeCents int64) (*Appointment, error) {
	if feeCents < 0 {
		return nil, fmt.Errorf("fee_cents must not be negative")
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canTransition(a.Status, StatusCompleted) {
		return nil, fmt.Errorf("cannot complete %s appointment", a.Status)
	}

	a.Status = StatusCompleted
	a.FeeCents = feeCents
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	if err := s.recompute(ctx, a.PatientID); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canTransition(a.Status, StatusCancelled) {
		return nil, fmt.Errorf("cannot cancel %s appointment", a.Status)
	}
	a.Status = StatusCancelled
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Delete soft-deletes the appointment. A completed appointment's charge
// disappears from the account, so paid flags are re-derived.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	if a.Status == StatusCompleted && a.FeeCents > 0 {
		return s.recompute(ctx, a.PatientID)
	}
	return nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListByPractitioner(ctx context.Context, practitionerID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.ListByPractitioner(ctx, practitionerID, limit, offset)
}

func (s *Service) recompute(ctx context.Context, patientID uuid.UUID) error {
	if err := s.ledger.RecomputePatient(ctx, patientID); err != nil {
		return fmt.Errorf("recompute patient %s: %w", patientID, err)
	}
	s.logger.Debug().Str("patient_id", patientID.String()).Msg("ledger recomputed")
	return nil
}
