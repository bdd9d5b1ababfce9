package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicore/clinicore/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type storePG struct{ pool *pgxpool.Pool }

// NewStorePG returns the pgx-backed ledger store.
func NewStorePG(pool *pgxpool.Pool) Store { return &storePG{pool: pool} }

func (s *storePG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return s.pool
}

// billableItemsSQL projects the three chargeable record types into one
// charge list. Zero-cost and soft-deleted records never become charges.
const billableItemsSQL = `
SELECT id, patient_id, 'appointment' AS kind, reason AS description,
       scheduled_at AS service_date, fee_cents AS amount_cents, is_paid, created_at
FROM appointments
WHERE patient_id = $1 AND status = 'completed' AND fee_cents > 0 AND deleted_at IS NULL
UNION ALL
SELECT id, patient_id, 'lab_order', test_name,
       ordered_at, price_cents, is_paid, created_at
FROM lab_orders
WHERE patient_id = $1 AND status = 'completed' AND price_cents > 0 AND deleted_at IS NULL
UNION ALL
SELECT id, patient_id, 'expense', description,
       incurred_at, amount_cents, is_paid, created_at
FROM expenses
WHERE patient_id = $1 AND amount_cents > 0 AND deleted_at IS NULL
ORDER BY service_date, created_at, id`

func (s *storePG) ListBillableItems(ctx context.Context, patientID uuid.UUID) ([]BillableItem, error) {
	rows, err := s.conn(ctx).Query(ctx, billableItemsSQL, patientID)
	if err != nil {
		return nil, fmt.Errorf("list billable items: %w", err)
	}
	defer rows.Close()

	var items []BillableItem
	for rows.Next() {
		var it BillableItem
		var amount int64
		if err := rows.Scan(&it.ID, &it.PatientID, &it.Kind, &it.Description,
			&it.Date, &amount, &it.IsPaid, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan billable item: %w", err)
		}
		it.Amount = Amount(amount)
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *storePG) ListPayments(ctx context.Context, patientID uuid.UUID) ([]Payment, error) {
	rows, err := s.conn(ctx).Query(ctx, `
		SELECT id, patient_id, paid_at, amount_cents, note, created_at
		FROM payments
		WHERE patient_id = $1
		ORDER BY paid_at, created_at, id`, patientID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var payments []Payment
	for rows.Next() {
		var p Payment
		var amount int64
		if err := rows.Scan(&p.ID, &p.PatientID, &p.Date, &amount, &p.Note, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		p.Amount = Amount(amount)
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (s *storePG) InsertPayment(ctx context.Context, p *Payment) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	_, err := s.conn(ctx).Exec(ctx, `
		INSERT INTO payments (id, patient_id, paid_at, amount_cents, note)
		VALUES ($1, $2, $3, $4, $5)`,
		p.ID, p.PatientID, p.Date, int64(p.Amount), p.Note)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (s *storePG) DeletePayment(ctx context.Context, patientID, paymentID uuid.UUID) error {
	tag, err := s.conn(ctx).Exec(ctx,
		`DELETE FROM payments WHERE id = $1 AND patient_id = $2`, paymentID, patientID)
	if err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// paidFlagTables maps an item kind to the table owning its is_paid column.
var paidFlagTables = map[ItemKind]string{
	ItemKindAppointment: "appointments",
	ItemKindLabOrder:    "lab_orders",
	ItemKindExpense:     "expenses",
}

func (s *storePG) SaveItemPaidFlags(ctx context.Context, flags []PaidFlag) error {
	for _, f := range flags {
		table, ok := paidFlagTables[f.Kind]
		if !ok {
			return fmt.Errorf("unknown item kind %q", f.Kind)
		}
		tag, err := s.conn(ctx).Exec(ctx,
			`UPDATE `+table+` SET is_paid = $2 WHERE id = $1`, f.ID, f.IsPaid)
		if err != nil {
			return fmt.Errorf("update %s paid flag: %w", table, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("update %s paid flag: %w", table, ErrNotFound)
		}
	}
	return nil
}

func (s *storePG) PatientExists(ctx context.Context, patientID uuid.UUID) (bool, error) {
	var exists bool
	err := s.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM patients WHERE id = $1 AND deleted_at IS NULL)`,
		patientID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check patient: %w", err)
	}
	return exists, nil
}

// WithinTx opens a transaction on the tenant connection (or the pool) and
// stores it in ctx so the store methods above run against it. Serialization
// failures and deadlocks surface as ErrConflict so callers can retry.
func (s *storePG) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	var tx pgx.Tx
	var err error
	if c := db.ConnFromContext(ctx); c != nil {
		tx, err = c.Begin(ctx)
	} else {
		tx, err = s.pool.Begin(ctx)
	}
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(db.WithTx(ctx, tx)); err != nil {
		return translatePGErr(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return translatePGErr(fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}

func translatePGErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// serialization_failure, deadlock_detected
		if pgErr.Code == "40001" || pgErr.Code == "40P01" {
			return fmt.Errorf("%w: %s", ErrConflict, pgErr.Message)
		}
	}
	return err
}
