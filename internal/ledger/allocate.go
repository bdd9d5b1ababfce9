package ledger

import (
	"sort"

	"github.com/google/uuid"
)

// Allocation is the result of a full FIFO recompute over one patient's
// charges and payments.
type Allocation struct {
	// PaidIDs holds the ids of items fully covered by the payment total.
	PaidIDs map[uuid.UUID]bool
	// TotalDebt is the sum of all item amounts.
	TotalDebt Amount
	// TotalPaid is the sum of all payment amounts.
	TotalPaid Amount
	// Outstanding is TotalDebt - TotalPaid floored at zero, for reporting.
	Outstanding Amount
	// RawOutstanding is the signed difference, used for validation. It can
	// go negative when an item amount was edited below the paid total.
	RawOutstanding Amount
}

// Allocate applies payments to charges oldest-first and reports which items
// are fully covered. It is a pure function: no I/O, no mutation of its
// arguments, and identical input always yields identical output.
//
// Items are ordered by (date, created_at, id); the id comparison makes the
// order total, so recomputes over equal-dated items never flip. An item is
// paid iff the running total of item amounts up to and including it does not
// exceed the payment total. There is no partial-paid state: payments cover
// the oldest charge in full before any newer charge counts as paid, so a
// zero-amount item is paid whenever its predecessor is.
func Allocate(items []BillableItem, payments []Payment) Allocation {
	sorted := make([]BillableItem, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})

	var totalPaid Amount
	for _, p := range payments {
		totalPaid += p.Amount
	}

	paid := make(map[uuid.UUID]bool, len(sorted))
	var prefix Amount
	for _, it := range sorted {
		prefix += it.Amount
		if prefix <= totalPaid {
			paid[it.ID] = true
		}
	}

	raw := prefix - totalPaid
	outstanding := raw
	if outstanding < 0 {
		outstanding = 0
	}

	return Allocation{
		PaidIDs:        paid,
		TotalDebt:      prefix,
		TotalPaid:      totalPaid,
		Outstanding:    outstanding,
		RawOutstanding: raw,
	}
}

// Balance returns the reporting view of the allocation.
func (a Allocation) Balance() Balance {
	return Balance{
		TotalDebt:   a.TotalDebt,
		TotalPaid:   a.TotalPaid,
		Outstanding: a.Outstanding,
	}
}

// ChangedFlags compares the stored paid flags against a fresh allocation and
// returns only the writes needed to bring storage in line with it.
func ChangedFlags(items []BillableItem, alloc Allocation) []PaidFlag {
	var flags []PaidFlag
	for _, it := range items {
		want := alloc.PaidIDs[it.ID]
		if it.IsPaid != want {
			flags = append(flags, PaidFlag{ID: it.ID, Kind: it.Kind, IsPaid: want})
		}
	}
	return flags
}

// SortItems orders items the way the engine allocates them. Used by the
// statement read path so the rendered charge list matches allocation order.
func SortItems(items []BillableItem) {
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
}

// SortPayments orders payments by (date, created_at, id).
func SortPayments(payments []Payment) {
	sort.Slice(payments, func(i, j int) bool {
		a, b := payments[i], payments[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
}
