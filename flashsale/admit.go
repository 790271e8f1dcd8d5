// Package flashsale admits and persists limited-inventory purchase orders.
//
// A purchase runs in two phases. Admission is one atomic step against the
// shared store: read remaining stock, check the per-user marker, then either
// reject or decrement-and-mark. Because the whole check-then-act is
// indivisible, no overdraw or duplicate admission is possible without any
// per-request locking on the hot path. Persistence happens later: admitted
// intents are queued in-process and a single sequential worker writes them
// durably, so the caller gets an order id without waiting for the database.
package flashsale

import (
	"context"
	"errors"
)

// Verdict is the admission outcome.
type Verdict int

const (
	Admitted Verdict = iota
	OutOfStock
	Duplicate
)

var (
	// ErrOutOfStock rejects a purchase whose voucher has no stock left.
	ErrOutOfStock = errors.New("flashsale: out of stock")
	// ErrDuplicateOrder rejects a second purchase of one voucher by one user.
	ErrDuplicateOrder = errors.New("flashsale: duplicate order")
)

// Admitter performs the atomic stock/eligibility step for one voucher.
type Admitter interface {
	// Admit checks stock and the user's marker and, when both pass,
	// decrements stock and sets the marker - all in one indivisible step.
	Admit(ctx context.Context, voucherID, userID uint64) (Verdict, error)

	// Seed (re)initializes a voucher sale: writes the stock counter and
	// clears all per-user markers, atomically. Run before the sale opens;
	// re-running resets the sale.
	Seed(ctx context.Context, voucherID uint64, stock int64) error
}
