// Package store defines the persistence contract for the billing ledger.
//
// The ledger holds its working set in memory and persists by replacing
// whole collections, so the contract is deliberately small: load
// everything, save everything. Drivers live in subpackages; flatfile is
// the primary one, memory backs tests, sqlite suits installs that have
// outgrown text files.
package store

import (
	"context"

	"github.com/careledger/ledger/bill"
	"github.com/careledger/ledger/payment"
)

// Store is the unified storage interface for ledger entities.
//
// Save methods replace the stored collection with the one given; Load
// methods return everything. A backend with nothing stored yet returns
// empty slices, not an error. Records that cannot be decoded are skipped
// during load, never fatal.
type Store interface {
	// Bill methods
	SaveBills(ctx context.Context, bills []*bill.Bill) error
	LoadBills(ctx context.Context) ([]*bill.Bill, error)

	// Payment methods
	SavePayments(ctx context.Context, payments []*payment.Payment) error
	LoadPayments(ctx context.Context) ([]*payment.Payment, error)

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
