// Package memory implements store.Store in process memory. It backs tests
// and embedding applications that do not need persistence.
package memory

import (
	"context"
	"sync"
	"time"

	ledger "github.com/careledger/ledger"
	"github.com/careledger/ledger/bill"
	"github.com/careledger/ledger/payment"
	ledgerstore "github.com/careledger/ledger/store"
)

// compile-time interface check
var _ ledgerstore.Store = (*Store)(nil)

// Store implements store.Store with copied snapshots, matching the
// serialize-everything semantics of the file-backed drivers: mutating a
// bill after SaveBills does not change what a later LoadBills returns.
type Store struct {
	mu       sync.RWMutex
	bills    []*bill.Bill
	payments []*payment.Payment
	closed   bool
}

func New() *Store {
	return &Store{
		bills:    make([]*bill.Bill, 0),
		payments: make([]*payment.Payment, 0),
	}
}

func (s *Store) SaveBills(_ context.Context, bills []*bill.Bill) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ledger.ErrStoreClosed
	}

	snapshot := make([]*bill.Bill, len(bills))
	for i, b := range bills {
		snapshot[i] = copyBill(b)
	}
	s.bills = snapshot
	return nil
}

func (s *Store) LoadBills(_ context.Context) ([]*bill.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ledger.ErrStoreClosed
	}

	out := make([]*bill.Bill, len(s.bills))
	for i, b := range s.bills {
		out[i] = copyBill(b)
	}
	return out, nil
}

func (s *Store) SavePayments(_ context.Context, payments []*payment.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ledger.ErrStoreClosed
	}

	snapshot := make([]*payment.Payment, len(payments))
	for i, p := range payments {
		cp := *p
		snapshot[i] = &cp
	}
	s.payments = snapshot
	return nil
}

func (s *Store) LoadPayments(_ context.Context) ([]*payment.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ledger.ErrStoreClosed
	}

	out := make([]*payment.Payment, len(s.payments))
	for i, p := range s.payments {
		cp := *p
		out[i] = &cp
	}
	return out, nil
}

func (s *Store) Migrate(_ context.Context) error { return nil }

func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ledger.ErrStoreClosed
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func copyBill(b *bill.Bill) *bill.Bill {
	var datePaid *time.Time
	if b.DatePaid != nil {
		dp := *b.DatePaid
		datePaid = &dp
	}
	return bill.Restore(b.ID, b.PatientID, b.IssueDate, datePaid, b.Status, b.AmountPaid, b.Items())
}
