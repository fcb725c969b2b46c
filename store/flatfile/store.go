// Package flatfile implements store.Store over delimited text files, one
// record per line: bills.txt and payments.txt in a data directory.
//
// Saves rewrite the whole file through a temporary file in the same
// directory followed by a rename, so a crash mid-write leaves the previous
// contents intact. Loads skip records that cannot be decoded, logging each
// skip, so one corrupt line never takes the ledger down.
package flatfile

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/renameio/v2"

	ledger "github.com/careledger/ledger"
	"github.com/careledger/ledger/bill"
	"github.com/careledger/ledger/codec"
	"github.com/careledger/ledger/payment"
	ledgerstore "github.com/careledger/ledger/store"
)

// compile-time interface check
var _ ledgerstore.Store = (*Store)(nil)

const (
	billsFile    = "bills.txt"
	paymentsFile = "payments.txt"
)

// Store implements store.Store over text files in a single directory.
type Store struct {
	dir    string
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for load-time skip warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// New creates a flat-file store rooted at dir. The directory is created
// by Migrate, not here.
func New(dir string, opts ...Option) *Store {
	s := &Store{
		dir:    dir,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the data directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) billsPath() string    { return filepath.Join(s.dir, billsFile) }
func (s *Store) paymentsPath() string { return filepath.Join(s.dir, paymentsFile) }

// Migrate creates the data directory if it does not exist yet.
func (s *Store) Migrate(_ context.Context) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("ledger/flatfile: create data dir %s: %w", s.dir, err)
	}
	return nil
}

// Ping checks that the data directory is reachable.
func (s *Store) Ping(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ledger.ErrStoreClosed
	}
	if _, err := os.Stat(s.dir); err != nil {
		return fmt.Errorf("ledger/flatfile: stat data dir %s: %w", s.dir, err)
	}
	return nil
}

// Close marks the store closed. Files need no teardown.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// ──────────────────────────────────────────────────
// Bill storage
// ──────────────────────────────────────────────────

func (s *Store) SaveBills(_ context.Context, bills []*bill.Bill) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ledger.ErrStoreClosed
	}

	var sb strings.Builder
	for _, b := range bills {
		sb.WriteString(encodeBillRecord(b))
		sb.WriteByte('\n')
	}
	if err := renameio.WriteFile(s.billsPath(), []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("ledger/flatfile: write %s: %w", s.billsPath(), err)
	}

	s.logger.Debug("saved bills", "count", len(bills), "path", s.billsPath())
	return nil
}

func (s *Store) LoadBills(_ context.Context) ([]*bill.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ledger.ErrStoreClosed
	}

	bills := make([]*bill.Bill, 0)
	err := s.readRecords(s.billsPath(), func(line int, raw string) {
		b, err := decodeBillRecord(raw)
		if err != nil {
			perr := &codec.ParseError{Line: line, Reason: "malformed bill record", Err: err}
			s.logger.Warn("skipping bill record",
				"path", s.billsPath(),
				"line", line,
				"error", perr,
			)
			return
		}
		bills = append(bills, b)
	})
	if err != nil {
		return nil, err
	}
	return bills, nil
}

// ──────────────────────────────────────────────────
// Payment storage
// ──────────────────────────────────────────────────

func (s *Store) SavePayments(_ context.Context, payments []*payment.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ledger.ErrStoreClosed
	}

	var sb strings.Builder
	for _, p := range payments {
		sb.WriteString(encodePaymentRecord(p))
		sb.WriteByte('\n')
	}
	if err := renameio.WriteFile(s.paymentsPath(), []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("ledger/flatfile: write %s: %w", s.paymentsPath(), err)
	}

	s.logger.Debug("saved payments", "count", len(payments), "path", s.paymentsPath())
	return nil
}

func (s *Store) LoadPayments(_ context.Context) ([]*payment.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ledger.ErrStoreClosed
	}

	payments := make([]*payment.Payment, 0)
	err := s.readRecords(s.paymentsPath(), func(line int, raw string) {
		p, err := decodePaymentRecord(raw)
		if err != nil {
			perr := &codec.ParseError{Line: line, Reason: "malformed payment record", Err: err}
			s.logger.Warn("skipping payment record",
				"path", s.paymentsPath(),
				"line", line,
				"error", perr,
			)
			return
		}
		payments = append(payments, p)
	})
	if err != nil {
		return nil, err
	}
	return payments, nil
}

// readRecords streams non-blank lines of path to fn with 1-based line
// numbers. A missing file reads as empty.
func (s *Store) readRecords(path string, fn func(line int, raw string)) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("ledger/flatfile: open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Text()
		if strings.TrimSpace(raw) == "" {
			continue
		}
		fn(line, raw)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("ledger/flatfile: read %s: %w", path, err)
	}
	return nil
}
