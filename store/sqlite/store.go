// Package sqlite implements store.Store on a local SQLite database using
// the pure-Go modernc.org driver. It suits installs that have outgrown
// the text files without leaving a single local file behind.
//
// Amounts are stored as integer cents; dates use the same layouts as the
// flat-file format so the two stores stay hand-inspectable side by side.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/careledger/ledger/bill"
	"github.com/careledger/ledger/payment"
	ledgerstore "github.com/careledger/ledger/store"
	"github.com/careledger/ledger/types"
)

// compile-time interface check
var _ ledgerstore.Store = (*Store)(nil)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
)

// Store implements store.Store over SQLite.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for load-time skip warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// New wraps an existing database handle. The caller keeps ownership of
// pool settings; Close still closes the handle.
func New(db *sql.DB, opts ...Option) *Store {
	s := &Store{
		db:     db,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open opens (creating if needed) the SQLite database at path.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("ledger/sqlite: open %s: %w", path, err)
	}
	// The ledger is a single logical writer; one connection avoids
	// SQLITE_BUSY between the pool's handles.
	db.SetMaxOpenConns(1)
	return New(db, opts...), nil
}

// DB returns the underlying database handle for direct access.
func (s *Store) DB() *sql.DB { return s.db }

// Migrate creates the required tables and indexes.
func (s *Store) Migrate(ctx context.Context) error {
	for _, m := range migrations {
		if _, err := s.db.ExecContext(ctx, m.stmt); err != nil {
			return fmt.Errorf("ledger/sqlite: migration %s: %w", m.name, err)
		}
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ──────────────────────────────────────────────────
// Bill storage
// ──────────────────────────────────────────────────

func (s *Store) SaveBills(ctx context.Context, bills []*bill.Bill) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ledger/sqlite: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM ledger_bill_items`); err != nil {
		return fmt.Errorf("ledger/sqlite: clear bill items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM ledger_bills`); err != nil {
		return fmt.Errorf("ledger/sqlite: clear bills: %w", err)
	}

	for _, b := range bills {
		var datePaid sql.NullString
		if b.DatePaid != nil {
			datePaid = sql.NullString{String: b.DatePaid.Format(dateLayout), Valid: true}
		}
		_, err := tx.ExecContext(ctx, `
INSERT INTO ledger_bills (id, patient_id, issue_date, date_paid, status, amount_paid)
VALUES (?, ?, ?, ?, ?, ?)`,
			b.ID, b.PatientID, b.IssueDate.Format(dateLayout), datePaid, string(b.Status), b.AmountPaid.Cents)
		if err != nil {
			return fmt.Errorf("ledger/sqlite: insert bill %s: %w", b.ID, err)
		}

		for i, it := range b.Items() {
			_, err := tx.ExecContext(ctx, `
INSERT INTO ledger_bill_items (bill_id, position, description, amount)
VALUES (?, ?, ?, ?)`,
				b.ID, i, it.Description, it.Amount.Cents)
			if err != nil {
				return fmt.Errorf("ledger/sqlite: insert item %d of bill %s: %w", i, b.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ledger/sqlite: commit bills: %w", err)
	}
	s.logger.Debug("saved bills", "count", len(bills))
	return nil
}

func (s *Store) LoadBills(ctx context.Context) ([]*bill.Bill, error) {
	items, err := s.loadItems(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id, patient_id, issue_date, date_paid, status, amount_paid
FROM ledger_bills ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("ledger/sqlite: query bills: %w", err)
	}
	defer rows.Close()

	bills := make([]*bill.Bill, 0)
	for rows.Next() {
		var (
			id, patientID, issueRaw, statusRaw string
			datePaidRaw                        sql.NullString
			amountPaid                         int64
		)
		if err := rows.Scan(&id, &patientID, &issueRaw, &datePaidRaw, &statusRaw, &amountPaid); err != nil {
			return nil, fmt.Errorf("ledger/sqlite: scan bill: %w", err)
		}

		b, err := restoreBill(id, patientID, issueRaw, datePaidRaw, statusRaw, amountPaid, items[id])
		if err != nil {
			s.logger.Warn("skipping bill row", "id", id, "error", err)
			continue
		}
		bills = append(bills, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ledger/sqlite: iterate bills: %w", err)
	}
	return bills, nil
}

func (s *Store) loadItems(ctx context.Context) (map[string][]bill.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT bill_id, description, amount
FROM ledger_bill_items ORDER BY bill_id, position`)
	if err != nil {
		return nil, fmt.Errorf("ledger/sqlite: query bill items: %w", err)
	}
	defer rows.Close()

	items := make(map[string][]bill.Item)
	for rows.Next() {
		var (
			billID, description string
			amount              int64
		)
		if err := rows.Scan(&billID, &description, &amount); err != nil {
			return nil, fmt.Errorf("ledger/sqlite: scan bill item: %w", err)
		}
		items[billID] = append(items[billID], bill.Item{Description: description, Amount: types.Cents(amount)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ledger/sqlite: iterate bill items: %w", err)
	}
	return items, nil
}

func restoreBill(id, patientID, issueRaw string, datePaidRaw sql.NullString, statusRaw string, amountPaid int64, items []bill.Item) (*bill.Bill, error) {
	issueDate, err := time.Parse(dateLayout, issueRaw)
	if err != nil {
		return nil, fmt.Errorf("issue date: %w", err)
	}
	var datePaid *time.Time
	if datePaidRaw.Valid {
		dp, err := time.Parse(dateLayout, datePaidRaw.String)
		if err != nil {
			return nil, fmt.Errorf("date paid: %w", err)
		}
		datePaid = &dp
	}
	status, err := bill.ParseStatus(statusRaw)
	if err != nil {
		return nil, err
	}
	return bill.Restore(id, patientID, issueDate, datePaid, status, types.Cents(amountPaid), items), nil
}

// ──────────────────────────────────────────────────
// Payment storage
// ──────────────────────────────────────────────────

func (s *Store) SavePayments(ctx context.Context, payments []*payment.Payment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ledger/sqlite: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM ledger_payments`); err != nil {
		return fmt.Errorf("ledger/sqlite: clear payments: %w", err)
	}

	for _, p := range payments {
		_, err := tx.ExecContext(ctx, `
INSERT INTO ledger_payments (id, bill_id, amount, paid_at, method, status)
VALUES (?, ?, ?, ?, ?, ?)`,
			p.ID, p.BillID, p.Amount.Cents, p.PaidAt.Format(dateTimeLayout), p.Method, string(p.Status))
		if err != nil {
			return fmt.Errorf("ledger/sqlite: insert payment %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ledger/sqlite: commit payments: %w", err)
	}
	s.logger.Debug("saved payments", "count", len(payments))
	return nil
}

func (s *Store) LoadPayments(ctx context.Context) ([]*payment.Payment, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, bill_id, amount, paid_at, method, status
FROM ledger_payments ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("ledger/sqlite: query payments: %w", err)
	}
	defer rows.Close()

	payments := make([]*payment.Payment, 0)
	for rows.Next() {
		var (
			id, billID, paidAtRaw, method, statusRaw string
			amount                                   int64
		)
		if err := rows.Scan(&id, &billID, &amount, &paidAtRaw, &method, &statusRaw); err != nil {
			return nil, fmt.Errorf("ledger/sqlite: scan payment: %w", err)
		}

		paidAt, err := time.Parse(dateTimeLayout, paidAtRaw)
		if err != nil {
			s.logger.Warn("skipping payment row", "id", id, "error", err)
			continue
		}
		status, err := payment.ParseStatus(statusRaw)
		if err != nil {
			s.logger.Warn("skipping payment row", "id", id, "error", err)
			continue
		}

		payments = append(payments, &payment.Payment{
			ID:     id,
			BillID: billID,
			Amount: types.Cents(amount),
			PaidAt: paidAt,
			Method: method,
			Status: status,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ledger/sqlite: iterate payments: %w", err)
	}
	return payments, nil
}
