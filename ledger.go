package ledger

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/careledger/ledger/bill"
	"github.com/careledger/ledger/hook"
	"github.com/careledger/ledger/id"
	"github.com/careledger/ledger/patient"
	"github.com/careledger/ledger/payment"
	"github.com/careledger/ledger/store"
	"github.com/careledger/ledger/types"
)

// Ledger is the main billing engine.
//
// A Ledger is a single logical actor: it keeps the full working set in
// memory and its methods are meant to be called from one goroutine, or
// otherwise serialized by the caller. Every mutation applies to the
// in-memory state first and then rewrites the affected collections
// through the store before returning.
type Ledger struct {
	store    store.Store
	patients patient.Directory
	hooks    *hook.Registry
	logger   *slog.Logger
	now      func() time.Time

	started bool
	billSeq *id.Sequence

	bills    map[string]*bill.Bill
	payments []*payment.Payment

	// Due dates are a session index: CreateBill records them for overdue
	// queries, but they are not part of the stored record, so bills
	// loaded from the store carry none.
	dueDates map[string]time.Time
}

// New creates a new Ledger instance backed by the given store and patient
// directory. Call Start before using it.
func New(s store.Store, patients patient.Directory, opts ...Option) *Ledger {
	l := &Ledger{
		store:    s,
		patients: patients,
		hooks:    hook.NewRegistry(),
		logger:   slog.Default(),
		now:      time.Now,
		billSeq:  id.NewSequence(id.PrefixBill),
		bills:    make(map[string]*bill.Bill),
		dueDates: make(map[string]time.Time),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Option configures a Ledger instance.
type Option func(*Ledger)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
		l.hooks.WithLogger(logger)
	}
}

// WithHook registers a lifecycle hook.
func WithHook(h hook.Hook) Option {
	return func(l *Ledger) {
		_ = l.hooks.Register(h) //nolint:errcheck // best-effort hook registration during init
	}
}

// WithClock overrides the ledger's time source. Issue dates, payment
// timestamps, and overdue checks all read it; tests use it to pin "today".
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

// Start migrates the store and loads the working set: all bills and all
// payments. The bill sequence is seeded from the identifiers seen, so
// numbering continues where the previous session left off.
func (l *Ledger) Start(ctx context.Context) error {
	if l.started {
		return ErrAlreadyStarted
	}

	if err := l.store.Migrate(ctx); err != nil {
		return err
	}

	bills, err := l.store.LoadBills(ctx)
	if err != nil {
		return err
	}
	for _, b := range bills {
		l.bills[b.ID] = b
		l.billSeq.Observe(b.ID)
	}

	payments, err := l.store.LoadPayments(ctx)
	if err != nil {
		return err
	}
	l.payments = payments

	l.started = true
	l.hooks.EmitInit(ctx, l)

	l.logger.Info("ledger started",
		"bills", len(l.bills),
		"payments", len(l.payments),
	)

	return nil
}

// Stop shuts down the Ledger and closes the store.
func (l *Ledger) Stop() error {
	ctx := context.Background()
	l.hooks.EmitShutdown(ctx)
	l.started = false

	return l.store.Close()
}

// ──────────────────────────────────────────────────
// Bill Management
// ──────────────────────────────────────────────────

// CreateBill opens a new bill for a patient. The description becomes the
// bill's first line item at zero amount. dueDate must not lie before
// today; it is tracked at date precision for overdue queries.
func (l *Ledger) CreateBill(ctx context.Context, patientID, description string, dueDate time.Time) (*bill.Bill, error) {
	if !l.started {
		return nil, ErrNotStarted
	}
	if strings.TrimSpace(patientID) == "" {
		return nil, ValidationError{Field: "patient_id", Message: "must not be empty"}
	}
	if strings.TrimSpace(description) == "" {
		return nil, ValidationError{Field: "description", Message: "must not be empty"}
	}
	if dueDate.IsZero() {
		return nil, ValidationError{Field: "due_date", Message: "must be set"}
	}

	today := dateOnly(l.now())
	due := dateOnly(dueDate)
	if due.Before(today) {
		return nil, ValidationError{Field: "due_date", Message: "must not be in the past"}
	}

	if _, err := l.patients.FindByID(ctx, patientID); err != nil {
		return nil, err
	}

	b := bill.New(l.billSeq.Next(), patientID, today)
	b.AddItem(description, types.Money{})

	l.bills[b.ID] = b
	l.dueDates[b.ID] = due

	if err := l.persistBills(ctx); err != nil {
		return nil, err
	}

	l.hooks.EmitBillCreated(ctx, b)

	l.logger.Info("bill created",
		"bill_id", b.ID,
		"patient_id", patientID,
		"due_date", due.Format("2006-01-02"),
	)

	return b, nil
}

// AddItemToBill appends a charge item to an existing bill and brings its
// total up to date. Payment status is not re-derived here; only payments
// move a bill's status.
func (l *Ledger) AddItemToBill(ctx context.Context, billID, description string, amount types.Money) (*bill.Bill, error) {
	if !l.started {
		return nil, ErrNotStarted
	}

	b, ok := l.bills[billID]
	if !ok {
		return nil, ErrBillNotFound
	}
	if strings.TrimSpace(description) == "" {
		return nil, ValidationError{Field: "description", Message: "must not be empty"}
	}
	if !amount.IsPositive() {
		return nil, ValidationError{Field: "amount", Message: "must be positive"}
	}

	b.AddItem(description, amount)

	if err := l.persistBills(ctx); err != nil {
		return nil, err
	}

	l.hooks.EmitItemAdded(ctx, b, bill.Item{Description: description, Amount: amount})

	l.logger.Debug("item added",
		"bill_id", b.ID,
		"amount", amount.String(),
		"total", b.Total().String(),
	)

	return b, nil
}

// ──────────────────────────────────────────────────
// Payment Processing
// ──────────────────────────────────────────────────

// ProcessPayment records a completed payment against a bill and re-derives
// the bill's status from the cumulative amount paid. Overpayment is
// accepted; a positive payment settles a zero-total bill outright.
func (l *Ledger) ProcessPayment(ctx context.Context, billID string, amount types.Money, method string) (*payment.Payment, error) {
	if !l.started {
		return nil, ErrNotStarted
	}

	b, ok := l.bills[billID]
	if !ok {
		return nil, ErrBillNotFound
	}
	if !amount.IsPositive() {
		return nil, ValidationError{Field: "amount", Message: "must be positive"}
	}
	if strings.TrimSpace(method) == "" {
		return nil, ValidationError{Field: "method", Message: "must not be empty"}
	}

	p := &payment.Payment{
		ID:     id.NewPaymentID(),
		BillID: b.ID,
		Amount: amount,
		PaidAt: l.now(),
		Method: method,
		Status: payment.StatusCompleted,
	}
	l.payments = append(l.payments, p)

	before := b.Status
	b.ApplyPayments(l.balancePaid(b.ID), p.PaidAt)

	if err := l.persistPayments(ctx); err != nil {
		return nil, err
	}
	if err := l.persistBills(ctx); err != nil {
		return nil, err
	}

	l.hooks.EmitPaymentRecorded(ctx, p)
	if b.Status != before {
		l.hooks.EmitBillStatusChanged(ctx, b, before, b.Status)
	}

	l.logger.Info("payment recorded",
		"payment_id", p.ID,
		"bill_id", b.ID,
		"amount", amount.String(),
		"status", string(b.Status),
	)

	return p, nil
}

// balancePaid sums the payments recorded against a bill that count toward
// its balance.
func (l *Ledger) balancePaid(billID string) types.Money {
	var total types.Money
	for _, p := range l.payments {
		if p.BillID == billID && p.CountsTowardBalance() {
			total = total.Add(p.Amount)
		}
	}
	return total
}

// ──────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────

// GetBill retrieves a bill by ID.
func (l *Ledger) GetBill(_ context.Context, billID string) (*bill.Bill, error) {
	if !l.started {
		return nil, ErrNotStarted
	}

	b, ok := l.bills[billID]
	if !ok {
		return nil, ErrBillNotFound
	}
	return b, nil
}

// ListBills returns all bills ordered by the numeric part of their ID, so
// B2 sorts before B10.
func (l *Ledger) ListBills(_ context.Context) ([]*bill.Bill, error) {
	if !l.started {
		return nil, ErrNotStarted
	}
	return l.sortedBills(), nil
}

// ListBillsByPatient returns a patient's bills in ID order.
func (l *Ledger) ListBillsByPatient(_ context.Context, patientID string) ([]*bill.Bill, error) {
	if !l.started {
		return nil, ErrNotStarted
	}

	var out []*bill.Bill
	for _, b := range l.sortedBills() {
		if b.PatientID == patientID {
			out = append(out, b)
		}
	}
	return out, nil
}

// ListBillsByPaid filters on the settled poles only: true selects PAID
// bills, false selects UNPAID. Partially paid bills appear in neither
// listing; use ListBills to see them.
func (l *Ledger) ListBillsByPaid(_ context.Context, paid bool) ([]*bill.Bill, error) {
	if !l.started {
		return nil, ErrNotStarted
	}

	want := bill.StatusUnpaid
	if paid {
		want = bill.StatusPaid
	}

	var out []*bill.Bill
	for _, b := range l.sortedBills() {
		if b.Status == want {
			out = append(out, b)
		}
	}
	return out, nil
}

// ListOverdueBills returns bills that are not fully paid and whose due
// date lies strictly before today. Due dates exist only in the session
// index, so bills restored from the store are never reported overdue.
func (l *Ledger) ListOverdueBills(_ context.Context) ([]*bill.Bill, error) {
	if !l.started {
		return nil, ErrNotStarted
	}

	today := dateOnly(l.now())

	var out []*bill.Bill
	for _, b := range l.sortedBills() {
		if b.Status == bill.StatusPaid {
			continue
		}
		if due, ok := l.dueDates[b.ID]; ok && due.Before(today) {
			out = append(out, b)
		}
	}
	return out, nil
}

// ListPayments returns the payments recorded against a bill in the order
// they were made.
func (l *Ledger) ListPayments(_ context.Context, billID string) ([]*payment.Payment, error) {
	if !l.started {
		return nil, ErrNotStarted
	}
	if _, ok := l.bills[billID]; !ok {
		return nil, ErrBillNotFound
	}

	var out []*payment.Payment
	for _, p := range l.payments {
		if p.BillID == billID {
			out = append(out, p)
		}
	}
	return out, nil
}

// DueDate reports the due date tracked for a bill in this session. The
// second return is false for bills created in an earlier session.
func (l *Ledger) DueDate(billID string) (time.Time, bool) {
	due, ok := l.dueDates[billID]
	return due, ok
}

// ──────────────────────────────────────────────────
// Persistence
// ──────────────────────────────────────────────────

func (l *Ledger) persistBills(ctx context.Context) error {
	return l.store.SaveBills(ctx, l.sortedBills())
}

func (l *Ledger) persistPayments(ctx context.Context) error {
	return l.store.SavePayments(ctx, l.payments)
}

// sortedBills returns the working set ordered by ascending numeric ID
// suffix. IDs without a parsable suffix sort after the numbered ones,
// lexicographically.
func (l *Ledger) sortedBills() []*bill.Bill {
	out := make([]*bill.Bill, 0, len(l.bills))
	for _, b := range l.bills {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		return lessBillID(out[i].ID, out[j].ID)
	})
	return out
}

func lessBillID(a, b string) bool {
	an, aok := id.Number(a, id.PrefixBill)
	bn, bok := id.Number(b, id.PrefixBill)
	switch {
	case aok && bok:
		if an != bn {
			return an < bn
		}
		return a < b
	case aok:
		return true
	case bok:
		return false
	default:
		return a < b
	}
}

// dateOnly strips a timestamp down to its calendar date.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
