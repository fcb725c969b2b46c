package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careledger/ledger"
	"github.com/careledger/ledger/bill"
	"github.com/careledger/ledger/patient"
	"github.com/careledger/ledger/payment"
	"github.com/careledger/ledger/store"
	"github.com/careledger/ledger/store/memory"
	"github.com/careledger/ledger/types"
)

// fakeClock lets tests move "today" around.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func clockAt(t *testing.T, value string) *fakeClock {
	t.Helper()
	ts, err := time.Parse("2006-01-02 15:04:05", value)
	require.NoError(t, err)
	return &fakeClock{now: ts.UTC()}
}

func day(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", value)
	require.NoError(t, err)
	return d
}

func seedDirectory(t *testing.T, names ...string) *patient.MemoryDirectory {
	t.Helper()
	dir := patient.NewMemoryDirectory()
	for _, name := range names {
		require.NoError(t, dir.Add(context.Background(), &patient.Patient{Name: name}))
	}
	return dir
}

// startLedger builds a running ledger over a fresh memory store with
// patients P1 ("John Smith") and P2 ("Mary Jones").
func startLedger(t *testing.T, opts ...ledger.Option) *ledger.Ledger {
	t.Helper()
	l := ledger.New(memory.New(), seedDirectory(t, "John Smith", "Mary Jones"), opts...)
	require.NoError(t, l.Start(context.Background()))
	t.Cleanup(func() { _ = l.Stop() })
	return l
}

func TestCreateBill(t *testing.T) {
	ctx := context.Background()
	clock := clockAt(t, "2024-03-01 09:15:00")
	s := memory.New()
	l := ledger.New(s, seedDirectory(t, "John Smith"), ledger.WithClock(clock.Now))
	require.NoError(t, l.Start(ctx))

	b, err := l.CreateBill(ctx, "P1", "Consultation", day(t, "2024-03-15"))
	require.NoError(t, err)

	assert.Equal(t, "B1", b.ID)
	assert.Equal(t, "P1", b.PatientID)
	assert.Equal(t, bill.StatusUnpaid, b.Status)
	assert.Equal(t, "2024-03-01", b.IssueDate.Format("2006-01-02"))
	assert.Nil(t, b.DatePaid)
	assert.True(t, b.Total().IsZero())
	assert.True(t, b.AmountPaid.IsZero())

	items := b.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "Consultation", items[0].Description)
	assert.True(t, items[0].Amount.IsZero())

	due, ok := l.DueDate("B1")
	require.True(t, ok)
	assert.Equal(t, "2024-03-15", due.Format("2006-01-02"))

	stored, err := s.LoadBills(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "B1", stored[0].ID)
}

func TestCreateBillValidation(t *testing.T) {
	ctx := context.Background()
	clock := clockAt(t, "2024-03-01 09:15:00")
	l := startLedger(t, ledger.WithClock(clock.Now))
	future := day(t, "2024-03-15")

	tests := []struct {
		name        string
		patientID   string
		description string
		dueDate     time.Time
	}{
		{"empty patient id", "", "Consultation", future},
		{"blank patient id", "   ", "Consultation", future},
		{"empty description", "P1", "", future},
		{"blank description", "P1", "  \t ", future},
		{"zero due date", "P1", "Consultation", time.Time{}},
		{"past due date", "P1", "Consultation", day(t, "2024-02-28")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.CreateBill(ctx, tt.patientID, tt.description, tt.dueDate)
			assert.True(t, ledger.IsValidation(err), "want validation error, got %v", err)
		})
	}

	t.Run("due today is accepted", func(t *testing.T) {
		_, err := l.CreateBill(ctx, "P1", "Consultation", day(t, "2024-03-01"))
		assert.NoError(t, err)
	})

	t.Run("unknown patient", func(t *testing.T) {
		_, err := l.CreateBill(ctx, "P99", "Consultation", future)
		assert.ErrorIs(t, err, ledger.ErrPatientNotFound)
	})
}

func TestBillLifecycle(t *testing.T) {
	ctx := context.Background()
	clock := clockAt(t, "2024-03-01 09:15:00")
	l := startLedger(t, ledger.WithClock(clock.Now))

	b, err := l.CreateBill(ctx, "P1", "Broken arm", day(t, "2024-04-01"))
	require.NoError(t, err)

	_, err = l.AddItemToBill(ctx, b.ID, "X-ray", types.MustParseAmount("120.00"))
	require.NoError(t, err)
	_, err = l.AddItemToBill(ctx, b.ID, "Crutches", types.MustParseAmount("75.50"))
	require.NoError(t, err)

	got, err := l.GetBill(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "195.50", got.Total().String())
	assert.Equal(t, bill.StatusUnpaid, got.Status)

	p1, err := l.ProcessPayment(ctx, b.ID, types.MustParseAmount("100.00"), "cash")
	require.NoError(t, err)
	assert.Equal(t, payment.StatusCompleted, p1.Status)
	assert.Equal(t, clock.now, p1.PaidAt)

	got, err = l.GetBill(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, bill.StatusPartial, got.Status)
	assert.Equal(t, "100.00", got.AmountPaid.String())
	assert.Nil(t, got.DatePaid)

	clock.now = clock.now.Add(48 * time.Hour)
	p2, err := l.ProcessPayment(ctx, b.ID, types.MustParseAmount("95.50"), "card")
	require.NoError(t, err)

	got, err = l.GetBill(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, bill.StatusPaid, got.Status)
	assert.Equal(t, "195.50", got.AmountPaid.String())
	require.NotNil(t, got.DatePaid)
	assert.Equal(t, p2.PaidAt, *got.DatePaid)

	payments, err := l.ListPayments(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, p1.ID, payments[0].ID)
	assert.Equal(t, p2.ID, payments[1].ID)
}

func TestAddItemToBill(t *testing.T) {
	ctx := context.Background()
	l := startLedger(t)

	b, err := l.CreateBill(ctx, "P1", "Checkup", day(t, "2100-01-01"))
	require.NoError(t, err)

	t.Run("unknown bill", func(t *testing.T) {
		_, err := l.AddItemToBill(ctx, "B404", "X-ray", types.MustParseAmount("10.00"))
		assert.ErrorIs(t, err, ledger.ErrBillNotFound)
	})

	t.Run("empty description", func(t *testing.T) {
		_, err := l.AddItemToBill(ctx, b.ID, "  ", types.MustParseAmount("10.00"))
		assert.True(t, ledger.IsValidation(err))
	})

	t.Run("zero amount", func(t *testing.T) {
		_, err := l.AddItemToBill(ctx, b.ID, "X-ray", types.Money{})
		assert.True(t, ledger.IsValidation(err))
	})

	t.Run("negative amount", func(t *testing.T) {
		_, err := l.AddItemToBill(ctx, b.ID, "X-ray", types.Cents(-500))
		assert.True(t, ledger.IsValidation(err))
	})

	t.Run("paid bill keeps its status", func(t *testing.T) {
		_, err := l.AddItemToBill(ctx, b.ID, "Visit fee", types.MustParseAmount("50.00"))
		require.NoError(t, err)
		_, err = l.ProcessPayment(ctx, b.ID, types.MustParseAmount("50.00"), "cash")
		require.NoError(t, err)

		got, err := l.AddItemToBill(ctx, b.ID, "Late charge", types.MustParseAmount("25.00"))
		require.NoError(t, err)
		assert.Equal(t, bill.StatusPaid, got.Status)
		assert.Equal(t, "75.00", got.Total().String())
	})
}

func TestProcessPaymentValidation(t *testing.T) {
	ctx := context.Background()
	l := startLedger(t)

	b, err := l.CreateBill(ctx, "P1", "Checkup", day(t, "2100-01-01"))
	require.NoError(t, err)

	_, err = l.ProcessPayment(ctx, "B404", types.MustParseAmount("10.00"), "cash")
	assert.ErrorIs(t, err, ledger.ErrBillNotFound)

	_, err = l.ProcessPayment(ctx, b.ID, types.Money{}, "cash")
	assert.True(t, ledger.IsValidation(err))

	_, err = l.ProcessPayment(ctx, b.ID, types.Cents(-100), "cash")
	assert.True(t, ledger.IsValidation(err))

	_, err = l.ProcessPayment(ctx, b.ID, types.MustParseAmount("10.00"), "   ")
	assert.True(t, ledger.IsValidation(err))
}

func TestZeroTotalBillSettlesOnAnyPayment(t *testing.T) {
	ctx := context.Background()
	l := startLedger(t)

	b, err := l.CreateBill(ctx, "P1", "Records copy", day(t, "2100-01-01"))
	require.NoError(t, err)
	require.True(t, b.Total().IsZero())

	_, err = l.ProcessPayment(ctx, b.ID, types.MustParseAmount("5.00"), "cash")
	require.NoError(t, err)

	got, err := l.GetBill(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, bill.StatusPaid, got.Status)
	assert.NotNil(t, got.DatePaid)
}

func TestListBillsOrder(t *testing.T) {
	ctx := context.Background()
	l := startLedger(t)

	for i := 0; i < 12; i++ {
		_, err := l.CreateBill(ctx, "P1", "Visit", day(t, "2100-01-01"))
		require.NoError(t, err)
	}

	bills, err := l.ListBills(ctx)
	require.NoError(t, err)
	require.Len(t, bills, 12)

	// Numeric suffix order, not lexicographic: B2 before B10.
	want := []string{"B1", "B2", "B3", "B4", "B5", "B6", "B7", "B8", "B9", "B10", "B11", "B12"}
	for i, b := range bills {
		assert.Equal(t, want[i], b.ID)
	}

	again, err := l.ListBills(ctx)
	require.NoError(t, err)
	require.Len(t, again, 12)
	for i := range bills {
		assert.Equal(t, bills[i].ID, again[i].ID)
	}
}

func TestListBillsByPatient(t *testing.T) {
	ctx := context.Background()
	l := startLedger(t)

	_, err := l.CreateBill(ctx, "P1", "Visit", day(t, "2100-01-01"))
	require.NoError(t, err)
	_, err = l.CreateBill(ctx, "P2", "Visit", day(t, "2100-01-01"))
	require.NoError(t, err)
	_, err = l.CreateBill(ctx, "P1", "Follow-up", day(t, "2100-01-01"))
	require.NoError(t, err)

	bills, err := l.ListBillsByPatient(ctx, "P1")
	require.NoError(t, err)
	require.Len(t, bills, 2)
	assert.Equal(t, "B1", bills[0].ID)
	assert.Equal(t, "B3", bills[1].ID)

	none, err := l.ListBillsByPatient(ctx, "P99")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestListBillsByPaidExcludesPartial(t *testing.T) {
	ctx := context.Background()
	l := startLedger(t)

	unpaid, err := l.CreateBill(ctx, "P1", "Visit", day(t, "2100-01-01"))
	require.NoError(t, err)

	partial, err := l.CreateBill(ctx, "P1", "Visit", day(t, "2100-01-01"))
	require.NoError(t, err)
	_, err = l.AddItemToBill(ctx, partial.ID, "Lab work", types.MustParseAmount("100.00"))
	require.NoError(t, err)
	_, err = l.ProcessPayment(ctx, partial.ID, types.MustParseAmount("40.00"), "cash")
	require.NoError(t, err)

	paid, err := l.CreateBill(ctx, "P1", "Visit", day(t, "2100-01-01"))
	require.NoError(t, err)
	_, err = l.ProcessPayment(ctx, paid.ID, types.MustParseAmount("5.00"), "cash")
	require.NoError(t, err)

	paidBills, err := l.ListBillsByPaid(ctx, true)
	require.NoError(t, err)
	require.Len(t, paidBills, 1)
	assert.Equal(t, paid.ID, paidBills[0].ID)

	unpaidBills, err := l.ListBillsByPaid(ctx, false)
	require.NoError(t, err)
	require.Len(t, unpaidBills, 1)
	assert.Equal(t, unpaid.ID, unpaidBills[0].ID)
}

func TestListOverdueBills(t *testing.T) {
	ctx := context.Background()
	clock := clockAt(t, "2024-03-01 09:15:00")
	l := startLedger(t, ledger.WithClock(clock.Now))

	dueSoon, err := l.CreateBill(ctx, "P1", "Visit", day(t, "2024-03-01"))
	require.NoError(t, err)
	_, err = l.CreateBill(ctx, "P1", "Visit", day(t, "2024-03-20"))
	require.NoError(t, err)

	overdue, err := l.ListOverdueBills(ctx)
	require.NoError(t, err)
	assert.Empty(t, overdue, "a bill due today is not overdue")

	clock.now = clock.now.AddDate(0, 0, 3)
	overdue, err = l.ListOverdueBills(ctx)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, dueSoon.ID, overdue[0].ID)

	_, err = l.ProcessPayment(ctx, dueSoon.ID, types.MustParseAmount("1.00"), "cash")
	require.NoError(t, err)

	overdue, err = l.ListOverdueBills(ctx)
	require.NoError(t, err)
	assert.Empty(t, overdue, "a settled bill is never overdue")
}

func TestListPaymentsUnknownBill(t *testing.T) {
	ctx := context.Background()
	l := startLedger(t)

	_, err := l.ListPayments(ctx, "B404")
	assert.ErrorIs(t, err, ledger.ErrBillNotFound)
}

func TestRestartContinuesSequence(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	dir := seedDirectory(t, "John Smith")
	clock := clockAt(t, "2024-03-01 09:15:00")

	first := ledger.New(s, dir, ledger.WithClock(clock.Now))
	require.NoError(t, first.Start(ctx))

	b1, err := first.CreateBill(ctx, "P1", "Visit", day(t, "2024-03-10"))
	require.NoError(t, err)
	_, err = first.AddItemToBill(ctx, b1.ID, "Lab work", types.MustParseAmount("80.00"))
	require.NoError(t, err)
	_, err = first.ProcessPayment(ctx, b1.ID, types.MustParseAmount("30.00"), "cash")
	require.NoError(t, err)
	_, err = first.CreateBill(ctx, "P1", "Follow-up", day(t, "2024-03-10"))
	require.NoError(t, err)

	second := ledger.New(s, dir, ledger.WithClock(clock.Now))
	require.NoError(t, second.Start(ctx))
	t.Cleanup(func() { _ = second.Stop() })

	bills, err := second.ListBills(ctx)
	require.NoError(t, err)
	require.Len(t, bills, 2)

	restored, err := second.GetBill(ctx, b1.ID)
	require.NoError(t, err)
	assert.Equal(t, bill.StatusPartial, restored.Status)
	assert.Equal(t, "30.00", restored.AmountPaid.String())
	assert.Equal(t, "80.00", restored.Total().String())

	// Prior payments still count toward the balance.
	_, err = second.ProcessPayment(ctx, b1.ID, types.MustParseAmount("50.00"), "card")
	require.NoError(t, err)
	restored, err = second.GetBill(ctx, b1.ID)
	require.NoError(t, err)
	assert.Equal(t, bill.StatusPaid, restored.Status)

	// Due dates are session state and do not survive a restart.
	_, ok := second.DueDate(b1.ID)
	assert.False(t, ok)

	b3, err := second.CreateBill(ctx, "P1", "New visit", day(t, "2024-03-10"))
	require.NoError(t, err)
	assert.Equal(t, "B3", b3.ID)
}

func TestLifecycleGuards(t *testing.T) {
	ctx := context.Background()
	l := ledger.New(memory.New(), seedDirectory(t, "John Smith"))

	_, err := l.CreateBill(ctx, "P1", "Visit", day(t, "2100-01-01"))
	assert.ErrorIs(t, err, ledger.ErrNotStarted)
	_, err = l.ListBills(ctx)
	assert.ErrorIs(t, err, ledger.ErrNotStarted)

	require.NoError(t, l.Start(ctx))
	assert.ErrorIs(t, l.Start(ctx), ledger.ErrAlreadyStarted)

	require.NoError(t, l.Stop())
	_, err = l.ListBills(ctx)
	assert.ErrorIs(t, err, ledger.ErrNotStarted)
}

// failingStore wraps a working store and fails bill writes on demand.
type failingStore struct {
	store.Store
	failSaves bool
}

func (f *failingStore) SaveBills(ctx context.Context, bills []*bill.Bill) error {
	if f.failSaves {
		return errors.New("disk full")
	}
	return f.Store.SaveBills(ctx, bills)
}

func TestStoreErrorsPropagate(t *testing.T) {
	ctx := context.Background()
	fs := &failingStore{Store: memory.New()}
	l := ledger.New(fs, seedDirectory(t, "John Smith"))
	require.NoError(t, l.Start(ctx))
	t.Cleanup(func() { _ = l.Stop() })

	fs.failSaves = true
	_, err := l.CreateBill(ctx, "P1", "Visit", day(t, "2100-01-01"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

// recordingHook captures every event the ledger emits.
type recordingHook struct {
	inits         int
	shutdowns     int
	created       []string
	itemsAdded    []string
	payments      []string
	statusChanges []string
}

func (h *recordingHook) Name() string { return "recording" }

func (h *recordingHook) OnInit(context.Context, interface{}) error {
	h.inits++
	return nil
}

func (h *recordingHook) OnShutdown(context.Context) error {
	h.shutdowns++
	return nil
}

func (h *recordingHook) OnBillCreated(_ context.Context, b *bill.Bill) error {
	h.created = append(h.created, b.ID)
	return nil
}

func (h *recordingHook) OnItemAdded(_ context.Context, b *bill.Bill, item bill.Item) error {
	h.itemsAdded = append(h.itemsAdded, b.ID+":"+item.Description)
	return nil
}

func (h *recordingHook) OnBillStatusChanged(_ context.Context, b *bill.Bill, from, to bill.Status) error {
	h.statusChanges = append(h.statusChanges, b.ID+":"+string(from)+">"+string(to))
	return nil
}

func (h *recordingHook) OnPaymentRecorded(_ context.Context, p *payment.Payment) error {
	h.payments = append(h.payments, p.BillID)
	return nil
}

func TestHookEmissions(t *testing.T) {
	ctx := context.Background()
	rec := &recordingHook{}
	l := ledger.New(memory.New(), seedDirectory(t, "John Smith"), ledger.WithHook(rec))
	require.NoError(t, l.Start(ctx))

	b, err := l.CreateBill(ctx, "P1", "Visit", day(t, "2100-01-01"))
	require.NoError(t, err)
	_, err = l.AddItemToBill(ctx, b.ID, "Lab work", types.MustParseAmount("100.00"))
	require.NoError(t, err)
	_, err = l.ProcessPayment(ctx, b.ID, types.MustParseAmount("40.00"), "cash")
	require.NoError(t, err)
	_, err = l.ProcessPayment(ctx, b.ID, types.MustParseAmount("60.00"), "cash")
	require.NoError(t, err)
	require.NoError(t, l.Stop())

	assert.Equal(t, 1, rec.inits)
	assert.Equal(t, 1, rec.shutdowns)
	assert.Equal(t, []string{"B1"}, rec.created)
	assert.Equal(t, []string{"B1:Lab work"}, rec.itemsAdded)
	assert.Equal(t, []string{"B1", "B1"}, rec.payments)
	assert.Equal(t, []string{"B1:UNPAID>PARTIAL", "B1:PARTIAL>PAID"}, rec.statusChanges)
}
