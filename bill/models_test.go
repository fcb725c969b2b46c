package bill

import (
	"testing"
	"time"

	"github.com/careledger/ledger/types"
)

var (
	issued = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	paidAt = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Status
		wantErr bool
	}{
		{"Unpaid", "UNPAID", StatusUnpaid, false},
		{"Partial", "PARTIAL", StatusPartial, false},
		{"Paid", "PAID", StatusPaid, false},
		{"Refunded", "REFUNDED", StatusRefunded, false},
		{"Lowercase", "paid", "", true},
		{"Unknown", "VOID", "", true},
		{"Empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStatus(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseStatus(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseStatus(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name     string
		from, to Status
		want     bool
	}{
		{"UnpaidToPartial", StatusUnpaid, StatusPartial, true},
		{"UnpaidToPaid", StatusUnpaid, StatusPaid, true},
		{"PartialToPaid", StatusPartial, StatusPaid, true},
		{"SameStatus", StatusPartial, StatusPartial, true},
		{"PaidToPartial", StatusPaid, StatusPartial, false},
		{"PaidToUnpaid", StatusPaid, StatusUnpaid, false},
		{"PartialToUnpaid", StatusPartial, StatusUnpaid, false},
		{"IntoRefunded", StatusPaid, StatusRefunded, false},
		{"OutOfRefunded", StatusRefunded, StatusUnpaid, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestNewBill(t *testing.T) {
	b := New("B1", "P100", issued)

	if b.Status != StatusUnpaid {
		t.Errorf("Status = %s, want UNPAID", b.Status)
	}
	if !b.Total().IsZero() {
		t.Errorf("Total() = %v, want zero", b.Total())
	}
	if len(b.Items()) != 0 {
		t.Errorf("Items() = %v, want empty", b.Items())
	}
	if b.DatePaid != nil {
		t.Errorf("DatePaid = %v, want nil", b.DatePaid)
	}
}

func TestAddItemKeepsTotalDerived(t *testing.T) {
	b := New("B1", "P100", issued)
	b.AddItem("Consultation", types.Cents(0))
	b.AddItem("X-Ray", types.Cents(12000))
	b.AddItem("Lab work", types.Cents(7550))

	if got := b.Total(); !got.Equal(types.Cents(19550)) {
		t.Errorf("Total() = %v, want 195.50", got)
	}
	if got := len(b.Items()); got != 3 {
		t.Errorf("len(Items()) = %d, want 3", got)
	}
}

func TestItemsReturnsCopy(t *testing.T) {
	b := New("B1", "P100", issued)
	b.AddItem("Consultation", types.Cents(5000))

	view := b.Items()
	view[0].Description = "tampered"
	view[0].Amount = types.Cents(1)

	got := b.Items()
	if got[0].Description != "Consultation" || !got[0].Amount.Equal(types.Cents(5000)) {
		t.Errorf("mutating the returned slice changed the bill: %+v", got[0])
	}
	if !b.Total().Equal(types.Cents(5000)) {
		t.Errorf("Total() = %v, want 50.00", b.Total())
	}
}

func TestApplyPayments(t *testing.T) {
	tests := []struct {
		name       string
		total      int64
		cumulative int64
		wantStatus Status
		wantPaidAt bool
	}{
		{"NothingPaid", 30000, 0, StatusUnpaid, false},
		{"PartialPayment", 30000, 10000, StatusPartial, false},
		{"ExactPayment", 30000, 30000, StatusPaid, true},
		{"Overpayment", 30000, 35000, StatusPaid, true},
		{"ZeroTotalPositivePayment", 0, 500, StatusPaid, true},
		{"ZeroTotalNothingPaid", 0, 0, StatusUnpaid, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New("B1", "P100", issued)
			if tt.total > 0 {
				b.AddItem("Treatment", types.Cents(tt.total))
			}

			b.ApplyPayments(types.Cents(tt.cumulative), paidAt)

			if b.Status != tt.wantStatus {
				t.Errorf("Status = %s, want %s", b.Status, tt.wantStatus)
			}
			if !b.AmountPaid.Equal(types.Cents(tt.cumulative)) {
				t.Errorf("AmountPaid = %v, want %d cents", b.AmountPaid, tt.cumulative)
			}
			if (b.DatePaid != nil) != tt.wantPaidAt {
				t.Errorf("DatePaid = %v, wantPaidAt %v", b.DatePaid, tt.wantPaidAt)
			}
			if tt.wantPaidAt && !b.DatePaid.Equal(paidAt) {
				t.Errorf("DatePaid = %v, want %v", b.DatePaid, paidAt)
			}
		})
	}
}

func TestApplyPaymentsAccumulates(t *testing.T) {
	b := New("B1", "P100", issued)
	b.AddItem("Surgery", types.Cents(30000))

	b.ApplyPayments(types.Cents(10000), paidAt)
	if b.Status != StatusPartial {
		t.Fatalf("after 100.00 of 300.00: Status = %s, want PARTIAL", b.Status)
	}

	later := paidAt.Add(48 * time.Hour)
	b.ApplyPayments(types.Cents(30000), later)
	if b.Status != StatusPaid {
		t.Fatalf("after 300.00 of 300.00: Status = %s, want PAID", b.Status)
	}
	if b.DatePaid == nil || !b.DatePaid.Equal(later) {
		t.Errorf("DatePaid = %v, want %v", b.DatePaid, later)
	}
	if !b.AmountPaid.Equal(types.Cents(30000)) {
		t.Errorf("AmountPaid = %v, want 300.00", b.AmountPaid)
	}
}

func TestApplyPaymentsNeverDowngrades(t *testing.T) {
	b := New("B1", "P100", issued)
	b.AddItem("Surgery", types.Cents(30000))
	b.ApplyPayments(types.Cents(30000), paidAt)

	if b.Status != StatusPaid {
		t.Fatalf("setup: Status = %s, want PAID", b.Status)
	}

	// A smaller cumulative cannot happen through the engine, but the model
	// still refuses to walk the status back.
	b.ApplyPayments(types.Cents(100), paidAt.Add(time.Hour))

	if b.Status != StatusPaid {
		t.Errorf("Status = %s, want PAID", b.Status)
	}
	if b.DatePaid == nil || !b.DatePaid.Equal(paidAt) {
		t.Errorf("DatePaid = %v, want original %v", b.DatePaid, paidAt)
	}
}

func TestApplyPaymentsKeepsFirstDatePaid(t *testing.T) {
	b := New("B1", "P100", issued)
	b.AddItem("Visit", types.Cents(100))
	b.ApplyPayments(types.Cents(100), paidAt)

	b.ApplyPayments(types.Cents(200), paidAt.Add(time.Hour))

	if b.DatePaid == nil || !b.DatePaid.Equal(paidAt) {
		t.Errorf("DatePaid = %v, want first paid time %v", b.DatePaid, paidAt)
	}
}

func TestRestoreRecomputesTotal(t *testing.T) {
	dp := paidAt
	b := Restore("B9", "P2", issued, &dp, StatusPaid, types.Cents(15000), []Item{
		{Description: "Consultation", Amount: types.Cents(5000)},
		{Description: "Medication", Amount: types.Cents(10000)},
	})

	if !b.Total().Equal(types.Cents(15000)) {
		t.Errorf("Total() = %v, want 150.00", b.Total())
	}
	if b.Status != StatusPaid {
		t.Errorf("Status = %s, want PAID", b.Status)
	}
	if b.DatePaid == nil || !b.DatePaid.Equal(paidAt) {
		t.Errorf("DatePaid = %v, want %v", b.DatePaid, paidAt)
	}
	if got := len(b.Items()); got != 2 {
		t.Errorf("len(Items()) = %d, want 2", got)
	}
}
