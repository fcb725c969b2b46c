package bill

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/careledger/ledger/types"
)

// Status is the lifecycle state of a bill. The uppercase literals are the
// persisted wire values.
type Status string

const (
	StatusUnpaid   Status = "UNPAID"
	StatusPartial  Status = "PARTIAL"
	StatusPaid     Status = "PAID"
	StatusRefunded Status = "REFUNDED"
)

// ParseStatus validates a persisted status literal.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusUnpaid:
		return StatusUnpaid, nil
	case StatusPartial:
		return StatusPartial, nil
	case StatusPaid:
		return StatusPaid, nil
	case StatusRefunded:
		return StatusRefunded, nil
	default:
		return "", fmt.Errorf("invalid bill status: %q", s)
	}
}

// CanTransition reports whether a bill may move from one status to another.
// Payments only ever advance a bill: UNPAID to PARTIAL or PAID, PARTIAL to
// PAID. REFUNDED is accepted from storage but nothing transitions into or
// out of it here.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	switch from {
	case StatusUnpaid:
		return to == StatusPartial || to == StatusPaid
	case StatusPartial:
		return to == StatusPaid
	}
	return false
}

// Item is a single charge on a bill. Items are append-only; once added they
// are never edited or removed.
type Item struct {
	Description string      `json:"description"`
	Amount      types.Money `json:"amount"`
}

// Bill is a patient's running account: an append-only list of charge items
// plus payment state. The total is derived from the items and kept current
// by AddItem. The zero value is not usable; construct with New or Restore.
type Bill struct {
	ID         string
	PatientID  string
	IssueDate  time.Time
	DatePaid   *time.Time
	Status     Status
	AmountPaid types.Money

	items []Item
	total types.Money
}

// New creates a fresh unpaid bill with no items.
func New(id, patientID string, issueDate time.Time) *Bill {
	return &Bill{
		ID:        id,
		PatientID: patientID,
		IssueDate: issueDate,
		Status:    StatusUnpaid,
	}
}

// Restore rebuilds a bill from persisted state. The total is recomputed
// from the items rather than trusted from storage, so the derived-total
// invariant holds even for hand-edited files. Stores use this when loading.
func Restore(id, patientID string, issueDate time.Time, datePaid *time.Time, status Status, amountPaid types.Money, items []Item) *Bill {
	b := &Bill{
		ID:         id,
		PatientID:  patientID,
		IssueDate:  issueDate,
		DatePaid:   datePaid,
		Status:     status,
		AmountPaid: amountPaid,
	}
	for _, it := range items {
		b.AddItem(it.Description, it.Amount)
	}
	return b
}

// AddItem appends a charge and updates the derived total. Amount
// validation is the caller's concern: the opening description line on a
// fresh bill is a zero-amount item.
func (b *Bill) AddItem(description string, amount types.Money) {
	b.items = append(b.items, Item{Description: description, Amount: amount})
	b.total = b.total.Add(amount)
}

// Items returns a copy of the bill's items.
func (b *Bill) Items() []Item {
	out := make([]Item, len(b.items))
	copy(out, b.items)
	return out
}

// Total returns the sum of all item amounts.
func (b *Bill) Total() types.Money { return b.total }

// IsPaid reports whether the bill is fully paid.
func (b *Bill) IsPaid() bool { return b.Status == StatusPaid }

// ApplyPayments recomputes payment state from the cumulative amount of
// completed payments. A zero-total bill becomes PAID on any positive
// payment. The status never moves backwards: a cumulative amount smaller
// than what an earlier status implied leaves the status unchanged.
func (b *Bill) ApplyPayments(cumulative types.Money, at time.Time) {
	b.AmountPaid = cumulative

	next := b.Status
	switch {
	case b.total.IsZero():
		if cumulative.IsPositive() {
			next = StatusPaid
		}
	case cumulative.GreaterThanOrEqual(b.total):
		next = StatusPaid
	case cumulative.IsPositive():
		next = StatusPartial
	}

	if next == b.Status || !CanTransition(b.Status, next) {
		return
	}
	b.Status = next
	if next == StatusPaid && b.DatePaid == nil {
		paidAt := at
		b.DatePaid = &paidAt
	}
}

// MarshalJSON exposes the derived total and the item list alongside the
// exported fields.
func (b *Bill) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID          string      `json:"id"`
		PatientID   string      `json:"patient_id"`
		IssueDate   time.Time   `json:"issue_date"`
		DatePaid    *time.Time  `json:"date_paid,omitempty"`
		Status      Status      `json:"status"`
		TotalAmount types.Money `json:"total_amount"`
		AmountPaid  types.Money `json:"amount_paid"`
		Items       []Item      `json:"items"`
	}{b.ID, b.PatientID, b.IssueDate, b.DatePaid, b.Status, b.total, b.AmountPaid, b.Items()})
}
