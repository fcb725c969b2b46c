package payment

import (
	"fmt"
	"time"

	"github.com/careledger/ledger/types"
)

// Status is the settlement state of a payment. The engine only records
// COMPLETED payments; the remaining values are accepted from storage so a
// file written by a future gateway integration still loads.
type Status string

const (
	StatusCompleted Status = "COMPLETED"
	StatusPending   Status = "PENDING"
	StatusFailed    Status = "FAILED"
	StatusRefunded  Status = "REFUNDED"
)

// ParseStatus validates a persisted status literal.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusCompleted:
		return StatusCompleted, nil
	case StatusPending:
		return StatusPending, nil
	case StatusFailed:
		return StatusFailed, nil
	case StatusRefunded:
		return StatusRefunded, nil
	default:
		return "", fmt.Errorf("invalid payment status: %q", s)
	}
}

// Payment records money received against a bill. Payments are immutable
// once recorded; there is no reversal operation.
type Payment struct {
	ID     string      `json:"id"`
	BillID string      `json:"bill_id"`
	Amount types.Money `json:"amount"`
	PaidAt time.Time   `json:"paid_at"`
	Method string      `json:"method"`
	Status Status      `json:"status"`
}

// CountsTowardBalance reports whether the payment reduces what the
// patient owes. Only settled payments do.
func (p *Payment) CountsTowardBalance() bool {
	return p.Status == StatusCompleted
}
