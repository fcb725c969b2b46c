package ledger

import "github.com/careledger/ledger/id"

// Sequence is the monotonic counter behind sequential identifiers.
type Sequence = id.Sequence

// Identifier prefixes used by ledger entities.
const (
	PrefixBill    = id.PrefixBill
	PrefixPatient = id.PrefixPatient
	PrefixPayment = id.PrefixPayment
)

// Re-export identifier constructors.
var (
	NewSequence  = id.NewSequence
	NewPaymentID = id.NewPaymentID
)
