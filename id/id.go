// Package id provides identifier generation for ledger entities.
//
// Bills use short sequential identifiers ("B1", "B2", …) issued by a
// Sequence: an explicit monotonic counter whose watermark is seeded from
// the identifiers already present in the backing store, so numbering
// continues across restarts and never regresses. Payments use TypeID-based
// identifiers ("pay_…"): K-sortable, globally unique and URL-safe, so they
// need no watermark at all.
package id

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"go.jetify.com/typeid/v2"
)

// PrefixBill is the prefix carried by sequential bill identifiers.
const PrefixBill = "B"

// PrefixPatient is the prefix carried by sequential patient identifiers.
const PrefixPatient = "P"

// PrefixPayment is the TypeID prefix of payment identifiers.
const PrefixPayment = "pay"

// Sequence issues prefix+number identifiers from a monotonic counter.
// Observe feeds it identifiers seen during load; Next always returns a
// number above everything observed or issued so far.
type Sequence struct {
	prefix string

	mu   sync.Mutex
	last uint64
}

// NewSequence creates a Sequence issuing identifiers with the given prefix.
func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: prefix}
}

// Observe advances the watermark past the numeric suffix of raw, provided
// raw carries the sequence prefix followed by a parsable number. Anything
// else is ignored, so foreign identifiers in a shared file are harmless.
func (s *Sequence) Observe(raw string) {
	n, ok := Number(raw, s.prefix)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if n > s.last {
		s.last = n
	}
}

// Next returns a fresh identifier one past the highest number seen so far.
func (s *Sequence) Next() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last++
	return s.prefix + strconv.FormatUint(s.last, 10)
}

// Last reports the current watermark. Zero means nothing has been observed
// or issued yet.
func (s *Sequence) Last() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Number extracts the numeric suffix from a sequential identifier such as
// "B42". The second return is false when raw does not carry the prefix or
// the suffix is not a plain decimal number.
func Number(raw, prefix string) (uint64, bool) {
	rest, ok := strings.CutPrefix(raw, prefix)
	if !ok || rest == "" {
		return 0, false
	}
	n, err := strconv.ParseUint(rest, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// NewPaymentID generates a new globally unique payment identifier in the
// form "pay_01h2xcejqtf2nbrexx3vqjhp41". It panics only if the prefix
// constant itself is invalid, which is a programming error.
func NewPaymentID() string {
	tid, err := typeid.Generate(PrefixPayment)
	if err != nil {
		panic(fmt.Sprintf("id: invalid prefix %q: %v", PrefixPayment, err))
	}
	return tid.String()
}

// ParsePaymentID validates that s is a well-formed TypeID with the payment
// prefix and returns its canonical form. Identifiers from older ledgers do
// not follow this shape; stores must not reject them, so this is a helper
// for new input only.
func ParsePaymentID(s string) (string, error) {
	if s == "" {
		return "", fmt.Errorf("id: parse %q: empty string", s)
	}

	tid, err := typeid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("id: parse %q: %w", s, err)
	}
	if tid.Prefix() != PrefixPayment {
		return "", fmt.Errorf("id: expected prefix %q, got %q", PrefixPayment, tid.Prefix())
	}
	return tid.String(), nil
}
