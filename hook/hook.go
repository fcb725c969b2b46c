// Package hook provides an extensible hook system for the ledger.
// Hooks observe lifecycle events such as bills being created and
// payments being recorded.
package hook

import (
	"context"

	"github.com/careledger/ledger/bill"
	"github.com/careledger/ledger/payment"
)

// Hook is the base interface that all hooks must implement.
type Hook interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the ledger starts. The ledger passes itself so
// hooks can hold a reference; it is untyped to avoid an import cycle.
type OnInit interface {
	Hook
	OnInit(ctx context.Context, l interface{}) error
}

// OnShutdown is called when the ledger is shutting down.
type OnShutdown interface {
	Hook
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Bill lifecycle hooks
// ──────────────────────────────────────────────────

// OnBillCreated is called when a new bill is opened.
type OnBillCreated interface {
	Hook
	OnBillCreated(ctx context.Context, b *bill.Bill) error
}

// OnItemAdded is called when a charge is added to a bill.
type OnItemAdded interface {
	Hook
	OnItemAdded(ctx context.Context, b *bill.Bill, item bill.Item) error
}

// OnBillStatusChanged is called when a payment moves a bill between
// statuses.
type OnBillStatusChanged interface {
	Hook
	OnBillStatusChanged(ctx context.Context, b *bill.Bill, from, to bill.Status) error
}

// ──────────────────────────────────────────────────
// Payment hooks
// ──────────────────────────────────────────────────

// OnPaymentRecorded is called when a payment is recorded against a bill.
type OnPaymentRecorded interface {
	Hook
	OnPaymentRecorded(ctx context.Context, p *payment.Payment) error
}
