// Package ledger provides a patient billing ledger for Go applications.
//
// Ledger is designed as a library, not a service. Import it directly into your
// application — a clinic desktop front end or a practice-management tool — and
// drive it through plain method calls. It provides:
//
//   - Bills as append-only lists of charge items with derived totals
//   - Payment processing with automatic status transitions
//   - Human-readable flat-file persistence with atomic rewrites
//   - An embedded SQLite driver for installs that outgrow text files
//   - Lifecycle hooks for audit trails and custom integrations
//   - Statement export to PDF and plain text
//
// # Quick Start
//
// Create a ledger instance with your preferred store and a patient directory:
//
//	import (
//	    "github.com/careledger/ledger"
//	    "github.com/careledger/ledger/patient"
//	    "github.com/careledger/ledger/store/flatfile"
//	)
//
//	store := flatfile.New("/var/lib/careledger")
//	patients, err := patient.OpenFileDirectory("/var/lib/careledger/patients.txt")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	l := ledger.New(store, patients)
//	if err := l.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer l.Stop()
//
// Open a bill, add charges, take a payment:
//
//	b, err := l.CreateBill(ctx, "P1", "Broken arm", dueDate)
//	b, err = l.AddItemToBill(ctx, b.ID, "X-ray", ledger.MustParseAmount("120.00"))
//	p, err := l.ProcessPayment(ctx, b.ID, ledger.MustParseAmount("50.00"), "cash")
//
// # Core Concepts
//
// A bill is a patient's running account. Items are append-only: charges are
// added, never edited or removed, and the bill total is always the sum of its
// items. The description given to CreateBill becomes the bill's first item at
// zero amount, so a freshly opened bill reads like its own header line.
//
// Status is driven entirely by payments. A bill moves from UNPAID through
// PARTIAL to PAID as the cumulative amount paid grows, and never moves backward;
// there is no refund operation. A zero-total bill settles on any positive
// payment.
//
// All monetary values use integer cent arithmetic via the Money type. Amounts
// parse from and render to plain two-decimal strings ("195.50"); currency
// designation is outside the ledger's scope.
//
// # Persistence
//
// Stores hold whole collections: every mutation rewrites the affected files,
// using a temp-file-then-rename sequence so a crash never leaves a half-written
// ledger behind. The flat-file driver keeps bills.txt and payments.txt in a
// line-per-record format that is diffable and greppable; rows that cannot be
// decoded are skipped with a warning rather than poisoning the load.
//
// # Identifiers
//
// Bills use short sequential identifiers (B1, B2, …) issued by a monotonic
// Sequence that is reseeded from the store on startup, so numbering continues
// across sessions. Payments use TypeID-based identifiers:
//
//	pay_01h2xcejqtf2nbrexx3vqjhp41
//
// TypeIDs are K-sortable and globally unique, which keeps payment records
// mergeable across ledgers without coordination.
package ledger
