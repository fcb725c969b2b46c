package audit

// Action constants for audit events.
const (
	// Bill actions
	ActionBillCreated       = "bill.created"
	ActionItemAdded         = "bill.item_added"
	ActionBillStatusChanged = "bill.status_changed"

	// Payment actions
	ActionPaymentRecorded = "payment.recorded"

	// Lifecycle actions
	ActionLedgerStarted = "ledger.started"
	ActionLedgerStopped = "ledger.stopped"
)

// Resource constants for audit events.
const (
	ResourceBill    = "bill"
	ResourcePayment = "payment"
	ResourceLedger  = "ledger"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
