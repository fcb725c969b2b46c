// Package audit bridges ledger lifecycle events to an audit trail backend.
//
// It defines a local Recorder interface so the package does not depend on
// any particular backend. Callers inject a RecorderFunc adapter at wiring
// time; NewSlogRecorder ships as the default sink.
package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/careledger/ledger/bill"
	"github.com/careledger/ledger/hook"
	"github.com/careledger/ledger/payment"
)

// Compile-time interface checks.
var (
	_ hook.Hook                = (*Extension)(nil)
	_ hook.OnInit              = (*Extension)(nil)
	_ hook.OnShutdown          = (*Extension)(nil)
	_ hook.OnBillCreated       = (*Extension)(nil)
	_ hook.OnItemAdded         = (*Extension)(nil)
	_ hook.OnBillStatusChanged = (*Extension)(nil)
	_ hook.OnPaymentRecorded   = (*Extension)(nil)
)

// Event is one entry in the audit trail.
type Event struct {
	ID         string         `json:"id"`
	Time       time.Time      `json:"time"`
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// Recorder is the interface that audit backends must implement.
type Recorder interface {
	Record(ctx context.Context, event *Event) error
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *Event) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *Event) error {
	return f(ctx, event)
}

// NewSlogRecorder returns a Recorder that writes events to the given
// logger at Info level.
func NewSlogRecorder(logger *slog.Logger) Recorder {
	return RecorderFunc(func(ctx context.Context, event *Event) error {
		logger.InfoContext(ctx, "audit event",
			"id", event.ID,
			"action", event.Action,
			"resource", event.Resource,
			"resource_id", event.ResourceID,
			"outcome", event.Outcome,
			"severity", event.Severity,
			"metadata", event.Metadata,
		)
		return nil
	})
}

// Extension bridges ledger lifecycle events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
	now      func() time.Time
}

// New creates an Extension that emits audit events through the provided
// Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements hook.Hook.
func (e *Extension) Name() string { return "audit" }

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit implements hook.OnInit.
func (e *Extension) OnInit(ctx context.Context, _ interface{}) error {
	return e.record(ctx, ActionLedgerStarted, SeverityInfo, OutcomeSuccess,
		ResourceLedger, "", nil)
}

// OnShutdown implements hook.OnShutdown.
func (e *Extension) OnShutdown(ctx context.Context) error {
	return e.record(ctx, ActionLedgerStopped, SeverityInfo, OutcomeSuccess,
		ResourceLedger, "", nil)
}

// ──────────────────────────────────────────────────
// Bill lifecycle hooks
// ──────────────────────────────────────────────────

// OnBillCreated implements hook.OnBillCreated.
func (e *Extension) OnBillCreated(ctx context.Context, b *bill.Bill) error {
	return e.record(ctx, ActionBillCreated, SeverityInfo, OutcomeSuccess,
		ResourceBill, b.ID, nil,
		"patient_id", b.PatientID,
		"issue_date", b.IssueDate.Format("2006-01-02"),
	)
}

// OnItemAdded implements hook.OnItemAdded.
func (e *Extension) OnItemAdded(ctx context.Context, b *bill.Bill, item bill.Item) error {
	return e.record(ctx, ActionItemAdded, SeverityInfo, OutcomeSuccess,
		ResourceBill, b.ID, nil,
		"description", item.Description,
		"amount", item.Amount.String(),
		"total", b.Total().String(),
	)
}

// OnBillStatusChanged implements hook.OnBillStatusChanged.
func (e *Extension) OnBillStatusChanged(ctx context.Context, b *bill.Bill, from, to bill.Status) error {
	return e.record(ctx, ActionBillStatusChanged, SeverityInfo, OutcomeSuccess,
		ResourceBill, b.ID, nil,
		"from", string(from),
		"to", string(to),
		"amount_paid", b.AmountPaid.String(),
	)
}

// ──────────────────────────────────────────────────
// Payment hooks
// ──────────────────────────────────────────────────

// OnPaymentRecorded implements hook.OnPaymentRecorded.
func (e *Extension) OnPaymentRecorded(ctx context.Context, p *payment.Payment) error {
	return e.record(ctx, ActionPaymentRecorded, SeverityInfo, OutcomeSuccess,
		ResourcePayment, p.ID, nil,
		"bill_id", p.BillID,
		"amount", p.Amount.String(),
		"method", p.Method,
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &Event{
		ID:         uuid.NewString(),
		Time:       e.now().UTC(),
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
