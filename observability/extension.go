// Package observability provides a metrics hook for Ledger that records
// lifecycle event counts against a caller-supplied MetricFactory.
package observability

import (
	"context"

	"github.com/careledger/ledger/bill"
	"github.com/careledger/ledger/hook"
	"github.com/careledger/ledger/payment"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ hook.Hook                = (*MetricsExtension)(nil)
	_ hook.OnInit              = (*MetricsExtension)(nil)
	_ hook.OnBillCreated       = (*MetricsExtension)(nil)
	_ hook.OnItemAdded         = (*MetricsExtension)(nil)
	_ hook.OnBillStatusChanged = (*MetricsExtension)(nil)
	_ hook.OnPaymentRecorded   = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records billing lifecycle metrics. Register it with
// ledger.WithHook to track activity in whatever metrics backend the host
// application already runs.
type MetricsExtension struct {
	factory MetricFactory

	// Bill metrics
	BillsCreated Counter
	ItemsAdded   Counter
	BillsSettled Counter

	// Payment metrics
	PaymentsRecorded Counter
	PaymentAmount    Histogram
	ItemAmount       Histogram
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Bill metrics
		BillsCreated: factory.Counter("ledger.bill.created"),
		ItemsAdded:   factory.Counter("ledger.bill.items_added"),
		BillsSettled: factory.Counter("ledger.bill.settled"),

		// Payment metrics
		PaymentsRecorded: factory.Counter("ledger.payment.recorded"),
		PaymentAmount:    factory.Histogram("ledger.payment.amount"),
		ItemAmount:       factory.Histogram("ledger.bill.item_amount"),
	}
}

// Name implements hook.Hook.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements hook.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	// No initialization needed
	return nil
}

// OnBillCreated implements hook.OnBillCreated.
func (m *MetricsExtension) OnBillCreated(_ context.Context, _ *bill.Bill) error {
	m.BillsCreated.Inc()
	return nil
}

// OnItemAdded implements hook.OnItemAdded.
func (m *MetricsExtension) OnItemAdded(_ context.Context, _ *bill.Bill, item bill.Item) error {
	m.ItemsAdded.Inc()
	m.ItemAmount.Observe(float64(item.Amount.Cents) / 100)
	return nil
}

// OnBillStatusChanged implements hook.OnBillStatusChanged.
func (m *MetricsExtension) OnBillStatusChanged(_ context.Context, _ *bill.Bill, _, to bill.Status) error {
	if to == bill.StatusPaid {
		m.BillsSettled.Inc()
	}
	return nil
}

// OnPaymentRecorded implements hook.OnPaymentRecorded.
func (m *MetricsExtension) OnPaymentRecorded(_ context.Context, p *payment.Payment) error {
	m.PaymentsRecorded.Inc()
	m.PaymentAmount.Observe(float64(p.Amount.Cents) / 100)
	return nil
}
