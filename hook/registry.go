package hook

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/careledger/ledger/bill"
	"github.com/careledger/ledger/payment"
)

// Registry manages all registered hooks and provides efficient dispatch.
// It uses type-cached discovery so emitting an event only touches the
// hooks that implement it.
type Registry struct {
	mu     sync.RWMutex
	hooks  []Hook
	logger *slog.Logger

	// Type-cached hook lists for efficient dispatch
	onInit              []OnInit
	onShutdown          []OnShutdown
	onBillCreated       []OnBillCreated
	onItemAdded         []OnItemAdded
	onBillStatusChanged []OnBillStatusChanged
	onPaymentRecorded   []OnPaymentRecorded
}

// NewRegistry creates a new hook registry.
func NewRegistry() *Registry {
	return &Registry{
		logger: slog.Default(),
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// Register adds a hook to the registry and caches its interfaces.
func (r *Registry) Register(h Hook) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check for duplicate
	for _, existing := range r.hooks {
		if existing.Name() == h.Name() {
			return fmt.Errorf("hook: duplicate registration: %s", h.Name())
		}
	}

	r.hooks = append(r.hooks, h)

	// Type-switch to cache interfaces
	if v, ok := h.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := h.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := h.(OnBillCreated); ok {
		r.onBillCreated = append(r.onBillCreated, v)
	}
	if v, ok := h.(OnItemAdded); ok {
		r.onItemAdded = append(r.onItemAdded, v)
	}
	if v, ok := h.(OnBillStatusChanged); ok {
		r.onBillStatusChanged = append(r.onBillStatusChanged, v)
	}
	if v, ok := h.(OnPaymentRecorded); ok {
		r.onPaymentRecorded = append(r.onPaymentRecorded, v)
	}

	r.logger.Info("hook registered",
		"name", h.Name(),
		"interfaces", r.getImplementedInterfaces(h),
	)

	return nil
}

// getImplementedInterfaces returns a list of interfaces implemented by the hook.
func (r *Registry) getImplementedInterfaces(h Hook) []string {
	var interfaces []string
	v := reflect.TypeOf(h)

	checkInterface := func(iface reflect.Type, name string) {
		if v.Implements(iface) {
			interfaces = append(interfaces, name)
		}
	}

	checkInterface(reflect.TypeOf((*OnInit)(nil)).Elem(), "OnInit")
	checkInterface(reflect.TypeOf((*OnShutdown)(nil)).Elem(), "OnShutdown")
	checkInterface(reflect.TypeOf((*OnBillCreated)(nil)).Elem(), "OnBillCreated")
	checkInterface(reflect.TypeOf((*OnItemAdded)(nil)).Elem(), "OnItemAdded")
	checkInterface(reflect.TypeOf((*OnBillStatusChanged)(nil)).Elem(), "OnBillStatusChanged")
	checkInterface(reflect.TypeOf((*OnPaymentRecorded)(nil)).Elem(), "OnPaymentRecorded")

	return interfaces
}

// Get returns a hook by name.
func (r *Registry) Get(name string) Hook {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, h := range r.hooks {
		if h.Name() == name {
			return h
		}
	}
	return nil
}

// List returns all registered hooks.
func (r *Registry) List() []Hook {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Hook, len(r.hooks))
	copy(result, r.hooks)
	return result
}

// Count returns the number of registered hooks.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.hooks)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// EmitInit calls OnInit for all hooks that implement it.
func (r *Registry) EmitInit(ctx context.Context, ledger interface{}) {
	r.mu.RLock()
	hooks := r.onInit
	r.mu.RUnlock()

	for _, h := range hooks {
		if err := r.callWithTimeout(ctx, h.Name(), func() error {
			return h.OnInit(ctx, ledger)
		}); err != nil {
			r.logger.Warn("hook OnInit failed",
				"hook", h.Name(),
				"error", err,
			)
		}
	}
}

// EmitShutdown calls OnShutdown for all hooks that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	hooks := r.onShutdown
	r.mu.RUnlock()

	for _, h := range hooks {
		if err := r.callWithTimeout(ctx, h.Name(), func() error {
			return h.OnShutdown(ctx)
		}); err != nil {
			r.logger.Warn("hook OnShutdown failed",
				"hook", h.Name(),
				"error", err,
			)
		}
	}
}

// EmitBillCreated emits a bill created event.
func (r *Registry) EmitBillCreated(ctx context.Context, b *bill.Bill) {
	r.mu.RLock()
	hooks := r.onBillCreated
	r.mu.RUnlock()

	for _, h := range hooks {
		if err := r.callWithTimeout(ctx, h.Name(), func() error {
			return h.OnBillCreated(ctx, b)
		}); err != nil {
			r.logger.Warn("hook OnBillCreated failed",
				"hook", h.Name(),
				"error", err,
			)
		}
	}
}

// EmitItemAdded emits an item added event.
func (r *Registry) EmitItemAdded(ctx context.Context, b *bill.Bill, item bill.Item) {
	r.mu.RLock()
	hooks := r.onItemAdded
	r.mu.RUnlock()

	for _, h := range hooks {
		if err := r.callWithTimeout(ctx, h.Name(), func() error {
			return h.OnItemAdded(ctx, b, item)
		}); err != nil {
			r.logger.Warn("hook OnItemAdded failed",
				"hook", h.Name(),
				"error", err,
			)
		}
	}
}

// EmitBillStatusChanged emits a status transition event.
func (r *Registry) EmitBillStatusChanged(ctx context.Context, b *bill.Bill, from, to bill.Status) {
	r.mu.RLock()
	hooks := r.onBillStatusChanged
	r.mu.RUnlock()

	for _, h := range hooks {
		if err := r.callWithTimeout(ctx, h.Name(), func() error {
			return h.OnBillStatusChanged(ctx, b, from, to)
		}); err != nil {
			r.logger.Warn("hook OnBillStatusChanged failed",
				"hook", h.Name(),
				"error", err,
			)
		}
	}
}

// EmitPaymentRecorded emits a payment recorded event.
func (r *Registry) EmitPaymentRecorded(ctx context.Context, p *payment.Payment) {
	r.mu.RLock()
	hooks := r.onPaymentRecorded
	r.mu.RUnlock()

	for _, h := range hooks {
		if err := r.callWithTimeout(ctx, h.Name(), func() error {
			return h.OnPaymentRecorded(ctx, p)
		}); err != nil {
			r.logger.Warn("hook OnPaymentRecorded failed",
				"hook", h.Name(),
				"error", err,
			)
		}
	}
}

// callWithTimeout calls a hook function with a timeout.
// Hooks should never block the billing pipeline.
func (r *Registry) callWithTimeout(ctx context.Context, hookName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		return fmt.Errorf("hook timeout: %s", hookName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
