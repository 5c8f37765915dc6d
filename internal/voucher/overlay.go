package voucher

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/example/storefront-client/internal/api"
)

// Voucher is an applied discount code. DiscountAmount is the flat currency
// amount computed by the backend for the subtotal it was validated against.
type Voucher struct {
	Code           string
	Name           string
	DiscountAmount float64
}

// Result is the outcome of an Apply call. Failures never escape as errors;
// Message carries what the user should see.
type Result struct {
	OK      bool
	Message string
}

// RemoteVouchers is the backend validation resource.
type RemoteVouchers interface {
	Validate(ctx context.Context, code string, subtotal float64) (*api.VoucherValidation, error)
}

// Overlay holds at most one active voucher on top of the cart. Its lifecycle
// is independent of the cart snapshot: an applied voucher is not re-validated
// when cart contents change afterwards.
type Overlay struct {
	mu      sync.RWMutex
	active  *Voucher
	loading bool

	remote   RemoteVouchers
	subtotal func() float64
	logger   *zap.Logger
}

// NewOverlay creates the overlay. subtotal supplies the current cart subtotal
// for server-side validation.
func NewOverlay(remote RemoteVouchers, subtotal func() float64, logger *zap.Logger) *Overlay {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Overlay{remote: remote, subtotal: subtotal, logger: logger}
}

// Apply validates a code against the current subtotal and stores it on
// success, replacing any previously applied voucher. Blank input is rejected
// locally without a remote call.
func (o *Overlay) Apply(ctx context.Context, code string) Result {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return Result{Message: "Please enter a voucher code"}
	}

	o.setLoading(true)
	defer o.setLoading(false)

	validation, err := o.remote.Validate(ctx, code, o.subtotal())
	if err != nil {
		o.logger.Warn("voucher validation failed", zap.String("code", code), zap.Error(err))
		return Result{Message: api.ErrorDetail(err, "Failed to apply voucher")}
	}
	if !validation.Valid {
		msg := validation.Message
		if msg == "" {
			msg = "Invalid voucher code"
		}
		return Result{Message: msg}
	}

	applied := &Voucher{Code: code, DiscountAmount: validation.DiscountAmount}
	if validation.Voucher != nil {
		applied.Code = validation.Voucher.Code
		applied.Name = validation.Voucher.Name
	}

	o.mu.Lock()
	o.active = applied
	o.mu.Unlock()

	return Result{OK: true, Message: validation.Message}
}

// Remove clears the active voucher unconditionally.
func (o *Overlay) Remove() {
	o.mu.Lock()
	o.active = nil
	o.mu.Unlock()
}

// Active returns a copy of the applied voucher, or nil.
func (o *Overlay) Active() *Voucher {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.active == nil {
		return nil
	}
	v := *o.active
	return &v
}

// DiscountAmount is zero when no voucher is active.
func (o *Overlay) DiscountAmount() float64 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.active == nil {
		return 0
	}
	return o.active.DiscountAmount
}

// Loading reports whether a validation call is in flight.
func (o *Overlay) Loading() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.loading
}

func (o *Overlay) setLoading(v bool) {
	o.mu.Lock()
	o.loading = v
	o.mu.Unlock()
}
