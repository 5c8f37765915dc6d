package checkout

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/example/storefront-client/internal/api"
	"github.com/example/storefront-client/internal/cart"
	"github.com/example/storefront-client/internal/notify"
	"github.com/example/storefront-client/internal/session"
	"github.com/example/storefront-client/internal/voucher"
)

// PaymentMethod is the closed set of supported payment options.
type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "cod"
	PaymentBkash          PaymentMethod = "bkash"
	PaymentCard           PaymentMethod = "card"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrEmptyCart        = errors.New("cart is empty")
	ErrMissingShipping  = errors.New("missing required shipping fields")
	ErrInvalidPayment   = errors.New("unsupported payment method")
)

// ShippingInfo is the delivery address collected at checkout. Name, Phone,
// Address and City are required.
type ShippingInfo struct {
	Name    string
	Phone   string
	Email   string
	Address string
	Area    string
	City    string
	Notes   string
}

// Summary is the order total breakdown shown before placing an order.
type Summary struct {
	Subtotal float64
	Shipping float64
	Discount float64
	Payable  float64
}

// RemoteOrders is the backend order resource.
type RemoteOrders interface {
	Create(ctx context.Context, req api.OrderCreate) (*api.Order, error)
}

// Service turns the cart snapshot plus the voucher overlay into an order.
type Service struct {
	orders   RemoteOrders
	cart     *cart.Aggregate
	voucher  *voucher.Overlay
	session  *session.Session
	notifier notify.Notifier
	logger   *zap.Logger
}

func NewService(orders RemoteOrders, cartAgg *cart.Aggregate, overlay *voucher.Overlay, sess *session.Session, notifier notify.Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		orders:   orders,
		cart:     cartAgg,
		voucher:  overlay,
		session:  sess,
		notifier: notifier,
		logger:   logger,
	}
}

// Summary computes the payable total: cart total minus the voucher discount,
// floored at zero.
func (s *Service) Summary() Summary {
	sum := Summary{
		Subtotal: s.cart.Subtotal(),
		Shipping: s.cart.ShippingCost(),
		Discount: s.voucher.DiscountAmount(),
	}
	sum.Payable = sum.Subtotal + sum.Shipping - sum.Discount
	if sum.Payable < 0 {
		sum.Payable = 0
	}
	return sum
}

// PlaceOrder builds the normalized payload from the current snapshot and
// submits it. On success the cart is cleared, the voucher removed, and the
// order number returned.
func (s *Service) PlaceOrder(ctx context.Context, shipping ShippingInfo, payment PaymentMethod) (string, error) {
	if !s.session.Authenticated() {
		s.notifier.Show("Please login to place an order", notify.SeverityError)
		return "", ErrNotAuthenticated
	}

	items := s.cart.Items()
	if len(items) == 0 {
		s.notifier.Show("Your cart is empty", notify.SeverityError)
		return "", ErrEmptyCart
	}

	switch payment {
	case PaymentCashOnDelivery, PaymentBkash, PaymentCard:
	default:
		return "", ErrInvalidPayment
	}
	if shipping.Name == "" || shipping.Phone == "" || shipping.Address == "" || shipping.City == "" {
		s.notifier.Show("Please fill in all required shipping fields", notify.SeverityError)
		return "", ErrMissingShipping
	}

	req := api.OrderCreate{
		Items:           make([]api.OrderItemCreate, 0, len(items)),
		PaymentMethod:   string(payment),
		ShippingName:    shipping.Name,
		ShippingPhone:   shipping.Phone,
		ShippingEmail:   shipping.Email,
		ShippingAddress: shipping.Address,
		ShippingArea:    shipping.Area,
		ShippingCity:    shipping.City,
		Notes:           shipping.Notes,
	}
	for _, item := range items {
		req.Items = append(req.Items, api.OrderItemCreate{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	if applied := s.voucher.Active(); applied != nil {
		req.VoucherCode = applied.Code
	}

	order, err := s.orders.Create(ctx, req)
	if err != nil {
		s.notifier.Show(api.ErrorDetail(err, "Failed to place order. Please try again."), notify.SeverityError)
		return "", err
	}

	if err := s.cart.Clear(ctx); err != nil {
		s.logger.Warn("failed to clear cart after order", zap.String("order", order.OrderNumber), zap.Error(err))
	}
	s.voucher.Remove()
	s.notifier.Show("Order placed successfully!", notify.SeveritySuccess)
	return order.OrderNumber, nil
}
