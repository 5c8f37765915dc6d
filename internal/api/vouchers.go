package api

import (
	"context"
	"net/http"
)

// VoucherService validates discount codes against the current cart subtotal.
type VoucherService struct {
	c *Client
}

// Validate checks a voucher code. An ineligible code is not an error: the
// response carries Valid=false and a human-readable message.
func (s *VoucherService) Validate(ctx context.Context, code string, subtotal float64) (*VoucherValidation, error) {
	body := struct {
		Code     string  `json:"code"`
		Subtotal float64 `json:"subtotal"`
	}{code, subtotal}

	var result VoucherValidation
	if err := s.c.do(ctx, http.MethodPost, "/vouchers/validate", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
