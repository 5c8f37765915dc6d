package api

import (
	"context"
	"errors"
	"net/http"
)

// FlashSaleService reads time-limited sales.
type FlashSaleService struct {
	c *Client
}

// Current returns the running flash sale, or nil when none is active
// (the backend answers 404 in that case).
func (s *FlashSaleService) Current(ctx context.Context) (*FlashSale, error) {
	var sale FlashSale
	err := s.c.do(ctx, http.MethodGet, "/flash-sales/current", nil, &sale)
	if err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &sale, nil
}
