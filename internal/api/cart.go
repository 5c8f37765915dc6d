package api

import (
	"context"
	"fmt"
	"net/http"
)

// CartService covers the remote cart resource. All operations require an
// authenticated session; the backend answers 401 otherwise.
type CartService struct {
	c *Client
}

// Get returns the full cart with nested product projections.
func (s *CartService) Get(ctx context.Context) (*Cart, error) {
	var cart Cart
	if err := s.c.do(ctx, http.MethodGet, "/cart", nil, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// Add puts quantity units of a product into the cart. The backend merges
// quantities when the product is already present.
func (s *CartService) Add(ctx context.Context, productID, quantity int) (*CartLine, error) {
	body := struct {
		ProductID int `json:"product_id"`
		Quantity  int `json:"quantity"`
	}{productID, quantity}

	var line CartLine
	if err := s.c.do(ctx, http.MethodPost, "/cart", body, &line); err != nil {
		return nil, err
	}
	return &line, nil
}

// Update sets the quantity of an existing cart line.
func (s *CartService) Update(ctx context.Context, lineID, quantity int) (*CartLine, error) {
	body := struct {
		Quantity int `json:"quantity"`
	}{quantity}

	var line CartLine
	if err := s.c.do(ctx, http.MethodPut, fmt.Sprintf("/cart/%d", lineID), body, &line); err != nil {
		return nil, err
	}
	return &line, nil
}

// Remove deletes a cart line by its remote identifier.
func (s *CartService) Remove(ctx context.Context, lineID int) error {
	return s.c.do(ctx, http.MethodDelete, fmt.Sprintf("/cart/%d", lineID), nil, nil)
}

// Clear empties the cart.
func (s *CartService) Clear(ctx context.Context) error {
	return s.c.do(ctx, http.MethodDelete, "/cart", nil, nil)
}
