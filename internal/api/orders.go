package api

import (
	"context"
	"fmt"
	"net/http"
)

// OrderService creates and reads orders.
type OrderService struct {
	c *Client
}

// Create places an order from a normalized payload and returns the created
// order, including its order number.
func (s *OrderService) Create(ctx context.Context, req OrderCreate) (*Order, error) {
	var order Order
	if err := s.c.do(ctx, http.MethodPost, "/orders", req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// List returns the authenticated user's orders.
func (s *OrderService) List(ctx context.Context) ([]Order, error) {
	var orders []Order
	if err := s.c.do(ctx, http.MethodGet, "/orders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// Get returns a single order by its order number.
func (s *OrderService) Get(ctx context.Context, orderNumber string) (*Order, error) {
	var order Order
	if err := s.c.do(ctx, http.MethodGet, fmt.Sprintf("/orders/%s", orderNumber), nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}
