package api

import (
	"context"
	"fmt"
	"net/http"
)

// WishlistService covers the remote wishlist resource. There is no bulk-clear
// endpoint; clearing is a client-side sequence of Remove calls.
type WishlistService struct {
	c *Client
}

// Get returns all wishlist entries with nested product projections.
func (s *WishlistService) Get(ctx context.Context) ([]WishlistItem, error) {
	var items []WishlistItem
	if err := s.c.do(ctx, http.MethodGet, "/wishlist", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Add saves a product to the wishlist.
func (s *WishlistService) Add(ctx context.Context, productID int) (*WishlistItem, error) {
	body := struct {
		ProductID int `json:"product_id"`
	}{productID}

	var item WishlistItem
	if err := s.c.do(ctx, http.MethodPost, "/wishlist", body, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// Remove deletes a wishlist entry by its remote identifier.
func (s *WishlistService) Remove(ctx context.Context, entryID int) error {
	return s.c.do(ctx, http.MethodDelete, fmt.Sprintf("/wishlist/%d", entryID), nil, nil)
}
