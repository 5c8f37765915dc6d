package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// ProductService reads the product catalog.
type ProductService struct {
	c *Client
}

// ListParams filters a product listing. Zero values are omitted.
type ListParams struct {
	Category string
	Search   string
	Limit    int
}

// List returns catalog products matching the given filters.
func (s *ProductService) List(ctx context.Context, params ListParams) ([]Product, error) {
	q := url.Values{}
	if params.Category != "" {
		q.Set("category", params.Category)
	}
	if params.Search != "" {
		q.Set("q", params.Search)
	}
	if params.Limit > 0 {
		q.Set("limit", strconv.Itoa(params.Limit))
	}

	path := "/products"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var products []Product
	if err := s.c.do(ctx, http.MethodGet, path, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Get returns a single product by ID.
func (s *ProductService) Get(ctx context.Context, id int) (*Product, error) {
	var product Product
	if err := s.c.do(ctx, http.MethodGet, fmt.Sprintf("/products/%d", id), nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}
