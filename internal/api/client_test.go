package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storefront-client/internal/api"
	"github.com/example/storefront-client/internal/api/apitest"
)

type staticToken string

func (t staticToken) Token() string { return string(t) }

func newTestClient(t *testing.T, token string) (*api.Client, *apitest.Server) {
	t.Helper()
	srv := apitest.New()
	t.Cleanup(srv.Close)
	if token != "" {
		srv.Authorize(token)
	}
	return api.NewClient(srv.URL(), staticToken(token)), srv
}

func seedPhone(srv *apitest.Server) {
	srv.SeedProduct(apitest.Product{
		ID: 1, Name: "Phone", Slug: "phone", Price: 1500, Stock: 10,
		Brand: "Acme", Category: "electronics",
	})
}

// ============================================
// Cart Tests
// ============================================

func TestClient_Cart_Roundtrip(t *testing.T) {
	client, srv := newTestClient(t, "tok")
	seedPhone(srv)
	ctx := context.Background()

	line, err := client.Cart().Add(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, line.ProductID)
	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, "Phone", line.Product.Name)

	cart, err := client.Cart().Get(ctx)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.InDelta(t, 3000, cart.Subtotal, 0.001)
	assert.Equal(t, 2, cart.ItemCount)

	updated, err := client.Cart().Update(ctx, line.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Quantity)

	require.NoError(t, client.Cart().Remove(ctx, line.ID))
	assert.Zero(t, srv.CartSize("tok"))
}

func TestClient_Cart_AddMergesQuantities(t *testing.T) {
	client, srv := newTestClient(t, "tok")
	seedPhone(srv)
	ctx := context.Background()

	first, err := client.Cart().Add(ctx, 1, 2)
	require.NoError(t, err)
	second, err := client.Cart().Add(ctx, 1, 3)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "same product reuses the line")
	assert.Equal(t, 5, second.Quantity)
}

func TestClient_Cart_InsufficientStock(t *testing.T) {
	client, srv := newTestClient(t, "tok")
	srv.SeedProduct(apitest.Product{ID: 1, Name: "Rare", Price: 100, Stock: 1})

	_, err := client.Cart().Add(context.Background(), 1, 3)

	require.Error(t, err)
	assert.Equal(t, "Insufficient stock. Only 1 available.", api.ErrorDetail(err, ""))
}

func TestClient_Cart_Clear(t *testing.T) {
	client, srv := newTestClient(t, "tok")
	seedPhone(srv)
	ctx := context.Background()
	_, err := client.Cart().Add(ctx, 1, 1)
	require.NoError(t, err)

	require.NoError(t, client.Cart().Clear(ctx))
	assert.Zero(t, srv.CartSize("tok"))
}

func TestClient_Cart_Unauthorized(t *testing.T) {
	client, _ := newTestClient(t, "")

	_, err := client.Cart().Get(context.Background())

	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))
	assert.Equal(t, "Not authenticated", api.ErrorDetail(err, ""))
}

// ============================================
// Wishlist Tests
// ============================================

func TestClient_Wishlist_Roundtrip(t *testing.T) {
	client, srv := newTestClient(t, "tok")
	seedPhone(srv)
	ctx := context.Background()

	entry, err := client.Wishlist().Add(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, entry.ProductID)
	assert.Equal(t, "Phone", entry.Product.Name)

	items, err := client.Wishlist().Get(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)

	require.NoError(t, client.Wishlist().Remove(ctx, entry.ID))

	items, err = client.Wishlist().Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestClient_Wishlist_DuplicateAddRejected(t *testing.T) {
	client, srv := newTestClient(t, "tok")
	seedPhone(srv)
	ctx := context.Background()
	_, err := client.Wishlist().Add(ctx, 1)
	require.NoError(t, err)

	_, err = client.Wishlist().Add(ctx, 1)

	require.Error(t, err)
	assert.Equal(t, "Product already in wishlist", api.ErrorDetail(err, ""))
}

// ============================================
// Voucher Tests
// ============================================

func TestClient_Vouchers_Validate(t *testing.T) {
	client, srv := newTestClient(t, "tok")
	srv.SeedVoucher("SAVE10", apitest.VoucherDef{
		Name: "Ten Percent", Type: "percentage", Value: 10,
		MinOrder: 1000, MaxDiscount: 300,
	})
	ctx := context.Background()

	t.Run("valid with percentage cap", func(t *testing.T) {
		result, err := client.Vouchers().Validate(ctx, "SAVE10", 5000)
		require.NoError(t, err)
		assert.True(t, result.Valid)
		assert.InDelta(t, 300, result.DiscountAmount, 0.001, "10 percent of 5000 capped at 300")
		require.NotNil(t, result.Voucher)
		assert.Equal(t, "SAVE10", result.Voucher.Code)
		assert.Equal(t, "Ten Percent", result.Voucher.Name)
	})

	t.Run("below minimum order", func(t *testing.T) {
		result, err := client.Vouchers().Validate(ctx, "SAVE10", 500)
		require.NoError(t, err)
		assert.False(t, result.Valid)
		assert.Equal(t, "Minimum order amount is 1000", result.Message)
	})

	t.Run("unknown code", func(t *testing.T) {
		result, err := client.Vouchers().Validate(ctx, "NOPE", 5000)
		require.NoError(t, err, "ineligible codes are not transport errors")
		assert.False(t, result.Valid)
		assert.Equal(t, "Invalid voucher code", result.Message)
	})
}

// ============================================
// Order Tests
// ============================================

func TestClient_Orders_Create(t *testing.T) {
	client, srv := newTestClient(t, "tok")
	seedPhone(srv)

	order, err := client.Orders().Create(context.Background(), api.OrderCreate{
		Items:           []api.OrderItemCreate{{ProductID: 1, Quantity: 2}},
		PaymentMethod:   "cod",
		ShippingName:    "Test Buyer",
		ShippingPhone:   "01700000000",
		ShippingAddress: "12 Main Road",
		ShippingCity:    "Dhaka",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, order.OrderNumber)
	assert.Equal(t, "pending", order.Status)
	assert.InDelta(t, 3000, order.Total, 0.001)
	assert.Equal(t, 1, srv.OrderCount())
}

// ============================================
// Auth Tests
// ============================================

func TestClient_Auth_LoginAndMe(t *testing.T) {
	srv := apitest.New()
	t.Cleanup(srv.Close)
	want := srv.SeedUser("user@example.com", "hunter2")

	anon := api.NewClient(srv.URL(), staticToken(""))
	tok, err := anon.Auth().Login(context.Background(), "user@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, want, tok.AccessToken)
	assert.Equal(t, "bearer", tok.TokenType)

	authed := api.NewClient(srv.URL(), staticToken(tok.AccessToken))
	me, err := authed.Auth().Me(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, me.Email)
}

func TestClient_Auth_LoginWrongPassword(t *testing.T) {
	srv := apitest.New()
	t.Cleanup(srv.Close)
	srv.SeedUser("user@example.com", "hunter2")

	client := api.NewClient(srv.URL(), staticToken(""))
	_, err := client.Auth().Login(context.Background(), "user@example.com", "wrong")

	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))
	assert.Equal(t, "Incorrect email or password", api.ErrorDetail(err, ""))
}

// ============================================
// Product Tests
// ============================================

func TestClient_Products_ListAndGet(t *testing.T) {
	client, srv := newTestClient(t, "")
	seedPhone(srv)
	srv.SeedProduct(apitest.Product{ID: 2, Name: "Laptop", Slug: "laptop", Price: 45000, Stock: 3})
	ctx := context.Background()

	products, err := client.Products().List(ctx, api.ListParams{})
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Phone", products[0].Name)

	product, err := client.Products().Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Laptop", product.Name)

	_, err = client.Products().Get(ctx, 99)
	require.Error(t, err)
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

// ============================================
// Flash Sale Tests
// ============================================

func TestClient_FlashSales_NoneActive(t *testing.T) {
	client, _ := newTestClient(t, "")

	sale, err := client.FlashSales().Current(context.Background())

	require.NoError(t, err, "an absent flash sale is not an error")
	assert.Nil(t, sale)
}

// ============================================
// Circuit Breaker Tests
// ============================================

func TestClient_CircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	var hits atomic.Int64
	// Every request is aborted mid-response, which the client sees as a
	// transport failure. HTTP error statuses do not count against the breaker.
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		panic(http.ErrAbortHandler)
	}))
	t.Cleanup(broken.Close)

	client := api.NewClient(broken.URL+"/api/v1", staticToken("tok"),
		api.WithHTTPClient(&http.Client{Timeout: 2 * time.Second}))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := client.Cart().Get(ctx)
		require.Error(t, err)
		require.NotErrorIs(t, err, gobreaker.ErrOpenState, "breaker must stay closed until the fifth failure lands")
	}
	assert.EqualValues(t, 5, hits.Load())

	_, err := client.Cart().Get(ctx)
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.EqualValues(t, 5, hits.Load(), "an open breaker fails fast without reaching the backend")
	assert.Equal(t, "Failed to add to cart", api.ErrorDetail(err, "Failed to add to cart"),
		"breaker rejections carry no server detail, so callers fall back to the generic message")
}

// ============================================
// Failure Injection Tests
// ============================================

func TestClient_FailNext_SurfacesServerDetail(t *testing.T) {
	client, srv := newTestClient(t, "tok")
	seedPhone(srv)
	srv.FailNext(http.StatusServiceUnavailable, "Backend under maintenance")

	_, err := client.Cart().Get(context.Background())

	require.Error(t, err)
	assert.Equal(t, "Backend under maintenance", api.ErrorDetail(err, ""))

	// The failure is one-shot; the next request succeeds.
	_, err = client.Cart().Get(context.Background())
	assert.NoError(t, err)
}
