// Package apitest provides an in-memory storefront backend for tests. It
// speaks the same HTTP/JSON contract as the real API: bearer-token auth,
// {"detail": ...} error bodies, nested product projections.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
)

// Product mirrors the backend product projection.
type Product struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	Slug          string  `json:"slug"`
	Price         float64 `json:"price"`
	OriginalPrice float64 `json:"original_price"`
	Discount      float64 `json:"discount"`
	Stock         int     `json:"stock"`
	Brand         string  `json:"brand"`
	Category      string  `json:"category"`
	Image         string  `json:"image"`
	Rating        float64 `json:"rating"`
	ReviewCount   int     `json:"review_count"`
}

// VoucherDef seeds a redeemable voucher code.
type VoucherDef struct {
	Name        string
	Type        string // "fixed" or "percentage"
	Value       float64
	MinOrder    float64
	MaxDiscount float64
}

type cartLine struct {
	id        int
	productID int
	quantity  int
}

type wishEntry struct {
	id        int
	productID int
}

type credentials struct {
	password string
	token    string
}

// Server is the fake backend. State is keyed by bearer token, so independent
// tokens see independent carts and wishlists.
type Server struct {
	mu        sync.Mutex
	products  map[int]Product
	carts     map[string]map[int]*cartLine
	wishlists map[string]map[int]*wishEntry
	vouchers  map[string]VoucherDef
	users     map[string]credentials
	tokens    map[string]bool
	orders    []map[string]any
	nextID    int

	failStatus int
	failDetail string

	ts *httptest.Server
}

func New() *Server {
	s := &Server{
		products:  make(map[int]Product),
		carts:     make(map[string]map[int]*cartLine),
		wishlists: make(map[string]map[int]*wishEntry),
		vouchers:  make(map[string]VoucherDef),
		users:     make(map[string]credentials),
		tokens:    make(map[string]bool),
		nextID:    1000,
	}
	s.ts = httptest.NewServer(s.router())
	return s
}

// URL is the API base URL to hand to the client under test.
func (s *Server) URL() string {
	return s.ts.URL + "/api/v1"
}

func (s *Server) Close() {
	s.ts.Close()
}

// SeedProduct registers a catalog product.
func (s *Server) SeedProduct(p Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

// SeedVoucher registers a redeemable voucher code.
func (s *Server) SeedVoucher(code string, def VoucherDef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vouchers[code] = def
}

// SeedUser registers login credentials and returns the token that a
// successful login will issue.
func (s *Server) SeedUser(email, password string) string {
	token := "token-" + email
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[email] = credentials{password: password, token: token}
	s.tokens[token] = true
	return token
}

// Authorize mints a token the server will accept without a login round-trip.
func (s *Server) Authorize(token string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = true
	return token
}

// FailNext makes the next authenticated request fail with the given status
// and detail message, then resets.
func (s *Server) FailNext(status int, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failStatus = status
	s.failDetail = detail
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)
		r.Get("/products", s.handleListProducts)
		r.Get("/products/{id}", s.handleGetProduct)
		r.Get("/flash-sales/current", s.handleCurrentFlashSale)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/auth/me", s.handleMe)
			r.Get("/cart", s.handleGetCart)
			r.Post("/cart", s.handleAddToCart)
			r.Put("/cart/{itemID}", s.handleUpdateCartItem)
			r.Delete("/cart/{itemID}", s.handleRemoveCartItem)
			r.Delete("/cart", s.handleClearCart)
			r.Get("/wishlist", s.handleGetWishlist)
			r.Post("/wishlist", s.handleAddToWishlist)
			r.Delete("/wishlist/{entryID}", s.handleRemoveWishlistEntry)
			r.Post("/vouchers/validate", s.handleValidateVoucher)
			r.Post("/orders", s.handleCreateOrder)
		})
	})
	return r
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		s.mu.Lock()
		ok := s.tokens[token]
		failStatus, failDetail := s.failStatus, s.failDetail
		if failStatus != 0 {
			s.failStatus, s.failDetail = 0, ""
		}
		s.mu.Unlock()

		if !ok {
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		if failStatus != 0 {
			writeError(w, failStatus, failDetail)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid form body")
		return
	}
	email := r.PostFormValue("username")
	password := r.PostFormValue("password")

	s.mu.Lock()
	cred, ok := s.users[email]
	s.mu.Unlock()

	if !ok || cred.password != password {
		writeError(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"access_token": cred.token,
		"token_type":   "bearer",
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"id": 1, "name": "Test User", "email": "test@example.com"})
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	products := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		products = append(products, p)
	}
	s.mu.Unlock()

	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	writeJSON(w, http.StatusOK, products)
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	s.mu.Lock()
	p, ok := s.products[id]
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleCurrentFlashSale(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "No active flash sale")
}

func (s *Server) handleGetCart(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	lines := make([]*cartLine, 0, len(s.carts[token]))
	for _, line := range s.carts[token] {
		lines = append(lines, line)
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].id < lines[j].id })

	items := make([]map[string]any, 0, len(lines))
	subtotal := 0.0
	count := 0
	for _, line := range lines {
		p := s.products[line.productID]
		items = append(items, s.lineResponse(line))
		subtotal += p.Price * float64(line.quantity)
		count += line.quantity
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items":      items,
		"subtotal":   subtotal,
		"item_count": count,
	})
}

func (s *Server) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProductID int `json:"product_id"`
		Quantity  int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	token := bearerToken(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	product, ok := s.products[body.ProductID]
	if !ok {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	if product.Stock < body.Quantity {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Insufficient stock. Only %d available.", product.Stock))
		return
	}

	if s.carts[token] == nil {
		s.carts[token] = make(map[int]*cartLine)
	}
	line := s.carts[token][body.ProductID]
	if line != nil {
		if line.quantity+body.Quantity > product.Stock {
			writeError(w, http.StatusBadRequest,
				fmt.Sprintf("Cannot add more. Only %d available.", product.Stock))
			return
		}
		line.quantity += body.Quantity
	} else {
		s.nextID++
		line = &cartLine{id: s.nextID, productID: body.ProductID, quantity: body.Quantity}
		s.carts[token][body.ProductID] = line
	}
	writeJSON(w, http.StatusOK, s.lineResponse(line))
}

func (s *Server) handleUpdateCartItem(w http.ResponseWriter, r *http.Request) {
	itemID, _ := strconv.Atoi(chi.URLParam(r, "itemID"))
	var body struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	token := bearerToken(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	line := s.findLine(token, itemID)
	if line == nil {
		writeError(w, http.StatusNotFound, "Cart item not found")
		return
	}
	if product := s.products[line.productID]; body.Quantity > product.Stock {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Insufficient stock. Only %d available.", product.Stock))
		return
	}
	line.quantity = body.Quantity
	writeJSON(w, http.StatusOK, s.lineResponse(line))
}

func (s *Server) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	itemID, _ := strconv.Atoi(chi.URLParam(r, "itemID"))
	token := bearerToken(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	line := s.findLine(token, itemID)
	if line == nil {
		writeError(w, http.StatusNotFound, "Cart item not found")
		return
	}
	delete(s.carts[token], line.productID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Item removed from cart"})
}

func (s *Server) handleClearCart(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)

	s.mu.Lock()
	delete(s.carts, token)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"message": "Cart cleared"})
}

func (s *Server) handleGetWishlist(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]*wishEntry, 0, len(s.wishlists[token]))
	for _, e := range s.wishlists[token] {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].id < entries[j].id })

	out := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		out = append(out, map[string]any{
			"id":         e.id,
			"product_id": e.productID,
			"product":    s.products[e.productID],
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAddToWishlist(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProductID int `json:"product_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	token := bearerToken(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[body.ProductID]; !ok {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	if s.wishlists[token] == nil {
		s.wishlists[token] = make(map[int]*wishEntry)
	}
	if _, exists := s.wishlists[token][body.ProductID]; exists {
		writeError(w, http.StatusBadRequest, "Product already in wishlist")
		return
	}
	s.nextID++
	entry := &wishEntry{id: s.nextID, productID: body.ProductID}
	s.wishlists[token][body.ProductID] = entry
	writeJSON(w, http.StatusOK, map[string]any{
		"id":         entry.id,
		"product_id": entry.productID,
		"product":    s.products[entry.productID],
	})
}

func (s *Server) handleRemoveWishlistEntry(w http.ResponseWriter, r *http.Request) {
	entryID, _ := strconv.Atoi(chi.URLParam(r, "entryID"))
	token := bearerToken(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	for productID, e := range s.wishlists[token] {
		if e.id == entryID {
			delete(s.wishlists[token], productID)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Removed from wishlist"})
			return
		}
	}
	writeError(w, http.StatusNotFound, "Item not in wishlist")
}

func (s *Server) handleValidateVoucher(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Code     string  `json:"code"`
		Subtotal float64 `json:"subtotal"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	def, ok := s.vouchers[body.Code]
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{
			"valid":           false,
			"discount_amount": 0,
			"message":         "Invalid voucher code",
		})
		return
	}
	if body.Subtotal < def.MinOrder {
		writeJSON(w, http.StatusOK, map[string]any{
			"valid":           false,
			"discount_amount": 0,
			"message":         fmt.Sprintf("Minimum order amount is %.0f", def.MinOrder),
		})
		return
	}

	discount := def.Value
	if def.Type == "percentage" {
		discount = body.Subtotal * def.Value / 100
		if def.MaxDiscount > 0 && discount > def.MaxDiscount {
			discount = def.MaxDiscount
		}
	}
	if discount > body.Subtotal {
		discount = body.Subtotal
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"valid":           true,
		"discount_amount": discount,
		"message":         "Voucher is valid",
		"voucher": map[string]any{
			"code":           body.Code,
			"name":           def.Name,
			"discount_type":  def.Type,
			"discount_value": def.Value,
		},
	})
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Items []struct {
			ProductID int `json:"product_id"`
			Quantity  int `json:"quantity"`
		} `json:"items"`
		PaymentMethod string `json:"payment_method"`
		ShippingName  string `json:"shipping_name"`
		VoucherCode   string `json:"voucher_code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(body.Items) == 0 {
		writeError(w, http.StatusBadRequest, "Order must contain at least one item")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0.0
	for _, item := range body.Items {
		p, ok := s.products[item.ProductID]
		if !ok {
			writeError(w, http.StatusNotFound, "Product not found")
			return
		}
		total += p.Price * float64(item.Quantity)
	}

	s.nextID++
	order := map[string]any{
		"id":           s.nextID,
		"order_number": fmt.Sprintf("ORD-%d", s.nextID),
		"status":       "pending",
		"total":        total,
	}
	s.orders = append(s.orders, order)
	writeJSON(w, http.StatusOK, order)
}

// OrderCount reports how many orders were placed.
func (s *Server) OrderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

// CartSize reports how many lines a token's server-side cart holds.
func (s *Server) CartSize(token string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.carts[token])
}

func (s *Server) findLine(token string, itemID int) *cartLine {
	for _, line := range s.carts[token] {
		if line.id == itemID {
			return line
		}
	}
	return nil
}

func (s *Server) lineResponse(line *cartLine) map[string]any {
	return map[string]any{
		"id":         line.id,
		"product_id": line.productID,
		"quantity":   line.quantity,
		"product":    s.products[line.productID],
	}
}

func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	h := r.Header.Get("Authorization")
	if len(h) > len(prefix) && h[:len(prefix)] == prefix {
		return h[len(prefix):]
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
