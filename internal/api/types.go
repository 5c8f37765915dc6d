package api

import "time"

// Product is the projection the backend nests inside cart lines, wishlist
// entries and listing responses.
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

// CartLine is one line of the remote cart resource.
type CartLine struct {
	ID        int     `json:"id"`
	ProductID int     `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Product   Product `json:"product"`
}

// Cart is the remote cart resource as returned by GET /cart.
type Cart struct {
	Items     []CartLine `json:"items"`
	Subtotal  float64    `json:"subtotal"`
	ItemCount int        `json:"item_count"`
}

// WishlistItem is one entry of the remote wishlist resource.
type WishlistItem struct {
	ID        int     `json:"id"`
	ProductID int     `json:"product_id"`
	Product   Product `json:"product"`
}

// VoucherDetail describes a voucher as returned by a successful validation.
type VoucherDetail struct {
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	DiscountType  string  `json:"discount_type"`
	DiscountValue float64 `json:"discount_value"`
}

// VoucherValidation is the response of POST /vouchers/validate.
type VoucherValidation struct {
	Valid          bool           `json:"valid"`
	DiscountAmount float64        `json:"discount_amount"`
	Message        string         `json:"message"`
	Voucher        *VoucherDetail `json:"voucher,omitempty"`
}

// OrderItemCreate is a normalized order line: product reference plus quantity.
type OrderItemCreate struct {
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

// OrderCreate is the payload accepted by POST /orders.
type OrderCreate struct {
	Items           []OrderItemCreate `json:"items"`
	PaymentMethod   string            `json:"payment_method"`
	ShippingName    string            `json:"shipping_name"`
	ShippingPhone   string            `json:"shipping_phone"`
	ShippingEmail   string            `json:"shipping_email,omitempty"`
	ShippingAddress string            `json:"shipping_address"`
	ShippingArea    string            `json:"shipping_area,omitempty"`
	ShippingCity    string            `json:"shipping_city"`
	Notes           string            `json:"notes,omitempty"`
	VoucherCode     string            `json:"voucher_code,omitempty"`
}

// Order is the remote order resource.
type Order struct {
	ID          int       `json:"id"`
	OrderNumber string    `json:"order_number"`
	Status      string    `json:"status"`
	Total       float64   `json:"total"`
	CreatedAt   time.Time `json:"created_at"`
}

// TokenResponse is the OAuth2 password-flow login response.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// User is the authenticated profile returned by GET /auth/me.
type User struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// FlashSaleItem is one discounted product inside a flash sale.
type FlashSaleItem struct {
	Product   Product `json:"product"`
	SalePrice float64 `json:"sale_price"`
}

// FlashSale is the currently running sale, if any.
type FlashSale struct {
	ID      int             `json:"id"`
	Name    string          `json:"name"`
	Slug    string          `json:"slug"`
	EndDate time.Time       `json:"end_date"`
	Items   []FlashSaleItem `json:"items"`
}
