package models

import "time"

type OrderStatus string

const (
	OrderStatusNew    OrderStatus = "New"
	OrderStatusUnpaid OrderStatus = "Unpaid"
	OrderStatusPaid   OrderStatus = "Paid"
)

type Order struct {
	ID            int         `json:"id"`
	UserID        int         `json:"user_id"`
	TotalAmount   float64     `json:"total_amount"`
	PaymentMethod string      `json:"payment_method"`
	PaymentToken  string      `json:"payment_token"`
	Status        OrderStatus `json:"status"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// OrderDetail is an immutable snapshot of one cart line taken at
// order-creation time.
type OrderDetail struct {
	OrderID   int     `json:"order_id"`
	ProductID int     `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

type CheckoutRequest struct {
	PaymentMethod string `json:"payment_method" binding:"required"`
	ShippingName  string `json:"shipping_name"`
	ShippingPhone string `json:"shipping_phone"`
	ShippingAddr  string `json:"shipping_address"`
}

// PaymentInstructions tells the client how to settle the order. For bank
// transfers it carries a confirmation URL plus the same URL rendered as a
// base64 PNG QR code.
type PaymentInstructions struct {
	Method     string `json:"method"`
	Message    string `json:"message,omitempty"`
	ConfirmURL string `json:"confirm_url,omitempty"`
	QRPNG      string `json:"qr_png,omitempty"`
}

type CheckoutResponse struct {
	Success             bool                 `json:"success"`
	OrderID             int                  `json:"order_id,omitempty"`
	OrderToken          string               `json:"order_token,omitempty"`
	TotalAmount         float64              `json:"total_amount,omitempty"`
	Status              OrderStatus          `json:"status,omitempty"`
	PaymentInstructions *PaymentInstructions `json:"payment_instructions,omitempty"`
	Error               string               `json:"error,omitempty"`
}

type ConfirmPaymentRequest struct {
	OrderToken string `json:"order_token" binding:"required"`
}

type OrderEvent struct {
	OrderID       int         `json:"order_id"`
	UserID        int         `json:"user_id"`
	TotalAmount   float64     `json:"total_amount"`
	PaymentMethod string      `json:"payment_method"`
	Status        OrderStatus `json:"status"`
	EventType     string      `json:"event_type"` // order_created, payment_confirmed
}
