package models

import "strings"

// CartItem is one staged line in a session cart. Two lines are the same
// entry when product id, size and color match (size/color compared
// case-insensitively).
type CartItem struct {
	ProductID   int     `json:"product_id"`
	ProductName string  `json:"product_name"`
	UnitPrice   float64 `json:"unit_price"`
	Quantity    int     `json:"quantity"`
	ImageURL    string  `json:"image_url"`
	Size        string  `json:"size"`
	Color       string  `json:"color"`
}

// CartKey identifies a cart line.
type CartKey struct {
	ProductID int    `json:"product_id"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

func (i CartItem) Key() CartKey {
	return CartKey{ProductID: i.ProductID, Size: i.Size, Color: i.Color}
}

func (k CartKey) Matches(other CartKey) bool {
	return k.ProductID == other.ProductID &&
		strings.EqualFold(k.Size, other.Size) &&
		strings.EqualFold(k.Color, other.Color)
}

type AddCartItemRequest struct {
	ProductID   int     `json:"product_id" binding:"required"`
	ProductName string  `json:"product_name" binding:"required"`
	UnitPrice   float64 `json:"unit_price" binding:"required,gt=0"`
	Quantity    int     `json:"quantity" binding:"required,gt=0"`
	ImageURL    string  `json:"image_url"`
	Size        string  `json:"size"`
	Color       string  `json:"color"`
}

type UpdateCartItemRequest struct {
	ProductID int    `json:"product_id" binding:"required"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Quantity  int    `json:"quantity"`
}

type RemoveCartItemRequest struct {
	ProductID int    `json:"product_id" binding:"required"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}
