package models

import "time"

type Product struct {
	ID            int       `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Price         float64   `json:"price"`
	DiscountPrice *float64  `json:"discount_price,omitempty"`
	ImageURL      string    `json:"image_url"`
	Brand         string    `json:"brand"`
	Category      string    `json:"category"`
	IsFeatured    bool      `json:"is_featured"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type CreateProductRequest struct {
	Name          string   `json:"name" binding:"required"`
	Description   string   `json:"description"`
	Price         float64  `json:"price" binding:"required,gt=0"`
	DiscountPrice *float64 `json:"discount_price"`
	ImageURL      string   `json:"image_url"`
	Brand         string   `json:"brand"`
	Category      string   `json:"category"`
	IsFeatured    bool     `json:"is_featured"`
}

type UpdateProductRequest struct {
	Name          string   `json:"name" binding:"required"`
	Description   string   `json:"description"`
	Price         float64  `json:"price" binding:"required,gt=0"`
	DiscountPrice *float64 `json:"discount_price"`
	ImageURL      string   `json:"image_url"`
	Brand         string   `json:"brand"`
	Category      string   `json:"category"`
	IsFeatured    bool     `json:"is_featured"`
}
