// Package products holds the catalog offered to leads and opportunities.
package products

import "time"

// Product is a row of the products table.
type Product struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	VendorID  *int64    `json:"vendorId,omitempty"`
	Price     float64   `json:"price"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateProductRequest is the body of POST /api/products.
type CreateProductRequest struct {
	Code     string  `json:"code" validate:"required,max=50,alphanum"`
	Name     string  `json:"name" validate:"required,max=200"`
	VendorID *int64  `json:"vendorId" validate:"omitempty,gt=0"`
	Price    float64 `json:"price" validate:"gte=0"`
	IsActive *bool   `json:"isActive"`
}
