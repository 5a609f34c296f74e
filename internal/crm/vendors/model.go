// Package vendors manages suppliers that products and opportunities refer to.
package vendors

import "time"

// Vendor is a row of the vendors table.
type Vendor struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateVendorRequest is the body of POST /api/vendors.
type CreateVendorRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Email    string `json:"email" validate:"omitempty,email,max=200"`
	Phone    string `json:"phone" validate:"max=50"`
	IsActive *bool  `json:"isActive"`
}
