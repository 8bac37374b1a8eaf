package dto

import "github.com/google/uuid"

// AddItemRequest adds a catalog product to the session cart.
type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  *float64  `json:"quantity,omitempty"`
	Notify    *bool     `json:"notify,omitempty"`
}

// UpdateItemRequest moves a line's quantity by Delta.
type UpdateItemRequest struct {
	Delta int `json:"delta" validate:"required"`
}

// CartLine is one cart line as rendered by the drawer.
type CartLine struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
	Quantity  int     `json:"quantity"`
	LineTotal float64 `json:"line_total"`
}

// Notification is the add-to-cart toast.
type Notification struct {
	Visible     bool   `json:"visible"`
	Phase       string `json:"phase"`
	RemainingMS int64  `json:"remaining_ms"`
}

// Cart is the full cart view returned by every cart endpoint.
type Cart struct {
	Items         []CartLine   `json:"items"`
	IsOpen        bool         `json:"is_open"`
	LastAddedItem *CartLine    `json:"last_added_item"`
	Notification  Notification `json:"notification"`
	TotalItems    int          `json:"total_items"`
	Subtotal      float64      `json:"subtotal"`
}
