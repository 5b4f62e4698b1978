package dto

import "time"

// CreateOrderRequest describes a new thumbnail order.
type CreateOrderRequest struct {
	Title      string     `json:"title"`
	Brief      string     `json:"brief"`
	PriceCents int64      `json:"price_cents"`
	DueAt      *time.Time `json:"due_at,omitempty"`
}

// OrderResponse describes one order in API responses.
type OrderResponse struct {
	ID         int64      `json:"id"`
	ClientID   int64      `json:"client_id"`
	Title      string     `json:"title"`
	Brief      string     `json:"brief,omitempty"`
	PriceCents int64      `json:"price_cents"`
	Status     string     `json:"status"`
	Paid       bool       `json:"paid"`
	DueAt      *time.Time `json:"due_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// TrackTimeRequest describes a time entry payload.
type TrackTimeRequest struct {
	Minutes int    `json:"minutes"`
	Note    string `json:"note"`
}

// TimeEntryResponse describes one recorded time entry.
type TimeEntryResponse struct {
	ID        int64     `json:"id"`
	OrderID   int64     `json:"order_id"`
	Minutes   int       `json:"minutes"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
