package model

import (
	"fmt"
	"strings"
	"time"
)

// OrderStatus describes the fulfillment lifecycle of a design order.
type OrderStatus string

const (
	OrderStatusCreated   OrderStatus = "CREATED"
	OrderStatusAccepted  OrderStatus = "ACCEPTED"
	OrderStatusRefused   OrderStatus = "REFUSED"
	OrderStatusCanceled  OrderStatus = "CANCELED"
	OrderStatusDoing     OrderStatus = "DOING"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusRevision  OrderStatus = "REVISION"
	OrderStatusFinished  OrderStatus = "FINISHED"
)

// ParseOrderStatus canonicalizes a stored status value. Lowercase spellings
// from the legacy schema are migrated into the closed uppercase set; anything
// else is rejected.
func ParseOrderStatus(value string) (OrderStatus, error) {
	switch OrderStatus(strings.ToUpper(strings.TrimSpace(value))) {
	case OrderStatusCreated:
		return OrderStatusCreated, nil
	case OrderStatusAccepted:
		return OrderStatusAccepted, nil
	case OrderStatusRefused:
		return OrderStatusRefused, nil
	case OrderStatusCanceled:
		return OrderStatusCanceled, nil
	case OrderStatusDoing:
		return OrderStatusDoing, nil
	case OrderStatusDelivered:
		return OrderStatusDelivered, nil
	case OrderStatusRevision:
		return OrderStatusRevision, nil
	case OrderStatusFinished:
		return OrderStatusFinished, nil
	}
	return "", fmt.Errorf("unknown order status %q", value)
}

// Order is a single thumbnail-design request submitted by a client.
// Status and the paid flag are unexported: status only changes through
// OrderWorkflow transitions and paid only through MarkPaid, so no code path
// can push an order into an invalid combination.
type Order struct {
	ID         int64
	ClientID   int64
	Title      string
	Brief      string
	PriceCents int64
	DueAt      *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time

	status OrderStatus
	paid   bool
}

// NewOrder creates an order in its initial state.
func NewOrder(clientID int64, title, brief string, priceCents int64, dueAt *time.Time, now time.Time) *Order {
	return &Order{
		ClientID:   clientID,
		Title:      title,
		Brief:      brief,
		PriceCents: priceCents,
		DueAt:      dueAt,
		CreatedAt:  now,
		UpdatedAt:  now,
		status:     OrderStatusCreated,
	}
}

// RestoreOrder rehydrates an order from persistence.
func RestoreOrder(id, clientID int64, title, brief string, priceCents int64, status OrderStatus, paid bool, dueAt *time.Time, createdAt, updatedAt time.Time) *Order {
	return &Order{
		ID:         id,
		ClientID:   clientID,
		Title:      title,
		Brief:      brief,
		PriceCents: priceCents,
		DueAt:      dueAt,
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
		status:     status,
		paid:       paid,
	}
}

// Status returns the current lifecycle status.
func (o *Order) Status() OrderStatus {
	return o.status
}

// Paid reports whether the order has been settled.
func (o *Order) Paid() bool {
	return o.paid
}

// Billable reports whether the order may be paid in its current status.
func (o *Order) Billable() bool {
	switch o.status {
	case OrderStatusDelivered, OrderStatusRevision, OrderStatusFinished:
		return true
	}
	return false
}

// MarkPaid flips the paid flag when the order is unpaid and billable.
// It returns false when the order is not eligible; callers treat that as a
// silent skip, which is what makes settlement idempotent.
func (o *Order) MarkPaid(now time.Time) bool {
	if o.paid || !o.Billable() {
		return false
	}
	o.paid = true
	o.UpdatedAt = now
	return true
}
