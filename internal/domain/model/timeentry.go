package model

import "time"

// TimeEntry tracks minutes worked on an order.
type TimeEntry struct {
	ID        int64
	OrderID   int64
	Minutes   int
	Note      string
	CreatedAt time.Time
}
