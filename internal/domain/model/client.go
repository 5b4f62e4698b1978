package model

// Client is the customer a user belongs to; orders and payments hang off it.
type Client struct {
	ID   int64
	Name string
}
