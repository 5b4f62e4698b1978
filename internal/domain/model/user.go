package model

import "time"

// User roles. Admins drive the order workflow; clients create orders and pay.
const (
	RoleAdmin  = "admin"
	RoleClient = "client"
)

// User represents an account able to sign in.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Role         string
	ClientID     *int64
	CreatedAt    time.Time
}

// IsAdmin reports whether the user may drive workflow transitions.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
