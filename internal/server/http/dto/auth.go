package dto

// RegisterRequest describes the signup payload.
type RegisterRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	ClientName string `json:"client_name"`
}

// LoginRequest describes the email/password payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
