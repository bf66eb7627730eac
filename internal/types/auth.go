package types

import (
	"time"

	"github.com/google/uuid"
)

// RegisterRequest creates an account with password authentication
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=1"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest exchanges credentials for a bearer token
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Account is the public view of a user (never includes the password hash)
type Account struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// TokenResponse is returned by register and login
type TokenResponse struct {
	Account *Account `json:"account"`
	Token   string   `json:"token"`
}
