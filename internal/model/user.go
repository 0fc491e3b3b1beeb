package model

import "time"

// User is a row of the users table. The hash never leaves the server.
type User struct {
	ID           int64   `json:"id" db:"id"`
	Username     string  `json:"username" db:"username"`
	Email        *string `json:"email,omitempty" db:"email"`
	PasswordHash string  `json:"-" db:"password_hash"`
}

// AuthClaims is the verified identity a bearer token resolves to.
type AuthClaims struct {
	UserID    int64
	Username  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type RegisterResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ID        int64  `json:"id"`
	TokenType string `json:"token_type"`
	ExpiresIn int64  `json:"expires_in"`
}

type ForgotPasswordResponse struct {
	Success bool `json:"success"`
}
