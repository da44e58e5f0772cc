// Package model defines domain entities for the application.
package model

import "time"

// User is an account that owns companies.
type User struct {
	ID                int64     `json:"id"`
	Email             string    `json:"email"`
	EncryptedPassword string    `json:"-"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Principal is the authenticated identity behind a request.
type Principal struct {
	UserID int64
	Email  string
	// TokenID is the jti of the session token.
	TokenID   string
	ExpiresAt time.Time
}
