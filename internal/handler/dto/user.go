package dto

import (
	"time"

	"github.com/companyhub/companyhub/internal/model"
)

// SignUpRequest is the registration body.
type SignUpRequest struct {
	Email                string  `json:"email"`
	Password             string  `json:"password"`
	PasswordConfirmation *string `json:"password_confirmation"`
}

// SignInRequest is the session creation body.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToUserResponse converts a model.User to UserResponse.
func ToUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// Status is the envelope used by the registration and session endpoints.
type Status struct {
	Code    int           `json:"code,omitempty"`
	Message string        `json:"message"`
	Data    *UserResponse `json:"data,omitempty"`
	Errors  []string      `json:"errors,omitempty"`
}

// StatusResponse wraps Status under a "status" key.
type StatusResponse struct {
	Status Status `json:"status"`
}

// SignOutResponse is the flat body returned by sign out.
type SignOutResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}
