package model

import "time"

// Company is a registry entry owned by exactly one user.
type Company struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Year      string    `json:"year"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CompanyInput carries permitted company attributes from a request.
// Nil fields were not supplied.
type CompanyInput struct {
	Name   *string
	Year   *string
	UserID *int64
}

// CompanyScope restricts company queries to one owner.
// The zero value matches nothing.
type CompanyScope struct {
	UserID int64
}

// Empty reports whether the scope can match no record.
func (s CompanyScope) Empty() bool {
	return s.UserID <= 0
}

// Contains reports whether c falls inside the scope.
func (s CompanyScope) Contains(c *Company) bool {
	return c != nil && !s.Empty() && c.UserID == s.UserID
}
