package model

import "time"

const RoleAdmin = "admin"

// Admin is an operator account allowed to mutate the catalog
type Admin struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Do not expose password hash in JSON responses
	CreatedAt    time.Time `json:"created_at"`
}

// Session is the current state of the admin gate
type Session struct {
	Authenticated bool      `json:"authenticated"`
	AdminID       int64     `json:"admin_id,omitempty"`
	Email         string    `json:"email,omitempty"`
	ExpiresAt     time.Time `json:"expires_at,omitempty"`
}
