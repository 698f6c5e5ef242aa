package model

import "time"

// User is a library member who can hold books
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Flat      string    `json:"flat,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// UserEntry is a member as seen through the catalog mirror
type UserEntry struct {
	User
	ActiveBooks int `json:"active_books"`
}

// CreateUserRequest is used for registering a new member
type CreateUserRequest struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone" binding:"required"`
	Flat  string `json:"flat"`
}
