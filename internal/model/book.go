package model

import "time"

// BookStatus is the two-state availability of a book
type BookStatus string

const (
	StatusAvailable  BookStatus = "Available"
	StatusCheckedOut BookStatus = "Checked Out"
)

// Holder is a snapshot of the member a book is issued to
type Holder struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Flat  string `json:"flat,omitempty"`
}

// Book represents a physical book in the catalog
type Book struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	Author    string     `json:"author"`
	Category  string     `json:"category"`
	Owner     string     `json:"owner"`
	ImageURL  string     `json:"image"`
	Status    BookStatus `json:"status"`
	IssuedTo  *Holder    `json:"issued_to"` // non-nil iff Status is StatusCheckedOut
	IssuedAt  *time.Time `json:"issued_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// IsAvailable reports whether the book can be checked out
func (b *Book) IsAvailable() bool {
	return b.Status == StatusAvailable
}

// CreateBookRequest carries the text fields of a new book; the image travels separately
type CreateBookRequest struct {
	Title    string `form:"title" json:"title"`
	Author   string `form:"author" json:"author"`
	Category string `form:"category" json:"category"`
	Owner    string `form:"owner" json:"owner"`
}

// CheckoutRequest names the member selected to receive a book
type CheckoutRequest struct {
	UserID int64 `json:"user_id"`
}

// CatalogStats are the aggregate counts derived from the mirror
type CatalogStats struct {
	Total     int `json:"total"`
	Available int `json:"available"`
	Issued    int `json:"issued"`
	Users     int `json:"users"`
}
