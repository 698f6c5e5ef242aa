package catalog

import (
	"strings"

	"library_catalog/internal/model"
)

// SearchBooks matches term case-insensitively against title, author or category.
// A blank term returns books unchanged.
func SearchBooks(books []model.Book, term string) []model.Book {
	needle := normalize(term)
	if needle == "" {
		return books
	}
	out := make([]model.Book, 0, len(books))
	for _, b := range books {
		if contains(b.Title, needle) || contains(b.Author, needle) || contains(b.Category, needle) {
			out = append(out, b)
		}
	}
	return out
}

// SearchCheckedOut keeps only checked out books whose title or holder name matches term
func SearchCheckedOut(books []model.Book, term string) []model.Book {
	needle := normalize(term)
	out := make([]model.Book, 0)
	for _, b := range books {
		if b.Status != model.StatusCheckedOut {
			continue
		}
		if needle == "" || contains(b.Title, needle) || (b.IssuedTo != nil && contains(b.IssuedTo.Name, needle)) {
			out = append(out, b)
		}
	}
	return out
}

func normalize(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

func contains(field, needle string) bool {
	return strings.Contains(strings.ToLower(field), needle)
}
