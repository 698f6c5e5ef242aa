package service

import (
	"errors"

	"library_catalog/internal/repository"
)

// ErrValidation wraps every rejected input; the wrapping message says which field
var ErrValidation = errors.New("validation failed")

// Store-level outcomes are reported as-is
var (
	ErrBookNotFound       = repository.ErrBookNotFound
	ErrBookNotAvailable   = repository.ErrBookNotAvailable
	ErrUserNotFound       = repository.ErrUserNotFound
	ErrNoEligibleUser     = repository.ErrNoEligibleUser
	ErrUserHasActiveBooks = repository.ErrUserHasActiveBooks
)

var ErrNoUserSelected = errors.New("no user selected for checkout")

func isStoreOutcome(err error) bool {
	return errors.Is(err, ErrBookNotFound) ||
		errors.Is(err, ErrBookNotAvailable) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrNoEligibleUser) ||
		errors.Is(err, ErrUserHasActiveBooks)
}
