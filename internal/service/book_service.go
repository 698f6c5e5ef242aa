package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"library_catalog/internal/model"
	"library_catalog/internal/repository"
	"library_catalog/internal/storage"
)

// ImageUpload is a book cover received from the client
type ImageUpload struct {
	FileName string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

// BookService defines the mutating book operations
type BookService interface {
	AddBook(ctx context.Context, req model.CreateBookRequest, image *ImageUpload) (*model.Book, error)
	DeleteBook(ctx context.Context, id int64) error
	Checkout(ctx context.Context, bookID, userID int64) (*model.Book, error)
	Checkin(ctx context.Context, bookID int64) (*model.Book, error)
}

type bookService struct {
	repo      repository.BookRepository
	blobs     storage.BlobStore
	maxActive int
}

// NewBookService creates a new BookService. maxActive is how many books one member may hold.
func NewBookService(repo repository.BookRepository, blobs storage.BlobStore, maxActive int) BookService {
	if maxActive < 1 {
		maxActive = 1
	}
	return &bookService{repo: repo, blobs: blobs, maxActive: maxActive}
}

// AddBook uploads the cover, then creates the record pointing at it. The record is only
// written after the upload has completed.
func (s *bookService) AddBook(ctx context.Context, req model.CreateBookRequest, image *ImageUpload) (*model.Book, error) {
	book := &model.Book{
		Title:    strings.TrimSpace(req.Title),
		Author:   strings.TrimSpace(req.Author),
		Category: strings.TrimSpace(req.Category),
		Owner:    strings.TrimSpace(req.Owner),
	}
	if book.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if image == nil || image.Open == nil {
		return nil, fmt.Errorf("%w: please take or select a book image", ErrValidation)
	}
	if err := storage.ValidateImage(image.FileName, image.Size); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	src, err := image.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	objectPath := storage.BookImagePath(image.FileName)
	url, err := s.blobs.Upload(ctx, objectPath, src)
	if err != nil {
		if errors.Is(err, storage.ErrFileSizeExceeded) {
			return nil, fmt.Errorf("%w: %w", ErrValidation, err)
		}
		return nil, fmt.Errorf("failed to upload book image: %w", err)
	}
	book.ImageURL = url

	if err := s.repo.Create(ctx, book); err != nil {
		if delErr := s.blobs.Delete(ctx, objectPath); delErr != nil {
			slog.Warn("failed to remove orphaned book image", "path", objectPath, "error", delErr)
		}
		return nil, fmt.Errorf("failed to create book in repo: %w", err)
	}

	slog.Info("book added", "book_id", book.ID, "title", book.Title)
	return book, nil
}

// DeleteBook removes a book in any status together with its cover
func (s *bookService) DeleteBook(ctx context.Context, id int64) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete book in repo: %w", err)
	}
	if deleted == nil {
		return nil
	}

	if objectPath, ok := s.blobs.PathFromURL(deleted.ImageURL); ok {
		if err := s.blobs.Delete(ctx, objectPath); err != nil {
			slog.Warn("book deleted but image removal failed", "book_id", id, "path", objectPath, "error", err)
		}
	}
	slog.Info("book deleted", "book_id", id)
	return nil
}

// Checkout issues a book to the selected member if the book is available and the member
// holds fewer than maxActive books. Either the whole assignment happens or nothing changes.
func (s *bookService) Checkout(ctx context.Context, bookID, userID int64) (*model.Book, error) {
	if userID <= 0 {
		return nil, ErrNoUserSelected
	}

	book, err := s.repo.Checkout(ctx, bookID, userID, s.maxActive)
	if err != nil {
		if isStoreOutcome(err) {
			slog.Info("checkout rejected", "book_id", bookID, "user_id", userID, "reason", err)
			return nil, err
		}
		return nil, fmt.Errorf("failed to check out book: %w", err)
	}

	slog.Info("book checked out", "book_id", bookID, "user_id", userID)
	return book, nil
}

// Checkin marks a book available again. Checking in an available book is a no-op.
func (s *bookService) Checkin(ctx context.Context, bookID int64) (*model.Book, error) {
	book, err := s.repo.Checkin(ctx, bookID)
	if err != nil {
		if isStoreOutcome(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to check in book: %w", err)
	}

	slog.Info("book checked in", "book_id", bookID)
	return book, nil
}
