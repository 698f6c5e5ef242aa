package repository

import (
	"context"
	"errors"
	"fmt"

	"library_catalog/internal/model"

	"github.com/jackc/pgx/v5"
)

// BookRepository defines operations for book data
type BookRepository interface {
	Create(ctx context.Context, book *model.Book) error
	FindByID(ctx context.Context, id int64) (*model.Book, error)
	FindAll(ctx context.Context) ([]model.Book, error)
	Delete(ctx context.Context, id int64) (*model.Book, error)
	Checkout(ctx context.Context, bookID, userID int64, maxActive int) (*model.Book, error)
	Checkin(ctx context.Context, bookID int64) (*model.Book, error)
}

type bookRepository struct {
	db DB
}

// NewBookRepository creates a new BookRepository
func NewBookRepository(db DB) BookRepository {
	return &bookRepository{db: db}
}

const bookColumns = `id, title, author, category, owner, image_url, status,
	issued_to_id, issued_to_name, issued_to_phone, issued_to_flat, issued_at, created_at, updated_at`

func scanBook(row pgx.Row) (*model.Book, error) {
	var b model.Book
	var status string
	var holderID *int64
	var holderName, holderPhone, holderFlat *string
	err := row.Scan(
		&b.ID, &b.Title, &b.Author, &b.Category, &b.Owner, &b.ImageURL, &status,
		&holderID, &holderName, &holderPhone, &holderFlat, &b.IssuedAt, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.Status = model.BookStatus(status)
	if holderID != nil {
		b.IssuedTo = &model.Holder{
			ID:    *holderID,
			Name:  deref(holderName),
			Phone: deref(holderPhone),
			Flat:  deref(holderFlat),
		}
	}
	return &b, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Create inserts a new book. New books always start Available with no holder.
func (r *bookRepository) Create(ctx context.Context, b *model.Book) error {
	sql := `INSERT INTO books (title, author, category, owner, image_url, status)
            VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, sql, b.Title, b.Author, b.Category, b.Owner, b.ImageURL, string(model.StatusAvailable)).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create book: %w", err)
	}
	b.Status = model.StatusAvailable
	b.IssuedTo = nil
	b.IssuedAt = nil
	return nil
}

// FindByID retrieves a book by its ID, returning nil if there is none
func (r *bookRepository) FindByID(ctx context.Context, id int64) (*model.Book, error) {
	b, err := scanBook(r.db.QueryRow(ctx, `SELECT `+bookColumns+` FROM books WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find book by ID: %w", err)
	}
	return b, nil
}

// FindAll returns every book, newest first
func (r *bookRepository) FindAll(ctx context.Context) ([]model.Book, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookColumns+` FROM books ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query books: %w", err)
	}
	defer rows.Close()

	books := []model.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book row: %w", err)
		}
		books = append(books, *b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating book rows: %w", err)
	}
	return books, nil
}

// Delete removes a book in any status and returns what was removed, or nil if it was already gone
func (r *bookRepository) Delete(ctx context.Context, id int64) (*model.Book, error) {
	b, err := scanBook(r.db.QueryRow(ctx, `DELETE FROM books WHERE id = $1 RETURNING `+bookColumns, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to delete book: %w", err)
	}
	return b, nil
}

// Checkout assigns a book to a member in a single transaction. The book and member rows are
// locked, so two checkouts competing for the same member run one after the other and the
// second sees the first one's assignment when it counts the member's books.
func (r *bookRepository) Checkout(ctx context.Context, bookID, userID int64, maxActive int) (book *model.Book, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin checkout: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var status string
	err = tx.QueryRow(ctx, `SELECT status FROM books WHERE id = $1 FOR UPDATE`, bookID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to lock book: %w", err)
	}
	if model.BookStatus(status) != model.StatusAvailable {
		return nil, ErrBookNotAvailable
	}

	var holder model.Holder
	err = tx.QueryRow(ctx, `SELECT id, name, phone, flat FROM users WHERE id = $1 FOR UPDATE`, userID).
		Scan(&holder.ID, &holder.Name, &holder.Phone, &holder.Flat)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to lock user: %w", err)
	}

	var active int
	err = tx.QueryRow(ctx, `SELECT COUNT(*) FROM books WHERE issued_to_id = $1`, userID).Scan(&active)
	if err != nil {
		return nil, fmt.Errorf("failed to count active books: %w", err)
	}
	if active >= maxActive {
		return nil, ErrNoEligibleUser
	}

	sql := `UPDATE books
            SET status = $1, issued_to_id = $2, issued_to_name = $3, issued_to_phone = $4, issued_to_flat = $5, issued_at = NOW()
            WHERE id = $6 RETURNING ` + bookColumns
	book, err = scanBook(tx.QueryRow(ctx, sql,
		string(model.StatusCheckedOut), holder.ID, holder.Name, holder.Phone, holder.Flat, bookID))
	if err != nil {
		return nil, fmt.Errorf("failed to mark book checked out: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit checkout: %w", err)
	}
	return book, nil
}

// Checkin returns a book to the shelf. Checking in an available book changes nothing.
func (r *bookRepository) Checkin(ctx context.Context, bookID int64) (*model.Book, error) {
	sql := `UPDATE books
            SET status = $1, issued_to_id = NULL, issued_to_name = NULL, issued_to_phone = NULL, issued_to_flat = NULL, issued_at = NULL
            WHERE id = $2 AND status = $3 RETURNING ` + bookColumns
	b, err := scanBook(r.db.QueryRow(ctx, sql, string(model.StatusAvailable), bookID, string(model.StatusCheckedOut)))
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to check in book: %w", err)
	}

	existing, err := r.FindByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrBookNotFound
	}
	return existing, nil
}
