package repository

import (
	"context"
	"errors"
	"fmt"

	"library_catalog/internal/model"

	"github.com/jackc/pgx/v5"
)

// AdminRepository defines operations for admin accounts
type AdminRepository interface {
	Create(ctx context.Context, admin *model.Admin) error
	FindByEmail(ctx context.Context, email string) (*model.Admin, error)
	FindByID(ctx context.Context, id int64) (*model.Admin, error)
}

type adminRepository struct {
	db DB
}

// NewAdminRepository creates a new AdminRepository
func NewAdminRepository(db DB) AdminRepository {
	return &adminRepository{db: db}
}

// Create inserts a new admin into the database
func (r *adminRepository) Create(ctx context.Context, admin *model.Admin) error {
	sql := `INSERT INTO admins (email, password_hash, created_at) 
            VALUES ($1, $2, $3) RETURNING id`
	err := r.db.QueryRow(ctx, sql, admin.Email, admin.PasswordHash, admin.CreatedAt).Scan(&admin.ID)
	if err != nil {
		if isPgError(err, pgUniqueViolation) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create admin: %w", err)
	}
	return nil
}

// FindByEmail retrieves an admin by email, returning nil if there is none
func (r *adminRepository) FindByEmail(ctx context.Context, email string) (*model.Admin, error) {
	admin := &model.Admin{}
	sql := `SELECT id, email, password_hash, created_at FROM admins WHERE email = $1`
	err := r.db.QueryRow(ctx, sql, email).Scan(&admin.ID, &admin.Email, &admin.PasswordHash, &admin.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find admin by email: %w", err)
	}
	return admin, nil
}

// FindByID retrieves an admin by ID
func (r *adminRepository) FindByID(ctx context.Context, id int64) (*model.Admin, error) {
	admin := &model.Admin{}
	sql := `SELECT id, email, password_hash, created_at FROM admins WHERE id = $1`
	err := r.db.QueryRow(ctx, sql, id).Scan(&admin.ID, &admin.Email, &admin.PasswordHash, &admin.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find admin by ID: %w", err)
	}
	return admin, nil
}
