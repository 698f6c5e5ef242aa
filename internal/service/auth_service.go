package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"library_catalog/internal/model"
	"library_catalog/internal/repository"
	"library_catalog/internal/utils"
)

var (
	ErrAdminExists        = errors.New("admin with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionRevoked     = errors.New("session has been signed out")
)

const minPasswordLength = 8

// AuthService signs admins in and out and answers whether a token is a live session
type AuthService interface {
	Login(ctx context.Context, email, password string) (*model.Admin, string, error)
	Logout(token string) error
	Authenticate(token string) (*utils.JWTClaims, error)
	Session(token string) model.Session
	CreateAdmin(ctx context.Context, email, password string) (*model.Admin, error)
	EnsureAdmin(ctx context.Context, email, password string) error
}

type authService struct {
	adminRepo repository.AdminRepository
	jwtUtil   *utils.JWTUtil

	mu      sync.Mutex
	revoked map[string]time.Time // token ID -> expiry
}

// NewAuthService creates a new AuthService
func NewAuthService(adminRepo repository.AdminRepository, jwtUtil *utils.JWTUtil) AuthService {
	return &authService{
		adminRepo: adminRepo,
		jwtUtil:   jwtUtil,
		revoked:   make(map[string]time.Time),
	}
}

// Login authenticates an admin and returns a JWT token
func (s *authService) Login(ctx context.Context, email, password string) (*model.Admin, string, error) {
	admin, err := s.adminRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, "", fmt.Errorf("error finding admin by email: %w", err)
	}
	if admin == nil {
		return nil, "", ErrInvalidCredentials
	}

	if !utils.CheckPasswordHash(password, admin.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.jwtUtil.GenerateToken(admin.ID, admin.Email, model.RoleAdmin)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	slog.Info("admin signed in", "admin_id", admin.ID)
	return admin, token, nil
}

// Logout revokes the token until it would have expired anyway
func (s *authService) Logout(token string) error {
	claims, err := s.jwtUtil.ValidateToken(token)
	if err != nil {
		return fmt.Errorf("failed to validate token: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, exp := range s.revoked {
		if exp.Before(now) {
			delete(s.revoked, id)
		}
	}
	s.revoked[claims.ID] = claims.ExpiresAt.Time

	slog.Info("admin signed out", "admin_id", claims.AdminID)
	return nil
}

// Authenticate validates a token and rejects signed-out sessions
func (s *authService) Authenticate(token string) (*utils.JWTClaims, error) {
	claims, err := s.jwtUtil.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	_, revoked := s.revoked[claims.ID]
	s.mu.Unlock()
	if revoked {
		return nil, ErrSessionRevoked
	}
	return claims, nil
}

// Session reports the admin gate state for a token; an empty or bad token is simply signed out
func (s *authService) Session(token string) model.Session {
	if token == "" {
		return model.Session{}
	}
	claims, err := s.Authenticate(token)
	if err != nil || claims.Role != model.RoleAdmin {
		return model.Session{}
	}
	return model.Session{
		Authenticated: true,
		AdminID:       claims.AdminID,
		Email:         claims.Email,
		ExpiresAt:     claims.ExpiresAt.Time,
	}
}

// CreateAdmin registers a new admin account
func (s *authService) CreateAdmin(ctx context.Context, email, password string) (*model.Admin, error) {
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: a valid email is required", ErrValidation)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLength)
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &model.Admin{
		Email:        email,
		PasswordHash: hashedPassword,
		CreatedAt:    time.Now(),
	}
	if err := s.adminRepo.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAdminExists
		}
		return nil, fmt.Errorf("failed to create admin in repository: %w", err)
	}

	slog.Info("admin account created", "admin_id", admin.ID, "email", admin.Email)
	return admin, nil
}

// EnsureAdmin creates the bootstrap admin unless it already exists
func (s *authService) EnsureAdmin(ctx context.Context, email, password string) error {
	existing, err := s.adminRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return fmt.Errorf("failed to check existing admin: %w", err)
	}
	if existing != nil {
		return nil
	}
	if _, err := s.CreateAdmin(ctx, email, password); err != nil && !errors.Is(err, ErrAdminExists) {
		return err
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
