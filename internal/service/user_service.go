package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"library_catalog/internal/model"
	"library_catalog/internal/repository"
)

// UserService manages library members
type UserService interface {
	AddUser(ctx context.Context, req model.CreateUserRequest) (*model.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

type userService struct {
	repo repository.UserRepository
}

// NewUserService creates a new UserService
func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) AddUser(ctx context.Context, req model.CreateUserRequest) (*model.User, error) {
	user := &model.User{
		Name:  strings.TrimSpace(req.Name),
		Phone: strings.TrimSpace(req.Phone),
		Flat:  strings.TrimSpace(req.Flat),
	}
	if user.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if user.Phone == "" {
		return nil, fmt.Errorf("%w: phone is required", ErrValidation)
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user in repo: %w", err)
	}
	slog.Info("user added", "user_id", user.ID)
	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if isStoreOutcome(err) {
			return err
		}
		return fmt.Errorf("failed to delete user in repo: %w", err)
	}
	slog.Info("user deleted", "user_id", id)
	return nil
}
