package service

import (
	"context"
	"log/slog"

	"github.com/romboooo/distr-is/internal/cache"
	"github.com/romboooo/distr-is/internal/domain"
)

// UserService handles account listing and management (admin surface)
type UserService struct {
	repo   domain.UserRepository
	cache  *cache.Store
	logger *slog.Logger
}

// NewUserService creates a new user service
func NewUserService(repo domain.UserRepository, store *cache.Store, logger *slog.Logger) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{repo: repo, cache: store, logger: logger}
}

// GetUsers returns one page of accounts, optionally filtered by role
func (s *UserService) GetUsers(ctx context.Context, page domain.PageRequest, role domain.Role) (*domain.Page[domain.User], error) {
	key := keyUsers(page.Number, page.Size, string(role))
	return cache.ReadAs(ctx, s.cache, key, func(ctx context.Context) (*domain.Page[domain.User], error) {
		return s.repo.GetUsers(ctx, page, role)
	})
}

// GetUser returns a single account by id
func (s *UserService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return cache.ReadAs(ctx, s.cache, keyUser(id), func(ctx context.Context) (*domain.User, error) {
		return s.repo.GetUser(ctx, id)
	})
}

// CreateUser registers an account on behalf of an admin
func (s *UserService) CreateUser(ctx context.Context, login, password string, role domain.Role) (*domain.User, error) {
	user, err := s.repo.CreateUser(ctx, login, password, role)
	if err != nil {
		return nil, err
	}
	applyInvalidation(s.cache, MutationCreateUser, Subject{UserID: user.ID})
	s.logger.Info("user created", "id", user.ID, "login", user.Login, "role", user.Role)
	return user, nil
}

// UpdateUser patches an account's login and/or role
func (s *UserService) UpdateUser(ctx context.Context, id int64, login string, role domain.Role) (*domain.User, error) {
	user, err := s.repo.UpdateUser(ctx, id, login, role)
	if err != nil {
		return nil, err
	}
	applyInvalidation(s.cache, MutationUpdateUser, Subject{UserID: user.ID})
	s.logger.Info("user updated", "id", user.ID)
	return user, nil
}

// DeleteUser removes an account
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return err
	}
	applyInvalidation(s.cache, MutationDeleteUser, Subject{UserID: id})
	s.logger.Info("user deleted", "id", id)
	return nil
}
