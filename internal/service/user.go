package service

import (
	"context"
	"log/slog"

	"classlab/internal/domain"
)

// UserService provisions upstream accounts and manages their SSH keys.
type UserService struct {
	users    domain.UserStore
	upstream domain.Upstream
	logger   *slog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(users domain.UserStore, upstream domain.Upstream, logger *slog.Logger) *UserService {
	return &UserService{users: users, upstream: upstream, logger: logger}
}

// Create provisions an upstream account and records its mapping. The local
// key for the account is the full email; username and display name are both
// the email's local part.
func (s *UserService) Create(ctx context.Context, req domain.CreateUserRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	username := req.Username()
	userID, err := s.upstream.CreateUser(ctx, req.Email, username, username, req.Password)
	if err != nil {
		return err
	}
	if err := s.users.Insert(ctx, req.Email, userID); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "user created", "email", req.Email, "user_id", userID)
	return nil
}

// ReplaceKey removes every SSH key the user has upstream and installs the
// given one. Each account keeps exactly one key at a time.
func (s *UserService) ReplaceKey(ctx context.Context, email string, req domain.UpdateKeyRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	userID, err := s.users.Lookup(ctx, email)
	if err != nil {
		return err
	}
	if err := s.upstream.RemoveAllKeys(ctx, userID); err != nil {
		return err
	}
	return s.upstream.AddKey(ctx, userID, "key", req.Key)
}
