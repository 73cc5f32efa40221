package services

import (
	"context"
	"fmt"

	"github.com/cardadmin/apiserver/internal/auth"
	"github.com/cardadmin/apiserver/types"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByUsername(ctx context.Context, username string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
}

// UserService encapsulates user use-cases.
type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) GetByID(ctx context.Context, id int) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (types.User, error) {
	return s.repo.GetByUsername(ctx, username)
}

// Register hashes the password and stores a new account.
func (s *UserService) Register(ctx context.Context, username, email, password string, isAdmin bool) (types.User, error) {
	hashed, err := auth.HashPassword(password)
	if err != nil {
		return types.User{}, fmt.Errorf("hash password: %w", err)
	}
	return s.repo.Create(ctx, types.User{
		Username:     username,
		Email:        email,
		IsAdmin:      isAdmin,
		PasswordHash: hashed,
	})
}
