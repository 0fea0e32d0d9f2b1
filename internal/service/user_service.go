package service

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-library-api/internal/apperr"
	"go-library-api/internal/domain"
	"go-library-api/internal/repo"
)

// UserService covers user administration. Credential concerns live in
// AuthService; this one never touches passwords or tokens beyond the
// fact that deleting the row destroys them.
type UserService struct {
	db    *gorm.DB
	users repo.UserRepository
	log   *zap.Logger
}

func NewUserService(db *gorm.DB, users repo.UserRepository, log *zap.Logger) *UserService {
	return &UserService{db: db, users: users, log: log}
}

type UpdateUserInput struct {
	Name *string      `json:"name"`
	Role *domain.Role `json:"role"`
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(s.db.WithContext(ctx))
	if err != nil {
		return nil, apperr.Internal("list users", err)
	}
	return users, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.users.FindByID(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, apperr.Internal("find user", err)
	}
	if u == nil {
		return nil, apperr.NotFound("User not found")
	}
	return u, nil
}

func (s *UserService) Update(ctx context.Context, id string, in UpdateUserInput) (*domain.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperr.Validation("Name can't be blank")
		}
		u.Name = name
	}
	if in.Role != nil {
		if !in.Role.Valid() {
			return nil, apperr.Validation("Role is not included in the list")
		}
		u.Role = *in.Role
	}
	if err := s.users.Update(s.db.WithContext(ctx), u); err != nil {
		return nil, apperr.Internal("update user", err)
	}
	return u, nil
}

// Delete is a hard delete; the stored token dies with the row, loan
// history keeps its user_id references.
func (s *UserService) Delete(ctx context.Context, id string) error {
	rows, err := s.users.Delete(s.db.WithContext(ctx), id)
	if err != nil {
		return apperr.Internal("delete user", err)
	}
	if rows == 0 {
		return apperr.NotFound("User not found")
	}
	s.log.Info("user deleted", zap.String("user_id", id))
	return nil
}
