package service

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-library-api/internal/apperr"
	"go-library-api/internal/core/auth"
	"go-library-api/internal/domain"
	"go-library-api/internal/repo"
	"go-library-api/pkg/utils"
)

// AuthService is the credential store: sign-up, password verification
// and the opaque bearer-token lifecycle.
type AuthService struct {
	db         *gorm.DB
	users      repo.UserRepository
	tokens     *auth.TokenSource
	bcryptCost int
	log        *zap.Logger
}

func NewAuthService(db *gorm.DB, users repo.UserRepository, tokens *auth.TokenSource, bcryptCost int, log *zap.Logger) *AuthService {
	return &AuthService{db: db, users: users, tokens: tokens, bcryptCost: bcryptCost, log: log}
}

type SignUpInput struct {
	Name                 string `json:"name"`
	Email                string `json:"email_address"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

func (in *SignUpInput) validate() []string {
	var msgs []string
	if strings.TrimSpace(in.Name) == "" {
		msgs = append(msgs, "Name can't be blank")
	}
	if domain.NormalizeEmail(in.Email) == "" {
		msgs = append(msgs, "Email address can't be blank")
	}
	if in.Password == "" {
		msgs = append(msgs, "Password can't be blank")
	}
	if in.Password != in.PasswordConfirmation {
		msgs = append(msgs, "Password confirmation doesn't match Password")
	}
	return msgs
}

// SignUp creates a member account and logs it in (token issued
// immediately). Librarians are never created here; see cmd/seed.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (*domain.User, string, error) {
	if msgs := in.validate(); len(msgs) > 0 {
		return nil, "", apperr.Validation(msgs...)
	}
	email := domain.NormalizeEmail(in.Email)

	existing, err := s.users.FindByEmail(s.db.WithContext(ctx), email)
	if err != nil {
		return nil, "", apperr.Internal("lookup user", err)
	}
	if existing != nil {
		return nil, "", apperr.Validation("Email address has already been taken")
	}

	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, "", apperr.Internal("hash password", err)
	}
	u := domain.NewUser(utils.NewID(), strings.TrimSpace(in.Name), email, hash, domain.RoleMember)

	if err := s.users.Create(s.db.WithContext(ctx), u); err != nil {
		// unique-index race on email surfaces here
		if isDupKey(err) {
			return nil, "", apperr.Validation("Email address has already been taken")
		}
		return nil, "", apperr.Internal("create user", err)
	}
	tok, err := s.IssueToken(ctx, u)
	if err != nil {
		return nil, "", err
	}
	s.log.Info("user signed up", zap.String("user_id", u.ID))
	return u, tok, nil
}

// Authenticate verifies email+password. The failure mode is a single
// Unauthenticated error; callers can not distinguish unknown email from
// wrong password.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	u, err := s.users.FindByEmail(s.db.WithContext(ctx), domain.NormalizeEmail(email))
	if err != nil {
		return nil, apperr.Internal("lookup user", err)
	}
	if u == nil || !utils.CheckPassword(password, u.PasswordHash) {
		return nil, apperr.Unauthenticated("Invalid credentials")
	}
	return u, nil
}

// IssueToken rotates the user's bearer token: generate, retry on the
// (astronomically unlikely) collision with another user's token,
// persist. The old token stops working the moment the new one lands.
func (s *AuthService) IssueToken(ctx context.Context, u *domain.User) (string, error) {
	db := s.db.WithContext(ctx)
	for {
		tok, err := s.tokens.Generate()
		if err != nil {
			return "", apperr.Internal("generate token", err)
		}
		taken, err := s.users.TokenExists(db, tok)
		if err != nil {
			return "", apperr.Internal("check token", err)
		}
		if taken {
			continue
		}
		if err := s.users.SetToken(db, u.ID, &tok); err != nil {
			if isDupKey(err) {
				continue
			}
			return "", apperr.Internal("store token", err)
		}
		u.AuthToken = &tok
		return tok, nil
	}
}

// RevokeToken logs the user out everywhere.
func (s *AuthService) RevokeToken(ctx context.Context, u *domain.User) error {
	if err := s.users.SetToken(s.db.WithContext(ctx), u.ID, nil); err != nil {
		return apperr.Internal("revoke token", err)
	}
	u.AuthToken = nil
	return nil
}

// ResolveToken maps a presented bearer token to its user; (nil, nil)
// means unauthenticated.
func (s *AuthService) ResolveToken(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, nil
	}
	u, err := s.users.FindByToken(s.db.WithContext(ctx), token)
	if err != nil {
		return nil, apperr.Internal("resolve token", err)
	}
	return u, nil
}

func isDupKey(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation") ||
		strings.Contains(msg, "duplicate key")
}
