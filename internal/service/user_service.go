package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fjod/go_cart/storefront/internal/auth"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/repository"
	"github.com/sirupsen/logrus"
)

// TokenManager issues and revokes session tokens.
type TokenManager interface {
	Issue(userID int64) (string, time.Time, error)
	Revoke(ctx context.Context, id *auth.Identity) error
	RevokeUser(ctx context.Context, userID int64) error
}

// Session is a successful login: the token and the user it belongs to.
// User.PasswordHash is always empty.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

type UserService struct {
	repo   repository.UserRepository
	hasher *auth.PasswordHasher
	tokens TokenManager
	log    logrus.FieldLogger
}

func NewUserService(repo repository.UserRepository, hasher *auth.PasswordHasher, tokens TokenManager, log logrus.FieldLogger) *UserService {
	return &UserService{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		log:    log,
	}
}

func (s *UserService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || strings.TrimSpace(password) == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", ErrValidation)
	}
	if len(password) > auth.MaxPasswordLength {
		return nil, fmt.Errorf("%w: password must be at most %d bytes", ErrValidation, auth.MaxPasswordLength)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, fmt.Errorf("%w: %v", ErrConflict, err)
		}
		return nil, err
	}

	s.log.WithField("user_id", user.ID).Info("user registered")
	return withoutSecret(user), nil
}

func (s *UserService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		s.hasher.CompareDummy(password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !s.hasher.Compare(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	s.log.WithField("user_id", user.ID).Info("user logged in")
	return &Session{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      withoutSecret(user),
	}, nil
}

func (s *UserService) Logout(ctx context.Context, id *auth.Identity) error {
	if err := s.tokens.Revoke(ctx, id); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// DeleteAccount removes the user and invalidates all of their tokens.
// Their orders stay on record with no customer.
func (s *UserService) DeleteAccount(ctx context.Context, id *auth.Identity) error {
	if err := s.repo.DeleteUser(ctx, id.UserID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return fmt.Errorf("%w: %v", ErrNotFound, err)
		}
		return err
	}

	if err := s.tokens.RevokeUser(ctx, id.UserID); err != nil {
		// the account is already gone and stale tokens no longer reach any data
		s.log.WithError(err).WithField("user_id", id.UserID).Error("revoke user tokens failed")
	}

	s.log.WithField("user_id", id.UserID).Info("user deleted")
	return nil
}

func withoutSecret(u *domain.User) *domain.User {
	out := *u
	out.PasswordHash = ""
	return &out
}
