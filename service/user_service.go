package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"replyboost-backend/auth"
	"replyboost-backend/models"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
)

const minPasswordLength = 6

// UserService handles registration, login and profile management
type UserService struct {
	users UserStore
}

// UserServiceOption is a functional option for UserService
type UserServiceOption func(*UserService)

// UserWithStore sets the user store
func UserWithStore(store UserStore) UserServiceOption {
	return func(s *UserService) {
		s.users = store
	}
}

// NewUserService creates a new user service
func NewUserService(opts ...UserServiceOption) *UserService {
	s := &UserService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Email    string
	Password string
}

// AuthResult carries the user plus a signed token
type AuthResult struct {
	User  *models.User
	Token string
}

// Register creates a new free-plan account and returns a signed token
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	if s.users == nil {
		return nil, errors.New("user store not set")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, errors.New("email is required")
	}
	if len(req.Password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		Plan:         models.PlanFree,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// The pre-insert lookup is racy; a concurrent register lands on
		// the unique index instead.
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := auth.GenerateToken(user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string
	Password string
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505)
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Login verifies credentials and returns a signed token
func (s *UserService) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	if s.users == nil {
		return nil, errors.New("user store not set")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

// Me returns the account behind an authenticated email
func (s *UserService) Me(ctx context.Context, email string) (*models.User, error) {
	if s.users == nil {
		return nil, errors.New("user store not set")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UpdateProfileRequest represents a profile update
type UpdateProfileRequest struct {
	Email   string
	Profile models.UserProfile
}

// UpdateProfile replaces the user's freelance profile
func (s *UserService) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*models.User, error) {
	if s.users == nil {
		return nil, errors.New("user store not set")
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, ErrUserNotFound
	}

	if err := s.users.UpdateProfile(ctx, user.ID, req.Profile); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	user.Profile = req.Profile
	return user, nil
}
