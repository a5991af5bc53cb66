package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/shelter-training/maps-trainer/internal/models"
	"github.com/shelter-training/maps-trainer/internal/storage"
)

var (
	// ErrInvalidCredentials covers both unknown email and wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailTaken is returned on duplicate registration.
	ErrEmailTaken = errors.New("email already registered")
	// ErrMissingFields is returned when required fields are blank.
	ErrMissingFields = errors.New("name, email and password are required")
	// ErrUserNotFound is returned when a token references an account that
	// no longer exists.
	ErrUserNotFound = errors.New("user not found")
)

// Service handles account registration and login.
type Service struct {
	repo   storage.Repository
	tokens *TokenManager
	now    func() time.Time
	newID  func() string
}

// NewService creates an auth service.
func NewService(repo storage.Repository, tokens *TokenManager) *Service {
	return &Service{
		repo:   repo,
		tokens: tokens,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  func() string { return uuid.NewString() },
	}
}

// Register creates an account and returns a signed token for it.
func (s *Service) Register(ctx context.Context, name, email, password string) (string, *models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))
	if name == "" || email == "" || strings.TrimSpace(password) == "" {
		return "", nil, ErrMissingFields
	}

	existing, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if existing != nil {
		return "", nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           s.newID(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return "", nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.tokens.Sign(Identity{UserID: user.ID, Name: user.Name, Email: user.Email})
	if err != nil {
		return "", nil, err
	}

	slog.Info("user registered", "user_id", user.ID)
	return token, user, nil
}

// Login verifies credentials and returns a signed token.
func (s *Service) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || strings.TrimSpace(password) == "" {
		return "", nil, ErrInvalidCredentials
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Sign(Identity{UserID: user.ID, Name: user.Name, Email: user.Email})
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

// User returns the account behind a verified identity. The token carries a
// name and email, but those can go stale; this is the authoritative record.
func (s *Service) User(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
