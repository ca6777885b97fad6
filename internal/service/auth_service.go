package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Petroo-2/marnstack4/internal/models"
	"github.com/Petroo-2/marnstack4/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

const defaultMinPasswordLen = 8

// AuthService handles registration, login and token verification.
type AuthService struct {
	users          repository.Users
	tokens         *TokenManager
	minPasswordLen int
}

func NewAuthService(users repository.Users, tokens *TokenManager, minPasswordLen int) *AuthService {
	if minPasswordLen <= 0 {
		minPasswordLen = defaultMinPasswordLen
	}
	return &AuthService{users: users, tokens: tokens, minPasswordLen: minPasswordLen}
}

// Register validates input, hashes the password and stores a new user with
// the default role. Only the salted one-way hash ever reaches the store.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if username == "" || email == "" {
		return nil, fmt.Errorf("%w: username and email are required", ErrInvalidInput)
	}
	if len(password) < s.minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, s.minPasswordLen)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleUser,
	}
	if _, err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateUser
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Login validates credentials and returns a signed session token. Unknown
// user and wrong password both yield ErrInvalidCredentials, nothing more.
func (s *AuthService) Login(ctx context.Context, usernameOrEmail, password string) (string, error) {
	u, err := s.users.GetByLogin(ctx, usernameOrEmail)
	if err != nil {
		return "", fmt.Errorf("look up user: %w", err)
	}
	if u == nil {
		return "", ErrInvalidCredentials
	}
	if err := verifyPassword(u.PasswordHash, password); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.tokens.Issue(models.Identity{UserID: u.ID, Role: u.Role})
}

// VerifyToken resolves a token into the identity it carries.
func (s *AuthService) VerifyToken(accessToken string) (models.Identity, error) {
	return s.tokens.Verify(accessToken)
}

// EnsureAdmin seeds an admin account at startup if it does not exist yet.
// Registration never assigns the admin role, so this is the only way in.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, email, password string) error {
	existing, err := s.users.GetByLogin(ctx, username)
	if err != nil {
		return fmt.Errorf("look up admin user: %w", err)
	}
	if existing != nil {
		return nil
	}

	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	_, err = s.users.Create(ctx, &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	})
	if err != nil && !errors.Is(err, repository.ErrDuplicate) {
		return fmt.Errorf("create admin user: %w", err)
	}
	return nil
}

// helper: hash password safely
func hashPassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", fmt.Errorf("%w: password is empty", ErrInvalidInput)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// helper: verify password against hash
func verifyPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
