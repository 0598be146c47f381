package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"userhub/internal/auth"
	apperrors "userhub/internal/errors"
	"userhub/internal/model"
	"userhub/internal/repository"
)

// AuthService handles authentication and session lifecycle.
type AuthService interface {
	Authenticate(ctx context.Context, email, password string) (*model.User, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	IssueToken(ctx context.Context, user *model.User) (string, error)
	Logout(ctx context.Context, userID uuid.UUID, token string) error
	LogoutAll(ctx context.Context, userID uuid.UUID) error
}

type authService struct {
	users      repository.UserRepository
	tokens     repository.TokenRepository
	jwtService *auth.JWTService
	hasher     *auth.PasswordHasher
	// dummyHash is compared against on the unknown-email path so login
	// timing does not reveal whether an email exists.
	dummyHash string
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	users repository.UserRepository,
	tokens repository.TokenRepository,
	jwtService *auth.JWTService,
	hasher *auth.PasswordHasher,
) AuthService {
	dummyHash, _ := hasher.Hash(uuid.NewString())
	return &authService{
		users:      users,
		tokens:     tokens,
		jwtService: jwtService,
		hasher:     hasher,
		dummyHash:  dummyHash,
	}
}

// Authenticate verifies email and password. Unknown email and wrong password
// fail with the same error.
func (s *authService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		// Same bcrypt cost as a real comparison.
		s.hasher.Check(password, s.dummyHash)
		return nil, apperrors.ErrInvalidCredentials
	}
	if !s.hasher.Check(password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}
	return user, nil
}

// Login authenticates and opens a new session.
func (s *authService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, "", err
	}

	token, err := s.IssueToken(ctx, user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// IssueToken signs a bearer token for the user and appends it to the active
// set. Signup calls this directly so a fresh account starts logged in.
func (s *authService) IssueToken(ctx context.Context, user *model.User) (string, error) {
	token, err := s.jwtService.GenerateToken(user.ID)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	if err := s.tokens.Append(ctx, user.ID, token); err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}
	return token, nil
}

// Logout closes the single session identified by the raw token.
func (s *authService) Logout(ctx context.Context, userID uuid.UUID, token string) error {
	if err := s.tokens.Remove(ctx, userID, token); err != nil {
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}

// LogoutAll closes every session for the user.
func (s *authService) LogoutAll(ctx context.Context, userID uuid.UUID) error {
	if err := s.tokens.RemoveAll(ctx, userID); err != nil {
		return fmt.Errorf("remove tokens: %w", err)
	}
	return nil
}
