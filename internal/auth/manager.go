package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/andriandrian/lifeline-admin/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotOperator        = errors.New("account is not allowed to use the admin dashboard")
)

// UserFinder is the identity source login delegates to.
type UserFinder interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=5"`
}

// Manager drives the session lifecycle: Anonymous -> Authenticated on Login,
// AccessExpired -> Authenticated on Refresh, anything -> Anonymous on Logout.
type Manager struct {
	tokens *TokenManager
	users  UserFinder
}

func NewManager(tokens *TokenManager, users UserFinder) *Manager {
	return &Manager{tokens: tokens, users: users}
}

func (m *Manager) Tokens() *TokenManager {
	return m.tokens
}

func (m *Manager) Login(ctx context.Context, creds Credentials) (*models.Session, error) {
	user, err := m.users.GetUserByEmail(ctx, strings.TrimSpace(strings.ToLower(creds.Email)))
	if err != nil {
		return nil, fmt.Errorf("look up user: %w", err)
	}
	if user == nil || !CheckPasswordHash(creds.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsAdmin {
		return nil, ErrNotOperator
	}

	id := models.Identity{ID: user.ID, Name: user.DisplayName()}

	accessToken, accessClaims, err := m.tokens.Mint(id, AccessToken)
	if err != nil {
		return nil, err
	}
	refreshToken, _, err := m.tokens.Mint(id, RefreshToken)
	if err != nil {
		return nil, err
	}

	return &models.Session{
		User:         id,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		IssuedAt:     accessClaims.IssuedAt.Time,
		ExpiresAt:    accessClaims.ExpiresAt.Time,
	}, nil
}

func (m *Manager) Verify(accessToken string) (*AppClaims, error) {
	return m.tokens.Verify(accessToken, AccessToken)
}

// Refresh mints a new access token for the identity inside a still-valid refresh
// token. The refresh token itself is neither rotated nor extended.
func (m *Manager) Refresh(refreshToken string) (string, *AppClaims, error) {
	if refreshToken == "" {
		return "", nil, ErrTokenInvalid
	}

	claims, err := m.tokens.Verify(refreshToken, RefreshToken)
	if err != nil {
		return "", nil, err
	}

	return m.tokens.Mint(claims.Identity(), AccessToken)
}
