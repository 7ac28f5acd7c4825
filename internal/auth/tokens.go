package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/andriandrian/lifeline-admin/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("invalid token")
)

type TokenKind string

const (
	AccessToken  TokenKind = "access"
	RefreshToken TokenKind = "refresh"
)

type AppClaims struct {
	UserID int64     `json:"user_id"`
	Name   string    `json:"name"`
	Kind   TokenKind `json:"kind"`
	jwt.RegisteredClaims
}

func (c *AppClaims) Identity() models.Identity {
	return models.Identity{ID: c.UserID, Name: c.Name}
}

// TokenManager signs and verifies both token kinds with one HMAC secret.
// Tokens are stateless; there is no revocation list, so expiry is the only invalidation.
type TokenManager struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenManager(secret, issuer string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:     []byte(secret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func (m *TokenManager) ttl(kind TokenKind) time.Duration {
	if kind == RefreshToken {
		return m.refreshTTL
	}
	return m.accessTTL
}

func (m *TokenManager) Mint(id models.Identity, kind TokenKind) (string, *AppClaims, error) {
	now := m.now()
	claims := &AppClaims{
		UserID: id.ID,
		Name:   id.Name,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl(kind))),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    m.issuer,
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign %s token: %w", kind, err)
	}

	return tokenString, claims, nil
}

// Verify reports ErrTokenExpired only for a well-signed token past its expiry;
// every other failure, including a token of the wrong kind, is ErrTokenInvalid.
func (m *TokenManager) Verify(tokenString string, kind TokenKind) (*AppClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AppClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithTimeFunc(m.now),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*AppClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.Kind != kind {
		return nil, fmt.Errorf("%w: expected %s token, got %q", ErrTokenInvalid, kind, claims.Kind)
	}

	return claims, nil
}
