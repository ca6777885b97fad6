package service

import (
	"fmt"
	"time"

	"github.com/Petroo-2/marnstack4/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// Claims defines JWT claims carried by a session token.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
}

// TokenManager issues and verifies signed session tokens. The signing key
// comes from configuration at construction time, never from source.
type TokenManager struct {
	signingKey []byte
	ttl        time.Duration
}

const defaultTokenTTL = time.Hour

func NewTokenManager(signingKey string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenManager{signingKey: []byte(signingKey), ttl: ttl}
}

// Issue signs a time-bounded token carrying the identity.
func (m *TokenManager) Issue(ident models.Identity) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID: ident.UserID,
		Role:   ident.Role,
	})
	signed, err := token.SignedString(m.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses the token and returns the embedded identity. Every failure
// mode (malformed, bad signature, wrong alg, expired) collapses into
// ErrInvalidToken so callers cannot probe which check failed.
func (m *TokenManager) Verify(accessToken string) (models.Identity, error) {
	token, err := jwt.ParseWithClaims(accessToken, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Ensure HMAC signing is used
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.signingKey, nil
	})
	if err != nil {
		return models.Identity{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return models.Identity{}, ErrInvalidToken
	}

	return models.Identity{UserID: claims.UserID, Role: claims.Role}, nil
}
