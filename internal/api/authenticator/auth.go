// Package authenticator issues and verifies the stateless bearer tokens
// used by the API. Tokens are self-contained HS256 JWTs, so revocation
// before natural expiry is not supported.
package authenticator

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rabnra2016/issue-tracker-mvp/internal/config"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// UserClaims is the payload carried by every access token.
type UserClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

type Authenticator struct {
	secret   []byte
	tokenTTL time.Duration
}

func New(conf *config.Config) *Authenticator {
	return &Authenticator{
		secret:   []byte(conf.JWT_SECRET),
		tokenTTL: time.Duration(conf.TOKEN_TTL_HOURS) * time.Hour,
	}
}

// GenerateToken issues a signed access token binding the user's id, email
// and display name.
func (a *Authenticator) GenerateToken(userID uuid.UUID, email, name string) (string, error) {
	now := time.Now()
	claims := &UserClaims{
		UserID: userID.String(),
		Email:  email,
		Name:   name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// VerifyAccessToken parses and validates a token, returning its claims.
// Malformed, expired, and badly signed tokens all yield ErrInvalidToken.
func (a *Authenticator) VerifyAccessToken(tokenString string) (*UserClaims, error) {
	claims := &UserClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	if _, err := uuid.Parse(claims.UserID); err != nil {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
