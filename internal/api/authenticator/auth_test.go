package authenticator

import (
	"testing"

	"github.com/google/uuid"
	"github.com/rabnra2016/issue-tracker-mvp/internal/config"
	"github.com/stretchr/testify/require"
)

func newTestAuthenticator(secret string, ttlHours int) *Authenticator {
	return New(&config.Config{
		JWT_SECRET:      secret,
		TOKEN_TTL_HOURS: ttlHours,
	})
}

func TestGenerateAndVerifyToken(t *testing.T) {
	a := newTestAuthenticator("test-secret", 1)

	userID := uuid.New()
	token, err := a.GenerateToken(userID, "a@x.com", "A")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := a.VerifyAccessToken(token)
	require.NoError(t, err)
	require.Equal(t, userID.String(), claims.UserID)
	require.Equal(t, "a@x.com", claims.Email)
	require.Equal(t, "A", claims.Name)
}

func TestVerifyRejectsMalformedToken(t *testing.T) {
	a := newTestAuthenticator("test-secret", 1)

	for _, token := range []string{"", "garbage", "a.b.c"} {
		_, err := a.VerifyAccessToken(token)
		require.ErrorIs(t, err, ErrInvalidToken, "token %q", token)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer := newTestAuthenticator("secret-one", 1)
	verifier := newTestAuthenticator("secret-two", 1)

	token, err := issuer.GenerateToken(uuid.New(), "a@x.com", "A")
	require.NoError(t, err)

	_, err = verifier.VerifyAccessToken(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	a := newTestAuthenticator("test-secret", -1)

	token, err := a.GenerateToken(uuid.New(), "a@x.com", "A")
	require.NoError(t, err)

	_, err = a.VerifyAccessToken(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}
