package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yigit/coursehub/internal/app/models"
)

func newTestJWT() *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: time.Hour,
		TokenIssuer:    "coursehub-test",
	})
}

func TestJWT_RoundTrip(t *testing.T) {
	svc := newTestJWT()
	identity := models.Identity{ID: 7, Name: "Jane", Email: "jane@example.com", Role: models.RoleStudent}

	token, expiresIn, err := svc.GenerateAccessToken(identity)
	require.NoError(t, err)
	assert.Equal(t, 3600, expiresIn)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, identity, claims.Identity())
}

func TestJWT_Rejects(t *testing.T) {
	svc := newTestJWT()
	identity := models.Identity{ID: 1, Name: "A", Email: "a@example.com", Role: models.RoleAdmin}
	token, _, err := svc.GenerateAccessToken(identity)
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTService(JWTConfig{SecretKey: "other", AccessTokenExp: time.Hour, TokenIssuer: "coursehub-test"})
		_, err := other.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewJWTService(JWTConfig{SecretKey: "test-secret", AccessTokenExp: time.Hour, TokenIssuer: "elsewhere"})
		_, err := other.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		later := newTestJWT()
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := later.ValidateToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := svc.ValidateToken("")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestExtractBearerToken(t *testing.T) {
	tok, err := ExtractBearerToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", tok)

	tok, err = ExtractBearerToken("bearer   xyz")
	require.NoError(t, err)
	assert.Equal(t, "xyz", tok)

	for _, bad := range []string{"", "Bearer", "Basic abc", "abc.def.ghi"} {
		_, err := ExtractBearerToken(bad)
		assert.ErrorIs(t, err, ErrInvalidFormat, bad)
	}
}

func TestPasswordHashing(t *testing.T) {
	h := BcryptHasher{Cost: bcrypt.MinCost}
	hash, err := h.Hash("Admin@12345")
	require.NoError(t, err)

	assert.True(t, h.Check(hash, "Admin@12345"))
	assert.False(t, h.Check(hash, "admin@12345"))
	assert.False(t, CheckPassword("not-a-hash", "Admin@12345"))
}
