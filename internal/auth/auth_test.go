package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHash(t *testing.T) {
	HashCost = bcrypt.MinCost
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("s3cret-pass", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

func TestSignerRoundTrip(t *testing.T) {
	s := NewSigner("test-secret", time.Hour)
	token, err := s.Generate("ana@example.com", "ana@example.com", "Ana", "hr", "HR")
	require.NoError(t, err)

	claims, err := s.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", claims.UserID)
	assert.Equal(t, "hr", claims.Role)
	assert.Equal(t, "HR", claims.Department)
}

func TestSignerRejectsForeignAndExpiredTokens(t *testing.T) {
	token, err := NewSigner("other-secret", time.Hour).Generate("u", "u@x", "U", "admin", "IT")
	require.NoError(t, err)
	_, err = NewSigner("test-secret", time.Hour).Parse(token)
	assert.Error(t, err)

	expired, err := NewSigner("test-secret", -time.Minute).Generate("u", "u@x", "U", "admin", "IT")
	require.NoError(t, err)
	_, err = NewSigner("test-secret", time.Hour).Parse(expired)
	assert.Error(t, err)
}

func TestSessionsLogoutRunsCallbacksOnce(t *testing.T) {
	s := NewSessions()
	var ran []string
	s.RegisterLogoutCallback("u1", "admin:travel", func() { ran = append(ran, "first") })
	s.RegisterLogoutCallback("u1", "admin:travel", func() { ran = append(ran, "replaced") })
	s.RegisterLogoutCallback("u1", "admin:leave", func() { ran = append(ran, "leave") })
	s.RegisterLogoutCallback("u2", "hr:leave", func() { ran = append(ran, "other user") })

	assert.Equal(t, 2, s.Logout("u1"))
	assert.ElementsMatch(t, []string{"replaced", "leave"}, ran)
	assert.Equal(t, 0, s.Logout("u1"))
}
