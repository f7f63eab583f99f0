package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	assert.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, VerifyPassword("correct horse battery staple", hash))
	assert.False(t, VerifyPassword("wrong password", hash))
	assert.False(t, VerifyPassword("correct horse battery staple", "not-a-bcrypt-hash"))
}

func TestAccessTokenRoundtrip(t *testing.T) {
	secret := "test-secret"
	userID := uuid.New().String()

	t.Run("ValidToken", func(t *testing.T) {
		token, err := CreateAccessToken(secret, userID, time.Hour)
		assert.NoError(t, err)

		sub, err := ParseAccessToken(secret, token)
		assert.NoError(t, err)
		assert.Equal(t, userID, sub)
	})

	t.Run("ExpiredToken", func(t *testing.T) {
		token, err := CreateAccessToken(secret, userID, -time.Minute)
		assert.NoError(t, err)

		_, err = ParseAccessToken(secret, token)
		assert.Error(t, err)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		token, err := CreateAccessToken(secret, userID, time.Hour)
		assert.NoError(t, err)

		_, err = ParseAccessToken("another-secret", token)
		assert.Error(t, err)
	})

	t.Run("EmptySecret", func(t *testing.T) {
		_, err := CreateAccessToken("", userID, time.Hour)
		assert.Error(t, err)
	})

	t.Run("GarbageToken", func(t *testing.T) {
		_, err := ParseAccessToken(secret, "not-a-jwt")
		assert.Error(t, err)
	})
}

func TestPasswordResetToken(t *testing.T) {
	secret := "test-secret"

	t.Run("Roundtrip", func(t *testing.T) {
		token, err := CreatePasswordResetToken(secret, "ada@example.com", time.Hour)
		assert.NoError(t, err)

		email, err := VerifyPasswordResetToken(secret, token)
		assert.NoError(t, err)
		assert.Equal(t, "ada@example.com", email)
	})

	t.Run("AccessTokenRejected", func(t *testing.T) {
		// Access tokens carry no reset audience and must not reset passwords.
		token, err := CreateAccessToken(secret, uuid.New().String(), time.Hour)
		assert.NoError(t, err)

		_, err = VerifyPasswordResetToken(secret, token)
		assert.Error(t, err)
	})

	t.Run("ResetTokenIsNotAnAccessToken", func(t *testing.T) {
		token, err := CreatePasswordResetToken(secret, "ada@example.com", time.Hour)
		assert.NoError(t, err)

		// Parsing succeeds as a bare JWT; middleware relies on the user lookup
		// failing because the subject is an email, not a user id.
		sub, err := ParseAccessToken(secret, token)
		assert.NoError(t, err)
		assert.Equal(t, "ada@example.com", sub)
	})

	t.Run("Expired", func(t *testing.T) {
		token, err := CreatePasswordResetToken(secret, "ada@example.com", -time.Minute)
		assert.NoError(t, err)

		_, err = VerifyPasswordResetToken(secret, token)
		assert.Error(t, err)
	})
}
