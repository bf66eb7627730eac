package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJWTConfig(t *testing.T) {
	tests := []struct {
		name       string
		secret     string
		expiration string
		issuer     string
		wantTTL    time.Duration
		wantIssuer string
		wantErr    string
	}{
		{name: "defaults", secret: "s3cret", wantTTL: 24 * time.Hour, wantIssuer: "resume-tailor"},
		{name: "custom", secret: "s3cret", expiration: "48", issuer: "me", wantTTL: 48 * time.Hour, wantIssuer: "me"},
		{name: "missing secret", wantErr: "JWT_SECRET is required"},
		{name: "non numeric expiration", secret: "s", expiration: "soon", wantErr: "invalid JWT_EXPIRATION_HOURS"},
		{name: "zero expiration", secret: "s", expiration: "0", wantErr: "at least 1 hour"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", tt.secret)
			t.Setenv("JWT_EXPIRATION_HOURS", tt.expiration)
			t.Setenv("JWT_ISSUER", tt.issuer)

			cfg, err := NewJWTConfig()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.secret, cfg.Secret)
			assert.Equal(t, tt.wantTTL, cfg.TTL)
			assert.Equal(t, tt.wantIssuer, cfg.Issuer)
		})
	}
}

func TestNewPasswordConfig(t *testing.T) {
	t.Setenv("BCRYPT_COST", "")
	t.Setenv("PASSWORD_PEPPER", "")
	cfg, err := NewPasswordConfig()
	require.NoError(t, err)
	assert.Equal(t, DefaultBcryptCost, cfg.BcryptCost)

	t.Setenv("BCRYPT_COST", "9")
	_, err = NewPasswordConfig()
	assert.ErrorContains(t, err, "out of range")

	t.Setenv("BCRYPT_COST", "abc")
	_, err = NewPasswordConfig()
	assert.ErrorContains(t, err, "invalid BCRYPT_COST")
}

func TestPasswordConfig_HashAndVerify(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: 10, Pepper: "pepper"}

	hash, err := cfg.HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	assert.True(t, cfg.VerifyPassword("correct horse", hash))
	assert.False(t, cfg.VerifyPassword("wrong horse", hash))

	unpeppered := &PasswordConfig{BcryptCost: 10}
	assert.False(t, unpeppered.VerifyPassword("correct horse", hash), "pepper must be part of the hash input")
}
