package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/mediqueue/internal/model"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService("0123456789abcdef", "mediqueue", time.Hour)

	token, ttl, err := svc.GenerateAccessToken("drmehta", model.RoleDoctor, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, time.Hour, ttl)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "drmehta", claims.Username)
	assert.Equal(t, model.RoleDoctor, claims.Role)
	assert.Equal(t, "doc-1", claims.DoctorID)
}

func TestJWTService_RejectsForeignAndExpired(t *testing.T) {
	svc := NewJWTService("0123456789abcdef", "mediqueue", time.Hour)
	other := NewJWTService("fedcba9876543210", "mediqueue", time.Hour)

	token, _, err := other.GenerateAccessToken("admin", model.RoleAdmin, "")
	require.NoError(t, err)
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewJWTService("0123456789abcdef", "mediqueue", time.Hour).(*jwtService)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err = expired.GenerateAccessToken("admin", model.RoleAdmin, "")
	require.NoError(t, err)
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
