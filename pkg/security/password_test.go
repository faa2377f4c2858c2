package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("reception-desk")
	require.NoError(t, err)
	assert.True(t, h.Valid(hash))
	assert.NoError(t, h.Compare(hash, "reception-desk"))
	assert.Error(t, h.Compare(hash, "reception-desk!"))

	_, err = h.Hash("short")
	assert.ErrorIs(t, err, ErrPasswordShort)

	assert.False(t, h.Valid(""))
	assert.False(t, h.Valid("reception-desk"))
}

func TestNewBcryptHasher_ClampsCost(t *testing.T) {
	h := NewBcryptHasher(0).(*bcryptHasher)
	assert.Equal(t, bcrypt.DefaultCost, h.cost)

	h = NewBcryptHasher(bcrypt.MaxCost + 1).(*bcryptHasher)
	assert.Equal(t, bcrypt.DefaultCost, h.cost)
}
