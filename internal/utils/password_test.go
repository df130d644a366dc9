package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	h := &BcryptHasher{Cost: bcrypt.MinCost}
	digest, err := h.Hash("correct-horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct-horse", digest)
	assert.True(t, h.Verify("correct-horse", digest))
	assert.False(t, h.Verify("wrong", digest))
	assert.False(t, h.Verify("correct-horse", "not-a-digest"))

	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher().Cost)
}
