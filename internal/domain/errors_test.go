package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	err := NotFound("Wallet not found")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrValidation)

	wrapped := fmt.Errorf("lookup: %w", err)
	assert.ErrorIs(t, wrapped, ErrNotFound)
	assert.Equal(t, CodeNotFound, CodeOf(wrapped))
}

func TestStorage(t *testing.T) {
	assert.NoError(t, Storage(nil))

	t.Run("wraps foreign errors", func(t *testing.T) {
		err := Storage(context.DeadlineExceeded)
		assert.ErrorIs(t, err, ErrStorage)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, "Storage unavailable, please retry", err.Error())
	})

	t.Run("keeps domain errors", func(t *testing.T) {
		in := InsufficientBalance()
		out := Storage(in)
		assert.Same(t, in, out)
		assert.NotErrorIs(t, out, ErrStorage)
	})
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeConflict, CodeOf(Conflict("Email already exists")))
	assert.Equal(t, Code(""), CodeOf(errors.New("boom")))
	assert.Equal(t, Code(""), CodeOf(nil))
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "Insufficient balance", InsufficientBalance().Error())
	assert.Equal(t, "storage: boom", (&Error{Code: CodeStorage, Cause: errors.New("boom")}).Error())
	assert.Equal(t, "validation", ErrValidation.Error())
}
