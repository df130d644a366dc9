package db

import (
	"errors"
	"fmt"
	"testing"

	"paylite/internal/domain"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil, "x"))

	err := translate(fmt.Errorf("lookup: %w", gorm.ErrRecordNotFound), "Wallet not found")
	assert.Equal(t, domain.CodeNotFound, domain.CodeOf(err))
	assert.EqualError(t, err, "Wallet not found")

	err = translate(gorm.ErrDuplicatedKey, "")
	assert.Equal(t, domain.CodeConflict, domain.CodeOf(err))

	// Domain errors raised inside a transaction pass through
	err = translate(domain.InsufficientBalance(), "")
	assert.Equal(t, domain.CodeInsufficientBalance, domain.CodeOf(err))

	driver := errors.New("deadlock found when trying to get lock")
	err = translate(driver, "")
	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.ErrorIs(t, err, driver)
}
