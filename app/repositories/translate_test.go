package repositories

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTranslateDuplicates(t *testing.T) {
	for _, err := range []error{
		gorm.ErrDuplicatedKey,
		errors.New("UNIQUE constraint failed: users.email"),
		errors.New(`ERROR: duplicate key value violates unique constraint "idx_users_email" (SQLSTATE 23505)`),
		errors.New("Error 1062 (23000): Duplicate entry 'a@b.c' for key 'users.idx_users_email'"),
		errors.New("mssql: Cannot insert duplicate key row in object 'dbo.users'"),
	} {
		assert.ErrorIs(t, translate("users: create", err), ErrDuplicate, "%v", err)
	}

	assert.ErrorIs(t, translate("users: find", fmt.Errorf("wrap: %w", gorm.ErrRecordNotFound)), ErrNotFound)
	assert.NotErrorIs(t, translate("users: create", errors.New("disk full")), ErrDuplicate)
	assert.NoError(t, translate("users: create", nil))
}
