package services

import (
	"errors"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
)

func TestRegisterConflict(t *testing.T) {
	t.Run("duplicate username maps to ErrUsernameTaken", func(t *testing.T) {
		err := registerConflict(&mysql.MySQLError{
			Number:  1062,
			Message: "Duplicate entry 'acme_brand' for key 'users.idx_users_username'",
		})
		assert.ErrorIs(t, err, ErrUsernameTaken)
	})

	t.Run("duplicate email maps to ErrEmailTaken", func(t *testing.T) {
		err := registerConflict(&mysql.MySQLError{
			Number:  1062,
			Message: "Duplicate entry 'a@b.com' for key 'users.idx_users_email'",
		})
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("other errors pass through untouched", func(t *testing.T) {
		plain := errors.New("connection refused")
		assert.Equal(t, plain, registerConflict(plain))

		deadlock := &mysql.MySQLError{Number: 1213, Message: "Deadlock found"}
		assert.Equal(t, error(deadlock), registerConflict(deadlock))
	})
}
